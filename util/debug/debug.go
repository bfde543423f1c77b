/*
 * S370 - Log debug data to a file
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package debug

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	config "github.com/rcornwell/S370stor/config/configparser"
	"github.com/sirupsen/logrus"
)

var (
	mu      sync.Mutex
	logFile *os.File
	log     = newLogger(io.Discard)
)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.TraceLevel)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:    true,
		FullTimestamp:    true,
		QuoteEmptyFields: true,
	})
	return l
}

// Generic debug message.
func Debugf(module string, mask int, level int, format string, a ...interface{}) {
	if (mask & level) != 0 {
		log.WithField("module", module).Tracef(format, a...)
	}
}

// Trace records a debug event with structured fields.
func Trace(module string, mask int, level int, msg string, fields logrus.Fields) {
	if (mask & level) == 0 {
		return
	}
	entry := log.WithField("module", module)
	if fields != nil {
		entry = entry.WithFields(fields)
	}
	entry.Trace(msg)
}

// SetOutput directs debug output to w, used by tests and the -d flag.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	log.SetOutput(w)
}

// Close flushes and closes debug file.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	log.SetOutput(io.Discard)
	return err
}

// register debug file option on initialize.
func init() {
	config.RegisterFile("DEBUGFILE", create)
}

// Create debug output file.
func create(_ uint16, fileName string, _ []config.Option) error {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		return fmt.Errorf("can't have more then one debug file, previous: %s", logFile.Name())
	}
	if fileName == "" {
		return errors.New("debug file requires a name")
	}

	file, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("unable to create debug file: %s: %w", fileName, err)
	}

	logFile = file
	log.SetOutput(file)
	return nil
}
