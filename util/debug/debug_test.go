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
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestTraceMasked(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(io.Discard)

	Trace("CPU", 0x2, 0x1, "not shown", nil)
	if buf.Len() != 0 {
		t.Errorf("Masked trace written got: %s", buf.String())
	}

	Trace("CPU", 0x3, 0x1, "walk", logrus.Fields{"addr": "1234"})
	out := buf.String()
	if !strings.Contains(out, "module=CPU") || !strings.Contains(out, "addr=1234") {
		t.Errorf("Trace output missing fields got: %s", out)
	}
	if !strings.Contains(out, "msg=walk") {
		t.Errorf("Trace output missing message got: %s", out)
	}
}

func TestDebugf(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(io.Discard)

	Debugf("STORAGE", 0x4, 0x4, "altered %x", 0x1000)
	if !strings.Contains(buf.String(), "altered 1000") {
		t.Errorf("Debugf output got: %s", buf.String())
	}
}

func TestDebugFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "debug.log")
	if err := create(0, name, nil); err != nil {
		t.Fatalf("Create debug file failed: %v", err)
	}
	if err := create(0, name, nil); err == nil {
		t.Errorf("Second debug file accepted")
	}
	Trace("CPU", 1, 1, "to file", nil)
	if err := Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("Read debug file failed: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("Debug file contents got: %s", string(data))
	}
	if err := Close(); err != nil {
		t.Errorf("Second close failed: %v", err)
	}
}
