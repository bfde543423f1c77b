/*
 * S370 - Command parser
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

package parser

import (
	"errors"
	"strings"
	"unicode"

	"github.com/rcornwell/S370stor/command/command"
)

type cmd struct {
	Name     string // Command name.
	Min      int    // Minimum match size.
	Help     string // One line description.
	Process  func(*cmdLine, *command.Session) (bool, error)
	Complete func(*cmdLine, *command.Session) []string
}

type cmdLine struct {
	line string // Current command.
	pos  int    // Position in line.
}

// ReportedError is an error already written to the console.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string {
	return e.Err.Error()
}

func (e *ReportedError) Unwrap() error {
	return e.Err
}

// IsReported returns true if err has already been shown.
func IsReported(err error) bool {
	var r *ReportedError
	return errors.As(err, &r)
}

func reported(err error) error {
	if err == nil {
		return nil
	}
	return &ReportedError{Err: err}
}

// Execute the command line given.
func ProcessCommand(commandLine string, session *command.Session) (bool, error) {
	line := cmdLine{line: commandLine}
	command := line.getWord()
	if command == "" {
		line.skipSpace()
		if !line.isEOL() {
			return false, errors.New("command not found: " + line.rest())
		}
		return false, nil
	}

	match := matchList(command)
	if len(match) == 0 {
		return false, errors.New("command not found: " + command)
	}

	if len(match) > 1 {
		return false, errors.New("unique command not found: " + command)
	}

	return match[0].Process(&line, session)
}

// Check if command matches at least to minimum length.
func matchCommand(match cmd, command string) bool {
	if len(command) > len(match.Name) {
		return false
	}
	l := 0
	for l = range len(command) {
		if match.Name[l] != command[l] {
			return false
		}
	}
	return (l + 1) >= match.Min
}

// Check if command matches one of the commands.
func matchList(command string) []cmd {
	// If command empty just return.
	if command == "" {
		return []cmd{}
	}

	// An exact match wins over abbreviations.
	for _, m := range cmdList {
		if m.Name == command {
			return []cmd{m}
		}
	}

	var match []cmd
	for _, m := range cmdList {
		if matchCommand(m, command) {
			match = append(match, m)
		}
	}
	return match
}

// Skip forward over line until none whitespace character found.
func (line *cmdLine) skipSpace() {
	for {
		if line.pos >= len(line.line) {
			return
		}
		if unicode.IsSpace(rune(line.line[line.pos])) {
			line.pos++
			continue
		}
		return
	}
}

// Check if at end of line.
func (line *cmdLine) isEOL() bool {
	if line.pos >= len(line.line) {
		return true
	}

	if line.line[line.pos] == '#' {
		return true
	}
	return false
}

// Return current character and advance to next.
func (line *cmdLine) getCurrent() byte {
	if line.isEOL() {
		return 0
	}
	by := line.line[line.pos]
	line.pos++
	return by
}

// Return remainder of line.
func (line *cmdLine) rest() string {
	if line.pos >= len(line.line) {
		return ""
	}
	return strings.TrimSpace(line.line[line.pos:])
}

const hex = "0123456789abcdef"

// Parse hex number.
func (line *cmdLine) getHex() (uint64, error) {
	line.skipSpace()

	pos := line.pos
	value := uint64(0)
	digits := 0
	by := line.getCurrent()
	for by != 0 {
		if unicode.IsSpace(rune(by)) {
			break
		}
		digit := strings.IndexByte(hex, byte(unicode.ToLower(rune(by))))
		if digit == -1 || digits == 16 {
			line.pos = pos
			return 0, errors.New("not a hex number")
		}
		value = (value << 4) + uint64(digit)
		digits++
		by = line.getCurrent()
	}
	if digits == 0 {
		line.pos = pos
		return 0, errors.New("not a hex number")
	}

	return value, nil
}

// Parse command name, letters only, lower cased.
func (line *cmdLine) getWord() string {
	line.skipSpace()

	value := ""
	pos := line.pos
	by := line.getCurrent()
	for by != 0 {
		if unicode.IsSpace(rune(by)) {
			break
		}
		if !unicode.IsLetter(rune(by)) {
			line.pos = pos
			return ""
		}
		value += string([]byte{by})
		by = line.getCurrent()
	}

	return strings.ToLower(value)
}
