/*
 * S370 - Storage range operand parser
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

package operand

import (
	"errors"
	"strconv"
	"strings"
)

const (
	MaxAlter      = 32   // Most bytes one alteration may change.
	DefaultLength = 0x40 // Bytes shown when only an address is given.
)

var (
	ErrInvalidHex   = errors.New("invalid hex digit")
	ErrInvalidPair  = errors.New("invalid hex pair")
	ErrTooManyBytes = errors.New("only a maximum of 32 bytes may be altered")
	ErrInvalidRange = errors.New("invalid range")
	ErrSyntax       = errors.New("invalid range operand")
)

// RangeError reports where an operand could not be parsed.
type RangeError struct {
	Operand string // Remaining text at point of error.
	Err     error
}

func (e *RangeError) Error() string {
	if e.Operand == "" {
		return e.Err.Error()
	}
	return e.Operand + ": " + e.Err.Error()
}

func (e *RangeError) Unwrap() error {
	return e.Err
}

// Range is a parsed display range or alteration.
type Range struct {
	Start uint64 // First address.
	End   uint64 // Last address, inclusive.
	Data  []byte // Replacement bytes for alteration.
}

// Alter reports whether range carries data to store.
func (r Range) Alter() bool {
	return len(r.Data) != 0
}

// Limit returns range shortened to at most n bytes.
func (r Range) Limit(n uint64) Range {
	if r.End-r.Start > n-1 {
		r.End = r.Start + n - 1
	}
	return r
}

const hex = "0123456789abcdef"

type cursor struct {
	text string
	pos  int
}

func (line *cursor) eol() bool {
	return line.pos >= len(line.text)
}

// Return current character and advance.
func (line *cursor) getCurrent() byte {
	if line.eol() {
		return 0
	}
	by := line.text[line.pos]
	line.pos++
	return by
}

func (line *cursor) rest() string {
	if line.eol() {
		return ""
	}
	return line.text[line.pos:]
}

func hexDigit(by byte) int {
	if by >= 'A' && by <= 'F' {
		by += 'a' - 'A'
	}
	return strings.IndexByte(hex, by)
}

// Parse hex number, at least one digit.
func (line *cursor) getHex() (uint64, bool) {
	value := uint64(0)
	digits := 0
	for !line.eol() {
		digit := hexDigit(line.text[line.pos])
		if digit < 0 {
			break
		}
		if value > (^uint64(0) >> 4) {
			return 0, false
		}
		value = (value << 4) | uint64(digit)
		digits++
		line.pos++
	}
	return value, digits != 0
}

func rangeError(text string, err error) error {
	return &RangeError{Operand: text, Err: err}
}

// ParseRange parses operand of the form ADDR, ADDR-ADDR2, ADDR.LEN or
// ADDR=HEX. All values are hex. Neither bound may exceed maxAddr.
func ParseRange(operand string, maxAddr uint64) (Range, error) {
	text := strings.TrimSpace(operand)
	line := cursor{text: text}
	var r Range

	start, ok := line.getHex()
	if !ok {
		return r, rangeError(text, ErrSyntax)
	}
	r.Start = start

	delim := line.getCurrent()
	switch delim {
	case 0:
		r.End = maxAddr
		if start <= maxAddr && maxAddr-start >= DefaultLength-1 {
			r.End = start + DefaultLength - 1
		}

	case '-', '.':
		second, ok := line.getHex()
		if !ok || !line.eol() {
			return Range{}, rangeError(text, ErrSyntax)
		}
		r.End = second
		if delim == '.' {
			if second == 0 {
				return Range{}, rangeError(text, ErrInvalidRange)
			}
			r.End = start + second - 1
		}

	case '=':
		data, err := line.parseAlter()
		if err != nil {
			return Range{}, err
		}
		r.Data = data
		r.End = start + uint64(len(data)) - 1

	default:
		return Range{}, rangeError(text, ErrSyntax)
	}

	if r.Start > maxAddr || r.End > maxAddr || r.End < r.Start {
		return Range{}, rangeError(text, ErrInvalidRange)
	}
	return r, nil
}

// Collect hex pairs up to end or comment.
func (line *cursor) parseAlter() ([]byte, error) {
	data := []byte{}
	for {
		rest := line.rest()
		h1 := line.getCurrent()
		if h1 == 0 || h1 == '#' {
			break
		}
		if h1 == ' ' || h1 == '\t' {
			continue
		}
		d1 := hexDigit(h1)
		if d1 < 0 {
			return nil, rangeError(rest, ErrInvalidHex)
		}
		d2 := hexDigit(line.getCurrent())
		if d2 < 0 {
			return nil, rangeError(rest, ErrInvalidPair)
		}
		if len(data) >= MaxAlter {
			return nil, rangeError(rest, ErrTooManyBytes)
		}
		data = append(data, byte(d1<<4|d2))
	}
	if len(data) == 0 {
		return nil, rangeError(line.text, ErrSyntax)
	}
	return data, nil
}

// FormatRange renders display range as START-END.
func FormatRange(r Range) string {
	return strings.ToUpper(strconv.FormatUint(r.Start, 16) + "-" + strconv.FormatUint(r.End, 16))
}
