/*
 * S370 - EBCDIC and ASCII translation
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

package xlat

import "testing"

func TestTables(t *testing.T) {
	tests := []struct {
		ebcdic uint8
		ascii  uint8
	}{
		{0x40, ' '},
		{0x4b, '.'},
		{0x5b, '$'},
		{0x81, 'a'},
		{0xc1, 'A'},
		{0xe9, 'Z'},
		{0xf0, '0'},
		{0xf9, '9'},
	}
	for _, test := range tests {
		if r := EBCDICToASCII[test.ebcdic]; r != test.ascii {
			t.Errorf("EBCDICToASCII %02x got: %02x expected: %02x", test.ebcdic, r, test.ascii)
		}
	}

	// Every ISO 8859-1 character appears once.
	var seen [256]bool
	for i := range 256 {
		ch := EBCDICToASCII[i]
		if seen[ch] {
			t.Errorf("EBCDICToASCII %02x duplicate: %02x", i, ch)
		}
		seen[ch] = true
	}
}

func TestGlyph(t *testing.T) {
	tests := []struct {
		by    uint8
		glyph byte
	}{
		{0x00, '.'},
		{0x40, ' '},
		{0xc8, 'H'},
		{0x41, '.'},
		{0xff, '.'},
		{0x25, '.'},
	}
	for _, test := range tests {
		if r := Glyph(test.by); r != test.glyph {
			t.Errorf("Glyph %02x got: %c expected: %c", test.by, r, test.glyph)
		}
	}
}
