/*
 * S370 - Storage dump formatter
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

package hexdump

import (
	"strings"

	"github.com/rcornwell/S370stor/util/hex"
	"github.com/rcornwell/S370stor/util/xlat"
)

const (
	BytesPerGroup = 4
	GroupsPerLine = 4
	BytesPerLine  = BytesPerGroup * GroupsPerLine
)

// Format renders data as dump lines of four groups of four bytes followed
// by the EBCDIC characters. addr is the address of the first line and
// skip the number of positions left blank before the first byte. Each
// line starts with tag and a colon unless tag is zero.
func Format(tag byte, addr uint64, skip int, data []byte, digits int) []string {
	lines := []string{}
	total := skip + len(data)
	for pos := 0; pos < total; pos += BytesPerLine {
		var str strings.Builder
		var chars [BytesPerLine]byte
		if tag != 0 {
			str.WriteByte(tag)
			str.WriteByte(':')
		}
		hex.FormatValue(&str, addr+uint64(pos), digits)
		str.WriteString("  ")
		for i := range BytesPerLine {
			if i != 0 && (i%BytesPerGroup) == 0 {
				str.WriteByte(' ')
			}
			n := pos + i - skip
			if n < 0 || n >= len(data) {
				str.WriteString("  ")
				chars[i] = ' '
				continue
			}
			hex.FormatByte(&str, data[n])
			chars[i] = xlat.Glyph(data[n])
		}
		str.WriteString("  ")
		str.Write(chars[:])
		lines = append(lines, strings.TrimRight(str.String(), " "))
	}
	return lines
}
