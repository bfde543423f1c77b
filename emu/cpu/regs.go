/*
 * S370 - Register display.
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

package cpu

import (
	"strings"

	"github.com/rcornwell/S370stor/emu/arch"
	"github.com/rcornwell/S370stor/util/hex"
)

const cr0AFP uint64 = 0x00040000 // Additional floating point registers

// Start a register display line.
func (c *Context) regLine(str *strings.Builder, multi bool) {
	if multi {
		str.WriteString(c.Tag())
		str.WriteString(": ")
	}
}

// Sixteen 32 bit registers, four to a line.
func (c *Context) regs32(name string, r [16]uint64, multi bool) []string {
	lines := []string{}
	var str strings.Builder
	for i := range 16 {
		if (i % 4) == 0 {
			if i != 0 {
				lines = append(lines, str.String())
				str.Reset()
			}
			c.regLine(&str, multi)
		} else {
			str.WriteByte(' ')
		}
		str.WriteString(name)
		str.WriteByte('0' + byte(i/10))
		str.WriteByte('0' + byte(i%10))
		str.WriteByte('=')
		hex.FormatValue(&str, r[i], 8)
	}
	return append(lines, str.String())
}

// Sixteen 64 bit registers, four to a line or two if several CPUs.
func (c *Context) regs64(name string, r [16]uint64, multi bool) []string {
	perLine := 4
	if multi {
		perLine = 2
	}
	lines := []string{}
	var str strings.Builder
	for i := range 16 {
		if (i % perLine) == 0 {
			if i != 0 {
				lines = append(lines, str.String())
				str.Reset()
			}
			c.regLine(&str, multi)
		} else {
			str.WriteByte(' ')
		}
		str.WriteString(name)
		hex.FormatDigit(&str, byte(i))
		str.WriteByte('=')
		hex.FormatValue(&str, r[i], 16)
	}
	return append(lines, str.String())
}

// GeneralRegs formats general registers.
func (c *Context) GeneralRegs(multi bool) []string {
	if c.Profile.Mode == arch.Z900 {
		return c.regs64("R", c.GR, multi)
	}
	return c.regs32("GR", c.GR, multi)
}

// ControlRegs formats control registers.
func (c *Context) ControlRegs(multi bool) []string {
	if c.Profile.Mode == arch.Z900 {
		return c.regs64("C", c.CR, multi)
	}
	return c.regs32("CR", c.CR, multi)
}

// AccessRegs formats access registers.
func (c *Context) AccessRegs(multi bool) []string {
	var ar [16]uint64
	for i, v := range c.AR {
		ar[i] = uint64(v)
	}
	return c.regs32("AR", ar, multi)
}

// FloatRegs formats floating point registers. Without the AFP control
// only registers 0, 2, 4 and 6 exist.
func (c *Context) FloatRegs(multi bool) []string {
	pairs := [][2]int{{0, 2}, {4, 6}}
	if (c.CR[0] & cr0AFP) != 0 {
		pairs = [][2]int{{0, 2}, {1, 3}, {4, 6}, {5, 7}, {8, 10}, {9, 11}, {12, 14}, {13, 15}}
	}
	lines := []string{}
	for _, p := range pairs {
		var str strings.Builder
		c.regLine(&str, multi)
		str.WriteString(fprName(p[0]))
		str.WriteByte('=')
		hex.FormatValue(&str, c.FPR[p[0]], 16)
		str.WriteByte(' ')
		str.WriteString(fprName(p[1]))
		str.WriteByte('=')
		hex.FormatValue(&str, c.FPR[p[1]], 16)
		lines = append(lines, str.String())
	}
	return lines
}

// Register names are always four characters.
func fprName(n int) string {
	if n < 10 {
		return "FPR" + string(rune('0'+n))
	}
	return "FP" + string(rune('0'+n/10)) + string(rune('0'+n%10))
}

// PSWString formats current PSW.
func (c *Context) PSWString() string {
	var str strings.Builder
	psw := c.PSW
	str.WriteString("PSW=")
	var flags uint64
	if psw.DAT {
		flags |= 0x04
	}
	word := flags<<56 | uint64(psw.Key&0xf)<<52 | uint64(psw.ASC&3)<<46 |
		uint64(psw.CC&3)<<44 | uint64(psw.ProgMsk&0xf)<<40
	if psw.Wait {
		word |= 0x2 << 48
	}
	if psw.Problem {
		word |= 0x1 << 48
	}
	word |= 0x8 << 48 // EC mode
	if c.Profile.Mode == arch.Z900 {
		if psw.AMode == 64 {
			word |= 1 << 32
		}
		if psw.AMode >= 31 {
			word |= 1 << 31
		}
		hex.FormatValue(&str, word, 16)
		str.WriteByte(' ')
		hex.FormatValue(&str, psw.IA, 16)
		return str.String()
	}
	ia := psw.IA & 0x7fffffff
	if psw.AMode == 31 {
		ia |= 0x80000000
	}
	hex.FormatValue(&str, word>>32, 8)
	str.WriteByte(' ')
	hex.FormatValue(&str, ia, 8)
	return str.String()
}
