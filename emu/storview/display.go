/*
 * S370 - Single line storage display
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

package storview

import (
	"fmt"
	"strings"

	"github.com/rcornwell/S370stor/emu/arch"
	"github.com/rcornwell/S370stor/emu/cpu"
	"github.com/rcornwell/S370stor/emu/memory"
	"github.com/rcornwell/S370stor/util/debug"
	"github.com/rcornwell/S370stor/util/hex"
	"github.com/rcornwell/S370stor/util/xlat"
	"github.com/sirupsen/logrus"
)

// Up to 16 bytes of storage at abs, stopping at end of page.
func formatData(str *strings.Builder, p *arch.Profile, st *memory.Storage, abs uint64) {
	var hbuf strings.Builder
	chars := []byte(strings.Repeat(" ", 16))

	fmt.Fprintf(str, "K:%02X=", st.Key(abs))
	for i := range 16 {
		data, err := st.Peek(abs, 1)
		if err != nil {
			break
		}
		hex.FormatByte(&hbuf, data[0])
		chars[i] = xlat.Glyph(data[0])
		abs++
		if (abs & 0x3) == 0 {
			hbuf.WriteByte(' ')
		}
		if (abs & p.ByteMask()) == 0 {
			break
		}
	}
	fmt.Fprintf(str, "%36.36s %s", hbuf.String(), string(chars))
}

// Returns whether live is a SIE guest and its prefix.
func guestPrefix(live *cpu.Context) (bool, uint64) {
	live.Lock()
	defer live.Unlock()
	return live.SIEMode(), live.Prefix
}

// DisplayReal shows up to 16 bytes at real address raddr of live. The
// line starts with the real address when withReal is set.
func DisplayReal(sys System, live *cpu.Context, raddr uint64, withReal bool) string {
	p := sys.Profile()
	st := sys.Storage()
	var str strings.Builder
	if withReal {
		fmt.Fprintf(&str, "R:%s:", addrText(p, raddr))
	}

	o, err := cpu.VirtToReal(sys.Snapshots(), live, st, raddr, cpu.UseRealAddr, cpu.AccessHW)
	if err != nil {
		str.WriteString(" " + err.Error())
		return str.String()
	}

	if guest, prefix := guestPrefix(live); guest {
		gabs := live.Profile.ApplyPrefix(raddr, prefix)
		if !o.Ok() || st.Check(o.Abs, 1) != nil {
			fmt.Fprintf(&str, "A:%s Guest real address is not valid", addrText(p, gabs))
			return str.String()
		}
		fmt.Fprintf(&str, "A:%s:", addrText(p, gabs))
	} else if st.Check(o.Abs, 1) != nil {
		str.WriteString(" Real address is not valid")
		return str.String()
	}

	formatData(&str, p, st, o.Abs)
	debug.Trace("STORAGE", debugMsk, debugDisplay, "display real", logrus.Fields{
		"real": fmt.Sprintf("%X", raddr),
		"abs":  fmt.Sprintf("%X", o.Abs),
	})
	return strings.TrimRight(str.String(), " ")
}

// DisplayVirt shows up to 16 bytes at virtual address vaddr translated
// using arn. The line starts with V: or R: when arn is cpu.UseRealAddr.
func DisplayVirt(sys System, live *cpu.Context, vaddr uint64, arn int, acc cpu.Access) (string, error) {
	p := sys.Profile()
	st := sys.Storage()
	var str strings.Builder
	tag := 'V'
	if arn == cpu.UseRealAddr {
		tag = 'R'
	}
	fmt.Fprintf(&str, "%c:%s:", tag, addrText(p, vaddr))

	o, err := cpu.VirtToReal(sys.Snapshots(), live, st, vaddr, arn, acc)
	if err != nil {
		str.WriteString(" " + err.Error())
		return str.String(), err
	}
	if !o.Ok() {
		fmt.Fprintf(&str, " Translation exception %04X (%s)", uint16(o.Code), cpu.PICName(o.Code))
		return str.String(), o.Err()
	}
	if err := st.Check(o.Abs, 1); err != nil {
		str.WriteString(" Real address is not valid")
		return str.String(), err
	}
	formatData(&str, p, st, o.Abs)
	return strings.TrimRight(str.String(), " "), nil
}
