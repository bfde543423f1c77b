/*
 * S370 - Disassemble storage
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

	"github.com/rcornwell/S370stor/emu/cpu"
	"github.com/rcornwell/S370stor/emu/disassemble"
	"github.com/rcornwell/S370stor/util/hex"
)

// Space selected by R, V, P or H in front of operand. Without one the
// PSW DAT setting decides.
func disasmSpace(live *cpu.Context, text string) (int, string) {
	text = strings.TrimSpace(text)
	if text != "" {
		switch upper(text[0]) {
		case 'R':
			return cpu.UseRealAddr, text[1:]
		case 'V':
			return 0, text[1:]
		case 'P':
			return cpu.UsePrimarySpace, text[1:]
		case 'H':
			return cpu.UseHomeSpace, text[1:]
		}
	}
	live.Lock()
	realMode := live.RealMode()
	live.Unlock()
	if realMode {
		return cpu.UseRealAddr, text
	}
	return 0, text
}

// DisasmStor disassembles instructions in range given by operand. Stops
// at the first address that can't be translated or is outside storage.
func DisasmStor(sys System, out Sink, live *cpu.Context, text string) error {
	p := sys.Profile()
	st := sys.Storage()
	arn, text := disasmSpace(live, text)

	r, err := parse(p, out, text)
	if err != nil {
		return err
	}

	if st.Size() == 0 {
		emit(out, msgDisasm, Error, "Real address is not valid")
		return ErrNoStorage
	}

	r = r.Limit(MaxDisplay)
	addr := r.Start
	for addr <= r.End {
		o, err := translate(sys, out, live, addr, arn)
		if err != nil {
			return err
		}
		if !o.Ok() {
			emit(out, msgDisasm, Error, "R:%s  Storage not accessible code = %04X (%s)",
				addrText(p, addr), uint16(o.Code), cpu.PICName(o.Code))
			return o.Err()
		}
		opcode, err := st.Peek(o.Abs, 1)
		if err != nil {
			emit(out, msgDisasm, Error, "R:%s  Addressing exception", addrText(p, o.Real))
			return err
		}
		ilc := disassemble.ILC(opcode[0])
		inst, err := st.Peek(o.Abs, ilc)
		if err != nil {
			emit(out, msgDisasm, Error, "R:%s  Addressing exception", addrText(p, o.Abs))
			return err
		}

		var str strings.Builder
		fmt.Fprintf(&str, "%c:%s  ", o.Letter(), addrText(p, addr))
		hex.FormatBytes(&str, false, inst)
		str.WriteString(strings.Repeat(" ", 13-2*ilc))
		mnemonic, _ := disassemble.Disassemble(inst)
		str.WriteString(mnemonic)
		emit(out, msgDisasm, Info, "%s", strings.TrimRight(str.String(), " "))

		next := addr + uint64(ilc)
		if next < addr {
			break
		}
		addr = next
	}
	return nil
}
