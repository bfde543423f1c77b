/*
 * S370 - Storage alter and display
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
	"errors"
	"fmt"
	"strings"

	"github.com/rcornwell/S370stor/command/operand"
	"github.com/rcornwell/S370stor/emu/arch"
	"github.com/rcornwell/S370stor/emu/cpu"
	"github.com/rcornwell/S370stor/emu/memory"
	"github.com/rcornwell/S370stor/util/debug"
	"github.com/rcornwell/S370stor/util/hex"
	"github.com/rcornwell/S370stor/util/hexdump"
	"github.com/sirupsen/logrus"
)

// MaxDisplay is the most bytes one command will show.
const MaxDisplay = 0x10000

var (
	ErrNoStorage         = errors.New("storage address is not valid")
	ErrInvalidParameters = errors.New("invalid parameters")
)

// System is the machine whose storage is inspected.
type System interface {
	Profile() *arch.Profile
	Storage() *memory.Storage
	Snapshots() *cpu.SnapshotPool
}

// Format address at width of architecture.
func addrText(p *arch.Profile, addr uint64) string {
	return hex.Value(addr, p.AddrDigits())
}

func upper(by byte) byte {
	if by >= 'a' && by <= 'z' {
		by -= 'a' - 'A'
	}
	return by
}

// Parse range operand, reporting errors.
func parse(p *arch.Profile, out Sink, text string) (operand.Range, error) {
	r, err := operand.ParseRange(text, p.MaxAddr)
	if err != nil {
		emit(out, msgRange, Error, "%s", err.Error())
	}
	return r, err
}

// Translate address on a working copy of live.
func translate(sys System, out Sink, live *cpu.Context, addr uint64, arn int) (cpu.Outcome, error) {
	o, err := cpu.VirtToReal(sys.Snapshots(), live, sys.Storage(), addr, arn, cpu.AccessHW)
	if err != nil {
		emit(out, msgFunction, Error, "Error in function %s: %s", "VirtToReal()", err.Error())
	}
	return o, err
}

// Check absolute address is in storage.
func checkAbs(st *memory.Storage, abs uint64) error {
	return st.Check(abs, 1)
}

// Store one altered byte.
func alterByte(st *memory.Storage, abs uint64, value byte) error {
	if err := st.PutByte(abs, value); err != nil {
		return err
	}
	debug.Trace("STORAGE", debugMsk, debugAlter, "alter", logrus.Fields{
		"abs":   fmt.Sprintf("%X", abs),
		"value": fmt.Sprintf("%02X", value),
	})
	return nil
}

// DumpAbsPage formats amount bytes starting offset bytes into the
// absolute page at abs. cosmetic is the page address shown, tag the
// letter in front of each line, 'V' if zero. width is the address width
// in bits. Storage keys are not changed.
func DumpAbsPage(p *arch.Profile, st *memory.Storage, abs, cosmetic uint64, offset, amount int,
	tag byte, width int) ([]string, error) {
	size := int(p.PageSize())
	if (abs&p.ByteMask()) != 0 || (cosmetic&p.ByteMask()) != 0 ||
		offset < 0 || offset >= size || amount < 0 || amount > size-offset ||
		(width != 32 && width != 64) {
		return nil, ErrInvalidParameters
	}
	if tag == 0 {
		tag = 'V'
	}

	fail := func(err error) ([]string, error) {
		return []string{fmt.Sprintf("%c:%s  Addressing exception", tag, hex.Value(cosmetic, width/4))}, err
	}
	if err := checkAbs(st, abs); err != nil {
		return fail(err)
	}
	data, err := st.Peek(abs+uint64(offset), amount)
	if err != nil {
		return fail(err)
	}

	start := cosmetic + uint64(offset)
	return hexdump.Format(tag, start&^0xf, int(start&0xf), data, width/4), nil
}

// Dump pages of range, resolve returns absolute address and key line of
// each page.
func dumpPages(p *arch.Profile, st *memory.Storage, out Sink, r operand.Range, id string,
	tag byte, resolve func(page uint64) (uint64, error)) error {
	r = r.Limit(MaxDisplay)
	pageSize := p.PageSize()
	total := r.End - r.Start + 1
	page := r.Start & p.PageMask()
	offset := r.Start - page
	amount := pageSize - offset
	for {
		if amount > total {
			amount = total
		}
		abs, err := resolve(page)
		if err != nil {
			return err
		}
		lines, err := DumpAbsPage(p, st, abs, page, int(offset), int(amount), tag, p.AddrWidth)
		if errors.Is(err, ErrInvalidParameters) {
			emit(out, msgFunction, Error, "Error in function %s: %s", "DumpAbsPage()", err.Error())
			return err
		}
		sev := Info
		if err != nil {
			sev = Error
		}
		for _, line := range lines {
			emit(out, id, sev, "%s", line)
		}
		if err != nil {
			return err
		}
		total -= amount
		if total == 0 {
			break
		}
		offset = 0
		amount = pageSize
		page += pageSize
	}
	return nil
}

// AlterDisplayRealOrAbs alters and displays real (kind 'R') or absolute
// (kind 'A') storage. Guest addresses are bounded by the SIE limit.
// Alteration stops at the first byte outside of storage, bytes already
// stored remain.
func AlterDisplayRealOrAbs(sys System, out Sink, live *cpu.Context, kind byte, text string) error {
	p := sys.Profile()
	st := sys.Storage()
	kind = upper(kind)
	if kind != 'A' {
		kind = 'R'
	}

	r, err := parse(p, out, text)
	if err != nil {
		return err
	}

	if st.Size() == 0 {
		emit(out, msgNoStor, Error, "%c:%s  Storage address is not valid", kind, addrText(p, r.Start))
		return ErrNoStorage
	}

	// Convert address to absolute. A SIE guest address is located in
	// host storage.
	arn := cpu.UseRealAddr
	if kind == 'A' {
		arn = cpu.UseAbsAddr
	}
	absolute := func(addr uint64) (uint64, error) {
		o, err := translate(sys, out, live, addr, arn)
		if err != nil {
			return 0, err
		}
		if !o.Ok() {
			emit(out, msgAddr, Error, "%c:%s  Addressing exception", 'A', addrText(p, addr))
			return 0, o.Err()
		}
		if err := checkAbs(st, o.Abs); err != nil {
			emit(out, msgAddr, Error, "%c:%s  Addressing exception", 'A', addrText(p, o.Abs))
			return 0, err
		}
		return o.Abs, nil
	}

	for i, value := range r.Data {
		abs, err := absolute(r.Start + uint64(i))
		if err != nil {
			return err
		}
		if err := alterByte(st, abs, value); err != nil {
			return err
		}
	}

	return dumpPages(p, st, out, r, msgRealDump, kind, func(page uint64) (uint64, error) {
		abs, err := absolute(page)
		if err != nil {
			return 0, err
		}
		emit(out, msgRealDump, Info, "A:%s  K:%02X", addrText(p, abs), st.Key(abs))
		return abs, nil
	})
}

// Select space from optional P, S or H in front of operand.
func spacePrefix(text string) (int, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, text
	}
	switch upper(text[0]) {
	case 'P':
		return cpu.UsePrimarySpace, text[1:]
	case 'S':
		return cpu.UseSecondarySpace, text[1:]
	case 'H':
		return cpu.UseHomeSpace, text[1:]
	}
	return 0, text
}

// AlterDisplayVirt alters and displays virtual storage. Alteration is
// done only if both the first and last byte translate. Display stops at
// the first page that can't be translated or is outside storage.
func AlterDisplayVirt(sys System, out Sink, live *cpu.Context, text string) error {
	p := sys.Profile()
	st := sys.Storage()
	arn, text := spacePrefix(text)

	r, err := parse(p, out, text)
	if err != nil {
		return err
	}

	if st.Size() == 0 {
		emit(out, msgNoStor, Error, "%c:%s  Storage address is not valid", 'V', addrText(p, r.Start))
		return ErrNoStorage
	}

	// Translate to absolute, reporting any exception.
	absolute := func(vaddr uint64) (cpu.Outcome, error) {
		o, err := translate(sys, out, live, vaddr, arn)
		if err != nil {
			return o, err
		}
		if !o.Ok() {
			emit(out, msgTrans, Error, "%c:%s  Translation exception %04X (%s)  %s", 'V',
				addrText(p, vaddr), uint16(o.Code), cpu.PICName(o.Code), o.How())
			return o, o.Err()
		}
		if err := checkAbs(st, o.Abs); err != nil {
			emit(out, msgAddr, Error, "%c:%s  Addressing exception", 'R', addrText(p, o.Real))
			return o, err
		}
		return o, nil
	}

	if r.Alter() {
		for _, vaddr := range []uint64{r.Start, r.End} {
			if _, err := absolute(vaddr); err != nil {
				return err
			}
		}
		for i, value := range r.Data {
			o, err := absolute(r.Start + uint64(i))
			if err != nil {
				return err
			}
			if err := alterByte(st, o.Abs, value); err != nil {
				return err
			}
		}
	}

	return dumpPages(p, st, out, r, msgVirtDump, 'V', func(page uint64) (uint64, error) {
		o, err := absolute(page)
		if err != nil {
			return 0, err
		}
		emit(out, msgVirtDump, Info, "R:%s  K:%02X  %s", addrText(p, o.Real), st.Key(o.Abs), o.How())
		return o.Abs, nil
	})
}
