/*
 * S370 - Dynamic address translation.
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
	"errors"
	"fmt"

	"github.com/rcornwell/S370stor/emu/arch"
	"github.com/rcornwell/S370stor/emu/memory"
	"github.com/rcornwell/S370stor/util/debug"
	"github.com/sirupsen/logrus"
)

var ErrTranslation = errors.New("translation exception")

// TranslationError reports a failed translation.
type TranslationError struct {
	Addr uint64 // Virtual address being translated
	Code Code   // Program interruption code
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translation exception %04X (%s) at %X", uint16(e.Code), e.Name(), e.Addr)
}

func (e *TranslationError) Unwrap() error {
	return ErrTranslation
}

// Name returns description of exception.
func (e *TranslationError) Name() string {
	return PICName(e.Code)
}

// Outcome is the result of translating one virtual address.
type Outcome struct {
	Virt   uint64 // Address translated
	Real   uint64 // Real address, valid only when Code is zero
	Source Source // How address was translated
	Arn    int    // Access register number used
	Code   Code   // Exception code, zero on success
	Prefix uint64 // Prefix to apply to Real
	Abs    uint64 // Absolute address, Real with prefix applied
	Guest  bool   // Real is a host address of a SIE guest
}

// Ok returns true if translation succeeded.
func (o Outcome) Ok() bool {
	return o.Code == CodeNone
}

// Err returns translation exception as an error.
func (o Outcome) Err() error {
	if o.Code == CodeNone {
		return nil
	}
	return &TranslationError{Addr: o.Virt, Code: o.Code}
}

// How returns text describing how address was translated.
func (o Outcome) How() string {
	switch o.Source {
	case SourceReal:
		return "(dat off)"
	case SourcePrimary:
		return "(primary)"
	case SourceSecondary:
		return "(secondary)"
	case SourceHome:
		return "(home)"
	}
	return fmt.Sprintf("(AR%02d)", o.Arn)
}

// Letter returns single character tag for source space.
func (o Outcome) Letter() byte {
	switch o.Source {
	case SourcePrimary:
		return 'P'
	case SourceSecondary:
		return 'S'
	case SourceHome:
		return 'H'
	case SourceAR:
		return 'V'
	}
	return 'R'
}

// Walks translation tables for one context.
type walker struct {
	ctx *Context
	st  *memory.Storage
	acc Access
}

// Translate converts vaddr to a real address using ctx. Working copies
// record the translation exception address, live contexts are left
// unmodified on failure. On success the reference bit of the absolute
// page is set.
func Translate(ctx *Context, st *memory.Storage, vaddr uint64, arn int, acc Access) Outcome {
	if !ctx.shadow {
		ctx.Lock()
		defer ctx.Unlock()
		if ctx.Host != nil && !ctx.Host.shadow {
			ctx.Host.Lock()
			defer ctx.Host.Unlock()
		}
	}

	out := translate(ctx, st, vaddr, arn, acc)
	if out.Code != CodeNone {
		if ctx.shadow {
			ctx.TEA = vaddr & ctx.Profile.PageMask()
			ctx.TEAArn = arn
			ctx.TEASource = out.Source
		}
		debug.Trace("CPU", debugMsk, debugDAT, "translation exception", logrus.Fields{
			"cpu":  ctx.Tag(),
			"addr": fmt.Sprintf("%X", vaddr),
			"code": fmt.Sprintf("%04X", uint16(out.Code)),
		})
		return out
	}
	p := ctx.Profile
	if out.Guest {
		p = ctx.Host.Profile
	}
	out.Abs = p.ApplyPrefix(out.Real, out.Prefix)
	if out.Source != SourceReal || out.Guest {
		st.Reference(out.Abs)
	}
	return out
}

// VirtToReal translates vaddr on a working copy of live.
func VirtToReal(pool *SnapshotPool, live *Context, st *memory.Storage, vaddr uint64, arn int, acc Access) (Outcome, error) {
	ctx, err := pool.Snapshot(live)
	if err != nil {
		return Outcome{Virt: vaddr, Arn: arn, Source: SourceReal}, err
	}
	defer pool.Release(ctx)
	return Translate(ctx, st, vaddr, arn, acc), nil
}

// Translate without locking.
func translate(ctx *Context, st *memory.Storage, vaddr uint64, arn int, acc Access) Outcome {
	out := Outcome{Virt: vaddr, Arn: arn, Source: SourceReal, Prefix: ctx.Prefix}
	w := &walker{ctx: ctx, st: st, acc: acc}

	if acc == AccessInstFetch {
		arn = useInstSpace
	}

	switch {
	case arn == UseAbsAddr:
		out.Real = vaddr
		out.Prefix = 0
	case ctx.RealMode() || arn == UseRealAddr:
		out.Real = vaddr
	default:
		asd, src, code := w.selectSpace(arn)
		out.Source = src
		if code != CodeNone {
			out.Code = code
			return out
		}
		raddr, code := w.lookup(asd, vaddr)
		if code != CodeNone {
			out.Code = code
			return out
		}
		out.Real = raddr
	}

	// Guest absolute address is a host primary virtual address.
	if ctx.Host != nil {
		host := ctx.Host
		gabs := out.Real
		if arn != UseAbsAddr {
			gabs = ctx.Profile.ApplyPrefix(out.Real, ctx.Prefix)
		}
		if gabs > ctx.SIELimit {
			out.Code = CodeAddressing
			return out
		}
		hout := translate(host, st, gabs+ctx.SIEOrigin, UsePrimarySpace, acc)
		if hout.Code != CodeNone {
			out.Code = hout.Code
			return out
		}
		out.Real = hout.Real
		out.Prefix = host.Prefix
		out.Guest = true
	}
	return out
}

// Pick address space designation for arn.
func (w *walker) selectSpace(arn int) (uint64, Source, Code) {
	ctx := w.ctx
	p := ctx.Profile
	home := func() (uint64, Source, Code) {
		if p.HomeSpace {
			return ctx.CR[13], SourceHome, CodeNone
		}
		return ctx.CR[1], SourcePrimary, CodeNone
	}

	switch arn {
	case useInstSpace:
		if ctx.PSW.ASC == ASCHome {
			return home()
		}
		return ctx.CR[1], SourcePrimary, CodeNone
	case UsePrimarySpace:
		return ctx.CR[1], SourcePrimary, CodeNone
	case UseSecondarySpace:
		return ctx.CR[7], SourceSecondary, CodeNone
	case UseHomeSpace:
		return home()
	}

	switch ctx.PSW.ASC {
	case ASCSecondary:
		return ctx.CR[7], SourceSecondary, CodeNone
	case ASCHome:
		return home()
	case ASCAccessReg:
		if p.ARMode {
			return w.art(arn)
		}
	}
	return ctx.CR[1], SourcePrimary, CodeNone
}

// Find real address, checking TLB of live contexts.
func (w *walker) lookup(asd uint64, vaddr uint64) (uint64, Code) {
	ctx := w.ctx
	p := ctx.Profile
	vpage := vaddr >> p.PageShift
	ent := &ctx.tlb[vpage%tlbSize]
	if !ctx.shadow && ent.valid && ent.asd == asd && ent.vpage == vpage {
		if w.acc == AccessWrite && ent.prot {
			return 0, CodeProtection
		}
		return ent.frame | (vaddr & p.ByteMask()), CodeNone
	}

	var raddr uint64
	var prot bool
	var code Code
	switch p.Mode {
	case arch.S370:
		raddr, code = w.walk370(asd, vaddr)
	case arch.S390:
		raddr, prot, code = w.walk390(asd, vaddr)
	case arch.Z900:
		raddr, prot, code = w.walk900(asd, vaddr)
	}
	if code != CodeNone {
		return 0, code
	}
	if w.acc == AccessWrite && prot {
		return 0, CodeProtection
	}
	if !ctx.shadow {
		*ent = tlbEntry{valid: true, asd: asd, vpage: vpage, frame: raddr &^ p.ByteMask(), prot: prot}
	}
	debug.Trace("CPU", debugMsk, debugDAT, "translate", logrus.Fields{
		"cpu":  ctx.Tag(),
		"asd":  fmt.Sprintf("%X", asd),
		"virt": fmt.Sprintf("%X", vaddr),
		"real": fmt.Sprintf("%X", raddr),
	})
	return raddr, CodeNone
}

// Convert table address to absolute.
func (w *walker) abs(raddr uint64) (uint64, Code) {
	ctx := w.ctx
	abs := ctx.Profile.ApplyPrefix(raddr, ctx.Prefix)
	if ctx.Host == nil {
		return abs, CodeNone
	}
	if abs > ctx.SIELimit {
		return 0, CodeAddressing
	}
	host := ctx.Host
	hout := translate(host, w.st, abs+ctx.SIEOrigin, UsePrimarySpace, AccessRead)
	if hout.Code != CodeNone {
		return 0, hout.Code
	}
	return host.Profile.ApplyPrefix(hout.Real, host.Prefix), CodeNone
}

// Fetch halfword table entry.
func (w *walker) half(raddr uint64) (uint16, Code) {
	addr, code := w.abs(raddr)
	if code != CodeNone {
		return 0, code
	}
	v, err := w.st.GetHalf(addr)
	if err != nil {
		return 0, CodeAddressing
	}
	return v, CodeNone
}

// Fetch word table entry.
func (w *walker) word(raddr uint64) (uint32, Code) {
	addr, code := w.abs(raddr)
	if code != CodeNone {
		return 0, code
	}
	v, err := w.st.GetWord(addr)
	if err != nil {
		return 0, CodeAddressing
	}
	return v, CodeNone
}

// Fetch doubleword table entry.
func (w *walker) double(raddr uint64) (uint64, Code) {
	addr, code := w.abs(raddr)
	if code != CodeNone {
		return 0, code
	}
	v, err := w.st.GetDouble(addr)
	if err != nil {
		return 0, CodeAddressing
	}
	return v, CodeNone
}

/*
 *     PS = 2K     page_shift = 11   pte_avail = 0x4  pte_mbz = 0x2 pte_shift = 3
 *     PS = 4K     page_shift = 12   pte_avail = 0x8  pte_mbz = 0x6 pte_shift = 4
 *
 *     SS = 64K    seg_shift = 16
 *     SS = 1M     seg_shift = 20, page table length in units of 16 entries
 */

// System/370 segment and page table walk.
func (w *walker) walk370(std uint64, vaddr uint64) (uint64, Code) {
	var pageShift, pteShift, lenShift, segShift uint
	var pteInval, pteMBZ uint16

	cr0 := w.ctx.CR[0]
	switch cr0 & cr0PageSize {
	case cr0Page2K:
		pageShift, pteShift, lenShift = 11, 3, 1
		pteInval, pteMBZ = 0x4, 0x2
	case cr0Page4K:
		pageShift, pteShift, lenShift = 12, 4, 0
		pteInval, pteMBZ = 0x8, 0x6
	default:
		return 0, CodeTransSpec
	}

	switch cr0 & cr0SegSize {
	case cr0Seg64K:
		segShift = 16
	case cr0Seg1M:
		segShift = 20
		lenShift += 4
	default:
		return 0, CodeTransSpec
	}

	vaddr &= 0x00ffffff
	sx := vaddr >> segShift
	px := (vaddr & ((1 << segShift) - 1)) >> pageShift

	// Check against length of segment table.
	if (sx >> 4) > (std&std370Length)>>24 {
		return 0, CodeSegment
	}

	ste, code := w.word((std & std370Origin) + (sx << 2))
	if code != CodeNone {
		return 0, code
	}
	if (ste & ste370Inval) != 0 {
		return 0, CodeSegment
	}
	if (px >> lenShift) > uint64(ste>>28) {
		return 0, CodePage
	}

	pte, code := w.half(uint64(ste&ste370Origin) + (px << 1))
	if code != CodeNone {
		return 0, code
	}
	if (pte & pteInval) != 0 {
		return 0, CodePage
	}
	if (pte & pteMBZ) != 0 {
		return 0, CodeTransSpec
	}
	frame := uint64(pte>>pteShift) << pageShift
	return frame | (vaddr & ((1 << pageShift) - 1)), CodeNone
}

// ESA/390 segment and page table walk.
func (w *walker) walk390(std uint64, vaddr uint64) (uint64, bool, Code) {
	vaddr &= 0x7fffffff
	sx := (vaddr >> 20) & 0x7ff
	px := (vaddr >> 12) & 0xff

	if (sx >> 4) > (std & std390Length) {
		return 0, false, CodeSegment
	}

	ste, code := w.word((std & std390Origin) + (sx << 2))
	if code != CodeNone {
		return 0, false, code
	}
	if (ste & ste390Inval) != 0 {
		return 0, false, CodeSegment
	}
	if (px >> 4) > uint64(ste&ste390Length) {
		return 0, false, CodePage
	}

	pte, code := w.word(uint64(ste&ste390Origin) + (px << 2))
	if code != CodeNone {
		return 0, false, code
	}
	if (pte & pte390Inval) != 0 {
		return 0, false, CodePage
	}
	if (pte & pte390Resv) != 0 {
		return 0, false, CodeTransSpec
	}
	return uint64(pte&pte390Frame) | (vaddr & 0xfff), (pte & pte390Prot) != 0, CodeNone
}

// z/Architecture region, segment and page table walk.
func (w *walker) walk900(asce uint64, vaddr uint64) (uint64, bool, Code) {
	if (asce & asceReal) != 0 {
		return vaddr, false, CodeNone
	}

	level := asce & asceDT
	switch level {
	case asceDTSeg:
		if (vaddr >> 31) != 0 {
			return 0, false, CodeASCEType
		}
	case asceDTRT:
		if (vaddr >> 42) != 0 {
			return 0, false, CodeASCEType
		}
	case asceDTRS:
		if (vaddr >> 53) != 0 {
			return 0, false, CodeASCEType
		}
	}

	origin := asce & asceOrigin
	offset, length := uint64(0), asce&asceTL
	prot := false

	for level != ttSegment {
		var idx uint64
		var exc Code
		switch level {
		case ttRegFirst:
			idx, exc = (vaddr>>53)&0x7ff, CodeRegionFirst
		case ttRegSecond:
			idx, exc = (vaddr>>42)&0x7ff, CodeRegionSecond
		default:
			idx, exc = (vaddr>>31)&0x7ff, CodeRegionThird
		}
		if (idx>>9) < offset || (idx>>9) > length {
			return 0, false, exc
		}
		rte, code := w.double(origin + (idx << 3))
		if code != CodeNone {
			return 0, false, code
		}
		if (rte & rteInval) != 0 {
			return 0, false, exc
		}
		if (rte & rteTT) != level {
			return 0, false, CodeTransSpec
		}
		prot = prot || (rte&rteProt) != 0
		origin = rte & rteOrigin
		offset = (rte & rteTF) >> 6
		length = rte & rteTL
		level -= 4
	}

	sx := (vaddr >> 20) & 0x7ff
	if (sx>>9) < offset || (sx>>9) > length {
		return 0, false, CodeSegment
	}
	ste, code := w.double(origin + (sx << 3))
	if code != CodeNone {
		return 0, false, code
	}
	if (ste & steZInval) != 0 {
		return 0, false, CodeSegment
	}
	if (ste & steZTT) != ttSegment {
		return 0, false, CodeTransSpec
	}
	prot = prot || (ste&steZProt) != 0

	px := (vaddr >> 12) & 0xff
	pte, code := w.double((ste & steZOrigin) + (px << 3))
	if code != CodeNone {
		return 0, false, code
	}
	if (pte & pteZInval) != 0 {
		return 0, false, CodePage
	}
	if (pte & pteZResv) != 0 {
		return 0, false, CodeTransSpec
	}
	prot = prot || (pte&pteZProt) != 0
	return (pte & pteZFrame) | (vaddr & 0xfff), prot, CodeNone
}
