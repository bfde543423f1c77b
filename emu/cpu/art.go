/*
 * S370 - Access register translation.
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
	"fmt"

	"github.com/rcornwell/S370stor/util/debug"
	"github.com/sirupsen/logrus"
)

// Translate access register arn to an address space designation.
func (w *walker) art(arn int) (uint64, Source, Code) {
	ctx := w.ctx
	alet := uint32(0)
	if arn > 0 {
		alet = ctx.AR[arn&0xf]
	}

	switch alet {
	case 0:
		return ctx.CR[1], SourcePrimary, CodeNone
	case 1:
		return ctx.CR[7], SourceSecondary, CodeNone
	}

	if (alet & aletReserved) != 0 {
		return 0, SourceAR, CodeALETSpec
	}

	// Locate effective access list designation.
	var ald uint32
	var code Code
	if (alet & aletPrimary) != 0 {
		ald, code = w.word((ctx.CR[5] & cr5PASTEO) + asteALD)
	} else {
		ald, code = w.word((ctx.CR[2] & cr2DUCTO) + ductALD)
	}
	if code != CodeNone {
		return 0, SourceAR, code
	}

	// Access list is in units of 8 entries.
	alen := alet & aletALEN
	if (alen >> 3) > (ald & aldLength) {
		return 0, SourceAR, CodeALENTrans
	}

	aleo := uint64(ald&aldOrigin) + (uint64(alen) << 4)
	ale, code := w.word(aleo)
	if code != CodeNone {
		return 0, SourceAR, code
	}
	if (ale & aleInval) != 0 {
		return 0, SourceAR, CodeALENTrans
	}
	if (ale & aleALESN) != (alet & aletALESN) {
		return 0, SourceAR, CodeALESequence
	}
	if w.acc == AccessWrite && (ale&aleFetchOnly) != 0 {
		return 0, SourceAR, CodeProtection
	}

	asteo, code := w.word(aleo + aleASTE)
	if code != CodeNone {
		return 0, SourceAR, code
	}
	aleSeq, code := w.word(aleo + aleASTESN)
	if code != CodeNone {
		return 0, SourceAR, code
	}

	base := uint64(asteo & aleASTEO)
	aste, code := w.word(base)
	if code != CodeNone {
		return 0, SourceAR, code
	}
	if (aste & asteInval) != 0 {
		return 0, SourceAR, CodeASTEValidity
	}
	seq, code := w.word(base + asteASTESN)
	if code != CodeNone {
		return 0, SourceAR, code
	}
	if seq != aleSeq {
		return 0, SourceAR, CodeASTESequence
	}

	var asd uint64
	if ctx.Profile.Regions {
		asd, code = w.double(base + asteSTD)
	} else {
		var std uint32
		std, code = w.word(base + asteSTD)
		asd = uint64(std)
	}
	if code != CodeNone {
		return 0, SourceAR, code
	}
	debug.Trace("CPU", debugMsk, debugART, "access register", logrus.Fields{
		"cpu":  ctx.Tag(),
		"ar":   arn,
		"alet": fmt.Sprintf("%08X", alet),
		"asd":  fmt.Sprintf("%X", asd),
	})
	return asd, SourceAR, CodeNone
}
