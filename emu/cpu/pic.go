/*
 * S370 - Program interruption names.
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

var picNames = [...]string{
	"Operation exception",                    // 01
	"Privileged-operation exception",         // 02
	"Execute exception",                      // 03
	"Protection exception",                   // 04
	"Addressing exception",                   // 05
	"Specification exception",                // 06
	"Data exception",                         // 07
	"Fixed-point-overflow exception",         // 08
	"Fixed-point-divide exception",           // 09
	"Decimal-overflow exception",             // 0A
	"Decimal-divide exception",               // 0B
	"HFP-exponent-overflow exception",        // 0C
	"HFP-exponent-underflow exception",       // 0D
	"HFP-significance exception",             // 0E
	"HFP-floating-point-divide exception",    // 0F
	"Segment-translation exception",          // 10
	"Page-translation exception",             // 11
	"Translation-specification exception",    // 12
	"Special-operation exception",            // 13
	"Pseudo-page-fault exception",            // 14
	"Operand exception",                      // 15
	"Trace-table exception",                  // 16
	"ASN-translation exception",              // 17
	"Transaction constraint exception",       // 18
	"Vector/Crypto operation exception",      // 19
	"Page state exception",                   // 1A
	"Vector processing exception",            // 1B
	"Space-switch event",                     // 1C
	"Square-root exception",                  // 1D
	"Unnormalized-operand exception",         // 1E
	"PC-translation specification exception", // 1F
	"AFX-translation exception",              // 20
	"ASX-translation exception",              // 21
	"LX-translation exception",               // 22
	"EX-translation exception",               // 23
	"Primary-authority exception",            // 24
	"Secondary-authority exception",          // 25
	"LFX-translation exception",              // 26
	"LSX-translation exception",              // 27
	"ALET-specification exception",           // 28
	"ALEN-translation exception",             // 29
	"ALE-sequence exception",                 // 2A
	"ASTE-validity exception",                // 2B
	"ASTE-sequence exception",                // 2C
	"Extended-authority exception",           // 2D
	"LSTE-sequence exception",                // 2E
	"ASTE-instance exception",                // 2F
	"Stack-full exception",                   // 30
	"Stack-empty exception",                  // 31
	"Stack-specification exception",          // 32
	"Stack-type exception",                   // 33
	"Stack-operation exception",              // 34
	"Unassigned exception",                   // 35
	"Unassigned exception",                   // 36
	"Unassigned exception",                   // 37
	"ASCE-type exception",                    // 38
	"Region-first-translation exception",     // 39
	"Region-second-translation exception",    // 3A
	"Region-third-translation exception",     // 3B
	"Unassigned exception",                   // 3C
	"Unassigned exception",                   // 3D
	"Unassigned exception",                   // 3E
	"Unassigned exception",                   // 3F
	"Monitor event",                          // 40
}

// PICName returns name of program interruption code. PER and other
// flags in the high byte are ignored.
func PICName(code Code) string {
	n := int(code & codeInterruptMask)
	if n < 1 || n > len(picNames) {
		return "Unassigned exception"
	}
	return picNames[n-1]
}
