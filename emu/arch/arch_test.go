/*
 * S370 - Architecture profiles.
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

package arch

import (
	"testing"
)

// Check prefixing swaps both areas.
func TestApplyPrefix(t *testing.T) {
	p := Get(S390)
	prefix := uint64(0x5000)

	tests := []struct {
		real uint64
		abs  uint64
	}{
		{0x0000, 0x5000},
		{0x0fff, 0x5fff},
		{0x5000, 0x0000},
		{0x5123, 0x0123},
		{0x1000, 0x1000},
		{0x4fff, 0x4fff},
		{0x6000, 0x6000},
	}
	for _, test := range tests {
		r := p.ApplyPrefix(test.real, prefix)
		if r != test.abs {
			t.Errorf("ApplyPrefix %x not correct got: %x expected: %x", test.real, r, test.abs)
		}
	}
}

// Prefixing is a pure function and undoes itself.
func TestApplyPrefixPure(t *testing.T) {
	for _, mode := range []Mode{S370, S390, Z900} {
		p := Get(mode)
		for _, prefix := range []uint64{0, 0x2000, 0x7e000, 0x10000} {
			for addr := uint64(0); addr < 0x20000; addr += 0x7ff {
				a1 := p.ApplyPrefix(addr, prefix)
				a2 := p.ApplyPrefix(addr, prefix)
				if a1 != a2 {
					t.Errorf("%s ApplyPrefix %x not stable got: %x and %x", p.Name, addr, a1, a2)
				}
				if back := p.ApplyPrefix(a1, prefix); back != addr {
					t.Errorf("%s ApplyPrefix %x not reversible got: %x", p.Name, addr, back)
				}
			}
		}
	}
}

// z/Arch prefix area is 8K.
func TestApplyPrefixZ(t *testing.T) {
	p := Get(Z900)
	r := p.ApplyPrefix(0x1800, 0x20000)
	if r != 0x21800 {
		t.Errorf("ApplyPrefix not correct got: %x expected: %x", r, 0x21800)
	}
	r = p.ApplyPrefix(0x2000, 0x20000)
	if r != 0x2000 {
		t.Errorf("ApplyPrefix not correct got: %x expected: %x", r, 0x2000)
	}
}

func TestLookup(t *testing.T) {
	p, err := Lookup("390")
	if err != nil || p.Mode != S390 {
		t.Errorf("Lookup 390 failed")
	}
	p, err = Lookup("z/arch")
	if err != nil || p.AddrWidth != 64 {
		t.Errorf("Lookup z/arch failed")
	}
	_, err = Lookup("360")
	if err == nil {
		t.Errorf("Lookup 360 did not fail")
	}
	if Get(S370).PageSize() != 2048 {
		t.Errorf("S370 page size got: %d expected: %d", Get(S370).PageSize(), 2048)
	}
}
