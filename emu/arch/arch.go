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
	"errors"
	"strings"
)

// Mode selects one of the three supported architectures.
type Mode int

const (
	S370 Mode = iota // System/370
	S390             // ESA/390
	Z900             // z/Architecture
)

// Profile holds everything that differs between architectures for
// address translation and storage display.
type Profile struct {
	Mode       Mode
	Name       string // Name used in messages and configuration.
	AddrWidth  int    // Width of an address in bits for display, 32 or 64.
	MaxAddr    uint64 // Highest address accepted by range operands.
	PageShift  uint   // Log2 of page frame size.
	KeyShift   uint   // Log2 of storage key frame size.
	PrefixMask uint64 // Mask selecting the prefix area frame.
	ARMode     bool   // Access register mode available.
	HomeSpace  bool   // Home address space available.
	Regions    bool   // Region tables (64 bit ASCE).
	CPUPrefix  string // Prefix for CPU identifier in messages.
}

var profiles = [...]Profile{
	S370: {
		Mode:       S370,
		Name:       "S/370",
		AddrWidth:  32,
		MaxAddr:    0x00ffffff,
		PageShift:  11,
		KeyShift:   11,
		PrefixMask: 0x7ffff000,
		CPUPrefix:  "CP",
	},
	S390: {
		Mode:       S390,
		Name:       "ESA/390",
		AddrWidth:  32,
		MaxAddr:    0x7fffffff,
		PageShift:  12,
		KeyShift:   12,
		PrefixMask: 0x7ffff000,
		ARMode:     true,
		HomeSpace:  true,
		CPUPrefix:  "CP",
	},
	Z900: {
		Mode:       Z900,
		Name:       "z/Arch",
		AddrWidth:  64,
		MaxAddr:    0xffffffffffffffff,
		PageShift:  12,
		KeyShift:   12,
		PrefixMask: 0xffffffffffffe000,
		ARMode:     true,
		HomeSpace:  true,
		Regions:    true,
		CPUPrefix:  "CP",
	},
}

var ErrUnknownArch = errors.New("unknown architecture")

// Get returns profile for mode.
func Get(mode Mode) *Profile {
	p := profiles[mode]
	return &p
}

// Lookup converts configuration name into a profile.
func Lookup(name string) (*Profile, error) {
	switch strings.ToUpper(name) {
	case "370", "S370", "S/370":
		return Get(S370), nil
	case "390", "S390", "ESA390", "ESA/390":
		return Get(S390), nil
	case "900", "Z900", "ZARCH", "Z/ARCH":
		return Get(Z900), nil
	}
	return nil, ErrUnknownArch
}

// PageSize returns size of a page frame in bytes.
func (p *Profile) PageSize() uint64 {
	return 1 << p.PageShift
}

// PageMask returns mask that selects the page frame of an address.
func (p *Profile) PageMask() uint64 {
	return ^(p.PageSize() - 1)
}

// ByteMask returns mask of byte index within page.
func (p *Profile) ByteMask() uint64 {
	return p.PageSize() - 1
}

// ApplyPrefix converts a real address to an absolute address.
// Addresses in the low prefix area and addresses in the area designated
// by prefix are swapped; all others are returned unchanged.
func (p *Profile) ApplyPrefix(addr, prefix uint64) uint64 {
	area := addr & p.PrefixMask
	if area == 0 || area == prefix&p.PrefixMask {
		return addr ^ (prefix & p.PrefixMask)
	}
	return addr
}

// AddrDigits returns number of hex digits used to display an address.
func (p *Profile) AddrDigits() int {
	return p.AddrWidth / 4
}
