/*
 * S370 - CPU register context.
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
	"sync"

	"github.com/rcornwell/S370stor/emu/arch"
	"github.com/rcornwell/S370stor/util/hex"
)

// PSW holds the fields of the program status word that matter for
// address translation and display.
type PSW struct {
	DAT     bool   // Dynamic address translation on
	ASC     ASC    // Address space control
	AMode   uint8  // Addressing mode 24, 31 or 64
	IA      uint64 // Instruction address
	Key     uint8  // Storage protection key
	Problem bool   // Problem state
	Wait    bool   // Wait state
	CC      uint8  // Condition code
	ProgMsk uint8  // Program mask
}

// Regs is the architected state of one processor.
type Regs struct {
	Profile   *arch.Profile // Architecture of CPU
	CPUAddr   uint16        // CPU address
	PSW       PSW           // Current PSW
	GR        [16]uint64    // General registers
	CR        [16]uint64    // Control registers
	AR        [16]uint32    // Access registers
	FPR       [16]uint64    // Floating point registers
	FPC       uint32        // Floating point control
	Prefix    uint64        // Prefix register
	TEA       uint64        // Translation exception address
	TEAArn    int           // Access register of exception
	TEASource Source        // Space used for exception
	SIEOrigin uint64        // Guest storage origin in host
	SIELimit  uint64        // Highest guest absolute address
	Host      *Context      // Host context of SIE guest
	Guest     *Context      // Guest context of SIE host
	Running   bool          // CPU is executing instructions
	Name      string        // Identifier used in messages
}

type tlbEntry struct {
	valid bool
	asd   uint64 // Designation used for translation
	vpage uint64 // Virtual page
	frame uint64 // Real page frame
	prot  bool   // Page is protected
}

const tlbSize = 256

// Context is a CPU as seen by the storage display and translation code.
type Context struct {
	Regs
	mu     sync.Mutex
	shadow bool
	tlb    [tlbSize]tlbEntry
}

// NewContext creates a context for CPU addr.
func NewContext(profile *arch.Profile, addr uint16) *Context {
	ctx := &Context{}
	ctx.Profile = profile
	ctx.CPUAddr = addr
	ctx.PSW.AMode = 24
	if profile.Mode == arch.Z900 {
		ctx.PSW.AMode = 64
	} else if profile.Mode == arch.S390 {
		ctx.PSW.AMode = 31
	}
	ctx.SIELimit = profile.MaxAddr
	return ctx
}

// Lock holds context against updates.
func (c *Context) Lock() {
	c.mu.Lock()
}

// Unlock releases context.
func (c *Context) Unlock() {
	c.mu.Unlock()
}

// Executable reports whether the context may run instructions.
// Working copies never do.
func (c *Context) Executable() bool {
	return !c.shadow
}

// Shadow reports whether context is a working copy.
func (c *Context) Shadow() bool {
	return c.shadow
}

// PurgeTLB clears translation lookaside buffer.
func (c *Context) PurgeTLB() {
	c.tlb = [tlbSize]tlbEntry{}
}

// RealMode returns true if DAT is off.
func (c *Context) RealMode() bool {
	return !c.PSW.DAT
}

// SIEMode returns true if context is a SIE guest.
func (c *Context) SIEMode() bool {
	return c.Host != nil
}

// Tag returns message prefix for context.
func (c *Context) Tag() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Profile.CPUPrefix + hex.Value(uint64(c.CPUAddr), 2)
}

// SetControl loads CRn and purges the TLB like a load control would.
func (c *Context) SetControl(n int, value uint64) {
	c.Lock()
	c.CR[n&0xf] = value
	c.PurgeTLB()
	c.Unlock()
}
