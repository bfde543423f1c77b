/*
 * S370 - Console command session
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

package command

import (
	"fmt"
	"io"
	"sync"

	"github.com/rcornwell/S370stor/emu/core"
	"github.com/rcornwell/S370stor/emu/cpu"
	"github.com/rcornwell/S370stor/emu/storview"
)

// Session is the state a console keeps between commands.
type Session struct {
	mu      sync.Mutex
	Core    *core.Core
	Out     io.Writer
	Console *storview.Console
	cpuAddr uint16 // Selected CPU
}

// NewSession creates a session writing to out with the lowest CPU selected.
func NewSession(c *core.Core, out io.Writer) *Session {
	s := &Session{Core: c, Out: out, Console: storview.NewConsole(out)}
	if list := c.CPUs(); len(list) != 0 {
		s.cpuAddr = list[0].CPUAddr
	}
	s.setTag()
	return s
}

// Messages carry the CPU tag only when there is a choice of CPU.
func (s *Session) setTag() {
	tag := ""
	if len(s.Core.CPUs()) > 1 {
		if ctx, err := s.Core.CPU(s.cpuAddr); err == nil {
			tag = ctx.Tag()
		}
	}
	s.Console.SetTag(tag)
}

// Live returns context of selected CPU.
func (s *Session) Live() (*cpu.Context, error) {
	s.mu.Lock()
	addr := s.cpuAddr
	s.mu.Unlock()
	return s.Core.CPU(addr)
}

// Select makes CPU addr the target of following commands.
func (s *Session) Select(addr uint16) error {
	if _, err := s.Core.CPU(addr); err != nil {
		return err
	}
	s.mu.Lock()
	s.cpuAddr = addr
	s.mu.Unlock()
	s.setTag()
	return nil
}

// Selected returns address of selected CPU.
func (s *Session) Selected() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cpuAddr
}

// Println writes a line of plain output.
func (s *Session) Println(a ...interface{}) {
	fmt.Fprintln(s.Out, a...)
}
