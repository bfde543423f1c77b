/*
 * S370 - System configuration settings
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

package core

import (
	"github.com/rcornwell/S370stor/emu/arch"
	"github.com/rcornwell/S370stor/emu/cpu"
)

// CPUSettings is the initial state of one CPU.
type CPUSettings struct {
	Addr   uint16
	Prefix uint64
	DAT    bool
	ASC    cpu.ASC
	AMode  uint8 // Zero for architecture default
	IA     uint64
	Key    uint8
	GR     map[int]uint64
	CR     map[int]uint64
	AR     map[int]uint32
}

// SIESettings attaches a guest CPU to a host CPU.
type SIESettings struct {
	Guest  uint16
	Host   uint16
	Origin uint64 // Guest absolute zero in host primary space
	Limit  uint64 // Highest guest absolute address
	Prefix uint64
	DAT    bool
	CR     map[int]uint64
}

// LoadSettings copies a file into storage.
type LoadSettings struct {
	Addr uint64
	File string
}

// KeySettings sets a storage key.
type KeySettings struct {
	Addr  uint64
	Value uint8
	Bad   bool // Mark frame as bad.
}

// Settings collects everything needed to build a Core.
type Settings struct {
	Profile   *arch.Profile
	MainSize  uint64
	CPUs      int
	Snapshots int
	CPU       []CPUSettings
	SIE       []SIESettings
	Load      []LoadSettings
	Key       []KeySettings
	AutoStart bool // CPUs running once configured.
}

// DefaultSettings returns a single ESA/390 CPU with 1M of storage.
func DefaultSettings() *Settings {
	return &Settings{
		Profile:   arch.Get(arch.S390),
		MainSize:  1024 * 1024,
		CPUs:      1,
		Snapshots: cpu.DefaultSnapshots,
	}
}

// CPUByAddr returns settings for CPU addr, creating them if needed.
func (s *Settings) CPUByAddr(addr uint16) *CPUSettings {
	for i := range s.CPU {
		if s.CPU[i].Addr == addr {
			return &s.CPU[i]
		}
	}
	s.CPU = append(s.CPU, CPUSettings{
		Addr: addr,
		GR:   map[int]uint64{},
		CR:   map[int]uint64{},
		AR:   map[int]uint32{},
	})
	return &s.CPU[len(s.CPU)-1]
}
