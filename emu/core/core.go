/*
 * S370 - System core
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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/rcornwell/S370stor/emu/arch"
	"github.com/rcornwell/S370stor/emu/cpu"
	"github.com/rcornwell/S370stor/emu/memory"
)

// Messages sent to core.
const (
	Start = 1 + iota
	Stop
)

// Packet is a request to the core routine. Ack is closed once handled.
type Packet struct {
	Msg int
	Ack chan struct{}
}

var (
	ErrNoCPU     = errors.New("no such CPU")
	ErrNoHost    = errors.New("SIE host CPU not configured")
	ErrDuplicate = errors.New("CPU configured twice")
	ErrHostBusy  = errors.New("SIE host already has a guest")
)

// Core is the configured system: storage, CPUs and the working copy pool.
type Core struct {
	mu      sync.Mutex
	wg      sync.WaitGroup
	done    chan struct{} // Signal to shutdown.
	running bool          // CPUs are running.
	Master  chan Packet

	profile *arch.Profile
	storage *memory.Storage
	pool    *cpu.SnapshotPool
	cpus    []*cpu.Context // Host CPUs followed by SIE guests.
}

// New builds a core from settings.
func New(s *Settings) (*Core, error) {
	if s.Profile == nil {
		s.Profile = arch.Get(arch.S390)
	}
	core := &Core{
		Master:  make(chan Packet),
		done:    make(chan struct{}),
		profile: s.Profile,
		storage: memory.New(s.MainSize, s.Profile.KeyShift),
		pool:    cpu.NewSnapshotPool(s.Snapshots),
	}

	for n := range s.CPUs {
		core.cpus = append(core.cpus, cpu.NewContext(s.Profile, uint16(n)))
	}
	for _, cs := range s.CPU {
		ctx := core.find(cs.Addr)
		if ctx == nil {
			ctx = cpu.NewContext(s.Profile, cs.Addr)
			core.cpus = append(core.cpus, ctx)
		}
		applyCPU(ctx, &cs)
	}

	for _, ss := range s.SIE {
		if core.find(ss.Guest) != nil {
			return nil, fmt.Errorf("%w: %X", ErrDuplicate, ss.Guest)
		}
		host := core.find(ss.Host)
		if host == nil || host.Host != nil {
			return nil, fmt.Errorf("%w: %X", ErrNoHost, ss.Host)
		}
		if host.Guest != nil {
			return nil, fmt.Errorf("%w: %X", ErrHostBusy, ss.Host)
		}
		guest := cpu.NewContext(s.Profile, ss.Guest)
		guest.Host = host
		guest.SIEOrigin = ss.Origin
		guest.SIELimit = ss.Limit
		guest.Prefix = ss.Prefix & s.Profile.PrefixMask
		guest.PSW.DAT = ss.DAT
		for n, v := range ss.CR {
			guest.SetControl(n, v)
		}
		host.Guest = guest
		core.cpus = append(core.cpus, guest)
	}

	for _, ks := range s.Key {
		if err := core.storage.Check(ks.Addr, 1); err != nil {
			return nil, err
		}
		core.storage.SetKey(ks.Addr, ks.Value)
		if ks.Bad {
			core.storage.MarkBadFrame(ks.Addr)
		}
	}

	for _, ls := range s.Load {
		data, err := os.ReadFile(ls.File)
		if err != nil {
			return nil, err
		}
		if err := core.storage.Write(ls.Addr, data); err != nil {
			return nil, fmt.Errorf("load %s: %w", ls.File, err)
		}
		slog.Info(fmt.Sprintf("Loaded %s at %X, %d bytes", ls.File, ls.Addr, len(data)))
	}

	if s.AutoStart {
		core.setRunning(true)
	}
	core.wg.Add(1)
	return core, nil
}

// Copy initial CPU state into context.
func applyCPU(ctx *cpu.Context, cs *CPUSettings) {
	ctx.Prefix = cs.Prefix & ctx.Profile.PrefixMask
	ctx.PSW.DAT = cs.DAT
	ctx.PSW.ASC = cs.ASC
	ctx.PSW.IA = cs.IA
	ctx.PSW.Key = cs.Key
	if cs.AMode != 0 {
		ctx.PSW.AMode = cs.AMode
	}
	for n, v := range cs.GR {
		ctx.GR[n&0xf] = v
	}
	for n, v := range cs.CR {
		ctx.SetControl(n, v)
	}
	for n, v := range cs.AR {
		ctx.AR[n&0xf] = v
	}
}

func (core *Core) find(addr uint16) *cpu.Context {
	for _, ctx := range core.cpus {
		if ctx.CPUAddr == addr {
			return ctx
		}
	}
	return nil
}

// Profile returns architecture of system.
func (core *Core) Profile() *arch.Profile {
	return core.profile
}

// Storage returns main storage.
func (core *Core) Storage() *memory.Storage {
	return core.storage
}

// Snapshots returns pool of CPU working copies.
func (core *Core) Snapshots() *cpu.SnapshotPool {
	return core.pool
}

// CPU returns context of CPU addr.
func (core *Core) CPU(addr uint16) (*cpu.Context, error) {
	if ctx := core.find(addr); ctx != nil {
		return ctx, nil
	}
	return nil, fmt.Errorf("%w: %X", ErrNoCPU, addr)
}

// CPUs returns all contexts ordered by address, guests last.
func (core *Core) CPUs() []*cpu.Context {
	list := slices.Clone(core.cpus)
	slices.SortStableFunc(list, func(a, b *cpu.Context) int {
		if a.SIEMode() != b.SIEMode() {
			if a.SIEMode() {
				return 1
			}
			return -1
		}
		return int(a.CPUAddr) - int(b.CPUAddr)
	})
	return list
}

// IsRunning reports whether CPUs are running.
func (core *Core) IsRunning() bool {
	core.mu.Lock()
	defer core.mu.Unlock()
	return core.running
}

// Start core routine.
func (core *Core) Start() {
	defer core.wg.Done()
	for {
		select {
		case <-core.done:
			core.setRunning(false)
			return
		case packet := <-core.Master:
			core.processPacket(packet)
		}
	}
}

// Stop core routine.
func (core *Core) Stop() {
	slog.Info("Shutting down CPU")
	close(core.done)
	done := make(chan struct{})
	go func() {
		core.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return
	case <-time.After(time.Second):
		slog.Warn("Timed out waiting for CPU to finish.")
		return
	}
}

// Start CPUs.
func (core *Core) SendStart() {
	core.send(Start)
}

// Stop CPUs.
func (core *Core) SendStop() {
	core.send(Stop)
}

// Send packet and wait for it to be handled.
func (core *Core) send(msg int) {
	packet := Packet{Msg: msg, Ack: make(chan struct{})}
	select {
	case core.Master <- packet:
		<-packet.Ack
	case <-core.done:
	}
}

// Process a packet sent to core.
func (core *Core) processPacket(packet Packet) {
	switch packet.Msg {
	case Start:
		core.setRunning(true)
	case Stop:
		core.setRunning(false)
	}
	if packet.Ack != nil {
		close(packet.Ack)
	}
}

// Mark every CPU running or stopped.
func (core *Core) setRunning(running bool) {
	core.mu.Lock()
	core.running = running
	core.mu.Unlock()
	for _, ctx := range core.cpus {
		ctx.Lock()
		ctx.Running = running
		ctx.Unlock()
	}
}
