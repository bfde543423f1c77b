/*
 * S370 - CPU working copies.
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
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rcornwell/S370stor/emu/arch"
	"github.com/rcornwell/S370stor/util/debug"
)

func TestSnapshotCopy(t *testing.T) {
	live := NewContext(arch.Get(arch.S390), 1)
	live.GR[5] = 0x55
	live.CR[1] = 0x1000
	live.PSW.IA = 0x2000
	live.tlb[3] = tlbEntry{valid: true, asd: 0x1000, vpage: 3, frame: 0x7000}
	pool := NewSnapshotPool(0)

	work, err := pool.Snapshot(live)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if diff := cmp.Diff(live.Regs, work.Regs); diff != "" {
		t.Errorf("Snapshot registers differ (-live +copy):\n%s", diff)
	}
	if work.Executable() {
		t.Errorf("Working copy is executable")
	}
	if !live.Executable() || live.Shadow() {
		t.Errorf("Live context not executable")
	}
	if work.tlb[3].valid {
		t.Errorf("Working copy TLB not empty")
	}

	work.GR[5] = 0x99
	work.TEA = 0x1000
	if live.GR[5] != 0x55 || live.TEA != 0 {
		t.Errorf("Live context changed got: %x %x expected: %x %x", live.GR[5], live.TEA, 0x55, 0)
	}
	if !live.tlb[3].valid {
		t.Errorf("Live TLB purged by snapshot")
	}
	if pool.Outstanding() != 1 {
		t.Errorf("Outstanding got: %d expected: %d", pool.Outstanding(), 1)
	}
	pool.Release(work)
	if pool.Outstanding() != 0 {
		t.Errorf("Outstanding got: %d expected: %d", pool.Outstanding(), 0)
	}
}

func TestSnapshotGuest(t *testing.T) {
	host := NewContext(arch.Get(arch.Z900), 0)
	guest := NewContext(arch.Get(arch.S390), 0)
	guest.Host = host
	host.Guest = guest
	host.GR[1] = 0x11
	guest.GR[1] = 0x22
	pool := NewSnapshotPool(0)

	work, err := pool.Snapshot(guest)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if work.Host == nil || work.Host == host {
		t.Fatalf("Guest copy not linked to host copy")
	}
	if work.Host.Guest != work {
		t.Errorf("Host copy not linked back to guest copy")
	}
	if work.Host.GR[1] != 0x11 || work.GR[1] != 0x22 {
		t.Errorf("Copy registers got: %x %x expected: %x %x", work.Host.GR[1], work.GR[1], 0x11, 0x22)
	}
	if work.Host.Executable() {
		t.Errorf("Host copy is executable")
	}
	if host.Guest != guest || guest.Host != host {
		t.Errorf("Live links changed")
	}
	if pool.Outstanding() != 2 {
		t.Errorf("Outstanding got: %d expected: %d", pool.Outstanding(), 2)
	}
	pool.Release(work)
	if pool.Outstanding() != 0 {
		t.Errorf("Outstanding got: %d expected: %d", pool.Outstanding(), 0)
	}
}

func TestSnapshotExhausted(t *testing.T) {
	live := NewContext(arch.Get(arch.S370), 0)
	pool := NewSnapshotPool(2)
	first, err := pool.Snapshot(live)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	second, err := pool.Snapshot(live)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if _, err = pool.Snapshot(live); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("Snapshot over limit got: %v expected: %v", err, ErrNoSnapshot)
	}
	if _, err = VirtToReal(pool, live, nil, 0, 0, AccessHW); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("VirtToReal over limit got: %v expected: %v", err, ErrNoSnapshot)
	}
	pool.Release(first)
	if _, err = pool.Snapshot(live); err != nil {
		t.Errorf("Snapshot after release failed: %v", err)
	}

	// Guest needs two slots.
	pool.Release(second)
	guest := NewContext(arch.Get(arch.S370), 1)
	guest.Host = live
	_, _ = pool.Snapshot(live)
	if _, err = pool.Snapshot(guest); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("Guest snapshot got: %v expected: %v", err, ErrNoSnapshot)
	}
}

// Host link may change while copies are taken.
func TestSnapshotHostChange(t *testing.T) {
	host := NewContext(arch.Get(arch.S390), 0)
	guest := NewContext(arch.Get(arch.S390), 1)
	pool := NewSnapshotPool(0)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range 1000 {
			guest.Lock()
			if i%2 == 0 {
				guest.Host = host
			} else {
				guest.Host = nil
			}
			guest.Unlock()
		}
	}()
	for range 1000 {
		work, err := pool.Snapshot(guest)
		if err != nil {
			t.Fatalf("Snapshot failed: %v", err)
		}
		expected := 1
		if work.Host != nil {
			expected = 2
		}
		if n := pool.Outstanding(); n != expected {
			t.Errorf("Outstanding got: %d expected: %d", n, expected)
		}
		pool.Release(work)
	}
	<-done
}

func TestSnapshotReleaseUnknown(t *testing.T) {
	pool := NewSnapshotPool(0)
	live := NewContext(arch.Get(arch.S370), 0)
	work, _ := pool.Snapshot(live)
	pool.Release(nil)
	pool.Release(live)
	if pool.Outstanding() != 1 {
		t.Errorf("Outstanding got: %d expected: %d", pool.Outstanding(), 1)
	}
	pool.Release(work)
	pool.Release(work)
	if pool.Outstanding() != 0 {
		t.Errorf("Outstanding got: %d expected: %d", pool.Outstanding(), 0)
	}
}

func TestSnapshotDebug(t *testing.T) {
	var buf bytes.Buffer
	debug.SetOutput(&buf)
	defer debug.SetOutput(io.Discard)
	saved := debugMsk
	debugMsk = debugSnapshot
	defer func() { debugMsk = saved }()

	pool := NewSnapshotPool(1)
	live := NewContext(arch.Get(arch.S390), 1)
	work, err := pool.Snapshot(live)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if _, err := pool.Snapshot(live); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("Snapshot over limit got: %v expected: %v", err, ErrNoSnapshot)
	}
	pool.Release(work)
	out := buf.String()
	for _, msg := range []string{"CP01 copied, 1 in use", "CP01 no working copy, 1 of 1 in use"} {
		if !strings.Contains(out, msg) {
			t.Errorf("Debug output missing %q got: %s", msg, out)
		}
	}
}
