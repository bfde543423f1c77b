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
	"errors"
	"sync"

	"github.com/rcornwell/S370stor/util/debug"
)

// DefaultSnapshots is number of working copies that may be outstanding.
const DefaultSnapshots = 16

var ErrNoSnapshot = errors.New("no storage for working copy of CPU")

// SnapshotPool hands out working copies of live CPU contexts.
type SnapshotPool struct {
	mu    sync.Mutex
	limit int
	inUse map[*Context]*Context // Snapshot to its linked partner or nil
}

// NewSnapshotPool creates a pool allowing limit outstanding copies.
func NewSnapshotPool(limit int) *SnapshotPool {
	if limit <= 0 {
		limit = DefaultSnapshots
	}
	return &SnapshotPool{limit: limit, inUse: make(map[*Context]*Context)}
}

// Outstanding returns number of copies not yet released.
func (p *SnapshotPool) Outstanding() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.inUse)
}

// Copy one context. Caller holds live lock.
func copyContext(live *Context) *Context {
	ctx := &Context{Regs: live.Regs}
	ctx.shadow = true
	ctx.Host = nil
	ctx.Guest = nil
	return ctx
}

// Snapshot returns a working copy of live. The copy has an empty TLB and
// is never executable. A SIE guest is copied together with its host and
// the two copies are linked to each other.
func (p *SnapshotPool) Snapshot(live *Context) (*Context, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	live.Lock()
	ctx := copyContext(live)
	host := live.Host
	live.Unlock()

	need := 1
	if host != nil {
		need = 2
	}
	if len(p.inUse)+need > p.limit {
		debug.Debugf("CPU", debugMsk, debugSnapshot, "%s no working copy, %d of %d in use",
			ctx.Tag(), len(p.inUse), p.limit)
		return nil, ErrNoSnapshot
	}

	var hostCopy *Context
	if host != nil {
		host.Lock()
		hostCopy = copyContext(host)
		host.Unlock()
		ctx.Host = hostCopy
		hostCopy.Guest = ctx
	}
	p.inUse[ctx] = hostCopy
	if hostCopy != nil {
		p.inUse[hostCopy] = ctx
	}
	debug.Debugf("CPU", debugMsk, debugSnapshot, "%s copied, %d in use", ctx.Tag(), len(p.inUse))
	return ctx, nil
}

// Release returns a working copy and its linked partner to the pool.
func (p *SnapshotPool) Release(ctx *Context) {
	if ctx == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	partner, ok := p.inUse[ctx]
	if !ok {
		return
	}
	delete(p.inUse, ctx)
	if partner != nil {
		delete(p.inUse, partner)
	}
}
