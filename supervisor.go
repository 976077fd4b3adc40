// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zio

import "sync"

// daemonRegistry is the process-wide set of daemon fibers (forked with
// ForkDaemon or under a daemon mask) and root fibers, tracked outside any
// parent's children map so they survive their parent's
// own completion (spec.md §4.G "a daemon fiber is never a target of
// ancestor-propagated interruption").
var daemonRegistry = struct {
	mu sync.Mutex
	m  map[FiberID]*fiberContext
}{m: make(map[FiberID]*fiberContext)}

func registerDaemon(c *fiberContext) {
	daemonRegistry.mu.Lock()
	daemonRegistry.m[c.id] = c
	daemonRegistry.mu.Unlock()
}

func unregisterDaemon(id FiberID) {
	daemonRegistry.mu.Lock()
	delete(daemonRegistry.m, id)
	daemonRegistry.mu.Unlock()
}

// registerChild adds child under parent's supervision, or the global daemon
// registry if child is a daemon (spec.md §4.G fork bookkeeping).
func registerChild(parent, child *fiberContext) {
	if child.daemon || parent == nil {
		registerDaemon(child)
		return
	}
	parent.childrenMu.Lock()
	parent.children[child.id] = child
	parent.childrenMu.Unlock()
}

// unregisterChild removes child from its parent's (or the daemon registry's)
// bookkeeping once it has terminated.
func unregisterChild(parent, child *fiberContext) {
	if child.daemon || parent == nil {
		unregisterDaemon(child.id)
		return
	}
	parent.childrenMu.Lock()
	delete(parent.children, child.id)
	parent.childrenMu.Unlock()
}

// interruptFiber requests interruption of target, attributed to from, and
// recursively propagates the same interruption to the snapshot of target's
// non-daemon children taken at this call (spec.md §4.G: interrupting a
// fiber interrupts its supervised descendants, but never its daemons).
// This is the push half of ancestor-interruption delivery: it wakes
// already-suspended descendants immediately rather than waiting for their
// next scheduling turn. It is deliberately a snapshot, not a lock held
// across the whole subtree, so it cannot itself observe a child forked a
// moment later by a fiber already in the snapshot; that race is closed by
// the pull half, interpreter.go's effectiveInterrupt, which every fiber
// consults at the start of each turn by walking its own parent chain — so
// a fiber forked just after this snapshot still inherits the interruption
// via its parent's (now-updated) state, without ever needing to have been
// walked here.
func interruptFiber(target *fiberContext, from FiberID) {
	ph := target.state.addInterrupt(InterruptCause(from))
	if ph == phaseDone {
		return
	}
	target.resumeMu.Lock()
	fn := target.resumeFn
	target.resumeMu.Unlock()
	if fn != nil {
		rec := target.state.load()
		if rec.ph == phaseSuspended && rec.suspInterruptible {
			fn()
		}
	}
	target.childrenMu.Lock()
	kids := make([]*fiberContext, 0, len(target.children))
	for _, k := range target.children {
		kids = append(kids, k)
	}
	target.childrenMu.Unlock()
	for _, k := range kids {
		interruptFiber(k, from)
	}
}
