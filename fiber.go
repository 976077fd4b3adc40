// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zio

import (
	"sync"
	"sync/atomic"
)

// FiberStatus is the coarse, externally-observable status reported by
// Descriptor (spec.md §3 FiberStatus), mapped one-to-one from the internal
// phase fiberState tracks. It does not report what a Suspended fiber is
// blocked on.
type FiberStatus uint8

const (
	StatusRunning FiberStatus = iota
	StatusSuspended
	StatusDone
)

// FiberDescriptor is the snapshot DescriptorEffect hands to its
// continuation: enough of a running fiber's own bookkeeping to make
// decisions without exposing the mutable fiberContext itself (spec.md §3).
type FiberDescriptor struct {
	ID              FiberID
	Status          FiberStatus
	Interruptors    []FiberID
	InterruptStatus bool // true: interruptible
	IsDaemon        bool
	Children        []FiberID
}

// fiberContext is the runtime-internal record backing every running fiber:
// its identity, state machine, explicit stacks, fiber-local ref map, and
// supervisor bookkeeping (spec.md component C + D + the Supervisor model of
// §4.G). It is never exposed directly to user code — Fiber[A] and
// FiberDescriptor are the public surfaces built on top of it.
type fiberContext struct {
	id     FiberID
	parent *fiberContext // nil for a root fiber
	rt     *Runtime

	state *fiberState
	st    *stacks

	refsMu sync.Mutex
	refs   map[uint64]refEntry

	asyncEpoch atomic.Uint64 // bumped on every markSuspended; guards resume
	daemon     bool

	resumeMu sync.Mutex
	resumeFn func() // set while Suspended; forced by interruptFiber

	childrenMu sync.Mutex
	children   map[FiberID]*fiberContext

	executor *Executor
}

// Fiber is the public, type-safe handle to a running or completed fiber of
// result type A (spec.md §3 Fiber[A], generalized from ZIO's Fiber[E,A] to
// Go's single-error-channel-via-Cause model).
type Fiber[A any] struct {
	ctx *fiberContext
}

// ID reports the fiber's identity.
func (f *Fiber[A]) ID() FiberID { return f.ctx.id }

// Join waits for the fiber to complete, merges its FiberRef values into the
// joining fiber's own (spec.md §3 FiberRef "combine merge-on-join"), and
// yields its success value, propagating failure or interruption as the
// joining fiber's own Cause (spec.md §4.H "Join awaits, then rethrows").
func (f *Fiber[A]) Join() Effect[A] {
	return FlatMap(f.Await(), func(ex Exit[A]) Effect[A] {
		return withFiberContext(func(caller *fiberContext) Effect[A] {
			inheritRefs(caller, f.ctx)
			return Match(ex,
				func(a A) Effect[A] { return SucceedEffect(a) },
				func(c Cause) Effect[A] { return FailEffect[A](c) },
			)
		})
	})
}

// Await waits for the fiber to complete and yields its Exit without
// rethrowing (spec.md §4.H "Await never fails").
func (f *Fiber[A]) Await() Effect[Exit[A]] {
	return EffectAsync[Exit[A]](fiberAwaitBlockingOn, func(resume func(Effect[Exit[A]])) Effect[Exit[A]] {
		done, exit := f.ctx.state.addObserver(func(ue exitUntyped) {
			resume(SucceedEffect(fromUntyped[A](ue)))
		})
		if done {
			return SucceedEffect(fromUntyped[A](exit))
		}
		return Effect[Exit[A]]{}
	})
}

const fiberAwaitBlockingOn = "fiber-await"

// Interrupt requests interruption and waits for the fiber to actually
// terminate, returning its Exit (spec.md §4.G "Interrupt is itself an
// effect that completes once the target has actually stopped").
func (f *Fiber[A]) Interrupt() Effect[Exit[A]] {
	return FlatMap(DescriptorEffect(func(self FiberDescriptor) Effect[FiberID] {
		return SucceedEffect(self.ID)
	}), func(selfID FiberID) Effect[Exit[A]] {
		interruptFiber(f.ctx, selfID)
		return f.Await()
	})
}

// Poll returns the fiber's Exit immediately if it has already completed,
// without suspending.
func (f *Fiber[A]) Poll() Effect[*Exit[A]] {
	return EffectTotal(func() *Exit[A] {
		rec := f.ctx.state.load()
		if rec.ph != phaseDone {
			return nil
		}
		ex := fromUntyped[A](rec.exit)
		return &ex
	})
}

// newFiberContext allocates a fresh fiberContext for fork, inheriting the
// parent's environment and executor but a copy-on-fork ref snapshot and a
// brand-new interrupt/daemon mask (spec.md §4.G fork semantics).
func newFiberContext(rt *Runtime, parent *fiberContext, daemon bool) *fiberContext {
	c := &fiberContext{
		id:       nextFiberID(),
		parent:   parent,
		rt:       rt,
		state:    newFiberState(),
		daemon:   daemon,
		children: make(map[FiberID]*fiberContext),
	}
	if parent != nil {
		c.refs = copyRefs(parent)
		c.executor = parent.executor
		c.st = newStacks(true, daemon, parent.st.currentEnv(), parent.executor)
	} else {
		c.refs = make(map[uint64]refEntry)
		c.executor = rt.platform.Executor
		c.st = newStacks(true, daemon, EmptyEnv, rt.platform.Executor)
	}
	return c
}

// descriptor snapshots c into a FiberDescriptor.
func (c *fiberContext) descriptor() FiberDescriptor {
	rec := c.state.load()
	status := StatusRunning
	switch rec.ph {
	case phaseSuspended:
		status = StatusSuspended
	case phaseDone:
		status = StatusDone
	}
	c.childrenMu.Lock()
	kids := make([]FiberID, 0, len(c.children))
	for id := range c.children {
		kids = append(kids, id)
	}
	c.childrenMu.Unlock()
	return FiberDescriptor{
		ID:              c.id,
		Status:          status,
		Interruptors:    rec.interrupt.Interruptors(),
		InterruptStatus: c.st.interruptible(),
		IsDaemon:        c.daemon,
		Children:        kids,
	}
}
