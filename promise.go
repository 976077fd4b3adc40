// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zio

import "sync"

// Promise is a one-shot, awaitable cell with possibly many awaiters (spec.md
// §3 Promise[A]). Its completed-exactly-once discipline generalizes the
// teacher's affine.go one-shot continuation from a single resumption to a
// fan-out of observers, the same widening fiberState.complete applies to a
// fiber's own terminal Exit.
type Promise[A any] struct {
	mu        sync.Mutex
	done      bool
	exit      exitUntyped
	observers []func(exitUntyped)
}

// MakePromise allocates an empty Promise.
func MakePromise[A any]() Effect[*Promise[A]] {
	return EffectTotal(func() *Promise[A] { return &Promise[A]{} })
}

// completeWith transitions the promise to done exactly once, returns false
// if it was already done (spec.md §3 "Succeed/Fail/Die/Interrupt... the
// first call wins, later calls are no-ops that report failure").
func (p *Promise[A]) completeWith(ue exitUntyped) bool {
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		return false
	}
	p.done = true
	p.exit = ue
	observers := p.observers
	p.observers = nil
	p.mu.Unlock()
	for _, o := range observers {
		o(ue)
	}
	return true
}

// Succeed completes the promise successfully with a.
func (p *Promise[A]) Succeed(a A) Effect[bool] {
	return EffectTotal(func() bool { return p.completeWith(exitUntyped{ok: true, value: a}) })
}

// Fail completes the promise with a typed error.
func (p *Promise[A]) Fail(err error) Effect[bool] {
	return EffectTotal(func() bool { return p.completeWith(exitUntyped{ok: false, cause: FailCause(err)}) })
}

// Die completes the promise with a defect.
func (p *Promise[A]) Die(v any) Effect[bool] {
	return EffectTotal(func() bool { return p.completeWith(exitUntyped{ok: false, cause: DieCause(v)}) })
}

// Interrupt completes the promise as interrupted.
func (p *Promise[A]) Interrupt(by FiberID) Effect[bool] {
	return EffectTotal(func() bool { return p.completeWith(exitUntyped{ok: false, cause: InterruptCause(by)}) })
}

// Await suspends the calling fiber until the promise is completed, then
// rethrows its Exit.
func (p *Promise[A]) Await() Effect[A] {
	return EffectAsync[A]("promise-await", func(resume func(Effect[A])) Effect[A] {
		p.mu.Lock()
		if p.done {
			ue := p.exit
			p.mu.Unlock()
			return exitToEffect[A](ue)
		}
		p.observers = append(p.observers, func(ue exitUntyped) {
			resume(exitToEffect[A](ue))
		})
		p.mu.Unlock()
		return Effect[A]{}
	})
}

// exitToEffect converts an exitUntyped into the Effect it represents: a
// Succeed node on success, a Fail node carrying the original Cause on
// failure.
func exitToEffect[A any](ue exitUntyped) Effect[A] {
	if ue.ok {
		v, _ := ue.value.(A)
		return SucceedEffect(v)
	}
	return FailEffect[A](ue.cause)
}

// registerObserver calls f immediately with the promise's Exit if it is
// already done, or appends it to the observer list to be called exactly
// once when the promise completes. Used by Queue's waiter lists, which
// need the same completed-or-park discipline Await uses internally.
func (p *Promise[A]) registerObserver(f func(exitUntyped)) {
	p.mu.Lock()
	if p.done {
		ue := p.exit
		p.mu.Unlock()
		f(ue)
		return
	}
	p.observers = append(p.observers, f)
	p.mu.Unlock()
}

// Poll returns the promise's Exit if it is already done, without suspending.
func (p *Promise[A]) Poll() Effect[*Exit[A]] {
	return EffectTotal(func() *Exit[A] {
		p.mu.Lock()
		defer p.mu.Unlock()
		if !p.done {
			return nil
		}
		ex := fromUntyped[A](p.exit)
		return &ex
	})
}

// IsDone reports whether the promise has already completed.
func (p *Promise[A]) IsDone() Effect[bool] {
	return EffectTotal(func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.done
	})
}
