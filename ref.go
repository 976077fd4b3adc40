// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zio

import "sync/atomic"

// Ref is an atomic, mutable cell with compare-and-set semantics and no
// awaiters (spec.md §3 Ref[A]) — the component I primitive shared by any
// number of fibers.
type Ref[A any] struct {
	p atomic.Pointer[A]
}

// MakeRef allocates a new Ref holding a. Allocation is pure — the returned
// effect never fails.
func MakeRef[A any](a A) Effect[*Ref[A]] {
	return EffectTotal(func() *Ref[A] {
		r := &Ref[A]{}
		r.p.Store(&a)
		return r
	})
}

// Get reads the current value.
func (r *Ref[A]) Get() Effect[A] {
	return EffectTotal(func() A { return *r.p.Load() })
}

// Set replaces the current value unconditionally.
func (r *Ref[A]) Set(a A) Effect[struct{}] {
	return EffectTotal(func() struct{} {
		r.p.Store(&a)
		return struct{}{}
	})
}

// Update atomically replaces the value with f(old) via a CAS loop.
func (r *Ref[A]) Update(f func(A) A) Effect[struct{}] {
	return EffectTotal(func() struct{} {
		for {
			old := r.p.Load()
			nv := f(*old)
			if r.p.CompareAndSwap(old, &nv) {
				return struct{}{}
			}
		}
	})
}

// ModifyRef atomically replaces the Ref's value with the first return of f
// and yields the second (spec.md §4.I "modify"). A free function rather
// than a method because Go methods cannot introduce a new type parameter.
func ModifyRef[A, B any](r *Ref[A], f func(A) (A, B)) Effect[B] {
	return EffectTotal(func() B {
		for {
			old := r.p.Load()
			nv, result := f(*old)
			if r.p.CompareAndSwap(old, &nv) {
				return result
			}
		}
	})
}
