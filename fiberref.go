// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zio

import "sync/atomic"

var fiberRefIDSeq atomic.Uint64

// FiberRefUntyped is the type-erased identity a fiber's ref map is keyed
// by (spec.md §9 "Identity is an opaque allocated token"). FiberRef[A]
// wraps one for type-safe access.
type FiberRefUntyped struct {
	id       uint64
	initial  Erased
	combine  func(parent, child Erased) Erased
}

// FiberRef is a per-fiber variable, inherited by copy on fork and merged
// via combine on join (spec.md §3 FiberRef[A]).
type FiberRef[A any] struct{ u *FiberRefUntyped }

// FiberRefMake allocates a FiberRef in the current fiber with the given
// initial value and join-time combine function.
func FiberRefMake[A any](initial A, combine func(parent, child A) A) Effect[*FiberRef[A]] {
	return wrap[*FiberRef[A]](&node{
		tg:      tagFiberRefNew,
		refInit: initial,
		refCombine: func(p, c Erased) Erased {
			return combine(p.(A), c.(A))
		},
		refID: fiberRefIDSeq.Add(1),
		refK: func(u *FiberRefUntyped) *node {
			return SucceedEffect(&FiberRef[A]{u: u}).n
		},
	})
}

func (r *FiberRef[A]) modify(fn func(A) (A, Erased)) *node {
	return &node{
		tg:  tagFiberRefModify,
		ref: r.u,
		modFn: func(cur Erased) (Erased, Erased) {
			nv, result := fn(cur.(A))
			return nv, result
		},
	}
}

// Get reads the current fiber's value for this ref.
func (r *FiberRef[A]) Get() Effect[A] {
	return wrap[A](r.modify(func(cur A) (A, Erased) { return cur, cur }))
}

// Set replaces the current fiber's value for this ref.
func (r *FiberRef[A]) Set(a A) Effect[struct{}] {
	return wrap[struct{}](r.modify(func(A) (A, Erased) { return a, struct{}{} }))
}

// Update replaces the current fiber's value with f(old).
func (r *FiberRef[A]) Update(f func(A) A) Effect[struct{}] {
	return wrap[struct{}](r.modify(func(cur A) (A, Erased) { return f(cur), struct{}{} }))
}

// FiberRefModify atomically replaces r's value and returns a derived
// result, a free function since Go methods cannot add type parameters.
func FiberRefModify[A, B any](r *FiberRef[A], f func(A) (A, B)) Effect[B] {
	return wrap[B](r.modify(func(cur A) (A, Erased) {
		nv, result := f(cur)
		return nv, result
	}))
}

// FiberRefLocally scopes an override: set r to a, run eff, then restore r's
// prior value on every exit path — success, failure, or interruption
// (spec.md §4.I "Locally(a)(effect) is a scoped override"). A free function
// rather than a method because Go methods cannot add type parameters.
func FiberRefLocally[A, B any](r *FiberRef[A], a A, eff Effect[B]) Effect[B] {
	return FlatMap(r.Get(), func(old A) Effect[B] {
		return FlatMap(r.Set(a), func(struct{}) Effect[B] {
			return Fold(eff,
				func(c Cause) Effect[B] {
					return FlatMap(r.Set(old), func(struct{}) Effect[B] { return FailEffect[B](c) })
				},
				func(b B) Effect[B] {
					return FlatMap(r.Set(old), func(struct{}) Effect[B] { return SucceedEffect(b) })
				},
			)
		})
	})
}

// inheritRefs merges each entry of child's ref map into parent's, via each
// ref's combine(parent, child) function (spec.md §4.I "on inheritRefs the
// receiver iterates the child's map and updates each ref via combine").
func inheritRefs(parent, child *fiberContext) {
	child.refsMu.Lock()
	snapshot := make(map[uint64]refEntry, len(child.refs))
	for k, v := range child.refs {
		snapshot[k] = v
	}
	child.refsMu.Unlock()

	parent.refsMu.Lock()
	defer parent.refsMu.Unlock()
	for id, entry := range snapshot {
		if pe, ok := parent.refs[id]; ok {
			parent.refs[id] = refEntry{u: entry.u, value: entry.u.combine(pe.value, entry.value)}
		} else {
			parent.refs[id] = entry
		}
	}
}

// refEntry is one fiber-local ref map entry.
type refEntry struct {
	u     *FiberRefUntyped
	value Erased
}

// copyRefs produces a structurally-shared snapshot for a freshly forked
// child (spec.md §3 "Child fibers receive a copy-on-fork snapshot").
func copyRefs(parent *fiberContext) map[uint64]refEntry {
	parent.refsMu.Lock()
	defer parent.refsMu.Unlock()
	out := make(map[uint64]refEntry, len(parent.refs))
	for k, v := range parent.refs {
		out[k] = v
	}
	return out
}
