// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zio

import (
	"sync"
)

// QueueStrategy selects what Offer does when a bounded Queue is full
// (spec.md §3 Queue[A]).
type QueueStrategy uint8

const (
	// BackPressure suspends the offering fiber until space is available.
	BackPressure QueueStrategy = iota
	// Dropping silently discards the newly offered element.
	Dropping
	// Sliding discards the oldest queued element to make room.
	Sliding
)

// Queue is a multi-producer, multi-consumer FIFO channel with an optional
// capacity bound (spec.md §3 Queue[A], "bounded/unbounded/dropping/sliding
// MPMC... back-pressure realized with waiter lists, not raw channels" —
// unlike a native Go channel, a full BackPressure queue parks offerers as
// Promise-based waiters so Offer composes as an ordinary suspending Effect
// rather than blocking a goroutine).
type Queue[A any] struct {
	mu         sync.Mutex
	strategy   QueueStrategy
	capacity   int // 0 means unbounded
	items      []A
	takers     []*Promise[A]
	offerers   []pendingOffer[A]
	shutdown   bool
	shutdownBy FiberID
}

type pendingOffer[A any] struct {
	value A
	ack   *Promise[bool]
}

// MakeQueue allocates a Queue with the given strategy and capacity. A
// capacity of 0 means unbounded (Dropping/Sliding are meaningless and
// treated as BackPressure when capacity is 0).
func MakeQueue[A any](strategy QueueStrategy, capacity int) Effect[*Queue[A]] {
	return EffectTotal(func() *Queue[A] {
		return &Queue[A]{strategy: strategy, capacity: capacity}
	})
}

// Offer enqueues a, applying the queue's back-pressure strategy if the
// queue is at capacity, and reports whether a was actually enqueued (always
// true for BackPressure once it returns; Dropping may return false).
func (q *Queue[A]) Offer(a A) Effect[bool] {
	return EffectAsync[bool]("queue-offer", func(resume func(Effect[bool])) Effect[bool] {
		q.mu.Lock()
		if q.shutdown {
			by := q.shutdownBy
			q.mu.Unlock()
			return FailEffect[bool](InterruptCause(by))
		}
		if len(q.takers) > 0 {
			t := q.takers[0]
			q.takers = q.takers[1:]
			q.mu.Unlock()
			t.completeWith(exitUntyped{ok: true, value: a})
			return SucceedEffect(true)
		}
		if q.capacity <= 0 || len(q.items) < q.capacity {
			q.items = append(q.items, a)
			q.mu.Unlock()
			return SucceedEffect(true)
		}
		switch q.strategy {
		case Dropping:
			q.mu.Unlock()
			return SucceedEffect(false)
		case Sliding:
			if len(q.items) > 0 {
				q.items = q.items[1:]
			}
			q.items = append(q.items, a)
			q.mu.Unlock()
			return SucceedEffect(true)
		default: // BackPressure
			ack := &Promise[bool]{}
			q.offerers = append(q.offerers, pendingOffer[A]{value: a, ack: ack})
			q.mu.Unlock()
			ack.registerObserver(func(ue exitUntyped) { resume(exitToEffect[bool](ue)) })
			return Effect[bool]{}
		}
	})
}

// Take dequeues the oldest element, suspending until one is available or
// the queue is shut down.
func (q *Queue[A]) Take() Effect[A] {
	return EffectAsync[A]("queue-take", func(resume func(Effect[A])) Effect[A] {
		q.mu.Lock()
		if len(q.items) > 0 {
			v := q.items[0]
			q.items = q.items[1:]
			q.admitOneOffererLocked()
			q.mu.Unlock()
			return SucceedEffect(v)
		}
		if q.shutdown {
			by := q.shutdownBy
			q.mu.Unlock()
			return FailEffect[A](InterruptCause(by))
		}
		t := &Promise[A]{}
		q.takers = append(q.takers, t)
		q.mu.Unlock()
		t.registerObserver(func(ue exitUntyped) { resume(exitToEffect[A](ue)) })
		return Effect[A]{}
	})
}

// admitOneOffererLocked moves one parked BackPressure offerer's value into
// the queue, if any, and acknowledges it. Caller must hold q.mu.
func (q *Queue[A]) admitOneOffererLocked() {
	if len(q.offerers) == 0 {
		return
	}
	o := q.offerers[0]
	q.offerers = q.offerers[1:]
	q.items = append(q.items, o.value)
	ack := o.ack
	go ack.completeWith(exitUntyped{ok: true, value: true})
}

// TakeUpTo dequeues up to max elements currently available, without
// suspending if fewer than max are present (an empty result is possible).
func (q *Queue[A]) TakeUpTo(max int) Effect[[]A] {
	return EffectTotal(func() []A {
		q.mu.Lock()
		defer q.mu.Unlock()
		n := max
		if n > len(q.items) {
			n = len(q.items)
		}
		out := append([]A(nil), q.items[:n]...)
		q.items = q.items[n:]
		for i := 0; i < n && len(q.offerers) > 0; i++ {
			q.admitOneOffererLocked()
		}
		return out
	})
}

// Poll returns the head element if one is immediately available, without
// suspending.
func (q *Queue[A]) Poll() Effect[*A] {
	return EffectTotal(func() *A {
		q.mu.Lock()
		defer q.mu.Unlock()
		if len(q.items) == 0 {
			return nil
		}
		v := q.items[0]
		q.items = q.items[1:]
		q.admitOneOffererLocked()
		return &v
	})
}

// Size reports the number of currently queued elements.
func (q *Queue[A]) Size() Effect[int] {
	return EffectTotal(func() int {
		q.mu.Lock()
		defer q.mu.Unlock()
		return len(q.items)
	})
}

// IsShutdown reports whether Shutdown has already been called.
func (q *Queue[A]) IsShutdown() Effect[bool] {
	return EffectTotal(func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()
		return q.shutdown
	})
}

// Shutdown marks the queue shut down and completes every pending Take and
// parked Offer with an Interrupt cause attributed to the shutting-down
// fiber, idempotently (spec.md §3 "shutdown... causes every pending/future
// op to surface an 'interrupted' cause"; §4.J "a second call is a no-op").
func (q *Queue[A]) Shutdown() Effect[struct{}] {
	return DescriptorEffect(func(self FiberDescriptor) Effect[struct{}] {
		return EffectTotal(func() struct{} {
			q.mu.Lock()
			if q.shutdown {
				q.mu.Unlock()
				return struct{}{}
			}
			q.shutdown = true
			q.shutdownBy = self.ID
			takers := q.takers
			q.takers = nil
			offerers := q.offerers
			q.offerers = nil
			q.mu.Unlock()
			for _, t := range takers {
				t.completeWith(exitUntyped{ok: false, cause: InterruptCause(self.ID)})
			}
			for _, o := range offerers {
				o.ack.completeWith(exitUntyped{ok: false, cause: InterruptCause(self.ID)})
			}
			return struct{}{}
		})
	})
}
