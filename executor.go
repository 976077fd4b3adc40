// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zio

import "sync"

// Executor runs submitted tasks on a bounded pool of persistent worker
// goroutines draining an unbounded task queue (spec.md §3 Executor, "runs
// Runnables on some pool of worker threads" read onto Go's goroutine model
// rather than a literal OS-thread pool). A zero-width Executor (capacity 0)
// is invalid; use NewExecutor.
//
// Submitting a task never blocks the caller, which is not merely a
// convenience here: the interpreter's own yield/op-budget handling resubmits
// a fiber's continuation to this same executor from *inside* one of its
// worker goroutines (the continuation IS the task currently occupying that
// worker), and must be able to hand itself back to the pool without first
// waiting on a slot that only its own return would free. An admission
// scheme that gates Submit itself (e.g. acquiring a semaphore permit before
// spawning) cannot satisfy that: once every worker is simultaneously mid
// self-resubmission, each is blocked acquiring a permit that nobody still
// running can release. A persistent pool reading off a plain queue has no
// such admission step to deadlock on.
type Executor struct {
	name      string
	unbounded bool

	mu    sync.Mutex
	cond  *sync.Cond
	queue []func()
}

// NewExecutor creates a bounded Executor backed by exactly width persistent
// worker goroutines.
func NewExecutor(name string, width int64) *Executor {
	e := &Executor{name: name}
	e.cond = sync.NewCond(&e.mu)
	for i := int64(0); i < width; i++ {
		go e.worker()
	}
	return e
}

// NewUnboundedExecutor creates an Executor with no admission bound, the
// realization of Platform.BlockingExecutor (spec.md §3, "a pool realizing
// unbounded, potentially-blocking work"). Every submitted task gets its own
// goroutine.
func NewUnboundedExecutor(name string) *Executor {
	return &Executor{name: name, unbounded: true}
}

// worker repeatedly pulls a task off the queue and runs it, blocking only
// when the queue is empty.
func (e *Executor) worker() {
	for {
		e.mu.Lock()
		for len(e.queue) == 0 {
			e.cond.Wait()
		}
		task := e.queue[0]
		e.queue[0] = nil
		e.queue = e.queue[1:]
		e.mu.Unlock()
		task()
	}
}

// Submit enqueues task for execution. It never blocks the caller: an
// unbounded Executor spawns a fresh goroutine per task, a bounded one
// appends to its queue and wakes one idle worker.
func (e *Executor) Submit(task func()) {
	if e.unbounded {
		go task()
		return
	}
	e.mu.Lock()
	e.queue = append(e.queue, task)
	e.mu.Unlock()
	e.cond.Signal()
}

// Name reports the executor's diagnostic name (used in FiberDescriptor
// reporting and log fields).
func (e *Executor) Name() string { return e.name }
