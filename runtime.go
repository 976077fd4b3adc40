// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zio

import "github.com/google/uuid"

// Platform bundles the services a Runtime is configured with (spec.md §3
// Platform): the default Executor, the blocking Executor, the yield
// threshold, and the fatal-failure reporting hooks.
type Platform struct {
	Executor         *Executor
	BlockingExecutor *Executor
	YieldOpCount     int
	Fatal            func(v any) bool
	ReportFailure    func(fiberID FiberID, c Cause)
	ReportFatal      func(fiberID FiberID, c Cause)
}

// NewDefaultPlatform builds the Platform new Runtimes use unless overridden:
// a bounded goroutine-pool Executor sized workers wide, an unbounded
// blocking Executor, zerolog-backed reporting, and spec.md §9's default
// yield threshold.
func NewDefaultPlatform(workers int64) Platform {
	return Platform{
		Executor:         NewExecutor("default", workers),
		BlockingExecutor: NewUnboundedExecutor("blocking"),
		YieldOpCount:     2048,
		Fatal:            defaultFatal,
		ReportFailure:    defaultReportFailure,
		ReportFatal:      defaultReportFatal,
	}
}

// Runtime is the entry point from ordinary Go code into the effect
// interpreter (spec.md §6 "UnsafeRun/UnsafeRunAsync are the only two
// functions that cross from ordinary Go code into the Effect world").
type Runtime struct {
	platform Platform
	runID    uuid.UUID
}

// NewRuntime builds a Runtime over the given Platform, tagging it with a
// fresh RunID. The RunID is stored on the Runtime only; it is not passed to
// the reporting hooks and does not appear in any log line.
func NewRuntime(platform Platform) *Runtime {
	return &Runtime{platform: platform, runID: uuid.New()}
}

// UnsafeRun blocks the calling goroutine until effect completes, returning
// its Exit. It is "unsafe" only in ZIO's sense of the word: it is the
// designated boundary-crossing primitive, not a memory-safety hazard. A
// free function, since Go methods cannot add type parameters.
func UnsafeRun[A any](rt *Runtime, effect Effect[A]) Exit[A] {
	done := make(chan exitUntyped, 1)
	root := newFiberContext(rt, nil, false)
	go runFiber(root, effect.n, func(ue exitUntyped) { done <- ue })
	return fromUntyped[A](<-done)
}

// UnsafeRunAsync starts effect on a new root fiber and returns immediately;
// onExit is invoked exactly once, from the completing fiber's own goroutine,
// when the fiber terminates.
func UnsafeRunAsync[A any](rt *Runtime, effect Effect[A], onExit func(Exit[A])) *Fiber[A] {
	root := newFiberContext(rt, nil, false)
	go runFiber(root, effect.n, func(ue exitUntyped) {
		if onExit != nil {
			onExit(fromUntyped[A](ue))
		}
	})
	return &Fiber[A]{ctx: root}
}
