// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package zio is a fiber-based effect runtime: concurrent programs are
// built as values of type [Effect], composed with [FlatMap]/[Fold]/[Map]
// and the derived combinators, then handed to a [Runtime] at the single
// host boundary — [UnsafeRun] or [UnsafeRunAsync].
//
// # Core type
//
// [Effect][A] is a description of a concurrent computation producing an A
// or failing with a [Cause]. Building one never runs anything; only
// [UnsafeRun]/[UnsafeRunAsync] interpret the tree, on a runtime-managed
// fiber rather than the calling goroutine's own stack.
//
//   - [SucceedEffect], [FailEffect], [FailWith], [DieWith]: lift a value or
//     failure
//   - [EffectTotal], [EffectPartial]: suspend ordinary Go side effects
//   - [FlatMap], [Fold], [Map]: sequence effects and handle failure
//   - [ForkEffect], [ForkDaemon]: start a child fiber, returning a [Fiber]
//   - [EffectAsync]: suspend on a callback-based API
//
// # Failure
//
// Failure is represented by [Cause]: a typed [FailCause] (expected error),
// [DieCause] (defect), [InterruptCause], or a [Cause.Then]/[Cause.Both]
// composition of these. [Exit] is the terminal Success/Failure outcome of a
// fiber. Only [Cause.AsError] crosses into a plain Go error, at the
// boundary described in SPEC_FULL.md §7.
//
// # Concurrency primitives
//
//   - [Fiber]: handle to a running or completed fiber ([Fiber.Join],
//     [Fiber.Await], [Fiber.Interrupt])
//   - [Ref]: atomic mutable cell shared across fibers
//   - [FiberRef]: per-fiber variable, inherited on fork, merged on join
//   - [Promise]: one-shot awaitable cell
//   - [Queue]: bounded/unbounded MPMC channel with back-pressure/dropping/
//     sliding strategies
//
// # Interruption and resource safety
//
// [Uninterruptible]/[Interruptible] mask a region; [Bracket] and [Ensuring]
// build resource-safety guarantees out of that mask plus [Fold]. See
// SPEC_FULL.md §4 for the full per-node reduction semantics and edge cases.
package zio
