// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zio

import "time"

// Scheduler drives time-based suspension — the Sleep effect — without
// occupying an Executor goroutine while waiting (spec.md §3 Scheduler,
// "registers a one-shot timer callback rather than blocking a worker").
type Scheduler struct{}

// NewScheduler builds the default, time.AfterFunc-backed Scheduler.
func NewScheduler() *Scheduler { return &Scheduler{} }

// schedule arranges for f to run after d elapses, returning a cancel
// function that prevents f from running if called before it fires.
func (s *Scheduler) schedule(d time.Duration, f func()) (cancel func() bool) {
	t := time.AfterFunc(d, f)
	return t.Stop
}

// Sleep suspends the current fiber for at least d, registering with the
// process-wide DefaultScheduler rather than blocking a goroutine (spec.md §4
// EffectAsync row, specialized).
func Sleep(d time.Duration) Effect[struct{}] {
	return EffectAsync[struct{}]("sleep", func(resume func(Effect[struct{}])) Effect[struct{}] {
		if d <= 0 {
			return UnitEffect()
		}
		DefaultScheduler.schedule(d, func() {
			resume(UnitEffect())
		})
		return Effect[struct{}]{}
	})
}

// DefaultScheduler is the process-wide Scheduler used by Sleep. Platform
// does not currently allow substituting a Scheduler per Runtime — tests
// that need determinism construct effects directly rather than sleeping.
var DefaultScheduler = NewScheduler()
