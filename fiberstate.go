// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zio

import "sync/atomic"

// phase is the coarse state of a fiber: Running, Suspended, or terminal
// Done (spec.md §3 FiberState).
type phase uint8

const (
	phaseRunning phase = iota
	phaseSuspended
	phaseDone
)

// stateRecord is the immutable value a fiberState CASes between. Following
// spec.md §9 ("Lock-free state machine... a single atomic reference
// holding an immutable record; all state mutations are CAS loops"), every
// transition allocates a new record rather than mutating this one, mirror
// of the teacher's affine.go one-shot atomic discipline generalized to a
// multi-state machine.
type stateRecord struct {
	ph phase

	// phaseSuspended
	suspInterruptible bool
	suspEpoch         uint64
	suspBlockingOn    string

	// accumulates across Running and Suspended; never cleared until Done
	interrupt Cause

	// insertion-ordered; invoked in reverse-of-registration order on Done
	// (spec.md §9 open question: order is implementation-defined, callers
	// must not rely on it)
	observers []func(exitUntyped)

	// phaseDone
	exit exitUntyped
}

// fiberState is the lock-free atomic state machine backing one fiber.
type fiberState struct {
	rec atomic.Pointer[stateRecord]
}

func newFiberState() *fiberState {
	s := &fiberState{}
	s.rec.Store(&stateRecord{ph: phaseRunning})
	return s
}

func (s *fiberState) load() *stateRecord { return s.rec.Load() }

// markSuspended transitions Running -> Suspended(interruptible, epoch,
// blockingOn). No-ops (returns false) only if the fiber is already Done; a
// fiber that is already Suspended is overwritten with the new epoch.
func (s *fiberState) markSuspended(interruptible bool, epoch uint64, blockingOn string) bool {
	for {
		old := s.load()
		if old.ph == phaseDone {
			return false
		}
		next := *old
		next.ph = phaseSuspended
		next.suspInterruptible = interruptible
		next.suspEpoch = epoch
		next.suspBlockingOn = blockingOn
		if s.rec.CompareAndSwap(old, &next) {
			return true
		}
	}
}

// markRunning transitions Suspended(epoch) -> Running, but only if the
// fiber is currently suspended at exactly epoch. This is the epoch-guarded
// exactly-once wakeup of spec.md §4.F.2: a stale resume (epoch mismatch)
// is discarded.
func (s *fiberState) markRunning(epoch uint64) bool {
	for {
		old := s.load()
		if old.ph != phaseSuspended || old.suspEpoch != epoch {
			return false
		}
		next := *old
		next.ph = phaseRunning
		if s.rec.CompareAndSwap(old, &next) {
			return true
		}
	}
}

// addInterrupt unions c into the accumulated interrupt cause. Returns the
// phase observed at the moment of the swap, so callers (Supervisor
// interruptAs) can decide whether the fiber needs to be forcibly resumed.
func (s *fiberState) addInterrupt(c Cause) phase {
	for {
		old := s.load()
		if old.ph == phaseDone {
			return phaseDone
		}
		next := *old
		next.interrupt = next.interrupt.Then(c)
		if s.rec.CompareAndSwap(old, &next) {
			return next.ph
		}
	}
}

// addObserver registers f to be invoked with the terminal Exit. If the
// fiber is already Done, f is invoked synchronously by the caller (the
// caller is expected to do so in its own scheduling turn per spec.md §4.H
// "a late awaiter... is resumed synchronously in its own turn") — this
// method only reports which case applies.
func (s *fiberState) addObserver(f func(exitUntyped)) (alreadyDone bool, exit exitUntyped) {
	for {
		old := s.load()
		if old.ph == phaseDone {
			return true, old.exit
		}
		next := *old
		next.observers = append(append([]func(exitUntyped){}, old.observers...), f)
		if s.rec.CompareAndSwap(old, &next) {
			return false, exitUntyped{}
		}
	}
}

// complete transitions the fiber to Done(exit) exactly once. Returns the
// registered observers (reverse-of-registration order) to invoke, or nil
// if the fiber was already Done.
func (s *fiberState) complete(exit exitUntyped) []func(exitUntyped) {
	for {
		old := s.load()
		if old.ph == phaseDone {
			return nil
		}
		next := stateRecord{ph: phaseDone, exit: exit, interrupt: old.interrupt}
		if s.rec.CompareAndSwap(old, &next) {
			obs := make([]func(exitUntyped), len(old.observers))
			for i, o := range old.observers {
				obs[len(old.observers)-1-i] = o
			}
			return obs
		}
	}
}

func (s *fiberState) isDone() bool { return s.load().ph == phaseDone }

func (s *fiberState) accumulatedInterrupt() Cause { return s.load().interrupt }
