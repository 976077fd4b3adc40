// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiberStateSuspendResumeEpochGuard(t *testing.T) {
	s := newFiberState()
	assert.True(t, s.markSuspended(true, 1, "test"))
	assert.False(t, s.markRunning(2)) // stale epoch, no-op
	assert.True(t, s.markRunning(1))
	assert.Equal(t, phaseRunning, s.load().ph)
}

func TestFiberStateAddInterruptAccumulates(t *testing.T) {
	s := newFiberState()
	ph := s.addInterrupt(InterruptCause(1))
	assert.Equal(t, phaseRunning, ph)
	s.addInterrupt(InterruptCause(2))
	acc := s.accumulatedInterrupt()
	assert.ElementsMatch(t, []FiberID{1, 2}, acc.Interruptors())
}

func TestFiberStateAddInterruptAfterDoneReportsDone(t *testing.T) {
	s := newFiberState()
	s.complete(exitUntyped{ok: true, value: 1})
	ph := s.addInterrupt(InterruptCause(1))
	assert.Equal(t, phaseDone, ph)
}

func TestFiberStateCompleteIsExactlyOnce(t *testing.T) {
	s := newFiberState()
	order := []int{}
	s.addObserver(func(exitUntyped) { order = append(order, 1) })
	s.addObserver(func(exitUntyped) { order = append(order, 2) })

	obs := s.complete(exitUntyped{ok: true, value: 99})
	require.Len(t, obs, 2)
	for _, o := range obs {
		o(exitUntyped{})
	}
	assert.Equal(t, []int{2, 1}, order) // reverse-of-registration order

	again := s.complete(exitUntyped{ok: true, value: 1})
	assert.Nil(t, again)
	assert.True(t, s.isDone())
}

func TestFiberStateAddObserverAfterDoneReportsImmediately(t *testing.T) {
	s := newFiberState()
	s.complete(exitUntyped{ok: true, value: 7})
	done, exit := s.addObserver(func(exitUntyped) {})
	assert.True(t, done)
	v, _ := exit.value.(int)
	assert.Equal(t, 7, v)
}
