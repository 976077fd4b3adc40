// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zio

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatchAllRecoversFail(t *testing.T) {
	rt := testRuntime()
	boom := errors.New("boom")
	prog := CatchAll(FailWith[int](boom), func(err error) Effect[int] {
		return SucceedEffect(len(err.Error()))
	})
	ex := UnsafeRun(rt, prog)
	v, ok := ex.Value()
	require.True(t, ok)
	assert.Equal(t, len("boom"), v)
}

func TestCatchAllLeavesDieUnrecovered(t *testing.T) {
	rt := testRuntime()
	prog := CatchAll(DieWith[int]("defect"), func(error) Effect[int] { return SucceedEffect(0) })
	ex := UnsafeRun(rt, prog)
	require.True(t, ex.IsFailure())
	c, ok := ex.Cause()
	require.True(t, ok)
	assert.True(t, c.Died())
}

func TestCatchAllCauseRecoversDie(t *testing.T) {
	rt := testRuntime()
	prog := CatchAllCause(DieWith[int]("defect"), func(c Cause) Effect[int] {
		if c.Died() {
			return SucceedEffect(1)
		}
		return SucceedEffect(0)
	})
	ex := UnsafeRun(rt, prog)
	v, ok := ex.Value()
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestEnsuringRunsOnSuccessAndFailure(t *testing.T) {
	rt := testRuntime()
	refEx := UnsafeRun(rt, MakeRef(0))
	counter, ok := refEx.Value()
	require.True(t, ok)

	bump := counter.Update(func(n int) int { return n + 1 })

	okProg := Ensuring(SucceedEffect(1), bump)
	failProg := Ensuring(FailWith[int](errors.New("boom")), bump)

	UnsafeRun(rt, okProg)
	UnsafeRun(rt, failProg)

	r := UnsafeRun(rt, counter.Get())
	v, ok := r.Value()
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestOnInterruptFiresOnlyOnInterruption(t *testing.T) {
	rt := testRuntime()
	refEx := UnsafeRun(rt, MakeRef(false))
	fired, ok := refEx.Value()
	require.True(t, ok)

	UnsafeRun(rt, OnInterrupt(UnitEffect(), fired.Set(true)))
	r0 := UnsafeRun(rt, fired.Get())
	before, ok := r0.Value()
	require.True(t, ok)
	assert.False(t, before)

	blocked := EffectAsync[struct{}]("never", func(resume func(Effect[struct{}])) Effect[struct{}] {
		return Effect[struct{}]{}
	})
	guarded := OnInterrupt(blocked, fired.Set(true))

	prog := FlatMap(ForkEffect(guarded), func(f *Fiber[struct{}]) Effect[Exit[struct{}]] {
		return FlatMap(Sleep(10*time.Millisecond), func(struct{}) Effect[Exit[struct{}]] {
			return f.Interrupt()
		})
	})
	UnsafeRun(rt, prog)

	r := UnsafeRun(rt, fired.Get())
	v, ok := r.Value()
	require.True(t, ok)
	assert.True(t, v)
}

func TestZipParRunsBothConcurrentlyAndZipsResults(t *testing.T) {
	rt := testRuntime()
	left := FlatMap(Sleep(10*time.Millisecond), func(struct{}) Effect[int] { return SucceedEffect(1) })
	right := SucceedEffect("two")
	ex := UnsafeRun(rt, ZipPar(left, right))
	v, ok := ex.Value()
	require.True(t, ok)
	assert.Equal(t, 1, v.A)
	assert.Equal(t, "two", v.B)
}

func TestZipParPropagatesEitherFailure(t *testing.T) {
	rt := testRuntime()
	boom := errors.New("boom")
	prog := ZipPar(FailWith[int](boom), SucceedEffect("two"))
	ex := UnsafeRun(rt, prog)
	assert.True(t, ex.IsFailure())
}

func TestZipParInterruptsOtherSideAndCombinesCausesWhenBFails(t *testing.T) {
	rt := testRuntime()
	refEx := UnsafeRun(rt, MakeRef(false))
	interrupted, ok := refEx.Value()
	require.True(t, ok)

	slowA := OnInterrupt(
		EffectAsync[int]("never", func(resume func(Effect[int])) Effect[int] {
			return Effect[int]{}
		}),
		interrupted.Set(true),
	)
	boom := errors.New("boom")
	prog := ZipPar(slowA, FailWith[string](boom))
	ex := UnsafeRun(rt, prog)
	require.True(t, ex.IsFailure())

	c, ok := ex.Cause()
	require.True(t, ok)
	assert.True(t, c.Interrupted())
	assert.True(t, c.Failed())

	r := UnsafeRun(rt, interrupted.Get())
	v, ok := r.Value()
	require.True(t, ok)
	assert.True(t, v)
}

func TestJoinAllCollectsInOrder(t *testing.T) {
	rt := testRuntime()
	prog := FlatMap(ForkEffect(SucceedEffect(1)), func(f1 *Fiber[int]) Effect[[]int] {
		return FlatMap(ForkEffect(SucceedEffect(2)), func(f2 *Fiber[int]) Effect[[]int] {
			return FlatMap(ForkEffect(SucceedEffect(3)), func(f3 *Fiber[int]) Effect[[]int] {
				return JoinAll([]*Fiber[int]{f1, f2, f3})
			})
		})
	})
	ex := UnsafeRun(rt, prog)
	v, ok := ex.Value()
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, v)
}
