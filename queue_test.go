// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueOfferTakeFIFO(t *testing.T) {
	rt := testRuntime()
	prog := FlatMap(MakeQueue[int](BackPressure, 8), func(q *Queue[int]) Effect[[]int] {
		return FlatMap(q.Offer(1), func(bool) Effect[[]int] {
			return FlatMap(q.Offer(2), func(bool) Effect[[]int] {
				return FlatMap(q.Take(), func(a int) Effect[[]int] {
					return FlatMap(q.Take(), func(b int) Effect[[]int] {
						return SucceedEffect([]int{a, b})
					})
				})
			})
		})
	})
	ex := UnsafeRun(rt, prog)
	v, ok := ex.Value()
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, v)
}

func TestQueueDroppingDiscardsWhenFull(t *testing.T) {
	rt := testRuntime()
	prog := FlatMap(MakeQueue[int](Dropping, 1), func(q *Queue[int]) Effect[bool] {
		return FlatMap(q.Offer(1), func(bool) Effect[bool] {
			return q.Offer(2)
		})
	})
	ex := UnsafeRun(rt, prog)
	v, ok := ex.Value()
	require.True(t, ok)
	assert.False(t, v)
}

func TestQueueSlidingEvictsOldest(t *testing.T) {
	rt := testRuntime()
	prog := FlatMap(MakeQueue[int](Sliding, 1), func(q *Queue[int]) Effect[int] {
		return FlatMap(q.Offer(1), func(bool) Effect[int] {
			return FlatMap(q.Offer(2), func(bool) Effect[int] {
				return q.Take()
			})
		})
	})
	ex := UnsafeRun(rt, prog)
	v, ok := ex.Value()
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestQueueBackPressureParksOfferer(t *testing.T) {
	rt := testRuntime()
	prog := FlatMap(MakeQueue[int](BackPressure, 1), func(q *Queue[int]) Effect[[]int] {
		return FlatMap(q.Offer(1), func(bool) Effect[[]int] {
			return FlatMap(ForkEffect(q.Offer(2)), func(f *Fiber[bool]) Effect[[]int] {
				return FlatMap(Sleep(10*time.Millisecond), func(struct{}) Effect[[]int] {
					return FlatMap(q.Take(), func(a int) Effect[[]int] {
						return FlatMap(f.Join(), func(bool) Effect[[]int] {
							return FlatMap(q.Take(), func(b int) Effect[[]int] {
								return SucceedEffect([]int{a, b})
							})
						})
					})
				})
			})
		})
	})
	ex := UnsafeRun(rt, prog)
	v, ok := ex.Value()
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, v)
}

func TestQueueShutdownFailsPendingTake(t *testing.T) {
	rt := testRuntime()
	prog := FlatMap(MakeQueue[int](BackPressure, 1), func(q *Queue[int]) Effect[Exit[int]] {
		return FlatMap(ForkEffect(q.Take()), func(f *Fiber[int]) Effect[Exit[int]] {
			return FlatMap(Sleep(10*time.Millisecond), func(struct{}) Effect[Exit[int]] {
				return FlatMap(q.Shutdown(), func(struct{}) Effect[Exit[int]] {
					return f.Await()
				})
			})
		})
	})
	ex := UnsafeRun(rt, prog)
	v, ok := ex.Value()
	require.True(t, ok)
	require.True(t, v.IsFailure())
	c, ok := v.Cause()
	require.True(t, ok)
	assert.True(t, c.Interrupted())
	assert.False(t, c.Failed())
}
