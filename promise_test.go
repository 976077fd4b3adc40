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

func TestPromiseAwaitAfterSucceed(t *testing.T) {
	rt := testRuntime()
	prog := FlatMap(MakePromise[int](), func(p *Promise[int]) Effect[int] {
		return FlatMap(p.Succeed(42), func(bool) Effect[int] { return p.Await() })
	})
	ex := UnsafeRun(rt, prog)
	v, ok := ex.Value()
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestPromiseAwaitBlocksUntilSucceed(t *testing.T) {
	rt := testRuntime()
	prog := FlatMap(MakePromise[int](), func(p *Promise[int]) Effect[int] {
		return FlatMap(ForkEffect(p.Await()), func(waiter *Fiber[int]) Effect[int] {
			return FlatMap(Sleep(10*time.Millisecond), func(struct{}) Effect[int] {
				return FlatMap(p.Succeed(7), func(bool) Effect[int] { return waiter.Join() })
			})
		})
	})
	ex := UnsafeRun(rt, prog)
	v, ok := ex.Value()
	require.True(t, ok)
	assert.Equal(t, 7, v)
}

func TestPromiseSecondCompleteIsNoop(t *testing.T) {
	rt := testRuntime()
	prog := FlatMap(MakePromise[int](), func(p *Promise[int]) Effect[[]bool] {
		return FlatMap(p.Succeed(1), func(first bool) Effect[[]bool] {
			return FlatMap(p.Succeed(2), func(second bool) Effect[[]bool] {
				return SucceedEffect([]bool{first, second})
			})
		})
	})
	ex := UnsafeRun(rt, prog)
	v, ok := ex.Value()
	require.True(t, ok)
	assert.Equal(t, []bool{true, false}, v)
}

func TestPromiseFailPropagatesCause(t *testing.T) {
	rt := testRuntime()
	boom := assert.AnError
	prog := FlatMap(MakePromise[int](), func(p *Promise[int]) Effect[int] {
		return FlatMap(p.Fail(boom), func(bool) Effect[int] { return p.Await() })
	})
	ex := UnsafeRun(rt, prog)
	assert.True(t, ex.IsFailure())
}

func TestPromisePollAndIsDone(t *testing.T) {
	rt := testRuntime()
	prog := FlatMap(MakePromise[int](), func(p *Promise[int]) Effect[struct {
		BeforeDone bool
		Before     *Exit[int]
		AfterDone  bool
		After      *Exit[int]
	}] {
		type result = struct {
			BeforeDone bool
			Before     *Exit[int]
			AfterDone  bool
			After      *Exit[int]
		}
		return FlatMap(p.IsDone(), func(beforeDone bool) Effect[result] {
			return FlatMap(p.Poll(), func(before *Exit[int]) Effect[result] {
				return FlatMap(p.Succeed(3), func(bool) Effect[result] {
					return FlatMap(p.IsDone(), func(afterDone bool) Effect[result] {
						return FlatMap(p.Poll(), func(after *Exit[int]) Effect[result] {
							return SucceedEffect(result{beforeDone, before, afterDone, after})
						})
					})
				})
			})
		})
	})
	ex := UnsafeRun(rt, prog)
	v, ok := ex.Value()
	require.True(t, ok)
	assert.False(t, v.BeforeDone)
	assert.Nil(t, v.Before)
	assert.True(t, v.AfterDone)
	require.NotNil(t, v.After)
	val, ok := v.After.Value()
	require.True(t, ok)
	assert.Equal(t, 3, val)
}

func TestPromiseManyAwaitersAllWake(t *testing.T) {
	rt := testRuntime()
	prog := FlatMap(MakePromise[int](), func(p *Promise[int]) Effect[[]int] {
		return FlatMap(ForkEffect(p.Await()), func(f1 *Fiber[int]) Effect[[]int] {
			return FlatMap(ForkEffect(p.Await()), func(f2 *Fiber[int]) Effect[[]int] {
				return FlatMap(Sleep(10*time.Millisecond), func(struct{}) Effect[[]int] {
					return FlatMap(p.Succeed(9), func(bool) Effect[[]int] {
						return FlatMap(f1.Join(), func(a int) Effect[[]int] {
							return FlatMap(f2.Join(), func(b int) Effect[[]int] {
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
	assert.Equal(t, []int{9, 9}, v)
}
