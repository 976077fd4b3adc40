// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zio

import "time"

// Map transforms a successful result, leaving failure untouched (spec.md
// §4.C reduction: Map(eff, f) = FlatMap(eff, a => Succeed(f(a)))).
func Map[A, B any](inner Effect[A], f func(A) B) Effect[B] {
	return FlatMap(inner, func(a A) Effect[B] { return SucceedEffect(f(a)) })
}

// CatchAll recovers from a typed failure by switching to the effect h
// produces, passing h the first Fail error in the cause. A cause with no
// Fail leaf (only Die and/or Interrupt) is not recovered and is re-raised
// unchanged; use CatchAllCause for those (spec.md §4.C).
func CatchAll[A any](inner Effect[A], h func(error) Effect[A]) Effect[A] {
	return Fold(inner,
		func(c Cause) Effect[A] {
			if err, _ := c.FailureOrCause(); err != nil {
				return h(err)
			}
			return FailEffect[A](c)
		},
		func(a A) Effect[A] { return SucceedEffect(a) },
	)
}

// CatchAllCause recovers from every failure, including Die and Interrupt,
// by inspecting the full Cause.
func CatchAllCause[A any](inner Effect[A], h func(Cause) Effect[A]) Effect[A] {
	return Fold(inner, h, func(a A) Effect[A] { return SucceedEffect(a) })
}

// Uninterruptible runs inner with interruption masked — a pending
// interruption is recorded but not delivered until the region exits
// (spec.md §4.F.4).
func Uninterruptible[A any](inner Effect[A]) Effect[A] {
	return InterruptStatusEffect(false, inner)
}

// Interruptible runs inner with interruption unmasked.
func Interruptible[A any](inner Effect[A]) Effect[A] {
	return InterruptStatusEffect(true, inner)
}

// OnInterrupt runs finalizer if inner is interrupted, leaving any other
// outcome untouched.
func OnInterrupt[A any](inner Effect[A], finalizer Effect[struct{}]) Effect[A] {
	return Fold(inner,
		func(c Cause) Effect[A] {
			if c.Interrupted() {
				return FlatMap(Uninterruptible(finalizer), func(struct{}) Effect[A] { return FailEffect[A](c) })
			}
			return FailEffect[A](c)
		},
		func(a A) Effect[A] { return SucceedEffect(a) },
	)
}

// Ensuring runs finalizer on every exit path of inner — success, failure,
// or interruption — discarding the finalizer's own result (spec.md §4.C
// "Ensuring is Bracket with a no-op acquire/use split").
func Ensuring[A any](inner Effect[A], finalizer Effect[struct{}]) Effect[A] {
	return Fold(inner,
		func(c Cause) Effect[A] {
			return FlatMap(Uninterruptible(finalizer), func(struct{}) Effect[A] { return FailEffect[A](c) })
		},
		func(a A) Effect[A] {
			return FlatMap(Uninterruptible(finalizer), func(struct{}) Effect[A] { return SucceedEffect(a) })
		},
	)
}

// Bracket acquires a resource, runs use with it, and always runs release
// afterward regardless of how use terminates (spec.md §4.K "Bracket is the
// resource-safety primitive composed from Uninterruptible acquire +
// Ensuring release").
func Bracket[R, A any](acquire Effect[R], use func(R) Effect[A], release func(R) Effect[struct{}]) Effect[A] {
	return FlatMap(Uninterruptible(acquire), func(r R) Effect[A] {
		return Ensuring(use(r), release(r))
	})
}

// Race runs a and b concurrently and returns whichever completes first,
// interrupting the loser (spec.md §4.F.1 RaceWith, specialized to "first
// success or last failure wins"). If the winner failed, Race waits for the
// loser and returns the loser's result if the loser succeeded, otherwise
// the winner's failure.
func Race[A any](a, b Effect[A]) Effect[A] {
	return wrap[A](&node{
		tg:   tagRaceWith,
		left: a.n, right: b.n,
		onLeftDone:  raceArm[A](true),
		onRightDone: raceArm[A](false),
	})
}

// raceArm builds the RaceWith continuation for one side: on success, it
// interrupts the other side (fire-and-forget) and completes with the
// winner's value; on failure, it falls back to awaiting the loser.
func raceArm[A any](isLeft bool) func(exitUntyped, *fiberContext) *node {
	return func(ue exitUntyped, other *fiberContext) *node {
		if ue.ok {
			interruptFiber(other, 0)
			v, _ := ue.value.(A)
			return SucceedEffect(v).n
		}
		return FlatMap(awaitContext[A](other), func(otherEx Exit[A]) Effect[A] {
			return Match(otherEx,
				func(a A) Effect[A] { return SucceedEffect(a) },
				func(Cause) Effect[A] { return FailEffect[A](ue.cause) },
			)
		}).n
	}
}

// awaitContext builds an Effect that awaits an internal *fiberContext
// directly, used by Race to wait on the loser without a public Fiber[A]
// handle.
func awaitContext[A any](c *fiberContext) Effect[Exit[A]] {
	return EffectAsync[Exit[A]](fiberAwaitBlockingOn, func(resume func(Effect[Exit[A]])) Effect[Exit[A]] {
		done, exit := c.state.addObserver(func(ue exitUntyped) {
			resume(SucceedEffect(fromUntyped[A](ue)))
		})
		if done {
			return SucceedEffect(fromUntyped[A](exit))
		}
		return Effect[Exit[A]]{}
	})
}

// Timeout races inner against a Sleep(d), returning nil if inner did not
// complete within d (its fiber is interrupted), or a pointer to its result
// if it did (spec.md §4.K "Timeout is Race against a clock").
func Timeout[A any](inner Effect[A], d time.Duration) Effect[*A] {
	return Map(Race(Map(inner, func(a A) *A { return &a }), Map(Sleep(d), func(struct{}) *A { return nil })),
		func(p *A) *A { return p })
}

// ZipPar runs a (on a forked fiber) and b (on the current fiber)
// concurrently and returns both results. If b fails, a is interrupted and
// the result fails with Both(causeA, causeB), where causeA is a's own
// failure or the interruption it received. If only a fails, the result
// fails with a's cause alone.
func ZipPar[A, B any](a Effect[A], b Effect[B]) Effect[zipParResult[A, B]] {
	return FlatMap(ForkEffect(a), func(fa *Fiber[A]) Effect[zipParResult[A, B]] {
		return Fold(b,
			func(causeB Cause) Effect[zipParResult[A, B]] {
				return FlatMap(fa.Interrupt(), func(exitA Exit[A]) Effect[zipParResult[A, B]] {
					if causeA, ok := exitA.Cause(); ok {
						return FailEffect[zipParResult[A, B]](causeA.Both(causeB))
					}
					return FailEffect[zipParResult[A, B]](causeB)
				})
			},
			func(bv B) Effect[zipParResult[A, B]] {
				return Fold(fa.Join(),
					func(c Cause) Effect[zipParResult[A, B]] { return FailEffect[zipParResult[A, B]](c) },
					func(av A) Effect[zipParResult[A, B]] {
						return SucceedEffect(zipParResult[A, B]{A: av, B: bv})
					},
				)
			},
		)
	})
}

type zipParResult[A, B any] struct {
	A A
	B B
}

// JoinAll waits for every fiber in fibers, returning their results in order,
// or the first failure encountered (spec.md §4.H "JoinAll").
func JoinAll[A any](fibers []*Fiber[A]) Effect[[]A] {
	var loop func(i int, acc []A) Effect[[]A]
	loop = func(i int, acc []A) Effect[[]A] {
		if i >= len(fibers) {
			return SucceedEffect(acc)
		}
		return FlatMap(fibers[i].Join(), func(a A) Effect[[]A] {
			return loop(i+1, append(acc, a))
		})
	}
	return loop(0, make([]A, 0, len(fibers)))
}
