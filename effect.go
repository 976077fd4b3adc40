// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zio

// Erased marks a type-erased intermediate value in the effect tree, the
// same convention the teacher's frame.go uses for its Frame chain: concrete
// types are recovered via assertion at the node boundary the public,
// generic Effect[A] wrapper provides.
type Erased = any

// tag discriminates the Effect node kinds of spec.md §3. A dense integer
// switch over tag is how the interpreter dispatches — spec.md §9 asks
// explicitly for this instead of virtual/interface dispatch in the hot
// loop, which is why Effect is one concrete struct rather than the
// teacher's F-bounded Op/Handler interfaces.
type tag uint8

const (
	tagSucceed tag = iota
	tagEffectTotal
	tagEffectPartial
	tagFail
	tagFlatMap
	tagFold
	tagInterruptStatus
	tagCheckInterrupt
	tagEffectAsync
	tagFork
	tagDaemonStatus
	tagCheckDaemon
	tagDescriptor
	tagLock
	tagYield
	tagAccess
	tagProvide
	tagFiberRefNew
	tagFiberRefModify
	tagRaceWith
	tagEffectSuspend
	tagTrace
	tagWithContext
)

// node is the type-erased representation every Effect[A] wraps. Only one
// node shape exists; the tag field selects which subset of fields the
// interpreter reads.
type node struct {
	tg tag

	// tagSucceed
	value Erased

	// tagEffectTotal / tagEffectPartial
	thunkTotal   func() Erased
	thunkPartial func() (Erased, error)

	// tagFail
	cause Cause

	// tagFlatMap: run inner, then call k with its value
	inner *node
	k     func(Erased) *node

	// tagFold: run inner, then onFailure(cause) or onSuccess(value)
	onFailure func(Cause) *node
	onSuccess func(Erased) *node

	// tagInterruptStatus / tagDaemonStatus
	flag bool

	// tagCheckInterrupt / tagCheckDaemon
	checkK func(bool) *node

	// tagEffectAsync
	register   func(resume func(*node)) *node
	blockingOn string

	// tagFork
	daemon      bool // set by ForkDaemon only; meaningful iff forceDaemon
	forceDaemon bool // true: daemon overrides the ambient daemon mask
	forkK       func(*fiberContext) *node

	// tagDescriptor
	descK func(FiberDescriptor) *node

	// tagLock
	executor *Executor

	// tagAccess
	accessK func(Env) *node

	// tagProvide
	env Env

	// tagFiberRefNew
	refInit    Erased
	refCombine func(Erased, Erased) Erased
	refID      uint64
	refK       func(*FiberRefUntyped) *node

	// tagFiberRefModify
	ref   *FiberRefUntyped
	modFn func(Erased) (Erased, Erased) // (newValue, result)

	// tagRaceWith
	left, right *node
	onLeftDone  func(exitUntyped, *fiberContext) *node
	onRightDone func(exitUntyped, *fiberContext) *node

	// tagEffectSuspend
	suspend func() *node

	// tagWithContext
	ctxK func(*fiberContext) *node
}

// Effect[A] is the user-facing, type-safe handle onto a node. A of the
// zero type struct{} is used for effects whose success carries no
// meaningful value (spec.md's Unit convention).
type Effect[A any] struct{ n *node }

func wrap[A any](n *node) Effect[A] { return Effect[A]{n: n} }

// SucceedEffect lifts a pure value into an effect (spec.md §3 Succeed).
func SucceedEffect[A any](a A) Effect[A] {
	return wrap[A](&node{tg: tagSucceed, value: a})
}

// UnitEffect is SucceedEffect(struct{}{}), the idiomatic "no result" value.
func UnitEffect() Effect[struct{}] { return SucceedEffect(struct{}{}) }

// EffectTotal suspends a total (never-panicking) side effect.
func EffectTotal[A any](thunk func() A) Effect[A] {
	return wrap[A](&node{tg: tagEffectTotal, thunkTotal: func() Erased { return thunk() }})
}

// EffectPartial suspends a side effect that may return an error or panic.
// A returned error becomes a typed Fail; a panic is recovered and becomes
// a Die, unless Platform.Fatal classifies the recovered value as fatal, in
// which case it is re-panicked (spec.md §7 "Fatal... bypasses all user
// handlers").
func EffectPartial[A any](thunk func() (A, error)) Effect[A] {
	return wrap[A](&node{tg: tagEffectPartial, thunkPartial: func() (Erased, error) {
		return thunk()
	}})
}

// FailEffect terminates with the given Cause.
func FailEffect[A any](c Cause) Effect[A] {
	return wrap[A](&node{tg: tagFail, cause: c})
}

// FailWith terminates with a typed, expected error (shorthand for
// FailEffect(FailCause(err))).
func FailWith[A any](err error) Effect[A] {
	return FailEffect[A](FailCause(err))
}

// DieWith terminates with an unrecoverable defect (shorthand for
// FailEffect(DieCause(v))).
func DieWith[A any](v any) Effect[A] {
	return FailEffect[A](DieCause(v))
}

// FlatMap sequences inner and a continuation over its result value.
func FlatMap[A, B any](inner Effect[A], k func(A) Effect[B]) Effect[B] {
	return wrap[B](&node{
		tg:    tagFlatMap,
		inner: inner.n,
		k:     func(v Erased) *node { return k(v.(A)).n },
	})
}

// Fold installs a unified error/success continuation over inner.
func Fold[A, B any](inner Effect[A], onFailure func(Cause) Effect[B], onSuccess func(A) Effect[B]) Effect[B] {
	return wrap[B](&node{
		tg:        tagFold,
		inner:     inner.n,
		onFailure: func(c Cause) *node { return onFailure(c).n },
		onSuccess: func(v Erased) *node { return onSuccess(v.(A)).n },
	})
}

// InterruptStatusEffect runs inner inside a region where interruptibility
// is forced to flag.
func InterruptStatusEffect[A any](flag bool, inner Effect[A]) Effect[A] {
	return wrap[A](&node{tg: tagInterruptStatus, flag: flag, inner: inner.n})
}

// CheckInterrupt observes the current interrupt mask.
func CheckInterrupt[A any](k func(interruptible bool) Effect[A]) Effect[A] {
	return wrap[A](&node{tg: tagCheckInterrupt, checkK: func(b bool) *node { return k(b).n }})
}

// EffectAsync suspends the fiber and registers a callback that will
// eventually resume it via the resume function it receives. If register
// returns a non-nil effect immediately, that effect is used in place of
// suspension (spec.md 4.F EffectAsync row).
func EffectAsync[A any](blockingOn string, register func(resume func(Effect[A])) Effect[A]) Effect[A] {
	return wrap[A](&node{
		tg:         tagEffectAsync,
		blockingOn: blockingOn,
		register: func(resumeErased func(*node)) *node {
			resultEffect := register(func(a Effect[A]) {
				resumeErased(a.n)
			})
			if resultEffect.n == nil {
				return nil
			}
			return resultEffect.n
		},
	})
}

// ForkEffect starts inner as a new fiber and yields a Fiber[A] handle.
// Whether the child is supervised (registered in the parent's children) or
// a globally tracked daemon is decided by the ambient daemon mask at the
// moment the interpreter reaches this node (spec.md §4.G), not by this
// constructor.
func ForkEffect[A any](inner Effect[A]) Effect[*Fiber[A]] {
	return wrap[*Fiber[A]](&node{
		tg:    tagFork,
		inner: inner.n,
		forkK: func(c *fiberContext) *node { return SucceedEffect(&Fiber[A]{ctx: c}).n },
	})
}

// ForkDaemon starts inner as a new, globally tracked daemon fiber
// regardless of the ambient daemon mask.
func ForkDaemon[A any](inner Effect[A]) Effect[*Fiber[A]] {
	return wrap[*Fiber[A]](&node{
		tg:          tagFork,
		inner:       inner.n,
		daemon:      true,
		forceDaemon: true,
		forkK:       func(c *fiberContext) *node { return SucceedEffect(&Fiber[A]{ctx: c}).n },
	})
}

// DaemonStatusEffect runs inner with the ambient daemon mask forced to flag.
func DaemonStatusEffect[A any](flag bool, inner Effect[A]) Effect[A] {
	return wrap[A](&node{tg: tagDaemonStatus, flag: flag, inner: inner.n})
}

// CheckDaemon observes the current daemon mask.
func CheckDaemon[A any](k func(daemon bool) Effect[A]) Effect[A] {
	return wrap[A](&node{tg: tagCheckDaemon, checkK: func(b bool) *node { return k(b).n }})
}

// DescriptorEffect accesses the running fiber's own descriptor.
func DescriptorEffect[A any](k func(FiberDescriptor) Effect[A]) Effect[A] {
	return wrap[A](&node{tg: tagDescriptor, descK: func(d FiberDescriptor) *node { return k(d).n }})
}

// LockEffect runs inner on the given executor.
func LockEffect[A any](executor *Executor, inner Effect[A]) Effect[A] {
	return wrap[A](&node{tg: tagLock, executor: executor, inner: inner.n})
}

// YieldEffect is a cooperative reschedule point.
func YieldEffect() Effect[struct{}] {
	return wrap[struct{}](&node{tg: tagYield})
}

// AccessEffect reads the head of the environment stack.
func AccessEffect[A any](k func(Env) Effect[A]) Effect[A] {
	return wrap[A](&node{tg: tagAccess, accessK: func(e Env) *node { return k(e).n }})
}

// ProvideEffect runs inner with r pushed onto the environment stack.
func ProvideEffect[A any](r Env, inner Effect[A]) Effect[A] {
	return wrap[A](&node{tg: tagProvide, env: r, inner: inner.n})
}

// EffectSuspendEffect defers construction of the effect until the
// interpreter actually reaches this node.
func EffectSuspendEffect[A any](f func() Effect[A]) Effect[A] {
	return wrap[A](&node{tg: tagEffectSuspend, suspend: func() *node { return f().n }})
}

// TraceEffect captures the current execution trace (spec.md §3 Trace). The
// realization here is deliberately minimal: a snapshot of the fiber's id
// and parent id, not a full stack-frame trace — full stack capture belongs
// to the reporting layer spec.md places out of scope.
func TraceEffect() Effect[Trace] {
	return wrap[Trace](&node{tg: tagTrace})
}

// Trace is the minimal execution-trace snapshot TraceEffect produces.
type Trace struct {
	FiberID  FiberID
	ParentID FiberID // zero if root
}

// withFiberContext grants k direct access to the evaluating fiber's
// internal fiberContext. Unexported: it exists only for runtime-internal
// plumbing (Fiber.Join's ref-inheritance-on-join) that needs more than
// FiberDescriptor's read-only snapshot.
func withFiberContext[A any](k func(*fiberContext) Effect[A]) Effect[A] {
	return wrap[A](&node{tg: tagWithContext, ctxK: func(c *fiberContext) *node { return k(c).n }})
}
