// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zio

// Exit is the terminal outcome of a fiber: a success value of type A, or a
// failure Cause. It is the Go re-typing of the teacher's Either[E,A] (see
// error.go) onto the domain's Success/Failure vocabulary.
type Exit[A any] struct {
	ok    bool
	value A
	cause Cause
}

// Succeed builds a successful Exit.
func Succeed[A any](a A) Exit[A] { return Exit[A]{ok: true, value: a} }

// Fail builds a failed Exit from a Cause.
func Fail[A any](c Cause) Exit[A] { return Exit[A]{ok: false, cause: c} }

// IsSuccess reports whether the exit is a success.
func (e Exit[A]) IsSuccess() bool { return e.ok }

// IsFailure reports whether the exit is a failure.
func (e Exit[A]) IsFailure() bool { return !e.ok }

// Value returns the success value and true, or the zero value and false.
func (e Exit[A]) Value() (A, bool) {
	if e.ok {
		return e.value, true
	}
	var zero A
	return zero, false
}

// Cause returns the failure cause and true, or EmptyCause and false.
func (e Exit[A]) Cause() (Cause, bool) {
	if !e.ok {
		return e.cause, true
	}
	return EmptyCause, false
}

// Match pattern-matches the exit, invoking onSuccess or onFailure.
func Match[A, T any](e Exit[A], onSuccess func(A) T, onFailure func(Cause) T) T {
	if e.ok {
		return onSuccess(e.value)
	}
	return onFailure(e.cause)
}

// MapExit applies f to a successful exit's value, passing failures through
// unchanged.
func MapExit[A, B any](e Exit[A], f func(A) B) Exit[B] {
	if e.ok {
		return Succeed(f(e.value))
	}
	return Fail[B](e.cause)
}

// exitUntyped is the type-erased shape used by fiber plumbing (FiberState,
// Promise, Supervisor) that must hold an Exit[A] for an unknown A.
type exitUntyped struct {
	ok    bool
	value any
	cause Cause
}

func toUntyped[A any](e Exit[A]) exitUntyped {
	return exitUntyped{ok: e.ok, value: e.value, cause: e.cause}
}

func fromUntyped[A any](e exitUntyped) Exit[A] {
	if e.ok {
		v, _ := e.value.(A)
		return Succeed(v)
	}
	return Fail[A](e.cause)
}
