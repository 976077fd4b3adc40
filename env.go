// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zio

import "reflect"

// Env is the opaque, type-indexed environment record threaded by the
// Access/Provide effect nodes (spec.md §6 "Environment record"). Env values
// are immutable: ProvideService returns a new Env that shares the
// receiver's entries, so pushing/popping the env stack (component D) never
// mutates an Env another fiber might be holding.
//
// Has/Layer-style composition beyond "add one service, read one service"
// is explicitly out of scope (spec.md §6); this is the minimal slice that
// makes Access/Provide useful.
type Env struct {
	services map[reflect.Type]any
}

// EmptyEnv is an Env with no services bound.
var EmptyEnv = Env{}

// ProvideService layers svc into e, keyed by S's static type, returning a
// new Env. The original e is not mutated.
func ProvideService[S any](e Env, svc S) Env {
	next := make(map[reflect.Type]any, len(e.services)+1)
	for k, v := range e.services {
		next[k] = v
	}
	next[reflect.TypeOf((*S)(nil)).Elem()] = svc
	return Env{services: next}
}

// GetService retrieves the service of type S from e, if any was provided.
func GetService[S any](e Env) (S, bool) {
	v, ok := e.services[reflect.TypeOf((*S)(nil)).Elem()]
	if !ok {
		var zero S
		return zero, false
	}
	return v.(S), true
}

// ProvideEffectService runs inner with svc layered into the ambient
// environment (AccessEffect/ProvideEffect's service-oriented convenience).
func ProvideEffectService[S any, A any](inner Effect[A], svc S) Effect[A] {
	return AccessEffect[A](func(e Env) Effect[A] {
		return ProvideEffect(ProvideService(e, svc), inner)
	})
}

// AccessService reads service S out of the ambient environment and passes
// it to k. Dies with a missing-service defect if S was never provided —
// an unprovided required service is a programmer error, not a recoverable
// Fail (mirrors ZIO's treatment of a missing Has[Service] entry).
func AccessService[S any, A any](k func(S) Effect[A]) Effect[A] {
	return AccessEffect[A](func(e Env) Effect[A] {
		svc, ok := GetService[S](e)
		if !ok {
			return DieWith[A](missingServiceError{})
		}
		return k(svc)
	})
}

type missingServiceError struct{}

func (missingServiceError) Error() string { return "zio: required service not provided in Env" }
