// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeter struct{ prefix string }

func TestProvideAndAccessService(t *testing.T) {
	rt := testRuntime()
	prog := ProvideEffectService[greeter, string](
		AccessService[greeter](func(g greeter) Effect[string] {
			return SucceedEffect(g.prefix + "world")
		}),
		greeter{prefix: "hello, "},
	)
	ex := UnsafeRun(rt, prog)
	v, ok := ex.Value()
	require.True(t, ok)
	assert.Equal(t, "hello, world", v)
}

func TestAccessServiceMissingDiesWithDefect(t *testing.T) {
	rt := testRuntime()
	prog := AccessService[greeter](func(g greeter) Effect[string] {
		return SucceedEffect(g.prefix)
	})
	ex := UnsafeRun(rt, prog)
	require.True(t, ex.IsFailure())
	c, ok := ex.Cause()
	require.True(t, ok)
	assert.True(t, c.Died())
}

func TestProvideServiceDoesNotLeakOutsideScope(t *testing.T) {
	rt := testRuntime()
	prog := FlatMap(
		ProvideEffectService[greeter, string](
			AccessService[greeter](func(g greeter) Effect[string] { return SucceedEffect(g.prefix) }),
			greeter{prefix: "scoped"},
		),
		func(string) Effect[string] {
			return AccessService[greeter](func(g greeter) Effect[string] { return SucceedEffect(g.prefix) })
		},
	)
	ex := UnsafeRun(rt, prog)
	require.True(t, ex.IsFailure())
	c, ok := ex.Cause()
	require.True(t, ok)
	assert.True(t, c.Died())
}
