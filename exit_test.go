// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitSuccess(t *testing.T) {
	e := Succeed(42)
	assert.True(t, e.IsSuccess())
	assert.False(t, e.IsFailure())

	v, ok := e.Value()
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	_, ok = e.Cause()
	assert.False(t, ok)
}

func TestExitFailure(t *testing.T) {
	c := FailCause(errors.New("boom"))
	e := Fail[int](c)
	assert.False(t, e.IsSuccess())

	_, ok := e.Value()
	assert.False(t, ok)

	got, ok := e.Cause()
	assert.True(t, ok)
	assert.True(t, got.Contains(c))
}

func TestMatchAndMapExit(t *testing.T) {
	ok := Succeed(10)
	doubled := MapExit(ok, func(a int) int { return a * 2 })
	v, _ := doubled.Value()
	assert.Equal(t, 20, v)

	result := Match(ok,
		func(a int) string { return "success" },
		func(Cause) string { return "failure" },
	)
	assert.Equal(t, "success", result)

	failed := Fail[int](FailCause(errors.New("x")))
	mapped := MapExit(failed, func(a int) int { return a * 2 })
	assert.True(t, mapped.IsFailure())
}
