// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCauseEmptyIsIdentity(t *testing.T) {
	f := FailCause(errors.New("boom"))

	assert.True(t, EmptyCause.Then(f).Contains(f))
	assert.True(t, f.Then(EmptyCause).Contains(f))
	assert.True(t, EmptyCause.Both(f).Contains(f))
	assert.True(t, f.Both(EmptyCause).Contains(f))
}

func TestCausePredicates(t *testing.T) {
	fail := FailCause(errors.New("x"))
	die := DieCause("defect")
	interrupt := InterruptCause(FiberID(7))

	assert.True(t, fail.Failed())
	assert.False(t, fail.Died())
	assert.False(t, fail.Interrupted())

	assert.True(t, die.Died())
	assert.True(t, interrupt.Interrupted())

	combo := fail.Then(die).Both(interrupt)
	assert.True(t, combo.Failed())
	assert.True(t, combo.Died())
	assert.True(t, combo.Interrupted())
}

func TestCauseInterruptors(t *testing.T) {
	c := InterruptCause(FiberID(1)).Both(InterruptCause(FiberID(2))).Then(InterruptCause(FiberID(1)))
	ids := c.Interruptors()
	assert.ElementsMatch(t, []FiberID{1, 2}, ids)
}

func TestCauseFailureOrCause(t *testing.T) {
	underlying := errors.New("typed")
	fail := FailCause(underlying)
	err, rest := fail.FailureOrCause()
	require.Equal(t, underlying, err)
	assert.Nil(t, rest)

	die := DieCause("defect")
	err, rest = die.FailureOrCause()
	assert.Nil(t, err)
	require.NotNil(t, rest)
	assert.True(t, rest.Died())
}

func TestCauseAsErrorRoundTrip(t *testing.T) {
	c := FailCause(errors.New("boom")).Both(InterruptCause(FiberID(3)))
	err := c.AsError()
	require.Error(t, err)

	back, ok := AsCause(err)
	require.True(t, ok)
	assert.True(t, back.Contains(InterruptCause(FiberID(3))))
}
