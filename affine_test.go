// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAffineResumeInvokesOnce(t *testing.T) {
	calls := 0
	a := Once(func(v int) int {
		calls++
		return v * 2
	})
	assert.Equal(t, 10, a.Resume(5))
	assert.Equal(t, 1, calls)
	assert.Panics(t, func() { a.Resume(5) })
}

func TestAffineTryResumeSecondCallFails(t *testing.T) {
	a := Once(func(v int) int { return v + 1 })
	v, ok := a.TryResume(1)
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	v, ok = a.TryResume(1)
	assert.False(t, ok)
	assert.Equal(t, 0, v)
}

func TestAffineDiscardPreventsResume(t *testing.T) {
	called := false
	a := Once(func(struct{}) struct{} {
		called = true
		return struct{}{}
	})
	a.Discard()
	_, ok := a.TryResume(struct{}{})
	assert.False(t, ok)
	assert.False(t, called)
}

func TestAffineRacingResumersOnlyOneWins(t *testing.T) {
	var wins int
	a := Once(func(struct{}) int { return 1 })
	results := make(chan bool, 2)
	go func() { _, ok := a.TryResume(struct{}{}); results <- ok }()
	go func() { _, ok := a.TryResume(struct{}{}); results <- ok }()
	for i := 0; i < 2; i++ {
		if <-results {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
}
