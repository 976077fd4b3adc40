// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zio

import "sync"

// frameKind discriminates the continuation-stack entries the interpreter
// pushes for FlatMap/Fold and the "exit region" sentinels for
// InterruptStatus/DaemonStatus/Provide/Lock (spec.md §4.F "sentinel").
// Sentinels are structurally distinguishable from user continuations and
// are dropped, not invoked, when Fail unwinds the stack (spec.md §4.F
// table, "A sentinel... is dropped but NOT treated as an error handler").
type frameKind uint8

const (
	frameFlatMap frameKind = iota
	frameFold
	frameSentinelInterruptStatus
	frameSentinelDaemonStatus
	frameSentinelProvide
	frameSentinelLock
)

// contFrame is one entry of the continuation stack. Only the fields
// relevant to kind are populated; the rest are zeroed on release.
type contFrame struct {
	kind frameKind

	// frameFlatMap
	k func(Erased) *node

	// frameFold
	onFailure func(Cause) *node
	onSuccess func(Erased) *node

	// sentinels: state to restore on normal exit of the region
	prevInterruptible bool
	prevDaemon        bool
	prevEnv           Env
	prevExecutor      *Executor
}

var contFramePool = sync.Pool{New: func() any { return new(contFrame) }}

func acquireFrame() *contFrame { return contFramePool.Get().(*contFrame) }

func releaseFrame(f *contFrame) {
	*f = contFrame{}
	contFramePool.Put(f)
}

// stacks bundles the five explicit stacks a fiber's interpreter loop
// drives (spec.md component D): continuations, interrupt mask, daemon
// mask, environment, and executor. Backed by Go slices, which already grow
// geometrically on append — the idiomatic-Go reading of spec.md §9's
// "pre-allocate a small backing buffer and grow geometrically."
type stacks struct {
	cont     []*contFrame
	interupt []bool // interruptible flag per InterruptStatus region; top = current
	daemon   []bool // daemon flag per DaemonStatus region; top = current
	env      []Env
	executor []*Executor
}

func newStacks(initialInterruptible, initialDaemon bool, initialEnv Env, initialExecutor *Executor) *stacks {
	return &stacks{
		cont:     make([]*contFrame, 0, 16),
		interupt: []bool{initialInterruptible},
		daemon:   []bool{initialDaemon},
		env:      []Env{initialEnv},
		executor: []*Executor{initialExecutor},
	}
}

func (s *stacks) pushCont(f *contFrame) { s.cont = append(s.cont, f) }

func (s *stacks) popCont() (*contFrame, bool) {
	n := len(s.cont)
	if n == 0 {
		return nil, false
	}
	f := s.cont[n-1]
	s.cont = s.cont[:n-1]
	return f, true
}

func (s *stacks) interruptible() bool { return s.interupt[len(s.interupt)-1] }
func (s *stacks) pushInterruptible(v bool) {
	s.interupt = append(s.interupt, v)
}
func (s *stacks) popInterruptible() {
	s.interupt = s.interupt[:len(s.interupt)-1]
}

func (s *stacks) isDaemon() bool { return s.daemon[len(s.daemon)-1] }
func (s *stacks) pushDaemon(v bool) {
	s.daemon = append(s.daemon, v)
}
func (s *stacks) popDaemon() {
	s.daemon = s.daemon[:len(s.daemon)-1]
}

func (s *stacks) currentEnv() Env { return s.env[len(s.env)-1] }
func (s *stacks) pushEnv(e Env)   { s.env = append(s.env, e) }
func (s *stacks) popEnv()         { s.env = s.env[:len(s.env)-1] }

func (s *stacks) currentExecutor() *Executor { return s.executor[len(s.executor)-1] }
func (s *stacks) pushExecutor(e *Executor)   { s.executor = append(s.executor, e) }
func (s *stacks) popExecutor()               { s.executor = s.executor[:len(s.executor)-1] }
