// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zio

// runFiber starts the interpreter loop for a freshly allocated fiber and
// arranges for onDone to fire exactly once, from whichever goroutine
// actually drives the fiber to completion.
func runFiber(ctx *fiberContext, start *node, onDone func(exitUntyped)) {
	registerChild(ctx.parent, ctx)
	finish := func(ue exitUntyped) {
		observers := ctx.state.complete(ue)
		unregisterChild(ctx.parent, ctx)
		if !ue.ok && len(observers) == 0 {
			reportUnobserved(ctx, ue.cause)
		}
		for _, o := range observers {
			o(ue)
		}
		onDone(ue)
	}
	evalLoop(ctx, start, finish)
}

// reportUnobserved routes a fiber's terminal failure to the platform's
// reporting hooks when it completed with nobody registered to observe it
// (no Join/Await had parked on it yet) — a Died cause goes to ReportFatal,
// a Failed cause goes to ReportFailure, and a cause that contains any
// interruption is not reported at all (spec.md §7).
func reportUnobserved(ctx *fiberContext, c Cause) {
	if c.IsEmpty() || c.Interrupted() {
		return
	}
	if c.Died() {
		ctx.rt.platform.ReportFatal(ctx.id, c)
		return
	}
	ctx.rt.platform.ReportFailure(ctx.id, c)
}

// effectiveInterrupt unions ctx's own accumulated interrupt cause with its
// ancestors', walking the parent chain fresh on every call rather than
// caching the result (spec.md §4.G "propagateAncestorInterruption runs at
// the start of each scheduling turn: walk the parent chain and union each
// ancestor's accumulated interrupt cause into this fiber's state"). This is
// what lets a fiber forked *after* an ancestor was already interrupted
// still observe that interruption: Supervisor's interruptFiber only pushes
// into the snapshot of descendants that existed at the moment it ran, but
// any fiber whose parent chain passes through an interrupted ancestor
// picks the cause up here on its own next turn, without needing to have
// been in that snapshot at all.
//
// A daemon fiber is immune to ancestor-propagated interruption (spec.md
// §4.G), so the walk never climbs out of one: a daemon ctx reports only
// its own accumulated cause, and a non-daemon ctx stops after folding in
// the first daemon ancestor it meets (that ancestor's own direct
// interrupts still apply to ctx — only *its* parent chain is severed).
func effectiveInterrupt(ctx *fiberContext) Cause {
	c := ctx.state.accumulatedInterrupt()
	if ctx.daemon {
		return c
	}
	for p := ctx.parent; p != nil; p = p.parent {
		if pc := p.state.accumulatedInterrupt(); !pc.IsEmpty() {
			c = c.Then(pc)
		}
		if p.daemon {
			break
		}
	}
	return c
}

// evalLoop is the dense tag-switch interpreter (spec.md §9: "a small
// integer tag and dense switch" in place of virtual dispatch). It drives
// ctx's explicit stacks (ctx.st) through cur and every node reachable from
// it by FlatMap/Fold continuation, stopping on completion, on an
// EffectAsync or RaceWith suspension, on Yield, or after YieldOpCount
// steps. On Yield or an exhausted budget the remaining work is resubmitted
// to ctx.executor; a suspended fiber is resubmitted later by its resume
// callback. In every case this goroutine returns.
func evalLoop(ctx *fiberContext, cur *node, finish func(exitUntyped)) {
	ops := 0
	for {
		if cur == nil {
			cur = UnitEffect().n
		}

		ops++
		if ops >= ctx.rt.platform.YieldOpCount {
			resubmit := cur
			ctx.executor.Submit(func() { evalLoop(ctx, resubmit, finish) })
			return
		}

		// tagFold is excluded: it has not yet pushed its own onFailure
		// frame (that happens in the switch below), so overwriting cur
		// here would manufacture a Fail that skips straight past a
		// handler (OnInterrupt/Ensuring/Bracket, all built on Fold) that
		// hasn't had a chance to install itself yet. Deferring by one
		// iteration lets the Fold case run first; the check then reapplies
		// to cur.inner with the handler already on the stack.
		if cur.tg != tagFail && cur.tg != tagFold && ctx.st.interruptible() {
			if acc := effectiveInterrupt(ctx); !acc.IsEmpty() {
				cur = &node{tg: tagFail, cause: acc}
			}
		}

		switch cur.tg {
		case tagSucceed:
			cur = unwindSuccess(ctx, cur.value, finish)
			if cur == nil {
				return
			}
			continue

		case tagEffectTotal:
			v := cur.thunkTotal()
			cur = unwindSuccess(ctx, v, finish)
			if cur == nil {
				return
			}
			continue

		case tagEffectPartial:
			v, c, failed := runPartial(ctx, cur.thunkPartial)
			if failed {
				cur = &node{tg: tagFail, cause: c}
				continue
			}
			cur = unwindSuccess(ctx, v, finish)
			if cur == nil {
				return
			}
			continue

		case tagFail:
			cur = unwindFailure(ctx, cur.cause, finish)
			if cur == nil {
				return
			}
			continue

		case tagFlatMap:
			ctx.st.pushCont(&contFrame{kind: frameFlatMap, k: cur.k})
			cur = cur.inner
			continue

		case tagFold:
			ctx.st.pushCont(&contFrame{kind: frameFold, onFailure: cur.onFailure, onSuccess: cur.onSuccess})
			cur = cur.inner
			continue

		case tagInterruptStatus:
			ctx.st.pushCont(&contFrame{kind: frameSentinelInterruptStatus, prevInterruptible: ctx.st.interruptible()})
			ctx.st.pushInterruptible(cur.flag)
			cur = cur.inner
			continue

		case tagCheckInterrupt:
			cur = cur.checkK(ctx.st.interruptible())
			continue

		case tagDaemonStatus:
			ctx.st.pushCont(&contFrame{kind: frameSentinelDaemonStatus, prevDaemon: ctx.st.isDaemon()})
			ctx.st.pushDaemon(cur.flag)
			cur = cur.inner
			continue

		case tagCheckDaemon:
			cur = cur.checkK(ctx.st.isDaemon())
			continue

		case tagAccess:
			cur = cur.accessK(ctx.st.currentEnv())
			continue

		case tagProvide:
			ctx.st.pushCont(&contFrame{kind: frameSentinelProvide, prevEnv: ctx.st.currentEnv()})
			ctx.st.pushEnv(cur.env)
			cur = cur.inner
			continue

		case tagLock:
			ctx.st.pushCont(&contFrame{kind: frameSentinelLock, prevExecutor: ctx.st.currentExecutor()})
			ctx.st.pushExecutor(cur.executor)
			ctx.executor = cur.executor
			cur = cur.inner
			continue

		case tagDescriptor:
			cur = cur.descK(ctx.descriptor())
			continue

		case tagEffectSuspend:
			cur = cur.suspend()
			continue

		case tagWithContext:
			cur = cur.ctxK(ctx)
			continue

		case tagTrace:
			parent := FiberID(0)
			if ctx.parent != nil {
				parent = ctx.parent.id
			}
			cur = unwindSuccess(ctx, Trace{FiberID: ctx.id, ParentID: parent}, finish)
			if cur == nil {
				return
			}
			continue

		case tagYield:
			next := unwindSuccess(ctx, struct{}{}, finish)
			if next == nil {
				return
			}
			ctx.executor.Submit(func() { evalLoop(ctx, next, finish) })
			return

		case tagFork:
			daemon := cur.daemon
			if !cur.forceDaemon {
				daemon = ctx.st.isDaemon()
			}
			child := newFiberContext(ctx.rt, ctx, daemon)
			go runFiber(child, cur.inner, func(exitUntyped) {})
			cur = cur.forkK(child)
			continue

		case tagFiberRefNew:
			u := &FiberRefUntyped{id: cur.refID, initial: cur.refInit, combine: cur.refCombine}
			ctx.refsMu.Lock()
			ctx.refs[u.id] = refEntry{u: u, value: u.initial}
			ctx.refsMu.Unlock()
			cur = cur.refK(u)
			continue

		case tagFiberRefModify:
			ctx.refsMu.Lock()
			entry, ok := ctx.refs[cur.ref.id]
			if !ok {
				entry = refEntry{u: cur.ref, value: cur.ref.initial}
			}
			nv, result := cur.modFn(entry.value)
			ctx.refs[cur.ref.id] = refEntry{u: cur.ref, value: nv}
			ctx.refsMu.Unlock()
			cur = unwindSuccess(ctx, result, finish)
			if cur == nil {
				return
			}
			continue

		case tagRaceWith:
			evalRaceWith(ctx, cur, finish)
			return

		case tagEffectAsync:
			evalAsync(ctx, cur, finish)
			return

		default:
			panic("zio: unknown effect tag")
		}
	}
}

// runPartial invokes thunk, converting a returned error into FailCause and a
// recovered panic into DieCause, unless Platform.Fatal classifies the
// panic value as process-fatal, in which case it is re-panicked (spec.md
// §7 "Fatal... bypasses all user handlers"). failed reports whether c is
// meaningful.
func runPartial(ctx *fiberContext, thunk func() (Erased, error)) (v Erased, c Cause, failed bool) {
	defer func() {
		if r := recover(); r != nil {
			if ctx.rt.platform.Fatal(r) {
				panic(r)
			}
			c, failed = DieCause(r), true
		}
	}()
	v, err := thunk()
	if err != nil {
		return v, FailCause(err), true
	}
	return v, EmptyCause, false
}

// unwindSuccess pops ctx.st.cont, feeding value through continuations and
// restoring sentinel regions, until it hits a user continuation (returns the
// next node to evaluate) or empties the stack (calls finish and returns
// nil).
func unwindSuccess(ctx *fiberContext, value Erased, finish func(exitUntyped)) *node {
	for {
		f, ok := ctx.st.popCont()
		if !ok {
			finish(exitUntyped{ok: true, value: value})
			return nil
		}
		switch f.kind {
		case frameFlatMap:
			k := f.k
			releaseFrame(f)
			return k(value)
		case frameFold:
			onSuccess := f.onSuccess
			releaseFrame(f)
			return onSuccess(value)
		case frameSentinelInterruptStatus:
			ctx.st.popInterruptible()
			releaseFrame(f)
		case frameSentinelDaemonStatus:
			ctx.st.popDaemon()
			releaseFrame(f)
		case frameSentinelProvide:
			ctx.st.popEnv()
			releaseFrame(f)
		case frameSentinelLock:
			ctx.st.popExecutor()
			ctx.executor = ctx.st.currentExecutor()
			releaseFrame(f)
		}
	}
}

// unwindFailure pops ctx.st.cont looking for a Fold frame's onFailure
// handler, dropping every frameFlatMap and restoring every sentinel region
// along the way (spec.md §4.F unwind table). Reaching the bottom of the
// stack finishes the fiber with the failing Cause, with every interruption
// the fiber has accumulated (including its ancestors', as effectiveInterrupt
// reports them) that the cause does not already contain appended via Then.
func unwindFailure(ctx *fiberContext, cause Cause, finish func(exitUntyped)) *node {
	for {
		f, ok := ctx.st.popCont()
		if !ok {
			for _, id := range effectiveInterrupt(ctx).Interruptors() {
				if ic := InterruptCause(id); !cause.Contains(ic) {
					cause = cause.Then(ic)
				}
			}
			finish(exitUntyped{ok: false, cause: cause})
			return nil
		}
		switch f.kind {
		case frameFold:
			onFailure := f.onFailure
			releaseFrame(f)
			return onFailure(cause)
		case frameSentinelInterruptStatus:
			ctx.st.popInterruptible()
			releaseFrame(f)
		case frameSentinelDaemonStatus:
			ctx.st.popDaemon()
			releaseFrame(f)
		case frameSentinelProvide:
			ctx.st.popEnv()
			releaseFrame(f)
		case frameSentinelLock:
			ctx.st.popExecutor()
			ctx.executor = ctx.st.currentExecutor()
			releaseFrame(f)
		default: // frameFlatMap: dropped, not invoked, on failure unwind
			releaseFrame(f)
		}
	}
}

// evalAsync handles tagEffectAsync: it registers cur.register's callback and
// arms the epoch guard and the forced-interrupt resume hook. The caller
// always returns control to its own caller immediately after invoking this,
// whether the fiber genuinely suspended or register short-circuited with an
// immediate replacement effect — the immediate case recurses into evalLoop
// itself rather than handing control back to the switch.
func evalAsync(ctx *fiberContext, cur *node, finish func(exitUntyped)) {
	epoch := ctx.asyncEpoch.Add(1)
	resumeOnce := Once(func(n *node) struct{} {
		if !ctx.state.markRunning(epoch) {
			return struct{}{} // stale resume past this epoch; discarded
		}
		ctx.resumeMu.Lock()
		ctx.resumeFn = nil
		ctx.resumeMu.Unlock()
		ctx.executor.Submit(func() { evalLoop(ctx, n, finish) })
		return struct{}{}
	})
	resume := func(n *node) { resumeOnce.TryResume(n) }

	ctx.resumeMu.Lock()
	ctx.resumeFn = func() { resume(&node{tg: tagFail, cause: ctx.state.accumulatedInterrupt()}) }
	ctx.resumeMu.Unlock()

	immediate := cur.register(resume)
	if immediate != nil {
		ctx.resumeMu.Lock()
		ctx.resumeFn = nil
		ctx.resumeMu.Unlock()
		// Re-enter evalLoop synchronously with the replacement node rather
		// than suspending — register short-circuited (spec.md §4.F
		// EffectAsync row, "if register returns non-nil immediately").
		evalLoop(ctx, immediate, finish)
		return
	}

	ctx.state.markSuspended(ctx.st.interruptible(), epoch, cur.blockingOn)
}

// evalRaceWith forks both sides of a Race as child fibers and arms the
// ambient fiber's own suspension/resume machinery so whichever side
// completes first resumes the racing fiber via its onLeftDone/onRightDone
// continuation, with the other side's fiberContext handed over so that
// continuation can interrupt the loser (spec.md §4.F.1).
func evalRaceWith(ctx *fiberContext, cur *node, finish func(exitUntyped)) {
	left := newFiberContext(ctx.rt, ctx, false)
	right := newFiberContext(ctx.rt, ctx, false)
	epoch := ctx.asyncEpoch.Add(1)
	resumeOnce := Once(func(n *node) struct{} {
		if !ctx.state.markRunning(epoch) {
			return struct{}{}
		}
		ctx.resumeMu.Lock()
		ctx.resumeFn = nil
		ctx.resumeMu.Unlock()
		ctx.executor.Submit(func() { evalLoop(ctx, n, finish) })
		return struct{}{}
	})
	resume := func(n *node) { resumeOnce.TryResume(n) }

	ctx.resumeMu.Lock()
	ctx.resumeFn = func() { resume(&node{tg: tagFail, cause: ctx.state.accumulatedInterrupt()}) }
	ctx.resumeMu.Unlock()

	go runFiber(left, cur.left, func(ue exitUntyped) { resume(cur.onLeftDone(ue, right)) })
	go runFiber(right, cur.right, func(ue exitUntyped) { resume(cur.onRightDone(ue, left)) })

	ctx.state.markSuspended(ctx.st.interruptible(), epoch, "race")
}
