// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zio

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// causeTag discriminates the Cause sum. Kept as a small integer rather than
// a type switch on an interface so Contains/PrettyPrint dispatch with a
// dense switch, not virtual calls.
type causeTag uint8

const (
	causeEmpty causeTag = iota
	causeFail
	causeDie
	causeInterrupt
	causeThen
	causeBoth
)

// Cause is a composable failure value: a checked error, a defect, an
// interruption, or a combination of these via Then (sequential) or Both
// (parallel). Empty is the identity element for both combinators.
//
// Cause is immutable once constructed; Then/Both allocate a new node and
// never mutate their operands.
type Cause struct {
	tag   causeTag
	err   error    // causeFail
	defect any     // causeDie
	fiber  FiberID // causeInterrupt
	left   *Cause  // causeThen, causeBoth
	right  *Cause  // causeThen, causeBoth
}

// EmptyCause is the identity element: Empty ++ c == c, c ++ Empty == c,
// and symmetrically for Both.
var EmptyCause = Cause{tag: causeEmpty}

// FailCause builds a Cause carrying a typed, expected error.
func FailCause(err error) Cause {
	return Cause{tag: causeFail, err: err}
}

// DieCause builds a Cause carrying a defect: an unexpected value recovered
// from a panicking thunk, or any failure the program did not declare.
func DieCause(defect any) Cause {
	return Cause{tag: causeDie, defect: defect}
}

// InterruptCause builds a Cause recording that fiber id requested
// interruption.
func InterruptCause(id FiberID) Cause {
	return Cause{tag: causeInterrupt, fiber: id}
}

// Then sequences two causes. Empty is dropped when it appears as either
// operand; otherwise a new causeThen node is allocated.
func (c Cause) Then(other Cause) Cause {
	if c.tag == causeEmpty {
		return other
	}
	if other.tag == causeEmpty {
		return c
	}
	l, r := c, other
	return Cause{tag: causeThen, left: &l, right: &r}
}

// Both composes two causes that failed concurrently. Empty is dropped when
// it appears as either operand; Both is commutative up to structural
// equivalence (Contains treats `a.Both(b)` and `b.Both(a)` the same), but
// the representation itself is not normalized — callers should use
// Contains rather than equality to compare.
func (c Cause) Both(other Cause) Cause {
	if c.tag == causeEmpty {
		return other
	}
	if other.tag == causeEmpty {
		return c
	}
	l, r := c, other
	return Cause{tag: causeBoth, left: &l, right: &r}
}

// IsEmpty reports whether this is the identity Cause.
func (c Cause) IsEmpty() bool { return c.tag == causeEmpty }

// Failed reports whether the cause contains at least one typed Fail.
func (c Cause) Failed() bool { return c.any(func(n Cause) bool { return n.tag == causeFail }) }

// Died reports whether the cause contains at least one Die defect.
func (c Cause) Died() bool { return c.any(func(n Cause) bool { return n.tag == causeDie }) }

// Interrupted reports whether the cause contains at least one Interrupt.
func (c Cause) Interrupted() bool {
	return c.any(func(n Cause) bool { return n.tag == causeInterrupt })
}

// any walks the cause tree, short-circuiting on the first node for which
// pred returns true. O(|cause|) worst case, no allocation.
func (c Cause) any(pred func(Cause) bool) bool {
	switch c.tag {
	case causeThen, causeBoth:
		return c.left.any(pred) || c.right.any(pred)
	default:
		return pred(c)
	}
}

// Contains reports whether sub appears structurally within c, modulo the
// Empty identity laws (an Empty sub-cause is trivially contained in
// anything, including itself).
func (c Cause) Contains(sub Cause) bool {
	if sub.tag == causeEmpty {
		return true
	}
	if c.equalLeaf(sub) {
		return true
	}
	switch c.tag {
	case causeThen, causeBoth:
		return c.left.Contains(sub) || c.right.Contains(sub)
	default:
		return false
	}
}

// equalLeaf reports structural equality of c and other; the operands of
// Both compare in either order.
func (c Cause) equalLeaf(other Cause) bool {
	if c.tag != other.tag {
		return false
	}
	switch c.tag {
	case causeEmpty:
		return true
	case causeFail:
		return c.err == other.err
	case causeDie:
		return c.defect == other.defect
	case causeInterrupt:
		return c.fiber == other.fiber
	case causeThen:
		return c.left.equalLeaf(*other.left) && c.right.equalLeaf(*other.right)
	case causeBoth:
		return (c.left.equalLeaf(*other.left) && c.right.equalLeaf(*other.right)) ||
			(c.left.equalLeaf(*other.right) && c.right.equalLeaf(*other.left))
	default:
		return false
	}
}

// Interruptors returns the set of fiber ids that appear in any Interrupt
// leaf of the cause.
func (c Cause) Interruptors() []FiberID {
	seen := map[FiberID]struct{}{}
	var walk func(Cause)
	walk = func(n Cause) {
		switch n.tag {
		case causeThen, causeBoth:
			walk(*n.left)
			walk(*n.right)
		case causeInterrupt:
			seen[n.fiber] = struct{}{}
		}
	}
	walk(c)
	out := make([]FiberID, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	return out
}

// FailureOrCause splits the first typed Fail error out of the cause, or
// returns the full cause unchanged if it contains no Fail leaf (only
// defects and/or interruptions).
func (c Cause) FailureOrCause() (error, *Cause) {
	var find func(Cause) (error, bool)
	find = func(n Cause) (error, bool) {
		switch n.tag {
		case causeFail:
			return n.err, true
		case causeThen, causeBoth:
			if e, ok := find(*n.left); ok {
				return e, true
			}
			return find(*n.right)
		default:
			return nil, false
		}
	}
	if e, ok := find(c); ok {
		return e, nil
	}
	cc := c
	return nil, &cc
}

// PrettyPrint renders a human-readable, deterministic-order description of
// the cause tree for logs and test failures.
func (c Cause) PrettyPrint() string {
	var b strings.Builder
	c.render(&b, 0)
	return b.String()
}

func (c Cause) render(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	switch c.tag {
	case causeEmpty:
		b.WriteString(indent + "Empty\n")
	case causeFail:
		fmt.Fprintf(b, "%sFail: %v\n", indent, c.err)
	case causeDie:
		fmt.Fprintf(b, "%sDie: %v\n", indent, c.defect)
	case causeInterrupt:
		fmt.Fprintf(b, "%sInterrupt(fiber=%d)\n", indent, c.fiber)
	case causeThen:
		b.WriteString(indent + "Then(\n")
		c.left.render(b, depth+1)
		c.right.render(b, depth+1)
		b.WriteString(indent + ")\n")
	case causeBoth:
		b.WriteString(indent + "Both(\n")
		c.left.render(b, depth+1)
		c.right.render(b, depth+1)
		b.WriteString(indent + ")\n")
	}
}

// AsError converts the cause into a Go error suitable for crossing the
// Runtime boundary (SPEC_FULL.md §7). A stack trace is captured here, at
// the Cause→error crossing, via github.com/pkg/errors — nothing inside the
// interpreter constructs or inspects a Go error.
func (c Cause) AsError() error {
	if c.IsEmpty() {
		return nil
	}
	return errors.WithStack(causeError{cause: c})
}

// causeError adapts a Cause to the error interface for AsError.
type causeError struct{ cause Cause }

func (e causeError) Error() string { return strings.TrimSpace(e.cause.PrettyPrint()) }

// AsCause returns the original Cause behind an error produced by Cause.AsError,
// if any.
func AsCause(err error) (Cause, bool) {
	var ce causeError
	if errors.As(err, &ce) {
		return ce.cause, true
	}
	return Cause{}, false
}
