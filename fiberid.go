// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package zio

import "sync/atomic"

// FiberID is a monotonic identifier assigned by the runtime to every fiber,
// including the root fiber created by Runtime.UnsafeRun.
type FiberID uint64

var fiberIDSeq atomic.Uint64

// nextFiberID returns a fresh, process-wide monotonic FiberID. Zero is
// never issued so the zero value of FiberID can mean "unset".
func nextFiberID() FiberID {
	return FiberID(fiberIDSeq.Add(1))
}
