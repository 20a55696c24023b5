// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates the operation cannot proceed immediately.
//
// It is returned by BoundedQueue's non-blocking Enqueue and EnqueueValue
// when the queue is full (backpressure). Dequeue does not return it; an
// empty queue is reported through Dequeue's ok result.
//
// ErrWouldBlock is a control flow signal, not a failure. The caller should
// retry the operation later (with backoff or yield) rather than propagating
// the error.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
//
// Example:
//
//	for {
//	    err := q.EnqueueValue(item)
//	    if err == nil {
//	        break
//	    }
//	    if async.IsWouldBlock(err) {
//	        runtime.Gosched()
//	        continue
//	    }
//	    return err // Unexpected error
//	}
var ErrWouldBlock = iox.ErrWouldBlock

// ErrPoolClosed is returned by Post/Post1/Post2/Post3 once the pool's
// Close method has been called. Tasks already queued before Close may or
// may not run to completion; no new task is ever accepted afterward.
var ErrPoolClosed = errors.New("async: thread pool is closed")

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil, ErrWouldBlock, or ErrMore.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}
