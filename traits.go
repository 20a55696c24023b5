// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

// defaultBlockSize is the unbounded queue's default block size, a power
// of two like every block size set through Traits.BlockSize.
const defaultBlockSize = 1024

// Traits configures queue construction: the unbounded queue's block size
// and whether a queue runs in safe mode.
//
// Safe mode guards the user-supplied constructor passed to Enqueue: a
// failing constructor marks its cell INVALID instead of corrupting the
// queue, at the cost of a branch on every enqueue. Unsafe mode (the
// default) assumes the constructor never fails and skips the guard; a
// constructor that fails anyway leaves the queue's state unspecified.
type Traits struct {
	blockSize int
	safeMode  bool
}

// NewTraits returns the default traits: block size 1024, unsafe mode.
//
// Example:
//
//	q := async.NewQueue[Event](async.NewTraits().SafeMode())
//	bq := async.NewBoundedQueue[Event](1024, async.NewTraits().BlockSize(256))
func NewTraits() *Traits {
	return &Traits{blockSize: defaultBlockSize}
}

// BlockSize sets the unbounded queue's block size, rounded up to the next
// power of two. Ignored by the bounded queue, whose capacity is exact.
// Panics if n < 1.
func (t *Traits) BlockSize(n int) *Traits {
	if n < 1 {
		panic("async: block size must be >= 1")
	}
	t.blockSize = roundToPow2(n)
	return t
}

// SafeMode enables safe-mode behavior: a constructor that fails marks its
// cell INVALID, which the dequeue that reaches it consumes while
// reporting false, as for an empty queue, instead of propagating the
// failure in a way that could leave the queue's internal state
// inconsistent.
func (t *Traits) SafeMode() *Traits {
	t.safeMode = true
	return t
}

// roundToPow2 rounds n up to the next power of 2. Never returns less than 1.
func roundToPow2(n int) int {
	if n < 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// pad is cache line padding to prevent false sharing between hot atomic
// fields living in the same struct.
type pad [64]byte
