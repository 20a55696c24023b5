// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

import (
	"sync"
	"sync/atomic"

	"code.hybscloud.com/atomix"
)

// cell is one storage slot inside a block: a value plus the state tag
// that coordinates the single producer and single consumer who will ever
// touch this slot.
type cell[T any] struct {
	state atomix.Int32
	value T
}

// block is one fixed-size link in the unbounded queue's chain. Producers
// and consumers each have their own zero-based index into the block's
// own cells slice: tail for producers (advanced by fetch-add), head for
// consumers (advanced by compare-and-swap). Both
// counters are local to the block and never wrap across the block-size
// boundary, so no masking is needed to index into cells.
//
// refs counts in-flight producer/consumer operations touching this
// block's cells; a block is only eligible for recycling once head has
// swept past its last cell and refs has dropped to zero.
type block[T any] struct {
	_    pad
	tail atomix.Uint64
	_    pad
	head atomix.Uint64
	_    pad
	refs atomix.Int32
	_    pad
	next atomic.Pointer[block[T]]
	cells []cell[T]
	size  uint64
}

func newBlock[T any](size int) *block[T] {
	b := &block[T]{
		cells: make([]cell[T], size),
		size:  uint64(size),
	}
	return b
}

// reset restores a retired block to its pristine, reusable state. Only
// called by the freelist, which guarantees single-threaded access to the
// block at this point (it is no longer reachable from the chain).
func (b *block[T]) reset() {
	b.tail.StoreRelaxed(0)
	b.head.StoreRelaxed(0)
	b.refs.StoreRelaxed(0)
	b.next.Store(nil)
	var zero T
	for i := range b.cells {
		b.cells[i].state.StoreRelaxed(int32(cellEmpty))
		b.cells[i].value = zero
	}
}

// freelist recycles retired blocks to bound allocation churn under a
// long-lived queue. It is guarded by a mutex rather than lock-free: it
// sits off the hot enqueue/dequeue path, so the simplicity is worth the
// (rare, uncontended) lock.
type freelist[T any] struct {
	mu   sync.Mutex
	free []*block[T]
}

func (f *freelist[T]) get(size int) *block[T] {
	f.mu.Lock()
	n := len(f.free)
	if n == 0 {
		f.mu.Unlock()
		return newBlock[T](size)
	}
	b := f.free[n-1]
	f.free = f.free[:n-1]
	f.mu.Unlock()
	if int(b.size) != size {
		// Traits changed block size between allocations (not expected in
		// normal use, but never hand back a mismatched block).
		return newBlock[T](size)
	}
	return b
}

func (f *freelist[T]) put(b *block[T]) {
	b.reset()
	f.mu.Lock()
	f.free = append(f.free, b)
	f.mu.Unlock()
}

// tryRetire recycles hb if it is safe to do so: no producer or consumer
// still holds a reference into it. Best-effort — if a ref is still live,
// the block is simply abandoned to the garbage collector instead of
// being recycled. This keeps recycling off the hot path and avoids
// spin-waiting for a ref that may belong to a descheduled goroutine.
func (f *freelist[T]) tryRetire(hb *block[T]) {
	if hb.refs.LoadAcquire() == 0 {
		f.put(hb)
	}
}
