// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

import (
	"fmt"
	"sync/atomic"

	"code.hybscloud.com/spin"
)

// Queue is an unbounded, lock-free, multi-producer multi-consumer FIFO
// queue built from a linked chain of fixed-size blocks. Producers take a
// ticket into the current tail block by fetch-add; consumers claim the
// next slot of the current head block by compare-and-swap, only once a
// producer has reserved it. A producer whose ticket overflows the block
// is responsible for extending the chain, and a consumer that finds the
// head block exhausted advances to the next block once it is visible.
//
// The zero value is not usable; construct with NewQueue.
type Queue[T any] struct {
	_         pad
	tailBlock atomic.Pointer[block[T]]
	_         pad
	headBlock atomic.Pointer[block[T]]
	_         pad
	freelist  *freelist[T]
	blockSize uint64
	safeMode  bool
}

// NewQueue returns an empty Queue configured by traits. A nil traits
// value is equivalent to NewTraits().
func NewQueue[T any](traits *Traits) *Queue[T] {
	if traits == nil {
		traits = NewTraits()
	}
	b := newBlock[T](traits.blockSize)
	q := &Queue[T]{
		freelist:  &freelist[T]{},
		blockSize: uint64(traits.blockSize),
		safeMode:  traits.safeMode,
	}
	q.tailBlock.Store(b)
	q.headBlock.Store(b)
	return q
}

// EnqueueValue appends v to the queue. It never fails: v is copied into
// place by a constructor that cannot itself fail.
func (q *Queue[T]) EnqueueValue(v T) error {
	return q.Enqueue(func() (T, error) { return v, nil })
}

// Enqueue appends the value produced by ctor to the queue.
//
// In safe mode, an error returned by ctor marks the claimed cell INVALID;
// the Dequeue call that reaches it consumes the cell and reports false,
// as for an empty queue. In unsafe mode (the default),
// ctor is assumed never to fail: a failing ctor still occupies the cell,
// and the queue's observable state for that slot is unspecified.
func (q *Queue[T]) Enqueue(ctor func() (T, error)) error {
	var w spin.Wait
	for {
		tb := q.tailBlock.Load()
		idx := tb.tail.AddAcqRel(1) - 1
		if idx < tb.size {
			tb.refs.AddAcqRel(1)
			c := &tb.cells[idx]
			c.state.StoreRelease(int32(cellStoring))
			v, err := q.runCtor(ctor)
			if err != nil {
				c.value = v
				c.state.StoreRelease(int32(cellInvalid))
				tb.refs.AddAcqRel(-1)
				return err
			}
			c.value = v
			c.state.StoreRelease(int32(cellStored))
			tb.refs.AddAcqRel(-1)
			return nil
		}

		// This ticket overflowed the block. The producer landing exactly
		// on size is uniquely responsible for growing the chain; every
		// later producer just waits for that growth to become visible.
		if idx == tb.size {
			nb := q.freelist.get(int(q.blockSize))
			tb.next.Store(nb)
			q.tailBlock.CompareAndSwap(tb, nb)
		} else {
			for tb.next.Load() == nil {
				w.Once()
			}
			q.tailBlock.CompareAndSwap(tb, tb.next.Load())
		}
	}
}

// Dequeue removes and returns the oldest element. ok is false if the
// queue was observed empty.
func (q *Queue[T]) Dequeue() (value T, ok bool) {
	var w spin.Wait
	for {
		hb := q.headBlock.Load()
		head := hb.head.LoadAcquire()

		if head >= hb.size {
			nb := hb.next.Load()
			if nb == nil {
				var zero T
				return zero, false
			}
			if q.headBlock.CompareAndSwap(hb, nb) {
				q.freelist.tryRetire(hb)
			}
			continue
		}

		// A slot is only worth claiming once a producer has actually
		// reserved it (tail > head); otherwise a ticket claimed here
		// could spin forever waiting for a producer that never comes.
		// head is re-validated against tail right up to the CAS below,
		// so a losing consumer retries from a fresh snapshot instead of
		// ever claiming a slot no producer was assigned.
		tail := hb.tail.LoadAcquire()
		if head >= tail {
			if hb.next.Load() == nil {
				var zero T
				return zero, false
			}
			w.Once()
			continue
		}

		if !hb.head.CompareAndSwapAcqRel(head, head+1) {
			w.Once()
			continue
		}
		idx := head

		hb.refs.AddAcqRel(1)
		c := &hb.cells[idx]
		for {
			s := cellState(c.state.LoadAcquire())
			if s == cellStored {
				c.state.StoreRelease(int32(cellLoading))
				v := c.value
				var zero T
				c.value = zero
				c.state.StoreRelease(int32(cellEmpty))
				hb.refs.AddAcqRel(-1)
				return v, true
			}
			if s == cellInvalid {
				var zero T
				c.value = zero
				c.state.StoreRelease(int32(cellEmpty))
				hb.refs.AddAcqRel(-1)
				return zero, false
			}
			w.Once()
		}
	}
}

// runCtor invokes ctor, and in safe mode also turns a panic into an
// error so the claimed cell is marked INVALID instead of being left
// stuck mid-STORING. Unsafe mode does not recover: a panicking ctor
// leaves the cell (and the queue's behavior around it) unspecified.
func (q *Queue[T]) runCtor(ctor func() (T, error)) (v T, err error) {
	if !q.safeMode {
		return ctor()
	}
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v, err = zero, fmt.Errorf("async: queue constructor panicked: %v", r)
		}
	}()
	return ctor()
}

// BulkEnqueue appends every value in values, in order, as a single
// batch: the batch occupies consecutive linearization points, so no
// other producer's elements can interleave between them. A batch that
// does not fit in the current tail block's remaining room straddles
// into one or more freshly grown successor blocks; the batch's share of
// each successor is reserved before that successor is published.
func (q *Queue[T]) BulkEnqueue(values []T) error {
	offset := 0
	var tb *block[T]
	var start uint64
	reserved := false
	for offset < len(values) {
		remain := uint64(len(values) - offset)
		if !reserved {
			tb = q.tailBlock.Load()
			start = tb.tail.AddAcqRel(remain) - remain
		}
		reserved = false

		switch {
		case start >= tb.size:
			// The whole reservation landed past this block; someone
			// else already owns (or is growing) the chain past it.
			q.advanceTailBlock(tb, start)
		case start+remain <= tb.size:
			// The entire remaining batch fits contiguously right here.
			q.storeRange(tb, start, values[offset:])
			return nil
		default:
			// Straddles the boundary: this reservation is the one that
			// reaches tb.size exactly, so it alone is responsible for
			// growing the chain once its in-block portion is stored. The
			// rest of the batch is reserved at the front of the new block
			// before the block is published, so no other producer can
			// take a slot between the two parts.
			fit := tb.size - start
			q.storeRange(tb, start, values[offset:offset+int(fit)])
			offset += int(fit)
			nb := q.freelist.get(int(q.blockSize))
			nb.tail.StoreRelaxed(remain - fit)
			tb.next.Store(nb)
			q.tailBlock.CompareAndSwap(tb, nb)
			tb, start, reserved = nb, 0, true
		}
	}
	return nil
}

// storeRange publishes values into tb.cells[start:start+len(values)],
// a range this caller alone holds the producer ticket for.
func (q *Queue[T]) storeRange(tb *block[T], start uint64, values []T) {
	tb.refs.AddAcqRel(int32(len(values)))
	for i, v := range values {
		c := &tb.cells[start+uint64(i)]
		c.state.StoreRelease(int32(cellStoring))
		c.value = v
		c.state.StoreRelease(int32(cellStored))
	}
	tb.refs.AddAcqRel(int32(-len(values)))
}

// advanceTailBlock moves the chain past tb once a reservation's range
// has reached its boundary at tb.size. The ticket that lands exactly on
// tb.size grows the chain; every later ticket just waits for that
// growth to become visible.
func (q *Queue[T]) advanceTailBlock(tb *block[T], boundary uint64) {
	if boundary == tb.size {
		nb := q.freelist.get(int(q.blockSize))
		tb.next.Store(nb)
		q.tailBlock.CompareAndSwap(tb, nb)
		return
	}
	var w spin.Wait
	for tb.next.Load() == nil {
		w.Once()
	}
	q.tailBlock.CompareAndSwap(tb, tb.next.Load())
}

// BulkDequeue fills out with as many elements as are available, up to
// len(out), and returns the number written. It stops at the first
// Dequeue that reports false; in safe mode that includes a call that
// reaches an INVALID cell, so elements queued behind an INVALID cell are
// not taken by the same BulkDequeue call.
func (q *Queue[T]) BulkDequeue(out []T) int {
	n := 0
	for n < len(out) {
		v, ok := q.Dequeue()
		if !ok {
			break
		}
		out[n] = v
		n++
	}
	return n
}

// GetNodeCount returns the number of blocks currently in the chain. It is
// a diagnostic snapshot, not a linearizable count: the chain may grow or
// shrink concurrently with the walk.
func (q *Queue[T]) GetNodeCount() int {
	n := 0
	for b := q.headBlock.Load(); b != nil; b = b.next.Load() {
		n++
	}
	return n
}
