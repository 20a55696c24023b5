// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

import (
	"fmt"
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// boundedSpinAttempts bounds how many non-blocking retries a blocking
// operation makes before suspending on its condition variable.
const boundedSpinAttempts = 64

// boundedCell is one ring-buffer slot. seq is Dmitry Vyukov's classic
// sequence-number trick: a cell at index i starts with seq == i. A
// producer may claim position pos only when seq == pos (empty, ready to
// store); a consumer may claim it only when seq == pos+1 (full, ready to
// load). Publishing a store sets seq = pos+1; publishing a load sets
// seq = pos+capacity, arming the cell for the next lap around the ring.
type boundedCell[T any] struct {
	seq   atomix.Uint64
	value T
	valid bool
	_     pad
}

// BoundedQueue is a fixed-capacity, array-backed, multi-producer
// multi-consumer FIFO queue. Unlike Queue, its capacity is used exactly
// as given: it is not rounded to a power of two.
//
// The zero value is not usable; construct with NewBoundedQueue.
type BoundedQueue[T any] struct {
	_        pad
	enqPos   atomix.Uint64
	_        pad
	deqPos   atomix.Uint64
	_        pad
	cells    []boundedCell[T]
	capacity uint64
	safeMode bool

	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond
}

// NewBoundedQueue returns an empty BoundedQueue with room for exactly
// capacity elements. Panics if capacity < 1. A nil traits value is
// equivalent to NewTraits(); BlockSize is ignored.
func NewBoundedQueue[T any](capacity int, traits *Traits) *BoundedQueue[T] {
	if capacity < 1 {
		panic("async: bounded queue capacity must be >= 1")
	}
	if traits == nil {
		traits = NewTraits()
	}
	q := &BoundedQueue[T]{
		cells:    make([]boundedCell[T], capacity),
		capacity: uint64(capacity),
		safeMode: traits.safeMode,
	}
	for i := range q.cells {
		q.cells[i].seq.StoreRelaxed(uint64(i))
	}
	q.notFull = sync.NewCond(&q.mu)
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// Cap returns the queue's fixed capacity.
func (q *BoundedQueue[T]) Cap() int {
	return int(q.capacity)
}

// EnqueueValue is a non-blocking enqueue of v. Returns ErrWouldBlock if
// the queue is full.
func (q *BoundedQueue[T]) EnqueueValue(v T) error {
	return q.Enqueue(func() (T, error) { return v, nil })
}

// Enqueue is a non-blocking enqueue of the value produced by ctor.
// Returns ErrWouldBlock if the queue is full.
//
// In safe mode, an error returned by ctor still consumes the claimed
// slot but is not delivered to any consumer; the Dequeue call that
// reaches the slot consumes it and reports false, as for an empty queue.
// In unsafe mode, ctor is assumed never to fail.
func (q *BoundedQueue[T]) Enqueue(ctor func() (T, error)) error {
	var w spin.Wait
	for {
		pos := q.enqPos.LoadAcquire()
		c := &q.cells[pos%q.capacity]
		seq := c.seq.LoadAcquire()
		diff := int64(seq) - int64(pos)
		switch {
		case diff == 0:
			if !q.enqPos.CompareAndSwapAcqRel(pos, pos+1) {
				w.Once()
				continue
			}
			v, err := q.runCtor(ctor)
			c.value = v
			c.valid = err == nil
			c.seq.StoreRelease(pos + 1)
			q.mu.Lock()
			q.notEmpty.Broadcast()
			q.mu.Unlock()
			return err
		case diff < 0:
			return ErrWouldBlock
		default:
			w.Once()
		}
	}
}

// BlockingEnqueueValue blocks until there is room for v, then enqueues
// it. It spins briefly before suspending on a condition variable, since
// the wait is expected to be short relative to goroutine park/wake cost.
func (q *BoundedQueue[T]) BlockingEnqueueValue(v T) error {
	return q.BlockingEnqueue(func() (T, error) { return v, nil })
}

// BlockingEnqueue blocks until there is room, then enqueues the value
// produced by ctor. See Enqueue for the safe/unsafe mode contract.
func (q *BoundedQueue[T]) BlockingEnqueue(ctor func() (T, error)) error {
	var w spin.Wait
	for attempt := 0; ; attempt++ {
		err := q.Enqueue(ctor)
		if !IsWouldBlock(err) {
			return err
		}
		if attempt < boundedSpinAttempts {
			w.Once()
			continue
		}
		q.mu.Lock()
		for q.isFullLocked() {
			q.notFull.Wait()
		}
		q.mu.Unlock()
	}
}

// Dequeue is a non-blocking dequeue. ok is false if the queue was empty.
func (q *BoundedQueue[T]) Dequeue() (value T, ok bool) {
	var w spin.Wait
	for {
		pos := q.deqPos.LoadAcquire()
		c := &q.cells[pos%q.capacity]
		seq := c.seq.LoadAcquire()
		diff := int64(seq) - int64(pos+1)
		switch {
		case diff == 0:
			if !q.deqPos.CompareAndSwapAcqRel(pos, pos+1) {
				w.Once()
				continue
			}
			v, valid := c.value, c.valid
			var zero T
			c.value = zero
			c.seq.StoreRelease(pos + q.capacity)
			q.mu.Lock()
			q.notFull.Broadcast()
			q.mu.Unlock()
			if !valid {
				return zero, false
			}
			return v, true
		case diff < 0:
			var zero T
			return zero, false
		default:
			w.Once()
		}
	}
}

// BlockingDequeue blocks until an element is available, then removes
// and returns it.
func (q *BoundedQueue[T]) BlockingDequeue() T {
	var w spin.Wait
	for attempt := 0; ; attempt++ {
		v, ok := q.Dequeue()
		if ok {
			return v
		}
		if attempt < boundedSpinAttempts {
			w.Once()
			continue
		}
		q.mu.Lock()
		for q.isEmptyLocked() {
			q.notEmpty.Wait()
		}
		q.mu.Unlock()
	}
}

func (q *BoundedQueue[T]) isFullLocked() bool {
	pos := q.enqPos.LoadAcquire()
	c := &q.cells[pos%q.capacity]
	return int64(c.seq.LoadAcquire())-int64(pos) < 0
}

func (q *BoundedQueue[T]) isEmptyLocked() bool {
	pos := q.deqPos.LoadAcquire()
	c := &q.cells[pos%q.capacity]
	return int64(c.seq.LoadAcquire())-int64(pos+1) < 0
}

func (q *BoundedQueue[T]) runCtor(ctor func() (T, error)) (v T, err error) {
	if !q.safeMode {
		return ctor()
	}
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v, err = zero, fmt.Errorf("async: bounded queue constructor panicked: %v", r)
		}
	}()
	return ctor()
}
