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

// ThreadPool is a fixed-size set of worker goroutines that execute
// tasks posted via Post/Post1/Post2/Post3. Tasks are dispatched through
// an unbounded Queue, so Post never blocks the caller on queue capacity.
//
// The zero value is not usable; construct with NewThreadPool.
type ThreadPool struct {
	tasks   *Queue[func()]
	idle    atomix.Int32
	closing atomix.Bool
	wg      sync.WaitGroup
}

// NewThreadPool starts a pool of n worker goroutines. Panics if n < 1.
func NewThreadPool(n int) *ThreadPool {
	if n < 1 {
		panic("async: thread pool needs at least 1 worker")
	}
	p := &ThreadPool{
		tasks: NewQueue[func()](NewTraits()),
	}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.worker()
	}
	return p
}

// idlesize reports how many workers are currently parked waiting for
// work, a diagnostic used by tests to observe the pool settling.
func (p *ThreadPool) idlesize() int {
	return int(p.idle.LoadAcquire())
}

func (p *ThreadPool) worker() {
	defer p.wg.Done()
	var w spin.Wait
	idle := false
	for {
		task, ok := p.tasks.Dequeue()
		if !ok {
			if p.closing.LoadAcquire() {
				if idle {
					p.idle.AddAcqRel(-1)
				}
				return
			}
			if !idle {
				p.idle.AddAcqRel(1)
				idle = true
			}
			w.Once()
			continue
		}
		if idle {
			p.idle.AddAcqRel(-1)
			idle = false
		}
		task()
	}
}

// Close signals the pool to stop accepting new tasks and waits for every
// worker to exit. A worker exits once the task queue is empty and Close
// has been called; tasks still queued at that point are dropped without
// running. Tasks already executing are allowed to finish.
//
// Close must be called at most once.
func (p *ThreadPool) Close() {
	p.closing.StoreRelease(true)
	p.wg.Wait()
}

// Handle is a one-shot, multi-observer rendezvous for a task's result.
// Every call to Await (or Get) after the task completes observes the
// same value and error; the underlying channel close is the broadcast.
type Handle[T any] struct {
	pool  *ThreadPool
	done  chan struct{}
	value T
	err   error
}

// Await blocks until the task completes and returns its result.
//
// Whichever goroutine calls it, Await cooperatively drains and runs one
// pending task from the pool's shared queue between checks instead of
// purely parking, so a task on a single-worker pool that awaits its own
// nested task (a nested Post/Await on the same pool) cannot deadlock.
func (h *Handle[T]) Await() (T, error) {
	var w spin.Wait
	for {
		select {
		case <-h.done:
			return h.value, h.err
		default:
		}
		if task, ok := h.pool.tasks.Dequeue(); ok {
			task()
			continue
		}
		w.Once()
	}
}

// Get is an alias for Await, matching the binding contract's naming for
// a future-like result accessor.
func (h *Handle[T]) Get() (T, error) {
	return h.Await()
}

func (h *Handle[T]) resolve(v T, err error) {
	h.value = v
	h.err = err
	close(h.done)
}

func runRecovered[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v, err = zero, fmt.Errorf("async: task panicked: %v", r)
		}
	}()
	return fn()
}

// postTask enqueues fn as a task and returns the Handle that will carry
// its result. Shared by all arity-specific Post wrappers below.
func postTask[T any](p *ThreadPool, fn func() (T, error)) (*Handle[T], error) {
	if p.closing.LoadAcquire() {
		return nil, ErrPoolClosed
	}
	h := &Handle[T]{pool: p, done: make(chan struct{})}
	err := p.tasks.EnqueueValue(func() {
		v, err := runRecovered(fn)
		h.resolve(v, err)
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Post posts a zero-argument task and returns a Handle for its result.
func Post[T any](p *ThreadPool, fn func() (T, error)) (*Handle[T], error) {
	return postTask(p, fn)
}

// Post1 posts a one-argument task, binding a, and returns a Handle for
// its result.
func Post1[A, T any](p *ThreadPool, fn func(A) (T, error), a A) (*Handle[T], error) {
	return postTask(p, func() (T, error) { return fn(a) })
}

// Post2 posts a two-argument task, binding a and b, and returns a Handle
// for its result.
func Post2[A, B, T any](p *ThreadPool, fn func(A, B) (T, error), a A, b B) (*Handle[T], error) {
	return postTask(p, func() (T, error) { return fn(a, b) })
}

// Post3 posts a three-argument task, binding a, b, and c, and returns a
// Handle for its result.
func Post3[A, B, C, T any](p *ThreadPool, fn func(A, B, C) (T, error), a A, b B, c C) (*Handle[T], error) {
	return postTask(p, func() (T, error) { return fn(a, b, c) })
}
