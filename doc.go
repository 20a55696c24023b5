// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package async provides lock-free concurrent queues and a thread pool
// built on top of them.
//
// Three primitives are exported:
//
//   - Queue[T]: an unbounded, lock-free, multi-producer multi-consumer
//     FIFO queue backed by a growable chain of fixed-size blocks.
//   - BoundedQueue[T]: a fixed-capacity, array-backed, multi-producer
//     multi-consumer FIFO queue with non-blocking and blocking
//     operations.
//   - ThreadPool: a fixed set of worker goroutines dispatching tasks
//     posted through Post/Post1/Post2/Post3, each returning a *Handle[T]
//     for the task's eventual result.
//
// # Quick Start
//
//	q := async.NewQueue[Event](async.NewTraits())
//	bq := async.NewBoundedQueue[Job](4096, async.NewTraits())
//	pool := async.NewThreadPool(runtime.GOMAXPROCS(0))
//
// # Basic Usage
//
//	// Unbounded queue: never blocks, never reports full.
//	q := async.NewQueue[int](async.NewTraits())
//	_ = q.EnqueueValue(42)
//	v, ok := q.Dequeue()
//
//	// Bounded queue: a non-blocking enqueue on a full queue reports
//	// ErrWouldBlock; a non-blocking dequeue on an empty one reports !ok.
//	bq := async.NewBoundedQueue[int](1024, async.NewTraits())
//	err := bq.EnqueueValue(1)
//	if async.IsWouldBlock(err) {
//	    // full — back off and retry
//	}
//	v, ok := bq.Dequeue()
//
//	// Or block until room/data is available:
//	bq.BlockingEnqueueValue(1)
//	v = bq.BlockingDequeue()
//
// # Common Patterns
//
// Pipeline stage, one unbounded queue between two goroutines:
//
//	q := async.NewQueue[Data](async.NewTraits())
//
//	go func() { // producer
//	    for data := range input {
//	        _ = q.EnqueueValue(data)
//	    }
//	}()
//
//	go func() { // consumer
//	    for {
//	        data, ok := q.Dequeue()
//	        if !ok {
//	            runtime.Gosched()
//	            continue
//	        }
//	        process(data)
//	    }
//	}()
//
// Worker pool, posting tasks from anywhere and awaiting results:
//
//	pool := async.NewThreadPool(8)
//	defer pool.Close()
//
//	h, err := async.Post2(pool, func(a, b int) (int, error) {
//	    return a + b, nil
//	}, 3, 4)
//	if err != nil {
//	    // pool closed
//	}
//	sum, err := h.Await()
//
// Backpressure on a bounded queue shared by many producers:
//
//	bq := async.NewBoundedQueue[Job](4096, async.NewTraits())
//	for job := range jobs {
//	    for {
//	        if err := bq.EnqueueValue(job); err == nil {
//	            break
//	        }
//	        runtime.Gosched()
//	    }
//	}
//
// # Safe and Unsafe Construction
//
// Both queues accept a constructor closure instead of a bare value:
//
//	err := q.Enqueue(func() (Event, error) { return decode(buf) })
//
// In unsafe mode (the default), the constructor is assumed never to
// fail. In safe mode (async.NewTraits().SafeMode()), a constructor error
// marks the claimed cell invalid instead of corrupting queue state; the
// Dequeue call that reaches an invalid cell consumes it and reports
// false, as for an empty queue. EnqueueValue is a
// convenience for the common, non-failing case.
//
// # Error Handling
//
// BoundedQueue's non-blocking Enqueue and EnqueueValue return
// [ErrWouldBlock] when the queue is full; Dequeue reports an empty queue
// through its ok result instead. ErrWouldBlock is sourced from
// [code.hybscloud.com/iox] for ecosystem consistency and is a control
// flow signal, not a failure:
//
//	err := bq.EnqueueValue(item)
//	if async.IsWouldBlock(err) {
//	    // retry later
//	}
//
// [ThreadPool] returns [ErrPoolClosed] from Post/Post1/Post2/Post3 once
// Close has been called. A task that panics has its panic recovered and
// reported as an error from the task's Handle, wrapped with
// "async: task panicked: ...".
//
// # Thread Safety
//
// Queue and BoundedQueue support any number of concurrent producer and
// consumer goroutines; there is no single-producer or single-consumer
// specialization in this package. ThreadPool's Post family is safe to
// call from any goroutine, including from within a running task. Close
// may be called from any goroutine other than a running task: it waits
// for every worker to exit, including the one running the calling task.
//
// # Race Detection
//
// Go's race detector tracks explicit synchronization primitives but
// cannot observe the happens-before relationships established by
// atomix's acquire-release orderings on separate variables. Stress
// tests that would produce false positives under the race detector are
// excluded via //go:build !race; see [RaceEnabled].
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit
// memory ordering, and [code.hybscloud.com/spin] for backoff in spin
// loops.
package async
