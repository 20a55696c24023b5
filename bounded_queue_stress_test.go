// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !race

package async_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/d36u9/async"
)

func TestBoundedQueueProducerConsumerStress(t *testing.T) {
	const producers = 5
	const consumers = 5
	const perProducer = 500

	q := async.NewBoundedQueue[int](64, async.NewTraits())

	var wantSum int64
	for i := 1; i <= perProducer; i++ {
		wantSum += int64(i) * producers
	}

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func() {
			defer wg.Done()
			for i := 1; i <= perProducer; i++ {
				if err := q.BlockingEnqueueValue(i); err != nil {
					t.Errorf("BlockingEnqueueValue(%d): %v", i, err)
					return
				}
			}
		}()
	}

	var gotSum int64
	var consumed int64
	var cwg sync.WaitGroup
	cwg.Add(consumers)
	for c := 0; c < consumers; c++ {
		go func() {
			defer cwg.Done()
			// Each consumer takes exactly its share, so no consumer is left
			// blocked in BlockingDequeue once every element has been taken.
			for range producers * perProducer / consumers {
				v := q.BlockingDequeue()
				atomic.AddInt64(&gotSum, int64(v))
				atomic.AddInt64(&consumed, 1)
			}
		}()
	}

	wg.Wait()
	cwg.Wait()

	if consumed != int64(producers*perProducer) {
		t.Fatalf("consumed count: got %d, want %d", consumed, producers*perProducer)
	}
	if gotSum != wantSum {
		t.Fatalf("checksum: got %d, want %d", gotSum, wantSum)
	}
}
