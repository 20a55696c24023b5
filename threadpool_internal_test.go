// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

import (
	"testing"
	"time"
)

func waitIdlesize(t *testing.T, p *ThreadPool, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if p.idlesize() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("idlesize did not reach %d in time (last observed %d)", want, p.idlesize())
}

func TestThreadPoolIdlesizeConverges(t *testing.T) {
	pool := NewThreadPool(3)
	defer pool.Close()

	waitIdlesize(t, pool, 3)

	h, err := postTask(pool, func() (int, error) {
		waitIdlesize(t, pool, 2)
		return 1, nil
	})
	if err != nil {
		t.Fatalf("postTask: %v", err)
	}
	// Wait on the completion channel rather than Await, which could
	// dequeue and run the task on this goroutine instead of a worker.
	<-h.done
	if _, err := h.Await(); err != nil {
		t.Fatalf("Await: %v", err)
	}

	waitIdlesize(t, pool, 3)
}
