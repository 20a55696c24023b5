// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async_test

import (
	"errors"
	"testing"

	"github.com/d36u9/async"
)

func TestQueueBasic(t *testing.T) {
	q := async.NewQueue[int](async.NewTraits())

	if _, ok := q.Dequeue(); ok {
		t.Fatal("Dequeue on empty queue: got ok, want false")
	}

	for i := range 10 {
		if err := q.EnqueueValue(i + 100); err != nil {
			t.Fatalf("EnqueueValue(%d): %v", i, err)
		}
	}

	for i := range 10 {
		val, ok := q.Dequeue()
		if !ok {
			t.Fatalf("Dequeue(%d): got !ok", i)
		}
		if val != i+100 {
			t.Fatalf("Dequeue(%d): got %d, want %d", i, val, i+100)
		}
	}

	if _, ok := q.Dequeue(); ok {
		t.Fatal("Dequeue after drain: got ok, want false")
	}
}

func TestQueueSpansMultipleBlocks(t *testing.T) {
	q := async.NewQueue[int](async.NewTraits().BlockSize(4))

	const n = 37
	for i := range n {
		if err := q.EnqueueValue(i); err != nil {
			t.Fatalf("EnqueueValue(%d): %v", i, err)
		}
	}
	if nodes := q.GetNodeCount(); nodes < 2 {
		t.Fatalf("GetNodeCount: got %d, want >= 2 blocks for %d elements at block size 4", nodes, n)
	}
	for i := range n {
		val, ok := q.Dequeue()
		if !ok {
			t.Fatalf("Dequeue(%d): got !ok", i)
		}
		if val != i {
			t.Fatalf("Dequeue(%d): got %d, want %d", i, val, i)
		}
	}
}

func TestQueueBulk(t *testing.T) {
	q := async.NewQueue[int](async.NewTraits())

	values := []int{1, 2, 3, 4, 5}
	if err := q.BulkEnqueue(values); err != nil {
		t.Fatalf("BulkEnqueue: %v", err)
	}

	out := make([]int, 3)
	n := q.BulkDequeue(out)
	if n != 3 {
		t.Fatalf("BulkDequeue: got %d, want 3", n)
	}
	for i, v := range out {
		if v != i+1 {
			t.Fatalf("BulkDequeue[%d]: got %d, want %d", i, v, i+1)
		}
	}

	out2 := make([]int, 5)
	n2 := q.BulkDequeue(out2)
	if n2 != 2 {
		t.Fatalf("BulkDequeue remainder: got %d, want 2", n2)
	}
	if out2[0] != 4 || out2[1] != 5 {
		t.Fatalf("BulkDequeue remainder values: got %v, want [4 5]", out2[:n2])
	}
}

var errConstructFailed = errors.New("constructor refused")

func TestQueueSafeModeInvalidCellReportsFalse(t *testing.T) {
	q := async.NewQueue[int](async.NewTraits().SafeMode())

	if err := q.EnqueueValue(1); err != nil {
		t.Fatalf("EnqueueValue(1): %v", err)
	}
	err := q.Enqueue(func() (int, error) { return 0, errConstructFailed })
	if !errors.Is(err, errConstructFailed) {
		t.Fatalf("Enqueue(failing ctor): got %v, want errConstructFailed", err)
	}
	if err := q.EnqueueValue(2); err != nil {
		t.Fatalf("EnqueueValue(2): %v", err)
	}

	// The invalid slot reports "no element produced this call" — the
	// same as empty — rather than being silently skipped over.
	val, ok := q.Dequeue()
	if !ok || val != 1 {
		t.Fatalf("Dequeue #1: got (%d, %v), want (1, true)", val, ok)
	}
	if _, ok := q.Dequeue(); ok {
		t.Fatal("Dequeue #2 (invalid cell): got ok, want false")
	}
	val, ok = q.Dequeue()
	if !ok || val != 2 {
		t.Fatalf("Dequeue #3: got (%d, %v), want (2, true)", val, ok)
	}
	if _, ok := q.Dequeue(); ok {
		t.Fatal("Dequeue #4 (past end): got ok, want false")
	}
}

func TestQueueSafeModeRecoversConstructorPanic(t *testing.T) {
	q := async.NewQueue[int](async.NewTraits().SafeMode())

	err := q.Enqueue(func() (int, error) {
		panic("boom")
	})
	if err == nil {
		t.Fatal("Enqueue(panicking ctor): got nil error, want non-nil")
	}
	if err := q.EnqueueValue(7); err != nil {
		t.Fatalf("EnqueueValue(7): %v", err)
	}
	if _, ok := q.Dequeue(); ok {
		t.Fatal("Dequeue #1 (invalid cell from panicking ctor): got ok, want false")
	}
	val, ok := q.Dequeue()
	if !ok || val != 7 {
		t.Fatalf("Dequeue #2: got (%d, %v), want (7, true)", val, ok)
	}
}
