// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

// cellState is the state tag carried by every unbounded-queue cell. A
// cell holds at most one element at a time and moves through this state
// machine exactly once per occupancy:
//
//	EMPTY   -> STORING (producer claims the slot)
//	STORING -> STORED  (value published) or INVALID (safe-mode failure)
//	STORED  -> LOADING (consumer claims the slot)
//	LOADING -> EMPTY   (value extracted)
//
// A consumer that observes INVALID publishes EMPTY immediately and
// reports "no element produced this call" — the same as an empty queue,
// except the consumer ticket it held is still consumed.
type cellState int32

const (
	cellEmpty cellState = iota
	cellStoring
	cellStored
	cellLoading
	cellInvalid
)
