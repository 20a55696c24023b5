// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async_test

import (
	"testing"

	"github.com/d36u9/async"
)

func TestBitMask(t *testing.T) {
	tests := []struct {
		n    int
		want uint32
	}{
		{0, 0},
		{1, 0x1},
		{4, 0xF},
		{8, 0xFF},
		{24, 0xFFFFFF},
		{32, 0xFFFFFFFF},
		{40, 0xFFFFFFFF},
	}
	for _, tt := range tests {
		if got := async.BitMask[uint32](tt.n); got != tt.want {
			t.Fatalf("BitMask[uint32](%d): got %#x, want %#x", tt.n, got, tt.want)
		}
	}
}

func TestBitMaskNegative(t *testing.T) {
	if got := async.BitMask[uint8](-1); got != 0 {
		t.Fatalf("BitMask[uint8](-1): got %#x, want 0", got)
	}
}

func TestSetBitsCount(t *testing.T) {
	tests := []struct {
		mask uint64
		want int
	}{
		{0, 0},
		{1, 1},
		{0xFF, 8},
		{0xF0F0, 8},
		{^uint64(0), 64},
	}
	for _, tt := range tests {
		if got := async.SetBitsCount(tt.mask); got != tt.want {
			t.Fatalf("SetBitsCount(%#x): got %d, want %d", tt.mask, got, tt.want)
		}
	}
}

func TestShiftBitsCount(t *testing.T) {
	tests := []struct {
		mask uint32
		want int
	}{
		{0, 32},
		{1, 0},
		{0x8, 3},
		{0xFF00, 8},
		{0x80000000, 31},
	}
	for _, tt := range tests {
		if got := async.ShiftBitsCount(tt.mask); got != tt.want {
			t.Fatalf("ShiftBitsCount(%#x): got %d, want %d", tt.mask, got, tt.want)
		}
	}
}
