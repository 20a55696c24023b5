// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

import "math/bits"

// unsignedInt constrains the utility helpers to unsigned integer types of
// any width, mirroring the C++ original's getBitmask<T>/getSetBitsCount/
// getShiftBitsCount template family.
type unsignedInt interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// BitMask returns a mask with the low n bits set: (1<<n)-1 for n less than
// the type's width, and all-ones when n is greater than or equal to it.
//
// BitMask(8) == 0xFF, and (BitMask(24) << 40) selects bits 40..63.
func BitMask[T unsignedInt](n int) T {
	var zero T
	width := bitWidth(zero)
	if n >= width {
		return ^zero
	}
	if n <= 0 {
		return 0
	}
	return T(1)<<uint(n) - 1
}

// SetBitsCount returns the number of set bits in mask (population count).
func SetBitsCount[T unsignedInt](mask T) int {
	return bits.OnesCount64(uint64(mask))
}

// ShiftBitsCount returns the number of trailing zero bits in mask, i.e.
// the shift amount needed to right-align its set bits. Returns the type's
// bit width if mask is zero.
func ShiftBitsCount[T unsignedInt](mask T) int {
	if mask == 0 {
		return bitWidth(mask)
	}
	return bits.TrailingZeros64(uint64(mask))
}

func bitWidth[T unsignedInt](zero T) int {
	return bits.Len64(uint64(^zero))
}
