// Package tag implements the 32-bit bitmask tag algebra: tag N
// corresponds to bit (N-1), for 1 <= N <= 32.
package tag

import "math/bits"

// Tag is a bitmask over up to 32 tags.
type Tag uint32

// New returns the single-tag mask for tag number n (1-indexed).
// Panics if n is not in [1, 32].
func New(n int) Tag {
	if n < 1 || n > 32 {
		panic("tag: number out of range [1, 32]")
	}
	return Tag(1 << uint(n-1))
}

// FromMask wraps a raw bitmask.
func FromMask(mask uint32) Tag { return Tag(mask) }

// Mask returns the raw bitmask.
func (t Tag) Mask() uint32 { return uint32(t) }

// Intersects reports whether t and other share any set bit.
func (t Tag) Intersects(other Tag) bool { return t&other != 0 }

// Union returns the bitwise OR of t and other.
func (t Tag) Union(other Tag) Tag { return t | other }

// Toggle returns the bitwise XOR of t and other.
func (t Tag) Toggle(other Tag) Tag { return t ^ other }

// IsEmpty reports whether no tag bit is set.
func (t Tag) IsEmpty() bool { return t == 0 }

// FirstTag returns the lowest set tag number (1-indexed) and true, or
// (0, false) if the mask is empty.
func (t Tag) FirstTag() (int, bool) {
	if t == 0 {
		return 0, false
	}
	return bits.TrailingZeros32(uint32(t)) + 1, true
}
