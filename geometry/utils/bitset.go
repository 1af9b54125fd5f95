package utils

import (
	"math/bits"
)

const wordSize = 64 // Number of bits in a uint64

// BitSet is a fixed size dense bitmap. It is used to expand a window of
// boolean runs into per-index flags, e.g. the hidden rows of the visible
// area.
type BitSet struct {
	words []uint64
	size  int
}

// NewBitSet creates a new BitSet able to hold size bits, all cleared.
func NewBitSet(size int) *BitSet {
	Assert(size >= 0, "negative bitset size")
	return &BitSet{
		words: make([]uint64, (size+wordSize-1)/wordSize),
		size:  size,
	}
}

// Len returns the number of addressable bits.
func (s *BitSet) Len() int {
	return s.size
}

// addr returns the index of the word holding idx and the offset of idx in
// that word.
func (s *BitSet) addr(idx int) (int, int) {
	return idx / wordSize, idx % wordSize
}

// Set sets the bit at idx to 1.
func (s *BitSet) Set(idx int) {
	Assert(idx >= 0 && idx < s.size, "Index out of bounds")
	w, off := s.addr(idx)
	s.words[w] |= 1 << off
}

// Unset clears the bit at idx.
func (s *BitSet) Unset(idx int) {
	Assert(idx >= 0 && idx < s.size, "Index out of bounds")
	w, off := s.addr(idx)
	s.words[w] &^= 1 << off
}

// IsSet reports whether the bit at idx is set.
func (s *BitSet) IsSet(idx int) bool {
	Assert(idx >= 0 && idx < s.size, "Index out of bounds")
	w, off := s.addr(idx)
	return s.words[w]&(1<<off) != 0
}

// SetRange sets every bit in the inclusive range [start, end].
func (s *BitSet) SetRange(start, end int) {
	Assert(0 <= start && start <= end, "invalid range")
	Assert(end < s.size, "End index out of bounds")
	startW, startOff := s.addr(start)
	endW, endOff := s.addr(end)

	// Bits at and above startOff:
	// ^((1 << startOff) - 1) = 1111 ... 1110000
	//                                     |startOff
	lowMask := ^uint64(0) << startOff

	// Bits at and below endOff:
	// 0000 ... 0111 ... 111
	//           |endOff
	highMask := ^uint64(0) >> (wordSize - 1 - endOff)

	if startW == endW {
		s.words[startW] |= lowMask & highMask
		return
	}
	s.words[startW] |= lowMask
	for i := startW + 1; i < endW; i++ {
		s.words[i] = ^uint64(0)
	}
	s.words[endW] |= highMask
}

// Count counts the number of bits set.
func (s *BitSet) Count() int {
	total := 0
	for _, w := range s.words {
		total += bits.OnesCount64(w)
	}
	return total
}

// Clear clears every bit.
func (s *BitSet) Clear() {
	clear(s.words)
}
