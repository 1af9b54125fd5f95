// Package search implements binary search over sorted run arrays where
// matching is decided by the caller rather than by comparing raw values.
package search

import "cmp"

// DirectionProvider decides how key relates to cur, given its neighbours.
// prev is nil when cur is the first element and next is nil when cur is the
// last one. It returns:
//
//	 0: cur matches key, stop searching
//	 1: search the upper half
//	-1: search the lower half
type DirectionProvider[E, K any] func(key K, prev, cur, next *E) int

// Ordered is a DirectionProvider for arrays of ordered values sorted in
// ascending order.
func Ordered[E cmp.Ordered](key E, _, cur, _ *E) int {
	return cmp.Compare(key, *cur)
}

// BinarySearch searches array, which must be sorted with respect to dir, for
// key and returns the index of a match, or -1.
//
// If firstMatch is set and several consecutive elements match, e.g. zero
// sized spans sharing one position, the lowest matching index is returned.
func BinarySearch[E, K any](
	array []E,
	key K,
	dir DirectionProvider[E, K],
	firstMatch bool,
) int {
	n := len(array)
	if n == 0 {
		return -1
	}
	at := func(i int) *E {
		if i < 0 || i >= n {
			return nil
		}
		return &array[i]
	}

	// Bound checks and early exit.
	startDir := dir(key, nil, &array[0], at(1))
	if startDir == 0 {
		return 0
	}
	if startDir < 0 {
		return -1
	}

	end := n - 1
	endDir := dir(key, at(end-1), &array[end], nil)
	if endDir > 0 {
		return -1
	}
	if endDir == 0 {
		if firstMatch {
			return findFirstMatch(array, key, dir, end)
		}
		return end
	}

	// Both bounds are known not to match.
	start, end := 1, end-1
	mid := -1
	for start <= end {
		mid = (start + end + 1) / 2
		direction := dir(key, at(mid-1), &array[mid], at(mid+1))
		if direction == 0 {
			break
		}
		if direction < 0 {
			end = mid - 1
		} else {
			start = mid + 1
		}
	}

	if start > end {
		return -1
	}
	if firstMatch {
		return findFirstMatch(array, key, dir, mid)
	}
	return mid
}

// findFirstMatch walks back from a matching index to the first element that
// still matches.
func findFirstMatch[E, K any](
	array []E,
	key K,
	dir DirectionProvider[E, K],
	matched int,
) int {
	at := func(i int) *E {
		if i < 0 || i >= len(array) {
			return nil
		}
		return &array[i]
	}
	idx := matched - 1
	for idx >= 0 && dir(key, at(idx-1), &array[idx], at(idx+1)) == 0 {
		idx--
	}
	return idx + 1
}
