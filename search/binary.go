// Copyright 2026 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package search provides binary search over sorted slices. Binary and
// BinaryFunc locate any element equal to the requested value, whereas
// LowerBound, UpperBound and EqualRange locate the boundaries of runs of
// duplicate values.
//
// All of the functions require that the slice be sorted in ascending order
// with respect to the comparison used. If it is not, they still terminate
// and never panic, but the result is unspecified.
package search

import "cmp"

// Binary searches for v in the sorted slice s and returns its index and
// true if it is present. If v appears multiple times in s, no guarantees
// are made about which of those indices is returned. If v is not present
// -1 and false are returned.
func Binary[S ~[]E, E cmp.Ordered](s S, v E) (int, bool) {
	lo, hi := 0, len(s)
	for lo < hi {
		mid := lo + (hi-lo)/2 // avoids overflow of lo+hi.
		switch c := cmp.Compare(s[mid], v); {
		case c == 0:
			return mid, true
		case c < 0:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return -1, false
}

// BinaryFunc is like Binary but uses the supplied comparison function,
// which must return a negative number when the slice element precedes
// the target, a positive number when it follows the target and zero when
// they are equal.
func BinaryFunc[S ~[]E, E, T any](s S, v T, cmp func(E, T) int) (int, bool) {
	lo, hi := 0, len(s)
	for lo < hi {
		mid := lo + (hi-lo)/2
		switch c := cmp(s[mid], v); {
		case c == 0:
			return mid, true
		case c < 0:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return -1, false
}

// LowerBound returns the index of the first element in s that is not less
// than v, or len(s) if there is no such element.
func LowerBound[S ~[]E, E cmp.Ordered](s S, v E) int {
	lo, hi := 0, len(s)
	for lo < hi {
		mid := lo + (hi-lo)/2
		if s[mid] < v {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// UpperBound returns the index of the first element in s that is greater
// than v, or len(s) if there is no such element.
func UpperBound[S ~[]E, E cmp.Ordered](s S, v E) int {
	lo, hi := 0, len(s)
	for lo < hi {
		mid := lo + (hi-lo)/2
		if s[mid] <= v {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// EqualRange returns the half-open range [lo, hi) of elements in s that
// are equal to v. The range is empty, ie. lo == hi, if v is not present,
// in which case lo is the position at which v would be inserted.
func EqualRange[S ~[]E, E cmp.Ordered](s S, v E) (lo, hi int) {
	lo = LowerBound(s, v)
	return lo, lo + UpperBound(s[lo:], v)
}
