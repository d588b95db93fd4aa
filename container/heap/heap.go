// Copyright 2026 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package heap provides a binary heap that may be ordered as a min heap,
// a max heap or according to a caller supplied ordering.
package heap

import (
	"cmp"
	"fmt"
	"iter"
	"strings"
)

// Order determines if the heap is maintained in ascending (min heap)
// or descending (max heap) order.
type Order bool

// Values for Order.
const (
	Ascending  Order = false
	Descending Order = true
)

func (o Order) String() string {
	if o == Descending {
		return "max"
	}
	return "min"
}

// Heap is a binary heap stored in a slice in the same manner as the
// standard library's container/heap package. The element at index 0 is
// the top of the heap: the smallest element for an Ascending heap and the
// largest for a Descending one. Elements that compare as equal may be
// returned in any order.
//
// Heap is not safe for concurrent use, see Synchronized.
type Heap[T any] struct {
	order  Order
	less   func(a, b T) bool
	values []T
}

// NewMin returns a min heap for ordered types.
func NewMin[T cmp.Ordered](opts ...Option[T]) *Heap[T] {
	return newHeap(cmp.Less[T], Ascending, opts)
}

// NewMax returns a max heap for ordered types.
func NewMax[T cmp.Ordered](opts ...Option[T]) *Heap[T] {
	return newHeap(cmp.Less[T], Descending, opts)
}

// NewFunc returns a heap ordered by the supplied less function. By default
// the heap is a min heap with respect to less, use WithOrder to create
// a max heap.
func NewFunc[T any](less func(a, b T) bool, opts ...Option[T]) *Heap[T] {
	return newHeap(less, Ascending, opts)
}

func newHeap[T any](less func(a, b T) bool, order Order, opts []Option[T]) *Heap[T] {
	o := options[T]{order: order}
	for _, fn := range opts {
		fn(&o)
	}
	h := &Heap[T]{
		order: o.order,
		less:  less,
	}
	if o.values != nil {
		h.values = o.values
		h.heapify()
		return h
	}
	h.values = make([]T, 0, o.sliceCap)
	return h
}

// Len returns the number of elements in the heap.
func (h *Heap[T]) Len() int {
	return len(h.values)
}

// Order returns the order of the heap.
func (h *Heap[T]) Order() Order {
	return h.order
}

// Push adds v to the heap.
func (h *Heap[T]) Push(v T) {
	h.values = append(h.values, v)
	h.up(len(h.values) - 1)
}

// PushAll adds all of vals to the heap.
func (h *Heap[T]) PushAll(vals ...T) {
	for _, v := range vals {
		h.Push(v)
	}
}

// PushBounded adds v to the heap whilst ensuring that the heap contains
// no more than n elements. When the heap is full the top element is
// discarded in favour of v if v would be popped after it, otherwise v is
// discarded. Thus a max heap bounded to n retains the n smallest values
// pushed and a min heap the n largest. A heap that already holds more
// than n elements, for example one created using WithData, is first
// reduced to n by popping. It returns true if v was retained.
func (h *Heap[T]) PushBounded(v T, n int) bool {
	if n <= 0 {
		return false
	}
	for len(h.values) > n {
		h.Pop()
	}
	if len(h.values) < n {
		h.Push(v)
		return true
	}
	if !h.before(h.values[0], v) {
		return false
	}
	h.values[0] = v
	h.down(0, len(h.values))
	return true
}

// Peek returns the top element of the heap without removing it. It
// returns false if the heap is empty.
func (h *Heap[T]) Peek() (T, bool) {
	if len(h.values) == 0 {
		var zero T
		return zero, false
	}
	return h.values[0], true
}

// Pop removes and returns the top element of the heap. It returns false
// if the heap is empty.
func (h *Heap[T]) Pop() (T, bool) {
	var zero T
	n := len(h.values) - 1
	if n < 0 {
		return zero, false
	}
	top := h.values[0]
	h.values[0] = h.values[n]
	h.values[n] = zero // release any references held by the vacated slot.
	h.values = h.values[:n]
	h.down(0, n)
	return top, true
}

// All returns an iterator over the elements of the heap in storage order,
// which is not, in general, sorted.
func (h *Heap[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range h.values {
			if !yield(v) {
				return
			}
		}
	}
}

// Sorted returns the elements of the heap in the order in which they
// would be popped, leaving the heap unchanged.
func (h *Heap[T]) Sorted() []T {
	c := &Heap[T]{
		order:  h.order,
		less:   h.less,
		values: append(make([]T, 0, len(h.values)), h.values...),
	}
	out := make([]T, 0, len(h.values))
	for c.Len() > 0 {
		v, _ := c.Pop()
		out = append(out, v)
	}
	return out
}

// Reset removes all elements from the heap, retaining its capacity.
func (h *Heap[T]) Reset() {
	clear(h.values)
	h.values = h.values[:0]
}

func (h *Heap[T]) String() string {
	var out strings.Builder
	fmt.Fprintf(&out, "heap(%v, len %d): [", h.order, len(h.values))
	for i, v := range h.values {
		if i > 0 {
			out.WriteByte(' ')
		}
		fmt.Fprintf(&out, "%v", v)
	}
	out.WriteByte(']')
	return out.String()
}

// before returns true if a must be closer to the top of the heap than b.
func (h *Heap[T]) before(a, b T) bool {
	if h.order == Descending {
		return h.less(b, a)
	}
	return h.less(a, b)
}

func (h *Heap[T]) heapify() {
	n := len(h.values)
	for i := n/2 - 1; i >= 0; i-- {
		h.down(i, n)
	}
}

func (h *Heap[T]) up(j int) {
	for j > 0 {
		i := parent(j)
		if !h.before(h.values[j], h.values[i]) {
			break
		}
		h.swap(i, j)
		j = i
	}
}

func (h *Heap[T]) down(i0, n int) bool {
	i := i0
	for {
		j1 := left(i)
		if j1 >= n || j1 < 0 { // j1 < 0 after int overflow
			break
		}
		j := j1
		if j2 := j1 + 1; j2 < n && h.before(h.values[j2], h.values[j1]) {
			j = j2
		}
		if !h.before(h.values[j], h.values[i]) {
			break
		}
		h.swap(i, j)
		i = j
	}
	return i > i0
}

func (h *Heap[T]) swap(i, j int) {
	h.values[i], h.values[j] = h.values[j], h.values[i]
}

func parent(i int) int { return (i - 1) / 2 }
func left(i int) int   { return (2 * i) + 1 }
