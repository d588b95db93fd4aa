// Copyright 2026 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package heap

// Value represents the interface that may be implemented by types that
// define their own ordering for use with NewValue. Less compares the
// current instance with another instance of the same type and returns
// true if the current instance is less than the other.
type Value[T any] interface {
	Less(x T) bool
}

// NewValue returns a heap for types that implement Value. By default the
// heap is a min heap, use WithOrder to create a max heap.
func NewValue[T Value[T]](opts ...Option[T]) *Heap[T] {
	return NewFunc(func(a, b T) bool { return a.Less(b) }, opts...)
}
