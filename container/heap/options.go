// Copyright 2026 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package heap

type options[T any] struct {
	sliceCap int
	order    Order
	values   []T
}

// Option represents the options that can be passed to NewMin, NewMax,
// NewFunc and NewValue.
type Option[T any] func(*options[T])

// WithCapacity sets the initial capacity of the slice used to hold the
// heap's elements.
func WithCapacity[T any](n int) Option[T] {
	return func(o *options[T]) {
		o.sliceCap = n
	}
}

// WithData sets the initial contents of the heap. The heap takes ownership
// of the supplied slice and reorders it in place to establish the heap
// property in linear time.
func WithData[T any](values []T) Option[T] {
	return func(o *options[T]) {
		o.values = values
	}
}

// WithOrder sets the order of a heap created by NewFunc or NewValue. It
// overrides the order implied by NewMin and NewMax.
func WithOrder[T any](order Order) Option[T] {
	return func(o *options[T]) {
		o.order = order
	}
}
