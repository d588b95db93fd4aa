// Copyright 2026 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package heap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"cloudeng.io/errors"
)

// Synchronized wraps a Heap so that it is safe for concurrent use.
type Synchronized[T any] struct {
	mu sync.Mutex
	h  *Heap[T]
}

// NewSynchronized returns a Synchronized that guards h. h must not be
// used directly once it has been wrapped.
func NewSynchronized[T any](h *Heap[T]) *Synchronized[T] {
	return &Synchronized[T]{h: h}
}

// Push is like Heap.Push.
func (s *Synchronized[T]) Push(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.h.Push(v)
}

// PushBounded is like Heap.PushBounded.
func (s *Synchronized[T]) PushBounded(v T, n int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h.PushBounded(v, n)
}

// Pop is like Heap.Pop.
func (s *Synchronized[T]) Pop() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h.Pop()
}

// Peek is like Heap.Peek.
func (s *Synchronized[T]) Peek() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h.Peek()
}

// PopN removes at most the top most n items from the heap and returns
// them in the order in which they were popped.
func (s *Synchronized[T]) PopN(n int) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	n = min(n, s.h.Len())
	if n <= 0 {
		return nil
	}
	out := make([]T, n)
	for i := range out {
		out[i], _ = s.h.Pop()
	}
	return out
}

// Len is like Heap.Len.
func (s *Synchronized[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h.Len()
}

type jsonEncoding struct {
	Size   int             `json:"size"`
	Order  Order           `json:"order"`
	Values json.RawMessage `json:"values"`
}

// MarshalJSON implements json.Marshaler. The values are written in
// storage order.
func (s *Synchronized[T]) MarshalJSON() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	errs := errors.M{}
	valbuf := &bytes.Buffer{}
	errs.Append(json.NewEncoder(valbuf).Encode(s.h.values))
	buf := &bytes.Buffer{}
	errs.Append(json.NewEncoder(buf).Encode(jsonEncoding{
		Size:   len(s.h.values),
		Order:  s.h.order,
		Values: valbuf.Bytes(),
	}))
	return buf.Bytes(), errs.Err()
}

// UnmarshalJSON implements json.Unmarshaler. The ordering function of
// the wrapped heap is retained and the decoded values are re-heapified
// since they may have been written by a heap with a different ordering.
func (s *Synchronized[T]) UnmarshalJSON(buf []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	hdr := jsonEncoding{}
	if err := json.Unmarshal(buf, &hdr); err != nil {
		return err
	}
	if hdr.Size < 0 {
		return fmt.Errorf("invalid heap size: %d", hdr.Size)
	}
	var values []T
	if err := json.Unmarshal(hdr.Values, &values); err != nil {
		return err
	}
	s.h.order = hdr.Order
	s.h.values = values
	s.h.heapify()
	return nil
}
