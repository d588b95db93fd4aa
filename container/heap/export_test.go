// Copyright 2026 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package heap

import "fmt"

// Verify checks that the heap property holds for every parent and its
// children.
func (h *Heap[T]) Verify() error {
	for i := 1; i < len(h.values); i++ {
		p := parent(i)
		if h.before(h.values[i], h.values[p]) {
			return fmt.Errorf("heap inconsistent: child [%v] %v precedes parent [%v] %v", i, h.values[i], p, h.values[p])
		}
	}
	return nil
}
