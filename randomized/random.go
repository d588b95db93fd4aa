// Copyright 2026 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package randomized provides uniformly random selection from slices.
package randomized

import "math/rand/v2"

// Picker selects elements uniformly at random.
type Picker struct {
	rnd *rand.Rand
}

// Option represents an option to NewPicker.
type Option func(*Picker)

// WithSeed configures the Picker to use a PCG source with the supplied
// seed so that its selections are reproducible.
func WithSeed(seed1, seed2 uint64) Option {
	return func(p *Picker) {
		p.rnd = rand.New(rand.NewPCG(seed1, seed2))
	}
}

// NewPicker returns a new Picker. By default it uses the top level
// functions of math/rand/v2 which are safe for concurrent use, a
// Picker created WithSeed is not.
func NewPicker(opts ...Option) *Picker {
	p := &Picker{}
	for _, fn := range opts {
		fn(p)
	}
	return p
}

func (p *Picker) intN(n int) int {
	if p.rnd == nil {
		return rand.IntN(n)
	}
	return p.rnd.IntN(n)
}

// Element returns a uniformly random element of s using p. It returns
// false if s is empty.
func Element[S ~[]E, E any](p *Picker, s S) (E, bool) {
	if len(s) == 0 {
		var zero E
		return zero, false
	}
	return s[p.intN(len(s))], true
}

var defaultPicker = &Picker{}

// Pick returns a uniformly random element of s. It returns false if s
// is empty.
func Pick[S ~[]E, E any](s S) (E, bool) {
	return Element(defaultPicker, s)
}
