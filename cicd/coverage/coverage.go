// Copyright 2026 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package coverage summarizes Go coverage profiles, as written by
// go test -coverprofile, and gates them against a minimum acceptable
// coverage ratio.
package coverage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/ciuncan/algorithms-exercise/container/heap"
	"golang.org/x/tools/cover"
)

// DefaultThreshold is the minimum acceptable fraction of statements that
// must be covered.
const DefaultThreshold = 0.75

var (
	// ErrBelowThreshold is returned by Check when the measured coverage
	// is less than the required threshold.
	ErrBelowThreshold = errors.New("coverage below threshold")
	// ErrInvalidThreshold is returned when a threshold is outside of [0, 1].
	ErrInvalidThreshold = errors.New("threshold must be in the range [0, 1]")
)

// File represents the coverage of a single source file.
type File struct {
	Name       string `json:"name"`
	Statements int    `json:"statements"`
	Covered    int    `json:"covered"`
}

// Ratio returns the fraction of statements covered, a file with no
// statements is considered to be fully covered.
func (f File) Ratio() float64 {
	return ratio(f.Covered, f.Statements)
}

// Summary represents the coverage of all of the files in a profile.
type Summary struct {
	Mode       string `json:"mode"`
	Statements int    `json:"statements"`
	Covered    int    `json:"covered"`
	Files      []File `json:"files"`
}

// Ratio returns the fraction of statements covered, a summary with no
// statements is considered to be fully covered.
func (s Summary) Ratio() float64 {
	return ratio(s.Covered, s.Statements)
}

func ratio(covered, statements int) float64 {
	if statements == 0 {
		return 1
	}
	return float64(covered) / float64(statements)
}

// Summarize computes a Summary from parsed coverage profiles. Files are
// sorted by name.
func Summarize(profiles []*cover.Profile) Summary {
	var s Summary
	for _, p := range profiles {
		if s.Mode == "" {
			s.Mode = p.Mode
		}
		f := File{Name: p.FileName}
		for _, b := range p.Blocks {
			f.Statements += b.NumStmt
			if b.Count > 0 {
				f.Covered += b.NumStmt
			}
		}
		s.Statements += f.Statements
		s.Covered += f.Covered
		s.Files = append(s.Files, f)
	}
	slices.SortFunc(s.Files, func(a, b File) int {
		return strings.Compare(a.Name, b.Name)
	})
	return s
}

// Parse reads a coverage profile from r and summarizes it.
func Parse(r io.Reader) (Summary, error) {
	profiles, err := cover.ParseProfilesFromReader(r)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to parse coverage profile: %w", err)
	}
	return Summarize(profiles), nil
}

// ParseFile reads the coverage profile in filename and summarizes it.
func ParseFile(filename string) (Summary, error) {
	f, err := os.Open(filename)
	if err != nil {
		return Summary{}, err
	}
	defer f.Close()
	s, err := Parse(f)
	if err != nil {
		return Summary{}, fmt.Errorf("%v: %w", filename, err)
	}
	return s, nil
}

// ValidateThreshold returns ErrInvalidThreshold if threshold is not
// in the range [0, 1].
func ValidateThreshold(threshold float64) error {
	if !(threshold >= 0 && threshold <= 1) { // also rejects NaN.
		return fmt.Errorf("%v: %w", threshold, ErrInvalidThreshold)
	}
	return nil
}

// Check returns an error wrapping ErrBelowThreshold if the coverage
// ratio of s is less than threshold.
func Check(s Summary, threshold float64) error {
	if err := ValidateThreshold(threshold); err != nil {
		return err
	}
	if r := s.Ratio(); r < threshold {
		return fmt.Errorf("%w: %s < %s", ErrBelowThreshold, Percent(r), Percent(threshold))
	}
	return nil
}

// Percent formats a ratio as a percentage.
func Percent(r float64) string {
	return fmt.Sprintf("%.2f%%", r*100)
}

// LeastCovered returns the (at most) n files with the lowest coverage
// ratios, least covered first. Files with no statements are ignored.
func (s Summary) LeastCovered(n int) []File {
	h := heap.NewFunc(lessCovered, heap.WithOrder[File](heap.Descending),
		heap.WithCapacity[File](max(n, 0)))
	for _, f := range s.Files {
		if f.Statements == 0 {
			continue
		}
		h.PushBounded(f, n)
	}
	out := h.Sorted()
	slices.Reverse(out)
	return out
}

func lessCovered(a, b File) bool {
	ra, rb := a.Ratio(), b.Ratio()
	if ra != rb {
		return ra < rb
	}
	return a.Name < b.Name
}
