// Copyright 2026 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Command algos provides command line access to the search, heap and
// randomized selection packages.
package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"cloudeng.io/cmdutil"
	"cloudeng.io/cmdutil/subcmd"
	"github.com/ciuncan/algorithms-exercise/container/heap"
	"github.com/ciuncan/algorithms-exercise/randomized"
	"github.com/ciuncan/algorithms-exercise/search"
)

type searchFlags struct {
	Range bool `subcmd:"range,false,'print the range of indices holding the value rather than a single index'"`
}

type heapFlags struct {
	Order string `subcmd:"order,min,'heap order: min or max'"`
	Top   int    `subcmd:"top,0,'if non-zero, print only the first top values that would be popped'"`
}

type pickFlags struct {
	Seed  int `subcmd:"seed,0,'seed for the random number generator, zero uses a random seed'"`
	Count int `subcmd:"n,1,number of independent picks to make"`
}

var cmdSet *subcmd.CommandSet

func init() {
	searchCmd := subcmd.NewCommand("search",
		subcmd.MustRegisterFlagStruct(&searchFlags{}, nil, nil), binarySearch)
	searchCmd.Document(`binary search a sorted list of integers for a value.`, "<value> <sorted-integers>...")

	heapCmd := subcmd.NewCommand("heap",
		subcmd.MustRegisterFlagStruct(&heapFlags{}, nil, nil), heapOrder)
	heapCmd.Document(`push integers onto a heap and print them in the order that they are popped.`, "<integers>...")

	pickCmd := subcmd.NewCommand("pick",
		subcmd.MustRegisterFlagStruct(&pickFlags{}, nil, nil), pick)
	pickCmd.Document(`pick an item uniformly at random.`, "<items>...")

	cmdSet = subcmd.NewCommandSet(searchCmd, heapCmd, pickCmd)
	cmdSet.Document(`run the search, heap and randomized selection algorithms.`)
}

func main() {
	ctx := context.Background()
	if err := cmdSet.Dispatch(ctx); err != nil {
		cmdutil.Exit("%v", err)
	}
}

func parseInts(args []string) ([]int, error) {
	vals := make([]int, 0, len(args))
	for _, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("invalid integer: %q", a)
		}
		vals = append(vals, v)
	}
	return vals, nil
}

func binarySearch(_ context.Context, values any, args []string) error {
	return runSearch(os.Stdout, values.(*searchFlags), args)
}

func runSearch(w io.Writer, fv *searchFlags, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no value specified")
	}
	vals, err := parseInts(args)
	if err != nil {
		return err
	}
	v, list := vals[0], vals[1:]
	if fv.Range {
		lo, hi := search.EqualRange(list, v)
		_, err = fmt.Fprintf(w, "%d %d\n", lo, hi)
		return err
	}
	idx, found := search.Binary(list, v)
	if !found {
		_, err = fmt.Fprintf(w, "%d not found\n", v)
		return err
	}
	_, err = fmt.Fprintf(w, "%d\n", idx)
	return err
}

func heapOrder(_ context.Context, values any, args []string) error {
	return runHeap(os.Stdout, values.(*heapFlags), args)
}

func runHeap(w io.Writer, fv *heapFlags, args []string) error {
	vals, err := parseInts(args)
	if err != nil {
		return err
	}
	var order heap.Order
	switch fv.Order {
	case "min":
		order = heap.Ascending
	case "max":
		order = heap.Descending
	default:
		return fmt.Errorf("unsupported order: %q", fv.Order)
	}
	var popped []int
	if fv.Top > 0 {
		popped = topN(vals, order, fv.Top)
	} else {
		h := heap.NewFunc(cmp.Less[int], heap.WithOrder[int](order), heap.WithData(vals))
		popped = make([]int, 0, h.Len())
		for h.Len() > 0 {
			v, _ := h.Pop()
			popped = append(popped, v)
		}
	}
	out := make([]string, len(popped))
	for i, v := range popped {
		out[i] = strconv.Itoa(v)
	}
	_, err = fmt.Fprintln(w, strings.Join(out, " "))
	return err
}

// topN returns the first n values that a heap of the specified order
// would pop. It uses a heap of the opposite order, bounded to n elements,
// whose top is the value most likely to be displaced.
func topN(vals []int, order heap.Order, n int) []int {
	h := heap.NewFunc(cmp.Less[int], heap.WithOrder[int](!order), heap.WithCapacity[int](n))
	for _, v := range vals {
		h.PushBounded(v, n)
	}
	out := h.Sorted()
	slices.Reverse(out)
	return out
}

func pick(_ context.Context, values any, args []string) error {
	return runPick(os.Stdout, values.(*pickFlags), args)
}

func runPick(w io.Writer, fv *pickFlags, args []string) error {
	var opts []randomized.Option
	if fv.Seed != 0 {
		opts = append(opts, randomized.WithSeed(uint64(fv.Seed), uint64(fv.Seed)))
	}
	p := randomized.NewPicker(opts...)
	for range max(fv.Count, 1) {
		item, ok := randomized.Element(p, args)
		if !ok {
			return fmt.Errorf("no items to pick from")
		}
		if _, err := fmt.Fprintln(w, item); err != nil {
			return err
		}
	}
	return nil
}
