// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grid

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_grid01(tst *testing.T) {

	chk.PrintTitle("grid01: NewGrid rejects mismatched cellSizes and out-of-range ndim")

	if _, err := NewGrid("g", []int{4, 4}, []float64{1}, 0); err == nil {
		tst.Fatal("NewGrid should reject cellSizes length mismatch")
	}
	if _, err := NewGrid("g", []int{4, 4, 4, 4}, []float64{1, 1, 1, 1}, 0); err == nil {
		tst.Fatal("NewGrid should reject ndim > 3")
	}
	if _, err := NewGrid("g", []int{0}, []float64{1}, 0); err == nil {
		tst.Fatal("NewGrid should reject a zero cell count")
	}
}

func Test_grid02(tst *testing.T) {

	chk.PrintTitle("grid02: Fold is idempotent and periodic (spec.md §8 scenario #4)")

	g, err := NewGrid("g", []int{8, 6}, []float64{1, 1}, 1)
	if err != nil {
		tst.Fatal(err)
	}
	cases := [][]int{
		{0, 0}, {7, 5}, {8, 6}, {-1, -1}, {-8, -6}, {15, 13}, {-17, 11},
	}
	for _, p := range cases {
		folded := g.Fold(p)
		for i, n := range g.NumCells {
			if folded[i] < 0 || folded[i] >= n {
				tst.Fatalf("Fold(%v)[%d]=%d out of [0,%d)", p, i, folded[i], n)
			}
		}
		refolded := g.Fold(folded)
		chk.IntAssert(refolded[0], folded[0])
		chk.IntAssert(refolded[1], folded[1])
	}
	// a point and any of its periodic images fold to the same canonical cell
	chk.IntAssert(g.Fold([]int{3, 2})[0], g.Fold([]int{3 + 8, 2 - 6})[0])
	chk.IntAssert(g.Fold([]int{3, 2})[1], g.Fold([]int{3 + 8, 2 - 6})[1])
}

func Test_grid03(tst *testing.T) {

	chk.PrintTitle("grid03: ShortestDistance applies the minimum-image convention")

	g, err := NewGrid("g", []int{10}, []float64{1}, 1)
	if err != nil {
		tst.Fatal(err)
	}
	// 1 and 9 are adjacent through the periodic boundary (distance 2), not 8
	d := g.ShortestDistance([]int{1}, []int{9})
	chk.Scalar(tst, "minimum-image distance wraps around the boundary", 1e-15, d, 2)

	// the direct (non-wrapping) distance is still correct when it is shorter
	d2 := g.ShortestDistance([]int{2}, []int{4})
	chk.Scalar(tst, "minimum-image distance matches direct distance when shorter", 1e-15, d2, 2)
}

func Test_grid04(tst *testing.T) {

	chk.PrintTitle("grid04: CenterGlobal, TotalCellsGlobal and GlobalLengths")

	g, err := NewGrid("g", []int{4, 6}, []float64{0.5, 2}, 1)
	if err != nil {
		tst.Fatal(err)
	}
	c := g.CenterGlobal()
	chk.IntAssert(c[0], 2)
	chk.IntAssert(c[1], 3)
	chk.IntAssert(g.TotalCellsGlobal(), 24)
	lengths := g.GlobalLengths()
	chk.Scalar(tst, "global length axis 0", 1e-15, lengths[0], 2)
	chk.Scalar(tst, "global length axis 1", 1e-15, lengths[1], 12)
}

func Test_grid05(tst *testing.T) {

	chk.PrintTitle("grid05: RandomGlobalPoint stays in bounds and ToLocal/ToGlobal round-trip")

	g, err := NewGrid("g", []int{5, 7}, []float64{1, 1}, 42)
	if err != nil {
		tst.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		p := g.RandomGlobalPoint()
		for j, n := range g.NumCells {
			if p[j] < 0 || p[j] >= n {
				tst.Fatalf("RandomGlobalPoint()[%d]=%d out of [0,%d)", j, p[j], n)
			}
		}
	}
	shift := []int{2, 3}
	global := []int{4, 5}
	local := g.ToLocal(global, shift)
	roundTrip := g.ToGlobal(local, shift)
	chk.IntAssert(roundTrip[0], global[0])
	chk.IntAssert(roundTrip[1], global[1])
}
