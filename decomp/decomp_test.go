// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decomp

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_decomp01(tst *testing.T) {

	chk.PrintTitle("decomp01: a single-rank decomposition owns the whole global shape")

	d, err := New("d", KindRegular, false, []int{4, 6}, 0, 1)
	if err != nil {
		tst.Fatal(err)
	}
	local := d.NumCellsLocal()
	chk.IntAssert(local[0], 4)
	chk.IntAssert(local[1], 6)
	chk.IntAssert(d.LocalSize(), 24)
	shifts := d.LocalToGlobalShifts()
	chk.IntAssert(shifts[0], 0)
	chk.IntAssert(shifts[1], 0)
}

func Test_decomp02(tst *testing.T) {

	chk.PrintTitle("decomp02: blockExtent splits the remainder across the lowest-ranked blocks first")

	n, size := 10, 3
	total := 0
	for rank := 0; rank < size; rank++ {
		d, err := New("d", KindRegular, false, []int{n}, rank, size)
		if err != nil {
			tst.Fatal(err)
		}
		total += d.LocalSize()
	}
	chk.IntAssert(total, n)

	d0, err := New("d", KindRegular, false, []int{n}, 0, size)
	if err != nil {
		tst.Fatal(err)
	}
	d2, err := New("d", KindRegular, false, []int{n}, 2, size)
	if err != nil {
		tst.Fatal(err)
	}
	if d0.LocalSize() < d2.LocalSize() {
		tst.Fatalf("rank 0 should not get fewer cells than a later rank: got %d < %d", d0.LocalSize(), d2.LocalSize())
	}
}

func Test_decomp03(tst *testing.T) {

	chk.PrintTitle("decomp03: a rank with zero local extent fails InvalidDecomposition")

	if _, err := New("d", KindRegular, false, []int{2}, 5, 8); err == nil {
		tst.Fatal("New should reject a rank with zero local extent on the partitioned axis")
	}
}

func Test_decomp04(tst *testing.T) {

	chk.PrintTitle("decomp04: TransposeFlag only takes effect for KindFFTW, partitioning axis 1 instead of 0")

	dRegular, err := New("d", KindRegular, true, []int{4, 8}, 0, 1)
	if err != nil {
		tst.Fatal(err)
	}
	chk.IntAssert(dRegular.PartitionedAxis(), 0) // transpose ignored for KindRegular

	dFFTW, err := New("d", KindFFTW, true, []int{4, 8}, 1, 2)
	if err != nil {
		tst.Fatal(err)
	}
	chk.IntAssert(dFFTW.PartitionedAxis(), 1)
	local := dFFTW.NumCellsLocal()
	chk.IntAssert(local[0], 4) // unpartitioned axis keeps its full global extent
}

func Test_decomp05(tst *testing.T) {

	chk.PrintTitle("decomp05: HasPosition reports ownership along the partitioned axis")

	d, err := New("d", KindRegular, false, []int{10}, 0, 2)
	if err != nil {
		tst.Fatal(err)
	}
	if !d.HasPosition([]int{0}) {
		tst.Fatal("rank 0 should own global index 0")
	}
	if d.HasPosition([]int{9}) {
		tst.Fatal("rank 0 of a 2-way split over 10 cells should not own global index 9")
	}
}
