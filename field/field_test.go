// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package field

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_field01(tst *testing.T) {

	chk.PrintTitle("field01: elementwise algebra")

	a := NewField("a", []int{2, 3}, 1)
	b := NewField("b", []int{2, 3}, 1)
	for i := range a.Data {
		a.Data[i] = float64(i)
		b.Data[i] = 1
	}

	a.AddField(b)
	chk.Vector(tst, "a after += b", 1e-15, a.Data, []float64{1, 2, 3, 4, 5, 6})

	a.Scale(2)
	chk.Vector(tst, "a after scale(2)", 1e-15, a.Data, []float64{2, 4, 6, 8, 10, 12})

	chk.Scalar(tst, "sum_all", 1e-15, a.SumAll(), 42)
	chk.Scalar(tst, "max_val", 1e-15, a.MaxVal(), 12)
	chk.Scalar(tst, "min_val", 1e-15, a.MinVal(), 2)

	a.Reset(0)
	a.AddScalar(1)
	a.ApplyExp()
	for _, v := range a.Data {
		chk.Scalar(tst, "exp(1)", 1e-14, v, 2.718281828459045)
	}
}

func Test_field02(tst *testing.T) {

	chk.PrintTitle("field02: shape mismatch panics")

	a := NewField("a", []int{4}, 1)
	b := NewField("b", []int{5}, 1)
	defer func() {
		if r := recover(); r == nil {
			tst.Fatal("AddField on mismatched shapes should have panicked")
		}
	}()
	a.AddField(b)
}

func Test_field03(tst *testing.T) {

	chk.PrintTitle("field03: PhysField registration and density average")

	pf := NewPhysField("phiA", KindMonomerDens, []int{2, 2})
	chk.IntAssert(pf.Density.Size(), 4)
	chk.IntAssert(pf.Conjugat.Size(), 4)

	pf.RegisterBlock("A1")
	pf.RegisterBlock("A2")
	pf.RegisterSolvent("S1")
	chk.IntAssert(len(pf.BlockNames()), 2)
	chk.IntAssert(len(pf.SolventNames()), 1)

	pf.AddToDensAverage(0.3)
	pf.AddToDensAverage(0.2)
	chk.Scalar(tst, "dens average", 1e-15, pf.DensAverage(), 0.5)
	pf.ResetDensAverage()
	chk.Scalar(tst, "dens average after reset", 1e-15, pf.DensAverage(), 0)

	if pf.HasMadeOneDump() {
		tst.Fatal("fresh PhysField should not report a dump yet")
	}
	pf.MarkDumped()
	if !pf.HasMadeOneDump() {
		tst.Fatal("MarkDumped should set HasMadeOneDump")
	}
}
