// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interaction

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/polyscft/field"
)

func Test_interaction01(tst *testing.T) {

	chk.PrintTitle("interaction01: Flory energy and derivative")

	a := field.NewPhysField("phiA", field.KindMonomerDens, []int{4})
	b := field.NewPhysField("phiB", field.KindMonomerDens, []int{4})
	for i := range a.Density.Data {
		a.Density.Data[i] = 0.3
		b.Density.Data[i] = 0.7
	}

	ix := NewInteraction("flory01", KindFlory, a, b, 20.0)
	ix.IncludeDisorder = false

	if !ix.HasSCField("phiA") || !ix.HasSCField("phiB") {
		tst.Fatal("HasSCField should match both referenced fields")
	}
	if ix.HasSCField("phiC") {
		tst.Fatal("HasSCField should not match an unreferenced field")
	}

	other, err := ix.GetOtherPhysField("phiA")
	if err != nil || other.Name() != "phiB" {
		tst.Fatalf("GetOtherPhysField(phiA) should return phiB, got %v, err=%v", other, err)
	}
	if _, err := ix.GetOtherPhysField("phiC"); err == nil {
		tst.Fatal("GetOtherPhysField should fail on an unreferenced field name")
	}

	fe := ix.CalcFE(false)
	chk.Scalar(tst, "F = chiN*phiA*phiB", 1e-14, fe, 20.0*0.3*0.7)

	out := field.NewField("dF/dphiA", []int{4}, 1)
	if err := ix.CalcDFD("phiA", out); err != nil {
		tst.Fatal(err)
	}
	for _, v := range out.Data {
		chk.Scalar(tst, "dF/dphiA = chiN*phiB", 1e-14, v, 20.0*0.7)
	}

	if err := ix.CalcDFD("phiC", out); err == nil {
		tst.Fatal("CalcDFD should fail on an unreferenced field name")
	}
}

func Test_interaction02(tst *testing.T) {

	chk.PrintTitle("interaction02: FloryWall has no second PhysField")

	a := field.NewPhysField("phiA", field.KindMonomerDens, []int{2})
	ix := NewInteraction("wall01", KindFloryWall, a, nil, 10.0)
	ix.WallField = field.NewField("wall", []int{2}, 1)
	ix.WallField.Data[0] = 1
	ix.WallField.Data[1] = 0

	if _, err := ix.GetOtherPhysField("phiA"); err == nil {
		tst.Fatal("floryWall GetOtherPhysField(A) should fail: there is no second PhysField")
	}

	a.Density.Data[0] = 0.4
	a.Density.Data[1] = 0.6
	fe := ix.CalcFE(false)
	chk.Scalar(tst, "F = chiN*(phiA.wall)/2", 1e-14, fe, 10.0*(0.4*1+0.6*0)/2)
}
