// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fft

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/polyscft/comm"
	"github.com/cpmech/polyscft/decomp"
)

func singleRankPlan(tst *testing.T, dims []int, layout Layout) (*Plan, *decomp.Decomposition) {
	cm := comm.NewCommunicator("comm")
	d, err := decomp.New("decomp", decomp.KindRegular, false, dims, cm.Rank(), cm.Size())
	if err != nil {
		tst.Fatal(err)
	}
	plan, err := NewPlan("fft", layout, dims, d, cm)
	if err != nil {
		tst.Fatal(err)
	}
	return plan, d
}

func Test_fft01(tst *testing.T) {

	chk.PrintTitle("fft01: NewPlan rejects dims outside 1..3")

	cm := comm.NewCommunicator("comm")
	d, err := decomp.New("decomp", decomp.KindRegular, false, []int{2, 2, 2, 2}, cm.Rank(), cm.Size())
	if err != nil {
		tst.Fatal(err)
	}
	if _, err := NewPlan("fft", LayoutNormal, []int{2, 2, 2, 2}, d, cm); err == nil {
		tst.Fatal("NewPlan should reject a 4-dimensional shape")
	}
}

func Test_fft02(tst *testing.T) {

	chk.PrintTitle("fft02: backward(forward(x))/V recovers x (spec.md §8's round-trip invariant)")

	plan, _ := singleRankPlan(tst, []int{8}, LayoutNormal)
	x := make([]float64, plan.FFTSize())
	for i := range x {
		x[i] = math.Sin(float64(i)) + float64(i)*0.1
	}
	coeffs := plan.ForwardComplex(x)
	out := make([]float64, len(x))
	plan.BackwardComplex(coeffs, out)
	scale := 1 / plan.V()
	got := make([]float64, len(out))
	for i := range out {
		got[i] = out[i] * scale
	}
	chk.Vector(tst, "backward(forward(x))/V == x", 1e-9, got, x)
}

func Test_fft03(tst *testing.T) {

	chk.PrintTitle("fft03: round-trip invariant holds in 2-D too")

	plan, _ := singleRankPlan(tst, []int{4, 4}, LayoutNormal)
	x := make([]float64, plan.FFTSize())
	for i := range x {
		x[i] = float64(i%5) - 2
	}
	coeffs := plan.ForwardComplex(x)
	out := make([]float64, len(x))
	plan.BackwardComplex(coeffs, out)
	scale := 1 / plan.V()
	got := make([]float64, len(out))
	for i := range out {
		got[i] = out[i] * scale
	}
	chk.Vector(tst, "2-D backward(forward(x))/V == x", 1e-9, got, x)
}

func Test_fft04(tst *testing.T) {

	chk.PrintTitle("fft04: a constant field transforms to a single nonzero DC coefficient")

	plan, _ := singleRankPlan(tst, []int{6}, LayoutNormal)
	x := make([]float64, plan.FFTSize())
	for i := range x {
		x[i] = 3.5
	}
	coeffs := plan.ForwardComplex(x)
	chk.Scalar(tst, "DC coefficient equals N*const", 1e-9, real(coeffs[0]), 3.5*plan.V())
	for i := 1; i < len(coeffs); i++ {
		mag := math.Hypot(real(coeffs[i]), imag(coeffs[i]))
		if mag > 1e-9 {
			tst.Fatalf("coefficient %d of a constant field should vanish, got magnitude %v", i, mag)
		}
	}
}

func Test_fft05(tst *testing.T) {

	chk.PrintTitle("fft05: ScaledPair with an all-zero kScale zeros the output")

	plan, _ := singleRankPlan(tst, []int{4, 4}, LayoutNormal)
	x := make([]float64, plan.FFTSize())
	for i := range x {
		x[i] = float64(i) + 1
	}
	kScale := make([]float64, plan.FFTSize())
	out := make([]float64, plan.FFTSize())
	plan.ScaledPair(x, kScale, out)
	for i, v := range out {
		if math.Abs(v) > 1e-9 {
			tst.Fatalf("ScaledPair with zero kScale should zero cell %d, got %v", i, v)
		}
	}
}

func Test_fft06(tst *testing.T) {

	chk.PrintTitle("fft06: Layout reports back the constructed layout")

	plan, _ := singleRankPlan(tst, []int{4}, LayoutTranspose)
	if plan.Layout() != LayoutTranspose {
		tst.Fatalf("Layout() = %v, want %v", plan.Layout(), LayoutTranspose)
	}
}
