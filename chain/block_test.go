// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chain

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/polyscft/comm"
	"github.com/cpmech/polyscft/decomp"
	"github.com/cpmech/polyscft/fft"
	"github.com/cpmech/polyscft/field"
)

func singleRankPlan(tst *testing.T, dims []int) (*fft.Plan, *comm.Communicator) {
	cm := comm.NewCommunicator("comm")
	d, err := decomp.New("decomp", decomp.KindRegular, false, dims, cm.Rank(), cm.Size())
	if err != nil {
		tst.Fatal(err)
	}
	plan, err := fft.NewPlan("fft", fft.LayoutNormal, dims, d, cm)
	if err != nil {
		tst.Fatal(err)
	}
	return plan, cm
}

func Test_block01(tst *testing.T) {

	chk.PrintTitle("block01: a single free-standing block at w=0 has Q=1")

	plan, cm := singleRankPlan(tst, []int{4, 4})

	phys := field.NewPhysField("phiA", field.KindMonomerDens, []int{plan.FFTSize()})
	b := NewBlock("A", KindFlexible, 0.01, 10, 1.0, phys)
	if err := b.BuildSolvers(plan, 1.0); err != nil {
		tst.Fatal(err)
	}
	kMagSq := make([]float64, plan.FFTSize())
	b.SetKSq(kMagSq)

	b.Reset(nil)
	if !b.ForwardReady() {
		tst.Fatal("a free-standing block's forward sweep should be immediately ready")
	}
	if err := b.SolveForward(); err != nil {
		tst.Fatal(err)
	}
	if !b.BackwardReady() {
		tst.Fatal("a free-standing block's backward sweep should be ready once forward is done")
	}
	if err := b.SolveBackward(); err != nil {
		tst.Fatal(err)
	}

	qHead := b.PartitionFunction(cm)
	qTail := b.backwardPartitionFunction(cm)
	chk.Scalar(tst, "Q from forward end", 1e-10, qHead, 1)
	chk.Scalar(tst, "Q from backward end", 1e-10, qTail, 1)
}

func Test_block03(tst *testing.T) {

	chk.PrintTitle("block03: a semiflexible block's orientation axis integrates to the same Q=1 and mass conservation as flexible")

	plan, cm := singleRankPlan(tst, []int{4, 4})

	phys := field.NewPhysField("phiA", field.KindMonomerDens, []int{plan.FFTSize()})
	b := NewBlock("A", KindSemiflexible, 0.01, 10, 1.0, phys)
	b.OrientBins = 6
	b.Persist = 0 // no orientation coupling: applyOrientRelax becomes the identity
	if err := b.BuildSolvers(plan, 1.0); err != nil {
		tst.Fatal(err)
	}
	if got := len(b.Qfwd[0].Data); got != 6*plan.FFTSize() {
		tst.Fatalf("semiflexible Qfwd should carry OrientBins*spatialSize cells, got %d want %d", got, 6*plan.FFTSize())
	}
	b.SetKSq(make([]float64, plan.FFTSize()))

	b.Reset(nil)
	for b.ForwardReady() {
		if err := b.SolveForward(); err != nil {
			tst.Fatal(err)
		}
	}
	for b.BackwardReady() {
		if err := b.SolveBackward(); err != nil {
			tst.Fatal(err)
		}
	}
	qHead := b.PartitionFunction(cm)
	qTail := b.backwardPartitionFunction(cm)
	chk.Scalar(tst, "semiflexible Q from forward end", 1e-10, qHead, 1)
	chk.Scalar(tst, "semiflexible Q from backward end", 1e-10, qTail, 1)

	phiC := 0.5
	b.DepositDensity(phiC, math.Log(qHead))
	avg := phys.Density.SumAll() / float64(len(phys.Density.Data))
	chk.Scalar(tst, "semiflexible average deposited density equals phiC", 1e-9, avg, phiC)
}

func Test_block04(tst *testing.T) {

	chk.PrintTitle("block04: semiflexibleBlock rejects orientBins < 1")

	plan, _ := singleRankPlan(tst, []int{4})
	phys := field.NewPhysField("phiA", field.KindMonomerDens, []int{plan.FFTSize()})
	b := NewBlock("A", KindSemiflexible, 0.01, 10, 1.0, phys)
	if err := b.BuildSolvers(plan, 1.0); err == nil {
		tst.Fatal("BuildSolvers should reject a semiflexibleBlock with OrientBins == 0")
	}
}

func Test_block02(tst *testing.T) {

	chk.PrintTitle("block02: DepositDensity conserves total monomer mass")

	plan, cm := singleRankPlan(tst, []int{4, 4})

	phys := field.NewPhysField("phiA", field.KindMonomerDens, []int{plan.FFTSize()})
	b := NewBlock("A", KindFlexible, 0.01, 10, 1.0, phys)
	if err := b.BuildSolvers(plan, 1.0); err != nil {
		tst.Fatal(err)
	}
	b.SetKSq(make([]float64, plan.FFTSize()))

	b.Reset(nil)
	for b.ForwardReady() {
		if err := b.SolveForward(); err != nil {
			tst.Fatal(err)
		}
	}
	for b.BackwardReady() {
		if err := b.SolveBackward(); err != nil {
			tst.Fatal(err)
		}
	}
	q := b.PartitionFunction(cm)

	phiC := 0.5
	b.DepositDensity(phiC, math.Log(q))

	avg := phys.Density.SumAll() / float64(len(phys.Density.Data))
	chk.Scalar(tst, "average deposited density equals phiC", 1e-9, avg, phiC)
}
