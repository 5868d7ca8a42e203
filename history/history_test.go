// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package history

import (
	"os"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/polyscft/comm"
	"github.com/cpmech/polyscft/field"
	"github.com/cpmech/polyscft/hamiltonian"
	"github.com/cpmech/polyscft/interaction"
)

func Test_history01(tst *testing.T) {

	chk.PrintTitle("history01: apply window gates sampling, time/data vectors stay equal length")

	cm := comm.NewCommunicator("comm")
	eff := hamiltonian.NewEffHamiltonian("eff", cm)
	a := field.NewPhysField("phiA", field.KindMonomerDens, []int{2})
	b := field.NewPhysField("phiB", field.KindMonomerDens, []int{2})
	ix := interaction.NewInteraction("flory", interaction.KindFlory, a, b, 5)
	eff.Interactions = []*interaction.Interaction{ix}

	h := NewHistory("fe", KindFreeEnergy, Frequency{Start: 0, Period: 2, End: -1}, "", -1, eff)
	for step := 0; step < 6; step++ {
		if err := h.Sample(step, float64(step)); err != nil {
			tst.Fatal(err)
		}
	}
	chk.IntAssert(h.Len(), 3) // steps 0, 2, 4
	chk.IntAssert(len(h.Times()), h.Len())
}

func Test_history02(tst *testing.T) {

	chk.PrintTitle("history02: floryChiAtPoint rejects an out-of-range point")

	cm := comm.NewCommunicator("comm")
	eff := hamiltonian.NewEffHamiltonian("eff", cm)
	a := field.NewPhysField("phiA", field.KindMonomerDens, []int{2})
	b := field.NewPhysField("phiB", field.KindMonomerDens, []int{2})
	ix := interaction.NewInteraction("flory", interaction.KindFlory, a, b, 5)
	eff.Interactions = []*interaction.Interaction{ix}

	h := NewHistory("chiPt", KindFloryChiAtPoint, Frequency{Period: 1, End: -1}, "flory", 10, eff)
	if err := h.Sample(0, 0); err == nil {
		tst.Fatal("Sample should fail when Point is out of range")
	}
}

func Test_history03(tst *testing.T) {

	chk.PrintTitle("history03: WriteCSV exports one row per sample")

	cm := comm.NewCommunicator("comm")
	eff := hamiltonian.NewEffHamiltonian("eff", cm)
	a := field.NewPhysField("phiA", field.KindMonomerDens, []int{2})
	b := field.NewPhysField("phiB", field.KindMonomerDens, []int{2})
	ix := interaction.NewInteraction("flory", interaction.KindFlory, a, b, 5)
	eff.Interactions = []*interaction.Interaction{ix}

	h := NewHistory("fe", KindFreeEnergy, Frequency{Period: 1, End: -1}, "", -1, eff)
	for step := 0; step < 3; step++ {
		if err := h.Sample(step, float64(step)); err != nil {
			tst.Fatal(err)
		}
	}

	path := os.TempDir() + "/polyscft_history_test.csv"
	defer os.Remove(path)
	if err := h.WriteCSV(path); err != nil {
		tst.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		tst.Fatal(err)
	}
	if len(data) == 0 {
		tst.Fatal("WriteCSV should produce a non-empty file")
	}
}
