// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chain

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_schulz01(tst *testing.T) {

	chk.PrintTitle("schulz01: monodisperse limit (nspecies=1)")

	s := NewSchulzDistribution(10, 1)
	species := s.Discretize()
	chk.IntAssert(len(species), 1)
	chk.Scalar(tst, "single species length multiplier", 1e-15, species[0].LengthMultiplier, 1)
	chk.Scalar(tst, "single species weight", 1e-15, species[0].Weight, 1)
}

func Test_schulz02(tst *testing.T) {

	chk.PrintTitle("schulz02: weights normalize to one across species")

	s := NewSchulzDistribution(10, 5)
	species := s.Discretize()
	chk.IntAssert(len(species), 5)

	var total float64
	for _, sp := range species {
		if sp.Weight < 0 {
			tst.Fatalf("weight must be non-negative, got %v", sp.Weight)
		}
		total += sp.Weight
	}
	chk.Scalar(tst, "sum of species weights", 1e-12, total, 1)

	for i := 1; i < len(species); i++ {
		if species[i].LengthMultiplier <= species[i-1].LengthMultiplier {
			tst.Fatal("length multipliers must be strictly increasing across species")
		}
	}
}

func Test_schulz03(tst *testing.T) {

	chk.PrintTitle("schulz03: larger z narrows the distribution around x=1")

	narrow := NewSchulzDistribution(200, 5).Discretize()
	wide := NewSchulzDistribution(2, 5).Discretize()

	weightNearOne := func(species []Species) float64 {
		for _, sp := range species {
			if math.Abs(sp.LengthMultiplier-1) < 1e-9 {
				return sp.Weight
			}
		}
		// fall back to the species closest to x=1
		best := species[0]
		for _, sp := range species[1:] {
			if math.Abs(sp.LengthMultiplier-1) < math.Abs(best.LengthMultiplier-1) {
				best = sp
			}
		}
		return best.Weight
	}

	if weightNearOne(narrow) <= weightNearOne(wide) {
		tst.Fatal("a larger shape parameter z should concentrate more weight near x=1")
	}
}
