// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spatialfunc

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

func Test_spatialfunc01(tst *testing.T) {

	chk.PrintTitle("spatialfunc01: Zero and Const are spatially uniform")

	chk.Scalar(tst, "Zero at any point", 1e-15, Zero.F(0, []float64{1, 2, 3}), 0)
	c := Const(2.5)
	chk.Scalar(tst, "Const at x=0", 1e-15, c.F(0, []float64{0}), 2.5)
	chk.Scalar(tst, "Const at x=100", 1e-15, c.F(0, []float64{100}), 2.5)
}

func Test_spatialfunc02(tst *testing.T) {

	chk.PrintTitle("spatialfunc02: sin/cos kinds build a periodic profile along x[0]")

	s, err := New("sin", fun.Prms{{N: "amp", V: 2}, {N: "period", V: 4}})
	if err != nil {
		tst.Fatal(err)
	}
	chk.Scalar(tst, "sin at x=0", 1e-12, s.F(0, []float64{0}), 0)
	chk.Scalar(tst, "sin at x=period/4", 1e-9, s.F(0, []float64{1}), 2)

	cosine, err := New("cos", fun.Prms{{N: "amp", V: 1}, {N: "period", V: 2 * math.Pi}})
	if err != nil {
		tst.Fatal(err)
	}
	chk.Scalar(tst, "cos at x=0", 1e-12, cosine.F(0, []float64{0}), 1)
}

func Test_spatialfunc03(tst *testing.T) {

	chk.PrintTitle("spatialfunc03: cut clamps chi between chi_lower and chi_upper")

	f, err := New("cut", fun.Prms{{N: "chi", V: 5}, {N: "chi_lower", V: 0}, {N: "chi_upper", V: 3}})
	if err != nil {
		tst.Fatal(err)
	}
	chk.Scalar(tst, "cut clamps above chi_upper", 1e-15, f.F(0, nil), 3)

	f2, err := New("cut", fun.Prms{{N: "chi", V: -5}, {N: "chi_lower", V: 0}, {N: "chi_upper", V: 3}})
	if err != nil {
		tst.Fatal(err)
	}
	chk.Scalar(tst, "cut clamps below chi_lower", 1e-15, f2.F(0, nil), 0)
}

func Test_spatialfunc04(tst *testing.T) {

	chk.PrintTitle("spatialfunc04: an unknown function kind not known to gosl/fun either is rejected")

	if _, err := New("totally-bogus-kind", nil); err == nil {
		tst.Fatal("New should reject a kind unknown to both spatialfunc and gosl/fun")
	}
}

func Test_spatialfunc05(tst *testing.T) {

	chk.PrintTitle("spatialfunc05: unrecognized kinds fall through to gosl/fun and are still callable")

	f, err := New("cte", fun.Prms{{N: "c", V: 7}})
	if err != nil {
		tst.Fatal(err)
	}
	if f == nil {
		tst.Fatal("New should return a non-nil functor for a kind gosl/fun itself recognizes")
	}
	_ = f.F(0, nil) // must not panic; the exact "cte" parameter name is gosl/fun's own contract
}
