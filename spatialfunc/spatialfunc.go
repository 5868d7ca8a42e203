// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package spatialfunc wraps github.com/cpmech/gosl/fun into the
// spatially-varying functor convention of spec.md §1's "embedded script
// evaluation for user-supplied spatial functions" (treated there as an
// external collaborator) and grounded on polyswift's PsExpression/
// PsCutExpression functor shape: F(t, x). gosl/fun already supplies the
// constant/ramp building blocks gofem's inp.FuncsData consumes
// (fun.New(type, prms)); we add the handful of spatial-field kinds this
// engine's test scenarios and input tree name that gosl/fun has no analogue
// for (sin/cos test profiles, a clamped "cut" expression for χN(r)).
package spatialfunc

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

// Func is a spatial (optionally time-dependent) scalar functor: F(t, x).
type Func interface {
	F(t float64, x []float64) float64
}

// adapter wraps a gosl/fun.Func (which already has this signature) to
// satisfy Func without re-exporting the gosl type directly, keeping the
// engine's public surface independent of gosl/fun's package identity.
type adapter struct{ f fun.Func }

func (a adapter) F(t float64, x []float64) float64 { return a.f.F(t, x) }

// plain wraps a closure directly.
type plain struct{ f func(t float64, x []float64) float64 }

func (p plain) F(t float64, x []float64) float64 { return p.f(t, x) }

// cut clamps an inner functor's value between lower and upper, grounded on
// PsCutExpression/PsChiCutExpression.
type cut struct {
	inner      Func
	lower, upper float64
}

func (c cut) F(t float64, x []float64) float64 {
	v := c.inner.F(t, x)
	if v < c.lower {
		return c.lower
	}
	if v > c.upper {
		return c.upper
	}
	return v
}

// New builds a spatial functor from a kind string and gosl/fun-style
// parameters, dispatching to gosl/fun for the kinds it already knows
// ("cte", "rmp", ...) and to this package's own sin/cos/cut kinds
// otherwise.
func New(kind string, prms fun.Prms) (Func, error) {
	switch kind {
	case "sin":
		amp, period, phase := paramsOr(prms, 1, 1, 0)
		return plain{func(t float64, x []float64) float64 {
			return amp * math.Sin(2*math.Pi*x[0]/period+phase)
		}}, nil
	case "cos":
		amp, period, phase := paramsOr(prms, 1, 1, 0)
		return plain{func(t float64, x []float64) float64 {
			return amp * math.Cos(2*math.Pi*x[0]/period+phase)
		}}, nil
	case "cut":
		base := Const(prmValue(prms, "chi", 0))
		lower := prmValue(prms, "chi_lower", math.Inf(-1))
		upper := prmValue(prms, "chi_upper", math.Inf(1))
		return cut{inner: base, lower: lower, upper: upper}, nil
	default:
		f := fun.New(kind, prms)
		if f == nil {
			return nil, chk.Err("InvalidAttribute: unknown function kind %q", kind)
		}
		return adapter{f}, nil
	}
}

// Zero is the always-zero spatial functor, used as the default conjugate
// field initializer and matching gosl/fun.Zero's role in gofem.
var Zero Func = plain{func(float64, []float64) float64 { return 0 }}

// Const returns a spatially uniform constant functor.
func Const(v float64) Func {
	return plain{func(float64, []float64) float64 { return v }}
}

func prmValue(prms fun.Prms, name string, def float64) float64 {
	for _, p := range prms {
		if p.N == name {
			return p.V
		}
	}
	return def
}

func paramsOr(prms fun.Prms, amp, period, phase float64) (float64, float64, float64) {
	return prmValue(prms, "amp", amp), prmValue(prms, "period", period), prmValue(prms, "phase", phase)
}
