// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package interaction implements the Interaction energy functional of
// spec.md §4.4: Flory and FloryWall terms over pairs of PhysFields,
// grounded on original_source/polyswift/pseffhamil/PsFlory.cpp and
// PsFloryWall.cpp.
package interaction

import (
	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/polyscft/field"
	"github.com/cpmech/polyscft/names"
	"github.com/cpmech/polyscft/spatialfunc"
)

// Kind is the closed sum of interaction functionals (spec.md §6).
type Kind string

const (
	KindFlory     Kind = "flory"
	KindFloryWall Kind = "floryWall"
)

// Interaction is a two-body energy functional over PhysField pairs
// (spec.md §4.4; "the only [arity] case supported").
type Interaction struct {
	names.Base

	Kind Kind

	// ChiN is either a uniform scalar (ChiNField == nil) or a spatially
	// varying Field supplied by a user-defined expression (spec.md §4.4).
	ChiNScalar float64
	ChiNField  *field.Field
	ChiNFunc   spatialfunc.Func // builds ChiNField at build time when set

	// A and B are the two referenced PhysFields (Flory); for FloryWall, B
	// is replaced conceptually by a static wall field supplied directly.
	A, B *field.PhysField

	// WallField is used instead of B.Density for KindFloryWall.
	WallField *field.Field

	// ShiftDens records the input tree's shiftDens flag. CalcDFD and CalcFE
	// do not read it: densities are used as they are, never shifted by
	// their average.
	ShiftDens bool

	// IncludeDisorder records whether the homogeneous reference contribution
	// is wanted (spec.md §4.4). CalcFE does not read this field; its own
	// includeDisorder argument decides the subtraction.
	IncludeDisorder bool
}

// NewInteraction constructs a Flory interaction between two PhysFields.
func NewInteraction(name string, kind Kind, a, b *field.PhysField, chiN float64) *Interaction {
	return &Interaction{Base: names.NewBase(name), Kind: kind, A: a, B: b, ChiNScalar: chiN, IncludeDisorder: true}
}

// FindObject implements names.Object (Interaction has no children).
func (o *Interaction) FindObject(name string) names.Object {
	return o.Base.FindObject(o, name)
}

// BuildSolvers materializes ChiNField from ChiNFunc over localShape when a
// spatially varying chiN expression was supplied (spec.md §4.4: "both
// pathways must produce identical dF/dphi when the expression is
// constant").
func (o *Interaction) BuildSolvers(localShape []int, coords func(int) []float64) error {
	if o.ChiNFunc == nil {
		return nil
	}
	n := 1
	for _, d := range localShape {
		n *= d
	}
	o.ChiNField = field.NewField(o.Name()+".chiN", localShape, 1)
	for i := 0; i < n; i++ {
		o.ChiNField.Data[i] = o.ChiNFunc.F(0, coords(i))
	}
	return nil
}

// chiAt returns the effective chiN at cell i, whether scalar or field.
func (o *Interaction) chiAt(i int) float64 {
	if o.ChiNField != nil {
		return o.ChiNField.Data[i]
	}
	return o.ChiNScalar
}

// HasSCField reports whether name is one of this interaction's referenced
// PhysFields (spec.md §4.4's has_sc_field).
func (o *Interaction) HasSCField(name string) bool {
	return (o.A != nil && o.A.Name() == name) || (o.Kind != KindFloryWall && o.B != nil && o.B.Name() == name)
}

// GetOtherPhysField returns the PhysField opposite to name, failing with
// TooManyFields if name does not match exactly one of the two referenced
// fields (spec.md §4.4). FloryWall interactions have no second PhysField
// (B is a static wall field), so the only valid name is A's.
func (o *Interaction) GetOtherPhysField(name string) (*field.PhysField, error) {
	if name == o.A.Name() {
		if o.B == nil {
			return nil, chk.Err("TooManyFields: Interaction %q: floryWall has no second PhysField", o.Name())
		}
		return o.B, nil
	}
	if o.B != nil && name == o.B.Name() {
		return o.A, nil
	}
	return nil, chk.Err("TooManyFields: Interaction %q: %q is not one of the two referenced fields", o.Name(), name)
}

// otherDensity returns the B-side density, whether from B.Density (Flory)
// or WallField (FloryWall).
func (o *Interaction) otherDensity() []float64 {
	if o.Kind == KindFloryWall {
		return o.WallField.Data
	}
	return o.B.Density.Data
}

// CalcDFD accumulates dF/dphi for wrtFieldName into out, additive across
// calls when out is zeroed beforehand (spec.md §8's idempotence law).
func (o *Interaction) CalcDFD(wrtFieldName string, out *field.Field) error {
	if !o.HasSCField(wrtFieldName) {
		return chk.Err("UnknownObject: Interaction %q: %q is not a referenced PhysField", o.Name(), wrtFieldName)
	}
	var density []float64
	if wrtFieldName == o.A.Name() {
		density = o.otherDensity()
	} else {
		density = o.A.Density.Data
	}
	for i := range out.Data {
		out.Data[i] += o.chiAt(i) * density[i]
	}
	return nil
}

// CalcFE computes F = (1/V)*Int [chiN(r)*phiA(r)*phiB(r) -
// chiN(r)*rhoBarA*rhoBarB*psiWall(1-psiWall)] dr, optionally including the
// disorder subtraction (spec.md §4.4).
func (o *Interaction) CalcFE(includeDisorder bool) float64 {
	phiA := o.A.Density.Data
	phiB := o.otherDensity()
	var sum float64
	for i := range phiA {
		sum += o.chiAt(i) * phiA[i] * phiB[i]
	}
	size := float64(len(phiA))
	fe := sum / size
	if includeDisorder {
		rhoA := o.A.RhoBar
		rhoB := 1.0
		if o.B != nil {
			rhoB = o.B.RhoBar
		}
		var psiSum float64
		if o.WallField != nil {
			for _, v := range o.WallField.Data {
				psiSum += v * (1 - v)
			}
		}
		avgChi := o.ChiNScalar
		if o.ChiNField != nil {
			var s float64
			for _, v := range o.ChiNField.Data {
				s += v
			}
			avgChi = s / size
		}
		fe -= avgChi * rhoA * rhoB * (psiSum / size)
	}
	return fe
}
