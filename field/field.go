// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package field implements Field and PhysField from spec.md §3: an
// NDIM-rank numeric grid of cells with elementwise algebra, and the named
// physical observable pairing a density field with its conjugate field.
//
// Grounded on polyswift's PsFieldBase/PsPhysField, with the elementwise
// loops expressed over gonum's floats helpers (gonum.org/v1/gonum/floats)
// rather than hand rolled, matching the pack's enrichment library.
package field

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"gonum.org/v1/gonum/floats"

	"github.com/cpmech/polyscft/names"
)

// Field is a rank-Rank numeric grid over a fixed local shape. Rank 1 means
// a scalar field over the spatial cells; Rank > 1 (e.g. for a
// semiflexible block's orientation axis) means Data holds
// Π(localShape)·extraComponents scalars, laid out with the spatial cells
// varying fastest within each "component" block.
type Field struct {
	name       string
	localShape []int // decomposition-derived local cell counts per axis
	components int    // extra (non-spatial) rank components, e.g. orientation bins
	Data       []float64
}

// NewField allocates a zeroed Field over localShape with the given number
// of extra (non-spatial) components (1 for an ordinary scalar field).
func NewField(name string, localShape []int, components int) *Field {
	if components < 1 {
		components = 1
	}
	n := components
	for _, d := range localShape {
		n *= d
	}
	return &Field{
		name:       name,
		localShape: append([]int(nil), localShape...),
		components: components,
		Data:       make([]float64, n),
	}
}

// Name returns the field's identifier (not part of names.Object; Fields
// are anonymous buffers owned by a PhysField/Block, not tree nodes).
func (o *Field) Name() string { return o.name }

// Size returns the total number of scalar cells, spec.md §3 invariant (a).
func (o *Field) Size() int { return len(o.Data) }

// SameShape reports whether o and other share grid identity (spec.md §3
// invariant (c)).
func (o *Field) SameShape(other *Field) bool {
	if len(o.localShape) != len(other.localShape) || o.components != other.components {
		return false
	}
	for i := range o.localShape {
		if o.localShape[i] != other.localShape[i] {
			return false
		}
	}
	return true
}

// mustMatch panics with a ShapeMismatch-kind error (spec.md §7) unless o
// and other share grid identity.
func (o *Field) mustMatch(other *Field, op string) {
	if !o.SameShape(other) {
		chk.Panic("ShapeMismatch: Field %q %s Field %q: shapes differ", o.name, op, other.name)
	}
}

// AddField performs o += other, preserving shape (spec.md §3 invariant b,c).
func (o *Field) AddField(other *Field) {
	o.mustMatch(other, "+=")
	floats.Add(o.Data, other.Data)
}

// SubField performs o -= other.
func (o *Field) SubField(other *Field) {
	o.mustMatch(other, "-=")
	floats.Sub(o.Data, other.Data)
}

// MulField performs o *= other, elementwise.
func (o *Field) MulField(other *Field) {
	o.mustMatch(other, "*=")
	floats.Mul(o.Data, other.Data)
}

// AddScalar adds a constant to every cell.
func (o *Field) AddScalar(c float64) {
	floats.AddConst(c, o.Data)
}

// Scale multiplies every cell by a constant (spec.md §3: scale).
func (o *Field) Scale(c float64) {
	floats.Scale(c, o.Data)
}

// Reset sets every cell to v (spec.md §3: reset(v)).
func (o *Field) Reset(v float64) {
	for i := range o.Data {
		o.Data[i] = v
	}
}

// ApplyExp applies math.Exp elementwise in place (spec.md §3: apply_exp).
func (o *Field) ApplyExp() {
	for i, v := range o.Data {
		o.Data[i] = math.Exp(v)
	}
}

// MaxVal returns the maximum cell value (spec.md §3: max_val).
func (o *Field) MaxVal() float64 { return floats.Max(o.Data) }

// MinVal returns the minimum cell value (spec.md §3: min_val).
func (o *Field) MinVal() float64 { return floats.Min(o.Data) }

// SumAll returns the sum of all cells (spec.md §3: sum_all).
func (o *Field) SumAll() float64 { return floats.Sum(o.Data) }

// CheckMaxClip clips every value above maxVal down to clipVal, reporting
// whether any clipping occurred (used by the constraint updater, spec.md
// §4.5).
func (o *Field) CheckMaxClip(maxVal, clipVal float64) bool {
	clipped := false
	for i, v := range o.Data {
		if v > maxVal {
			o.Data[i] = clipVal
			clipped = true
		}
	}
	return clipped
}

// CopyFrom deep-copies other's data into o (shapes must match).
func (o *Field) CopyFrom(other *Field) {
	o.mustMatch(other, "copy from")
	copy(o.Data, other.Data)
}

// Components returns the number of extra (non-spatial) rank components (1
// for an ordinary scalar field, OrientBins for a Semiflexible block's
// orientation axis).
func (o *Field) Components() int { return o.components }

// SpatialSize returns the number of cells per component.
func (o *Field) SpatialSize() int { return len(o.Data) / o.components }

// Component returns the sub-slice of Data holding component c's spatial
// cells (0 <= c < Components()), the data-varies-fastest-within-component
// layout this type's doc comment describes.
func (o *Field) Component(c int) []float64 {
	n := o.SpatialSize()
	return o.Data[c*n : (c+1)*n]
}

// MulInto computes out[i] = a[i]*b[i] without mutating a or b.
func MulInto(out, a, b *Field) {
	a.mustMatch(b, "elementwise product with")
	a.mustMatch(out, "elementwise product into")
	for i := range out.Data {
		out.Data[i] = a.Data[i] * b.Data[i]
	}
}

// PhysField pairs a density field φ with its conjugate field w, plus a
// target average density ρ̄ and the name lists of blocks/solvents/
// interactions that reference it (spec.md §3).
type PhysField struct {
	names.Base

	Kind Kind // monomerDens | chargeDens | constraint

	Density  *Field
	Conjugat *Field
	RhoBar   float64 // target average density ρ̄, set at build

	interactionNames []string
	blockNames       []string
	solventNames     []string

	densAverage   float64
	firstDumpDone bool
}

// Kind is the closed sum of PhysField kinds named in the input tree
// (spec.md §6 and §9's "polymorphism over field kinds" design note).
type Kind string

const (
	KindMonomerDens Kind = "monomerDens"
	KindChargeDens  Kind = "chargeDens"
	KindConstraint  Kind = "constraint"
)

// NewPhysField builds a PhysField over the given local shape.
func NewPhysField(name string, kind Kind, localShape []int) *PhysField {
	return &PhysField{
		Base:     names.NewBase(name),
		Kind:     kind,
		Density:  NewField(name+".phi", localShape, 1),
		Conjugat: NewField(name+".w", localShape, 1),
	}
}

// FindObject implements names.Object (PhysField has no children).
func (o *PhysField) FindObject(name string) names.Object {
	return o.Base.FindObject(o, name)
}

// ResetDensField zeroes the density field at the start of each SCFT step
// (spec.md §3 invariant a).
func (o *PhysField) ResetDensField() {
	o.Density.Reset(0)
}

// RegisterInteraction records that an Interaction references this field.
func (o *PhysField) RegisterInteraction(name string) {
	o.interactionNames = append(o.interactionNames, name)
}

// InteractionNames returns the interactions that reference this field.
func (o *PhysField) InteractionNames() []string { return append([]string(nil), o.interactionNames...) }

// RegisterBlock records that a Block deposits into this field.
func (o *PhysField) RegisterBlock(name string) {
	o.blockNames = append(o.blockNames, name)
}

// BlockNames returns the blocks that deposit into this field.
func (o *PhysField) BlockNames() []string { return append([]string(nil), o.blockNames...) }

// RegisterSolvent records that a Solvent deposits into this field.
func (o *PhysField) RegisterSolvent(name string) {
	o.solventNames = append(o.solventNames, name)
}

// SolventNames returns the solvents that deposit into this field.
func (o *PhysField) SolventNames() []string { return append([]string(nil), o.solventNames...) }

// DensAverage returns the accumulated average density sample.
func (o *PhysField) DensAverage() float64 { return o.densAverage }

// AddToDensAverage accumulates an average-density contribution (e.g. from
// a Solvent's Q_s normalization).
func (o *PhysField) AddToDensAverage(avg float64) { o.densAverage += avg }

// ResetDensAverage zeroes the accumulated average density.
func (o *PhysField) ResetDensAverage() { o.densAverage = 0 }

// CalcLocalVolume returns this rank's local cell count as a float, the
// denominator used to normalize target-volume-fraction checks (spec.md §8).
func (o *PhysField) CalcLocalVolume() float64 { return float64(o.Density.Size()) }

// MarkDumped records that this field has been written at least once.
func (o *PhysField) MarkDumped() { o.firstDumpDone = true }

// HasMadeOneDump reports whether MarkDumped has ever been called.
func (o *PhysField) HasMadeOneDump() bool { return o.firstDumpDone }
