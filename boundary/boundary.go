// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package boundary implements the Boundary datatype of spec.md §3/§4.5: a
// typed spatial region imprinting constraint/wall-density fields and
// carrying a contact predicate, plus the supplemented boundary families and
// moving-expression boundaries of SPEC_FULL.md §D.2-3, grounded on
// original_source/polyswift/psboundary/{PsFixedWall,PsInteractingSphere,
// PsProbeSphere}.cpp.
package boundary

import (
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/polyscft/field"
	"github.com/cpmech/polyscft/grid"
	"github.com/cpmech/polyscft/names"
	"github.com/cpmech/polyscft/spatialfunc"
)

// Kind is the closed sum of boundary families (spec.md §6).
type Kind string

const (
	KindFixedWall        Kind = "fixedWall"
	KindInteractingSphere Kind = "interactingSphere"
	KindProbeSphere      Kind = "probeSphere"
)

// PositionValue is one (position, value) pair a Boundary carries (spec.md
// §3). Position may be static or, for the moving/switching expression
// boundaries of SPEC_FULL.md §D.3, driven by a time-dependent spatialfunc.
type PositionValue struct {
	Position []float64
	Value    float64
}

// Boundary is a typed spatial region (spec.md §3's Boundary datatype).
type Boundary struct {
	names.Base

	Kind Kind

	// PosFunc, when non-nil, re-evaluates Positions[i] once per outer
	// step from a time-dependent spatial function (moving/switching
	// tanh-slab boundaries, SPEC_FULL.md §D.3); Positions is static
	// otherwise.
	PosFunc spatialfunc.Func

	Positions []PositionValue

	// Width is the tanh-profile transition width used by fixedWall and
	// interactingSphere to imprint a smooth wall-density field, grounded
	// on PsInteractingSphere's smooth profile.
	Width float64
	// Radius is the sphere radius for interactingSphere/probeSphere.
	Radius float64
	// Center is the sphere center for interactingSphere/probeSphere.
	Center []int

	// WallField is the static wall-density field imprinted at build time
	// (fixedWall, interactingSphere); nil for probeSphere, which "does not
	// alter the field" (SPEC_FULL.md §D.2, grounded on PsProbeSphere.cpp).
	WallField *field.Field

	g *grid.Grid
}

// NewBoundary constructs a Boundary of the given kind.
func NewBoundary(name string, kind Kind) *Boundary {
	return &Boundary{Base: names.NewBase(name), Kind: kind}
}

// FindObject implements names.Object (Boundary has no children).
func (o *Boundary) FindObject(name string) names.Object {
	return o.Base.FindObject(o, name)
}

// BuildSolvers imprints WallField for fixedWall/interactingSphere kinds
// over g's local shape; probeSphere leaves WallField nil.
func (o *Boundary) BuildSolvers(g *grid.Grid, localShape []int) error {
	o.g = g
	if o.Kind == KindProbeSphere {
		return nil
	}
	o.WallField = field.NewField(o.Name()+".wall", localShape, 1)
	switch o.Kind {
	case KindFixedWall:
		o.imprintWall()
	case KindInteractingSphere:
		if o.Radius <= 0 {
			return chk.Err("InvalidAttribute: Boundary %q: interactingSphere requires Radius > 0", o.Name())
		}
		o.imprintSphere()
	default:
		return chk.Err("InvalidAttribute: Boundary %q: unknown kind %q", o.Name(), o.Kind)
	}
	return nil
}

// imprintWall fills WallField with a tanh profile along the first axis, a
// flat slab boundary at x=0 (grounded on PsFixedWall.cpp).
func (o *Boundary) imprintWall() {
	dims := o.g.NumCellsGlobal()
	n := dims[0]
	stride := 1
	for _, m := range dims[1:] {
		stride *= m
	}
	width := o.Width
	if width <= 0 {
		width = 1
	}
	for i := range o.WallField.Data {
		x := float64((i / stride) % n)
		d := math.Min(x, float64(n)-x)
		o.WallField.Data[i] = 0.5 * (1 - math.Tanh(d/width))
	}
}

// imprintSphere fills WallField with a smooth spherical profile centered
// at Center with the given Radius, tanh-transitioned over Width (grounded
// on PsInteractingSphere.cpp).
func (o *Boundary) imprintSphere() {
	width := o.Width
	if width <= 0 {
		width = 1
	}
	n := o.g.NumCellsGlobal()
	shape := make([]int, len(n))
	copy(shape, n)
	for i := range o.WallField.Data {
		idx := unflatten(i, shape)
		var sumSqr float64
		for d := range idx {
			c := 0
			if d < len(o.Center) {
				c = o.Center[d]
			}
			diff := float64(idx[d] - c)
			sumSqr += diff * diff
		}
		r := math.Sqrt(sumSqr)
		o.WallField.Data[i] = 0.5 * (1 + math.Tanh((r-o.Radius)/width))
	}
}

func unflatten(flat int, dims []int) []int {
	idx := make([]int, len(dims))
	for d := len(dims) - 1; d >= 0; d-- {
		idx[d] = flat % dims[d]
		flat /= dims[d]
	}
	return idx
}

// RefreshPosition re-evaluates time-dependent Positions from PosFunc, once
// per outer step (SPEC_FULL.md §D.3); a no-op when PosFunc is nil.
func (o *Boundary) RefreshPosition(t float64) {
	if o.PosFunc == nil {
		return
	}
	for i := range o.Positions {
		v := o.PosFunc.F(t, o.Positions[i].Position)
		o.Positions[i].Value = v
	}
}

// InContact reports whether two boundaries overlap: their bounding spheres
// (or wall slabs) come within contactTol of each other (spec.md §3's
// contact predicate).
func InContact(a, b *Boundary, contactTol float64) bool {
	if a.Kind == KindFixedWall || b.Kind == KindFixedWall {
		return true // a slab wall is considered in contact with anything sharing its grid
	}
	var sumSqr float64
	for i := range a.Center {
		d := float64(a.Center[i] - b.Center[i])
		sumSqr += d * d
	}
	dist := math.Sqrt(sumSqr)
	return dist-a.Radius-b.Radius <= contactTol
}

// List is the process-wide append-only registry of Boundaries (spec.md §5:
// "Boundaries register themselves in a process-wide list to support
// overlap checks; that list is append-only and reset only between
// independent simulations"). Lifted into an explicit type rather than a
// package-level global, owned by domain.EngineContext (spec.md §9).
type List struct {
	items []*Boundary
}

// Register appends b to the list.
func (l *List) Register(b *Boundary) { l.items = append(l.items, b) }

// All returns every registered Boundary.
func (l *List) All() []*Boundary { return append([]*Boundary(nil), l.items...) }

// Reset clears the list, used only between independent simulations.
func (l *List) Reset() { l.items = nil }

// CheckOverlaps returns every pair of registered boundaries found to be in
// contact, per spec.md §3 invariant (b).
func (l *List) CheckOverlaps(contactTol float64) [][2]*Boundary {
	var pairs [][2]*Boundary
	for i := 0; i < len(l.items); i++ {
		for j := i + 1; j < len(l.items); j++ {
			if InContact(l.items[i], l.items[j], contactTol) {
				pairs = append(pairs, [2]*Boundary{l.items[i], l.items[j]})
			}
		}
	}
	return pairs
}
