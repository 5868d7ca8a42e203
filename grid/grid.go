// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package grid implements the uniform Cartesian lattice of spec.md §4.1:
// global cell counts, cell sizes, periodic point-folding, the minimum-image
// convention and globally-synchronized random grid points.
package grid

import (
	"math"
	"math/rand"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/polyscft/names"
)

// Grid is a dimension-generic (NDIM ∈ {1,2,3}) uniform Cartesian lattice,
// grounded on PsUniCartGrid. It is keyed by kind="uniCartGrid" in the input
// tree (spec.md §6).
type Grid struct {
	names.Base

	Ndim         int       // spatial dimension, 1..3
	NumCells     []int     // [Ndim] global cell counts per axis
	CellSizes    []float64 // [Ndim] physical cell size per axis
	rng          *rand.Rand
}

// NewGrid builds a Grid from already-validated attributes.
func NewGrid(name string, numCells []int, cellSizes []float64, seed int64) (*Grid, error) {
	ndim := len(numCells)
	if ndim < 1 || ndim > 3 {
		return nil, chk.Err("InvalidAttribute: Grid %q: numCellsGlobal must have 1..3 entries, got %d", name, ndim)
	}
	if len(cellSizes) != ndim {
		return nil, chk.Err("InvalidAttribute: Grid %q: cellSizes length %d != numCellsGlobal length %d", name, len(cellSizes), ndim)
	}
	for i, n := range numCells {
		if n < 1 {
			return nil, chk.Err("InvalidAttribute: Grid %q: numCellsGlobal[%d]=%d must be >= 1", name, i, n)
		}
	}
	o := &Grid{
		Base:      names.NewBase(name),
		Ndim:      ndim,
		NumCells:  append([]int(nil), numCells...),
		CellSizes: append([]float64(nil), cellSizes...),
		rng:       rand.New(rand.NewSource(seed)),
	}
	return o, nil
}

// FindObject implements names.Object (Grid has no children).
func (o *Grid) FindObject(name string) names.Object {
	return o.Base.FindObject(o, name)
}

// NumCellsGlobal returns a copy of the per-axis global cell counts.
func (o *Grid) NumCellsGlobal() []int { return append([]int(nil), o.NumCells...) }

// TotalCellsGlobal returns Π n_i.
func (o *Grid) TotalCellsGlobal() int {
	total := 1
	for _, n := range o.NumCells {
		total *= n
	}
	return total
}

// CenterGlobal returns ⌊n_i/2⌋ for each axis.
func (o *Grid) CenterGlobal() []int {
	c := make([]int, o.Ndim)
	for i, n := range o.NumCells {
		c[i] = n / 2
	}
	return c
}

// RandomGlobalPoint draws NDIM uniform integers in [0, n_i) using the
// grid's deterministically-seeded generator. Callers that need the draw
// synchronized across ranks must broadcast it through comm.Communicator
// themselves (spec.md §5); RandomGlobalPoint itself is a local draw.
func (o *Grid) RandomGlobalPoint() []int {
	p := make([]int, o.Ndim)
	for i, n := range o.NumCells {
		p[i] = o.rng.Intn(n)
	}
	return p
}

// Fold maps p componentwise into [0, n_i), the canonical periodic map.
func (o *Grid) Fold(p []int) []int {
	q := make([]int, o.Ndim)
	for i, n := range o.NumCells {
		m := p[i] % n
		if m < 0 {
			m += n
		}
		q[i] = m
	}
	return q
}

// ShortestDistance computes the minimum-image Euclidean distance between
// two global points: d_i = min(|Δ_i|, n_i - |Δ_i|), then Euclidean norm.
func (o *Grid) ShortestDistance(v1, v2 []int) float64 {
	var sumSqr float64
	for i, n := range o.NumCells {
		d := v1[i] - v2[i]
		if d < 0 {
			d = -d
		}
		if d > n-d {
			d = n - d
		}
		sumSqr += float64(d) * float64(d)
	}
	return math.Sqrt(sumSqr)
}

// GlobalLengths returns n_i·Δ_i for each axis.
func (o *Grid) GlobalLengths() []float64 {
	l := make([]float64, o.Ndim)
	for i := range o.NumCells {
		l[i] = float64(o.NumCells[i]) * o.CellSizes[i]
	}
	return l
}

// ToLocal subtracts the decomposition-derived shift from a global point.
func (o *Grid) ToLocal(p []int, shift []int) []int {
	q := make([]int, o.Ndim)
	for i := range p {
		q[i] = p[i] - shift[i]
	}
	return q
}

// ToGlobal adds the decomposition-derived shift to a local point.
func (o *Grid) ToGlobal(p []int, shift []int) []int {
	q := make([]int, o.Ndim)
	for i := range p {
		q[i] = p[i] + shift[i]
	}
	return q
}
