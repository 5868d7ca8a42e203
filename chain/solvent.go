// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chain

import (
	"math"

	"github.com/cpmech/polyscft/comm"
	"github.com/cpmech/polyscft/field"
	"github.com/cpmech/polyscft/names"
)

// SolventKind selects a trivial one-segment species (spec.md §6).
type SolventKind string

const (
	KindSimpleSolvent SolventKind = "simpleSolvent"
	KindSimpleIons    SolventKind = "simpleIons"
)

// Solvent is the trivial one-segment analogue of a Polymer (spec.md §4.3):
// Q_s = (1/V)*Int exp(-Nref*w(r)) dr; contributes density
// phi_c*exp(-Nref*w)/Q_s.
type Solvent struct {
	names.Base

	Kind    SolventKind
	VolFrac float64
	Phys    *field.PhysField

	// ChargePhys and Valence are set for KindSimpleIons (supplemented
	// feature, SPEC_FULL.md §D.4, grounded on PsSimpleIons).
	ChargePhys *field.PhysField
	Valence    float64

	Qs   float64
	nref float64
}

// NewSolvent builds a Solvent bound to its monomer-density PhysField.
func NewSolvent(name string, kind SolventKind, volFrac float64, phys *field.PhysField) *Solvent {
	return &Solvent{Base: names.NewBase(name), Kind: kind, VolFrac: volFrac, Phys: phys}
}

// FindObject implements names.Object (Solvent has no children).
func (o *Solvent) FindObject(name string) names.Object {
	return o.Base.FindObject(o, name)
}

// BuildSolvers records the scale length shared across the Domain (spec.md
// §3's static Nref, lifted into EngineContext per spec.md §9).
func (o *Solvent) BuildSolvers(nref float64) {
	o.nref = nref
}

// Update computes Q_s and deposits this solvent's density contribution
// (spec.md §4.3). cm reduces the local volume-weighted sum across ranks.
func (o *Solvent) Update(cm *comm.Communicator) {
	w := o.Phys.Conjugat.Data
	size := len(w)
	localSum := 0.0
	expW := make([]float64, size)
	for i, v := range w {
		e := math.Exp(-o.nref * v)
		expW[i] = e
		localSum += e
	}
	total := cm.AllReduceSum(localSum)
	localSize := float64(size)
	globalSize := cm.AllReduceSum(localSize)
	o.Qs = total / globalSize

	scale := o.VolFrac / o.Qs
	for i := range o.Phys.Density.Data {
		o.Phys.Density.Data[i] += scale * expW[i]
	}
	if o.Kind == KindSimpleIons && o.ChargePhys != nil {
		for i := range o.ChargePhys.Density.Data {
			o.ChargePhys.Density.Data[i] += o.Valence * scale * expW[i]
		}
	}
}
