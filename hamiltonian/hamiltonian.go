// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hamiltonian implements the EffHamiltonian orchestrator of
// spec.md §4.6: one outer SCFT iteration composing interactions and
// updaters, grounded on
// original_source/polyswift/pseffhamil/PsEffHamil.cpp.
package hamiltonian

import (
	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/polyscft/chain"
	"github.com/cpmech/polyscft/comm"
	"github.com/cpmech/polyscft/field"
	"github.com/cpmech/polyscft/interaction"
	"github.com/cpmech/polyscft/names"
	"github.com/cpmech/polyscft/updater"
)

// EffHamiltonian orchestrates one SCFT step (spec.md §4.6, §5's ordering
// guarantee: polymer holder -> solvent holder -> constraint updater ->
// user updaters in declaration order -> history holder).
type EffHamiltonian struct {
	names.Base

	PhysFields   []*field.PhysField
	Polymers     []*chain.Polymer
	Solvents     []*chain.Solvent
	Interactions []*interaction.Interaction

	// ConstraintUpdater runs before every user Updater (spec.md §4.6 step 4).
	ConstraintUpdater *updater.Constraint

	// Updaters runs in declared sequence order; the engine never reorders
	// them (spec.md §4.6).
	Updaters []updater.Updater

	Psi *field.Field // optional electric potential for charged blocks

	cm *comm.Communicator
}

// NewEffHamiltonian builds an EffHamiltonian wiring already-resolved
// children.
func NewEffHamiltonian(name string, cm *comm.Communicator) *EffHamiltonian {
	return &EffHamiltonian{Base: names.NewBase(name), cm: cm}
}

// FindObject implements names.Object, resolving child Interactions and
// Updaters by name.
func (o *EffHamiltonian) FindObject(name string) names.Object {
	if found := o.Base.FindLocalObject(name); found != nil {
		return found
	}
	for _, ix := range o.Interactions {
		if ix.Name() == name {
			return ix
		}
	}
	for _, u := range o.Updaters {
		if u.Name() == name {
			return u
		}
	}
	return o.Base.FindObject(o, name)
}

// Step runs one full outer SCFT iteration at time t (integer outer step
// index, as spec.md §4.5's apply-frequency windows are defined in outer
// steps).
func (o *EffHamiltonian) Step(t int) error {
	// 1. reset PhysField densities to zero.
	for _, f := range o.PhysFields {
		f.ResetDensField()
	}

	// 2. resolve and run all polymer block propagators, depositing densities.
	for _, p := range o.Polymers {
		if err := p.Update(o.cm, o.Psi); err != nil {
			return err
		}
	}

	// 3. run all solvents, depositing densities.
	for _, s := range o.Solvents {
		s.Update(o.cm)
	}

	// 4. apply constraint updater.
	if o.ConstraintUpdater != nil {
		if err := o.ConstraintUpdater.Update(t); err != nil {
			return err
		}
	}

	// 5. for each user-specified updater in declared sequence order.
	for _, u := range o.Updaters {
		if err := u.Update(t); err != nil {
			return err
		}
	}

	return nil
}

// FreeEnergy sums every Interaction's calc_fe contribution, returning both
// the scalar total and a per-interaction breakdown (SPEC_FULL.md §D.6,
// grounded on PsFreeEnergy.cpp).
func (o *EffHamiltonian) FreeEnergy(includeDisorder bool) (total float64, perInteraction map[string]float64) {
	perInteraction = make(map[string]float64, len(o.Interactions))
	for _, ix := range o.Interactions {
		fe := ix.CalcFE(includeDisorder)
		perInteraction[ix.Name()] = fe
		total += fe
	}
	return total, perInteraction
}

// FindInteraction resolves an Interaction by name, used by History
// samplers that read a single interaction's chiN parameter
// (SPEC_FULL.md §D.5).
func (o *EffHamiltonian) FindInteraction(name string) (*interaction.Interaction, error) {
	for _, ix := range o.Interactions {
		if ix.Name() == name {
			return ix, nil
		}
	}
	return nil, chk.Err("UnknownObject: EffHamiltonian %q: no Interaction named %q", o.Name(), name)
}
