// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package history implements the History diagnostic collector of
// spec.md §3/§6: an appendable time series of a typed observable, plus
// the FreeEnergy/FloryConstChi/FloryChiAtPoint samplers of
// SPEC_FULL.md §D.5-6, grounded on
// original_source/polyswift/pshistory/{PsFreeEnergy,PsFloryConstChi,
// PsFloryChiAtPoint}.cpp.
package history

import (
	"os"

	"github.com/cpmech/gosl/chk"
	"github.com/gocarina/gocsv"

	"github.com/cpmech/polyscft/hamiltonian"
	"github.com/cpmech/polyscft/names"
)

// Kind is the closed sum of History samplers (spec.md §6).
type Kind string

const (
	KindFreeEnergy     Kind = "freeEnergy"
	KindFloryConstChi  Kind = "floryConstChi"
	KindFloryChiAtPoint Kind = "floryChiAtPoint"
)

// Frequency mirrors updater.Frequency's apply-window gate, named
// updatePeriodicity in the input tree (spec.md §6).
type Frequency struct {
	Start, Period, End int
}

// Applies reports whether step satisfies this sampler's apply window.
func (f Frequency) Applies(step int) bool {
	if step < f.Start || (f.End >= 0 && step > f.End) {
		return false
	}
	period := f.Period
	if period <= 0 {
		period = 1
	}
	return (step-f.Start)%period == 0
}

// sample is one CSV-exportable row (gocarina/gocsv tags), shared across
// sampler kinds by leaving kind-inapplicable columns at their zero value.
type sample struct {
	Step           int     `csv:"step"`
	Time           float64 `csv:"time"`
	FreeEnergyTotal float64 `csv:"free_energy_total"`
	ChiN           float64 `csv:"chi_n"`
}

// History collects one observable's time series (spec.md §3's invariant:
// time vector and data vector have equal length).
type History struct {
	names.Base

	Kind Kind
	Freq Frequency

	// InteractionName names the Interaction this sampler reads (FreeEnergy
	// reads all of them; FloryConstChi/FloryChiAtPoint read exactly one).
	InteractionName string
	// Point is the single grid-point local flat index FloryChiAtPoint
	// samples, -1 otherwise.
	Point int

	eff *hamiltonian.EffHamiltonian

	times   []float64
	samples []sample

	// PerInteractionFE keeps each interaction's individual free-energy
	// contribution alongside the scalar total (SPEC_FULL.md §D.6),
	// recorded once per appended sample.
	PerInteractionFE []map[string]float64
}

// NewHistory builds a History sampler bound to the EffHamiltonian it reads
// from.
func NewHistory(name string, kind Kind, freq Frequency, interactionName string, point int, eff *hamiltonian.EffHamiltonian) *History {
	return &History{Base: names.NewBase(name), Kind: kind, Freq: freq, InteractionName: interactionName, Point: point, eff: eff}
}

// FindObject implements names.Object (History has no children).
func (o *History) FindObject(name string) names.Object { return o.Base.FindObject(o, name) }

// Sample appends one observation at (step, t) if the apply window allows
// it; a no-op otherwise.
func (o *History) Sample(step int, t float64) error {
	if !o.Freq.Applies(step) {
		return nil
	}
	s := sample{Step: step, Time: t}
	switch o.Kind {
	case KindFreeEnergy:
		total, perIx := o.eff.FreeEnergy(true)
		s.FreeEnergyTotal = total
		o.PerInteractionFE = append(o.PerInteractionFE, perIx)
	case KindFloryConstChi:
		ix, err := o.eff.FindInteraction(o.InteractionName)
		if err != nil {
			return err
		}
		s.ChiN = ix.ChiNScalar
	case KindFloryChiAtPoint:
		ix, err := o.eff.FindInteraction(o.InteractionName)
		if err != nil {
			return err
		}
		if o.Point < 0 || o.Point >= len(ix.A.Density.Data) {
			return chk.Err("InvalidAttribute: History %q: Point %d out of range", o.Name(), o.Point)
		}
		phiA := ix.A.Density.Data[o.Point]
		var phiB float64
		if ix.B != nil {
			phiB = ix.B.Density.Data[o.Point]
		} else if ix.WallField != nil {
			phiB = ix.WallField.Data[o.Point]
		}
		chi := ix.ChiNScalar
		if ix.ChiNField != nil {
			chi = ix.ChiNField.Data[o.Point]
		}
		s.ChiN = chi * phiA * phiB
	default:
		return chk.Err("InvalidAttribute: History %q: unknown kind %q", o.Name(), o.Kind)
	}
	o.times = append(o.times, t)
	o.samples = append(o.samples, s)
	return nil
}

// Times returns the sampled time vector.
func (o *History) Times() []float64 { return append([]float64(nil), o.times...) }

// Len returns the number of samples recorded (spec.md §3's invariant that
// time and data vectors have equal length).
func (o *History) Len() int { return len(o.samples) }

// WriteCSV writes this History's samples as a CSV sibling export
// alongside the primary dump (SPEC_FULL.md §B, gocarina/gocsv), for quick
// inspection without an HDF5 viewer.
func (o *History) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return chk.Err("IOError: History %q: %v", o.Name(), err)
	}
	defer f.Close()
	rows := make([]*sample, len(o.samples))
	for i := range o.samples {
		rows[i] = &o.samples[i]
	}
	if err := gocsv.MarshalFile(rows, f); err != nil {
		return chk.Err("IOError: History %q: %v", o.Name(), err)
	}
	return nil
}
