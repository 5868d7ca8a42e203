// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package updater implements the Updater rules of spec.md §4.5:
// SteepestDescent, Constraint, SimpleSpecFilter, MultiSpecFilter and
// Poisson, sharing the apply-frequency discipline of spec.md §4.5/§8.
package updater

import (
	"math"
	"math/rand"

	"github.com/cpmech/gosl/chk"
	"gonum.org/v1/gonum/mat"

	"github.com/cpmech/polyscft/comm"
	"github.com/cpmech/polyscft/fft"
	"github.com/cpmech/polyscft/field"
	"github.com/cpmech/polyscft/interaction"
	"github.com/cpmech/polyscft/names"
)

// Kind is the closed sum of updater rules (spec.md §6).
type Kind string

const (
	KindSteepestDescent Kind = "steepestDescent"
	KindSimpleSpecFilter Kind = "simpleSpecFilter"
	KindMultiSpecFilter  Kind = "multiSpecFilter"
	KindPoisson          Kind = "poissonUpdater"
)

// Frequency is the shared apply-window gate of spec.md §4.5: applies only
// on steps satisfying start <= step <= end and (step-start) mod period == 0.
type Frequency struct {
	Start, Period, End int
}

// Applies reports whether step satisfies this apply-frequency window.
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

// Updater is implemented by every updater rule.
type Updater interface {
	names.Object
	// Update applies this rule's effect at step if its Frequency allows
	// it; a no-op otherwise (spec.md §8's idempotence law).
	Update(step int) error
}

// SteepestDescent is the primary updater (spec.md §4.5).
type SteepestDescent struct {
	names.Base
	Freq         Frequency
	Fields       []*field.PhysField
	Lambdas      []float64 // relaxLambdas, one per field
	Interactions []*interaction.Interaction
	Pressure     *field.Field // shared incompressibility pressure p(r)
	NoiseStrength float64
	rng          *rand.Rand
}

// NewSteepestDescent builds a SteepestDescent updater.
func NewSteepestDescent(name string, freq Frequency, fields []*field.PhysField, lambdas []float64,
	interactions []*interaction.Interaction, pressure *field.Field, noiseStrength float64, seed int64) (*SteepestDescent, error) {
	if len(lambdas) != len(fields) {
		return nil, chk.Err("InvalidAttribute: SteepestDescent %q: relaxLambdas length %d != updateFields length %d", name, len(lambdas), len(fields))
	}
	return &SteepestDescent{
		Base: names.NewBase(name), Freq: freq, Fields: fields, Lambdas: lambdas,
		Interactions: interactions, Pressure: pressure, NoiseStrength: noiseStrength,
		rng: rand.New(rand.NewSource(seed)),
	}, nil
}

// FindObject implements names.Object (SteepestDescent has no children).
func (o *SteepestDescent) FindObject(name string) names.Object { return o.Base.FindObject(o, name) }

// Update implements Updater (spec.md §4.5).
func (o *SteepestDescent) Update(step int) error {
	if !o.Freq.Applies(step) {
		return nil
	}
	size := len(o.Pressure.Data)
	dH := make([][]float64, len(o.Fields))
	for i := range o.Fields {
		dH[i] = make([]float64, size)
	}
	for _, ix := range o.Interactions {
		for i, f := range o.Fields {
			if err := ix.CalcDFD(f.Name(), &field.Field{Data: dH[i]}); err != nil {
				return err
			}
		}
	}
	for i, f := range o.Fields {
		for c := 0; c < size; c++ {
			v := dH[i][c] - o.Pressure.Data[c]
			if o.NoiseStrength != 0 {
				v += o.NoiseStrength * (2*o.rng.Float64() - 1)
			}
			f.Conjugat.Data[c] -= o.Lambdas[i] * v
		}
	}
	// enforce sum phi_i = 1 by averaging the post-update conjugate fields
	for c := 0; c < size; c++ {
		var sum float64
		for _, f := range o.Fields {
			sum += f.Conjugat.Data[c]
		}
		o.Pressure.Data[c] = sum / float64(len(o.Fields))
	}
	return nil
}

// ShiftPressureToZeroMean optionally re-centers Pressure (spec.md §4.5).
func (o *SteepestDescent) ShiftPressureToZeroMean(cm *comm.Communicator) {
	local := 0.0
	for _, v := range o.Pressure.Data {
		local += v
	}
	total := cm.AllReduceSum(local)
	n := cm.AllReduceSum(float64(len(o.Pressure.Data)))
	mean := total / n
	for i := range o.Pressure.Data {
		o.Pressure.Data[i] -= mean
	}
}

// Constraint enforces incompressibility (spec.md §4.5).
type Constraint struct {
	names.Base
	Freq        Frequency
	Excluded    []*field.PhysField
	Constraint  *field.PhysField // the constraint-kind PhysField receiving 1 - sum(excluded)
	MaxThreshold float64
	ClipValue    float64
	vFree        float64
}

// NewConstraint builds a Constraint updater.
func NewConstraint(name string, freq Frequency, excluded []*field.PhysField, constraintField *field.PhysField, maxThreshold, clipValue float64) *Constraint {
	return &Constraint{Base: names.NewBase(name), Freq: freq, Excluded: excluded, Constraint: constraintField, MaxThreshold: maxThreshold, ClipValue: clipValue}
}

// FindObject implements names.Object (Constraint has no children).
func (o *Constraint) FindObject(name string) names.Object { return o.Base.FindObject(o, name) }

// Update implements Updater: sets the constraint density, computes
// V_free, and clips densities above MaxThreshold (spec.md §4.5).
func (o *Constraint) Update(step int) error {
	if !o.Freq.Applies(step) {
		return nil
	}
	size := len(o.Constraint.Density.Data)
	var vFree float64
	for c := 0; c < size; c++ {
		var excl float64
		for _, f := range o.Excluded {
			excl += f.Density.Data[c]
		}
		o.Constraint.Density.Data[c] = 1 - excl
		vFree += math.Max(0, 1-excl)
	}
	o.vFree = vFree
	if o.MaxThreshold > 0 {
		for _, f := range o.Excluded {
			f.Density.CheckMaxClip(o.MaxThreshold, o.ClipValue)
		}
	}
	return nil
}

// CalcLocalVolume returns V - V_free, the denominator feeding per-
// interaction normalizations (spec.md §4.5).
func (o *Constraint) CalcLocalVolume() float64 {
	size := float64(len(o.Constraint.Density.Data))
	return size - o.vFree
}

// SimpleSpecFilter is the single-cutoff spectral filter (spec.md §4.5).
type SimpleSpecFilter struct {
	names.Base
	Freq          Frequency
	Fields        []*field.PhysField
	Plan          *fft.Plan
	Cm            *comm.Communicator
	CutoffFrac    float64 // cutoff, as a fraction of |What|_max
	FilterStrength float64
}

// NewSimpleSpecFilter builds a single-cutoff spectral filter.
func NewSimpleSpecFilter(name string, freq Frequency, fields []*field.PhysField, plan *fft.Plan, cm *comm.Communicator, cutoffFrac, filterStrength float64) *SimpleSpecFilter {
	return &SimpleSpecFilter{Base: names.NewBase(name), Freq: freq, Fields: fields, Plan: plan, Cm: cm, CutoffFrac: cutoffFrac, FilterStrength: filterStrength}
}

// FindObject implements names.Object (SimpleSpecFilter has no children).
func (o *SimpleSpecFilter) FindObject(name string) names.Object { return o.Base.FindObject(o, name) }

// Update implements Updater. cutoff=0 is the identity on real inputs and
// early-exits without touching the FFT plan (spec.md §8 boundary case).
func (o *SimpleSpecFilter) Update(step int) error {
	if !o.Freq.Applies(step) {
		return nil
	}
	if o.CutoffFrac == 0 {
		return nil
	}
	for _, f := range o.Fields {
		coeffs := o.Plan.ForwardComplex(f.Conjugat.Data)
		var localMax float64
		for _, c := range coeffs {
			m := math.Hypot(real(c), imag(c))
			if m > localMax {
				localMax = m
			}
		}
		globalMax := o.Cm.AllReduceMax(localMax)
		cutoff := o.CutoffFrac * globalMax
		for i, c := range coeffs {
			m := math.Hypot(real(c), imag(c))
			if m < cutoff {
				coeffs[i] = c * complex(o.FilterStrength, 0)
			}
		}
		out := make([]float64, len(f.Conjugat.Data))
		o.Plan.BackwardComplex(coeffs, out)
		scale := 1 / o.Plan.V()
		for i := range out {
			f.Conjugat.Data[i] = out[i] * scale
		}
	}
	return nil
}

// MultiSpecFilter is the per-cell multi-cutoff spectral filter (spec.md
// §4.5, SPEC_FULL.md §E): k-space is subdivided into len(CutoffFracs) bands
// by |k|^2 magnitude, each carrying its own cutoff fraction, grounded on
// original_source/polyswift/pseffhamil/PsMultiSpecFilter.h's
// numSpecCells/kcellMap/cutoffFactors. The caller (domain.buildUpdater)
// gates construction to a non-transpose FFT plan; build_specCells_transpose
// is never ported.
type MultiSpecFilter struct {
	names.Base
	Freq           Frequency
	Fields         []*field.PhysField
	Plan           *fft.Plan
	Cm             *comm.Communicator
	CutoffFracs    []float64 // one cutoff fraction per spectral cell
	FilterStrength float64
	cellOf         []int // local coefficient index -> spectral cell index
}

// NewMultiSpecFilter partitions the local |k|^2 table into len(cutoffFracs)
// equal-width bands (by fraction of the global |k|^2 maximum) and builds the
// per-cell k-map once; kMagSq must be indexed identically to the plan's
// ForwardComplex output (as domain.go's Poisson wiring already assumes).
func NewMultiSpecFilter(name string, freq Frequency, fields []*field.PhysField, plan *fft.Plan, cm *comm.Communicator, kMagSq []float64, cutoffFracs []float64, filterStrength float64) (*MultiSpecFilter, error) {
	if len(cutoffFracs) == 0 {
		return nil, chk.Err("InvalidAttribute: MultiSpecFilter %q: multiCutoffFracs must have at least one cell", name)
	}
	var localMax float64
	for _, v := range kMagSq {
		if v > localMax {
			localMax = v
		}
	}
	globalMax := cm.AllReduceMax(localMax)
	numCells := len(cutoffFracs)
	cellOf := make([]int, len(kMagSq))
	for i, v := range kMagSq {
		cell := 0
		if globalMax > 0 {
			cell = int(v / globalMax * float64(numCells))
			if cell >= numCells {
				cell = numCells - 1
			}
		}
		cellOf[i] = cell
	}
	return &MultiSpecFilter{
		Base: names.NewBase(name), Freq: freq, Fields: fields, Plan: plan, Cm: cm,
		CutoffFracs: cutoffFracs, FilterStrength: filterStrength, cellOf: cellOf,
	}, nil
}

// FindObject implements names.Object (MultiSpecFilter has no children).
func (o *MultiSpecFilter) FindObject(name string) names.Object { return o.Base.FindObject(o, name) }

// Update implements Updater: each spectral cell tracks its own coefficient
// maximum and applies its own cutoff fraction, unlike SimpleSpecFilter's
// single global cutoff (spec.md §4.5).
func (o *MultiSpecFilter) Update(step int) error {
	if !o.Freq.Applies(step) {
		return nil
	}
	numCells := len(o.CutoffFracs)
	for _, f := range o.Fields {
		coeffs := o.Plan.ForwardComplex(f.Conjugat.Data)
		localMax := make([]float64, numCells)
		for i, c := range coeffs {
			m := math.Hypot(real(c), imag(c))
			if m > localMax[o.cellOf[i]] {
				localMax[o.cellOf[i]] = m
			}
		}
		globalMax := make([]float64, numCells)
		for cell := range globalMax {
			globalMax[cell] = o.Cm.AllReduceMax(localMax[cell])
		}
		for i, c := range coeffs {
			cutoff := o.CutoffFracs[o.cellOf[i]] * globalMax[o.cellOf[i]]
			m := math.Hypot(real(c), imag(c))
			if m < cutoff {
				coeffs[i] = c * complex(o.FilterStrength, 0)
			}
		}
		out := make([]float64, len(f.Conjugat.Data))
		o.Plan.BackwardComplex(coeffs, out)
		scale := 1 / o.Plan.V()
		for i := range out {
			f.Conjugat.Data[i] = out[i] * scale
		}
	}
	return nil
}

// Poisson solves -Laplacian(psi) = rho in Fourier space (spec.md §4.5).
type Poisson struct {
	names.Base
	Freq  Frequency
	Rho   *field.PhysField // source; its Density holds the charge density input
	Psi   *field.Field     // output potential
	Plan  *fft.Plan
	KMagSq []float64 // |k|^2 per local cell, with k=0 mode marked by index zeroIdx
	zeroIdx int
}

// NewPoisson builds a Poisson updater.
func NewPoisson(name string, freq Frequency, rho *field.PhysField, psi *field.Field, plan *fft.Plan, kMagSq []float64, zeroIdx int) *Poisson {
	return &Poisson{Base: names.NewBase(name), Freq: freq, Rho: rho, Psi: psi, Plan: plan, KMagSq: kMagSq, zeroIdx: zeroIdx}
}

// FindObject implements names.Object (Poisson has no children).
func (o *Poisson) FindObject(name string) names.Object { return o.Base.FindObject(o, name) }

// Update implements Updater: psi_hat[k] = rho_hat[k]/|k|^2 (k=0 set to
// zero), then backward-transformed (spec.md §4.5). The final
// 1/V rescale is done with a gonum/mat VecDense view of the output buffer
// (mat.VecDense.ScaleVec) rather than a hand-rolled loop.
func (o *Poisson) Update(step int) error {
	if !o.Freq.Applies(step) {
		return nil
	}
	coeffs := o.Plan.ForwardComplex(o.Rho.Density.Data)
	for i, c := range coeffs {
		if i == o.zeroIdx || o.KMagSq[i] == 0 {
			coeffs[i] = 0
			continue
		}
		coeffs[i] = c / complex(o.KMagSq[i], 0)
	}
	out := make([]float64, len(o.Psi.Data))
	o.Plan.BackwardComplex(coeffs, out)
	outVec := mat.NewVecDense(len(out), out)
	psiVec := mat.NewVecDense(len(o.Psi.Data), o.Psi.Data)
	psiVec.ScaleVec(1/o.Plan.V(), outVec)
	return nil
}
