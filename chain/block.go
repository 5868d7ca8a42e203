// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chain implements the Block propagator solver, Polymer chain
// holder and Solvent species of spec.md §4.3, grounded on
// original_source/polyswift/pspolymer/{PsFlexiblePseudoSpecBlock,
// PsChargeFlexiblePseudoSpecBlock,PsSemiFlexibleBlock}.cpp and wired to the
// pseudo-spectral MDE sweep the fft/field packages expose.
package chain

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"gonum.org/v1/gonum/mat"

	"github.com/cpmech/polyscft/comm"
	"github.com/cpmech/polyscft/fft"
	"github.com/cpmech/polyscft/field"
	"github.com/cpmech/polyscft/names"
)

// Kind is the closed sum of block representations (spec.md §9's
// "polymorphism over block/field kinds" design note).
type Kind string

const (
	KindFlexible       Kind = "flexPseudoSpec"
	KindChargeFlexible Kind = "chargeFlexPseudoSpec"
	KindSemiflexible   Kind = "semiflexibleBlock"
)

// rank reports a block kind's representation rank relative to NDIM:
// Flexible/ChargedFlexible carry rank NDIM (plain spatial Field); a
// Semiflexible block carries rank 2*NDIM-1 (spatial Field plus an
// orientation axis). Used by Polymer.buildSolvers to enforce the Open
// Question decision (see DESIGN.md): chains may not mix ranks.
func (k Kind) rank(ndim int) int {
	if k == KindSemiflexible {
		return 2*ndim - 1
	}
	return ndim
}

// State is the per-block solve progress (spec.md §4.3's state machine).
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateReset
	StateForwardDone
	StateBackwardDone
	StateDeposited
)

// End identifies which end of a chain a block's q/q† array starts from.
type End int

const (
	EndHead End = iota
	EndTail
)

// Neighbor is a non-owning, name-resolved reference to the block attached
// at one end of this block, resolved once at buildSolvers (spec.md §3
// Ownership: cross-references are weak).
type Neighbor struct {
	Block *Block
	// FlexEnd selects which end of the neighbor block (Head/Tail) abuts
	// this block's end.
	FlexEnd End
}

// Block is one chemically-homogeneous segment of a chain (spec.md §4.3).
type Block struct {
	names.Base

	Kind Kind
	Ds   float64 // contour step of the propagator sweep
	Ns   int     // number of contour steps

	// B is the statistical segment ratio used to build the k-space decay
	// factor kSq = exp(-ds*b^2*|k|^2).
	B float64

	// OrientBins is the number of discretized orientation-axis bins for a
	// Semiflexible block (rank 2*Ndim-1); ignored for Flexible/ChargedFlexible.
	// BuildSolvers allocates Qfwd/Qbwd/the deposited density with this many
	// extra Field components and integrates over them with a fixed
	// quadrature at PartitionFunction/DepositDensity time.
	OrientBins int

	// Persist is the persistence length feeding the orientation-axis
	// relaxation term (original's persistLength,
	// original_source/polyswift/pspolymer/PsSemiFlexibleBlock.h); ignored
	// for Flexible/ChargedFlexible.
	Persist float64

	// Z and Alpha parametrize the charged correction exp(-(ds/2)*Z*alpha*Nref*psi(r))
	// added to the w-space factor for ChargeFlexible blocks.
	Z, Alpha float64

	Phys       *field.PhysField // monomer-density PhysField (owning reference by name)
	ChargePhys *field.PhysField // optional charge-density PhysField, nil if unused

	plan  *fft.Plan
	kSq   []float64 // precomputed k-space decay factor, length FFTSize()
	nref  float64   // chain scale length, set at buildSolvers from the owning Polymer

	Head, Tail Neighbor // resolved by the owning Polymer at buildSolvers; Block==nil if free

	Qfwd []*field.Field // q[0..Ns]
	Qbwd []*field.Field // q†[0..Ns]

	wFac *field.Field // exp(-(ds/2)*w(r)), recomputed each outer step

	comps int // Field rank components: 1, or OrientBins for Semiflexible

	state State
}

// NewBlock allocates an uninitialized block; BuildSolvers later binds it
// to a plan's local shape.
func NewBlock(name string, kind Kind, ds float64, ns int, b float64, phys *field.PhysField) *Block {
	return &Block{
		Base: names.NewBase(name),
		Kind: kind,
		Ds:   ds,
		Ns:   ns,
		B:    b,
		Phys: phys,
	}
}

// FindObject implements names.Object (Block has no children).
func (o *Block) FindObject(name string) names.Object {
	return o.Base.FindObject(o, name)
}

// BuildSolvers allocates the propagator arrays and precomputes the
// k-space decay factor. Must be called once all Blocks in the chain are
// constructed and neighbors wired by the owning Polymer.
func (o *Block) BuildSolvers(plan *fft.Plan, nref float64) error {
	o.plan = plan
	o.nref = nref
	size := plan.FFTSize()
	o.comps = 1
	if o.Kind == KindSemiflexible {
		if o.OrientBins < 1 {
			return chk.Err("InvalidAttribute: Block %q: semiflexibleBlock requires orientBins >= 1", names.FullName(o))
		}
		o.comps = o.OrientBins
	}
	o.Qfwd = make([]*field.Field, o.Ns+1)
	o.Qbwd = make([]*field.Field, o.Ns+1)
	shape := []int{size}
	for s := 0; s <= o.Ns; s++ {
		o.Qfwd[s] = field.NewField(o.Name()+".qfwd", shape, o.comps)
		o.Qbwd[s] = field.NewField(o.Name()+".qbwd", shape, o.comps)
	}
	o.wFac = field.NewField(o.Name()+".wfac", shape, 1)
	o.kSq = make([]float64, size)
	// kSq is filled by the owning Polymer once the full k-magnitude table
	// is available (shared across blocks of the same grid); see
	// Polymer.buildSolvers.
	o.state = StateReady
	return nil
}

// SetKSq installs the precomputed k-space decay factor exp(-ds*b^2*|k|^2).
func (o *Block) SetKSq(kMagSq []float64) {
	for i, k2 := range kMagSq {
		o.kSq[i] = math.Exp(-o.Ds * o.B * o.B * k2)
	}
}

// Reset recomputes w_fac from the current conjugate field and transitions
// to StateReset, the start of every outer step (spec.md §4.3).
func (o *Block) Reset(psi *field.Field) {
	for i, w := range o.Phys.Conjugat.Data {
		v := math.Exp(-(o.Ds / 2) * w)
		if o.Kind == KindChargeFlexible && psi != nil {
			v *= math.Exp(-(o.Ds / 2) * o.Z * o.Alpha * o.nref * psi.Data[i])
		}
		o.wFac.Data[i] = v
	}
	o.state = StateReset
}

// initialCondition computes q[0] (or q†[0] for the tail sweep) at the
// given end: the pointwise product of every attached neighbor's opposite
// propagator sample at its far end, or 1 uniformly if the end is free.
func (o *Block) initialCondition(end End) (*field.Field, bool) {
	var nb Neighbor
	if end == EndHead {
		nb = o.Head
	} else {
		nb = o.Tail
	}
	if nb.Block == nil {
		ones := field.NewField("ic", []int{len(o.wFac.Data)}, o.comps)
		ones.Reset(1)
		return ones, true
	}
	// The neighbor's value at its own HEAD is its backward sample q†[Ns]
	// (the backward sweep runs TAIL->HEAD so index Ns lands at HEAD);
	// the value at its own TAIL is its forward sample q[Ns] (spec.md
	// §4.3's junction convention). Readiness therefore depends on which
	// of the neighbor's two sweeps supplies it.
	var src *field.Field
	var ready bool
	if nb.FlexEnd == EndHead {
		src = nb.Block.Qbwd[nb.Block.Ns]
		ready = nb.Block.state >= StateBackwardDone
	} else {
		src = nb.Block.Qfwd[nb.Block.Ns]
		ready = nb.Block.state >= StateForwardDone
	}
	if src == nil || !ready {
		return nil, false
	}
	return src, true
}

// ForwardReady reports whether SolveForward's prerequisites (initial
// condition from any Head neighbor) are currently satisfiable.
func (o *Block) ForwardReady() bool {
	if o.state != StateReset {
		return false
	}
	_, ok := o.initialCondition(EndHead)
	return ok
}

// BackwardReady reports whether SolveBackward's prerequisites are met.
func (o *Block) BackwardReady() bool {
	if o.state != StateForwardDone {
		return false
	}
	_, ok := o.initialCondition(EndTail)
	return ok
}

// SolveForward runs the forward pseudo-spectral sweep (spec.md §4.3).
func (o *Block) SolveForward() error {
	ic, ok := o.initialCondition(EndHead)
	if !ok {
		return chk.Err("UnreachableBlock: %q: forward initial condition not ready", names.FullName(o))
	}
	o.Qfwd[0].CopyFrom(ic)
	tmp := field.NewField("tmp", []int{len(o.wFac.Data)}, o.comps)
	scaled := field.NewField("scaled", []int{len(o.wFac.Data)}, o.comps)
	for s := 0; s < o.Ns; s++ {
		o.stepPropagator(o.Qfwd[s], o.Qfwd[s+1], tmp, scaled)
	}
	o.state = StateForwardDone
	return nil
}

// SolveBackward runs the backward pseudo-spectral sweep, identical but
// seeded from the tail end and written into Qbwd.
func (o *Block) SolveBackward() error {
	ic, ok := o.initialCondition(EndTail)
	if !ok {
		return chk.Err("UnreachableBlock: %q: backward initial condition not ready", names.FullName(o))
	}
	o.Qbwd[0].CopyFrom(ic)
	tmp := field.NewField("tmp", []int{len(o.wFac.Data)}, o.comps)
	scaled := field.NewField("scaled", []int{len(o.wFac.Data)}, o.comps)
	for s := 0; s < o.Ns; s++ {
		o.stepPropagator(o.Qbwd[s], o.Qbwd[s+1], tmp, scaled)
	}
	o.state = StateBackwardDone
	return nil
}

// stepPropagator advances one contour step,
// q(s+ds) = wFac * F^-1[kSq * F[wFac * q(s)]], applied per orientation bin
// for a Semiflexible block (comps == OrientBins), followed by the periodic
// orientation-Laplacian relaxation original_source's
// PsSemiFlexibleBlock.h describes as
// q(r,u,s+ds) = exp[ds(nabla^2_u - nabla_r - w(r,u))] q(r,u,s); for a
// Flexible/ChargedFlexible block (comps == 1) this reduces to the plain
// translational sweep.
func (o *Block) stepPropagator(in, out, tmp, scaled *field.Field) {
	for c := 0; c < o.comps; c++ {
		inC, outC, tmpC, scaledC := in.Component(c), out.Component(c), tmp.Component(c), scaled.Component(c)
		for i := range tmpC {
			tmpC[i] = inC[i] * o.wFac.Data[i]
		}
		o.plan.ScaledPair(tmpC, o.kSq, scaledC)
		invV := 1 / o.plan.V()
		for i := range outC {
			outC[i] = scaledC[i] * invV * o.wFac.Data[i]
		}
	}
	if o.comps > 1 {
		o.applyOrientRelax(out)
	}
}

// applyOrientRelax applies the discretized nabla^2_u orientation-Laplacian
// term across the periodic bin axis, scaled by the persistence length
// (original's persistLength). Bins partition [0, 2*pi) uniformly.
func (o *Block) applyOrientRelax(q *field.Field) {
	bins := o.comps
	n := q.SpatialSize()
	dtheta := 2 * math.Pi / float64(bins)
	kappa := o.Ds * o.Persist / (dtheta * dtheta)
	prev := append([]float64(nil), q.Data...)
	for c := 0; c < bins; c++ {
		cm1 := (c - 1 + bins) % bins
		cp1 := (c + 1) % bins
		curr := q.Component(c)
		left := prev[cm1*n : (cm1+1)*n]
		mid := prev[c*n : (c+1)*n]
		right := prev[cp1*n : (cp1+1)*n]
		for i := 0; i < n; i++ {
			curr[i] = mid[i] + kappa*(left[i]-2*mid[i]+right[i])
		}
	}
}

// PartitionFunction evaluates Q = (1/V)*Σ_r q[Ns](r) at a free end
// (spec.md §4.3), integrating over the orientation axis first when this
// block carries one (comps > 1). cm is used so every rank's local sum is
// reduced.
func (o *Block) PartitionFunction(cm *comm.Communicator) float64 {
	localSum := sumRaw(orientAverage(o.Qfwd[o.Ns]))
	total := cm.AllReduceSum(localSum)
	return total / o.plan.V()
}

// DepositDensity accumulates this block's density contribution into its
// PhysField: φ(r) += (φc/(Nref*Q)) * Σ_s w_s*qf[s](r)*qb[Ns-s](r), using
// Simpson quadrature weights when Ns is even, trapezoidal otherwise
// (spec.md §4.3). When this block carries an orientation axis (comps > 1),
// the per-s product is integrated over that axis with the fixed quadrature
// of orientAverage before being folded into the contour-step sum — the
// orientation axis is never collapsed by a scalar stub.
func (o *Block) DepositDensity(phiC, logQ float64) {
	Q := math.Exp(logQ)
	weights := quadratureWeights(o.Ns, 1/float64(o.Ns))
	n := len(o.Phys.Density.Data)
	contrib := make([]float64, n)
	prod := make([]float64, o.comps*n)
	for s := 0; s <= o.Ns; s++ {
		qf := o.Qfwd[s].Data
		qb := o.Qbwd[o.Ns-s].Data
		for i := range prod {
			prod[i] = qf[i] * qb[i]
		}
		la.VecAdd(contrib, weights[s], orientAverageRaw(prod, o.comps, n))
	}
	scale := phiC / (o.nref * Q)
	la.VecAdd(o.Phys.Density.Data, scale, contrib)
	o.state = StateDeposited
}

// orientAverage integrates q over its orientation axis with a uniform
// quadrature (weight 1/Components() per bin); a no-op copy when q carries
// no orientation axis (Components() == 1).
func orientAverage(q *field.Field) []float64 {
	return orientAverageRaw(q.Data, q.Components(), q.SpatialSize())
}

// orientAverageRaw integrates the comps-major data slice (comps*n cells,
// laid out as field.Field.Component does) over its comps axis, via a
// VecDense of uniform quadrature weights dotted against the component
// matrix (gonum/mat), the fixed orientation-axis quadrature SPEC_FULL.md
// §E requires at deposit/partition-function time.
func orientAverageRaw(data []float64, comps, n int) []float64 {
	if comps <= 1 {
		return append([]float64(nil), data...)
	}
	m := mat.NewDense(comps, n, data)
	w := mat.NewVecDense(comps, nil)
	for c := 0; c < comps; c++ {
		w.SetVec(c, 1/float64(comps))
	}
	var avg mat.VecDense
	avg.MulVec(m.T(), w)
	return append([]float64(nil), avg.RawVector().Data...)
}

// sumRaw returns the sum of v's elements.
func sumRaw(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x
	}
	return s
}

// quadratureWeights returns Simpson weights over [0,1] with Ns+1 samples
// and step ds when Ns is even, or trapezoidal weights otherwise (spec.md
// §4.3's "Simpson (or trapezoidal) quadrature weights"), scaled with
// gosl/la's VecScale rather than folding ds into each branch by hand.
func quadratureWeights(ns int, ds float64) []float64 {
	w := make([]float64, ns+1)
	if ns%2 == 0 && ns >= 2 {
		for i := range w {
			switch {
			case i == 0 || i == ns:
				w[i] = 1
			case i%2 == 1:
				w[i] = 4
			default:
				w[i] = 2
			}
		}
		la.VecScale(w, 0, ds/3, w)
		return w
	}
	la.VecFill(w, 2)
	w[0], w[ns] = 1, 1
	la.VecScale(w, 0, ds/2, w)
	return w
}
