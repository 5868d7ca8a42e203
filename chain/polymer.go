// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chain

import (
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/polyscft/comm"
	"github.com/cpmech/polyscft/fft"
	"github.com/cpmech/polyscft/field"
	"github.com/cpmech/polyscft/names"
)

// PolymerKind selects the chain population model (spec.md §6).
type PolymerKind string

const (
	KindBlockCopolymer  PolymerKind = "blockCopolymer"
	KindPolyDisperseBCP PolymerKind = "polyDisperseBCP"
)

// Polymer is an ordered container of Blocks forming one chain topology
// (spec.md §4.3's Polymer/Solvent datatype).
type Polymer struct {
	names.Base

	Kind    PolymerKind
	Blocks  []*Block
	VolFrac float64 // phi_c
	Length  int     // N = sum of Ns across blocks

	// Nref is the static scale length chosen from the first polymer built
	// in the Domain (spec.md §3, §9's EngineContext lift).
	Nref float64

	// Schulz holds the polydisperse weight distribution when Kind is
	// KindPolyDisperseBCP (supplemented feature, see DESIGN.md/SPEC_FULL §D.1).
	Schulz *SchulzDistribution

	// ExtraSpecies holds additional discretized chain-length species for a
	// polyDisperseBCP Polymer: each entry mirrors Blocks' topology at a
	// different contour-length multiplier sampled from Schulz.Discretize
	// (SPEC_FULL.md §D.1). Weights[0] is Blocks' own statistical weight;
	// Weights[i+1] is ExtraSpecies[i]'s weight. Both are empty for a plain
	// blockCopolymer, which is the len(ExtraSpecies)==0 special case of one
	// species at weight 1.
	ExtraSpecies [][]*Block
	Weights      []float64

	LogQ float64 // computed per step

	plan *fft.Plan
}

// AddSpecies appends one extra discretized chain-length species (its own
// Block set, wired into its own junction topology by the caller via
// WireJunction) at the given statistical weight.
func (o *Polymer) AddSpecies(blocks []*Block, weight float64) {
	o.ExtraSpecies = append(o.ExtraSpecies, blocks)
	o.Weights = append(o.Weights, weight)
}

// allSpecies returns every species' Block set (Blocks first) alongside its
// weight, defaulting Blocks' own weight to 1 when no species were added.
func (o *Polymer) allSpecies() ([][]*Block, []float64) {
	sets := append([][]*Block{o.Blocks}, o.ExtraSpecies...)
	weights := o.Weights
	if len(weights) == 0 {
		weights = []float64{1}
	}
	return sets, weights
}

// NewPolymer constructs a Polymer with the given blocks in chain order.
func NewPolymer(name string, kind PolymerKind, blocks []*Block, volFrac float64) (*Polymer, error) {
	if len(blocks) == 0 {
		return nil, chk.Err("InvalidAttribute: Polymer %q: must own at least one Block", name)
	}
	length := 0
	for _, b := range blocks {
		length += b.Ns
	}
	return &Polymer{
		Base:    names.NewBase(name),
		Kind:    kind,
		Blocks:  blocks,
		VolFrac: volFrac,
		Length:  length,
	}, nil
}

// FindObject implements names.Object, resolving child Blocks by name.
func (o *Polymer) FindObject(name string) names.Object {
	if found := o.Base.FindLocalObject(name); found != nil {
		return found
	}
	for _, b := range o.Blocks {
		if b.Name() == name {
			return b
		}
	}
	return o.Base.FindObject(o, name)
}

// WireJunction registers that block `a`'s end `aEnd` is attached to block
// `b`'s end `bEnd` (a chain topology edge, resolved by name at buildSolvers
// per spec.md §3's weak cross-reference rule).
func (o *Polymer) WireJunction(a *Block, aEnd End, b *Block, bEnd End) {
	nb := Neighbor{Block: b, FlexEnd: bEnd}
	if aEnd == EndHead {
		a.Head = nb
	} else {
		a.Tail = nb
	}
}

// BuildSolvers validates block-rank homogeneity (the Open Question
// decision recorded in DESIGN.md/SPEC_FULL §E), precomputes the shared
// k-space magnitude table, and allocates every Block's propagator arrays.
func (o *Polymer) BuildSolvers(ndim int, plan *fft.Plan, kMagSq []float64, nref float64) error {
	o.plan = plan
	o.Nref = nref
	rank := o.Blocks[0].Kind.rank(ndim)
	sets, _ := o.allSpecies()
	for _, blocks := range sets {
		for _, b := range blocks {
			if b.Kind.rank(ndim) != rank {
				return chk.Err("InvalidAttribute: Polymer %q: block %q mixes representation ranks "+
					"(flexible/charged-flexible rank=%d vs semiflexible rank=%d); chains must be "+
					"uniformly one representation, see ErrMixedBlockKinds", o.Name(), b.Name(),
					ndim, 2*ndim-1)
			}
		}
	}
	for _, blocks := range sets {
		for _, b := range blocks {
			if err := b.BuildSolvers(plan, nref); err != nil {
				return err
			}
			b.SetKSq(kMagSq)
		}
	}
	return nil
}

// ErrMixedBlockKinds documents the Open Question decision (spec.md §9,
// first open question): this engine never attempts the flexible/
// semiflexible rank conversion at runtime.
const ErrMixedBlockKinds = "InvalidAttribute: chain mixes Flexible/ChargedFlexible and Semiflexible blocks"

// Update runs one outer-step propagator solve across every species' Blocks
// (spec.md §4.3's chain driver loop, run once per discretized species for a
// polyDisperseBCP Polymer, SPEC_FULL.md §D.1): resets every block's w_fac,
// scans for blocks whose initial condition prerequisites are satisfied
// until every block has finished both sweeps, then deposits each species'
// density contribution (which moves every block to StateDeposited) weighted by its statistical weight. psi is the
// optional electric potential field for charged blocks (nil if none bound).
func (o *Polymer) Update(cm *comm.Communicator, psi *field.Field) error {
	sets, weights := o.allSpecies()
	var weightedQ float64
	for i, blocks := range sets {
		q, err := runChainScan(blocks, cm, psi)
		if err != nil {
			return chk.Err("%v (species %d/%d)", err, i, len(sets))
		}
		weightedQ += weights[i] * q
		for _, b := range blocks {
			b.DepositDensity(o.VolFrac*weights[i], math.Log(q))
		}
	}
	o.LogQ = math.Log(weightedQ)
	return nil
}

// runChainScan resets and solves one species' Block set to completion,
// returning its free-end partition function Q (spec.md §4.3, §8's
// invariant: head Q == tail Q to 1e-5 relative).
func runChainScan(blocks []*Block, cm *comm.Communicator, psi *field.Field) (float64, error) {
	for _, b := range blocks {
		b.Reset(psi)
	}
	remaining := len(blocks) * 2 // forward + backward per block
	for remaining > 0 {
		progressed := false
		for _, b := range blocks {
			if b.ForwardReady() {
				if err := b.SolveForward(); err != nil {
					return 0, err
				}
				remaining--
				progressed = true
			}
		}
		for _, b := range blocks {
			if b.BackwardReady() {
				if err := b.SolveBackward(); err != nil {
					return 0, err
				}
				remaining--
				progressed = true
			}
		}
		if !progressed {
			return 0, chk.Err("UnreachableBlock: chain scan made no progress with %d block-sweeps undeposited", remaining)
		}
	}
	return firstFreeEndQ(blocks, cm), nil
}

// firstFreeEndQ evaluates Q at the first free end found among blocks.
func firstFreeEndQ(blocks []*Block, cm *comm.Communicator) float64 {
	var qs []float64
	for _, b := range blocks {
		if b.Head.Block == nil {
			qs = append(qs, b.PartitionFunction(cm))
		}
		if b.Tail.Block == nil {
			qs = append(qs, b.backwardPartitionFunction(cm))
		}
	}
	if len(qs) == 0 {
		return 1
	}
	return qs[0]
}

// backwardPartitionFunction evaluates Q from the backward propagator at a
// free tail end, integrating over the orientation axis first when this
// block carries one (comps > 1).
func (o *Block) backwardPartitionFunction(cm *comm.Communicator) float64 {
	localSum := sumRaw(orientAverage(o.Qbwd[o.Ns]))
	total := cm.AllReduceSum(localSum)
	return total / o.plan.V()
}

