// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package domain implements the root Domain object of spec.md §2/§5/§9:
// the two-pass (buildData/buildSolvers) factory construction of the input
// tree (spec.md §6), the EngineContext lifting the static boundary list
// and polymer scale length out of process-wide globals (spec.md §9), and
// the outer nsteps loop (spec.md §5's ordering guarantee).
package domain

import (
	"math/rand"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/cpmech/polyscft/boundary"
	"github.com/cpmech/polyscft/chain"
	"github.com/cpmech/polyscft/comm"
	"github.com/cpmech/polyscft/decomp"
	"github.com/cpmech/polyscft/fft"
	"github.com/cpmech/polyscft/field"
	"github.com/cpmech/polyscft/grid"
	"github.com/cpmech/polyscft/hamiltonian"
	"github.com/cpmech/polyscft/history"
	"github.com/cpmech/polyscft/inp"
	"github.com/cpmech/polyscft/interaction"
	"github.com/cpmech/polyscft/ioh5"
	"github.com/cpmech/polyscft/names"
	"github.com/cpmech/polyscft/spatialfunc"
	"github.com/cpmech/polyscft/updater"
)

// EngineContext lifts the process-wide globals of the original engine
// (the static Boundary list and the static polymer scale length Nref)
// into an explicit, Domain-owned value, eliminating the global-mutable
// idiom (spec.md §9's design note).
type EngineContext struct {
	Boundaries boundary.List
	Nref       float64
	Rng        *rand.Rand // rank-0-seeded, globally-synchronized draws (SPEC_FULL.md §B)
}

// Domain is the root named object every holder hangs off (spec.md §2).
type Domain struct {
	names.Base

	Tree *inp.Tree
	Ctx  EngineContext

	Grid   *grid.Grid
	Decomp *decomp.Decomposition
	Comm   *comm.Communicator
	FFT    *fft.Plan

	PhysFields map[string]*field.PhysField
	Polymers   []*chain.Polymer
	Solvents   []*chain.Solvent
	Boundaries []*boundary.Boundary

	Eff       *hamiltonian.EffHamiltonian
	Historys  []*history.History

	kMagSq []float64 // shared |k|^2 table, precomputed once at build

	step int
}

// FindObject implements names.Object, resolving every named child (the
// root of the tree spec.md §3's find_object walk anchors at).
func (o *Domain) FindObject(name string) names.Object {
	if found := o.Base.FindLocalObject(name); found != nil {
		return found
	}
	if f, ok := o.PhysFields[name]; ok {
		return f
	}
	for _, p := range o.Polymers {
		if p.Name() == name {
			return p
		}
	}
	for _, s := range o.Solvents {
		if s.Name() == name {
			return s
		}
	}
	for _, b := range o.Boundaries {
		if b.Name() == name {
			return b
		}
	}
	if o.Eff != nil && o.Eff.Name() == name {
		return o.Eff
	}
	for _, h := range o.Historys {
		if h.Name() == name {
			return h
		}
	}
	return nil
}

// Build runs the two-pass buildData/buildSolvers construction of spec.md
// §6 over t, producing a fully wired Domain.
func Build(t *inp.Tree) (*Domain, error) {
	o := &Domain{
		Base:       names.NewBase("domain"),
		Tree:       t,
		PhysFields: make(map[string]*field.PhysField),
	}
	o.Ctx.Rng = rand.New(rand.NewSource(t.RandomSeed))

	if err := o.buildData(); err != nil {
		return nil, err
	}
	if err := o.buildSolvers(); err != nil {
		return nil, err
	}
	return o, nil
}

// buildData allocates every holder (first pass: no cross-references
// resolved yet, spec.md §6).
func (o *Domain) buildData() error {
	g, err := grid.NewGrid(o.Tree.Grid.Name, o.Tree.NumCellsGlobal, cellSizesOrOnes(o.Tree.Grid.CellSizes, len(o.Tree.NumCellsGlobal)), o.Tree.RandomSeed)
	if err != nil {
		return err
	}
	o.Grid = g
	o.RegisterChild(o, g)

	o.Comm = comm.NewCommunicator(o.Tree.Comm.Name)
	o.RegisterChild(o, o.Comm)

	d, err := decomp.New(o.Tree.Decomp.Name, decomp.Kind(o.Tree.Decomp.Kind), o.Tree.Decomp.TransposeFlag,
		o.Tree.NumCellsGlobal, o.Comm.Rank(), o.Comm.Size())
	if err != nil {
		return err
	}
	o.Decomp = d
	o.RegisterChild(o, d)

	plan, err := fft.NewPlan(o.Tree.FFT.Name, fft.Layout(o.Tree.FFT.Kind), o.Tree.NumCellsGlobal, o.Decomp, o.Comm)
	if err != nil {
		return err
	}
	o.FFT = plan
	o.RegisterChild(o, plan)
	o.kMagSq = buildKMagSq(o.Tree.NumCellsGlobal, o.Decomp)

	localShape := o.Decomp.NumCellsLocal()

	for _, pf := range o.Tree.PhysFields {
		f := field.NewPhysField(pf.Name, field.Kind(pf.Kind), localShape)
		f.RhoBar = pf.RhoBar
		o.PhysFields[pf.Name] = f
		o.RegisterChild(o, f)
	}

	for _, bd := range o.Tree.Boundaries {
		b := boundary.NewBoundary(bd.Name, boundary.Kind(bd.Kind))
		b.Width = bd.Width
		b.Radius = bd.Radius
		b.Center = bd.Center
		o.Boundaries = append(o.Boundaries, b)
		o.RegisterChild(o, b)
	}

	for _, pd := range o.Tree.Polymers {
		p, err := o.buildPolymer(pd, localShape)
		if err != nil {
			return err
		}
		o.Polymers = append(o.Polymers, p)
		o.RegisterChild(o, p)
	}

	for _, sd := range o.Tree.Solvents {
		phys, ok := o.PhysFields[sd.SCField]
		if !ok {
			return chk.Err("UnknownObject: Solvent %q: scfield %q not found", sd.Name, sd.SCField)
		}
		s := chain.NewSolvent(sd.Name, chain.SolventKind(sd.Kind), sd.VolFrac, phys)
		s.Valence = sd.Valence
		o.Solvents = append(o.Solvents, s)
		o.RegisterChild(o, s)
	}

	o.Eff = hamiltonian.NewEffHamiltonian(o.Tree.EffHamil.Name, o.Comm)
	o.RegisterChild(o, o.Eff)

	for _, hd := range o.Tree.Historys {
		h := history.NewHistory(hd.Name, history.Kind(hd.Kind),
			history.Frequency{Start: 0, Period: hd.UpdatePeriodicity, End: -1},
			hd.InteractionName, hd.Point, o.Eff)
		o.Historys = append(o.Historys, h)
		o.RegisterChild(o, h)
	}

	return nil
}

// buildPolymer allocates one Polymer's Blocks and wires each species' block
// junctions (the shared k-table is bound later, in buildSolvers). For a
// polyDisperseBCP Polymer it also discretizes the Schulz-Zimm distribution
// (SPEC_FULL.md §D.1) and allocates one extra scaled Block set per species.
func (o *Domain) buildPolymer(pd inp.PolymerData, localShape []int) (*chain.Polymer, error) {
	blocks, err := o.buildBlockSet(pd, "", 1)
	if err != nil {
		return nil, err
	}
	p, err := chain.NewPolymer(pd.Name, chain.PolymerKind(pd.Kind), blocks, pd.VolFrac)
	if err != nil {
		return nil, err
	}
	if chain.PolymerKind(pd.Kind) == chain.KindPolyDisperseBCP {
		z := pd.SchulzZ
		if z <= 0 {
			z = 10
		}
		p.Schulz = chain.NewSchulzDistribution(z, pd.SchulzN)
		species := p.Schulz.Discretize()
		for i, sp := range species {
			extra, err := o.buildBlockSet(pd, io.Sf(".sp%d", i), sp.LengthMultiplier)
			if err != nil {
				return nil, err
			}
			p.AddSpecies(extra, sp.Weight)
			wireSpeciesJunctions(pd, extra)
		}
		// p.Blocks itself (the unsuffixed set built above) is not one of
		// the discretized species for polyDisperseBCP; all mass comes from
		// ExtraSpecies, so give it weight 0.
		p.Weights = append([]float64{0}, p.Weights...)
	}
	wireSpeciesJunctions(pd, blocks)
	return p, nil
}

// buildBlockSet allocates one scaled copy of pd.Blocks: contour length Ns
// for each Block scaled by lengthMultiplier (1 for the reference species),
// with names disambiguated by suffix for species beyond the first.
func (o *Domain) buildBlockSet(pd inp.PolymerData, suffix string, lengthMultiplier float64) ([]*chain.Block, error) {
	blocks := make([]*chain.Block, len(pd.Blocks))
	for i, bd := range pd.Blocks {
		phys, ok := o.PhysFields[bd.SCField]
		if !ok {
			return nil, chk.Err("UnknownObject: Block %q: scfield %q not found", bd.Name, bd.SCField)
		}
		ns := bd.Length
		if ns <= 0 {
			ns = 1
		}
		if suffix != "" {
			ns = int(float64(ns)*lengthMultiplier + 0.5)
			if ns < 1 {
				ns = 1
			}
		}
		blocks[i] = chain.NewBlock(bd.Name+suffix, chain.Kind(bd.Kind), bd.Ds, ns, bd.B, phys)
		blocks[i].Z = bd.Z
		blocks[i].Alpha = bd.Alpha
		blocks[i].OrientBins = bd.OrientBins
		blocks[i].Persist = bd.Persist
	}
	return blocks, nil
}

// wireSpeciesJunctions applies pd.Blocks' headOf/tailOf topology (by
// position, since every species' Block set mirrors pd.Blocks one-for-one)
// onto one concrete Block slice.
func wireSpeciesJunctions(pd inp.PolymerData, blocks []*chain.Block) {
	indexByName := make(map[string]int, len(pd.Blocks))
	for i, bd := range pd.Blocks {
		indexByName[bd.Name] = i
	}
	for i, bd := range pd.Blocks {
		b := blocks[i]
		if bd.HeadOf != "" {
			if j, ok := indexByName[bd.HeadOf]; ok {
				b.Head = chain.Neighbor{Block: blocks[j], FlexEnd: chain.EndTail}
			}
		}
		if bd.TailOf != "" {
			if j, ok := indexByName[bd.TailOf]; ok {
				b.Tail = chain.Neighbor{Block: blocks[j], FlexEnd: chain.EndHead}
			}
		}
	}
}

// buildSolvers resolves every weak, name-based cross-reference (second
// pass, spec.md §6): interaction/updater field references and the shared
// Nref scale length. Block-to-neighbor wiring is done by buildPolymer.
func (o *Domain) buildSolvers() error {
	ndim := o.Grid.Ndim

	if len(o.Polymers) > 0 {
		o.Ctx.Nref = float64(o.Polymers[0].Length)
	} else {
		o.Ctx.Nref = 1
	}

	// Junction topology (Head/Tail wiring) is set per-species directly in
	// buildPolymer/wireSpeciesJunctions; here we only allocate solvers now
	// that the shared k-magnitude table and Nref are available.
	for _, p := range o.Polymers {
		if err := p.BuildSolvers(ndim, o.FFT, o.kMagSq, o.Ctx.Nref); err != nil {
			return err
		}
		for _, b := range p.Blocks {
			b.Phys.RegisterBlock(b.Name())
		}
		for _, species := range p.ExtraSpecies {
			for _, b := range species {
				b.Phys.RegisterBlock(b.Name())
			}
		}
	}

	for _, s := range o.Solvents {
		s.BuildSolvers(o.Ctx.Nref)
		s.Phys.RegisterSolvent(s.Name())
	}

	for _, b := range o.Boundaries {
		if err := b.BuildSolvers(o.Grid, o.Decomp.NumCellsLocal()); err != nil {
			return err
		}
		o.Ctx.Boundaries.Register(b)
	}

	localShape := o.Decomp.NumCellsLocal()
	for _, id := range o.Tree.EffHamil.Interactions {
		ix, err := o.buildInteraction(id, localShape)
		if err != nil {
			return err
		}
		o.Eff.Interactions = append(o.Eff.Interactions, ix)
		for _, name := range id.SCFields {
			if f, ok := o.PhysFields[name]; ok {
				f.RegisterInteraction(ix.Name())
			}
		}
	}

	pressure := field.NewField("pressure", localShape, 1)
	for _, ud := range o.Tree.EffHamil.Updaters {
		u, err := o.buildUpdater(ud, pressure)
		if err != nil {
			return err
		}
		o.Eff.Updaters = append(o.Eff.Updaters, u)
	}

	var excluded []*field.PhysField
	var constraintField *field.PhysField
	for _, f := range o.PhysFields {
		if f.Kind == field.KindConstraint {
			constraintField = f
		} else {
			excluded = append(excluded, f)
		}
	}
	if constraintField != nil {
		o.Eff.ConstraintUpdater = updater.NewConstraint("constraint", updater.Frequency{Start: 0, Period: 1, End: -1}, excluded, constraintField, 1, 1)
	}

	for _, f := range o.PhysFields {
		o.Eff.PhysFields = append(o.Eff.PhysFields, f)
	}
	o.Eff.Polymers = o.Polymers
	o.Eff.Solvents = o.Solvents

	return nil
}

func (o *Domain) buildInteraction(id inp.InteractionData, localShape []int) (*interaction.Interaction, error) {
	var a, b *field.PhysField
	var ok bool
	if len(id.SCFields) >= 1 {
		a, ok = o.PhysFields[id.SCFields[0]]
		if !ok {
			return nil, chk.Err("UnknownObject: Interaction %q: scfield %q not found", id.Name, id.SCFields[0])
		}
	}
	if len(id.SCFields) >= 2 {
		b, ok = o.PhysFields[id.SCFields[1]]
		if !ok {
			return nil, chk.Err("UnknownObject: Interaction %q: scfield %q not found", id.Name, id.SCFields[1])
		}
	}
	if len(id.SCFields) > 2 {
		return nil, chk.Err("TooManyFields: Interaction %q: at most 2 scfields supported, got %d", id.Name, len(id.SCFields))
	}
	ix := interaction.NewInteraction(id.Name, interaction.Kind(id.Kind), a, b, id.ChiN)
	ix.ShiftDens = id.ShiftDens
	if id.Kind == string(interaction.KindFloryWall) {
		bnd := findWallBoundary(o.Boundaries)
		if bnd != nil {
			ix.WallField = bnd.WallField
		}
	}
	if id.ChiNFunc != "" {
		f, err := spatialfunc.New(id.ChiNFunc, nil)
		if err != nil {
			return nil, err
		}
		ix.ChiNFunc = f
		if err := ix.BuildSolvers(localShape, o.coordsOf); err != nil {
			return nil, err
		}
	}
	return ix, nil
}

func findWallBoundary(bs []*boundary.Boundary) *boundary.Boundary {
	for _, b := range bs {
		if b.Kind == boundary.KindFixedWall || b.Kind == boundary.KindInteractingSphere {
			return b
		}
	}
	return nil
}

// coordsOf returns the local-cell coordinates (as float64, global frame)
// for local flat index i, used to evaluate spatially varying expressions.
func (o *Domain) coordsOf(i int) []float64 {
	localDims := o.Decomp.NumCellsLocal()
	shifts := o.Decomp.LocalToGlobalShifts()
	idx := make([]int, len(localDims))
	rem := i
	for d := len(localDims) - 1; d >= 0; d-- {
		idx[d] = rem % localDims[d]
		rem /= localDims[d]
	}
	out := make([]float64, len(idx))
	for d := range idx {
		out[d] = float64(idx[d] + shifts[d])
	}
	return out
}

func (o *Domain) buildUpdater(ud inp.UpdaterData, pressure *field.Field) (updater.Updater, error) {
	freq := updater.Frequency{Start: ud.ApplyStart, Period: ud.ApplyFrequency, End: ud.ApplyEnd}
	var fields []*field.PhysField
	for _, name := range ud.UpdateFields {
		f, ok := o.PhysFields[name]
		if !ok {
			return nil, chk.Err("UnknownObject: Updater %q: updateField %q not found", ud.Name, name)
		}
		fields = append(fields, f)
	}
	switch updater.Kind(ud.Kind) {
	case updater.KindSteepestDescent:
		return updater.NewSteepestDescent(ud.Name, freq, fields, ud.RelaxLambdas, o.Eff.Interactions, pressure, ud.NoiseStrength, o.Tree.RandomSeed)
	case updater.KindSimpleSpecFilter:
		return updater.NewSimpleSpecFilter(ud.Name, freq, fields, o.FFT, o.Comm, ud.CutoffFrac, ud.FilterStrength), nil
	case updater.KindMultiSpecFilter:
		if !ud.MultiEnabled {
			return nil, chk.Err("InvalidAttribute: Updater %q: multiSpecFilter extension not enabled (set multiEnabled=true)", ud.Name)
		}
		if o.FFT.Layout() == fft.LayoutTranspose {
			return nil, chk.Err("InvalidAttribute: Updater %q: multiSpecFilter cannot bind to a Transpose-layout FFT plan", ud.Name)
		}
		return updater.NewMultiSpecFilter(ud.Name, freq, fields, o.FFT, o.Comm, o.kMagSq, ud.MultiCutoffFracs, ud.FilterStrength)
	case updater.KindPoisson:
		if len(fields) < 1 {
			return nil, chk.Err("InvalidAttribute: Updater %q: poissonUpdater requires one updateField (the charge-density source)", ud.Name)
		}
		psi := field.NewField(ud.Name+".psi", o.Decomp.NumCellsLocal(), 1)
		return updater.NewPoisson(ud.Name, freq, fields[0], psi, o.FFT, o.kMagSq, zeroModeIndex(o.kMagSq)), nil
	default:
		return nil, chk.Err("InvalidAttribute: Updater %q: unknown kind %q", ud.Name, ud.Kind)
	}
}

func zeroModeIndex(kMagSq []float64) int {
	for i, v := range kMagSq {
		if v == 0 {
			return i
		}
	}
	return 0
}

func cellSizesOrOnes(sizes []float64, ndim int) []float64 {
	if len(sizes) == ndim {
		return sizes
	}
	out := make([]float64, ndim)
	for i := range out {
		out[i] = 1
	}
	return out
}

// Step runs one outer SCFT iteration (spec.md §4.6, §5), advances the
// internal step counter, refreshes moving boundaries, and samples
// histories whose apply-window includes this step.
func (o *Domain) Step() error {
	t := float64(o.step)
	for _, b := range o.Boundaries {
		b.RefreshPosition(t)
	}
	if err := o.Eff.Step(o.step); err != nil {
		return err
	}
	for _, h := range o.Historys {
		if err := h.Sample(o.step, t); err != nil {
			return err
		}
	}
	o.step++
	return nil
}

// Run executes the configured number of outer steps. When verbose, the root
// rank prints a progress line every dumpPeriodicity steps; Run itself writes
// no dump files.
func (o *Domain) Run(verbose bool) error {
	for i := 0; i < o.Tree.Nsteps; i++ {
		if err := o.Step(); err != nil {
			return err
		}
		if verbose && o.Comm.IsRoot() && i%o.Tree.DumpPeriodicity == 0 {
			io.Pf("step %d/%d\n", i, o.Tree.Nsteps)
		}
	}
	return nil
}

// DumpFieldName builds the "<base>_<fieldName>_<seq>"-style dump path for
// one named PhysField (spec.md §6's "Output files"), base coming from the
// Tree's configured output key.
func (o *Domain) DumpFieldName(fieldName string, seq int) string {
	return ioh5.DumpPath(o.Tree.DirOut, o.Tree.Key, fieldName, seq, o.Tree.EncType)
}

// buildKMagSq precomputes |k|^2 over the local slab in the global index
// frame (spec.md §4.3's k-space decay factor, shared across every Block
// of every chain bound to the same Grid/Decomposition).
func buildKMagSq(globalDims []int, d *decomp.Decomposition) []float64 {
	local := d.NumCellsLocal()
	shifts := d.LocalToGlobalShifts()
	size := 1
	for _, n := range local {
		size *= n
	}
	out := make([]float64, size)
	idx := make([]int, len(local))
	for flat := 0; flat < size; flat++ {
		var sumSqr float64
		for axis, n := range globalDims {
			g := idx[axis] + shifts[axis]
			k := g
			if k > n/2 {
				k -= n
			}
			sumSqr += float64(k) * float64(k)
		}
		out[flat] = sumSqr
		for a := len(local) - 1; a >= 0; a-- {
			idx[a]++
			if idx[a] < local[a] {
				break
			}
			idx[a] = 0
		}
	}
	return out
}
