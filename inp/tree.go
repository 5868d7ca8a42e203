// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package inp implements the hierarchical keyed attribute tree of spec.md
// §6: JSON-tagged structs mirroring inp/sim.go's Data/LinSolData pattern
// (SetDefault/PostProcess), decoded from either JSON or YAML (selected by
// file extension, the pack's YAML enrichment, SPEC_FULL.md §B). This
// package only holds the raw attribute shapes and decoding; the two-pass
// buildData/buildSolvers construction that turns a Tree into a live
// object graph lives in the domain package to avoid an import cycle
// (domain needs every concrete package; inp must not).
package inp

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/cpmech/gosl/chk"
	"gopkg.in/yaml.v3"
)

// BlockData is one Block holder's raw attributes (spec.md §6).
type BlockData struct {
	Name    string  `json:"name" yaml:"name"`
	Kind    string  `json:"kind" yaml:"kind"`
	SCField string  `json:"scfield" yaml:"scfield"`
	Length  int     `json:"length" yaml:"length"`
	Ds      float64 `json:"ds" yaml:"ds"`
	B       float64 `json:"b" yaml:"b"`
	HeadOf  string  `json:"headOf" yaml:"headOf"` // name of neighbor block attached at this block's head
	TailOf  string  `json:"tailOf" yaml:"tailOf"` // name of neighbor block attached at this block's tail
	Z       float64 `json:"z" yaml:"z"`
	Alpha   float64 `json:"alpha" yaml:"alpha"`

	// OrientBins/Persist configure a semiflexibleBlock's orientation axis
	// (rank 2*Ndim-1); both are ignored for flexPseudoSpec/
	// chargeFlexPseudoSpec kinds.
	OrientBins int     `json:"orientBins" yaml:"orientBins"`
	Persist    float64 `json:"persist" yaml:"persist"`
}

// SetDefault fills zero-valued optional fields (mirrors inp/sim.go's
// SetDefault convention).
func (o *BlockData) SetDefault() {
	if o.Ds == 0 {
		o.Ds = 0.01
	}
	if o.B == 0 {
		o.B = 1
	}
	if o.Kind == string(semiflexibleKind) {
		if o.OrientBins == 0 {
			o.OrientBins = 8
		}
		if o.Persist == 0 {
			o.Persist = 1
		}
	}
}

// semiflexibleKind mirrors chain.KindSemiflexible without importing the
// chain package (inp must not import domain's dependents, see the package
// doc comment above).
const semiflexibleKind = "semiflexibleBlock"

// PolymerData is one Polymer holder's raw attributes.
type PolymerData struct {
	Name       string      `json:"name" yaml:"name"`
	Kind       string      `json:"kind" yaml:"kind"`
	VolFrac    float64     `json:"volfrac" yaml:"volfrac"`
	Length     int         `json:"length" yaml:"length"`
	SchulzZ    float64     `json:"schulzZ" yaml:"schulzZ"`
	SchulzN    int         `json:"schulzNspecies" yaml:"schulzNspecies"`
	Blocks     []BlockData `json:"Block" yaml:"Block"`
}

// SolventData is one Solvent holder's raw attributes.
type SolventData struct {
	Name    string  `json:"name" yaml:"name"`
	Kind    string  `json:"kind" yaml:"kind"`
	VolFrac float64 `json:"volfrac" yaml:"volfrac"`
	SCField string  `json:"scfield" yaml:"scfield"`
	Valence float64 `json:"valence" yaml:"valence"`
}

// BoundaryData is one Boundary holder's raw attributes.
type BoundaryData struct {
	Name   string    `json:"name" yaml:"name"`
	Kind   string    `json:"kind" yaml:"kind"`
	Width  float64   `json:"width" yaml:"width"`
	Radius float64   `json:"radius" yaml:"radius"`
	Center []int     `json:"center" yaml:"center"`
}

// PhysFieldData is one PhysField holder's raw attributes.
type PhysFieldData struct {
	Name   string  `json:"name" yaml:"name"`
	Kind   string  `json:"kind" yaml:"kind"`
	RhoBar float64 `json:"rhoBar" yaml:"rhoBar"`
}

// InteractionData is one Interaction holder's raw attributes.
type InteractionData struct {
	Name       string   `json:"name" yaml:"name"`
	Kind       string   `json:"kind" yaml:"kind"`
	SCFields   []string `json:"scfields" yaml:"scfields"`
	ChiN       float64  `json:"chiN" yaml:"chiN"`
	ChiNFunc   string   `json:"chiNFunc" yaml:"chiNFunc"`
	ShiftDens  bool     `json:"shiftDens" yaml:"shiftDens"`
}

// UpdaterData is one Updater holder's raw attributes.
type UpdaterData struct {
	Name           string    `json:"name" yaml:"name"`
	Kind           string    `json:"kind" yaml:"kind"`
	UpdateFields   []string  `json:"updateFields" yaml:"updateFields"`
	ApplyStart     int       `json:"applyStart" yaml:"applyStart"`
	ApplyFrequency int       `json:"applyFrequency" yaml:"applyFrequency"`
	ApplyEnd       int       `json:"applyEnd" yaml:"applyEnd"`
	RelaxLambdas   []float64 `json:"relaxLambdas" yaml:"relaxLambdas"`
	NoiseStrength  float64   `json:"noiseStrength" yaml:"noiseStrength"`
	CutoffFrac     float64   `json:"cutoffFrac" yaml:"cutoffFrac"`
	FilterStrength float64   `json:"filterStrength" yaml:"filterStrength"`
	MaxThreshold   float64   `json:"maxThreshold" yaml:"maxThreshold"`
	ClipValue      float64   `json:"clipValue" yaml:"clipValue"`
	MultiEnabled   bool      `json:"multiEnabled" yaml:"multiEnabled"`
	MultiCutoffFracs []float64 `json:"multiCutoffFracs" yaml:"multiCutoffFracs"`
}

// SetDefault fills zero-valued optional fields.
func (o *UpdaterData) SetDefault() {
	if o.ApplyFrequency == 0 {
		o.ApplyFrequency = 1
	}
	if o.ApplyEnd == 0 {
		o.ApplyEnd = -1
	}
	if o.MultiEnabled && len(o.MultiCutoffFracs) == 0 {
		o.MultiCutoffFracs = []float64{o.CutoffFrac}
	}
}

// EffHamilData is the EffHamil holder's raw attributes.
type EffHamilData struct {
	Name         string             `json:"name" yaml:"name"`
	Kind         string             `json:"kind" yaml:"kind"`
	Interactions []InteractionData  `json:"Interaction" yaml:"Interaction"`
	Updaters     []UpdaterData      `json:"Updater" yaml:"Updater"`
}

// HistoryData is one History holder's raw attributes.
type HistoryData struct {
	Name              string `json:"name" yaml:"name"`
	Kind              string `json:"kind" yaml:"kind"`
	UpdatePeriodicity int    `json:"updatePeriodicity" yaml:"updatePeriodicity"`
	InteractionName   string `json:"interactionName" yaml:"interactionName"`
	Point             int    `json:"point" yaml:"point"`
}

// GridData is the Grid holder's raw attributes.
type GridData struct {
	Name           string    `json:"name" yaml:"name"`
	Kind           string    `json:"kind" yaml:"kind"`
	NumCellsGlobal []int     `json:"numCellsGlobal" yaml:"numCellsGlobal"`
	CellSizes      []float64 `json:"cellSizes" yaml:"cellSizes"`
	Decomp         string    `json:"decomp" yaml:"decomp"`
}

// DecompData is the Decomp holder's raw attributes.
type DecompData struct {
	Name          string `json:"name" yaml:"name"`
	Kind          string `json:"kind" yaml:"kind"`
	TransposeFlag bool   `json:"transposeFlag" yaml:"transposeFlag"`
}

// CommData is the Comm holder's raw attributes.
type CommData struct {
	Name string `json:"name" yaml:"name"`
	Kind string `json:"kind" yaml:"kind"`
}

// FFTData is the FFT holder's raw attributes.
type FFTData struct {
	Name     string `json:"name" yaml:"name"`
	Kind     string `json:"kind" yaml:"kind"`
	GridKind string `json:"gridKind" yaml:"gridKind"`
}

// Tree is the root Domain holder's raw attribute tree (spec.md §6).
type Tree struct {
	NumCellsGlobal  []int  `json:"numCellsGlobal" yaml:"numCellsGlobal"`
	Nsteps          int    `json:"nsteps" yaml:"nsteps"`
	DumpPeriodicity int    `json:"dumpPeriodicity" yaml:"dumpPeriodicity"`
	RandomSeed      int64  `json:"randomSeed" yaml:"randomSeed"`

	Grid   GridData   `json:"Grid" yaml:"Grid"`
	Decomp DecompData `json:"Decomp" yaml:"Decomp"`
	Comm   CommData   `json:"Comm" yaml:"Comm"`
	FFT    FFTData    `json:"FFT" yaml:"FFT"`

	PhysFields []PhysFieldData `json:"PhysField" yaml:"PhysField"`
	Polymers   []PolymerData   `json:"Polymer" yaml:"Polymer"`
	Solvents   []SolventData   `json:"Solvent" yaml:"Solvent"`
	Boundaries []BoundaryData  `json:"Boundary" yaml:"Boundary"`

	EffHamil EffHamilData  `json:"EffHamil" yaml:"EffHamil"`
	Historys []HistoryData `json:"History" yaml:"History"`

	EncType string `json:"encType" yaml:"encType"`
	DirOut  string `json:"dirOut" yaml:"dirOut"`
	Key     string `json:"key" yaml:"key"`
}

// SetDefault fills zero-valued optional top-level fields, mirroring
// inp/sim.go's Data.SetDefault.
func (o *Tree) SetDefault() {
	if o.DumpPeriodicity == 0 {
		o.DumpPeriodicity = 1
	}
	if o.EncType == "" {
		o.EncType = "gob"
	}
	if o.DirOut == "" {
		o.DirOut = "."
	}
	if o.Key == "" {
		o.Key = "polyscft"
	}
	for i := range o.Polymers {
		for j := range o.Polymers[i].Blocks {
			o.Polymers[i].Blocks[j].SetDefault()
		}
	}
	for i := range o.EffHamil.Updaters {
		o.EffHamil.Updaters[i].SetDefault()
	}
}

// PostProcess runs cross-field validation after defaults are applied
// (mirrors inp/sim.go's Data.PostProcess).
func (o *Tree) PostProcess() error {
	if len(o.NumCellsGlobal) == 0 {
		return chk.Err("InvalidAttribute: Domain: numCellsGlobal is required")
	}
	if o.Nsteps < 0 {
		return chk.Err("InvalidAttribute: Domain: nsteps must be >= 0")
	}
	return nil
}

// ReadTree decodes a Tree from path, selecting JSON or YAML by file
// extension (".yaml"/".yml" vs everything else), the pack's YAML
// enrichment (SPEC_FULL.md §B).
func ReadTree(path string, raw []byte) (*Tree, error) {
	t := &Tree{}
	ext := strings.ToLower(filepath.Ext(path))
	var err error
	if ext == ".yaml" || ext == ".yml" {
		err = yaml.Unmarshal(raw, t)
	} else {
		err = json.Unmarshal(raw, t)
	}
	if err != nil {
		return nil, chk.Err("InvalidAttribute: failed to parse %q: %v", path, err)
	}
	t.SetDefault()
	if err := t.PostProcess(); err != nil {
		return nil, err
	}
	return t, nil
}
