// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package domain

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/polyscft/inp"
)

const sampleDomainJSON = `{
	"numCellsGlobal": [4, 4],
	"nsteps": 3,
	"PhysField": [
		{"name": "phiA", "kind": "monomerDens"},
		{"name": "phiB", "kind": "monomerDens"}
	],
	"Polymer": [
		{"name": "bcp", "kind": "blockCopolymer", "volfrac": 1.0,
		 "Block": [
		   {"name": "A", "kind": "flexPseudoSpec", "length": 4, "scfield": "phiA"},
		   {"name": "B", "kind": "flexPseudoSpec", "length": 4, "scfield": "phiB", "tailOf": "A"}
		 ]}
	]
}`

func Test_domain01(tst *testing.T) {

	chk.PrintTitle("domain01: Build wires a two-block homopolymer chain and Step/Run advance without error")

	t, err := inp.ReadTree("sim.json", []byte(sampleDomainJSON))
	if err != nil {
		tst.Fatal(err)
	}
	d, err := Build(t)
	if err != nil {
		tst.Fatal(err)
	}
	chk.IntAssert(len(d.Polymers), 1)
	chk.IntAssert(len(d.Polymers[0].Blocks), 2)
	chk.Scalar(tst, "Nref lifted from the first built polymer's length", 1e-15, d.Ctx.Nref, 8)

	if err := d.Step(); err != nil {
		tst.Fatal(err)
	}
	if err := d.Run(false); err != nil {
		tst.Fatal(err)
	}

	avgA := d.PhysFields["phiA"].Density.SumAll() / float64(len(d.PhysFields["phiA"].Density.Data))
	if avgA <= 0 {
		tst.Fatalf("phiA average density should be positive after Step, got %v", avgA)
	}
}

func Test_domain02(tst *testing.T) {

	chk.PrintTitle("domain02: buildBlockSet rejects a block whose scfield is not a registered PhysField")

	t, err := inp.ReadTree("sim.json", []byte(`{
		"numCellsGlobal": [4],
		"Polymer": [
			{"name": "bcp", "kind": "blockCopolymer", "volfrac": 1.0,
			 "Block": [{"name": "A", "kind": "flexPseudoSpec", "length": 4, "scfield": "missing"}]}
		]
	}`))
	if err != nil {
		tst.Fatal(err)
	}
	if _, err := Build(t); err == nil {
		tst.Fatal("Build should fail when a Block references an unregistered scfield")
	}
}
