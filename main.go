// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"flag"
	"io/ioutil"
	"os"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/mpi"
	"github.com/cpmech/gosl/utl"

	"github.com/cpmech/polyscft/domain"
	"github.com/cpmech/polyscft/inp"
	"github.com/cpmech/polyscft/ioh5"
)

// exit codes (spec.md §6).
const (
	exitSuccess      = 0
	exitInputError   = 1
	exitRuntimeError = 2
	exitIOError      = 3
)

func main() {
	os.Exit(run())
}

func run() (code int) {
	defer func() {
		if err := recover(); err != nil {
			if mpi.Rank() == 0 {
				chk.Verbose = true
				for i := 8; i > 3; i-- {
					chk.CallerInfo(i)
				}
				io.PfRed("ERROR: %v\n", err)
			}
			code = exitRuntimeError
		}
		mpi.Stop(false)
	}()
	mpi.Start(false)
	defer utl.DoProf(false)()

	fnamepath := flag.String("i", "", "input tree file path (required)")
	outBase := flag.String("o", "", "output file base name")
	nstepsOverride := flag.Int("n", -1, "override nsteps")
	dumpOverride := flag.Int("d", -1, "override dumpPeriodicity")
	restartSeq := flag.Int("r", -1, "restart from dump sequence number")
	printVersion := flag.Bool("v", false, "print version and exit")
	helpKind := flag.String("h", "", "print help for object kind <name> and exit")
	validateOnly := flag.Bool("validate", false, "parse input and exit with 0 on success, non-zero on error")
	quiet := flag.Bool("q", false, "suppress progress messages")
	flag.Parse()
	verbose := !*quiet

	if mpi.Rank() == 0 && verbose {
		io.PfWhite("\npolyscft -- self-consistent field theory engine\n\n")
		io.Pf("Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.\n")
		io.Pf("Use of this source code is governed by a BSD-style\n")
		io.Pf("license that can be found in the LICENSE file.\n\n")
	}

	if *printVersion {
		io.Pf("polyscft version 1.0.0\n")
		return exitSuccess
	}

	if *helpKind != "" {
		printHelp(*helpKind)
		return exitSuccess
	}

	if *fnamepath == "" {
		io.PfRed("InvalidAttribute: -i <file> is required\n")
		return exitInputError
	}

	raw, err := ioutil.ReadFile(*fnamepath)
	if err != nil {
		io.PfRed("IOError: cannot read %q: %v\n", *fnamepath, err)
		return exitIOError
	}

	tree, err := inp.ReadTree(*fnamepath, raw)
	if err != nil {
		io.PfRed("%v\n", err)
		return exitInputError
	}
	if *nstepsOverride >= 0 {
		tree.Nsteps = *nstepsOverride
	}
	if *dumpOverride >= 0 {
		tree.DumpPeriodicity = *dumpOverride
	}
	if *outBase != "" {
		tree.Key = *outBase
	}

	if *validateOnly {
		if _, err := domain.Build(tree); err != nil {
			io.PfRed("%v\n", err)
			return exitInputError
		}
		if mpi.Rank() == 0 && verbose {
			io.Pfgreen("input %q is valid\n", *fnamepath)
		}
		return exitSuccess
	}

	dom, err := domain.Build(tree)
	if err != nil {
		io.PfRed("%v\n", err)
		return exitInputError
	}

	if *restartSeq >= 0 {
		if err := restore(dom, *restartSeq); err != nil {
			io.PfRed("%v\n", err)
			return exitIOError
		}
	}

	if err := dom.Run(verbose); err != nil {
		io.PfRed("%v\n", err)
		return exitRuntimeError
	}

	if mpi.Rank() == 0 {
		if err := dumpAll(dom); err != nil {
			io.PfRed("%v\n", err)
			return exitIOError
		}
	}

	return exitSuccess
}

// dumpAll writes one dataset per PhysField to the configured output base,
// spec.md §6's "<base>_<objectName>_<seq>" naming, plus a CSV sibling
// export for every History collector.
func dumpAll(dom *domain.Domain) error {
	for name, f := range dom.PhysFields {
		path := dom.DumpFieldName(name, 0)
		fil := ioh5.OpenFile(path, dom.Tree.EncType)
		meshAttrs := ioh5.FieldAttrs(dom.Tree.Grid.Name)
		if err := fil.WriteDataset(ioh5.Dataset{Name: name + ".phi", Data: f.Density.Data, Attrs: meshAttrs}); err != nil {
			return err
		}
		if err := fil.WriteDataset(ioh5.Dataset{Name: name + ".w", Data: f.Conjugat.Data, Attrs: meshAttrs}); err != nil {
			return err
		}
		if err := fil.CloseFile(false); err != nil {
			return err
		}
		f.MarkDumped()
	}
	for _, h := range dom.Historys {
		path := ioh5.HistoryPath(dom.Tree.DirOut, dom.Tree.Key+"_"+h.Name(), "csv")
		if err := h.WriteCSV(path); err != nil {
			return err
		}
	}
	return nil
}

// restore re-hydrates PhysField density/conjugate pairs from a prior dump
// sequence number (spec.md §6's "-r <seq>" restart flag); a partial or
// shape-mismatched dump is an IOError, never silently tolerated. Each dump
// file holds the ".phi" dataset immediately followed by the ".w" dataset,
// mirroring the write order in dumpAll.
func restore(dom *domain.Domain, seq int) error {
	for name, f := range dom.PhysFields {
		path := dom.DumpFieldName(name, seq)
		raw, err := ioutil.ReadFile(path)
		if err != nil {
			return chk.Err("IOError: restart dump %q: %v", path, err)
		}
		dec := ioh5.GetDecoder(bytes.NewReader(raw), dom.Tree.EncType)
		if err := readInto(dec, f.Density.Data); err != nil {
			return chk.Err("IOError: restart dump %q: %v", path, err)
		}
		if err := readInto(dec, f.Conjugat.Data); err != nil {
			return chk.Err("IOError: restart dump %q: %v", path, err)
		}
	}
	return nil
}

// readInto decodes one ioh5.Dataset record and copies its data into dst,
// erroring as ShapeMismatch on a size mismatch.
func readInto(dec ioh5.Decoder, dst []float64) error {
	var d ioh5.Dataset
	if err := dec.Decode(&d); err != nil {
		return err
	}
	if len(d.Data) != len(dst) {
		return chk.Err("ShapeMismatch: dataset %q: got %d values, want %d", d.Name, len(d.Data), len(dst))
	}
	copy(dst, d.Data)
	return nil
}

func printHelp(name string) {
	io.Pf("help for object kind %q:\n", name)
	io.Pf("  see DESIGN.md and spec.md for this kind's full attribute catalog.\n")
}
