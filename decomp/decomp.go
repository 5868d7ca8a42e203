// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package decomp implements the slab Decomposition of spec.md §4.1: it
// partitions the x axis into per-rank slabs (or, with the transpose flag,
// the y axis in reciprocal space), mapping global (x,y,z) coordinates to
// per-rank local index ranges.
//
// The local extent arithmetic mirrors the block distribution FFTW's
// fftwnd_mpi_local_sizes reports for a slab decomposition (grounded on
// PsDecompFFTW::build): n_i split into Size() contiguous blocks, remainder
// distributed to the lowest-ranked blocks first. The fft package consumes
// these shapes directly instead of decomp querying an FFT plan object,
// which would otherwise create an import cycle between decomp and fft.
package decomp

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/polyscft/names"
)

// Kind selects the decomposition strategy named in the input tree
// (spec.md §6): "regular" (always normal/x-slabs) or "fftw" (honours
// TransposeFlag).
type Kind string

const (
	KindRegular Kind = "regular"
	KindFFTW    Kind = "fftw"
)

// Decomposition partitions a Grid's global cells across ranks.
type Decomposition struct {
	names.Base
	Kind          Kind
	TransposeFlag bool

	ndim         int
	numCellsGlob []int
	rank, size   int

	numCellsLocal []int // [ndim]
	shifts        []int // [ndim] local_to_global_shifts; non-zero only in partitioned axis
}

// New builds a Decomposition for the given global cell counts, honouring
// kind and the transpose flag, for the given rank out of size ranks.
// Fails with InvalidDecomposition if any rank's assigned local extent is
// zero along the partitioned axis (spec.md §4.1).
func New(name string, kind Kind, transpose bool, numCellsGlobal []int, rank, size int) (*Decomposition, error) {
	ndim := len(numCellsGlobal)
	o := &Decomposition{
		Base:          names.NewBase(name),
		Kind:          kind,
		TransposeFlag: transpose && kind == KindFFTW,
		ndim:          ndim,
		numCellsGlob:  append([]int(nil), numCellsGlobal...),
		rank:          rank,
		size:          size,
	}
	axis := 0
	if o.TransposeFlag && ndim > 1 {
		axis = 1
	}
	localN, start := blockExtent(numCellsGlobal[axis], rank, size)
	if localN == 0 {
		return nil, chk.Err("InvalidDecomposition: %q: rank %d has zero local extent on axis %d (n=%d, nranks=%d)",
			name, rank, axis, numCellsGlobal[axis], size)
	}
	o.numCellsLocal = append([]int(nil), numCellsGlobal...)
	o.numCellsLocal[axis] = localN
	o.shifts = make([]int, ndim)
	o.shifts[axis] = start
	return o, nil
}

// blockExtent returns the (local count, local start) of the block
// distribution of n items over size ranks, for the given rank: the first
// n%size ranks get one extra item, matching FFTW's local-size convention.
func blockExtent(n, rank, size int) (count, start int) {
	base := n / size
	rem := n % size
	if rank < rem {
		count = base + 1
		start = rank * count
	} else {
		count = base
		start = rem*(base+1) + (rank-rem)*base
	}
	return
}

// FindObject implements names.Object (Decomposition has no children).
func (o *Decomposition) FindObject(name string) names.Object {
	return o.Base.FindObject(o, name)
}

// NumCellsLocal returns the local cell counts per axis on this rank.
func (o *Decomposition) NumCellsLocal() []int { return append([]int(nil), o.numCellsLocal...) }

// LocalToGlobalShifts returns the per-axis shift (non-zero only on the
// partitioned axis) to add to a local index to obtain the global index.
func (o *Decomposition) LocalToGlobalShifts() []int { return append([]int(nil), o.shifts...) }

// HasPosition reports whether the global point p is owned by this rank:
// p_i ∈ [shift_i, shift_i + local_n_i) for every partitioned axis.
func (o *Decomposition) HasPosition(p []int) bool {
	axis := 0
	if o.TransposeFlag && o.ndim > 1 {
		axis = 1
	}
	lo := o.shifts[axis]
	hi := lo + o.numCellsLocal[axis]
	return p[axis] >= lo && p[axis] < hi
}

// PartitionedAxis returns which axis (0 = x, 1 = y) this decomposition
// slabs across, depending on the transpose flag.
func (o *Decomposition) PartitionedAxis() int {
	if o.TransposeFlag && o.ndim > 1 {
		return 1
	}
	return 0
}

// LocalSize returns the total number of local cells (product of
// NumCellsLocal).
func (o *Decomposition) LocalSize() int {
	total := 1
	for _, n := range o.numCellsLocal {
		total *= n
	}
	return total
}
