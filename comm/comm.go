// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package comm wraps github.com/cpmech/gosl/mpi into the narrow collective
// contract spec.md §1 calls out as an external collaborator: all_reduce_sum,
// all_reduce_max, all_reduce_sum_vec, barrier, rank, size. Every call here is
// a global synchronization point (spec.md §5); every rank must reach the
// same call site with matching shapes.
package comm

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/mpi"
	"github.com/cpmech/polyscft/names"
)

// Communicator is the one collective object every rank's Domain holds.
// It is built once from the "Comm" block of the input tree (kind="mpiComm").
type Communicator struct {
	names.Base
	wspc []float64 // reusable all-reduce workspace sized to Size()
}

// NewCommunicator constructs and starts the MPI runtime if not already on.
func NewCommunicator(name string) *Communicator {
	if !mpi.IsOn() {
		mpi.Start(false)
	}
	return &Communicator{Base: names.NewBase(name)}
}

// FindObject implements names.Object (Communicator has no children).
func (o *Communicator) FindObject(name string) names.Object {
	return o.Base.FindObject(o, name)
}

// Rank returns this process's rank.
func (o *Communicator) Rank() int { return mpi.Rank() }

// Size returns the number of ranks.
func (o *Communicator) Size() int { return mpi.Size() }

// IsRoot reports whether this rank is rank 0.
func (o *Communicator) IsRoot() bool { return mpi.Rank() == 0 }

// Barrier blocks until every rank reaches this call.
func (o *Communicator) Barrier() {
	if mpi.IsOn() && mpi.Size() > 1 {
		mpi.Barrier()
	}
}

// AllReduceSum reduces one scalar across every rank with +.
func (o *Communicator) AllReduceSum(v float64) float64 {
	if !mpi.IsOn() || mpi.Size() == 1 {
		return v
	}
	dest := []float64{v}
	o.ensure(1)
	mpi.AllReduceSum(dest, o.wspc[:1])
	return dest[0]
}

// AllReduceMax reduces one scalar across every rank with max.
func (o *Communicator) AllReduceMax(v float64) float64 {
	if !mpi.IsOn() || mpi.Size() == 1 {
		return v
	}
	dest := []float64{v}
	o.ensure(1)
	mpi.AllReduceMax(dest, o.wspc[:1])
	return dest[0]
}

// AllReduceSumVec reduces a vector across every rank elementwise with +, in
// place. Every rank must call with a vector of the same length.
func (o *Communicator) AllReduceSumVec(v []float64) {
	if !mpi.IsOn() || mpi.Size() == 1 {
		return
	}
	o.ensure(len(v))
	mpi.AllReduceSum(v, o.wspc[:len(v)])
}

// ensure grows the scratch all-reduce workspace to at least n.
func (o *Communicator) ensure(n int) {
	if len(o.wspc) < n {
		o.wspc = make([]float64, n)
	}
}

// MustAgree panics with a CollectiveFailure-kind error unless every rank
// reports the same value (within tol), used to guard the shape-matching
// requirement of every collective call site.
func (o *Communicator) MustAgree(local float64, tol float64, what string) {
	lo := o.AllReduceMax(local)
	hi := -o.AllReduceMax(-local)
	if lo-hi > tol {
		chk.Panic("CollectiveFailure: %s diverges across ranks: max=%v min=%v tol=%v", what, lo, hi, tol)
	}
}
