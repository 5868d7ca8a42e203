// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fft implements the spatial-decomposition-aware FFT plan of
// spec.md §4.2: forward/backward real transforms bound to a Grid and its
// Decomposition. A plan records a Normal or Transpose layout, but the
// transforms do not read it: reciprocal-space output always uses the same
// slab as the Decomposition's input, so Transpose does not produce y-slabs.
//
// The 1-D transform kernel is gonum's complex FFT (fourier.NewCmplxFFT from
// gonum.org/v1/gonum/dsp/fourier), the same module the retrieved pack's other example project
// (pthm-soup) depends on; we compose it axis-by-axis into an N-dimensional
// transform (N ∈ {1,2,3}).
//
// Real multi-rank distributed FFTs require an all-to-all data exchange
// that is outside this package's external-collaborator boundary (spec.md
// §1 treats MPI bindings, beyond the fixed collective set, as an external
// collaborator). We materialize the global array with the one collective
// primitive the Communicator contract does expose --- AllReduceSumVec ---
// used as an all-gather: each rank scatters its local slab into a
// zero-padded global-sized buffer, then all-reduce-sums it so every rank
// holds the full array; the N-D transform then runs identically, in full,
// on every rank, and each rank keeps only its own local slab of the
// result. This is correct and deterministic, though not
// communication-optimal; see DESIGN.md.
package fft

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/cpmech/polyscft/comm"
	"github.com/cpmech/polyscft/decomp"
	"github.com/cpmech/polyscft/names"
)

// Layout selects the distribution of the forward/backward transform pair.
type Layout string

const (
	LayoutNormal    Layout = "normalfftw"
	LayoutTranspose Layout = "transposefftw"
)

// Plan is an FFT plan bound to one Grid's global shape and one
// Decomposition's slab layout.
type Plan struct {
	names.Base

	layout   Layout
	dims     []int // global shape, Ndim entries
	decomp   *decomp.Decomposition
	communic *comm.Communicator
	total    int // Π dims
}

// NewPlan builds an FFT plan for the given global dims, bound to d and
// driven by cm for the all-gather collective.
func NewPlan(name string, layout Layout, dims []int, d *decomp.Decomposition, cm *comm.Communicator) (*Plan, error) {
	if len(dims) < 1 || len(dims) > 3 {
		return nil, chk.Err("InvalidAttribute: FFT %q: dims must have 1..3 entries", name)
	}
	total := 1
	for _, n := range dims {
		total *= n
	}
	return &Plan{
		Base:     names.NewBase(name),
		layout:   layout,
		dims:     append([]int(nil), dims...),
		decomp:   d,
		communic: cm,
		total:    total,
	}, nil
}

// FindObject implements names.Object (Plan has no children).
func (o *Plan) FindObject(name string) names.Object {
	return o.Base.FindObject(o, name)
}

// FFTSize returns the number of local cells the owner must size forward/
// backward output buffers to.
func (o *Plan) FFTSize() int { return o.decomp.LocalSize() }

// Layout reports the plan's distribution layout (Normal or Transpose).
func (o *Plan) Layout() Layout { return o.layout }

// V returns the normalization volume Π n_i applied once per round-trip
// (spec.md §4.2's scale convention).
func (o *Plan) V() float64 { return float64(o.total) }

// allGather assembles the full global array (row-major over o.dims) from
// the local slab x (sized to FFTSize), via AllReduceSumVec.
func (o *Plan) allGather(x []float64) []float64 {
	full := make([]float64, o.total)
	shifts := o.decomp.LocalToGlobalShifts()
	localDims := o.decomp.NumCellsLocal()
	scatterLocalIntoGlobal(full, x, o.dims, localDims, shifts)
	o.communic.AllReduceSumVec(full)
	return full
}

// extractLocal copies this rank's slab back out of a full global array.
func (o *Plan) extractLocal(full []float64, out []float64) {
	shifts := o.decomp.LocalToGlobalShifts()
	localDims := o.decomp.NumCellsLocal()
	gatherGlobalIntoLocal(out, full, o.dims, localDims, shifts)
}

// Forward computes out[k] = Re(Σ_r x[r]·e^{-2πi k·r/N}) (spec.md §4.2).
func (o *Plan) Forward(x, out []float64) {
	full := o.allGather(x)
	coeffs := ndForward(full, o.dims)
	realPart := make([]float64, o.total)
	for i, c := range coeffs {
		realPart[i] = real(c)
	}
	o.extractLocal(realPart, out)
}

// ForwardComplex is like Forward but keeps the full complex spectrum,
// used internally by ScaledPair/Convolve and by updaters that need the
// imaginary part (e.g. the Poisson updater).
func (o *Plan) ForwardComplex(x []float64) []complex128 {
	full := o.allGather(x)
	return ndForward(full, o.dims)
}

// Backward computes the raw inverse sum out[r] = Σ_k x[k]·e^{+2πi k·r/N},
// taking x as purely-real k-space data. Per spec.md §4.2's scale
// convention, the 1/V normalization is NOT applied here; callers divide
// by V exactly once per forward/backward round-trip.
func (o *Plan) Backward(x, out []float64) {
	complexX := make([]complex128, len(x))
	for i, v := range x {
		complexX[i] = complex(v, 0)
	}
	o.BackwardComplex(complexX, out)
}

// BackwardComplex runs the inverse transform on a full complex spectrum
// (every rank must supply the same full array; see ForwardComplex).
func (o *Plan) BackwardComplex(x []complex128, out []float64) {
	full := ndBackward(x, o.dims)
	o.extractLocal(full, out)
}

// ForwardAbs computes out[k] = |FFT(x)[k]|.
func (o *Plan) ForwardAbs(x, out []float64) {
	coeffs := o.ForwardComplex(x)
	mag := make([]float64, o.total)
	for i, c := range coeffs {
		mag[i] = math.Hypot(real(c), imag(c))
	}
	o.extractLocal(mag, out)
}

// ScaledPair computes out = backward(forward(x) ⊙ kScale) element-wise,
// used for Laplacian/diffusion steps (spec.md §4.2, §4.3).
func (o *Plan) ScaledPair(x []float64, kScale []float64, out []float64) {
	coeffs := o.ForwardComplex(x)
	fullScale := o.allGather(kScale)
	for i := range coeffs {
		coeffs[i] *= complex(fullScale[i], 0)
	}
	o.BackwardComplex(coeffs, out)
}

// ScaledPairIm is as ScaledPair but treats x as purely imaginary before
// the forward transform (used by charged-block propagator corrections).
func (o *Plan) ScaledPairIm(x []float64, kScale []float64, out []float64) {
	full := o.allGather(x)
	imagFull := make([]complex128, len(full))
	for i, v := range full {
		imagFull[i] = complex(0, v)
	}
	coeffs := ndForwardComplex(imagFull, o.dims)
	fullScale := o.allGather(kScale)
	for i := range coeffs {
		coeffs[i] *= complex(fullScale[i], 0)
	}
	o.BackwardComplex(coeffs, out)
}

// ConvolveReal computes out = backward(forward(a) ⊙ forward(b)).
func (o *Plan) ConvolveReal(a, b []float64, out []float64) {
	ca := o.ForwardComplex(a)
	cb := o.ForwardComplex(b)
	for i := range ca {
		ca[i] *= cb[i]
	}
	o.BackwardComplex(ca, out)
}

// ndForward runs the separable N-dimensional real forward transform.
func ndForward(full []float64, dims []int) []complex128 {
	c := make([]complex128, len(full))
	for i, v := range full {
		c[i] = complex(v, 0)
	}
	return ndForwardComplex(c, dims)
}

// ndForwardComplex runs the separable N-dimensional complex forward
// transform by applying a 1-D FFT along each axis in turn.
func ndForwardComplex(data []complex128, dims []int) []complex128 {
	out := append([]complex128(nil), data...)
	for axis := range dims {
		transformAxis(out, dims, axis, false)
	}
	return out
}

// ndBackward runs the separable N-dimensional inverse transform WITHOUT
// dividing by the total volume: out[r] = Σ_k x[k]·e^{+2πi k·r/N}. Per the
// scale convention of spec.md §4.2, callers divide by V themselves exactly
// once per round-trip.
func ndBackward(data []complex128, dims []int) []float64 {
	out := append([]complex128(nil), data...)
	for axis := range dims {
		transformAxis(out, dims, axis, true)
	}
	real_ := make([]float64, len(out))
	for i, c := range out {
		real_[i] = real(c)
	}
	return real_
}

// transformAxis applies a 1-D complex DFT along the given axis of a
// row-major N-D array, in place. The forward case is gonum's
// CmplxFFT.Coefficients directly: X[k] = Σ_r x[r]·e^{-2πi kr/n}. The
// "inverse" case computes the RAW (unnormalized) inverse sum
// Σ_k X[k]·e^{+2πi kr/n} via the conjugation identity
// IDFT(X) = conj(DFT(conj(X))), sidestepping any normalization
// gonum's own inverse helper might apply, so that the 1/V scaling stays
// entirely under this package's control (spec.md §4.2).
func transformAxis(data []complex128, dims []int, axis int, inverse bool) {
	n := dims[axis]
	fftN := fourier.NewCmplxFFT(n)
	stride, outer := stridesFor(dims, axis)
	line := make([]complex128, n)
	for o := 0; o < outer; o++ {
		base := lineBase(dims, axis, o)
		for i := 0; i < n; i++ {
			v := data[base+i*stride]
			if inverse {
				v = complex(real(v), -imag(v))
			}
			line[i] = v
		}
		res := fftN.Coefficients(nil, line)
		for i := 0; i < n; i++ {
			v := res[i]
			if inverse {
				v = complex(real(v), -imag(v))
			}
			data[base+i*stride] = v
		}
	}
}

// stridesFor returns the stride of axis in a row-major array of the given
// dims, and the number of 1-D lines along that axis.
func stridesFor(dims []int, axis int) (stride, outer int) {
	stride = 1
	for i := axis + 1; i < len(dims); i++ {
		stride *= dims[i]
	}
	total := 1
	for _, n := range dims {
		total *= n
	}
	outer = total / dims[axis]
	return
}

// lineBase returns the flat index of the first element of the o-th line
// running along axis.
func lineBase(dims []int, axis int, o int) int {
	// decompose o into multi-index over all axes except `axis`
	rest := make([]int, 0, len(dims)-1)
	for i := range dims {
		if i != axis {
			rest = append(rest, dims[i])
		}
	}
	idx := make([]int, len(rest))
	rem := o
	for i := len(rest) - 1; i >= 0; i-- {
		idx[i] = rem % rest[i]
		rem /= rest[i]
	}
	full := make([]int, len(dims))
	j := 0
	for i := range dims {
		if i == axis {
			full[i] = 0
		} else {
			full[i] = idx[j]
			j++
		}
	}
	base := 0
	stride := 1
	for i := len(dims) - 1; i >= 0; i-- {
		base += full[i] * stride
		stride *= dims[i]
	}
	return base
}

// scatterLocalIntoGlobal writes a rank's local slab into its position
// inside a zero-initialized global-sized array.
func scatterLocalIntoGlobal(full, local []float64, globalDims, localDims, shifts []int) {
	forEachLocalIndex(localDims, func(localIdx []int, flatLocal int) {
		globalIdx := make([]int, len(localIdx))
		for i := range localIdx {
			globalIdx[i] = localIdx[i] + shifts[i]
		}
		full[flatIndex(globalDims, globalIdx)] = local[flatLocal]
	})
}

// gatherGlobalIntoLocal is the inverse of scatterLocalIntoGlobal.
func gatherGlobalIntoLocal(local, full []float64, globalDims, localDims, shifts []int) {
	forEachLocalIndex(localDims, func(localIdx []int, flatLocal int) {
		globalIdx := make([]int, len(localIdx))
		for i := range localIdx {
			globalIdx[i] = localIdx[i] + shifts[i]
		}
		local[flatLocal] = full[flatIndex(globalDims, globalIdx)]
	})
}

// forEachLocalIndex iterates every multi-index of a row-major array with
// the given dims, calling fn with the index and its flat offset.
func forEachLocalIndex(dims []int, fn func(idx []int, flat int)) {
	ndim := len(dims)
	idx := make([]int, ndim)
	total := 1
	for _, n := range dims {
		total *= n
	}
	for flat := 0; flat < total; flat++ {
		fn(idx, flat)
		for d := ndim - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < dims[d] {
				break
			}
			idx[d] = 0
		}
	}
}

// flatIndex returns the row-major flat offset of idx within dims.
func flatIndex(dims, idx []int) int {
	flat := 0
	stride := 1
	for i := len(dims) - 1; i >= 0; i-- {
		flat += idx[i] * stride
		stride *= dims[i]
	}
	return flat
}
