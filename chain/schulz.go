// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chain

import "math"

// SchulzDistribution discretizes a Schulz-Zimm chain-length distribution
// over a small number of representative length multipliers, grounded on
// original_source/polyswift/pspolymer/PsSchulzDistrib.{h,cpp} (supplemented
// feature, SPEC_FULL.md §D.1). A polyDisperseBCP Polymer samples Species
// length multipliers and weights here, builds one Block set per species at
// the multiplier-scaled Ns, and sums each species' weighted density/Q
// contribution into the parent Polymer's aggregate.
type SchulzDistribution struct {
	Z       float64 // polydispersity shape parameter (Z -> infinity is monodisperse)
	Nspecies int
}

// Species is one discretized representative chain length and its
// normalized statistical weight.
type Species struct {
	LengthMultiplier float64
	Weight           float64
}

// NewSchulzDistribution builds a discretization with nspecies representative
// points spanning the distribution's effective support, z controlling the
// width (larger z, narrower distribution, matching PsSchulzDistrib's
// convention).
func NewSchulzDistribution(z float64, nspecies int) *SchulzDistribution {
	if nspecies < 1 {
		nspecies = 1
	}
	return &SchulzDistribution{Z: z, Nspecies: nspecies}
}

// Discretize returns nspecies representative length multipliers sampled
// uniformly over the distribution's effective range [1/3, 3] relative to
// the mean chain length, each weighted by the Schulz-Zimm probability
// density f(x) = ((z+1)/mean)^(z+1) * x^z * exp(-(z+1)x/mean) / Gamma(z+1),
// normalized to sum to one across the discrete species.
func (s *SchulzDistribution) Discretize() []Species {
	n := s.Nspecies
	if n == 1 {
		return []Species{{LengthMultiplier: 1, Weight: 1}}
	}
	lo, hi := 1.0/3.0, 3.0
	out := make([]Species, n)
	var total float64
	for i := 0; i < n; i++ {
		x := lo + (hi-lo)*float64(i)/float64(n-1)
		w := s.density(x)
		out[i] = Species{LengthMultiplier: x, Weight: w}
		total += w
	}
	if total > 0 {
		for i := range out {
			out[i].Weight /= total
		}
	}
	return out
}

// density evaluates the (unnormalized-across-species) Schulz-Zimm
// probability density at relative length x, using lgamma to avoid
// overflow for large z.
func (s *SchulzDistribution) density(x float64) float64 {
	if x <= 0 {
		return 0
	}
	z := s.Z
	logLg, _ := math.Lgamma(z + 1)
	logF := (z+1)*math.Log(z+1) + z*math.Log(x) - (z+1)*x - logLg
	return math.Exp(logF)
}
