// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nca

import (
	"fmt"
	"math/rand"

	"github.com/emer/etable/etensor"
)

// Rule is the learned update rule: a parameterized function from a
// cell's perception feature vector to a per-channel state delta.
// The contract is:
//   - local: the delta for a cell depends only on that cell's own
//     feature vector, never on neighbor deltas or global grid
//     statistics -- this is what keeps the rule spatially uniform;
//   - deterministic given the parameters and input -- stochastic firing
//     belongs to the Engine, not the rule;
//   - unconstrained output magnitude (no clamping inside the rule).
//
// Parameters are supplied by an external training process -- the engine
// treats them as an opaque bundle.
type Rule interface {
	// Chans returns the number of state channels the rule computes
	// deltas for.
	Chans() int

	// Apply computes the per-cell delta for every cell in the grid:
	// feat has shape (Y, X, NFilters*Chans), dx has shape
	// (Y, X, Chans).  Apply must only write dx.
	Apply(feat, dx *etensor.Float32) error
}

// checkRuleShapes validates the feat / dx tensor pair for a rule with
// nc channels, returning ErrShapeMismatch on any inconsistency.
func checkRuleShapes(feat, dx *etensor.Float32, nc int) error {
	if dx.NumDims() != 3 || dx.Dim(2) != nc {
		return fmt.Errorf("%w: delta tensor inner dim != %d chans", ErrShapeMismatch, nc)
	}
	if feat.NumDims() != 3 || feat.Dim(2) != NFilters*nc {
		return fmt.Errorf("%w: feature tensor inner dim != %d", ErrShapeMismatch, NFilters*nc)
	}
	if feat.Dim(0) != dx.Dim(0) || feat.Dim(1) != dx.Dim(1) {
		return fmt.Errorf("%w: feature and delta grid dims differ", ErrShapeMismatch)
	}
	return nil
}

//////////////////////////////////////////////////////////////////////////////
//  IdentityRule

// IdentityRule computes a zero delta for every cell -- the state never
// changes.  Used as a placeholder and for testing alive-mask dynamics
// in isolation.
type IdentityRule struct {
	NChans int `desc:"number of state channels"`
}

func (ir *IdentityRule) Chans() int { return ir.NChans }

func (ir *IdentityRule) Apply(feat, dx *etensor.Float32) error {
	if err := checkRuleShapes(feat, dx, ir.NChans); err != nil {
		return err
	}
	dx.SetZeros()
	return nil
}

//////////////////////////////////////////////////////////////////////////////
//  DenseRule

// DenseHidden is the default number of hidden units in a DenseRule,
// matching the standard neural CA update network.
const DenseHidden = 128

// DenseRule is the standard neural CA update rule: a two-layer dense
// network applied identically at every cell (equivalent to a pair of
// 1x1 convolutions) with a ReLU hidden nonlinearity and a linear
// output.  Weights are externally trained and immutable during a
// simulation run.
type DenseRule struct {
	NChans  int       `desc:"number of state channels"`
	NHidden int       `desc:"number of hidden units"`
	W1      []float32 `desc:"input-to-hidden weights, NHidden rows x NFilters*NChans cols, row-major"`
	B1      []float32 `desc:"hidden biases, NHidden"`
	W2      []float32 `desc:"hidden-to-output weights, NChans rows x NHidden cols, row-major"`
	B2      []float32 `desc:"output biases, NChans"`
	Threads int       `desc:"number of goroutines for row-parallel evaluation (<= 1 = serial)"`
}

// NewDenseRule returns a zero-weight dense rule for the given channel
// count, with the default hidden layer size.
func NewDenseRule(chans int) *DenseRule {
	dr := &DenseRule{NChans: chans, NHidden: DenseHidden}
	dr.Alloc()
	return dr
}

// Alloc allocates the weight slices for the current NChans / NHidden.
func (dr *DenseRule) Alloc() {
	nin := NFilters * dr.NChans
	dr.W1 = make([]float32, dr.NHidden*nin)
	dr.B1 = make([]float32, dr.NHidden)
	dr.W2 = make([]float32, dr.NChans*dr.NHidden)
	dr.B2 = make([]float32, dr.NChans)
}

// InitWeights sets uniform random weights in [-rng, rng] from the given
// source, for demos and testing -- trained runs load a Bundle instead.
func (dr *DenseRule) InitWeights(rnd *rand.Rand, rng float32) {
	for i := range dr.W1 {
		dr.W1[i] = rng * (2*rnd.Float32() - 1)
	}
	for i := range dr.B1 {
		dr.B1[i] = 0
	}
	for i := range dr.W2 {
		dr.W2[i] = rng * (2*rnd.Float32() - 1)
	}
	for i := range dr.B2 {
		dr.B2[i] = 0
	}
}

func (dr *DenseRule) Chans() int { return dr.NChans }

// Check validates that the weight slice lengths are consistent with
// NChans and NHidden, returning ErrParamsIncompat if not.
func (dr *DenseRule) Check() error {
	nin := NFilters * dr.NChans
	if dr.NChans <= 0 || dr.NHidden <= 0 {
		return fmt.Errorf("%w: chans %d, hidden %d", ErrParamsIncompat, dr.NChans, dr.NHidden)
	}
	if len(dr.W1) != dr.NHidden*nin || len(dr.B1) != dr.NHidden ||
		len(dr.W2) != dr.NChans*dr.NHidden || len(dr.B2) != dr.NChans {
		return fmt.Errorf("%w: weight slice lengths do not match %d chans x %d hidden", ErrParamsIncompat, dr.NChans, dr.NHidden)
	}
	return nil
}

func (dr *DenseRule) Apply(feat, dx *etensor.Float32) error {
	if err := dr.Check(); err != nil {
		return err
	}
	if err := checkRuleShapes(feat, dx, dr.NChans); err != nil {
		return err
	}
	runRows(feat.Dim(0), dr.Threads, func(ylo, yhi int) {
		dr.applyRows(feat, dx, ylo, yhi, make([]float32, dr.NHidden))
	})
	return nil
}

// applyRows evaluates the network for cells in rows [ylo, yhi), using
// hid as the per-worker hidden activation scratch.
func (dr *DenseRule) applyRows(feat, dx *etensor.Float32, ylo, yhi int, hid []float32) {
	w := feat.Dim(1)
	nin := NFilters * dr.NChans
	nc := dr.NChans
	nh := dr.NHidden
	for y := ylo; y < yhi; y++ {
		for x := 0; x < w; x++ {
			fo := (y*w + x) * nin
			fv := feat.Values[fo : fo+nin]
			for j := 0; j < nh; j++ {
				sum := dr.B1[j]
				wr := dr.W1[j*nin : (j+1)*nin]
				for i, f := range fv {
					sum += wr[i] * f
				}
				if sum < 0 { // ReLU
					sum = 0
				}
				hid[j] = sum
			}
			do := (y*w + x) * nc
			for k := 0; k < nc; k++ {
				sum := dr.B2[k]
				wr := dr.W2[k*nh : (k+1)*nh]
				for j, hv := range hid {
					sum += wr[j] * hv
				}
				dx.Values[do+k] = sum
			}
		}
	}
}
