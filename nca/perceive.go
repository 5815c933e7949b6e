// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nca

import (
	"fmt"

	"github.com/emer/etable/etensor"
	"github.com/emer/nca/sobel"
)

// NFilters is the number of fixed perception filters: identity plus the
// two gradient filters.
const NFilters = 3

// Perception computes the fixed (non-learned) feature expansion for
// every cell: the cell's own channel vector concatenated with the
// depthwise x and y gradient responses of its 3x3 neighborhood, with
// zero padding at the grid edges.  Purely deterministic and
// side-effect-free.
type Perception struct {
	Angle float32 `def:"0" desc:"rotation angle in radians applied to the gradient kernel pair -- 0 uses the canonical Sobel filters"`

	kx, ky sobel.Kernel
}

func (pc *Perception) Defaults() {
	pc.SetAngle(0)
}

func (pc *Perception) Update() {
	pc.SetAngle(pc.Angle)
}

// SetAngle sets the gradient rotation angle and recomputes the rotated
// kernel pair.
func (pc *Perception) SetAngle(theta float32) {
	pc.Angle = theta
	pc.kx, pc.ky = sobel.Rotated(theta)
}

// NewFeatures returns a feature tensor shaped for the given grid:
// (Y, X, NFilters * Chan).
func NewFeatures(gd *Grid) *etensor.Float32 {
	return etensor.NewFloat32([]int{gd.Height(), gd.Width(), NFilters * gd.Chans()}, nil, []string{"Y", "X", "Feat"})
}

// CheckFeatures returns ErrShapeMismatch unless feat has shape
// (Y, X, NFilters * Chan) matching the grid.
func CheckFeatures(gd *Grid, feat *etensor.Float32) error {
	if feat.NumDims() != 3 || feat.Dim(0) != gd.Height() || feat.Dim(1) != gd.Width() || feat.Dim(2) != NFilters*gd.Chans() {
		return fmt.Errorf("%w: feature tensor len %d for %d x %d x %d grid", ErrShapeMismatch, feat.Len(), gd.Height(), gd.Width(), gd.Chans())
	}
	return nil
}

// Perceive fills feat with the per-cell feature vectors for the current
// grid state.  Feature layout per cell is filter-major: channels
// [0, C) are the raw state (identity), [C, 2C) the x gradient, and
// [2C, 3C) the y gradient, where C is the grid channel count.
func (pc *Perception) Perceive(gd *Grid, feat *etensor.Float32) error {
	if err := CheckFeatures(gd, feat); err != nil {
		return err
	}
	pc.PerceiveRows(gd, feat, 0, gd.Height())
	return nil
}

// PerceiveRows computes features for rows [ylo, yhi) only -- the
// shard that one worker goroutine handles.  Safe to call concurrently
// for disjoint row ranges.
func (pc *Perception) PerceiveRows(gd *Grid, feat *etensor.Float32, ylo, yhi int) {
	h, w, nc := gd.Height(), gd.Width(), gd.Chans()
	vals := gd.State.Values
	nf := NFilters * nc
	for y := ylo; y < yhi; y++ {
		for x := 0; x < w; x++ {
			so := (y*w + x) * nc
			fo := (y*w + x) * nf
			copy(feat.Values[fo:fo+nc], vals[so:so+nc])
			for c := 0; c < nc; c++ {
				feat.Values[fo+nc+c] = pc.kx.At(vals, h, w, nc, y, x, c)
				feat.Values[fo+2*nc+c] = pc.ky.At(vals, h, w, nc, y, x, c)
			}
		}
	}
}
