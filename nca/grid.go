// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nca

import (
	"fmt"

	"github.com/emer/etable/etensor"
)

// AlphaChan is the index of the alpha channel within each cell's state
// vector.  Channels 0-2 are RGB, channel 3 is alpha, and any further
// channels are hidden state used only by the update rule.
const AlphaChan = 3

// VisChans is the number of visible (RGBA) channels.
const VisChans = 4

// Grid owns the mutable cell state for one simulation: a (Y, X, Chan)
// float32 tensor, mutated in place once per tick by the Engine.
// Exactly one Engine drives a Grid at a time -- concurrent readers must
// use Snapshot or ReadRegion copies rather than holding a live
// reference.
type Grid struct {
	State etensor.Float32 `desc:"cell state tensor, shape (Y, X, Chan), row-major"`
}

// NewGrid returns an all-zero grid of the given dimensions.
// Returns ErrInvalidDimension if height, width, or chans is not
// positive, or if chans does not include the 4 visible RGBA channels.
func NewGrid(height, width, chans int) (*Grid, error) {
	if height <= 0 || width <= 0 || chans <= 0 {
		return nil, fmt.Errorf("%w: %d x %d x %d", ErrInvalidDimension, height, width, chans)
	}
	if chans < VisChans {
		return nil, fmt.Errorf("%w: %d chans < %d visible (RGBA)", ErrInvalidDimension, chans, VisChans)
	}
	gd := &Grid{}
	gd.State.SetShape([]int{height, width, chans}, nil, []string{"Y", "X", "Chan"})
	return gd, nil
}

// Height returns the number of grid rows.
func (gd *Grid) Height() int { return gd.State.Dim(0) }

// Width returns the number of grid columns.
func (gd *Grid) Width() int { return gd.State.Dim(1) }

// Chans returns the number of channels per cell.
func (gd *Grid) Chans() int { return gd.State.Dim(2) }

// InBounds reports whether (y, x) is a valid cell position.
func (gd *Grid) InBounds(y, x int) bool {
	return y >= 0 && y < gd.Height() && x >= 0 && x < gd.Width()
}

// Offset returns the index of cell (y, x)'s channel 0 in State.Values.
func (gd *Grid) Offset(y, x int) int {
	return (y*gd.Width() + x) * gd.Chans()
}

// Alpha returns the alpha channel value at (y, x).
func (gd *Grid) Alpha(y, x int) float32 {
	return gd.State.Values[gd.Offset(y, x)+AlphaChan]
}

// Seed overwrites the full channel vector at one position.
// Returns ErrOutOfBounds if (y, x) lies outside the grid, or
// ErrShapeMismatch if vec does not have one value per channel.
func (gd *Grid) Seed(y, x int, vec []float32) error {
	if !gd.InBounds(y, x) {
		return fmt.Errorf("%w: seed at (%d, %d) in %d x %d grid", ErrOutOfBounds, y, x, gd.Height(), gd.Width())
	}
	if len(vec) != gd.Chans() {
		return fmt.Errorf("%w: seed vector len %d != %d chans", ErrShapeMismatch, len(vec), gd.Chans())
	}
	copy(gd.State.Values[gd.Offset(y, x):], vec)
	return nil
}

// SeedDefault zeros the grid and seeds the center cell with alpha and
// all hidden channels set to 1 -- the standard single-seed start state.
func (gd *Grid) SeedDefault() {
	gd.State.SetZeros()
	off := gd.Offset(gd.Height()/2, gd.Width()/2)
	for c := AlphaChan; c < gd.Chans(); c++ {
		gd.State.Values[off+c] = 1
	}
}

// ReadRegion returns a copy of the sub-rectangle of height x width
// cells with top-left corner at (y, x), all channels: a read-only
// snapshot safe to use while the simulation keeps running.
// Returns ErrOutOfBounds if the rectangle does not lie fully inside the
// grid.
func (gd *Grid) ReadRegion(y, x, height, width int) (*etensor.Float32, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("%w: region size %d x %d", ErrInvalidDimension, height, width)
	}
	if !gd.InBounds(y, x) || !gd.InBounds(y+height-1, x+width-1) {
		return nil, fmt.Errorf("%w: region (%d, %d) %d x %d in %d x %d grid", ErrOutOfBounds, y, x, height, width, gd.Height(), gd.Width())
	}
	nc := gd.Chans()
	out := etensor.NewFloat32([]int{height, width, nc}, nil, []string{"Y", "X", "Chan"})
	for ry := 0; ry < height; ry++ {
		src := gd.Offset(y+ry, x)
		dst := ry * width * nc
		copy(out.Values[dst:dst+width*nc], gd.State.Values[src:src+width*nc])
	}
	return out, nil
}

// Snapshot returns a copy of the full grid state.
func (gd *Grid) Snapshot() *etensor.Float32 {
	out := etensor.NewFloat32([]int{gd.Height(), gd.Width(), gd.Chans()}, nil, []string{"Y", "X", "Chan"})
	copy(out.Values, gd.State.Values)
	return out
}

// AliveAt reports whether the cell at (y, x) is alive: its own alpha,
// or the alpha of any of its 8 neighbors, exceeds thr.  Out-of-grid
// neighbors count as zero.  This is always derived from the current
// alpha values, never cached.
func (gd *Grid) AliveAt(y, x int, thr float32) bool {
	for dy := -1; dy <= 1; dy++ {
		yy := y + dy
		if yy < 0 || yy >= gd.Height() {
			continue
		}
		for dx := -1; dx <= 1; dx++ {
			xx := x + dx
			if xx < 0 || xx >= gd.Width() {
				continue
			}
			if gd.Alpha(yy, xx) > thr {
				return true
			}
		}
	}
	return false
}
