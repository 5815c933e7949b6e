// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nca

import (
	"fmt"

	"github.com/goki/mat32"
)

// Region selects a set of cells for damage injection.
type Region interface {
	// Bounds returns the inclusive cell bounding box (y0, x0)-(y1, x1)
	// of the region.
	Bounds() (y0, x0, y1, x1 int)

	// Contains reports whether cell (y, x) is inside the region.
	Contains(y, x int) bool
}

// Rect is an axis-aligned rectangular damage region: Height x Width
// cells with top-left corner at (Y, X).
type Rect struct {
	Y, X          int `desc:"top-left corner cell"`
	Height, Width int `desc:"region size in cells"`
}

func (r Rect) Bounds() (y0, x0, y1, x1 int) {
	return r.Y, r.X, r.Y + r.Height - 1, r.X + r.Width - 1
}

func (r Rect) Contains(y, x int) bool {
	return y >= r.Y && y < r.Y+r.Height && x >= r.X && x < r.X+r.Width
}

// Disk is a circular damage region: all cells within radius R of the
// center cell (Y, X).
type Disk struct {
	Y, X int     `desc:"center cell"`
	R    float32 `desc:"radius in cells"`
}

func (d Disk) Bounds() (y0, x0, y1, x1 int) {
	r := int(mat32.Ceil(d.R))
	return d.Y - r, d.X - r, d.Y + r, d.X + r
}

func (d Disk) Contains(y, x int) bool {
	dy := float32(y - d.Y)
	dx := float32(x - d.X)
	return dy*dy+dx*dx <= d.R*d.R
}

// Damage zeros every channel of every cell inside the region, leaving
// cells outside it untouched.  This is the external damage-injection
// operation used to probe regeneration -- it is invoked by the calling
// harness between ticks, never by the Engine itself.
// Returns ErrOutOfBounds, with the grid unchanged, if the region's
// bounding box does not lie fully inside the grid.
func Damage(gd *Grid, reg Region) error {
	y0, x0, y1, x1 := reg.Bounds()
	if y0 > y1 || x0 > x1 {
		return fmt.Errorf("%w: empty damage region", ErrInvalidDimension)
	}
	if !gd.InBounds(y0, x0) || !gd.InBounds(y1, x1) {
		return fmt.Errorf("%w: damage region (%d, %d)-(%d, %d) in %d x %d grid", ErrOutOfBounds, y0, x0, y1, x1, gd.Height(), gd.Width())
	}
	nc := gd.Chans()
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if !reg.Contains(y, x) {
				continue
			}
			off := gd.Offset(y, x)
			for c := 0; c < nc; c++ {
				gd.State.Values[off+c] = 0
			}
		}
	}
	return nil
}
