// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nca

import "github.com/emer/etable/minmax"

// AliveCount returns the number of alive cells: cells whose 3x3 alpha
// neighborhood max exceeds thr.
func (gd *Grid) AliveCount(thr float32) int {
	n := 0
	for y := 0; y < gd.Height(); y++ {
		for x := 0; x < gd.Width(); x++ {
			if gd.AliveAt(y, x, thr) {
				n++
			}
		}
	}
	return n
}

// AliveCountRegion returns the number of alive cells within the given
// region's bounding box that the region contains.
func (gd *Grid) AliveCountRegion(reg Region, thr float32) int {
	y0, x0, y1, x1 := reg.Bounds()
	n := 0
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if gd.InBounds(y, x) && reg.Contains(y, x) && gd.AliveAt(y, x, thr) {
				n++
			}
		}
	}
	return n
}

// AlphaStats returns the average and max alpha value over all cells.
func (gd *Grid) AlphaStats() minmax.AvgMax32 {
	var am minmax.AvgMax32
	am.Init()
	for y := 0; y < gd.Height(); y++ {
		for x := 0; x < gd.Width(); x++ {
			am.UpdateVal(gd.Alpha(y, x), y*gd.Width()+x)
		}
	}
	am.CalcAvg()
	return am
}
