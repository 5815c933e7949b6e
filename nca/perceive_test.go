// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nca

import (
	"math/rand"
	"testing"

	"github.com/goki/mat32"
)

func randGrid(t *testing.T, h, w, nc int, seed int64) *Grid {
	t.Helper()
	gd, err := NewGrid(h, w, nc)
	if err != nil {
		t.Fatal(err)
	}
	rnd := rand.New(rand.NewSource(seed))
	for i := range gd.State.Values {
		gd.State.Values[i] = rnd.Float32()
	}
	return gd
}

func TestPerceiveIdentityBlock(t *testing.T) {
	gd := randGrid(t, 5, 4, 6, 1)
	var pc Perception
	pc.Defaults()
	feat := NewFeatures(gd)
	if err := pc.Perceive(gd, feat); err != nil {
		t.Fatal(err)
	}
	nc := gd.Chans()
	nf := NFilters * nc
	for y := 0; y < 5; y++ {
		for x := 0; x < 4; x++ {
			so := gd.Offset(y, x)
			fo := (y*4 + x) * nf
			CmprFloats(feat.Values[fo:fo+nc], gd.State.Values[so:so+nc], "identity block", t)
		}
	}
}

// TestPerceiveZeroPadding: border cells must perceive exactly as if the
// grid were embedded in a larger all-zero grid -- zero padding, not
// wraparound.
func TestPerceiveZeroPadding(t *testing.T) {
	small := randGrid(t, 4, 4, 4, 2)

	// embed at offset (2, 2) inside an 8x8 all-zero grid
	big, _ := NewGrid(8, 8, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			so := small.Offset(y, x)
			do := big.Offset(y+2, x+2)
			copy(big.State.Values[do:do+4], small.State.Values[so:so+4])
		}
	}

	var pc Perception
	pc.Defaults()
	fs := NewFeatures(small)
	fb := NewFeatures(big)
	if err := pc.Perceive(small, fs); err != nil {
		t.Fatal(err)
	}
	if err := pc.Perceive(big, fb); err != nil {
		t.Fatal(err)
	}

	nf := NFilters * 4
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			so := (y*4 + x) * nf
			bo := ((y+2)*8 + (x + 2)) * nf
			CmprFloats(fs.Values[so:so+nf], fb.Values[bo:bo+nf], "border vs embedded", t)
		}
	}
}

// TestPerceiveLocality: perturbing one cell changes features only
// within its 3x3 neighborhood.
func TestPerceiveLocality(t *testing.T) {
	gd := randGrid(t, 6, 6, 4, 3)
	var pc Perception
	pc.Defaults()
	before := NewFeatures(gd)
	if err := pc.Perceive(gd, before); err != nil {
		t.Fatal(err)
	}

	py, px := 2, 3
	gd.State.Values[gd.Offset(py, px)+1] += 5

	after := NewFeatures(gd)
	if err := pc.Perceive(gd, after); err != nil {
		t.Fatal(err)
	}

	nf := NFilters * 4
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			inNbhd := y >= py-1 && y <= py+1 && x >= px-1 && x <= px+1
			fo := (y*6 + x) * nf
			changed := false
			for i := 0; i < nf; i++ {
				if mat32.Abs(after.Values[fo+i]-before.Values[fo+i]) > difTol {
					changed = true
					break
				}
			}
			if changed && !inNbhd {
				t.Errorf("feature at (%d,%d) changed outside 3x3 neighborhood of (%d,%d)", y, x, py, px)
			}
		}
	}
	// the perturbed cell itself must change
	fo := (py*6 + px) * nf
	if mat32.Abs(after.Values[fo+1]-before.Values[fo+1]) <= difTol {
		t.Errorf("perturbed cell feature unchanged")
	}
}

// TestPerceiveRamp: a unit ramp along x has x-gradient exactly 1 and
// y-gradient exactly 0 at interior cells.
func TestPerceiveRamp(t *testing.T) {
	gd, _ := NewGrid(5, 5, 4)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			gd.State.Values[gd.Offset(y, x)] = float32(x)
		}
	}
	var pc Perception
	pc.Defaults()
	feat := NewFeatures(gd)
	if err := pc.Perceive(gd, feat); err != nil {
		t.Fatal(err)
	}
	nc := gd.Chans()
	nf := NFilters * nc
	for y := 1; y < 4; y++ {
		for x := 1; x < 4; x++ {
			fo := (y*5 + x) * nf
			gx := feat.Values[fo+nc]   // chan 0 x-gradient
			gy := feat.Values[fo+2*nc] // chan 0 y-gradient
			CmprFloats([]float32{gx, gy}, []float32{1, 0}, "interior ramp gradients", t)
		}
	}
}

func TestPerceiveShapeMismatch(t *testing.T) {
	gd, _ := NewGrid(4, 4, 4)
	other, _ := NewGrid(4, 4, 8)
	var pc Perception
	pc.Defaults()
	feat := NewFeatures(other)
	if err := pc.Perceive(gd, feat); err == nil {
		t.Errorf("expected shape mismatch error")
	}
}
