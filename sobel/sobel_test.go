// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sobel

import (
	"testing"

	"github.com/goki/mat32"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = float32(1.0e-6)

func CmprFloats(got, trg []float32, msg string, t *testing.T) {
	t.Helper()
	for i := range got {
		dif := mat32.Abs(got[i] - trg[i])
		if dif > difTol {
			t.Errorf("%v err: idx: %v, got: %v, trg: %v, dif: %v\n", msg, i, got[i], trg[i], dif)
		}
	}
}

func TestKernelConstants(t *testing.T) {
	// gradient kernels sum to zero so a uniform field has no response
	var sx, sy float32
	for i := 0; i < 9; i++ {
		sx += GradX[i]
		sy += GradY[i]
	}
	CmprFloats([]float32{sx, sy}, []float32{0, 0}, "gradient kernel sums", t)

	// GradY is the transpose of GradX
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if GradY[r*3+c] != GradX[c*3+r] {
				t.Errorf("GradY[%d,%d] = %v != GradX[%d,%d] = %v", r, c, GradY[r*3+c], c, r, GradX[c*3+r])
			}
		}
	}

	if Identity[4] != 1 {
		t.Errorf("Identity center should be 1, got %v", Identity[4])
	}
}

func TestRotated(t *testing.T) {
	kx, ky := Rotated(0)
	CmprFloats(kx[:], GradX[:], "Rotated(0) x", t)
	CmprFloats(ky[:], GradY[:], "Rotated(0) y", t)

	// quarter turn maps x gradient onto -y, y onto x
	kx, ky = Rotated(mat32.Pi / 2)
	for i := 0; i < 9; i++ {
		if mat32.Abs(kx[i]+GradY[i]) > difTol {
			t.Errorf("Rotated(pi/2) kx[%d] = %v, want %v", i, kx[i], -GradY[i])
		}
		if mat32.Abs(ky[i]-GradX[i]) > difTol {
			t.Errorf("Rotated(pi/2) ky[%d] = %v, want %v", i, ky[i], GradX[i])
		}
	}
}

func TestAtRamp(t *testing.T) {
	// single-channel 5x5 grid with a unit ramp along x: value = x
	h, w, nc := 5, 5, 1
	vals := make([]float32, h*w*nc)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			vals[(y*w+x)*nc] = float32(x)
		}
	}
	// interior cells see a gradient response of exactly 1
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := GradX.At(vals, h, w, nc, y, x, 0)
			if mat32.Abs(gx-1) > difTol {
				t.Errorf("interior GradX at (%d,%d) = %v, want 1", y, x, gx)
			}
			gy := GradY.At(vals, h, w, nc, y, x, 0)
			if mat32.Abs(gy) > difTol {
				t.Errorf("interior GradY at (%d,%d) = %v, want 0", y, x, gy)
			}
		}
	}
}

func TestAtZeroPadding(t *testing.T) {
	// uniform field: interior response is 0, borders see the missing
	// zero-valued neighbors
	h, w, nc := 4, 4, 1
	v := float32(2)
	vals := make([]float32, h*w*nc)
	for i := range vals {
		vals[i] = v
	}
	gx := GradX.At(vals, h, w, nc, 1, 1, 0)
	if mat32.Abs(gx) > difTol {
		t.Errorf("interior uniform GradX = %v, want 0", gx)
	}
	// left edge: the -1/8, -2/8, -1/8 column falls off the grid, so the
	// positive column contributes (0.125+0.25+0.125)*v = 0.5*v
	gx = GradX.At(vals, h, w, nc, 1, 0, 0)
	if mat32.Abs(gx-0.5*v) > difTol {
		t.Errorf("left edge uniform GradX = %v, want %v", gx, 0.5*v)
	}
	// right edge is the mirror image
	gx = GradX.At(vals, h, w, nc, 1, w-1, 0)
	if mat32.Abs(gx+0.5*v) > difTol {
		t.Errorf("right edge uniform GradX = %v, want %v", gx, -0.5*v)
	}
}
