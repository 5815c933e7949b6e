// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package sobel provides the fixed 3x3 perception kernels for the nca
simulation engine: the identity filter plus the horizontal and vertical
Sobel gradient filters, scaled by 1/8 so gradient responses stay in the
same range as the raw state values.

These kernels are constants of the system: they are never trained and
never mutated.  They are applied depthwise (independently per channel),
which keeps the learned update rule translation-equivariant across the
grid.
*/
package sobel

import "github.com/goki/mat32"

// Kernel is a 3x3 convolution kernel, stored row-major.
type Kernel [9]float32

var (
	// Identity passes through the center cell value unchanged.
	Identity = Kernel{
		0, 0, 0,
		0, 1, 0,
		0, 0, 0,
	}

	// GradX is the horizontal Sobel gradient filter, scaled by 1/8.
	GradX = Kernel{
		-0.125, 0, 0.125,
		-0.25, 0, 0.25,
		-0.125, 0, 0.125,
	}

	// GradY is the vertical Sobel gradient filter: the transpose of GradX.
	GradY = Kernel{
		-0.125, -0.25, -0.125,
		0, 0, 0,
		0.125, 0.25, 0.125,
	}
)

// Rotated returns the gradient kernel pair rotated by angle theta
// (radians): kx = cos(theta)*GradX - sin(theta)*GradY,
// ky = sin(theta)*GradX + cos(theta)*GradY.
// Theta = 0 returns GradX, GradY unchanged.
func Rotated(theta float32) (kx, ky Kernel) {
	c, s := mat32.Cos(theta), mat32.Sin(theta)
	for i := range kx {
		kx[i] = c*GradX[i] - s*GradY[i]
		ky[i] = s*GradX[i] + c*GradY[i]
	}
	return
}

// At applies the kernel centered at cell (y, x) over channel c of a
// row-major (Y, X, Chan) tensor with the given dimensions.
// Out-of-grid neighbors contribute zero (zero padding, not wraparound).
func (k *Kernel) At(vals []float32, h, w, nchan, y, x, c int) float32 {
	var sum float32
	ki := 0
	for dy := -1; dy <= 1; dy++ {
		yy := y + dy
		for dx := -1; dx <= 1; dx++ {
			xx := x + dx
			kv := k[ki]
			ki++
			if kv == 0 || yy < 0 || yy >= h || xx < 0 || xx >= w {
				continue
			}
			sum += kv * vals[(yy*w+xx)*nchan+c]
		}
	}
	return sum
}
