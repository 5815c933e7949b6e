// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nca

import "errors"

// The simulation has no transient failure modes -- every error below
// indicates a programmer or configuration problem, is surfaced directly
// to the caller, and is never retried.
var (
	// ErrInvalidDimension is returned when creating a Grid with a
	// non-positive height, width, or channel count (or fewer than the
	// 4 visible RGBA channels).
	ErrInvalidDimension = errors.New("nca: invalid grid dimension")

	// ErrOutOfBounds is returned when seeding, reading, or damaging
	// positions outside the grid.  The grid is left unchanged.
	ErrOutOfBounds = errors.New("nca: position out of bounds")

	// ErrShapeMismatch is returned when a perception or update-rule
	// tensor does not match the grid's channel layout.  The tick aborts
	// before any mutation.
	ErrShapeMismatch = errors.New("nca: tensor shape mismatch")

	// ErrParamsIncompat is returned when a supplied parameter bundle
	// does not match the architecture the update rule expects, or when
	// a rule's channel count does not match the grid.  Raised at load /
	// configuration time, before any tick runs.
	ErrParamsIncompat = errors.New("nca: parameter bundle incompatible")
)
