// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package nca is the overall repository for the neural cellular automaton
(NCA) simulation engine implemented in the Go language (golang).

The engine maintains a 2D grid of multi-channel cell states and
repeatedly applies a local, learned update rule, so that patterns grow,
persist, and regenerate after damage.  Training of the update-rule
parameters is external to this repository -- the engine consumes a
trained parameter bundle and provides the forward simulation only.

This top-level of the repository has no functional code -- everything is
organized into the following sub-repositories:

* nca: the core simulation engine: Grid state, Perception, the update
Rule interface and standard dense implementation, the step Engine with
stochastic firing and alive masking, and damage injection.

* sobel: the fixed (non-learned) 3x3 perception kernels: identity plus
the horizontal and vertical Sobel gradient filters.

* examples: these compile into runnable programs.  examples/growing runs
a headless simulation from a single seed cell, logging per-tick
statistics, with optional damage injection mid-run.
*/
package nca
