// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nca

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/emer/emergent/env"
	"github.com/emer/etable/etensor"
)

// StepParams are the configuration constants for the step engine,
// set before a run and immutable during it.
type StepParams struct {
	FireRate float32 `def:"0.5" min:"0" max:"1" desc:"probability that a given cell applies its computed delta on a tick -- the stochastic asynchronous update that breaks global synchrony"`
	AliveThr float32 `def:"0.1" min:"0" desc:"alpha threshold for the 3x3 neighborhood max-pool alive test"`
	StepSize float32 `def:"1" desc:"scalar multiplying the computed delta before it is added to the state"`
}

func (sp *StepParams) Update() {
}

func (sp *StepParams) Defaults() {
	sp.FireRate = 0.5
	sp.AliveThr = 0.1
	sp.StepSize = 1
	sp.Update()
}

// Engine orchestrates the simulation: it owns the Grid and applies the
// update rule one tick at a time.  One tick is:
// pre-alive mask -> perceive -> rule delta -> stochastic fire mask ->
// masked apply -> post-alive mask -> zero dead cells.
// Ticks are strictly sequential; a tick either completes in full or
// fails before any grid mutation.  Exactly one Engine drives a Grid at
// a time.
type Engine struct {
	Grid    *Grid      `desc:"the grid state this engine drives -- single-owner mutable resource"`
	Rule    Rule       `desc:"the learned update rule -- opaque, externally trained"`
	Prm     StepParams `view:"inline" desc:"step configuration parameters"`
	Perc    Perception `view:"inline" desc:"fixed perception filters"`
	Tick    env.Ctr    `view:"inline" desc:"tick counter, incremented once per completed Step"`
	RndSeed int64      `desc:"random seed for the fire-mask draws -- fixed seed gives bit-identical runs"`
	Threads int        `desc:"number of goroutines for row-parallel perception and masking (<= 1 = serial) -- results are identical regardless of thread count"`

	rnd       *rand.Rand
	feat      *etensor.Float32
	dx        *etensor.Float32
	preAlive  []float32
	postAlive []float32
	fire      []float32
}

// NewEngine returns an engine driving the given grid with the given
// rule, with default parameters, built buffers, and initialized state.
// Returns ErrParamsIncompat if the rule's channel count does not match
// the grid.
func NewEngine(gd *Grid, rule Rule) (*Engine, error) {
	en := &Engine{Grid: gd}
	en.Defaults()
	if err := en.SetRule(rule); err != nil {
		return nil, err
	}
	en.Build()
	en.Init()
	return en, nil
}

func (en *Engine) Defaults() {
	en.Prm.Defaults()
	en.Perc.Defaults()
	en.Tick.Scale = env.Tick
}

// SetRule sets the update rule, checking that its channel count matches
// the grid (ErrParamsIncompat if not).  The grid is not touched.
func (en *Engine) SetRule(rule Rule) error {
	if rule.Chans() != en.Grid.Chans() {
		return fmt.Errorf("%w: rule has %d chans, grid has %d", ErrParamsIncompat, rule.Chans(), en.Grid.Chans())
	}
	en.Rule = rule
	return nil
}

// Build allocates the scratch tensors to match the current grid
// dimensions.  Must be called again if the grid is replaced.
func (en *Engine) Build() {
	gd := en.Grid
	n := gd.Height() * gd.Width()
	en.feat = NewFeatures(gd)
	en.dx = etensor.NewFloat32([]int{gd.Height(), gd.Width(), gd.Chans()}, nil, []string{"Y", "X", "Chan"})
	en.preAlive = make([]float32, n)
	en.postAlive = make([]float32, n)
	en.fire = make([]float32, n)
}

// Init resets the tick counter and re-seeds the random source from
// RndSeed.  The grid state itself is not modified.
func (en *Engine) Init() {
	en.Tick.Init()
	en.rnd = rand.New(rand.NewSource(en.RndSeed))
}

// Reset replaces the grid with a fresh all-zero grid of the given
// dimensions and rebuilds the scratch buffers.  The rule must still
// match the new channel count.
func (en *Engine) Reset(height, width, chans int) error {
	gd, err := NewGrid(height, width, chans)
	if err != nil {
		return err
	}
	if en.Rule != nil && en.Rule.Chans() != chans {
		return fmt.Errorf("%w: rule has %d chans, new grid has %d", ErrParamsIncompat, en.Rule.Chans(), chans)
	}
	en.Grid = gd
	en.Build()
	en.Init()
	return nil
}

// aliveMask fills dst with 1 for every cell whose 3x3 alpha
// neighborhood max exceeds AliveThr, else 0.  Out-of-grid neighbors
// count as zero.
func (en *Engine) aliveMask(dst []float32) {
	gd := en.Grid
	h, w := gd.Height(), gd.Width()
	runRows(h, en.Threads, func(ylo, yhi int) {
		for y := ylo; y < yhi; y++ {
			for x := 0; x < w; x++ {
				if gd.AliveAt(y, x, en.Prm.AliveThr) {
					dst[y*w+x] = 1
				} else {
					dst[y*w+x] = 0
				}
			}
		}
	})
}

// Step advances the simulation by one tick.  On error (shape or
// parameter mismatch) the grid is left exactly as it was -- all
// validation happens before any mutation.  The per-cell fire and alive
// masking is the intended partial-update mechanism and is not an error
// condition.
func (en *Engine) Step() error {
	gd := en.Grid
	if en.Rule == nil {
		return fmt.Errorf("%w: no update rule set", ErrParamsIncompat)
	}
	if en.Rule.Chans() != gd.Chans() {
		return fmt.Errorf("%w: rule has %d chans, grid has %d", ErrParamsIncompat, en.Rule.Chans(), gd.Chans())
	}
	if err := CheckFeatures(gd, en.feat); err != nil {
		return err
	}
	h, w, nc := gd.Height(), gd.Width(), gd.Chans()
	if en.dx.Len() != h*w*nc {
		return fmt.Errorf("%w: delta tensor len %d != %d", ErrShapeMismatch, en.dx.Len(), h*w*nc)
	}

	// 1. pre-update alive mask from current alpha
	en.aliveMask(en.preAlive)

	// 2-3. perceive and compute the rule delta -- scratch only, no
	// grid mutation yet, so an error here aborts the tick cleanly
	runRows(h, en.Threads, func(ylo, yhi int) {
		en.Perc.PerceiveRows(gd, en.feat, ylo, yhi)
	})
	if err := en.Rule.Apply(en.feat, en.dx); err != nil {
		return err
	}

	// 4. stochastic fire mask: independent Bernoulli draw per cell, in
	// fixed row-major order so a fixed seed replays exactly
	for i := range en.fire {
		if en.rnd.Float32() < en.Prm.FireRate {
			en.fire[i] = 1
		} else {
			en.fire[i] = 0
		}
	}

	// 5. masked state update, mask values broadcast across channels
	vals := gd.State.Values
	for i := 0; i < h*w; i++ {
		m := en.Prm.StepSize * en.fire[i] * en.preAlive[i]
		if m == 0 {
			continue
		}
		off := i * nc
		for c := 0; c < nc; c++ {
			vals[off+c] += m * en.dx.Values[off+c]
		}
	}

	// 6-7. post-update alive mask; dead cells are fully reset to zero
	// so they carry no stale hidden-channel state forward
	en.aliveMask(en.postAlive)
	for i := 0; i < h*w; i++ {
		if en.postAlive[i] != 0 {
			continue
		}
		off := i * nc
		for c := 0; c < nc; c++ {
			vals[off+c] = 0
		}
	}

	en.Tick.Incr()
	return nil
}

// Evolve runs n ticks, stopping at the first error.
func (en *Engine) Evolve(n int) error {
	for i := 0; i < n; i++ {
		if err := en.Step(); err != nil {
			return err
		}
	}
	return nil
}

// runRows partitions rows [0, h) across nt goroutines running fun on
// disjoint shards, waiting for all to complete.
func runRows(h, nt int, fun func(ylo, yhi int)) {
	if nt <= 1 {
		fun(0, h)
		return
	}
	var wg sync.WaitGroup
	per := (h + nt - 1) / nt
	for ylo := 0; ylo < h; ylo += per {
		yhi := ylo + per
		if yhi > h {
			yhi = h
		}
		wg.Add(1)
		go func(ylo, yhi int) {
			defer wg.Done()
			fun(ylo, yhi)
		}(ylo, yhi)
	}
	wg.Wait()
}
