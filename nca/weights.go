// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nca

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// DenseReLUArch is the architecture tag for DenseRule bundles.
const DenseReLUArch = "DenseReLU"

// Bundle is the interchange format for trained update-rule parameters,
// produced by an external training process.  The Arch tag declares the
// rule family the weights belong to; MetaData can carry arbitrary
// information about the training run (e.g. target pattern, epochs).
type Bundle struct {
	Arch     string            `desc:"architecture tag, e.g. DenseReLU"`
	Chans    int               `desc:"number of state channels the rule was trained for"`
	Hidden   int               `desc:"number of hidden units"`
	MetaData map[string]string `desc:"optional metadata saved with the weights, e.g. training notes"`
	W1       []float32         `desc:"input-to-hidden weights, Hidden x NFilters*Chans, row-major"`
	B1       []float32         `desc:"hidden biases"`
	W2       []float32         `desc:"hidden-to-output weights, Chans x Hidden, row-major"`
	B2       []float32         `desc:"output biases"`
}

// SetWts sets this rule's parameters from a decoded Bundle.
// Returns ErrParamsIncompat if the bundle's architecture tag or weight
// shapes do not match -- the rule is left unchanged in that case.
func (dr *DenseRule) SetWts(bw *Bundle) error {
	if bw.Arch != DenseReLUArch {
		return fmt.Errorf("%w: arch %q, DenseRule requires %q", ErrParamsIncompat, bw.Arch, DenseReLUArch)
	}
	tmp := DenseRule{NChans: bw.Chans, NHidden: bw.Hidden, W1: bw.W1, B1: bw.B1, W2: bw.W2, B2: bw.B2}
	if err := tmp.Check(); err != nil {
		return err
	}
	dr.NChans = bw.Chans
	dr.NHidden = bw.Hidden
	dr.Alloc()
	copy(dr.W1, bw.W1)
	copy(dr.B1, bw.B1)
	copy(dr.W2, bw.W2)
	copy(dr.B2, bw.B2)
	return nil
}

// Wts returns a Bundle copy of this rule's current parameters.
func (dr *DenseRule) Wts() *Bundle {
	bw := &Bundle{Arch: DenseReLUArch, Chans: dr.NChans, Hidden: dr.NHidden}
	bw.W1 = append([]float32(nil), dr.W1...)
	bw.B1 = append([]float32(nil), dr.B1...)
	bw.W2 = append([]float32(nil), dr.W2...)
	bw.B2 = append([]float32(nil), dr.B2...)
	return bw
}

// WriteWtsJSON writes the rule parameters in a JSON text format.
func (dr *DenseRule) WriteWtsJSON(w io.Writer) error {
	en := json.NewEncoder(w)
	en.SetIndent("", "\t")
	return en.Encode(dr.Wts())
}

// ReadWtsJSON reads rule parameters from a JSON-formatted stream.
// Reads the entire stream into a temporary Bundle and then applies it,
// so a decode or compatibility error leaves the rule unchanged.
func (dr *DenseRule) ReadWtsJSON(r io.Reader) error {
	bw := &Bundle{}
	de := json.NewDecoder(r)
	if err := de.Decode(bw); err != nil {
		return err
	}
	return dr.SetWts(bw)
}

// SaveWtsJSON saves rule parameters to a JSON-formatted file.
// If filename has .gz extension, then file is gzip compressed.
func (dr *DenseRule) SaveWtsJSON(filename string) error {
	fp, err := os.Create(filename)
	defer fp.Close()
	if err != nil {
		log.Println(err)
		return err
	}
	ext := filepath.Ext(filename)
	if ext == ".gz" {
		gzr := gzip.NewWriter(fp)
		defer gzr.Close()
		return dr.WriteWtsJSON(gzr)
	}
	return dr.WriteWtsJSON(fp)
}

// OpenWtsJSON opens rule parameters from a JSON-formatted file.
// If filename has .gz extension, then file is gzip uncompressed.
func (dr *DenseRule) OpenWtsJSON(filename string) error {
	fp, err := os.Open(filename)
	defer fp.Close()
	if err != nil {
		log.Println(err)
		return err
	}
	ext := filepath.Ext(filename)
	if ext == ".gz" {
		gzr, err := gzip.NewReader(fp)
		if err != nil {
			log.Println(err)
			return err
		}
		defer gzr.Close()
		return dr.ReadWtsJSON(gzr)
	}
	return dr.ReadWtsJSON(fp)
}
