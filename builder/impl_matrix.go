// SPDX-License-Identifier: MIT
// Package: presamples/builder
//
// impl_matrix.go - matrix-bound resources.
//
// Layout of one matrix resource k:
//   {id}.{k}.indices.npy  structured table, one record per matrix cell
//   {id}.{k}.samples.npy  float64 array, Rows = len(records), Cols = samples

package builder

import (
	"path/filepath"

	"github.com/katalvlaran/presamples/manifest"
	"github.com/katalvlaran/presamples/npy"
)

// Canonical dictionary and matrix names.
const (
	ProductDict    = "_product_dict"
	ActivityDict   = "_activity_dict"
	BiosphereDict  = "_biosphere_dict"
	TechnosphereMx = "technosphere_matrix"
	BiosphereMx    = "biosphere_matrix"
	CharacterizeMx = "characterization_matrix"
)

// Axis names the raw and position fields of one axis and its dictionary.
type Axis struct {
	From string
	To   string
	Dict string
}

// MatrixSpec describes a generic matrix resource.
// Fields are the record fields in order with their dtypes; Records holds one
// row per cell, values in Fields order. Samples holds one row per record.
type MatrixSpec struct {
	Kind    string
	Matrix  string
	Fields  []string
	Types   []npy.Dtype
	Row     Axis
	Col     *Axis
	Records [][]int64
	Samples [][]float64
}

// Matrix writes a generic matrix resource.
func Matrix(spec MatrixSpec) Constructor {
	return func(cfg *builderConfig) error {
		return writeMatrix(cfg, "Matrix", spec)
	}
}

// TechnosphereExchange is one (input, output, type) record with its samples.
type TechnosphereExchange struct {
	Input   int64
	Output  int64
	Type    int64
	Samples []float64
}

// Technosphere writes a technosphere resource: fields input,output,row,col
// (u4) and type (u1); rows resolve through _product_dict, columns through
// _activity_dict.
func Technosphere(exchanges ...TechnosphereExchange) Constructor {
	return func(cfg *builderConfig) error {
		spec := MatrixSpec{
			Kind:   manifest.KindTechnosphere,
			Matrix: TechnosphereMx,
			Fields: []string{"input", "output", "row", "col", manifest.TypeField},
			Types:  []npy.Dtype{npy.Uint32, npy.Uint32, npy.Uint32, npy.Uint32, npy.Uint8},
			Row:    Axis{From: "input", To: "row", Dict: ProductDict},
			Col:    &Axis{From: "output", To: "col", Dict: ActivityDict},
		}
		for _, e := range exchanges {
			spec.Records = append(spec.Records, []int64{e.Input, e.Output, e.Input, e.Output, e.Type})
			spec.Samples = append(spec.Samples, e.Samples)
		}
		return writeMatrix(cfg, "Technosphere", spec)
	}
}

// Exchange is one (input, output) record with its samples.
type Exchange struct {
	Input   int64
	Output  int64
	Samples []float64
}

// Biosphere writes a biosphere resource: rows through _biosphere_dict,
// columns through _activity_dict.
func Biosphere(exchanges ...Exchange) Constructor {
	return func(cfg *builderConfig) error {
		spec := MatrixSpec{
			Kind:   "biosphere",
			Matrix: BiosphereMx,
			Fields: []string{"input", "output", "row", "col"},
			Types:  []npy.Dtype{npy.Uint32, npy.Uint32, npy.Uint32, npy.Uint32},
			Row:    Axis{From: "input", To: "row", Dict: BiosphereDict},
			Col:    &Axis{From: "output", To: "col", Dict: ActivityDict},
		}
		for _, e := range exchanges {
			spec.Records = append(spec.Records, []int64{e.Input, e.Output, e.Input, e.Output})
			spec.Samples = append(spec.Samples, e.Samples)
		}
		return writeMatrix(cfg, "Biosphere", spec)
	}
}

// Factor is one characterization factor of a flow with its samples.
type Factor struct {
	Flow    int64
	Samples []float64
}

// Characterization writes a diagonal resource: fields flow,row; rows through
// _biosphere_dict.
func Characterization(factors ...Factor) Constructor {
	return func(cfg *builderConfig) error {
		spec := MatrixSpec{
			Kind:   "cf",
			Matrix: CharacterizeMx,
			Fields: []string{"flow", "row"},
			Types:  []npy.Dtype{npy.Uint32, npy.Uint32},
			Row:    Axis{From: "flow", To: "row", Dict: BiosphereDict},
		}
		for _, f := range factors {
			spec.Records = append(spec.Records, []int64{f.Flow, f.Flow})
			spec.Samples = append(spec.Samples, f.Samples)
		}
		return writeMatrix(cfg, "Characterization", spec)
	}
}

// writeMatrix validates spec, writes both arrays and appends the resource.
func writeMatrix(cfg *builderConfig, method string, spec MatrixSpec) error {
	if spec.Kind == "" || spec.Matrix == "" || len(spec.Fields) == 0 || len(spec.Records) == 0 {
		return builderErrorf(method, ErrEmptyResource)
	}
	if len(spec.Records) != len(spec.Samples) {
		return builderErrorf(method, ErrShapeMismatch)
	}
	cols, err := sampleWidth(spec.Samples)
	if err != nil {
		return builderErrorf(method, err)
	}

	dtype, err := npy.Structure(spec.Fields, spec.Types)
	if err != nil {
		return builderErrorf(method, err)
	}
	table, err := npy.NewRecords(dtype, len(spec.Records))
	if err != nil {
		return builderErrorf(method, err)
	}
	for i, rec := range spec.Records {
		if len(rec) != len(spec.Fields) {
			return builderErrorf(method, ErrShapeMismatch)
		}
		for f, name := range spec.Fields {
			table.Column(name)[i] = rec[f]
		}
	}

	stem := cfg.nextStem()
	indices := stem + ".indices.npy"
	samplesFile := stem + ".samples.npy"
	if err := npy.WriteRecords(filepath.Join(cfg.dir, indices), table); err != nil {
		return builderErrorf(method, err)
	}
	if err := npy.WriteArray(filepath.Join(cfg.dir, samplesFile), len(spec.Samples), cols, flatten(spec.Samples)); err != nil {
		return builderErrorf(method, err)
	}

	r := manifest.Resource{
		Type:         spec.Kind,
		Matrix:       spec.Matrix,
		Profile:      "data-resource",
		RowFromLabel: spec.Row.From,
		RowToLabel:   spec.Row.To,
		RowDict:      spec.Row.Dict,
		Indices:      &manifest.FileRef{Filepath: indices, Format: "npy", Mediatype: "application/octet-stream"},
		Samples: &manifest.SamplesRef{
			Filepath:  samplesFile,
			Format:    "npy",
			Mediatype: "application/octet-stream",
			Shape:     []int{len(spec.Samples), cols},
		},
	}
	if spec.Col != nil {
		r.ColFromLabel, r.ColToLabel, r.ColDict = spec.Col.From, spec.Col.To, spec.Col.Dict
	}
	cfg.resources = append(cfg.resources, r)

	return nil
}

// sampleWidth returns the common row width; rows must be non-empty and equal.
func sampleWidth(rows [][]float64) (int, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, ErrEmptyResource
	}
	w := len(rows[0])
	for _, r := range rows[1:] {
		if len(r) != w {
			return 0, ErrShapeMismatch
		}
	}

	return w, nil
}

// flatten returns rows in C order.
func flatten(rows [][]float64) []float64 {
	out := make([]float64, 0, len(rows)*len(rows[0]))
	for _, r := range rows {
		out = append(out, r...)
	}

	return out
}
