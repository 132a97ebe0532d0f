// SPDX-License-Identifier: MIT

// Package manifest decodes and validates the datapackage.json file at the
// root of every presample package.
//
// Only the fields consumed by the loader are modeled. Unknown keys are
// ignored. Validation is declarative (go-playground/validator struct tags)
// plus a custom "relpath" rule keeping file references inside the package.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FileName is the manifest file name inside a package directory.
const FileName = "datapackage.json"

// KindTechnosphere is the resource type whose values get the exchange sign fix-up.
const KindTechnosphere = "technosphere"

// TypeField names the exchange type field of technosphere identifier tables.
const TypeField = "type"

// Exchange types stored in TypeField.
const (
	TypeProduction int64 = iota
	TypeTechnosphere
	TypeBiosphere
	TypeSubstitution
)

// ErrManifest indicates a missing, unreadable, undecodable or invalid manifest.
var ErrManifest = errors.New("manifest: invalid package manifest")

// manifestValidate is the shared validator instance; custom rules are
// registered once in init.
var manifestValidate *validator.Validate

func init() {
	manifestValidate = validator.New()
	_ = manifestValidate.RegisterValidation("relpath", validateRelPath)
}

// validateRelPath accepts local, relative, non-escaping paths.
func validateRelPath(fl validator.FieldLevel) bool {
	p := fl.Field().String()
	return p != "" && filepath.IsLocal(p)
}

// FileRef points at a file inside the package directory.
type FileRef struct {
	Filepath  string `json:"filepath" validate:"required,relpath"`
	MD5       string `json:"md5,omitempty"`
	Format    string `json:"format,omitempty"`
	Mediatype string `json:"mediatype,omitempty"`
}

// SamplesRef is a FileRef to a 2-D sample array with its declared shape.
type SamplesRef struct {
	Filepath  string `json:"filepath" validate:"required,relpath"`
	MD5       string `json:"md5,omitempty"`
	Format    string `json:"format,omitempty"`
	Mediatype string `json:"mediatype,omitempty"`
	Shape     []int  `json:"shape" validate:"len=2,dive,gte=0"`
}

// Resource is one entry of the manifest's resource list.
//
// Matrix-bound resources carry Matrix (plus labels, Indices and Samples).
// Named-parameter resources carry Names (plus Samples). Anything else is ignored.
type Resource struct {
	Type    string `json:"type,omitempty" validate:"required_with=Matrix"`
	Matrix  string `json:"matrix,omitempty"`
	Label   string `json:"label,omitempty"`
	Profile string `json:"profile,omitempty"`

	RowFromLabel string `json:"row from label,omitempty" validate:"required_with=Matrix"`
	RowToLabel   string `json:"row to label,omitempty" validate:"required_with=Matrix"`
	RowDict      string `json:"row dict,omitempty" validate:"required_with=Matrix"`
	ColFromLabel string `json:"col from label,omitempty" validate:"required_with=ColDict ColToLabel"`
	ColToLabel   string `json:"col to label,omitempty" validate:"required_with=ColDict ColFromLabel"`
	ColDict      string `json:"col dict,omitempty" validate:"required_with=ColFromLabel ColToLabel"`

	Indices *FileRef    `json:"indices,omitempty" validate:"required_with=Matrix"`
	Samples *SamplesRef `json:"samples,omitempty" validate:"required_with=Matrix Names"`
	Names   *FileRef    `json:"names,omitempty"`
}

// IsMatrix reports whether the resource targets a matrix.
func (r Resource) IsMatrix() bool { return r.Matrix != "" }

// IsParameters reports whether the resource carries named parameters.
func (r Resource) IsParameters() bool { return r.Names != nil }

// HasColumns reports whether any column field is declared.
func (r Resource) HasColumns() bool {
	return r.ColFromLabel != "" || r.ColToLabel != "" || r.ColDict != ""
}

// Manifest is the decoded datapackage.json.
type Manifest struct {
	Name      string     `json:"name" validate:"required"`
	ID        string     `json:"id" validate:"required"`
	Profile   string     `json:"profile,omitempty"`
	Seed      Seed       `json:"seed"`
	Ncols     int        `json:"ncols,omitempty" validate:"gte=0"`
	Resources []Resource `json:"resources" validate:"dive"`
}

// MatrixResources returns matrix-bound resources in declaration order.
func (m *Manifest) MatrixResources() []Resource {
	var out []Resource
	for _, r := range m.Resources {
		if r.IsMatrix() {
			out = append(out, r)
		}
	}

	return out
}

// ParameterResources returns named-parameter resources in declaration order.
// A resource carrying both designations is treated as matrix-bound only.
func (m *Manifest) ParameterResources() []Resource {
	var out []Resource
	for _, r := range m.Resources {
		if !r.IsMatrix() && r.IsParameters() {
			out = append(out, r)
		}
	}

	return out
}

// Validate runs the struct-tag rules.
func (m *Manifest) Validate() error {
	if err := manifestValidate.Struct(m); err != nil {
		return fmt.Errorf("%w: %v", ErrManifest, err)
	}

	return nil
}

// Read loads and validates dir/datapackage.json.
func Read(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifest, err)
	}

	return Decode(raw, path)
}

// Decode parses and validates manifest bytes; source is used in messages only.
func Decode(raw []byte, source string) (*Manifest, error) {
	var m Manifest
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrManifest, source, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	return &m, nil
}

// Write validates m and writes it as indented JSON to dir/datapackage.json.
func Write(dir string, m *Manifest) error {
	if err := m.Validate(); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrManifest, err)
	}

	return os.WriteFile(filepath.Join(dir, FileName), append(raw, '\n'), 0o644)
}

// ---------- Seed ----------

// sequentialSeed is the manifest literal selecting sequential indices.
const sequentialSeed = "sequential"

// Seed is the manifest "seed" field: null, an unsigned integer, or "sequential".
type Seed struct {
	Value      uint64
	Present    bool
	Sequential bool
}

// FixedSeed returns a Seed carrying v.
func FixedSeed(v uint64) Seed { return Seed{Value: v, Present: true} }

// SequentialSeed returns the "sequential" Seed.
func SequentialSeed() Seed { return Seed{Present: true, Sequential: true} }

// UnmarshalJSON implements json.Unmarshaler.
func (s *Seed) UnmarshalJSON(b []byte) error {
	*s = Seed{}
	text := strings.TrimSpace(string(b))
	switch {
	case text == "null":
		return nil
	case strings.HasPrefix(text, `"`):
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		if v != sequentialSeed {
			return fmt.Errorf("seed %q: want an unsigned integer, null or %q", v, sequentialSeed)
		}
		*s = SequentialSeed()
		return nil
	}

	var v uint64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("seed %s: %v", text, err)
	}
	*s = FixedSeed(v)

	return nil
}

// MarshalJSON implements json.Marshaler.
func (s Seed) MarshalJSON() ([]byte, error) {
	switch {
	case !s.Present:
		return []byte("null"), nil
	case s.Sequential:
		return json.Marshal(sequentialSeed)
	}

	return json.Marshal(s.Value)
}
