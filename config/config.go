// SPDX-License-Identifier: MIT

// Package config holds the YAML files read by the presamples command:
// run settings (Config) and package descriptions for "create" (PackageSpec).
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrConfig indicates an unreadable, undecodable or invalid YAML file.
var ErrConfig = errors.New("config: invalid configuration")

var validate = validator.New()

// Config is the run configuration. Command-line flags override its values.
type Config struct {
	Packages   []string `yaml:"packages" validate:"dive,required"`
	Seed       *uint64  `yaml:"seed,omitempty"`
	Iterations int      `yaml:"iterations" validate:"gte=0"`
	Matrices   []string `yaml:"matrices,omitempty"`
	LogLevel   string   `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{Iterations: 1, LogLevel: "info"}
}

// Load reads path over Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := decodeFile(path, &cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Technosphere is one technosphere exchange of a PackageSpec.
type Technosphere struct {
	Input   int64     `yaml:"input"`
	Output  int64     `yaml:"output"`
	Type    int64     `yaml:"type" validate:"gte=0,lte=3"`
	Samples []float64 `yaml:"samples" validate:"required"`
}

// Exchange is one biosphere exchange of a PackageSpec.
type Exchange struct {
	Input   int64     `yaml:"input"`
	Output  int64     `yaml:"output"`
	Samples []float64 `yaml:"samples" validate:"required"`
}

// Factor is one characterization factor of a PackageSpec.
type Factor struct {
	Flow    int64     `yaml:"flow"`
	Samples []float64 `yaml:"samples" validate:"required"`
}

// Parameters is one named-parameter resource of a PackageSpec.
type Parameters struct {
	Label   string      `yaml:"label"`
	Names   []string    `yaml:"names" validate:"required,dive,required"`
	Samples [][]float64 `yaml:"samples" validate:"required"`
}

// PackageSpec describes a presample package to write.
type PackageSpec struct {
	Name             string         `yaml:"name"`
	ID               string         `yaml:"id,omitempty"`
	Seed             *uint64        `yaml:"seed,omitempty"`
	Sequential       bool           `yaml:"sequential,omitempty" validate:"excluded_with=Seed"`
	Technosphere     []Technosphere `yaml:"technosphere,omitempty" validate:"dive"`
	Biosphere        []Exchange     `yaml:"biosphere,omitempty" validate:"dive"`
	Characterization []Factor       `yaml:"characterization,omitempty" validate:"dive"`
	Parameters       []Parameters   `yaml:"parameters,omitempty" validate:"dive"`
}

// LoadPackageSpec reads a package description.
func LoadPackageSpec(path string) (PackageSpec, error) {
	var spec PackageSpec
	if err := decodeFile(path, &spec); err != nil {
		return PackageSpec{}, err
	}

	return spec, nil
}

// decodeFile strictly decodes path into v and validates it.
func decodeFile(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrConfig, path, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrConfig, path, err)
	}

	return nil
}
