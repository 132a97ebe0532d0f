// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/presamples/builder"
	"github.com/katalvlaran/presamples/config"
)

func (a *app) createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create SPEC.yaml DIR",
		Short: "Write a presample package described by a YAML file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := config.LoadPackageSpec(args[0])
			if err != nil {
				return err
			}
			opts, cons := constructors(spec)
			m, err := builder.Build(args[1], opts, cons...)
			if err != nil {
				return err
			}
			a.logger.Info("package written",
				zap.String("dir", args[1]),
				zap.String("id", m.ID),
				zap.Int("resources", len(m.Resources)),
			)
			fmt.Fprintln(cmd.OutOrStdout(), m.ID)
			return nil
		},
	}
}

// constructors translates a PackageSpec into builder options and constructors.
func constructors(spec config.PackageSpec) ([]builder.Option, []builder.Constructor) {
	var opts []builder.Option
	if spec.Name != "" {
		opts = append(opts, builder.WithName(spec.Name))
	}
	if spec.ID != "" {
		opts = append(opts, builder.WithID(spec.ID))
	}
	switch {
	case spec.Sequential:
		opts = append(opts, builder.WithSequential())
	case spec.Seed != nil:
		opts = append(opts, builder.WithSeed(*spec.Seed))
	default:
		opts = append(opts, builder.WithoutSeed())
	}

	var cons []builder.Constructor
	if len(spec.Technosphere) > 0 {
		ex := make([]builder.TechnosphereExchange, len(spec.Technosphere))
		for i, e := range spec.Technosphere {
			ex[i] = builder.TechnosphereExchange{Input: e.Input, Output: e.Output, Type: e.Type, Samples: e.Samples}
		}
		cons = append(cons, builder.Technosphere(ex...))
	}
	if len(spec.Biosphere) > 0 {
		ex := make([]builder.Exchange, len(spec.Biosphere))
		for i, e := range spec.Biosphere {
			ex[i] = builder.Exchange{Input: e.Input, Output: e.Output, Samples: e.Samples}
		}
		cons = append(cons, builder.Biosphere(ex...))
	}
	if len(spec.Characterization) > 0 {
		fs := make([]builder.Factor, len(spec.Characterization))
		for i, f := range spec.Characterization {
			fs[i] = builder.Factor{Flow: f.Flow, Samples: f.Samples}
		}
		cons = append(cons, builder.Characterization(fs...))
	}
	for _, p := range spec.Parameters {
		cons = append(cons, builder.Parameters(p.Label, p.Names, p.Samples))
	}

	return opts, cons
}
