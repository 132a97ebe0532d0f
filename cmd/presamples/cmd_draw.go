// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"slices"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/presamples/inject"
	"github.com/katalvlaran/presamples/parameters"
)

func (a *app) drawCmd() *cobra.Command {
	var (
		iterations int
		seed       uint64
		matrices   []string
	)
	cmd := &cobra.Command{
		Use:   "draw [DIR...]",
		Short: "Print the sample columns selected over a number of iterations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs, err := a.packages(args)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("iterations") {
				iterations = a.cfg.Iterations
			}
			if !cmd.Flags().Changed("matrix") {
				matrices = a.cfg.Matrices
			}
			opts := []inject.Option{inject.WithLogger(a.logger)}
			switch {
			case cmd.Flags().Changed("seed"):
				opts = append(opts, inject.WithSeed(seed))
			case a.cfg.Seed != nil:
				opts = append(opts, inject.WithSeed(*a.cfg.Seed))
			}

			inj, err := inject.New(dirs, opts...)
			if err != nil {
				return err
			}
			defer inj.Close()
			a.logger.Debug("drawing", zap.Stringer("injector", inj), zap.Int("iterations", iterations))

			return draw(cmd.OutOrStdout(), inj, iterations, matrices)
		},
	}
	cmd.Flags().IntVarP(&iterations, "iterations", "n", 1, "number of iterations")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "override every package seed")
	cmd.Flags().StringSliceVar(&matrices, "matrix", nil, "only print groups targeting these matrices")

	return cmd
}

// draw prints, per iteration and package, the index and every group's column.
func draw(w io.Writer, inj *inject.Injector, iterations int, matrices []string) error {
	params, err := inj.Parameters()
	if err != nil {
		return err
	}
	for it := 0; it < iterations; it++ {
		for k, p := range inj.Packages() {
			index := p.Sequencer.Current()
			fmt.Fprintf(w, "iteration %d package %s index %d\n", it, p.ID, index)
			for _, g := range p.Groups {
				if len(matrices) > 0 && !slices.Contains(matrices, g.Matrix) {
					continue
				}
				values, err := g.Samples.Sample(index)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "  %s %v\n", g.Kind, values)
			}
			printParameters(w, params[k])
		}
		if err := inj.AdvanceAll(); err != nil {
			return err
		}
	}

	return nil
}

func printParameters(w io.Writer, m *parameters.Mapping) {
	values := m.Values()
	names := make([]string, 0, len(values))
	for n := range values {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "  %s=%g\n", n, values[n])
	}
}
