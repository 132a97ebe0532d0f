// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/presamples/loader"
)

func (a *app) inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [DIR...]",
		Short: "Print the consolidated layout of presample packages",
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs, err := a.packages(args)
			if err != nil {
				return err
			}
			for _, dir := range dirs {
				p, err := loader.Load(dir, loader.WithLogger(a.logger))
				if err != nil {
					return err
				}
				describe(cmd.OutOrStdout(), p)
				if err := p.Close(); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func describe(w io.Writer, p *loader.Package) {
	seed := "sequential"
	if !p.Seed.Sequential {
		seed = fmt.Sprint(p.Seed.Value)
	}
	fmt.Fprintf(w, "%s (%s) seed=%s samples=%d\n", p.Name, p.ID, seed, p.Sequencer.Count())
	for _, g := range p.Groups {
		shape := "diagonal"
		if !g.Diagonal() {
			shape = fmt.Sprintf("%s x %s", g.Row.Dict, g.Col.Dict)
		}
		fmt.Fprintf(w, "  %-16s %-24s %6d records  %s\n", g.Kind, g.Matrix, g.Len(), shape)
	}
	for _, r := range p.ParameterResources {
		fmt.Fprintf(w, "  %-16s %-24s %6d names\n", "parameters", r.Label, r.Samples.Shape[0])
	}
}
