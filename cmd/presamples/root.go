// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/katalvlaran/presamples/config"
)

// app carries state shared by every subcommand.
type app struct {
	verbose    bool
	configPath string

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.Default(), logger: zap.NewNop()}

	root := &cobra.Command{
		Use:           "presamples",
		Short:         "Inspect, sample and write presample packages",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.configPath != "" {
				cfg, err := config.Load(a.configPath)
				if err != nil {
					return err
				}
				a.cfg = cfg
			}
			return a.initLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML run configuration")

	root.AddCommand(a.inspectCmd(), a.drawCmd(), a.createCmd())

	return root
}

// initLogger builds a production logger at the configured level; --verbose wins.
func (a *app) initLogger() error {
	zcfg := zap.NewProductionConfig()
	level := zapcore.InfoLevel
	if a.cfg.LogLevel != "" {
		if err := level.Set(a.cfg.LogLevel); err != nil {
			return fmt.Errorf("log level %q: %w", a.cfg.LogLevel, err)
		}
	}
	if a.verbose {
		level = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	return nil
}

// packages returns args, or the configured packages when args is empty.
func (a *app) packages(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if len(a.cfg.Packages) == 0 {
		return nil, fmt.Errorf("no package directories given")
	}

	return a.cfg.Packages, nil
}
