package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/comalice/statechart"
	"github.com/comalice/statechart/internal/config"
	"github.com/comalice/statechart/internal/extensibility"
	"github.com/comalice/statechart/internal/logging"
	"github.com/comalice/statechart/internal/production"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "statechart",
		Short: "Statechart is a hierarchical state machine toolkit",
		Long: `Statechart compiles YAML or JSON chart definitions into deterministic
transition tables and runs them as actors, either on goroutines or on a
cooperative tick loop.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "Runtime settings file (YAML)")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	root.PersistentFlags().String("log-format", "", "Log format: text or json")

	root.AddCommand(
		newValidateCmd(),
		newCompileCmd(),
		newGraphCmd(),
		newDescribeCmd(),
		newRunCmd(),
		newServeCmd(),
	)
	return root
}

// settings loads the runtime settings, applying command-line overrides.
func settings(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg := config.DefaultConfig()
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, nil, err
		}
		cfg = *loaded
	}
	overrides := config.Config{}
	overrides.LogLevel, _ = cmd.Flags().GetString("log-level")
	overrides.LogFormat, _ = cmd.Flags().GetString("log-format")
	cfg.Merge(&overrides)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.NewWriter(cmd.ErrOrStderr(), level, cfg.LogFormat)
	return &cfg, logger, nil
}

// loadDescriptor reads and compiles a chart with the built-in expression
// guards and named actions.
func loadDescriptor(path string, logger *slog.Logger) (*statechart.Descriptor[statechart.Vars], error) {
	chart, err := production.LoadChart(path)
	if err != nil {
		return nil, err
	}
	d, err := statechart.Compile(chart, extensibility.NewRegistry(logger))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
