package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/comalice/statechart"
	"github.com/comalice/statechart/internal/extensibility"
	"github.com/comalice/statechart/internal/production"
)

func newValidateCmd() *cobra.Command {
	var layers bool
	cmd := &cobra.Command{
		Use:   "validate <chart>",
		Short: "Check a chart definition for structural errors",
		Long: `Checks the definition syntax, then compiles the chart and reports every
construction diagnostic, not just the first. Compilation is skipped when the
syntax check fails unless --layers is set, which reports both layers.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := settings(cmd)
			if err != nil {
				return err
			}
			chart, err := production.ReadChart(args[0])
			if err != nil {
				return err
			}

			out := cmd.ErrOrStderr()
			syntax := diagnostics(chart.Validate())
			if len(syntax) > 0 && !layers {
				report(out, "", syntax)
				return fmt.Errorf("validation failed: %d problem(s)", len(syntax))
			}

			d, err := statechart.Compile(chart, extensibility.NewRegistry(logger))
			structure := diagnostics(err)
			if layers {
				report(out, "syntax", syntax)
				report(out, "structure", structure)
			} else {
				report(out, "", structure)
			}
			if n := len(syntax) + len(structure); n > 0 {
				return fmt.Errorf("validation failed: %d problem(s)", n)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Chart %s is valid ✅ (%d states, %d rules, version %.12s)\n",
				d.ID(), d.Len(), len(d.Rules()), d.Version())
			return nil
		},
	}
	cmd.Flags().BoolVar(&layers, "layers", false, "Report syntax and structure diagnostics separately")
	return cmd
}

// report prints diagnostics, under a heading when one is given.
func report(w io.Writer, heading string, diags []error) {
	if heading != "" {
		fmt.Fprintf(w, "%s: %d problem(s)\n", heading, len(diags))
	}
	for _, diag := range diags {
		fmt.Fprintf(w, "  - %v\n", diag)
	}
}

// diagnostics flattens joined errors into their parts.
func diagnostics(err error) []error {
	if err == nil {
		return nil
	}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, diagnostics(e)...)
		}
		return out
	}
	return []error{err}
}
