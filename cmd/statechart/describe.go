package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/comalice/statechart/internal/production"
)

func newDescribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <chart>",
		Short: "Summarize a chart as Markdown",
		Long: `Prints the chart's states and transition rules as Markdown tables. On a
terminal the Markdown is rendered; otherwise it is written as-is.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := settings(cmd)
			if err != nil {
				return err
			}
			d, err := loadDescriptor(args[0], logger)
			if err != nil {
				return err
			}
			md := production.Describe(d.Table())

			raw, _ := cmd.Flags().GetBool("raw")
			if raw || !isTerminal(cmd) {
				fmt.Fprint(cmd.OutOrStdout(), md)
				return nil
			}
			r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
			if err != nil {
				return err
			}
			out, err := r.Render(md)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().Bool("raw", false, "Print Markdown without rendering")
	return cmd
}

// isTerminal reports whether the command writes to an interactive terminal.
func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
