package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comalice/statechart/internal/production"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph <chart>",
		Short: "Export the chart as a diagram",
		Long:  `Outputs Graphviz DOT or a Mermaid state diagram, highlighting the initial configuration.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := settings(cmd)
			if err != nil {
				return err
			}
			d, err := loadDescriptor(args[0], logger)
			if err != nil {
				return err
			}
			var active []string
			if initial, _ := cmd.Flags().GetBool("initial"); initial {
				active = initialStates(d)
			}

			format, _ := cmd.Flags().GetString("format")
			switch format {
			case "dot":
				fmt.Fprint(cmd.OutOrStdout(), production.ExportDOT(d.Table(), active))
			case "mermaid":
				fmt.Fprint(cmd.OutOrStdout(), production.ExportMermaid(d.Table(), active))
			default:
				return fmt.Errorf("unsupported graph format %q (want dot or mermaid)", format)
			}
			return nil
		},
	}
	cmd.Flags().String("format", "dot", "Diagram format: dot or mermaid")
	cmd.Flags().Bool("initial", true, "Highlight the initial configuration")
	return cmd
}
