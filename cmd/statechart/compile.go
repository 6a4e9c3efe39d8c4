package main

import (
	"github.com/spf13/cobra"

	"github.com/comalice/statechart/internal/production"
)

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile <chart>",
		Short: "Print the compiled transition table",
		Long: `Compiles the chart and writes its flat descriptor table, including the
deterministic version hash, as JSON or YAML.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := settings(cmd)
			if err != nil {
				return err
			}
			name, _ := cmd.Flags().GetString("output")
			format, err := production.ParseFormat(name)
			if err != nil {
				return err
			}
			d, err := loadDescriptor(args[0], logger)
			if err != nil {
				return err
			}
			return production.WriteTable(cmd.OutOrStdout(), d.Table(), format)
		},
	}
	cmd.Flags().StringP("output", "o", "json", "Output format: json or yaml")
	return cmd
}
