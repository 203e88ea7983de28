package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/fieldmap/internal/schema"
)

func newSchemaCmd(a *app) *cobra.Command {
	var writePath string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the target schema fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if writePath != "" {
				if err := schema.WriteFile(a.schema, writePath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d fields to %s\n", a.schema.Len(), writePath)
				return nil
			}
			for i, f := range a.schema.Fields() {
				fmt.Fprintf(cmd.OutOrStdout(), "%3d  %s\n", i, f)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&writePath, "write", "", "Write the schema as YAML to this path instead of printing it")
	return cmd
}
