package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newTemplatesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage saved mapping templates",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved templates",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				templates, err := a.service.Templates().List()
				if err != nil {
					return err
				}
				if len(templates) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No templates in %s\n", a.service.Templates().Dir())
					return nil
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tFIELDS\tCOLUMNS\tUPDATED")
				for _, t := range templates {
					fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", t.Name, len(t.Fields), len(t.Headers), t.UpdatedAt.Format("2006-01-02 15:04"))
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "show NAME",
			Short: "Print a template",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				tpl, err := a.service.Templates().Load(args[0])
				if err != nil {
					return err
				}

				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(tpl); err != nil {
					return err
				}
				return enc.Close()
			},
		},
		&cobra.Command{
			Use:   "delete NAME",
			Short: "Delete a template",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.service.Templates().Delete(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted template %q\n", args[0])
				return nil
			},
		},
	)
	return cmd
}
