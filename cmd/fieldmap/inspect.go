package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/fieldmap/internal/core"
)

type inspectOptions struct {
	sample  int
	asJSON  bool
	noMatch bool
}

// inspectReport is the JSON form of the inspect output.
type inspectReport struct {
	Table     core.TableSummary    `json:"table"`
	Matches   []core.FieldMatch    `json:"matches,omitempty"`
	Templates []core.TemplateMatch `json:"templates,omitempty"`
}

func newInspectCmd(a *app) *cobra.Command {
	var opts inspectOptions

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Show how a CSV file decodes and how its columns would map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.OutOrStdout(), a, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.sample, "sample", 5, "Number of data rows to show")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVar(&opts.noMatch, "no-match", false, "Skip name matching against the schema")
	return cmd
}

func runInspect(out io.Writer, a *app, path string, opts inspectOptions) error {
	sess := a.service.LocalSession()
	if _, err := sess.LoadFile(path); err != nil {
		return err
	}

	sum, err := sess.Summary(opts.sample)
	if err != nil {
		return err
	}
	report := inspectReport{Table: sum}

	if !opts.noMatch {
		report.Matches, err = sess.AutoMapByName()
		if err != nil {
			return err
		}
	}
	report.Templates, err = a.service.Templates().Match(sum.Header)
	if err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return printInspect(out, report)
}

func printInspect(out io.Writer, r inspectReport) error {
	t := r.Table
	fmt.Fprintf(out, "File:       %s\n", t.Source)
	fmt.Fprintf(out, "Encoding:   %s\n", t.Encoding)
	fmt.Fprintf(out, "Delimiter:  %s\n", t.Delimiter)
	fmt.Fprintf(out, "Columns:    %d\n", len(t.Header))
	fmt.Fprintf(out, "Rows:       %d", t.RowCount)
	if t.Padded > 0 || t.Truncated > 0 {
		fmt.Fprintf(out, " (%d padded, %d truncated)", t.Padded, t.Truncated)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCOLUMN\tSAMPLE")
	for i, h := range t.Header {
		var samples []string
		for _, row := range t.Sample {
			samples = append(samples, row[i])
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i, h, strings.Join(samples, " | "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.Matches) > 0 {
		fmt.Fprintln(out)
		tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "FIELD\tCOLUMN\tSCORE\tMATCH")
		for _, m := range r.Matches {
			if m.Column == core.Unmapped {
				fmt.Fprintf(tw, "%s\t-\t%.2f\t%s\n", m.Field, m.Score, m.Kind)
				continue
			}
			fmt.Fprintf(tw, "%s\t%d %s\t%.2f\t%s\n", m.Field, m.Column, m.Header, m.Score, m.Kind)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	for _, m := range r.Templates {
		fmt.Fprintf(out, "\nTemplate %q matches this header (%.0f%%)\n", m.Template.Name, m.MatchScore*100)
	}
	return nil
}
