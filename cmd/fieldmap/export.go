package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/fieldmap/internal/core"
)

// Fallback policies for --fallback.
const (
	fallbackAsk    = "ask"
	fallbackAlways = "always"
	fallbackNever  = "never"
)

type exportOptions struct {
	format       string
	out          string
	strategy     string
	template     string
	sets         []string
	mappedOnly   bool
	derive       bool
	fallback     string
	saveTemplate string
}

func newExportCmd(a *app) *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Map a CSV file onto the schema and export it",
		Long: `Export decodes FILE, builds a mapping and writes the mapped rows.

The mapping starts from --template, or from the --strategy auto-mapper, and
is then adjusted by each --set FIELD=COLUMN, where COLUMN is a zero-based
index or a header name. An empty COLUMN unmaps the field.

The rules strategy maps the columns of a hiline survey export by name;
--derive then splits its packed road, section and business_data columns
into the values of each target field.

When the format's driver is unavailable (for postgres: no DATABASE_URL or
an unreachable server) a fallback format is offered; --fallback decides
whether to take it.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.strategy {
			case "name", "positional", "rules", "none":
			default:
				return withCode(exitUsage, fmt.Errorf("invalid --strategy %q: want name, positional, rules or none", opts.strategy))
			}
			switch opts.fallback {
			case fallbackAsk, fallbackAlways, fallbackNever:
			default:
				return withCode(exitUsage, fmt.Errorf("invalid --fallback %q: want ask, always or never", opts.fallback))
			}
			if _, ok := core.GetFormat(opts.format); !ok {
				return withCode(exitUsage, fmt.Errorf("%w: %q (have %s)", core.ErrUnknownFormat, opts.format, strings.Join(core.FormatKeys(), ", ")))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), a, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "xlsx", "Export format")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output path; for postgres the base name is the table name (required)")
	cmd.Flags().StringVar(&opts.strategy, "strategy", "name", "Auto-mapping strategy: name, positional, rules or none")
	cmd.Flags().StringVar(&opts.template, "template", "", "Start from a saved mapping template")
	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, "Map FIELD=COLUMN (repeatable)")
	cmd.Flags().BoolVar(&opts.mappedOnly, "mapped-only", false, "Export only mapped fields")
	cmd.Flags().BoolVar(&opts.derive, "derive", false, "Split packed survey columns into their field values")
	cmd.Flags().StringVar(&opts.fallback, "fallback", fallbackAsk, "Take the fallback format when offered: ask, always or never")
	cmd.Flags().StringVar(&opts.saveTemplate, "save-template", "", "Save the final mapping as a template with this name")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runExport(ctx context.Context, in io.Reader, out io.Writer, a *app, path string, opts exportOptions) error {
	sess := a.service.LocalSession()
	tbl, err := sess.LoadFile(path)
	if err != nil {
		return err
	}

	if err := buildMapping(out, a, sess, opts); err != nil {
		return err
	}
	for _, set := range opts.sets {
		field, column, err := parseSet(set, tbl.Header)
		if err != nil {
			return withCode(exitUsage, err)
		}
		if err := sess.SetMapping(field, column); err != nil {
			return err
		}
	}
	sess.SetMappedOnly(opts.mappedOnly)
	if opts.derive {
		sess.SetDerivations(core.SurveyDerivations())
	}

	m := sess.CurrentMapping()
	fmt.Fprintf(out, "Mapped %d of %d fields\n", m.MappedCount(), a.schema.Len())

	if opts.saveTemplate != "" {
		tpl := core.TemplateFromMapping(opts.saveTemplate, m, tbl.Header)
		if err := a.service.Templates().Save(tpl); err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved template %q\n", tpl.Name)
	}

	res := sess.ExportTo(ctx, opts.format, opts.out)
	if res.State == core.StateOfferFallback {
		if !acceptFallback(in, out, res, opts.fallback) {
			sess.DeclineFallback()
			return res.Err
		}
		res = sess.ExportFallback(ctx, "")
	}
	if res.State != core.StateDone {
		return res.Err
	}

	fmt.Fprintf(out, "Exported %d rows to %s (%s)\n", res.Rows, res.Path, res.Format)
	return nil
}

// buildMapping applies the template or auto-mapping strategy.
func buildMapping(out io.Writer, a *app, sess *core.Session, opts exportOptions) error {
	if opts.template != "" {
		tpl, err := a.service.Templates().Load(opts.template)
		if err != nil {
			return err
		}
		unresolved, err := sess.ApplyTemplate(tpl)
		if err != nil {
			return err
		}
		if len(unresolved) > 0 {
			fmt.Fprintf(out, "Template %q: unresolved fields %s\n", tpl.Name, strings.Join(unresolved, ", "))
		}
		return nil
	}

	switch opts.strategy {
	case "positional":
		return sess.AutoMapPositional()
	case "name":
		_, err := sess.AutoMapByName()
		return err
	case "rules":
		missing, err := sess.AutoMapRules(nil)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			fmt.Fprintf(out, "Rules: no column for %s\n", strings.Join(missing, ", "))
		}
		return nil
	default:
		return nil
	}
}

// parseSet parses FIELD=COLUMN. COLUMN is an index or a header name,
// matched case-insensitively; empty unmaps the field.
func parseSet(set string, header []string) (string, int, error) {
	field, column, ok := strings.Cut(set, "=")
	field = strings.TrimSpace(field)
	if !ok || field == "" {
		return "", 0, fmt.Errorf("invalid --set %q: want FIELD=COLUMN", set)
	}

	column = strings.TrimSpace(column)
	if column == "" {
		return field, core.Unmapped, nil
	}
	if i, err := strconv.Atoi(column); err == nil {
		return field, i, nil
	}
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), column) {
			return field, i, nil
		}
	}
	return "", 0, fmt.Errorf("invalid --set %q: no column named %q", set, column)
}

// acceptFallback decides whether to take the offered fallback.
func acceptFallback(in io.Reader, out io.Writer, res core.ExportResult, policy string) bool {
	offer := res.Offer
	switch policy {
	case fallbackAlways:
		fmt.Fprintf(out, "%s is unavailable, exporting to %s instead\n", res.Format, offer.Path)
		return true
	case fallbackNever:
		return false
	}

	fmt.Fprintf(out, "%s is unavailable: %v\nExport to %s (%s) instead? [y/N] ", res.Format, res.Err, offer.Path, offer.Format)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
