// Command fieldmap maps the columns of messy CSV files onto a fixed target
// schema and exports the result to PostgreSQL, Excel or CSV.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/fieldmap/internal/config"
	"github.com/JonMunkholm/fieldmap/internal/core"
	_ "github.com/JonMunkholm/fieldmap/internal/core/formats" // Register export formats
	"github.com/JonMunkholm/fieldmap/internal/logging"
	"github.com/JonMunkholm/fieldmap/internal/schema"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

type codedError struct {
	code int
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &codedError{code: code, err: err}
}

type rootOptions struct {
	envFile    string
	schemaFile string
	logLevel   string
	logFormat  string
}

// app holds what every subcommand needs after configuration is loaded.
type app struct {
	cfg     *config.Config
	schema  *schema.Schema
	service *core.Service
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string) int {
	root := newRootCmd()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var coded *codedError
	if errors.As(err, &coded) && coded.code == exitUsage {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitUsage
	}
	fmt.Fprintln(os.Stderr, "Error:", core.FormatUserError(err))
	slog.Debug("command failed", "error", err)
	return exitFailure
}

func newRootCmd() *cobra.Command {
	var opts rootOptions
	a := &app{}

	root := &cobra.Command{
		Use:           "fieldmap",
		Short:         "Map CSV columns onto a target schema and export them",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadApp(opts)
			if err != nil {
				return err
			}
			*a = *loaded
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Environment file to load if present")
	root.PersistentFlags().StringVar(&opts.schemaFile, "schema", "", "Target schema file (YAML or one field per line); overrides MAPPING_SCHEMA_FILE")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error; overrides LOG_LEVEL")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format: text or json; overrides LOG_FORMAT")

	root.AddCommand(
		newInspectCmd(a),
		newExportCmd(a),
		newSchemaCmd(a),
		newTemplatesCmd(a),
		newServeCmd(a),
	)
	return root
}

// loadApp reads .env, configuration and the target schema.
func loadApp(opts rootOptions) (*app, error) {
	if opts.envFile != "" {
		if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, withCode(exitUsage, fmt.Errorf("load %s: %w", opts.envFile, err))
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, withCode(exitUsage, err)
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Logging.Format = opts.logFormat
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

	if opts.schemaFile != "" {
		cfg.Mapping.SchemaFile = opts.schemaFile
	}
	s := schema.Default()
	if cfg.Mapping.SchemaFile != "" {
		s, err = schema.LoadFile(cfg.Mapping.SchemaFile)
		if err != nil {
			return nil, withCode(exitUsage, err)
		}
	}

	svc, err := core.NewService(cfg, s)
	if err != nil {
		return nil, withCode(exitUsage, err)
	}

	slog.Debug("configuration loaded",
		"config", cfg.String(),
		"schema_fields", s.Len(),
		"formats", core.FormatKeys(),
	)
	return &app{cfg: cfg, schema: s, service: svc}, nil
}
