package formats

import (
	"context"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/fieldmap/internal/core"
)

// DefaultTableName is used when the destination path names no table.
const DefaultTableName = "mapped_data"

// ownerComment marks tables written by fieldmap. Only tables carrying it
// are ever dropped and replaced.
const ownerComment = "fieldmap export"

func init() {
	registerPostgres()
}

func registerPostgres() {
	core.RegisterFormat(core.FormatDefinition{
		Key:      KeyPostgres,
		Label:    "PostgreSQL table",
		Fallback: KeyXLSX,
		Write:    writePostgres,
	})
}

// TableName derives the target table from an export path: the base name
// without extension, or def when that is empty.
//
//	TableName("exports/survey_2024.db", "mapped_data") -> "survey_2024"
//	TableName("", "mapped_data")                       -> "mapped_data"
func TableName(path, def string) string {
	base := filepath.Base(strings.TrimSpace(path))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		if def == "" {
			return DefaultTableName
		}
		return def
	}
	return base
}

// QualifiedTableName is TableName with dst.TablePrefix prepended, unless the
// name already carries it.
//
//	prefix "fieldmap_": "exports/users" -> "fieldmap_users"
func QualifiedTableName(dst core.Destination) string {
	table := TableName(dst.Path, dst.TableName)
	if strings.HasPrefix(table, dst.TablePrefix) {
		return table
	}
	return dst.TablePrefix + table
}

// writePostgres replaces the target table with one TEXT column per field and
// bulk-loads the rows with COPY, all in one transaction. An existing table is
// only replaced when fieldmap created it; otherwise the export fails with
// core.ErrTableNotOwned.
//
// A missing database URL or a server that cannot be reached is reported as
// core.ErrDriverUnavailable. Errors returned by a reachable server, such as
// failed authentication, are ordinary failures.
func writePostgres(ctx context.Context, dst core.Destination, fields []string, rows []core.ExportRow) error {
	if dst.DatabaseURL == "" {
		return fmt.Errorf("%w: postgres: no database URL configured", core.ErrDriverUnavailable)
	}
	if len(fields) == 0 {
		return errors.New("postgres: no fields to export")
	}

	table := QualifiedTableName(dst)

	poolConfig, err := pgxpool.ParseConfig(dst.DatabaseURL)
	if err != nil {
		return fmt.Errorf("parse database URL: %w", err)
	}
	if dst.MaxConns > 0 {
		poolConfig.MaxConns = int32(dst.MaxConns)
	}
	if dst.ConnectTimeout > 0 {
		poolConfig.ConnConfig.ConnectTimeout = dst.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return classifyConnectError(err)
	}
	defer pool.Close()

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout(dst))
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return classifyConnectError(err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ident := pgx.Identifier{table}
	exists, owned, err := tableOwnership(ctx, tx, ident)
	if err != nil {
		return fmt.Errorf("inspect table %s: %w", table, err)
	}
	if exists && !owned {
		return fmt.Errorf("%w: %s", core.ErrTableNotOwned, table)
	}
	if exists {
		if _, err := tx.Exec(ctx, "DROP TABLE "+ident.Sanitize()); err != nil {
			return fmt.Errorf("drop table %s: %w", table, err)
		}
	}
	if _, err := tx.Exec(ctx, createTableSQL(ident, fields)); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	if _, err := tx.Exec(ctx, commentTableSQL(ident)); err != nil {
		return fmt.Errorf("mark table %s: %w", table, err)
	}

	src := make([][]any, len(rows))
	for i, row := range rows {
		src[i] = toCells(row)
	}
	copied, err := tx.CopyFrom(ctx, ident, fields, pgx.CopyFromRows(src))
	if err != nil {
		return fmt.Errorf("copy rows into %s: %w", table, err)
	}
	if copied != int64(len(rows)) {
		return fmt.Errorf("copy rows into %s: wrote %d of %d", table, copied, len(rows))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// createTableSQL builds the CREATE TABLE statement with quoted identifiers.
func createTableSQL(table pgx.Identifier, fields []string) string {
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = pgx.Identifier{f}.Sanitize() + " TEXT"
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", table.Sanitize(), strings.Join(cols, ", "))
}

// commentTableSQL marks a table as written by fieldmap.
func commentTableSQL(table pgx.Identifier) string {
	return fmt.Sprintf("COMMENT ON TABLE %s IS '%s'", table.Sanitize(), ownerComment)
}

// tableOwnership reports whether a relation named table exists and whether
// it carries the fieldmap owner comment.
func tableOwnership(ctx context.Context, tx pgx.Tx, table pgx.Identifier) (exists, owned bool, err error) {
	var comment *string
	err = tx.QueryRow(ctx,
		"SELECT obj_description(c.oid, 'pg_class') FROM pg_class c WHERE c.oid = to_regclass($1)",
		table.Sanitize(),
	).Scan(&comment)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return true, comment != nil && *comment == ownerComment, nil
}

func connectTimeout(dst core.Destination) time.Duration {
	if dst.ConnectTimeout > 0 {
		return dst.ConnectTimeout
	}
	return 10 * time.Second
}

// classifyConnectError maps connection failures to ErrDriverUnavailable.
// A server error response means the server is there, so those pass through.
func classifyConnectError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("connect to database: %w", err)
	}

	var connErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connErr) || errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: postgres: %w", core.ErrDriverUnavailable, err)
	}
	return fmt.Errorf("connect to database: %w", err)
}
