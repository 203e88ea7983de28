package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/fieldmap/internal/schema"
)

// Session holds one loaded table and the mapping being edited for it.
//
// All methods are safe for concurrent use; calls on one session serialize.
// Loading a file replaces the table wholesale and resets the mapping.
type Session struct {
	id       string
	schema   *schema.Schema
	decoder  *Decoder
	exporter *Exporter
	limiter  *ExportLimiter // nil means unlimited
	nameOpts NameMatchOptions

	mu         sync.Mutex
	source     string
	table      *Table
	mapping    *Mapping
	mappedOnly bool
	derive     []Derivation
	pending    *pendingFallback
	lastUsed   time.Time
}

// pendingFallback remembers the rows of an export that ended in an offer,
// so the fallback writes exactly what the primary attempt would have.
type pendingFallback struct {
	req   ExportRequest
	offer FallbackOffer
}

// SessionDeps are the collaborators a Session uses.
type SessionDeps struct {
	Schema   *schema.Schema
	Decoder  *Decoder
	Exporter *Exporter
	Limiter  *ExportLimiter
	NameOpts NameMatchOptions
}

// NewSession creates an empty session. id may be empty for single-user use.
func NewSession(id string, deps SessionDeps) *Session {
	return &Session{
		id:       id,
		schema:   deps.Schema,
		decoder:  deps.Decoder,
		exporter: deps.Exporter,
		limiter:  deps.Limiter,
		nameOpts: deps.NameOpts,
		lastUsed: time.Now(),
	}
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Schema returns the target schema.
func (s *Session) Schema() *schema.Schema {
	return s.schema
}

// LastUsed returns when the session was last touched.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// LoadFile decodes the file at path and makes it the session table.
// On failure the previous table and mapping are kept.
func (s *Session) LoadFile(path string) (*Table, error) {
	t, err := s.decoder.DecodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	s.install(path, t)
	return t, nil
}

// LoadBytes decodes raw and makes it the session table. name labels the
// source in summaries and logs.
func (s *Session) LoadBytes(name string, raw []byte) (*Table, error) {
	if s.decoder.opts.MaxFileSize > 0 && int64(len(raw)) > s.decoder.opts.MaxFileSize {
		return nil, fmt.Errorf("load %s: %w: limit is %d bytes", name, ErrFileTooLarge, s.decoder.opts.MaxFileSize)
	}
	t, err := s.decoder.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	s.install(name, t)
	return t, nil
}

func (s *Session) install(source string, t *Table) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	s.source = source
	s.table = t
	s.mapping = NewMapping(s.schema, t.Width())
	s.pending = nil

	logger := s.logger().With("source", source)
	logger.Info("file loaded",
		"encoding", t.Encoding,
		"delimiter", DelimiterName(t.Delimiter),
		"columns", t.Width(),
		"rows", len(t.Rows),
	)
	if t.Padded > 0 || t.Truncated > 0 {
		logger.Warn("normalized ragged rows",
			"padded", t.Padded,
			"truncated", t.Truncated,
			"width", t.Width(),
		)
	}
}

// Table returns the loaded table, or nil.
func (s *Session) Table() *Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table
}

// Summary describes the loaded table with up to sampleRows leading rows.
func (s *Session) Summary(sampleRows int) (TableSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table == nil {
		return TableSummary{}, ErrNoTable
	}
	s.touch()
	return Summarize(s.source, s.table, sampleRows), nil
}

// AutoMapPositional replaces the mapping with the positional strategy.
func (s *Session) AutoMapPositional() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table == nil {
		return ErrNoTable
	}
	s.touch()
	s.mapping = AutoMapPositional(s.table, s.schema)
	s.logger().Info("auto-mapped", "strategy", "positional", "mapped", s.mapping.MappedCount())
	return nil
}

// AutoMapByName replaces the mapping with the name-similarity strategy and
// returns the per-field matches behind it.
func (s *Session) AutoMapByName() ([]FieldMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table == nil {
		return nil, ErrNoTable
	}
	s.touch()

	matches := MatchByName(s.table, s.schema, s.nameOpts)
	m := NewMapping(s.schema, s.table.Width())
	for i, fm := range matches {
		m.assign[i] = fm.Column
	}
	s.mapping = m

	s.logger().Info("auto-mapped",
		"strategy", "name",
		"mapped", m.MappedCount(),
		"threshold", s.nameOpts.Threshold,
	)
	return matches, nil
}

// AutoMapRules replaces the mapping with one built from rules and returns the
// rule sources missing from the header. nil rules means SurveyRules.
func (s *Session) AutoMapRules(rules []MappingRule) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table == nil {
		return nil, ErrNoTable
	}
	s.touch()

	if rules == nil {
		rules = SurveyRules
	}
	m, missing := AutoMapRules(s.table, s.schema, rules)
	s.mapping = m
	s.logger().Info("auto-mapped",
		"strategy", "rules",
		"mapped", m.MappedCount(),
		"missing_sources", len(missing),
	)
	return missing, nil
}

// ApplyTemplate replaces the mapping with one built from tpl and returns the
// template fields that could not be resolved against the header.
func (s *Session) ApplyTemplate(tpl *Template) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table == nil {
		return nil, ErrNoTable
	}
	s.touch()

	m, unresolved := ApplyTemplate(s.table, s.schema, tpl)
	s.mapping = m
	s.logger().Info("applied template",
		"template", tpl.Name,
		"mapped", m.MappedCount(),
		"unresolved", len(unresolved),
	)
	return unresolved, nil
}

// SetMapping assigns column to field. Several fields may share a column.
func (s *Session) SetMapping(field string, column int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mapping == nil {
		return ErrNoTable
	}
	s.touch()
	return s.mapping.Set(field, column)
}

// UnsetMapping clears one field.
func (s *Session) UnsetMapping(field string) error {
	return s.SetMapping(field, Unmapped)
}

// ClearMapping resets every field to unmapped.
func (s *Session) ClearMapping() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mapping == nil {
		return ErrNoTable
	}
	s.touch()
	s.mapping.Clear()
	return nil
}

// CurrentMapping returns a copy of the mapping, or nil before a file is loaded.
func (s *Session) CurrentMapping() *Mapping {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mapping == nil {
		return nil
	}
	return s.mapping.Clone()
}

// SetMappedOnly makes exports include only mapped fields.
func (s *Session) SetMappedOnly(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mappedOnly = on
}

// SetDerivations makes projections apply ds. nil turns derivation off.
func (s *Session) SetDerivations(ds []Derivation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.derive = ds
}

// Project returns the field names and export rows for the current mapping.
func (s *Session) Project() ([]string, []ExportRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table == nil {
		return nil, nil, ErrNoTable
	}
	s.touch()
	fields, rows := s.project()
	return fields, rows, nil
}

func (s *Session) project() ([]string, []ExportRow) {
	rows := Project(s.table, s.mapping)
	if len(s.derive) > 0 {
		rows = Derive(s.mapping, s.table.Header, rows, s.derive)
	}
	if s.mappedOnly {
		return SelectMapped(s.mapping, rows)
	}
	return s.schema.Fields(), rows
}

// ExportTo projects the table and exports it in format to path.
// A StateOfferFallback result is remembered for ExportFallback.
func (s *Session) ExportTo(ctx context.Context, format, path string) ExportResult {
	s.mu.Lock()
	if s.table == nil {
		s.mu.Unlock()
		return ExportResult{Format: format, Path: path, State: StateFailed, Err: ErrNoTable}
	}
	s.touch()
	fields, rows := s.project()
	s.mu.Unlock()

	req := ExportRequest{Rows: rows, Fields: fields, Format: format, Path: path}
	result := s.runExport(ctx, req, s.exporter.Export)

	s.mu.Lock()
	s.pending = nil
	if result.State == StateOfferFallback && result.Offer != nil {
		s.pending = &pendingFallback{req: req, offer: *result.Offer}
	}
	s.mu.Unlock()

	return result
}

// PendingFallback returns the outstanding fallback offer, if any.
func (s *Session) PendingFallback() (FallbackOffer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return FallbackOffer{}, false
	}
	return s.pending.offer, true
}

// DeclineFallback discards the outstanding offer and reports whether there
// was one.
func (s *Session) DeclineFallback() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	had := s.pending != nil
	s.pending = nil
	s.touch()
	return had
}

// ExportFallback accepts the outstanding offer. An empty path uses the
// offered path. The result is StateDone or StateFailed; the offer is
// consumed either way.
func (s *Session) ExportFallback(ctx context.Context, path string) ExportResult {
	s.mu.Lock()
	p := s.pending
	s.pending = nil
	s.touch()
	s.mu.Unlock()

	if p == nil {
		return ExportResult{Path: path, State: StateFailed, Err: ErrNoFallback}
	}
	if path == "" {
		path = p.offer.Path
	}

	req := p.req
	req.Format = p.offer.Format
	req.Path = path
	return s.runExport(ctx, req, s.exporter.Fallback)
}

func (s *Session) runExport(ctx context.Context, req ExportRequest, attempt func(context.Context, ExportRequest) ExportResult) ExportResult {
	if s.limiter != nil {
		if err := s.limiter.Acquire(ctx); err != nil {
			return ExportResult{Format: req.Format, Path: req.Path, Rows: len(req.Rows), State: StateFailed, Err: err}
		}
		defer s.limiter.Release()
	}
	return attempt(ctx, req)
}

// touch records activity. Callers hold s.mu.
func (s *Session) touch() {
	s.lastUsed = time.Now()
}

func (s *Session) logger() *slog.Logger {
	if s.id == "" {
		return slog.Default()
	}
	return slog.Default().With("session_id", s.id)
}
