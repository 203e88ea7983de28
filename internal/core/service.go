package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/fieldmap/internal/config"
	"github.com/JonMunkholm/fieldmap/internal/schema"
)

// Service wires the decoder, exporter and template store together and keeps
// the mapping sessions of the HTTP API.
type Service struct {
	schema    *schema.Schema
	decoder   *Decoder
	exporter  *Exporter
	templates *TemplateStore
	limiter   *ExportLimiter
	nameOpts  NameMatchOptions
	outputDir string

	maxSessions int

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewService creates a Service from configuration and the target schema.
func NewService(cfg *config.Config, s *schema.Schema) (*Service, error) {
	dec, err := NewDecoder(DecoderOptionsFromConfig(cfg.Decode))
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}

	return &Service{
		schema:    s,
		decoder:   dec,
		exporter:  NewExporter(ExporterOptionsFromConfig(cfg)),
		templates: NewTemplateStore(cfg.Mapping.TemplateDir),
		limiter:   NewExportLimiter(cfg.Export.MaxConcurrent, cfg.Export.MaxWaitTime),
		nameOpts: NameMatchOptions{
			Threshold:     cfg.Mapping.NameThreshold,
			MinContainLen: cfg.Mapping.MinContainLen,
		},
		outputDir:   cfg.Export.OutputDir,
		maxSessions: cfg.Session.MaxSessions,
		sessions:    make(map[string]*Session),
	}, nil
}

// Schema returns the target schema.
func (s *Service) Schema() *schema.Schema { return s.schema }

// Decoder returns the shared decoder.
func (s *Service) Decoder() *Decoder { return s.decoder }

// Exporter returns the shared exporter.
func (s *Service) Exporter() *Exporter { return s.exporter }

// Templates returns the template store.
func (s *Service) Templates() *TemplateStore { return s.templates }

// NameOptions returns the name-matching options.
func (s *Service) NameOptions() NameMatchOptions { return s.nameOpts }

// OutputDir returns the directory for server-side exports.
func (s *Service) OutputDir() string { return s.outputDir }

// SessionOutputDir returns the export directory of session id. It is
// removed when the session is closed or reaped.
func (s *Service) SessionOutputDir(id string) string {
	return filepath.Join(s.outputDir, id)
}

// removeSessionOutput deletes the exports of session id. Failures are
// logged; the session is gone either way.
func (s *Service) removeSessionOutput(id string) {
	if id == "" || s.outputDir == "" {
		return
	}
	if err := os.RemoveAll(s.SessionOutputDir(id)); err != nil {
		slog.Warn("remove session exports", "session_id", id, "error", err)
	}
}

// ExportLimiterStatus returns the current export limiter state.
func (s *Service) ExportLimiterStatus() ExportLimiterStatus {
	return s.limiter.Status()
}

// WaitForExports blocks until in-flight exports finish or ctx ends.
func (s *Service) WaitForExports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// sessionDeps returns the collaborators shared by all sessions.
func (s *Service) sessionDeps(limited bool) SessionDeps {
	deps := SessionDeps{
		Schema:   s.schema,
		Decoder:  s.decoder,
		Exporter: s.exporter,
		NameOpts: s.nameOpts,
	}
	if limited {
		deps.Limiter = s.limiter
	}
	return deps
}

// LocalSession returns an untracked session for single-user callers such as
// the CLI. It is not subject to the export limiter or the session cap.
func (s *Service) LocalSession() *Session {
	return NewSession("", s.sessionDeps(false))
}

// NewSession creates and tracks a session with a fresh id.
func (s *Service) NewSession() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		return nil, fmt.Errorf("%w: limit is %d", ErrTooManySessions, s.maxSessions)
	}

	sess := NewSession(uuid.NewString(), s.sessionDeps(true))
	s.sessions[sess.ID()] = sess
	return sess, nil
}

// Session returns a tracked session by id.
func (s *Service) Session(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// CloseSession forgets a session and deletes its exports.
func (s *Service) CloseSession(id string) error {
	s.mu.Lock()
	if _, ok := s.sessions[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(s.sessions, id)
	s.mu.Unlock()

	s.removeSessionOutput(id)
	return nil
}

// SessionIDs returns the ids of tracked sessions, sorted.
func (s *Service) SessionIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SessionCount returns the number of tracked sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// ReapIdle removes sessions untouched since now minus ttl, deletes their
// exports and returns how many were removed.
func (s *Service) ReapIdle(now time.Time, ttl time.Duration) int {
	cutoff := now.Add(-ttl)

	s.mu.Lock()
	var reaped []string
	for id, sess := range s.sessions {
		if sess.LastUsed().Before(cutoff) {
			delete(s.sessions, id)
			reaped = append(reaped, id)
		}
	}
	s.mu.Unlock()

	for _, id := range reaped {
		s.removeSessionOutput(id)
	}
	return len(reaped)
}
