package core

// scheduler.go runs background maintenance for the session store.
//
// Sessions hold a whole decoded file in memory, so sessions left behind by
// closed browser tabs or crashed clients are removed once idle for longer
// than the configured TTL.

import (
	"context"
	"log/slog"
	"time"
)

// ReaperConfig holds configuration for the session reaper.
type ReaperConfig struct {
	IdleTTL       time.Duration // Remove sessions idle this long (default: 30m)
	CheckInterval time.Duration // How often to run (default: 1m)
}

func (c ReaperConfig) withDefaults() ReaperConfig {
	if c.IdleTTL <= 0 {
		c.IdleTTL = 30 * time.Minute
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = time.Minute
	}
	return c
}

// StartSessionReaper periodically removes idle sessions until ctx is
// cancelled. It blocks; run it in its own goroutine.
func (s *Service) StartSessionReaper(ctx context.Context, cfg ReaperConfig) {
	cfg = cfg.withDefaults()

	slog.Info("session reaper started",
		"idle_ttl", cfg.IdleTTL.String(),
		"interval", cfg.CheckInterval.String(),
	)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session reaper stopped")
			return
		case now := <-ticker.C:
			s.runReap(now, cfg.IdleTTL)
		}
	}
}

// runReap performs one reap cycle.
func (s *Service) runReap(now time.Time, ttl time.Duration) {
	removed := s.ReapIdle(now, ttl)
	if removed > 0 {
		slog.Info("reaped idle sessions",
			"removed", removed,
			"remaining", s.SessionCount(),
		)
		return
	}
	slog.Debug("session reap found nothing idle", "sessions", s.SessionCount())
}
