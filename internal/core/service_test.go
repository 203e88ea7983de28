package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/fieldmap/internal/config"
	"github.com/JonMunkholm/fieldmap/internal/schema"
)

func newTestService(t *testing.T, maxSessions int) *Service {
	t.Helper()
	cfg := config.Default()
	cfg.Session.MaxSessions = maxSessions
	cfg.Mapping.TemplateDir = t.TempDir()
	cfg.Export.OutputDir = t.TempDir()

	svc, err := NewService(cfg, schema.MustNew([]string{"A", "B"}))
	require.NoError(t, err)
	return svc
}

func TestService_SessionLifecycle(t *testing.T) {
	svc := newTestService(t, 10)

	sess, err := svc.NewSession()
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID())

	got, err := svc.Session(sess.ID())
	require.NoError(t, err)
	assert.Same(t, sess, got)
	assert.Equal(t, []string{sess.ID()}, svc.SessionIDs())

	require.NoError(t, svc.CloseSession(sess.ID()))
	_, err = svc.Session(sess.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, svc.CloseSession(sess.ID()), ErrSessionNotFound)
}

func TestService_SessionLimit(t *testing.T) {
	svc := newTestService(t, 2)

	_, err := svc.NewSession()
	require.NoError(t, err)
	_, err = svc.NewSession()
	require.NoError(t, err)

	_, err = svc.NewSession()
	assert.ErrorIs(t, err, ErrTooManySessions)
	assert.Equal(t, 2, svc.SessionCount())
}

func TestService_ReapIdle(t *testing.T) {
	svc := newTestService(t, 10)

	old, err := svc.NewSession()
	require.NoError(t, err)
	fresh, err := svc.NewSession()
	require.NoError(t, err)

	old.mu.Lock()
	old.lastUsed = time.Now().Add(-time.Hour)
	old.mu.Unlock()

	removed := svc.ReapIdle(time.Now(), 30*time.Minute)

	assert.Equal(t, 1, removed)
	_, err = svc.Session(old.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Session(fresh.ID())
	assert.NoError(t, err)
}

func TestService_SessionExportsRemovedWithSession(t *testing.T) {
	svc := newTestService(t, 10)

	writeExport := func(sess *Session) string {
		dir := svc.SessionOutputDir(sess.ID())
		require.NoError(t, os.MkdirAll(dir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "export.xlsx"), []byte("x"), 0644))
		return dir
	}

	closed, err := svc.NewSession()
	require.NoError(t, err)
	idle, err := svc.NewSession()
	require.NoError(t, err)
	kept, err := svc.NewSession()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(svc.OutputDir(), kept.ID()), svc.SessionOutputDir(kept.ID()))

	closedDir, idleDir, keptDir := writeExport(closed), writeExport(idle), writeExport(kept)

	require.NoError(t, svc.CloseSession(closed.ID()))
	assert.NoDirExists(t, closedDir)

	idle.mu.Lock()
	idle.lastUsed = time.Now().Add(-time.Hour)
	idle.mu.Unlock()
	assert.Equal(t, 1, svc.ReapIdle(time.Now(), 30*time.Minute))
	assert.NoDirExists(t, idleDir)

	assert.FileExists(t, filepath.Join(keptDir, "export.xlsx"))
}

func TestService_LocalSessionIsUntracked(t *testing.T) {
	svc := newTestService(t, 1)

	local := svc.LocalSession()
	assert.Empty(t, local.ID())
	assert.Zero(t, svc.SessionCount())

	_, err := svc.NewSession()
	assert.NoError(t, err)
}

func TestNewService_RejectsBadRegionalEncoding(t *testing.T) {
	cfg := config.Default()
	cfg.Decode.RegionalEncoding = "ebcdic"

	_, err := NewService(cfg, schema.Default())
	assert.Error(t, err)
}

func TestService_StartSessionReaper(t *testing.T) {
	svc := newTestService(t, 10)
	sess, err := svc.NewSession()
	require.NoError(t, err)

	sess.mu.Lock()
	sess.lastUsed = time.Now().Add(-time.Hour)
	sess.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.StartSessionReaper(ctx, ReaperConfig{IdleTTL: time.Minute, CheckInterval: 5 * time.Millisecond})
		close(done)
	}()

	assert.Eventually(t, func() bool { return svc.SessionCount() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop after cancel")
	}
}
