package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/EricFan2002/GTOJsonExplorer/pkg/session"
)

// LocalDataset uploads a dataset file into a session manager and keeps the
// session current as the file is reloaded. Each reload creates a fresh
// session and deletes the previous one.
type LocalDataset struct {
	mgr    *session.Manager
	path   string
	logger *slog.Logger

	mu sync.Mutex
	id string
}

// NewLocalDataset binds the file at path to mgr.
func NewLocalDataset(mgr *session.Manager, path string, logger *slog.Logger) *LocalDataset {
	return &LocalDataset{mgr: mgr, path: path, logger: logger}
}

// Open reads and parses the file and returns its new session ID. On error
// the previous session stays current.
func (d *LocalDataset) Open(ctx context.Context) (string, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return "", fmt.Errorf("failed to read dataset: %w", err)
	}
	ds, err := d.mgr.Create(ctx, filepath.Base(d.path), data)
	if err != nil {
		return "", fmt.Errorf("failed to load %s: %w", d.path, err)
	}

	d.mu.Lock()
	prev := d.id
	d.id = ds.ID
	d.mu.Unlock()

	if prev != "" {
		if err := d.mgr.Delete(ctx, prev); err != nil {
			d.logger.Warn("failed to drop previous session", "session_id", prev, "err", err)
		}
	}
	d.logger.Info("dataset loaded", "path", d.path, "session_id", ds.ID, "bytes", len(data))
	return ds.ID, nil
}

// SessionID returns the current session, or "" before the first Open.
func (d *LocalDataset) SessionID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.id
}

// Loader starts a dataset session in a browser.
type Loader interface {
	Load(ctx context.Context, sessionID string) error
}

// ReloadOnChange reopens the dataset and resets l every time changes fires,
// until the channel closes. A file that fails to parse is logged and
// leaves the current session in place.
func (d *LocalDataset) ReloadOnChange(ctx context.Context, changes <-chan struct{}, l Loader) {
	for range changes {
		id, err := d.Open(ctx)
		if err != nil {
			d.logger.Error("reload failed", "path", d.path, "err", err)
			continue
		}
		if err := l.Load(ctx, id); err != nil {
			d.logger.Error("reset failed", "session_id", id, "err", err)
		}
	}
}
