package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/EricFan2002/GTOJsonExplorer/internal/logging"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/gametree"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/ports"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates dataset access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.DatasetStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	treeMu sync.RWMutex
	trees  map[string]*gametree.Tree
	parses singleflight.Group

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
	newID   func() string
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets how long a distributed lock is held before it expires.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithIDGenerator replaces the UUID session IDs.
func WithIDGenerator(gen func() string) Option {
	return func(m *Manager) {
		m.newID = gen
	}
}

// NewManager creates a new dataset Manager over the given store.
func NewManager(store ports.DatasetStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		trees:   make(map[string]*gametree.Tree),
		lockTTL: 30 * time.Second,
		logger:  logging.NewNop(), // Default to no-op
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// Create validates data as a solver tree and stores it under a new session ID.
// Invalid JSON is rejected with domain.ErrMalformedPayload and nothing is
// stored.
func (m *Manager) Create(ctx context.Context, filename string, data []byte) (*ports.Dataset, error) {
	tree, err := gametree.Parse(data)
	if err != nil {
		return nil, err
	}

	d := &ports.Dataset{
		ID:        m.newID(),
		Filename:  filename,
		CreatedAt: time.Now().UTC(),
		Data:      data,
	}
	err = m.WithLock(ctx, d.ID, func(ctx context.Context) error {
		return m.store.Save(ctx, d)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store dataset: %w", err)
	}

	m.treeMu.Lock()
	m.trees[d.ID] = tree
	m.treeMu.Unlock()

	m.logger.Info("dataset stored", "session_id", d.ID, "filename", filename, "bytes", len(data))
	return d, nil
}

// Tree returns the parsed tree of a session, loading and parsing the stored
// dataset on a cache miss. Concurrent misses share one parse.
func (m *Manager) Tree(ctx context.Context, id string) (*gametree.Tree, error) {
	m.treeMu.RLock()
	tree, ok := m.trees[id]
	m.treeMu.RUnlock()
	if ok {
		return tree, nil
	}

	v, err, _ := m.parses.Do(id, func() (any, error) {
		d, err := m.store.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		tree, err := gametree.Parse(d.Data)
		if err != nil {
			return nil, fmt.Errorf("stored dataset %s: %w", id, err)
		}
		m.treeMu.Lock()
		m.trees[id] = tree
		m.treeMu.Unlock()
		return tree, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*gametree.Tree), nil
}

// Dataset returns the stored dataset of a session.
func (m *Manager) Dataset(ctx context.Context, id string) (*ports.Dataset, error) {
	return m.store.Load(ctx, id)
}

// Delete removes the dataset and its cached tree.
func (m *Manager) Delete(ctx context.Context, id string) error {
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		if _, err := m.store.Load(ctx, id); err != nil {
			return err
		}
		return m.store.Delete(ctx, id)
	})

	m.treeMu.Lock()
	delete(m.trees, id)
	m.treeMu.Unlock()

	if errors.Is(err, domain.ErrSessionNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to delete dataset %s: %w", id, err)
	}
	m.logger.Info("dataset deleted", "session_id", id)
	return nil
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying dataset store.
func (m *Manager) Store() ports.DatasetStore {
	return m.store
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
