// Package cli holds the wiring shared by the gtox commands: logger and
// store construction from config, signal handling and dataset watching.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/EricFan2002/GTOJsonExplorer/internal/config"
	"github.com/EricFan2002/GTOJsonExplorer/internal/logging"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/adapters/memory"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/adapters/redis"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/persistence/middleware"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/ports"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/session"
)

// NewLogger builds the logger described by cfg. Text logs go to w unless
// w is nil, in which case os.Stderr is used.
func NewLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stderr
	}
	switch cfg.Format {
	case "", "text":
		return logging.NewText(w, level), nil
	case "json":
		return logging.NewJSON(w, level), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
}

// NewManager builds the session manager over the store selected by cfg:
// Redis with a distributed lock when an address is set, memory otherwise.
// Payloads are encrypted when cfg carries a key. The returned func releases
// the store.
func NewManager(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (*session.Manager, func() error, error) {
	if cfg.Addr == "" {
		logger.Debug("using in-memory dataset store")
		return session.NewManager(memory.NewStore(), session.WithLogger(logger)), func() error { return nil }, nil
	}

	store := redis.New(cfg.Addr, redis.WithPrefix(cfg.Prefix), redis.WithTTL(cfg.TTL))
	if err := store.Client().Ping(ctx).Err(); err != nil {
		_ = store.Client().Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	logger.Info("using redis dataset store", "addr", cfg.Addr, "prefix", cfg.Prefix)

	var datasets ports.DatasetStore = store
	if cfg.EncryptionKey != "" {
		keys, err := middleware.ParseKeys(cfg.EncryptionKey, cfg.FallbackKeys...)
		if err != nil {
			_ = store.Client().Close()
			return nil, nil, err
		}
		mw, err := middleware.NewEncryptionMiddleware(keys)
		if err != nil {
			_ = store.Client().Close()
			return nil, nil, err
		}
		datasets = middleware.Chain(store, mw)
		logger.Info("dataset encryption enabled", "fallback_keys", len(cfg.FallbackKeys))
	}

	mgr := session.NewManager(datasets,
		session.WithLogger(logger),
		session.WithLocker(redis.NewLocker(store.Client(), cfg.Prefix)),
	)
	return mgr, store.Client().Close, nil
}
