// Package redis stores uploaded datasets in Redis so several gtox servers
// can share them, and provides the distributed lock that serializes writes.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/ports"
	"github.com/goccy/go-json"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "gtox:"

// Store implements ports.DatasetStore on Redis. Each dataset is one JSON
// value; a sorted set indexes the IDs by expiry time.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures the Store.
type Option func(*Store)

// WithTTL expires datasets ttl after their last save. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix replaces DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New connects to the Redis server at addr.
func New(addr string, opts ...Option) *Store {
	return NewFromClient(backend.NewClient(&backend.Options{Addr: addr}), opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Client returns the underlying client, for sharing with a Locker.
func (s *Store) Client() *backend.Client { return s.client }

func (s *Store) key(id string) string { return s.prefix + id }

func (s *Store) indexKey() string { return s.prefix + "index" }

// Save writes the dataset and indexes it in one pipeline.
func (s *Store) Save(ctx context.Context, d *ports.Dataset) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode dataset %s: %w", d.ID, err)
	}

	score := float64(0)
	if s.ttl > 0 {
		score = float64(time.Now().Add(s.ttl).Unix())
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(d.ID), payload, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: d.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis error saving dataset %s: %w", d.ID, err)
	}
	return nil
}

// Load reads a dataset.
func (s *Store) Load(ctx context.Context, id string) (*ports.Dataset, error) {
	payload, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis error loading dataset %s: %w", id, err)
	}

	var d ports.Dataset
	if err := json.Unmarshal(payload, &d); err != nil {
		return nil, fmt.Errorf("failed to decode dataset %s: %w", id, err)
	}
	return &d, nil
}

// Delete removes the dataset and its index entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis error deleting dataset %s: %w", id, err)
	}
	return nil
}

// List returns the IDs of live datasets. Index entries of expired datasets
// are removed lazily here.
func (s *Store) List(ctx context.Context) ([]string, error) {
	if s.ttl > 0 {
		now := strconv.FormatInt(time.Now().Unix(), 10)
		// Score 0 marks entries saved without a TTL.
		if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "1", now).Err(); err != nil {
			return nil, fmt.Errorf("redis error pruning index: %w", err)
		}
	}
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error listing datasets: %w", err)
	}
	return ids, nil
}
