// Package config loads gtox settings from a YAML file and GTOX_* environment
// variables. Environment values override the file; the file overrides the
// defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete gtox configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Explorer ExplorerConfig `yaml:"explorer"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig configures `gtox serve`.
type ServerConfig struct {
	Addr          string        `yaml:"addr"`
	MaxUploadSize int64         `yaml:"max_upload_size"`
	SnapshotDepth int           `yaml:"snapshot_depth"`
	CardSample    int           `yaml:"card_sample"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
}

// ExplorerConfig tunes the navigation controller.
type ExplorerConfig struct {
	Endpoint        string        `yaml:"endpoint"`
	DepthThreshold  int           `yaml:"depth_threshold"`
	ChunkSize       int           `yaml:"chunk_size"`
	PreExpandLevels int           `yaml:"pre_expand_levels"`
	CollapseCards   bool          `yaml:"collapse_cards"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ResizeDebounce  time.Duration `yaml:"resize_debounce"`
}

// RedisConfig selects the Redis dataset store. An empty Addr keeps datasets
// in memory. EncryptionKey, a base64 AES-256 key, seals stored payloads;
// FallbackKeys still decrypt datasets written before a rotation.
type RedisConfig struct {
	Addr          string        `yaml:"addr"`
	Prefix        string        `yaml:"prefix"`
	TTL           time.Duration `yaml:"ttl"`
	EncryptionKey string        `yaml:"encryption_key"`
	FallbackKeys  []string      `yaml:"fallback_keys"`
}

// LogConfig configures the slog logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:          ":5000",
			MaxUploadSize: 32 << 20,
			SnapshotDepth: 15,
			CardSample:    10,
			ReadTimeout:   30 * time.Second,
		},
		Explorer: ExplorerConfig{
			Endpoint:        "http://localhost:5000",
			DepthThreshold:  4,
			ChunkSize:       32,
			PreExpandLevels: 2,
			CollapseCards:   true,
			RequestTimeout:  10 * time.Second,
			ResizeDebounce:  200 * time.Millisecond,
		},
		Redis: RedisConfig{
			Prefix: "gtox:",
			TTL:    24 * time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate rejects values the runtime cannot work with.
func (c Config) Validate() error {
	if c.Server.MaxUploadSize <= 0 {
		return fmt.Errorf("server.max_upload_size must be positive")
	}
	if c.Explorer.DepthThreshold <= 0 {
		return fmt.Errorf("explorer.depth_threshold must be positive")
	}
	if c.Explorer.ChunkSize <= 0 {
		return fmt.Errorf("explorer.chunk_size must be positive")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	strs := map[string]*string{
		"GTOX_ADDR":           &cfg.Server.Addr,
		"GTOX_ENDPOINT":       &cfg.Explorer.Endpoint,
		"GTOX_REDIS_ADDR":     &cfg.Redis.Addr,
		"GTOX_REDIS_PREFIX":   &cfg.Redis.Prefix,
		"GTOX_ENCRYPTION_KEY": &cfg.Redis.EncryptionKey,
		"GTOX_LOG_LEVEL":      &cfg.Log.Level,
		"GTOX_LOG_FORMAT":     &cfg.Log.Format,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"GTOX_DEPTH_THRESHOLD": &cfg.Explorer.DepthThreshold,
		"GTOX_CHUNK_SIZE":      &cfg.Explorer.ChunkSize,
		"GTOX_SNAPSHOT_DEPTH":  &cfg.Server.SnapshotDepth,
	}
	for key, dst := range ints {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = n
		}
	}

	if v, ok := lookup("GTOX_MAX_UPLOAD_SIZE"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid GTOX_MAX_UPLOAD_SIZE: %w", err)
		}
		cfg.Server.MaxUploadSize = n
	}
	if v, ok := lookup("GTOX_COLLAPSE_CARDS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid GTOX_COLLAPSE_CARDS: %w", err)
		}
		cfg.Explorer.CollapseCards = b
	}
	durs := map[string]*time.Duration{
		"GTOX_REQUEST_TIMEOUT": &cfg.Explorer.RequestTimeout,
		"GTOX_REDIS_TTL":       &cfg.Redis.TTL,
	}
	for key, dst := range durs {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = d
		}
	}
	return nil
}
