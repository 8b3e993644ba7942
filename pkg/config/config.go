// Package config loads cdnlock's TOML configuration.
//
// The file lives at $XDG_CONFIG_HOME/cdnlock/config.toml (or
// ~/.config/cdnlock/config.toml) unless a path is given explicitly. Every
// field is optional:
//
//	[registry]
//	url = "https://cdn.example.com/api/registry"
//
//	[registry.mongo]
//	uri = "mongodb://localhost:27017"
//	database = "cdn"
//
//	[cache]
//	backend = "redis"            # file | redis | memory | none
//	redis = { addr = "localhost:6379", prefix = "cdnlock:" }
//
//	[resolver]
//	concurrency = 16
//	wip_fallback = true
//
//	[server]
//	addr = ":8080"
//	request_timeout = "30s"
//
// Environment variables (CDNLOCK_REGISTRY_URL, CDNLOCK_MONGO_URI,
// CDNLOCK_REDIS_ADDR) override the file; command-line flags override both.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	cerrors "github.com/matzehuels/cdnlock/pkg/errors"
)

// Cache backends.
const (
	CacheFile   = "file"
	CacheRedis  = "redis"
	CacheMemory = "memory"
	CacheNone   = "none"
)

const (
	DefaultServerAddr     = ":8080"
	DefaultRequestTimeout = 60 * time.Second
	DefaultMongoDatabase  = "cdn"
	DefaultMongoColl      = "libraries"
	DefaultRedisPrefix    = "cdnlock:"
)

// Config is the root of the configuration file.
type Config struct {
	Registry RegistryConfig `toml:"registry"`
	Cache    CacheConfig    `toml:"cache"`
	Resolver ResolverConfig `toml:"resolver"`
	Server   ServerConfig   `toml:"server"`
}

// RegistryConfig selects where package metadata comes from. The first
// configured source wins: Index, then Mongo, then URL.
type RegistryConfig struct {
	URL     string            `toml:"url"`
	Index   string            `toml:"index"` // JSON index file
	Headers map[string]string `toml:"headers"`
	Mongo   MongoConfig       `toml:"mongo"`

	Attempts   int      `toml:"attempts"`
	RetryDelay Duration `toml:"retry_delay"`
}

// MongoConfig configures the Mongo-backed registry.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"` // file backend; empty uses cache.DefaultDir
	Redis   RedisConfig `toml:"redis"`
}

// RedisConfig configures the Redis cache backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// ResolverConfig tunes resolution.
type ResolverConfig struct {
	Concurrency int   `toml:"concurrency"`
	MaxRounds   int   `toml:"max_rounds"`
	WIPFallback *bool `toml:"wip_fallback"` // nil means enabled
	Strict      bool  `toml:"strict"`
}

// AllowWIP reports whether WIP substitution is enabled.
func (r ResolverConfig) AllowWIP() bool {
	return r.WIPFallback == nil || *r.WIPFallback
}

// ServerConfig configures `cdnlock serve`.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	RequestTimeout Duration `toml:"request_timeout"`
	Metrics        *bool    `toml:"metrics"` // nil means enabled
}

// MetricsEnabled reports whether /metrics is served.
func (s ServerConfig) MetricsEnabled() bool {
	return s.Metrics == nil || *s.Metrics
}

// Duration is a time.Duration written as a string ("30s", "1m").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns a Config with every default applied.
func Default() *Config {
	c := &Config{}
	c.WithDefaults()
	return c
}

// WithDefaults fills zero fields with defaults.
func (c *Config) WithDefaults() {
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheFile
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = DefaultRedisPrefix
	}
	if c.Registry.Mongo.Database == "" {
		c.Registry.Mongo.Database = DefaultMongoDatabase
	}
	if c.Registry.Mongo.Collection == "" {
		c.Registry.Mongo.Collection = DefaultMongoColl
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Server.RequestTimeout.Duration == 0 {
		c.Server.RequestTimeout.Duration = DefaultRequestTimeout
	}
}

// ApplyEnv overrides fields from CDNLOCK_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("CDNLOCK_REGISTRY_URL"); v != "" {
		c.Registry.URL = v
	}
	if v := os.Getenv("CDNLOCK_MONGO_URI"); v != "" {
		c.Registry.Mongo.URI = v
	}
	if v := os.Getenv("CDNLOCK_REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
}

// Validate checks the configuration for contradictions.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheFile, CacheMemory, CacheNone:
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			return cerrors.New(cerrors.ErrCodeInvalidConfig, "cache.redis.addr is required for the redis backend")
		}
	default:
		return cerrors.New(cerrors.ErrCodeInvalidConfig,
			"invalid cache.backend: %q (must be one of: file, redis, memory, none)", c.Cache.Backend)
	}
	if c.Registry.URL != "" {
		if err := cerrors.ValidateURL(c.Registry.URL); err != nil {
			return cerrors.Wrap(cerrors.ErrCodeInvalidConfig, err, "registry.url")
		}
	}
	if c.Resolver.Concurrency < 0 || c.Resolver.MaxRounds < 0 || c.Registry.Attempts < 0 {
		return cerrors.New(cerrors.ErrCodeInvalidConfig, "resolver and registry limits must not be negative")
	}
	return nil
}

// HasRegistry reports whether any registry source is configured.
func (c *Config) HasRegistry() bool {
	return c.Registry.Index != "" || c.Registry.Mongo.URI != "" || c.Registry.URL != ""
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cdnlock", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "cdnlock", "config.toml"), nil
}

// Load reads the config file at path, applies defaults and environment
// overrides, and validates the result. An empty path loads the default
// location, which may be absent.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	c := &Config{}
	if _, err := toml.DecodeFile(path, c); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			c = &Config{}
		} else {
			return nil, cerrors.Wrap(cerrors.ErrCodeInvalidConfig, err, "load %s", path)
		}
	}
	c.ApplyEnv()
	c.WithDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
