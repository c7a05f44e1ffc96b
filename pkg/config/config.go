// Package config loads psdatlas settings from a TOML file with environment
// overrides.
//
// The file lives at $XDG_CONFIG_HOME/psdatlas/config.toml (falling back to
// ~/.config/psdatlas/config.toml). A missing file yields [Default]; a
// malformed one is an error.
//
//	padding = 4
//	coordinate_system = "bottom-left"
//	formats = ["png", "bin", "json"]
//
//	[cache]
//	redis_addr = "localhost:6379"
//	ttl = "12h"
//
//	[jobs]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
//	[server]
//	addr = ":8080"
//
// PSDATLAS_REDIS_ADDR, PSDATLAS_MONGO_URI and PSDATLAS_ADDR override the
// corresponding file values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/psdatlas/pkg/atlas"
	apperr "github.com/matzehuels/psdatlas/pkg/errors"
	"github.com/matzehuels/psdatlas/pkg/psdb"
)

// Job store backends.
const (
	JobsFile  = "file"
	JobsMongo = "mongo"
	JobsNone  = "none"
)

// Environment variables that override file values.
const (
	EnvRedisAddr = "PSDATLAS_REDIS_ADDR"
	EnvMongoURI  = "PSDATLAS_MONGO_URI"
	EnvAddr      = "PSDATLAS_ADDR"
)

// Config is the effective psdatlas configuration.
type Config struct {
	Padding          int                   `toml:"padding"`
	CoordinateSystem psdb.CoordinateSystem `toml:"coordinate_system"`
	Formats          []string              `toml:"formats"`

	Cache  Cache  `toml:"cache"`
	Jobs   Jobs   `toml:"jobs"`
	Server Server `toml:"server"`
}

// Cache selects and tunes the layout/artifact cache.
type Cache struct {
	// Dir overrides the file cache directory.
	Dir      string `toml:"dir,omitempty"`
	Disabled bool   `toml:"disabled"`

	// RedisAddr switches to the Redis backend when set.
	RedisAddr     string   `toml:"redis_addr,omitempty"`
	RedisPassword string   `toml:"redis_password,omitempty"`
	RedisDB       int      `toml:"redis_db"`
	TTL           Duration `toml:"ttl"`
}

// Jobs selects the job history backend.
type Jobs struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir,omitempty"`
	MongoURI      string `toml:"mongo_uri,omitempty"`
	MongoDatabase string `toml:"mongo_database,omitempty"`
}

// Server configures `psdatlas serve`.
type Server struct {
	Addr string `toml:"addr"`

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `toml:"max_body_bytes"`
}

// Duration is a time.Duration written as a Go duration string ("12h").
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Padding:          atlas.DefaultPadding,
		CoordinateSystem: psdb.TopLeft,
		Formats:          []string{"png", "bin"},
		Jobs:             Jobs{Backend: JobsFile, MongoDatabase: "psdatlas"},
		Server:           Server{Addr: ":8080", MaxBodyBytes: 8 << 20},
	}
}

// Path returns the default config file path.
func Path() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "psdatlas", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "psdatlas", "config.toml"), nil
}

// Load reads the config at path, or the default path if path is empty,
// then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := Path()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return cfg, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "parse %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, apperr.New(apperr.ErrCodeInvalidInput, "unknown config key %q in %s", undecoded[0].String(), path)
		}
	}

	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv(EnvMongoURI); v != "" {
		c.Jobs.MongoURI = v
		if c.Jobs.Backend == JobsFile {
			c.Jobs.Backend = JobsMongo
		}
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
}

// Validate checks value ranges and backend names.
func (c Config) Validate() error {
	if c.Padding < 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "padding must be non-negative, got %d", c.Padding)
	}
	switch c.Jobs.Backend {
	case JobsFile, JobsNone:
	case JobsMongo:
		if c.Jobs.MongoURI == "" {
			return apperr.New(apperr.ErrCodeInvalidInput, "jobs backend %q requires mongo_uri", JobsMongo)
		}
	default:
		return apperr.New(apperr.ErrCodeInvalidInput, "unknown jobs backend %q (must be one of: file, mongo, none)", c.Jobs.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "cache ttl must be non-negative")
	}
	return nil
}

// Encode writes c as TOML.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
