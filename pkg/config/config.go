// Package config loads the causeway configuration file.
//
// The file is TOML and every section is optional:
//
//	[log]
//	level = "info"
//
//	[cache]
//	backend = "redis"
//	ttl = "24h"
//	redis_addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
//	read_timeout = "10s"
//	max_body_bytes = 1048576
//	models_dir = "/srv/models"
//
//	[inference]
//	parallel = true
package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/causeway/pkg/cache"
	"github.com/matzehuels/causeway/pkg/errors"
)

// Config is the whole configuration.
type Config struct {
	Log       Log       `toml:"log"`
	Cache     Cache     `toml:"cache"`
	Server    Server    `toml:"server"`
	Inference Inference `toml:"inference"`
}

// Log configures the logger.
type Log struct {
	Level string `toml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// Cache selects the result cache backend.
type Cache struct {
	Backend       string   `toml:"backend" validate:"omitempty,oneof=none file redis mongo"`
	Dir           string   `toml:"dir"`
	TTL           Duration `toml:"ttl"`
	RedisAddr     string   `toml:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db" validate:"min=0,max=15"`
	MongoURI      string   `toml:"mongo_uri" validate:"required_if=Backend mongo"`
	MongoDatabase string   `toml:"mongo_database"`
}

// Server configures `causeway serve`.
type Server struct {
	Addr         string   `toml:"addr" validate:"omitempty,hostname_port|startswith=:"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
	MaxBodyBytes int64    `toml:"max_body_bytes" validate:"min=0"`
	// ModelsDir serves model files by relative path; empty disables it.
	ModelsDir string `toml:"models_dir"`
}

// Inference tunes identification.
type Inference struct {
	// Parallel identifies independent c-components concurrently.
	Parallel bool `toml:"parallel"`
}

// Duration is a time.Duration written as a Go duration string ("1h30m").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
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

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Log:   Log{Level: "info"},
		Cache: Cache{Backend: cache.BackendFile, TTL: Duration{cache.TTLQuery}, MongoDatabase: "causeway"},
		Server: Server{
			Addr:         ":8080",
			ReadTimeout:  Duration{10 * time.Second},
			WriteTimeout: Duration{30 * time.Second},
			MaxBodyBytes: 1 << 20,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/causeway/config.toml or its platform
// equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "causeway", "config.toml"), nil
}

// Load reads path over the defaults. A missing file at the default path is
// not an error; a missing file that was asked for explicitly is.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) && !explicit {
			return Default(), nil
		}
		if stderrors.Is(err, fs.ErrNotExist) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "config %s", path)
	}
	return Parse(string(data))
}

// Parse decodes a TOML document over the defaults and validates the result.
func Parse(doc string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(doc, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode config")
	}
	if extra := md.Undecoded(); len(extra) > 0 {
		keys := make([]string, len(extra))
		for i, k := range extra {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidFormat, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	return errors.ValidateStruct(c)
}

// CacheOptions converts the cache section for [cache.Open].
func (c Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:       c.Cache.Backend,
		Dir:           c.Cache.Dir,
		RedisAddr:     c.Cache.RedisAddr,
		RedisPassword: c.Cache.RedisPassword,
		RedisDB:       c.Cache.RedisDB,
		MongoURI:      c.Cache.MongoURI,
		MongoDatabase: c.Cache.MongoDatabase,
	}
}
