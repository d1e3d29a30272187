package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/causeway/pkg/errors"
)

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse(`
[log]
level = "debug"

[cache]
backend = "redis"
ttl = "2h"
redis_addr = "localhost:6379"

[server]
addr = "127.0.0.1:9000"
read_timeout = "3s"

[inference]
parallel = true
`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Cache.TTL.Duration != 2*time.Hour {
		t.Errorf("Cache.TTL = %v, want 2h", cfg.Cache.TTL)
	}
	if cfg.Server.ReadTimeout.Duration != 3*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 3s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != Default().Server.WriteTimeout {
		t.Errorf("Server.WriteTimeout = %v, want the default", cfg.Server.WriteTimeout)
	}
	if !cfg.Inference.Parallel {
		t.Error("Inference.Parallel = false, want true")
	}
	if opts := cfg.CacheOptions(); opts.Backend != "redis" || opts.RedisAddr != "localhost:6379" {
		t.Errorf("CacheOptions() = %+v", opts)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want errors.Code
	}{
		{"malformed", "[log\n", errors.ErrCodeInvalidFormat},
		{"unknown key", "[log]\ncolour = true\n", errors.ErrCodeInvalidFormat},
		{"bad duration", "[cache]\nttl = \"soon\"\n", errors.ErrCodeInvalidFormat},
		{"bad level", "[log]\nlevel = \"loud\"\n", errors.ErrCodeInvalidInput},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n", errors.ErrCodeInvalidInput},
		{"redis without addr", "[cache]\nbackend = \"redis\"\n", errors.ErrCodeInvalidInput},
		{"mongo without uri", "[cache]\nbackend = \"mongo\"\n", errors.ErrCodeInvalidInput},
		{"negative body limit", "[server]\nmax_body_bytes = -1\n", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.doc); !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[server]\naddr = \":7070\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("Server.Addr = %q, want :7070", cfg.Server.Addr)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want %v", err, errors.ErrCodeFileNotFound)
	}

	t.Setenv("XDG_CONFIG_HOME", dir+"/empty")
	t.Setenv("HOME", dir+"/empty")
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Server.Addr != Default().Server.Addr {
		t.Errorf("Load(\"\") did not fall back to defaults: %+v", cfg)
	}
}
