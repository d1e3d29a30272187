package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		emit  func(*log.Logger)
		want  bool
	}{
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("loaded model", "name", "chain") }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("cache miss", "key", "query") }, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("cache miss", "key", "query") }, true},
		{"warn at error", log.ErrorLevel, func(l *log.Logger) { l.Warn("cache unavailable") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("logged = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Rendered chain.svg")

	out := buf.String()
	if !strings.Contains(out, "Rendered chain.svg (") || !strings.Contains(out, "s)") {
		t.Errorf("progress output %q should carry the message and a duration", out)
	}
}

// The config file sets the level unless --verbose already asked for debug.
func TestConfigLogLevel(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[log]\nlevel = \"warn\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, start := range []log.Level{LogInfo, LogDebug} {
		c := New(&bytes.Buffer{}, start)
		c.configPath = path
		if err := c.loadConfig(nil, nil); err != nil {
			t.Fatalf("loadConfig: %v", err)
		}
		want := log.WarnLevel
		if start == LogDebug {
			want = LogDebug
		}
		if got := c.Logger.GetLevel(); got != want {
			t.Errorf("start %v: level = %v, want %v", start, got, want)
		}
	}
}
