package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: "9000"
game:
  question_set: capitals
  advance_delay: 30s
  shuffle: false
admins: [chicago311, LesterRonquillo]
redis:
  addr: localhost:6379
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9000" || cfg.Game.QuestionSet != "capitals" || cfg.Game.Shuffle {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Game.PlayersFile != "data/guessjoin.json" || cfg.Log.Level != "info" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if len(cfg.Admins) != 2 || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected admins/redis: %+v", cfg)
	}
	if d := TTLDuration(cfg.Game.AdvanceDelay, time.Minute); d != 30*time.Second {
		t.Fatalf("expected 30s, got %s", d)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" || !cfg.Game.Shuffle {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if d := TTLDuration("bogus", time.Second); d != time.Second {
		t.Fatalf("expected fallback, got %s", d)
	}
	if d := TTLDuration("", time.Second); d != time.Second {
		t.Fatalf("expected fallback for empty, got %s", d)
	}
}
