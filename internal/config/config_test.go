package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()
	if cfg.Engine.IDType != IDTypeCounter {
		t.Fatalf("IDType = %v, want %v", cfg.Engine.IDType, IDTypeCounter)
	}
	if cfg.Engine.StringComparer != ComparerOrdinal {
		t.Fatalf("StringComparer = %v, want %v", cfg.Engine.StringComparer, ComparerOrdinal)
	}
	if cfg.Engine.MaxExpirationTime == nil || *cfg.Engine.MaxExpirationTime != 3*time.Hour {
		t.Fatalf("MaxExpirationTime = %v, want 3h", cfg.Engine.MaxExpirationTime)
	}
	if cfg.Engine.MaxStateHistoryLength != 10 {
		t.Fatalf("MaxStateHistoryLength = %d, want 10", cfg.Engine.MaxStateHistoryLength)
	}
	if cfg.Engine.ReadStrategy != "sequential" {
		t.Fatalf("ReadStrategy = %q, want sequential", cfg.Engine.ReadStrategy)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	contents := `
engine:
  id_type: uuid
  string_comparer: case_insensitive
  read_strategy: concurrent
  max_state_history_length: 25
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.IDType != IDTypeUUID {
		t.Fatalf("IDType = %v, want uuid", cfg.Engine.IDType)
	}
	if cfg.Engine.StringComparer != ComparerCaseInsensitive {
		t.Fatalf("StringComparer = %v, want case_insensitive", cfg.Engine.StringComparer)
	}
	if cfg.Engine.ReadStrategy != "concurrent" {
		t.Fatalf("ReadStrategy = %q, want concurrent", cfg.Engine.ReadStrategy)
	}
	if cfg.Engine.MaxStateHistoryLength != 25 {
		t.Fatalf("MaxStateHistoryLength = %d, want 25", cfg.Engine.MaxStateHistoryLength)
	}
	// Fields the override file doesn't set keep their defaults.
	if cfg.Engine.EvictionInterval != 5*time.Second {
		t.Fatalf("EvictionInterval = %v, want the default 5s", cfg.Engine.EvictionInterval)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error reading a nonexistent config file")
	}
}
