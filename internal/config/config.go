// Package config loads the façade's configuration knobs (spec §6) from a
// YAML file, the way the original CLI's Config/loadConfig pair did.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// IDType selects the job-key variant.
type IDType string

const (
	IDTypeCounter IDType = "counter"
	IDTypeUUID    IDType = "uuid"
)

// StringComparerKind selects the comparer used for string keys/values
// (never for state-index keys, which are always case-insensitive).
type StringComparerKind string

const (
	ComparerOrdinal         StringComparerKind = "ordinal"
	ComparerCaseInsensitive StringComparerKind = "case_insensitive"
)

// Engine holds the six façade knobs of spec §6.
type Engine struct {
	// MaxExpirationTime caps every expiry request except counters and the
	// just-created-job window. Nil means no cap; 0 allows immediate
	// deletion.
	MaxExpirationTime *time.Duration `yaml:"max_expiration_time"`
	StringComparer     StringComparerKind `yaml:"string_comparer"`
	IDType              IDType             `yaml:"id_type"`
	MaxStateHistoryLength int              `yaml:"max_state_history_length"`
	// CommandTimeout bounds dispatcher.submit; 0 means infinite.
	CommandTimeout     time.Duration `yaml:"command_timeout"`
	EvictionInterval   time.Duration `yaml:"eviction_interval"`
	ReadStrategy       string        `yaml:"read_strategy"` // "sequential" | "concurrent"
}

// Config is the top-level document, mirroring the original CLI's
// single-`engine:`-key YAML shape.
type Config struct {
	Engine Engine `yaml:"engine"`
}

// Default returns the façade defaults of spec §6.
func Default() Config {
	d := 3 * time.Hour
	return Config{
		Engine: Engine{
			MaxExpirationTime:     &d,
			StringComparer:        ComparerOrdinal,
			IDType:                IDTypeCounter,
			MaxStateHistoryLength: 10,
			CommandTimeout:        0,
			EvictionInterval:      5 * time.Second,
			ReadStrategy:          "sequential",
		},
	}
}

// Load reads and parses a YAML config file, filling in defaults for any
// field the file does not set.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
