// Package config loads runtime configuration from environment variables and
// an optional tripchat.yaml override file, grounded on graph/options.go's
// defaults-with-override idiom — simplified from that file's functional
// Option chain (meant for tuning a concurrent scheduler this module drops)
// down to a flat struct plus a single Load function, since every setting
// here is a scalar read once at process start rather than something a
// caller composes per Engine.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds every environment-configurable setting spec.md §6 names.
type Config struct {
	RuntimeDir           string  `yaml:"runtime_dir"`
	ChromaPersistDir     string  `yaml:"chroma_persist_dir"`
	UserID               string  `yaml:"user_id"`
	LogLevel             string  `yaml:"log_level"`
	MaxGraphIters        int     `yaml:"max_graph_iters"`
	EvalThreshold        float64 `yaml:"eval_threshold"`
	MaxToolRetries       int     `yaml:"max_tool_retries"`
	SimulateToolTimeout  bool    `yaml:"simulate_tool_timeout"`
	SimulateBadRetrieval bool    `yaml:"simulate_bad_retrieval"`
	FailureSeed          string  `yaml:"failure_seed"`

	// MySQLDSN, when non-empty, selects memory.NewMySQLStore over the
	// default memory.NewSQLiteStore (ChromaPersistDir/memory.db) as the
	// backing store for the memory collaborator.
	MySQLDSN string `yaml:"mysql_dsn"`
}

// Defaults returns the baseline configuration before env/file overrides are
// applied.
func Defaults() Config {
	return Config{
		RuntimeDir:           "./runtime",
		ChromaPersistDir:     "./runtime/chroma",
		UserID:               "default",
		LogLevel:             "info",
		MaxGraphIters:        25,
		EvalThreshold:        3.5,
		MaxToolRetries:       1,
		SimulateToolTimeout:  false,
		SimulateBadRetrieval: false,
		FailureSeed:          "",
	}
}

// RecursionLimit is the graph engine's hard node-transition cap, derived
// from MaxGraphIters per spec.md §5: "≥ 10 * max_iters, minimum 200".
func (c Config) RecursionLimit() int {
	limit := 10 * c.MaxGraphIters
	if limit < 200 {
		limit = 200
	}
	return limit
}

// Load builds a Config starting from Defaults, applying a tripchat.yaml
// file if yamlPath is non-empty and exists, then applying environment
// variable overrides (which always win, so a deployment can override a
// checked-in YAML file without editing it).
func Load(yamlPath string) (Config, error) {
	cfg := Defaults()

	if yamlPath != "" {
		if data, err := os.ReadFile(yamlPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", yamlPath, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("config: read %s: %w", yamlPath, err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("RUNTIME_DIR"); ok {
		cfg.RuntimeDir = v
	}
	if v, ok := os.LookupEnv("CHROMA_PERSIST_DIR"); ok {
		cfg.ChromaPersistDir = v
	}
	if v, ok := os.LookupEnv("USER_ID"); ok {
		cfg.UserID = v
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("MAX_GRAPH_ITERS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxGraphIters = n
		}
	}
	if v, ok := os.LookupEnv("EVAL_THRESHOLD"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.EvalThreshold = f
		}
	}
	if v, ok := os.LookupEnv("MAX_TOOL_RETRIES"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxToolRetries = n
		}
	}
	if v, ok := os.LookupEnv("SIMULATE_TOOL_TIMEOUT"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.SimulateToolTimeout = b
		}
	}
	if v, ok := os.LookupEnv("SIMULATE_BAD_RETRIEVAL"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.SimulateBadRetrieval = b
		}
	}
	if v, ok := os.LookupEnv("FAILURE_SEED"); ok {
		cfg.FailureSeed = v
	}
	if v, ok := os.LookupEnv("MYSQL_DSN"); ok {
		cfg.MySQLDSN = v
	}
}
