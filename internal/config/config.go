// Package config loads the project configuration for overseer. Settings live
// in an .overseer.yaml file next to the working directory; environment
// variables prefixed OVERSEER_ override individual fields.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const DefaultPath = ".overseer.yaml"

type Config struct {
	// Workers bounds every worker pool (executor groups, agent fan-out).
	Workers int `yaml:"workers"`
	// Parallel toggles concurrent execution; off means one worker.
	Parallel bool `yaml:"parallel"`
	// LogFile receives the session log.
	LogFile string `yaml:"log_file"`
	// HistoryFile is the append-only reflection store.
	HistoryFile string `yaml:"history_file"`
	// Agents selects the analyzers to run; empty means all registered.
	Agents []string `yaml:"agents"`
	// MinHealth is the analyze exit threshold.
	MinHealth float64 `yaml:"min_health"`
}

func Default() Config {
	return Config{
		Workers:     4,
		Parallel:    true,
		LogFile:     "overseer.log",
		HistoryFile: ".overseer/reflections.jsonl",
		MinHealth:   50,
	}
}

// Load reads the config file at path, falling back to defaults when the file
// does not exist. Environment overrides apply last.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No file is fine; defaults plus env apply.
	case err != nil:
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	if cfg.Workers <= 0 {
		return cfg, fmt.Errorf("config: workers must be positive, got %d", cfg.Workers)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("OVERSEER_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("OVERSEER_PARALLEL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Parallel = b
		}
	}
	if v := os.Getenv("OVERSEER_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("OVERSEER_HISTORY_FILE"); v != "" {
		cfg.HistoryFile = v
	}
}

// WriteDefault creates a starter config file. Existing files are left alone.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config: %s already exists", path)
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
