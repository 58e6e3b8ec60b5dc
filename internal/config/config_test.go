package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if cfg.Workers != want.Workers || cfg.LogFile != want.LogFile {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".overseer.yaml")
	content := "workers: 2\nparallel: false\nagents:\n  - security\nmin_health: 80\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workers != 2 || cfg.Parallel || cfg.MinHealth != 80 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if len(cfg.Agents) != 1 || cfg.Agents[0] != "security" {
		t.Errorf("agents not loaded: %v", cfg.Agents)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OVERSEER_WORKERS", "16")
	t.Setenv("OVERSEER_PARALLEL", "false")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workers != 16 {
		t.Errorf("env workers override ignored: %d", cfg.Workers)
	}
	if cfg.Parallel {
		t.Error("env parallel override ignored")
	}
}

func TestLoadRejectsNonPositiveWorkers(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".overseer.yaml")
	if err := os.WriteFile(path, []byte("workers: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected an error for workers: 0")
	}
}
