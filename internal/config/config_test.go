package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.RefreshDuration() != 2*time.Second {
		t.Errorf("refresh: got %s, want 2s", cfg.RefreshDuration())
	}
	if cfg.GracefulDuration() != 3*time.Second {
		t.Errorf("graceful timeout: got %s, want 3s", cfg.GracefulDuration())
	}
	if cfg.CommandDuration() != 5*time.Second {
		t.Errorf("command timeout: got %s, want 5s", cfg.CommandDuration())
	}
	if !cfg.ColorEnabled {
		t.Error("expected color enabled by default")
	}
	if len(cfg.Exclude) != 0 {
		t.Errorf("expected no default exclusions, got %v", cfg.Exclude)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RefreshInterval != Default().RefreshInterval {
		t.Errorf("refresh interval: got %d, want default %d", cfg.RefreshInterval, Default().RefreshInterval)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := Default()
	cfg.RefreshInterval = 5
	cfg.GracefulTimeout = 10000
	cfg.Exclude = []string{"rapportd", "ControlCenter"}
	cfg.ColorEnabled = false

	if err := cfg.Save(path); err != nil {
		t.Fatalf("unexpected error saving: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error loading: %v", err)
	}
	if loaded.RefreshInterval != 5 {
		t.Errorf("refresh interval: got %d, want 5", loaded.RefreshInterval)
	}
	if loaded.GracefulTimeout != 10000 {
		t.Errorf("graceful timeout: got %d, want 10000", loaded.GracefulTimeout)
	}
	if len(loaded.Exclude) != 2 || loaded.Exclude[0] != "rapportd" {
		t.Errorf("exclude: got %v", loaded.Exclude)
	}
	if loaded.ColorEnabled {
		t.Error("expected color disabled after round trip")
	}
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("refresh_interval: 10\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RefreshInterval != 10 {
		t.Errorf("refresh interval: got %d, want 10", cfg.RefreshInterval)
	}
	if cfg.GracefulTimeout != 3000 {
		t.Errorf("graceful timeout: got %d, want default 3000", cfg.GracefulTimeout)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("refresh_interval: [not an int\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected error parsing invalid yaml")
	}
}
