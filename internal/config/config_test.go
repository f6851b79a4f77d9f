package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(Options{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("Addr = %q, want :8080", cfg.Addr)
	}
	if cfg.TickInterval != 500*time.Millisecond {
		t.Fatalf("TickInterval = %v, want 500ms", cfg.TickInterval)
	}
	if cfg.BroadcastEvery != 2 {
		t.Fatalf("BroadcastEvery = %d, want 2", cfg.BroadcastEvery)
	}
}

func TestLoadCLIOverridesWinOverDefaults(t *testing.T) {
	cfg, err := Load(Options{Addr: ":9090", LogLevel: "debug", Seed: 42})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("Addr = %q, want :9090", cfg.Addr)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Seed != 42 {
		t.Fatalf("Seed = %d, want 42", cfg.Seed)
	}
}

func TestLoadUnknownConfigFileErrors(t *testing.T) {
	_, err := Load(Options{ConfigFile: "/nonexistent/path/does-not-exist.yaml"})
	if err == nil {
		t.Fatalf("expected an error loading a nonexistent config file")
	}
}
