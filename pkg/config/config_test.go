package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Cache.TTLSeconds != 300 {
		t.Errorf("default ttl_seconds = %d; want 300", cfg.Cache.TTLSeconds)
	}
	if cfg.Cache.DefaultLimit != 8 {
		t.Errorf("default cache limit = %d; want 8", cfg.Cache.DefaultLimit)
	}
	if cfg.Cache.PreserveManual {
		t.Error("preserve_manual must default to off")
	}
	if cfg.Server.MaxLimit != 32 {
		t.Errorf("default max_limit = %d; want 32", cfg.Server.MaxLimit)
	}
}

func TestInitConfigCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := InitConfig(path)
	if err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	if cfg.Cache.TTLSeconds != 300 {
		t.Errorf("created config ttl = %d; want 300", cfg.Cache.TTLSeconds)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file was not created: %v", err)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[cache]
ttl_seconds = 60
preserve_manual = true

[server]
max_limit = 16
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Cache.TTLSeconds != 60 {
		t.Errorf("ttl_seconds = %d; want 60", cfg.Cache.TTLSeconds)
	}
	if !cfg.Cache.PreserveManual {
		t.Error("preserve_manual not loaded")
	}
	if cfg.Server.MaxLimit != 16 {
		t.Errorf("max_limit = %d; want 16", cfg.Server.MaxLimit)
	}
	// Untouched sections keep their defaults.
	if cfg.Cache.DefaultLimit != 8 {
		t.Errorf("default_limit = %d; want 8", cfg.Cache.DefaultLimit)
	}
}
