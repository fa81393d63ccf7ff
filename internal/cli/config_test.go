package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("loadConfig() on a missing explicit path should error")
	}

	// Empty path with no file anywhere falls back to defaults
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig(\"\") error: %v", err)
	}
	if cfg.Layout.Algorithm != "forceatlas2" {
		t.Errorf("default algorithm = %q, want forceatlas2", cfg.Layout.Algorithm)
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("default backend = %q, want file", cfg.Cache.Backend)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ossmap.toml")
	content := `
[layout]
algorithm = "layered"
iterations = 50
seed = 7

[cache]
backend = "redis"
redis_addr = "cache.internal:6379"
scope = "staging"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}

	if cfg.Layout.Algorithm != "layered" {
		t.Errorf("algorithm = %q, want layered", cfg.Layout.Algorithm)
	}
	if cfg.Layout.Iterations != 50 {
		t.Errorf("iterations = %d, want 50", cfg.Layout.Iterations)
	}
	if cfg.Layout.Seed != 7 {
		t.Errorf("seed = %d, want 7", cfg.Layout.Seed)
	}
	if cfg.Cache.Backend != "redis" {
		t.Errorf("backend = %q, want redis", cfg.Cache.Backend)
	}
	if cfg.Cache.RedisAddr != "cache.internal:6379" {
		t.Errorf("redis_addr = %q, want cache.internal:6379", cfg.Cache.RedisAddr)
	}
	if cfg.Cache.Scope != "staging" {
		t.Errorf("scope = %q, want staging", cfg.Cache.Scope)
	}
}

func TestLoadConfigPartial(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ossmap.toml")
	if err := os.WriteFile(path, []byte("[cache]\nbackend = \"none\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}

	// Unset sections keep their defaults
	if cfg.Layout.Algorithm != "forceatlas2" {
		t.Errorf("algorithm = %q, want forceatlas2", cfg.Layout.Algorithm)
	}
	if cfg.Cache.Backend != "none" {
		t.Errorf("backend = %q, want none", cfg.Cache.Backend)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ossmap.toml")
	if err := os.WriteFile(path, []byte("[layout\nbroken"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := loadConfig(path); err == nil {
		t.Error("loadConfig() should reject malformed TOML")
	}
}
