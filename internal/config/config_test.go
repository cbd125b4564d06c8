package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("CAMDECK_PORT", "")
	t.Setenv("CAMDECK_LOG_LEVEL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.ServerPort)
	}
	if cfg.FrameInterval() != 30*time.Millisecond {
		t.Errorf("Expected 30ms interval, got %v", cfg.FrameInterval())
	}
	if !cfg.PreviewEnabled {
		t.Error("Expected preview enabled by default")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Setenv("CAMDECK_PORT", "")
	t.Setenv("CAMDECK_LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"server_port":"9090","frame_interval_ms":50}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.ServerPort)
	}
	if cfg.FrameIntervalMS != 50 {
		t.Errorf("Expected interval 50, got %d", cfg.FrameIntervalMS)
	}
	if cfg.JPEGQuality != 80 {
		t.Errorf("Expected default quality kept, got %d", cfg.JPEGQuality)
	}
	if cfg.ServerAddress() != "localhost:9090" {
		t.Errorf("Unexpected address %s", cfg.ServerAddress())
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CAMDECK_PORT", "7000")
	t.Setenv("CAMDECK_LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerPort != "7000" || cfg.LogLevel != "debug" {
		t.Errorf("Expected env overrides, got port=%s level=%s", cfg.ServerPort, cfg.LogLevel)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("CAMDECK_PORT", "")
	t.Setenv("CAMDECK_LOG_LEVEL", "")
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte(`{not json`), 0644)
	if _, err := Load(bad); err == nil {
		t.Error("Expected error for malformed JSON")
	}

	zero := filepath.Join(dir, "zero.json")
	os.WriteFile(zero, []byte(`{"frame_interval_ms":0}`), 0644)
	if _, err := Load(zero); err == nil {
		t.Error("Expected error for zero interval")
	}

	port := filepath.Join(dir, "port.json")
	os.WriteFile(port, []byte(`{"server_port":"99999"}`), 0644)
	if _, err := Load(port); err == nil {
		t.Error("Expected error for out-of-range port")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	t.Setenv("CAMDECK_PORT", "")
	t.Setenv("CAMDECK_LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := defaultConfig()
	cfg.ServerPort = "8181"
	cfg.PreviewEnabled = false

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.ServerPort != "8181" || loaded.PreviewEnabled {
		t.Errorf("Unexpected loaded config %+v", loaded)
	}
}
