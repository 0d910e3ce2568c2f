package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.Enabled {
		t.Fatal("matching should be enabled by default")
	}
	if cfg.MinWidth != 320 || cfg.MaxWidth != 2048 {
		t.Fatalf("default width bounds %d..%d, want 320..2048", cfg.MinWidth, cfg.MaxWidth)
	}
	if cfg.DownscaleStep != 0.9 || cfg.UpscaleStep != 1.1 {
		t.Fatalf("default steps %v/%v, want 0.9/1.1", cfg.DownscaleStep, cfg.UpscaleStep)
	}
	if cfg.ArtifactDir == "" {
		t.Fatal("default artifact dir must be set")
	}
}

func TestValidate_ClampsBadValues(t *testing.T) {
	cfg := &Config{
		Threshold:     2.5,
		MinWidth:      -10,
		MaxWidth:      100, // below MinWidth after clamping
		DownscaleStep: 1.4,
		UpscaleStep:   0.5,
		Stride:        0,
		CacheSize:     -1,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Threshold != 0.90 {
		t.Fatalf("threshold = %v, want 0.90", cfg.Threshold)
	}
	if cfg.MinWidth != 320 || cfg.MaxWidth != 2048 {
		t.Fatalf("width bounds %d..%d, want 320..2048", cfg.MinWidth, cfg.MaxWidth)
	}
	if cfg.DownscaleStep != 0.9 || cfg.UpscaleStep != 1.1 {
		t.Fatalf("steps %v/%v, want 0.9/1.1", cfg.DownscaleStep, cfg.UpscaleStep)
	}
	if cfg.Stride != 1 || cfg.CacheSize != 0 {
		t.Fatalf("stride=%d cache=%d, want 1 and 0", cfg.Stride, cfg.CacheSize)
	}
	if cfg.ArtifactDir == "" {
		t.Fatal("artifact dir must be backfilled")
	}
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if !cfg.Enabled || cfg.MinWidth != 320 {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoad_BadJSONReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	cfg := DefaultConfig()
	cfg.Enabled = false
	cfg.Threshold = 0.75
	cfg.MaxWidth = 1600
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Enabled || got.Threshold != 0.75 || got.MaxWidth != 1600 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}
