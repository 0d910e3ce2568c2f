package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Config holds runtime configuration for visual verification. Fields may be
// loaded from a JSON file and overridden by command-line flags.
type Config struct {
	// Enabled gates all visual matching. When false, verification fails
	// immediately without touching any image.
	Enabled bool `json:"enabled"`
	Debug   bool `json:"debug"`

	// Matching parameters
	Threshold     float64 `json:"threshold"`
	MinWidth      int     `json:"min_width"`
	MaxWidth      int     `json:"max_width"`
	DownscaleStep float64 `json:"downscale_step"`
	UpscaleStep   float64 `json:"upscale_step"`
	Stride        int     `json:"stride"`

	// ArtifactDir receives annotated images of successful matches.
	ArtifactDir string `json:"artifact_dir"`
	// CacheSize bounds the verdict memoization cache; 0 disables it.
	CacheSize int `json:"cache_size"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		Debug:         false,
		Threshold:     0.90,
		MinWidth:      320,
		MaxWidth:      2048,
		DownscaleStep: 0.9,
		UpscaleStep:   1.1,
		Stride:        1,
		ArtifactDir:   filepath.Join(xdg.DataHome, "visual-match"),
		CacheSize:     64,
	}
}

// Validate clamps values to safe ranges.
func (c *Config) Validate() error {
	if c.Threshold <= 0 || c.Threshold > 1 {
		c.Threshold = 0.90
	}
	if c.MinWidth <= 0 {
		c.MinWidth = 320
	}
	if c.MaxWidth <= c.MinWidth {
		c.MaxWidth = 2048
	}
	if c.DownscaleStep <= 0 || c.DownscaleStep >= 1 {
		c.DownscaleStep = 0.9
	}
	if c.UpscaleStep <= 1 {
		c.UpscaleStep = 1.1
	}
	if c.Stride <= 0 {
		c.Stride = 1
	}
	if c.CacheSize < 0 {
		c.CacheSize = 0
	}
	if c.ArtifactDir == "" {
		c.ArtifactDir = filepath.Join(xdg.DataHome, "visual-match")
	}
	return nil
}

// Load reads configuration from the given JSON file path. A missing file
// yields DefaultConfig(); a JSON error yields defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return cfg, err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
