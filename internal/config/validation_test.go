package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateDefaultsClean(t *testing.T) {
	results := Default().Validate("")
	if len(results) != 0 {
		t.Fatalf("expected no findings for defaults, got %+v", results)
	}
}

func TestValidateFindings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		level  string
		substr string
	}{
		{"zero fps", func(c *Config) { c.Video.FPS = 0 }, LevelError, "fps"},
		{"safe height too tall", func(c *Config) { c.Layout.SafeHeight = 2000 }, LevelError, "safe_height"},
		{"zoom out", func(c *Config) { c.Zoom.End = 0.9 }, LevelWarning, "zoom out"},
		{"unknown blur", func(c *Config) { c.Blur.Method = "gaussian" }, LevelWarning, "gaussian"},
		{"negative pad", func(c *Config) { c.Concat.EndPadSec = -1 }, LevelError, "end_pad_s"},
		{"huge character", func(c *Config) { c.Character.BoxSize = 1800 }, LevelError, "content width"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			results := cfg.Validate("")
			found := false
			for _, r := range results {
				if r.Level == tt.level && strings.Contains(r.Message, tt.substr) {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected %s containing %q, got %+v", tt.level, tt.substr, results)
			}
		})
	}
}

func TestValidateAssets(t *testing.T) {
	root := t.TempDir()
	cfg := Default()
	cfg.Caption.FontFile = "fonts/missing.ttf"

	results := cfg.Validate(root)
	if !HasErrors(results) {
		t.Fatalf("expected missing font error, got %+v", results)
	}

	if err := os.MkdirAll(filepath.Join(root, "fonts"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "fonts", "missing.ttf"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write font: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "characters"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	results = cfg.Validate(root)
	if len(results) != 0 {
		t.Fatalf("expected clean validation, got %+v", results)
	}
}
