package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDisableOnAnimatedDefault(t *testing.T) {
	cfg := Config{}
	if !cfg.Zoom.DisableOnAnimatedValue() {
		t.Fatal("expected DisableOnAnimatedValue() = true when unset")
	}
}

func TestDisableOnAnimatedExplicitFalse(t *testing.T) {
	cfg := Config{Zoom: ZoomConfig{DisableOnAnimated: boolPtr(false)}}
	if cfg.Zoom.DisableOnAnimatedValue() {
		t.Fatal("expected DisableOnAnimatedValue() = false")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Video.Width != 1920 || cfg.Video.Height != 1080 || cfg.Video.FPS != 25 {
		t.Fatalf("unexpected video defaults: %+v", cfg.Video)
	}
	if cfg.Character.BoxSize != 614 {
		t.Fatalf("expected box size 614, got %d", cfg.Character.BoxSize)
	}
}

func TestLoadMergesPartialYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipforge.yaml")
	content := "video:\n  fps: 30\nzoom:\n  end: 1.2\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Video.FPS != 30 {
		t.Errorf("fps: got %d, want 30", cfg.Video.FPS)
	}
	if cfg.Zoom.End != 1.2 {
		t.Errorf("zoom end: got %g, want 1.2", cfg.Zoom.End)
	}
	if cfg.Zoom.Start != 1.0 {
		t.Errorf("zoom start: got %g, want 1.0", cfg.Zoom.Start)
	}
	if cfg.Video.Width != 1920 {
		t.Errorf("width: got %d, want 1920", cfg.Video.Width)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipforge.yaml")
	if err := os.WriteFile(path, []byte("video: [\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "unmarshal config") {
		t.Fatalf("expected unmarshal error, got %v", err)
	}
}

func TestMarshalRoundTripKeepsSections(t *testing.T) {
	data, err := Default().Marshal()
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	for _, token := range []string{"video:", "safe_height: 864", "end_pad_s: 0.25", "box_size: 614"} {
		if !strings.Contains(string(data), token) {
			t.Fatalf("expected marshalled config to contain %q\n%s", token, data)
		}
	}
}

func TestReservedWidth(t *testing.T) {
	if got := Default().ReservedWidth(); got != 25+614+40 {
		t.Fatalf("ReservedWidth: got %d, want %d", got, 25+614+40)
	}
}
