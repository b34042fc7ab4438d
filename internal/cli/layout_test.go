package cli

import (
	"testing"

	"clipforge/internal/clip"
	"clipforge/internal/config"
	"clipforge/internal/layout"
)

func TestLayoutRowsImageCenter(t *testing.T) {
	cfg := config.Default()
	res, _ := layout.Resolve(cfg, "image-only-center", false, 1, clip.SideLeft)

	rows, err := layoutRows(cfg, res)
	if err != nil {
		t.Fatalf("layoutRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	if r.Box != "slot 1" || r.Width != 1920 || r.Height != 864 {
		t.Fatalf("unexpected slot: %+v", r)
	}
	if r.X != 0 || r.Y != 108 {
		t.Fatalf("slot placed at (%v,%v), want (0,108)", r.X, r.Y)
	}
	if r.XExpr == "" || r.YExpr == "" {
		t.Fatalf("expected expression text, got %+v", r)
	}
}

func TestLayoutRowsCharacter(t *testing.T) {
	cfg := config.Default()
	res, _ := layout.Resolve(cfg, "single-centered", true, 1, clip.SideLeft)

	rows, err := layoutRows(cfg, res)
	if err != nil {
		t.Fatalf("layoutRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected slot and character rows, got %d", len(rows))
	}
	char := rows[1]
	if char.Box != "character" || char.Width != cfg.Character.BoxSize {
		t.Fatalf("unexpected character row: %+v", char)
	}
	if char.X != float64(cfg.Character.MarginX) || char.Y != 233 {
		t.Fatalf("character placed at (%v,%v), want (%d,233)", char.X, char.Y, cfg.Character.MarginX)
	}
}

func TestFormatCoord(t *testing.T) {
	if got := formatCoord(12.5); got != "12.5" {
		t.Fatalf("formatCoord(12.5) = %q", got)
	}
	if got := formatCoord(108); got != "108" {
		t.Fatalf("formatCoord(108) = %q", got)
	}
}
