package guide

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadGuide(t *testing.T) {
	path := writeFile(t, t.TempDir(), "guide.yaml", `
- trigger: Eiffel Tower
  image_id: 3
  effects:
    zoom: true
    slide: left
    blur:
      enabled: true
      strength: 0.5
- trigger: paris
  mode: image_with_text
  image_ids: [4, "5"]
  text: Bonjour
  caption_anchor: bottom
  caption_slot: 1
  layout: two-images-side-by-side
  keyframes:
    - time: 0
      values: {x: 10}
    - time: 1
      easing: ease_out
      values: {x: 20}
- trigger: fin
  mode: text-only
  text: The end
  character_anim:
    name: pop-in
`)

	entries, err := LoadGuide(path)
	if err != nil {
		t.Fatalf("LoadGuide: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	first := entries[0]
	if first.Line != 2 {
		t.Fatalf("expected first entry on line 2, got %d", first.Line)
	}
	if ids := first.IDs(); len(ids) != 1 || ids[0] != "3" {
		t.Fatalf("expected image id 3, got %v", ids)
	}
	if !first.Effects.Zoom || first.Effects.Slide != "left" || first.Effects.Blur == nil || *first.Effects.Blur.Strength != 0.5 {
		t.Fatalf("unexpected effects %+v", first.Effects)
	}

	second := entries[1]
	if second.NormalizedMode() != ModeImageWithText {
		t.Fatalf("expected normalized mode, got %q", second.NormalizedMode())
	}
	if ids := second.IDs(); strings.Join(ids, ",") != "4,5" {
		t.Fatalf("expected ids 4,5, got %v", ids)
	}
	if len(second.Keyframes) != 2 || second.Keyframes[1].Values["x"] != 20 {
		t.Fatalf("unexpected keyframes %+v", second.Keyframes)
	}

	third := entries[2]
	if third.WantsImages() {
		t.Fatal("text-only entry does not want images")
	}
	if third.CharacterAnim == nil || third.CharacterAnim.Name != "pop-in" {
		t.Fatalf("unexpected character anim %+v", third.CharacterAnim)
	}
}

func TestLoadGuideValidation(t *testing.T) {
	path := writeFile(t, t.TempDir(), "guide.yaml", `
- image_id: 1
- trigger: two
  mode: slideshow
- trigger: three
  caption_anchor: middle
  image_id: 2
  effects:
    slide: sideways
- trigger: four
  mode: text-only
`)

	entries, err := LoadGuide(path)
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected entries returned alongside errors, got %d", len(entries))
	}

	fields := map[string]bool{}
	for _, issue := range verrs.Issues() {
		fields[issue.Field] = true
	}
	for _, want := range []string{"trigger", "mode", "caption_anchor", "effects.slide", "text"} {
		if !fields[want] {
			t.Fatalf("expected an issue for %s, got %v", want, verrs)
		}
	}
	if !strings.Contains(verrs.Error(), "line 2 trigger is required") {
		t.Fatalf("expected line context in %q", verrs.Error())
	}
}

func TestLoadGuideEmpty(t *testing.T) {
	path := writeFile(t, t.TempDir(), "guide.yaml", "# nothing yet\n")
	if _, err := LoadGuide(path); err == nil {
		t.Fatal("expected an error for an empty guide")
	}
}

func TestLoadCharacters(t *testing.T) {
	path := writeFile(t, t.TempDir(), "characters.yaml", `
- trigger: surprise
  expression: shocked
  speech: Whoa!
- expression: happy
`)
	entries, err := LoadCharacters(path)
	var verrs ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) != 1 {
		t.Fatalf("expected one validation error, got %v", err)
	}
	if len(entries) != 2 || entries[0].Expression != "shocked" || entries[0].Speech != "Whoa!" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestValidationErrorFormatting(t *testing.T) {
	tests := []struct {
		err  ValidationError
		want string
	}{
		{ValidationError{Line: 4, Field: "mode", Message: "unknown"}, "line 4 mode unknown"},
		{ValidationError{Message: "broken"}, "entry broken"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
	if got := (ValidationErrors{}).Error(); got != "validation failed" {
		t.Errorf("empty ValidationErrors = %q", got)
	}
}
