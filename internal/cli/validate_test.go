package cli

import (
	"context"
	"strings"
	"testing"

	"clipforge/internal/config"
	"clipforge/internal/paths"
)

const validateSRT = `1
00:00:00,500 --> 00:00:02,000
Here is a quick note.

2
00:00:02,000 --> 00:00:04,000
And that is all.
`

func newValidateProject(t *testing.T, guideYAML string) paths.ProjectPaths {
	t.Helper()
	pp, err := paths.Resolve(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	writeProjectFile(t, pp.GuideFile, guideYAML)
	writeProjectFile(t, pp.SubtitlesFile, validateSRT)
	return pp
}

func TestCollectFindingsTextOnlyProject(t *testing.T) {
	pp := newValidateProject(t, "- trigger: quick note\n  mode: text-only\n  text: Remember this\n")

	findings := collectFindings(context.Background(), pp, config.Default())
	if n := countLevel(findings, config.LevelError); n != 0 {
		t.Fatalf("expected no errors, got %+v", findings)
	}

	var sawNarration bool
	for _, f := range findings {
		if f.Source == "build" && strings.Contains(f.Message, "narration duration unavailable") {
			sawNarration = true
		}
	}
	if !sawNarration {
		t.Fatalf("expected a narration fallback warning, got %+v", findings)
	}
}

func TestCollectFindingsGuideErrors(t *testing.T) {
	pp := newValidateProject(t, "- trigger: \"\"\n  mode: text-only\n- trigger: x\n  mode: slideshow\n")

	findings := collectFindings(context.Background(), pp, config.Default())
	var guideErrors int
	for _, f := range findings {
		if f.Source == "guide" && f.Level == config.LevelError {
			guideErrors++
		}
		if f.Source == "build" {
			t.Fatalf("build should not run after guide errors: %+v", f)
		}
	}
	// missing trigger, missing text, unknown mode
	if guideErrors != 3 {
		t.Fatalf("expected 3 guide errors, got %d: %+v", guideErrors, findings)
	}
}

func TestCollectFindingsConfigErrorsStopEarly(t *testing.T) {
	pp := newValidateProject(t, "- trigger: quick note\n  mode: text-only\n  text: hi\n")
	cfg := config.Default()
	cfg.Video.Width = 0

	findings := collectFindings(context.Background(), pp, cfg)
	for _, f := range findings {
		if f.Source != "config" {
			t.Fatalf("expected only config findings, got %+v", f)
		}
	}
	if countLevel(findings, config.LevelError) == 0 {
		t.Fatal("expected a config error")
	}
}

func TestCollectFindingsMissingSubtitles(t *testing.T) {
	pp, _ := paths.Resolve(t.TempDir())
	writeProjectFile(t, pp.GuideFile, "- trigger: a\n  mode: text-only\n  text: hi\n")

	findings := collectFindings(context.Background(), pp, config.Default())
	found := false
	for _, f := range findings {
		if f.Source == "subtitles" && f.Level == config.LevelError {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a subtitles error, got %+v", findings)
	}
}
