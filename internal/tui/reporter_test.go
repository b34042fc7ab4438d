package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"clipforge/internal/clip"
	"clipforge/internal/config"
	"clipforge/internal/plan"
	"clipforge/internal/render"
)

func TestJobRow(t *testing.T) {
	spec := clip.ClipSpec{Duration: 1, FPS: 25, Layout: "image-only-center"}
	p, _, err := plan.Compile(context.Background(), config.Default(), spec, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	row := JobRow(render.Job{Index: 4, Plan: p})
	want := []string{"004", "-", "image-only-center", StatusPending, ""}
	if strings.Join(row, "|") != strings.Join(want, "|") {
		t.Fatalf("expected row %v, got %v", want, row)
	}
	if len(row) != len(RenderColumns) {
		t.Fatalf("row has %d fields for %d columns", len(row), len(RenderColumns))
	}
}

func TestResultStatus(t *testing.T) {
	tests := []struct {
		name       string
		res        render.Result
		wantStatus string
		wantDetail string
	}{
		{"rendered", render.Result{OutputPath: "/tmp/clips/clip_001.mp4"}, StatusRendered, "clip_001.mp4"},
		{"skipped", render.Result{Skipped: true, Reason: "up to date"}, StatusSkipped, "up to date"},
		{"skipped without reason", render.Result{Skipped: true}, StatusSkipped, "-"},
		{"error", render.Result{Err: errors.New("ffmpeg exited\nmore")}, StatusError, "ffmpeg exited"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, detail := ResultStatus(tt.res)
			if status != tt.wantStatus || detail != tt.wantDetail {
				t.Fatalf("expected (%q, %q), got (%q, %q)", tt.wantStatus, tt.wantDetail, status, detail)
			}
		})
	}
}

func TestRenderReporterSendsRowUpdates(t *testing.T) {
	var msgs []tea.Msg
	r := NewRenderReporter(func(msg tea.Msg) { msgs = append(msgs, msg) })

	r.Start(render.Job{Index: 2})
	r.Complete(render.Result{Index: 2, OutputPath: "clip_002.mp4"})

	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	start := msgs[0].(RowUpdateMsg)
	if start.Key != "clip:002" || start.Fields[ColStatus] != StatusRendering {
		t.Fatalf("unexpected start message %+v", start)
	}
	done := msgs[1].(RowUpdateMsg)
	if done.Fields[ColStatus] != StatusRendered || done.Fields[ColDetail] != "clip_002.mp4" {
		t.Fatalf("unexpected complete message %+v", done)
	}
}

func TestPlainReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainReporter(&buf)
	r.Start(render.Job{Index: 1})
	r.Complete(render.Result{Index: 1, Skipped: true, Reason: "up to date"})

	if got := buf.String(); got != "001 skipped   up to date\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestDetectMode(t *testing.T) {
	var buf bytes.Buffer
	if got := DetectMode(&buf, false, true); got != ModeJSON {
		t.Fatalf("expected JSON mode, got %v", got)
	}
	if got := DetectMode(&buf, false, false); got != ModePlain {
		t.Fatalf("expected plain mode for a buffer, got %v", got)
	}
	if IsTerminal(&buf) {
		t.Fatal("a buffer is not a terminal")
	}
}
