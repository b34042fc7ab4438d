package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func testModel() ProgressModel {
	m := NewProgressModel("render", []Column{
		{Header: "CLIP", Width: 4},
		{Header: "STATUS", Width: 10},
		{Header: "DETAIL", Width: 12},
	})
	m.AddRow("clip:001", []string{"001", StatusPending, "first"})
	m.AddRow("clip:002", []string{"002", StatusPending, "second"})
	return m
}

func TestRowUpdateMsg(t *testing.T) {
	m := testModel()

	updated, _ := m.Update(RowUpdateMsg{
		Key:    "clip:001",
		Fields: map[string]string{"STATUS": StatusRendered, "DETAIL": "clip_001.mp4"},
	})
	m = updated.(ProgressModel)

	if m.rows[0].Fields[1] != StatusRendered {
		t.Fatalf("expected STATUS=rendered, got %q", m.rows[0].Fields[1])
	}
	if m.rows[0].Fields[2] != "clip_001.mp4" {
		t.Fatalf("expected DETAIL updated, got %q", m.rows[0].Fields[2])
	}
	if m.rows[1].Fields[1] != StatusPending {
		t.Fatalf("expected second row untouched, got %q", m.rows[1].Fields[1])
	}
}

func TestRowUpdateMsgUnknownKey(t *testing.T) {
	m := testModel()

	updated, _ := m.Update(RowUpdateMsg{Key: "clip:999", Fields: map[string]string{"STATUS": StatusError}})
	m = updated.(ProgressModel)

	for _, row := range m.rows {
		if row.Fields[1] != StatusPending {
			t.Fatalf("expected rows unchanged, got %q", row.Fields[1])
		}
	}
}

func TestAddRowPadsFields(t *testing.T) {
	m := testModel()
	m.AddRow("clip:003", []string{"003"})
	if got := len(m.rows[2].Fields); got != 3 {
		t.Fatalf("expected padded row of 3 fields, got %d", got)
	}
}

func TestWorkDoneMsg(t *testing.T) {
	m := testModel()

	updated, cmd := m.Update(WorkDoneMsg{})
	m = updated.(ProgressModel)

	if !m.Done() {
		t.Fatal("expected Done() after WorkDoneMsg")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestErrorMsg(t *testing.T) {
	m := testModel()

	updated, cmd := m.Update(ErrorMsg{Err: errors.New("boom")})
	m = updated.(ProgressModel)

	if !m.Done() || m.Err() == nil {
		t.Fatalf("expected done with error, got done=%v err=%v", m.Done(), m.Err())
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if view := m.View(); !strings.Contains(view, "Error: boom") {
		t.Fatalf("expected error view, got %q", view)
	}
}

func TestTally(t *testing.T) {
	m := testModel()
	m.AddRow("clip:003", []string{"003", StatusSkipped})
	m.AddRow("clip:004", []string{"004", StatusRendering})
	m.AddRow("clip:005", []string{"005", StatusError})

	tally := m.tally()
	if tally[StatusPending] != 2 || tally[StatusSkipped] != 1 || tally[StatusError] != 1 {
		t.Fatalf("unexpected tally %v", tally)
	}
	footer := m.footer()
	for _, want := range []string{"2/5", "1 skipped", "1 error"} {
		if !strings.Contains(footer, want) {
			t.Fatalf("expected footer to contain %q, got %q", want, footer)
		}
	}
	if strings.Contains(footer, "rendered") {
		t.Fatalf("expected zero counts to be hidden, got %q", footer)
	}
}

func TestTallyWithoutStatusColumn(t *testing.T) {
	m := NewProgressModel("", []Column{{Header: "CLIP", Width: 4}})
	m.AddRow("clip:001", []string{"001"})
	if tally := m.tally(); len(tally) != 0 {
		t.Fatalf("expected empty tally, got %v", tally)
	}
	if footer := m.footer(); !strings.Contains(footer, "0/1") {
		t.Fatalf("expected 0/1 in footer, got %q", footer)
	}
}

func TestFooterElapsed(t *testing.T) {
	m := testModel()
	m.now = func() time.Time { return m.started.Add(2500 * time.Millisecond) }
	if footer := m.footer(); !strings.HasSuffix(footer, "2.5s") {
		t.Fatalf("expected elapsed suffix, got %q", footer)
	}
}

func TestView(t *testing.T) {
	m := testModel()
	view := m.View()

	for _, want := range []string{"render", "CLIP", "STATUS", "DETAIL", "001", "second", StatusPending, "0/2"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected view to contain %q:\n%s", want, view)
		}
	}
}

func TestViewHidesFooterWhenDone(t *testing.T) {
	m := testModel()
	updated, _ := m.Update(WorkDoneMsg{})
	m = updated.(ProgressModel)

	if view := m.View(); strings.Contains(view, "0/2") {
		t.Fatalf("expected no progress footer once done:\n%s", view)
	}
}

func TestSpinnerTick(t *testing.T) {
	m := testModel()

	_, cmd := m.Update(spinner.TickMsg{})
	if cmd == nil {
		t.Fatal("expected next spinner tick")
	}

	updated, _ := m.Update(WorkDoneMsg{})
	m = updated.(ProgressModel)
	if _, cmd = m.Update(spinner.TickMsg{}); cmd != nil {
		t.Fatal("expected ticking to stop after done")
	}
}

func TestWindowSizeClampsBar(t *testing.T) {
	m := testModel()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 20, Height: 10})
	m = updated.(ProgressModel)
	if m.bar.Width != 10 {
		t.Fatalf("expected bar width 10, got %d", m.bar.Width)
	}
	updated, _ = m.Update(tea.WindowSizeMsg{Width: 200, Height: 10})
	m = updated.(ProgressModel)
	if m.bar.Width != barWidth {
		t.Fatalf("expected bar width %d, got %d", barWidth, m.bar.Width)
	}
}

func TestCtrlC(t *testing.T) {
	m := testModel()

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = updated.(ProgressModel)

	if !m.Done() {
		t.Fatal("expected Done() after ctrl+c")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestNonEmptyOrDash(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "-"},
		{"  ", "-"},
		{"hello", "hello"},
		{" hello ", "hello"},
	}
	for _, tt := range tests {
		if got := NonEmptyOrDash(tt.input); got != tt.want {
			t.Errorf("NonEmptyOrDash(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTruncateWithEllipsis(t *testing.T) {
	tests := []struct {
		input string
		max   int
		want  string
	}{
		{"short", 10, "short"},
		{"a longer string here", 10, "a longe..."},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc"},
		{"", 5, ""},
		{"hello", 0, ""},
	}
	for _, tt := range tests {
		if got := TruncateWithEllipsis(tt.input, tt.max); got != tt.want {
			t.Errorf("TruncateWithEllipsis(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
		}
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{250, "250ms"},
		{2500, "2.5s"},
		{42000, "42s"},
		{125000, "2m05s"},
	}
	for _, tt := range tests {
		if got := formatElapsed(time.Duration(tt.ms) * time.Millisecond); got != tt.want {
			t.Errorf("formatElapsed(%dms) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}
