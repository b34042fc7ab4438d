package tui

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"clipforge/internal/render"
)

// Render table columns.
const (
	ColClip    = "CLIP"
	ColTrigger = "TRIGGER"
	ColLayout  = "LAYOUT"
	ColStatus  = "STATUS"
	ColDetail  = "DETAIL"
)

// RenderColumns is the column layout used by the render command.
var RenderColumns = []Column{
	{Header: ColClip, Width: 4},
	{Header: ColTrigger, Width: 24},
	{Header: ColLayout, Width: 30},
	{Header: ColStatus, Width: 9},
	{Header: ColDetail, Width: 40},
}

// RowKey is the progress row key for a clip index.
func RowKey(index int) string {
	return fmt.Sprintf("clip:%03d", index)
}

// JobRow returns the initial table row for job.
func JobRow(job render.Job) []string {
	return []string{
		fmt.Sprintf("%03d", job.Index),
		NonEmptyOrDash(job.Trigger),
		job.Plan.Layout.Name.String(),
		StatusPending,
		"",
	}
}

// RenderReporter forwards render progress to a bubbletea program.
type RenderReporter struct {
	send func(tea.Msg)
}

// NewRenderReporter constructs a reporter sending through send.
func NewRenderReporter(send func(tea.Msg)) *RenderReporter {
	return &RenderReporter{send: send}
}

// Start implements render.ProgressReporter.
func (r *RenderReporter) Start(job render.Job) {
	r.send(RowUpdateMsg{
		Key:    RowKey(job.Index),
		Fields: map[string]string{ColStatus: StatusRendering},
	})
}

// Complete implements render.ProgressReporter.
func (r *RenderReporter) Complete(res render.Result) {
	status, detail := ResultStatus(res)
	r.send(RowUpdateMsg{
		Key:    RowKey(res.Index),
		Fields: map[string]string{ColStatus: status, ColDetail: detail},
	})
}

// ResultStatus maps a render result to a status and short detail.
func ResultStatus(res render.Result) (string, string) {
	switch {
	case res.Err != nil:
		return StatusError, firstLine(res.Err.Error())
	case res.Skipped:
		return StatusSkipped, NonEmptyOrDash(res.Reason)
	default:
		return StatusRendered, filepath.Base(res.OutputPath)
	}
}

// PlainReporter prints one line per finished clip. It is used when output
// is not a terminal.
type PlainReporter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewPlainReporter constructs a line-oriented reporter.
func NewPlainReporter(w io.Writer) *PlainReporter {
	return &PlainReporter{w: w}
}

// Start implements render.ProgressReporter.
func (r *PlainReporter) Start(render.Job) {}

// Complete implements render.ProgressReporter.
func (r *PlainReporter) Complete(res render.Result) {
	status, detail := ResultStatus(res)
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "%03d %-9s %s\n", res.Index, status, detail)
}

func firstLine(text string) string {
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			return text[:i]
		}
	}
	return text
}
