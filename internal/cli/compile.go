package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"clipforge/internal/expr"
	"clipforge/internal/plan"
	"clipforge/internal/render"
	"clipforge/internal/tui"
)

var (
	compileIndexes []string
	compileGraph   bool
)

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile the guide into clip plans without rendering",
		RunE:  runCompile,
	}

	cmd.Flags().StringSliceVar(&compileIndexes, "index", nil, "Limit to specific 1-based clip indexes or ranges (e.g. 3,5-7)")
	cmd.Flags().BoolVar(&compileGraph, "graph", false, "Include the ffmpeg filter graph for each clip")
	return cmd
}

type overlaySummary struct {
	Kind   string `json:"kind"`
	Input  int    `json:"input"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	X      string `json:"x"`
	Y      string `json:"y"`
	Text   string `json:"text,omitempty"`
}

type planSummary struct {
	Index       int              `json:"index"`
	Trigger     string           `json:"trigger"`
	Layout      string           `json:"layout,omitempty"`
	Duration    float64          `json:"duration_s"`
	TotalFrames int              `json:"total_frames"`
	Inputs      []string         `json:"inputs,omitempty"`
	Overlays    []overlaySummary `json:"overlays,omitempty"`
	FilterGraph string           `json:"filter_graph,omitempty"`
	Warnings    []string         `json:"warnings,omitempty"`
	Error       string           `json:"error,omitempty"`
}

type compileOutput struct {
	Project  string        `json:"project"`
	Clips    []planSummary `json:"clips"`
	Warnings []string      `json:"warnings,omitempty"`
}

func runCompile(cmd *cobra.Command, _ []string) error {
	pp, cfg, err := loadProject()
	if err != nil {
		return err
	}

	compiled, warnings, err := compileProject(cmd.Context(), pp, cfg, cfg.Render.Concurrency)
	if err != nil {
		return err
	}
	compiled, err = filterByIndexArgs(compiled, compileIndexes)
	if err != nil {
		return err
	}

	out := compileOutput{Project: pp.Root, Warnings: warningStrings(warnings)}
	failed := 0
	for _, c := range compiled {
		summary := summarizePlan(c, compileGraph)
		if summary.Error != "" {
			failed++
		}
		out.Clips = append(out.Clips, summary)
	}

	if outputJSON {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		cmd.Println(string(data))
	} else {
		writeCompileOutput(cmd, out)
	}

	if failed > 0 {
		return fmt.Errorf("%d clip(s) failed to compile", failed)
	}
	return nil
}

func summarizePlan(c compiledClip, withGraph bool) planSummary {
	s := planSummary{
		Index:    c.Job.Index,
		Trigger:  c.Job.Trigger,
		Warnings: warningStrings(c.Warnings),
		Error:    errorString(c.Err),
	}
	if c.Err != nil {
		return s
	}

	p := c.Job.Plan
	s.Layout = p.Layout.Name.String()
	s.Duration = p.Duration
	s.TotalFrames = p.TotalFrames
	for _, in := range p.Inputs {
		if in.Kind == plan.InputBackground {
			s.Inputs = append(s.Inputs, fmt.Sprintf("%s %s", in.Kind, in.Color))
			continue
		}
		s.Inputs = append(s.Inputs, fmt.Sprintf("%s %s", in.Kind, in.Path))
	}
	for _, ov := range p.Overlays {
		s.Overlays = append(s.Overlays, overlaySummary{
			Kind:   ov.Kind.String(),
			Input:  ov.Input,
			Width:  ov.Width,
			Height: ov.Height,
			X:      expr.String(ov.X),
			Y:      expr.String(ov.Y),
			Text:   oneLine(ov.Text),
		})
	}
	if withGraph {
		graph, err := render.BuildFilterGraph(p)
		if err != nil {
			s.Error = fmt.Sprintf("build filter graph: %v", err)
		} else {
			s.FilterGraph = graph
		}
	}
	return s
}

func writeCompileOutput(cmd *cobra.Command, out compileOutput) {
	for _, w := range out.Warnings {
		cmd.Printf("warning: %s\n", w)
	}
	for _, s := range out.Clips {
		cmd.Printf("\nclip %03d  %q\n", s.Index, s.Trigger)
		if s.Error != "" {
			cmd.Printf("  error: %s\n", s.Error)
			continue
		}
		cmd.Printf("  layout %s, %.3fs, %d frames\n", s.Layout, s.Duration, s.TotalFrames)
		for i, in := range s.Inputs {
			cmd.Printf("  input %d: %s\n", i, in)
		}
		rows := make([][]string, len(s.Overlays))
		for i, ov := range s.Overlays {
			rows[i] = []string{ov.Kind, strconv.Itoa(ov.Input), sizeLabel(ov.Width, ov.Height), ov.X, ov.Y, tui.TruncateWithEllipsis(ov.Text, 40)}
		}
		if len(rows) > 0 {
			cmd.Println(renderTable([]string{"Overlay", "Input", "Size", "X", "Y", "Text"}, rows, nil))
		}
		if s.FilterGraph != "" {
			cmd.Printf("  filter graph: %s\n", s.FilterGraph)
		}
		for _, w := range s.Warnings {
			cmd.Printf("  warning: %s\n", w)
		}
	}
}

func sizeLabel(w, h int) string {
	if w <= 0 || h <= 0 {
		return "-"
	}
	return fmt.Sprintf("%dx%d", w, h)
}
