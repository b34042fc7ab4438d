package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"clipforge/internal/config"
	"clipforge/internal/logx"
	"clipforge/internal/render"
	"clipforge/internal/render/state"
	"clipforge/internal/tui"
)

var (
	renderConcurrency int
	renderForce       bool
	renderIndexArg    []string
	renderNoProgress  bool
	renderSampleAt    float64
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Compile the guide and render each clip with ffmpeg",
		RunE:  runRender,
	}

	defaultConcurrency := runtime.NumCPU()
	if defaultConcurrency < 1 {
		defaultConcurrency = 1
	}

	cmd.Flags().IntVar(&renderConcurrency, "concurrency", defaultConcurrency, "Concurrent ffmpeg processes")
	cmd.Flags().BoolVar(&renderForce, "force", false, "Re-render clips even when they are up to date")
	cmd.Flags().BoolVar(&renderNoProgress, "no-progress", false, "Disable interactive progress output")
	cmd.Flags().StringSliceVar(&renderIndexArg, "index", nil, "Limit render to specific 1-based clip index or range like 5-10 (repeat flag for multiple)")
	cmd.Flags().Float64Var(&renderSampleAt, "sample-at", -1, "Write a single preview frame per clip at this time in seconds instead of encoding")

	return cmd
}

func runRender(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pp, cfg, err := loadProject()
	if err != nil {
		return err
	}
	if err := pp.EnsureMetaDirs(); err != nil {
		return err
	}

	lock := flock.New(pp.LockFile)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire render lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another render is already running for %s", pp.Root)
	}
	defer lock.Unlock()

	logger, closer, err := logx.NewProjectLogger(pp, logx.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return err
	}
	defer closer.Close()
	runID := uuid.NewString()
	logger = logger.With(logx.FieldRunID, runID, logx.FieldCommand, "render")

	concurrency := renderConcurrency
	if !cmd.Flags().Changed("concurrency") && cfg.Render.Concurrency > 0 {
		concurrency = cfg.Render.Concurrency
	}

	compiled, warnings, err := compileProject(ctx, pp, cfg, concurrency)
	if err != nil {
		logger.Error("compile failed", "error", err)
		return err
	}
	for _, w := range warnings {
		logger.Warn("build warning", "message", w.Message)
	}
	compiled, err = filterByIndexArgs(compiled, renderIndexArg)
	if err != nil {
		return err
	}

	svc, err := render.NewService(ctx, pp, cfg, nil)
	if err != nil {
		return err
	}
	svc.Logger = logger

	jobs, failed := splitCompiled(svc, compiled, logger)

	if renderSampleAt >= 0 {
		return renderSamples(ctx, cmd, svc, jobs, failed, renderSampleAt)
	}

	rs, err := state.Load(pp.StateFile)
	if err != nil {
		return err
	}
	toRender, skipped := planRenderActions(rs, jobs, cfg, renderForce)
	logger.Info("render start", "clips", len(jobs), "render", len(toRender), "skip", len(skipped), "failed_compile", len(failed))

	renderOpts := render.Options{Concurrency: concurrency, Force: true}
	mode := tui.DetectMode(cmd.OutOrStdout(), renderNoProgress, outputJSON)

	var rendered []render.Result
	switch mode {
	case tui.ModeTUI:
		model := tui.NewProgressModel(fmt.Sprintf("Rendering %s", pp.Root), tui.RenderColumns)
		for _, job := range jobs {
			model.AddRow(tui.RowKey(job.Index), tui.JobRow(job))
		}
		err = tui.RunWithWork(cmd.OutOrStdout(), model, func(send func(tea.Msg)) {
			reporter := tui.NewRenderReporter(send)
			for _, res := range skipped {
				reporter.Complete(res)
			}
			renderOpts.Reporter = reporter
			rendered = svc.Render(ctx, toRender, renderOpts)
		})
		if err != nil {
			return err
		}
	case tui.ModePlain:
		reporter := tui.NewPlainReporter(cmd.OutOrStdout())
		for _, res := range skipped {
			reporter.Complete(res)
		}
		renderOpts.Reporter = reporter
		rendered = svc.Render(ctx, toRender, renderOpts)
	default:
		rendered = svc.Render(ctx, toRender, renderOpts)
	}

	all := jobs
	if len(renderIndexArg) > 0 {
		all = nil
	}
	recordResults(rs, cfg, toRender, rendered, all, time.Now())
	if err := rs.Save(pp.StateFile); err != nil {
		return fmt.Errorf("save render state: %w", err)
	}

	results := mergeResults(failed, skipped, rendered)
	for _, res := range results {
		if res.Err != nil {
			logger.Error("clip failed", logx.FieldClip, res.Index, "error", res.Err)
		} else {
			logger.Info("clip done", logx.FieldClip, res.Index, "skipped", res.Skipped, "output", res.OutputPath)
		}
	}

	if outputJSON {
		if err := writeRenderJSON(cmd, pp.Root, runID, results); err != nil {
			return err
		}
	} else {
		writeRenderSummary(cmd.OutOrStdout(), cmd.ErrOrStderr(), results)
	}

	if n := countFailed(results); n > 0 {
		return fmt.Errorf("%d clip(s) failed; see %s", n, pp.LogsDir)
	}
	return nil
}

// splitCompiled turns compiled clips into render jobs with resolved output
// paths. Clips that failed to compile become failed results.
func splitCompiled(svc *render.Service, compiled []compiledClip, logger *slog.Logger) ([]render.Job, []render.Result) {
	var (
		jobs   []render.Job
		failed []render.Result
	)
	for _, c := range compiled {
		for _, w := range c.Warnings {
			logger.Warn("compile warning", logx.FieldClip, c.Job.Index, "message", w.Message)
		}
		if c.Err != nil {
			failed = append(failed, render.Result{Index: c.Job.Index, Trigger: c.Job.Trigger, Err: c.Err})
			continue
		}
		job := c.Job
		job.OutputPath, _ = svc.ClipPaths(job)
		jobs = append(jobs, job)
	}
	return jobs, failed
}

// planRenderActions splits jobs into the ones to render and skipped results
// for clips the render state says are up to date.
func planRenderActions(rs *state.RenderState, jobs []render.Job, cfg config.Config, force bool) ([]render.Job, []render.Result) {
	var (
		toRender []render.Job
		skipped  []render.Result
	)
	for _, action := range state.DetectChanges(rs, jobs, cfg, force) {
		if action.Action == state.ActionSkip {
			skipped = append(skipped, render.Result{
				Index:      action.Job.Index,
				Trigger:    action.Job.Trigger,
				OutputPath: action.Job.OutputPath,
				Skipped:    true,
				Reason:     action.Reason,
			})
			continue
		}
		toRender = append(toRender, action.Job)
	}
	return toRender, skipped
}

// recordResults stores successful renders in rs. all is every job of the
// project; when it is nil only part of the project was rendered, so the
// config hash is left alone and no entries are pruned.
func recordResults(rs *state.RenderState, cfg config.Config, rendered []render.Job, results []render.Result, all []render.Job, at time.Time) {
	byIndex := make(map[int]render.Job, len(rendered))
	for _, job := range rendered {
		byIndex[job.Index] = job
	}
	for _, res := range results {
		if res.Err != nil || res.Skipped {
			continue
		}
		if job, ok := byIndex[res.Index]; ok {
			rs.Record(job, at)
		}
	}
	if all == nil {
		return
	}
	keys := make(map[string]bool, len(all))
	for _, job := range all {
		keys[job.OutputPath] = true
	}
	state.Prune(rs, keys)
	rs.GlobalConfigHash = state.GlobalConfigHash(cfg)
}

func mergeResults(groups ...[]render.Result) []render.Result {
	var results []render.Result
	for _, g := range groups {
		results = append(results, g...)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})
	return results
}

func renderSamples(ctx context.Context, cmd *cobra.Command, svc *render.Service, jobs []render.Job, failed []render.Result, at float64) error {
	for _, res := range failed {
		fmt.Fprintf(cmd.ErrOrStderr(), "clip %03d %q failed to compile: %v\n", res.Index, res.Trigger, res.Err)
	}
	errs := len(failed)
	for _, job := range jobs {
		out := strings.TrimSuffix(job.OutputPath, filepath.Ext(job.OutputPath)) + "_frame.png"
		if err := svc.RenderFrame(ctx, job, at, out); err != nil {
			errs++
			fmt.Fprintf(cmd.ErrOrStderr(), "clip %03d: %v\n", job.Index, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "clip %03d frame -> %s\n", job.Index, out)
	}
	if errs > 0 {
		return fmt.Errorf("%d preview frame(s) failed", errs)
	}
	return nil
}

type renderJSONResult struct {
	Index      int    `json:"index"`
	Trigger    string `json:"trigger"`
	OutputPath string `json:"output_path,omitempty"`
	LogPath    string `json:"log_path,omitempty"`
	Skipped    bool   `json:"skipped"`
	Reason     string `json:"reason,omitempty"`
	Error      string `json:"error,omitempty"`
}

type renderJSONSummary struct {
	Rendered int `json:"rendered"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

func writeRenderJSON(cmd *cobra.Command, project, runID string, results []render.Result) error {
	payload := struct {
		Project string             `json:"project"`
		RunID   string             `json:"run_id"`
		Results []renderJSONResult `json:"results"`
		Summary renderJSONSummary  `json:"summary"`
	}{
		Project: project,
		RunID:   runID,
		Results: make([]renderJSONResult, 0, len(results)),
		Summary: summarizeResults(results),
	}

	for _, res := range results {
		payload.Results = append(payload.Results, renderJSONResult{
			Index:      res.Index,
			Trigger:    res.Trigger,
			OutputPath: res.OutputPath,
			LogPath:    res.LogPath,
			Skipped:    res.Skipped,
			Reason:     res.Reason,
			Error:      errorString(res.Err),
		})
	}

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode render json: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func summarizeResults(results []render.Result) renderJSONSummary {
	var s renderJSONSummary
	for _, res := range results {
		switch {
		case res.Err != nil:
			s.Failed++
		case res.Skipped:
			s.Skipped++
		default:
			s.Rendered++
		}
	}
	return s
}

func countFailed(results []render.Result) int {
	return summarizeResults(results).Failed
}

func writeRenderSummary(out io.Writer, errWriter io.Writer, results []render.Result) {
	s := summarizeResults(results)
	for _, res := range results {
		if res.Err != nil && errWriter != nil {
			fmt.Fprintf(errWriter, "render %03d %q failed: %v\n", res.Index, res.Trigger, res.Err)
		}
	}

	fmt.Fprintf(out, "completed renders: %d rendered, %d skipped, %d failed\n", s.Rendered, s.Skipped, s.Failed)
	if s.Failed > 0 && errWriter != nil {
		fmt.Fprintf(errWriter, "%d render(s) failed; see logs for details\n", s.Failed)
	}
}
