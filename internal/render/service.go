package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"clipforge/internal/config"
	"clipforge/internal/paths"
	"clipforge/internal/plan"
	"clipforge/internal/tools"
)

// Service turns compiled plans into clip files by running ffmpeg.
type Service struct {
	Paths  paths.ProjectPaths
	Config config.Config
	Runner Runner
	Logger *slog.Logger

	ffmpegPath string
}

// Options controls render execution behaviour.
type Options struct {
	Concurrency int
	// Force re-renders clips whose output already exists.
	Force    bool
	Reporter ProgressReporter
}

// Job is one compiled clip to render.
type Job struct {
	// Index is the clip's 1-based position in the project.
	Index      int
	Trigger    string
	Plan       plan.Plan
	OutputPath string // optional; overrides the filename template
}

// Result captures the outcome of a render attempt.
type Result struct {
	Index      int
	Trigger    string
	OutputPath string
	LogPath    string
	Skipped    bool
	Reason     string
	Err        error
}

// ProgressReporter receives notifications as jobs move through the render pipeline.
type ProgressReporter interface {
	Start(job Job)
	Complete(result Result)
}

// NewService resolves ffmpeg and prepares the project's clip and log
// directories.
func NewService(ctx context.Context, pp paths.ProjectPaths, cfg config.Config, runner Runner) (*Service, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := pp.EnsureMetaDirs(); err != nil {
		return nil, err
	}

	status, err := tools.Ensure(ctx, "ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ensure ffmpeg: %w", err)
	}
	ffmpeg := status.Path
	if ffmpeg == "" {
		ffmpeg = status.Paths["ffmpeg"]
	}
	if strings.TrimSpace(ffmpeg) == "" {
		return nil, errors.New("ffmpeg path not resolved")
	}

	if runner == nil {
		runner = CmdRunner{}
	}
	return &Service{Paths: pp, Config: cfg, Runner: runner, ffmpegPath: ffmpeg}, nil
}

// Render runs jobs on up to opts.Concurrency workers. Results are returned in
// job order; one failing clip does not stop the others.
func (s *Service) Render(ctx context.Context, jobs []Job, opts Options) []Result {
	if s == nil {
		return []Result{{Err: errors.New("render service is nil")}}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([]Result, len(jobs))
	var g errgroup.Group
	g.SetLimit(max(opts.Concurrency, 1))
	for i, job := range jobs {
		if opts.Reporter != nil {
			opts.Reporter.Start(job)
		}
		g.Go(func() error {
			results[i] = s.renderOne(ctx, job, opts.Force)
			if opts.Reporter != nil {
				opts.Reporter.Complete(results[i])
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *Service) renderOne(ctx context.Context, job Job, force bool) Result {
	result := Result{Index: job.Index, Trigger: job.Trigger}
	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	outputPath, logPath := s.ClipPaths(job)
	result.OutputPath = outputPath
	log := s.logger().With("index", job.Index, "output", outputPath)

	if !force {
		exists, err := paths.FileExists(outputPath)
		if err != nil {
			result.Err = fmt.Errorf("stat clip output: %w", err)
			return result
		}
		if exists {
			result.Skipped = true
			result.Reason = "output exists"
			log.Debug("clip exists, skipping")
			return result
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		result.Err = fmt.Errorf("ensure clip directory: %w", err)
		return result
	}

	graph, err := BuildFilterGraph(job.Plan)
	if err != nil {
		result.Err = fmt.Errorf("build filter graph: %w", err)
		return result
	}
	args, err := BuildFFmpegCmd(job.Plan, graph, outputPath, s.Config)
	if err != nil {
		result.Err = err
		return result
	}

	result.LogPath = logPath
	log.Debug("render clip", "label", jobLabel(job), "filter_graph", graph)
	if err := s.runLogged(ctx, args, logPath); err != nil {
		result.Err = err
		_ = os.Remove(outputPath)
		log.Error("render failed", "log", logPath, "error", err)
	}
	return result
}

// ClipPaths returns the output and log paths for job.
func (s *Service) ClipPaths(job Job) (string, string) {
	if job.OutputPath != "" {
		base := strings.TrimSuffix(filepath.Base(job.OutputPath), filepath.Ext(job.OutputPath))
		return job.OutputPath, filepath.Join(s.Paths.LogsDir, base+".log")
	}

	template := s.Config.Render.FilenameTemplate
	if strings.TrimSpace(template) == "" {
		template = config.Default().Render.FilenameTemplate
	}
	base := ClipBaseName(template, job)
	return filepath.Join(s.Paths.ClipsDir, base+".mp4"), filepath.Join(s.Paths.LogsDir, base+".log")
}

// RenderFrame extracts a single composited frame at the given time as an
// image. It is used to preview a clip without encoding it.
func (s *Service) RenderFrame(ctx context.Context, job Job, at float64, outputPath string) error {
	if s == nil {
		return errors.New("render service is nil")
	}

	graph, err := BuildFilterGraph(job.Plan)
	if err != nil {
		return fmt.Errorf("build filter graph: %w", err)
	}
	args, err := BuildFrameCmd(job.Plan, graph, at, outputPath)
	if err != nil {
		return err
	}

	s.logger().Debug("extract frame", "label", jobLabel(job), "at", at, "output", outputPath)
	logPath := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".log"
	return s.runLogged(ctx, args, logPath)
}

// runLogged runs ffmpeg with stderr captured to logPath. When the log cannot
// be created the run proceeds without one.
func (s *Service) runLogged(ctx context.Context, args []string, logPath string) error {
	var stderr io.Writer
	logFile, err := os.Create(logPath)
	if err != nil {
		s.logger().Warn("could not create ffmpeg log", "path", logPath, "error", err)
		logPath = ""
	} else {
		defer logFile.Close()
		stderr = logFile
	}

	res, err := s.Runner.Run(ctx, s.ffmpegPath, args, RunOptions{Dir: s.Paths.Root, Stderr: stderr})
	if err == nil {
		return nil
	}
	procErr := NewProcessError(s.ffmpegPath, args, res.Stderr, err)
	procErr.LogPath = logPath
	return procErr
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

func jobLabel(job Job) string {
	label := fmt.Sprintf("clip#%03d", job.Index)
	if trigger := strings.TrimSpace(job.Trigger); trigger != "" {
		label += " " + trigger
	}
	return label
}
