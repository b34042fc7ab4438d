package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"clipforge/internal/config"
)

// CollectClips returns all *.mp4 files under dir sorted by path. It is used
// when no compiled job list is available to order the clips.
func CollectClips(dir string) ([]string, error) {
	var result []string

	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.ToLower(filepath.Ext(d.Name())) == ".mp4" {
			result = append(result, p)
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("scan clips dir: %w", err)
	}

	sort.Strings(result)
	return result, nil
}

// WriteConcatList writes an ffmpeg concat demuxer list to concatFile in the
// given order. It verifies each clip exists before writing.
func WriteConcatList(concatFile string, clips []string) error {
	if len(clips) == 0 {
		return errors.New("no clips to concatenate")
	}
	var missing []string
	for _, clip := range clips {
		if _, err := os.Stat(clip); os.IsNotExist(err) {
			missing = append(missing, clip)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %d clip file(s):\n  %s", len(missing), strings.Join(missing, "\n  "))
	}

	if err := os.MkdirAll(filepath.Dir(concatFile), 0o755); err != nil {
		return fmt.Errorf("prepare concat list dir: %w", err)
	}
	f, err := os.Create(concatFile)
	if err != nil {
		return fmt.Errorf("create concat list: %w", err)
	}
	defer f.Close()

	for _, clip := range clips {
		abs, err := filepath.Abs(clip)
		if err != nil {
			abs = clip
		}
		// concat list quoting: ' closes, \' is literal, ' reopens
		escaped := strings.ReplaceAll(abs, "'", "'\\''")
		if _, err := fmt.Fprintf(f, "file '%s'\n", escaped); err != nil {
			return fmt.Errorf("write concat list: %w", err)
		}
	}
	return nil
}

// ConcatResult holds the outcome of a concat run.
type ConcatResult struct {
	OutputPath string
	Method     string // "stream_copy" or "re-encode"
}

// RunConcat joins the listed clips with the ffmpeg concat demuxer and muxes
// the narration track over them. It tries a video stream copy first and
// re-encodes when that fails. narration may be empty for a silent output.
func RunConcat(ctx context.Context, runner Runner, ffmpeg, concatFile, narration, outputPath string, cfg config.Config) (ConcatResult, error) {
	if runner == nil {
		runner = CmdRunner{}
	}
	if strings.TrimSpace(ffmpeg) == "" {
		return ConcatResult{}, errors.New("ffmpeg path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return ConcatResult{}, fmt.Errorf("prepare output dir: %w", err)
	}

	streamArgs := buildConcatArgs(concatFile, narration, outputPath, cfg, false)
	if _, err := runner.Run(ctx, ffmpeg, streamArgs, RunOptions{}); err == nil {
		return ConcatResult{OutputPath: outputPath, Method: "stream_copy"}, nil
	} else if ctx.Err() != nil {
		return ConcatResult{}, ctx.Err()
	}

	reencodeArgs := buildConcatArgs(concatFile, narration, outputPath, cfg, true)
	res, err := runner.Run(ctx, ffmpeg, reencodeArgs, RunOptions{})
	if err != nil {
		return ConcatResult{}, fmt.Errorf("concat re-encode failed: %w", NewProcessError(ffmpeg, reencodeArgs, res.Stderr, err))
	}
	return ConcatResult{OutputPath: outputPath, Method: "re-encode"}, nil
}

func buildConcatArgs(concatFile, narration, outputPath string, cfg config.Config, reencode bool) []string {
	args := []string{
		"-hide_banner",
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", concatFile,
	}
	hasAudio := strings.TrimSpace(narration) != ""
	if hasAudio {
		args = append(args, "-i", narration, "-map", "0:v", "-map", "1:a")
	}

	if reencode {
		args = append(args, "-c:v", fallback(cfg.Video.Codec, "libx264"))
		if preset := strings.TrimSpace(cfg.Video.Preset); preset != "" {
			args = append(args, "-preset", preset)
		}
		if cfg.Video.CRF > 0 {
			args = append(args, "-crf", strconv.Itoa(cfg.Video.CRF))
		}
		args = append(args, "-pix_fmt", "yuv420p")
	} else {
		args = append(args, "-c:v", "copy")
	}

	if hasAudio {
		args = append(args, "-c:a", fallback(cfg.Concat.AudioCodec, "aac"))
		if kbps := cfg.Concat.AudioBitrateKbps; kbps > 0 {
			args = append(args, "-b:a", fmt.Sprintf("%dk", kbps))
		}
	}
	args = append(args, "-movflags", "+faststart", outputPath)
	return args
}
