package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"strconv"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"clipforge/internal/plan"
)

// ImageProber reports source image sizes. Formats the Go decoders know are
// read directly; anything else is asked of ffprobe.
type ImageProber struct {
	Runner  Runner
	FFprobe string
}

var _ plan.Prober = ImageProber{}

type ffprobeStreams struct {
	Streams []struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"streams"`
}

// Size returns the intrinsic pixel size of path.
func (p ImageProber) Size(ctx context.Context, path string) (int, int, error) {
	w, h, err := decodeSize(path)
	if err == nil {
		return w, h, nil
	}
	if errors.Is(err, os.ErrNotExist) || p.Runner == nil || p.FFprobe == "" {
		return 0, 0, err
	}
	return p.probeSize(ctx, path)
}

// FitSize returns the size path scales to inside a w×h box with its aspect
// ratio kept, matching the compositor's decrease-fit scaling.
func (p ImageProber) FitSize(ctx context.Context, path string, w, h int) (int, int, error) {
	iw, ih, err := p.Size(ctx, path)
	if err != nil {
		return 0, 0, err
	}
	fw, fh := Fit(iw, ih, w, h)
	return fw, fh, nil
}

// Exists reports whether path is a regular file.
func (ImageProber) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Fit scales iw×ih down or up to the largest size inside w×h with the same
// aspect ratio.
func Fit(iw, ih, w, h int) (int, int) {
	if iw <= 0 || ih <= 0 || w <= 0 || h <= 0 {
		return w, h
	}
	if iw*h > ih*w {
		return w, max(1, int(math.Round(float64(ih)*float64(w)/float64(iw))))
	}
	return max(1, int(math.Round(float64(iw)*float64(h)/float64(ih)))), h
}

func decodeSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

// Duration returns the length in seconds of a media file, such as the
// narration track. It always asks ffprobe.
func (p ImageProber) Duration(ctx context.Context, path string) (float64, error) {
	if p.Runner == nil || p.FFprobe == "" {
		return 0, errors.New("ffprobe is not configured")
	}
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
	result, err := p.Runner.Run(ctx, p.FFprobe, args, RunOptions{})
	if err != nil {
		return 0, NewProcessError(p.FFprobe, args, result.Stderr, err)
	}
	value := strings.TrimSpace(string(result.Stdout))
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil || seconds <= 0 {
		return 0, fmt.Errorf("ffprobe reported no duration for %s: %q", path, value)
	}
	return seconds, nil
}

func (p ImageProber) probeSize(ctx context.Context, path string) (int, int, error) {
	args := []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-print_format", "json",
		path,
	}
	result, err := p.Runner.Run(ctx, p.FFprobe, args, RunOptions{})
	if err != nil {
		return 0, 0, NewProcessError(p.FFprobe, args, result.Stderr, err)
	}

	var parsed ffprobeStreams
	if err := json.Unmarshal(result.Stdout, &parsed); err != nil {
		return 0, 0, fmt.Errorf("decode ffprobe output: %w", err)
	}
	if len(parsed.Streams) == 0 || parsed.Streams[0].Width <= 0 || parsed.Streams[0].Height <= 0 {
		return 0, 0, fmt.Errorf("ffprobe found no video stream in %s", path)
	}
	return parsed.Streams[0].Width, parsed.Streams[0].Height, nil
}
