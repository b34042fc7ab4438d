package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	LevelError   = "error"
	LevelWarning = "warning"
)

// ValidationResult captures a single validation finding.
type ValidationResult struct {
	Level   string `json:"level"` // "error" or "warning"
	Message string `json:"message"`
}

// Validate runs all validations against the config and returns structured
// results. projectRoot resolves relative asset paths; pass "" to skip file
// existence checks.
func (c Config) Validate(projectRoot string) []ValidationResult {
	var results []ValidationResult
	results = append(results, c.validateVideo()...)
	results = append(results, c.validateLayout()...)
	results = append(results, c.validateEffects()...)
	results = append(results, c.validateConcat()...)
	if projectRoot != "" {
		results = append(results, c.validateAssets(projectRoot)...)
	}
	return results
}

// HasErrors reports whether any result is an error.
func HasErrors(results []ValidationResult) bool {
	for _, r := range results {
		if r.Level == LevelError {
			return true
		}
	}
	return false
}

func (c Config) validateVideo() []ValidationResult {
	var results []ValidationResult
	if c.Video.Width <= 0 || c.Video.Height <= 0 {
		results = append(results, errorf("video size %dx%d must be positive", c.Video.Width, c.Video.Height))
	}
	if c.Video.FPS <= 0 {
		results = append(results, errorf("video fps %d must be positive", c.Video.FPS))
	}
	if c.Video.CRF < 0 || c.Video.CRF > 51 {
		results = append(results, warningf("video crf %d is outside the usual 0-51 range", c.Video.CRF))
	}
	return results
}

func (c Config) validateLayout() []ValidationResult {
	var results []ValidationResult
	if c.Layout.SafeHeight <= 0 || c.Layout.SafeHeight > c.Video.Height {
		results = append(results, errorf("layout safe_height %d must be within (0, %d]", c.Layout.SafeHeight, c.Video.Height))
	}
	if c.Character.BoxSize <= 0 {
		results = append(results, errorf("character box_size %d must be positive", c.Character.BoxSize))
	}
	contentW := c.Video.Width - c.ReservedWidth() - max(c.Layout.LeftMargin, c.Layout.RightMargin)
	if contentW <= c.Layout.PairGap {
		results = append(results, errorf("character column leaves no content width (%dpx)", contentW))
	}
	if (c.Layout.SafeHeight-2*c.Layout.StackGap)/3 <= 0 {
		results = append(results, errorf("layout stack_gap %d leaves no room for stacked slots", c.Layout.StackGap))
	}
	return results
}

func (c Config) validateEffects() []ValidationResult {
	var results []ValidationResult
	if c.Zoom.Start <= 0 || c.Zoom.End <= 0 {
		results = append(results, errorf("zoom factors must be positive (start %g, end %g)", c.Zoom.Start, c.Zoom.End))
	}
	if c.Zoom.End < c.Zoom.Start {
		results = append(results, warningf("zoom end %g is smaller than start %g; images will zoom out", c.Zoom.End, c.Zoom.Start))
	}
	if c.Slide.DurationSec < 0 {
		results = append(results, errorf("slide duration_s %g must not be negative", c.Slide.DurationSec))
	}
	switch strings.ToLower(strings.TrimSpace(c.Blur.Method)) {
	case "tblend", "boxblur", "tmix":
	default:
		results = append(results, warningf("blur method %q is unknown; tblend will be used", c.Blur.Method))
	}
	return results
}

func (c Config) validateConcat() []ValidationResult {
	var results []ValidationResult
	if c.Concat.EndPadSec < 0 {
		results = append(results, errorf("concat end_pad_s %g must not be negative", c.Concat.EndPadSec))
	}
	if c.Concat.MinClipSec <= 0 {
		results = append(results, errorf("concat min_clip_s %g must be positive", c.Concat.MinClipSec))
	}
	if c.Probe.TimeoutSec <= 0 {
		results = append(results, warningf("probe timeout_s %g disables the size probe", c.Probe.TimeoutSec))
	}
	return results
}

func (c Config) validateAssets(projectRoot string) []ValidationResult {
	var results []ValidationResult
	if font := strings.TrimSpace(c.Caption.FontFile); font != "" {
		if _, err := os.Stat(resolvePath(projectRoot, font)); err != nil {
			results = append(results, errorf("caption font_file %q not found", font))
		}
	}
	dir := resolvePath(projectRoot, c.Character.Dir)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		results = append(results, warningf("character dir %q not found; clips with characters will fail", c.Character.Dir))
	}
	return results
}

func resolvePath(projectRoot, value string) string {
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(projectRoot, value)
}

func errorf(format string, args ...any) ValidationResult {
	return ValidationResult{Level: LevelError, Message: fmt.Sprintf(format, args...)}
}

func warningf(format string, args ...any) ValidationResult {
	return ValidationResult{Level: LevelWarning, Message: fmt.Sprintf(format, args...)}
}
