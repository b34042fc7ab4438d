package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the output profile and compositing parameters for a project.
// It is passed by value into every compiler call and never mutated afterwards.
type Config struct {
	Version   int             `yaml:"version"`
	Files     FilesConfig     `yaml:"files"`
	Video     VideoConfig     `yaml:"video"`
	Layout    LayoutConfig    `yaml:"layout"`
	Zoom      ZoomConfig      `yaml:"zoom"`
	Slide     SlideConfig     `yaml:"slide"`
	Blur      BlurConfig      `yaml:"blur"`
	Caption   CaptionConfig   `yaml:"caption"`
	Character CharacterConfig `yaml:"character"`
	Concat    ConcatConfig    `yaml:"concat"`
	Probe     ProbeConfig     `yaml:"probe"`
	Render    RenderConfig    `yaml:"render"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// FilesConfig overrides the default project file locations. Relative paths
// resolve against the project root.
type FilesConfig struct {
	Guide      string `yaml:"guide,omitempty"`
	Characters string `yaml:"characters,omitempty"`
	Subtitles  string `yaml:"subtitles,omitempty"`
	Edits      string `yaml:"edits,omitempty"`
	Narration  string `yaml:"narration,omitempty"`
	Images     string `yaml:"images,omitempty"`
	Output     string `yaml:"output,omitempty"`
}

// VideoConfig contains output sizing, framerate and encoder settings.
type VideoConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	FPS        int    `yaml:"fps"`
	Background string `yaml:"background"`
	Codec      string `yaml:"codec"`
	Preset     string `yaml:"preset"`
	CRF        int    `yaml:"crf"`
}

// LayoutConfig describes the safe area and the spacing used by layouts.
type LayoutConfig struct {
	SafeHeight       int `yaml:"safe_height"`
	LeftMargin       int `yaml:"left_margin"`
	RightMargin      int `yaml:"right_margin"`
	CharacterPadding int `yaml:"character_padding"`
	PairGap          int `yaml:"pair_gap"`
	StackGap         int `yaml:"stack_gap"`
}

// ZoomConfig controls the continuous zoom applied to still images.
type ZoomConfig struct {
	Start             float64 `yaml:"start"`
	End               float64 `yaml:"end"`
	DisableOnAnimated *bool   `yaml:"disable_on_animated,omitempty"`
}

// DisableOnAnimatedValue returns the effective flag applying defaults.
func (z ZoomConfig) DisableOnAnimatedValue() bool {
	if z.DisableOnAnimated == nil {
		return true
	}
	return *z.DisableOnAnimated
}

// SlideConfig controls directional entrances.
type SlideConfig struct {
	DurationSec float64 `yaml:"duration_s"`
}

// BlurConfig holds the defaults for entry blur.
type BlurConfig struct {
	Method  string  `yaml:"method"`
	Opacity float64 `yaml:"opacity"`
	Radius  float64 `yaml:"radius"`
	Frames  int     `yaml:"frames"`
}

// CaptionConfig styles clip captions.
type CaptionConfig struct {
	FontFile    string `yaml:"font_file"`
	FontSize    int    `yaml:"font_size"`
	Color       string `yaml:"color"`
	ImageMargin int    `yaml:"image_margin"`
}

// CharacterConfig sizes the character overlay and its speech caption.
type CharacterConfig struct {
	BoxSize int          `yaml:"box_size"`
	MarginX int          `yaml:"margin_x"`
	Dir     string       `yaml:"dir"`
	Default string       `yaml:"default"`
	Speech  SpeechConfig `yaml:"speech"`
}

// SpeechConfig styles the caption drawn above the character.
type SpeechConfig struct {
	FontSize int    `yaml:"font_size"`
	Color    string `yaml:"color"`
	Margin   int    `yaml:"margin"`
}

// ConcatConfig describes how clips are joined with the narration track.
type ConcatConfig struct {
	EndPadSec        float64 `yaml:"end_pad_s"`
	MinClipSec       float64 `yaml:"min_clip_s"`
	AudioCodec       string  `yaml:"audio_codec"`
	AudioBitrateKbps int     `yaml:"audio_bitrate_kbps"`
}

// ProbeConfig bounds the external image size probe.
type ProbeConfig struct {
	TimeoutSec float64 `yaml:"timeout_s"`
}

// Timeout returns the probe timeout as a duration.
func (p ProbeConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSec * float64(time.Second))
}

// RenderConfig controls batch rendering.
type RenderConfig struct {
	Concurrency      int    `yaml:"concurrency"`
	FilenameTemplate string `yaml:"filename_template"`
}

// LoggingConfig selects the structured log level and format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in output profile.
func Default() Config {
	return Config{
		Version: 1,
		Video: VideoConfig{
			Width:      1920,
			Height:     1080,
			FPS:        25,
			Background: "white",
			Codec:      "libx264",
			Preset:     "fast",
			CRF:        23,
		},
		Layout: LayoutConfig{
			SafeHeight:       864,
			LeftMargin:       100,
			RightMargin:      100,
			CharacterPadding: 40,
			PairGap:          40,
			StackGap:         24,
		},
		Zoom: ZoomConfig{
			Start:             1.0,
			End:               1.06,
			DisableOnAnimated: boolPtr(true),
		},
		Slide: SlideConfig{
			DurationSec: 0.8,
		},
		Blur: BlurConfig{
			Method:  "tblend",
			Opacity: 0.7,
			Radius:  4,
			Frames:  3,
		},
		Caption: CaptionConfig{
			FontSize:    52,
			Color:       "black",
			ImageMargin: 16,
		},
		Character: CharacterConfig{
			BoxSize: 614,
			MarginX: 25,
			Dir:     "characters",
			Default: "neutral",
			Speech: SpeechConfig{
				FontSize: 36,
				Color:    "black",
				Margin:   7,
			},
		},
		Concat: ConcatConfig{
			EndPadSec:        0.25,
			MinClipSec:       0.5,
			AudioCodec:       "aac",
			AudioBitrateKbps: 192,
		},
		Probe: ProbeConfig{
			TimeoutSec: 5,
		},
		Render: RenderConfig{
			FilenameTemplate: "clip_$INDEX",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from disk, returning defaults when the file does not exist.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults ensures nested fields fall back to sensible defaults when the
// YAML omits them.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.Video.Width == 0 {
		c.Video.Width = defaults.Video.Width
	}
	if c.Video.Height == 0 {
		c.Video.Height = defaults.Video.Height
	}
	if c.Video.FPS == 0 {
		c.Video.FPS = defaults.Video.FPS
	}
	if c.Video.Background == "" {
		c.Video.Background = defaults.Video.Background
	}
	if c.Video.Codec == "" {
		c.Video.Codec = defaults.Video.Codec
	}
	if c.Layout.SafeHeight == 0 {
		c.Layout.SafeHeight = defaults.Layout.SafeHeight
	}
	if c.Zoom.Start == 0 {
		c.Zoom.Start = defaults.Zoom.Start
	}
	if c.Zoom.End == 0 {
		c.Zoom.End = defaults.Zoom.End
	}
	if c.Zoom.DisableOnAnimated == nil {
		c.Zoom.DisableOnAnimated = boolPtr(true)
	}
	if c.Slide.DurationSec == 0 {
		c.Slide.DurationSec = defaults.Slide.DurationSec
	}
	if c.Blur.Method == "" {
		c.Blur.Method = defaults.Blur.Method
	}
	if c.Blur.Opacity == 0 {
		c.Blur.Opacity = defaults.Blur.Opacity
	}
	if c.Blur.Radius == 0 {
		c.Blur.Radius = defaults.Blur.Radius
	}
	if c.Blur.Frames == 0 {
		c.Blur.Frames = defaults.Blur.Frames
	}
	if c.Caption.FontSize == 0 {
		c.Caption.FontSize = defaults.Caption.FontSize
	}
	if c.Caption.Color == "" {
		c.Caption.Color = defaults.Caption.Color
	}
	if c.Character.BoxSize == 0 {
		c.Character.BoxSize = defaults.Character.BoxSize
	}
	if c.Character.Dir == "" {
		c.Character.Dir = defaults.Character.Dir
	}
	if c.Character.Default == "" {
		c.Character.Default = defaults.Character.Default
	}
	if c.Character.Speech.FontSize == 0 {
		c.Character.Speech.FontSize = defaults.Character.Speech.FontSize
	}
	if c.Character.Speech.Color == "" {
		c.Character.Speech.Color = defaults.Character.Speech.Color
	}
	if c.Concat.MinClipSec == 0 {
		c.Concat.MinClipSec = defaults.Concat.MinClipSec
	}
	if c.Concat.AudioCodec == "" {
		c.Concat.AudioCodec = defaults.Concat.AudioCodec
	}
	if c.Concat.AudioBitrateKbps == 0 {
		c.Concat.AudioBitrateKbps = defaults.Concat.AudioBitrateKbps
	}
	if c.Probe.TimeoutSec == 0 {
		c.Probe.TimeoutSec = defaults.Probe.TimeoutSec
	}
	if c.Render.FilenameTemplate == "" {
		c.Render.FilenameTemplate = defaults.Render.FilenameTemplate
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaults.Logging.Format
	}
}

// Marshal renders the configuration back to YAML.
func (c Config) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}

// ReservedWidth is the horizontal space a character column occupies at the
// frame edge, including its outer margin and inner padding.
func (c Config) ReservedWidth() int {
	return c.Character.MarginX + c.Character.BoxSize + c.Layout.CharacterPadding
}

func boolPtr(v bool) *bool {
	return &v
}
