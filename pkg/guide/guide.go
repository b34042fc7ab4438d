// Package guide turns a project's guide, character guide and narration
// subtitles into ClipSpecs ready for the plan compiler.
package guide

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"clipforge/internal/clip"
)

// Entry modes.
const (
	ModeImageOnly     = "image-only"
	ModeImageWithText = "image-with-text"
	ModeTextOnly      = "text-only"
)

// Entry is one guide row: a narration trigger and what to show while it
// plays.
type Entry struct {
	Line int `yaml:"-"`

	Trigger       string          `yaml:"trigger"`
	Mode          string          `yaml:"mode"`
	ImageID       string          `yaml:"image_id"`
	ImageIDs      []string        `yaml:"image_ids"`
	Text          string          `yaml:"text"`
	CaptionAnchor string          `yaml:"caption_anchor"`
	CaptionMargin *int            `yaml:"caption_margin"`
	CaptionSlot   *int            `yaml:"caption_slot"`
	Layout        string          `yaml:"layout"`
	CharacterSide string          `yaml:"character_side"`
	Effects       Effects         `yaml:"effects"`
	Keyframes     []KeyframeEntry `yaml:"keyframes"`
	CharacterAnim *AnimEntry      `yaml:"character_anim"`
}

// Effects are the per-entry image effects.
type Effects struct {
	Zoom  bool       `yaml:"zoom"`
	Slide string     `yaml:"slide"`
	Blur  *BlurEntry `yaml:"blur"`
}

// BlurEntry configures the entry blur of sliding images.
type BlurEntry struct {
	Enabled  bool     `yaml:"enabled"`
	Duration *float64 `yaml:"duration"`
	Strength *float64 `yaml:"strength"`
	Method   string   `yaml:"method"`
}

// KeyframeEntry anchors image values at a time. Keyframes apply to the
// entry's first image.
type KeyframeEntry struct {
	Time   float64            `yaml:"time"`
	Easing string             `yaml:"easing"`
	Values map[string]float64 `yaml:"values"`
}

// AnimEntry selects a character animation preset.
type AnimEntry struct {
	Name      string `yaml:"name"`
	Direction string `yaml:"direction"`
}

// NormalizedMode returns the entry mode in canonical form. Underscores are
// accepted for hyphens and an empty mode is image-only.
func (e Entry) NormalizedMode() string {
	mode := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(e.Mode)), "_", "-")
	if mode == "" {
		return ModeImageOnly
	}
	return mode
}

// IDs returns image_ids, or image_id when image_ids is absent.
func (e Entry) IDs() []string {
	var ids []string
	for _, id := range e.ImageIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		if id := strings.TrimSpace(e.ImageID); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// WantsImages reports whether the entry mode shows images.
func (e Entry) WantsImages() bool {
	return e.NormalizedMode() != ModeTextOnly
}

// LoadGuide reads a guide YAML file. Entries are returned alongside
// ValidationErrors so callers can report every problem at once.
func LoadGuide(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read guide: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New("guide file is empty")
	}

	var nodes []yaml.Node
	if err := yaml.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("parse guide YAML: %w", err)
	}
	if len(nodes) == 0 {
		return nil, errors.New("guide has no entries")
	}

	var (
		entries []Entry
		errs    ValidationErrors
	)
	for i := range nodes {
		node := &nodes[i]
		var entry Entry
		if err := node.Decode(&entry); err != nil {
			errs = append(errs, ValidationError{Line: node.Line, Message: err.Error()})
			continue
		}
		entry.Line = node.Line
		errs = append(errs, validateEntry(entry)...)
		entries = append(entries, entry)
	}

	if len(errs) > 0 {
		return entries, errs
	}
	return entries, nil
}

func validateEntry(e Entry) []ValidationError {
	var errs []ValidationError
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Line: e.Line, Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(e.Trigger) == "" {
		add("trigger", "is required")
	}
	switch mode := e.NormalizedMode(); mode {
	case ModeImageOnly, ModeImageWithText:
		if len(e.IDs()) == 0 {
			add("image_id", "is required for mode %s", mode)
		}
		if mode == ModeImageWithText && strings.TrimSpace(e.Text) == "" {
			add("text", "is required for mode %s", mode)
		}
	case ModeTextOnly:
		if strings.TrimSpace(e.Text) == "" {
			add("text", "is required for mode %s", mode)
		}
	default:
		add("mode", "unknown mode %q", e.Mode)
	}
	if _, ok := clip.ParseCaptionAnchor(e.CaptionAnchor); !ok {
		add("caption_anchor", "unknown anchor %q", e.CaptionAnchor)
	}
	if e.CaptionMargin != nil && *e.CaptionMargin < 0 {
		add("caption_margin", "must not be negative")
	}
	if e.CaptionSlot != nil && *e.CaptionSlot < 0 {
		add("caption_slot", "must not be negative")
	}
	if _, ok := clip.ParseCharacterSide(e.CharacterSide); !ok {
		add("character_side", "unknown side %q", e.CharacterSide)
	}
	if _, ok := clip.ParseSlideDirection(e.Effects.Slide); !ok {
		add("effects.slide", "unknown direction %q", e.Effects.Slide)
	}
	if b := e.Effects.Blur; b != nil {
		if b.Duration != nil && *b.Duration < 0 {
			add("effects.blur.duration", "must not be negative")
		}
		if b.Strength != nil && *b.Strength < 0 {
			add("effects.blur.strength", "must not be negative")
		}
	}
	for i, kf := range e.Keyframes {
		if kf.Time < 0 {
			add(fmt.Sprintf("keyframes[%d].time", i), "must not be negative")
		}
	}
	return errs
}

// CharacterEntry maps a narration trigger to a character expression and an
// optional speech line.
type CharacterEntry struct {
	Trigger    string `yaml:"trigger"`
	Expression string `yaml:"expression"`
	Speech     string `yaml:"speech"`
}

// LoadCharacters reads a character guide YAML file.
func LoadCharacters(path string) ([]CharacterEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read character guide: %w", err)
	}

	var nodes []yaml.Node
	if err := yaml.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("parse character guide YAML: %w", err)
	}

	var (
		entries []CharacterEntry
		errs    ValidationErrors
	)
	for i := range nodes {
		var entry CharacterEntry
		if err := nodes[i].Decode(&entry); err != nil {
			errs = append(errs, ValidationError{Line: nodes[i].Line, Message: err.Error()})
			continue
		}
		if strings.TrimSpace(entry.Trigger) == "" {
			errs = append(errs, ValidationError{Line: nodes[i].Line, Field: "trigger", Message: "is required"})
		}
		entries = append(entries, entry)
	}
	if len(errs) > 0 {
		return entries, errs
	}
	return entries, nil
}
