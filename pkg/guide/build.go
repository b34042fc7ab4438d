package guide

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"clipforge/internal/clip"
	"clipforge/internal/config"
)

// ImageExtensions are the image file types image ids resolve to.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// Options carries the project facts Build needs.
type Options struct {
	Config        config.Config
	ImagesDir     string
	CharactersDir string
	// UseCharacter places a character on every clip whose layout has room.
	UseCharacter bool
	// AudioDuration is the narration length in seconds; it sets the last
	// clip's duration.
	AudioDuration float64
}

// Clip is one built clip in narration order.
type Clip struct {
	Trigger string
	Start   float64
	Spec    clip.ClipSpec
}

// Specs returns the ClipSpecs of clips in order.
func Specs(clips []Clip) []clip.ClipSpec {
	specs := make([]clip.ClipSpec, len(clips))
	for i, c := range clips {
		specs[i] = c.Spec
	}
	return specs
}

// Build groups entries into composites, places each on the narration
// timeline and resolves its assets. Entries whose trigger is not heard or
// whose images are all missing are dropped with a warning. The returned
// clips are ordered by start time with durations assigned.
func Build(entries []Entry, characters []CharacterEntry, timing []TimingEntry, opts Options) ([]Clip, []clip.Warning, error) {
	images, err := listImages(opts.ImagesDir)
	if err != nil {
		return nil, nil, err
	}

	var (
		clips    []Clip
		warnings []clip.Warning
	)
	for _, comp := range GroupComposites(entries) {
		entry := comp.Parent
		trigger := Normalize(entry.Trigger)

		var paths []string
		if entry.WantsImages() {
			ids := comp.ImageIDs()
			for _, id := range ids {
				path, ok := images.find(id)
				if !ok {
					warnings = append(warnings, clip.Configf("trigger %q: image id %q not found", trigger, id))
					continue
				}
				paths = append(paths, path)
			}
			if len(paths) == 0 {
				warnings = append(warnings, clip.Configf("trigger %q: mode %s needs an image but none resolved; skipped", trigger, entry.NormalizedMode()))
				continue
			}
		}

		cue, ok := FindTiming(trigger, timing)
		if !ok {
			warnings = append(warnings, clip.Configf("trigger %q not found in subtitles; skipped", trigger))
			continue
		}

		spec := specFor(entry, paths, opts.Config)
		if opts.UseCharacter {
			spec.Character = findCharacter(trigger, characters, timing, opts)
			if spec.Character != nil && entry.CharacterAnim != nil && strings.TrimSpace(entry.CharacterAnim.Name) != "" {
				spec.Character.Anim = &clip.CharacterAnim{
					Preset:    entry.CharacterAnim.Name,
					Direction: entry.CharacterAnim.Direction,
				}
			}
		}
		clips = append(clips, Clip{Trigger: trigger, Start: cue.Start(), Spec: spec})
	}

	slices.SortStableFunc(clips, func(a, b Clip) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		default:
			return 0
		}
	})

	starts := make([]float64, len(clips))
	for i, c := range clips {
		starts[i] = c.Start
	}
	durations := AssignDurations(starts, opts.AudioDuration, opts.Config.Concat.EndPadSec, opts.Config.Concat.MinClipSec)
	for i := range clips {
		clips[i].Spec.Duration = durations[i]
	}
	return clips, warnings, nil
}

// AssignDurations gives each clip the time until the next one starts. The
// last clip runs to the end of the narration plus endPad. No duration is
// shorter than minClip.
func AssignDurations(starts []float64, audioDuration, endPad, minClip float64) []float64 {
	durations := make([]float64, len(starts))
	for i, start := range starts {
		var d float64
		if i < len(starts)-1 {
			d = starts[i+1] - start
		} else {
			d = audioDuration - start + endPad
		}
		durations[i] = max(d, minClip)
	}
	return durations
}

func specFor(entry Entry, paths []string, cfg config.Config) clip.ClipSpec {
	side, _ := clip.ParseCharacterSide(entry.CharacterSide)
	spec := clip.ClipSpec{
		FPS:           cfg.Video.FPS,
		Width:         cfg.Video.Width,
		Height:        cfg.Video.Height,
		Layout:        entry.Layout,
		CharacterSide: side,
	}

	slide, _ := clip.ParseSlideDirection(entry.Effects.Slide)
	for i, path := range paths {
		layer := clip.ImageLayer{Path: path, Zoom: entry.Effects.Zoom, Slide: slide}
		if b := entry.Effects.Blur; b != nil {
			layer.Blur = &clip.BlurEntry{
				Enabled:  b.Enabled,
				Duration: b.Duration,
				Strength: b.Strength,
				Method:   b.Method,
			}
		}
		if i == 0 {
			layer.Keyframes = keyframes(entry.Keyframes)
		}
		spec.Images = append(spec.Images, layer)
	}

	if text := strings.TrimSpace(entry.Text); text != "" {
		anchor, _ := clip.ParseCaptionAnchor(entry.CaptionAnchor)
		spec.Caption = &clip.Caption{
			Text:       text,
			Anchor:     anchor,
			Margin:     entry.CaptionMargin,
			AnchorSlot: entry.CaptionSlot,
		}
	}
	return spec
}

func keyframes(entries []KeyframeEntry) []clip.Keyframe {
	if len(entries) == 0 {
		return nil
	}
	out := make([]clip.Keyframe, len(entries))
	for i, kf := range entries {
		values := make(map[string]float64, len(kf.Values))
		for k, v := range kf.Values {
			values[strings.ToLower(k)] = v
		}
		out[i] = clip.Keyframe{Time: kf.Time, Values: values, Easing: kf.Easing}
	}
	return out
}

// findCharacter picks the character for a trigger: the first subtitle cue
// containing the trigger that also names a character guide trigger decides
// the expression. Otherwise the default expression is used without speech.
// It returns a layer with an empty path when no asset resolves at all.
func findCharacter(trigger string, characters []CharacterEntry, timing []TimingEntry, opts Options) *clip.CharacterLayer {
	def := opts.Config.Character.Default
	defaultPath, ok := characterAsset(opts.CharactersDir, def)
	if !ok {
		return &clip.CharacterLayer{}
	}
	for _, cue := range timing {
		if !MatchTrigger(trigger, cue.Text()) {
			continue
		}
		text := Normalize(cue.Text())
		for _, c := range characters {
			if t := Normalize(c.Trigger); t == "" || !strings.Contains(text, t) {
				continue
			}
			expression := strings.TrimSpace(c.Expression)
			if expression == "" {
				expression = def
			}
			path, ok := characterAsset(opts.CharactersDir, expression)
			if !ok {
				path = defaultPath
			}
			return &clip.CharacterLayer{Path: path, Speech: c.Speech}
		}
	}
	return &clip.CharacterLayer{Path: defaultPath}
}

func characterAsset(dir, name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	path := filepath.Join(dir, name+".png")
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return path, true
}

type imageIndex struct {
	dir   string
	names []string
}

func listImages(dir string) (imageIndex, error) {
	idx := imageIndex{dir: dir}
	if strings.TrimSpace(dir) == "" {
		return idx, nil
	}
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return idx, fmt.Errorf("list images: %w", err)
	}
	for _, e := range dirEntries {
		if e.IsDir() {
			continue
		}
		if slices.Contains(ImageExtensions, strings.ToLower(filepath.Ext(e.Name()))) {
			idx.names = append(idx.names, e.Name())
		}
	}
	return idx, nil
}

// find resolves an image id to the first file named <id> followed by a
// non-digit, so id 1 matches "1_cat.png" but not "12_dog.png".
func (idx imageIndex) find(id string) (string, bool) {
	re, err := regexp.Compile(`^` + regexp.QuoteMeta(id) + `\D`)
	if err != nil {
		return "", false
	}
	for _, name := range idx.names {
		if re.MatchString(name) {
			return filepath.Join(idx.dir, name), true
		}
	}
	return "", false
}
