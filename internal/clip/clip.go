// Package clip defines the declarative per-clip model consumed by the plan
// compiler. Values are built once by the guide pipeline (or a caller) and are
// treated as immutable afterwards.
package clip

import "math"

// ClipSpec describes everything needed to compile one clip.
type ClipSpec struct {
	Duration      float64
	FPS           int
	Width         int
	Height        int
	Layout        string
	CharacterSide CharacterSide
	Images        []ImageLayer
	Character     *CharacterLayer
	Caption       *Caption
	Timeline      *Timeline
}

// TotalFrames is the number of output frames, never less than one.
func (s ClipSpec) TotalFrames() int {
	frames := int(math.Ceil(s.Duration * float64(s.FPS)))
	if frames < 1 {
		return 1
	}
	return frames
}

// ImageLayer is one positioned image. Keyframes, when present, override the
// slide and zoom placement.
type ImageLayer struct {
	Path      string
	Zoom      bool
	Slide     SlideDirection
	Blur      *BlurEntry
	Keyframes []Keyframe
}

// BlurEntry applies a short blur while a sliding image enters the frame.
type BlurEntry struct {
	Enabled  bool
	Duration *float64
	Strength *float64
	Method   string
}

// Keyframe anchors named values at a point in time. Easing describes the
// transition from this keyframe to the next one.
type Keyframe struct {
	Time   float64
	Values map[string]float64
	Easing string
}

// Value returns the keyed value and whether it is defined.
func (k Keyframe) Value(key string) (float64, bool) {
	v, ok := k.Values[key]
	return v, ok
}

// CharacterLayer is the optional character overlay.
type CharacterLayer struct {
	Path   string
	Speech string
	Anim   *CharacterAnim
}

// CharacterAnim names an animation preset and an optional direction.
type CharacterAnim struct {
	Preset    string
	Direction string
}

// Caption is the clip text, either centered on the frame or anchored to an
// image slot.
type Caption struct {
	Text       string
	Anchor     CaptionAnchor
	Margin     *int
	AnchorSlot *int
}

// Slot returns the anchor slot index, defaulting to the first slot.
func (c Caption) Slot() int {
	if c.AnchorSlot == nil {
		return 0
	}
	return *c.AnchorSlot
}

// Timeline is a multi-track animation container.
type Timeline struct {
	Duration float64
	FPS      int
	Tracks   []Track
}

// Track holds keyframes and effect windows for one target.
type Track struct {
	ID        string
	Kind      string
	TargetID  string
	Keyframes []Keyframe
	Effects   []EffectWindow
}

// EffectWindow is a named effect active between Start and End seconds.
type EffectWindow struct {
	Name   string
	Start  float64
	End    float64
	Params map[string]float64
}

// TrackKindImage marks tracks that animate an image layer.
const TrackKindImage = "image"

// TrackFor returns the first track of the given kind targeting id.
func (t *Timeline) TrackFor(kind, id string) (Track, bool) {
	if t == nil {
		return Track{}, false
	}
	for _, track := range t.Tracks {
		if track.Kind == kind && track.TargetID == id {
			return track, true
		}
	}
	return Track{}, false
}
