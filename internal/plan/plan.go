// Package plan compiles a ClipSpec into an engine-agnostic compositing plan:
// an ordered set of inputs and overlays whose placement is expressed as
// frame-indexed expression trees.
package plan

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clipforge/internal/character"
	"clipforge/internal/clip"
	"clipforge/internal/config"
	"clipforge/internal/effects"
	"clipforge/internal/expr"
	"clipforge/internal/keyframe"
	"clipforge/internal/layout"
)

// ErrInvalidSpec reports a ClipSpec that cannot be compiled at all.
var ErrInvalidSpec = errors.New("invalid clip spec")

// MissingAssetError reports a layout that places a character whose asset did
// not resolve.
type MissingAssetError struct {
	Layout string
	Path   string
}

func (e *MissingAssetError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("layout %s places a character but no character asset was resolved", e.Layout)
	}
	return fmt.Sprintf("character asset %q not found (layout %s)", e.Path, e.Layout)
}

// Prober supplies the few facts about source files the compiler needs.
type Prober interface {
	// FitSize returns the size path decodes to once fitted inside w×h with
	// its aspect ratio preserved.
	FitSize(ctx context.Context, path string, w, h int) (int, int, error)
	// Exists reports whether path names a readable file.
	Exists(path string) bool
}

// InputKind classifies plan inputs.
type InputKind int

const (
	InputImage InputKind = iota
	InputBackground
	InputCharacter
)

func (k InputKind) String() string {
	switch k {
	case InputBackground:
		return "background"
	case InputCharacter:
		return "character"
	default:
		return "image"
	}
}

// Input is one source stream of the composite.
type Input struct {
	Kind     InputKind
	Path     string
	Color    string
	Animated bool
}

// OverlayKind classifies overlays.
type OverlayKind int

const (
	OverlayImage OverlayKind = iota
	OverlayCaption
	OverlayCharacter
	OverlaySpeech
)

func (k OverlayKind) String() string {
	switch k {
	case OverlayCaption:
		return "caption"
	case OverlayCharacter:
		return "character"
	case OverlaySpeech:
		return "speech"
	default:
		return "image"
	}
}

// Overlay is one layer drawn onto the running composite, in plan order.
// Input is -1 for text overlays.
type Overlay struct {
	Kind   OverlayKind
	Input  int
	Slot   int
	Width  int
	Height int
	X      expr.Node
	Y      expr.Node
	Scale  expr.Node
	Zoom   *effects.Zoom
	Blur   *effects.Blur
	Text   string
	Font   TextStyle
}

// TextStyle styles a text overlay.
type TextStyle struct {
	File  string
	Size  int
	Color string
}

// Plan is the compiled composite for one clip.
type Plan struct {
	Width       int
	Height      int
	FPS         int
	Duration    float64
	TotalFrames int
	Background  int
	Layout      layout.Result
	Inputs      []Input
	Overlays    []Overlay
}

// Compile resolves spec into a plan. Warnings are returned alongside a
// successful plan; errors are fatal for this clip only. The prober may be nil,
// in which case slot sizes stand in for probed sizes.
func Compile(ctx context.Context, cfg config.Config, spec clip.ClipSpec, prober Prober) (Plan, []clip.Warning, error) {
	if spec.Duration <= 0 || spec.FPS <= 0 {
		return Plan{}, nil, fmt.Errorf("%w: duration %g and fps %d must be positive", ErrInvalidSpec, spec.Duration, spec.FPS)
	}
	cfg = effective(cfg, spec)
	c := &compiler{ctx: ctx, cfg: cfg, spec: spec, prober: prober}
	if err := c.run(); err != nil {
		return Plan{}, c.warnings, err
	}
	return c.plan, c.warnings, nil
}

// effective overrides the configured frame with the clip's own.
func effective(cfg config.Config, spec clip.ClipSpec) config.Config {
	if spec.Width > 0 {
		cfg.Video.Width = spec.Width
	}
	if spec.Height > 0 {
		cfg.Video.Height = spec.Height
	}
	cfg.Video.FPS = spec.FPS
	return cfg
}

type compiler struct {
	ctx      context.Context
	cfg      config.Config
	spec     clip.ClipSpec
	prober   Prober
	plan     Plan
	warnings []clip.Warning

	// placed maps a slot index to its image overlay.
	placed map[int]int
}

func (c *compiler) warn(w ...clip.Warning) {
	c.warnings = append(c.warnings, w...)
}

func (c *compiler) run() error {
	spec := c.spec
	lay, warnings := layout.Resolve(c.cfg, spec.Layout, spec.Character != nil, len(spec.Images), spec.CharacterSide)
	c.warn(warnings...)

	c.plan = Plan{
		Width:       c.cfg.Video.Width,
		Height:      c.cfg.Video.Height,
		FPS:         spec.FPS,
		Duration:    spec.Duration,
		TotalFrames: spec.TotalFrames(),
		Layout:      lay,
	}
	c.placed = make(map[int]int)

	c.images()
	c.plan.Background = c.addInput(Input{Kind: InputBackground, Color: c.cfg.Video.Background})

	caption := c.caption()
	centered := false
	if caption != "" {
		if spec.Caption.Anchor != clip.AnchorNone {
			centered = !c.anchoredCaption(caption)
		} else {
			centered = true
		}
	}

	var rest *layout.Position
	if spec.Character != nil && lay.Character != nil {
		var err error
		rest, err = c.character()
		if err != nil {
			return err
		}
	}
	if centered {
		c.plan.Overlays = append(c.plan.Overlays, Overlay{
			Kind:  OverlayCaption,
			Input: -1,
			Slot:  -1,
			Text:  caption,
			X:     expr.Center(expr.FrameW, expr.TextW),
			Y:     expr.Center(expr.FrameH, expr.TextH),
			Font:  c.captionStyle(),
		})
	}
	if rest != nil {
		c.speech(rest)
	}
	return nil
}

func (c *compiler) addInput(in Input) int {
	c.plan.Inputs = append(c.plan.Inputs, in)
	return len(c.plan.Inputs) - 1
}

func (c *compiler) images() {
	lay := c.plan.Layout
	for i, img := range c.spec.Images {
		if i >= len(lay.Slots) {
			c.warn(clip.Configf("extra image ignored in layout %s: %s", lay.Name, img.Path))
			continue
		}
		slot := lay.Slots[i]
		input := c.addInput(Input{Kind: InputImage, Path: img.Path, Animated: effects.IsAnimated(img.Path)})
		ov := Overlay{
			Kind:   OverlayImage,
			Input:  input,
			Slot:   i,
			Width:  slot.Width,
			Height: slot.Height,
			X:      slot.X,
			Y:      slot.Y,
		}

		kfs := keyframe.ForImage(c.spec, i)
		for _, w := range keyframe.Validate(kfs) {
			w.Message = fmt.Sprintf("image %d %s", i, w.Message)
			c.warn(w)
		}
		if len(kfs) > 0 {
			ov.X = keyframe.Compile(kfs, "x", slot.X)
			ov.Y = keyframe.Compile(kfs, "y", slot.Y)
		} else {
			ov.Zoom = effects.ZoomFor(c.cfg, img, c.plan.TotalFrames, slot.Width, slot.Height)
			ov.X, ov.Y = effects.Slide(img.Slide, slot.X, slot.Y, c.spec.FPS, c.cfg.Slide.DurationSec)
			blur, warnings := effects.EntryBlur(c.cfg, img, c.spec.Duration)
			c.warn(warnings...)
			ov.Blur = blur
		}
		c.placed[i] = len(c.plan.Overlays)
		c.plan.Overlays = append(c.plan.Overlays, ov)
	}
}

func (c *compiler) caption() string {
	if c.spec.Caption == nil {
		return ""
	}
	return strings.TrimSpace(c.spec.Caption.Text)
}

func (c *compiler) captionStyle() TextStyle {
	return TextStyle{File: c.cfg.Caption.FontFile, Size: c.cfg.Caption.FontSize, Color: c.cfg.Caption.Color}
}

// anchoredCaption places the caption above or below its anchor image and
// reports whether it did.
func (c *compiler) anchoredCaption(text string) bool {
	caption := c.spec.Caption
	slot := caption.Slot()
	idx, ok := c.placed[slot]
	if !ok {
		c.warn(clip.Configf("caption anchor slot %d has no image; centering caption", slot))
		return false
	}
	img := c.spec.Images[slot]
	target := c.plan.Layout.Slots[slot]
	anchor := c.plan.Overlays[idx]

	sw, sh := target.Width, target.Height
	if anchor.Zoom == nil {
		sw, sh = c.fitSize(img.Path, target.Width, target.Height)
	}
	pin := map[expr.Var]expr.Node{expr.LayerW: expr.Int(sw), expr.LayerH: expr.Int(sh)}
	bx := expr.Substitute(target.X, pin)
	by := expr.Substitute(target.Y, pin)

	margin := c.cfg.Caption.ImageMargin
	if caption.Margin != nil {
		margin = *caption.Margin
	}
	x := expr.Add(bx, expr.Center(expr.Int(sw), expr.TextW))
	var y expr.Node
	if caption.Anchor == clip.AnchorTop {
		y = expr.Sub(expr.Sub(by, expr.TextH), expr.Int(margin))
	} else {
		y = expr.Min(
			expr.Add(by, expr.Int(sh+margin)),
			expr.Sub(expr.Sub(expr.FrameH, expr.TextH), expr.Int(c.cfg.Caption.ImageMargin)),
		)
	}
	if len(keyframe.ForImage(c.spec, slot)) == 0 {
		x, y = effects.SlideText(img.Slide, x, y, c.spec.FPS, c.cfg.Slide.DurationSec)
	}
	c.plan.Overlays = append(c.plan.Overlays, Overlay{
		Kind:  OverlayCaption,
		Input: -1,
		Slot:  slot,
		Text:  text,
		X:     x,
		Y:     y,
		Font:  c.captionStyle(),
	})
	return true
}

func (c *compiler) fitSize(path string, w, h int) (int, int) {
	if c.prober == nil {
		return w, h
	}
	ctx := c.ctx
	if timeout := c.cfg.Probe.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	fw, fh, err := c.prober.FitSize(ctx, path, w, h)
	if err != nil || fw <= 0 || fh <= 0 {
		c.warn(clip.Configf("probe %s failed (%v); using slot size %dx%d", path, err, w, h))
		return w, h
	}
	return fw, fh
}

func (c *compiler) character() (*layout.Position, error) {
	ch := c.spec.Character
	lay := c.plan.Layout
	path := strings.TrimSpace(ch.Path)
	if path == "" || (c.prober != nil && !c.prober.Exists(path)) {
		return nil, &MissingAssetError{Layout: lay.Name.String(), Path: path}
	}
	input := c.addInput(Input{Kind: InputCharacter, Path: path, Animated: effects.IsAnimated(path)})

	preset := character.None
	if ch.Anim != nil {
		p, ok := character.Parse(ch.Anim.Preset)
		if !ok {
			c.warn(clip.Configf("unknown character animation %q; character stays at rest", ch.Anim.Preset))
		}
		preset = p
	}
	box := c.cfg.Character.BoxSize
	motion := character.Build(preset, character.Direction(ch.Anim, c.spec.CharacterSide), c.plan.TotalFrames, lay.Character.X, lay.Character.Y, box)
	c.plan.Overlays = append(c.plan.Overlays, Overlay{
		Kind:   OverlayCharacter,
		Input:  input,
		Slot:   -1,
		Width:  box,
		Height: box,
		X:      motion.X,
		Y:      motion.Y,
		Scale:  motion.Scale,
	})
	return lay.Character, nil
}

// speech draws the character's line above its rest position.
func (c *compiler) speech(rest *layout.Position) {
	text := strings.TrimSpace(c.spec.Character.Speech)
	if text == "" {
		return
	}
	box := c.cfg.Character.BoxSize
	restX := expr.Substitute(rest.X, map[expr.Var]expr.Node{expr.LayerW: expr.Int(box), expr.LayerH: expr.Int(box)})
	speech := c.cfg.Character.Speech
	c.plan.Overlays = append(c.plan.Overlays, Overlay{
		Kind:  OverlaySpeech,
		Input: -1,
		Slot:  -1,
		Text:  text,
		X:     expr.Sub(expr.Add(restX, expr.Num(float64(box)/2)), expr.Half(expr.TextW)),
		Y:     expr.Sub(expr.Sub(expr.Center(expr.FrameH, expr.Int(box)), expr.TextH), expr.Int(speech.Margin)),
		Font:  TextStyle{File: c.cfg.Caption.FontFile, Size: speech.FontSize, Color: speech.Color},
	})
}

// ImageOverlays returns the image overlays in plan order.
func (p Plan) ImageOverlays() []Overlay {
	var out []Overlay
	for _, ov := range p.Overlays {
		if ov.Kind == OverlayImage {
			out = append(out, ov)
		}
	}
	return out
}

// Character returns the character overlay, if any.
func (p Plan) Character() (Overlay, bool) {
	for _, ov := range p.Overlays {
		if ov.Kind == OverlayCharacter {
			return ov, true
		}
	}
	return Overlay{}, false
}
