// Package effects composes the canned slide, zoom and entry blur transforms
// applied to images that carry no keyframes.
package effects

import (
	"math"
	"path/filepath"
	"strings"

	"clipforge/internal/clip"
	"clipforge/internal/config"
	"clipforge/internal/expr"
)

// IsAnimated reports whether path is an animated image format.
func IsAnimated(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".gif")
}

// Zoom is a continuous centered zoom across the whole clip. The source is
// fitted to the slot, padded onto a Canvas of ⌈slot·End⌉ and panned by the
// engine's zoom operator.
type Zoom struct {
	Start      float64
	End        float64
	CanvasW    int
	CanvasH    int
	FirstFrame int
	LastFrame  int
	Factor     expr.Node
	X          expr.Node
	Y          expr.Node
}

// ZoomFor returns the zoom for layer fitted into a w×h slot, or nil when the
// layer does not zoom.
func ZoomFor(cfg config.Config, layer clip.ImageLayer, totalFrames, w, h int) *Zoom {
	if !layer.Zoom {
		return nil
	}
	if IsAnimated(layer.Path) && cfg.Zoom.DisableOnAnimatedValue() {
		return nil
	}
	start, end := cfg.Zoom.Start, cfg.Zoom.End
	span := math.Max(1, float64(totalFrames-1))
	return &Zoom{
		Start:      start,
		End:        end,
		CanvasW:    int(math.Ceil(float64(w) * end)),
		CanvasH:    int(math.Ceil(float64(h) * end)),
		FirstFrame: 0,
		LastFrame:  max(0, totalFrames-1),
		Factor:     expr.Add(expr.Num(start), expr.Div(expr.Mul(expr.Num(end-start), expr.OutFrame), expr.Num(span))),
		X:          expr.Sub(expr.Half(expr.InW), expr.Half(expr.Div(expr.InW, expr.Zoom))),
		Y:          expr.Sub(expr.Half(expr.InH), expr.Half(expr.Div(expr.InH, expr.Zoom))),
	}
}

// FactorAt evaluates the zoom factor at an output frame.
func (z *Zoom) FactorAt(frame int) float64 {
	return expr.MustEval(z.Factor, expr.Env{expr.OutFrame: float64(frame)})
}

// SlideFrames is the number of frames a slide entrance lasts, at least one.
func SlideFrames(fps int, duration float64) int {
	return int(math.Max(1, math.Floor(duration*float64(fps))))
}

// Slide moves a layer from off-frame to (x, y) over the entrance duration,
// then holds. Only the axis implied by dir changes.
func Slide(dir clip.SlideDirection, x, y expr.Node, fps int, duration float64) (expr.Node, expr.Node) {
	return slide(dir, x, y, fps, duration, expr.LayerW, expr.LayerH)
}

// SlideText is Slide for drawn text, which is sized by text_w and text_h.
func SlideText(dir clip.SlideDirection, x, y expr.Node, fps int, duration float64) (expr.Node, expr.Node) {
	return slide(dir, x, y, fps, duration, expr.TextW, expr.TextH)
}

func slide(dir clip.SlideDirection, x, y expr.Node, fps int, duration float64, w, h expr.Var) (expr.Node, expr.Node) {
	sf := expr.Int(SlideFrames(fps, duration))
	progress := expr.Div(expr.Frame, sf)
	entering := func(moving, final expr.Node) expr.Node {
		return expr.If{Cond: expr.Lt{L: expr.Frame, R: sf}, Then: moving, Else: final}
	}
	switch dir {
	case clip.SlideLeft:
		return entering(expr.Sub(expr.FrameW, expr.Mul(expr.Sub(expr.FrameW, x), progress)), x), y
	case clip.SlideRight:
		return entering(expr.Sub(expr.Mul(expr.Add(x, w), progress), w), x), y
	case clip.SlideUp:
		return x, entering(expr.Sub(expr.FrameH, expr.Mul(expr.Sub(expr.FrameH, y), progress)), y)
	case clip.SlideDown:
		return x, entering(expr.Sub(expr.Mul(expr.Add(y, h), progress), h), y)
	default:
		return x, y
	}
}

// BlurMethod selects the engine filter used for entry blur.
type BlurMethod int

const (
	BlurTBlend BlurMethod = iota
	BlurBox
	BlurTMix
)

func (m BlurMethod) String() string {
	switch m {
	case BlurBox:
		return "boxblur"
	case BlurTMix:
		return "tmix"
	default:
		return "tblend"
	}
}

// ParseBlurMethod maps a method name to a BlurMethod, defaulting to tblend.
func ParseBlurMethod(name string) (BlurMethod, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "tblend":
		return BlurTBlend, true
	case "boxblur", "box":
		return BlurBox, true
	case "tmix":
		return BlurTMix, true
	default:
		return BlurTBlend, false
	}
}

// Blur is an entry blur active during [Start, End] seconds.
type Blur struct {
	Method  BlurMethod
	Opacity float64
	Radius  float64
	Frames  int
	Start   float64
	End     float64
}

// Window is the engine enable expression for the blur.
func (b *Blur) Window() expr.Node {
	return expr.Between{X: expr.Time, Lo: expr.Num(b.Start), Hi: expr.Num(b.End)}
}

// EntryBlur returns the blur for a sliding layer with blur enabled, or nil.
// Strength maps to the method's own parameter.
func EntryBlur(cfg config.Config, layer clip.ImageLayer, duration float64) (*Blur, []clip.Warning) {
	if layer.Blur == nil || !layer.Blur.Enabled || layer.Slide == clip.SlideNone {
		return nil, nil
	}
	var warnings []clip.Warning

	name := layer.Blur.Method
	if strings.TrimSpace(name) == "" {
		name = cfg.Blur.Method
	}
	method, ok := ParseBlurMethod(name)
	if !ok {
		warnings = append(warnings, clip.Configf("unknown blur method %q; using %s", name, BlurTBlend))
	}

	window := cfg.Slide.DurationSec
	if layer.Blur.Duration != nil {
		window = *layer.Blur.Duration
	}
	window = math.Max(0, math.Min(window, duration))

	b := &Blur{
		Method:  method,
		Opacity: cfg.Blur.Opacity,
		Radius:  cfg.Blur.Radius,
		Frames:  cfg.Blur.Frames,
		Start:   0,
		End:     window,
	}
	if s := layer.Blur.Strength; s != nil {
		switch method {
		case BlurBox:
			b.Radius = *s
		case BlurTMix:
			b.Frames = int(math.Round(*s))
		default:
			b.Opacity = *s
		}
	}
	b.Opacity = math.Max(0.05, math.Min(b.Opacity, 1))
	b.Radius = math.Max(1, b.Radius)
	b.Frames = max(2, b.Frames)
	return b, warnings
}
