// Package character resolves named motion presets for the character overlay.
package character

import (
	"math"
	"strings"

	"clipforge/internal/clip"
	"clipforge/internal/expr"
)

// Preset is a named character motion.
type Preset int

const (
	None Preset = iota
	WalkIn
	PopIn
	SlideIn
)

const (
	walkFraction  = 0.6
	walkOffset    = 200
	bobAmplitude  = 6
	bobPeriod     = 10
	popFraction   = 0.3
	popStartScale = 0.7
	slideFraction = 0.4
)

func (p Preset) String() string {
	switch p {
	case WalkIn:
		return "walk-in"
	case PopIn:
		return "pop-in"
	case SlideIn:
		return "slide-in"
	default:
		return "none"
	}
}

// Parse maps a preset name to a Preset. Empty names are None; unknown names
// return None and false.
func Parse(name string) (Preset, bool) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-") {
	case "", "none":
		return None, true
	case "walk", "walk-in":
		return WalkIn, true
	case "pop", "pop-in":
		return PopIn, true
	case "slide", "slide-in":
		return SlideIn, true
	default:
		return None, false
	}
}

// Motion is the animated placement and scale of the character overlay.
type Motion struct {
	X     expr.Node
	Y     expr.Node
	Scale expr.Node
}

// Static reports whether the motion never changes over the clip.
func (m Motion) Static() bool {
	return !expr.Uses(m.X, expr.Frame) && !expr.Uses(m.Y, expr.Frame) && !expr.Uses(m.Scale, expr.Frame)
}

// Build resolves preset into frame-indexed expressions around the rest
// position. dir picks the side a slide-in enters from; boxSize is the
// character's rendered size.
func Build(preset Preset, dir clip.CharacterSide, totalFrames int, restX, restY expr.Node, boxSize int) Motion {
	identity := Motion{X: restX, Y: restY, Scale: expr.Num(1)}
	switch preset {
	case WalkIn:
		wf := frames(totalFrames, walkFraction)
		walking := expr.Lt{L: expr.Frame, R: wf}
		progress := expr.Div(expr.Frame, wf)
		return Motion{
			X: expr.If{
				Cond: walking,
				Then: expr.Add(expr.Sub(restX, expr.Num(walkOffset)), expr.Mul(expr.Num(walkOffset), progress)),
				Else: restX,
			},
			Y: expr.If{
				Cond: walking,
				Then: expr.Add(restY, expr.Mul(expr.Num(bobAmplitude), expr.Sin(expr.Div(expr.Mul(expr.TwoPi, expr.Frame), expr.Num(bobPeriod))))),
				Else: restY,
			},
			Scale: expr.Num(1),
		}
	case PopIn:
		pf := frames(totalFrames, popFraction)
		return Motion{
			X: restX,
			Y: restY,
			Scale: expr.If{
				Cond: expr.Lt{L: expr.Frame, R: pf},
				Then: expr.Add(expr.Num(popStartScale), expr.Mul(expr.Num(1-popStartScale), expr.Div(expr.Frame, pf))),
				Else: expr.Num(1),
			},
		}
	case SlideIn:
		sf := frames(totalFrames, slideFraction)
		start := expr.Node(expr.Int(-boxSize))
		if dir == clip.SideRight {
			start = expr.Add(expr.FrameW, expr.Int(boxSize))
		}
		return Motion{
			X: expr.If{
				Cond: expr.Lt{L: expr.Frame, R: sf},
				Then: expr.Add(start, expr.Mul(expr.Sub(restX, start), expr.Div(expr.Frame, sf))),
				Else: restX,
			},
			Y:     restY,
			Scale: expr.Num(1),
		}
	default:
		return identity
	}
}

// Direction resolves an animation's declared direction, falling back to the
// character side.
func Direction(anim *clip.CharacterAnim, side clip.CharacterSide) clip.CharacterSide {
	if anim == nil {
		return side
	}
	if dir, ok := clip.ParseCharacterSide(anim.Direction); ok && strings.TrimSpace(anim.Direction) != "" {
		return dir
	}
	return side
}

func frames(total int, fraction float64) expr.Node {
	return expr.Num(math.Max(1, math.Floor(float64(total)*fraction)))
}
