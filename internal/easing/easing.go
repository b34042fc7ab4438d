// Package easing provides the named normalized-time curves used by keyframe
// interpolation, both as scalar functions and as expression trees.
package easing

import (
	"math"
	"strings"

	"clipforge/internal/expr"
)

// Curve is one of the supported easing curves.
type Curve int

const (
	Linear Curve = iota
	EaseIn
	EaseOut
	EaseInOut
	CubicIn
	CubicOut
	CubicInOut
)

// All lists every curve in declaration order.
var All = []Curve{Linear, EaseIn, EaseOut, EaseInOut, CubicIn, CubicOut, CubicInOut}

// MinSpan is the shortest segment length used when normalizing time, in seconds.
const MinSpan = 0.0001

var names = map[Curve]string{
	Linear:     "linear",
	EaseIn:     "ease_in",
	EaseOut:    "ease_out",
	EaseInOut:  "ease_in_out",
	CubicIn:    "cubic_in",
	CubicOut:   "cubic_out",
	CubicInOut: "cubic_in_out",
}

func (c Curve) String() string {
	if name, ok := names[c]; ok {
		return name
	}
	return names[Linear]
}

// Parse maps a curve name to a Curve. Hyphens and underscores are
// interchangeable and matching is case-insensitive. An empty name is linear.
func Parse(name string) (Curve, bool) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	if key == "" {
		return Linear, true
	}
	for c, n := range names {
		if n == key {
			return c, true
		}
	}
	return Linear, false
}

// Lookup is Parse without the ok flag: unknown names fall back to linear.
func Lookup(name string) Curve {
	c, _ := Parse(name)
	return c
}

// At evaluates the curve at t, clamping t to [0,1].
func (c Curve) At(t float64) float64 {
	t = math.Max(0, math.Min(t, 1))
	switch c {
	case EaseIn:
		return t * t
	case EaseOut:
		return 1 - (1-t)*(1-t)
	case EaseInOut:
		if t < 0.5 {
			return 2 * t * t
		}
		return 1 - math.Pow(-2*t+2, 2)/2
	case CubicIn:
		return t * t * t
	case CubicOut:
		return 1 - math.Pow(1-t, 3)
	case CubicInOut:
		if t < 0.5 {
			return 4 * t * t * t
		}
		return 1 - math.Pow(-2*t+2, 3)/2
	default:
		return t
	}
}

// Blend interpolates between from and to at the eased ratio.
func Blend(c Curve, from, to, ratio float64) float64 {
	return from + (to-from)*c.At(ratio)
}

// Expr builds the curve applied to the normalized-time node t. t is expected
// to already be clamped to [0,1], as produced by Normalized.
func (c Curve) Expr(t expr.Node) expr.Node {
	switch c {
	case EaseIn:
		return expr.Mul(t, t)
	case EaseOut:
		inv := expr.Sub(expr.Num(1), t)
		return expr.Sub(expr.Num(1), expr.Mul(inv, inv))
	case EaseInOut:
		tail := tailTerm(t)
		return expr.If{
			Cond: expr.Lt{L: t, R: expr.Num(0.5)},
			Then: expr.Mul(expr.Num(2), expr.Mul(t, t)),
			Else: expr.Sub(expr.Num(1), expr.Div(expr.Mul(tail, tail), expr.Num(2))),
		}
	case CubicIn:
		return expr.Mul(t, expr.Mul(t, t))
	case CubicOut:
		inv := expr.Sub(expr.Num(1), t)
		return expr.Sub(expr.Num(1), expr.Mul(inv, expr.Mul(inv, inv)))
	case CubicInOut:
		tail := tailTerm(t)
		return expr.If{
			Cond: expr.Lt{L: t, R: expr.Num(0.5)},
			Then: expr.Mul(expr.Num(4), expr.Mul(t, expr.Mul(t, t))),
			Else: expr.Sub(expr.Num(1), expr.Div(expr.Mul(tail, expr.Mul(tail, tail)), expr.Num(2))),
		}
	default:
		return t
	}
}

// tailTerm is -2t+2.
func tailTerm(t expr.Node) expr.Node {
	return expr.Sub(expr.Num(2), expr.Mul(expr.Num(2), t))
}

// Normalized builds clamp((clock-start)/(end-start), 0, 1) with the span
// floored at MinSpan.
func Normalized(clock expr.Node, start, end float64) expr.Node {
	span := math.Max(MinSpan, end-start)
	return expr.Clamp{
		X:  expr.Div(expr.Sub(clock, expr.Num(start)), expr.Num(span)),
		Lo: expr.Num(0),
		Hi: expr.Num(1),
	}
}

// Tween builds from+(to-from)*curve(normalized clock) over [start, end].
func Tween(c Curve, clock expr.Node, start, end, from, to float64) expr.Node {
	eased := c.Expr(Normalized(clock, start, end))
	return expr.Add(expr.Num(from), expr.Mul(expr.Num(to-from), eased))
}
