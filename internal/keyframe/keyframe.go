// Package keyframe compiles ordered keyframe sequences into piecewise
// expressions and interpolates them numerically for previews and validation.
package keyframe

import (
	"math"
	"slices"
	"strconv"

	"clipforge/internal/clip"
	"clipforge/internal/easing"
	"clipforge/internal/expr"
)

// Sorted returns a copy of keyframes ordered by time. Equal times keep their
// input order.
func Sorted(keyframes []clip.Keyframe) []clip.Keyframe {
	out := slices.Clone(keyframes)
	slices.SortStableFunc(out, func(a, b clip.Keyframe) int {
		switch {
		case a.Time < b.Time:
			return -1
		case a.Time > b.Time:
			return 1
		default:
			return 0
		}
	})
	return out
}

// Compile builds one expression for key spanning the whole clip. Each segment
// whose endpoints both define key becomes a guarded tween eased by the
// segment's starting keyframe; fallback applies outside every segment.
func Compile(keyframes []clip.Keyframe, key string, fallback expr.Node) expr.Node {
	if len(keyframes) < 2 {
		return fallback
	}
	sorted := Sorted(keyframes)

	type segment struct {
		start, end clip.Keyframe
		from, to   float64
	}
	var segments []segment
	for i := 0; i+1 < len(sorted); i++ {
		a, b := sorted[i], sorted[i+1]
		from, okA := a.Value(key)
		to, okB := b.Value(key)
		if !okA || !okB {
			continue
		}
		segments = append(segments, segment{start: a, end: b, from: from, to: to})
	}
	if len(segments) == 0 {
		return fallback
	}

	out := fallback
	for i := len(segments) - 1; i >= 0; i-- {
		s := segments[i]
		out = expr.If{
			Cond: expr.Between{X: expr.Time, Lo: expr.Num(s.start.Time), Hi: expr.Num(s.end.Time)},
			Then: easing.Tween(easing.Lookup(s.start.Easing), expr.Time, s.start.Time, s.end.Time, s.from, s.to),
			Else: out,
		}
	}
	return out
}

// Interpolate evaluates the keyframes at t. Outside the keyed range the
// nearest keyframe's values are returned unchanged.
func Interpolate(keyframes []clip.Keyframe, t float64) map[string]float64 {
	if len(keyframes) == 0 {
		return map[string]float64{}
	}
	sorted := Sorted(keyframes)
	first, last := sorted[0], sorted[len(sorted)-1]
	if t <= first.Time {
		return cloneValues(first.Values)
	}
	if t >= last.Time {
		return cloneValues(last.Values)
	}

	for i := 0; i+1 < len(sorted); i++ {
		a, b := sorted[i], sorted[i+1]
		if t < a.Time || t > b.Time {
			continue
		}
		span := math.Max(easing.MinSpan, b.Time-a.Time)
		ratio := (t - a.Time) / span
		curve := easing.Lookup(a.Easing)

		out := make(map[string]float64, len(a.Values)+len(b.Values))
		for _, key := range unionKeys(a.Values, b.Values) {
			from, okA := a.Values[key]
			to, okB := b.Values[key]
			switch {
			case !okA && okB:
				from = to
			case okA && !okB:
				to = from
			}
			out[key] = easing.Blend(curve, from, to, ratio)
		}
		return out
	}
	return cloneValues(last.Values)
}

// Validate reports malformed keyframes. Findings never stop interpolation.
func Validate(keyframes []clip.Keyframe) []clip.Warning {
	var warnings []clip.Warning
	for i, kf := range keyframes {
		if kf.Time < 0 {
			warnings = append(warnings, clip.Validationf("keyframe %d: time must be non-negative (got %g)", i, kf.Time))
		}
		if i > 0 && kf.Time < keyframes[i-1].Time {
			warnings = append(warnings, clip.Validationf("keyframe %d: keyframes must be sorted by time", i))
		}
		if _, ok := easing.Parse(kf.Easing); !ok {
			warnings = append(warnings, clip.Validationf("keyframe %d: unknown easing %q", i, kf.Easing))
		}
	}
	return warnings
}

// ForImage returns the keyframes driving image index: the layer's own, or
// else those of the timeline track targeting it.
func ForImage(spec clip.ClipSpec, index int) []clip.Keyframe {
	if index < 0 || index >= len(spec.Images) {
		return nil
	}
	if kfs := spec.Images[index].Keyframes; len(kfs) > 0 {
		return kfs
	}
	if track, ok := spec.Timeline.TrackFor(clip.TrackKindImage, strconv.Itoa(index)); ok {
		return track.Keyframes
	}
	return nil
}

func unionKeys(a, b map[string]float64) []string {
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

func cloneValues(values map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
