package keyframe

import (
	"math"
	"strings"
	"testing"

	"clipforge/internal/clip"
	"clipforge/internal/easing"
	"clipforge/internal/expr"
)

func sampleKeyframes() []clip.Keyframe {
	return []clip.Keyframe{
		{Time: 0, Values: map[string]float64{"x": 100, "y": 50}, Easing: "ease_in"},
		{Time: 2, Values: map[string]float64{"x": 500, "y": 250}, Easing: "cubic-out"},
		{Time: 3, Values: map[string]float64{"x": 200, "scale": 2}},
	}
}

func TestInterpolateEndpointsExact(t *testing.T) {
	kfs := sampleKeyframes()
	first := Interpolate(kfs, 0)
	if first["x"] != 100 || first["y"] != 50 {
		t.Fatalf("first = %v", first)
	}
	last := Interpolate(kfs, 3)
	if last["x"] != 200 || last["scale"] != 2 {
		t.Fatalf("last = %v", last)
	}
	if _, ok := last["y"]; ok {
		t.Fatalf("last keyframe values must be returned raw, got %v", last)
	}
	if before := Interpolate(kfs, -1); before["x"] != 100 {
		t.Fatalf("before = %v", before)
	}
	if after := Interpolate(kfs, 10); after["x"] != 200 {
		t.Fatalf("after = %v", after)
	}
}

func TestInterpolateUsesSegmentStartEasing(t *testing.T) {
	kfs := sampleKeyframes()
	for _, tc := range []struct {
		t          float64
		curve      easing.Curve
		start, end float64
		from, to   float64
	}{
		{0.5, easing.EaseIn, 0, 2, 100, 500},
		{1.7, easing.EaseIn, 0, 2, 100, 500},
		{2.4, easing.CubicOut, 2, 3, 500, 200},
	} {
		got := Interpolate(kfs, tc.t)["x"]
		ratio := math.Max(0, math.Min(1, (tc.t-tc.start)/(tc.end-tc.start)))
		want := tc.from + (tc.to-tc.from)*tc.curve.At(ratio)
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("x at %g = %g, want %g", tc.t, got, want)
		}
	}
}

func TestInterpolateUnionsKeys(t *testing.T) {
	got := Interpolate(sampleKeyframes(), 2.5)
	// y missing at the end holds the start value.
	if got["y"] != 250 {
		t.Fatalf("y = %g, want 250", got["y"])
	}
	// scale missing at the start takes the end value.
	if got["scale"] != 2 {
		t.Fatalf("scale = %g, want 2", got["scale"])
	}
}

func TestInterpolateZeroLengthSegment(t *testing.T) {
	kfs := []clip.Keyframe{
		{Time: 1, Values: map[string]float64{"x": 0}},
		{Time: 1, Values: map[string]float64{"x": 10}},
		{Time: 2, Values: map[string]float64{"x": 20}},
	}
	got := Interpolate(kfs, 1.5)["x"]
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("got %g", got)
	}
}

func TestCompileMatchesInterpolate(t *testing.T) {
	kfs := sampleKeyframes()
	node := Compile(kfs, "x", expr.Num(-1))
	for _, at := range []float64{0, 0.3, 1, 1.99, 2, 2.5, 3} {
		got := expr.MustEval(node, expr.Env{expr.Time: at})
		want := Interpolate(kfs, at)["x"]
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("x at %g: compiled %g, scalar %g", at, got, want)
		}
	}
	if got := expr.MustEval(node, expr.Env{expr.Time: 4}); got != -1 {
		t.Fatalf("outside the keyed range the fallback applies, got %g", got)
	}
}

func TestCompileSkipsSegmentsMissingKey(t *testing.T) {
	kfs := sampleKeyframes()
	node := Compile(kfs, "y", expr.Var("fallback"))
	if got := expr.MustEval(node, expr.Env{expr.Time: 2.5, "fallback": 7}); got != 7 {
		t.Fatalf("segment without y must use the fallback, got %g", got)
	}
	if got := expr.MustEval(node, expr.Env{expr.Time: 1, "fallback": 7}); got == 7 {
		t.Fatal("segment with y must tween")
	}
}

func TestCompileFallbacks(t *testing.T) {
	fallback := expr.Center(expr.FrameW, expr.LayerW)
	one := []clip.Keyframe{{Time: 0, Values: map[string]float64{"x": 1}}}
	if got := Compile(one, "x", fallback); got != fallback {
		t.Fatalf("single keyframe must return the fallback")
	}
	if got := Compile(sampleKeyframes(), "rotation", fallback); got != fallback {
		t.Fatalf("unused key must return the fallback")
	}
}

func TestCompileSortsInput(t *testing.T) {
	kfs := []clip.Keyframe{
		{Time: 2, Values: map[string]float64{"x": 200}},
		{Time: 0, Values: map[string]float64{"x": 0}},
	}
	node := Compile(kfs, "x", expr.Num(0))
	if got := expr.MustEval(node, expr.Env{expr.Time: 1}); got != 100 {
		t.Fatalf("got %g, want 100", got)
	}
	if kfs[0].Time != 2 {
		t.Fatal("input slice must not be reordered")
	}
}

func TestValidateFlagsEachProblem(t *testing.T) {
	tests := []struct {
		name string
		kfs  []clip.Keyframe
		want string
	}{
		{"negative time", []clip.Keyframe{{Time: -1}}, "non-negative"},
		{"out of order", []clip.Keyframe{{Time: 2}, {Time: 1}}, "sorted"},
		{"unknown easing", []clip.Keyframe{{Time: 0, Easing: "bounce"}}, `"bounce"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := Validate(tt.kfs)
			if len(warnings) != 1 {
				t.Fatalf("expected one warning, got %v", warnings)
			}
			if warnings[0].Kind != clip.KindValidation {
				t.Fatalf("kind = %s", warnings[0].Kind)
			}
			if !strings.Contains(warnings[0].Message, tt.want) {
				t.Fatalf("message %q does not mention %q", warnings[0].Message, tt.want)
			}
		})
	}
	if warnings := Validate(sampleKeyframes()); len(warnings) != 0 {
		t.Fatalf("valid keyframes produced %v", warnings)
	}
}

func TestForImage(t *testing.T) {
	own := []clip.Keyframe{{Time: 0}, {Time: 1}}
	tracked := []clip.Keyframe{{Time: 0}, {Time: 2}}
	spec := clip.ClipSpec{
		Images: []clip.ImageLayer{{Keyframes: own}, {}},
		Timeline: &clip.Timeline{Tracks: []clip.Track{
			{ID: "t0", Kind: clip.TrackKindImage, TargetID: "0", Keyframes: tracked},
			{ID: "t1", Kind: clip.TrackKindImage, TargetID: "1", Keyframes: tracked},
		}},
	}
	if got := ForImage(spec, 0); len(got) != 2 || got[1].Time != 1 {
		t.Fatalf("layer keyframes must win, got %v", got)
	}
	if got := ForImage(spec, 1); len(got) != 2 || got[1].Time != 2 {
		t.Fatalf("track keyframes expected, got %v", got)
	}
	if got := ForImage(spec, 5); got != nil {
		t.Fatalf("out of range index, got %v", got)
	}
}
