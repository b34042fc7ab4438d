package easing

import (
	"math"
	"testing"

	"clipforge/internal/expr"
)

func TestCurvesHitEndpoints(t *testing.T) {
	for _, c := range All {
		if got := c.At(0); got != 0 {
			t.Errorf("%s(0) = %g, want 0", c, got)
		}
		if got := c.At(1); got != 1 {
			t.Errorf("%s(1) = %g, want 1", c, got)
		}
	}
}

func TestCurvesMonotonic(t *testing.T) {
	const steps = 1000
	for _, c := range All {
		prev := c.At(0)
		for i := 1; i <= steps; i++ {
			v := c.At(float64(i) / steps)
			if v < prev-1e-12 {
				t.Fatalf("%s decreases at t=%g: %g < %g", c, float64(i)/steps, v, prev)
			}
			prev = v
		}
	}
}

func TestCurveValues(t *testing.T) {
	tests := []struct {
		c    Curve
		t    float64
		want float64
	}{
		{Linear, 0.25, 0.25},
		{EaseIn, 0.5, 0.25},
		{EaseOut, 0.5, 0.75},
		{EaseInOut, 0.25, 0.125},
		{EaseInOut, 0.75, 0.875},
		{CubicIn, 0.5, 0.125},
		{CubicOut, 0.5, 0.875},
		{CubicInOut, 0.25, 0.0625},
		{CubicInOut, 0.75, 0.9375},
	}
	for _, tt := range tests {
		if got := tt.c.At(tt.t); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("%s(%g) = %g, want %g", tt.c, tt.t, got, tt.want)
		}
	}
}

func TestAtClampsInput(t *testing.T) {
	if got := CubicIn.At(-2); got != 0 {
		t.Fatalf("At(-2) = %g", got)
	}
	if got := EaseOut.At(3); got != 1 {
		t.Fatalf("At(3) = %g", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		want Curve
		ok   bool
	}{
		{"linear", Linear, true},
		{"", Linear, true},
		{"ease-in-out", EaseInOut, true},
		{"CUBIC_OUT", CubicOut, true},
		{"bounce", Linear, false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Parse(%q) = %v,%v want %v,%v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
	if Lookup("bounce") != Linear {
		t.Fatal("Lookup should fall back to linear")
	}
}

func TestExprMatchesScalar(t *testing.T) {
	for _, c := range All {
		node := c.Expr(expr.Var("t"))
		for i := 0; i <= 20; i++ {
			x := float64(i) / 20
			got, err := expr.Eval(node, expr.Env{"t": x})
			if err != nil {
				t.Fatalf("%s: eval error %v", c, err)
			}
			if want := c.At(x); math.Abs(got-want) > 1e-9 {
				t.Fatalf("%s at %g: expr %g, scalar %g", c, x, got, want)
			}
		}
	}
}

func TestTweenMatchesBlend(t *testing.T) {
	for _, c := range All {
		node := Tween(c, expr.Time, 1, 3, 100, 500)
		for _, clock := range []float64{0, 1, 1.5, 2, 2.7, 3, 4} {
			got := expr.MustEval(node, expr.Env{expr.Time: clock})
			want := Blend(c, 100, 500, (clock-1)/2)
			if math.Abs(got-want) > 1e-9 {
				t.Fatalf("%s at %g: tween %g, blend %g", c, clock, got, want)
			}
		}
	}
}

func TestNormalizedFloorsSpan(t *testing.T) {
	node := Normalized(expr.Time, 2, 2)
	if got := expr.MustEval(node, expr.Env{expr.Time: 2.00005}); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("got %g, want 0.5", got)
	}
}

func TestEaseInOutRendersConditional(t *testing.T) {
	got := expr.String(EaseInOut.Expr(expr.Var("T")))
	want := "if(lt(T,0.5),2*T*T,1-(2-2*T)*(2-2*T)/2)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
