package render

import (
	"context"
	"testing"

	"clipforge/internal/clip"
	"clipforge/internal/config"
	"clipforge/internal/plan"
)

func compileTestPlan(t *testing.T, spec clip.ClipSpec) plan.Plan {
	t.Helper()
	p, _, err := plan.Compile(context.Background(), config.Default(), spec, nil)
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	return p
}

func testSpec() clip.ClipSpec {
	return clip.ClipSpec{Duration: 2, FPS: 25, Width: 1920, Height: 1080}
}
