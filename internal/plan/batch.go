package plan

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"clipforge/internal/clip"
	"clipforge/internal/config"
)

// Result is the outcome of compiling one clip in a batch.
type Result struct {
	Index    int
	Plan     Plan
	Warnings []clip.Warning
	Err      error
}

// CompileAll compiles independent clips concurrently. Results keep the input
// order; a failing clip records its error without stopping the others. The
// returned error is non-nil only when ctx is cancelled.
func CompileAll(ctx context.Context, cfg config.Config, specs []clip.ClipSpec, prober Prober, concurrency int) ([]Result, error) {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	results := make([]Result, len(specs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, spec := range specs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, warnings, err := Compile(gctx, cfg, spec, prober)
			results[i] = Result{Index: i, Plan: p, Warnings: warnings, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
