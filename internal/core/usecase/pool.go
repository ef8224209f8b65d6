package usecase

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// RunPool calls fn exactly once per input on at most poolSize concurrent
// workers and returns the present results in input order. A panicking call
// counts as absent. Once ctx is done no further inputs are dispatched; calls
// already running are not interrupted.
func RunPool[In, Out any](ctx context.Context, inputs []In, poolSize int, fn func(context.Context, In) (Out, bool)) []Out {
	if poolSize <= 0 {
		poolSize = runtime.GOMAXPROCS(0)
	}

	results := make([]Out, len(inputs))
	present := make([]bool, len(inputs))
	workCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(poolSize)
	for i, input := range inputs {
		if ctx.Err() != nil {
			slog.Warn("pool_dispatch_stopped", "dispatched", i, "total", len(inputs))
			break
		}
		g.Go(func() error {
			results[i], present[i] = callSafely(workCtx, input, fn)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Out, 0, len(inputs))
	for i := range results {
		if present[i] {
			out = append(out, results[i])
		}
	}
	return out
}

func callSafely[In, Out any](ctx context.Context, input In, fn func(context.Context, In) (Out, bool)) (result Out, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("pool_worker_panic", "panic", r)
			var zero Out
			result, ok = zero, false
		}
	}()
	return fn(ctx, input)
}
