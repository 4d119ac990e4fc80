package mc

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunWorkers runs fn for workers 0..n-1 concurrently and waits for all.
// The first error cancels the context passed to the others and is returned.
func RunWorkers(ctx context.Context, n int, fn func(ctx context.Context, worker int) error) error {
	g, gCtx := errgroup.WithContext(ctx)
	for w := 0; w < n; w++ {
		g.Go(func() error {
			return fn(gCtx, w)
		})
	}

	return g.Wait()
}
