package icon

import (
	"context"
	"fmt"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// NormalizeBatch normalizes srcs on up to workers goroutines. Results are in
// input order. The first failure cancels the remaining work and is returned.
// workers <= 0 means runtime.NumCPU().
func (n *Normalizer) NormalizeBatch(ctx context.Context, srcs []image.Image, workers int) ([]*Result, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	out := make([]*Result, len(srcs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, src := range srcs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := n.NormalizeResult(src)
			if err != nil {
				return &BatchError{Index: i, Err: err}
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// BatchError identifies which image of a batch failed.
type BatchError struct {
	Index int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("image %d: %v", e.Index, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }
