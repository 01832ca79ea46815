package fingerprint

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Input is one molecule for batch fingerprinting.
type Input struct {
	ID     string
	SMILES string
}

// ComputeBatch fingerprints the inputs across a worker pool and returns the
// vectors keyed by input ID. Fingerprinting is a pure per-molecule function,
// so workers share nothing and completion order does not matter; results are
// re-associated by ID, never by position. workers ≤ 0 means NumCPU.
//
// Any parse failure aborts the batch; callers are expected to have validated
// structures beforehand.
func (f *Fingerprinter) ComputeBatch(ctx context.Context, inputs []Input, workers int) (map[string][]float32, error) {
	if len(inputs) == 0 {
		return map[string][]float32{}, nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan Input)

	g.Go(func() error {
		defer close(jobs)
		for _, in := range inputs {
			select {
			case jobs <- in:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	var mu sync.Mutex
	results := make(map[string][]float32, len(inputs))
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for in := range jobs {
				vec, err := f.Compute(in.SMILES)
				if err != nil {
					return err
				}
				mu.Lock()
				results[in.ID] = vec
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
