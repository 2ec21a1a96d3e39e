package epubtl

import (
	"context"
	"sync"
)

// dispatchParallel translates chunks with at most workers requests in
// flight. Outcomes are stored by chunk index, so callers see the same order
// as the sequential path regardless of completion order.
func dispatchParallel(ctx context.Context, chunks []Chunk, workers int, translate func(context.Context, Chunk) ([]string, error)) []chunkOutcome {
	outcomes := make([]chunkOutcome, len(chunks))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i := range chunks {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				outcomes[i].err = ctx.Err()
				return
			}
			defer func() { <-sem }()

			outcomes[i].translations, outcomes[i].err = translate(ctx, chunks[i])
		}(i)
	}

	wg.Wait()
	return outcomes
}
