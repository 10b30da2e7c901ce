package processor

import (
	"context"
	"sync"

	"lead-server/internal/leads"
	"lead-server/internal/observability"
)

const defaultEnrichmentWorkers = 5

type enrichmentResult struct {
	lead leads.Lead
	err  error
}

// enrichConcurrently runs provider enrichment for the given input indices
// with a bounded worker fan-out. Results are keyed by input index so the
// caller can merge them back in order. A canceled context fails the
// remaining jobs instead of blocking.
func (p *ImportProcessor) enrichConcurrently(ctx context.Context, input []leads.Lead, indices []int) map[int]enrichmentResult {
	results := make(map[int]enrichmentResult, len(indices))
	if len(indices) == 0 {
		return results
	}

	workers := p.workers
	if workers > len(indices) {
		workers = len(indices)
	}

	jobs := make(chan int)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				var res enrichmentResult
				if err := ctx.Err(); err != nil {
					res = enrichmentResult{err: err}
				} else {
					lead, err := p.enricher.EnrichLead(ctx, input[idx])
					res = enrichmentResult{lead: lead, err: err}
					if err != nil {
						p.logger.Error(ctx, "lead enrichment failed", err)
					}
				}
				mu.Lock()
				results[idx] = res
				mu.Unlock()
			}
		}()
	}

	for _, idx := range indices {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	p.logger.Info(observability.WithFields(ctx,
		observability.Field{Key: "enrichment_jobs", Value: len(indices)},
		observability.Field{Key: "enrichment_workers", Value: workers}),
		"enrichment fan-out complete")

	return results
}
