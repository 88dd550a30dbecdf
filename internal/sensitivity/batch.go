package sensitivity

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// BatchEstimator runs sensitivity estimates for many datasets with a
// bounded worker pool. Each dataset is independent, so results keep the
// input order regardless of completion order.
type BatchEstimator struct {
	estimator *Estimator
	sem       *semaphore.Weighted
}

// NewBatchEstimator creates a pool running at most maxWorkers estimates
// concurrently. maxWorkers below one is treated as one.
func NewBatchEstimator(estimator *Estimator, maxWorkers int64) *BatchEstimator {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &BatchEstimator{
		estimator: estimator,
		sem:       semaphore.NewWeighted(maxWorkers),
	}
}

// Run estimates all datasets and returns one table per dataset, in input
// order. The first error encountered is returned after all started
// workers drain; its table slot is nil.
func (b *BatchEstimator) Run(ctx context.Context, datasets []Dataset) ([]*Table, error) {
	tables := make([]*Table, len(datasets))
	errs := make([]error, len(datasets))

	var wg sync.WaitGroup
	for i, ds := range datasets {
		if err := b.sem.Acquire(ctx, 1); err != nil {
			errs[i] = err
			break
		}
		wg.Add(1)
		go func(i int, ds Dataset) {
			defer wg.Done()
			defer b.sem.Release(1)
			tables[i], errs[i] = b.estimator.Run(ds)
		}(i, ds)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return tables, err
		}
	}
	return tables, nil
}
