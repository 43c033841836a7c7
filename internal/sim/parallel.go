package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Factory builds an independent stepper for one seed.
type Factory func(seed int64) (Stepper, error)

// Ensemble runs several layouts of the same graph with consecutive seeds,
// one goroutine per run.
type Ensemble struct {
	factory   Factory
	metrics   func() []Metric
	numRuns   int
	seedStart int64
	log       *slog.Logger
}

// NewEnsemble prepares numRuns runs seeded from seedStart. metrics, when
// non-nil, is called once per run so runs never share metric state.
func NewEnsemble(factory Factory, metrics func() []Metric, numRuns int, seedStart int64, log *slog.Logger) *Ensemble {
	return &Ensemble{
		factory:   factory,
		metrics:   metrics,
		numRuns:   numRuns,
		seedStart: seedStart,
		log:       log,
	}
}

// Run returns one result per run, indexed by seed offset.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	if e.numRuns < 1 {
		return nil, fmt.Errorf("%w: ensemble needs at least one run", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			seed := e.seedStart + int64(idx)
			stepper, err := e.factory(seed)
			if err != nil {
				errs[idx] = fmt.Errorf("seed %d: %w", seed, err)
				return
			}

			var log *slog.Logger
			if e.log != nil {
				log = e.log.With("seed", seed)
			}
			s := New(stepper, log)
			if e.metrics != nil {
				for _, m := range e.metrics() {
					s.AddMetric(m)
				}
			}
			results[idx], errs[idx] = s.Run(ctx, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// Best returns the index of the run with the lowest final movement.
func Best(results []*Result) int {
	best := -1
	for i, r := range results {
		if r == nil {
			continue
		}
		if best < 0 || r.FinalMovement() < results[best].FinalMovement() {
			best = i
		}
	}
	return best
}
