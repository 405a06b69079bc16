package batch

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/transcriptlab/editcheck/internal/observe"
	"github.com/transcriptlab/editcheck/internal/review"
)

// Option is a functional option for configuring a [Runner].
type Option func(*Runner)

// WithWorkers bounds the number of pairs reviewed concurrently. Default: 1
// (sequential, the reference behaviour). Pairs are fully independent, so any
// positive bound is safe.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithMetrics attaches a metrics instance. Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// Runner classifies a batch of pairs. Labels are collected by input index, so
// output order always matches input order regardless of completion order.
type Runner struct {
	reviewer *review.Reviewer
	workers  int
	metrics  *observe.Metrics
}

// NewRunner returns a [Runner] delegating per-pair work to reviewer.
func NewRunner(reviewer *review.Reviewer, opts ...Option) *Runner {
	r := &Runner{
		reviewer: reviewer,
		workers:  1,
	}
	for _, o := range opts {
		o(r)
	}
	if r.metrics == nil {
		r.metrics = observe.DefaultMetrics()
	}
	return r
}

// Run reviews every pair and returns one label per pair, in input order. The
// first per-pair error aborts the batch; no automatic retry or row skipping
// happens here — that policy belongs to the caller.
func (r *Runner) Run(ctx context.Context, pairs []Pair) ([]string, error) {
	ctx, span := observe.StartSpan(ctx, "batch.run")
	defer span.End()
	defer r.metrics.Since(ctx, r.metrics.BatchDuration, time.Now())

	labels := make([]string, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, p := range pairs {
		g.Go(func() error {
			r.metrics.ActiveWorkers.Add(gctx, 1)
			defer r.metrics.ActiveWorkers.Add(gctx, -1)

			label, err := r.reviewer.Review(gctx, p.Original, p.Corrected)
			if err != nil {
				return fmt.Errorf("batch: row %d: %w", i+1, err)
			}
			labels[i] = label
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return labels, nil
}
