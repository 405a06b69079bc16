// Package review wraps normalization, feature generation, and the frozen
// classifier into the per-pair decision procedure.
//
// Two degenerate cases are decided without consulting the model:
//
//   - the corrected string normalizes to empty → minor (a full deletion);
//   - the original normalizes to empty while the corrected does not → major
//     (content materialising from nothing).
//
// The deletion branch is evaluated first, so a pair where BOTH sides
// normalize to empty is labelled minor. That ordering is frozen production
// behaviour — possibly unintended, flagged for product review — and must not
// be "fixed" here.
package review

import (
	"context"
	"fmt"
	"time"

	"github.com/transcriptlab/editcheck/internal/feature"
	"github.com/transcriptlab/editcheck/internal/normalize"
	"github.com/transcriptlab/editcheck/internal/observe"
	"github.com/transcriptlab/editcheck/pkg/classifier"
)

// Labels emitted by the degenerate-case branches. The frozen model emits the
// same two values, but the reviewer passes its output through unchecked.
const (
	LabelMinor = "1"
	LabelMajor = "2"
)

// Option is a functional option for configuring a [Reviewer].
type Option func(*Reviewer)

// WithMetrics attaches a metrics instance. Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(r *Reviewer) {
		r.metrics = m
	}
}

// Reviewer classifies one transcript-correction pair at a time. It is
// read-only after construction and safe for concurrent use.
type Reviewer struct {
	norm    *normalize.Normalizer
	engine  *feature.Engine
	model   classifier.Classifier
	metrics *observe.Metrics
}

// New returns a [Reviewer] combining the three pipeline stages.
func New(norm *normalize.Normalizer, engine *feature.Engine, model classifier.Classifier, opts ...Option) *Reviewer {
	r := &Reviewer{
		norm:   norm,
		engine: engine,
		model:  model,
	}
	for _, o := range opts {
		o(r)
	}
	if r.metrics == nil {
		r.metrics = observe.DefaultMetrics()
	}
	return r
}

// Review normalizes both strings, applies the degenerate-case branches, and
// otherwise scores the pair with the frozen model. The returned label is
// opaque; errors are fatal for this pair only.
func (r *Reviewer) Review(ctx context.Context, original, corrected string) (string, error) {
	ctx, span := observe.StartSpan(ctx, "review.pair")
	defer span.End()

	start := time.Now()
	s1 := r.norm.Normalize(original)
	s2 := r.norm.Normalize(corrected)
	r.metrics.Since(ctx, r.metrics.NormalizeDuration, start)

	// Deletion check runs first; see the package comment for why the
	// both-empty pair lands here.
	if s2 == "" {
		r.metrics.RecordPairReviewed(ctx, LabelMinor)
		return LabelMinor, nil
	}
	if s1 == "" {
		r.metrics.RecordPairReviewed(ctx, LabelMajor)
		return LabelMajor, nil
	}

	start = time.Now()
	vec, err := r.engine.Features(s1, s2)
	r.metrics.Since(ctx, r.metrics.FeatureDuration, start)
	if err != nil {
		r.metrics.RecordReviewError(ctx, "features")
		return "", fmt.Errorf("review: features: %w", err)
	}

	start = time.Now()
	label, err := r.model.Predict(ctx, vec.Triple())
	r.metrics.Since(ctx, r.metrics.ClassifyDuration, start)
	if err != nil {
		r.metrics.RecordReviewError(ctx, "classify")
		return "", fmt.Errorf("review: classify: %w", err)
	}

	r.metrics.RecordPairReviewed(ctx, label)
	return label, nil
}
