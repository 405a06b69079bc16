// Package observe provides application-wide observability primitives for
// editcheck: OpenTelemetry metrics, tracing helpers, and structured logging
// enrichment.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint when editcheck is embedded in a
// long-running service. A package-level default [Metrics] instance
// ([DefaultMetrics]) is provided for convenience; tests should use
// [NewMetrics] with a custom [metric.MeterProvider] to avoid cross-test
// pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all editcheck metrics.
const meterName = "github.com/transcriptlab/editcheck"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// NormalizeDuration tracks the normalization cascade latency per string.
	NormalizeDuration metric.Float64Histogram

	// FeatureDuration tracks feature-triple computation latency per pair.
	// The optimal-transport solve inside the WMD dominates this figure and is
	// the least bounded step of the pipeline.
	FeatureDuration metric.Float64Histogram

	// ClassifyDuration tracks frozen-model scoring latency per pair.
	ClassifyDuration metric.Float64Histogram

	// BatchDuration tracks end-to-end batch run latency.
	BatchDuration metric.Float64Histogram

	// --- Counters ---

	// PairsReviewed counts classified pairs. Use with attribute:
	//   attribute.String("label", ...)
	PairsReviewed metric.Int64Counter

	// ReviewErrors counts pairs that failed feature generation or scoring.
	// Use with attribute: attribute.String("stage", ...)
	ReviewErrors metric.Int64Counter

	// --- Gauges ---

	// ActiveWorkers tracks the number of batch workers currently reviewing
	// a pair.
	ActiveWorkers metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) optimised
// for per-pair classification latencies.
var latencyBuckets = []float64{
	0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.NormalizeDuration, err = m.Float64Histogram("editcheck.normalize.duration",
		metric.WithDescription("Latency of the text-normalization cascade per string."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.FeatureDuration, err = m.Float64Histogram("editcheck.feature.duration",
		metric.WithDescription("Latency of feature-vector computation per pair, including the transport solve."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ClassifyDuration, err = m.Float64Histogram("editcheck.classify.duration",
		metric.WithDescription("Latency of frozen-model scoring per pair."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.BatchDuration, err = m.Float64Histogram("editcheck.batch.duration",
		metric.WithDescription("End-to-end batch run latency."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.PairsReviewed, err = m.Int64Counter("editcheck.pairs.reviewed",
		metric.WithDescription("Total classified pairs by label."),
	); err != nil {
		return nil, err
	}
	if met.ReviewErrors, err = m.Int64Counter("editcheck.review.errors",
		metric.WithDescription("Total pairs that failed feature generation or scoring."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveWorkers, err = m.Int64UpDownCounter("editcheck.active_workers",
		metric.WithDescription("Number of batch workers currently reviewing a pair."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordPairReviewed increments the reviewed-pairs counter with the label
// attribute.
func (m *Metrics) RecordPairReviewed(ctx context.Context, label string) {
	m.PairsReviewed.Add(ctx, 1, metric.WithAttributes(attribute.String("label", label)))
}

// RecordReviewError increments the review-error counter with the failed
// stage ("features" or "classify").
func (m *Metrics) RecordReviewError(ctx context.Context, stage string) {
	m.ReviewErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}

// Since records the elapsed time since start on hist. Convenience for the
// common defer pattern:
//
//	defer metrics.Since(ctx, metrics.FeatureDuration, time.Now())
func (m *Metrics) Since(ctx context.Context, hist metric.Float64Histogram, start time.Time) {
	hist.Record(ctx, time.Since(start).Seconds())
}
