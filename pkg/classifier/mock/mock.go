// Package mock provides a test double for the classifier.Classifier interface.
//
// Use Classifier to return a pre-canned label without a live model and to
// verify the feature triples submitted for scoring.
//
// Example:
//
//	c := &mock.Classifier{Label: "2"}
//	label, _ := c.Predict(ctx, [3]float64{0.4, -0.1, 63})
package mock

import (
	"context"
	"sync"

	"github.com/transcriptlab/editcheck/pkg/classifier"
)

// Compile-time assertion that Classifier satisfies the classifier interface.
var _ classifier.Classifier = (*Classifier)(nil)

// PredictCall records a single invocation of Predict.
type PredictCall struct {
	// Ctx is the context passed to Predict.
	Ctx context.Context
	// Features is the feature triple passed to Predict.
	Features [3]float64
}

// Classifier is a mock implementation of classifier.Classifier.
type Classifier struct {
	mu sync.Mutex

	// Label is returned by Predict. If empty, "1" is returned.
	Label string

	// Err, if non-nil, is returned as the error from Predict.
	Err error

	// PredictFunc, if non-nil, overrides Label/Err entirely.
	PredictFunc func(ctx context.Context, features [3]float64) (string, error)

	// Calls records every Predict invocation in order.
	Calls []PredictCall
}

// Predict implements classifier.Classifier.
func (c *Classifier) Predict(ctx context.Context, features [3]float64) (string, error) {
	c.mu.Lock()
	c.Calls = append(c.Calls, PredictCall{Ctx: ctx, Features: features})
	fn := c.PredictFunc
	label, err := c.Label, c.Err
	c.mu.Unlock()

	if fn != nil {
		return fn(ctx, features)
	}
	if err != nil {
		return "", err
	}
	if label == "" {
		label = "1"
	}
	return label, nil
}

// CallCount returns the number of Predict invocations so far.
func (c *Classifier) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Calls)
}
