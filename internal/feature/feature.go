// Package feature computes the three-metric feature vector over a pair of
// normalized transcript strings:
//
//   - Word Mover's Distance: minimum-cost optimal transport between the two
//     bag-of-words distributions, with embedding cosine distance as the
//     per-word transport cost.
//   - Index-Ratio: normalized difference of summed vocabulary indices, a proxy
//     for the aggregate word-rarity shift between the two strings.
//   - String-Ratio: Levenshtein similarity scaled to 0–100.
//
// Inputs must already be normalized (see the normalize package); every token
// must be present in the lexicon. An out-of-vocabulary token reaching this
// package is a precondition violation and yields [ErrMissingWord] rather than
// a silently substituted default.
package feature

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/transcriptlab/editcheck/internal/feature/transport"
	"github.com/transcriptlab/editcheck/pkg/lexicon"
)

// defaultEpsilon guards the Index-Ratio and WMD mass normalizations against
// division by zero. The value is part of the frozen feature definition.
const defaultEpsilon = 1e-4

// ErrMissingWord reports a token absent from the lexicon. The normalizer's
// vocabulary filter is supposed to make this impossible; seeing it means the
// caller skipped normalization or used a different lexicon.
var ErrMissingWord = errors.New("feature: missing vocabulary entry")

// Vector is the ordered feature triple consumed by the classifier. Field
// order matches the layout the frozen model was trained on.
type Vector struct {
	WMD         float64
	IndexRatio  float64
	StringRatio float64
}

// Triple returns the features in classifier input order.
func (v Vector) Triple() [3]float64 {
	return [3]float64{v.WMD, v.IndexRatio, v.StringRatio}
}

// Option is a functional option for configuring an [Engine].
type Option func(*Engine)

// WithEpsilon overrides the denominator guard used in the Index-Ratio and the
// WMD mass normalization. Default: 1e-4.
func WithEpsilon(eps float64) Option {
	return func(e *Engine) {
		e.eps = eps
	}
}

// WithSolver substitutes the optimal-transport solver used for WMD.
// Default: [transport.Simplex].
func WithSolver(s transport.Solver) Option {
	return func(e *Engine) {
		e.solver = s
	}
}

// Engine computes feature vectors against a fixed lexicon. It is read-only
// after construction and safe for concurrent use.
type Engine struct {
	lex    lexicon.Lexicon
	solver transport.Solver
	eps    float64
}

// New returns an [Engine] backed by lex.
func New(lex lexicon.Lexicon, opts ...Option) *Engine {
	e := &Engine{
		lex:    lex,
		solver: transport.NewSimplex(),
		eps:    defaultEpsilon,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Features computes the full metric triple for a pair of normalized,
// non-empty strings. s1 is the original, s2 the corrected version; the
// Index-Ratio is signed accordingly.
func (e *Engine) Features(s1, s2 string) (Vector, error) {
	wmd, err := e.WMD(s1, s2)
	if err != nil {
		return Vector{}, err
	}
	idx, err := e.IndexRatio(s1, s2)
	if err != nil {
		return Vector{}, err
	}
	return Vector{
		WMD:         wmd,
		IndexRatio:  idx,
		StringRatio: e.StringRatio(s1, s2),
	}, nil
}

// IndexRatio returns (Σidx(s2) − Σidx(s1)) / (Σidx(s1) + Σidx(s2) + ε).
// Lower vocabulary indices mean more common words, so the sign captures which
// side of the pair drifted toward rarer vocabulary. Exported alongside
// StringRatio and WMD for diagnostic tooling; Features is the usual entry
// point.
func (e *Engine) IndexRatio(s1, s2 string) (float64, error) {
	sum1, err := e.indexSum(s1)
	if err != nil {
		return 0, err
	}
	sum2, err := e.indexSum(s2)
	if err != nil {
		return 0, err
	}
	return float64(sum2-sum1) / (float64(sum1+sum2) + e.eps), nil
}

func (e *Engine) indexSum(s string) (int64, error) {
	var sum int64
	for _, w := range strings.Fields(s) {
		i, ok := e.lex.Lookup(w)
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrMissingWord, w)
		}
		sum += int64(i)
	}
	return sum, nil
}

// StringRatio returns the Levenshtein similarity of the two strings scaled to
// 0–100 and rounded to the nearest integer. Symmetric in its arguments; two
// empty strings are identical (100).
func (e *Engine) StringRatio(s1, s2 string) float64 {
	maxLen := len(s1)
	if len(s2) > maxLen {
		maxLen = len(s2)
	}
	if maxLen == 0 {
		return 100
	}
	d := matchr.Levenshtein(s1, s2)
	return math.Round(100 * (1 - float64(d)/float64(maxLen)))
}
