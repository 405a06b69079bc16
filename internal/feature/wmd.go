package feature

import (
	"fmt"
	"math"
	"regexp"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// tokenPattern splits a normalized string into word tokens for the WMD
// bag-of-words; apostrophes are allowed inside a token.
var tokenPattern = regexp.MustCompile(`[\w']+`)

// WMD computes the Word Mover's Distance between two normalized strings:
//
//  1. Build the shared vocabulary of unique tokens appearing in either string.
//  2. Count token occurrences per string and normalize each count vector to a
//     mass distribution with a (sum+ε) denominator, so shorter strings are
//     not spuriously favoured.
//  3. Build the symmetric pairwise cost matrix of embedding cosine distances.
//  4. Solve the optimal-transport problem over the two distributions.
//  5. Charge the unmatched mass (the two ε-normalized distributions rarely
//     sum to the same total) at the largest pairwise distance.
func (e *Engine) WMD(s1, s2 string) (float64, error) {
	t1 := tokenPattern.FindAllString(s1, -1)
	t2 := tokenPattern.FindAllString(s2, -1)

	shared := sharedVocabulary(t1, t2)
	if len(shared) == 0 {
		return 0, nil
	}

	v1 := e.massDistribution(t1, shared)
	v2 := e.massDistribution(t2, shared)

	cost, err := e.costMatrix(shared)
	if err != nil {
		return 0, err
	}

	d, err := e.solver.Solve(v1, v2, cost)
	if err != nil {
		return 0, fmt.Errorf("feature: wmd transport solve: %w", err)
	}

	// The solver moves only min(Σv1, Σv2) mass; the remainder is penalised
	// at the maximum pairwise distance, the frozen model's training-time
	// convention for unbalanced distributions.
	if diff := math.Abs(floats.Sum(v1) - floats.Sum(v2)); diff > 0 {
		d += mat.Max(cost) * diff
	}
	return d, nil
}

// sharedVocabulary returns the sorted unique tokens of both strings. Sorting
// makes the matrix layout deterministic; the transport value itself is
// order-invariant.
func sharedVocabulary(t1, t2 []string) []string {
	seen := make(map[string]struct{}, len(t1)+len(t2))
	for _, t := range t1 {
		seen[t] = struct{}{}
	}
	for _, t := range t2 {
		seen[t] = struct{}{}
	}
	vocab := make([]string, 0, len(seen))
	for t := range seen {
		vocab = append(vocab, t)
	}
	sort.Strings(vocab)
	return vocab
}

// massDistribution counts tokens over the shared vocabulary and normalizes
// the counts to sum to (almost) one.
func (e *Engine) massDistribution(tokens []string, vocab []string) []float64 {
	pos := make(map[string]int, len(vocab))
	for i, w := range vocab {
		pos[w] = i
	}
	v := make([]float64, len(vocab))
	for _, t := range tokens {
		v[pos[t]]++
	}
	sum := floats.Sum(v)
	denom := sum + e.eps
	for i := range v {
		v[i] /= denom
	}
	return v
}

// costMatrix builds the symmetric pairwise cosine-distance matrix over the
// shared vocabulary's embedding vectors. The diagonal is zero.
func (e *Engine) costMatrix(vocab []string) (*mat.Dense, error) {
	vectors := make([][]float64, len(vocab))
	for i, w := range vocab {
		idx, ok := e.lex.Lookup(w)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingWord, w)
		}
		vec, err := e.lex.Vector(idx)
		if err != nil {
			return nil, fmt.Errorf("feature: embedding for %q: %w", w, err)
		}
		vectors[i] = vec
	}

	k := len(vocab)
	cost := mat.NewDense(k, k, nil)
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			d := 1 - cosineSimilarity(vectors[i], vectors[j])
			cost.Set(i, j, d)
			cost.Set(j, i, d)
		}
	}
	return cost, nil
}

// cosineSimilarity returns the cosine of the angle between a and b, or 0 when
// either vector has zero norm.
func cosineSimilarity(a, b []float64) float64 {
	dot := floats.Dot(a, b)
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (na * nb)
}
