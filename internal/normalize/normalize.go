// Package normalize implements the deterministic text-normalization cascade
// applied to both sides of a transcript-correction pair before feature
// generation.
//
// The cascade is an ordered, frozen rule set:
//
//  1. Lowercase the whole string.
//  2. Remove bracketed H:MM:SS.D timestamps.
//  3. Replace dashes and colons with spaces.
//  4. Remove bracketed meta annotations ("[laughter]", "[pause]", …).
//  5. Strip everything that is not a lowercase letter, digit, space, or
//     apostrophe.
//  6. Expand casual and contracted forms ("can't" → "cannot", "'ve" → " have");
//     possessive 's and contracted 'd are dropped outright.
//  7. Rewrite ordinal suffixes ("21st" → "20 first", "5th" → "5").
//  8. Remove filler words/phrases and speaker tags.
//  9. Spell out remaining digit runs.
//  10. Drop every token absent from the vocabulary and rejoin on single spaces.
//
// Rule order is significant and reproduced exactly; the output is either a
// space-joined sequence of in-vocabulary lowercase tokens or the empty string.
// Normalization never fails — any input maps to some (possibly empty) output.
package normalize

import (
	"strings"

	"github.com/transcriptlab/editcheck/pkg/lexicon"
)

// Option is a functional option for configuring a [Normalizer].
type Option func(*Normalizer)

// WithSpeller overrides the number-to-text collaborator used for digit-run
// expansion. The default spells numbers in English via num2words.
func WithSpeller(s Speller) Option {
	return func(n *Normalizer) {
		n.speller = s
	}
}

// Normalizer applies the full normalization cascade. It is read-only after
// construction and safe for concurrent use.
type Normalizer struct {
	lex     lexicon.Lexicon
	speller Speller
}

// New returns a [Normalizer] that filters against lex.
func New(lex lexicon.Lexicon, opts ...Option) *Normalizer {
	n := &Normalizer{
		lex:     lex,
		speller: defaultSpeller,
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Normalize runs the cascade over raw and returns the cleaned string. The
// result may be empty when every token was filtered away; that is a valid
// outcome, not an error.
func (n *Normalizer) Normalize(raw string) string {
	s := strings.ToLower(raw)

	for _, r := range cascade {
		s = r.re.ReplaceAllString(s, r.repl)
	}

	s = expandNumbers(s, n.speller)

	return n.filterVocabulary(s)
}

// filterVocabulary keeps only whitespace-separated tokens present in the
// lexicon and rejoins them with single spaces.
func (n *Normalizer) filterVocabulary(s string) string {
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, w := range fields {
		if _, ok := n.lex.Lookup(w); ok {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}
