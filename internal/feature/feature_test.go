package feature_test

import (
	"errors"
	"math"
	"testing"

	"github.com/transcriptlab/editcheck/internal/feature"
	"github.com/transcriptlab/editcheck/pkg/lexicon"
)

const eps = 1e-4

// twoWordLexicon maps "is" to index 0 with embedding (1,0) and "fine" to
// index 1 with embedding (0,1). Orthogonal vectors make transport costs
// exactly 0 or 1, which keeps expected values computable by hand.
func twoWordLexicon() *lexicon.Static {
	lex := lexicon.NewStatic(2)
	lex.Add("is", []float64{1, 0})
	lex.Add("fine", []float64{0, 1})
	return lex
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestIndexRatio(t *testing.T) {
	t.Parallel()
	e := feature.New(twoWordLexicon())

	tests := []struct {
		name   string
		s1, s2 string
		want   float64
	}{
		{"equal index sums", "fine", "is fine", 0},
		{"shift to rarer", "is", "fine", 1 / (1 + eps)},
		{"shift to common", "fine", "is", -1 / (1 + eps)},
		{"identical strings", "is fine", "is fine", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := e.IndexRatio(tc.s1, tc.s2)
			if err != nil {
				t.Fatalf("IndexRatio(%q, %q) error: %v", tc.s1, tc.s2, err)
			}
			if !almostEqual(got, tc.want) {
				t.Errorf("IndexRatio(%q, %q) = %v, want %v", tc.s1, tc.s2, got, tc.want)
			}
		})
	}
}

func TestIndexRatio_Antisymmetric(t *testing.T) {
	t.Parallel()
	e := feature.New(twoWordLexicon())

	ab, err := e.IndexRatio("is", "fine fine")
	if err != nil {
		t.Fatalf("IndexRatio error: %v", err)
	}
	ba, err := e.IndexRatio("fine fine", "is")
	if err != nil {
		t.Fatalf("IndexRatio error: %v", err)
	}
	if !almostEqual(ab, -ba) {
		t.Errorf("IndexRatio not antisymmetric: %v vs %v", ab, ba)
	}
}

func TestIndexRatio_MissingWord(t *testing.T) {
	t.Parallel()
	e := feature.New(twoWordLexicon())

	_, err := e.IndexRatio("fine", "is wrong")
	if !errors.Is(err, feature.ErrMissingWord) {
		t.Fatalf("IndexRatio with unknown word: got %v, want ErrMissingWord", err)
	}
}

func TestStringRatio(t *testing.T) {
	t.Parallel()
	e := feature.New(twoWordLexicon())

	tests := []struct {
		name   string
		s1, s2 string
		want   float64
	}{
		{"identical", "is fine", "is fine", 100},
		{"both empty", "", "", 100},
		{"one empty", "fine", "", 0},
		// distance 3 over max length 7 rounds to 57
		{"partial overlap", "fine", "is fine", 57},
		// distance 3 over max length 4 rounds to 25
		{"no shared words", "is", "fine", 25},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := e.StringRatio(tc.s1, tc.s2); got != tc.want {
				t.Errorf("StringRatio(%q, %q) = %v, want %v", tc.s1, tc.s2, got, tc.want)
			}
		})
	}
}

func TestStringRatio_Symmetric(t *testing.T) {
	t.Parallel()
	e := feature.New(twoWordLexicon())

	if ab, ba := e.StringRatio("fine", "is fine"), e.StringRatio("is fine", "fine"); ab != ba {
		t.Errorf("StringRatio not symmetric: %v vs %v", ab, ba)
	}
}

func TestWMD_SelfDistanceZero(t *testing.T) {
	t.Parallel()
	e := feature.New(twoWordLexicon())

	got, err := e.WMD("is fine", "is fine")
	if err != nil {
		t.Fatalf("WMD error: %v", err)
	}
	if !almostEqual(got, 0) {
		t.Errorf("WMD of identical strings = %v, want 0", got)
	}
}

// Repeating a word changes the mass distribution, not the support, and the
// single shared word has zero self-distance, so the value stays ~0.
func TestWMD_RepeatedWord(t *testing.T) {
	t.Parallel()
	e := feature.New(twoWordLexicon())

	got, err := e.WMD("fine fine", "fine")
	if err != nil {
		t.Fatalf("WMD error: %v", err)
	}
	if !almostEqual(got, 0) {
		t.Errorf("WMD(%q, %q) = %v, want 0", "fine fine", "fine", got)
	}
}

// With orthogonal embeddings the transport cost between the two words is
// exactly 1, so the distance equals the mass actually moved: 1/(1+ε).
func TestWMD_OrthogonalWords(t *testing.T) {
	t.Parallel()
	e := feature.New(twoWordLexicon())

	got, err := e.WMD("is", "fine")
	if err != nil {
		t.Fatalf("WMD error: %v", err)
	}
	if want := 1 / (1 + eps); !almostEqual(got, want) {
		t.Errorf("WMD(%q, %q) = %v, want %v", "is", "fine", got, want)
	}
}

// s1 = "fine" has all its mass on one word; s2 = "is fine" splits its mass.
// The overlap moves for free, 1/((1+ε)(2+ε)) crosses at cost 1, and the
// ε/((1+ε)(2+ε)) mass difference is charged at the maximum distance 1; the
// sum collapses to 1/(2+ε).
func TestWMD_PartialOverlap(t *testing.T) {
	t.Parallel()
	e := feature.New(twoWordLexicon())

	got, err := e.WMD("fine", "is fine")
	if err != nil {
		t.Fatalf("WMD error: %v", err)
	}
	if want := 1 / (2 + eps); !almostEqual(got, want) {
		t.Errorf("WMD(%q, %q) = %v, want %v", "fine", "is fine", got, want)
	}
}

// Strings of different length carry different total mass after the ε
// normalization; the unmatched remainder is charged at the largest pairwise
// distance. For "is" vs "is is fine" the transport value 1/(1+ε) − 2/(3+ε)
// plus the penalty 2ε/((1+ε)(3+ε)) collapses to 1/(3+ε).
func TestWMD_UnmatchedMassPenalty(t *testing.T) {
	t.Parallel()
	e := feature.New(twoWordLexicon())

	got, err := e.WMD("is", "is is fine")
	if err != nil {
		t.Fatalf("WMD error: %v", err)
	}
	if want := 1 / (3 + eps); !almostEqual(got, want) {
		t.Errorf("WMD(%q, %q) = %v, want %v", "is", "is is fine", got, want)
	}
}

// Equal-length strings with uneven token repeats land the initial-basis walk
// on a stray ulp of unplaced mass; the solve must still succeed. One of the
// four "fine" masses crosses to "is" at cost 1.
func TestWMD_UnevenRepeats(t *testing.T) {
	t.Parallel()
	e := feature.New(twoWordLexicon())

	got, err := e.WMD("fine fine fine fine", "fine fine fine is")
	if err != nil {
		t.Fatalf("WMD error: %v", err)
	}
	if want := 1 / (4 + eps); !almostEqual(got, want) {
		t.Errorf("WMD(%q, %q) = %v, want %v", "fine fine fine fine", "fine fine fine is", got, want)
	}
}

func TestWMD_NonNegative(t *testing.T) {
	t.Parallel()
	e := feature.New(twoWordLexicon())

	pairs := [][2]string{
		{"is", "fine"},
		{"is is fine", "fine"},
		{"fine is", "is fine"},
	}
	for _, p := range pairs {
		got, err := e.WMD(p[0], p[1])
		if err != nil {
			t.Fatalf("WMD(%q, %q) error: %v", p[0], p[1], err)
		}
		if got < 0 {
			t.Errorf("WMD(%q, %q) = %v, want >= 0", p[0], p[1], got)
		}
	}
}

func TestWMD_MissingWord(t *testing.T) {
	t.Parallel()
	e := feature.New(twoWordLexicon())

	_, err := e.WMD("fine", "is wrong")
	if !errors.Is(err, feature.ErrMissingWord) {
		t.Fatalf("WMD with unknown word: got %v, want ErrMissingWord", err)
	}
}

func TestFeatures(t *testing.T) {
	t.Parallel()
	e := feature.New(twoWordLexicon())

	vec, err := e.Features("fine", "is fine")
	if err != nil {
		t.Fatalf("Features error: %v", err)
	}
	if want := 1 / (2 + eps); !almostEqual(vec.WMD, want) {
		t.Errorf("Features WMD = %v, want %v", vec.WMD, want)
	}
	if !almostEqual(vec.IndexRatio, 0) {
		t.Errorf("Features IndexRatio = %v, want 0", vec.IndexRatio)
	}
	if vec.StringRatio != 57 {
		t.Errorf("Features StringRatio = %v, want 57", vec.StringRatio)
	}

	triple := vec.Triple()
	if triple[0] != vec.WMD || triple[1] != vec.IndexRatio || triple[2] != vec.StringRatio {
		t.Errorf("Triple() = %v, want [WMD IndexRatio StringRatio] order", triple)
	}
}

func TestFeatures_MissingWordFails(t *testing.T) {
	t.Parallel()
	e := feature.New(twoWordLexicon())

	if _, err := e.Features("fine", "utterly wrong"); !errors.Is(err, feature.ErrMissingWord) {
		t.Fatalf("Features with unknown words: got %v, want ErrMissingWord", err)
	}
}

func TestWithEpsilon(t *testing.T) {
	t.Parallel()
	e := feature.New(twoWordLexicon(), feature.WithEpsilon(1))

	// With ε = 1 the index-ratio denominator is sum1 + sum2 + 1.
	got, err := e.IndexRatio("is", "fine")
	if err != nil {
		t.Fatalf("IndexRatio error: %v", err)
	}
	if want := 1.0 / 2.0; !almostEqual(got, want) {
		t.Errorf("IndexRatio with epsilon 1 = %v, want %v", got, want)
	}
}
