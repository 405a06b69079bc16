package lexicon_test

import (
	"testing"

	"github.com/transcriptlab/editcheck/pkg/lexicon"
)

func TestStatic(t *testing.T) {
	t.Parallel()
	lex := lexicon.NewStatic(2)

	if i := lex.Add("the", []float64{1, 0}); i != 0 {
		t.Errorf("first Add index = %d, want 0", i)
	}
	if i := lex.Add("cat", []float64{0, 1}); i != 1 {
		t.Errorf("second Add index = %d, want 1", i)
	}

	if lex.Len() != 2 {
		t.Errorf("Len = %d, want 2", lex.Len())
	}
	if lex.Dimensions() != 2 {
		t.Errorf("Dimensions = %d, want 2", lex.Dimensions())
	}

	i, ok := lex.Lookup("cat")
	if !ok || i != 1 {
		t.Errorf("Lookup(cat) = %d, %v; want 1, true", i, ok)
	}
	if _, ok := lex.Lookup("dog"); ok {
		t.Error("Lookup(dog) found a word never added")
	}

	vec, err := lex.Vector(1)
	if err != nil {
		t.Fatalf("Vector error: %v", err)
	}
	if vec[0] != 0 || vec[1] != 1 {
		t.Errorf("Vector(1) = %v, want [0 1]", vec)
	}
}

func TestStatic_ReaddKeepsIndex(t *testing.T) {
	t.Parallel()
	lex := lexicon.NewStatic(1)
	lex.Add("the", []float64{1})
	lex.Add("cat", []float64{2})

	if i := lex.Add("the", []float64{9}); i != 0 {
		t.Errorf("re-Add index = %d, want the original 0", i)
	}
	if lex.Len() != 2 {
		t.Errorf("Len after re-Add = %d, want 2", lex.Len())
	}
	vec, err := lex.Vector(0)
	if err != nil {
		t.Fatalf("Vector error: %v", err)
	}
	if vec[0] != 9 {
		t.Errorf("re-Add should replace the vector: got %v, want [9]", vec)
	}
}

func TestStatic_VectorOutOfRange(t *testing.T) {
	t.Parallel()
	lex := lexicon.NewStatic(1)
	lex.Add("the", []float64{1})

	for _, idx := range []int{-1, 1, 100} {
		if _, err := lex.Vector(idx); err == nil {
			t.Errorf("Vector(%d) returned nil error, want out of range", idx)
		}
	}
}

func TestStatic_DimensionMismatchPanics(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Error("Add with wrong dimensions should panic")
		}
	}()
	lexicon.NewStatic(2).Add("the", []float64{1})
}
