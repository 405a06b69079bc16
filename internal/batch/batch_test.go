package batch_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/transcriptlab/editcheck/internal/batch"
	"github.com/transcriptlab/editcheck/internal/feature"
	"github.com/transcriptlab/editcheck/internal/normalize"
	"github.com/transcriptlab/editcheck/internal/review"
	"github.com/transcriptlab/editcheck/pkg/classifier/mock"
	"github.com/transcriptlab/editcheck/pkg/lexicon"
)

func newReviewer(model *mock.Classifier) *review.Reviewer {
	lex := lexicon.NewStatic(2)
	lex.Add("is", []float64{1, 0})
	lex.Add("fine", []float64{0, 1})
	return review.New(normalize.New(lex), feature.New(lex), model)
}

func TestReadPairs(t *testing.T) {
	t.Parallel()
	in := "original one\tcorrected one\n\noriginal two\tcorrected two\n   \nthird\t\n"

	pairs, err := batch.ReadPairs(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadPairs error: %v", err)
	}
	want := []batch.Pair{
		{Original: "original one", Corrected: "corrected one"},
		{Original: "original two", Corrected: "corrected two"},
		{Original: "third", Corrected: ""},
	}
	if len(pairs) != len(want) {
		t.Fatalf("ReadPairs returned %d pairs, want %d", len(pairs), len(want))
	}
	for i := range want {
		if pairs[i] != want[i] {
			t.Errorf("pair %d = %+v, want %+v", i, pairs[i], want[i])
		}
	}
}

func TestReadPairs_ColumnCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		line string
	}{
		{"too many columns", "a\tb\tc\n", "line 1"},
		{"too few columns", "a\tb\nno tab here\n", "line 2"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := batch.ReadPairs(strings.NewReader(tc.in))
			if err == nil {
				t.Fatal("ReadPairs returned nil error, want column count failure")
			}
			if !strings.Contains(err.Error(), tc.line) {
				t.Errorf("error should report %s, got: %v", tc.line, err)
			}
		})
	}
}

func TestReadPairs_Empty(t *testing.T) {
	t.Parallel()
	pairs, err := batch.ReadPairs(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ReadPairs error: %v", err)
	}
	if len(pairs) != 0 {
		t.Errorf("ReadPairs of empty input returned %d pairs, want 0", len(pairs))
	}
}

func TestFormatLabels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		labels []string
		want   string
	}{
		{"several", []string{"1", "2", "1"}, "1,2,1"},
		{"single", []string{"2"}, "2"},
		{"none", nil, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := batch.FormatLabels(tc.labels); got != tc.want {
				t.Errorf("FormatLabels(%v) = %q, want %q", tc.labels, got, tc.want)
			}
		})
	}
}

// Labels must line up with input rows no matter how many workers run or in
// which order they finish. The pairs alternate between the two degenerate
// branches so each row has a known label independent of the model.
func TestRunner_PreservesOrder(t *testing.T) {
	t.Parallel()
	r := batch.NewRunner(newReviewer(&mock.Classifier{}), batch.WithWorkers(8))

	var pairs []batch.Pair
	var want []string
	for i := 0; i < 50; i++ {
		if i%2 == 0 {
			pairs = append(pairs, batch.Pair{Original: "fine", Corrected: ""})
			want = append(want, review.LabelMinor)
		} else {
			pairs = append(pairs, batch.Pair{Original: "", Corrected: "fine"})
			want = append(want, review.LabelMajor)
		}
	}

	labels, err := r.Run(context.Background(), pairs)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(labels) != len(want) {
		t.Fatalf("Run returned %d labels, want %d", len(labels), len(want))
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("label %d = %q, want %q", i, labels[i], want[i])
		}
	}
}

func TestRunner_Sequential(t *testing.T) {
	t.Parallel()
	model := &mock.Classifier{Label: "2"}
	r := batch.NewRunner(newReviewer(model))

	labels, err := r.Run(context.Background(), []batch.Pair{
		{Original: "fine", Corrected: "is fine"},
		{Original: "is fine", Corrected: ""},
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if got, want := batch.FormatLabels(labels), "2,1"; got != want {
		t.Errorf("Run labels = %q, want %q", got, want)
	}
}

func TestRunner_RowError(t *testing.T) {
	t.Parallel()
	sentinel := errors.New("model exploded")
	r := batch.NewRunner(newReviewer(&mock.Classifier{Err: sentinel}))

	_, err := r.Run(context.Background(), []batch.Pair{
		{Original: "fine", Corrected: ""}, // degenerate, never reaches the model
		{Original: "fine", Corrected: "is fine"},
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("Run error = %v, want wrapped sentinel", err)
	}
	if !strings.Contains(err.Error(), "row 2") {
		t.Errorf("error should name the failing row, got: %v", err)
	}
}

func TestRunner_EmptyBatch(t *testing.T) {
	t.Parallel()
	r := batch.NewRunner(newReviewer(&mock.Classifier{}))

	labels, err := r.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(labels) != 0 {
		t.Errorf("Run of empty batch returned %d labels, want 0", len(labels))
	}
}
