// Package lexicon defines the read-only word table shared by the normalizer and
// the feature engine: a mapping from lowercase word to its vocabulary index and
// from index to a fixed-dimension embedding vector.
//
// The index doubles as a rarity proxy — the table is ordered by corpus
// frequency, so a lower index means a more common word. The embedding table is
// addressed only by index and is never mutated after load.
//
// Implementations live in subpackages:
//
//   - [github.com/transcriptlab/editcheck/pkg/lexicon/file] — the frozen
//     on-disk table (word list + raw float64 vector file).
//   - [github.com/transcriptlab/editcheck/pkg/lexicon/postgres] — a
//     Postgres/pgvector-backed table.
//
// [Static] is an in-memory implementation for tests and small vocabularies.
//
// Every implementation must be safe for concurrent use after construction.
package lexicon

import "fmt"

// Lexicon is the read-only vocabulary and embedding table.
type Lexicon interface {
	// Lookup returns the vocabulary index of word and whether the word is
	// present. Words are matched exactly; callers are expected to lowercase.
	Lookup(word string) (int, bool)

	// Vector returns the embedding vector for a vocabulary index previously
	// obtained from Lookup. The returned slice must not be modified.
	Vector(index int) ([]float64, error)

	// Dimensions returns the embedding dimension of this table.
	Dimensions() int
}

// Compile-time assertion that Static satisfies the Lexicon interface.
var _ Lexicon = (*Static)(nil)

// Static is an in-memory [Lexicon]. Words are assigned consecutive indices in
// insertion order, mirroring the frequency ordering of the frozen table when
// callers add words from most to least common.
//
// Static is read-only after the Add calls complete; it is then safe for
// concurrent use.
type Static struct {
	dims    int
	index   map[string]int
	vectors [][]float64
}

// NewStatic returns an empty [Static] table with the given embedding dimension.
func NewStatic(dims int) *Static {
	return &Static{
		dims:  dims,
		index: make(map[string]int),
	}
}

// Add inserts word with the given embedding vector and returns its assigned
// index. Adding a word twice overwrites its vector but keeps the original
// index. The vector length must equal the table dimension.
func (s *Static) Add(word string, vec []float64) int {
	if len(vec) != s.dims {
		panic(fmt.Sprintf("lexicon: vector for %q has %d dimensions, table has %d", word, len(vec), s.dims))
	}
	if i, ok := s.index[word]; ok {
		s.vectors[i] = vec
		return i
	}
	i := len(s.vectors)
	s.index[word] = i
	s.vectors = append(s.vectors, vec)
	return i
}

// Lookup implements [Lexicon.Lookup].
func (s *Static) Lookup(word string) (int, bool) {
	i, ok := s.index[word]
	return i, ok
}

// Vector implements [Lexicon.Vector].
func (s *Static) Vector(index int) ([]float64, error) {
	if index < 0 || index >= len(s.vectors) {
		return nil, fmt.Errorf("lexicon: index %d out of range [0, %d)", index, len(s.vectors))
	}
	return s.vectors[index], nil
}

// Dimensions implements [Lexicon.Dimensions].
func (s *Static) Dimensions() int { return s.dims }

// Len returns the number of words in the table.
func (s *Static) Len() int { return len(s.vectors) }
