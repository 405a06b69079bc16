// Package file implements [lexicon.Lexicon] on top of the frozen on-disk word
// table: a vocabulary file with one word per line (line number = vocabulary
// index) and a raw data file holding one little-endian float64 vector per word,
// laid out contiguously in index order.
//
// The vocabulary is loaded into memory once at [Open]; vectors are read on
// demand with ReadAt so the multi-gigabyte data file is never loaded wholesale.
package file

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/transcriptlab/editcheck/pkg/lexicon"
)

// Compile-time assertion that Table satisfies the Lexicon interface.
var _ lexicon.Lexicon = (*Table)(nil)

// Table is the on-disk [lexicon.Lexicon]. All methods are safe for concurrent
// use; vector reads use positional I/O and share the single file handle.
type Table struct {
	data  *os.File
	dims  int
	index map[string]int
	count int
}

// Open loads the vocabulary at vocabPath and opens the vector data file at
// dataPath. dims is the embedding dimension (300 for the frozen table). The
// data file size must be exactly len(vocab) * dims * 8 bytes.
func Open(vocabPath, dataPath string, dims int) (*Table, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("lexicon file: dimension %d must be positive", dims)
	}

	vf, err := os.Open(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("lexicon file: open vocabulary: %w", err)
	}
	defer vf.Close()

	index := make(map[string]int)
	sc := bufio.NewScanner(vf)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	i := 0
	for sc.Scan() {
		word := strings.TrimSpace(sc.Text())
		// Duplicate lines keep the first (lowest) index, matching the
		// frequency ordering of the table.
		if _, ok := index[word]; !ok {
			index[word] = i
		}
		i++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("lexicon file: read vocabulary: %w", err)
	}

	df, err := os.Open(dataPath)
	if err != nil {
		return nil, fmt.Errorf("lexicon file: open vectors: %w", err)
	}
	info, err := df.Stat()
	if err != nil {
		df.Close()
		return nil, fmt.Errorf("lexicon file: stat vectors: %w", err)
	}
	want := int64(i) * int64(dims) * 8
	if info.Size() != want {
		df.Close()
		return nil, fmt.Errorf("lexicon file: vector file is %d bytes, want %d for %d words of %d dimensions",
			info.Size(), want, i, dims)
	}

	return &Table{data: df, dims: dims, index: index, count: i}, nil
}

// Lookup implements [lexicon.Lexicon.Lookup].
func (t *Table) Lookup(word string) (int, bool) {
	i, ok := t.index[word]
	return i, ok
}

// Vector implements [lexicon.Lexicon.Vector]. Each call performs one
// positional read of dims*8 bytes from the data file.
func (t *Table) Vector(index int) ([]float64, error) {
	if index < 0 || index >= t.count {
		return nil, fmt.Errorf("lexicon file: index %d out of range [0, %d)", index, t.count)
	}
	buf := make([]byte, t.dims*8)
	off := int64(index) * int64(t.dims) * 8
	if _, err := t.data.ReadAt(buf, off); err != nil {
		return nil, fmt.Errorf("lexicon file: read vector %d: %w", index, err)
	}
	vec := make([]float64, t.dims)
	for i := range vec {
		vec[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return vec, nil
}

// Dimensions implements [lexicon.Lexicon.Dimensions].
func (t *Table) Dimensions() int { return t.dims }

// Len returns the number of words in the table.
func (t *Table) Len() int { return t.count }

// Close releases the underlying data file handle.
func (t *Table) Close() error {
	return t.data.Close()
}
