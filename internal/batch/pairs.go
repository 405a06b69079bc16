// Package batch reads tab-separated correction pairs and classifies them
// concurrently, preserving input order in the output.
package batch

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Pair is one comparison unit: the transcript text before and after a
// correction.
type Pair struct {
	Original  string
	Corrected string
}

// ReadPairs parses tab-separated rows of exactly two columns from r. Blank
// lines are skipped; a row with any other column count is reported with its
// 1-based line number.
func ReadPairs(r io.Reader) ([]Pair, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var pairs []Pair
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		cols := strings.Split(text, "\t")
		if len(cols) != 2 {
			return nil, fmt.Errorf("batch: line %d: expected 2 tab-separated columns, got %d", line, len(cols))
		}
		pairs = append(pairs, Pair{Original: cols[0], Corrected: cols[1]})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("batch: read pairs: %w", err)
	}
	return pairs, nil
}

// FormatLabels joins labels with commas, the reference output format.
func FormatLabels(labels []string) string {
	return strings.Join(labels, ",")
}
