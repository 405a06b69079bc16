package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/divan/num2words"
)

// Speller converts a non-negative integer into its spelled-out English words
// (e.g. 42 → "forty two"). The normalizer treats it as a pure collaborator.
type Speller func(int) string

var digitRun = regexp.MustCompile(`\d+`)

// expandNumbers replaces every maximal digit run in s with its spelled-out
// form, padded with a leading and trailing space so expansions never merge
// with adjacent letters. Runs are processed in a single left-to-right pass;
// repeated values are expanded at every occurrence. Runs too large for int
// are left untouched and fall through to the vocabulary filter.
func expandNumbers(s string, speller Speller) string {
	return digitRun.ReplaceAllStringFunc(s, func(run string) string {
		n, err := strconv.Atoi(run)
		if err != nil || n < 0 {
			return run
		}
		return " " + speller(n) + " "
	})
}

// defaultSpeller wraps num2words. The library hyphenates compound numbers
// ("forty-two"), but dashes were already rewritten to spaces earlier in the
// cascade, so the expansion is folded into the same token alphabet here.
func defaultSpeller(n int) string {
	return strings.ToLower(strings.ReplaceAll(num2words.Convert(n), "-", " "))
}
