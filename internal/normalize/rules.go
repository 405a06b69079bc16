package normalize

import (
	"regexp"
	"strings"
)

// fillers are removed as whole words/phrases after contraction expansion.
// Entries are regular-expression fragments; each is wrapped in \b…\b when the
// combined pattern is built. The list is frozen — it was tuned against the
// production correction corpus and must not be reordered or "cleaned up".
var fillers = []string{
	"all right",
	"alright",
	"m+ hm+",
	"okay",
	"right",
	"uh huh",
	"yeah",
	"yes",
	"yup",

	"aha",
	"oh+",
	"hm+",
	"mm+",
	"um+",

	"actually",
	"basically",
	"i guess",
	"i mean",
	"i think",
	"kinda",
	"kind of",
	"like",
	"really",
	"sorta",
	"sort of",
	"you know",

	"a",
	"an",
	"the",

	"and",
	"in",
	"it",
	"of",
	"on",
	"or",
	"so",
	"that",
	"to",

	"am",

	"excuse me",
	"o'clock",
	"so to speak",
	"that's good",

	// speaker tracking tags
	`s\d+`,
}

// metas are bracketed transcription annotations for non-speech audio events.
// Unlike fillers they are matched with their [brackets] and removed entirely.
var metas = []string{
	"applause",
	"automated voice",
	"background conversation",
	"chuckle",
	"end paren",
	"foreign language",
	"laughter",
	"music",
	"noise",
	"overlapping conversation",
	"pause",
	"start paren",
	"video playback",
	"vocalization",
}

// rule is a single rewrite step: pattern → replacement, applied with
// ReplaceAllString. Replacement may reference capture groups (${1}).
type rule struct {
	re   *regexp.Regexp
	repl string
}

// cascade is the ordered rewrite sequence applied between lowercasing and
// number expansion. The order is load-bearing: contraction expansion must run
// before filler removal (so expanded words like "not" survive the filler
// pass), and ordinal rewriting must run before digit expansion.
var cascade = buildCascade()

func buildCascade() []rule {
	mk := func(pattern, repl string) rule {
		return rule{re: regexp.MustCompile(pattern), repl: repl}
	}

	rules := []rule{
		// bracketed H:MM:SS.D timestamps
		mk(`\[*\d:\d+:\d+.\d\]*`, ""),

		// dashes and colons become token boundaries
		mk(`-|:`, " "),

		// bracketed meta annotations
		mk(`\[`+strings.Join(metas, `\]|\[`)+`\]`, ""),

		// keep only letters, digits, spaces, and single quotes
		mk(`[^a-z0-9 ']`, ""),

		// casual forms
		mk(`'til{1,2}`, "until"),
		mk(`'em`, "them"),
		mk(`'cause`, "because"),
		mk(`(d|g)oin'`, "${1}oing "),

		// contracted forms; the n't rule must follow the irregular ones
		mk(`'m`, " am"),
		mk(`'ve`, " have"),
		mk(`'ll`, " will"),
		mk(`can't`, "cannot"),
		mk(`won't`, "will not"),
		mk(`ain't`, "are not"),
		mk(`n't`, " not"),
		mk(`'s\b`, ""),
		mk(`'d\b`, ""),

		// ordinals; "21st" becomes "20 first" — a quirk of the frozen rule
		// set, preserved verbatim
		mk(`(\d*)(1st)`, "${1}0 first"),
		mk(`(\d*)(2nd)`, "${1}0 second"),
		mk(`(\d*)(3rd)`, "${1}0 third"),
		mk(`(\d+)(th)`, "${1}"),

		// fillers, matched as whole words/phrases
		mk(`\b`+strings.Join(fillers, `\b|\b`)+`\b`, ""),
	}

	return rules
}
