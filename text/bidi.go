package text

import (
	"unicode"

	"github.com/go-text/typesetting/language"
	"golang.org/x/text/unicode/bidi"
)

// run is a maximal span of runes sharing direction and script, in rune
// indices with end exclusive.
type run struct {
	start, end int
	rtl        bool
	script     language.Script
	letters    bool
}

// splitRuns resolves embedding levels and splits runes into shaping runs in
// logical order. Levels are collapsed to even (left-to-right) and odd
// (right-to-left), which covers mixed LTR/RTL lines without nested
// embeddings. rtl reports the paragraph direction, taken from the first
// letter.
func splitRuns(s string, runes []rune) (runs []run, rtl bool) {
	levels := runeLevels(s, len(runes))

	firstLetter := true
	script := language.Latin
	for i, r := range runes {
		letter := unicode.IsLetter(r)
		if letter {
			script = language.LookupScript(r)
			if firstLetter {
				rtl = levels[i]
				firstLetter = false
			}
		}
		if n := len(runs); n > 0 && runs[n-1].rtl == levels[i] {
			last := &runs[n-1]
			switch {
			case !letter || last.script == script:
			case !last.letters:
				// A run of punctuation takes the script of its first letter.
				last.script = script
			default:
				runs = append(runs, run{start: i, end: i + 1, rtl: levels[i], script: script, letters: true})
				continue
			}
			last.end = i + 1
			last.letters = last.letters || letter
			continue
		}
		runs = append(runs, run{start: i, end: i + 1, rtl: levels[i], script: script, letters: letter})
	}
	return runs, rtl
}

// runeLevels reports, per rune, whether it resolves to a right-to-left level.
func runeLevels(s string, n int) []bool {
	levels := make([]bool, n)
	var p bidi.Paragraph
	if _, err := p.SetString(s, bidi.DefaultDirection(bidi.Neutral)); err != nil {
		return levels
	}
	ordering, err := p.Order()
	if err != nil {
		return levels
	}
	for i := range ordering.NumRuns() {
		r := ordering.Run(i)
		if r.Direction() != bidi.RightToLeft {
			continue
		}
		start, end := r.Pos()
		for j := max(start, 0); j <= end && j < n; j++ {
			levels[j] = true
		}
	}
	return levels
}
