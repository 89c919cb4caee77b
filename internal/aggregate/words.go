package aggregate

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// nonWord matches anything that is not a letter, digit, underscore or space.
var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// DefaultMinRunes is the shortest entry kept by WordFrequencies.
const DefaultMinRunes = 2

// WordCount is one word-cloud entry.
type WordCount struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

// CleanText strips punctuation and surrounding whitespace from a free-text
// answer.
func CleanText(s string) string {
	return strings.TrimSpace(nonWord.ReplaceAllString(s, ""))
}

// WordFrequencies counts identical cleaned answers. Entries shorter than
// minRunes are dropped; minRunes <= 0 selects DefaultMinRunes. The result is
// ordered by count, then text.
func WordFrequencies(texts []string, minRunes int) []WordCount {
	if minRunes <= 0 {
		minRunes = DefaultMinRunes
	}
	g := newGrouping()
	counts := map[string]int{}
	for _, t := range texts {
		w := CleanText(t)
		if utf8.RuneCountInString(w) < minRunes {
			continue
		}
		g.touch(w)
		counts[w]++
	}
	keys := g.order(nil)
	out := make([]WordCount, len(keys))
	for i, k := range keys {
		out[i] = WordCount{Text: k, Count: counts[k]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
