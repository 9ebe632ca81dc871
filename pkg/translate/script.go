package translate

import (
	"strings"
	"unicode"
)

// Japanese covers the scripts whose presence in output means it was not fully translated:
// Hiragana, Katakana (with the prolonged sound mark), CJK ideographs with extension A,
// compatibility ideographs and half-width Katakana.
var Japanese = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x3040, Hi: 0x30FF, Stride: 1},
		{Lo: 0x3400, Hi: 0x4DBF, Stride: 1},
		{Lo: 0x4E00, Hi: 0x9FFF, Stride: 1},
		{Lo: 0xF900, Hi: 0xFAFF, Stride: 1},
		{Lo: 0xFF66, Hi: 0xFF9F, Stride: 1},
	},
}

func isJapanese(r rune) bool {
	return unicode.Is(Japanese, r)
}

// ContainsJapanese reports whether any rune of s is in the Japanese table
func ContainsJapanese(s string) bool {
	return strings.IndexFunc(s, isJapanese) >= 0
}

// Contamination is the share of runes in s that are Japanese. Empty text scores 0.
func Contamination(s string) float64 {
	total, hits := 0, 0
	for _, r := range s {
		total++
		if isJapanese(r) {
			hits++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// span is a maximal run of Japanese runes, as byte offsets into the source string
type span struct {
	start, end int
}

func japaneseRuns(s string) []span {
	var runs []span
	start := -1
	for i, r := range s {
		switch {
		case isJapanese(r) && start < 0:
			start = i
		case !isJapanese(r) && start >= 0:
			runs = append(runs, span{start, i})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, span{start, len(s)})
	}
	return runs
}
