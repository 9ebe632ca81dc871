// Package segment splits chapter text into chunks a translation backend accepts.
//
// Chunks close at sentence boundaries outside of quotation brackets whenever one fits
// inside the limit, so dialogue is never cut in half unless a single quote is longer
// than the limit itself.
package segment

import (
	"strings"
	"unicode"

	"github.com/kerbaras/novels/pkg/data"
)

// DefaultLimit is the chunk size, in runes, used when none is configured
const DefaultLimit = 1500

// bracket pairs, opener -> closer
var pairs = map[rune]rune{
	'「': '」',
	'『': '』',
	'【': '】',
	'（': '）',
	'(': ')',
	'〈': '〉',
	'《': '》',
	'〔': '〕',
	'［': '］',
	'｛': '｝',
	'“': '”',
	'‘': '’',
	'«': '»',
}

var closers = func() map[rune]bool {
	m := make(map[rune]bool, len(pairs))
	for _, c := range pairs {
		m[c] = true
	}
	return m
}()

func isTerminal(r rune) bool {
	switch r {
	case '。', '！', '？', '!', '?', '‼', '⁇', '⁈', '⁉', '.':
		return true
	}
	return false
}

// Split cuts text into chunks of at most limit runes. Empty input yields no chunks and a
// non-positive limit yields the whole trimmed text as a single chunk.
func Split(text string, limit int) []string {
	text = normalizeNewlines(text)
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if limit <= 0 {
		return []string{strings.TrimSpace(text)}
	}

	runes := []rune(text)
	good, weak := scan(runes)

	var chunks []string
	emit := func(rs []rune) {
		if s := strings.TrimSpace(string(rs)); s != "" {
			chunks = append(chunks, s)
		}
	}

	start := 0
	for {
		for start < len(runes) && unicode.IsSpace(runes[start]) {
			start++
		}
		if len(runes)-start <= limit {
			emit(runes[start:])
			return chunks
		}

		end := start + limit
		cut := lastIndex(good, start, end)
		if cut < 0 {
			cut = lastIndex(weak, start, end)
		}
		if cut < 0 {
			cut = lastNewline(runes, start, end)
		}
		if cut < 0 {
			cut = end
		}
		emit(runes[start:cut])
		start = cut
	}
}

// Chunks is Split with chunk positions attached
func Chunks(text string, limit int, chapterIndex int) []data.TextChunk {
	parts := Split(text, limit)
	chunks := make([]data.TextChunk, len(parts))
	for i, p := range parts {
		chunks[i] = data.TextChunk{Text: p, ChapterIndex: chapterIndex, Ordinal: i}
	}
	return chunks
}

// scan marks, for every rune, whether a chunk may end right after it.
// good: sentence end or outermost closing bracket at nesting depth zero.
// weak: any terminal or closing mark regardless of depth.
func scan(runes []rune) (good, weak []bool) {
	good = make([]bool, len(runes))
	weak = make([]bool, len(runes))

	var stack []rune
	for i, r := range runes {
		popped := false
		if closer, ok := pairs[r]; ok {
			stack = append(stack, closer)
		} else if closers[r] && len(stack) > 0 && stack[len(stack)-1] == r {
			stack = stack[:len(stack)-1]
			popped = true
		}

		terminal := isTerminal(r)
		if r == '.' {
			terminal = i+1 == len(runes) || unicode.IsSpace(runes[i+1])
		}
		// runs like "！？" end together
		if terminal && i+1 < len(runes) && isTerminal(runes[i+1]) {
			terminal = false
		}

		weak[i] = terminal || closers[r]
		good[i] = len(stack) == 0 && (terminal || popped)
	}
	return good, weak
}

// lastIndex returns the cut position after the last marked rune in [start, end), or -1
func lastIndex(marks []bool, start, end int) int {
	for i := end - 1; i >= start; i-- {
		if marks[i] {
			return i + 1
		}
	}
	return -1
}

func lastNewline(runes []rune, start, end int) int {
	for i := end - 1; i > start; i-- {
		if runes[i] == '\n' {
			return i + 1
		}
	}
	return -1
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
