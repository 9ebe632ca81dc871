// Package ledger records, per novel, the highest chapter index that has been fully
// written, so an interrupted run resumes where it stopped.
package ledger

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/kerbaras/novels/pkg/data"
)

var linePattern = regexp.MustCompile(`^(https?://[^\s|]+)\s*\|\s*(\d+)`)

type Entry struct {
	URL     string
	Chapter int
}

// Ledger maps canonical novel URLs to their last completed chapter. Values only grow.
type Ledger struct {
	entries map[string]int
	order   []string
}

func New() *Ledger {
	return &Ledger{entries: make(map[string]int)}
}

// Get returns the last completed chapter of url, 0 when unknown
func (l *Ledger) Get(url string) int {
	return l.entries[data.CanonicalURL(url)]
}

// Advance records chapter as completed for url. Lower or equal values are ignored and
// reported with false.
func (l *Ledger) Advance(url string, chapter int) bool {
	url = data.CanonicalURL(url)
	cur, ok := l.entries[url]
	if chapter < 0 || (ok && chapter <= cur) {
		return false
	}
	if !ok {
		l.order = append(l.order, url)
	}
	l.entries[url] = chapter
	return true
}

func (l *Ledger) Len() int {
	return len(l.entries)
}

// Entries returns the ledger in first-seen order
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, 0, len(l.order))
	for _, url := range l.order {
		out = append(out, Entry{URL: url, Chapter: l.entries[url]})
	}
	return out
}

// Parse reads the "<url>  |  <n>" line format. Lines that do not match are skipped.
func Parse(r io.Reader) (*Ledger, error) {
	l := New()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		m := linePattern.FindStringSubmatch(strings.TrimSpace(scanner.Text()))
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		// Advance keeps the highest value for duplicate lines
		l.Advance(m[1], n)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	return l, nil
}

// Format writes one line per entry
func (l *Ledger) Format(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, e := range l.Entries() {
		if _, err := fmt.Fprintf(bw, "%s  |  %d\n", e.URL, e.Chapter); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (l *Ledger) String() string {
	var b strings.Builder
	l.Format(&b)
	return b.String()
}
