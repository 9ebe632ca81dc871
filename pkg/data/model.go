package data

import (
	"strings"
	"time"
)

type Novel struct {
	ID       string // canonical URL
	Title    string
	Source   string // "kakuyomu", "narou"
	Chapters []ChapterRef
}

// ChapterRef points at one entry of a novel's table of contents
type ChapterRef struct {
	Index int // 1-based position in the TOC
	URL   string
	Title string
}

type Chapter struct {
	NovelID        string
	Index          int
	Title          string
	SourceText     string
	TranslatedText string
	TranslatedName string
	FailedChunks   int
	Placeholder    bool // body could not be parsed
}

// TextChunk is a translator-safe slice of a chapter body
type TextChunk struct {
	Text         string
	ChapterIndex int
	Ordinal      int
}

// TranslationResult is the outcome of one chunk; when Failed, Output holds the failure marker
type TranslationResult struct {
	Chunk  TextChunk
	Output string
	Failed bool
}

// ChapterRecord is a catalog row for a written chapter
type ChapterRecord struct {
	NovelID      string
	Index        int
	Title        string
	SourcePath   string
	EnglishPath  string
	FailedChunks int
	Placeholder  bool
	ArchivedAt   time.Time
}

// Run is a catalog row for one pipeline invocation
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Novels     int
	Failed     int
	Status     string // "running", "completed", "partial", "error"
}

// CanonicalURL is the identity of a novel: surrounding whitespace and trailing slashes removed
func CanonicalURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}
