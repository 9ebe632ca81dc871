package integrations

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kerbaras/novels/pkg/utils"
)

const (
	DefaultBucketSize = 999
	maxTitleRunes     = 50
)

// TreeWriter lays chapters out as <root>/<title>/<language>/<bucket>/<index>.txt
type TreeWriter struct {
	root       string
	bucketSize int
}

func NewTreeWriter(root string, bucketSize int) *TreeWriter {
	if bucketSize <= 0 {
		bucketSize = DefaultBucketSize
	}
	return &TreeWriter{root: root, bucketSize: bucketSize}
}

// NovelDir is the directory holding both language trees of a novel
func (w *TreeWriter) NovelDir(novelTitle string) string {
	return filepath.Join(w.root, sanitizeFilename(novelTitle))
}

// ChapterPath is the file a chapter is written to. Indexes start at 1.
func (w *TreeWriter) ChapterPath(novelTitle string, lang Language, index int) string {
	bucket := (index-1)/w.bucketSize + 1
	return filepath.Join(
		w.NovelDir(novelTitle),
		string(lang),
		fmt.Sprintf("%03d", bucket),
		fmt.Sprintf("%03d.txt", index),
	)
}

// WriteChapter writes "<heading>\n\n<body>" atomically, replacing any earlier version
func (w *TreeWriter) WriteChapter(novelTitle string, lang Language, index int, heading, body string) (string, error) {
	if index < 1 {
		return "", fmt.Errorf("invalid chapter index %d", index)
	}
	path := w.ChapterPath(novelTitle, lang, index)
	content := heading + "\n\n" + body
	if err := utils.WriteFileAtomic(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s chapter %d: %w", lang, index, err)
	}
	return path, nil
}

// sanitizeFilename removes characters that are invalid in filenames
func sanitizeFilename(name string) string {
	// Replace invalid characters with underscores
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.Join(strings.Fields(result), " ")

	if r := []rune(result); len(r) > maxTitleRunes {
		result = string(r[:maxTitleRunes])
	}
	// Trim spaces and dots from ends
	result = strings.TrimSpace(result)
	result = strings.Trim(result, ".")
	if result == "" {
		return "untitled"
	}
	return result
}
