package integrations

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-shiori/go-epub"
)

type EPubBuilder struct {
	outputDir string
}

func NewEPubBuilder(outputDir string) *EPubBuilder {
	if outputDir == "" {
		outputDir, _ = os.MkdirTemp("", "novels-epub-*")
	}
	return &EPubBuilder{outputDir: outputDir}
}

// TextChapter is one chapter file read back from the output tree
type TextChapter struct {
	Path  string
	Title string
	Body  string
}

// CreateEPub compiles one language tree of a novel directory into a single EPub file
func (p *EPubBuilder) CreateEPub(novelDir string, lang Language) (string, error) {
	chapters, err := ReadChapters(novelDir, lang)
	if err != nil {
		return "", err
	}
	if len(chapters) == 0 {
		return "", fmt.Errorf("no chapters to compile")
	}

	// Ensure output directory exists
	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	title := filepath.Base(novelDir)
	e, err := epub.NewEpub(title)
	if err != nil {
		return "", fmt.Errorf("failed to create EPub: %w", err)
	}

	e.SetAuthor("novels")
	if lang == Japanese {
		e.SetLang("ja")
	} else {
		e.SetLang("en")
	}
	e.SetDescription(fmt.Sprintf("%s (%s, %d chapters)", title, lang, len(chapters)))

	for i, chapter := range chapters {
		filename := fmt.Sprintf("chapter%04d.xhtml", i+1)
		if _, err := e.AddSection(chapterHTML(chapter), chapter.Title, filename, ""); err != nil {
			return "", fmt.Errorf("failed to add section %s: %w", chapter.Path, err)
		}
	}

	outputPath := filepath.Join(p.outputDir, sanitizeFilename(title)+"."+string(lang)+".epub")
	if err := e.Write(outputPath); err != nil {
		return "", fmt.Errorf("failed to write EPub: %w", err)
	}
	return outputPath, nil
}

// ReadChapters loads every chapter file of one language tree in index order
func ReadChapters(novelDir string, lang Language) ([]TextChapter, error) {
	files, err := filepath.Glob(filepath.Join(novelDir, string(lang), "*", "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	// zero-padded bucket and index names sort numerically up to 999 buckets
	sort.Strings(files)

	chapters := make([]TextChapter, 0, len(files))
	for _, f := range files {
		raw, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read chapter: %w", err)
		}
		title, body, _ := strings.Cut(string(raw), "\n\n")
		chapters = append(chapters, TextChapter{Path: f, Title: strings.TrimSpace(title), Body: body})
	}
	return chapters, nil
}

func chapterHTML(c TextChapter) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<h1>%s</h1>\n", html.EscapeString(c.Title)))
	for _, line := range strings.Split(c.Body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			b.WriteString("<p><br/></p>\n")
			continue
		}
		b.WriteString(fmt.Sprintf("<p>%s</p>\n", html.EscapeString(line)))
	}
	return b.String()
}
