package integrations

// Language selects one half of a novel's output tree
type Language string

const (
	Japanese Language = "japanese"
	English  Language = "english"
)

// ChapterWriter persists one chapter file and returns where it went
type ChapterWriter interface {
	WriteChapter(novelTitle string, lang Language, index int, heading, body string) (string, error)
}
