package translate

import (
	"context"
	"strings"

	"github.com/kerbaras/novels/pkg/data"
	"github.com/kerbaras/novels/pkg/segment"
)

// ChapterTranslation is a chapter body translated chunk by chunk
type ChapterTranslation struct {
	Text         string
	Chunks       int
	FailedChunks int
}

// ChapterTranslator segments a chapter and translates the chunks in order
type ChapterTranslator struct {
	repairer *Repairer
	limit    int
}

func NewChapterTranslator(repairer *Repairer, limit int) *ChapterTranslator {
	return &ChapterTranslator{repairer: repairer, limit: limit}
}

// TranslateChapter translates text as a sequence of chunks and joins the outputs with a
// newline in their original order. Failed chunks contribute the failure marker. When ctx
// is cancelled the remaining chunks are not sent and count as failed.
func (t *ChapterTranslator) TranslateChapter(ctx context.Context, index int, text string) ChapterTranslation {
	chunks := segment.Chunks(text, t.limit, index)
	outputs := make([]string, 0, len(chunks))

	res := ChapterTranslation{Chunks: len(chunks)}
	for _, c := range chunks {
		if ctx.Err() != nil {
			res.FailedChunks += len(chunks) - len(outputs)
			break
		}
		r := t.repairer.TranslateChunk(ctx, c)
		if r.Failed {
			res.FailedChunks++
		}
		outputs = append(outputs, r.Output)
	}
	res.Text = strings.Join(outputs, "\n")
	return res
}

// TranslateLine translates a short single-line text such as a title. It returns the
// original and false when the result is unusable.
func (t *ChapterTranslator) TranslateLine(ctx context.Context, line string) (string, bool) {
	if strings.TrimSpace(line) == "" {
		return line, false
	}
	r := t.repairer.TranslateChunk(ctx, data.TextChunk{Text: line})
	if r.Failed {
		return line, false
	}
	return strings.Join(strings.Fields(r.Output), " "), true
}
