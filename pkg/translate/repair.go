package translate

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kerbaras/novels/pkg/data"
)

const (
	DefaultThreshold     = 0.10
	DefaultFailureMarker = "[翻訳失敗]"
)

// Translator is the part of Client the repairer depends on
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Repairer cleans Japanese fragments left behind in translated text and decides
// whether a chunk's translation is usable.
type Repairer struct {
	translator Translator
	threshold  float64
	marker     string
	logger     *slog.Logger
}

type RepairerOption func(*Repairer)

func WithThreshold(t float64) RepairerOption {
	return func(r *Repairer) {
		if t > 0 {
			r.threshold = t
		}
	}
}

func WithFailureMarker(m string) RepairerOption {
	return func(r *Repairer) {
		if m != "" {
			r.marker = m
		}
	}
}

func WithLogger(l *slog.Logger) RepairerOption {
	return func(r *Repairer) {
		if l != nil {
			r.logger = l
		}
	}
}

func NewRepairer(t Translator, opts ...RepairerOption) *Repairer {
	r := &Repairer{
		translator: t,
		threshold:  DefaultThreshold,
		marker:     DefaultFailureMarker,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repairer) FailureMarker() string {
	return r.marker
}

// Valid reports whether text is below the contamination threshold
func (r *Repairer) Valid(text string) bool {
	return Contamination(text) < r.threshold
}

// Repair translates every distinct maximal Japanese run of text once and substitutes the
// result at each position the run occurs. A fragment whose translation fails or still
// contains Japanese is kept as is, so repairing repaired text changes nothing.
func (r *Repairer) Repair(ctx context.Context, text string) string {
	runs := japaneseRuns(text)
	if len(runs) == 0 {
		return text
	}

	replacements := make(map[string]string)
	for _, s := range runs {
		frag := text[s.start:s.end]
		if _, done := replacements[frag]; done {
			continue
		}
		replacements[frag] = frag

		out, err := r.translator.Translate(ctx, frag)
		if err != nil {
			r.logger.DebugContext(ctx, "fragment translation failed", "fragment", frag, "error", err)
			continue
		}
		out = strings.TrimSpace(out)
		if out == "" || ContainsJapanese(out) {
			continue
		}
		replacements[frag] = out
	}

	var b strings.Builder
	b.Grow(len(text))
	prev := 0
	for _, s := range runs {
		b.WriteString(text[prev:s.start])
		b.WriteString(replacements[text[s.start:s.end]])
		prev = s.end
	}
	b.WriteString(text[prev:])
	return b.String()
}

// TranslateChunk runs the full chunk flow: translate, repair, validate, and one whole-chunk
// resubmission when the result is still contaminated. A chunk that never validates yields
// the failure marker.
func (r *Repairer) TranslateChunk(ctx context.Context, chunk data.TextChunk) data.TranslationResult {
	for pass := 1; pass <= 2; pass++ {
		out, err := r.translator.Translate(ctx, chunk.Text)
		if err != nil {
			r.logger.WarnContext(ctx, "chunk translation failed",
				"chapter", chunk.ChapterIndex, "chunk", chunk.Ordinal, "error", err)
			break
		}
		out = r.Repair(ctx, out)
		if r.Valid(out) {
			return data.TranslationResult{Chunk: chunk, Output: out}
		}
		r.logger.InfoContext(ctx, "translation still contaminated",
			"chapter", chunk.ChapterIndex, "chunk", chunk.Ordinal, "pass", pass,
			"ratio", Contamination(out))
		if ctx.Err() != nil {
			break
		}
	}
	return data.TranslationResult{Chunk: chunk, Output: r.marker, Failed: true}
}
