package translate

import (
	"context"
	"errors"
	"testing"

	"github.com/kerbaras/novels/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContamination(t *testing.T) {
	assert.Equal(t, 0.0, Contamination(""))
	assert.Equal(t, 0.0, Contamination("plain English."))
	assert.Equal(t, 1.0, Contamination("ひらがなカタカナ漢字"))
	assert.InDelta(t, 0.5, Contamination("aあ"), 1e-9)
	assert.True(t, ContainsJapanese("half-width ｶﾀｶﾅ"))
	assert.False(t, ContainsJapanese("「」。、"), "punctuation is not script")
}

func TestRepair(t *testing.T) {
	ctx := context.Background()

	t.Run("translates each distinct run once", func(t *testing.T) {
		backend := dictionary(map[string]string{"こんにちは": "hello", "さようなら": "goodbye"})
		r := NewRepairer(backend)

		out := r.Repair(ctx, "He said こんにちは and こんにちは again, then さようなら.")
		assert.Equal(t, "He said hello and hello again, then goodbye.", out)
		assert.Equal(t, 2, backend.callCount())
	})

	t.Run("substitutes by position", func(t *testing.T) {
		backend := dictionary(map[string]string{"猫": "cat", "猫猫": "cats"})
		r := NewRepairer(backend)

		assert.Equal(t, "cat and cats", r.Repair(ctx, "猫 and 猫猫"))
	})

	t.Run("keeps fragments that fail", func(t *testing.T) {
		backend := dictionary(map[string]string{"魔法": "magic"})
		r := NewRepairer(backend)

		assert.Equal(t, "The 魔王 used magic.", r.Repair(ctx, "The 魔王 used 魔法."))
	})

	t.Run("keeps fragments that come back contaminated", func(t *testing.T) {
		backend := dictionary(map[string]string{"魔王": "Demon 王"})
		r := NewRepairer(backend)

		assert.Equal(t, "The 魔王 appeared.", r.Repair(ctx, "The 魔王 appeared."))
	})

	t.Run("is idempotent", func(t *testing.T) {
		backend := dictionary(map[string]string{"魔法": "magic"})
		r := NewRepairer(backend)

		once := r.Repair(ctx, "魔王 and 魔法 and 勇者")
		assert.Equal(t, once, r.Repair(ctx, once))
	})

	t.Run("clean text is untouched", func(t *testing.T) {
		backend := &mockBackend{}
		r := NewRepairer(backend)

		assert.Equal(t, "Nothing to do.", r.Repair(ctx, "Nothing to do."))
		assert.Equal(t, 0, backend.callCount())
	})
}

func TestValid(t *testing.T) {
	r := NewRepairer(&mockBackend{})
	assert.True(t, r.Valid("Hello world あ"))
	assert.False(t, r.Valid("Hello あ"))

	strict := NewRepairer(&mockBackend{}, WithThreshold(0.05))
	assert.False(t, strict.Valid("Hello world あ"))
}

func TestTranslateChunk(t *testing.T) {
	ctx := context.Background()
	chunk := data.TextChunk{Text: "原文です。", ChapterIndex: 4, Ordinal: 2}

	t.Run("clean translation", func(t *testing.T) {
		r := NewRepairer(dictionary(map[string]string{"原文です。": "This is the source."}))

		res := r.TranslateChunk(ctx, chunk)
		assert.False(t, res.Failed)
		assert.Equal(t, "This is the source.", res.Output)
		assert.Equal(t, chunk, res.Chunk)
	})

	t.Run("fragments are repaired", func(t *testing.T) {
		r := NewRepairer(dictionary(map[string]string{
			"原文です。": "This is the 原文.",
			"原文":    "source",
		}))

		res := r.TranslateChunk(ctx, chunk)
		assert.False(t, res.Failed)
		assert.Equal(t, "This is the source.", res.Output)
	})

	t.Run("second pass recovers", func(t *testing.T) {
		n := 0
		backend := &mockBackend{translateFunc: func(_ context.Context, text string) (string, error) {
			if text != chunk.Text {
				return "", errUnknown
			}
			n++
			if n == 1 {
				return "これは still japanese", nil
			}
			return "This is the source.", nil
		}}
		r := NewRepairer(backend)

		res := r.TranslateChunk(ctx, chunk)
		assert.False(t, res.Failed)
		assert.Equal(t, "This is the source.", res.Output)
		assert.Equal(t, 2, n)
	})

	t.Run("persistent contamination yields the marker", func(t *testing.T) {
		backend := &mockBackend{translateFunc: func(_ context.Context, text string) (string, error) {
			if text != chunk.Text {
				return "", errUnknown
			}
			return "日本語のまま", nil
		}}
		r := NewRepairer(backend, WithFailureMarker("[TRANSLATION FAILED]"))

		res := r.TranslateChunk(ctx, chunk)
		assert.True(t, res.Failed)
		assert.Equal(t, "[TRANSLATION FAILED]", res.Output)
		// two whole-chunk passes, each followed by one fragment attempt
		assert.Equal(t, 4, backend.callCount())
	})

	t.Run("translation error yields the marker", func(t *testing.T) {
		backend := &mockBackend{translateFunc: func(context.Context, string) (string, error) {
			return "", &Error{Backend: "mock", Attempts: 3, Err: errors.New("503")}
		}}
		r := NewRepairer(backend)

		res := r.TranslateChunk(ctx, chunk)
		require.True(t, res.Failed)
		assert.Equal(t, DefaultFailureMarker, res.Output)
		assert.Equal(t, 1, backend.callCount())
	})
}
