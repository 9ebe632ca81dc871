package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiBackend translates with a Gemini generative model
type GeminiBackend struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
}

func NewGeminiBackend(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key not configured")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, append(opts, option.WithAPIKey(apiKey))...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	m := client.GenerativeModel(model)
	m.SetTemperature(0.2)
	return &GeminiBackend{client: client, model: m, name: model}, nil
}

func (g *GeminiBackend) Name() string {
	return "gemini/" + g.name
}

func (g *GeminiBackend) Translate(ctx context.Context, text string) (string, error) {
	slog.DebugContext(ctx, "gemini translate", "model", g.name, "length", len(text))

	resp, err := g.model.GenerateContent(ctx, genai.Text(buildPrompt(text)))
	if err != nil {
		slog.ErrorContext(ctx, "gemini translate failed", "error", err)
		return "", err
	}
	return trimDividers(responseText(resp)), nil
}

func (g *GeminiBackend) Close() error {
	return g.client.Close()
}

func buildPrompt(text string) string {
	return heredoc.Docf(`
		Translate the following Japanese web novel passage to natural, casual English:
		---<DOC_BEGIN>---
		%s
		---<DOC_END>---

		Keep paragraph breaks and dialogue brackets as line structure.
		Romanize names, do not leave any Japanese characters in the output.
		Output only the translated passage, no chat.
	`, text)
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		break
	}
	return b.String()
}

func trimDividers(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > 0 && strings.TrimSpace(lines[0]) == "---<DOC_BEGIN>---" {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "---<DOC_END>---" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
