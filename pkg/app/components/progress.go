package components

import (
	"fmt"
	"strings"

	"github.com/kerbaras/novels/pkg/app/styles"
	"github.com/kerbaras/novels/pkg/services"
)

// ProgressTracker keeps the latest progress of every novel in the run, in arrival order
type ProgressTracker struct {
	novels map[string]*services.Progress
	order  []string
	width  int
}

func NewProgressTracker(width int) *ProgressTracker {
	return &ProgressTracker{
		novels: make(map[string]*services.Progress),
		width:  width,
	}
}

func (p *ProgressTracker) SetWidth(width int) {
	p.width = width
}

func (p *ProgressTracker) Update(progress services.Progress) {
	prev, ok := p.novels[progress.NovelURL]
	if !ok {
		p.order = append(p.order, progress.NovelURL)
	}
	prog := progress // Copy
	// failed chunks arrive per chapter, keep the running total
	if ok {
		prog.FailedChunks += prev.FailedChunks
		if prog.NovelTitle == "" {
			prog.NovelTitle = prev.NovelTitle
		}
	}
	p.novels[progress.NovelURL] = &prog
}

func (p *ProgressTracker) Clear() {
	p.novels = make(map[string]*services.Progress)
	p.order = nil
}

// HasActive reports whether a novel is still being worked on
func (p *ProgressTracker) HasActive() bool {
	for _, prog := range p.novels {
		if prog.State != services.StateDone && prog.State != services.StateFailed {
			return true
		}
	}
	return false
}

func (p *ProgressTracker) Len() int {
	return len(p.order)
}

func (p *ProgressTracker) View() string {
	if len(p.order) == 0 {
		return ""
	}

	var b strings.Builder
	for _, url := range p.order {
		progress := p.novels[url]

		name := progress.NovelTitle
		if name == "" {
			name = url
		}
		b.WriteString(styles.TextStyle.Render(name))
		b.WriteString("\n")

		statusText := string(progress.State)
		if progress.Total > 0 {
			percentage := float64(progress.Chapter) / float64(progress.Total) * 100
			statusText = fmt.Sprintf("%s (chapter %d/%d - %.0f%%)",
				progress.State, progress.Chapter, progress.Total, percentage)

			b.WriteString(renderProgressBar(progress.Chapter, progress.Total, p.width-4))
			b.WriteString("\n")
		}

		b.WriteString(styles.StatusStyle(string(progress.State)).Render(statusText))
		if progress.FailedChunks > 0 {
			b.WriteString(styles.StatusPaused.Render(fmt.Sprintf("  %d untranslated chunks", progress.FailedChunks)))
		}
		b.WriteString("\n")

		if progress.Error != nil {
			b.WriteString(styles.StatusError.Render(fmt.Sprintf("Error: %s", progress.Error)))
			b.WriteString("\n")
		}

		b.WriteString("\n")
	}

	return b.String()
}

func renderProgressBar(current, total, width int) string {
	if total == 0 || width <= 0 {
		return ""
	}

	filled := int(float64(current) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}

	return styles.ProgressBarStyle.Render(strings.Repeat("█", filled)) +
		styles.ProgressEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// SimpleProgress renders a simple progress bar
func SimpleProgress(current, total, width int) string {
	return renderProgressBar(current, total, width)
}
