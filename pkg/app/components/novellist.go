package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/novels/pkg/app/styles"
	"github.com/kerbaras/novels/pkg/data"
)

type NovelListItem struct {
	Novel *data.NovelSummary
}

// Status is "complete" when every chapter of the table of contents is archived
func (i NovelListItem) Status() string {
	if i.Novel.ChapterTotal > 0 && i.Novel.Archived >= i.Novel.ChapterTotal {
		return "complete"
	}
	return "partial"
}

type NovelList struct {
	Items         []NovelListItem
	SelectedIndex int
	Width         int
	Height        int
}

func NewNovelList() *NovelList {
	return &NovelList{
		Items:         []NovelListItem{},
		SelectedIndex: 0,
		Width:         80,
		Height:        20,
	}
}

func (m *NovelList) SetItems(items []NovelListItem) {
	m.Items = items
	if m.SelectedIndex >= len(items) && len(items) > 0 {
		m.SelectedIndex = len(items) - 1
	}
	if len(items) == 0 {
		m.SelectedIndex = 0
	}
}

func (m *NovelList) Next() {
	if len(m.Items) == 0 {
		return
	}
	m.SelectedIndex++
	if m.SelectedIndex >= len(m.Items) {
		m.SelectedIndex = 0
	}
}

func (m *NovelList) Prev() {
	if len(m.Items) == 0 {
		return
	}
	m.SelectedIndex--
	if m.SelectedIndex < 0 {
		m.SelectedIndex = len(m.Items) - 1
	}
}

func (m *NovelList) Selected() *NovelListItem {
	if len(m.Items) == 0 || m.SelectedIndex >= len(m.Items) {
		return nil
	}
	return &m.Items[m.SelectedIndex]
}

func (m *NovelList) View() string {
	if len(m.Items) == 0 {
		emptyMsg := styles.MutedStyle.Render("No novels archived yet")
		return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, emptyMsg)
	}

	var b strings.Builder
	for i, item := range m.Items {
		cardStyle := styles.CardStyle
		if i == m.SelectedIndex {
			cardStyle = styles.ActiveCardStyle
		}

		title := styles.TitleStyle.Render(item.Novel.Title)
		url := styles.SubtitleStyle.Render(item.Novel.ID)

		status := item.Status()
		chapterInfo := styles.StatusStyle(status).Render(
			fmt.Sprintf("Chapters: %d / %d archived", item.Novel.Archived, item.Novel.ChapterTotal),
		)
		updated := ""
		if !item.Novel.UpdatedAt.IsZero() {
			updated = " • updated " + item.Novel.UpdatedAt.Format("2006-01-02")
		}
		source := styles.MutedStyle.Render(fmt.Sprintf("Source: %s%s", item.Novel.Source, updated))

		cardContent := lipgloss.JoinVertical(
			lipgloss.Left,
			title,
			url,
			chapterInfo,
			source,
		)

		b.WriteString(cardStyle.Width(m.Width - 4).Render(cardContent))
		b.WriteString("\n")
	}

	return b.String()
}
