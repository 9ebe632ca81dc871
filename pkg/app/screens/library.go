package screens

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/novels/pkg/app/components"
	"github.com/kerbaras/novels/pkg/app/styles"
	"github.com/kerbaras/novels/pkg/data"
	"github.com/kerbaras/novels/pkg/integrations"
)

// Catalog lists the archived novels
type Catalog interface {
	ListNovels() ([]*data.NovelSummary, error)
}

// NovelDirs locates a novel in the output tree
type NovelDirs interface {
	NovelDir(novelTitle string) string
}

var errNoCatalog = errors.New("the catalog is disabled")

type LibraryScreen struct {
	catalog   Catalog
	tree      NovelDirs
	epub      *integrations.EPubBuilder
	novelList *components.NovelList
	width     int
	height    int
	status    string
	err       error
}

// NewLibraryScreen shows the catalog. A nil catalog renders an explanatory message.
func NewLibraryScreen(catalog Catalog, tree NovelDirs, epub *integrations.EPubBuilder) *LibraryScreen {
	return &LibraryScreen{
		catalog:   catalog,
		tree:      tree,
		epub:      epub,
		novelList: components.NewNovelList(),
	}
}

func (s *LibraryScreen) Init() tea.Cmd {
	return s.loadLibrary
}

func (s *LibraryScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.novelList.Width = msg.Width - 4
		s.novelList.Height = msg.Height - 10

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			s.novelList.Prev()
		case "down", "j":
			s.novelList.Next()
		case "r":
			return s, s.loadLibrary
		case "e":
			if selected := s.novelList.Selected(); selected != nil {
				return s, s.generateEPUB(selected.Novel.Title, integrations.English)
			}
		case "E":
			if selected := s.novelList.Selected(); selected != nil {
				return s, s.generateEPUB(selected.Novel.Title, integrations.Japanese)
			}
		}

	case libraryLoadedMsg:
		s.novelList.SetItems(msg.items)
		s.err = msg.err

	case epubGeneratedMsg:
		s.err = msg.err
		if msg.err == nil {
			s.status = fmt.Sprintf("EPUB written to %s", msg.path)
		}
	}

	return s, nil
}

func (s *LibraryScreen) View() string {
	header := styles.TitleStyle.Render("📚 Novel Library")

	var notice string
	if s.err != nil {
		notice = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err)) + "\n\n"
	} else if s.status != "" {
		notice = styles.StatusCompleted.Render(s.status) + "\n\n"
	}

	help := styles.HelpStyle.Render(
		"↑/k: up • ↓/j: down • e: english EPUB • E: japanese EPUB • r: refresh • tab: switch view • q: quit",
	)

	return fmt.Sprintf("%s\n\n%s%s\n%s", header, notice, s.novelList.View(), help)
}

// Messages
type libraryLoadedMsg struct {
	items []components.NovelListItem
	err   error
}

type epubGeneratedMsg struct {
	path string
	err  error
}

// Commands
func (s *LibraryScreen) loadLibrary() tea.Msg {
	if s.catalog == nil {
		return libraryLoadedMsg{err: errNoCatalog}
	}
	novels, err := s.catalog.ListNovels()
	if err != nil {
		return libraryLoadedMsg{err: err}
	}

	items := make([]components.NovelListItem, len(novels))
	for i, novel := range novels {
		items[i] = components.NovelListItem{Novel: novel}
	}
	return libraryLoadedMsg{items: items}
}

func (s *LibraryScreen) generateEPUB(title string, lang integrations.Language) tea.Cmd {
	return func() tea.Msg {
		path, err := s.epub.CreateEPub(s.tree.NovelDir(title), lang)
		return epubGeneratedMsg{path: path, err: err}
	}
}
