package screens

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/novels/pkg/app/styles"
)

type screenType int

const (
	runView screenType = iota
	libraryView
)

// RootScreen switches between the run dashboard and the library
type RootScreen struct {
	currentView screenType
	run         *RunScreen
	library     *LibraryScreen

	width  int
	height int
}

func NewRootScreen(run *RunScreen, library *LibraryScreen) *RootScreen {
	return &RootScreen{
		currentView: runView,
		run:         run,
		library:     library,
	}
}

func (r *RootScreen) Init() tea.Cmd {
	return tea.Batch(r.run.Init(), r.library.Init())
}

func (r *RootScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width = msg.Width
		r.height = msg.Height
		_, runCmd := r.run.Update(msg)
		_, libCmd := r.library.Update(msg)
		return r, tea.Batch(runCmd, libCmd)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			// quitting always goes through the run so it can stop cleanly
			_, cmd := r.run.Update(msg)
			return r, cmd
		case "tab":
			r.currentView = (r.currentView + 1) % 2
			if r.currentView == libraryView {
				return r, r.library.Init()
			}
			return r, nil
		}

	case progressMsg, runFinishedMsg, spinner.TickMsg:
		_, cmd := r.run.Update(msg)
		if _, done := msg.(runFinishedMsg); done {
			// refresh the library with the chapters this run added
			cmd = tea.Batch(cmd, r.library.Init())
		}
		return r, cmd

	case libraryLoadedMsg, epubGeneratedMsg:
		_, cmd := r.library.Update(msg)
		return r, cmd
	}

	// Forward message to active screen
	switch r.currentView {
	case libraryView:
		newModel, newCmd := r.library.Update(msg)
		r.library = newModel.(*LibraryScreen)
		return r, newCmd
	default:
		newModel, newCmd := r.run.Update(msg)
		r.run = newModel.(*RunScreen)
		return r, newCmd
	}
}

func (r *RootScreen) View() string {
	tabs := r.renderTabs()

	var content string
	switch r.currentView {
	case libraryView:
		content = r.library.View()
	default:
		content = r.run.View()
	}

	return fmt.Sprintf("%s\n\n%s", tabs, content)
}

func (r *RootScreen) renderTabs() string {
	runTab := "Run"
	libraryTab := "Library"

	if r.currentView == runView {
		runTab = styles.ActiveTabStyle.Render(runTab)
		libraryTab = styles.InactiveTabStyle.Render(libraryTab)
	} else {
		runTab = styles.InactiveTabStyle.Render(runTab)
		libraryTab = styles.ActiveTabStyle.Render(libraryTab)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, runTab, libraryTab)
}

// Run returns the run screen
func (r *RootScreen) Run() *RunScreen {
	return r.run
}
