package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/novels/pkg/app/screens"
	"github.com/kerbaras/novels/pkg/integrations"
	"github.com/kerbaras/novels/pkg/services"
)

// Library holds what the library tab needs. Catalog may be nil when no catalog is configured.
type Library struct {
	Catalog screens.Catalog
	Tree    screens.NovelDirs
	EPub    *integrations.EPubBuilder
}

// App is the interactive front end of a run
type App struct {
	root *screens.RootScreen
}

func NewApp(ctx context.Context, runner screens.Runner, progress <-chan services.Progress, urls []string, lib Library) *App {
	run := screens.NewRunScreen(ctx, runner, progress, urls)
	library := screens.NewLibraryScreen(lib.Catalog, lib.Tree, lib.EPub)
	return &App{root: screens.NewRootScreen(run, library)}
}

// Run shows the program until the user quits and returns the outcome of the pipeline run
func (a *App) Run() (*services.RunResult, error) {
	p := tea.NewProgram(a.root, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return nil, err
	}
	return a.root.Run().Result()
}
