package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/novels/pkg/app/components"
	"github.com/kerbaras/novels/pkg/app/styles"
	"github.com/kerbaras/novels/pkg/services"
)

// Runner is the pipeline driven by the run screen
type Runner interface {
	Run(ctx context.Context, urls []string) (*services.RunResult, error)
}

// RunScreen starts a pipeline run and follows its progress channel
type RunScreen struct {
	runner   Runner
	progress <-chan services.Progress
	urls     []string

	ctx    context.Context
	cancel context.CancelFunc

	tracker  *components.ProgressTracker
	spinner  spinner.Model
	running  bool
	stopping bool
	result   *services.RunResult
	err      error

	width  int
	height int
}

func NewRunScreen(ctx context.Context, runner Runner, progress <-chan services.Progress, urls []string) *RunScreen {
	ctx, cancel := context.WithCancel(ctx)
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.StatusActive

	return &RunScreen{
		runner:   runner,
		progress: progress,
		urls:     urls,
		ctx:      ctx,
		cancel:   cancel,
		tracker:  components.NewProgressTracker(76),
		spinner:  sp,
	}
}

func (s *RunScreen) Init() tea.Cmd {
	s.running = true
	return tea.Batch(s.startRun, s.listenForProgress, s.spinner.Tick)
}

func (s *RunScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.tracker.SetWidth(msg.Width - 4)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if !s.running {
				return s, tea.Quit
			}
			// the run stops after its current step and publishes the ledger
			s.stopping = true
			s.cancel()
		}

	case progressMsg:
		s.tracker.Update(services.Progress(msg))
		return s, s.listenForProgress

	case runFinishedMsg:
		s.running = false
		s.result = msg.result
		s.err = msg.err
		if s.stopping {
			return s, tea.Quit
		}

	case spinner.TickMsg:
		if !s.running {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	}

	return s, nil
}

func (s *RunScreen) View() string {
	var b strings.Builder

	header := fmt.Sprintf("📖 Archiving %d novels", len(s.urls))
	b.WriteString(styles.TitleStyle.Render(header))
	b.WriteString("\n")

	switch {
	case s.running && s.stopping:
		b.WriteString(styles.StatusPaused.Render(s.spinner.View() + " stopping after the current step..."))
	case s.running:
		b.WriteString(styles.StatusActive.Render(s.spinner.View() + " running"))
	default:
		b.WriteString(s.summary())
	}
	b.WriteString("\n\n")

	b.WriteString(s.tracker.View())

	help := "q: stop"
	if !s.running {
		help = "tab: library • q: quit"
	}
	b.WriteString(styles.HelpStyle.Render(help))
	return b.String()
}

func (s *RunScreen) summary() string {
	if s.result == nil && s.err == nil {
		return styles.MutedStyle.Render("not started")
	}
	if s.result == nil {
		return styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err))
	}
	line := fmt.Sprintf("%d chapters written, %d of %d novels failed",
		s.result.Written(), s.result.Failed(), len(s.result.Novels))
	if s.err != nil {
		return styles.StatusError.Render(fmt.Sprintf("%s\nError: %s", line, s.err))
	}
	if s.result.Failed() > 0 {
		return styles.StatusPaused.Render(line)
	}
	return styles.StatusCompleted.Render(line)
}

// Result returns the outcome of the run once it has finished
func (s *RunScreen) Result() (*services.RunResult, error) {
	return s.result, s.err
}

// Running reports whether the pipeline is still working
func (s *RunScreen) Running() bool {
	return s.running
}

// Messages
type progressMsg services.Progress

type runFinishedMsg struct {
	result *services.RunResult
	err    error
}

// Commands
func (s *RunScreen) startRun() tea.Msg {
	defer s.cancel()
	result, err := s.runner.Run(s.ctx, s.urls)
	return runFinishedMsg{result: result, err: err}
}

func (s *RunScreen) listenForProgress() tea.Msg {
	progress, ok := <-s.progress
	if !ok {
		return nil
	}
	return progressMsg(progress)
}
