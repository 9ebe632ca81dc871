package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kerbaras/novels/pkg/app"
	"github.com/kerbaras/novels/pkg/app/screens"
	"github.com/kerbaras/novels/pkg/app/styles"
	"github.com/kerbaras/novels/pkg/data"
	"github.com/kerbaras/novels/pkg/integrations"
	"github.com/kerbaras/novels/pkg/ledger"
	"github.com/kerbaras/novels/pkg/services"
)

type runOptions struct {
	tui    bool
	dryRun bool
}

var runCmd = &cobra.Command{
	Use:   "run [url...]",
	Short: "Archive and translate novels",
	Long: `Bring every novel up to date: fetch new chapters, translate them and write both texts.

Without arguments the novels are read from the novel list file (--list or novel_list).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tui, _ := cmd.Flags().GetBool("tui")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		return archive(cmd, args, runOptions{tui: tui, dryRun: dryRun})
	},
}

func init() {
	runCmd.Flags().Bool("tui", false, "show the interactive dashboard")
	runCmd.Flags().Bool("dry-run", false, "skip translation and every remote (ledger mirror and tree sync)")
}

func archive(cmd *cobra.Command, args []string, opts runOptions) error {
	urls, err := novelURLs(args)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		fmt.Println("📚 No novels to archive. Use 'novels add URL' to add one.")
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := newPipeline(ctx, cfg, opts.dryRun)
	if err != nil {
		return err
	}
	defer p.Close()

	if opts.dryRun {
		fmt.Println(styles.StatusPaused.Render("🧪 Dry run: chapters are written untranslated and nothing is pushed"))
	}

	var result *services.RunResult
	if opts.tui {
		result, err = runTUI(ctx, p, urls)
	} else {
		result, err = runPlain(ctx, p, urls)
	}

	if result != nil {
		printSummary(result)
	}

	var syncErr *ledger.SyncError
	switch {
	case errors.As(err, &syncErr):
		return fmt.Errorf("ledger could not be published, the run is not durable: %w", err)
	case errors.Is(err, context.Canceled):
		fmt.Println(styles.StatusPaused.Render("⏸  Interrupted. The next run resumes from the ledger."))
		return nil
	}
	return err
}

func novelURLs(args []string) ([]string, error) {
	if len(args) > 0 {
		seen := make(map[string]bool)
		var urls []string
		for _, a := range args {
			u := data.CanonicalURL(a)
			if !seen[u] {
				seen[u] = true
				urls = append(urls, u)
			}
		}
		return urls, nil
	}

	urls, err := data.LoadNovelList(cfg.NovelList)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return urls, err
}

func runTUI(ctx context.Context, p *pipeline, urls []string) (*services.RunResult, error) {
	lib := app.Library{
		Tree: p.tree,
		EPub: integrations.NewEPubBuilder(cfg.OutputDir),
	}
	// a nil *Repository must not end up inside the interface
	if p.catalog != nil {
		lib.Catalog = screens.Catalog(p.catalog)
	}
	archiver := p.controller.Archiver()
	result, err := app.NewApp(ctx, p.controller, archiver.GetProgressChannel(), urls, lib).Run()
	if err != nil {
		// the program failed and the run may still be sending
		return nil, err
	}
	// the program only exits after the run has finished
	archiver.Close()
	return result, nil
}

func runPlain(ctx context.Context, p *pipeline, urls []string) (*services.RunResult, error) {
	archiver := p.controller.Archiver()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for progress := range archiver.GetProgressChannel() {
			printProgress(progress)
		}
	}()

	result, err := p.controller.Run(ctx, urls)
	archiver.Close()
	wg.Wait()
	return result, err
}

func printProgress(progress services.Progress) {
	name := progress.NovelTitle
	if name == "" {
		name = progress.NovelURL
	}
	name = truncateString(name, 40)
	style := styles.StatusStyle(string(progress.State))

	switch progress.State {
	case services.StateFetchingTOC:
		fmt.Printf("🔍 %s\n", name)
	case services.StateAdvancingLedger:
		if progress.Chapter == 0 {
			return
		}
		line := fmt.Sprintf("  ✔ chapter %d/%d", progress.Chapter, progress.Total)
		if progress.FailedChunks > 0 {
			line += styles.StatusPaused.Render(fmt.Sprintf(" (%d untranslated chunks)", progress.FailedChunks))
		}
		fmt.Println(line)
	case services.StatePaused:
		fmt.Println(style.Render(fmt.Sprintf("  ⏸  pausing after chapter %d", progress.Chapter)))
	case services.StateDone:
		fmt.Println(style.Render(fmt.Sprintf("✅ %s: up to date at chapter %d", name, progress.Chapter)))
	case services.StateFailed:
		fmt.Println(style.Render(fmt.Sprintf("❌ %s: %v", name, progress.Error)))
	}
}

func printSummary(result *services.RunResult) {
	fmt.Println()
	fmt.Println(styles.TitleStyle.Render(fmt.Sprintf("📖 %d chapters written across %d novels", result.Written(), len(result.Novels))))
	for _, n := range result.Novels {
		name := n.Title
		if name == "" {
			name = n.URL
		}
		line := fmt.Sprintf("%-40s %4d → %-4d", truncateString(name, 40), n.StartChapter, n.LastChapter)
		if n.FailedChunks > 0 {
			line += fmt.Sprintf("  %d untranslated chunks", n.FailedChunks)
		}
		if n.Placeholders > 0 {
			line += fmt.Sprintf("  %d placeholders", n.Placeholders)
		}
		if n.Err != nil {
			line += "  " + n.Err.Error()
		}
		fmt.Println(styles.StatusStyle(string(n.State)).Render(line))
	}
}
