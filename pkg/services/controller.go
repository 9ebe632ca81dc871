package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kerbaras/novels/pkg/data"
	"github.com/kerbaras/novels/pkg/integrations"
	"github.com/kerbaras/novels/pkg/ledger"
)

// LedgerStore loads the ledger at the start of a run and publishes it at the end
type LedgerStore interface {
	Checkpointer
	Load(ctx context.Context) (*ledger.Ledger, error)
	Save(ctx context.Context, l *ledger.Ledger) error
}

// RunRecorder keeps the run history in the catalog
type RunRecorder interface {
	StartRun(novels int) (*data.Run, error)
	FinishRun(run *data.Run) error
}

// Controller runs the whole pipeline: load ledger, archive, publish ledger, sync the tree
type Controller struct {
	archiver *Archiver
	store    LedgerStore
	syncer   integrations.Syncer
	outDir   string
	runs     RunRecorder
	logger   *slog.Logger
}

func NewController(archiver *Archiver, store LedgerStore, syncer integrations.Syncer, outDir string, runs RunRecorder, logger *slog.Logger) *Controller {
	if syncer == nil {
		syncer = integrations.NopSyncer{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{archiver: archiver, store: store, syncer: syncer, outDir: outDir, runs: runs, logger: logger}
}

func (c *Controller) Archiver() *Archiver {
	return c.archiver
}

// Run archives urls. Per-novel failures are reported in the result only; the returned
// error is reserved for ledger load or publish failures and for the final tree sync.
func (c *Controller) Run(ctx context.Context, urls []string) (*RunResult, error) {
	l, err := c.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	c.logger.InfoContext(ctx, "run started", "novels", len(urls), "ledger_entries", l.Len())

	run := c.startRun(ctx, len(urls))
	result := c.archiver.ArchiveAll(ctx, l, urls)

	// the ledger is published even when the run was interrupted
	if err := c.store.Save(context.WithoutCancel(ctx), l); err != nil {
		c.finishRun(ctx, run, result, "error")
		return result, err
	}

	if ctx.Err() != nil {
		c.finishRun(ctx, run, result, "interrupted")
		return result, ctx.Err()
	}

	if err := c.syncer.Sync(ctx, c.outDir); err != nil {
		c.finishRun(ctx, run, result, "error")
		return result, err
	}

	status := "completed"
	if result.Failed() > 0 {
		status = "partial"
	}
	c.finishRun(ctx, run, result, status)
	c.logger.InfoContext(ctx, "run finished", "written", result.Written(), "failed_novels", result.Failed())
	return result, nil
}

func (c *Controller) startRun(ctx context.Context, novels int) *data.Run {
	if c.runs == nil {
		return nil
	}
	run, err := c.runs.StartRun(novels)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to record run", "error", err)
		return nil
	}
	return run
}

func (c *Controller) finishRun(ctx context.Context, run *data.Run, result *RunResult, status string) {
	if c.runs == nil || run == nil {
		return
	}
	run.Status = status
	run.Failed = result.Failed()
	if err := c.runs.FinishRun(run); err != nil {
		c.logger.WarnContext(ctx, "failed to record run", "error", err)
	}
}
