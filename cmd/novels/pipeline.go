package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/kerbaras/novels/pkg/config"
	"github.com/kerbaras/novels/pkg/data"
	"github.com/kerbaras/novels/pkg/integrations"
	"github.com/kerbaras/novels/pkg/ledger"
	"github.com/kerbaras/novels/pkg/services"
	"github.com/kerbaras/novels/pkg/sources"
	"github.com/kerbaras/novels/pkg/translate"
)

// pipeline is every component of a run, built from the configuration
type pipeline struct {
	controller *services.Controller
	tree       *integrations.TreeWriter
	catalog    *data.Repository
	closers    []func() error
}

func (p *pipeline) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		errs = append(errs, p.closers[i]())
	}
	return errors.Join(errs...)
}

// dryRun swaps the translator for the echo backend and turns off every remote
func newPipeline(ctx context.Context, cfg *config.Config, dryRun bool) (*pipeline, error) {
	p := &pipeline{tree: integrations.NewTreeWriter(cfg.OutputDir, cfg.Pipeline.BucketSize)}

	backend, err := newBackend(ctx, cfg, dryRun)
	if err != nil {
		return nil, err
	}
	if c, ok := backend.(interface{ Close() error }); ok {
		p.closers = append(p.closers, c.Close)
	}

	client := translate.NewClient(backend, translate.Options{
		Attempts:   cfg.Translate.Attempts,
		Timeout:    cfg.Translate.Timeout,
		RetryDelay: cfg.Translate.RetryDelay,
		Logger:     logger,
	})
	repairer := translate.NewRepairer(client,
		translate.WithThreshold(cfg.Translate.Threshold),
		translate.WithFailureMarker(cfg.Translate.FailureMarker),
		translate.WithLogger(logger),
	)
	translator := translate.NewChapterTranslator(repairer, cfg.Segment.Limit)

	store, err := newLedgerStore(ctx, cfg, dryRun, p)
	if err != nil {
		p.Close()
		return nil, err
	}

	var catalog services.Catalog
	var runs services.RunRecorder
	if cfg.CatalogEnabled() {
		p.catalog, err = openCatalog(cfg)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.closers = append(p.closers, p.catalog.Close)
		catalog, runs = p.catalog, p.catalog
	}

	fetcher := sources.NewFetcher(sources.FetcherOptions{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.Fetch.Timeout,
		Rate:      cfg.Fetch.Rate,
	})

	archiver := services.NewArchiver(sources.DefaultRegistry(fetcher), translator, p.tree, store, services.ArchiverOptions{
		PauseEvery:    cfg.Pipeline.PauseEvery,
		PauseDuration: cfg.Pipeline.PauseDuration,
		Placeholder:   cfg.Pipeline.Placeholder,
		Catalog:       catalog,
		Logger:        logger,
	})

	var syncer integrations.Syncer = integrations.NopSyncer{}
	if cfg.Sync.Enabled && !dryRun {
		syncer = integrations.NewRcloneSyncer(integrations.NewRclone(cfg.Sync.Rclone), cfg.Sync.Remote)
	}

	p.controller = services.NewController(archiver, store, syncer, cfg.OutputDir, runs, logger)
	return p, nil
}

func newBackend(ctx context.Context, cfg *config.Config, dryRun bool) (translate.Backend, error) {
	if dryRun {
		return translate.EchoBackend{}, nil
	}
	switch cfg.Translate.Backend {
	case config.BackendGemini:
		return translate.NewGeminiBackend(ctx, cfg.Translate.GeminiAPIKey, cfg.Translate.GeminiModel)
	case config.BackendEcho:
		return translate.EchoBackend{}, nil
	default:
		return translate.NewExecBackend(cfg.Translate.Command), nil
	}
}

func newLedgerStore(ctx context.Context, cfg *config.Config, dryRun bool, p *pipeline) (*ledger.Store, error) {
	var mirror ledger.Mirror
	switch {
	case dryRun:
	case cfg.Ledger.Mirror == config.MirrorRclone:
		mirror = ledger.NewRcloneMirror(integrations.NewRclone(cfg.Sync.Rclone), cfg.Ledger.Remote)
	case cfg.Ledger.Mirror == config.MirrorPostgres:
		m, err := ledger.OpenPostgresMirror(ctx, cfg.Ledger.DSN, filepath.Base(cfg.Ledger.Path))
		if err != nil {
			return nil, err
		}
		p.closers = append(p.closers, m.Close)
		mirror = m
	}
	return ledger.NewStore(cfg.Ledger.Path, mirror, logger), nil
}

func openCatalog(cfg *config.Config) (*data.Repository, error) {
	repo, err := data.NewRepository(cfg.Catalog.Driver, cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", cfg.Catalog.Path, err)
	}
	return repo, nil
}
