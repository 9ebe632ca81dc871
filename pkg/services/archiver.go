package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kerbaras/novels/pkg/data"
	"github.com/kerbaras/novels/pkg/integrations"
	"github.com/kerbaras/novels/pkg/ledger"
	"github.com/kerbaras/novels/pkg/sources"
	"github.com/kerbaras/novels/pkg/translate"
)

const (
	DefaultPauseEvery    = 300
	DefaultPauseDuration = 30 * time.Second
	DefaultPlaceholder   = "[本文が取得できませんでした]"
)

// SourceResolver picks the site reader for a novel URL
type SourceResolver interface {
	For(url string) (sources.Source, error)
}

// ChapterTranslator translates chapter bodies and titles
type ChapterTranslator interface {
	TranslateChapter(ctx context.Context, index int, text string) translate.ChapterTranslation
	TranslateLine(ctx context.Context, line string) (string, bool)
}

// Checkpointer persists the ledger locally after every chapter
type Checkpointer interface {
	Checkpoint(l *ledger.Ledger) error
}

// Catalog records what was archived
type Catalog interface {
	SaveNovel(novel *data.Novel) error
	SaveChapter(rec *data.ChapterRecord) error
}

type ArchiverOptions struct {
	PauseEvery    int
	PauseDuration time.Duration
	Placeholder   string
	Catalog       Catalog
	Logger        *slog.Logger
	// Sleep waits between batches; it must return early with ctx.Err() on cancellation
	Sleep func(ctx context.Context, d time.Duration) error
}

// Archiver walks novels chapter by chapter: fetch, translate, write both files, advance
// the ledger. Everything runs on the caller's goroutine; progress is published on a channel.
type Archiver struct {
	sources    SourceResolver
	translator ChapterTranslator
	writer     integrations.ChapterWriter
	store      Checkpointer
	opts       ArchiverOptions
	logger     *slog.Logger

	progressChan chan Progress
	closeOnce    sync.Once
	sinceBreak   int
}

func NewArchiver(resolver SourceResolver, translator ChapterTranslator, writer integrations.ChapterWriter, store Checkpointer, opts ArchiverOptions) *Archiver {
	if opts.PauseEvery == 0 {
		opts.PauseEvery = DefaultPauseEvery
	}
	if opts.PauseDuration == 0 {
		opts.PauseDuration = DefaultPauseDuration
	}
	if opts.Placeholder == "" {
		opts.Placeholder = DefaultPlaceholder
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Archiver{
		sources:      resolver,
		translator:   translator,
		writer:       writer,
		store:        store,
		opts:         opts,
		logger:       logger,
		progressChan: make(chan Progress, 100),
	}
}

// GetProgressChannel returns the channel for receiving progress updates
func (a *Archiver) GetProgressChannel() <-chan Progress {
	return a.progressChan
}

// ArchiveAll processes urls in order. A failing novel is reported in its result and the
// run moves on; cancellation stops the run after the current step.
func (a *Archiver) ArchiveAll(ctx context.Context, l *ledger.Ledger, urls []string) *RunResult {
	result := &RunResult{StartedAt: time.Now()}
	for _, url := range urls {
		if ctx.Err() != nil {
			break
		}
		result.Novels = append(result.Novels, a.ArchiveNovel(ctx, l, url))
	}
	result.FinishedAt = time.Now()
	return result
}

// ArchiveNovel brings one novel up to date with its table of contents
func (a *Archiver) ArchiveNovel(ctx context.Context, l *ledger.Ledger, url string) NovelResult {
	url = data.CanonicalURL(url)
	res := NovelResult{URL: url, State: StatePending, StartChapter: l.Get(url)}
	res.LastChapter = res.StartChapter
	log := a.logger.With("novel", url)

	src, err := a.sources.For(url)
	if err != nil {
		return a.fail(ctx, res, err)
	}
	res.Source = src.Name()

	a.step(&res, StateFetchingTOC, 0)
	novel, err := src.FetchNovel(ctx, url)
	if err != nil {
		return a.fail(ctx, res, fmt.Errorf("failed to fetch table of contents: %w", err))
	}
	res.Title = novel.Title
	res.Total = len(novel.Chapters)
	a.recordNovel(ctx, novel)

	log.InfoContext(ctx, "novel loaded", "title", novel.Title, "chapters", res.Total, "resume_from", res.StartChapter+1)

	for _, ref := range novel.Chapters {
		if ref.Index <= res.LastChapter {
			continue
		}
		if err := ctx.Err(); err != nil {
			return a.fail(ctx, res, err)
		}
		if err := a.archiveChapter(ctx, l, src, novel, ref, &res); err != nil {
			return a.fail(ctx, res, fmt.Errorf("chapter %d: %w", ref.Index, err))
		}
		if err := a.maybePause(ctx, &res); err != nil {
			return a.fail(ctx, res, err)
		}
	}

	a.step(&res, StateDone, res.LastChapter)
	log.InfoContext(ctx, "novel done", "written", res.Written, "failed_chunks", res.FailedChunks)
	return res
}

func (a *Archiver) archiveChapter(ctx context.Context, l *ledger.Ledger, src sources.Source, novel *data.Novel, ref data.ChapterRef, res *NovelResult) error {
	a.step(res, StateFetchingChapter, ref.Index)

	chapter, err := src.FetchChapter(ctx, ref)
	var parseErr *sources.ParseError
	switch {
	case err == nil:
	case errors.As(err, &parseErr):
		a.logger.WarnContext(ctx, "chapter body missing, writing placeholder", "novel", res.URL, "chapter", ref.Index, "error", err)
		if chapter == nil {
			chapter = &data.Chapter{Index: ref.Index, Title: ref.Title}
		}
		chapter.SourceText = a.opts.Placeholder
		chapter.Placeholder = true
	default:
		return err
	}
	chapter.NovelID = novel.ID
	chapter.Index = ref.Index
	if chapter.Title == "" {
		chapter.Title = ref.Title
	}
	if chapter.Title == "" {
		chapter.Title = fmt.Sprintf("%03d", ref.Index)
	}

	a.step(res, StateTranslating, ref.Index)
	if chapter.Placeholder {
		chapter.TranslatedText = chapter.SourceText
	} else {
		tr := a.translator.TranslateChapter(ctx, ref.Index, chapter.SourceText)
		chapter.TranslatedText = tr.Text
		chapter.FailedChunks = tr.FailedChunks
	}
	chapter.TranslatedName, _ = a.translator.TranslateLine(ctx, chapter.Title)
	// an interrupted translation is not a failed one, the chapter is redone next run
	if err := ctx.Err(); err != nil {
		return err
	}

	a.step(res, StateWriting, ref.Index)
	jpPath, err := a.writer.WriteChapter(novel.Title, integrations.Japanese, ref.Index, chapter.Title, chapter.SourceText)
	if err != nil {
		return err
	}
	enPath, err := a.writer.WriteChapter(novel.Title, integrations.English, ref.Index, chapter.TranslatedName, chapter.TranslatedText)
	if err != nil {
		return err
	}

	a.step(res, StateAdvancingLedger, ref.Index)
	l.Advance(res.URL, ref.Index)
	if err := a.store.Checkpoint(l); err != nil {
		return fmt.Errorf("failed to checkpoint ledger: %w", err)
	}

	res.LastChapter = ref.Index
	res.Written++
	res.FailedChunks += chapter.FailedChunks
	if chapter.Placeholder {
		res.Placeholders++
	}
	a.sendProgress(Progress{
		NovelURL:     res.URL,
		NovelTitle:   res.Title,
		Chapter:      ref.Index,
		Total:        res.Total,
		State:        StateAdvancingLedger,
		FailedChunks: chapter.FailedChunks,
	})

	a.recordChapter(ctx, chapter, jpPath, enPath)
	return nil
}

// maybePause sleeps after every PauseEvery chapters written in this run
func (a *Archiver) maybePause(ctx context.Context, res *NovelResult) error {
	if a.opts.PauseEvery < 0 {
		return nil
	}
	a.sinceBreak++
	if a.sinceBreak < a.opts.PauseEvery {
		return nil
	}
	a.sinceBreak = 0
	a.logger.InfoContext(ctx, "pausing", "duration", a.opts.PauseDuration)
	a.step(res, StatePaused, res.LastChapter)
	return a.opts.Sleep(ctx, a.opts.PauseDuration)
}

func (a *Archiver) recordNovel(ctx context.Context, novel *data.Novel) {
	if a.opts.Catalog == nil {
		return
	}
	if err := a.opts.Catalog.SaveNovel(novel); err != nil {
		a.logger.WarnContext(ctx, "catalog update failed", "novel", novel.ID, "error", err)
	}
}

func (a *Archiver) recordChapter(ctx context.Context, chapter *data.Chapter, jpPath, enPath string) {
	if a.opts.Catalog == nil {
		return
	}
	err := a.opts.Catalog.SaveChapter(&data.ChapterRecord{
		NovelID:      chapter.NovelID,
		Index:        chapter.Index,
		Title:        chapter.Title,
		SourcePath:   jpPath,
		EnglishPath:  enPath,
		FailedChunks: chapter.FailedChunks,
		Placeholder:  chapter.Placeholder,
	})
	if err != nil {
		a.logger.WarnContext(ctx, "catalog update failed", "novel", chapter.NovelID, "chapter", chapter.Index, "error", err)
	}
}

func (a *Archiver) step(res *NovelResult, state State, chapter int) {
	res.State = state
	a.sendProgress(Progress{
		NovelURL:   res.URL,
		NovelTitle: res.Title,
		Chapter:    chapter,
		Total:      res.Total,
		State:      state,
	})
}

func (a *Archiver) fail(ctx context.Context, res NovelResult, err error) NovelResult {
	res.State = StateFailed
	res.Err = err
	a.logger.ErrorContext(ctx, "novel failed", "novel", res.URL, "last_chapter", res.LastChapter, "error", err)
	a.sendProgress(Progress{
		NovelURL:   res.URL,
		NovelTitle: res.Title,
		Chapter:    res.LastChapter,
		Total:      res.Total,
		State:      StateFailed,
		Error:      err,
	})
	return res
}

// sendProgress sends a progress update (non-blocking)
func (a *Archiver) sendProgress(progress Progress) {
	select {
	case a.progressChan <- progress:
	default:
		// Channel full, skip this update
	}
}

// Close ends the progress stream. No run may be in progress.
func (a *Archiver) Close() {
	a.closeOnce.Do(func() { close(a.progressChan) })
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
