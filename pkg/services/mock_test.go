package services

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/kerbaras/novels/pkg/data"
	"github.com/kerbaras/novels/pkg/integrations"
	"github.com/kerbaras/novels/pkg/ledger"
	"github.com/kerbaras/novels/pkg/sources"
	"github.com/kerbaras/novels/pkg/translate"
)

// Mock implementations for testing

type mockSource struct {
	fetchNovelFunc   func(ctx context.Context, novelURL string) (*data.Novel, error)
	fetchChapterFunc func(ctx context.Context, ref data.ChapterRef) (*data.Chapter, error)

	mu      sync.Mutex
	fetched []int
}

func (m *mockSource) Name() string            { return "mock" }
func (m *mockSource) Matches(u *url.URL) bool { return true }

func (m *mockSource) FetchNovel(ctx context.Context, novelURL string) (*data.Novel, error) {
	if m.fetchNovelFunc != nil {
		return m.fetchNovelFunc(ctx, novelURL)
	}
	return nil, fmt.Errorf("no novel")
}

func (m *mockSource) FetchChapter(ctx context.Context, ref data.ChapterRef) (*data.Chapter, error) {
	m.mu.Lock()
	m.fetched = append(m.fetched, ref.Index)
	m.mu.Unlock()
	if m.fetchChapterFunc != nil {
		return m.fetchChapterFunc(ctx, ref)
	}
	return &data.Chapter{Index: ref.Index, Title: ref.Title, SourceText: fmt.Sprintf("本文%d。", ref.Index)}, nil
}

// novelWith returns a source serving a novel of n chapters
func novelWith(novelURL string, n int) *mockSource {
	return &mockSource{
		fetchNovelFunc: func(_ context.Context, u string) (*data.Novel, error) {
			novel := &data.Novel{ID: data.CanonicalURL(u), Title: "テスト", Source: "mock"}
			for i := 1; i <= n; i++ {
				novel.Chapters = append(novel.Chapters, data.ChapterRef{
					Index: i,
					URL:   fmt.Sprintf("%s/%d", novelURL, i),
					Title: fmt.Sprintf("第%d話", i),
				})
			}
			return novel, nil
		},
	}
}

type mockResolver struct {
	sources map[string]sources.Source
}

func (m *mockResolver) For(u string) (sources.Source, error) {
	if s, ok := m.sources[u]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", sources.ErrUnsupported, u)
}

type mockTranslator struct {
	translateChapterFunc func(ctx context.Context, index int, text string) translate.ChapterTranslation
	calls                []int
}

func (m *mockTranslator) TranslateChapter(ctx context.Context, index int, text string) translate.ChapterTranslation {
	m.calls = append(m.calls, index)
	if m.translateChapterFunc != nil {
		return m.translateChapterFunc(ctx, index, text)
	}
	return translate.ChapterTranslation{Text: fmt.Sprintf("Body %d.", index), Chunks: 1}
}

func (m *mockTranslator) TranslateLine(_ context.Context, line string) (string, bool) {
	return "EN " + line, true
}

type writtenFile struct {
	lang    integrations.Language
	index   int
	heading string
	body    string
}

type mockWriter struct {
	writeFunc func(novelTitle string, lang integrations.Language, index int, heading, body string) error
	files     []writtenFile
}

func (m *mockWriter) WriteChapter(novelTitle string, lang integrations.Language, index int, heading, body string) (string, error) {
	if m.writeFunc != nil {
		if err := m.writeFunc(novelTitle, lang, index, heading, body); err != nil {
			return "", err
		}
	}
	m.files = append(m.files, writtenFile{lang: lang, index: index, heading: heading, body: body})
	return fmt.Sprintf("%s/%s/%03d.txt", novelTitle, lang, index), nil
}

type mockStore struct {
	loadFunc       func(ctx context.Context) (*ledger.Ledger, error)
	saveFunc       func(ctx context.Context, l *ledger.Ledger) error
	checkpointFunc func(l *ledger.Ledger) error
	checkpoints    []string
	saves          int
}

func (m *mockStore) Load(ctx context.Context) (*ledger.Ledger, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx)
	}
	return ledger.New(), nil
}

func (m *mockStore) Save(ctx context.Context, l *ledger.Ledger) error {
	m.saves++
	if m.saveFunc != nil {
		return m.saveFunc(ctx, l)
	}
	return nil
}

func (m *mockStore) Checkpoint(l *ledger.Ledger) error {
	m.checkpoints = append(m.checkpoints, l.String())
	if m.checkpointFunc != nil {
		return m.checkpointFunc(l)
	}
	return nil
}

type mockCatalog struct {
	saveNovelFunc   func(novel *data.Novel) error
	saveChapterFunc func(rec *data.ChapterRecord) error
	chapters        []*data.ChapterRecord
}

func (m *mockCatalog) SaveNovel(novel *data.Novel) error {
	if m.saveNovelFunc != nil {
		return m.saveNovelFunc(novel)
	}
	return nil
}

func (m *mockCatalog) SaveChapter(rec *data.ChapterRecord) error {
	m.chapters = append(m.chapters, rec)
	if m.saveChapterFunc != nil {
		return m.saveChapterFunc(rec)
	}
	return nil
}

type mockSyncer struct {
	syncFunc func(ctx context.Context, dir string) error
	dirs     []string
}

func (m *mockSyncer) Sync(ctx context.Context, dir string) error {
	m.dirs = append(m.dirs, dir)
	if m.syncFunc != nil {
		return m.syncFunc(ctx, dir)
	}
	return nil
}

type mockRuns struct {
	started  int
	finished []*data.Run
}

func (m *mockRuns) StartRun(novels int) (*data.Run, error) {
	m.started++
	return &data.Run{ID: "run-1", Novels: novels, Status: "running"}, nil
}

func (m *mockRuns) FinishRun(run *data.Run) error {
	m.finished = append(m.finished, run)
	return nil
}

func noSleep(context.Context, time.Duration) error { return nil }

// mockBackend is a translate.Backend for wiring the real translation chain
type mockBackend struct {
	translateFunc func(ctx context.Context, text string) (string, error)
}

func (m *mockBackend) Name() string { return "mock" }

func (m *mockBackend) Translate(ctx context.Context, text string) (string, error) {
	return m.translateFunc(ctx, text)
}
