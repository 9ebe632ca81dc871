package services

import (
	"context"
	"errors"
	"testing"

	"github.com/kerbaras/novels/pkg/ledger"
	"github.com/kerbaras/novels/pkg/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(store *mockStore, syncer *mockSyncer, runs *mockRuns, srcs map[string]sources.Source) *Controller {
	a := newTestArchiver(&mockResolver{sources: srcs}, &mockTranslator{}, &mockWriter{}, store, ArchiverOptions{})
	return NewController(a, store, syncer, "/tmp/novels", runs, nil)
}

func TestControllerRun(t *testing.T) {
	t.Run("archives, publishes the ledger and syncs the tree", func(t *testing.T) {
		var saved string
		store := &mockStore{saveFunc: func(_ context.Context, l *ledger.Ledger) error {
			saved = l.String()
			return nil
		}}
		syncer := &mockSyncer{}
		runs := &mockRuns{}
		c := newTestController(store, syncer, runs, map[string]sources.Source{novelA: novelWith(novelA, 2)})

		result, err := c.Run(context.Background(), []string{novelA})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Written())
		assert.Equal(t, novelA+"  |  2\n", saved)
		assert.Equal(t, []string{"/tmp/novels"}, syncer.dirs)

		require.Len(t, runs.finished, 1)
		assert.Equal(t, "completed", runs.finished[0].Status)
	})

	t.Run("resumes from the loaded ledger", func(t *testing.T) {
		source := novelWith(novelA, 4)
		store := &mockStore{loadFunc: func(context.Context) (*ledger.Ledger, error) {
			l := ledger.New()
			l.Advance(novelA, 3)
			return l, nil
		}}
		c := newTestController(store, &mockSyncer{}, nil, map[string]sources.Source{novelA: source})

		_, err := c.Run(context.Background(), []string{novelA})
		require.NoError(t, err)
		assert.Equal(t, []int{4}, source.fetched)
	})

	t.Run("novel failures make a partial run", func(t *testing.T) {
		runs := &mockRuns{}
		c := newTestController(&mockStore{}, &mockSyncer{}, runs, map[string]sources.Source{novelA: novelWith(novelA, 1)})

		result, err := c.Run(context.Background(), []string{novelA, "https://example.com/unknown"})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Failed())
		assert.Equal(t, "partial", runs.finished[0].Status)
		assert.Equal(t, 1, runs.finished[0].Failed)
	})

	t.Run("ledger push failure is fatal", func(t *testing.T) {
		store := &mockStore{saveFunc: func(context.Context, *ledger.Ledger) error {
			return &ledger.SyncError{Op: "push", Err: errors.New("remote unavailable")}
		}}
		syncer := &mockSyncer{}
		c := newTestController(store, syncer, nil, map[string]sources.Source{novelA: novelWith(novelA, 1)})

		result, err := c.Run(context.Background(), []string{novelA})
		var syncErr *ledger.SyncError
		require.True(t, errors.As(err, &syncErr))
		require.NotNil(t, result)
		assert.Equal(t, 1, result.Written())
		assert.Empty(t, syncer.dirs, "the tree is not synced after a ledger failure")
	})

	t.Run("tree sync failure is returned", func(t *testing.T) {
		syncer := &mockSyncer{syncFunc: func(context.Context, string) error { return errors.New("rclone missing") }}
		c := newTestController(&mockStore{}, syncer, nil, map[string]sources.Source{novelA: novelWith(novelA, 1)})

		_, err := c.Run(context.Background(), []string{novelA})
		assert.Error(t, err)
	})

	t.Run("load failure stops before archiving", func(t *testing.T) {
		source := novelWith(novelA, 1)
		store := &mockStore{loadFunc: func(context.Context) (*ledger.Ledger, error) {
			return nil, errors.New("permission denied")
		}}
		c := newTestController(store, &mockSyncer{}, nil, map[string]sources.Source{novelA: source})

		_, err := c.Run(context.Background(), []string{novelA})
		assert.Error(t, err)
		assert.Empty(t, source.fetched)
		assert.Equal(t, 0, store.saves)
	})

	t.Run("interrupted run still publishes the ledger", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		store := &mockStore{}
		syncer := &mockSyncer{}
		c := newTestController(store, syncer, nil, map[string]sources.Source{novelA: novelWith(novelA, 1)})

		_, err := c.Run(ctx, []string{novelA})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, store.saves)
		assert.Empty(t, syncer.dirs)
	})
}
