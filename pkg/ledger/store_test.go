package ledger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockMirror struct {
	pullFunc func(ctx context.Context, dst string) error
	pushFunc func(ctx context.Context, src string) error
	pulls    int
	pushes   int
}

func (m *mockMirror) Pull(ctx context.Context, dst string) error {
	m.pulls++
	if m.pullFunc != nil {
		return m.pullFunc(ctx, dst)
	}
	return ErrRemoteNotFound
}

func (m *mockMirror) Push(ctx context.Context, src string) error {
	m.pushes++
	if m.pushFunc != nil {
		return m.pushFunc(ctx, src)
	}
	return nil
}

func TestStoreLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("no local and no remote starts empty", func(t *testing.T) {
		mirror := &mockMirror{}
		store := NewStore(filepath.Join(t.TempDir(), "history.txt"), mirror, nil)

		l, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, l.Len())
		assert.Equal(t, 1, mirror.pulls)
	})

	t.Run("hydrates from the mirror", func(t *testing.T) {
		mirror := &mockMirror{pullFunc: func(_ context.Context, dst string) error {
			return os.WriteFile(dst, []byte("https://kakuyomu.jp/works/1  |  5\n"), 0644)
		}}
		store := NewStore(filepath.Join(t.TempDir(), "history.txt"), mirror, nil)

		l, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, l.Get("https://kakuyomu.jp/works/1"))
	})

	t.Run("pull failure is not fatal", func(t *testing.T) {
		mirror := &mockMirror{pullFunc: func(context.Context, string) error {
			return errors.New("network down")
		}}
		store := NewStore(filepath.Join(t.TempDir(), "history.txt"), mirror, nil)

		l, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, l.Len())
	})

	t.Run("local file wins over the mirror", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history.txt")
		require.NoError(t, os.WriteFile(path, []byte("https://kakuyomu.jp/works/1  |  8\nnot a line\n"), 0644))
		mirror := &mockMirror{}
		store := NewStore(path, mirror, nil)

		l, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 8, l.Get("https://kakuyomu.jp/works/1"))
		assert.Equal(t, 0, mirror.pulls)
	})
}

func TestStoreSave(t *testing.T) {
	ctx := context.Background()

	t.Run("writes locally then pushes", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history.txt")
		var pushed string
		mirror := &mockMirror{pushFunc: func(_ context.Context, src string) error {
			raw, err := os.ReadFile(src)
			pushed = string(raw)
			return err
		}}
		store := NewStore(path, mirror, nil)

		l := New()
		l.Advance("https://kakuyomu.jp/works/1", 2)
		require.NoError(t, store.Save(ctx, l))
		assert.Equal(t, "https://kakuyomu.jp/works/1  |  2\n", pushed)

		reloaded, err := NewStore(path, nil, nil).Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, reloaded.Get("https://kakuyomu.jp/works/1"))
	})

	t.Run("push failure is a sync error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history.txt")
		mirror := &mockMirror{pushFunc: func(context.Context, string) error {
			return errors.New("quota exceeded")
		}}
		store := NewStore(path, mirror, nil)

		l := New()
		l.Advance("https://kakuyomu.jp/works/1", 2)
		err := store.Save(ctx, l)

		var syncErr *SyncError
		require.True(t, errors.As(err, &syncErr))
		assert.Equal(t, "push", syncErr.Op)

		// the local copy is still current
		raw, readErr := os.ReadFile(path)
		require.NoError(t, readErr)
		assert.Equal(t, "https://kakuyomu.jp/works/1  |  2\n", string(raw))
	})

	t.Run("checkpoint stays local", func(t *testing.T) {
		mirror := &mockMirror{}
		store := NewStore(filepath.Join(t.TempDir(), "history.txt"), mirror, nil)

		require.NoError(t, store.Checkpoint(New()))
		assert.Equal(t, 0, mirror.pushes)
	})
}
