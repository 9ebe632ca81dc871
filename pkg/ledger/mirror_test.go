package ledger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/kerbaras/novels/pkg/integrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLMirror(t *testing.T) {
	ctx := context.Background()

	t.Run("pull writes the stored content", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta("SELECT content FROM ledger_entries WHERE name = $1")).
			WithArgs("history.txt").
			WillReturnRows(sqlmock.NewRows([]string{"content"}).AddRow("https://kakuyomu.jp/works/1  |  4\n"))

		dst := filepath.Join(t.TempDir(), "history.txt")
		require.NoError(t, NewSQLMirror(db, "history.txt").Pull(ctx, dst))

		raw, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "https://kakuyomu.jp/works/1  |  4\n", string(raw))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("pull without a row", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta("SELECT content FROM ledger_entries")).
			WithArgs("history.txt").
			WillReturnRows(sqlmock.NewRows([]string{"content"}))

		err = NewSQLMirror(db, "history.txt").Pull(ctx, filepath.Join(t.TempDir(), "history.txt"))
		assert.ErrorIs(t, err, ErrRemoteNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("push upserts the file", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		src := filepath.Join(t.TempDir(), "history.txt")
		require.NoError(t, os.WriteFile(src, []byte("https://kakuyomu.jp/works/1  |  9\n"), 0644))

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ledger_entries")).
			WithArgs("history.txt", "https://kakuyomu.jp/works/1  |  9\n").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewSQLMirror(db, "history.txt").Push(ctx, src))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("init creates the table", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS ledger_entries")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, NewSQLMirror(db, "history.txt").Init(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRcloneMirror(t *testing.T) {
	ctx := context.Background()

	t.Run("pull maps missing objects", func(t *testing.T) {
		rc := integrations.NewRclone("rclone").WithRunner(func(context.Context, string, ...string) ([]byte, error) {
			return []byte("ERROR : object not found"), errors.New("exit status 4")
		})
		err := NewRcloneMirror(rc, "drive:").Pull(ctx, "/tmp/history.txt")
		assert.ErrorIs(t, err, ErrRemoteNotFound)
	})

	t.Run("push copies to the remote file", func(t *testing.T) {
		var got []string
		rc := integrations.NewRclone("rclone").WithRunner(func(_ context.Context, _ string, args ...string) ([]byte, error) {
			got = args
			return nil, nil
		})
		require.NoError(t, NewRcloneMirror(rc, "drive:novels").Push(ctx, "/tmp/history.txt"))
		assert.Equal(t, []string{"copyto", "/tmp/history.txt", "drive:novels/history.txt"}, got)
	})
}
