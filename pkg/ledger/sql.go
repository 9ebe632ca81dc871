package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "github.com/lib/pq"

	"github.com/kerbaras/novels/pkg/utils"
)

const sqlSchema = `CREATE TABLE IF NOT EXISTS ledger_entries (
	name       TEXT PRIMARY KEY,
	content    TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// SQLMirror stores the ledger file as a row of a PostgreSQL table
type SQLMirror struct {
	db   *sql.DB
	name string
}

// OpenPostgresMirror connects to dsn and makes sure the ledger table exists
func OpenPostgresMirror(ctx context.Context, dsn, name string) (*SQLMirror, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}
	m := NewSQLMirror(db, name)
	if err := m.Init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return m, nil
}

func NewSQLMirror(db *sql.DB, name string) *SQLMirror {
	return &SQLMirror{db: db, name: name}
}

func (m *SQLMirror) Init(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, sqlSchema); err != nil {
		return fmt.Errorf("failed to create ledger table: %w", err)
	}
	return nil
}

func (m *SQLMirror) Pull(ctx context.Context, dst string) error {
	var content string
	err := m.db.QueryRowContext(ctx, `SELECT content FROM ledger_entries WHERE name = $1`, m.name).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRemoteNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read ledger row: %w", err)
	}
	return utils.WriteFileAtomic(dst, []byte(content), 0644)
}

func (m *SQLMirror) Push(ctx context.Context, src string) error {
	content, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read ledger: %w", err)
	}
	_, err = m.db.ExecContext(ctx, `
		INSERT INTO ledger_entries (name, content, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET content = EXCLUDED.content, updated_at = now()`,
		m.name, string(content))
	if err != nil {
		return fmt.Errorf("failed to write ledger row: %w", err)
	}
	return nil
}

func (m *SQLMirror) Close() error {
	return m.db.Close()
}
