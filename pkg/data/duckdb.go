package data

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb/v2"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverDuckDB = "duckdb"
	DriverSQLite = "sqlite3"
)

// ErrNotFound is returned when a catalog row does not exist
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS novels (
	id            VARCHAR PRIMARY KEY,
	title         VARCHAR NOT NULL,
	source        VARCHAR NOT NULL,
	chapter_total INTEGER NOT NULL,
	updated_at    TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS chapters (
	novel_id      VARCHAR NOT NULL,
	idx           INTEGER NOT NULL,
	title         VARCHAR NOT NULL,
	source_path   VARCHAR NOT NULL,
	english_path  VARCHAR NOT NULL,
	failed_chunks INTEGER NOT NULL,
	placeholder   BOOLEAN NOT NULL,
	archived_at   TIMESTAMP NOT NULL,
	PRIMARY KEY (novel_id, idx)
);
CREATE TABLE IF NOT EXISTS runs (
	id          VARCHAR PRIMARY KEY,
	started_at  TIMESTAMP NOT NULL,
	finished_at TIMESTAMP,
	novels      INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	status      VARCHAR NOT NULL
);`

// InitCatalog opens the catalog database and creates the schema
func InitCatalog(driver, path string) (*sql.DB, error) {
	switch driver {
	case DriverDuckDB, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported catalog driver %q", driver)
	}

	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	// one statement per Exec for sqlite3
	for _, stmt := range splitStatements(schema) {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create catalog schema: %w", err)
		}
	}
	return db, nil
}

// Repository is the archive catalog: which novels were seen and which chapters were written
type Repository struct {
	db *sql.DB
}

// NewRepository opens the catalog with the given driver ("duckdb" or "sqlite3")
func NewRepository(driver, path string) (*Repository, error) {
	db, err := InitCatalog(driver, path)
	if err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// NovelSummary is a catalog novel with its archived chapter count
type NovelSummary struct {
	Novel
	ChapterTotal int
	Archived     int
	UpdatedAt    time.Time
}

func (r *Repository) SaveNovel(novel *Novel) error {
	_, err := r.db.Exec(`
		INSERT INTO novels (id, title, source, chapter_total, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			source = excluded.source,
			chapter_total = excluded.chapter_total,
			updated_at = excluded.updated_at`,
		novel.ID, novel.Title, novel.Source, len(novel.Chapters), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save novel: %w", err)
	}
	return nil
}

func (r *Repository) SaveChapter(rec *ChapterRecord) error {
	if rec.ArchivedAt.IsZero() {
		rec.ArchivedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(`
		INSERT INTO chapters (novel_id, idx, title, source_path, english_path, failed_chunks, placeholder, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (novel_id, idx) DO UPDATE SET
			title = excluded.title,
			source_path = excluded.source_path,
			english_path = excluded.english_path,
			failed_chunks = excluded.failed_chunks,
			placeholder = excluded.placeholder,
			archived_at = excluded.archived_at`,
		rec.NovelID, rec.Index, rec.Title, rec.SourcePath, rec.EnglishPath,
		rec.FailedChunks, rec.Placeholder, rec.ArchivedAt)
	if err != nil {
		return fmt.Errorf("failed to save chapter %d: %w", rec.Index, err)
	}
	return nil
}

func (r *Repository) GetNovel(id string) (*NovelSummary, error) {
	row := r.db.QueryRow(`
		SELECT n.id, n.title, n.source, n.chapter_total, n.updated_at,
			(SELECT COUNT(*) FROM chapters c WHERE c.novel_id = n.id)
		FROM novels n WHERE n.id = ?`, id)

	var s NovelSummary
	err := row.Scan(&s.ID, &s.Title, &s.Source, &s.ChapterTotal, &s.UpdatedAt, &s.Archived)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("novel %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get novel: %w", err)
	}
	return &s, nil
}

func (r *Repository) ListNovels() ([]*NovelSummary, error) {
	rows, err := r.db.Query(`
		SELECT n.id, n.title, n.source, n.chapter_total, n.updated_at,
			(SELECT COUNT(*) FROM chapters c WHERE c.novel_id = n.id)
		FROM novels n ORDER BY n.title`)
	if err != nil {
		return nil, fmt.Errorf("failed to list novels: %w", err)
	}
	defer rows.Close()

	var novels []*NovelSummary
	for rows.Next() {
		var s NovelSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Source, &s.ChapterTotal, &s.UpdatedAt, &s.Archived); err != nil {
			return nil, fmt.Errorf("failed to scan novel: %w", err)
		}
		novels = append(novels, &s)
	}
	return novels, rows.Err()
}

func (r *Repository) ListChapters(novelID string) ([]*ChapterRecord, error) {
	rows, err := r.db.Query(`
		SELECT novel_id, idx, title, source_path, english_path, failed_chunks, placeholder, archived_at
		FROM chapters WHERE novel_id = ? ORDER BY idx`, novelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	defer rows.Close()

	var chapters []*ChapterRecord
	for rows.Next() {
		var c ChapterRecord
		if err := rows.Scan(&c.NovelID, &c.Index, &c.Title, &c.SourcePath, &c.EnglishPath,
			&c.FailedChunks, &c.Placeholder, &c.ArchivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chapter: %w", err)
		}
		chapters = append(chapters, &c)
	}
	return chapters, rows.Err()
}

// StartRun records a new pipeline run and returns it with a fresh ID
func (r *Repository) StartRun(novels int) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Novels:    novels,
		Status:    "running",
	}
	_, err := r.db.Exec(`INSERT INTO runs (id, started_at, novels, failed, status) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.Novels, 0, run.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}
	return run, nil
}

func (r *Repository) FinishRun(run *Run) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(`UPDATE runs SET finished_at = ?, failed = ?, status = ? WHERE id = ?`,
		run.FinishedAt, run.Failed, run.Status, run.ID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

func (r *Repository) GetRun(id string) (*Run, error) {
	var run Run
	var finished sql.NullTime
	err := r.db.QueryRow(`SELECT id, started_at, finished_at, novels, failed, status FROM runs WHERE id = ?`, id).
		Scan(&run.ID, &run.StartedAt, &finished, &run.Novels, &run.Failed, &run.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	run.FinishedAt = finished.Time
	return &run, nil
}

func splitStatements(script string) []string {
	var stmts []string
	for _, s := range strings.Split(script, ";") {
		if s = strings.TrimSpace(s); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
