package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/kerbaras/novels/pkg/utils"
)

// Mirror keeps a remote copy of the ledger file
type Mirror interface {
	// Pull copies the remote ledger to dst. It returns ErrRemoteNotFound when there is none.
	Pull(ctx context.Context, dst string) error
	// Push copies src to the remote
	Push(ctx context.Context, src string) error
}

// NopMirror keeps the ledger local only
type NopMirror struct{}

func (NopMirror) Pull(context.Context, string) error { return ErrRemoteNotFound }
func (NopMirror) Push(context.Context, string) error { return nil }

// Store reads and writes the ledger file and keeps its mirror in step
type Store struct {
	path   string
	mirror Mirror
	logger *slog.Logger
}

func NewStore(path string, mirror Mirror, logger *slog.Logger) *Store {
	if mirror == nil {
		mirror = NopMirror{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, mirror: mirror, logger: logger}
}

// Load reads the local ledger. A missing local file is first hydrated from the mirror;
// when neither exists the ledger starts empty.
func (s *Store) Load(ctx context.Context) (*Ledger, error) {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		switch err := s.mirror.Pull(ctx, s.path); {
		case err == nil:
			s.logger.InfoContext(ctx, "ledger restored from mirror", "path", s.path)
		case errors.Is(err, ErrRemoteNotFound):
			s.logger.DebugContext(ctx, "no remote ledger", "path", s.path)
		default:
			s.logger.WarnContext(ctx, "ledger pull failed, starting without history", "error", err)
		}
	}

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Checkpoint writes the ledger locally without contacting the mirror
func (s *Store) Checkpoint(l *Ledger) error {
	var buf bytes.Buffer
	if err := l.Format(&buf); err != nil {
		return fmt.Errorf("failed to format ledger: %w", err)
	}
	if err := utils.WriteFileAtomic(s.path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	return nil
}

// Save writes the ledger locally and pushes it to the mirror. A failed push is a *SyncError.
func (s *Store) Save(ctx context.Context, l *Ledger) error {
	if err := s.Checkpoint(l); err != nil {
		return err
	}
	if err := s.mirror.Push(ctx, s.path); err != nil {
		return &SyncError{Op: "push", Err: err}
	}
	s.logger.InfoContext(ctx, "ledger pushed", "entries", l.Len())
	return nil
}
