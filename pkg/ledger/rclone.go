package ledger

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/kerbaras/novels/pkg/integrations"
)

// RcloneMirror keeps the ledger file under an rclone remote, with the same file name
type RcloneMirror struct {
	rclone *integrations.Rclone
	remote string
}

func NewRcloneMirror(rclone *integrations.Rclone, remote string) *RcloneMirror {
	return &RcloneMirror{rclone: rclone, remote: remote}
}

func (m *RcloneMirror) Pull(ctx context.Context, dst string) error {
	src := integrations.JoinRemote(m.remote, filepath.Base(dst))
	err := m.rclone.CopyTo(ctx, src, dst)
	if errors.Is(err, integrations.ErrRemoteMissing) {
		return fmt.Errorf("%w: %s", ErrRemoteNotFound, src)
	}
	return err
}

func (m *RcloneMirror) Push(ctx context.Context, src string) error {
	return m.rclone.CopyTo(ctx, src, integrations.JoinRemote(m.remote, filepath.Base(src)))
}
