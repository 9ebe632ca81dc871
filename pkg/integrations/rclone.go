package integrations

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrRemoteMissing is returned when rclone reports that the source object does not exist
var ErrRemoteMissing = errors.New("remote object not found")

// CommandRunner runs an external program and returns its combined output
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Rclone drives the rclone CLI
type Rclone struct {
	binary string
	run    CommandRunner
}

func NewRclone(binary string) *Rclone {
	if binary == "" {
		binary = "rclone"
	}
	return &Rclone{binary: binary, run: execRunner}
}

// WithRunner replaces how the rclone binary is invoked
func (r *Rclone) WithRunner(run CommandRunner) *Rclone {
	r.run = run
	return r
}

// CopyTo copies a single file to dst, which names the target file
func (r *Rclone) CopyTo(ctx context.Context, src, dst string) error {
	return r.exec(ctx, "copyto", src, dst)
}

// Copy copies the contents of the src directory into dst
func (r *Rclone) Copy(ctx context.Context, src, dst string, flags ...string) error {
	return r.exec(ctx, append([]string{"copy", src, dst}, flags...)...)
}

func (r *Rclone) exec(ctx context.Context, args ...string) error {
	out, err := r.run(ctx, r.binary, args...)
	if err == nil {
		return nil
	}
	msg := strings.TrimSpace(string(out))
	if strings.Contains(strings.ToLower(msg), "not found") {
		return fmt.Errorf("%w: %s", ErrRemoteMissing, msg)
	}
	if msg == "" {
		return fmt.Errorf("rclone %s: %w", args[0], err)
	}
	return fmt.Errorf("rclone %s: %w: %s", args[0], err, msg)
}

// JoinRemote appends name to an rclone remote such as "drive:" or "drive:backup"
func JoinRemote(remote, name string) string {
	if remote == "" || strings.HasSuffix(remote, ":") || strings.HasSuffix(remote, "/") {
		return remote + name
	}
	return remote + "/" + name
}

// Syncer pushes the output tree to remote storage
type Syncer interface {
	Sync(ctx context.Context, dir string) error
}

// RcloneSyncer mirrors the output tree with "rclone copy"
type RcloneSyncer struct {
	rclone *Rclone
	remote string
}

func NewRcloneSyncer(rclone *Rclone, remote string) *RcloneSyncer {
	return &RcloneSyncer{rclone: rclone, remote: remote}
}

func (s *RcloneSyncer) Sync(ctx context.Context, dir string) error {
	if err := s.rclone.Copy(ctx, dir, s.remote, "--transfers=4", "--checkers=8", "--fast-list"); err != nil {
		return fmt.Errorf("failed to sync %s: %w", dir, err)
	}
	return nil
}

// NopSyncer leaves the tree local
type NopSyncer struct{}

func (NopSyncer) Sync(context.Context, string) error { return nil }
