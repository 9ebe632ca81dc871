package translate

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Backend turns source-language text into target-language text.
// Implementations must honor ctx cancellation.
type Backend interface {
	Name() string
	Translate(ctx context.Context, text string) (string, error)
}

// DefaultCommand is the translator CLI invoked by ExecBackend when none is configured
var DefaultCommand = []string{"deepl", "--to", "EN", "--formality", "prefer-less", "-"}

// ExecBackend pipes text through an external translator command on stdin
type ExecBackend struct {
	command []string
}

func NewExecBackend(command []string) *ExecBackend {
	if len(command) == 0 {
		command = DefaultCommand
	}
	return &ExecBackend{command: command}
}

func (b *ExecBackend) Name() string {
	return b.command[0]
}

func (b *ExecBackend) Translate(ctx context.Context, text string) (string, error) {
	cmd := exec.CommandContext(ctx, b.command[0], b.command[1:]...)
	cmd.Stdin = strings.NewReader(text)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("%s: %w", b.Name(), err)
		}
		return "", fmt.Errorf("%s: %w: %s", b.Name(), err, msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// EchoBackend returns its input unchanged, for dry runs
type EchoBackend struct{}

func (EchoBackend) Name() string { return "echo" }

func (EchoBackend) Translate(_ context.Context, text string) (string, error) {
	return text, nil
}
