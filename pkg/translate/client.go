package translate

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultAttempts   = 3
	DefaultTimeout    = 60 * time.Second
	DefaultRetryDelay = time.Second
)

// Options configures the retry policy of a Client. Zero values select the defaults.
type Options struct {
	Attempts   int
	Timeout    time.Duration // per attempt
	RetryDelay time.Duration
	Logger     *slog.Logger
}

func (o Options) effectiveAttempts() int {
	if o.Attempts > 0 {
		return o.Attempts
	}
	return DefaultAttempts
}

func (o Options) effectiveTimeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return DefaultTimeout
}

func (o Options) effectiveRetryDelay() time.Duration {
	if o.RetryDelay > 0 {
		return o.RetryDelay
	}
	return DefaultRetryDelay
}

// Client wraps a Backend with bounded retries and a per-attempt timeout
type Client struct {
	backend Backend
	opts    Options
	logger  *slog.Logger
}

func NewClient(backend Backend, opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{backend: backend, opts: opts, logger: logger}
}

// Translate returns the backend's translation of text. Empty or whitespace-only text is
// returned as is without contacting the backend. When every attempt fails the returned
// error is a *Error.
func (c *Client) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	var out string
	attempts := 0
	op := func() error {
		attempts++
		actx, cancel := context.WithTimeout(ctx, c.opts.effectiveTimeout())
		defer cancel()

		res, err := c.backend.Translate(actx, text)
		if err == nil && strings.TrimSpace(res) == "" {
			err = ErrEmptyOutput
		}
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			c.logger.WarnContext(ctx, "translation attempt failed",
				"backend", c.backend.Name(), "attempt", attempts, "error", err)
			return err
		}
		out = res
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewConstantBackOff(c.opts.effectiveRetryDelay()),
			uint64(c.opts.effectiveAttempts()-1),
		),
		ctx,
	)
	if err := backoff.Retry(op, policy); err != nil {
		return "", &Error{Backend: c.backend.Name(), Attempts: attempts, Err: err}
	}
	return out, nil
}
