package translate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUnknown = errors.New("unknown text")

func fastOptions() Options {
	return Options{Attempts: 3, Timeout: time.Second, RetryDelay: time.Millisecond}
}

func TestClientTranslate(t *testing.T) {
	t.Run("empty input skips the backend", func(t *testing.T) {
		backend := &mockBackend{}
		client := NewClient(backend, fastOptions())

		for _, in := range []string{"", "  \n "} {
			out, err := client.Translate(context.Background(), in)
			require.NoError(t, err)
			assert.Equal(t, in, out)
		}
		assert.Equal(t, 0, backend.callCount())
	})

	t.Run("succeeds after transient failures", func(t *testing.T) {
		n := 0
		backend := &mockBackend{translateFunc: func(context.Context, string) (string, error) {
			n++
			if n < 3 {
				return "", errors.New("503")
			}
			return "Hello.", nil
		}}
		client := NewClient(backend, fastOptions())

		out, err := client.Translate(context.Background(), "こんにちは。")
		require.NoError(t, err)
		assert.Equal(t, "Hello.", out)
		assert.Equal(t, 3, backend.callCount())
	})

	t.Run("gives up after the configured attempts", func(t *testing.T) {
		backend := &mockBackend{translateFunc: func(context.Context, string) (string, error) {
			return "", errors.New("503")
		}}
		client := NewClient(backend, fastOptions())

		_, err := client.Translate(context.Background(), "こんにちは。")
		require.Error(t, err)

		var terr *Error
		require.True(t, errors.As(err, &terr))
		assert.Equal(t, 3, terr.Attempts)
		assert.Equal(t, 3, backend.callCount())
	})

	t.Run("empty output is a failed attempt", func(t *testing.T) {
		backend := &mockBackend{translateFunc: func(context.Context, string) (string, error) {
			return " ", nil
		}}
		client := NewClient(backend, Options{Attempts: 2, RetryDelay: time.Millisecond})

		_, err := client.Translate(context.Background(), "こんにちは。")
		assert.ErrorIs(t, err, ErrEmptyOutput)
		assert.Equal(t, 2, backend.callCount())
	})

	t.Run("each attempt has its own deadline", func(t *testing.T) {
		backend := &mockBackend{translateFunc: func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		}}
		client := NewClient(backend, Options{Attempts: 2, Timeout: 10 * time.Millisecond, RetryDelay: time.Millisecond})

		_, err := client.Translate(context.Background(), "こんにちは。")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 2, backend.callCount())
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		backend := &mockBackend{translateFunc: func(ctx context.Context, _ string) (string, error) {
			return "", ctx.Err()
		}}
		client := NewClient(backend, fastOptions())

		_, err := client.Translate(ctx, "こんにちは。")
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, backend.callCount())
	})
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	assert.Equal(t, DefaultAttempts, o.effectiveAttempts())
	assert.Equal(t, DefaultTimeout, o.effectiveTimeout())
	assert.Equal(t, DefaultRetryDelay, o.effectiveRetryDelay())
}
