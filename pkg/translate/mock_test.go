package translate

import (
	"context"
	"sync"
)

type mockBackend struct {
	mu            sync.Mutex
	calls         []string
	translateFunc func(ctx context.Context, text string) (string, error)
}

func (m *mockBackend) Name() string { return "mock" }

func (m *mockBackend) Translate(ctx context.Context, text string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()
	if m.translateFunc != nil {
		return m.translateFunc(ctx, text)
	}
	return text, nil
}

func (m *mockBackend) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// dictionary answers known inputs and fails everything else
func dictionary(entries map[string]string) *mockBackend {
	return &mockBackend{
		translateFunc: func(_ context.Context, text string) (string, error) {
			if out, ok := entries[text]; ok {
				return out, nil
			}
			return "", errUnknown
		},
	}
}
