package translate

import (
	"errors"
	"fmt"
)

// ErrEmptyOutput is returned by the client when a backend answers non-empty input with nothing
var ErrEmptyOutput = errors.New("backend returned empty output")

// Error is returned when every attempt to translate a text failed
type Error struct {
	Backend  string
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: translation failed after %d attempts: %v", e.Backend, e.Attempts, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
