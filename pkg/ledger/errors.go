package ledger

import (
	"errors"
	"fmt"
)

// ErrRemoteNotFound is returned by a Mirror when it holds no copy of the ledger
var ErrRemoteNotFound = errors.New("remote ledger not found")

// SyncError is a failed push of the ledger to its mirror. It ends the run.
type SyncError struct {
	Op  string
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("ledger %s failed: %v", e.Op, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
