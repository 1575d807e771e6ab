package chat

import "errors"

// Sentinel kinds for backend failures.
var (
	ErrEmptyReply   = errors.New("backend returned an empty reply")
	ErrNoBackend    = errors.New("no chat backend available")
	ErrBackendPanic = errors.New("backend panicked")
)
