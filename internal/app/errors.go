package service

import "errors"

var (
	// ErrNotStarted is returned by operations called before Start.
	ErrNotStarted = errors.New("service not started")
	// ErrInvalidDirection is returned for a step that is neither -1 nor +1.
	ErrInvalidDirection = errors.New("direction must be -1 or 1")
	// ErrRateLimited is returned when a session sends chat turns too fast.
	ErrRateLimited = errors.New("too many chat messages, slow down")
)
