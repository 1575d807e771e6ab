package session

import "errors"

// ErrInvalidInterval is returned by Run for a negative sweep interval.
var ErrInvalidInterval = errors.New("session: sweep interval must not be negative")
