package metrics

import (
	"errors"
)

// ErrInvalidInterval is returned when a collector is started with a non-positive interval.
var ErrInvalidInterval = errors.New("metrics: refresh interval must be positive")
