package llm

import "errors"

var (
	// ErrMissingAPIKey is returned when a provider's credential is not set.
	ErrMissingAPIKey = errors.New("api key not configured")
	// ErrUnknownProvider is returned for an unsupported completion provider.
	ErrUnknownProvider = errors.New("unknown completion provider")
	// ErrNoContent is returned when a provider answers without text.
	ErrNoContent = errors.New("no content in response")
	// ErrStepLimit is returned when the agent keeps calling tools past its budget.
	ErrStepLimit = errors.New("agent exceeded tool step limit")
	// ErrAPIStatus wraps non-2xx provider responses.
	ErrAPIStatus = errors.New("provider request failed")
)
