package llm

import (
	"net/http"

	"github.com/okian/vitrine/pkg/logger"
)

type options struct {
	log        logger.Logger
	httpClient *http.Client
}

// Option configures an adapter.
type Option func(*options)

// WithLogger sets the adapter logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithHTTPClient overrides the HTTP client used for provider calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{log: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
