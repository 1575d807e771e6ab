package service

import (
	"context"
	"time"

	"github.com/okian/vitrine/internal/adapters/llm"
	"github.com/okian/vitrine/internal/adapters/repository"
	"github.com/okian/vitrine/internal/config"
	"github.com/okian/vitrine/internal/domain/render"
	"github.com/okian/vitrine/pkg/logger"
)

// BackendFactory builds the chat tiers once the portfolio is loaded.
type BackendFactory func(ctx context.Context, cfg *config.Config, tools llm.ToolRunner, systemPrompt string) *llm.Backends

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the configuration. Defaults to config.New().
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithStore overrides the portfolio store built from the config.
func WithStore(store repository.Store) Option {
	return func(s *Service) { s.store = store }
}

// WithAssets overrides the logo resolver built from the config.
func WithAssets(a *render.Assets) Option {
	return func(s *Service) { s.assets = a }
}

// WithBackendFactory overrides how chat backends are built.
func WithBackendFactory(f BackendFactory) Option {
	return func(s *Service) {
		if f != nil {
			s.backends = f
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
