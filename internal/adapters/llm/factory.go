package llm

import (
	"context"
	"fmt"

	"github.com/okian/vitrine/internal/config"
	"github.com/okian/vitrine/internal/domain/chat"
	"github.com/okian/vitrine/pkg/logger"
)

// NewCompleter builds the completion client selected by cfg.CompletionProvider.
func NewCompleter(ctx context.Context, cfg *config.Config, opts ...Option) (chat.Completer, error) {
	switch cfg.CompletionProvider {
	case config.ProviderOpenAI:
		return NewOpenAICompleter(OpenAIConfig{
			APIKey:    cfg.OpenAIAPIKey,
			BaseURL:   cfg.OpenAIBaseURL,
			Model:     cfg.CompletionModel,
			MaxTokens: cfg.MaxTokens,
			Timeout:   cfg.RequestTimeout(),
		}, opts...)
	case config.ProviderGenAI:
		return NewGenAICompleter(ctx, GenAIConfig{
			APIKey:    cfg.GeminiAPIKey,
			Model:     cfg.CompletionModel,
			MaxTokens: cfg.MaxTokens,
			BaseURL:   cfg.GenAIBaseURL,
		}, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.CompletionProvider)
	}
}

// Backends holds the tiers built at start-up, ready for chat.SelectBackend.
type Backends struct {
	Preferred chat.Backend
	InitErr   error
	Fallback  chat.Backend

	agent *GeminiAgent
}

// Close releases provider clients.
func (b *Backends) Close() error {
	if b.agent != nil {
		return b.agent.Close()
	}
	return nil
}

// NewBackends initialises both tiers. Initialisation failures are reported
// in InitErr or by a nil Fallback, never as a returned error.
func NewBackends(ctx context.Context, cfg *config.Config, tools ToolRunner, systemPrompt string, opts ...Option) *Backends {
	o := applyOptions(opts)
	b := &Backends{}

	var completion chat.Backend
	completer, cerr := NewCompleter(ctx, cfg, opts...)
	if cerr != nil {
		o.log.Warn(ctx, "completion backend unavailable", logger.String("provider", cfg.CompletionProvider), logger.Error(cerr))
	} else {
		completion = chat.NewCompletionBackend(completer, cfg.CompletionModel)
	}

	if cfg.Backend == config.BackendCompletion {
		b.Preferred = completion
		b.InitErr = cerr
		return b
	}

	agent, aerr := NewGeminiAgent(ctx, AgentConfig{
		APIKey:       cfg.GeminiAPIKey,
		Model:        cfg.AgentModel,
		SystemPrompt: systemPrompt,
		MaxSteps:     cfg.AgentMaxSteps,
		MaxTokens:    cfg.MaxTokens,
	}, tools, opts...)
	b.Fallback = completion
	if aerr != nil {
		b.InitErr = aerr
		return b
	}
	b.agent = agent
	b.Preferred = chat.NewAgentBackend(agent, cfg.AgentModel)
	return b
}
