// Package service wires the portfolio, the lookup tools, the chat dispatcher
// and the visitor sessions into the operations the HTTP API and CLI expose.
package service

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/okian/vitrine/internal/adapters/llm"
	"github.com/okian/vitrine/internal/adapters/repository"
	"github.com/okian/vitrine/internal/adapters/session"
	"github.com/okian/vitrine/internal/config"
	"github.com/okian/vitrine/internal/domain/chat"
	"github.com/okian/vitrine/internal/domain/lookup"
	"github.com/okian/vitrine/internal/domain/model"
	"github.com/okian/vitrine/internal/domain/navigation"
	"github.com/okian/vitrine/internal/domain/render"
	"github.com/okian/vitrine/internal/domain/types"
	"github.com/okian/vitrine/pkg/logger"
	"github.com/okian/vitrine/pkg/metrics"
)

// Service implements the dependencies of the HTTP API and the CLI.
type Service struct {
	mu sync.RWMutex

	cfg      *config.Config
	store    repository.Store
	assets   *render.Assets
	backends BackendFactory

	// Built by Start.
	portfolio  *model.Portfolio
	registry   *lookup.Registry
	dispatcher *chat.Dispatcher
	selection  chat.Selection
	tiers      *llm.Backends
	sessions   *session.Store

	started   bool
	startedAt time.Time
	cancel    context.CancelFunc
	done      chan struct{}

	now    func() time.Time
	logger logger.Logger
}

// New constructs a Service. Nothing is loaded until Start.
func New(opts ...Option) *Service {
	s := &Service{
		cfg: config.New(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the portfolio, builds the tools, prompts and chat backends,
// and starts the session janitor. A data source error is fatal; backend
// initialisation failures only degrade the chat.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger.Info(ctx, "starting portfolio service...", logger.String("data", s.cfg.DataPath))

	if s.store == nil {
		s.store = repository.NewYAMLStore(s.cfg.DataPath, repository.WithLogger(s.logger.Named("repository")))
	}
	p, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load portfolio: %w", err)
	}
	if s.assets == nil {
		s.assets = render.NewAssets(os.DirFS(s.cfg.LogosDir), s.cfg.TechLinks, render.WithAssetsLogger(s.logger.Named("assets")))
	}
	if s.backends == nil {
		llmLog := s.logger.Named("llm")
		s.backends = func(ctx context.Context, cfg *config.Config, tools llm.ToolRunner, systemPrompt string) *llm.Backends {
			return llm.NewBackends(ctx, cfg, tools, systemPrompt, llm.WithLogger(llmLog))
		}
	}

	s.portfolio = p
	s.registry = lookup.NewRegistry(p, lookup.WithRegistryLogger(s.logger.Named("tools")))
	prompts := chat.NewPromptBuilder(s.cfg.AssistantName, p, s.registry.Describe())

	s.tiers = s.backends(ctx, s.cfg, s.registry, prompts.Base())
	s.selection = chat.SelectBackend(ctx, s.tiers.Preferred, s.tiers.InitErr, s.tiers.Fallback, s.logger.Named("chat"))

	rules := make([]chat.Rule, len(s.cfg.EasterEggs))
	for i, e := range s.cfg.EasterEggs {
		rules[i] = chat.Rule{Phrase: e.Phrase, Gender: e.Gender, Special: e.Special}
	}
	s.dispatcher = chat.NewDispatcher(s.selection.Backend, prompts,
		chat.WithRules(rules...),
		chat.WithTimeout(s.cfg.RequestTimeout()),
		chat.WithAssistantName(s.cfg.AssistantName),
		chat.WithLogger(s.logger.Named("dispatcher")),
	)

	s.sessions = session.NewStore(
		func() navigation.State { return navigation.Initial(p) },
		session.WithTTL(s.cfg.SessionTTL()),
		session.WithChatRate(s.cfg.ChatRatePerMinute, s.cfg.ChatBurst),
		session.WithDedupeSize(s.cfg.DedupeSize),
		session.WithClock(s.now),
		session.WithLogger(s.logger.Named("sessions")),
	)
	jctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.done = make(chan struct{})
	go func(store *session.Store, done chan struct{}) {
		defer close(done)
		if err := store.Run(jctx, 0); err != nil {
			s.logger.Error(jctx, "session janitor stopped", logger.Error(err))
		}
	}(s.sessions, s.done)

	s.started = true
	s.startedAt = s.now()
	s.logger.Info(ctx, "portfolio service started",
		logger.Int("experiences", p.Count(model.CategoryExperiences)),
		logger.Int("skills", p.Count(model.CategorySkills)),
		logger.Int("certifications", p.Count(model.CategoryCertifications)),
		logger.Int("education", p.Count(model.CategoryEducation)),
		logger.String("backend", s.selection.Backend.Name()),
		logger.Bool("degraded", s.selection.Degraded),
	)
	return nil
}

// Stop halts the janitor and releases the backends.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(context.Background(), "stopping portfolio service...")
	s.cancel()
	<-s.done
	if s.tiers != nil {
		if err := s.tiers.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing chat backends", logger.Error(err))
		}
	}
	s.started = false
	s.logger.Info(context.Background(), "portfolio service stopped")
}

// Portfolio returns the loaded portfolio.
func (s *Service) Portfolio() (*model.Portfolio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.portfolio, nil
}

// Session returns the visitor's session, creating one when id is unknown.
func (s *Service) Session(ctx context.Context, id string) (*session.Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, false, ErrNotStarted
	}
	sess, created := s.sessions.Acquire(ctx, id)
	return sess, created, nil
}

// SessionTTL is how long an idle session lives.
func (s *Service) SessionTTL() time.Duration { return s.cfg.SessionTTL() }

// ModelInfo describes the model answering chat turns.
func (s *Service) ModelInfo() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ""
	}
	return s.selection.Backend.Describe()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":   s.started,
		"assistant": s.cfg.AssistantName,
	}
	if !s.started {
		return stats
	}
	counts := map[string]int{}
	for _, c := range model.Categories {
		counts[string(c)] = s.portfolio.Count(c)
	}
	active := s.sessions.Len()
	metrics.UpdateActiveSessions(active)

	stats["records"] = counts
	stats["activeSessions"] = active
	stats["backend"] = s.selection.Backend.Name()
	stats["model"] = s.selection.Backend.Describe()
	stats["degraded"] = s.selection.Degraded
	stats["tools"] = s.registry.Names()
	stats["uptimeSeconds"] = int(s.now().Sub(s.startedAt).Seconds())
	return stats
}

// Page renders the page shell.
func (s *Service) Page(ctx context.Context) (types.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return types.Page{}, ErrNotStarted
	}

	owner := s.portfolio.OwnerName(s.cfg.AssistantName)
	info := s.selection.Backend.Describe()
	header, err := render.Header(s.portfolio.Profile, owner)
	if err != nil {
		return types.Page{}, fmt.Errorf("render header: %w", err)
	}
	stats, err := render.StatsHTML(s.portfolio)
	if err != nil {
		return types.Page{}, fmt.Errorf("render stats: %w", err)
	}
	footer, err := render.Footer(owner, info, s.now())
	if err != nil {
		return types.Page{}, fmt.Errorf("render footer: %w", err)
	}

	page := types.Page{
		Owner:     owner,
		Assistant: s.cfg.AssistantName,
		ModelInfo: info,
		Degraded:  s.selection.Degraded,
		Header:    header,
		Stats:     stats,
		Footer:    footer,
		Initial:   navigation.Initial(s.portfolio),
	}
	for _, c := range model.Categories {
		page.Categories = append(page.Categories, types.CategoryCount{Name: c, Count: s.portfolio.Count(c)})
	}
	if s.portfolio.Profile != nil {
		page.Links = s.portfolio.Profile.Links
	}
	s.logger.Debug(ctx, "page rendered", logger.String("model", info))
	return page, nil
}
