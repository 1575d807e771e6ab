package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/vitrine/internal/domain/dedupe"
	"github.com/okian/vitrine/internal/domain/navigation"
	"github.com/okian/vitrine/pkg/logger"
	"github.com/okian/vitrine/pkg/metrics"
	"golang.org/x/time/rate"
)

const defaultSweepInterval = time.Minute

// Store holds live sessions keyed by id.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session

	initial    func() navigation.State
	ttl        time.Duration
	perMinute  int
	burst      int
	dedupeSize int
	now        func() time.Time
	log        logger.Logger
}

// NewStore creates an empty store. initial supplies the navigation state of
// new sessions.
func NewStore(initial func() navigation.State, opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*Session),
		initial:  initial,
		now:      time.Now,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.initial == nil {
		s.initial = func() navigation.State { return navigation.State{} }
	}
	return s
}

// Get returns the live session with id.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if ok {
		sess.touch(s.now())
	}
	return sess, ok
}

// Acquire returns the session for id, creating a fresh one under a new id
// when id is unknown or expired. created reports the latter.
func (s *Store) Acquire(ctx context.Context, id string) (sess *Session, created bool) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.sessions[id]; ok {
		if !s.expired(existing, now) {
			existing.touch(now)
			return existing, false
		}
		delete(s.sessions, id)
	}

	sess = newSession(uuid.NewString(), s.initial(), s.limiter(), dedupe.New(dedupe.WithMaxSize(s.dedupeSize)), now)
	s.sessions[sess.ID] = sess
	metrics.UpdateActiveSessions(len(s.sessions))
	s.log.Debug(ctx, "session created", logger.String("session", sess.ID), logger.Int("active", len(s.sessions)))
	return sess, true
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops expired sessions and returns how many were removed.
func (s *Store) Sweep(ctx context.Context) int {
	if s.ttl <= 0 {
		return 0
	}
	now := s.now()
	s.mu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	active := len(s.sessions)
	s.mu.Unlock()

	metrics.UpdateActiveSessions(active)
	if removed > 0 {
		s.log.Info(ctx, "expired sessions swept", logger.Int("removed", removed), logger.Int("active", active))
	}
	return removed
}

// Run sweeps every interval until ctx is done. Zero uses one minute.
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	if interval < 0 {
		return ErrInvalidInterval
	}
	if interval == 0 {
		interval = defaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

func (s *Store) expired(sess *Session, now time.Time) bool {
	return s.ttl > 0 && sess.idleSince(now) > s.ttl
}

func (s *Store) limiter() *rate.Limiter {
	if s.perMinute <= 0 {
		return nil
	}
	burst := s.burst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.perMinute)), burst)
}
