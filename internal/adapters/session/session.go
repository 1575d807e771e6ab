// Package session keeps per-visitor state in memory: navigation position,
// chat history, a chat rate limiter and the request ids already answered.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/okian/vitrine/internal/domain/chat"
	"github.com/okian/vitrine/internal/domain/dedupe"
	"github.com/okian/vitrine/internal/domain/navigation"
	"golang.org/x/time/rate"
)

// Session is one visitor's state. Field access is safe for concurrent use;
// BeginTurn serialises chat turns.
type Session struct {
	ID string

	turn sync.Mutex

	mu       sync.RWMutex
	nav      navigation.State
	history  chat.History
	lastSeen time.Time

	limiter *rate.Limiter
	seen    dedupe.Deduper
}

func newSession(id string, nav navigation.State, limiter *rate.Limiter, seen dedupe.Deduper, now time.Time) *Session {
	return &Session{ID: id, nav: nav, history: chat.History{}, limiter: limiter, seen: seen, lastSeen: now}
}

// Nav returns the navigation state.
func (s *Session) Nav() navigation.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nav
}

// UpdateNav applies move to the navigation state under the session lock and
// stores the result, so overlapping navigation requests never lose a move.
// It returns the state before and after.
func (s *Session) UpdateNav(move func(navigation.State) navigation.State) (prev, next navigation.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev = s.nav
	s.nav = move(prev)
	return prev, s.nav
}

// History returns a copy of the chat history.
func (s *Session) History() chat.History {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Clone()
}

// SetHistory replaces the chat history.
func (s *Session) SetHistory(h chat.History) {
	s.mu.Lock()
	s.history = h.Clone()
	s.mu.Unlock()
}

// BeginTurn blocks until no other turn of this session runs and returns the
// release func.
func (s *Session) BeginTurn() func() {
	s.turn.Lock()
	return s.turn.Unlock
}

// AllowChat reports whether the limiter admits one more chat turn now.
func (s *Session) AllowChat() bool {
	if s.limiter == nil {
		return true
	}
	return s.limiter.Allow()
}

// SeenRequest records id and reports whether it was answered before.
func (s *Session) SeenRequest(ctx context.Context, id string) bool {
	return s.seen.SeenAndRecord(ctx, id)
}

// ForgetRequest allows id to be submitted again.
func (s *Session) ForgetRequest(ctx context.Context, id string) {
	s.seen.Unrecord(ctx, id)
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return now.Sub(s.lastSeen)
}
