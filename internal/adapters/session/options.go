package session

import (
	"time"

	"github.com/okian/vitrine/pkg/logger"
)

// Option configures a Store.
type Option func(*Store)

// WithTTL expires sessions idle for longer than ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithChatRate allows perMinute chat turns with the given burst. Zero
// disables limiting.
func WithChatRate(perMinute, burst int) Option {
	return func(s *Store) {
		s.perMinute = perMinute
		s.burst = burst
	}
}

// WithDedupeSize bounds the remembered request ids per session.
func WithDedupeSize(n int) Option {
	return func(s *Store) { s.dedupeSize = n }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}
