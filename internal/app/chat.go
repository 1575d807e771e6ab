package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/vitrine/internal/adapters/session"
	"github.com/okian/vitrine/internal/domain/chat"
	"github.com/okian/vitrine/internal/domain/lookup"
	"github.com/okian/vitrine/internal/domain/render"
	"github.com/okian/vitrine/internal/domain/types"
	"github.com/okian/vitrine/pkg/logger"
	"github.com/okian/vitrine/pkg/metrics"
)

// Chat handles one visitor message. requestID is optional; a repeated id is
// answered with the current history and no backend call.
func (s *Service) Chat(ctx context.Context, sess *session.Session, message, requestID string) (types.ChatResult, error) {
	s.mu.RLock()
	started, dispatcher := s.started, s.dispatcher
	s.mu.RUnlock()
	if !started {
		return types.ChatResult{}, ErrNotStarted
	}

	release := sess.BeginTurn()
	defer release()

	if strings.TrimSpace(message) == "" {
		return types.ChatResult{History: sess.History()}, nil
	}
	if sess.SeenRequest(ctx, requestID) {
		metrics.RecordChatDuplicate()
		s.logger.Debug(ctx, "duplicate chat request", logger.String("session", sess.ID), logger.String("request_id", requestID))
		return types.ChatResult{History: sess.History(), Duplicate: true}, nil
	}
	if !sess.AllowChat() {
		sess.ForgetRequest(ctx, requestID)
		metrics.RecordChatRateLimited()
		return types.ChatResult{}, ErrRateLimited
	}

	reply := dispatcher.Handle(ctx, message, sess.History())
	if reply.Failed {
		sess.ForgetRequest(ctx, requestID)
	}
	sess.SetHistory(reply.History)

	return types.ChatResult{
		History:      reply.History,
		Notification: reply.Notification,
		Triggered:    reply.Triggered,
		Failed:       reply.Failed,
		Reply:        render.Markdown(reply.Text),
	}, nil
}

// History returns the session's chat history.
func (s *Service) History(sess *session.Session) chat.History {
	return sess.History()
}

// Tools lists the lookup tools.
func (s *Service) Tools() ([]lookup.Tool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.registry.Tools(), nil
}

// RunTool runs a lookup tool directly. caller tags metrics, e.g. "api" or "cli".
func (s *Service) RunTool(ctx context.Context, caller, name string, args lookup.Args) (string, error) {
	s.mu.RLock()
	started, reg := s.started, s.registry
	s.mu.RUnlock()
	if !started {
		return "", ErrNotStarted
	}
	out, err := reg.Call(lookup.WithCaller(ctx, caller), name, args)
	if err != nil {
		return "", fmt.Errorf("run tool %s: %w", name, err)
	}
	return out, nil
}
