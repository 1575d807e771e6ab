package api

import (
	"fmt"
	"net/http"

	"github.com/okian/vitrine/internal/domain/chat"
)

type chatRequest struct {
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

type historyResponse struct {
	History chat.History `json:"history"`
}

// handleChat handles POST /api/chat.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	const op = "api.chat"
	var req chatRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, op, err)
		return
	}
	if len(req.RequestID) > 128 {
		s.fail(w, r, op, fmt.Errorf("%w: request_id too long", ErrBadRequest))
		return
	}
	sess, err := s.session(w, r)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	res, err := s.deps.Chat(r.Context(), sess, req.Message, req.RequestID)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleHistory handles GET /api/chat/history.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.chat_history"
	sess, err := s.session(w, r)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{History: s.deps.History(sess)})
}
