package api

import (
	"fmt"
	"net/http"
	"strings"
)

type categoryRequest struct {
	Category string `json:"category"`
}

type stepRequest struct {
	Direction int `json:"direction"`
}

type jumpRequest struct {
	Index *int `json:"index"`
}

// handleView handles GET /api/view.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	const op = "api.view"
	sess, err := s.session(w, r)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	v, err := s.deps.View(r.Context(), sess)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleCategory handles POST /api/nav/category.
func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	const op = "api.nav_category"
	var req categoryRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, op, err)
		return
	}
	if strings.TrimSpace(req.Category) == "" {
		s.fail(w, r, op, fmt.Errorf("%w: missing category", ErrBadRequest))
		return
	}
	sess, err := s.session(w, r)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	v, err := s.deps.SelectCategory(r.Context(), sess, req.Category)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleStep handles POST /api/nav/step.
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	const op = "api.nav_step"
	var req stepRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, op, err)
		return
	}
	sess, err := s.session(w, r)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	v, err := s.deps.Step(r.Context(), sess, req.Direction)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleJump handles POST /api/nav/jump.
func (s *Server) handleJump(w http.ResponseWriter, r *http.Request) {
	const op = "api.nav_jump"
	var req jumpRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, op, err)
		return
	}
	if req.Index == nil {
		s.fail(w, r, op, fmt.Errorf("%w: missing index", ErrBadRequest))
		return
	}
	sess, err := s.session(w, r)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	v, err := s.deps.Jump(r.Context(), sess, *req.Index)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
