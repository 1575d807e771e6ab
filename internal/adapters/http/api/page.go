package api

import "net/http"

// handlePage handles GET /api/page. It also issues the session cookie so the
// first navigation call already has one.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	const op = "api.page"
	if _, err := s.session(w, r); err != nil {
		s.fail(w, r, op, err)
		return
	}
	page, err := s.deps.Page(r.Context())
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
