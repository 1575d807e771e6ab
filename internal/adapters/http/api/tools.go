package api

import (
	"net/http"

	"github.com/okian/vitrine/internal/domain/lookup"
)

type toolsResponse struct {
	Tools []lookup.Tool `json:"tools"`
}

type toolResponse struct {
	Tool   string `json:"tool"`
	Output string `json:"output"`
}

// handleListTools handles GET /api/tools.
func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	tools, err := s.deps.Tools()
	if err != nil {
		s.fail(w, r, "api.tools", err)
		return
	}
	writeJSON(w, http.StatusOK, toolsResponse{Tools: tools})
}

// handleRunTool handles POST /api/tools/{name}. The body is the arguments
// object and may be empty.
func (s *Server) handleRunTool(w http.ResponseWriter, r *http.Request) {
	const op = "api.tool_run"
	name := r.PathValue("name")
	args := lookup.Args{}
	if err := decode(r, &args); err != nil {
		s.fail(w, r, op, err)
		return
	}
	out, err := s.deps.RunTool(r.Context(), "api", name, args)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, toolResponse{Tool: name, Output: out})
}
