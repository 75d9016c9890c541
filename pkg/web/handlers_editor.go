package web

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ritzau/casegraph/pkg/graph"
	"github.com/ritzau/casegraph/pkg/model"
	"github.com/ritzau/casegraph/pkg/shell"
)

type titleRequest struct {
	Title string `json:"title"`
}

type connectRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type relationshipUpdate struct {
	Type     string         `json:"type"`
	Strength model.Strength `json:"strength"`
}

// editorResponse answers a mutation with the refreshed editor
func (s *Server) editorResponse(w http.ResponseWriter, r *http.Request, status int) {
	es, err := s.shell.Editor()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, es)
}

func (s *Server) handleEditor(w http.ResponseWriter, r *http.Request) {
	s.editorResponse(w, r, http.StatusOK)
}

func (s *Server) handleRenameEditor(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.shell.RenameEditor(r.Context(), req.Title); err != nil {
		writeError(w, r, err)
		return
	}
	s.editorResponse(w, r, http.StatusOK)
}

func (s *Server) handleSaveEditor(w http.ResponseWriter, r *http.Request) {
	c, err := s.shell.SaveEditor(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCloseEditor(w http.ResponseWriter, r *http.Request) {
	s.shell.CloseEditor(r.Context())
	writeJSON(w, http.StatusOK, s.shell.State())
}

func (s *Server) handleResumeEditor(w http.ResponseWriter, r *http.Request) {
	if err := s.shell.ResumeEditor(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.shell.State())
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	var pos *model.Position
	if err := decode(w, r, &pos); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.shell.SetViewportCenter(r.Context(), pos); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	a, err := s.shell.Analyze(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleAddPerson(w http.ResponseWriter, r *http.Request) {
	var in graph.PersonInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.shell.AddPerson(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdatePerson(w http.ResponseWriter, r *http.Request) {
	var upd graph.PersonUpdate
	if err := decode(w, r, &upd); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.shell.UpdatePerson(r.Context(), mux.Vars(r)["id"], upd); err != nil {
		writeError(w, r, err)
		return
	}
	s.editorResponse(w, r, http.StatusOK)
}

func (s *Server) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	if err := s.shell.DeletePerson(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	s.editorResponse(w, r, http.StatusOK)
}

func (s *Server) handleAddRelationship(w http.ResponseWriter, r *http.Request) {
	var in shell.RelationshipInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	edge, err := s.shell.AddRelationship(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, edge)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	edge, err := s.shell.Connect(r.Context(), req.Source, req.Target)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, edge)
}

func (s *Server) handleUpdateRelationship(w http.ResponseWriter, r *http.Request) {
	var req relationshipUpdate
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.shell.UpdateRelationship(r.Context(), mux.Vars(r)["id"], req.Type, req.Strength); err != nil {
		writeError(w, r, err)
		return
	}
	s.editorResponse(w, r, http.StatusOK)
}

func (s *Server) handleDeleteRelationship(w http.ResponseWriter, r *http.Request) {
	if err := s.shell.DeleteRelationship(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	s.editorResponse(w, r, http.StatusOK)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var sel graph.Selection
	if err := decode(w, r, &sel); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.shell.Select(r.Context(), sel); err != nil {
		writeError(w, r, err)
		return
	}
	s.editorResponse(w, r, http.StatusOK)
}

func (s *Server) handleDistances(w http.ResponseWriter, r *http.Request) {
	d, err := s.shell.Distances(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
