package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ritzau/casegraph/pkg/logging"
	"github.com/ritzau/casegraph/pkg/model"
)

type themeRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.shell.State())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Stats())
}

func (s *Server) handleThemes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.Themes)
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.shell.SetTheme(r.Context(), req.Name); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.shell.Theme())
}

func (s *Server) handleRelationshipTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.RelationshipTypes)
}

// handleListCases lists every case, or with ?recent=n only the n newest
func (s *Server) handleListCases(w http.ResponseWriter, r *http.Request) {
	var cases []model.Case
	if raw := r.URL.Query().Get("recent"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, r, fmt.Errorf("%w: recent must be a non-negative integer, got %q", model.ErrValidation, raw))
			return
		}
		cases = s.store.Recent(n)
	} else {
		cases = s.store.List()
	}
	if cases == nil {
		cases = []model.Case{}
	}
	writeJSON(w, http.StatusOK, cases)
}

func (s *Server) handleCreateCase(w http.ResponseWriter, r *http.Request) {
	var fields model.CaseFields
	if err := decode(w, r, &fields); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.shell.CreateCase(r.Context(), fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleGetCase(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	c, ok := s.store.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "case not found: " + id})
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateCase(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ctx := logging.WithCaseID(r.Context(), id)

	var fields model.CaseFields
	if err := decode(w, r, &fields); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.shell.EditCase(ctx, id, fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCase(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.shell.DeleteCase(logging.WithCaseID(r.Context(), id), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOpenCase(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.shell.OpenCase(logging.WithCaseID(r.Context(), id), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.shell.State())
}
