package web

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ritzau/casegraph/pkg/ingest"
	"github.com/ritzau/casegraph/pkg/logging"
	"github.com/ritzau/casegraph/pkg/model"
)

// uploadField is the multipart field carrying files to recognize
const uploadField = "image"

var errNoFile = fmt.Errorf("%w: no file uploaded", model.ErrValidation)

func (s *Server) handleOCR(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid upload: %v", model.ErrValidation, err))
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logging.WarnContext(r.Context(), "failed to remove upload temp files", "error", err)
		}
	}()

	files := r.MultipartForm.File[uploadField]
	if len(files) == 0 {
		writeError(w, r, errNoFile)
		return
	}

	// Documents are only stored once every file was recognized.
	texts := make([]string, len(files))
	for i, fh := range files {
		text, err := s.recognize(r, fh)
		if err != nil {
			writeIngestError(w, r, err)
			return
		}
		texts[i] = text
	}

	added := make([]ingest.Document, len(files))
	for i, fh := range files {
		added[i] = s.documents.Add(fh.Filename, texts[i])
	}
	writeJSON(w, http.StatusCreated, added)
}

func (s *Server) recognize(r *http.Request, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return s.ocr.Recognize(r.Context(), fh.Filename, fh.Header.Get("Content-Type"), f)
}

// writeIngestError reports a failed service call; anything that is not a
// rejected request or an open breaker counts as a bad gateway
func writeIngestError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		status = http.StatusBadGateway
	}
	var serviceErr *ingest.ServiceError
	msg := err.Error()
	if errors.As(err, &serviceErr) {
		msg = serviceErr.Message
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.documents.List())
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	doc, ok := s.documents.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "document not found: " + id})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type documentSelection struct {
	ID string `json:"id"`
}

// handleSelectedDocument answers 204 when no document is selected
func (s *Server) handleSelectedDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.documents.Selected()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleSelectDocument selects the document for viewing; an empty id
// closes the viewer
func (s *Server) handleSelectDocument(w http.ResponseWriter, r *http.Request) {
	var req documentSelection
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.documents.Select(req.ID); err != nil {
		writeError(w, r, err)
		return
	}
	s.handleSelectedDocument(w, r)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.documents.Delete(mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var fields ingest.ReportFields
	if err := decode(w, r, &fields); err != nil {
		writeError(w, r, err)
		return
	}
	report, err := s.reports.Generate(r.Context(), fields)
	if err != nil {
		writeIngestError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(report.Data)))
	if _, err := w.Write(report.Data); err != nil {
		logging.WarnContext(r.Context(), "failed to send report", "error", err)
	}
}
