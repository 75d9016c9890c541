package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"github.com/ritzau/casegraph/pkg/ingest"
	"github.com/ritzau/casegraph/pkg/logging"
	"github.com/ritzau/casegraph/pkg/metrics"
	"github.com/ritzau/casegraph/pkg/pubsub"
	"github.com/ritzau/casegraph/pkg/shell"
	"github.com/ritzau/casegraph/pkg/store"
)

//go:embed static/*
var staticFiles embed.FS

// maxUploadMemory is how much of a multipart upload is held in memory; the
// rest is spooled to temp files
const maxUploadMemory = 32 << 20

// Deps are the components the server exposes over HTTP
type Deps struct {
	Shell     *shell.Shell
	Store     *store.Store
	Publisher pubsub.Publisher
	OCR       *ingest.OCRClient
	Reports   *ingest.ReportClient
	Documents *ingest.Documents
	Metrics   *metrics.Collector

	// StaticDir serves the UI from disk instead of the embedded copy
	StaticDir string
}

// Server represents the web server
type Server struct {
	router    *mux.Router
	shell     *shell.Shell
	store     *store.Store
	publisher pubsub.Publisher
	ocr       *ingest.OCRClient
	reports   *ingest.ReportClient
	documents *ingest.Documents
	metrics   *metrics.Collector
	static    fs.FS
}

// NewServer creates a new web server
func NewServer(d Deps) (*Server, error) {
	static, err := staticFS(d.StaticDir)
	if err != nil {
		return nil, err
	}
	docs := d.Documents
	if docs == nil {
		docs = ingest.NewDocuments()
	}

	s := &Server{
		router:    mux.NewRouter(),
		shell:     d.Shell,
		store:     d.Store,
		publisher: d.Publisher,
		ocr:       d.OCR,
		reports:   d.Reports,
		documents: docs,
		metrics:   d.Metrics,
		static:    static,
	}
	s.setupRoutes()
	return s, nil
}

func staticFS(dir string) (fs.FS, error) {
	if dir != "" {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("static dir: %w", err)
		}
		logging.Info("serving UI from disk", "dir", dir)
		return os.DirFS(dir), nil
	}
	return fs.Sub(staticFiles, "static")
}

func (s *Server) setupRoutes() {
	s.router.Use(s.metrics.Middleware)

	// SSE subscription endpoint
	s.router.HandleFunc("/api/subscribe/{topic}", s.handleSubscribe).Methods("GET")

	// Shell and dashboard
	s.router.HandleFunc("/api/state", s.handleState).Methods("GET")
	s.router.HandleFunc("/api/stats", s.handleStats).Methods("GET")
	s.router.HandleFunc("/api/themes", s.handleThemes).Methods("GET")
	s.router.HandleFunc("/api/theme", s.handleSetTheme).Methods("PUT")
	s.router.HandleFunc("/api/relationship-types", s.handleRelationshipTypes).Methods("GET")

	// Cases
	s.router.HandleFunc("/api/cases", s.handleListCases).Methods("GET")
	s.router.HandleFunc("/api/cases", s.handleCreateCase).Methods("POST")
	s.router.HandleFunc("/api/cases/{id}", s.handleGetCase).Methods("GET")
	s.router.HandleFunc("/api/cases/{id}", s.handleUpdateCase).Methods("PUT")
	s.router.HandleFunc("/api/cases/{id}", s.handleDeleteCase).Methods("DELETE")
	s.router.HandleFunc("/api/cases/{id}/open", s.handleOpenCase).Methods("POST")

	// Editor
	s.router.HandleFunc("/api/editor", s.handleEditor).Methods("GET")
	s.router.HandleFunc("/api/editor/title", s.handleRenameEditor).Methods("PUT")
	s.router.HandleFunc("/api/editor/save", s.handleSaveEditor).Methods("POST")
	s.router.HandleFunc("/api/editor/close", s.handleCloseEditor).Methods("POST")
	s.router.HandleFunc("/api/editor/resume", s.handleResumeEditor).Methods("POST")
	s.router.HandleFunc("/api/editor/viewport", s.handleViewport).Methods("PUT")
	s.router.HandleFunc("/api/editor/analysis", s.handleAnalysis).Methods("GET")
	s.router.HandleFunc("/api/editor/persons", s.handleAddPerson).Methods("POST")
	s.router.HandleFunc("/api/editor/persons/{id}", s.handleUpdatePerson).Methods("PATCH")
	s.router.HandleFunc("/api/editor/persons/{id}", s.handleDeletePerson).Methods("DELETE")
	s.router.HandleFunc("/api/editor/persons/{id}/distances", s.handleDistances).Methods("GET")
	s.router.HandleFunc("/api/editor/relationships", s.handleAddRelationship).Methods("POST")
	s.router.HandleFunc("/api/editor/connect", s.handleConnect).Methods("POST")
	s.router.HandleFunc("/api/editor/relationships/{id}", s.handleUpdateRelationship).Methods("PATCH")
	s.router.HandleFunc("/api/editor/relationships/{id}", s.handleDeleteRelationship).Methods("DELETE")
	s.router.HandleFunc("/api/editor/selection", s.handleSelect).Methods("PUT")

	// Ingestion
	s.router.HandleFunc("/api/ocr", s.handleOCR).Methods("POST")
	s.router.HandleFunc("/api/documents", s.handleListDocuments).Methods("GET")
	s.router.HandleFunc("/api/documents/selection", s.handleSelectedDocument).Methods("GET")
	s.router.HandleFunc("/api/documents/selection", s.handleSelectDocument).Methods("PUT")
	s.router.HandleFunc("/api/documents/{id}", s.handleGetDocument).Methods("GET")
	s.router.HandleFunc("/api/documents/{id}", s.handleDeleteDocument).Methods("DELETE")
	s.router.HandleFunc("/api/reports", s.handleReport).Methods("POST")

	s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")

	// Serve static files
	s.router.PathPrefix("/").Handler(http.FileServer(http.FS(s.static)))
}

// Handler returns the router wrapped with request logging
func (s *Server) Handler() http.Handler {
	return logging.RequestIDMiddleware(s.router)
}

// Start serves on port until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("starting web server", "url", fmt.Sprintf("http://localhost%s", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
