package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/ritzau/casegraph/pkg/config"
	"github.com/ritzau/casegraph/pkg/ingest"
	"github.com/ritzau/casegraph/pkg/logging"
	"github.com/ritzau/casegraph/pkg/metrics"
	"github.com/ritzau/casegraph/pkg/output"
	"github.com/ritzau/casegraph/pkg/pubsub"
	"github.com/ritzau/casegraph/pkg/shell"
	"github.com/ritzau/casegraph/pkg/storage"
	"github.com/ritzau/casegraph/pkg/store"
	"github.com/ritzau/casegraph/pkg/watcher"
	"github.com/ritzau/casegraph/pkg/web"
)

// devStaticDir is served instead of the embedded UI with --dev
const devStaticDir = "pkg/web/static"

func main() {
	f := pflag.NewFlagSet("casegraph", pflag.ExitOnError)
	f.String("data", "", "Path to the data file (default: user config dir)")
	f.String("storage", "json", "Storage backend: json or sqlite")
	f.Int("port", 8080, "Port for the web server")
	f.Bool("open", true, "Open the browser on start")
	f.Bool("watch", false, "Reload cases when the data file changes on disk")
	f.Bool("dev", false, "Serve the UI from "+devStaticDir+" instead of the embedded copy")
	f.Bool("list", false, "Print the case dashboard and exit")
	f.Bool("json", false, "Log JSON lines instead of the compact format")
	f.CountP("verbose", "v", "Increase log verbosity (-v debug, -vv trace)")
	f.String("verbosity", "", "Log level: trace, debug, info, warn, error")
	_ = f.Parse(os.Args[1:])

	cfg, err := config.Load(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Error("casegraph failed", "error", err)
		os.Exit(1)
	}
}

func setupLogging(cfg *config.Config) {
	logging.SetJSONOutput(cfg.JSONLogs)
	level := logging.LevelFromVerbosity(cfg.VerboseCnt)
	if cfg.Verbosity != "" {
		if l, ok := logging.ParseLevel(cfg.Verbosity); ok {
			level = l
		}
	}
	logging.SetLevel(level)
}

// persister is a storage backend with a location and resources to release
type persister interface {
	store.Persister
	Path() string
}

func openStorage(ctx context.Context, cfg *config.Config) (persister, func() error, error) {
	path := cfg.DataPath
	if path == "" {
		p, err := storage.DefaultPath()
		if err != nil {
			return nil, nil, err
		}
		path = p
		if cfg.Storage == "sqlite" {
			path = filepath.Join(filepath.Dir(p), "casegraph.db")
		}
	}

	if cfg.Storage == "sqlite" {
		db, err := storage.OpenSQLite(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return storage.NewJSONFile(path), func() error { return nil }, nil
}

func run(ctx context.Context, cfg *config.Config) error {
	p, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStorage(); err != nil {
			logging.Warn("failed to close storage", "error", err)
		}
	}()

	m := metrics.NewCollector("casegraph")
	st := store.New(p, store.WithMetrics(m))
	defer func() {
		if err := st.Close(); err != nil {
			logging.Warn("failed to flush cases", "error", err)
		}
	}()

	publisher := pubsub.NewSSEPublisher()
	pubsub.ConfigureDefaults(publisher)
	m.WatchSubscribers(publisher.Subscribers, pubsub.TopicCases, pubsub.TopicEditor, pubsub.TopicPersistence)
	defer publisher.Close()
	wireEvents(st, publisher)

	st.Load(ctx)
	logging.Info("cases loaded", "path", p.Path(), "storage", cfg.Storage, "count", len(st.List()))

	if cfg.List {
		output.PrintDashboard(os.Stdout, p.Path(), st.Stats(), st.List())
		return nil
	}

	sh := shell.New(st, shell.WithMetrics(m))
	sh.OnChange(func(state shell.State) {
		ev := pubsub.EditorChanged{View: string(state.View), Theme: state.Theme.Name}
		if state.Editor != nil {
			ev.CaseID = state.Editor.CaseID
			ev.Persons = state.Editor.Stats.Persons
			ev.Relationships = state.Editor.Stats.Relationships
		}
		publish(publisher, pubsub.TopicEditor, "changed", ev)
	})

	breaker := ingest.DefaultBreakerConfig()
	breaker.Timeout = cfg.Breaker.Timeout
	breaker.FailureThreshold = cfg.Breaker.Threshold
	breaker.MinRequests = cfg.Breaker.Requests

	staticDir := ""
	if cfg.Dev {
		staticDir = devStaticDir
	}
	server, err := web.NewServer(web.Deps{
		Shell:     sh,
		Store:     st,
		Publisher: publisher,
		OCR:       ingest.NewOCRClient(cfg.OCR.URL, cfg.OCR.Timeout, breaker, m),
		Reports:   ingest.NewReportClient(cfg.Report.URL, cfg.Report.Timeout, breaker, m),
		Documents: ingest.NewDocuments(),
		Metrics:   m,
		StaticDir: staticDir,
	})
	if err != nil {
		return err
	}

	if cfg.Watch {
		base := filepath.Base(p.Path())
		if err := watcher.Watch(ctx, p.Path(), watcher.DefaultConfig(), st.Reload, base+"-wal", base+"-journal"); err != nil {
			logging.Warn("file watching disabled", "error", err)
		}
	}

	if cfg.Open {
		go func() {
			// give the listener a moment to come up
			time.Sleep(300 * time.Millisecond)
			openBrowser(fmt.Sprintf("http://localhost:%d", cfg.Port))
		}()
	}

	if err := server.Start(ctx, cfg.Port); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info("shutting down")
	return nil
}

// wireEvents forwards store notifications to SSE subscribers
func wireEvents(st *store.Store, publisher pubsub.Publisher) {
	st.OnChange(func() {
		stats := st.Stats()
		publish(publisher, pubsub.TopicCases, "changed", pubsub.CasesChanged{
			Count:              stats.TotalCases,
			ActiveCaseID:       st.ActiveID(),
			TotalPeople:        stats.TotalPeople,
			TotalRelationships: stats.TotalRelationships,
		})
	})
	st.OnSaveError(func(err error) {
		publish(publisher, pubsub.TopicPersistence, "save_failed", pubsub.PersistenceFailed{
			Message: err.Error(),
			At:      time.Now().UTC(),
		})
	})
}

func publish(publisher pubsub.Publisher, topic, eventType string, data interface{}) {
	if err := publisher.Publish(topic, eventType, data); err != nil && !errors.Is(err, pubsub.ErrClosed) {
		logging.Warn("failed to publish event", "topic", topic, "error", err)
	}
}

func openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "linux":
		cmd = "xdg-open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		logging.Warn("cannot open browser on this platform", "os", runtime.GOOS)
		return
	}

	if err := exec.Command(cmd, args...).Start(); err != nil {
		logging.Warn("failed to open browser", "error", err)
	}
}
