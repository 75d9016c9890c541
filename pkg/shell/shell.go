package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ritzau/casegraph/pkg/graph"
	"github.com/ritzau/casegraph/pkg/logging"
	"github.com/ritzau/casegraph/pkg/metrics"
	"github.com/ritzau/casegraph/pkg/model"
	"github.com/ritzau/casegraph/pkg/store"
)

// View is the screen the shell shows
type View string

const (
	ViewDashboard   View = "dashboard"
	ViewGraphEditor View = "graph-editor"
)

// ErrEditorClosed is returned by editor operations while the dashboard is shown
var ErrEditorClosed = errors.New("editor is not open")

// Option configures a Shell
type Option func(*Shell)

// WithMetrics counts graph mutations
func WithMetrics(m *metrics.Collector) Option {
	return func(s *Shell) {
		s.metrics = m
	}
}

// WithClock replaces time.Now for the modification stamp written on save
func WithClock(now func() time.Time) Option {
	return func(s *Shell) {
		s.now = now
	}
}

// WithEditorOptions passes options to every editor the shell opens
func WithEditorOptions(opts ...graph.Option) Option {
	return func(s *Shell) {
		s.editorOpts = append(s.editorOpts, opts...)
	}
}

// Shell tracks the visible view, the open editor and the theme, and routes
// user actions into the editor and the case store. All methods are safe for
// concurrent use; they are serialized by one mutex.
type Shell struct {
	store      *store.Store
	metrics    *metrics.Collector
	now        func() time.Time
	editorOpts []graph.Option

	mu       sync.Mutex
	view     View
	editor   *graph.Editor
	title    string
	unsaved  bool
	theme    model.Theme
	onChange func(State)
}

// New creates a shell showing the dashboard with the default theme
func New(st *store.Store, opts ...Option) *Shell {
	s := &Shell{
		store: st,
		now:   func() time.Time { return time.Now().UTC().Truncate(time.Second) },
		view:  ViewDashboard,
		theme: model.DefaultTheme(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers a hook called with the new state after every change.
// The hook runs without the shell lock held and must not block.
func (s *Shell) OnChange(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// lock takes the shell lock, first closing an editor whose case is gone
// from the store, as after a reload that dropped it
func (s *Shell) lock() {
	s.mu.Lock()
	if s.editor != nil && !s.store.Has(s.editor.CaseID()) {
		logging.Warn("open case was removed from the store, closing editor", "caseID", s.editor.CaseID())
		s.closeEditor()
	}
}

// update runs fn under the lock and reports the resulting state on success
func (s *Shell) update(fn func() error) error {
	s.lock()
	err := fn()
	state := s.state()
	hook := s.onChange
	s.mu.Unlock()

	if err == nil && hook != nil {
		hook(state)
	}
	return err
}

// State returns a snapshot of the shell
func (s *Shell) State() State {
	s.lock()
	defer s.mu.Unlock()
	return s.state()
}

// Editor returns the open editor's state
func (s *Shell) Editor() (EditorState, error) {
	s.lock()
	defer s.mu.Unlock()
	if s.editor == nil {
		return EditorState{}, ErrEditorClosed
	}
	return *s.editorState(), nil
}

// Theme returns the current theme
func (s *Shell) Theme() model.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// OpenCase makes the case active and shows it in the editor
func (s *Shell) OpenCase(ctx context.Context, id string) error {
	return s.update(func() error {
		return s.open(logging.WithCaseID(ctx, id), id)
	})
}

func (s *Shell) open(ctx context.Context, id string) error {
	if err := s.store.SetActive(id); err != nil {
		return err
	}
	c, ok := s.store.Get(id)
	if !ok {
		return fmt.Errorf("%w: case %s", model.ErrNotFound, id)
	}
	s.editor = graph.Open(c, s.theme, s.editorOpts...)
	s.title = c.Title
	s.unsaved = false
	s.view = ViewGraphEditor
	logging.InfoContext(ctx, "editor opened", "persons", len(c.Nodes), "relationships", len(c.Edges))
	return nil
}

// CreateCase adds a new case and opens it
func (s *Shell) CreateCase(ctx context.Context, fields model.CaseFields) (model.Case, error) {
	var created model.Case
	err := s.update(func() error {
		c, err := s.store.CreateCase(fields)
		if err != nil {
			return err
		}
		created = c
		return s.open(logging.WithCaseID(ctx, c.ID), c.ID)
	})
	return created, err
}

// EditCase replaces the descriptive fields of a case. Status is kept when
// fields leave it empty.
func (s *Shell) EditCase(ctx context.Context, id string, fields model.CaseFields) (model.Case, error) {
	fields.Normalize()
	if err := model.Validate(fields); err != nil {
		return model.Case{}, err
	}

	var edited model.Case
	err := s.update(func() error {
		c, ok := s.store.Get(id)
		if !ok {
			logging.DebugContext(ctx, "edit of unknown case", "caseID", id)
			return fmt.Errorf("%w: case %s", model.ErrNotFound, id)
		}
		c.Title = fields.Title
		c.Subtitle = fields.Subtitle
		c.Description = fields.Description
		c.Client = fields.Client
		c.LeadInvestigator = fields.LeadInvestigator
		c.Tags = fields.Tags
		if fields.Status != "" {
			c.Status = fields.Status
		}
		c.LastModified = s.now()
		if err := s.store.UpdateCase(c); err != nil {
			return err
		}
		if s.editor != nil && s.editor.CaseID() == id {
			s.title = c.Title
		}
		edited = c
		return nil
	})
	return edited, err
}

// CloseEditor returns to the dashboard. Unsaved edits are discarded; the
// active case stays active.
func (s *Shell) CloseEditor(ctx context.Context) {
	_ = s.update(func() error {
		if s.editor != nil && s.unsaved {
			logging.InfoContext(logging.WithCaseID(ctx, s.editor.CaseID()), "editor closed with unsaved changes")
		}
		s.closeEditor()
		return nil
	})
}

func (s *Shell) closeEditor() {
	s.editor = nil
	s.title = ""
	s.unsaved = false
	s.view = ViewDashboard
}

// ResumeEditor reopens the active case
func (s *Shell) ResumeEditor(ctx context.Context) error {
	return s.update(func() error {
		if s.editor != nil {
			return nil
		}
		id := s.store.ActiveID()
		if id == "" {
			return model.ErrNoActiveCase
		}
		return s.open(logging.WithCaseID(ctx, id), id)
	})
}

// DeleteCase removes a case, closing the editor if it showed that case
func (s *Shell) DeleteCase(ctx context.Context, id string) error {
	return s.update(func() error {
		if err := s.store.DeleteCase(id); err != nil {
			logging.DebugContext(ctx, "delete of unknown case", "caseID", id)
			return err
		}
		if s.editor != nil && s.editor.CaseID() == id {
			s.closeEditor()
		}
		return nil
	})
}

// SaveEditor writes the editor's graph and title back to its case. A pending
// case becomes active on its first save.
func (s *Shell) SaveEditor(ctx context.Context) (model.Case, error) {
	var saved model.Case
	err := s.update(func() error {
		if s.editor == nil {
			return ErrEditorClosed
		}
		ctx := logging.WithCaseID(ctx, s.editor.CaseID())
		c, ok := s.store.Get(s.editor.CaseID())
		if !ok {
			logging.WarnContext(ctx, "open case no longer exists")
			return fmt.Errorf("%w: case %s", model.ErrNotFound, s.editor.CaseID())
		}
		c.Title = s.title
		c.Graph = s.editor.Graph()
		c.LastModified = s.now()
		if c.Status == model.StatusPending {
			c.Status = model.StatusActive
		}
		if err := s.store.UpdateCase(c); err != nil {
			return err
		}
		s.unsaved = false
		saved = c
		logging.InfoContext(ctx, "case saved", "persons", len(c.Nodes), "relationships", len(c.Edges))
		return nil
	})
	return saved, err
}

// RenameEditor changes the title shown in the editor; it is stored on save
func (s *Shell) RenameEditor(ctx context.Context, title string) error {
	title = strings.TrimSpace(title)
	return s.update(func() error {
		if s.editor == nil {
			return ErrEditorClosed
		}
		if title == "" {
			return fmt.Errorf("%w: title is required", model.ErrValidation)
		}
		s.title = title
		s.unsaved = true
		return nil
	})
}

// SetTheme switches the theme by name
func (s *Shell) SetTheme(ctx context.Context, name string) error {
	theme, ok := model.LookupTheme(name)
	if !ok {
		return fmt.Errorf("%w: unknown theme %q", model.ErrValidation, name)
	}
	return s.update(func() error {
		s.theme = theme
		if s.editor != nil {
			s.editor.SetTheme(theme)
		}
		logging.DebugContext(ctx, "theme changed", "theme", theme.Name)
		return nil
	})
}

// SetViewportCenter tells the editor where new persons should appear
func (s *Shell) SetViewportCenter(ctx context.Context, pos *model.Position) error {
	s.lock()
	defer s.mu.Unlock()
	if s.editor == nil {
		return ErrEditorClosed
	}
	s.editor.SetViewportCenter(pos)
	return nil
}
