package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ritzau/casegraph/pkg/logging"
	"github.com/ritzau/casegraph/pkg/metrics"
	"github.com/ritzau/casegraph/pkg/model"
)

// Persister reads and writes the whole case list. LoadCases returns nil, nil
// when nothing has been stored yet.
type Persister interface {
	LoadCases(ctx context.Context) ([]model.Case, error)
	SaveCases(ctx context.Context, cases []model.Case) error
}

// Stats are the dashboard counters
type Stats struct {
	TotalCases         int `json:"totalCases"`
	ActiveCases        int `json:"activeCases"`
	TotalPeople        int `json:"totalPeople"`
	TotalRelationships int `json:"totalRelationships"`
}

// Option configures a Store
type Option func(*Store)

// WithClock replaces time.Now for creation and modification stamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithMetrics records case counts and save outcomes
func WithMetrics(m *metrics.Collector) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// Store owns the case list and the active-case pointer. Every mutation hands
// a snapshot to a background saver; callers never wait for the write.
type Store struct {
	persister Persister
	now       func() time.Time
	metrics   *metrics.Collector

	mu          sync.RWMutex
	cases       []model.Case
	activeID    string
	closed      bool
	onSaveError func(error)
	onChange    func()

	pending chan []model.Case // latest unsaved snapshot, capacity 1
	done    chan struct{}

	writtenMu sync.Mutex
	written   []byte // encoding of the last snapshot the saver wrote
}

// New creates a store and starts its saver. Call Load before use and Close
// when done.
func New(p Persister, opts ...Option) *Store {
	s := &Store{
		persister: p,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Second) },
		cases:     []model.Case{},
		pending:   make(chan []model.Case, 1),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.saver()
	return s
}

// OnSaveError registers a hook for persistence failures. In-memory state is
// never rolled back; the hook lets the UI tell the user.
func (s *Store) OnSaveError(fn func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSaveError = fn
}

// OnChange registers a hook called after the case list changed
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Load reads the persisted list. When the persister fails or has no data the
// built-in sample cases are used; an explicitly stored empty list is kept.
// Load never fails: a read error is logged and passed to the OnSaveError hook.
func (s *Store) Load(ctx context.Context) {
	cases, err := s.persister.LoadCases(ctx)
	source := "storage"
	switch {
	case err != nil:
		logging.Warn("failed to load cases, using sample data", "error", err)
		s.reportSaveError(fmt.Errorf("load: %w", err))
		cases, source = model.SampleCases(), "samples"
	case cases == nil:
		cases, source = model.SampleCases(), "samples"
	}

	s.mu.Lock()
	s.cases = model.CloneCases(cases)
	s.activeID = ""
	s.mu.Unlock()

	s.metrics.SetCases(len(cases))
	logging.Info("cases loaded", "count", len(cases), "source", source)
	s.notify()
}

// Reload re-reads the persister after an external change of the stored data.
// The in-memory list is replaced only if the stored list differs from both
// the memory and the last snapshot this store wrote itself.
func (s *Store) Reload(ctx context.Context) (bool, error) {
	cases, err := s.persister.LoadCases(ctx)
	if err != nil {
		return false, fmt.Errorf("reload: %w", err)
	}
	if cases == nil {
		logging.Debug("stored data vanished, keeping memory")
		return false, nil
	}
	loaded, err := json.Marshal(cases)
	if err != nil {
		return false, fmt.Errorf("reload: %w", err)
	}

	s.writtenMu.Lock()
	own := bytes.Equal(loaded, s.written)
	s.writtenMu.Unlock()
	if own {
		logging.Trace("reload skipped, data is our own last write")
		return false, nil
	}

	s.mu.Lock()
	current, err := json.Marshal(s.cases)
	if err != nil || bytes.Equal(loaded, current) {
		s.mu.Unlock()
		return false, err
	}
	s.cases = model.CloneCases(cases)
	if s.indexOf(s.activeID) < 0 {
		s.activeID = ""
	}
	s.mu.Unlock()

	s.metrics.RecordReload()
	s.metrics.SetCases(len(cases))
	logging.Info("cases reloaded after external change", "count", len(cases))
	s.notify()
	return true, nil
}

// List returns a copy of all cases, most recent first
func (s *Store) List() []model.Case {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneCases(s.cases)
}

// Recent returns up to n cases from the head of the list
func (s *Store) Recent(n int) []model.Case {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n > len(s.cases) {
		n = len(s.cases)
	}
	if n < 0 {
		n = 0
	}
	return model.CloneCases(s.cases[:n])
}

// Get returns a copy of the case with the given id
func (s *Store) Get(id string) (model.Case, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.cases[i].Clone(), true
	}
	return model.Case{}, false
}

// Has reports whether a case with the given id exists
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(id) >= 0
}

// Stats counts cases, active cases, persons and relationships
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Stats{TotalCases: len(s.cases)}
	for _, c := range s.cases {
		if c.Status == model.StatusActive {
			st.ActiveCases++
		}
		st.TotalPeople += len(c.Nodes)
		st.TotalRelationships += len(c.Edges)
	}
	return st
}

// CreateCase validates the fields and prepends a new, empty case
func (s *Store) CreateCase(fields model.CaseFields) (model.Case, error) {
	fields.Normalize()
	if err := model.Validate(fields); err != nil {
		return model.Case{}, err
	}

	s.mu.Lock()
	now := s.now()
	status := fields.Status
	if status == "" {
		status = model.StatusActive
	}
	c := model.Case{
		ID:               s.newID(now),
		Title:            fields.Title,
		Subtitle:         fields.Subtitle,
		Status:           status,
		Description:      fields.Description,
		Client:           fields.Client,
		LeadInvestigator: fields.LeadInvestigator,
		CreationDate:     now,
		LastModified:     now,
		Tags:             fields.Tags,
		Graph:            model.Graph{Nodes: []model.Person{}, Edges: []model.Relationship{}},
	}
	s.cases = append([]model.Case{c}, s.cases...)
	s.changed()
	s.mu.Unlock()

	logging.Info("case created", "caseID", c.ID, "title", c.Title)
	s.notify()
	return c.Clone(), nil
}

// newID returns case-<unix millis>, moving forward on collision
func (s *Store) newID(now time.Time) string {
	ms := now.UnixMilli()
	for {
		id := fmt.Sprintf("case-%d", ms)
		if s.indexOf(id) < 0 {
			return id
		}
		ms++
	}
}

// UpdateCase replaces the case with the same id
func (s *Store) UpdateCase(c model.Case) error {
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("%w: title is required", model.ErrValidation)
	}

	s.mu.Lock()
	i := s.indexOf(c.ID)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: case %s", model.ErrNotFound, c.ID)
	}
	s.cases[i] = c.Clone()
	s.changed()
	s.mu.Unlock()

	logging.Debug("case updated", "caseID", c.ID)
	s.notify()
	return nil
}

// DeleteCase removes a case and clears the active pointer if it pointed there
func (s *Store) DeleteCase(id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: case %s", model.ErrNotFound, id)
	}
	s.cases = append(s.cases[:i:i], s.cases[i+1:]...)
	if s.activeID == id {
		s.activeID = ""
	}
	s.changed()
	s.mu.Unlock()

	logging.Info("case deleted", "caseID", id)
	s.notify()
	return nil
}

// SetActive points the active-case pointer at an existing case
func (s *Store) SetActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(id) < 0 {
		return fmt.Errorf("%w: case %s", model.ErrNotFound, id)
	}
	s.activeID = id
	return nil
}

// ActiveID returns the id of the active case, or "" when there is none
func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// Active returns a copy of the active case
func (s *Store) Active() (model.Case, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(s.activeID); i >= 0 && s.activeID != "" {
		return s.cases[i].Clone(), true
	}
	return model.Case{}, false
}

func (s *Store) indexOf(id string) int {
	for i, c := range s.cases {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// changed queues a snapshot for the saver. Callers hold s.mu, so there is a
// single producer and the drain-then-send below never blocks.
func (s *Store) changed() {
	s.metrics.SetCases(len(s.cases))
	if s.closed {
		logging.Warn("store is closed, change will not be saved")
		return
	}
	snapshot := model.CloneCases(s.cases)
	select {
	case <-s.pending:
	default:
	}
	s.pending <- snapshot
}

func (s *Store) notify() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func (s *Store) saver() {
	defer close(s.done)
	for snapshot := range s.pending {
		s.save(snapshot)
	}
}

func (s *Store) save(snapshot []model.Case) {
	start := time.Now()
	err := s.persister.SaveCases(context.Background(), snapshot)
	s.metrics.RecordSave(time.Since(start), err)
	if err != nil {
		logging.Error("failed to save cases", "error", err)
		s.reportSaveError(err)
		return
	}

	if encoded, err := json.Marshal(snapshot); err == nil {
		s.writtenMu.Lock()
		s.written = encoded
		s.writtenMu.Unlock()
	}
	logging.Debug("cases saved", "count", len(snapshot), "durationMs", time.Since(start).Milliseconds())
}

func (s *Store) reportSaveError(err error) {
	s.mu.RLock()
	fn := s.onSaveError
	s.mu.RUnlock()
	if fn != nil {
		fn(err)
	}
}

// Close saves the pending snapshot, if any, and stops the saver
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.pending)
	s.mu.Unlock()

	<-s.done
	return nil
}
