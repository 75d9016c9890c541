package graph

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/ritzau/casegraph/pkg/model"
)

// PersonInput holds the fields for a new person
type PersonInput struct {
	Name     string `json:"name" validate:"required"`
	PhotoURL string `json:"photoUrl"`
	Role     string `json:"role"`
	CPF      string `json:"cpf"`
}

// PersonUpdate holds a partial update; nil fields are left unchanged
type PersonUpdate struct {
	Name     *string         `json:"name,omitempty"`
	PhotoURL *string         `json:"photoUrl,omitempty"`
	Role     *string         `json:"role,omitempty"`
	CPF      *string         `json:"cpf,omitempty"`
	Position *model.Position `json:"position,omitempty"`
}

// EdgeView is a relationship together with its presentation under the current theme
type EdgeView struct {
	model.Relationship
	Color string `json:"color"`
}

// Option configures an Editor
type Option func(*Editor)

// WithRandom replaces the source used for default node placement
func WithRandom(r *rand.Rand) Option {
	return func(e *Editor) {
		e.random = r.Float64
	}
}

// Editor is the graph state of the currently open case: its persons, their
// relationships, the selection, and the id counters.
//
// An Editor is not safe for concurrent use; callers serialize access.
type Editor struct {
	caseID   string
	nodes    []model.Person
	edges    []model.Relationship
	sel      Selection
	theme    model.Theme
	viewport *model.Position
	nodeIDs  idCounter
	edgeIDs  idCounter
	random   func() float64
}

// Open creates an editor over a copy of the case's graph. Id counters are
// derived from the highest numeric id suffix already present, so ids created
// after a reload never collide with persisted ones.
func Open(c model.Case, theme model.Theme, opts ...Option) *Editor {
	g := c.Graph.Clone()
	e := &Editor{
		caseID:  c.ID,
		nodes:   g.Nodes,
		edges:   g.Edges,
		sel:     NoSelection,
		theme:   theme,
		nodeIDs: idCounter{prefix: "person", caseID: c.ID, last: maxNodeSuffix(g.Nodes)},
		edgeIDs: idCounter{prefix: "edge", caseID: c.ID, last: maxEdgeSuffix(g.Edges)},
		random:  rand.Float64,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CaseID returns the id of the case being edited
func (e *Editor) CaseID() string {
	return e.caseID
}

// Theme returns the active theme
func (e *Editor) Theme() model.Theme {
	return e.theme
}

// SetTheme changes the theme. Only edge presentation changes; data is untouched.
func (e *Editor) SetTheme(theme model.Theme) {
	e.theme = theme
}

// SetViewportCenter sets where new persons are placed. Pass nil to fall back
// to random placement.
func (e *Editor) SetViewportCenter(pos *model.Position) {
	if pos == nil {
		e.viewport = nil
		return
	}
	p := *pos
	e.viewport = &p
}

// Persons returns the nodes in display order
func (e *Editor) Persons() []model.Person {
	out := make([]model.Person, len(e.nodes))
	copy(out, e.nodes)
	return out
}

// Edges returns the relationships with presentation resolved against the current theme
func (e *Editor) Edges() []EdgeView {
	out := make([]EdgeView, len(e.edges))
	for i, r := range e.edges {
		out[i] = e.view(r)
	}
	return out
}

func (e *Editor) view(r model.Relationship) EdgeView {
	p := model.ResolveRelationship(r.Data.Type, e.theme)
	r.Label = p.Label
	return EdgeView{Relationship: r, Color: p.Color}
}

// Graph returns a copy of the graph ready to be stored in the case.
// Labels are refreshed from the type table.
func (e *Editor) Graph() model.Graph {
	g := model.Graph{
		Nodes: make([]model.Person, len(e.nodes)),
		Edges: make([]model.Relationship, len(e.edges)),
	}
	copy(g.Nodes, e.nodes)
	for i, r := range e.edges {
		g.Edges[i] = e.view(r).Relationship
	}
	return g
}

// Person looks up a node by id
func (e *Editor) Person(id string) (model.Person, bool) {
	if i := e.nodeIndex(id); i >= 0 {
		return e.nodes[i], true
	}
	return model.Person{}, false
}

// Relationship looks up an edge by id
func (e *Editor) Relationship(id string) (EdgeView, bool) {
	if i := e.edgeIndex(id); i >= 0 {
		return e.view(e.edges[i]), true
	}
	return EdgeView{}, false
}

// AddPerson appends a new person. The name must not be blank.
func (e *Editor) AddPerson(in PersonInput) (model.Person, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := model.Validate(in); err != nil {
		return model.Person{}, err
	}

	p := model.Person{
		ID:       e.nodeIDs.next(),
		Type:     model.NodeTypePerson,
		Position: e.placement(),
		Data: model.PersonData{
			Name:     in.Name,
			PhotoURL: photoOrDefault(in.PhotoURL),
			Role:     strings.TrimSpace(in.Role),
			CPF:      strings.TrimSpace(in.CPF),
		},
	}
	e.nodes = append(e.nodes, p)
	return p, nil
}

func (e *Editor) placement() model.Position {
	if e.viewport != nil {
		return *e.viewport
	}
	return model.Position{
		X: e.random()*400 + 50,
		Y: e.random()*300 + 50,
	}
}

func photoOrDefault(url string) string {
	if url = strings.TrimSpace(url); url != "" {
		return url
	}
	return model.DefaultPhotoURL
}

// UpdatePerson merges the given fields into the person's data.
func (e *Editor) UpdatePerson(id string, upd PersonUpdate) error {
	i := e.nodeIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: person %s", model.ErrNotFound, id)
	}

	p := e.nodes[i]
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return fmt.Errorf("%w: name is required", model.ErrValidation)
		}
		p.Data.Name = name
	}
	if upd.PhotoURL != nil {
		p.Data.PhotoURL = photoOrDefault(*upd.PhotoURL)
	}
	if upd.Role != nil {
		p.Data.Role = strings.TrimSpace(*upd.Role)
	}
	if upd.CPF != nil {
		p.Data.CPF = strings.TrimSpace(*upd.CPF)
	}
	if upd.Position != nil {
		p.Position = *upd.Position
	}
	e.nodes[i] = p
	return nil
}

// DeletePerson removes a person and every relationship that touches it.
func (e *Editor) DeletePerson(id string) error {
	i := e.nodeIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: person %s", model.ErrNotFound, id)
	}
	e.nodes = append(e.nodes[:i], e.nodes[i+1:]...)

	kept := e.edges[:0]
	for _, r := range e.edges {
		if r.Source == id || r.Target == id {
			if e.sel.IsEdge(r.ID) {
				e.sel = NoSelection
			}
			continue
		}
		kept = append(kept, r)
	}
	e.edges = kept

	if e.sel.IsNode(id) {
		e.sel = NoSelection
	}
	return nil
}

// AddRelationship connects two distinct, existing persons.
func (e *Editor) AddRelationship(source, target, relType string, strength model.Strength) (EdgeView, error) {
	relType = strings.TrimSpace(relType)
	if err := e.checkRelationship(source, target, relType, strength); err != nil {
		return EdgeView{}, err
	}
	if e.hasEdge(source, target) {
		return EdgeView{}, fmt.Errorf("%w: %s is already related to %s", model.ErrValidation, source, target)
	}

	r := model.Relationship{
		ID:     e.edgeIDs.next(),
		Source: source,
		Target: target,
		Data:   model.RelationshipData{Type: relType, Strength: strength},
	}
	e.edges = append(e.edges, r)
	return e.view(r), nil
}

// Connect is the drag-to-connect gesture: the default relationship type at medium strength.
func (e *Editor) Connect(source, target string) (EdgeView, error) {
	return e.AddRelationship(source, target, model.DefaultRelationshipType().ID, model.StrengthMedium)
}

// hasEdge reports whether source already points at target. The reverse
// direction is a different relationship.
func (e *Editor) hasEdge(source, target string) bool {
	for _, r := range e.edges {
		if r.Source == source && r.Target == target {
			return true
		}
	}
	return false
}

func (e *Editor) checkRelationship(source, target, relType string, strength model.Strength) error {
	if relType == "" {
		return fmt.Errorf("%w: relationship type is required", model.ErrValidation)
	}
	if source == target {
		return fmt.Errorf("%w: cannot relate a person to themselves", model.ErrValidation)
	}
	if e.nodeIndex(source) < 0 {
		return fmt.Errorf("%w: unknown source person %s", model.ErrValidation, source)
	}
	if e.nodeIndex(target) < 0 {
		return fmt.Errorf("%w: unknown target person %s", model.ErrValidation, target)
	}
	if !strength.Valid() {
		return fmt.Errorf("%w: unknown strength %q", model.ErrValidation, strength)
	}
	return nil
}

// UpdateRelationship changes type and strength of an edge.
func (e *Editor) UpdateRelationship(id, relType string, strength model.Strength) error {
	i := e.edgeIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: relationship %s", model.ErrNotFound, id)
	}
	relType = strings.TrimSpace(relType)
	if relType == "" {
		return fmt.Errorf("%w: relationship type is required", model.ErrValidation)
	}
	if !strength.Valid() {
		return fmt.Errorf("%w: unknown strength %q", model.ErrValidation, strength)
	}
	e.edges[i].Data = model.RelationshipData{Type: relType, Strength: strength}
	return nil
}

// DeleteRelationship removes an edge.
func (e *Editor) DeleteRelationship(id string) error {
	i := e.edgeIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: relationship %s", model.ErrNotFound, id)
	}
	e.edges = append(e.edges[:i], e.edges[i+1:]...)
	if e.sel.IsEdge(id) {
		e.sel = NoSelection
	}
	return nil
}

// Selection returns the current selection
func (e *Editor) Selection() Selection {
	return e.sel
}

// SelectNode selects a person, clearing any selected relationship
func (e *Editor) SelectNode(id string) error {
	if e.nodeIndex(id) < 0 {
		return fmt.Errorf("%w: person %s", model.ErrNotFound, id)
	}
	e.sel = Selection{Kind: SelectNode, ID: id}
	return nil
}

// SelectEdge selects a relationship, clearing any selected person
func (e *Editor) SelectEdge(id string) error {
	if e.edgeIndex(id) < 0 {
		return fmt.Errorf("%w: relationship %s", model.ErrNotFound, id)
	}
	e.sel = Selection{Kind: SelectEdge, ID: id}
	return nil
}

// Deselect clears the selection (pane click)
func (e *Editor) Deselect() {
	e.sel = NoSelection
}

// SelectedPerson returns the selected person with its current data
func (e *Editor) SelectedPerson() (model.Person, bool) {
	if e.sel.Kind != SelectNode {
		return model.Person{}, false
	}
	return e.Person(e.sel.ID)
}

// SelectedRelationship returns the selected relationship with its current presentation
func (e *Editor) SelectedRelationship() (EdgeView, bool) {
	if e.sel.Kind != SelectEdge {
		return EdgeView{}, false
	}
	return e.Relationship(e.sel.ID)
}

func (e *Editor) nodeIndex(id string) int {
	for i, n := range e.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (e *Editor) edgeIndex(id string) int {
	for i, r := range e.edges {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// GraphStats counts the elements of the open graph
type GraphStats struct {
	Persons       int `json:"persons"`
	Relationships int `json:"relationships"`
}

// Stats returns node and edge counts
func (e *Editor) Stats() GraphStats {
	return GraphStats{Persons: len(e.nodes), Relationships: len(e.edges)}
}
