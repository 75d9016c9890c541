package shell

import (
	"context"
	"errors"
	"fmt"

	"github.com/ritzau/casegraph/pkg/graph"
	"github.com/ritzau/casegraph/pkg/logging"
	"github.com/ritzau/casegraph/pkg/model"
)

// RelationshipInput is the payload of the add-relationship dialog
type RelationshipInput struct {
	Source   string         `json:"source"`
	Target   string         `json:"target"`
	Type     string         `json:"type"`
	Strength model.Strength `json:"strength,omitempty"`
}

// toolbar actions open the active case when the dashboard is shown
const (
	requireOpen = false
	openActive  = true
)

// edit runs one graph mutation against the open editor. Not-found errors
// leave the graph untouched and are logged as stale references.
func (s *Shell) edit(ctx context.Context, op string, routeToActive bool, fn func(e *graph.Editor) error) error {
	err := s.update(func() error {
		if s.editor == nil {
			if !routeToActive {
				return ErrEditorClosed
			}
			id := s.store.ActiveID()
			if id == "" {
				return model.ErrNoActiveCase
			}
			if err := s.open(logging.WithCaseID(ctx, id), id); err != nil {
				return err
			}
		}

		ctx := logging.WithCaseID(ctx, s.editor.CaseID())
		err := fn(s.editor)
		switch {
		case err == nil:
			s.unsaved = true
			logging.DebugContext(ctx, "graph edited", "op", op)
		case errors.Is(err, model.ErrNotFound):
			logging.DebugContext(ctx, "stale reference ignored", "op", op, "error", err)
		default:
			logging.DebugContext(ctx, "graph edit rejected", "op", op, "error", err)
		}
		return err
	})
	if !errors.Is(err, ErrEditorClosed) && !errors.Is(err, model.ErrNoActiveCase) {
		s.metrics.RecordMutation(op, err)
	}
	return err
}

// AddPerson adds a person to the open (or active) case
func (s *Shell) AddPerson(ctx context.Context, in graph.PersonInput) (model.Person, error) {
	var p model.Person
	err := s.edit(ctx, "add_person", openActive, func(e *graph.Editor) error {
		var err error
		p, err = e.AddPerson(in)
		return err
	})
	return p, err
}

// UpdatePerson merges fields into a person of the open case
func (s *Shell) UpdatePerson(ctx context.Context, id string, upd graph.PersonUpdate) error {
	return s.edit(ctx, "update_person", requireOpen, func(e *graph.Editor) error {
		return e.UpdatePerson(id, upd)
	})
}

// DeletePerson removes a person and its relationships
func (s *Shell) DeletePerson(ctx context.Context, id string) error {
	return s.edit(ctx, "delete_person", requireOpen, func(e *graph.Editor) error {
		return e.DeletePerson(id)
	})
}

// AddRelationship relates two persons of the open (or active) case
func (s *Shell) AddRelationship(ctx context.Context, in RelationshipInput) (graph.EdgeView, error) {
	var r graph.EdgeView
	err := s.edit(ctx, "add_relationship", openActive, func(e *graph.Editor) error {
		var err error
		r, err = e.AddRelationship(in.Source, in.Target, in.Type, in.Strength)
		return err
	})
	return r, err
}

// Connect is the drag-to-connect gesture
func (s *Shell) Connect(ctx context.Context, source, target string) (graph.EdgeView, error) {
	var r graph.EdgeView
	err := s.edit(ctx, "connect", requireOpen, func(e *graph.Editor) error {
		var err error
		r, err = e.Connect(source, target)
		return err
	})
	return r, err
}

// UpdateRelationship changes type and strength of a relationship
func (s *Shell) UpdateRelationship(ctx context.Context, id, relType string, strength model.Strength) error {
	return s.edit(ctx, "update_relationship", requireOpen, func(e *graph.Editor) error {
		return e.UpdateRelationship(id, relType, strength)
	})
}

// DeleteRelationship removes a relationship
func (s *Shell) DeleteRelationship(ctx context.Context, id string) error {
	return s.edit(ctx, "delete_relationship", requireOpen, func(e *graph.Editor) error {
		return e.DeleteRelationship(id)
	})
}

// Select replaces the selection; kind "none" clears it
func (s *Shell) Select(ctx context.Context, sel graph.Selection) error {
	return s.update(func() error {
		if s.editor == nil {
			return ErrEditorClosed
		}
		switch sel.Kind {
		case graph.SelectNone, "":
			s.editor.Deselect()
			return nil
		case graph.SelectNode:
			return s.editor.SelectNode(sel.ID)
		case graph.SelectEdge:
			return s.editor.SelectEdge(sel.ID)
		default:
			return fmt.Errorf("%w: unknown selection kind %q", model.ErrValidation, sel.Kind)
		}
	})
}

// Analyze summarizes the open graph
func (s *Shell) Analyze(ctx context.Context) (graph.Analysis, error) {
	s.lock()
	defer s.mu.Unlock()
	if s.editor == nil {
		return graph.Analysis{}, ErrEditorClosed
	}
	return s.editor.Analyze(), nil
}

// Distances gives the degrees of separation from a person in the open graph
func (s *Shell) Distances(ctx context.Context, personID string) (map[string]int, error) {
	s.lock()
	defer s.mu.Unlock()
	if s.editor == nil {
		return nil, ErrEditorClosed
	}
	d, err := s.editor.Distances(personID)
	if errors.Is(err, model.ErrNotFound) {
		logging.DebugContext(ctx, "stale reference ignored", "op", "distances", "error", err)
	}
	return d, err
}
