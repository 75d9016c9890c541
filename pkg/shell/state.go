package shell

import (
	"github.com/ritzau/casegraph/pkg/graph"
	"github.com/ritzau/casegraph/pkg/model"
)

// State is what the UI needs to render the shell
type State struct {
	View         View         `json:"view"`
	ActiveCaseID string       `json:"activeCaseId,omitempty"`
	Theme        model.Theme  `json:"theme"`
	Editor       *EditorState `json:"editor,omitempty"`
}

// EditorState is the open graph with presentation resolved for the current theme
type EditorState struct {
	CaseID               string           `json:"caseId"`
	Title                string           `json:"title"`
	Status               model.CaseStatus `json:"status"`
	Unsaved              bool             `json:"unsaved"`
	Nodes                []model.Person   `json:"nodes"`
	Edges                []graph.EdgeView `json:"edges"`
	Selection            graph.Selection  `json:"selection"`
	SelectedPerson       *model.Person    `json:"selectedPerson,omitempty"`
	SelectedRelationship *graph.EdgeView  `json:"selectedRelationship,omitempty"`
	Stats                graph.GraphStats `json:"stats"`
}

func (s *Shell) state() State {
	return State{
		View:         s.view,
		ActiveCaseID: s.store.ActiveID(),
		Theme:        s.theme,
		Editor:       s.editorState(),
	}
}

func (s *Shell) editorState() *EditorState {
	if s.editor == nil {
		return nil
	}
	es := &EditorState{
		CaseID:    s.editor.CaseID(),
		Title:     s.title,
		Unsaved:   s.unsaved,
		Nodes:     s.editor.Persons(),
		Edges:     s.editor.Edges(),
		Selection: s.editor.Selection(),
		Stats:     s.editor.Stats(),
	}
	if c, ok := s.store.Get(es.CaseID); ok {
		es.Status = c.Status
	}
	if p, ok := s.editor.SelectedPerson(); ok {
		es.SelectedPerson = &p
	}
	if r, ok := s.editor.SelectedRelationship(); ok {
		es.SelectedRelationship = &r
	}
	return es
}
