package graph

// SelectionKind tells what, if anything, is selected in the editor
type SelectionKind string

const (
	SelectNone SelectionKind = "none"
	SelectNode SelectionKind = "node"
	SelectEdge SelectionKind = "edge"
)

// Selection is the editor's single selected element. At most one node or one
// edge is selected; setting either replaces the other.
type Selection struct {
	Kind SelectionKind `json:"kind"`
	ID   string        `json:"id,omitempty"`
}

// NoSelection is the empty selection
var NoSelection = Selection{Kind: SelectNone}

// IsNode reports whether the selection is the node with the given id
func (s Selection) IsNode(id string) bool {
	return s.Kind == SelectNode && s.ID == id
}

// IsEdge reports whether the selection is the edge with the given id
func (s Selection) IsEdge(id string) bool {
	return s.Kind == SelectEdge && s.ID == id
}
