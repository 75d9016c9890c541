package model

// NodeTypePerson is the renderer node type written for every person node
const NodeTypePerson = "custom"

// DefaultPhotoURL is the placeholder avatar used when a person has no photo
const DefaultPhotoURL = "https://ui-avatars.com/api/?name=N+A&background=random&size=80&font-size=0.33&bold=true&color=fff"

// Position is a free-form canvas coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PersonData holds the descriptive fields of a person node
type PersonData struct {
	Name     string `json:"name"`
	PhotoURL string `json:"photoUrl"`
	Role     string `json:"role,omitempty"` // e.g. "CEO", "Suspect"
	CPF      string `json:"cpf,omitempty"`  // national identifier
}

// Person is a vertex of a case's relationship web.
type Person struct {
	ID       string     `json:"id"`
	Type     string     `json:"type"`
	Position Position   `json:"position"`
	Data     PersonData `json:"data"`
}

// RelationshipData holds the typed payload of a relationship edge
type RelationshipData struct {
	Type     string   `json:"type"` // id from the relationship-type table, or free text
	Strength Strength `json:"strength,omitempty"`
}

// Relationship is an edge between two persons of the same case.
// Label is written for readers of the data file and recomputed on load.
type Relationship struct {
	ID     string           `json:"id"`
	Source string           `json:"source"`
	Target string           `json:"target"`
	Label  string           `json:"label,omitempty"`
	Data   RelationshipData `json:"data"`
}

// Graph is the relationship web owned by exactly one case
type Graph struct {
	Nodes []Person       `json:"nodes"`
	Edges []Relationship `json:"edges"`
}

// Clone returns a deep copy of the graph
func (g Graph) Clone() Graph {
	out := Graph{
		Nodes: make([]Person, len(g.Nodes)),
		Edges: make([]Relationship, len(g.Edges)),
	}
	copy(out.Nodes, g.Nodes)
	copy(out.Edges, g.Edges)
	return out
}
