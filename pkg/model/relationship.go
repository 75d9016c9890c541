package model

// RelationshipType is one entry of the static relationship-type table
type RelationshipType struct {
	ID    string `json:"id"`    // e.g. "familiar", "societario"
	Name  string `json:"name"`  // display name, e.g. "Societário"
	Color string `json:"color"` // hex color for the edge and legend
}

// RelationshipTypes is the static type table. Order matters: the first entry is
// the default type for drag-to-connect.
var RelationshipTypes = []RelationshipType{
	{ID: "familiar", Name: "Familiar", Color: "#EF4444"},
	{ID: "conjugal", Name: "Conjugal", Color: "#EC4899"},
	{ID: "societario", Name: "Societário", Color: "#3B82F6"},
	{ID: "financeiro", Name: "Financeiro", Color: "#22C55E"},
	{ID: "profissional", Name: "Profissional", Color: "#8B5CF6"},
	{ID: "politico", Name: "Político", Color: "#F97316"},
	{ID: "juridico", Name: "Jurídico", Color: "#4B5563"},
	{ID: "criminal", Name: "Criminal", Color: "#DC2626"},
}

// LookupRelationshipType finds a table entry by id
func LookupRelationshipType(id string) (RelationshipType, bool) {
	for _, t := range RelationshipTypes {
		if t.ID == id {
			return t, true
		}
	}
	return RelationshipType{}, false
}

// DefaultRelationshipType is the head of the table
func DefaultRelationshipType() RelationshipType {
	return RelationshipTypes[0]
}

// Presentation is the derived label and stroke color of an edge
type Presentation struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// UntypedLabel labels stored edges that carry no type at all
const UntypedLabel = "Relacionamento"

// ResolveRelationship projects a relationship type onto its presentation.
// Table entries keep their own color under every theme; unknown (custom) types
// use the raw type string as label and the theme accent as color.
func ResolveRelationship(relType string, theme Theme) Presentation {
	if t, ok := LookupRelationshipType(relType); ok {
		return Presentation{Label: t.Name, Color: t.Color}
	}
	if relType == "" {
		return Presentation{Label: UntypedLabel, Color: theme.AccentColor}
	}
	return Presentation{Label: relType, Color: theme.AccentColor}
}
