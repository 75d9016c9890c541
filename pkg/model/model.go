package model

import "time"

// CaseStatus represents the lifecycle state of an investigation case.
// Values are stored literally in the data file.
type CaseStatus string

const (
	StatusActive    CaseStatus = "Ativo"
	StatusPending   CaseStatus = "Pendente"
	StatusCompleted CaseStatus = "Concluído"
	StatusArchived  CaseStatus = "Arquivado"
)

// Strength represents how strong a relationship between two persons is
type Strength string

const (
	StrengthStrong Strength = "Forte"
	StrengthMedium Strength = "Médio"
	StrengthWeak   Strength = "Fraco"
)

// Strengths lists the valid relationship strengths, strongest first.
var Strengths = []Strength{StrengthStrong, StrengthMedium, StrengthWeak}

// Valid reports whether s is empty (no strength given) or one of Strengths.
func (s Strength) Valid() bool {
	if s == "" {
		return true
	}
	for _, known := range Strengths {
		if s == known {
			return true
		}
	}
	return false
}

// CaseFile is a document reference attached to a case
type CaseFile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"` // "pdf", "image", "document"
	URL       string `json:"url"`
	AddedDate string `json:"addedDate"`
}

// Case is a single investigation record with its relationship web.
type Case struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Subtitle         string     `json:"subtitle,omitempty"`
	Status           CaseStatus `json:"status"`
	Description      string     `json:"description,omitempty"`
	Client           string     `json:"client,omitempty"`
	LeadInvestigator string     `json:"leadInvestigator,omitempty"`
	CreationDate     time.Time  `json:"creationDate"`
	LastModified     time.Time  `json:"lastModifiedDate"`
	Tags             []string   `json:"tags,omitempty"`
	Files            []CaseFile `json:"files,omitempty"`
	Graph
}

// Clone returns a deep copy of the case
func (c Case) Clone() Case {
	out := c
	out.Graph = c.Graph.Clone()
	if c.Tags != nil {
		out.Tags = append([]string(nil), c.Tags...)
	}
	if c.Files != nil {
		out.Files = append([]CaseFile(nil), c.Files...)
	}
	return out
}

// CloneCases deep-copies a case list
func CloneCases(cases []Case) []Case {
	if cases == nil {
		return nil
	}
	out := make([]Case, len(cases))
	for i, c := range cases {
		out[i] = c.Clone()
	}
	return out
}

// CaseFields are the user-editable descriptive fields used when creating a case
type CaseFields struct {
	Title            string     `json:"title" validate:"required"`
	Subtitle         string     `json:"subtitle"`
	Description      string     `json:"description"`
	Client           string     `json:"client"`
	LeadInvestigator string     `json:"leadInvestigator"`
	Tags             []string   `json:"tags" validate:"dive,required"`
	Status           CaseStatus `json:"status" validate:"omitempty,oneof=Ativo Pendente Concluído Arquivado"`
}
