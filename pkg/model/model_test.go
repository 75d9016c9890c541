package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRelationshipTableColorIgnoresTheme(t *testing.T) {
	light, ok := LookupTheme("Professional Light")
	require.True(t, ok)
	dark, ok := LookupTheme("forensic dark")
	require.True(t, ok)

	for _, rt := range RelationshipTypes {
		a := ResolveRelationship(rt.ID, light)
		b := ResolveRelationship(rt.ID, dark)
		assert.Equal(t, a, b, "type %s", rt.ID)
		assert.Equal(t, rt.Color, a.Color)
		assert.Equal(t, rt.Name, a.Label)
	}
}

func TestResolveRelationshipFallbackTracksAccent(t *testing.T) {
	light := Themes[0]
	dark := Themes[1]

	a := ResolveRelationship("Primo", light)
	b := ResolveRelationship("Primo", dark)

	assert.Equal(t, "Primo", a.Label)
	assert.Equal(t, light.AccentColor, a.Color)
	assert.Equal(t, dark.AccentColor, b.Color)

	// pure: same inputs, same output
	assert.Equal(t, a, ResolveRelationship("Primo", light))

	assert.Equal(t, Presentation{Label: UntypedLabel, Color: dark.AccentColor}, ResolveRelationship("", dark))
}

func TestDefaultRelationshipType(t *testing.T) {
	assert.Equal(t, "familiar", DefaultRelationshipType().ID)
}

func TestStrengthValid(t *testing.T) {
	assert.True(t, Strength("").Valid())
	assert.True(t, StrengthStrong.Valid())
	assert.True(t, StrengthMedium.Valid())
	assert.True(t, StrengthWeak.Valid())
	assert.False(t, Strength("Strong").Valid())
}

func TestValidateCaseFields(t *testing.T) {
	f := CaseFields{Title: "   ", Tags: []string{" a ", ""}}
	f.Normalize()
	assert.Equal(t, []string{"a"}, f.Tags)

	err := Validate(f)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "title is required")

	f.Title = "Caso"
	assert.NoError(t, Validate(f))

	f.Status = "Unknown"
	err = Validate(f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status must be one of")
}

func TestCaseJSONRoundTrip(t *testing.T) {
	original := SampleCases()

	data, err := json.MarshalIndent(original, "", "  ")
	require.NoError(t, err)

	var loaded []Case
	require.NoError(t, json.Unmarshal(data, &loaded))

	if diff := cmp.Diff(original, loaded, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCaseJSONShape(t *testing.T) {
	c := Case{
		ID:           "case-1",
		Title:        "T",
		Status:       StatusPending,
		CreationDate: time.Date(2025, 6, 29, 12, 0, 0, 0, time.UTC),
		LastModified: time.Date(2025, 6, 29, 12, 0, 0, 0, time.UTC),
		Graph: Graph{
			Nodes: []Person{{ID: "n-1", Type: NodeTypePerson, Data: PersonData{Name: "A", PhotoURL: DefaultPhotoURL}}},
			Edges: []Relationship{},
		},
	}

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))

	// nodes and edges sit at the top level of the case object
	assert.Contains(t, raw, "nodes")
	assert.Contains(t, raw, "edges")
	assert.Equal(t, "Pendente", raw["status"])
	assert.Equal(t, "2025-06-29T12:00:00Z", raw["creationDate"])
}

func TestCloneIsDeep(t *testing.T) {
	cases := SampleCases()
	clone := CloneCases(cases)

	clone[0].Nodes[0].Data.Name = "changed"
	clone[0].Tags[0] = "changed"

	assert.NotEqual(t, "changed", cases[0].Nodes[0].Data.Name)
	assert.NotEqual(t, "changed", cases[0].Tags[0])
}

func TestSampleCasesAreFresh(t *testing.T) {
	a := SampleCases()
	a[0].Title = "mutated"
	b := SampleCases()
	assert.NotEqual(t, "mutated", b[0].Title)
	assert.Len(t, b, 4)
}
