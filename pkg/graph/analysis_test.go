package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritzau/casegraph/pkg/model"
)

func person(id string) model.Person {
	return model.Person{ID: id, Type: model.NodeTypePerson, Data: model.PersonData{Name: id}}
}

func edge(id, source, target string) model.Relationship {
	return model.Relationship{ID: id, Source: source, Target: target, Data: model.RelationshipData{Type: "familiar"}}
}

func TestAnalyzeEmpty(t *testing.T) {
	a := Analyze(model.Graph{})

	assert.Empty(t, a.Components)
	assert.Empty(t, a.Degrees)
	assert.Empty(t, a.Isolated)
	assert.Empty(t, a.Central)
}

func TestAnalyzeComponentsAndDegrees(t *testing.T) {
	g := model.Graph{
		Nodes: []model.Person{person("a"), person("b"), person("c"), person("d"), person("e"), person("f")},
		Edges: []model.Relationship{
			edge("1", "a", "b"),
			edge("2", "a", "c"),
			edge("3", "c", "a"), // parallel in the other direction
			edge("4", "d", "e"),
			edge("5", "a", "ghost"),
		},
	}

	a := Analyze(g)

	assert.Equal(t, [][]string{{"a", "b", "c"}, {"d", "e"}, {"f"}}, a.Components)
	assert.Equal(t, map[string]int{"a": 2, "b": 1, "c": 1, "d": 1, "e": 1, "f": 0}, a.Degrees)
	assert.Equal(t, []string{"f"}, a.Isolated)
	assert.Equal(t, []string{"a"}, a.Central)
}

func TestAnalyzeWithoutEdgesHasNoCentral(t *testing.T) {
	a := Analyze(model.Graph{Nodes: []model.Person{person("x"), person("y")}})

	assert.Equal(t, []string{"x", "y"}, a.Isolated)
	assert.Empty(t, a.Central)
	assert.Len(t, a.Components, 2)
}

func TestEditorAnalyzeFollowsEdits(t *testing.T) {
	e := openEditor(newCase("case-1", "Alice", "Bob", "Carol"))
	_, err := e.Connect("1", "2")
	assert.NoError(t, err)

	a := e.Analyze()
	assert.Equal(t, [][]string{{"1", "2"}, {"3"}}, a.Components)

	assert.NoError(t, e.DeletePerson("2"))
	a = e.Analyze()
	assert.Equal(t, []string{"1", "3"}, a.Isolated)
}

func TestDistances(t *testing.T) {
	g := model.Graph{
		Nodes: []model.Person{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}, {ID: "x"}},
		Edges: []model.Relationship{
			{ID: "e1", Source: "a", Target: "b"},
			{ID: "e2", Source: "b", Target: "c"},
			{ID: "e3", Source: "c", Target: "d"},
			{ID: "e4", Source: "a", Target: "c"},
		},
	}

	got, err := Distances(g, "a")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 0, "b": 1, "c": 1, "d": 2}, got)

	got, err = Distances(g, "a", "d")
	require.NoError(t, err)
	assert.Equal(t, 1, got["c"])
	assert.Equal(t, 0, got["d"])

	_, err = Distances(g, "ghost")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
