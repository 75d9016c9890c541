package graph

import (
	"sort"

	"github.com/ritzau/casegraph/pkg/model"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Analysis summarizes the shape of a relationship web
type Analysis struct {
	Components [][]string     `json:"components"` // person ids per connected group, largest first
	Degrees    map[string]int `json:"degrees"`    // distinct neighbours per person
	Isolated   []string       `json:"isolated"`   // persons without any relationship
	Central    []string       `json:"central"`    // persons with the highest degree
}

// webGraph maps person ids onto a gonum undirected graph
type webGraph struct {
	graph *simple.UndirectedGraph
	ids   map[string]int64
	names []string // graph ID -> person id
}

func newWebGraph(g model.Graph) *webGraph {
	w := &webGraph{
		graph: simple.NewUndirectedGraph(),
		ids:   make(map[string]int64, len(g.Nodes)),
	}
	for _, n := range g.Nodes {
		w.add(n.ID)
	}
	for _, r := range g.Edges {
		from, okFrom := w.ids[r.Source]
		to, okTo := w.ids[r.Target]
		// dangling or self edges cannot be represented; the editor never creates them
		if !okFrom || !okTo || from == to {
			continue
		}
		if !w.graph.HasEdgeBetween(from, to) {
			w.graph.SetEdge(w.graph.NewEdge(w.graph.Node(from), w.graph.Node(to)))
		}
	}
	return w
}

func (w *webGraph) add(personID string) {
	if _, exists := w.ids[personID]; exists {
		return
	}
	id := int64(len(w.names))
	w.ids[personID] = id
	w.names = append(w.names, personID)
	w.graph.AddNode(simple.Node(id))
}

// Analyze computes connected groups and degrees of a relationship web
func Analyze(g model.Graph) Analysis {
	w := newWebGraph(g)

	a := Analysis{
		Components: [][]string{},
		Degrees:    make(map[string]int, len(w.names)),
		Isolated:   []string{},
		Central:    []string{},
	}

	for _, component := range topo.ConnectedComponents(w.graph) {
		members := make([]string, 0, len(component))
		for _, n := range component {
			members = append(members, w.names[n.ID()])
		}
		sort.Strings(members)
		a.Components = append(a.Components, members)
	}
	sort.SliceStable(a.Components, func(i, j int) bool {
		if len(a.Components[i]) != len(a.Components[j]) {
			return len(a.Components[i]) > len(a.Components[j])
		}
		return a.Components[i][0] < a.Components[j][0]
	})

	highest := 0
	for id, name := range w.names {
		degree := w.graph.From(int64(id)).Len()
		a.Degrees[name] = degree
		if degree == 0 {
			a.Isolated = append(a.Isolated, name)
		}
		if degree > highest {
			highest = degree
		}
	}
	if highest > 0 {
		for _, name := range w.names {
			if a.Degrees[name] == highest {
				a.Central = append(a.Central, name)
			}
		}
	}
	sort.Strings(a.Isolated)
	sort.Strings(a.Central)

	return a
}

// Analyze runs Analyze over the editor's current graph
func (e *Editor) Analyze() Analysis {
	return Analyze(e.Graph())
}
