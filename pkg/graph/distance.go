package graph

import (
	"fmt"

	"github.com/ritzau/casegraph/pkg/model"
)

// Distances returns the degrees of separation from the nearest of the given
// persons to every person reachable from them. Persons in other groups are
// absent from the result.
func Distances(g model.Graph, from ...string) (map[string]int, error) {
	w := newWebGraph(g)

	type queued struct {
		id       int64
		distance int
	}
	distances := make(map[string]int, len(w.names))
	queue := make([]queued, 0, len(w.names))
	for _, personID := range from {
		id, ok := w.ids[personID]
		if !ok {
			return nil, fmt.Errorf("%w: person %s", model.ErrNotFound, personID)
		}
		if _, seen := distances[personID]; !seen {
			distances[personID] = 0
			queue = append(queue, queued{id: id})
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		neighbors := w.graph.From(current.id)
		for neighbors.Next() {
			n := neighbors.Node().ID()
			name := w.names[n]
			if _, seen := distances[name]; seen {
				continue
			}
			distances[name] = current.distance + 1
			queue = append(queue, queued{id: n, distance: current.distance + 1})
		}
	}
	return distances, nil
}

// Distances runs Distances over the editor's current graph
func (e *Editor) Distances(from ...string) (map[string]int, error) {
	return Distances(e.Graph(), from...)
}
