package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ritzau/casegraph/pkg/model"
)

// idCounter allocates ids of the form "<prefix>-<caseID>-<n>"
type idCounter struct {
	prefix string
	caseID string
	last   int
}

func (c *idCounter) next() string {
	c.last++
	return fmt.Sprintf("%s-%s-%d", c.prefix, c.caseID, c.last)
}

// idSuffix parses the number after the last '-' of an id.
// Ids without a numeric suffix count as 0.
func idSuffix(id string) int {
	i := strings.LastIndex(id, "-")
	n, err := strconv.Atoi(id[i+1:])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func maxNodeSuffix(nodes []model.Person) int {
	highest := 0
	for _, n := range nodes {
		if s := idSuffix(n.ID); s > highest {
			highest = s
		}
	}
	return highest
}

func maxEdgeSuffix(edges []model.Relationship) int {
	highest := 0
	for _, e := range edges {
		if s := idSuffix(e.ID); s > highest {
			highest = s
		}
	}
	return highest
}
