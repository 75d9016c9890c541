package output

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/ritzau/casegraph/pkg/model"
	"github.com/ritzau/casegraph/pkg/store"
)

func TestPrintDashboard(t *testing.T) {
	color.NoColor = true

	cases := model.SampleCases()
	stats := store.Stats{TotalCases: len(cases), ActiveCases: 2, TotalPeople: 9, TotalRelationships: 7}

	var buf bytes.Buffer
	PrintDashboard(&buf, "/tmp/data.json", stats, cases)
	out := buf.String()

	assert.Contains(t, out, "Data: /tmp/data.json")
	assert.Contains(t, out, "Cases: 4 (2 active)")
	assert.Contains(t, out, "People: 9  Relationships: 7")
	for _, c := range cases {
		assert.Contains(t, out, c.Title)
		assert.Contains(t, out, c.ID)
	}
}

func TestPrintDashboardEmpty(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	PrintDashboard(&buf, "db.sqlite", store.Stats{}, nil)
	assert.Contains(t, buf.String(), "No cases yet.")
}
