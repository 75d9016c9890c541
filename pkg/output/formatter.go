package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/ritzau/casegraph/pkg/model"
	"github.com/ritzau/casegraph/pkg/store"
)

// PrintDashboard prints the case summary shown by --list
func PrintDashboard(w io.Writer, source string, stats store.Stats, cases []model.Case) {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	faint := color.New(color.Faint)

	bold.Fprintln(w, "Casegraph - Cases")
	bold.Fprintln(w, "=================")
	fmt.Fprintf(w, "Data: %s\n", source)
	fmt.Fprintf(w, "Cases: %d (%d active)\n", stats.TotalCases, stats.ActiveCases)
	fmt.Fprintf(w, "People: %d  Relationships: %d\n", stats.TotalPeople, stats.TotalRelationships)
	fmt.Fprintln(w)

	if len(cases) == 0 {
		faint.Fprintln(w, "No cases yet.")
		return
	}

	for _, c := range cases {
		statusColor(c.Status).Fprintf(w, "  %-10s", c.Status)
		bold.Fprintf(w, " %s", c.Title)
		if c.Subtitle != "" {
			fmt.Fprintf(w, " - %s", c.Subtitle)
		}
		fmt.Fprintln(w)
		cyan.Fprintf(w, "    %s", c.ID)
		fmt.Fprintf(w, "  %d people, %d relationships", len(c.Nodes), len(c.Edges))
		if !c.LastModified.IsZero() {
			faint.Fprintf(w, "  modified %s", c.LastModified.Local().Format("2006-01-02 15:04"))
		}
		fmt.Fprintln(w)
	}
}

func statusColor(s model.CaseStatus) *color.Color {
	switch s {
	case model.StatusActive:
		return color.New(color.FgGreen)
	case model.StatusPending:
		return color.New(color.FgYellow)
	case model.StatusCompleted:
		return color.New(color.FgBlue)
	default:
		return color.New(color.Faint)
	}
}
