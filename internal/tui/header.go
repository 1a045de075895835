package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dm/snapreport/internal/format"
)

// renderHeader renders the top header bar with the run target, a status
// indicator and timing info.
//
// Layout:
//
//	left:   "snapreport <endpoint>" and the datacenters
//	center: colored "● STATUS" indicator
//	right:  "Run: <id>  Finished: HH:MM:SS" (or "Press r to retry" after an error)
func renderHeader(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}

	left := "snapreport"
	if app.target != "" {
		left += " " + app.target
	}

	var center, right string
	switch {
	case app.running && len(app.reports) == 0:
		center = StyleStatusUnknown.Render("● RUNNING")
	case app.lastError != nil:
		center = StyleError.Render("● FAILED  " + format.Truncate(sanitize(app.lastError.Error()), 40))
		right = StyleError.Render("Press r to retry")
	case len(app.reports) > 0:
		t := sumTotals(app.reports)
		switch {
		case t.FailedServers > 0 || t.FailedSnapshots > 0:
			center = StyleStatusYellow.Render(fmt.Sprintf("● %d FAILED SNAPSHOTS  %d FAILED SERVERS",
				t.FailedSnapshots, t.FailedServers))
		default:
			center = StyleStatusGreen.Render("● ALL NORMAL")
		}
	}

	if right == "" {
		var parts []string
		if id := app.runID(); id != "" {
			if len(id) > 8 {
				id = id[:8]
			}
			parts = append(parts, "Run: "+id)
		}
		switch {
		case app.running:
			parts = append(parts, "Running...")
		case !app.lastUpdated.IsZero():
			parts = append(parts, "Finished: "+app.lastUpdated.Format("15:04:05"))
		}
		right = StyleDim.Render(strings.Join(parts, "  "))
	}

	// StyleHeader has Padding(0, 1) so inner content width = total width - 2.
	innerWidth := width - 2
	spacing := innerWidth - lipgloss.Width(left) - lipgloss.Width(center) - lipgloss.Width(right)
	if spacing < 0 {
		spacing = 0
	}
	leftSpacing := spacing / 2
	rightSpacing := spacing - leftSpacing

	row := left +
		strings.Repeat(" ", leftSpacing) +
		center +
		strings.Repeat(" ", rightSpacing) +
		right

	return StyleHeader.Width(width).Render(row)
}
