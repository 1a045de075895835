package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dm/snapreport/internal/format"
	"github.com/dm/snapreport/internal/model"
)

// runTotals sums the report counters across datacenters.
type runTotals struct {
	model.Totals
	Datacenters     int
	FailedServers   int
	FailedSnapshots int
}

func sumTotals(reports []*model.DatacenterReport) runTotals {
	var t runTotals
	for _, rep := range reports {
		if rep == nil || rep.Report == nil {
			continue
		}
		t.Datacenters++
		t.Servers += rep.Report.Totals.Servers
		t.EligibleServers += rep.Report.Totals.EligibleServers
		t.Snapshots += rep.Report.Totals.Snapshots
		t.ReplicaSnapshots += rep.Report.Totals.ReplicaSnapshots
		t.FailedServers += len(rep.Report.FailedServers)
		t.FailedSnapshots += len(rep.Report.FailedSnapshots)
	}
	return t
}

// healthyPercent is the share of snapshots in the NORMAL state. A run
// without snapshots counts as fully healthy.
func (t runTotals) healthyPercent() float64 {
	if t.Snapshots <= 0 {
		return 100
	}
	return float64(t.Snapshots-t.FailedSnapshots) * 100 / float64(t.Snapshots)
}

// renderOverview renders the 7-card totals bar.
// Wide terminals (>= 80 cols): all 7 cards in a single horizontal row.
// Narrow terminals (< 80 cols): cards stacked in rows of 2.
// Returns empty string if there are no reports yet.
func renderOverview(reports []*model.DatacenterReport, width int) string {
	if len(reports) == 0 {
		return ""
	}
	if width <= 0 {
		width = 80
	}

	narrowMode := width < 80
	var cardWidth int
	if narrowMode {
		cardWidth = (width - 4) / 2
		if cardWidth < 10 {
			cardWidth = 10
		}
	} else {
		cardWidth = (width - 14) / 7
		if cardWidth < 8 {
			cardWidth = 8
		}
	}
	barWidth := cardWidth - 4
	if barWidth < 4 {
		barWidth = 4
	}

	t := sumTotals(reports)
	card := func(fg lipgloss.Color, value, label string) string {
		return StyleOverviewCard.Foreground(fg).Width(cardWidth).Render(value + "\n" + label)
	}

	// Card 1: snapshot health with mini bar, colored by failure severity.
	healthy := t.healthyPercent()
	sev := failureSeverity(t.FailedSnapshots, t.Snapshots)
	healthVal := format.FormatPercent(healthy)
	if sev == severityCritical {
		healthVal += "!"
	}
	card1 := StyleOverviewCard.
		Foreground(severityFg(sev)).
		Bold(true).
		Width(cardWidth).
		Render(healthVal + "\n" + renderMiniBar(healthy, barWidth) + "\nHealthy")

	card2 := card(colorBlue, format.FormatCount(t.Servers), "Servers")
	card3 := card(colorIndigo, format.FormatCount(t.EligibleServers), "Snapshot Servers")
	card4 := card(colorCyan, format.FormatCount(t.Snapshots), "Snapshots")
	card5 := card(colorPurple, format.FormatCount(t.ReplicaSnapshots), "Replicas")
	card6 := card(severityFg(failureSeverity(t.FailedServers, t.EligibleServers)),
		format.FormatCount(t.FailedServers), "Failed Servers")
	card7 := card(severityFg(sev), format.FormatCount(t.FailedSnapshots), "Failed Snapshots")

	if narrowMode {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, card1, card2)
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, card3, card4)
		row3 := lipgloss.JoinHorizontal(lipgloss.Top, card5, card6)
		return lipgloss.JoinVertical(lipgloss.Left, row1, row2, row3, card7)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, card1, card2, card3, card4, card5, card6, card7)
}

// renderMiniBar renders a mini progress bar using Unicode block characters.
// Fills proportionally using "█" (U+2588) for filled and "░" (U+2591) for empty cells.
func renderMiniBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
