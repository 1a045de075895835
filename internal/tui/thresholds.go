package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dm/snapreport/internal/model"
)

// severity represents the alert level for a report value.
type severity int

const (
	severityNormal   severity = iota
	severityWarning           // yellow
	severityCritical          // red
)

// failureSeverity grades the share of failed items: Warning above 0%,
// Critical above 10%.
func failureSeverity(failed, total int) severity {
	if failed <= 0 || total <= 0 {
		return severityNormal
	}
	pct := float64(failed) * 100 / float64(total)
	if pct > 10 {
		return severityCritical
	}
	return severityWarning
}

// serverSeverity grades one report row: Critical when its most recent
// snapshot is not NORMAL or it has none, Warning when any snapshot failed.
func serverSeverity(row model.ServerReportRow) severity {
	switch {
	case row.MostRecent == nil || row.MostRecent.State != model.StateNormal:
		return severityCritical
	case row.Failed > 0:
		return severityWarning
	default:
		return severityNormal
	}
}

// severityToStyle maps a severity level to the appropriate lipgloss style.
func severityToStyle(s severity) lipgloss.Style {
	switch s {
	case severityWarning:
		return StyleYellow
	case severityCritical:
		return StyleRed
	default:
		return StyleGreen
	}
}

// severityFg returns the foreground color of a severity level.
func severityFg(s severity) lipgloss.Color {
	switch s {
	case severityWarning:
		return colorYellow
	case severityCritical:
		return colorRed
	default:
		return colorGreen
	}
}
