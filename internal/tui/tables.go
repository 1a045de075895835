package tui

import (
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dm/snapreport/internal/format"
	"github.com/dm/snapreport/internal/model"
)

type serverTable = dataTable[serverRow]
type failedServerTable = dataTable[failedServerRow]
type failedSnapshotTable = dataTable[failedSnapshotRow]

// newServerTable returns the per-server counters table, sorted by failed
// snapshots descending.
func newServerTable() serverTable {
	cols := []columnDef{
		{Title: "DC", Width: 6},
		{Title: "Server", Width: 22},
		{Title: "Repl", Width: 5},
		{Title: "Plan", Width: 12},
		{Title: "Total", Width: 6, SortDesc: true},
		{Title: "Failed", Width: 6, SortDesc: true},
		{Title: "Local", Width: 6, SortDesc: true},
		{Title: "Remote", Width: 6, SortDesc: true},
		{Title: "Latest", Width: 18, SortDesc: true},
	}
	m := serverTable{
		tableModel: newTableModel(cols),
		title:      "Snapshot Servers",
		empty:      "no snapshot servers",
		filter:     filterServerRows,
		sort:       sortServerRows,
		cell:       serverCellValue,
		colStyle:   serverCellStyle,
		detail: func(r serverRow) string {
			latest := model.NotAvailable
			if r.MostRecent != nil {
				latest = r.MostRecent.State + " (" + format.FormatAge(r.MostRecent.StartTime, time.Now()) + " ago)"
			}
			return r.Name + "  " + r.ID + "  " + r.Family + "  latest=" + latest
		},
	}
	m.sortCol = 5
	m.sortDesc = true
	return m
}

func serverCellValue(r serverRow, col int) string {
	switch col {
	case 0:
		return r.Datacenter
	case 1:
		return r.Name
	case 2:
		return format.FormatBool(r.HasReplication)
	case 3:
		return r.Plan
	case 4:
		return strconv.Itoa(r.Total)
	case 5:
		return strconv.Itoa(r.Failed)
	case 6:
		return strconv.Itoa(r.Local)
	case 7:
		return strconv.Itoa(r.Remote)
	case 8:
		if r.MostRecent == nil {
			return format.Placeholder
		}
		return format.FormatTimestamp(r.MostRecent.StartTime)
	default:
		return ""
	}
}

func serverCellStyle(r serverRow, col int) lipgloss.Style {
	switch col {
	case 0:
		return StyleBlue
	case 5:
		if r.Failed > 0 {
			return StyleRed
		}
		return StyleGreen
	case 6:
		return StyleCyan
	case 7:
		return StylePurple
	case 8:
		return severityToStyle(serverSeverity(r.ServerReportRow))
	default:
		return StyleWhite
	}
}

// newFailedServerTable returns the table of servers whose snapshots could
// not be retrieved.
func newFailedServerTable() failedServerTable {
	cols := []columnDef{
		{Title: "DC", Width: 6},
		{Title: "Server", Width: 22},
		{Title: "ID", Width: 20},
		{Title: "Code", Width: 18},
		{Title: "Error", Width: 34},
	}
	return failedServerTable{
		tableModel: newTableModel(cols),
		title:      "Failed Servers",
		empty:      "no failed servers",
		filter:     filterFailedServerRows,
		sort:       sortFailedServerRows,
		cell: func(r failedServerRow, col int) string {
			switch col {
			case 0:
				return r.Datacenter
			case 1:
				return r.Name
			case 2:
				return r.ID
			case 3:
				return r.Code
			case 4:
				return r.Error
			default:
				return ""
			}
		},
		colStyle: func(_ failedServerRow, col int) lipgloss.Style {
			switch col {
			case 0:
				return StyleBlue
			case 3:
				return StyleOrange
			case 4:
				return StyleRed
			default:
				return StyleWhite
			}
		},
		detail: func(r failedServerRow) string {
			return r.Name + "  " + r.ID + "  " + r.Error
		},
	}
}

// newFailedSnapshotTable returns the table of snapshots not in the NORMAL
// state, newest first.
func newFailedSnapshotTable() failedSnapshotTable {
	cols := []columnDef{
		{Title: "DC", Width: 6},
		{Title: "Server", Width: 18},
		{Title: "Snapshot", Width: 20},
		{Title: "State", Width: 14},
		{Title: "Consistency", Width: 14},
		{Title: "Index", Width: 12},
		{Title: "Start", Width: 18, SortDesc: true},
		{Title: "Replica", Width: 7},
		{Title: "Family", Width: 8},
	}
	m := failedSnapshotTable{
		tableModel: newTableModel(cols),
		title:      "Failed Snapshots",
		empty:      "no failed snapshots",
		filter:     filterFailedSnapshotRows,
		sort:       sortFailedSnapshotRows,
		cell: func(r failedSnapshotRow, col int) string {
			switch col {
			case 0:
				return r.Datacenter
			case 1:
				return r.Server
			case 2:
				return r.SnapshotID
			case 3:
				return r.State
			case 4:
				return r.Consistency
			case 5:
				return r.IndexState
			case 6:
				return format.FormatTimestamp(r.StartTime)
			case 7:
				return format.FormatBool(r.Replica)
			case 8:
				return r.Family
			default:
				return ""
			}
		},
		colStyle: func(r failedSnapshotRow, col int) lipgloss.Style {
			switch col {
			case 0:
				return StyleBlue
			case 3:
				return StateStyle(r.State)
			case 7:
				return StylePurple
			default:
				return StyleWhite
			}
		},
		detail: func(r failedSnapshotRow) string {
			return r.Server + "  " + r.ServerID + "  snapshot=" + r.SnapshotID + "  start=" + r.StartTime
		},
	}
	m.sortCol = 6
	m.sortDesc = true
	return m
}
