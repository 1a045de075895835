package tui

import (
	"cmp"
	"sort"
	"strings"

	"github.com/dm/snapreport/internal/model"
)

// serverRow is a classified server tagged with its datacenter.
type serverRow struct {
	Datacenter string
	model.ServerReportRow
}

// failedServerRow is a failed server tagged with its datacenter.
type failedServerRow struct {
	Datacenter string
	model.FailedServerRecord
}

// failedSnapshotRow is an anomalous snapshot tagged with its datacenter.
type failedSnapshotRow struct {
	Datacenter string
	model.AnomalousSnapshotRecord
}

// flattenReports collects the rows of every report in report order.
func flattenReports(reports []*model.DatacenterReport) ([]serverRow, []failedServerRow, []failedSnapshotRow) {
	var servers []serverRow
	var failedServers []failedServerRow
	var failedSnaps []failedSnapshotRow
	for _, rep := range reports {
		if rep == nil || rep.Report == nil {
			continue
		}
		for _, s := range rep.Report.Servers {
			servers = append(servers, serverRow{Datacenter: rep.Datacenter, ServerReportRow: s})
		}
		for _, f := range rep.Report.FailedServers {
			failedServers = append(failedServers, failedServerRow{Datacenter: rep.Datacenter, FailedServerRecord: f})
		}
		for _, a := range rep.Report.FailedSnapshots {
			failedSnaps = append(failedSnaps, failedSnapshotRow{Datacenter: rep.Datacenter, AnomalousSnapshotRecord: a})
		}
	}
	return servers, failedServers, failedSnaps
}

func lowerCmp(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func boolCmp(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

func latestStart(r serverRow) string {
	if r.MostRecent == nil {
		return ""
	}
	return r.MostRecent.StartTime
}

// sortRows returns a sorted copy of rows. cmpCol compares two rows on one
// column; ties fall back to tie. col -1 preserves input order.
func sortRows[T any](rows []T, col int, desc bool, cmpCol func(a, b T, col int) int, tie func(a, b T) int) []T {
	out := make([]T, len(rows))
	copy(out, rows)
	if col < 0 {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		c := cmpCol(out[i], out[j], col)
		if c == 0 {
			// Ties always break ascending, whatever the direction.
			return tie(out[i], out[j]) < 0
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

// sortServerRows sorts by column:
//
//	0=Datacenter, 1=Name, 2=Replication, 3=Plan, 4=Total, 5=Failed,
//	6=Local, 7=Remote, 8=Latest start
//
// Ties are broken by Name ascending.
func sortServerRows(rows []serverRow, col int, desc bool) []serverRow {
	return sortRows(rows, col, desc, func(a, b serverRow, col int) int {
		switch col {
		case 0:
			return lowerCmp(a.Datacenter, b.Datacenter)
		case 2:
			return boolCmp(a.HasReplication, b.HasReplication)
		case 3:
			return lowerCmp(a.Plan, b.Plan)
		case 4:
			return cmp.Compare(a.Total, b.Total)
		case 5:
			return cmp.Compare(a.Failed, b.Failed)
		case 6:
			return cmp.Compare(a.Local, b.Local)
		case 7:
			return cmp.Compare(a.Remote, b.Remote)
		case 8:
			return strings.Compare(latestStart(a), latestStart(b))
		default:
			return lowerCmp(a.Name, b.Name)
		}
	}, func(a, b serverRow) int { return lowerCmp(a.Name, b.Name) })
}

// sortFailedServerRows sorts by column:
//
//	0=Datacenter, 1=Name, 2=ID, 3=Code, 4=Error
//
// Ties are broken by Name ascending.
func sortFailedServerRows(rows []failedServerRow, col int, desc bool) []failedServerRow {
	return sortRows(rows, col, desc, func(a, b failedServerRow, col int) int {
		switch col {
		case 0:
			return lowerCmp(a.Datacenter, b.Datacenter)
		case 2:
			return strings.Compare(a.ID, b.ID)
		case 3:
			return strings.Compare(a.Code, b.Code)
		case 4:
			return lowerCmp(a.Error, b.Error)
		default:
			return lowerCmp(a.Name, b.Name)
		}
	}, func(a, b failedServerRow) int { return lowerCmp(a.Name, b.Name) })
}

// sortFailedSnapshotRows sorts by column:
//
//	0=Datacenter, 1=Server, 2=Snapshot, 3=State, 4=Consistency, 5=Index,
//	6=Start, 7=Replica, 8=Family
//
// Ties are broken by Server then Start ascending.
func sortFailedSnapshotRows(rows []failedSnapshotRow, col int, desc bool) []failedSnapshotRow {
	return sortRows(rows, col, desc, func(a, b failedSnapshotRow, col int) int {
		switch col {
		case 0:
			return lowerCmp(a.Datacenter, b.Datacenter)
		case 2:
			return strings.Compare(a.SnapshotID, b.SnapshotID)
		case 3:
			return strings.Compare(a.State, b.State)
		case 4:
			return strings.Compare(a.Consistency, b.Consistency)
		case 5:
			return strings.Compare(a.IndexState, b.IndexState)
		case 6:
			return strings.Compare(a.StartTime, b.StartTime)
		case 7:
			return boolCmp(a.Replica, b.Replica)
		case 8:
			return lowerCmp(a.Family, b.Family)
		default:
			return lowerCmp(a.Server, b.Server)
		}
	}, func(a, b failedSnapshotRow) int {
		if c := lowerCmp(a.Server, b.Server); c != 0 {
			return c
		}
		return strings.Compare(a.StartTime, b.StartTime)
	})
}

// filterRows returns rows for which any of fields contains search
// (case-insensitive). Returns all rows when search is empty.
func filterRows[T any](rows []T, search string, fields func(T) []string) []T {
	if search == "" {
		return rows
	}
	lower := strings.ToLower(search)
	out := rows[:0:0]
	for _, r := range rows {
		for _, f := range fields(r) {
			if strings.Contains(strings.ToLower(f), lower) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// filterServerRows matches on name, id, datacenter and plan.
func filterServerRows(rows []serverRow, search string) []serverRow {
	return filterRows(rows, search, func(r serverRow) []string {
		return []string{r.Name, r.ID, r.Datacenter, r.Plan}
	})
}

// filterFailedServerRows matches on name, id, datacenter and error.
func filterFailedServerRows(rows []failedServerRow, search string) []failedServerRow {
	return filterRows(rows, search, func(r failedServerRow) []string {
		return []string{r.Name, r.ID, r.Datacenter, r.Error}
	})
}

// filterFailedSnapshotRows matches on server, snapshot id, datacenter and state.
func filterFailedSnapshotRows(rows []failedSnapshotRow, search string) []failedSnapshotRow {
	return filterRows(rows, search, func(r failedSnapshotRow) []string {
		return []string{r.Server, r.ServerID, r.SnapshotID, r.Datacenter, r.State}
	})
}
