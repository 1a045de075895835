package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/dm/snapreport/internal/model"
)

// CSV column headers, one set per report file.
var (
	SummaryHeader       = []string{"servers", "snapshot_servers", "snapshots", "replica_snapshots"}
	FailedServersHeader = []string{"name", "id", "code", "error"}
	FailedHeader        = []string{"server", "server_id", "snapshot", "consistency", "state", "index", "start", "replica", "family"}
	ServersHeader       = []string{"name", "id", "replication", "plan", "state", "family",
		"count", "failed", "local", "remote", "latest_start", "latest_state"}
)

// WriteSummaryCSV writes the run-wide totals as a single row.
func WriteSummaryCSV(w io.Writer, rep *model.AggregateReport) error {
	t := rep.Totals
	return writeCSV(w, SummaryHeader, [][]string{{
		strconv.Itoa(t.Servers),
		strconv.Itoa(t.EligibleServers),
		strconv.Itoa(t.Snapshots),
		strconv.Itoa(t.ReplicaSnapshots),
	}})
}

// WriteFailedServersCSV writes one row per server whose snapshots could
// not be retrieved.
func WriteFailedServersCSV(w io.Writer, rep *model.AggregateReport) error {
	rows := make([][]string, 0, len(rep.FailedServers))
	for _, f := range rep.FailedServers {
		rows = append(rows, []string{f.Name, f.ID, f.Code, f.Error})
	}
	return writeCSV(w, FailedServersHeader, rows)
}

// WriteFailedSnapshotsCSV writes one row per anomalous snapshot.
func WriteFailedSnapshotsCSV(w io.Writer, rep *model.AggregateReport) error {
	rows := make([][]string, 0, len(rep.FailedSnapshots))
	for _, a := range rep.FailedSnapshots {
		rows = append(rows, []string{
			a.Server, a.ServerID, a.SnapshotID, a.Consistency, a.State,
			a.IndexState, a.StartTime, strconv.FormatBool(a.Replica), a.Family,
		})
	}
	return writeCSV(w, FailedHeader, rows)
}

// WriteServersCSV writes one row per classified server. Servers without a
// non-replica snapshot carry N/A in the latest_* columns.
func WriteServersCSV(w io.Writer, rep *model.AggregateReport) error {
	rows := make([][]string, 0, len(rep.Servers))
	for _, s := range rep.Servers {
		latestStart, latestState := model.NotAvailable, model.NotAvailable
		if s.MostRecent != nil {
			latestStart, latestState = s.MostRecent.StartTime, s.MostRecent.State
		}
		rows = append(rows, []string{
			s.Name, s.ID, strconv.FormatBool(s.HasReplication), s.Plan, s.State, s.Family,
			strconv.Itoa(s.Total), strconv.Itoa(s.Failed), strconv.Itoa(s.Local), strconv.Itoa(s.Remote),
			latestStart, latestState,
		})
	}
	return writeCSV(w, ServersHeader, rows)
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
