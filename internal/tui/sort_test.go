package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/snapreport/internal/model"
)

func serverRowFixture(dc, name string, failed, local int, latest string) serverRow {
	r := serverRow{
		Datacenter: dc,
		ServerReportRow: model.ServerReportRow{
			EligibleServer:      model.EligibleServer{Name: name, ID: "id-" + name, Plan: "ONE_MONTH"},
			ServerSnapshotStats: model.ServerSnapshotStats{Total: failed + local, Failed: failed, Local: local},
		},
	}
	if latest != "" {
		r.MostRecent = &model.SnapshotMark{StartTime: latest, State: model.StateNormal}
	}
	return r
}

// serverRowFixtures returns a reproducible set of server rows.
func serverRowFixtures() []serverRow {
	return []serverRow{
		serverRowFixture("NA9", "web-01", 2, 10, "2024-03-01T00:00:00Z"),
		serverRowFixture("NA12", "db-01", 0, 30, "2024-03-03T00:00:00Z"),
		serverRowFixture("NA9", "Cache", 5, 1, ""),
		serverRowFixture("NA12", "app-01", 0, 20, "2024-03-02T00:00:00Z"),
	}
}

func names(rows []serverRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

// ---------- sortServerRows ----------

func TestSortServerRows_ByFailedDescending(t *testing.T) {
	sorted := sortServerRows(serverRowFixtures(), 5, true)
	require.Len(t, sorted, 4)
	// app-01 and db-01 tie on 0 failed and break by name ascending.
	assert.Equal(t, []string{"Cache", "web-01", "app-01", "db-01"}, names(sorted))
}

func TestSortServerRows_ByNameCaseInsensitive(t *testing.T) {
	sorted := sortServerRows(serverRowFixtures(), 1, false)
	assert.Equal(t, []string{"app-01", "Cache", "db-01", "web-01"}, names(sorted))
}

func TestSortServerRows_ByLocal(t *testing.T) {
	sorted := sortServerRows(serverRowFixtures(), 6, true)
	assert.Equal(t, "db-01", sorted[0].Name)
	assert.Equal(t, "Cache", sorted[3].Name)
}

func TestSortServerRows_ByLatestPutsMissingFirstAscending(t *testing.T) {
	sorted := sortServerRows(serverRowFixtures(), 8, false)
	assert.Equal(t, []string{"Cache", "web-01", "app-01", "db-01"}, names(sorted))
}

func TestSortServerRows_ByDatacenter(t *testing.T) {
	sorted := sortServerRows(serverRowFixtures(), 0, false)
	assert.Equal(t, []string{"app-01", "db-01", "Cache", "web-01"}, names(sorted))
}

func TestSortServerRows_NoSort(t *testing.T) {
	rows := serverRowFixtures()
	sorted := sortServerRows(rows, -1, false)
	assert.Equal(t, names(rows), names(sorted))
}

func TestSortServerRows_DoesNotMutateInput(t *testing.T) {
	rows := serverRowFixtures()
	orig := names(rows)
	_ = sortServerRows(rows, 1, true)
	assert.Equal(t, orig, names(rows))
}

// ---------- sortFailedSnapshotRows ----------

func TestSortFailedSnapshotRows_ByStartDescending(t *testing.T) {
	rows := []failedSnapshotRow{
		{AnomalousSnapshotRecord: model.AnomalousSnapshotRecord{Server: "b", SnapshotID: "s1", StartTime: "2024-01-01T00:00:00Z"}},
		{AnomalousSnapshotRecord: model.AnomalousSnapshotRecord{Server: "a", SnapshotID: "s2", StartTime: "2024-01-03T00:00:00Z"}},
		{AnomalousSnapshotRecord: model.AnomalousSnapshotRecord{Server: "c", SnapshotID: "s3", StartTime: "2024-01-02T00:00:00Z"}},
	}
	sorted := sortFailedSnapshotRows(rows, 6, true)
	require.Len(t, sorted, 3)
	assert.Equal(t, "s2", sorted[0].SnapshotID)
	assert.Equal(t, "s3", sorted[1].SnapshotID)
	assert.Equal(t, "s1", sorted[2].SnapshotID)
}

func TestSortFailedSnapshotRows_TieBreaksByServerThenStart(t *testing.T) {
	rows := []failedSnapshotRow{
		{AnomalousSnapshotRecord: model.AnomalousSnapshotRecord{Server: "b", SnapshotID: "s1", State: "FAILED", StartTime: "2"}},
		{AnomalousSnapshotRecord: model.AnomalousSnapshotRecord{Server: "a", SnapshotID: "s2", State: "FAILED", StartTime: "2"}},
		{AnomalousSnapshotRecord: model.AnomalousSnapshotRecord{Server: "a", SnapshotID: "s3", State: "FAILED", StartTime: "1"}},
	}
	sorted := sortFailedSnapshotRows(rows, 3, true)
	assert.Equal(t, "s3", sorted[0].SnapshotID)
	assert.Equal(t, "s2", sorted[1].SnapshotID)
	assert.Equal(t, "s1", sorted[2].SnapshotID)
}

// ---------- sortFailedServerRows ----------

func TestSortFailedServerRows_ByCode(t *testing.T) {
	rows := []failedServerRow{
		{FailedServerRecord: model.FailedServerRecord{Name: "x", Code: "RETRIEVAL_FAILED"}},
		{FailedServerRecord: model.FailedServerRecord{Name: "y", Code: "MALFORMED_SNAPSHOT"}},
	}
	sorted := sortFailedServerRows(rows, 3, false)
	assert.Equal(t, "y", sorted[0].Name)
}

// ---------- filters ----------

func TestFilterServerRows_CaseInsensitive(t *testing.T) {
	got := filterServerRows(serverRowFixtures(), "CACHE")
	require.Len(t, got, 1)
	assert.Equal(t, "Cache", got[0].Name)
}

func TestFilterServerRows_ByDatacenter(t *testing.T) {
	got := filterServerRows(serverRowFixtures(), "na12")
	assert.Equal(t, []string{"db-01", "app-01"}, names(got))
}

func TestFilterServerRows_EmptySearch(t *testing.T) {
	rows := serverRowFixtures()
	assert.Len(t, filterServerRows(rows, ""), len(rows))
}

func TestFilterServerRows_NoMatch(t *testing.T) {
	assert.Empty(t, filterServerRows(serverRowFixtures(), "zzz"))
}

func TestFilterFailedServerRows_ByError(t *testing.T) {
	rows := []failedServerRow{
		{FailedServerRecord: model.FailedServerRecord{Name: "x", Error: "connection reset"}},
		{FailedServerRecord: model.FailedServerRecord{Name: "y", Error: model.NotAvailable}},
	}
	got := filterFailedServerRows(rows, "reset")
	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0].Name)
}

func TestFilterFailedSnapshotRows_ByState(t *testing.T) {
	rows := []failedSnapshotRow{
		{AnomalousSnapshotRecord: model.AnomalousSnapshotRecord{SnapshotID: "s1", State: "FAILED"}},
		{AnomalousSnapshotRecord: model.AnomalousSnapshotRecord{SnapshotID: "s2", State: "PENDING_DELETE"}},
	}
	got := filterFailedSnapshotRows(rows, "pending")
	require.Len(t, got, 1)
	assert.Equal(t, "s2", got[0].SnapshotID)
}

// ---------- flattenReports ----------

func TestFlattenReports_TagsDatacenter(t *testing.T) {
	repA := &model.DatacenterReport{RunMetadata: model.RunMetadata{Datacenter: "NA9"}, Report: model.NewAggregateReport()}
	repA.Report.Servers = append(repA.Report.Servers, model.ServerReportRow{EligibleServer: model.EligibleServer{Name: "a"}})
	repA.Report.FailedSnapshots = append(repA.Report.FailedSnapshots, model.AnomalousSnapshotRecord{SnapshotID: "s"})
	repB := &model.DatacenterReport{RunMetadata: model.RunMetadata{Datacenter: "NA12"}, Report: model.NewAggregateReport()}
	repB.Report.FailedServers = append(repB.Report.FailedServers, model.FailedServerRecord{Name: "b"})

	servers, failedServers, failedSnaps := flattenReports([]*model.DatacenterReport{repA, nil, repB})

	require.Len(t, servers, 1)
	assert.Equal(t, "NA9", servers[0].Datacenter)
	require.Len(t, failedServers, 1)
	assert.Equal(t, "NA12", failedServers[0].Datacenter)
	require.Len(t, failedSnaps, 1)
	assert.Equal(t, "NA9", failedSnaps[0].Datacenter)
}
