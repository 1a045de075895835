package engine

import (
	"strings"
	"time"

	"github.com/dm/snapreport/internal/client"
	apperrors "github.com/dm/snapreport/internal/errors"
	"github.com/dm/snapreport/internal/model"
)

// Classification is the result of classifying one server's snapshots.
type Classification struct {
	Stats     model.ServerSnapshotStats
	Anomalies []model.AnomalousSnapshotRecord
	// Malformed lists the ids of snapshots that arrived without a state.
	Malformed []string
}

// Classify computes per-server snapshot statistics and the list of
// snapshots not in the NORMAL state. A nil snapshots slice means the source
// returned no data and yields a RETRIEVAL_FAILED error; an empty slice is a
// server with zero snapshots.
//
// Classification holds no state between calls: the most-recent candidate
// is tracked per call and never shared across servers.
func Classify(server model.EligibleServer, snapshots []client.Snapshot) (*Classification, error) {
	if snapshots == nil {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeRetrievalFailed, "no snapshot data returned", map[string]any{
			"server_id": server.ID,
		})
	}

	c := &Classification{
		Anomalies: []model.AnomalousSnapshotRecord{},
	}
	c.Stats.Total = len(snapshots)

	var candidates []client.Snapshot
	for _, snap := range snapshots {
		if snap.State == "" {
			c.Malformed = append(c.Malformed, snap.ID)
		}

		switch {
		case snap.State != model.StateNormal:
			c.Stats.Failed++
			c.Anomalies = append(c.Anomalies, anomalyRecord(server, snap))
		case snap.Type == model.TypeSystem && !snap.Replica:
			c.Stats.Local++
		case snap.Type == model.TypeSystem && snap.Replica:
			c.Stats.Remote++
		}

		if !snap.Replica {
			candidates = append(candidates, snap)
		}
	}
	c.Stats.MostRecent = mostRecent(candidates)
	return c, nil
}

// mostRecent returns the mark of the latest candidate, or nil when there is
// none. The comparison mode is chosen once for the whole set: instants when
// every non-empty start time parses as RFC 3339, strings otherwise. An empty
// start time sorts before any other. Ties keep the last in input order.
func mostRecent(candidates []client.Snapshot) *model.SnapshotMark {
	if len(candidates) == 0 {
		return nil
	}
	compare := strings.Compare
	if allRFC3339(candidates) {
		compare = compareInstants
	}

	best := candidates[0]
	for _, snap := range candidates[1:] {
		if compareStartTimes(snap.StartTime, best.StartTime, compare) >= 0 {
			best = snap
		}
	}
	return &model.SnapshotMark{
		StartTime: best.StartTime,
		State:     orDefault(best.State, model.NotAvailable),
	}
}

func allRFC3339(snapshots []client.Snapshot) bool {
	for _, snap := range snapshots {
		if snap.StartTime == "" {
			continue
		}
		if _, err := time.Parse(time.RFC3339, snap.StartTime); err != nil {
			return false
		}
	}
	return true
}

func anomalyRecord(server model.EligibleServer, snap client.Snapshot) model.AnomalousSnapshotRecord {
	return model.AnomalousSnapshotRecord{
		Server:      server.Name,
		ServerID:    server.ID,
		SnapshotID:  orDefault(snap.ID, model.NotAvailable),
		Consistency: orDefault(snap.ConsistencyLevel, model.NotAvailable),
		State:       orDefault(snap.State, model.NotAvailable),
		IndexState:  orDefault(snap.IndexState, model.NotAvailable),
		StartTime:   orDefault(snap.StartTime, model.NotAvailable),
		Replica:     snap.Replica,
		Family:      server.Family,
	}
}

// compareStartTimes orders two snapshot start times with compare, placing
// an empty value before any other.
func compareStartTimes(a, b string, compare func(a, b string) int) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return -1
	case b == "":
		return 1
	}
	return compare(a, b)
}

// compareInstants compares two RFC 3339 timestamps as instants.
func compareInstants(a, b string) int {
	ta, _ := time.Parse(time.RFC3339, a)
	tb, _ := time.Parse(time.RFC3339, b)
	return ta.Compare(tb)
}
