package engine

import (
	"context"
	"log/slog"

	"github.com/dm/snapreport/internal/client"
	apperrors "github.com/dm/snapreport/internal/errors"
	"github.com/dm/snapreport/internal/logging"
	"github.com/dm/snapreport/internal/model"
)

// SnapshotSource returns the snapshots of one server. A nil slice with a nil
// error means the source had no data for the server.
type SnapshotSource func(ctx context.Context, serverID string) ([]client.Snapshot, error)

// Aggregator builds an AggregateReport from a server inventory. It performs
// no I/O beyond calling the SnapshotSource and processes servers one at a
// time, in input order.
type Aggregator struct {
	logger *slog.Logger
}

// NewAggregator returns an Aggregator that logs per-server problems to
// logger. A nil logger discards them.
func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Aggregator{logger: logger}
}

// Aggregate filters servers, classifies each eligible server's snapshots and
// accumulates the results. A server whose snapshots cannot be retrieved is
// recorded in FailedServers and never aborts the pass. The returned report
// is never nil.
func (a *Aggregator) Aggregate(ctx context.Context, servers []client.Server, source SnapshotSource) *model.AggregateReport {
	report := model.NewAggregateReport()
	report.Totals.Servers = len(servers)

	eligible := FilterEligible(servers)
	report.Totals.EligibleServers = len(eligible)

	for _, server := range eligible {
		var snapshots []client.Snapshot
		var err error
		if source != nil {
			snapshots, err = source(ctx, server.ID)
		}
		if err != nil {
			a.logger.Warn("snapshot retrieval failed",
				"server_id", server.ID,
				"server", server.Name,
				"code", apperrors.CodeOf(err),
				"error", err)
			report.FailedServers = append(report.FailedServers, failedServer(server, err.Error()))
			continue
		}

		c, err := Classify(server, snapshots)
		if err != nil {
			a.logger.Warn("no snapshot data returned", "server_id", server.ID, "server", server.Name)
			report.FailedServers = append(report.FailedServers, failedServer(server, model.NotAvailable))
			continue
		}
		for _, id := range c.Malformed {
			a.logger.Debug("snapshot without state treated as failed",
				"code", apperrors.ErrCodeMalformedSnapshot,
				"server_id", server.ID,
				"snapshot_id", id)
		}

		report.Servers = append(report.Servers, model.ServerReportRow{
			EligibleServer:      server,
			ServerSnapshotStats: c.Stats,
		})
		report.FailedSnapshots = append(report.FailedSnapshots, c.Anomalies...)
		report.Totals.Snapshots += c.Stats.Total
		report.Totals.ReplicaSnapshots += c.Stats.Remote
	}
	return report
}

func failedServer(server model.EligibleServer, description string) model.FailedServerRecord {
	return model.FailedServerRecord{
		Name:  server.Name,
		ID:    server.ID,
		Code:  string(apperrors.ErrCodeRetrievalFailed),
		Error: description,
	}
}
