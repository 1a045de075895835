package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dm/snapreport/internal/client"
	apperrors "github.com/dm/snapreport/internal/errors"
	"github.com/dm/snapreport/internal/logging"
	"github.com/dm/snapreport/internal/model"
)

// Target names one datacenter, optionally narrowed to a network domain.
type Target struct {
	Datacenter    string
	NetworkDomain string
}

// Runner produces one DatacenterReport per Target using a CloudClient.
type Runner struct {
	client client.CloudClient
	logger *slog.Logger
	region string
	runID  string
	now    func() time.Time
}

// NewRunner returns a Runner with a fresh run id. region is recorded in the
// report metadata only.
func NewRunner(c client.CloudClient, region string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.Discard()
	}
	runID := uuid.NewString()
	return &Runner{
		client: c,
		logger: logger.With("run_id", runID),
		region: region,
		runID:  runID,
		now:    time.Now,
	}
}

// RunID returns the id stamped on every report of this Runner.
func (r *Runner) RunID() string {
	return r.runID
}

// Run resolves the target's network domain, lists its servers and
// aggregates their snapshots. Failing to resolve the domain or list the
// servers is an INVALID_INPUT error; per-server failures are recorded in
// the report instead. A cancelled context discards the partial report.
func (r *Runner) Run(ctx context.Context, target Target) (*model.DatacenterReport, error) {
	if target.Datacenter == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "datacenter is required")
	}
	logger := r.logger.With("datacenter", target.Datacenter)

	var networkDomainID string
	if target.NetworkDomain != "" {
		nd, err := r.client.GetNetworkDomainByName(ctx, target.NetworkDomain, target.Datacenter)
		if err != nil {
			return nil, apperrors.WrapWithContext(apperrors.ErrCodeInvalidInput,
				"Failed to locate the Cloud Network Domain - "+target.NetworkDomain, err,
				map[string]any{"datacenter": target.Datacenter})
		}
		networkDomainID = nd.ID
		logger = logger.With("network_domain_id", networkDomainID)
	}

	start := r.now()
	servers, err := r.client.ListServers(ctx, target.Datacenter, networkDomainID)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeInvalidInput, "list servers", err,
			map[string]any{"datacenter": target.Datacenter})
	}
	logger.Debug("servers listed", "count", len(servers))

	report := NewAggregator(logger).Aggregate(ctx, servers, r.client.ListSnapshots)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Info("datacenter aggregated",
		"servers", report.Totals.Servers,
		"snapshot_servers", report.Totals.EligibleServers,
		"snapshots", report.Totals.Snapshots,
		"failed_servers", len(report.FailedServers),
		"failed_snapshots", len(report.FailedSnapshots),
		"elapsed", r.now().Sub(start))

	return &model.DatacenterReport{
		RunMetadata: model.RunMetadata{
			RunID:         r.runID,
			Region:        r.region,
			Datacenter:    target.Datacenter,
			NetworkDomain: target.NetworkDomain,
			GeneratedAt:   r.now().UTC(),
		},
		Report: report,
	}, nil
}

// RunAll runs every target, at most parallelism at a time, and returns the
// reports in target order. Each datacenter is still aggregated sequentially.
// The first error cancels the remaining runs and is returned.
func (r *Runner) RunAll(ctx context.Context, targets []Target, parallelism int) ([]*model.DatacenterReport, error) {
	if len(targets) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "no datacenters to report on")
	}
	if parallelism <= 0 {
		parallelism = 1
	}

	results := make([]*model.DatacenterReport, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, target := range targets {
		g.Go(func() error {
			rep, err := r.Run(gctx, target)
			if err != nil {
				return err
			}
			results[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
