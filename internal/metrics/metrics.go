// Package metrics exports aggregate reports as Prometheus gauges for the
// node_exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dm/snapreport/internal/model"
)

const namespace = "snapreport"

// Recorder holds the snapshot report gauges on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	servers          *prometheus.GaugeVec
	eligibleServers  *prometheus.GaugeVec
	snapshots        *prometheus.GaugeVec
	replicaSnapshots *prometheus.GaugeVec
	failedServers    *prometheus.GaugeVec
	failedSnapshots  *prometheus.GaugeVec
	lastRun          *prometheus.GaugeVec

	serverFailed *prometheus.GaugeVec
	serverLatest *prometheus.GaugeVec
}

// NewRecorder returns a Recorder with every collector registered.
func NewRecorder() *Recorder {
	dcGauge := func(name, help string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, []string{"datacenter"})
	}
	serverGauge := func(name, help string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      name,
			Help:      help,
		}, []string{"datacenter", "server_id", "server"})
	}

	r := &Recorder{
		registry:         prometheus.NewRegistry(),
		servers:          dcGauge("servers", "Servers listed in the datacenter."),
		eligibleServers:  dcGauge("snapshot_servers", "Servers with the snapshot service enabled."),
		snapshots:        dcGauge("snapshots", "Snapshots counted across snapshot servers."),
		replicaSnapshots: dcGauge("replica_snapshots", "NORMAL SYSTEM replica snapshots."),
		failedServers:    dcGauge("failed_servers", "Snapshot servers whose snapshots could not be retrieved."),
		failedSnapshots:  dcGauge("failed_snapshots", "Snapshots not in the NORMAL state."),
		lastRun:          dcGauge("last_run_timestamp_seconds", "Unix time the datacenter report was generated."),
		serverFailed:     serverGauge("failed_snapshots", "Snapshots of the server not in the NORMAL state."),
		serverLatest: serverGauge("latest_snapshot_timestamp_seconds",
			"Unix start time of the server's most recent non-replica snapshot."),
	}

	r.registry.MustRegister(
		r.servers, r.eligibleServers, r.snapshots, r.replicaSnapshots,
		r.failedServers, r.failedSnapshots, r.lastRun,
		r.serverFailed, r.serverLatest,
	)
	return r
}

// Registry returns the registry the gauges live on.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe sets every gauge from rep. Servers whose most recent snapshot has
// no parseable start time get no latest-snapshot sample.
func (r *Recorder) Observe(rep *model.DatacenterReport) {
	if rep == nil || rep.Report == nil {
		return
	}
	dc := rep.Datacenter
	t := rep.Report.Totals

	r.servers.WithLabelValues(dc).Set(float64(t.Servers))
	r.eligibleServers.WithLabelValues(dc).Set(float64(t.EligibleServers))
	r.snapshots.WithLabelValues(dc).Set(float64(t.Snapshots))
	r.replicaSnapshots.WithLabelValues(dc).Set(float64(t.ReplicaSnapshots))
	r.failedServers.WithLabelValues(dc).Set(float64(len(rep.Report.FailedServers)))
	r.failedSnapshots.WithLabelValues(dc).Set(float64(len(rep.Report.FailedSnapshots)))
	if !rep.GeneratedAt.IsZero() {
		r.lastRun.WithLabelValues(dc).Set(float64(rep.GeneratedAt.Unix()))
	}

	for _, s := range rep.Report.Servers {
		r.serverFailed.WithLabelValues(dc, s.ID, s.Name).Set(float64(s.Failed))
		if s.MostRecent == nil {
			continue
		}
		if ts, err := time.Parse(time.RFC3339, s.MostRecent.StartTime); err == nil {
			r.serverLatest.WithLabelValues(dc, s.ID, s.Name).Set(float64(ts.Unix()))
		}
	}
}

// WriteTextfile writes the registry in the text exposition format to path.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
