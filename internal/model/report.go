package model

import "time"

// Sentinel values for fields the API left empty.
const (
	// Unknown marks a missing server attribute (plan, state, OS family).
	Unknown = "unknown"
	// NotAvailable marks a missing snapshot attribute or an unknown error.
	NotAvailable = "N/A"
)

// Snapshot states and types the classifier distinguishes.
const (
	StateNormal = "NORMAL"
	TypeSystem  = "SYSTEM"
)

// EligibleServer is a server with the snapshot service enabled.
type EligibleServer struct {
	Name           string `json:"name" yaml:"name"`
	ID             string `json:"id" yaml:"id"`
	HasReplication bool   `json:"replication" yaml:"replication"`
	Plan           string `json:"plan" yaml:"plan"`
	State          string `json:"state" yaml:"state"`
	Family         string `json:"family" yaml:"family"`
}

// SnapshotMark identifies the most recent non-replica snapshot of a server.
type SnapshotMark struct {
	StartTime string `json:"startTime" yaml:"startTime"`
	State     string `json:"state" yaml:"state"`
}

// ServerSnapshotStats holds the per-server counters produced by the classifier.
// MostRecent is nil when the server has no non-replica snapshots.
type ServerSnapshotStats struct {
	Total      int           `json:"total" yaml:"total"`
	Failed     int           `json:"failed" yaml:"failed"`
	Local      int           `json:"local" yaml:"local"`
	Remote     int           `json:"remote" yaml:"remote"`
	MostRecent *SnapshotMark `json:"mostRecent,omitempty" yaml:"mostRecent,omitempty"`
}

// AnomalousSnapshotRecord describes one snapshot whose state is not NORMAL.
type AnomalousSnapshotRecord struct {
	Server      string `json:"server" yaml:"server"`
	ServerID    string `json:"serverId" yaml:"serverId"`
	SnapshotID  string `json:"snapshot" yaml:"snapshot"`
	Consistency string `json:"consistency" yaml:"consistency"`
	State       string `json:"state" yaml:"state"`
	IndexState  string `json:"index" yaml:"index"`
	StartTime   string `json:"start" yaml:"start"`
	Replica     bool   `json:"replica" yaml:"replica"`
	Family      string `json:"family" yaml:"family"`
}

// FailedServerRecord describes an eligible server whose snapshot data could
// not be retrieved. Error is a human-readable description.
type FailedServerRecord struct {
	Name  string `json:"name" yaml:"name"`
	ID    string `json:"id" yaml:"id"`
	Code  string `json:"code" yaml:"code"`
	Error string `json:"error" yaml:"error"`
}

// ServerReportRow is one successfully classified server.
type ServerReportRow struct {
	EligibleServer      `yaml:",inline"`
	ServerSnapshotStats `yaml:",inline"`
}

// Totals holds the run-wide counters.
type Totals struct {
	Servers          int `json:"servers" yaml:"servers"`
	EligibleServers  int `json:"snapshotServers" yaml:"snapshotServers"`
	Snapshots        int `json:"snapshots" yaml:"snapshots"`
	ReplicaSnapshots int `json:"replicaSnapshots" yaml:"replicaSnapshots"`
}

// AggregateReport is the root result of one aggregation pass. Slices are
// never nil, so an empty run still serializes as empty lists.
type AggregateReport struct {
	Totals          Totals                    `json:"summary" yaml:"summary"`
	Servers         []ServerReportRow         `json:"servers" yaml:"servers"`
	FailedServers   []FailedServerRecord      `json:"failedServers" yaml:"failedServers"`
	FailedSnapshots []AnomalousSnapshotRecord `json:"failedSnapshots" yaml:"failedSnapshots"`
}

// NewAggregateReport returns an empty, fully populated report.
func NewAggregateReport() *AggregateReport {
	return &AggregateReport{
		Servers:         []ServerReportRow{},
		FailedServers:   []FailedServerRecord{},
		FailedSnapshots: []AnomalousSnapshotRecord{},
	}
}

// RunMetadata identifies where and when a report was produced. It is kept
// apart from AggregateReport so identical inputs aggregate identically.
type RunMetadata struct {
	RunID         string    `json:"runId" yaml:"runId"`
	Region        string    `json:"region,omitempty" yaml:"region,omitempty"`
	Datacenter    string    `json:"datacenter" yaml:"datacenter"`
	NetworkDomain string    `json:"networkDomain,omitempty" yaml:"networkDomain,omitempty"`
	GeneratedAt   time.Time `json:"generatedAt" yaml:"generatedAt"`
}

// DatacenterReport pairs an aggregate with the metadata of its run.
type DatacenterReport struct {
	RunMetadata `yaml:",inline"`
	Report      *AggregateReport `json:"report" yaml:"report"`
}
