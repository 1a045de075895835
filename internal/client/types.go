package client

// Server represents a single entry from the server listing endpoint.
// SnapshotService and Guest are absent for servers without those features.
type Server struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	DatacenterID    string           `json:"datacenterId,omitempty"`
	SnapshotService *SnapshotService `json:"snapshotService,omitempty"`
	Guest           *Guest           `json:"guest,omitempty"`
}

// SnapshotService describes a server's snapshot/backup service enrolment.
// ReplicationTargetDatacenterID is nil when replication is not configured.
type SnapshotService struct {
	ServicePlan                   string  `json:"servicePlan,omitempty"`
	State                         string  `json:"state,omitempty"`
	ReplicationTargetDatacenterID *string `json:"replicationTargetDatacenterId,omitempty"`
}

// Guest holds the guest OS descriptor of a server.
type Guest struct {
	OperatingSystem *OperatingSystem `json:"operatingSystem,omitempty"`
}

// OperatingSystem identifies the guest OS.
type OperatingSystem struct {
	ID          string `json:"id,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Family      string `json:"family,omitempty"`
}

// Snapshot represents a single entry from the snapshot listing endpoint.
// StartTime is an ISO-8601 timestamp as returned by the API.
type Snapshot struct {
	ID               string `json:"id"`
	State            string `json:"state,omitempty"`
	Type             string `json:"type,omitempty"`
	Replica          bool   `json:"replica,omitempty"`
	ConsistencyLevel string `json:"consistencyLevel,omitempty"`
	IndexState       string `json:"indexState,omitempty"`
	StartTime        string `json:"startTime,omitempty"`
	ExpiryTime       string `json:"expiryTime,omitempty"`
}

// NetworkDomain represents a Cloud Network Domain.
type NetworkDomain struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DatacenterID string `json:"datacenterId"`
	State        string `json:"state,omitempty"`
}

// pageInfo holds the paging envelope common to all list responses.
type pageInfo struct {
	PageNumber int `json:"pageNumber"`
	PageCount  int `json:"pageCount"`
	TotalCount int `json:"totalCount"`
	PageSize   int `json:"pageSize"`
}

// more reports whether another page follows a page of pageItems entries once
// fetched items have been read in total. An empty page always ends the listing.
func (p pageInfo) more(pageItems, fetched int) bool {
	return pageItems > 0 && p.PageCount > 0 && fetched < p.TotalCount
}

type serverPage struct {
	pageInfo
	Servers []Server `json:"server"`
}

// snapshotPage keeps Snapshots nil when the response carries no
// "snapshot" member; an empty array decodes to an empty, non-nil slice.
type snapshotPage struct {
	pageInfo
	Snapshots []Snapshot `json:"snapshot"`
}

type networkDomainPage struct {
	pageInfo
	NetworkDomains []NetworkDomain `json:"networkDomain"`
}

type myUser struct {
	UserName     string `json:"userName"`
	Organization struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"organization"`
}
