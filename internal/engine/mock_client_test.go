package engine

import (
	"context"
	"errors"

	"github.com/dm/snapreport/internal/client"
)

// MockCloudClient implements client.CloudClient for testing.
type MockCloudClient struct {
	ServersFn       func(ctx context.Context, datacenterID, networkDomainID string) ([]client.Server, error)
	SnapshotsFn     func(ctx context.Context, serverID string) ([]client.Snapshot, error)
	NetworkDomainFn func(ctx context.Context, name, datacenterID string) (*client.NetworkDomain, error)
}

func (m *MockCloudClient) ListServers(ctx context.Context, datacenterID, networkDomainID string) ([]client.Server, error) {
	if m.ServersFn != nil {
		return m.ServersFn(ctx, datacenterID, networkDomainID)
	}
	return []client.Server{}, nil
}

func (m *MockCloudClient) ListSnapshots(ctx context.Context, serverID string) ([]client.Snapshot, error) {
	if m.SnapshotsFn != nil {
		return m.SnapshotsFn(ctx, serverID)
	}
	return []client.Snapshot{}, nil
}

func (m *MockCloudClient) GetNetworkDomainByName(ctx context.Context, name, datacenterID string) (*client.NetworkDomain, error) {
	if m.NetworkDomainFn != nil {
		return m.NetworkDomainFn(ctx, name, datacenterID)
	}
	return &client.NetworkDomain{ID: "nd-" + name, Name: name, DatacenterID: datacenterID}, nil
}

func (m *MockCloudClient) Ping(ctx context.Context) error {
	return nil
}

var _ client.CloudClient = (*MockCloudClient)(nil)

var errMockFailure = errors.New("mock failure")

// snapshotServer returns a server with the snapshot service enabled.
func snapshotServer(id, name string, replicated bool) client.Server {
	svc := &client.SnapshotService{ServicePlan: "ONE_MONTH", State: "NORMAL"}
	if replicated {
		target := "NA12"
		svc.ReplicationTargetDatacenterID = &target
	}
	return client.Server{
		ID:              id,
		Name:            name,
		SnapshotService: svc,
		Guest:           &client.Guest{OperatingSystem: &client.OperatingSystem{Family: "UNIX"}},
	}
}

// staticSource serves fixed snapshot lists by server id. Ids missing from
// the map return no data.
func staticSource(data map[string][]client.Snapshot) SnapshotSource {
	return func(_ context.Context, id string) ([]client.Snapshot, error) {
		return data[id], nil
	}
}
