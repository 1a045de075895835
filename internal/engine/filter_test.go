package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/snapreport/internal/client"
	"github.com/dm/snapreport/internal/model"
)

func TestFilterEligible_Empty(t *testing.T) {
	got := FilterEligible(nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterEligible_SelectsSnapshotServers(t *testing.T) {
	servers := []client.Server{
		snapshotServer("s1", "web-1", true),
		{ID: "s2", Name: "no-backup"},
		snapshotServer("s3", "db-1", false),
	}

	got := FilterEligible(servers)
	require.Len(t, got, 2)

	assert.Equal(t, model.EligibleServer{
		Name: "web-1", ID: "s1", HasReplication: true,
		Plan: "ONE_MONTH", State: "NORMAL", Family: "UNIX",
	}, got[0])
	assert.Equal(t, "s3", got[1].ID)
	assert.False(t, got[1].HasReplication)
}

func TestFilterEligible_PreservesOrder(t *testing.T) {
	servers := []client.Server{
		snapshotServer("c", "c", false),
		snapshotServer("a", "a", false),
		snapshotServer("b", "b", false),
	}
	got := FilterEligible(servers)
	ids := []string{got[0].ID, got[1].ID, got[2].ID}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestFilterEligible_MissingFieldsUseUnknown(t *testing.T) {
	cases := []struct {
		name   string
		server client.Server
	}{
		{"empty descriptor, no guest", client.Server{ID: "s1", SnapshotService: &client.SnapshotService{}}},
		{"guest without os", client.Server{ID: "s1", SnapshotService: &client.SnapshotService{}, Guest: &client.Guest{}}},
		{"os without family", client.Server{ID: "s1", SnapshotService: &client.SnapshotService{},
			Guest: &client.Guest{OperatingSystem: &client.OperatingSystem{DisplayName: "Ubuntu"}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterEligible([]client.Server{tc.server})
			require.Len(t, got, 1)
			assert.Equal(t, model.Unknown, got[0].Plan)
			assert.Equal(t, model.Unknown, got[0].State)
			assert.Equal(t, model.Unknown, got[0].Family)
			assert.False(t, got[0].HasReplication)
		})
	}
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, "x", orDefault("x", "d"))
	assert.Equal(t, "d", orDefault("", "d"))
}
