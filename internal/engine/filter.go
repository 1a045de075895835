package engine

import (
	"github.com/dm/snapreport/internal/client"
	"github.com/dm/snapreport/internal/model"
)

// FilterEligible returns the servers that have the snapshot service
// enabled, in input order. Missing plan, state or OS family map to
// model.Unknown.
func FilterEligible(servers []client.Server) []model.EligibleServer {
	out := make([]model.EligibleServer, 0, len(servers))
	for _, s := range servers {
		svc := s.SnapshotService
		if svc == nil {
			continue
		}
		out = append(out, model.EligibleServer{
			Name:           s.Name,
			ID:             s.ID,
			HasReplication: svc.ReplicationTargetDatacenterID != nil,
			Plan:           orDefault(svc.ServicePlan, model.Unknown),
			State:          orDefault(svc.State, model.Unknown),
			Family:         osFamily(s.Guest),
		})
	}
	return out
}

func osFamily(g *client.Guest) string {
	if g == nil || g.OperatingSystem == nil {
		return model.Unknown
	}
	return orDefault(g.OperatingSystem.Family, model.Unknown)
}

// orDefault returns s, or def when s is empty.
func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
