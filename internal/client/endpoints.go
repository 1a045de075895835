package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	apperrors "github.com/dm/snapreport/internal/errors"
)

const (
	endpointMyUser        = apiPrefix + "/user/myUser"
	endpointServers       = "/server/server"
	endpointSnapshots     = "/snapshot/snapshot"
	endpointNetworkDomain = "/network/networkDomain"
)

// getJSON fetches path and decodes the body into out.
func (c *DefaultClient) getJSON(ctx context.Context, path string, out any) error {
	body, err := c.doGet(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// orgPath builds an organization-scoped path with the given query and page.
func (c *DefaultClient) orgPath(ctx context.Context, endpoint string, query url.Values, page int) (string, error) {
	org, err := c.organizationID(ctx)
	if err != nil {
		return "", err
	}
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("pageSize", strconv.Itoa(c.config.PageSize))
	q.Set("pageNumber", strconv.Itoa(page))
	return apiPrefix + "/" + url.PathEscape(org) + endpoint + "?" + q.Encode(), nil
}

// ListServers returns every server in the datacenter, optionally scoped to a
// network domain, following pagination to the end.
func (c *DefaultClient) ListServers(ctx context.Context, datacenterID, networkDomainID string) ([]Server, error) {
	query := url.Values{}
	if datacenterID != "" {
		query.Set("datacenterId", datacenterID)
	}
	if networkDomainID != "" {
		query.Set("networkDomainId", networkDomainID)
	}

	servers := []Server{}
	for page := 1; ; page++ {
		path, err := c.orgPath(ctx, endpointServers, query, page)
		if err != nil {
			return nil, fmt.Errorf("ListServers: %w", err)
		}
		var result serverPage
		if err := c.getJSON(ctx, path, &result); err != nil {
			return nil, fmt.Errorf("ListServers: %w", err)
		}
		servers = append(servers, result.Servers...)
		if !result.more(len(result.Servers), len(servers)) {
			return servers, nil
		}
	}
}

// ListSnapshots returns every snapshot of a server. It returns a nil slice
// with a nil error when the API answers without any snapshot data, and an
// empty non-nil slice when the server simply has no snapshots.
func (c *DefaultClient) ListSnapshots(ctx context.Context, serverID string) ([]Snapshot, error) {
	if serverID == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "ListSnapshots: server id is required")
	}
	query := url.Values{}
	query.Set("serverId", serverID)

	var snapshots []Snapshot
	for page := 1; ; page++ {
		path, err := c.orgPath(ctx, endpointSnapshots, query, page)
		if err != nil {
			return nil, fmt.Errorf("ListSnapshots: %w", err)
		}
		var result snapshotPage
		if err := c.getJSON(ctx, path, &result); err != nil {
			return nil, fmt.Errorf("ListSnapshots: %w", err)
		}
		if result.Snapshots == nil && snapshots == nil {
			return nil, nil
		}
		if snapshots == nil {
			snapshots = make([]Snapshot, 0, len(result.Snapshots))
		}
		snapshots = append(snapshots, result.Snapshots...)
		if !result.more(len(result.Snapshots), len(snapshots)) {
			return snapshots, nil
		}
	}
}

// GetNetworkDomainByName looks up a Cloud Network Domain by exact name in a
// datacenter. Returns a NOT_FOUND error when no domain matches.
func (c *DefaultClient) GetNetworkDomainByName(ctx context.Context, name, datacenterID string) (*NetworkDomain, error) {
	if name == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "GetNetworkDomainByName: name is required")
	}
	query := url.Values{}
	query.Set("name", name)
	if datacenterID != "" {
		query.Set("datacenterId", datacenterID)
	}

	path, err := c.orgPath(ctx, endpointNetworkDomain, query, 1)
	if err != nil {
		return nil, fmt.Errorf("GetNetworkDomainByName: %w", err)
	}
	var result networkDomainPage
	if err := c.getJSON(ctx, path, &result); err != nil {
		return nil, fmt.Errorf("GetNetworkDomainByName: %w", err)
	}
	for i := range result.NetworkDomains {
		if result.NetworkDomains[i].Name == name {
			return &result.NetworkDomains[i], nil
		}
	}
	return nil, apperrors.NewWithContext(apperrors.ErrCodeNotFound, "network domain not found", map[string]any{
		"name":       name,
		"datacenter": datacenterID,
	})
}
