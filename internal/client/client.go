package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/dm/snapreport/internal/errors"
)

// CloudClient defines the interface for interacting with the cloud API.
type CloudClient interface {
	ListServers(ctx context.Context, datacenterID, networkDomainID string) ([]Server, error)
	ListSnapshots(ctx context.Context, serverID string) ([]Snapshot, error)
	GetNetworkDomainByName(ctx context.Context, name, datacenterID string) (*NetworkDomain, error)
	Ping(ctx context.Context) error
}

// ClientConfig holds configuration for DefaultClient.
type ClientConfig struct {
	BaseURL            string
	Username           string
	Password           string
	InsecureSkipVerify bool
	RequestTimeout     time.Duration
	RequestsPerSecond  float64
	Burst              int
	PageSize           int
}

// DefaultClient implements CloudClient using the standard net/http package.
type DefaultClient struct {
	http    *http.Client
	config  ClientConfig
	limiter *rate.Limiter

	mu    sync.Mutex
	orgID string
}

const (
	apiPrefix       = "/caas/2.x"
	defaultPageSize = 250
	maxPageSize     = 10000
)

// NewDefaultClient constructs a DefaultClient from the given config.
// A non-positive RequestsPerSecond disables rate limiting.
// Returns an error if BaseURL is empty.
func NewDefaultClient(cfg ClientConfig) (*DefaultClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is required")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.PageSize > maxPageSize {
		cfg.PageSize = maxPageSize
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
	}

	return &DefaultClient{
		http: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: transport,
		},
		config:  cfg,
		limiter: limiter,
	}, nil
}

// Ping verifies credentials by resolving the caller's organization.
func (c *DefaultClient) Ping(ctx context.Context) error {
	_, err := c.organizationID(ctx)
	return err
}

// organizationID returns the caller's organization id, fetching it on first
// use. Failures are not cached.
func (c *DefaultClient) organizationID(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.orgID != "" {
		return c.orgID, nil
	}

	var user myUser
	if err := c.getJSON(ctx, endpointMyUser, &user); err != nil {
		return "", fmt.Errorf("resolve organization: %w", err)
	}
	if user.Organization.ID == "" {
		return "", apperrors.New(apperrors.ErrCodeUnauthorized, "user has no organization")
	}
	c.orgID = user.Organization.ID
	return c.orgID, nil
}

// doGet performs a rate-limited GET request to the given path (relative
// to BaseURL) with Basic Auth when credentials are configured.
// Non-2xx responses are mapped to structured error codes.
func (c *DefaultClient) doGet(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.config.Username != "" || c.config.Password != "" {
		req.SetBasicAuth(c.config.Username, c.config.Password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeUnavailable, "do request", err)
	}
	defer resp.Body.Close()

	const maxResponseBytes = 32 * 1024 * 1024
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxResponseBytes {
		return nil, fmt.Errorf("response body exceeds %d MB limit", maxResponseBytes/(1024*1024))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp.StatusCode, body)
	}
	return body, nil
}

// statusError classifies a non-2xx response.
func statusError(status int, body []byte) error {
	code := apperrors.ErrCodeInternal
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		code = apperrors.ErrCodeUnauthorized
	case status == http.StatusNotFound:
		code = apperrors.ErrCodeNotFound
	case status == http.StatusTooManyRequests || status >= 500:
		code = apperrors.ErrCodeUnavailable
	}
	return apperrors.WrapWithContext(code,
		fmt.Sprintf("unexpected status %d: %s", status, truncate(body, 200)),
		nil,
		map[string]any{"status": status},
	)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
