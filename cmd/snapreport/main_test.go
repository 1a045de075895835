package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/dm/snapreport/internal/errors"
)

const testOrg = "org-1"

// newFakeAPI serves one datacenter with a snapshot-enabled server, a server
// without the service and a snapshot-enabled server whose listing fails.
func newFakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		prefix := "/caas/2.x/" + testOrg
		switch {
		case r.URL.Path == "/caas/2.x/user/myUser":
			_, _ = w.Write([]byte(`{"userName":"user","organization":{"id":"` + testOrg + `"}}`))
		case r.URL.Path == prefix+"/network/networkDomain":
			_, _ = w.Write([]byte(`{"networkDomain":[{"id":"nd-1","name":"prod","datacenterId":"NA9"}],"pageNumber":1,"pageCount":1,"totalCount":1,"pageSize":250}`))
		case r.URL.Path == prefix+"/server/server":
			_, _ = w.Write([]byte(`{"server":[
				{"id":"s1","name":"web-01","snapshotService":{"servicePlan":"ONE_MONTH","state":"NORMAL"},"guest":{"operatingSystem":{"family":"UNIX"}}},
				{"id":"s2","name":"plain"},
				{"id":"s3","name":"db-01","snapshotService":{"servicePlan":"ONE_MONTH","state":"NORMAL"}}
			],"pageNumber":1,"pageCount":1,"totalCount":3,"pageSize":250}`))
		case r.URL.Path == prefix+"/snapshot/snapshot" && r.URL.Query().Get("serverId") == "s1":
			_, _ = w.Write([]byte(`{"snapshot":[
				{"id":"a","state":"NORMAL","type":"SYSTEM","startTime":"2024-03-01T00:00:00Z"},
				{"id":"b","state":"FAILED","type":"SYSTEM","startTime":"2024-03-02T00:00:00Z"}
			],"pageNumber":1,"pageCount":1,"totalCount":2,"pageSize":250}`))
		case r.URL.Path == prefix+"/snapshot/snapshot":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("SNAPREPORT_CONFIG", "")
	t.Setenv("MCP_USER", "user")
	t.Setenv("MCP_PASSWORD", "secret")
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := newCommand(&stdout, &stderr).Run(context.Background(), append([]string{name}, args...))
	return stdout.String(), stderr.String(), err
}

func TestRun_WritesReports(t *testing.T) {
	setCredentials(t)
	srv := newFakeAPI(t)
	dir := t.TempDir()
	metricsFile := filepath.Join(dir, "snapreport.prom")

	stdout, stderr, err := runCLI(t,
		"--endpoint", srv.URL,
		"--datacenter", "NA9",
		"--output-dir", dir,
		"--format", "csv", "--format", "json",
		"--metrics-file", metricsFile,
	)
	require.NoError(t, err, "stderr: %s", stderr)

	assert.Contains(t, stdout, "Success datacenter=NA9 servers=3 snapshot_servers=2")
	assert.Contains(t, stdout, "Datacenter", "summary table printed")

	for _, f := range []string{
		"NA9_summary_report.csv",
		"NA9_failed_server_report.csv",
		"NA9_failed_report.csv",
		"NA9_server_report.csv",
		"NA9_report.json",
	} {
		assert.FileExists(t, filepath.Join(dir, f))
	}

	failed, err := os.ReadFile(filepath.Join(dir, "NA9_failed_server_report.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(failed), "db-01")

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `snapreport_snapshot_servers{datacenter="NA9"} 2`)

	assert.Contains(t, stderr, "datacenter aggregated", "logs go to stderr")
}

func TestRun_QuietSkipsSummary(t *testing.T) {
	setCredentials(t)
	srv := newFakeAPI(t)

	stdout, _, err := runCLI(t, "--endpoint", srv.URL, "--datacenter", "NA9", "--output-dir", t.TempDir(), "--quiet")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "Datacenter")
	assert.Equal(t, 1, strings.Count(stdout, "Success"))
}

func TestRun_NetworkDomain(t *testing.T) {
	setCredentials(t)
	srv := newFakeAPI(t)

	_, _, err := runCLI(t, "--endpoint", srv.URL, "--datacenter", "NA9", "--output-dir", t.TempDir(),
		"--network-domain", "prod", "--quiet")
	require.NoError(t, err)

	_, _, err = runCLI(t, "--endpoint", srv.URL, "--datacenter", "NA9", "--output-dir", t.TempDir(),
		"--network-domain", "missing", "--quiet")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "Failed to locate the Cloud Network Domain - missing")
	assert.Equal(t, 1, exitCode(err))
}

func TestRun_RejectedCredentials(t *testing.T) {
	setCredentials(t)
	var listed bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/caas/2.x/user/myUser" {
			listed = true
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)
	dir := t.TempDir()

	_, _, err := runCLI(t, "--endpoint", srv.URL, "--datacenter", "NA9", "--output-dir", dir, "--quiet")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "Could not load the user credentials")
	assert.False(t, listed, "no listing before credentials are verified")
	assert.NoFileExists(t, filepath.Join(dir, "NA9_summary_report.csv"))
	assert.Equal(t, 1, exitCode(err))
}

func TestRun_ConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no datacenter", []string{"--endpoint", "http://localhost"}, "at least one datacenter"},
		{"unknown region", []string{"--region", "mars", "--datacenter", "NA9"}, "mars"},
		{"unknown format", []string{"--endpoint", "http://localhost", "--datacenter", "NA9", "--format", "xml"}, "xml"},
		{"bad parallelism", []string{"--endpoint", "http://localhost", "--datacenter", "NA9", "--parallelism", "0"}, "parallelism"},
		{"missing config file", []string{"--config", "/nonexistent/snapreport.yaml"}, "not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setCredentials(t)
			_, _, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, 1, exitCode(err))
		})
	}
}

func TestRun_MissingCredentials(t *testing.T) {
	t.Setenv("SNAPREPORT_CONFIG", "")
	t.Setenv("MCP_USER", "")
	t.Setenv("MCP_PASSWORD", "")
	t.Setenv("SNAPREPORT_USERNAME", "")
	t.Setenv("SNAPREPORT_PASSWORD", "")

	_, _, err := runCLI(t, "--endpoint", "http://localhost", "--datacenter", "NA9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not load the user credentials")
}

func TestRun_ConfigFile(t *testing.T) {
	setCredentials(t)
	srv := newFakeAPI(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "snapreport.yaml")
	require.NoError(t, os.WriteFile(path, []byte("endpoint: "+srv.URL+"\ndatacenters: [NA9]\noutput:\n  dir: "+dir+"\n  formats: [yaml]\n"), 0o600))

	stdout, _, err := runCLI(t, "--config", path, "--quiet")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Success datacenter=NA9")
	assert.FileExists(t, filepath.Join(dir, "NA9_report.yaml"))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 130, exitCode(context.Canceled))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
}
