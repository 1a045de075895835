package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dm/snapreport/internal/client"
	"github.com/dm/snapreport/internal/report"
)

// Config captures everything a report run needs.
type Config struct {
	Credentials   CredentialsConfig `yaml:"credentials"`
	Region        string            `yaml:"region"`
	Endpoint      string            `yaml:"endpoint"`
	Datacenters   []string          `yaml:"datacenters"`
	NetworkDomain string            `yaml:"networkDomain"`
	Client        ClientConfig      `yaml:"client"`
	Output        OutputConfig      `yaml:"output"`
	Logging       LoggingConfig     `yaml:"logging"`
	Parallelism   int               `yaml:"parallelism"`
}

// CredentialsConfig holds the API user.
type CredentialsConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// ClientConfig controls the HTTP client.
type ClientConfig struct {
	Timeout            time.Duration `yaml:"timeout"`
	RequestsPerSecond  float64       `yaml:"requestsPerSecond"`
	Burst              int           `yaml:"burst"`
	PageSize           int           `yaml:"pageSize"`
	InsecureSkipVerify bool          `yaml:"insecureSkipVerify"`
}

// OutputConfig controls where reports go.
type OutputConfig struct {
	Dir         string   `yaml:"dir"`
	Formats     []string `yaml:"formats"`
	MetricsFile string   `yaml:"metricsFile"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Load initialises Config from defaults, an optional YAML file and
// environment overrides, in that order. An empty path falls back to
// SNAPREPORT_CONFIG; with neither set only defaults and env apply.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("SNAPREPORT_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := defaultConfig()
	return &cfg
}

func defaultConfig() Config {
	return Config{
		Region: "na",
		Client: ClientConfig{
			Timeout:           30 * time.Second,
			RequestsPerSecond: 5,
			Burst:             5,
			PageSize:          250,
		},
		Output: OutputConfig{
			Dir:     "reports",
			Formats: []string{string(report.FormatCSV)},
		},
		Logging:     LoggingConfig{Level: "info"},
		Parallelism: 4,
	}
}

func applyEnvOverrides(cfg *Config) {
	// MCP_USER and MCP_PASSWORD are the variables the Ansible modules use.
	if v := os.Getenv("MCP_USER"); v != "" {
		cfg.Credentials.Username = v
	}
	if v := os.Getenv("MCP_PASSWORD"); v != "" {
		cfg.Credentials.Password = v
	}
	if v := os.Getenv("SNAPREPORT_USERNAME"); v != "" {
		cfg.Credentials.Username = v
	}
	if v := os.Getenv("SNAPREPORT_PASSWORD"); v != "" {
		cfg.Credentials.Password = v
	}
	if v := os.Getenv("SNAPREPORT_REGION"); v != "" {
		cfg.Region = v
	}
	if v := os.Getenv("SNAPREPORT_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("SNAPREPORT_DATACENTERS"); v != "" {
		cfg.Datacenters = splitList(v)
	}
	if v := os.Getenv("SNAPREPORT_NETWORK_DOMAIN"); v != "" {
		cfg.NetworkDomain = v
	}
	if v := os.Getenv("SNAPREPORT_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("SNAPREPORT_FORMATS"); v != "" {
		cfg.Output.Formats = splitList(v)
	}
	if v := os.Getenv("SNAPREPORT_METRICS_FILE"); v != "" {
		cfg.Output.MetricsFile = v
	}
	if v := os.Getenv("SNAPREPORT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SNAPREPORT_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("SNAPREPORT_PARALLELISM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Parallelism = n
		}
	}
	if v := os.Getenv("SNAPREPORT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Client.Timeout = d
		}
	}
	if v := os.Getenv("SNAPREPORT_REQUESTS_PER_SECOND"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Client.RequestsPerSecond = rps
		}
	}
	if v := os.Getenv("SNAPREPORT_INSECURE"); strings.EqualFold(v, "true") || v == "1" {
		cfg.Client.InsecureSkipVerify = true
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports every problem that would make a run impossible.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Datacenters) == 0 {
		errs = append(errs, errors.New("at least one datacenter is required"))
	}
	for _, dc := range c.Datacenters {
		if strings.TrimSpace(dc) == "" {
			errs = append(errs, errors.New("datacenter ids must not be empty"))
			break
		}
	}
	if c.Endpoint == "" {
		if _, err := client.RegionBaseURL(c.Region); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := report.ParseFormats(c.Output.Formats); err != nil {
		errs = append(errs, err)
	}
	if c.Client.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("client timeout must be positive, got %s", c.Client.Timeout))
	}
	if c.Client.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("client page size must be positive, got %d", c.Client.PageSize))
	}
	if c.Parallelism <= 0 {
		errs = append(errs, fmt.Errorf("parallelism must be positive, got %d", c.Parallelism))
	}
	if c.Credentials.Username == "" || c.Credentials.Password == "" {
		errs = append(errs, errors.New("could not load the user credentials: set MCP_USER and MCP_PASSWORD"))
	}
	return errors.Join(errs...)
}

// BaseURL returns the endpoint override, or the API host of the region.
func (c *Config) BaseURL() (string, error) {
	if c.Endpoint != "" {
		return strings.TrimRight(c.Endpoint, "/"), nil
	}
	return client.RegionBaseURL(c.Region)
}

// ClientConfig returns the HTTP client settings for this configuration.
func (c *Config) ClientConfig() (client.ClientConfig, error) {
	base, err := c.BaseURL()
	if err != nil {
		return client.ClientConfig{}, err
	}
	return client.ClientConfig{
		BaseURL:            base,
		Username:           c.Credentials.Username,
		Password:           c.Credentials.Password,
		InsecureSkipVerify: c.Client.InsecureSkipVerify,
		RequestTimeout:     c.Client.Timeout,
		RequestsPerSecond:  c.Client.RequestsPerSecond,
		Burst:              c.Client.Burst,
		PageSize:           c.Client.PageSize,
	}, nil
}

// ReportFormats returns the parsed output formats.
func (c *Config) ReportFormats() ([]report.Format, error) {
	return report.ParseFormats(c.Output.Formats)
}
