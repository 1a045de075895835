package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/dm/snapreport/internal/client"
	"github.com/dm/snapreport/internal/config"
	"github.com/dm/snapreport/internal/engine"
	apperrors "github.com/dm/snapreport/internal/errors"
	"github.com/dm/snapreport/internal/logging"
	"github.com/dm/snapreport/internal/metrics"
	"github.com/dm/snapreport/internal/model"
	"github.com/dm/snapreport/internal/report"
	"github.com/dm/snapreport/internal/tui"
)

const name = "snapreport"

// overridden during build with ldflags
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand(os.Stdout, os.Stderr).Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps a run error to the process exit status. Interrupted runs
// exit with 130 like a shell would.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}

func newCommand(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:    name,
		Version: version,
		Usage:   "Report on the snapshot service state of cloud servers",
		Description: `Lists the servers of one or more datacenters, keeps those with the
snapshot service enabled and classifies their snapshots. Writes CSV (and
optionally JSON/YAML) reports per datacenter and prints a summary.

Credentials come from MCP_USER and MCP_PASSWORD, or the config file.

# Examples

  snapreport --datacenter NA9
  snapreport --region eu --datacenter EU6 --datacenter EU7 --format csv --format json
  snapreport --datacenter NA9 --network-domain prod --interactive`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "YAML config file",
				Sources: cli.EnvVars("SNAPREPORT_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "region",
				Usage: "API region (" + strings.Join(client.Regions(), ", ") + ")",
			},
			&cli.StringFlag{
				Name:  "endpoint",
				Usage: "API base URL, overrides the region",
			},
			&cli.StringSliceFlag{
				Name:  "datacenter",
				Usage: "datacenter id (can be repeated)",
			},
			&cli.StringFlag{
				Name:  "network-domain",
				Usage: "limit the report to servers of this Cloud Network Domain",
			},
			&cli.StringFlag{
				Name:  "output-dir",
				Usage: "directory the reports are written to",
			},
			&cli.StringSliceFlag{
				Name:  "format",
				Usage: "report format: " + strings.Join(report.SupportedFormats(), ", ") + " (can be repeated)",
			},
			&cli.StringFlag{
				Name:  "metrics-file",
				Usage: "write Prometheus metrics to this textfile",
			},
			&cli.IntFlag{
				Name:  "parallelism",
				Usage: "datacenters processed concurrently",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "per-request timeout",
			},
			&cli.BoolFlag{
				Name:  "insecure",
				Usage: "skip TLS certificate verification",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug, info, warn, error)",
			},
			&cli.BoolFlag{
				Name:  "log-json",
				Usage: "log in JSON",
			},
			&cli.BoolFlag{
				Name:  "interactive",
				Usage: "browse the report in a terminal UI",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "do not print the summary tables",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return err
			}
			applyFlags(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration:\n%w", err)
			}

			logger := logging.NewLogger(stderr, cfg.Logging.Level, cfg.Logging.JSON)
			if cmd.Bool("interactive") {
				// The browser owns the terminal.
				logger = logging.Discard()
			}

			run, err := newRunFunc(cfg, logger)
			if err != nil {
				return err
			}

			if cmd.Bool("interactive") {
				app := tui.NewApp(ctx, run, strings.Join(cfg.Datacenters, ","), nil)
				_, err := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
				return err
			}

			reports, err := run(ctx)
			if err != nil {
				return err
			}
			if !cmd.Bool("quiet") {
				fmt.Fprintln(stdout, tui.RenderSummary(reports, 0))
			}
			for _, rep := range reports {
				fmt.Fprintf(stdout, "Success datacenter=%s servers=%d snapshot_servers=%d\n",
					rep.Datacenter, rep.Report.Totals.Servers, rep.Report.Totals.EligibleServers)
			}
			return nil
		},
	}
}

// applyFlags copies explicitly set flags over the file and env values.
func applyFlags(cmd *cli.Command, cfg *config.Config) {
	if cmd.IsSet("region") {
		cfg.Region = cmd.String("region")
	}
	if cmd.IsSet("endpoint") {
		cfg.Endpoint = cmd.String("endpoint")
	}
	if cmd.IsSet("datacenter") {
		cfg.Datacenters = cmd.StringSlice("datacenter")
	}
	if cmd.IsSet("network-domain") {
		cfg.NetworkDomain = cmd.String("network-domain")
	}
	if cmd.IsSet("output-dir") {
		cfg.Output.Dir = cmd.String("output-dir")
	}
	if cmd.IsSet("format") {
		cfg.Output.Formats = cmd.StringSlice("format")
	}
	if cmd.IsSet("metrics-file") {
		cfg.Output.MetricsFile = cmd.String("metrics-file")
	}
	if cmd.IsSet("parallelism") {
		cfg.Parallelism = cmd.Int("parallelism")
	}
	if cmd.IsSet("timeout") {
		cfg.Client.Timeout = cmd.Duration("timeout")
	}
	if cmd.IsSet("insecure") {
		cfg.Client.InsecureSkipVerify = cmd.Bool("insecure")
	}
	if cmd.IsSet("log-level") {
		cfg.Logging.Level = cmd.String("log-level")
	}
	if cmd.IsSet("log-json") {
		cfg.Logging.JSON = cmd.Bool("log-json")
	}
}

// newRunFunc wires the client, runner, report sink and metrics recorder into
// one function producing a full set of reports. Each call is a fresh run
// with its own run id.
func newRunFunc(cfg *config.Config, logger *slog.Logger) (tui.RunFunc, error) {
	clientCfg, err := cfg.ClientConfig()
	if err != nil {
		return nil, err
	}
	c, err := client.NewDefaultClient(clientCfg)
	if err != nil {
		return nil, err
	}
	formats, err := cfg.ReportFormats()
	if err != nil {
		return nil, err
	}
	sink := report.NewSink(cfg.Output.Dir, formats, logger)

	targets := make([]engine.Target, len(cfg.Datacenters))
	for i, dc := range cfg.Datacenters {
		targets[i] = engine.Target{Datacenter: dc, NetworkDomain: cfg.NetworkDomain}
	}

	return func(ctx context.Context) ([]*model.DatacenterReport, error) {
		if err := c.Ping(ctx); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeUnauthorized, "Could not load the user credentials", err)
		}
		runner := engine.NewRunner(c, cfg.Region, logger)
		reports, err := runner.RunAll(ctx, targets, cfg.Parallelism)
		if err != nil {
			return nil, err
		}

		recorder := metrics.NewRecorder()
		for _, rep := range reports {
			paths, err := sink.Write(ctx, rep)
			if err != nil {
				return nil, fmt.Errorf("write %s reports: %w", rep.Datacenter, err)
			}
			logger.Info("reports written", "datacenter", rep.Datacenter, "files", len(paths), "dir", sink.Dir())
			recorder.Observe(rep)
		}
		if cfg.Output.MetricsFile != "" {
			if err := recorder.WriteTextfile(cfg.Output.MetricsFile); err != nil {
				return nil, fmt.Errorf("write metrics: %w", err)
			}
			logger.Debug("metrics written", "path", cfg.Output.MetricsFile)
		}
		return reports, nil
	}, nil
}
