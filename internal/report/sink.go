// Package report writes aggregate reports to disk.
//
// Every datacenter report is written as four CSV files named after the
// datacenter:
//
//	<dc>_summary_report.csv        run-wide totals
//	<dc>_failed_server_report.csv  servers whose snapshots could not be read
//	<dc>_failed_report.csv         snapshots not in the NORMAL state
//	<dc>_server_report.csv         per-server snapshot counters
//
// JSON and YAML renderings of the full report, including run metadata, can
// be written alongside as <dc>_report.json and <dc>_report.yaml.
package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dm/snapreport/internal/logging"
	"github.com/dm/snapreport/internal/model"
)

// Sink writes DatacenterReports into a directory in the configured formats.
type Sink struct {
	dir     string
	formats []Format
	logger  *slog.Logger
}

// NewSink returns a Sink writing into dir. With no formats it writes CSV
// only. Unknown formats are dropped with a warning.
func NewSink(dir string, formats []Format, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = logging.Discard()
	}
	if dir == "" {
		dir = "."
	}
	known := make([]Format, 0, len(formats))
	for _, f := range formats {
		if f.IsUnknown() {
			logger.Warn("unknown report format ignored", "format", f)
			continue
		}
		known = append(known, f)
	}
	if len(known) == 0 {
		known = []Format{FormatCSV}
	}
	return &Sink{dir: dir, formats: known, logger: logger}
}

// Dir returns the output directory.
func (s *Sink) Dir() string {
	return s.dir
}

// Write renders rep in every configured format and returns the paths of the
// files written. The output directory is created if it does not exist.
func (s *Sink) Write(ctx context.Context, rep *model.DatacenterReport) ([]string, error) {
	if rep == nil || rep.Report == nil {
		return nil, fmt.Errorf("report is required")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create the reports directory: %w", err)
	}

	prefix := filePrefix(rep.Datacenter)
	var written []string
	for _, format := range s.formats {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		var files []string
		var err error
		switch format {
		case FormatCSV:
			files, err = s.writeCSV(prefix, rep.Report)
		case FormatJSON, FormatYAML:
			path := filepath.Join(s.dir, prefix+"_report."+string(format))
			err = writeFile(path, func(w io.Writer) error {
				return Encode(w, format, rep)
			})
			files = []string{path}
		}
		if err != nil {
			return written, err
		}
		written = append(written, files...)
	}

	s.logger.Debug("reports written", "datacenter", rep.Datacenter, "files", len(written), "dir", s.dir)
	return written, nil
}

func (s *Sink) writeCSV(prefix string, rep *model.AggregateReport) ([]string, error) {
	files := []struct {
		suffix string
		write  func(io.Writer, *model.AggregateReport) error
	}{
		{"_summary_report.csv", WriteSummaryCSV},
		{"_failed_server_report.csv", WriteFailedServersCSV},
		{"_failed_report.csv", WriteFailedSnapshotsCSV},
		{"_server_report.csv", WriteServersCSV},
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(s.dir, prefix+f.suffix)
		if err := writeFile(path, func(w io.Writer) error { return f.write(w, rep) }); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// writeFile creates path and hands it to render. A render error removes
// the partial file.
func writeFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// filePrefix makes a datacenter id safe to use as a file name prefix.
func filePrefix(datacenter string) string {
	if datacenter == "" {
		return "report"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '_'
		}
		return r
	}, datacenter)
}
