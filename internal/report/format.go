package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format represents a report output format.
type Format string

const (
	// FormatCSV writes the four per-datacenter CSV files.
	FormatCSV Format = "csv"
	// FormatJSON writes the full report as indented JSON.
	FormatJSON Format = "json"
	// FormatYAML writes the full report as YAML.
	FormatYAML Format = "yaml"
)

// IsUnknown reports whether f is not one of the supported report formats.
func (f Format) IsUnknown() bool {
	switch f {
	case FormatCSV, FormatJSON, FormatYAML:
		return false
	default:
		return true
	}
}

// SupportedFormats returns the names of all report formats.
func SupportedFormats() []string {
	return []string{
		string(FormatCSV),
		string(FormatJSON),
		string(FormatYAML),
	}
}

// ParseFormats converts format names, case-insensitively, and rejects
// unknown ones. Duplicates are collapsed, keeping first-seen order.
func ParseFormats(names []string) ([]Format, error) {
	seen := make(map[Format]bool, len(names))
	formats := make([]Format, 0, len(names))
	for _, name := range names {
		f := Format(strings.ToLower(strings.TrimSpace(name)))
		if f.IsUnknown() {
			return nil, fmt.Errorf("unknown report format %q, must be one of %v", name, SupportedFormats())
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		formats = append(formats, f)
	}
	return formats, nil
}

// Encode writes v to w as JSON or YAML.
func Encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("failed to serialize to JSON: %w", err)
		}
		return nil
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("failed to serialize to YAML: %w", err)
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
