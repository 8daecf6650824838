// Package output renders pipeline results for the CLI in table, JSON, or
// YAML form.
package output

import (
	"fmt"

	"github.com/specwatch/specwatch/pkg/types"
)

// Formatter renders the domain objects the commands print.
type Formatter interface {
	FormatDiff(diff *types.DiffResult) ([]byte, error)
	FormatImpact(result *types.ImpactResult) ([]byte, error)
	FormatWatchList(specs []types.WatchedSpec) ([]byte, error)
	FormatRepositoryList(repos []types.Repository) ([]byte, error)
	FormatVersionList(versions []types.VersionRecord) ([]byte, error)
}

// NewFormatter returns the formatter for a format name.
func NewFormatter(format string, noColor bool) (Formatter, error) {
	switch format {
	case "", "table":
		return &TableFormatter{noColor: noColor}, nil
	case "json":
		return &JSONFormatter{}, nil
	case "yaml":
		return &YAMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: table, json, yaml)", format)
	}
}
