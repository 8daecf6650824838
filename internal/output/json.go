package output

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/specwatch/specwatch/pkg/types"
)

// JSONFormatter renders results as indented JSON.
type JSONFormatter struct{}

func (JSONFormatter) FormatDiff(diff *types.DiffResult) ([]byte, error) {
	return json.MarshalIndent(diff, "", "  ")
}

func (JSONFormatter) FormatImpact(result *types.ImpactResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}

func (JSONFormatter) FormatWatchList(specs []types.WatchedSpec) ([]byte, error) {
	return json.MarshalIndent(specs, "", "  ")
}

func (JSONFormatter) FormatRepositoryList(repos []types.Repository) ([]byte, error) {
	return json.MarshalIndent(repos, "", "  ")
}

func (JSONFormatter) FormatVersionList(versions []types.VersionRecord) ([]byte, error) {
	return json.MarshalIndent(versions, "", "  ")
}

// YAMLFormatter renders results as YAML.
type YAMLFormatter struct{}

func (YAMLFormatter) FormatDiff(diff *types.DiffResult) ([]byte, error) {
	return yaml.Marshal(diff)
}

func (YAMLFormatter) FormatImpact(result *types.ImpactResult) ([]byte, error) {
	return yaml.Marshal(result)
}

func (YAMLFormatter) FormatWatchList(specs []types.WatchedSpec) ([]byte, error) {
	return yaml.Marshal(specs)
}

func (YAMLFormatter) FormatRepositoryList(repos []types.Repository) ([]byte, error) {
	return yaml.Marshal(repos)
}

func (YAMLFormatter) FormatVersionList(versions []types.VersionRecord) ([]byte, error) {
	return yaml.Marshal(versions)
}
