package output

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specwatch/specwatch/pkg/types"
)

func sampleDiff() *types.DiffResult {
	return &types.DiffResult{
		Breaking: true,
		Changes: []types.ChangeRecord{
			{Type: types.EndpointRemoved, Path: "/v1/users"},
			{Type: types.EndpointAdded, Path: "/v1/orders"},
			{Type: types.RequiredRequestFieldAdded, Path: "/v1/pay", Method: "POST", Field: "currency"},
		},
	}
}

func TestNewFormatter(t *testing.T) {
	for _, format := range []string{"", "table", "json", "yaml"} {
		f, err := NewFormatter(format, true)
		require.NoError(t, err, "format %q", format)
		require.NotNil(t, f)
	}

	_, err := NewFormatter("xml", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestTableDiff(t *testing.T) {
	f := &TableFormatter{noColor: true}

	out, err := f.FormatDiff(sampleDiff())
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "BREAKING")
	assert.Contains(t, s, "endpoint_removed")
	assert.Contains(t, s, "/v1/users")
	assert.Contains(t, s, "currency")
}

func TestTableDiffEmpty(t *testing.T) {
	f := &TableFormatter{noColor: true}

	out, err := f.FormatDiff(&types.DiffResult{})
	require.NoError(t, err)
	assert.Contains(t, string(out), "No changes detected")
}

func TestTableImpact(t *testing.T) {
	f := &TableFormatter{noColor: true}

	out, err := f.FormatImpact(&types.ImpactResult{
		ID:                   "imp-1",
		SpecID:               "spec-1",
		Version:              3,
		AnalyzedAt:           time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		HasImpact:            true,
		TotalBreakingChanges: 1,
		TotalAffectedRepos:   1,
		TotalUsagesAffected:  1,
		Severity:             types.SeverityCritical,
		Affected: []types.AffectedUsage{
			{
				BreakingChangeType: types.EndpointRemoved,
				Path:               "/v1/users/{id}",
				Severity:           types.SeverityCritical,
				FilePath:           "src/api.ts",
				LineNumber:         12,
				Confidence:         0.72,
				RepositoryName:     "frontend",
			},
		},
	})
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "critical")
	assert.Contains(t, s, "src/api.ts:12")
	assert.Contains(t, s, "0.72")
}

func TestTableImpactWithoutMatches(t *testing.T) {
	f := &TableFormatter{noColor: true}

	out, err := f.FormatImpact(&types.ImpactResult{
		ID:       "imp-1",
		SpecID:   "spec-1",
		Severity: types.SeverityLow,
	})
	require.NoError(t, err)
	assert.Contains(t, string(out), "No client code is affected")
}

func TestJSONDiffRoundTrips(t *testing.T) {
	f := JSONFormatter{}

	out, err := f.FormatDiff(sampleDiff())
	require.NoError(t, err)

	var decoded types.DiffResult
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.True(t, decoded.Breaking)
	assert.Len(t, decoded.Changes, 3)
}

func TestTableWatchList(t *testing.T) {
	f := &TableFormatter{noColor: true}

	out, err := f.FormatWatchList([]types.WatchedSpec{
		{
			ID:   "spec-1",
			Name: "billing",
			State: types.PollState{
				Status:              types.PollStatusFailed,
				ConsecutiveFailures: 5,
				LastVersionDetected: 2,
			},
		},
	})
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "billing")
	assert.Contains(t, s, "failed")
}
