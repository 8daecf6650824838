package impact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specwatch/specwatch/internal/logger"
	"github.com/specwatch/specwatch/internal/storage"
	"github.com/specwatch/specwatch/pkg/types"
)

func TestPathMatches(t *testing.T) {
	tests := []struct {
		name      string
		specPath  string
		usagePath string
		want      bool
	}{
		{"exact", "/v1/users", "/v1/users", true},
		{"exact with template", "/v1/users/{id}", "/v1/users/{id}", true},
		{"param matches interpolation", "/v1/users/{id}", "/v1/users/${id}", true},
		{"param matches literal segment", "/v1/users/{id}", "/v1/users/42", true},
		{"param must not span segments", "/v1/users/{id}", "/v1/users/42/posts", false},
		{"different resource", "/v1/users", "/v1/orders", false},
		{"prefix does not match", "/v1/users", "/v1/users/42", false},
		{"query stripped from usage", "/v1/users", "/v1/users?page=2", true},
		{"query stripped from both", "/v1/users?expand=1", "/v1/users?page=2", true},
		{"two params", "/v1/users/{uid}/posts/{pid}", "/v1/users/7/posts/99", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PathMatches(tt.specPath, tt.usagePath))
		})
	}
}

func TestMethodMatches(t *testing.T) {
	assert.True(t, MethodMatches("", "GET"))
	assert.True(t, MethodMatches("GET", ""))
	assert.True(t, MethodMatches("GET", "get"))
	assert.False(t, MethodMatches("GET", "POST"))
}

func TestMatchAggregation(t *testing.T) {
	breaking := []types.ChangeRecord{
		{Type: types.EndpointRemoved, Path: "/v1/users/{id}"},
		{Type: types.RequiredRequestFieldAdded, Path: "/v1/orders", Method: "POST", Field: "currency"},
	}
	corpus := []types.EndpointUsage{
		{Path: "/v1/users/${id}", FilePath: "a.ts", LineNumber: 3, Confidence: 0.72, RepositoryName: "frontend"},
		{Path: "/v1/orders", Method: "POST", FilePath: "b.py", LineNumber: 8, Confidence: 1.0, RepositoryName: "backend"},
		{Path: "/v1/orders", Method: "GET", FilePath: "c.py", LineNumber: 2, Confidence: 1.0, RepositoryName: "backend"},
		{Path: "/v1/unrelated", FilePath: "d.go", LineNumber: 1, Confidence: 1.0, RepositoryName: "tools"},
	}

	result := Match(breaking, corpus)

	assert.True(t, result.HasImpact)
	assert.Equal(t, 2, result.TotalBreakingChanges)
	assert.Equal(t, 2, result.TotalUsagesAffected)
	assert.Equal(t, 2, result.TotalAffectedRepos)
	assert.Equal(t, types.SeverityCritical, result.Severity)

	require.Len(t, result.Affected, 2)
	assert.Equal(t, "a.ts", result.Affected[0].FilePath)
	assert.Equal(t, types.EndpointRemoved, result.Affected[0].BreakingChangeType)
	assert.Equal(t, types.SeverityCritical, result.Affected[0].Severity)
	assert.InDelta(t, 0.72, result.Affected[0].Confidence, 1e-9)
	assert.Equal(t, "b.py", result.Affected[1].FilePath)
	assert.Equal(t, types.SeverityHigh, result.Affected[1].Severity)
}

func TestMatchUnsetUsageMethodStaysCandidate(t *testing.T) {
	breaking := []types.ChangeRecord{
		{Type: types.MethodRemoved, Path: "/v1/items", Method: "DELETE"},
	}
	corpus := []types.EndpointUsage{
		{Path: "/v1/items", FilePath: "a.js", LineNumber: 1, RepositoryName: "web"},
	}

	result := Match(breaking, corpus)
	assert.True(t, result.HasImpact)
	assert.Equal(t, 1, result.TotalUsagesAffected)
}

func TestMatchEmpty(t *testing.T) {
	result := Match(nil, []types.EndpointUsage{
		{Path: "/v1/users", FilePath: "a.ts", LineNumber: 1},
	})

	assert.False(t, result.HasImpact)
	assert.Equal(t, 0, result.TotalBreakingChanges)
	assert.Equal(t, 0, result.TotalUsagesAffected)
	assert.Equal(t, 0, result.TotalAffectedRepos)
	assert.Equal(t, types.SeverityLow, result.Severity)
	assert.Empty(t, result.Affected)
}

func TestAnalyzerPersistsEvenWithoutImpact(t *testing.T) {
	store, err := storage.NewLocalStore(storage.Config{BaseDir: t.TempDir()})
	require.NoError(t, err)

	analyzer := NewAnalyzer(store, store, nil, logger.NewNop())

	diff := types.DiffResult{
		Breaking: true,
		Changes: []types.ChangeRecord{
			{Type: types.EndpointRemoved, Path: "/v1/gone"},
		},
	}

	result, err := analyzer.Analyze("tenant-a", "spec-1", 2, diff)
	require.NoError(t, err)
	assert.False(t, result.HasImpact)
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, types.SeverityLow, result.Severity)

	persisted, err := store.ListImpacts("spec-1")
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, result.ID, persisted[0].ID)
}

func TestAnalyzerMatchesCorpus(t *testing.T) {
	store, err := storage.NewLocalStore(storage.Config{BaseDir: t.TempDir()})
	require.NoError(t, err)

	require.NoError(t, store.ReplaceUsages("repo-1", []types.EndpointUsage{
		{Path: "/v1/users/${id}", FilePath: "api.ts", LineNumber: 12, Confidence: 0.72, RepositoryName: "frontend"},
	}))

	analyzer := NewAnalyzer(store, store, nil, logger.NewNop())
	diff := types.DiffResult{
		Breaking: true,
		Changes: []types.ChangeRecord{
			{Type: types.EndpointRemoved, Path: "/v1/users/{id}"},
		},
	}

	result, err := analyzer.Analyze("tenant-a", "spec-1", 3, diff)
	require.NoError(t, err)
	assert.True(t, result.HasImpact)
	assert.Equal(t, 1, result.TotalUsagesAffected)
	assert.Equal(t, types.SeverityCritical, result.Severity)
	assert.Equal(t, "frontend", result.Affected[0].RepositoryName)
}
