package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specwatch/specwatch/pkg/types"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)
	return store
}

func TestWatchedSpecRoundTrip(t *testing.T) {
	store := newTestStore(t)

	spec := &types.WatchedSpec{
		ID:             "spec-1",
		TenantID:       "tenant-a",
		Name:           "billing-api",
		SpecURL:        "https://api.acme.com/openapi.json",
		PollingEnabled: true,
		State:          types.PollState{Status: types.PollStatusActive},
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, store.SaveWatchedSpec(spec))

	loaded, err := store.LoadWatchedSpec("spec-1")
	require.NoError(t, err)
	assert.Equal(t, spec.Name, loaded.Name)
	assert.Equal(t, types.PollStatusActive, loaded.State.Status)

	// Saving again overwrites: poll state mutates every cycle.
	spec.State.ConsecutiveFailures = 2
	require.NoError(t, store.SaveWatchedSpec(spec))
	loaded, err = store.LoadWatchedSpec("spec-1")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.State.ConsecutiveFailures)

	specs, err := store.ListWatchedSpecs()
	require.NoError(t, err)
	assert.Len(t, specs, 1)

	require.NoError(t, store.DeleteWatchedSpec("spec-1"))
	_, err = store.LoadWatchedSpec("spec-1")
	assert.Error(t, err)
}

func TestVersionHistoryAppendOnly(t *testing.T) {
	store := newTestStore(t)

	v1 := &types.VersionRecord{
		ID:        "ver-1",
		SpecID:    "spec-1",
		Version:   1,
		SpecHash:  "abc",
		CreatedAt: time.Now().UTC(),
		Spec:      types.EmptySpec(),
	}
	require.NoError(t, store.SaveVersion(v1))

	// Version numbers are written exactly once.
	err := store.SaveVersion(v1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	v2 := &types.VersionRecord{
		ID:        "ver-2",
		SpecID:    "spec-1",
		Version:   2,
		SpecHash:  "def",
		CreatedAt: time.Now().UTC(),
		Spec:      types.EmptySpec(),
	}
	require.NoError(t, store.SaveVersion(v2))

	latest, err := store.LatestVersion("spec-1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 2, latest.Version)

	versions, err := store.ListVersions("spec-1")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, 1, versions[0].Version)
	assert.Equal(t, 2, versions[1].Version)

	// No history yet for another spec.
	latest, err = store.LatestVersion("spec-2")
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestAttachSummary(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveVersion(&types.VersionRecord{
		ID:        "ver-1",
		SpecID:    "spec-1",
		Version:   1,
		SpecHash:  "abc",
		CreatedAt: time.Now().UTC(),
		Spec:      types.EmptySpec(),
	}))

	require.NoError(t, store.AttachSummary("spec-1", 1, "initial version"))

	loaded, err := store.LoadVersion("spec-1", 1)
	require.NoError(t, err)
	assert.Equal(t, "initial version", loaded.Summary)

	assert.Error(t, store.AttachSummary("spec-1", 9, "missing"))
}

func TestAttachDiff(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveVersion(&types.VersionRecord{
		ID:        "ver-2",
		SpecID:    "spec-1",
		Version:   2,
		SpecHash:  "def",
		CreatedAt: time.Now().UTC(),
		Spec:      types.EmptySpec(),
	}))

	diff := types.DiffResult{
		Breaking: true,
		Changes: []types.ChangeRecord{
			{Type: types.EndpointRemoved, Path: "/v1/users"},
		},
	}
	require.NoError(t, store.AttachDiff("spec-1", 2, diff))

	loaded, err := store.LoadVersion("spec-1", 2)
	require.NoError(t, err)
	require.NotNil(t, loaded.Diff)
	assert.True(t, loaded.Diff.Breaking)
	assert.Len(t, loaded.Diff.Changes, 1)

	assert.Error(t, store.AttachDiff("spec-1", 9, diff))
}

func TestVersionValidation(t *testing.T) {
	store := newTestStore(t)

	err := store.SaveVersion(&types.VersionRecord{SpecID: "spec-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid version record")
}

func TestUsageGenerationReplace(t *testing.T) {
	store := newTestStore(t)

	gen1 := []types.EndpointUsage{
		{Path: "/v1/users", Method: "GET", FilePath: "a.ts", LineNumber: 3, Confidence: 1.0},
		{Path: "/v1/orders", FilePath: "b.ts", LineNumber: 9, Confidence: 0.6},
	}
	require.NoError(t, store.ReplaceUsages("repo-1", gen1))

	usages, err := store.ListUsages("repo-1")
	require.NoError(t, err)
	assert.Len(t, usages, 2)

	// A rescan fully replaces the generation, stale matches disappear.
	gen2 := []types.EndpointUsage{
		{Path: "/v1/users", Method: "GET", FilePath: "a.ts", LineNumber: 5, Confidence: 1.0},
	}
	require.NoError(t, store.ReplaceUsages("repo-1", gen2))

	usages, err = store.ListUsages("repo-1")
	require.NoError(t, err)
	require.Len(t, usages, 1)
	assert.Equal(t, 5, usages[0].LineNumber)

	// An empty scan result still replaces.
	require.NoError(t, store.ReplaceUsages("repo-1", nil))
	usages, err = store.ListUsages("repo-1")
	require.NoError(t, err)
	assert.Empty(t, usages)
}

func TestListAllUsagesAcrossRepositories(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.ReplaceUsages("repo-1", []types.EndpointUsage{
		{Path: "/v1/users", FilePath: "a.ts", LineNumber: 1},
	}))
	require.NoError(t, store.ReplaceUsages("repo-2", []types.EndpointUsage{
		{Path: "/v1/orders", FilePath: "b.py", LineNumber: 2},
		{Path: "/v1/users", FilePath: "c.py", LineNumber: 3},
	}))

	all, err := store.ListAllUsages()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestImpactHistory(t *testing.T) {
	store := newTestStore(t)

	older := &types.ImpactResult{
		ID:         "imp-1",
		SpecID:     "spec-1",
		Version:    2,
		AnalyzedAt: time.Now().Add(-time.Hour).UTC(),
		HasImpact:  false,
		Severity:   types.SeverityLow,
	}
	newer := &types.ImpactResult{
		ID:         "imp-2",
		SpecID:     "spec-1",
		Version:    3,
		AnalyzedAt: time.Now().UTC(),
		HasImpact:  true,
		Severity:   types.SeverityCritical,
	}
	require.NoError(t, store.SaveImpact(older))
	require.NoError(t, store.SaveImpact(newer))
	require.NoError(t, store.SaveImpact(&types.ImpactResult{
		ID: "imp-other", SpecID: "spec-2", AnalyzedAt: time.Now().UTC(),
	}))

	results, err := store.ListImpacts("spec-1")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "imp-1", results[0].ID)
	assert.Equal(t, "imp-2", results[1].ID)

	loaded, err := store.LoadImpact("imp-2")
	require.NoError(t, err)
	assert.True(t, loaded.HasImpact)
}

func TestAlertHistory(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveAlert(&types.AlertRecord{
		ID:     "alert-1",
		Kind:   types.AlertEndpointFailure,
		SpecID: "spec-1",
		SentAt: time.Now().UTC(),
	}))

	alerts, err := store.ListAlerts("spec-1")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, types.AlertEndpointFailure, alerts[0].Kind)

	alerts, err = store.ListAlerts("spec-2")
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestRepositoryRoundTrip(t *testing.T) {
	store := newTestStore(t)

	repo := &types.Repository{
		ID:   "repo-1",
		Name: "frontend",
		URL:  "https://github.com/acme/frontend",
		State: types.ScanState{
			Status:            types.ScanStatusPending,
			ScanIntervalHours: 24,
		},
	}
	require.NoError(t, store.SaveRepository(repo))
	require.NoError(t, store.ReplaceUsages("repo-1", []types.EndpointUsage{
		{Path: "/v1/users", FilePath: "a.ts", LineNumber: 1},
	}))

	loaded, err := store.LoadRepository("repo-1")
	require.NoError(t, err)
	assert.Equal(t, 24, loaded.State.ScanIntervalHours)

	// Deleting the repository drops its usage generation too.
	require.NoError(t, store.DeleteRepository("repo-1"))
	usages, err := store.ListUsages("repo-1")
	require.NoError(t, err)
	assert.Empty(t, usages)
}

func TestFileArtifactStoreRoundTrip(t *testing.T) {
	store, err := NewFileArtifactStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	raw := []byte("openapi: 3.0.0\n")
	require.NoError(t, store.PutRawSpec(ctx, "spec-1", 1, raw))

	got, err := store.GetRawSpec(ctx, "spec-1", 1)
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	_, err = store.GetRawSpec(ctx, "spec-1", 2)
	assert.Error(t, err)
}
