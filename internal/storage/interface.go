// Package storage persists the watch, version, usage, and impact records
// the pipeline produces. The canonical implementation is JSON files on
// local disk; raw spec text can additionally be archived to S3.
package storage

import (
	"context"

	"github.com/specwatch/specwatch/pkg/types"
)

// WatchStore persists watched specs together with their poll state.
type WatchStore interface {
	SaveWatchedSpec(spec *types.WatchedSpec) error
	LoadWatchedSpec(id string) (*types.WatchedSpec, error)
	ListWatchedSpecs() ([]types.WatchedSpec, error)
	DeleteWatchedSpec(id string) error
}

// VersionStore persists spec version history. Versions are append-only;
// version n is written exactly once.
type VersionStore interface {
	SaveVersion(record *types.VersionRecord) error
	LoadVersion(specID string, version int) (*types.VersionRecord, error)
	LatestVersion(specID string) (*types.VersionRecord, error)
	ListVersions(specID string) ([]types.VersionRecord, error)

	// AttachDiff and AttachSummary add derived data to an already-stored
	// version. Both the diff and the summary are computed after the version
	// is durably written, so these are the only permitted mutations of a
	// version record.
	AttachDiff(specID string, version int, diff types.DiffResult) error
	AttachSummary(specID string, version int, summary string) error
}

// RepositoryStore persists scanned repositories and their scan state.
type RepositoryStore interface {
	SaveRepository(repo *types.Repository) error
	LoadRepository(id string) (*types.Repository, error)
	ListRepositories() ([]types.Repository, error)
	DeleteRepository(id string) error
}

// UsageStore persists the endpoint usage corpus. A scan fully replaces the
// prior generation for its repository; there is no incremental merge.
type UsageStore interface {
	ReplaceUsages(repositoryID string, usages []types.EndpointUsage) error
	ListUsages(repositoryID string) ([]types.EndpointUsage, error)
	ListAllUsages() ([]types.EndpointUsage, error)
}

// ImpactStore persists impact analysis results. Results are immutable once
// written.
type ImpactStore interface {
	SaveImpact(result *types.ImpactResult) error
	LoadImpact(id string) (*types.ImpactResult, error)
	ListImpacts(specID string) ([]types.ImpactResult, error)
}

// AlertStore keeps alert history.
type AlertStore interface {
	SaveAlert(record *types.AlertRecord) error
	ListAlerts(specID string) ([]types.AlertRecord, error)
}

// Store is the full persistence surface the commands wire together.
type Store interface {
	WatchStore
	VersionStore
	RepositoryStore
	UsageStore
	ImpactStore
	AlertStore
}

// ArtifactStore archives raw spec text per version so a diff can always be
// reproduced from the exact bytes that were fetched.
type ArtifactStore interface {
	PutRawSpec(ctx context.Context, specID string, version int, raw []byte) error
	GetRawSpec(ctx context.Context, specID string, version int) ([]byte, error)
}

// Config holds storage configuration.
type Config struct {
	BaseDir string `json:"base_dir"`
}
