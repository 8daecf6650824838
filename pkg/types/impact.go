package types

import "time"

// AffectedUsage ties one breaking change to one code usage site. File,
// line, and repository context are denormalized so the record survives
// deletion of the originating usage on a later rescan.
type AffectedUsage struct {
	BreakingChangeType ChangeType `json:"breaking_change_type"`
	Path               string     `json:"path"`
	Method             string     `json:"method,omitempty"`
	Severity           Severity   `json:"severity"`
	FilePath           string     `json:"file_path"`
	LineNumber         int        `json:"line_number"`
	CodeContext        string     `json:"code_context"`
	Confidence         float64    `json:"confidence"`
	RepositoryName     string     `json:"repository_name"`
	RepositoryURL      string     `json:"repository_url,omitempty"`
}

// ImpactResult aggregates which repositories and usages a set of breaking
// changes touches. A result is produced and persisted even when nothing
// matched (HasImpact=false, SeverityLow) for audit continuity, and is
// immutable once created.
type ImpactResult struct {
	ID                   string          `json:"id"`
	TenantID             string          `json:"tenant_id,omitempty"`
	SpecID               string          `json:"spec_id"`
	Version              int             `json:"version"`
	AnalyzedAt           time.Time       `json:"analyzed_at"`
	HasImpact            bool            `json:"has_impact"`
	TotalBreakingChanges int             `json:"total_breaking_changes"`
	TotalAffectedRepos   int             `json:"total_affected_repos"`
	TotalUsagesAffected  int             `json:"total_usages_affected"`
	Severity             Severity        `json:"severity"`
	Affected             []AffectedUsage `json:"affected,omitempty"`
}
