package impact

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/specwatch/specwatch/internal/differ"
	"github.com/specwatch/specwatch/internal/logger"
	"github.com/specwatch/specwatch/internal/metrics"
	"github.com/specwatch/specwatch/internal/storage"
	"github.com/specwatch/specwatch/pkg/types"
)

// Analyzer runs impact analysis: it loads the usage corpus, matches each
// breaking change against it, and persists the aggregated result. Results
// are written even when nothing matched, so every analyzed version leaves
// an audit record.
type Analyzer struct {
	usages  storage.UsageStore
	impacts storage.ImpactStore
	metrics *metrics.Metrics
	log     logger.Logger
}

// NewAnalyzer creates an impact analyzer over the given stores.
func NewAnalyzer(usages storage.UsageStore, impacts storage.ImpactStore, m *metrics.Metrics, log logger.Logger) *Analyzer {
	return &Analyzer{
		usages:  usages,
		impacts: impacts,
		metrics: m,
		log:     log,
	}
}

// Analyze matches the diff's breaking changes against the usage corpus and
// persists the resulting ImpactResult.
func (a *Analyzer) Analyze(tenantID, specID string, version int, diff types.DiffResult) (*types.ImpactResult, error) {
	started := time.Now()

	corpus, err := a.usages.ListAllUsages()
	if err != nil {
		return nil, fmt.Errorf("failed to load usage corpus: %w", err)
	}

	breaking := diff.BreakingChanges()
	result := Match(breaking, corpus)
	result.ID = uuid.NewString()
	result.TenantID = tenantID
	result.SpecID = specID
	result.Version = version
	result.AnalyzedAt = time.Now().UTC()

	if err := a.impacts.SaveImpact(result); err != nil {
		return nil, fmt.Errorf("failed to persist impact result: %w", err)
	}

	a.metrics.RecordImpact(result.HasImpact, result.Severity.String(), time.Since(started))
	a.log.WithFields(map[string]interface{}{
		"spec_id":         specID,
		"version":         version,
		"breaking":        len(breaking),
		"usages_affected": result.TotalUsagesAffected,
		"repos_affected":  result.TotalAffectedRepos,
		"severity":        result.Severity.String(),
	}).Info("impact analysis complete")

	return result, nil
}

// Match is the pure core of impact analysis. It pairs every breaking
// change with every usage it plausibly refers to, and aggregates totals
// and severity. Identity fields on the result (ID, spec, timestamps) are
// left for the caller to fill.
func Match(breaking []types.ChangeRecord, corpus []types.EndpointUsage) *types.ImpactResult {
	result := &types.ImpactResult{
		TotalBreakingChanges: len(breaking),
		Severity:             types.SeverityLow,
	}

	repos := map[string]bool{}
	for _, change := range breaking {
		severity := differ.ClassifySeverity(change.Type)
		for _, usage := range corpus {
			if !MethodMatches(change.Method, usage.Method) {
				continue
			}
			if !PathMatches(change.Path, usage.Path) {
				continue
			}

			result.Affected = append(result.Affected, types.AffectedUsage{
				BreakingChangeType: change.Type,
				Path:               change.Path,
				Method:             change.Method,
				Severity:           severity,
				FilePath:           usage.FilePath,
				LineNumber:         usage.LineNumber,
				CodeContext:        usage.CodeContext,
				Confidence:         usage.Confidence,
				RepositoryName:     usage.RepositoryName,
				RepositoryURL:      usage.RepositoryURL,
			})
			repos[usage.RepositoryName] = true
			result.Severity = types.MaxSeverity(result.Severity, severity)
		}
	}

	sort.SliceStable(result.Affected, func(i, j int) bool {
		a, b := result.Affected[i], result.Affected[j]
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		return a.LineNumber < b.LineNumber
	})

	result.TotalUsagesAffected = len(result.Affected)
	result.TotalAffectedRepos = len(repos)
	result.HasImpact = result.TotalUsagesAffected > 0
	return result
}
