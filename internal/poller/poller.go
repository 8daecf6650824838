package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/specwatch/specwatch/internal/ai"
	"github.com/specwatch/specwatch/internal/alert"
	"github.com/specwatch/specwatch/internal/differ"
	"github.com/specwatch/specwatch/internal/impact"
	"github.com/specwatch/specwatch/internal/logger"
	"github.com/specwatch/specwatch/internal/metrics"
	"github.com/specwatch/specwatch/internal/normalizer"
	"github.com/specwatch/specwatch/internal/storage"
	"github.com/specwatch/specwatch/pkg/types"
)

// failureAlertThreshold is the exact failure count at which one
// endpoint-failure alert fires.
const failureAlertThreshold = 3

// failureHardThreshold is the consecutive failure count at which a watched
// spec transitions to failed.
const failureHardThreshold = 5

// Poller runs one poll cycle per watched spec: fetch, hash, normalize,
// version, diff, and, for breaking diffs, impact analysis and alerting.
// Poll state is mutated here and nowhere else.
type Poller struct {
	store      storage.Store
	artifacts  storage.ArtifactStore
	fetcher    Fetcher
	engine     *differ.Engine
	analyzer   *impact.Analyzer
	alerts     *alert.Service
	summarizer ai.Summarizer
	metrics    *metrics.Metrics
	log        logger.Logger

	// now is swappable for tests.
	now func() time.Time
}

// New creates a poller over the given collaborators.
func New(
	store storage.Store,
	artifacts storage.ArtifactStore,
	fetcher Fetcher,
	analyzer *impact.Analyzer,
	alerts *alert.Service,
	summarizer ai.Summarizer,
	m *metrics.Metrics,
	log logger.Logger,
) *Poller {
	if summarizer == nil {
		summarizer = ai.NopSummarizer{}
	}
	return &Poller{
		store:      store,
		artifacts:  artifacts,
		fetcher:    fetcher,
		engine:     differ.NewEngine(),
		analyzer:   analyzer,
		alerts:     alerts,
		summarizer: summarizer,
		metrics:    m,
		log:        log,
		now:        time.Now,
	}
}

// PollResult reports the outcome of one poll cycle.
type PollResult struct {
	SpecID   string
	Changed  bool
	Version  int
	Breaking bool
	Err      error
}

// PollAll polls every eligible watched spec once. Paused and deleted
// watches, and watches with polling disabled, are skipped. Failed watches
// keep being polled: any success fully resets their state.
func (p *Poller) PollAll(ctx context.Context) ([]PollResult, error) {
	specs, err := p.store.ListWatchedSpecs()
	if err != nil {
		return nil, fmt.Errorf("failed to list watched specs: %w", err)
	}

	var results []PollResult
	for i := range specs {
		spec := &specs[i]
		if !eligible(spec) {
			continue
		}
		results = append(results, p.Poll(ctx, spec))
		if err := ctx.Err(); err != nil {
			return results, err
		}
	}
	return results, nil
}

func eligible(spec *types.WatchedSpec) bool {
	if !spec.PollingEnabled {
		return false
	}
	switch spec.State.Status {
	case types.PollStatusPaused, types.PollStatusDeleted:
		return false
	}
	return true
}

// Poll runs one cycle for one watched spec and persists the updated poll
// state. The returned result's Err carries the cycle failure, if any; the
// error never aborts state bookkeeping.
func (p *Poller) Poll(ctx context.Context, spec *types.WatchedSpec) PollResult {
	result := PollResult{SpecID: spec.ID}
	log := p.log.WithFields(map[string]interface{}{
		"spec_id": spec.ID,
		"name":    spec.Name,
	})

	raw, err := p.fetcher.Fetch(ctx, spec.SpecURL)
	if err != nil {
		result.Err = p.recordFailure(ctx, spec, err)
		return result
	}

	hash := types.HashSpec(raw)
	if hash == spec.State.LastHash {
		p.recordSuccess(spec, 0)
		p.metrics.RecordPoll("unchanged")
		log.Debug("spec unchanged")
		return result
	}

	doc, err := normalizer.Parse(raw)
	if err != nil {
		result.Err = p.recordFailure(ctx, spec, fmt.Errorf("spec parse failed: %w", err))
		return result
	}
	normalized := normalizer.Normalize(doc)

	previous, err := p.store.LatestVersion(spec.ID)
	if err != nil {
		result.Err = p.recordFailure(ctx, spec, fmt.Errorf("failed to load version history: %w", err))
		return result
	}

	record := &types.VersionRecord{
		ID:        uuid.NewString(),
		SpecID:    spec.ID,
		Version:   1,
		SpecHash:  hash,
		CreatedAt: p.now().UTC(),
		Spec:      normalized,
	}
	if previous != nil {
		record.Version = previous.Version + 1
	}

	// The version row must be durable before anything downstream runs.
	// The diff is computed and attached only after this point, so a diff
	// failure leaves a version with an absent diff, never no version.
	if err := p.store.SaveVersion(record); err != nil {
		result.Err = p.recordFailure(ctx, spec, fmt.Errorf("failed to store version: %w", err))
		return result
	}

	if previous != nil {
		diff := p.engine.Diff(previous.Spec, normalized)
		record.Diff = &diff
		if err := p.store.AttachDiff(spec.ID, record.Version, diff); err != nil {
			log.Warn("failed to attach diff: " + err.Error())
		}
	}

	if p.artifacts != nil {
		if err := p.artifacts.PutRawSpec(ctx, spec.ID, record.Version, raw); err != nil {
			log.Warn("failed to archive raw spec: " + err.Error())
		}
	}

	spec.State.LastHash = hash
	spec.State.LastVersionDetected = record.Version
	p.recordSuccess(spec, record.Version)
	p.metrics.RecordPoll("changed")
	p.metrics.RecordVersionDetected()

	result.Changed = true
	result.Version = record.Version
	result.Breaking = record.Diff != nil && record.Diff.Breaking

	log.WithFields(map[string]interface{}{
		"version":  record.Version,
		"breaking": result.Breaking,
	}).Info("new spec version detected")

	if result.Breaking {
		p.handleBreaking(ctx, spec, record)
	}
	return result
}

// handleBreaking runs the downstream side of a breaking version: summary,
// impact analysis, alert. All of it is best-effort; the version is already
// durable and a downstream failure must not fail the poll.
func (p *Poller) handleBreaking(ctx context.Context, spec *types.WatchedSpec, record *types.VersionRecord) {
	log := p.log.WithFields(map[string]interface{}{
		"spec_id": spec.ID,
		"version": record.Version,
	})

	summary, err := p.summarizer.Summarize(ctx, spec.Name, *record.Diff)
	if err != nil {
		log.Warn("diff summary generation failed: " + err.Error())
	} else if summary != "" {
		record.Summary = summary
		if err := p.store.AttachSummary(spec.ID, record.Version, summary); err != nil {
			log.Warn("failed to attach summary: " + err.Error())
		}
	}

	impactResult, err := p.analyzer.Analyze(spec.TenantID, spec.ID, record.Version, *record.Diff)
	if err != nil {
		log.Error("impact analysis failed", err)
	}

	payload := alert.Payload{
		Kind:     types.AlertBreakingChange,
		SpecID:   spec.ID,
		SpecName: spec.Name,
		Version:  record.Version,
		Diff:     record.Diff,
		Impact:   impactResult,
		Summary:  summary,
	}
	if payload.Summary == "" {
		payload.Summary = fmt.Sprintf("%d breaking change(s) in %s version %d",
			len(record.Diff.BreakingChanges()), spec.Name, record.Version)
	}
	if err := p.alerts.Send(ctx, payload); err != nil {
		log.Error("breaking change alert failed", err)
	}
}

// recordSuccess applies the full reset every success mandates.
func (p *Poller) recordSuccess(spec *types.WatchedSpec, version int) {
	now := p.now().UTC()
	spec.State.LastPolledAt = now
	spec.State.LastSuccessAt = now
	spec.State.ConsecutiveFailures = 0
	spec.State.LastError = ""
	spec.State.Status = types.PollStatusActive
	if version > 0 {
		spec.State.LastVersionDetected = version
	}
	if err := p.store.SaveWatchedSpec(spec); err != nil {
		p.log.WithField("spec_id", spec.ID).Error("failed to persist poll state", err)
	}
}

// recordFailure advances the failure streak, fires the endpoint-failure
// alert exactly when the streak reaches the alert threshold, and marks the
// watch failed at the hard threshold.
func (p *Poller) recordFailure(ctx context.Context, spec *types.WatchedSpec, cause error) error {
	spec.State.LastPolledAt = p.now().UTC()
	spec.State.ConsecutiveFailures++
	spec.State.LastError = cause.Error()
	if spec.State.ConsecutiveFailures >= failureHardThreshold {
		spec.State.Status = types.PollStatusFailed
	}

	if err := p.store.SaveWatchedSpec(spec); err != nil {
		p.log.WithField("spec_id", spec.ID).Error("failed to persist poll state", err)
	}
	p.metrics.RecordPoll("failed")

	p.log.WithFields(map[string]interface{}{
		"spec_id":  spec.ID,
		"failures": spec.State.ConsecutiveFailures,
	}).Warn("poll failed: " + cause.Error())

	if spec.State.ConsecutiveFailures == failureAlertThreshold {
		payload := alert.Payload{
			Kind:                types.AlertEndpointFailure,
			SpecID:              spec.ID,
			SpecName:            spec.Name,
			Summary:             fmt.Sprintf("%s has failed %d consecutive polls", spec.Name, failureAlertThreshold),
			ConsecutiveFailures: spec.State.ConsecutiveFailures,
			LastError:           spec.State.LastError,
		}
		if err := p.alerts.Send(ctx, payload); err != nil {
			p.log.WithField("spec_id", spec.ID).Error("endpoint failure alert failed", err)
		}
	}

	return cause
}
