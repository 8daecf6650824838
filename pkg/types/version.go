package types

import (
	"errors"
	"strings"
	"time"
)

// VersionRecord is one persisted version of a watched spec. Versions are
// 1-based; version n is always diffed against version n-1 and a spec's
// first version has no diff.
type VersionRecord struct {
	ID        string         `json:"id"`
	SpecID    string         `json:"spec_id"`
	Version   int            `json:"version"`
	SpecHash  string         `json:"spec_hash"`
	CreatedAt time.Time      `json:"created_at"`
	Spec      NormalizedSpec `json:"spec"`

	// Diff against the preceding version. Nil for version 1, and nil when
	// diff computation failed after the version was durably stored.
	Diff *DiffResult `json:"diff,omitempty"`

	// Summary is an optional AI-generated description of the diff.
	Summary string `json:"summary,omitempty"`
}

// Validate checks if the VersionRecord has all required fields.
func (v *VersionRecord) Validate() error {
	if strings.TrimSpace(v.SpecID) == "" {
		return errors.New("version spec ID is required")
	}
	if v.Version < 1 {
		return errors.New("version number must be 1 or greater")
	}
	if strings.TrimSpace(v.SpecHash) == "" {
		return errors.New("version spec hash is required")
	}
	if v.CreatedAt.IsZero() {
		return errors.New("version creation time is required")
	}
	return nil
}

// AlertKind distinguishes the alert types the poller can dispatch.
type AlertKind string

const (
	// AlertBreakingChange is sent when a new version has breaking changes.
	AlertBreakingChange AlertKind = "breaking_change"
	// AlertEndpointFailure is sent when a watched spec keeps failing to poll.
	AlertEndpointFailure AlertKind = "endpoint_failure"
)

// AlertRecord is one dispatched alert, kept for history.
type AlertRecord struct {
	ID      string    `json:"id"`
	Kind    AlertKind `json:"kind"`
	SpecID  string    `json:"spec_id"`
	SentAt  time.Time `json:"sent_at"`
	Summary string    `json:"summary,omitempty"`
}
