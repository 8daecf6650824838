package types

import "time"

// PollStatus is the lifecycle state of a watched spec.
type PollStatus string

const (
	// PollStatusActive means the spec is polled on schedule.
	PollStatusActive PollStatus = "active"
	// PollStatusFailed means five consecutive polls failed.
	PollStatusFailed PollStatus = "failed"
	// PollStatusPaused means polling is suspended by the operator.
	PollStatusPaused PollStatus = "paused"
	// PollStatusDeleted means the watch was removed.
	PollStatusDeleted PollStatus = "deleted"
)

// WatchedSpec is an external API definition tracked for periodic re-fetch
// and change detection.
type WatchedSpec struct {
	ID             string     `json:"id"`
	TenantID       string     `json:"tenant_id"`
	Name           string     `json:"name"`
	SpecURL        string     `json:"spec_url"`
	PollingEnabled bool       `json:"polling_enabled"`
	State          PollState  `json:"state"`
	CreatedAt      time.Time  `json:"created_at"`
}

// PollState tracks the polling health of one watched spec. It is created at
// watch creation and mutated only by the poll scheduler.
type PollState struct {
	LastHash            string     `json:"last_hash,omitempty"`
	LastPolledAt        time.Time  `json:"last_polled_at,omitzero"`
	LastSuccessAt       time.Time  `json:"last_success_at,omitzero"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	LastError           string     `json:"last_error,omitempty"`
	Status              PollStatus `json:"status"`
	LastVersionDetected int        `json:"last_version_detected,omitempty"`
}

// ScanStatus is the lifecycle state of a repository scan.
type ScanStatus string

const (
	ScanStatusPending   ScanStatus = "pending"
	ScanStatusScanning  ScanStatus = "scanning"
	ScanStatusCompleted ScanStatus = "completed"
	ScanStatusFailed    ScanStatus = "failed"
)

// Repository is a client codebase scanned for endpoint usage.
type Repository struct {
	ID       string    `json:"id"`
	TenantID string    `json:"tenant_id"`
	Name     string    `json:"name"`
	URL      string    `json:"url"`
	State    ScanState `json:"state"`
}

// ScanState tracks scan scheduling and health for one repository. The
// scanning status doubles as a re-entrancy guard: a repository already in
// ScanStatusScanning is never picked up again until the scan finishes.
type ScanState struct {
	Status                  ScanStatus `json:"status"`
	LastScannedAt           time.Time  `json:"last_scanned_at,omitzero"`
	NextScanAt              time.Time  `json:"next_scan_at,omitzero"`
	ScanIntervalHours       int        `json:"scan_interval_hours"`
	ConsecutiveScanFailures int        `json:"consecutive_scan_failures"`
	LastScanError           string     `json:"last_scan_error,omitempty"`
	LastScanCommit          string     `json:"last_scan_commit,omitempty"`
	TotalFilesScanned       int        `json:"total_files_scanned"`
	TotalEndpointsFound     int        `json:"total_endpoints_found"`
}
