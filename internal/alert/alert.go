// Package alert dispatches breaking-change and endpoint-failure
// notifications and records them for history.
package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/specwatch/specwatch/internal/logger"
	"github.com/specwatch/specwatch/internal/metrics"
	"github.com/specwatch/specwatch/internal/storage"
	"github.com/specwatch/specwatch/pkg/types"
)

// Payload is the JSON body posted to the alert webhook.
type Payload struct {
	Kind      types.AlertKind `json:"kind"`
	Timestamp time.Time       `json:"timestamp"`
	Source    string          `json:"source"`
	SpecID    string          `json:"spec_id"`
	SpecName  string          `json:"spec_name,omitempty"`
	Summary   string          `json:"summary"`

	// Breaking-change alerts carry the version and impact detail.
	Version int                 `json:"version,omitempty"`
	Diff    *types.DiffResult   `json:"diff,omitempty"`
	Impact  *types.ImpactResult `json:"impact,omitempty"`

	// Endpoint-failure alerts carry the failure streak.
	ConsecutiveFailures int    `json:"consecutive_failures,omitempty"`
	LastError           string `json:"last_error,omitempty"`
}

// Dispatcher delivers alerts to an external channel.
type Dispatcher interface {
	Dispatch(ctx context.Context, payload Payload) error
}

// WebhookDispatcher posts alerts as JSON to a configured URL. With no URL
// configured, dispatch is a no-op so callers need no special casing.
type WebhookDispatcher struct {
	url    string
	client *http.Client
}

// NewWebhookDispatcher creates a webhook dispatcher.
func NewWebhookDispatcher(url string, timeout time.Duration) *WebhookDispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &WebhookDispatcher{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Dispatch posts the payload. Any HTTP error status is an error.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, payload Payload) error {
	if d.url == "" {
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal alert payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to build alert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("alert webhook returned error status: %d", resp.StatusCode)
	}
	return nil
}

// Service sends alerts and records them. Dispatch failures are reported to
// the caller but a failed send still leaves a history record, marked with
// the delivery error.
type Service struct {
	dispatcher Dispatcher
	history    storage.AlertStore
	metrics    *metrics.Metrics
	log        logger.Logger
}

// NewService creates the alert service.
func NewService(dispatcher Dispatcher, history storage.AlertStore, m *metrics.Metrics, log logger.Logger) *Service {
	return &Service{
		dispatcher: dispatcher,
		history:    history,
		metrics:    m,
		log:        log,
	}
}

// Send dispatches the payload and appends it to alert history.
func (s *Service) Send(ctx context.Context, payload Payload) error {
	if payload.Timestamp.IsZero() {
		payload.Timestamp = time.Now().UTC()
	}
	payload.Source = "specwatch"

	sendErr := s.dispatcher.Dispatch(ctx, payload)

	record := types.AlertRecord{
		ID:      uuid.NewString(),
		Kind:    payload.Kind,
		SpecID:  payload.SpecID,
		SentAt:  payload.Timestamp,
		Summary: payload.Summary,
	}
	if sendErr != nil {
		record.Summary = fmt.Sprintf("%s (delivery failed: %v)", payload.Summary, sendErr)
	}
	if err := s.history.SaveAlert(&record); err != nil {
		s.log.WithField("spec_id", payload.SpecID).Error("failed to record alert history", err)
	}

	if sendErr != nil {
		return sendErr
	}

	s.metrics.RecordAlert(string(payload.Kind))
	s.log.WithFields(map[string]interface{}{
		"kind":    payload.Kind,
		"spec_id": payload.SpecID,
	}).Info("alert dispatched")
	return nil
}
