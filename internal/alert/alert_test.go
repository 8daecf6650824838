package alert

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specwatch/specwatch/internal/logger"
	"github.com/specwatch/specwatch/internal/storage"
	"github.com/specwatch/specwatch/pkg/types"
)

func TestWebhookDispatcherPostsJSON(t *testing.T) {
	var received Payload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := NewWebhookDispatcher(server.URL, 5*time.Second)
	err := d.Dispatch(context.Background(), Payload{
		Kind:    types.AlertBreakingChange,
		SpecID:  "spec-1",
		Summary: "2 breaking changes in version 3",
		Version: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, types.AlertBreakingChange, received.Kind)
	assert.Equal(t, 3, received.Version)
}

func TestWebhookDispatcherErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	d := NewWebhookDispatcher(server.URL, 5*time.Second)
	err := d.Dispatch(context.Background(), Payload{Kind: types.AlertEndpointFailure})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestWebhookDispatcherNoURL(t *testing.T) {
	d := NewWebhookDispatcher("", 0)
	assert.NoError(t, d.Dispatch(context.Background(), Payload{}))
}

func TestServiceRecordsHistory(t *testing.T) {
	store, err := storage.NewLocalStore(storage.Config{BaseDir: t.TempDir()})
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewService(NewWebhookDispatcher(server.URL, 5*time.Second), store, nil, logger.NewNop())
	require.NoError(t, svc.Send(context.Background(), Payload{
		Kind:    types.AlertEndpointFailure,
		SpecID:  "spec-1",
		Summary: "3 consecutive poll failures",
	}))

	alerts, err := store.ListAlerts("spec-1")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, types.AlertEndpointFailure, alerts[0].Kind)
	assert.Equal(t, "3 consecutive poll failures", alerts[0].Summary)
}

func TestServiceRecordsDeliveryFailure(t *testing.T) {
	store, err := storage.NewLocalStore(storage.Config{BaseDir: t.TempDir()})
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewService(NewWebhookDispatcher(server.URL, 5*time.Second), store, nil, logger.NewNop())
	err = svc.Send(context.Background(), Payload{
		Kind:    types.AlertBreakingChange,
		SpecID:  "spec-1",
		Summary: "breaking changes",
	})
	require.Error(t, err)

	// The attempt is still on record, marked with the delivery error.
	alerts, listErr := store.ListAlerts("spec-1")
	require.NoError(t, listErr)
	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0].Summary, "delivery failed")
}
