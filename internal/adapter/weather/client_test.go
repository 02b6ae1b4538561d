package weather

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ospreycove/hazmon/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var seattle = domain.Location{Lat: 47.6062, Lon: -122.3321}

func TestCheck_ActiveAlerts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/alerts/active", r.URL.Path)
		assert.Equal(t, "47.6062,-122.3321", r.URL.Query().Get("point"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/geo+json")
		_, err := w.Write([]byte(`{
			"features": [
				{"properties": {
					"event": "Severe Thunderstorm Warning",
					"severity": "Severe",
					"headline": "Severe Thunderstorm Warning until 3 PM PDT",
					"description": "Quarter size hail possible.",
					"expires": "2026-03-14T15:00:00-07:00"
				}},
				{"properties": {
					"event": "Flood Watch",
					"severity": "Moderate",
					"headline": "Flood Watch through this evening"
				}}
			]
		}`))
		require.NoError(t, err)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	result := c.Check(context.Background(), seattle)

	assert.False(t, result.Clear)
	assert.Empty(t, result.Error)
	require.Len(t, result.Alerts, 2)
	assert.Equal(t, domain.SeveritySevere, result.Alerts[0].Severity)
	assert.Equal(t, "Severe Thunderstorm Warning", result.Alerts[0].Weather.Event)
	assert.False(t, result.Alerts[0].Weather.ExpiresAt.IsZero())
	assert.Equal(t, domain.SeverityWarning, result.Alerts[1].Severity)
}

func TestCheck_NoActiveAlerts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"features": []}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	result := c.Check(context.Background(), seattle)

	assert.True(t, result.Clear)
	assert.Empty(t, result.Alerts)
	assert.Empty(t, result.Error)
}

func TestCheck_UpstreamErrorFailsOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	result := c.Check(context.Background(), seattle)

	assert.True(t, result.Clear, "fetch failure must not raise an alert")
	assert.Empty(t, result.Alerts)
	assert.NotEmpty(t, result.Error)
}

func TestCheck_MalformedPayloadFailsOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testLogger())
	result := c.Check(context.Background(), seattle)

	assert.True(t, result.Clear)
	assert.NotEmpty(t, result.Error)
}

func TestCheck_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"features": []}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, testLogger())
	result := c.Check(ctx, seattle)

	assert.True(t, result.Clear)
	assert.NotEmpty(t, result.Error)
}
