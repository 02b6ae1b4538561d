// Package seismic checks a USGS fdsnws-compatible earthquake catalog
// for recent events near the monitored point. Only events at or above
// the configured magnitude, inside the radius, and inside the time
// window count.
package seismic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ospreycove/hazmon/internal/domain"
)

// Client implements the seismic feed adapter.
type Client struct {
	baseURL      string
	radiusKM     float64
	minMagnitude float64
	window       time.Duration
	httpClient   *http.Client
	logger       *slog.Logger
	clock        clockwork.Clock
}

// NewClient creates a seismic client. baseURL is injectable for tests;
// a nil clock means real time.
func NewClient(baseURL string, radiusKM, minMagnitude float64, window time.Duration, logger *slog.Logger, clock clockwork.Clock) *Client {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		radiusKM:     radiusKM,
		minMagnitude: minMagnitude,
		window:       window,
		httpClient:   &http.Client{},
		logger:       logger,
		clock:        clock,
	}
}

func (c *Client) Source() domain.Source { return domain.SourceSeismic }

// Check queries the catalog for qualifying events. Failures are
// converted to the fail-open result.
func (c *Client) Check(ctx context.Context, loc domain.Location) domain.CheckResult {
	alerts, err := c.fetchEvents(ctx, loc)
	if err != nil {
		c.logger.Warn("seismic fetch failed", "error", err)
		return domain.FailedResult(domain.SourceSeismic, err)
	}
	return domain.ResultFromAlerts(domain.SourceSeismic, alerts)
}

func (c *Client) fetchEvents(ctx context.Context, loc domain.Location) ([]domain.HazardAlert, error) {
	now := c.clock.Now()
	params := url.Values{
		"format":       {"geojson"},
		"latitude":     {fmt.Sprintf("%.4f", loc.Lat)},
		"longitude":    {fmt.Sprintf("%.4f", loc.Lon)},
		"maxradiuskm":  {fmt.Sprintf("%.0f", c.radiusKM)},
		"minmagnitude": {fmt.Sprintf("%.1f", c.minMagnitude)},
		"starttime":    {now.Add(-c.window).UTC().Format(time.RFC3339)},
		"orderby":      {"time"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/query?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("seismic request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("seismic API status %d: %s", resp.StatusCode, body)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	var alerts []domain.HazardAlert
	for _, f := range payload.Features {
		occurred := time.UnixMilli(f.Properties.TimeMS).UTC()
		// The query already constrains magnitude and window; filter
		// again so a permissive upstream cannot widen the result.
		if f.Properties.Mag < c.minMagnitude || now.Sub(occurred) > c.window {
			continue
		}
		alerts = append(alerts, domain.HazardAlert{
			Source:   domain.SourceSeismic,
			Severity: magnitudeSeverity(f.Properties.Mag),
			Seismic: &domain.SeismicEvent{
				Magnitude:  f.Properties.Mag,
				Place:      f.Properties.Place,
				OccurredAt: occurred,
			},
		})
	}
	return alerts, nil
}

// magnitudeSeverity ranks events: M5+ is damage-capable near the
// surface, everything at or above the reporting floor is a warning.
func magnitudeSeverity(mag float64) domain.Severity {
	if mag >= 5.0 {
		return domain.SeverityCritical
	}
	return domain.SeverityWarning
}

// USGS GeoJSON response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	Properties properties `json:"properties"`
}

type properties struct {
	Mag    float64 `json:"mag"`
	Place  string  `json:"place"`
	TimeMS int64   `json:"time"`
}
