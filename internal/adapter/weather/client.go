// Package weather checks the National Weather Service active-alerts
// API for the monitored point. Any active alert counts; there is no
// severity filtering on this source.
package weather

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

	"github.com/ospreycove/hazmon/internal/domain"
)

const userAgent = "hazmon/1.0 (personal hazard monitor)"

// Client implements the weather feed adapter against an
// api.weather.gov-compatible endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a weather alerts client. baseURL is injectable for
// tests.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     logger,
	}
}

func (c *Client) Source() domain.Source { return domain.SourceWeather }

// Check fetches active alerts for the location. All failures are
// converted to the fail-open result.
func (c *Client) Check(ctx context.Context, loc domain.Location) domain.CheckResult {
	alerts, err := c.fetchActive(ctx, loc)
	if err != nil {
		c.logger.Warn("weather fetch failed", "error", err)
		return domain.FailedResult(domain.SourceWeather, err)
	}
	return domain.ResultFromAlerts(domain.SourceWeather, alerts)
}

func (c *Client) fetchActive(ctx context.Context, loc domain.Location) ([]domain.HazardAlert, error) {
	u := fmt.Sprintf("%s/alerts/active?point=%s", c.baseURL,
		url.QueryEscape(fmt.Sprintf("%.4f,%.4f", loc.Lat, loc.Lon)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("weather API status %d: %s", resp.StatusCode, body)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	alerts := make([]domain.HazardAlert, 0, len(payload.Features))
	for _, f := range payload.Features {
		alerts = append(alerts, domain.HazardAlert{
			Source:   domain.SourceWeather,
			Severity: mapSeverity(f.Properties.Severity),
			Weather: &domain.WeatherAlert{
				Event:       f.Properties.Event,
				Severity:    f.Properties.Severity,
				Headline:    f.Properties.Headline,
				Description: f.Properties.Description,
				ExpiresAt:   parseTime(f.Properties.Expires),
			},
		})
	}
	return alerts, nil
}

// mapSeverity folds the NWS severity vocabulary onto the domain scale.
// Unknown values rank as warning: an active alert is never info.
func mapSeverity(s string) domain.Severity {
	switch strings.ToLower(s) {
	case "extreme":
		return domain.SeverityExtreme
	case "severe":
		return domain.SeveritySevere
	default:
		return domain.SeverityWarning
	}
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// NWS API response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	Properties properties `json:"properties"`
}

type properties struct {
	Event       string `json:"event"`
	Severity    string `json:"severity"`
	Headline    string `json:"headline"`
	Description string `json:"description"`
	Expires     string `json:"expires"`
}
