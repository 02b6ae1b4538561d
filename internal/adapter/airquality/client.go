// Package airquality checks the current US AQI for the monitored
// point. Only the two Unhealthy tiers (index above the clear threshold,
// 100 by default) mark the check not-clear; Moderate air is reported in
// the reading but stays clear.
package airquality

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ospreycove/hazmon/internal/domain"
)

// Client implements the air-quality feed adapter against an
// open-meteo-compatible endpoint.
type Client struct {
	baseURL        string
	clearThreshold int
	httpClient     *http.Client
	logger         *slog.Logger
}

// NewClient creates an air-quality client. baseURL is injectable for
// tests.
func NewClient(baseURL string, clearThreshold int, logger *slog.Logger) *Client {
	return &Client{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		clearThreshold: clearThreshold,
		httpClient:     &http.Client{},
		logger:         logger,
	}
}

func (c *Client) Source() domain.Source { return domain.SourceAirQuality }

// Check fetches the current reading. Failures are converted to the
// fail-open result.
func (c *Client) Check(ctx context.Context, loc domain.Location) domain.CheckResult {
	reading, err := c.fetchCurrent(ctx, loc)
	if err != nil {
		c.logger.Warn("air quality fetch failed", "error", err)
		return domain.FailedResult(domain.SourceAirQuality, err)
	}

	if reading.Index <= c.clearThreshold {
		return domain.ClearResult(domain.SourceAirQuality)
	}

	severity := domain.SeverityWarning
	if reading.Index > 150 {
		severity = domain.SeverityCritical
	}
	return domain.ResultFromAlerts(domain.SourceAirQuality, []domain.HazardAlert{
		{Source: domain.SourceAirQuality, Severity: severity, AirQuality: reading},
	})
}

func (c *Client) fetchCurrent(ctx context.Context, loc domain.Location) (*domain.AirQualityReading, error) {
	params := url.Values{
		"latitude":  {fmt.Sprintf("%.4f", loc.Lat)},
		"longitude": {fmt.Sprintf("%.4f", loc.Lon)},
		"current":   {"us_aqi,pm2_5"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/air-quality?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("air quality request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("air quality API status %d: %s", resp.StatusCode, body)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	index := int(payload.Current.USAQI)
	return &domain.AirQualityReading{
		Index: index,
		Level: levelLabel(index),
		PM25:  payload.Current.PM25,
	}, nil
}

// levelLabel maps a US AQI index to its EPA tier name.
func levelLabel(index int) string {
	switch {
	case index <= 50:
		return "Good"
	case index <= 100:
		return "Moderate"
	case index <= 150:
		return "Unhealthy for Sensitive Groups"
	default:
		return "Unhealthy"
	}
}

// Open-Meteo air quality response types.

type response struct {
	Current current `json:"current"`
}

type current struct {
	USAQI float64 `json:"us_aqi"`
	PM25  float64 `json:"pm2_5"`
}
