package domain

import (
	"fmt"
	"time"
)

// Source identifies one hazard feed adapter.
type Source string

const (
	SourceWeather    Source = "weather"
	SourceSeismic    Source = "seismic"
	SourceAirQuality Source = "air_quality"
	SourceNews       Source = "news"
	SourceSystem     Source = "system"
)

// Sources lists all configured sources in report order. The aggregate
// report's shape follows this order regardless of which adapter
// finishes first.
var Sources = []Source{SourceWeather, SourceSeismic, SourceAirQuality, SourceNews, SourceSystem}

// Valid reports whether s is one of the known sources.
func (s Source) Valid() bool {
	switch s {
	case SourceWeather, SourceSeismic, SourceAirQuality, SourceNews, SourceSystem:
		return true
	}
	return false
}

// Severity classifies how urgent an alert is. Provider vocabularies are
// mapped onto three ranks: info < warning < critical. "severe" and
// "extreme" are kept verbatim from weather providers but rank with
// critical.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
	SeveritySevere   Severity = "severe"
	SeverityExtreme  Severity = "extreme"
)

// Rank returns the ordering position of s: 0 for info (and unknown
// values), 1 for warning, 2 for the critical tier.
func (s Severity) Rank() int {
	switch s {
	case SeverityWarning:
		return 1
	case SeverityCritical, SeveritySevere, SeverityExtreme:
		return 2
	default:
		return 0
	}
}

// SystemCheckKind names one of the host-health sub-checks.
type SystemCheckKind string

const (
	SystemDisk        SystemCheckKind = "disk"
	SystemMemory      SystemCheckKind = "memory"
	SystemTemperature SystemCheckKind = "temperature"
	SystemUptime      SystemCheckKind = "uptime"
	SystemNetwork     SystemCheckKind = "network"
)

// HazardAlert is a tagged variant: exactly one of the per-source
// payload pointers is set, matching Source. Severity carries the
// three-tier rank used for verdict routing; sources without a native
// severity scale leave it at warning.
type HazardAlert struct {
	Source   Source   `json:"source"`
	Severity Severity `json:"severity,omitempty"`

	Weather    *WeatherAlert      `json:"weather,omitempty"`
	Seismic    *SeismicEvent      `json:"seismic,omitempty"`
	AirQuality *AirQualityReading `json:"air_quality,omitempty"`
	News       *NewsItem          `json:"news,omitempty"`
	System     *SystemAlert       `json:"system,omitempty"`
}

// WeatherAlert is an active severe-weather product for the point.
type WeatherAlert struct {
	Event       string    `json:"event"`
	Severity    string    `json:"severity,omitempty"` // provider vocabulary, verbatim
	Headline    string    `json:"headline,omitempty"`
	Description string    `json:"description,omitempty"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
}

// SeismicEvent is a recent earthquake within the monitored radius.
type SeismicEvent struct {
	Magnitude  float64   `json:"magnitude"`
	Place      string    `json:"place"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AirQualityReading is an unhealthy air-quality measurement.
type AirQualityReading struct {
	Index int     `json:"index"`
	Level string  `json:"level"`
	PM25  float64 `json:"pm25,omitempty"`
}

// NewsItem is a local-news headline that survived hazard filtering.
type NewsItem struct {
	Title        string `json:"title"`
	SourceDomain string `json:"source_domain,omitempty"`
	Link         string `json:"link,omitempty"`
	AgeMinutes   int    `json:"age_minutes"`
}

// SystemAlert is one host-health sub-check finding.
type SystemAlert struct {
	Kind    SystemCheckKind `json:"kind"`
	Message string          `json:"message"`
}

// Headline renders a one-line human description of the alert, used for
// pending-alert summaries and notifications.
func (a HazardAlert) Headline() string {
	switch {
	case a.Weather != nil:
		if a.Weather.Headline != "" {
			return a.Weather.Headline
		}
		return a.Weather.Event
	case a.Seismic != nil:
		return fmt.Sprintf("M%.1f earthquake %s", a.Seismic.Magnitude, a.Seismic.Place)
	case a.AirQuality != nil:
		return fmt.Sprintf("Air quality %s (AQI %d)", a.AirQuality.Level, a.AirQuality.Index)
	case a.News != nil:
		return a.News.Title
	case a.System != nil:
		return fmt.Sprintf("%s: %s", a.System.Kind, a.System.Message)
	}
	return string(a.Source)
}
