package domain

import "time"

// Location is the subject's latest position fix. Only the most recent
// value matters; no history is kept.
type Location struct {
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	Accuracy   float64   `json:"accuracy,omitempty"` // meters, 0 when unknown
	CapturedAt time.Time `json:"captured_at"`
}

// FeedItem is one parsed entry from a news feed, before hazard
// filtering.
type FeedItem struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Link        string    `json:"link,omitempty"`
	Source      string    `json:"source,omitempty"` // feed host, e.g. "alerts.seattle.gov"
	PublishedAt time.Time `json:"published_at"`
}

// CheckResult is the atomic output of one feed adapter. Clear means the
// source found nothing actionable; Error records a failed or degraded
// fetch without affecting Clear (fail-open). Build results through the
// constructors so Clear and Alerts stay consistent; override data is
// the one path that may carry an inconsistent pair.
type CheckResult struct {
	Source Source        `json:"source"`
	Clear  bool          `json:"clear"`
	Alerts []HazardAlert `json:"alerts"`
	Error  string        `json:"error,omitempty"`
}

// ClearResult reports that a source found nothing actionable.
func ClearResult(source Source) CheckResult {
	return CheckResult{Source: source, Clear: true, Alerts: []HazardAlert{}}
}

// FailedResult converts an adapter failure into the fail-open default:
// clear, no alerts, error recorded for diagnostics.
func FailedResult(source Source, err error) CheckResult {
	r := ClearResult(source)
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// ResultFromAlerts builds a result whose Clear flag is derived from the
// alert list. Alert order is discovery order, not priority order.
func ResultFromAlerts(source Source, alerts []HazardAlert) CheckResult {
	if len(alerts) == 0 {
		return ClearResult(source)
	}
	return CheckResult{Source: source, Clear: false, Alerts: alerts}
}

// MaxSeverityRank returns the highest severity rank among the alerts,
// or -1 for a clear result.
func (r CheckResult) MaxSeverityRank() int {
	rank := -1
	for _, a := range r.Alerts {
		if s := a.Severity.Rank(); s > rank {
			rank = s
		}
	}
	return rank
}
