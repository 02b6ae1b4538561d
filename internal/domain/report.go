package domain

import (
	"strings"
	"time"
)

// Verdict classifies a SafetyReport.
type Verdict string

const (
	VerdictAllClear    Verdict = "ALL_CLEAR"
	VerdictAlertsFound Verdict = "ALERTS_FOUND"
	VerdictCritical    Verdict = "CRITICAL"
)

// SafetyReport is the aggregate snapshot of one check run. It is built
// once by NewReport and never mutated; the verdict is derived from the
// checks at construction, never set independently.
type SafetyReport struct {
	GeneratedAt time.Time              `json:"generated_at"`
	Location    Location               `json:"location"`
	Checks      map[Source]CheckResult `json:"checks"`
	Verdict     Verdict                `json:"verdict"`
}

// NewReport assembles a report for the given location and per-source
// results, stamping it with the domain clock and deriving the verdict.
func NewReport(loc Location, checks map[Source]CheckResult) *SafetyReport {
	return &SafetyReport{
		GeneratedAt: Now(),
		Location:    loc,
		Checks:      checks,
		Verdict:     computeVerdict(checks),
	}
}

// computeVerdict applies the aggregation rule: ALL_CLEAR iff every
// check is clear; CRITICAL when any alert ranks critical; otherwise
// ALERTS_FOUND.
func computeVerdict(checks map[Source]CheckResult) Verdict {
	verdict := VerdictAllClear
	for _, c := range checks {
		if c.Clear {
			continue
		}
		if c.MaxSeverityRank() >= SeverityCritical.Rank() {
			return VerdictCritical
		}
		verdict = VerdictAlertsFound
	}
	return verdict
}

// Summary renders a one-line description of the triggering hazards,
// suitable as a PendingAlert summary. Sources are visited in the fixed
// report order so the output is deterministic.
func (r *SafetyReport) Summary() string {
	var parts []string
	for _, src := range Sources {
		c, ok := r.Checks[src]
		if !ok || c.Clear {
			continue
		}
		for _, a := range c.Alerts {
			parts = append(parts, a.Headline())
		}
	}
	if len(parts) == 0 {
		return "all clear"
	}
	return strings.Join(parts, "; ")
}
