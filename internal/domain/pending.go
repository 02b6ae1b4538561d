package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// PendingAlert is the single outstanding notification awaiting human
// acknowledgment. At most one exists at a time. AcknowledgedAt marks
// resolution; EscalatedAt is a caller-side annotation recording that
// the secondary contact has already been notified — the escalation
// decision itself never reads it.
type PendingAlert struct {
	ID             string     `json:"id"`
	Summary        string     `json:"summary"`
	RaisedAt       time.Time  `json:"raised_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	EscalatedAt    *time.Time `json:"escalated_at,omitempty"`
}

// NewPendingAlert raises an alert with the given summary, stamped with
// the domain clock.
func NewPendingAlert(summary string) *PendingAlert {
	return &PendingAlert{
		ID:       uuid.NewString(),
		Summary:  summary,
		RaisedAt: Now(),
	}
}

// Acknowledge records the human response. The timestamp must not
// precede RaisedAt.
func (p *PendingAlert) Acknowledge(at time.Time) error {
	if at.Before(p.RaisedAt) {
		return errors.New("acknowledgment cannot precede raised_at")
	}
	p.AcknowledgedAt = &at
	return nil
}

// Acknowledged reports whether the alert has been resolved by a human.
func (p *PendingAlert) Acknowledged() bool {
	return p != nil && p.AcknowledgedAt != nil
}

// TestOverride substitutes per-source check results for a bounded time
// window, transparently to the aggregator. Substitution is wholesale
// per source, never merged field by field.
type TestOverride struct {
	Scenario    string                 `json:"scenario"`
	Substitutes map[Source]CheckResult `json:"substitutes"`
	CreatedAt   time.Time              `json:"created_at"`
	ExpiresAt   time.Time              `json:"expires_at"`
}

// NewTestOverride creates an override that expires after ttl.
func NewTestOverride(scenario string, substitutes map[Source]CheckResult, ttl time.Duration) *TestOverride {
	now := Now()
	if scenario == "" {
		scenario = uuid.NewString()
	}
	return &TestOverride{
		Scenario:    scenario,
		Substitutes: substitutes,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
}

// Active reports whether the override should still be honored at now.
func (o *TestOverride) Active(now time.Time) bool {
	return o != nil && now.Before(o.ExpiresAt)
}
