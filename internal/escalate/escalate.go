// Package escalate derives the escalation decision for a pending
// alert. The decision is a pure function of the current time and the
// stored record, re-derived on every poll: a delayed or re-run poll is
// idempotent, and no "escalation already sent" flag needs to survive a
// restart. The caller persists acknowledgment or clears/annotates the
// record after acting on an escalate decision.
package escalate

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ospreycove/hazmon/internal/domain"
	"github.com/ospreycove/hazmon/internal/state"
)

// Action is the escalation verdict for one poll.
type Action string

const (
	ActionNone     Action = "none"
	ActionWaiting  Action = "waiting"
	ActionEscalate Action = "escalate"
)

// DefaultThreshold is the acknowledgment window before escalation.
const DefaultThreshold = 15 * time.Minute

// Decision is the outcome of one escalation poll. Minutes fields are
// populated for waiting and escalate; Contact only for escalate.
type Decision struct {
	Action           Action `json:"action"`
	ElapsedMinutes   int    `json:"elapsed_minutes,omitempty"`
	RemainingMinutes int    `json:"remaining_minutes,omitempty"`
	Contact          string `json:"contact,omitempty"`
	Summary          string `json:"summary,omitempty"`
}

// Evaluate computes the decision for alert at now. A nil or
// acknowledged alert yields none. Once elapsed reaches threshold the
// decision is escalate, and stays escalate on every subsequent poll.
func Evaluate(now time.Time, alert *domain.PendingAlert, threshold time.Duration, contact string) Decision {
	if alert == nil || alert.Acknowledged() {
		return Decision{Action: ActionNone}
	}

	elapsed := now.Sub(alert.RaisedAt)
	if elapsed >= threshold {
		return Decision{
			Action:         ActionEscalate,
			ElapsedMinutes: int(elapsed / time.Minute),
			Contact:        contact,
			Summary:        alert.Summary,
		}
	}

	remaining := threshold - elapsed
	return Decision{
		Action:           ActionWaiting,
		ElapsedMinutes:   int(elapsed / time.Minute),
		RemainingMinutes: ceilMinutes(remaining),
		Summary:          alert.Summary,
	}
}

// Poller reads the pending alert from a store and evaluates it against
// the wall clock. CheckEscalation is a pure read, callable at any
// frequency, with no side effects of its own.
type Poller struct {
	store     state.Store
	threshold time.Duration
	contact   string
	clock     clockwork.Clock
}

func NewPoller(store state.Store, threshold time.Duration, contact string, clock clockwork.Clock) *Poller {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Poller{store: store, threshold: threshold, contact: contact, clock: clock}
}

// CheckEscalation evaluates the current pending alert. A store read
// failure is treated as "no alert" (the loop must never crash on bad
// state; a later cycle re-detects the hazard).
func (p *Poller) CheckEscalation() Decision {
	alert, err := p.store.PendingAlert()
	if err != nil {
		return Decision{Action: ActionNone}
	}
	return Evaluate(p.clock.Now(), alert, p.threshold, p.contact)
}

func ceilMinutes(d time.Duration) int {
	m := int(d / time.Minute)
	if d%time.Minute != 0 {
		m++
	}
	return m
}
