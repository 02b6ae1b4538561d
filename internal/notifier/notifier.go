package notifier

import (
	"context"
	"time"

	"github.com/ospreycove/hazmon/internal/domain"
)

// Event captures the hazard details carried into a notification.
type Event struct {
	Verdict  domain.Verdict
	Summary  string
	RaisedAt time.Time
	// ElapsedSince is how long the alert has gone unacknowledged.
	// Zero for the initial notification.
	ElapsedSince time.Duration
}

// Notifier delivers hazard notifications. Notify reaches the primary
// contact when a new hazard is raised; Escalate reaches the emergency
// contact after the acknowledgment window lapses.
type Notifier interface {
	Notify(ctx context.Context, evt Event) error
	Escalate(ctx context.Context, evt Event) error
}

// Nop is a no-op notifier useful in tests and dry runs.
type Nop struct{}

func (Nop) Notify(_ context.Context, _ Event) error   { return nil }
func (Nop) Escalate(_ context.Context, _ Event) error { return nil }
