// Package monitor runs the periodic hazard-check and escalation loops.
// A check cycle aggregates all feeds and raises a pending alert when
// the verdict is not all clear; a faster poll cycle re-derives the
// escalation decision so an unacknowledged alert reaches the emergency
// contact once the acknowledgment window lapses.
package monitor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ospreycove/hazmon/internal/aggregator"
	"github.com/ospreycove/hazmon/internal/domain"
	"github.com/ospreycove/hazmon/internal/escalate"
	"github.com/ospreycove/hazmon/internal/notifier"
	"github.com/ospreycove/hazmon/internal/observability"
	"github.com/ospreycove/hazmon/internal/state"
)

// CheckRunner runs one aggregation cycle. Satisfied by
// aggregator.Aggregator.
type CheckRunner interface {
	RunCheck(ctx context.Context) (*domain.SafetyReport, error)
}

type Config struct {
	CheckInterval time.Duration // hazard check cadence
	PollInterval  time.Duration // escalation poll cadence
	Threshold     time.Duration // acknowledgment window
	Contact       string        // who escalations go to, free-form
	RepeatEvery   time.Duration // minimum gap between repeated escalations
	Logger        *slog.Logger
	Clock         clockwork.Clock
}

type Monitor struct {
	checker  CheckRunner
	store    state.Store
	notifier notifier.Notifier
	poller   *escalate.Poller
	metrics  *observability.Metrics
	logger   *slog.Logger
	clock    clockwork.Clock
	cfg      Config
}

func New(checker CheckRunner, store state.Store, n notifier.Notifier, metrics *observability.Metrics, cfg Config) *Monitor {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = 30 * time.Minute
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Minute
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = escalate.DefaultThreshold
	}
	if cfg.RepeatEvery <= 0 {
		cfg.RepeatEvery = time.Hour
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if n == nil {
		n = notifier.Nop{}
	}
	return &Monitor{
		checker:  checker,
		store:    store,
		notifier: n,
		poller:   escalate.NewPoller(store, cfg.Threshold, cfg.Contact, cfg.Clock),
		metrics:  metrics,
		logger:   logger,
		clock:    cfg.Clock,
		cfg:      cfg,
	}
}

// Start blocks until ctx is cancelled, running an immediate check and
// then the two tickers.
func (m *Monitor) Start(ctx context.Context) error {
	m.logger.Info("monitor starting",
		"check_interval", m.cfg.CheckInterval,
		"poll_interval", m.cfg.PollInterval,
		"ack_window", m.cfg.Threshold,
	)

	m.RunCheckCycle(ctx)

	checkTicker := m.clock.NewTicker(m.cfg.CheckInterval)
	defer checkTicker.Stop()
	pollTicker := m.clock.NewTicker(m.cfg.PollInterval)
	defer pollTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("monitor stopping")
			return nil
		case <-checkTicker.Chan():
			m.RunCheckCycle(ctx)
		case <-pollTicker.Chan():
			m.RunPollCycle(ctx)
		}
	}
}

// RunCheckCycle runs one hazard check and reconciles the pending
// alert. The cycle never returns an error: a failed check is logged
// and retried at the next tick.
func (m *Monitor) RunCheckCycle(ctx context.Context) {
	report, err := m.checker.RunCheck(ctx)
	if err != nil {
		if errors.Is(err, aggregator.ErrNoLocation) {
			m.logger.Warn("check skipped: no location on file")
		} else {
			m.logger.Error("check cycle failed", "error", err)
		}
		return
	}

	pending, err := m.store.PendingAlert()
	if err != nil {
		m.logger.Error("read pending alert failed", "error", err)
		return
	}

	// An acknowledged alert has served its purpose; retire it so a
	// future hazard can raise a fresh one.
	if pending != nil && pending.Acknowledged() {
		if err := m.store.ClearPendingAlert(); err != nil {
			m.logger.Error("clear pending alert failed", "error", err)
			return
		}
		m.logger.Info("acknowledged alert cleared", "id", pending.ID)
		m.metrics.AlertActive.Set(0)
		pending = nil
	}

	if report.Verdict == domain.VerdictAllClear {
		if pending == nil {
			m.metrics.AlertActive.Set(0)
		}
		return
	}

	// New hazards while an unacknowledged alert is outstanding are
	// absorbed by it; the original RaisedAt keeps the escalation
	// window honest.
	if pending != nil {
		m.logger.Info("hazard persists, alert already pending", "id", pending.ID, "raised_at", pending.RaisedAt)
		return
	}

	alert := domain.NewPendingAlert(report.Summary())
	if err := m.store.SavePendingAlert(alert); err != nil {
		m.logger.Error("save pending alert failed", "error", err)
		return
	}
	m.metrics.AlertActive.Set(1)
	m.logger.Warn("hazard alert raised", "id", alert.ID, "verdict", report.Verdict, "summary", alert.Summary)

	evt := notifier.Event{
		Verdict:  report.Verdict,
		Summary:  alert.Summary,
		RaisedAt: alert.RaisedAt,
	}
	if err := m.notifier.Notify(ctx, evt); err != nil {
		m.logger.Error("notify failed", "error", err)
	}
}

// RunPollCycle evaluates escalation for the pending alert and contacts
// the emergency contact when the window has lapsed. The decision is
// re-derived every poll; EscalatedAt only rate-limits the outbound
// notification.
func (m *Monitor) RunPollCycle(ctx context.Context) {
	decision := m.poller.CheckEscalation()
	if decision.Action != escalate.ActionEscalate {
		return
	}

	pending, err := m.store.PendingAlert()
	if err != nil || pending == nil {
		return
	}

	now := m.clock.Now()
	if pending.EscalatedAt != nil && now.Sub(*pending.EscalatedAt) < m.cfg.RepeatEvery {
		return
	}

	evt := notifier.Event{
		Verdict:      domain.VerdictAlertsFound,
		Summary:      pending.Summary,
		RaisedAt:     pending.RaisedAt,
		ElapsedSince: now.Sub(pending.RaisedAt),
	}
	if err := m.notifier.Escalate(ctx, evt); err != nil {
		m.logger.Error("escalation notify failed", "contact", decision.Contact, "error", err)
		return
	}

	m.metrics.EscalationsTotal.Inc()
	m.logger.Warn("alert escalated",
		"id", pending.ID,
		"contact", decision.Contact,
		"elapsed_minutes", decision.ElapsedMinutes,
	)

	pending.EscalatedAt = &now
	if err := m.store.SavePendingAlert(pending); err != nil {
		m.logger.Error("annotate escalation failed", "error", err)
	}
}
