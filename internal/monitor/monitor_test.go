package monitor_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ospreycove/hazmon/internal/aggregator"
	"github.com/ospreycove/hazmon/internal/domain"
	"github.com/ospreycove/hazmon/internal/monitor"
	"github.com/ospreycove/hazmon/internal/notifier"
	"github.com/ospreycove/hazmon/internal/observability"
	"github.com/ospreycove/hazmon/internal/state"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type stubChecker struct {
	verdict domain.Verdict
	err     error
	runs    int
}

func (s *stubChecker) RunCheck(context.Context) (*domain.SafetyReport, error) {
	s.runs++
	if s.err != nil {
		return nil, s.err
	}
	checks := map[domain.Source]domain.CheckResult{}
	for _, src := range domain.Sources {
		checks[src] = domain.ClearResult(src)
	}
	if s.verdict != domain.VerdictAllClear {
		sev := domain.SeverityWarning
		if s.verdict == domain.VerdictCritical {
			sev = domain.SeverityCritical
		}
		checks[domain.SourceWeather] = domain.ResultFromAlerts(domain.SourceWeather,
			[]domain.HazardAlert{{Source: domain.SourceWeather, Severity: sev}})
	}
	return domain.NewReport(domain.Location{Lat: 47.6, Lon: -122.3}, checks), nil
}

type recordingNotifier struct {
	notified  []notifier.Event
	escalated []notifier.Event
	escErr    error
}

func (r *recordingNotifier) Notify(_ context.Context, evt notifier.Event) error {
	r.notified = append(r.notified, evt)
	return nil
}

func (r *recordingNotifier) Escalate(_ context.Context, evt notifier.Event) error {
	if r.escErr != nil {
		return r.escErr
	}
	r.escalated = append(r.escalated, evt)
	return nil
}

type fixture struct {
	mon      *monitor.Monitor
	store    *state.MemoryStore
	checker  *stubChecker
	notifier *recordingNotifier
	clock    *clockwork.FakeClock
}

func newFixture(t *testing.T, verdict domain.Verdict) *fixture {
	t.Helper()
	clock := clockwork.NewFakeClockAt(testNow)
	domain.SetClock(clock)
	t.Cleanup(func() { domain.SetClock(nil) })

	store := state.NewMemoryStore()
	checker := &stubChecker{verdict: verdict}
	rec := &recordingNotifier{}
	mon := monitor.New(checker, store, rec, observability.NewMetricsForTesting(), monitor.Config{
		Threshold:   15 * time.Minute,
		Contact:     "sam",
		RepeatEvery: time.Hour,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:       clock,
	})
	return &fixture{mon: mon, store: store, checker: checker, notifier: rec, clock: clock}
}

func TestCheckCycle_AllClearRaisesNothing(t *testing.T) {
	f := newFixture(t, domain.VerdictAllClear)

	f.mon.RunCheckCycle(context.Background())

	pending, err := f.store.PendingAlert()
	require.NoError(t, err)
	assert.Nil(t, pending)
	assert.Empty(t, f.notifier.notified)
}

func TestCheckCycle_HazardRaisesAlertAndNotifies(t *testing.T) {
	f := newFixture(t, domain.VerdictAlertsFound)

	f.mon.RunCheckCycle(context.Background())

	pending, err := f.store.PendingAlert()
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, testNow, pending.RaisedAt)
	assert.False(t, pending.Acknowledged())

	require.Len(t, f.notifier.notified, 1)
	assert.Equal(t, domain.VerdictAlertsFound, f.notifier.notified[0].Verdict)
}

func TestCheckCycle_PersistingHazardDoesNotRefreshAlert(t *testing.T) {
	f := newFixture(t, domain.VerdictAlertsFound)

	f.mon.RunCheckCycle(context.Background())
	first, err := f.store.PendingAlert()
	require.NoError(t, err)
	require.NotNil(t, first)

	f.clock.Advance(10 * time.Minute)
	f.mon.RunCheckCycle(context.Background())

	second, err := f.store.PendingAlert()
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.RaisedAt, second.RaisedAt, "an outstanding alert keeps its original raise time")
	assert.Len(t, f.notifier.notified, 1, "no duplicate notification")
}

func TestCheckCycle_AcknowledgedAlertClearedNextCycle(t *testing.T) {
	f := newFixture(t, domain.VerdictAllClear)

	alert := domain.NewPendingAlert("weather: 1 alert")
	require.NoError(t, alert.Acknowledge(testNow.Add(time.Minute)))
	require.NoError(t, f.store.SavePendingAlert(alert))

	f.clock.Advance(5 * time.Minute)
	f.mon.RunCheckCycle(context.Background())

	pending, err := f.store.PendingAlert()
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestCheckCycle_AcknowledgedAlertClearedThenNewHazardRaises(t *testing.T) {
	f := newFixture(t, domain.VerdictAlertsFound)

	alert := domain.NewPendingAlert("old hazard")
	require.NoError(t, alert.Acknowledge(testNow))
	require.NoError(t, f.store.SavePendingAlert(alert))

	f.clock.Advance(30 * time.Minute)
	f.mon.RunCheckCycle(context.Background())

	pending, err := f.store.PendingAlert()
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.NotEqual(t, alert.ID, pending.ID, "fresh alert replaces the retired one")
}

func TestCheckCycle_NoLocationSkipsQuietly(t *testing.T) {
	f := newFixture(t, domain.VerdictAlertsFound)
	f.checker.err = aggregator.ErrNoLocation

	f.mon.RunCheckCycle(context.Background())

	pending, err := f.store.PendingAlert()
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestPollCycle_BeforeWindowDoesNotEscalate(t *testing.T) {
	f := newFixture(t, domain.VerdictAlertsFound)
	f.mon.RunCheckCycle(context.Background())

	f.clock.Advance(14 * time.Minute)
	f.mon.RunPollCycle(context.Background())

	assert.Empty(t, f.notifier.escalated)
}

func TestPollCycle_WindowLapsedEscalates(t *testing.T) {
	f := newFixture(t, domain.VerdictAlertsFound)
	f.mon.RunCheckCycle(context.Background())

	f.clock.Advance(15 * time.Minute)
	f.mon.RunPollCycle(context.Background())

	require.Len(t, f.notifier.escalated, 1)
	assert.Equal(t, 15*time.Minute, f.notifier.escalated[0].ElapsedSince)

	pending, err := f.store.PendingAlert()
	require.NoError(t, err)
	require.NotNil(t, pending)
	require.NotNil(t, pending.EscalatedAt)
	assert.Equal(t, testNow.Add(15*time.Minute), *pending.EscalatedAt)
}

func TestPollCycle_RepeatSuppression(t *testing.T) {
	f := newFixture(t, domain.VerdictAlertsFound)
	f.mon.RunCheckCycle(context.Background())

	f.clock.Advance(15 * time.Minute)
	f.mon.RunPollCycle(context.Background())
	require.Len(t, f.notifier.escalated, 1)

	// Polls inside the repeat window stay quiet.
	f.clock.Advance(time.Minute)
	f.mon.RunPollCycle(context.Background())
	f.clock.Advance(30 * time.Minute)
	f.mon.RunPollCycle(context.Background())
	assert.Len(t, f.notifier.escalated, 1)

	// Past the repeat window the escalation fires again.
	f.clock.Advance(time.Hour)
	f.mon.RunPollCycle(context.Background())
	assert.Len(t, f.notifier.escalated, 2)
}

func TestPollCycle_AcknowledgedAlertDoesNotEscalate(t *testing.T) {
	f := newFixture(t, domain.VerdictAlertsFound)
	f.mon.RunCheckCycle(context.Background())

	pending, err := f.store.PendingAlert()
	require.NoError(t, err)
	require.NoError(t, pending.Acknowledge(testNow.Add(5*time.Minute)))
	require.NoError(t, f.store.SavePendingAlert(pending))

	f.clock.Advance(time.Hour)
	f.mon.RunPollCycle(context.Background())

	assert.Empty(t, f.notifier.escalated)
}

func TestPollCycle_FailedEscalationRetriesNextPoll(t *testing.T) {
	f := newFixture(t, domain.VerdictAlertsFound)
	f.mon.RunCheckCycle(context.Background())

	f.notifier.escErr = errors.New("pushover down")
	f.clock.Advance(15 * time.Minute)
	f.mon.RunPollCycle(context.Background())

	pending, err := f.store.PendingAlert()
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Nil(t, pending.EscalatedAt, "a failed send must not be recorded as delivered")

	f.notifier.escErr = nil
	f.clock.Advance(time.Minute)
	f.mon.RunPollCycle(context.Background())
	assert.Len(t, f.notifier.escalated, 1)
}
