package state

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ospreycove/hazmon/internal/domain"
)

func testStore(t *testing.T) *FileStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := NewFileStore(t.TempDir(), logger)
	require.NoError(t, err)
	return s
}

func TestFileStore_LocationRoundTrip(t *testing.T) {
	s := testStore(t)

	_, ok, err := s.Location()
	require.NoError(t, err)
	assert.False(t, ok)

	loc := domain.Location{Lat: 47.6062, Lon: -122.3321, Accuracy: 12, CapturedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	require.NoError(t, s.SetLocation(loc))

	got, ok, err := s.Location()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, loc, got)
}

func TestFileStore_PendingAlertRoundTrip(t *testing.T) {
	s := testStore(t)

	alert, err := s.PendingAlert()
	require.NoError(t, err)
	assert.Nil(t, alert)

	raised := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.SavePendingAlert(&domain.PendingAlert{ID: "a1", Summary: "Flood Watch", RaisedAt: raised}))

	alert, err = s.PendingAlert()
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, "Flood Watch", alert.Summary)
	assert.True(t, alert.RaisedAt.Equal(raised))

	require.NoError(t, s.ClearPendingAlert())
	alert, err = s.PendingAlert()
	require.NoError(t, err)
	assert.Nil(t, alert)

	// Clearing twice is fine.
	require.NoError(t, s.ClearPendingAlert())
}

func TestFileStore_CorruptRecordTreatedAsAbsent(t *testing.T) {
	s := testStore(t)

	require.NoError(t, os.WriteFile(filepath.Join(s.dir, alertFile), []byte("{not json"), 0o644))
	alert, err := s.PendingAlert()
	require.NoError(t, err)
	assert.Nil(t, alert)

	require.NoError(t, os.WriteFile(filepath.Join(s.dir, overrideFile), []byte("[]"), 0o644))
	o, err := s.Override()
	require.NoError(t, err)
	assert.Nil(t, o)

	// Valid JSON but missing required fields is also absent.
	require.NoError(t, os.WriteFile(filepath.Join(s.dir, locationFile), []byte("{}"), 0o644))
	_, ok, err := s.Location()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_OverrideRoundTrip(t *testing.T) {
	s := testStore(t)

	o := &domain.TestOverride{
		Scenario: "storm-drill",
		Substitutes: map[domain.Source]domain.CheckResult{
			domain.SourceWeather: domain.ResultFromAlerts(domain.SourceWeather, []domain.HazardAlert{
				{Source: domain.SourceWeather, Severity: domain.SeveritySevere, Weather: &domain.WeatherAlert{Event: "Severe Thunderstorm Warning"}},
			}),
		},
		CreatedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		ExpiresAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
	require.NoError(t, s.SaveOverride(o))

	got, err := s.Override()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "storm-drill", got.Scenario)
	require.Contains(t, got.Substitutes, domain.SourceWeather)
	assert.False(t, got.Substitutes[domain.SourceWeather].Clear)

	require.NoError(t, s.ClearOverride())
	got, err = s.Override()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileStore_AppendReportOneFilePerRun(t *testing.T) {
	s := testStore(t)

	r1 := &domain.SafetyReport{GeneratedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC), Verdict: domain.VerdictAllClear}
	r2 := &domain.SafetyReport{GeneratedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC), Verdict: domain.VerdictAlertsFound}
	require.NoError(t, s.AppendReport(r1))
	require.NoError(t, s.AppendReport(r2))

	entries, err := os.ReadDir(filepath.Join(s.dir, reportsDir))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "2026-03-14T09-00-00Z.json", entries[0].Name())
	assert.Equal(t, "2026-03-14T09-30-00Z.json", entries[1].Name())
}

func TestFileStore_LatestReport(t *testing.T) {
	s := testStore(t)

	got, err := s.LatestReport()
	require.NoError(t, err)
	assert.Nil(t, got, "empty history yields no report")

	r1 := &domain.SafetyReport{GeneratedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC), Verdict: domain.VerdictAllClear}
	r2 := &domain.SafetyReport{GeneratedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC), Verdict: domain.VerdictAlertsFound}
	require.NoError(t, s.AppendReport(r1))
	require.NoError(t, s.AppendReport(r2))

	got, err = s.LatestReport()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.VerdictAlertsFound, got.Verdict)
	assert.Equal(t, r2.GeneratedAt, got.GeneratedAt)
}
