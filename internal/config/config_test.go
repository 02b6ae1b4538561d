package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hazmon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 30*time.Minute, cfg.CheckInterval.Std())
	assert.Equal(t, 10*time.Second, cfg.AdapterTimeout.Std())
	assert.Equal(t, 15*time.Minute, cfg.Escalation.Threshold.Std())
	assert.Equal(t, 2.5, cfg.Seismic.MinMagnitude)
	assert.Equal(t, 100.0, cfg.Seismic.RadiusKM)
	assert.Equal(t, 24*time.Hour, cfg.Seismic.Window.Std())
	assert.Equal(t, 100, cfg.AirQuality.ClearThreshold)
	assert.Equal(t, 5, cfg.News.MaxItems)
	assert.False(t, cfg.Kafka.Enabled())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
state_dir: /var/lib/hazmon
http_addr: ":9090"
log_format: text
check_interval: 15m
escalation:
  threshold: 20m
  contact: "Jamie (secondary)"
news:
  feeds:
    - https://alerts.example.org/feed.xml
  location_keywords: [seattle, king county]
kafka:
  brokers: [localhost:9092]
  topic: safety-reports
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/hazmon", cfg.StateDir)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 15*time.Minute, cfg.CheckInterval.Std())
	assert.Equal(t, 20*time.Minute, cfg.Escalation.Threshold.Std())
	assert.Equal(t, "Jamie (secondary)", cfg.Escalation.Contact)
	assert.Equal(t, []string{"https://alerts.example.org/feed.xml"}, cfg.News.Feeds)
	assert.Equal(t, []string{"seattle", "king county"}, cfg.News.LocationKeywords)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, "safety-reports", cfg.Kafka.Topic)

	// Unset sections keep their defaults.
	assert.Equal(t, 2.5, cfg.Seismic.MinMagnitude)
	assert.Equal(t, 10*time.Second, cfg.AdapterTimeout.Std())
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, "check_interval: soon\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_SchemaRejectsWrongType(t *testing.T) {
	path := writeConfig(t, "air_quality:\n  clear_threshold: \"high\"\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_SchemaRejectsUnknownLogLevel(t *testing.T) {
	path := writeConfig(t, "log_level: verbose\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Escalation.Threshold = 0
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Kafka.Brokers = []string{"localhost:9092"}
	cfg.Kafka.Topic = ""
	require.Error(t, cfg.Validate())
}

func TestPushover_EnvIndirection(t *testing.T) {
	t.Setenv("PUSHOVER_TOKEN", "app-token")
	t.Setenv("PUSHOVER_USER", "primary-key")

	p := Default().Pushover
	assert.Equal(t, "app-token", p.Token())
	assert.Equal(t, "primary-key", p.User())
	// Escalation user falls back to primary when its variable is unset.
	assert.Equal(t, "primary-key", p.EscalationUser())

	t.Setenv("PUSHOVER_ESCALATION_USER", "secondary-key")
	assert.Equal(t, "secondary-key", p.EscalationUser())
}
