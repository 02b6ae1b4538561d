package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values can be written as "15m".
type Duration time.Duration

// UnmarshalYAML parses a duration string like "10s" or "24h".
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML renders the duration in time.Duration string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all service settings, read from a YAML file with
// defaults applied for anything unset. Secrets are indirected: the file
// names environment variables, never values.
type Config struct {
	StateDir  string `yaml:"state_dir"`
	HTTPAddr  string `yaml:"http_addr"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	CheckInterval   Duration `yaml:"check_interval"`
	PollInterval    Duration `yaml:"poll_interval"`
	AdapterTimeout  Duration `yaml:"adapter_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`

	Weather    WeatherConfig    `yaml:"weather"`
	Seismic    SeismicConfig    `yaml:"seismic"`
	AirQuality AirQualityConfig `yaml:"air_quality"`
	News       NewsConfig       `yaml:"news"`
	System     SystemConfig     `yaml:"system"`
	Escalation EscalationConfig `yaml:"escalation"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Pushover   PushoverConfig   `yaml:"pushover"`
}

type WeatherConfig struct {
	BaseURL string `yaml:"base_url"`
}

type SeismicConfig struct {
	BaseURL      string   `yaml:"base_url"`
	RadiusKM     float64  `yaml:"radius_km"`
	MinMagnitude float64  `yaml:"min_magnitude"`
	Window       Duration `yaml:"window"`
}

type AirQualityConfig struct {
	BaseURL string `yaml:"base_url"`
	// Index above which the check is not clear.
	ClearThreshold int `yaml:"clear_threshold"`
}

type NewsConfig struct {
	Feeds            []string `yaml:"feeds"`
	LocationKeywords []string `yaml:"location_keywords"`
	MaxAge           Duration `yaml:"max_age"`
	MaxItems         int      `yaml:"max_items"`
}

type SystemConfig struct {
	DiskPath  string `yaml:"disk_path"`
	ProbeAddr string `yaml:"probe_addr"` // TCP endpoint for the network reachability sub-check
}

type EscalationConfig struct {
	Threshold   Duration `yaml:"threshold"`
	Contact     string   `yaml:"contact"` // secondary contact identity, free-form
	RepeatEvery Duration `yaml:"repeat_every"`
}

// KafkaConfig enables the optional report sink when brokers are set.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// PushoverConfig names the environment variables carrying Pushover
// credentials. Empty token env (or an unset variable) disables push
// notifications.
type PushoverConfig struct {
	TokenEnv          string `yaml:"token_env"`
	UserEnv           string `yaml:"user_env"`
	EscalationUserEnv string `yaml:"escalation_user_env"`
}

// Enabled reports whether the Kafka report sink is configured.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

// Token resolves the Pushover application token from the environment.
func (p PushoverConfig) Token() string { return envOrEmpty(p.TokenEnv) }

// User resolves the primary contact's user key.
func (p PushoverConfig) User() string { return envOrEmpty(p.UserEnv) }

// EscalationUser resolves the secondary contact's user key, falling
// back to the primary when unset.
func (p PushoverConfig) EscalationUser() string {
	if v := envOrEmpty(p.EscalationUserEnv); v != "" {
		return v
	}
	return p.User()
}

func envOrEmpty(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}

// Load reads configuration from a YAML file, validates it against the
// embedded schema, and applies defaults. A missing file yields the
// default configuration and no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := validateSchema(filepath.Base(path), data); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		StateDir:  filepath.Join(home, ".hazmon"),
		HTTPAddr:  ":8080",
		LogLevel:  "info",
		LogFormat: "json",

		CheckInterval:   Duration(30 * time.Minute),
		PollInterval:    Duration(time.Minute),
		AdapterTimeout:  Duration(10 * time.Second),
		ShutdownTimeout: Duration(10 * time.Second),

		Weather: WeatherConfig{
			BaseURL: "https://api.weather.gov",
		},
		Seismic: SeismicConfig{
			BaseURL:      "https://earthquake.usgs.gov/fdsnws/event/1",
			RadiusKM:     100,
			MinMagnitude: 2.5,
			Window:       Duration(24 * time.Hour),
		},
		AirQuality: AirQualityConfig{
			BaseURL:        "https://air-quality-api.open-meteo.com/v1",
			ClearThreshold: 100,
		},
		News: NewsConfig{
			MaxAge:   Duration(24 * time.Hour),
			MaxItems: 5,
		},
		System: SystemConfig{
			DiskPath:  "/",
			ProbeAddr: "1.1.1.1:443",
		},
		Escalation: EscalationConfig{
			Threshold:   Duration(15 * time.Minute),
			Contact:     "emergency contact",
			RepeatEvery: Duration(time.Hour),
		},
		Kafka: KafkaConfig{
			Topic: "hazmon-reports",
		},
		Pushover: PushoverConfig{
			TokenEnv:          "PUSHOVER_TOKEN",
			UserEnv:           "PUSHOVER_USER",
			EscalationUserEnv: "PUSHOVER_ESCALATION_USER",
		},
	}
}

// Validate checks invariants the schema cannot express.
func (c *Config) Validate() error {
	if c.StateDir == "" {
		return fmt.Errorf("state_dir is required")
	}
	if c.AdapterTimeout <= 0 {
		return fmt.Errorf("adapter_timeout must be positive")
	}
	if c.Escalation.Threshold <= 0 {
		return fmt.Errorf("escalation.threshold must be positive")
	}
	if c.Seismic.MinMagnitude < 0 {
		return fmt.Errorf("seismic.min_magnitude cannot be negative")
	}
	if c.News.MaxItems <= 0 {
		return fmt.Errorf("news.max_items must be positive")
	}
	if c.Kafka.Enabled() && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka.topic is required when brokers are set")
	}
	return nil
}
