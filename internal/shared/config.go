package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Animation AnimationConfig `toml:"animation"`
	Backend   BackendConfig   `toml:"backend"`
	Database  DatabaseConfig  `toml:"database"`
	Log       LogConfig       `toml:"log"`
}

// AnimationConfig tunes the progress animation schedule.
type AnimationConfig struct {
	SubStepDelayMS      int  `toml:"sub_step_delay_ms"`
	EstimatedDurationMS int  `toml:"estimated_duration_ms"`
	Acceleration        bool `toml:"acceleration"`
	PolicyIntervalMS    int  `toml:"policy_interval_ms"`
}

// BackendConfig selects and configures the search backend.
type BackendConfig struct {
	Kind              string `toml:"kind"`
	URL               string `toml:"url"`
	TimeoutMS         int    `toml:"timeout_ms"`
	LatencyMS         int    `toml:"latency_ms"`
	FailWith          string `toml:"fail_with"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
	ResultCount       int    `toml:"result_count"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig controls log verbosity and the TUI log file.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Timeout returns the backend request timeout.
func (b BackendConfig) Timeout() time.Duration { return Millis(b.TimeoutMS) }

// Latency returns the simulated backend latency.
func (b BackendConfig) Latency() time.Duration { return Millis(b.LatencyMS) }

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys absent from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate rejects values the animation and backend cannot work with.
func (c *Config) Validate() error {
	switch c.Backend.Kind {
	case "simulated", "http":
	default:
		return fmt.Errorf("%w: backend kind %q", ErrInvalidConfig, c.Backend.Kind)
	}
	if c.Animation.SubStepDelayMS < 0 || c.Animation.EstimatedDurationMS < 0 {
		return fmt.Errorf("%w: animation durations must not be negative", ErrInvalidConfig)
	}
	if c.Animation.PolicyIntervalMS <= 0 {
		return fmt.Errorf("%w: policy_interval_ms must be positive", ErrInvalidConfig)
	}
	if c.Backend.TimeoutMS < 0 || c.Backend.LatencyMS < 0 || c.Backend.RequestsPerMinute < 0 {
		return fmt.Errorf("%w: backend values must not be negative", ErrInvalidConfig)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
