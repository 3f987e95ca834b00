package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./searchviz.db" {
			t.Errorf("expected database path ./searchviz.db, got %s", config.Database.Path)
		}

		if config.Animation.SubStepDelayMS != 300 {
			t.Errorf("expected sub step delay 300, got %d", config.Animation.SubStepDelayMS)
		}

		if !config.Animation.Acceleration {
			t.Error("expected acceleration to be enabled by default")
		}

		if config.Backend.Kind != "simulated" {
			t.Errorf("expected simulated backend, got %s", config.Backend.Kind)
		}

		if config.Backend.Timeout() != 30*time.Second {
			t.Errorf("expected 30s timeout, got %v", config.Backend.Timeout())
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[animation]
estimated_duration_ms = 9000
acceleration = false

[backend]
kind = "http"
url = "http://localhost:9090"

[log]
level = "debug"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Animation.EstimatedDurationMS != 9000 {
			t.Errorf("expected estimated duration 9000, got %d", config.Animation.EstimatedDurationMS)
		}
		if config.Animation.Acceleration {
			t.Error("expected acceleration to be disabled")
		}
		if config.Backend.URL != "http://localhost:9090" {
			t.Errorf("expected backend url http://localhost:9090, got %s", config.Backend.URL)
		}
		if config.Animation.SubStepDelayMS != 300 {
			t.Errorf("unset keys should keep defaults, got sub step delay %d", config.Animation.SubStepDelayMS)
		}
		if config.Database.Path != "./searchviz.db" {
			t.Errorf("unset sections should keep defaults, got %s", config.Database.Path)
		}
	})

	t.Run("LoadConfig Rejects Unknown Backend", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[backend]\nkind = \"carrier-pigeon\"\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
