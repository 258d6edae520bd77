// Package config loads process configuration from YAML, following
// itohio-EasyRobot's loader convention: open-and-unmarshal with a
// tolerant fallback to defaults when the file is absent, then apply
// environment-variable overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"polyfield-edm/internal/calibration"
)

// Config is the process-wide configuration, loaded once at startup.
type Config struct {
	DemoMode          bool   `yaml:"demoMode"`
	DefaultCircleType string `yaml:"defaultCircleType"`
	SerialBaud        int    `yaml:"serialBaud"`
	DBPath            string `yaml:"dbPath"`
	LogFormat         string `yaml:"logFormat"`
}

// Default returns the built-in defaults used when no config file is
// present.
func Default() Config {
	return Config{
		DemoMode:          false,
		DefaultCircleType: string(calibration.Shot),
		SerialBaud:        9600,
		DBPath:            "polyfield-edm.db",
		LogFormat:         "console",
	}
}

// Load reads path and unmarshals it over Default(), tolerating a missing
// file. Environment variables POLYFIELD_DEMO_MODE, POLYFIELD_DB_PATH, and
// POLYFIELD_LOG_FORMAT override the loaded values when set.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("POLYFIELD_DEMO_MODE"); ok {
		cfg.DemoMode = v == "true" || v == "1"
	}
	if v, ok := os.LookupEnv("POLYFIELD_DB_PATH"); ok && v != "" {
		cfg.DBPath = v
	}
	if v, ok := os.LookupEnv("POLYFIELD_LOG_FORMAT"); ok && v != "" {
		cfg.LogFormat = v
	}
}

// CircleType parses DefaultCircleType into a calibration.CircleType,
// falling back to Shot if unrecognised.
func (c Config) CircleType() calibration.CircleType {
	t := calibration.CircleType(c.DefaultCircleType)
	if _, ok := calibration.TargetRadius(t); ok {
		return t
	}
	return calibration.Shot
}
