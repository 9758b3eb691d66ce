package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "gardencore.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setInt(&cfg.Booking.MaxActiveReservations, "GARDENCORE_BOOKING_QUOTA")
	setString(&cfg.Booking.ReservationIDPrefix, "GARDENCORE_RESERVATION_ID_PREFIX")
	setString(&cfg.Logging.Level, "GARDENCORE_LOG_LEVEL")
	setString(&cfg.Logging.Service, "GARDENCORE_LOG_SERVICE")
	setString(&cfg.Metrics.Exporter, "GARDENCORE_METRICS_EXPORTER")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Booking.MaxActiveReservations < 1 {
		return errors.New("booking.max_active_reservations must be >= 1")
	}
	if cfg.Booking.ReservationIDPrefix == "" {
		return errors.New("booking.reservation_id_prefix is required")
	}
	switch cfg.Metrics.Exporter {
	case "expvar", "prometheus", "none":
	default:
		return fmt.Errorf("metrics.exporter %q is not one of expvar, prometheus, none", cfg.Metrics.Exporter)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
