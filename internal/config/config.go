// Package config provides hierarchical configuration loading for gardencore.
// Precedence: defaults < YAML file < environment variables.
package config

// Config holds all runtime configuration for the gardencore booking service.
type Config struct {
	Booking Booking `yaml:"booking"`
	Logging Logging `yaml:"logging"`
	Metrics Metrics `yaml:"metrics"`
}

// Booking holds reservation policy configuration.
type Booking struct {
	MaxActiveReservations int    `yaml:"max_active_reservations"` // Quota of active reservations per gardener (default: 3)
	ReservationIDPrefix   string `yaml:"reservation_id_prefix"`   // Prefix for allocated reservation IDs (default: "R")
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
}

// Metrics holds metrics exporter configuration.
type Metrics struct {
	Exporter string `yaml:"exporter"` // "expvar" | "prometheus" | "none" (default: "expvar")
}

// Defaults returns a Config with sensible default values for local development.
func Defaults() Config {
	return Config{
		Booking: Booking{
			MaxActiveReservations: 3,
			ReservationIDPrefix:   "R",
		},
		Logging: Logging{
			Level:   "info",
			Service: "gardencore",
		},
		Metrics: Metrics{
			Exporter: "expvar",
		},
	}
}
