// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() defaults and a layered Load (defaults -> file -> env).
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath points at the SQLite database file. Empty selects the
	// in-memory store (state is lost on restart).
	DBPath string `koanf:"db_path"`

	// RubricPath points at a YAML rubric file. Empty selects the built-in
	// sales-coaching rubric.
	RubricPath string `koanf:"rubric_path"`

	// SaveQueueSize bounds the toggle save queue.
	SaveQueueSize int `koanf:"save_queue_size"`

	// SaveWorkers sets the number of background save writers.
	SaveWorkers int `koanf:"save_workers"`

	// SaveRetryMax caps retries per toggle write.
	SaveRetryMax int `koanf:"save_retry_max"`

	// MaxListLimit caps GET /assessments?limit.
	MaxListLimit int `koanf:"max_list_limit"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:      "info",
		Addr:          ":9080",
		DBPath:        "",
		RubricPath:    "",
		SaveQueueSize: 1024,
		SaveWorkers:   2,
		SaveRetryMax:  3,
		MaxListLimit:  100,
	}
}
