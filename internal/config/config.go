// Package config loads nucleus tuning parameters (quantum, interval
// timer period) from a YAML file or environment, falling back to
// built-in defaults.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds the nucleus's tunable timing parameters.
type Config struct {
	// Quantum is the fixed CPU slice armed on every dispatch (default 5ms).
	Quantum time.Duration

	// IntervalTimer is the pseudo-clock broadcast period (default 100ms).
	IntervalTimer time.Duration
}

// Default returns the nucleus's canonical timing values.
func Default() Config {
	return Config{
		Quantum:       5 * time.Millisecond,
		IntervalTimer: 100 * time.Millisecond,
	}
}

// Load reads configuration from path (if non-empty) and from any
// NUCLEUS_-prefixed environment variables, overlaying the built-in
// defaults. A missing or empty path is not an error: Default() alone is
// used.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("nucleus")
	v.AutomaticEnv()
	v.SetDefault("quantum", cfg.Quantum.String())
	v.SetDefault("interval_timer", cfg.IntervalTimer.String())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	quantum, err := time.ParseDuration(v.GetString("quantum"))
	if err != nil {
		return Config{}, err
	}
	interval, err := time.ParseDuration(v.GetString("interval_timer"))
	if err != nil {
		return Config{}, err
	}

	cfg.Quantum = quantum
	cfg.IntervalTimer = interval
	return cfg, nil
}
