// internal/config/validate.go
package config

import (
	"fmt"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	a := &cfg.Autoloader

	// ------------------------------------------------------------
	// DRIVE VALIDATION
	// ------------------------------------------------------------

	if a.Drive == "" {
		return fmt.Errorf("autoloader: drive must be set")
	}
	for i := 0; i < len(a.Drive); i++ {
		if a.Drive[i] > 0x7F {
			return fmt.Errorf("autoloader: drive must contain ASCII characters only")
		}
	}

	// ------------------------------------------------------------
	// POLL VALIDATION
	// ------------------------------------------------------------

	if a.Poll.IntervalMs < 0 {
		return fmt.Errorf("autoloader: poll.interval_ms must not be negative")
	}

	// ------------------------------------------------------------
	// TIMEOUT VALIDATION
	// ------------------------------------------------------------

	checks := []struct {
		name  string
		value int
	}{
		{"tray_open_s", a.Timeouts.TrayOpenS},
		{"tray_close_s", a.Timeouts.TrayCloseS},
		{"place_s", a.Timeouts.PlaceS},
		{"lift_s", a.Timeouts.LiftS},
		{"drop_s", a.Timeouts.DropS},
	}
	for _, c := range checks {
		if c.value < 0 {
			return fmt.Errorf("autoloader: timeouts.%s must not be negative", c.name)
		}
	}

	return nil
}
