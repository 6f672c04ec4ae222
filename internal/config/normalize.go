// internal/config/normalize.go
package config

import "github.com/tamzrod/nimbie-ctl/internal/usbio"

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	a := &cfg.Autoloader

	// ------------------------------------------------------------
	// USB IDENTITY DEFAULTS
	// ------------------------------------------------------------

	if a.USB.VendorID == 0 {
		a.USB.VendorID = usbio.DefaultVendorID
	}
	if a.USB.ProductID == 0 {
		a.USB.ProductID = usbio.DefaultProductID
	}

	// ------------------------------------------------------------
	// POLL DEFAULTS
	// ------------------------------------------------------------

	if a.Poll.IntervalMs == 0 {
		a.Poll.IntervalMs = 100
	}

	// ------------------------------------------------------------
	// TIMEOUT DEFAULTS
	// ------------------------------------------------------------

	if a.Timeouts.TrayOpenS == 0 {
		a.Timeouts.TrayOpenS = 30
	}
	if a.Timeouts.TrayCloseS == 0 {
		a.Timeouts.TrayCloseS = 45
	}
	if a.Timeouts.PlaceS == 0 {
		a.Timeouts.PlaceS = 30
	}
	if a.Timeouts.LiftS == 0 {
		a.Timeouts.LiftS = 30
	}
	if a.Timeouts.DropS == 0 {
		a.Timeouts.DropS = 30
	}
}
