// internal/config/config.go
package config

type Config struct {
	Autoloader AutoloaderConfig `yaml:"autoloader"`
}

type AutoloaderConfig struct {
	Drive    string         `yaml:"drive"`
	USB      USBConfig      `yaml:"usb"`
	Poll     PollConfig     `yaml:"poll"`
	Timeouts TimeoutsConfig `yaml:"timeouts"`
}

// ---- USB IDENTITY ----

// Zero values fall back to the autoloader's stock VID:PID.
type USBConfig struct {
	VendorID  uint16 `yaml:"vendor_id"`
	ProductID uint16 `yaml:"product_id"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

// ---- TIMEOUTS (seconds) ----

// Per-operation-class timeouts. Tray close defaults higher than the
// rest: closing with a disc on the tray settles slowly.
type TimeoutsConfig struct {
	TrayOpenS  int `yaml:"tray_open_s"`
	TrayCloseS int `yaml:"tray_close_s"`
	PlaceS     int `yaml:"place_s"`
	LiftS      int `yaml:"lift_s"`
	DropS      int `yaml:"drop_s"`
}
