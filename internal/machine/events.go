// internal/machine/events.go
package machine

// Event tags a completed effect. Events drive Transition; effects
// never change state directly.
type Event int

const (
	// evNone is returned by a resting state's effect step.
	evNone Event = iota

	EvHardwareChecked
	EvLiftedDiskCleared
	EvTrayFoundOpen
	EvTrayFoundClosed
	EvOpenTrayCleared
	EvEmptyTrayClosed
	EvClosedDriveChecked
	EvInitDone

	EvLoadStarted
	EvUnloadStarted

	EvTrayOpenIssued
	EvTrayOpened
	EvPlaceIssued
	EvDiskPlaced
	EvTrayCloseIssued
	EvTrayClosed
	EvLiftIssued
	EvDiskLifted
	EvDiskDropped

	EvFault
	EvRecovered
)

var eventNames = map[Event]string{
	evNone:               "none",
	EvHardwareChecked:    "hardware_checked",
	EvLiftedDiskCleared:  "lifted_disk_cleared",
	EvTrayFoundOpen:      "tray_found_open",
	EvTrayFoundClosed:    "tray_found_closed",
	EvOpenTrayCleared:    "open_tray_cleared",
	EvEmptyTrayClosed:    "empty_tray_closed",
	EvClosedDriveChecked: "closed_drive_checked",
	EvInitDone:           "init_done",
	EvLoadStarted:        "load_started",
	EvUnloadStarted:      "unload_started",
	EvTrayOpenIssued:     "tray_open_issued",
	EvTrayOpened:         "tray_opened",
	EvPlaceIssued:        "place_issued",
	EvDiskPlaced:         "disk_placed",
	EvTrayCloseIssued:    "tray_close_issued",
	EvTrayClosed:         "tray_closed",
	EvLiftIssued:         "lift_issued",
	EvDiskLifted:         "disk_lifted",
	EvDiskDropped:        "disk_dropped",
	EvFault:              "fault",
	EvRecovered:          "recovered",
}

func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return "unknown"
}
