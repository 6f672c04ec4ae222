// internal/machine/states.go
package machine

// State is the authoritative logical state of the workflow.
// Exactly one state is active at a time. The composite phases
// (initializing, loading, unloading) are ordered sub-state runs.
type State int

const (
	// Initializing sub-states, run once per process lifetime.
	InitCheckingHardware State = iota
	InitClearingLiftedDisk
	InitCheckingTrayState
	InitClearingOpenTray
	InitClosingEmptyTray
	InitCheckingClosedDrive
	InitComplete

	// Idle between discs.
	Ready

	// Loading sub-states.
	LoadOpeningTray
	LoadWaitingTrayOpen
	LoadPlacingDisk
	LoadWaitingDiskPlaced
	LoadClosingTray
	LoadWaitingTrayClosed

	// Disc sealed in the drive, caller is working on it.
	Processing

	// Unloading sub-states.
	UnloadOpeningTray
	UnloadWaitingTrayOpen
	UnloadLiftingDisk
	UnloadWaitingDiskLifted
	UnloadClosingTray
	UnloadWaitingTrayClosed
	UnloadDroppingDisk

	// Not terminal: Recover leads back to Ready.
	StateError
)

var stateNames = map[State]string{
	InitCheckingHardware:    "init.checking_hardware",
	InitClearingLiftedDisk:  "init.clearing_lifted_disk",
	InitCheckingTrayState:   "init.checking_tray_state",
	InitClearingOpenTray:    "init.clearing_open_tray",
	InitClosingEmptyTray:    "init.closing_empty_tray",
	InitCheckingClosedDrive: "init.checking_closed_drive",
	InitComplete:            "init.complete",
	Ready:                   "ready",
	LoadOpeningTray:         "load.opening_tray",
	LoadWaitingTrayOpen:     "load.waiting_tray_open",
	LoadPlacingDisk:         "load.placing_disk",
	LoadWaitingDiskPlaced:   "load.waiting_disk_placed",
	LoadClosingTray:         "load.closing_tray",
	LoadWaitingTrayClosed:   "load.waiting_tray_closed",
	Processing:              "processing",
	UnloadOpeningTray:       "unload.opening_tray",
	UnloadWaitingTrayOpen:   "unload.waiting_tray_open",
	UnloadLiftingDisk:       "unload.lifting_disk",
	UnloadWaitingDiskLifted: "unload.waiting_disk_lifted",
	UnloadClosingTray:       "unload.closing_tray",
	UnloadWaitingTrayClosed: "unload.waiting_tray_closed",
	UnloadDroppingDisk:      "unload.dropping_disk",
	StateError:              "error",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsInitializing reports whether s is part of the initialization phase.
func (s State) IsInitializing() bool {
	return s >= InitCheckingHardware && s <= InitComplete
}

// IsLoading reports whether s is part of the loading phase.
func (s State) IsLoading() bool {
	return s >= LoadOpeningTray && s <= LoadWaitingTrayClosed
}

// IsUnloading reports whether s is part of the unloading phase.
func (s State) IsUnloading() bool {
	return s >= UnloadOpeningTray && s <= UnloadDroppingDisk
}
