// internal/machine/transition.go
package machine

// transitions maps (state, event) to the next state. EvFault is
// handled in Transition, not here: it is legal from every state.
var transitions = map[State]map[Event]State{
	InitCheckingHardware:    {EvHardwareChecked: InitClearingLiftedDisk},
	InitClearingLiftedDisk:  {EvLiftedDiskCleared: InitCheckingTrayState},
	InitCheckingTrayState:   {EvTrayFoundOpen: InitClearingOpenTray, EvTrayFoundClosed: InitCheckingClosedDrive},
	InitClearingOpenTray:    {EvOpenTrayCleared: InitClosingEmptyTray},
	InitClosingEmptyTray:    {EvEmptyTrayClosed: InitCheckingClosedDrive},
	InitCheckingClosedDrive: {EvClosedDriveChecked: InitComplete},
	InitComplete:            {EvInitDone: Ready},

	Ready: {EvLoadStarted: LoadOpeningTray},

	LoadOpeningTray:       {EvTrayOpenIssued: LoadWaitingTrayOpen},
	LoadWaitingTrayOpen:   {EvTrayOpened: LoadPlacingDisk},
	LoadPlacingDisk:       {EvPlaceIssued: LoadWaitingDiskPlaced},
	LoadWaitingDiskPlaced: {EvDiskPlaced: LoadClosingTray},
	LoadClosingTray:       {EvTrayCloseIssued: LoadWaitingTrayClosed},
	LoadWaitingTrayClosed: {EvTrayClosed: Processing},

	Processing: {EvUnloadStarted: UnloadOpeningTray},

	UnloadOpeningTray:       {EvTrayOpenIssued: UnloadWaitingTrayOpen},
	UnloadWaitingTrayOpen:   {EvTrayOpened: UnloadLiftingDisk},
	UnloadLiftingDisk:       {EvLiftIssued: UnloadWaitingDiskLifted},
	UnloadWaitingDiskLifted: {EvDiskLifted: UnloadClosingTray},
	UnloadClosingTray:       {EvTrayCloseIssued: UnloadWaitingTrayClosed},
	UnloadWaitingTrayClosed: {EvTrayClosed: UnloadDroppingDisk},
	UnloadDroppingDisk:      {EvDiskDropped: Ready},

	StateError: {EvRecovered: Ready},
}

// Transition is the pure state function. It performs no I/O and has
// no access to hardware. Returns (from, false) when the event is not
// legal in the given state.
func Transition(from State, ev Event) (State, bool) {
	if ev == EvFault {
		return StateError, true
	}
	to, ok := transitions[from][ev]
	if !ok {
		return from, false
	}
	return to, true
}
