// internal/machine/transition_test.go
package machine

import "testing"

func TestTransition_FaultFromEveryState(t *testing.T) {
	for s := range stateNames {
		to, ok := Transition(s, EvFault)
		if !ok || to != StateError {
			t.Fatalf("fault from %s: got (%s, %v)", s, to, ok)
		}
	}
}

func TestTransition_LoadSequence(t *testing.T) {
	steps := []struct {
		from State
		ev   Event
		to   State
	}{
		{Ready, EvLoadStarted, LoadOpeningTray},
		{LoadOpeningTray, EvTrayOpenIssued, LoadWaitingTrayOpen},
		{LoadWaitingTrayOpen, EvTrayOpened, LoadPlacingDisk},
		{LoadPlacingDisk, EvPlaceIssued, LoadWaitingDiskPlaced},
		{LoadWaitingDiskPlaced, EvDiskPlaced, LoadClosingTray},
		{LoadClosingTray, EvTrayCloseIssued, LoadWaitingTrayClosed},
		{LoadWaitingTrayClosed, EvTrayClosed, Processing},
	}

	for _, st := range steps {
		to, ok := Transition(st.from, st.ev)
		if !ok {
			t.Fatalf("%s + %s: not legal", st.from, st.ev)
		}
		if to != st.to {
			t.Fatalf("%s + %s: got %s, want %s", st.from, st.ev, to, st.to)
		}
	}
}

func TestTransition_UnloadSequence(t *testing.T) {
	steps := []struct {
		from State
		ev   Event
		to   State
	}{
		{Processing, EvUnloadStarted, UnloadOpeningTray},
		{UnloadOpeningTray, EvTrayOpenIssued, UnloadWaitingTrayOpen},
		{UnloadWaitingTrayOpen, EvTrayOpened, UnloadLiftingDisk},
		{UnloadLiftingDisk, EvLiftIssued, UnloadWaitingDiskLifted},
		{UnloadWaitingDiskLifted, EvDiskLifted, UnloadClosingTray},
		{UnloadClosingTray, EvTrayCloseIssued, UnloadWaitingTrayClosed},
		{UnloadWaitingTrayClosed, EvTrayClosed, UnloadDroppingDisk},
		{UnloadDroppingDisk, EvDiskDropped, Ready},
	}

	for _, st := range steps {
		to, ok := Transition(st.from, st.ev)
		if !ok || to != st.to {
			t.Fatalf("%s + %s: got (%s, %v), want %s", st.from, st.ev, to, ok, st.to)
		}
	}
}

func TestTransition_IllegalEventKeepsState(t *testing.T) {
	cases := []struct {
		from State
		ev   Event
	}{
		{Ready, EvUnloadStarted},
		{Processing, EvLoadStarted},
		{Ready, EvDiskDropped},
		{StateError, EvLoadStarted},
		{InitCheckingHardware, EvTrayOpened},
	}

	for _, c := range cases {
		to, ok := Transition(c.from, c.ev)
		if ok {
			t.Fatalf("%s + %s: unexpectedly legal (to %s)", c.from, c.ev, to)
		}
		if to != c.from {
			t.Fatalf("%s + %s: illegal event moved state to %s", c.from, c.ev, to)
		}
	}
}

func TestTransition_RecoverOnlyFromError(t *testing.T) {
	if to, ok := Transition(StateError, EvRecovered); !ok || to != Ready {
		t.Fatalf("error + recovered: got (%s, %v)", to, ok)
	}
	if _, ok := Transition(Processing, EvRecovered); ok {
		t.Fatalf("recovered should not be legal from processing")
	}
}

func TestCompositeMembership(t *testing.T) {
	if !InitClearingOpenTray.IsInitializing() || Ready.IsInitializing() {
		t.Fatalf("initializing membership wrong")
	}
	if !LoadPlacingDisk.IsLoading() || Processing.IsLoading() {
		t.Fatalf("loading membership wrong")
	}
	if !UnloadDroppingDisk.IsUnloading() || StateError.IsUnloading() {
		t.Fatalf("unloading membership wrong")
	}
}
