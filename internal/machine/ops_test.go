// internal/machine/ops_test.go
package machine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// ---- LOADING ----

func TestCanLoadDisk(t *testing.T) {
	hw := &fakeHardware{queue: 2}
	m := initialized(t, hw)

	require.True(t, m.CanLoadDisk(context.Background()))

	hw.queue = 0
	require.False(t, m.CanLoadDisk(context.Background()))
}

func TestCanLoadDisk_FalseOutsideReady(t *testing.T) {
	hw := &fakeHardware{queue: 1}
	m := newTestMachine(t, hw)

	// Still initializing.
	require.False(t, m.CanLoadDisk(context.Background()))
}

// Loading drives the tray out, places a disc into it, and seals it
// in the drive: trayOut false→true→false with the disc appearing in
// the open tray in between.
func TestLoadNextDisk_Sequence(t *testing.T) {
	hw := &fakeHardware{queue: 1}
	m := initialized(t, hw)

	sawTrayOpenWithDisc := false
	m.OnTransition = func(from, to State, ev Event) {
		if ev == EvDiskPlaced {
			sawTrayOpenWithDisc = hw.trayOut && hw.onTray
		}
	}

	require.True(t, m.LoadNextDisk(context.Background()))
	require.Equal(t, Processing, m.State())
	require.True(t, m.IsProcessing())

	require.Equal(t, []string{"tray_open", "place", "tray_close"}, hw.commands)
	require.True(t, sawTrayOpenWithDisc)
	require.True(t, hw.inDrive)
	require.False(t, hw.trayOut)
	require.Zero(t, hw.queue)
}

func TestLoadNextDisk_EmptyQueue(t *testing.T) {
	hw := &fakeHardware{}
	m := initialized(t, hw)

	require.False(t, m.LoadNextDisk(context.Background()))
	require.Equal(t, Ready, m.State())
	require.Empty(t, hw.commands)
}

// A poll timeout inside the sequence cannot be safely continued, so
// it escalates to the error state.
func TestLoadNextDisk_TrayTimeoutEscalates(t *testing.T) {
	hw := &fakeHardware{queue: 1, openTrayNoop: true}
	m := initialized(t, hw)

	require.False(t, m.LoadNextDisk(context.Background()))
	require.Equal(t, StateError, m.State())
	require.Error(t, m.LastError())

	st, err := m.Recover(context.Background())
	require.NoError(t, err)
	require.Equal(t, Ready, st)
	require.NoError(t, m.LastError())
}

// ---- UNLOADING ----

func TestAcceptCurrentDisk_WhileReady(t *testing.T) {
	hw := &fakeHardware{queue: 1}
	m := initialized(t, hw)

	require.False(t, m.AcceptCurrentDisk(context.Background()))
	require.Equal(t, Ready, m.State())
	require.Empty(t, hw.commands)
}

func TestAcceptCurrentDisk_FullCycle(t *testing.T) {
	hw := &fakeHardware{queue: 1}
	m := initialized(t, hw)
	require.True(t, m.LoadNextDisk(context.Background()))
	hw.commands = nil

	require.True(t, m.AcceptCurrentDisk(context.Background()))
	require.Equal(t, Ready, m.State())
	require.Equal(t,
		[]string{"tray_open", "lift", "tray_close", "accept"},
		hw.commands)
	require.False(t, hw.inDrive)
	require.False(t, hw.lifted)
	require.False(t, hw.trayOut)
}

func TestRejectCurrentDisk_UsesRejectPile(t *testing.T) {
	hw := &fakeHardware{queue: 1}
	m := initialized(t, hw)
	require.True(t, m.LoadNextDisk(context.Background()))
	hw.commands = nil

	require.True(t, m.RejectCurrentDisk(context.Background()))
	require.Equal(t, Ready, m.State())
	require.Contains(t, hw.commands, "reject")
	require.NotContains(t, hw.commands, "accept")
}

// ---- BATCH ----

func TestProcessBatch_SortsByVerdict(t *testing.T) {
	hw := &fakeHardware{queue: 3}
	m := initialized(t, hw)

	verdicts := []bool{true, false, true}
	i := 0
	stats := m.ProcessBatch(context.Background(), 0, func() (bool, error) {
		v := verdicts[i]
		i++
		return v, nil
	})

	require.Equal(t, BatchStats{Total: 3, Accepted: 2, Rejected: 1}, stats)
	require.Equal(t, Ready, m.State())
	require.Zero(t, hw.queue)
}

func TestProcessBatch_CountLimit(t *testing.T) {
	hw := &fakeHardware{queue: 5}
	m := initialized(t, hw)

	stats := m.ProcessBatch(context.Background(), 2, func() (bool, error) {
		return true, nil
	})

	require.Equal(t, BatchStats{Total: 2, Accepted: 2}, stats)
	require.Equal(t, 3, hw.queue)
}

// A process-function error gets one recovery attempt and the disc
// counts as unprocessed.
func TestProcessBatch_FnErrorRecovers(t *testing.T) {
	hw := &fakeHardware{queue: 2}
	m := initialized(t, hw)

	calls := 0
	stats := m.ProcessBatch(context.Background(), 0, func() (bool, error) {
		calls++
		if calls == 1 {
			return true, nil
		}
		return false, errors.New("read failed")
	})

	require.Equal(t, 2, stats.Total)
	require.Equal(t, 1, stats.Accepted)
	require.Zero(t, stats.Rejected)
	require.Equal(t, Ready, m.State())
	require.NoError(t, m.LastError())
}

func TestProcessBatch_EmptyQueueNoCalls(t *testing.T) {
	hw := &fakeHardware{}
	m := initialized(t, hw)

	stats := m.ProcessBatch(context.Background(), 0, func() (bool, error) {
		t.Fatal("process function called with empty queue")
		return false, nil
	})
	require.Zero(t, stats.Total)
}

func TestProcessContinuous_StopsOnCancel(t *testing.T) {
	hw := &fakeHardware{queue: 1}
	m := initialized(t, hw)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	stats := m.ProcessContinuous(ctx, func() (bool, error) {
		return true, nil
	}, 5*time.Millisecond)

	require.Equal(t, BatchStats{Total: 1, Accepted: 1}, stats)
	require.Equal(t, Ready, m.State())
}

// ---- MANUAL SESSION ----

func TestManualSession_BypassesGuards(t *testing.T) {
	hw := &fakeHardware{queue: 1}
	m := initialized(t, hw)

	err := m.ManualSession(func(o *ManualOps) error {
		if err := o.OpenTray(context.Background()); err != nil {
			return err
		}
		if _, err := o.PlaceDisk(); err != nil {
			return err
		}
		return o.CloseTray(context.Background())
	})
	require.NoError(t, err)
	require.True(t, hw.inDrive)

	// Workflow state untouched by raw hardware actions.
	require.Equal(t, Ready, m.State())
}

func TestManualSession_OpsDieWithSession(t *testing.T) {
	hw := &fakeHardware{}
	m := initialized(t, hw)

	var leaked *ManualOps
	require.NoError(t, m.ManualSession(func(o *ManualOps) error {
		leaked = o
		return nil
	}))

	_, err := leaked.LiftDisk()
	require.Error(t, err)
	require.Error(t, leaked.OpenTray(context.Background()))
}

func TestManualSession_NoNesting(t *testing.T) {
	hw := &fakeHardware{}
	m := initialized(t, hw)

	require.NoError(t, m.ManualSession(func(o *ManualOps) error {
		require.Error(t, m.ManualSession(func(*ManualOps) error { return nil }))
		return nil
	}))
}

func TestManualSession_SetStateValidatesValue(t *testing.T) {
	hw := &fakeHardware{}
	m := initialized(t, hw)

	require.NoError(t, m.ManualSession(func(o *ManualOps) error {
		require.Error(t, o.SetState(State(999)))
		return o.SetState(Processing)
	}))
	require.Equal(t, Processing, m.State())
}
