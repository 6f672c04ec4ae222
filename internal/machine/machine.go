// internal/machine/machine.go

// Package machine turns the raw autoloader driver into a workflow
// with explicit states, polling-based synchronization, and
// startup/error recovery. All operations are synchronous and
// blocking; no operation returns before its mechanical effect is
// confirmed or its timeout elapses. One Machine per hardware handle,
// no concurrent callers.
package machine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/nimbie-ctl/internal/poll"
	"github.com/tamzrod/nimbie-ctl/internal/proto"
)

// ---- HARDWARE DEPENDENCY ----

// Hardware abstracts the driver operations the machine needs.
// Disc commands are fire-and-confirm: the status reply acknowledges
// the command, completion is observed by polling ReadState.
type Hardware interface {
	ReadState() (proto.HardwareState, error)
	DiskAvailable() (bool, error)
	PlaceDisk() (string, error)
	LiftDisk() (string, error)
	AcceptDisk() (string, error)
	RejectDisk() (string, error)
	OpenTray(ctx context.Context) error
	CloseTray(ctx context.Context) error
}

// ---- CONFIG ----

// Config holds the per-operation timeouts. Zero values take the
// defaults below.
type Config struct {
	PollInterval     time.Duration
	TrayOpenTimeout  time.Duration
	TrayCloseTimeout time.Duration
	PlaceTimeout     time.Duration
	LiftTimeout      time.Duration
	DropTimeout      time.Duration
}

func (c *Config) applyDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = poll.DefaultInterval
	}
	if c.TrayOpenTimeout <= 0 {
		c.TrayOpenTimeout = 30 * time.Second
	}
	// Closing with a disc inside needs mechanical settling time.
	if c.TrayCloseTimeout <= 0 {
		c.TrayCloseTimeout = 45 * time.Second
	}
	if c.PlaceTimeout <= 0 {
		c.PlaceTimeout = 30 * time.Second
	}
	if c.LiftTimeout <= 0 {
		c.LiftTimeout = 30 * time.Second
	}
	if c.DropTimeout <= 0 {
		c.DropTimeout = 30 * time.Second
	}
}

// ---- MACHINE ----

type dropIntent int

const (
	dropReject dropIntent = iota
	dropAccept
)

// Machine owns the workflow state. State changes only through apply,
// driven by events from the effect steps.
type Machine struct {
	hw  Hardware
	cfg Config
	log zerolog.Logger

	state       State
	lastErr     error
	intent      dropIntent
	snap        proto.HardwareState
	initialized bool
	manual      bool

	// OnTransition, when set, observes every state change.
	// Called synchronously from the workflow; must not block.
	OnTransition func(from, to State, ev Event)
}

// New creates a machine in the initial checking state.
// Initialize must run before any disc operation.
func New(hw Hardware, cfg Config, log zerolog.Logger) (*Machine, error) {
	if hw == nil {
		return nil, errors.New("machine: hardware required")
	}
	cfg.applyDefaults()
	return &Machine{
		hw:    hw,
		cfg:   cfg,
		log:   log,
		state: InitCheckingHardware,
	}, nil
}

// State returns the current workflow state.
func (m *Machine) State() State { return m.state }

// LastError returns the cause of the most recent fault transition,
// or nil. Cleared by Recover.
func (m *Machine) LastError() error { return m.lastErr }

// ---- TRANSITION PLUMBING ----

func (m *Machine) apply(ev Event) {
	from := m.state
	to, ok := Transition(from, ev)
	if !ok {
		// Table bug, not a hardware condition. Fail loudly.
		m.log.Error().
			Stringer("state", from).
			Stringer("event", ev).
			Msg("illegal transition")
		m.lastErr = fmt.Errorf("machine: event %s illegal in state %s", ev, from)
		to = StateError
		ev = EvFault
	}
	m.state = to
	m.log.Debug().
		Stringer("from", from).
		Stringer("to", to).
		Stringer("event", ev).
		Msg("transition")
	if m.OnTransition != nil {
		m.OnTransition(from, to, ev)
	}
}

// toError records the cause and forces the error state. Faults are
// never dropped: every sequence failure lands here.
func (m *Machine) toError(cause error) {
	m.lastErr = cause
	m.log.Error().Err(cause).Stringer("state", m.state).Msg("workflow fault")
	m.apply(EvFault)
}

// run executes effect steps until a resting state is reached.
// The returned error is the fault that stopped the sequence, if any.
func (m *Machine) run(ctx context.Context) error {
	for {
		ev, err := m.enter(ctx)
		if err != nil {
			m.toError(err)
			return err
		}
		if ev == evNone {
			return nil
		}
		m.apply(ev)
	}
}

// ---- EFFECT STEPS ----

// enter runs the side effects of the current state and reports the
// event they produced. Resting states produce evNone.
func (m *Machine) enter(ctx context.Context) (Event, error) {
	switch m.state {
	case InitCheckingHardware:
		return m.stepCheckHardware()
	case InitClearingLiftedDisk:
		return m.stepClearLiftedDisk(ctx)
	case InitCheckingTrayState:
		return m.stepCheckTrayState()
	case InitClearingOpenTray:
		return m.stepClearOpenTray(ctx)
	case InitClosingEmptyTray:
		return m.stepCloseEmptyTray(ctx)
	case InitCheckingClosedDrive:
		return m.stepCheckClosedDrive(ctx)
	case InitComplete:
		m.initialized = true
		return EvInitDone, nil

	case LoadOpeningTray, UnloadOpeningTray:
		if err := m.hw.OpenTray(ctx); err != nil {
			return evNone, err
		}
		return EvTrayOpenIssued, nil
	case LoadWaitingTrayOpen, UnloadWaitingTrayOpen:
		if err := m.waitHardware(ctx, m.cfg.TrayOpenTimeout, "tray open",
			func(s proto.HardwareState) bool { return s.TrayOut }); err != nil {
			return evNone, err
		}
		return EvTrayOpened, nil

	case LoadPlacingDisk:
		if _, err := m.hw.PlaceDisk(); err != nil {
			return evNone, err
		}
		return EvPlaceIssued, nil
	case LoadWaitingDiskPlaced:
		if err := m.waitHardware(ctx, m.cfg.PlaceTimeout, "disc placed",
			func(s proto.HardwareState) bool { return s.DiskInOpenTray }); err != nil {
			return evNone, err
		}
		return EvDiskPlaced, nil

	case LoadClosingTray, UnloadClosingTray:
		if err := m.hw.CloseTray(ctx); err != nil {
			return evNone, err
		}
		return EvTrayCloseIssued, nil
	case LoadWaitingTrayClosed, UnloadWaitingTrayClosed:
		if err := m.waitHardware(ctx, m.cfg.TrayCloseTimeout, "tray closed",
			func(s proto.HardwareState) bool { return !s.TrayOut }); err != nil {
			return evNone, err
		}
		return EvTrayClosed, nil

	case UnloadLiftingDisk:
		if _, err := m.hw.LiftDisk(); err != nil {
			return evNone, err
		}
		return EvLiftIssued, nil
	case UnloadWaitingDiskLifted:
		if err := m.waitHardware(ctx, m.cfg.LiftTimeout, "disc lifted",
			func(s proto.HardwareState) bool { return s.DiskLifted }); err != nil {
			return evNone, err
		}
		return EvDiskLifted, nil
	case UnloadDroppingDisk:
		if err := m.dropPerIntent(ctx); err != nil {
			return evNone, err
		}
		return EvDiskDropped, nil

	case Ready, Processing, StateError:
		return evNone, nil
	}
	return evNone, fmt.Errorf("machine: no effect defined for state %s", m.state)
}

// ---- INITIALIZATION STEPS ----

func (m *Machine) stepCheckHardware() (Event, error) {
	snap, err := m.hw.ReadState()
	if err != nil {
		return evNone, err
	}
	m.snap = snap
	m.log.Info().Stringer("hardware", snap).Msg("initial hardware state")
	return EvHardwareChecked, nil
}

// stepClearLiftedDisk drops a disc left hanging in the gripper by a
// crashed process. Orientation is unknown, so it goes to reject.
func (m *Machine) stepClearLiftedDisk(ctx context.Context) (Event, error) {
	if !m.snap.DiskLifted {
		return EvLiftedDiskCleared, nil
	}
	if m.snap.TrayOut {
		if err := m.closeTrayAndWait(ctx); err != nil {
			return evNone, err
		}
	}
	if err := m.rejectDrop(ctx); err != nil {
		return evNone, err
	}
	return EvLiftedDiskCleared, nil
}

func (m *Machine) stepCheckTrayState() (Event, error) {
	snap, err := m.hw.ReadState()
	if err != nil {
		return evNone, err
	}
	m.snap = snap
	if snap.TrayOut {
		return EvTrayFoundOpen, nil
	}
	return EvTrayFoundClosed, nil
}

// stepClearOpenTray handles a tray found extended at startup. A disc
// sitting in it is lifted and, once the tray is shut again, dropped
// to reject; dropping over an extended tray would land the disc back
// in it. A refused lift leaves the disc for the closed-drive probe,
// which retries after the tray is shut.
func (m *Machine) stepClearOpenTray(ctx context.Context) (Event, error) {
	if !m.snap.DiskInOpenTray {
		return EvOpenTrayCleared, nil
	}

	_, err := m.hw.LiftDisk()
	switch {
	case err == nil:
		if err := m.waitHardware(ctx, m.cfg.LiftTimeout, "disc lifted",
			func(s proto.HardwareState) bool { return s.DiskLifted }); err != nil {
			return evNone, err
		}
		if err := m.closeTrayAndWait(ctx); err != nil {
			return evNone, err
		}
		if err := m.rejectDrop(ctx); err != nil {
			return evNone, err
		}
	case isAnyFault(err):
		m.log.Debug().Err(err).Msg("open tray lift refused, deferring to closed-drive probe")
	default:
		return evNone, err
	}
	return EvOpenTrayCleared, nil
}

func (m *Machine) stepCloseEmptyTray(ctx context.Context) (Event, error) {
	if err := m.closeTrayAndWait(ctx); err != nil {
		return evNone, err
	}
	return EvEmptyTrayClosed, nil
}

// stepCheckClosedDrive probes for a disc sealed in the closed drive.
// The state bits cannot see one, so a lift is always attempted.
func (m *Machine) stepCheckClosedDrive(ctx context.Context) (Event, error) {
	_, err := m.hw.LiftDisk()
	switch {
	case err == nil:
		if err := m.waitHardware(ctx, m.cfg.LiftTimeout, "disc lifted",
			func(s proto.HardwareState) bool { return s.DiskLifted }); err != nil {
			return evNone, err
		}
		if err := m.rejectDrop(ctx); err != nil {
			return evNone, err
		}

	case proto.IsFault(err, proto.FaultNoDiskInTray):
		// Drive was empty.

	case proto.IsFault(err, proto.FaultTrayWrongState):
		// Disc present but the gripper needs the tray out.
		if err := m.retryLiftWithOpenTray(ctx); err != nil {
			return evNone, err
		}

	default:
		return evNone, err
	}
	return EvClosedDriveChecked, nil
}

// retryLiftWithOpenTray opens the tray, lifts, closes, drops to
// reject. A no-disc fault on the retry means the drive was empty
// after all: just re-close.
func (m *Machine) retryLiftWithOpenTray(ctx context.Context) error {
	if err := m.openTrayAndWait(ctx); err != nil {
		return err
	}

	_, err := m.hw.LiftDisk()
	switch {
	case err == nil:
		if err := m.waitHardware(ctx, m.cfg.LiftTimeout, "disc lifted",
			func(s proto.HardwareState) bool { return s.DiskLifted }); err != nil {
			return err
		}
		if err := m.closeTrayAndWait(ctx); err != nil {
			return err
		}
		return m.rejectDrop(ctx)

	case proto.IsFault(err, proto.FaultNoDiskInTray):
		return m.closeTrayAndWait(ctx)

	default:
		return err
	}
}

// ---- EFFECT HELPERS ----

func (m *Machine) waitHardware(ctx context.Context, timeout time.Duration, what string, cond func(proto.HardwareState) bool) error {
	ok := poll.WaitUntil(ctx, m.log, func() (bool, error) {
		s, err := m.hw.ReadState()
		if err != nil {
			return false, err
		}
		return cond(s), nil
	}, timeout, m.cfg.PollInterval)
	if !ok {
		return fmt.Errorf("machine: timed out waiting for %s after %s", what, timeout)
	}
	return nil
}

func (m *Machine) openTrayAndWait(ctx context.Context) error {
	if err := m.hw.OpenTray(ctx); err != nil {
		return err
	}
	return m.waitHardware(ctx, m.cfg.TrayOpenTimeout, "tray open",
		func(s proto.HardwareState) bool { return s.TrayOut })
}

func (m *Machine) closeTrayAndWait(ctx context.Context) error {
	if err := m.hw.CloseTray(ctx); err != nil {
		return err
	}
	return m.waitHardware(ctx, m.cfg.TrayCloseTimeout, "tray closed",
		func(s proto.HardwareState) bool { return !s.TrayOut })
}

// rejectDrop drops the lifted disc into the reject pile and waits
// for the gripper to release it.
func (m *Machine) rejectDrop(ctx context.Context) error {
	if _, err := m.hw.RejectDisk(); err != nil {
		return err
	}
	return m.waitHardware(ctx, m.cfg.DropTimeout, "disc dropped",
		func(s proto.HardwareState) bool { return !s.DiskLifted })
}

func (m *Machine) dropPerIntent(ctx context.Context) error {
	var err error
	if m.intent == dropAccept {
		_, err = m.hw.AcceptDisk()
	} else {
		_, err = m.hw.RejectDisk()
	}
	if err != nil {
		return err
	}
	return m.waitHardware(ctx, m.cfg.DropTimeout, "disc dropped",
		func(s proto.HardwareState) bool { return !s.DiskLifted })
}

func isAnyFault(err error) bool {
	var f *proto.Fault
	return errors.As(err, &f)
}

// ---- RECOVERY ----

// Recover re-probes the hardware, performs best-effort cleanup, and
// lands in Ready. A no-op when already Ready. Cleanup failures are
// logged, not surfaced: the next operation's preconditions are the
// real safety net.
func (m *Machine) Recover(ctx context.Context) (State, error) {
	if m.state == Ready {
		return Ready, nil
	}
	if m.state != StateError {
		return m.state, fmt.Errorf("machine: recover not valid in state %s", m.state)
	}

	snap, err := m.hw.ReadState()
	if err != nil {
		m.log.Warn().Err(err).Msg("recover: state read failed, skipping cleanup")
	} else {
		if snap.DiskLifted {
			if snap.TrayOut {
				if err := m.closeTrayAndWait(ctx); err != nil {
					m.log.Warn().Err(err).Msg("recover: tray close failed")
				}
			}
			if err := m.rejectDrop(ctx); err != nil {
				m.log.Warn().Err(err).Msg("recover: drop failed")
			}
		}
		if snap, err = m.hw.ReadState(); err == nil && snap.TrayOut {
			if err := m.closeTrayAndWait(ctx); err != nil {
				m.log.Warn().Err(err).Msg("recover: tray close failed")
			}
		}
	}

	m.lastErr = nil
	m.apply(EvRecovered)
	return m.state, nil
}
