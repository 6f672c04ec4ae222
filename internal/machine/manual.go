// internal/machine/manual.go
package machine

import (
	"context"
	"errors"
	"fmt"

	"github.com/tamzrod/nimbie-ctl/internal/proto"
)

// ManualOps exposes raw hardware actions with the workflow guards
// bypassed. Only usable inside a ManualSession; every call outside
// the session fails.
type ManualOps struct {
	m      *Machine
	active bool
}

// ManualSession runs fn with guard-free access to the hardware.
// Intended for test rigs and interactive debugging. The session is
// scoped: the ops handle is dead once fn returns.
func (m *Machine) ManualSession(fn func(*ManualOps) error) error {
	if m.manual {
		return errors.New("machine: manual session already active")
	}
	m.manual = true
	ops := &ManualOps{m: m, active: true}
	defer func() {
		ops.active = false
		m.manual = false
	}()
	return fn(ops)
}

func (o *ManualOps) check() error {
	if !o.active {
		return errors.New("machine: manual session is closed")
	}
	return nil
}

func (o *ManualOps) OpenTray(ctx context.Context) error {
	if err := o.check(); err != nil {
		return err
	}
	return o.m.hw.OpenTray(ctx)
}

func (o *ManualOps) CloseTray(ctx context.Context) error {
	if err := o.check(); err != nil {
		return err
	}
	return o.m.hw.CloseTray(ctx)
}

func (o *ManualOps) PlaceDisk() (string, error) {
	if err := o.check(); err != nil {
		return "", err
	}
	return o.m.hw.PlaceDisk()
}

func (o *ManualOps) LiftDisk() (string, error) {
	if err := o.check(); err != nil {
		return "", err
	}
	return o.m.hw.LiftDisk()
}

func (o *ManualOps) AcceptDisk() (string, error) {
	if err := o.check(); err != nil {
		return "", err
	}
	return o.m.hw.AcceptDisk()
}

func (o *ManualOps) RejectDisk() (string, error) {
	if err := o.check(); err != nil {
		return "", err
	}
	return o.m.hw.RejectDisk()
}

func (o *ManualOps) ReadState() (proto.HardwareState, error) {
	if err := o.check(); err != nil {
		return proto.HardwareState{}, err
	}
	return o.m.hw.ReadState()
}

// SetState forces the workflow state. No transition table check, no
// hardware effect.
func (o *ManualOps) SetState(s State) error {
	if err := o.check(); err != nil {
		return err
	}
	if _, ok := stateNames[s]; !ok {
		return fmt.Errorf("machine: unknown state %d", int(s))
	}
	o.m.state = s
	return nil
}
