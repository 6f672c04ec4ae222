package proto

import (
	"errors"
	"fmt"
)

// FaultKind classifies why the hardware refused or failed an operation.
// Several distinct physical conditions collapse onto few codes, so the
// kind names the code's meaning, not the root cause.
type FaultKind int

const (
	FaultNone FaultKind = iota
	FaultDiskInTray
	FaultNoDiskInQueue
	FaultTrayWrongState
	FaultDropper
	FaultNoDiskInTray
	FaultUnknownHardware
	FaultProtocol
)

func (k FaultKind) String() string {
	switch k {
	case FaultNone:
		return "none"
	case FaultDiskInTray:
		return "disk_in_tray"
	case FaultNoDiskInQueue:
		return "no_disk_in_queue"
	case FaultTrayWrongState:
		return "tray_wrong_state"
	case FaultDropper:
		return "dropper_fault"
	case FaultNoDiskInTray:
		return "no_disk_in_tray"
	case FaultUnknownHardware:
		return "unknown_hardware_fault"
	case FaultProtocol:
		return "protocol_error"
	default:
		return fmt.Sprintf("fault(%d)", int(k))
	}
}

// Fault is a typed hardware or protocol error. It is never dropped:
// the state machine either escalates it to the error state or returns
// it to the caller.
type Fault struct {
	Kind FaultKind
	Code string // raw status code; empty for protocol faults
	Msg  string
}

func (f *Fault) Error() string {
	if f.Code != "" {
		return fmt.Sprintf("%s (%s): %s", f.Kind, f.Code, f.Msg)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Msg)
}

// NewFault builds a Fault of the given kind.
func NewFault(kind FaultKind, code, msg string) *Fault {
	return &Fault{Kind: kind, Code: code, Msg: msg}
}

// IsFault reports whether err wraps a Fault of the given kind.
func IsFault(err error, kind FaultKind) bool {
	var f *Fault
	return errors.As(err, &f) && f.Kind == kind
}
