// Package driver implements the autoloader hardware protocol: fixed
// command frames out, status chatter back. It sends commands only and
// returns as soon as the device acknowledges; waiting for mechanical
// effects belongs to the state machine.
package driver

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tamzrod/nimbie-ctl/internal/proto"
)

// Transport is the USB endpoint pair the driver writes command frames
// to and reads response frames from.
type Transport interface {
	WriteFrame([]byte) error
	ReadFrame() ([]byte, error)
	Reset() error
	Close() error
}

// TrayControl opens and closes the optical drive's tray on the OS
// side. The autoloader cannot move the tray itself.
type TrayControl interface {
	OpenTray(ctx context.Context) error
	CloseTray(ctx context.Context) error
}

// Driver owns the open connection and the codec around it.
type Driver struct {
	tr   Transport
	tray TrayControl
	log  zerolog.Logger
}

// New wires an open transport and a tray controller.
func New(tr Transport, tray TrayControl, log zerolog.Logger) *Driver {
	return &Driver{tr: tr, tray: tray, log: log}
}

// SendCommand encodes and writes one command frame, drains the
// response burst and returns the raw status token.
func (d *Driver) SendCommand(op byte, params ...byte) (string, error) {
	frame, err := proto.EncodeCommand(op, params...)
	if err != nil {
		return "", err
	}

	d.log.Debug().Hex("frame", frame).Msg("sending command")
	if err := d.tr.WriteFrame(frame); err != nil {
		return "", err
	}

	msgs, err := d.drainResponses()
	if err != nil {
		return "", err
	}

	token, err := proto.ExtractStatus(msgs)
	if err != nil {
		return "", err
	}
	d.log.Debug().Str("status", token).Msg("command acknowledged")
	return token, nil
}

// drainResponses reads frames until the device sends an empty one.
// The device answers each command with several lines of chatter, all
// of which belongs to the command just sent. Non-text frames are
// discarded.
func (d *Driver) drainResponses() ([]string, error) {
	var msgs []string
	first := true

	for {
		data, err := d.tr.ReadFrame()
		if err != nil {
			return nil, err
		}
		if len(data) == 0 && !first {
			return msgs, nil
		}
		first = false

		msg, derr := proto.DecodeMessage(data)
		if derr != nil {
			d.log.Debug().Err(derr).Msg("discarding non-text response frame")
			continue
		}
		msgs = append(msgs, msg)
	}
}

// tryCommand sends a command and decodes the outcome, converting fault
// codes into typed errors.
func (d *Driver) tryCommand(op byte, params ...byte) (string, error) {
	token, err := d.SendCommand(op, params...)
	if err != nil {
		return "", err
	}
	dec := proto.DecodeStatus(token)
	if dec.Fault != nil {
		return "", dec.Fault
	}
	return dec.Info, nil
}

// PlaceDisk moves the next disc from the input queue onto the open
// tray. It does not wait for the mechanism; callers poll the state.
func (d *Driver) PlaceDisk() (string, error) {
	return d.tryCommand(proto.CmdPlaceDisk, proto.ParamPlace)
}

// LiftDisk grips the disc currently on the tray.
func (d *Driver) LiftDisk() (string, error) {
	return d.tryCommand(proto.CmdLiftDisk, proto.ParamLift)
}

// AcceptDisk drops a lifted disc onto the accept pile.
func (d *Driver) AcceptDisk() (string, error) {
	return d.tryCommand(proto.CmdPlaceDisk, proto.ParamAccept)
}

// RejectDisk drops a lifted disc onto the reject pile.
func (d *Driver) RejectDisk() (string, error) {
	return d.tryCommand(proto.CmdPlaceDisk, proto.ParamReject)
}

// ReadState queries the four mechanism sensors. A response without a
// valid state token degrades to the zero snapshot; that is not proof
// of an idle mechanism, only that the device would not say.
func (d *Driver) ReadState() (proto.HardwareState, error) {
	frame, err := proto.EncodeCommand(proto.CmdGetState)
	if err != nil {
		return proto.HardwareState{}, err
	}
	if err := d.tr.WriteFrame(frame); err != nil {
		return proto.HardwareState{}, err
	}

	msgs, err := d.drainResponses()
	if err != nil {
		return proto.HardwareState{}, err
	}

	st, ok := proto.ParseState(msgs)
	if !ok {
		d.log.Warn().Strs("response", msgs).Msg("no valid state token in response, degrading to all clear")
	}
	return st, nil
}

// DiskAvailable reports whether the input queue holds a disc.
func (d *Driver) DiskAvailable() (bool, error) {
	st, err := d.ReadState()
	if err != nil {
		return false, err
	}
	return st.DiskAvailable, nil
}

// OpenTray delegates to the OS-side controller. It returns when the
// eject tool exits, not when the tray stops moving.
func (d *Driver) OpenTray(ctx context.Context) error {
	return d.tray.OpenTray(ctx)
}

// CloseTray delegates to the OS-side controller.
func (d *Driver) CloseTray(ctx context.Context) error {
	return d.tray.CloseTray(ctx)
}

// ResetUSB resets the device to clear stuck states. The device
// re-enumerates; the caller must reopen the transport afterwards.
func (d *Driver) ResetUSB() error {
	d.log.Info().Msg("performing USB reset")
	return d.tr.Reset()
}

// Close releases the transport.
func (d *Driver) Close() error {
	return d.tr.Close()
}
