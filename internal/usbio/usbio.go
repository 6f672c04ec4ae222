// Package usbio owns the USB bulk connection to the autoloader.
// It moves raw frames only; framing semantics live in internal/proto.
package usbio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/gousb"
)

// Default USB identity of the autoloader.
const (
	DefaultVendorID  uint16 = 0x1723
	DefaultProductID uint16 = 0x0945
)

// ReadSize is the largest incoming packet as listed in the endpoint
// descriptor.
const ReadSize = 64

// readTimeout bounds a single endpoint read. The device can take many
// seconds to answer while a mechanical action is in flight.
const readTimeout = 20 * time.Second

// Config selects the device to open. Zero values fall back to the
// defaults.
type Config struct {
	VendorID  uint16
	ProductID uint16
}

// Device is an open, claimed USB connection.
type Device struct {
	ctx  *gousb.Context
	dev  *gousb.Device
	done func()
	in   *gousb.InEndpoint
	out  *gousb.OutEndpoint
}

// Open finds the first matching device, claims its only interface and
// resolves the bulk endpoint pair.
func Open(cfg Config) (*Device, error) {
	if cfg.VendorID == 0 {
		cfg.VendorID = DefaultVendorID
	}
	if cfg.ProductID == 0 {
		cfg.ProductID = DefaultProductID
	}

	ctx := gousb.NewContext()

	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return uint16(desc.Vendor) == cfg.VendorID && uint16(desc.Product) == cfg.ProductID
	})
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("usbio: enumerate devices: %w", err)
	}
	if len(devs) == 0 {
		ctx.Close()
		return nil, fmt.Errorf("usbio: device %04x:%04x not found", cfg.VendorID, cfg.ProductID)
	}

	dev := devs[0]
	for _, extra := range devs[1:] {
		extra.Close()
	}

	conf, err := dev.Config(1)
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("usbio: get config 1: %w", err)
	}

	intf, err := conf.Interface(0, 0)
	if err != nil {
		conf.Close()
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("usbio: claim interface 0: %w", err)
	}

	done := func() {
		intf.Close()
		conf.Close()
	}

	inNum, outNum := -1, -1
	for _, ep := range intf.Setting.Endpoints {
		switch ep.Direction {
		case gousb.EndpointDirectionIn:
			if inNum < 0 {
				inNum = ep.Number
			}
		case gousb.EndpointDirectionOut:
			if outNum < 0 {
				outNum = ep.Number
			}
		}
	}
	if inNum < 0 || outNum < 0 {
		done()
		dev.Close()
		ctx.Close()
		return nil, errors.New("usbio: bulk endpoint pair not found")
	}

	in, err := intf.InEndpoint(inNum)
	if err != nil {
		done()
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("usbio: open in endpoint %d: %w", inNum, err)
	}

	out, err := intf.OutEndpoint(outNum)
	if err != nil {
		done()
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("usbio: open out endpoint %d: %w", outNum, err)
	}

	return &Device{ctx: ctx, dev: dev, done: done, in: in, out: out}, nil
}

// WriteFrame writes one command frame.
func (d *Device) WriteFrame(frame []byte) error {
	if _, err := d.out.Write(frame); err != nil {
		return fmt.Errorf("usbio: write: %w", err)
	}
	return nil
}

// ReadFrame reads one response frame. The device answers every command
// with a burst of frames; an empty frame ends the burst.
func (d *Device) ReadFrame() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), readTimeout)
	defer cancel()

	buf := make([]byte, ReadSize)
	n, err := d.in.ReadContext(ctx, buf)
	if err != nil {
		return nil, fmt.Errorf("usbio: read: %w", err)
	}
	return buf[:n], nil
}

// Reset performs a USB-level reset to clear a stuck device (E09
// errors, read timeouts). The device re-enumerates afterwards, so the
// caller must reopen before continuing.
func (d *Device) Reset() error {
	return d.dev.Reset()
}

// Close releases the interface, device and context.
func (d *Device) Close() error {
	if d.done != nil {
		d.done()
	}
	if d.dev != nil {
		d.dev.Close()
	}
	if d.ctx != nil {
		return d.ctx.Close()
	}
	return nil
}
