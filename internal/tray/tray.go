// Package tray drives the optical drive's tray through the OS eject
// tooling. The autoloader itself has no tray motor; it rides the
// drive's own mechanism.
package tray

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"
)

// Default command timeouts. Closing is slower: the drive pulls the
// tray in and settles the disc before the tool exits.
const (
	DefaultOpenTimeout  = 10 * time.Second
	DefaultCloseTimeout = 30 * time.Second
)

// Controller shells out to drutil (darwin) or eject (everything else)
// for one target drive.
type Controller struct {
	Drive        string // device path, or drive index on darwin
	OpenTimeout  time.Duration
	CloseTimeout time.Duration

	goos string                                        // test seam; "" means runtime.GOOS
	run  func(ctx context.Context, argv []string) error // test seam; nil means exec
}

// New builds a controller with default timeouts.
func New(drive string) *Controller {
	return &Controller{
		Drive:        drive,
		OpenTimeout:  DefaultOpenTimeout,
		CloseTimeout: DefaultCloseTimeout,
	}
}

// OpenTray ejects the tray. It returns when the tool exits; the
// mechanism keeps moving, so callers poll the autoloader state.
func (c *Controller) OpenTray(ctx context.Context) error {
	if err := c.exec(ctx, openArgv(c.os(), c.Drive), c.OpenTimeout); err != nil {
		return fmt.Errorf("tray: open failed for drive %s: %w", c.Drive, err)
	}
	return nil
}

// CloseTray retracts the tray.
func (c *Controller) CloseTray(ctx context.Context) error {
	if err := c.exec(ctx, closeArgv(c.os(), c.Drive), c.CloseTimeout); err != nil {
		return fmt.Errorf("tray: close failed for drive %s: %w", c.Drive, err)
	}
	return nil
}

// openArgv and closeArgv are pure so the platform mapping is testable
// without spawning processes.
func openArgv(goos, drive string) []string {
	if goos == "darwin" {
		return []string{"drutil", "-drive", drive, "tray", "eject"}
	}
	return []string{"eject", drive}
}

func closeArgv(goos, drive string) []string {
	if goos == "darwin" {
		return []string{"drutil", "-drive", drive, "tray", "close"}
	}
	return []string{"eject", "-t", drive}
}

func (c *Controller) exec(ctx context.Context, argv []string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if c.run != nil {
		return c.run(ctx, argv)
	}
	return exec.CommandContext(ctx, argv[0], argv[1:]...).Run()
}

func (c *Controller) os() string {
	if c.goos != "" {
		return c.goos
	}
	return runtime.GOOS
}
