// cmd/nimbiectl/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tamzrod/nimbie-ctl/internal/config"
	"github.com/tamzrod/nimbie-ctl/internal/driver"
	"github.com/tamzrod/nimbie-ctl/internal/machine"
	"github.com/tamzrod/nimbie-ctl/internal/tray"
	"github.com/tamzrod/nimbie-ctl/internal/usbio"
)

var (
	flagConfig string
	flagDebug  bool
)

func main() {
	root := &cobra.Command{
		Use:           "nimbiectl",
		Short:         "Control a Nimbie USB disc autoloader",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "nimbie.yaml", "config file")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "debug logging")

	root.AddCommand(
		statusCmd(),
		initCmd(),
		loadCmd(),
		acceptCmd(),
		rejectCmd(),
		batchCmd(),
		trayCmd(),
		resetUSBCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "nimbiectl:", err)
		os.Exit(1)
	}
}

// ---- RIG ----

// rig holds the wired stack: config, transport, driver, machine.
type rig struct {
	cfg  *config.Config
	log  zerolog.Logger
	drv  *driver.Driver
	mach *machine.Machine
}

func buildRig() (*rig, func(), error) {
	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, err
	}
	config.Normalize(cfg)

	// --------------------
	// Logging
	// --------------------

	level := zerolog.InfoLevel
	if flagDebug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	// --------------------
	// Transport + driver + machine
	// --------------------

	dev, err := usbio.Open(usbio.Config{
		VendorID:  cfg.Autoloader.USB.VendorID,
		ProductID: cfg.Autoloader.USB.ProductID,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("usb open: %w", err)
	}

	trayCtl := tray.New(cfg.Autoloader.Drive)
	trayCtl.OpenTimeout = secs(cfg.Autoloader.Timeouts.TrayOpenS, trayCtl.OpenTimeout)
	trayCtl.CloseTimeout = secs(cfg.Autoloader.Timeouts.TrayCloseS, trayCtl.CloseTimeout)

	drv := driver.New(dev, trayCtl, log)

	mach, err := machine.New(drv, machineConfig(cfg), log)
	if err != nil {
		drv.Close()
		return nil, nil, err
	}

	r := &rig{cfg: cfg, log: log, drv: drv, mach: mach}
	cleanup := func() {
		if err := drv.Close(); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
	return r, cleanup, nil
}

func machineConfig(cfg *config.Config) machine.Config {
	t := cfg.Autoloader.Timeouts
	return machine.Config{
		PollInterval:     time.Duration(cfg.Autoloader.Poll.IntervalMs) * time.Millisecond,
		TrayOpenTimeout:  secs(t.TrayOpenS, 0),
		TrayCloseTimeout: secs(t.TrayCloseS, 0),
		PlaceTimeout:     secs(t.PlaceS, 0),
		LiftTimeout:      secs(t.LiftS, 0),
		DropTimeout:      secs(t.DropS, 0),
	}
}

func secs(n int, fallback time.Duration) time.Duration {
	if n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// announceSteps prints each workflow step so long mechanical phases
// are visible.
func announceSteps(r *rig) {
	r.mach.OnTransition = func(from, to machine.State, ev machine.Event) {
		r.log.Info().Stringer("step", to).Msg("workflow")
	}
}

// ---- COMMANDS ----

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the hardware state snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, cleanup, err := buildRig()
			if err != nil {
				return err
			}
			defer cleanup()

			snap, err := r.drv.ReadState()
			if err != nil {
				return err
			}
			fmt.Printf("disk available:    %v\n", snap.DiskAvailable)
			fmt.Printf("disk in open tray: %v\n", snap.DiskInOpenTray)
			fmt.Printf("disk lifted:       %v\n", snap.DiskLifted)
			fmt.Printf("tray out:          %v\n", snap.TrayOut)
			return nil
		},
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Run the startup sequence and leave the device ready",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, cleanup, err := buildRig()
			if err != nil {
				return err
			}
			defer cleanup()
			announceSteps(r)

			ctx, stop := signalContext()
			defer stop()

			if err := r.mach.Initialize(ctx); err != nil {
				return fmt.Errorf("initialization: %w", err)
			}
			r.log.Info().Msg("device ready")
			return nil
		},
	}
}

func loadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Initialize, then load the next disc into the drive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, cleanup, err := buildRig()
			if err != nil {
				return err
			}
			defer cleanup()
			announceSteps(r)

			ctx, stop := signalContext()
			defer stop()

			if err := r.mach.Initialize(ctx); err != nil {
				return fmt.Errorf("initialization: %w", err)
			}
			if !r.mach.CanLoadDisk(ctx) {
				return fmt.Errorf("no disc in the input queue")
			}
			if !r.mach.LoadNextDisk(ctx) {
				return fmt.Errorf("load failed: %w", r.mach.LastError())
			}
			r.log.Info().Msg("disc loaded")
			return nil
		},
	}
}

func acceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept",
		Short: "Unload the disc currently in the drive to the accept pile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnload(true)
		},
	}
}

func rejectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reject",
		Short: "Unload the disc currently in the drive to the reject pile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnload(false)
		},
	}
}

// runUnload skips initialization (it would sweep the drive disc to
// reject) and forces the workflow into the processing state instead.
func runUnload(accept bool) error {
	r, cleanup, err := buildRig()
	if err != nil {
		return err
	}
	defer cleanup()
	announceSteps(r)

	ctx, stop := signalContext()
	defer stop()

	err = r.mach.ManualSession(func(o *machine.ManualOps) error {
		return o.SetState(machine.Processing)
	})
	if err != nil {
		return err
	}

	var ok bool
	if accept {
		ok = r.mach.AcceptCurrentDisk(ctx)
	} else {
		ok = r.mach.RejectCurrentDisk(ctx)
	}
	if !ok {
		return fmt.Errorf("unload failed: %w", r.mach.LastError())
	}
	r.log.Info().Msg("disc unloaded")
	return nil
}

func batchCmd() *cobra.Command {
	var (
		count     int
		rejectAll bool
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Initialize, then cycle discs through the drive",
		Long: "Initialize, then load, pass, and sort discs until the queue is\n" +
			"empty or --count is reached. Without --reject-all every disc goes\n" +
			"to the accept pile.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, cleanup, err := buildRig()
			if err != nil {
				return err
			}
			defer cleanup()
			announceSteps(r)

			ctx, stop := signalContext()
			defer stop()

			if err := r.mach.Initialize(ctx); err != nil {
				return fmt.Errorf("initialization: %w", err)
			}

			stats := r.mach.ProcessBatch(ctx, count, func() (bool, error) {
				return !rejectAll, nil
			})
			fmt.Printf("total: %d  accepted: %d  rejected: %d\n",
				stats.Total, stats.Accepted, stats.Rejected)
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 0, "stop after N discs (0 = until queue empty)")
	cmd.Flags().BoolVar(&rejectAll, "reject-all", false, "send every disc to the reject pile")
	return cmd
}

func trayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tray {open|close}",
		Short: "Open or close the drive tray",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:  "open",
			Args: cobra.NoArgs,
			RunE: func(c *cobra.Command, args []string) error {
				return runTray(func(ctx context.Context, d *driver.Driver) error {
					return d.OpenTray(ctx)
				})
			},
		},
		&cobra.Command{
			Use:  "close",
			Args: cobra.NoArgs,
			RunE: func(c *cobra.Command, args []string) error {
				return runTray(func(ctx context.Context, d *driver.Driver) error {
					return d.CloseTray(ctx)
				})
			},
		},
	)
	return cmd
}

func runTray(fn func(context.Context, *driver.Driver) error) error {
	r, cleanup, err := buildRig()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signalContext()
	defer stop()
	return fn(ctx, r.drv)
}

func resetUSBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-usb",
		Short: "Reset the USB device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, cleanup, err := buildRig()
			if err != nil {
				return err
			}
			defer cleanup()
			return r.drv.ResetUSB()
		},
	}
}
