// internal/machine/ops.go
package machine

import (
	"context"
	"fmt"
	"time"
)

// ---- GUARDED OPERATIONS ----
//
// Every operation checks the workflow state first. A precondition
// mismatch is a plain failure with zero hardware side effects, not
// a fault and not a transition.

// Initialize runs the startup sequence: probe the hardware, clear a
// lifted disc, empty and close the tray, probe the closed drive.
// Runs once per process; ends in Ready or the error state.
func (m *Machine) Initialize(ctx context.Context) error {
	if m.initialized {
		return fmt.Errorf("machine: already initialized (state %s)", m.state)
	}
	if m.state != InitCheckingHardware {
		return fmt.Errorf("machine: initialize not valid in state %s", m.state)
	}
	return m.run(ctx)
}

// IsReady reports whether a disc can be loaded or operations resumed.
func (m *Machine) IsReady() bool { return m.state == Ready }

// IsProcessing reports whether a disc is sealed in the drive.
func (m *Machine) IsProcessing() bool { return m.state == Processing }

// CanLoadDisk reports whether the machine is Ready and the input
// queue holds a disc. Read errors count as no.
func (m *Machine) CanLoadDisk(ctx context.Context) bool {
	if m.state != Ready {
		return false
	}
	avail, err := m.hw.DiskAvailable()
	if err != nil {
		m.log.Warn().Err(err).Msg("disk availability check failed")
		return false
	}
	return avail
}

// LoadNextDisk takes the next disc from the queue into the drive.
// Blocks through the whole sequence; true means the machine ended in
// Processing with the disc sealed inside.
func (m *Machine) LoadNextDisk(ctx context.Context) bool {
	if !m.CanLoadDisk(ctx) {
		return false
	}
	m.apply(EvLoadStarted)
	if err := m.run(ctx); err != nil {
		return false
	}
	return m.state == Processing
}

// AcceptCurrentDisk unloads the current disc to the accept pile.
func (m *Machine) AcceptCurrentDisk(ctx context.Context) bool {
	return m.unload(ctx, dropAccept)
}

// RejectCurrentDisk unloads the current disc to the reject pile.
func (m *Machine) RejectCurrentDisk(ctx context.Context) bool {
	return m.unload(ctx, dropReject)
}

// unload captures the drop intent at trigger time; the dropping step
// reads it after the tray is shut again.
func (m *Machine) unload(ctx context.Context, intent dropIntent) bool {
	if m.state != Processing {
		return false
	}
	m.intent = intent
	m.apply(EvUnloadStarted)
	if err := m.run(ctx); err != nil {
		return false
	}
	return m.state == Ready
}

// ---- BATCH PROCESSING ----

// ProcessFunc inspects the loaded disc. True routes it to accept,
// false to reject. An error marks the disc unprocessed after one
// recovery attempt.
type ProcessFunc func() (accept bool, err error)

// BatchStats summarizes one batch run. Total counts every disc
// taken from the queue; Total - Accepted - Rejected were left
// unprocessed by fn errors or unload failures.
type BatchStats struct {
	Total    int
	Accepted int
	Rejected int
}

// ProcessBatch loads, processes, and sorts discs until the queue is
// empty or count discs were handled. count <= 0 means no limit.
func (m *Machine) ProcessBatch(ctx context.Context, count int, fn ProcessFunc) BatchStats {
	var stats BatchStats
	for count <= 0 || stats.Total < count {
		if ctx.Err() != nil {
			break
		}
		if !m.CanLoadDisk(ctx) {
			break
		}
		if !m.processOne(ctx, fn, &stats) {
			break
		}
	}
	return stats
}

// processOne handles a single disc end to end. False means the
// machine cannot continue the batch.
func (m *Machine) processOne(ctx context.Context, fn ProcessFunc, stats *BatchStats) bool {
	if !m.LoadNextDisk(ctx) {
		m.recoverAfterFault(ctx)
		return false
	}
	stats.Total++

	accept, err := fn()
	if err != nil {
		m.log.Warn().Err(err).Int("disc", stats.Total).Msg("process function failed, disc unprocessed")
		m.toError(err)
		m.recoverAfterFault(ctx)
		return m.state == Ready
	}

	var ok bool
	if accept {
		ok = m.AcceptCurrentDisk(ctx)
	} else {
		ok = m.RejectCurrentDisk(ctx)
	}
	if !ok {
		m.recoverAfterFault(ctx)
		return false
	}

	if accept {
		stats.Accepted++
	} else {
		stats.Rejected++
	}
	return true
}

func (m *Machine) recoverAfterFault(ctx context.Context) {
	if m.state != StateError {
		return
	}
	if _, err := m.Recover(ctx); err != nil {
		m.log.Warn().Err(err).Msg("recovery failed")
	}
}

// ProcessContinuous runs ProcessBatch-style handling until the
// context is cancelled, sleeping checkInterval whenever the queue is
// empty.
func (m *Machine) ProcessContinuous(ctx context.Context, fn ProcessFunc, checkInterval time.Duration) BatchStats {
	if checkInterval <= 0 {
		checkInterval = time.Second
	}
	var stats BatchStats
	for {
		if ctx.Err() != nil {
			return stats
		}
		if m.CanLoadDisk(ctx) {
			if !m.processOne(ctx, fn, &stats) {
				return stats
			}
			continue
		}
		select {
		case <-ctx.Done():
			return stats
		case <-time.After(checkInterval):
		}
	}
}
