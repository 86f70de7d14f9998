package core

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"tunetime/internal/i18n"
)

// DiscoveryState tracks the device discovery state machine.
type DiscoveryState int

const (
	// DiscoveryIdle means no discovery is running
	DiscoveryIdle DiscoveryState = iota
	// DiscoveryLaunching means a player launch was requested and the initial delay is pending
	DiscoveryLaunching
	// DiscoveryPolling means device polls are in flight
	DiscoveryPolling
	// DiscoveryFound means a device was detected
	DiscoveryFound
	// DiscoveryGaveUp means the poll budget ran out with no device
	DiscoveryGaveUp
)

func (s DiscoveryState) String() string {
	switch s {
	case DiscoveryLaunching:
		return "launching"
	case DiscoveryPolling:
		return "polling"
	case DiscoveryFound:
		return "found"
	case DiscoveryGaveUp:
		return "gave-up"
	}
	return "idle"
}

// DeviceSource is the live device query used by discovery. It always hits the
// backend, never a cache.
type DeviceSource interface {
	Devices(ctx context.Context) ([]Device, error)
}

// DeviceDiscoveryRetrier polls for a playback device after a player launch.
// The continuation runs exactly once per Run, found or not; callers handle
// the empty device id themselves.
type DeviceDiscoveryRetrier struct {
	cfg            DiscoveryConfig
	state          *StateStore
	source         DeviceSource
	notifier       Notifier
	loc            *i18n.Localizer
	logger         *zap.Logger
	desktopCapable bool

	mu    sync.Mutex
	phase DiscoveryState
}

func NewDeviceDiscoveryRetrier(
	cfg DiscoveryConfig,
	state *StateStore,
	source DeviceSource,
	notifier Notifier,
	loc *i18n.Localizer,
	logger *zap.Logger,
	desktopCapable bool,
) *DeviceDiscoveryRetrier {
	return &DeviceDiscoveryRetrier{
		cfg:            cfg,
		state:          state,
		source:         source,
		notifier:       notifier,
		loc:            loc,
		logger:         logger.Named("discovery"),
		desktopCapable: desktopCapable,
	}
}

// Phase reports the current state machine phase.
func (r *DeviceDiscoveryRetrier) Phase() DiscoveryState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

func (r *DeviceDiscoveryRetrier) setPhase(p DiscoveryState) {
	r.mu.Lock()
	r.phase = p
	r.mu.Unlock()
}

// Run waits out the launch delay, then polls the device source up to the
// configured budget. On success the device list and resolved device id land
// in the state store. The continuation receives the resolved device id, empty
// when discovery gave up. Run blocks until the continuation returns.
func (r *DeviceDiscoveryRetrier) Run(ctx context.Context, continuation func(deviceID string)) {
	r.setPhase(DiscoveryLaunching)
	r.logger.Debug("waiting for player launch", zap.Duration("delay", r.cfg.LaunchDelay))

	if !sleepCtx(ctx, r.cfg.LaunchDelay) {
		r.setPhase(DiscoveryIdle)
		return
	}

	r.setPhase(DiscoveryPolling)
	deviceID := ""

	for try := 1; try <= r.cfg.MaxTries; try++ {
		devices, err := r.source.Devices(ctx)
		if err != nil {
			r.logger.Debug("device poll failed", zap.Int("try", try), zap.Error(err))
		}
		if len(devices) > 0 {
			r.state.SetDevices(devices)
			deviceID = ResolveDeviceID(devices)
			r.state.SetDeviceID(deviceID)
			r.setPhase(DiscoveryFound)
			r.notifier.DevicesChanged()
			r.logger.Info("device found",
				zap.Int("tries", try),
				zap.String("device_id", deviceID))
			break
		}
		if try == r.cfg.MaxTries {
			break
		}
		if !sleepCtx(ctx, r.cfg.PollInterval) {
			r.setPhase(DiscoveryIdle)
			return
		}
	}

	if r.Phase() != DiscoveryFound {
		r.setPhase(DiscoveryGaveUp)
		r.logger.Warn("no device found", zap.Int("tries", r.cfg.MaxTries))
		if !r.desktopCapable {
			r.notifier.Info(r.loc.T("notice.no_device"))
		}
	}

	if !sleepCtx(ctx, r.cfg.ContinuationDelay) {
		return
	}
	continuation(deviceID)
}

// ResolveDeviceID picks the command target from a device list: the active
// device first, else the first computer, else none.
func ResolveDeviceID(devices []Device) string {
	for _, d := range devices {
		if d.Active {
			return d.ID
		}
	}
	for _, d := range devices {
		if d.Type == DeviceComputer {
			return d.ID
		}
	}
	return ""
}

// sleepCtx sleeps for d unless ctx ends first. Returns false on cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
