package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tunetime/internal/i18n"
)

// StateReconciler re-queries the backend for the actual playback state so the
// running track catches up with a just-issued command.
type StateReconciler interface {
	GatherSoon()
}

// CommandDispatcher resolves which backend and device receive a command and
// issues it. Device resolution always completes before the dependent command
// goes out; there is no global lock. Backend failures are converted to user
// notices here and never propagate as faults.
type CommandDispatcher struct {
	cfg        *Config
	state      *StateStore
	players    map[BackendKind]Player
	cloud      Library
	reconciler StateReconciler
	notifier   Notifier
	loc        *i18n.Localizer
	logger     *zap.Logger

	// desktopCapable reports whether the platform can script the native
	// desktop apps.
	desktopCapable bool
}

func NewCommandDispatcher(
	cfg *Config,
	state *StateStore,
	players map[BackendKind]Player,
	cloud Library,
	notifier Notifier,
	loc *i18n.Localizer,
	logger *zap.Logger,
	desktopCapable bool,
) *CommandDispatcher {
	return &CommandDispatcher{
		cfg:            cfg,
		state:          state,
		players:        players,
		cloud:          cloud,
		notifier:       notifier,
		loc:            loc,
		logger:         logger.Named("dispatcher"),
		desktopCapable: desktopCapable,
	}
}

// SetReconciler wires the post-command state re-query. Set once at startup.
func (d *CommandDispatcher) SetReconciler(r StateReconciler) {
	d.reconciler = r
}

// SelectBackend picks the command target backend. Local desktop wins while it
// is the active backend. Non-premium cloud accounts on scripting-capable
// platforms route to the cloud desktop app because web playback control
// requires premium.
func (d *CommandDispatcher) SelectBackend() BackendKind {
	if d.state.ActiveBackend() == BackendLocalDesktop {
		return BackendLocalDesktop
	}
	if !d.state.Premium() && d.desktopCapable {
		return BackendCloudDesktop
	}
	return BackendCloudWeb
}

// ResolveDevice returns the target device id for web API commands: the
// resolved id from state when present, else a fresh device query. An empty
// id lets the backend pick its own last-active device.
func (d *CommandDispatcher) ResolveDevice(ctx context.Context) string {
	if id := d.state.DeviceID(); id != "" {
		return id
	}

	devices := d.state.Devices()
	if len(devices) == 0 {
		fresh, err := d.cloud.Devices(ctx)
		if err != nil {
			d.logger.Debug("device query failed", zap.Error(err))
			return ""
		}
		devices = fresh
		d.state.SetDevices(devices)
		d.notifier.DevicesChanged()
	}

	id := ResolveDeviceID(devices)
	if id != "" {
		d.state.SetDeviceID(id)
	}
	return id
}

// Play resolves backend and device, fills them into req and issues it.
func (d *CommandDispatcher) Play(ctx context.Context, req PlayRequest) error {
	backend := d.SelectBackend()
	if backend == BackendCloudWeb {
		req.DeviceID = d.ResolveDevice(ctx)
	}
	return d.issue(backend, "play", func(p Player) error {
		return p.Play(ctx, req)
	})
}

func (d *CommandDispatcher) Pause(ctx context.Context) error {
	backend := d.SelectBackend()
	deviceID := ""
	if backend == BackendCloudWeb {
		deviceID = d.ResolveDevice(ctx)
	}
	return d.issue(backend, "pause", func(p Player) error {
		return p.Pause(ctx, deviceID)
	})
}

func (d *CommandDispatcher) Next(ctx context.Context) error {
	backend := d.SelectBackend()
	deviceID := ""
	if backend == BackendCloudWeb {
		deviceID = d.ResolveDevice(ctx)
	}
	return d.issue(backend, "next", func(p Player) error {
		return p.Next(ctx, deviceID)
	})
}

func (d *CommandDispatcher) Previous(ctx context.Context) error {
	backend := d.SelectBackend()
	deviceID := ""
	if backend == BackendCloudWeb {
		deviceID = d.ResolveDevice(ctx)
	}
	return d.issue(backend, "previous", func(p Player) error {
		return p.Previous(ctx, deviceID)
	})
}

// Launch starts the player for the given backend. A failed cloud desktop
// launch falls back to the web player.
func (d *CommandDispatcher) Launch(ctx context.Context, backend BackendKind, opts LaunchOptions) error {
	player, ok := d.players[backend]
	if !ok {
		return fmt.Errorf("no player for backend %s", backend)
	}
	err := player.Launch(ctx, opts)
	if err != nil && backend == BackendCloudDesktop {
		d.logger.Warn("desktop launch failed, falling back to web player", zap.Error(err))
		if web, ok := d.players[BackendCloudWeb]; ok {
			return web.Launch(ctx, opts)
		}
	}
	return err
}

// TransferToComputer moves playback to the given device, or to the first
// computer device when none is given.
func (d *CommandDispatcher) TransferToComputer(ctx context.Context, deviceID string) error {
	if deviceID == "" {
		devices := d.state.Devices()
		if len(devices) == 0 {
			fresh, err := d.cloud.Devices(ctx)
			if err != nil {
				d.notifier.Error(d.loc.T("notice.command_failed", "transfer"))
				return err
			}
			devices = fresh
			d.state.SetDevices(devices)
		}
		for _, dev := range devices {
			if dev.Type == DeviceComputer {
				deviceID = dev.ID
				break
			}
		}
		if deviceID == "" {
			d.notifier.Info(d.loc.T("notice.no_device"))
			return nil
		}
	}

	if err := d.cloud.TransferPlayback(ctx, deviceID); err != nil {
		d.notifier.Error(d.loc.T("notice.command_failed", "transfer"))
		return err
	}
	d.state.SetDeviceID(deviceID)
	d.notifier.DevicesChanged()
	d.scheduleReconcile()
	return nil
}

func (d *CommandDispatcher) issue(backend BackendKind, name string, call func(Player) error) error {
	player, ok := d.players[backend]
	if !ok {
		d.logger.Error("no player registered", zap.Stringer("backend", backend))
		d.notifier.Error(d.loc.T("notice.command_failed", name))
		return fmt.Errorf("no player for backend %s", backend)
	}

	if err := call(player); err != nil {
		d.logger.Warn("command failed",
			zap.String("command", name),
			zap.Stringer("backend", backend),
			zap.Error(err))
		d.notifier.Error(d.loc.T("notice.command_failed", name))
		return err
	}

	d.logger.Debug("command issued",
		zap.String("command", name),
		zap.Stringer("backend", backend))
	d.scheduleReconcile()
	return nil
}

func (d *CommandDispatcher) scheduleReconcile() {
	if d.reconciler != nil {
		d.reconciler.GatherSoon()
	}
}
