// Package notify fans engine notifications out to connected UI clients and
// the structured log.
package notify

import (
	"go.uber.org/zap"
)

// Hub is the broadcast surface the notifier publishes to.
type Hub interface {
	Signal(name string)
	Notice(level, msg string)
	Loading(loading bool)
}

// Event names forwarded to the hub.
const (
	eventSelectionChanged = "selection-changed"
	eventPlaylistsChanged = "playlists-changed"
	eventDevicesChanged   = "devices-changed"
)

// Notifier publishes notices and refresh signals.
type Notifier struct {
	hub    Hub
	logger *zap.Logger
}

func NewNotifier(hub Hub, logger *zap.Logger) *Notifier {
	return &Notifier{
		hub:    hub,
		logger: logger.Named("notify"),
	}
}

func (n *Notifier) Info(msg string) {
	n.logger.Info("notice", zap.String("message", msg))
	n.hub.Notice("info", msg)
}

func (n *Notifier) Error(msg string) {
	n.logger.Warn("error notice", zap.String("message", msg))
	n.hub.Notice("error", msg)
}

func (n *Notifier) SelectionChanged() {
	n.hub.Signal(eventSelectionChanged)
}

func (n *Notifier) Loading(loading bool) {
	n.hub.Loading(loading)
}

func (n *Notifier) PlaylistsChanged() {
	n.hub.Signal(eventPlaylistsChanged)
}

func (n *Notifier) DevicesChanged() {
	n.hub.Signal(eventDevicesChanged)
}
