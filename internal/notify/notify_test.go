package notify

import (
	"testing"

	"go.uber.org/zap"
)

type recordingHub struct {
	signals []string
	notices []string
	loading []bool
}

func (h *recordingHub) Signal(name string)       { h.signals = append(h.signals, name) }
func (h *recordingHub) Notice(level, msg string) { h.notices = append(h.notices, level+": "+msg) }
func (h *recordingHub) Loading(loading bool)     { h.loading = append(h.loading, loading) }

func TestNotifierFanout(t *testing.T) {
	hub := &recordingHub{}
	n := NewNotifier(hub, zap.NewNop())

	n.Info("connected")
	n.Error("playback failed")
	n.SelectionChanged()
	n.PlaylistsChanged()
	n.DevicesChanged()
	n.Loading(true)
	n.Loading(false)

	wantNotices := []string{"info: connected", "error: playback failed"}
	if len(hub.notices) != len(wantNotices) {
		t.Fatalf("notices = %v", hub.notices)
	}
	for i, want := range wantNotices {
		if hub.notices[i] != want {
			t.Errorf("notice[%d] = %q, want %q", i, hub.notices[i], want)
		}
	}

	wantSignals := []string{"selection-changed", "playlists-changed", "devices-changed"}
	if len(hub.signals) != len(wantSignals) {
		t.Fatalf("signals = %v", hub.signals)
	}
	for i, want := range wantSignals {
		if hub.signals[i] != want {
			t.Errorf("signal[%d] = %q, want %q", i, hub.signals[i], want)
		}
	}

	if len(hub.loading) != 2 || !hub.loading[0] || hub.loading[1] {
		t.Errorf("loading = %v, want [true false]", hub.loading)
	}
}
