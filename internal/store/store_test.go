package store

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"tunetime/internal/core"
)

func TestTrackCacheEviction(t *testing.T) {
	c := NewTrackCache(2, 100)
	c.PutTracks("p1", []core.Track{{ID: "a"}})
	c.PutTracks("p2", []core.Track{{ID: "b"}})
	c.PutTracks("p3", []core.Track{{ID: "c"}})

	if _, ok := c.Tracks("p1"); ok {
		t.Error("oldest playlist survived eviction")
	}
	if got, ok := c.Tracks("p3"); !ok || got[0].ID != "c" {
		t.Errorf("newest playlist missing: %v %v", got, ok)
	}
	if c.PlaylistCount() != 2 {
		t.Errorf("playlist count = %d, want 2", c.PlaylistCount())
	}
}

func TestTrackCacheInvalidate(t *testing.T) {
	c := NewTrackCache(4, 100)
	c.PutTracks("p1", []core.Track{{ID: "a"}})
	c.Invalidate("p1")
	if _, ok := c.Tracks("p1"); ok {
		t.Error("invalidated playlist still cached")
	}
}

func TestLikedIndex(t *testing.T) {
	c := NewTrackCache(4, 100)
	c.LoadLiked([]string{"a", "b", ""})

	if !c.IsLiked("a") || !c.IsLiked("b") {
		t.Error("loaded ids not reported liked")
	}
	if c.IsLiked("c") {
		t.Error("unknown id reported liked")
	}
	if c.LikedCount() != 2 {
		t.Errorf("liked count = %d, want 2 (empty id dropped)", c.LikedCount())
	}

	c.MarkLiked("c", true)
	if !c.IsLiked("c") {
		t.Error("marked id not reported liked")
	}
	c.MarkLiked("a", false)
	if c.IsLiked("a") {
		t.Error("unliked id still reported liked")
	}

	// a later load replaces the whole index
	c.LoadLiked([]string{"z"})
	if c.IsLiked("b") || !c.IsLiked("z") {
		t.Error("reload did not replace the index")
	}
}

func TestTrackCacheClear(t *testing.T) {
	c := NewTrackCache(4, 100)
	c.PutTracks("p1", []core.Track{{ID: "a"}})
	c.LoadLiked([]string{"a"})
	c.Clear()

	if c.PlaylistCount() != 0 || c.LikedCount() != 0 {
		t.Error("clear left residue")
	}
	if c.IsLiked("a") {
		t.Error("liked id survived clear")
	}
}

func openTestSettings(t *testing.T) *Settings {
	t.Helper()
	s, err := OpenSettings(filepath.Join(t.TempDir(), "settings.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("OpenSettings() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGeneratedPlaylistRegistry(t *testing.T) {
	s := openTestSettings(t)

	if id, err := s.GeneratedPlaylistID(1); err != nil || id != "" {
		t.Fatalf("empty registry returned (%q, %v), want empty id", id, err)
	}

	if err := s.SetGeneratedPlaylistID(1, "p-first"); err != nil {
		t.Fatalf("SetGeneratedPlaylistID() error = %v", err)
	}
	if id, _ := s.GeneratedPlaylistID(1); id != "p-first" {
		t.Errorf("registered id = %q, want p-first", id)
	}

	// re-registering the same type replaces the id
	if err := s.SetGeneratedPlaylistID(1, "p-second"); err != nil {
		t.Fatalf("re-register error = %v", err)
	}
	if id, _ := s.GeneratedPlaylistID(1); id != "p-second" {
		t.Errorf("replaced id = %q, want p-second", id)
	}

	if err := s.ClearGeneratedPlaylistID(1); err != nil {
		t.Fatalf("ClearGeneratedPlaylistID() error = %v", err)
	}
	if id, _ := s.GeneratedPlaylistID(1); id != "" {
		t.Errorf("cleared id = %q, want empty", id)
	}
}

func TestSettingsKeyValue(t *testing.T) {
	s := openTestSettings(t)

	if v, err := s.Get("missing"); err != nil || v != "" {
		t.Fatalf("Get(missing) = (%q, %v), want empty", v, err)
	}
	if err := s.Set("backend", "cloud-web"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if v, _ := s.Get("backend"); v != "cloud-web" {
		t.Errorf("Get() = %q, want cloud-web", v)
	}
	if err := s.Set("backend", "local-desktop"); err != nil {
		t.Fatalf("overwrite error = %v", err)
	}
	if v, _ := s.Get("backend"); v != "local-desktop" {
		t.Errorf("overwritten Get() = %q, want local-desktop", v)
	}
}
