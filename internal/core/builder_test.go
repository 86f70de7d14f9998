package core

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"tunetime/internal/i18n"
)

func newTestBuilder(lib Library, local Library) (*PlaylistCacheBuilder, *StateStore, *mockNotifier) {
	state := NewStateStore()
	// A preset seed pool keeps the fire-and-forget seed build out of the way.
	state.SetSeedTrackIDs([]string{"seed"})
	notifier := &mockNotifier{}
	b := NewPlaylistCacheBuilder(
		state, lib, local, newMockTrackCache(), newMockSettings(),
		notifier, i18n.NewLocalizer("en"), zap.NewNop(),
	)
	return b, state, notifier
}

func actionIDs(items []PlaylistItem) []ActionID {
	var out []ActionID
	for _, it := range items {
		if it.Kind == ItemAction {
			out = append(out, it.Action)
		}
	}
	return out
}

func TestBuildCloudOrdering(t *testing.T) {
	lib := newMockLibrary()
	lib.playlists = []Playlist{
		{ID: "p1", Name: "Mix One", Backend: BackendCloudWeb},
		{ID: CuratedTopPlaylistID, Name: "Top 50", Backend: BackendCloudWeb},
		{ID: "p2", Name: "Mix Two", Backend: BackendCloudWeb},
	}
	lib.liked = []Track{{ID: "t1"}, {ID: "t2"}}

	b, state, notifier := newTestBuilder(lib, nil)
	b.Refresh(context.Background())

	items := state.Items()
	if len(items) == 0 {
		t.Fatal("no items built")
	}

	var order []string
	for _, it := range items {
		if it.Kind == ItemAction {
			order = append(order, "action:"+string(it.Action))
		} else {
			order = append(order, "playlist:"+it.ID)
		}
	}
	want := []string{
		"action:dashboard",
		"action:web-analytics",
		"action:readme",
		"action:switch-device",
		"action:switch-to-local",
		"action:line-break",
		"action:generate-playlist",
		"playlist:" + CuratedTopPlaylistID,
		"playlist:" + LikedSongsPlaylistID,
		"action:line-break",
		"playlist:p1",
		"playlist:p2",
	}
	if len(order) != len(want) {
		t.Fatalf("item order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("item[%d] = %s, want %s (full order %v)", i, order[i], want[i], order)
		}
	}

	if !state.Ready() {
		t.Error("state not marked ready after build")
	}
	if notifier.playlists != 1 {
		t.Errorf("playlists-changed signals = %d, want 1", notifier.playlists)
	}
	if len(state.LikedSongs()) != 2 {
		t.Errorf("liked songs cached = %d, want 2", len(state.LikedSongs()))
	}
}

func TestBuildCloudNonPremiumButton(t *testing.T) {
	lib := newMockLibrary()
	lib.premium = false

	b, state, _ := newTestBuilder(lib, nil)
	b.Refresh(context.Background())

	ids := actionIDs(state.Items())
	if len(ids) == 0 || ids[0] != ActionPremiumRequired {
		t.Errorf("first action = %v, want premium-required", ids)
	}
	if state.Premium() {
		t.Error("premium flag set for non-premium account")
	}
}

func TestBuildCloudDisconnected(t *testing.T) {
	lib := newMockLibrary()
	lib.connected = false

	b, state, _ := newTestBuilder(lib, nil)
	b.Refresh(context.Background())

	ids := actionIDs(state.Items())
	if len(ids) == 0 || ids[0] != ActionConnect {
		t.Errorf("first action = %v, want connect", ids)
	}
	for _, it := range state.Items() {
		if it.Kind == ItemPlaylist {
			t.Errorf("playlist %q built while disconnected", it.ID)
		}
	}
	if lib.fetchCount() != 0 {
		t.Errorf("playlist fetches while disconnected = %d, want 0", lib.fetchCount())
	}
}

func TestBuildLocal(t *testing.T) {
	local := newMockLibrary()
	local.playlists = []Playlist{{ID: "l1", Name: "Library"}}

	b, state, _ := newTestBuilder(newMockLibrary(), local)
	state.SetActiveBackend(BackendLocalDesktop)
	b.Refresh(context.Background())

	items := state.Items()
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}
	if items[0].Action != ActionSwitchToCloud {
		t.Errorf("first item action = %v, want switch-to-cloud", items[0].Action)
	}
	if items[2].ID != "l1" || items[2].Backend != BackendLocalDesktop {
		t.Errorf("playlist item = %+v, want l1 tagged local-desktop", items[2])
	}
}

func TestBuildSeedsFetchesRecommendations(t *testing.T) {
	lib := newMockLibrary()
	lib.recommended = []Track{{ID: "r1"}, {ID: "r2"}}

	state := NewStateStore()
	state.SetLikedSongs([]Track{
		{ID: "s1"}, {ID: "s2"}, {ID: "s3"}, {ID: "s4"}, {ID: "s5"}, {ID: "s6"},
	})
	state.SetItems([]PlaylistItem{
		{Kind: ItemPlaylist, ID: LikedSongsPlaylistID, Name: "Liked Songs"},
		{Kind: ItemPlaylist, ID: "p1", Name: "Mix One"},
	})
	cache := newMockTrackCache()
	notifier := &mockNotifier{}
	b := NewPlaylistCacheBuilder(
		state, lib, nil, cache, newMockSettings(),
		notifier, i18n.NewLocalizer("en"), zap.NewNop(),
	)

	b.buildSeeds(context.Background(), nil)

	recs := state.RecommendationTracks()
	if len(recs) != 2 {
		t.Fatalf("recommendation tracks = %d, want 2", len(recs))
	}
	if recs[0].PlaylistID != RecommendationPlaylistID || recs[1].Position != 1 {
		t.Errorf("recommendation tracks not tagged: %+v", recs)
	}
	if len(lib.recSeeds) != RecommendationSeedLimit {
		t.Errorf("seeds sent = %d, want capped at %d", len(lib.recSeeds), RecommendationSeedLimit)
	}
	if _, ok := cache.Tracks(RecommendationPlaylistID); !ok {
		t.Error("working set not cached")
	}

	// the virtual folder slots in right after the liked-songs folder
	items := state.Items()
	if len(items) != 3 || items[1].ID != RecommendationPlaylistID {
		t.Fatalf("items = %+v, want recommendations folder after liked songs", items)
	}
	if items[1].Name != "Recommendations" || items[1].TrackCount != 2 {
		t.Errorf("folder = %+v", items[1])
	}
	if notifier.playlists != 1 {
		t.Errorf("playlists-changed signals = %d, want 1", notifier.playlists)
	}
}

func TestBuildCloudIncludesRecommendationFolder(t *testing.T) {
	lib := newMockLibrary()
	lib.playlists = []Playlist{{ID: "p1", Name: "Mix One", Backend: BackendCloudWeb}}

	b, state, _ := newTestBuilder(lib, nil)
	state.SetRecommendationTracks([]Track{{ID: "r1"}})
	b.Refresh(context.Background())

	found := false
	for _, it := range state.Items() {
		if it.Kind == ItemPlaylist && it.ID == RecommendationPlaylistID {
			found = true
			if it.TrackCount != 1 {
				t.Errorf("folder track count = %d, want 1", it.TrackCount)
			}
		}
	}
	if !found {
		t.Error("recommendations folder missing from the rebuilt item list")
	}
}

func TestTracksServesRecommendationWorkingSet(t *testing.T) {
	b, state, _ := newTestBuilder(newMockLibrary(), nil)
	state.SetRecommendationTracks([]Track{{ID: "r1"}, {ID: "r2"}})

	tracks, err := b.Tracks(context.Background(), RecommendationPlaylistID)
	if err != nil {
		t.Fatalf("Tracks() error = %v", err)
	}
	if len(tracks) != 2 || tracks[0].ID != "r1" {
		t.Errorf("tracks = %+v, want the working set", tracks)
	}
}

// Two refreshes racing the same in-flight build must produce exactly one
// backend fetch sequence.
func TestBuildReentryGuard(t *testing.T) {
	lib := newMockLibrary()
	gate := make(chan struct{})
	blocked := &gatedLibrary{mockLibrary: lib, gate: gate, entered: make(chan struct{})}

	b, _, _ := newTestBuilder(blocked, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		b.Refresh(context.Background())
	}()

	<-blocked.entered
	b.Refresh(context.Background()) // must be a no-op
	close(gate)
	wg.Wait()

	if lib.fetchCount() != 1 {
		t.Errorf("fetch sequences = %d, want 1", lib.fetchCount())
	}
}

// gatedLibrary blocks the first Playlists call until its gate opens.
type gatedLibrary struct {
	*mockLibrary
	gate    chan struct{}
	once    sync.Once
	entered chan struct{}
}

func (g *gatedLibrary) Playlists(ctx context.Context) ([]Playlist, error) {
	g.once.Do(func() { close(g.entered) })
	<-g.gate
	return g.mockLibrary.Playlists(ctx)
}
