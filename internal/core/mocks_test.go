package core

import (
	"context"
	"errors"
	"sync"
)

// mockNotifier records notices and refresh signals.
type mockNotifier struct {
	mu         sync.Mutex
	infos      []string
	errs       []string
	selections int
	loading    []bool
	playlists  int
	devices    int
}

func (m *mockNotifier) Info(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, msg)
}

func (m *mockNotifier) Error(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, msg)
}

func (m *mockNotifier) SelectionChanged() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selections++
}

func (m *mockNotifier) Loading(loading bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = append(m.loading, loading)
}

func (m *mockNotifier) PlaylistsChanged() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playlists++
}

func (m *mockNotifier) DevicesChanged() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.devices++
}

func (m *mockNotifier) infoCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.infos)
}

// mockDeviceSource returns no devices until poll number succeedOn.
type mockDeviceSource struct {
	mu        sync.Mutex
	polls     int
	succeedOn int
	devices   []Device
}

func (m *mockDeviceSource) Devices(ctx context.Context) ([]Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.polls++
	if m.succeedOn > 0 && m.polls >= m.succeedOn {
		return m.devices, nil
	}
	return nil, nil
}

func (m *mockDeviceSource) pollCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.polls
}

// mockPlayer records every command it receives.
type mockPlayer struct {
	mu       sync.Mutex
	kind     BackendKind
	plays    []PlayRequest
	pauses   []string
	nexts    []string
	prevs    []string
	launches []LaunchOptions
	err      error
}

func (m *mockPlayer) Kind() BackendKind { return m.kind }

func (m *mockPlayer) Play(ctx context.Context, req PlayRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plays = append(m.plays, req)
	return m.err
}

func (m *mockPlayer) Pause(ctx context.Context, deviceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauses = append(m.pauses, deviceID)
	return m.err
}

func (m *mockPlayer) Next(ctx context.Context, deviceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nexts = append(m.nexts, deviceID)
	return m.err
}

func (m *mockPlayer) Previous(ctx context.Context, deviceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prevs = append(m.prevs, deviceID)
	return m.err
}

func (m *mockPlayer) Launch(ctx context.Context, opts LaunchOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.launches = append(m.launches, opts)
	return m.err
}

func (m *mockPlayer) playCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.plays)
}

func (m *mockPlayer) lastPlay() PlayRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.plays) == 0 {
		return PlayRequest{}
	}
	return m.plays[len(m.plays)-1]
}

// mockLibrary serves canned catalog data and records library edits.
type mockLibrary struct {
	mu sync.Mutex

	playlists      []Playlist
	playlistTracks map[string][]Track
	liked          []Track
	devices        []Device
	nowPlaying     *Track
	playing        bool
	premium        bool
	connected      bool
	recommended    []Track
	recSeeds       []string

	fetchSequences int
	created        []string
	createdIDs     []string
	replaced       map[string][]string
	added          map[string][]string
	removed        map[string][]string
	likedCalls     []string
	transfers      []string
	err            error
}

func newMockLibrary() *mockLibrary {
	return &mockLibrary{
		playlistTracks: make(map[string][]Track),
		replaced:       make(map[string][]string),
		added:          make(map[string][]string),
		removed:        make(map[string][]string),
		connected:      true,
		premium:        true,
	}
}

func (m *mockLibrary) Playlists(ctx context.Context) ([]Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchSequences++
	if m.err != nil {
		return nil, m.err
	}
	return m.playlists, nil
}

func (m *mockLibrary) Playlist(ctx context.Context, id string) (*Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.playlists {
		if m.playlists[i].ID == id {
			return &m.playlists[i], nil
		}
	}
	return nil, errors.New("playlist not found")
}

func (m *mockLibrary) PlaylistTracks(ctx context.Context, id string) ([]Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playlistTracks[id], nil
}

func (m *mockLibrary) LikedSongs(ctx context.Context) ([]Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.liked, nil
}

func (m *mockLibrary) Devices(ctx context.Context) ([]Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.devices, nil
}

func (m *mockLibrary) NowPlaying(ctx context.Context) (*Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nowPlaying, nil
}

func (m *mockLibrary) PlayerState(ctx context.Context) (bool, int, *Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing, 0, m.nowPlaying, nil
}

func (m *mockLibrary) TransferPlayback(ctx context.Context, deviceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers = append(m.transfers, deviceID)
	return m.err
}

func (m *mockLibrary) SetLiked(ctx context.Context, trackID string, liked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if liked {
		m.likedCalls = append(m.likedCalls, "+"+trackID)
	} else {
		m.likedCalls = append(m.likedCalls, "-"+trackID)
	}
	return nil
}

func (m *mockLibrary) Recommendations(ctx context.Context, seeds []string, limit int) ([]Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recSeeds = append([]string(nil), seeds...)
	return m.recommended, nil
}

func (m *mockLibrary) CreatePlaylist(ctx context.Context, name, description string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	id := "created-" + name
	m.created = append(m.created, name)
	m.createdIDs = append(m.createdIDs, id)
	m.playlists = append(m.playlists, Playlist{ID: id, Name: name, Backend: BackendCloudWeb})
	return id, nil
}

func (m *mockLibrary) ReplacePlaylistTracks(ctx context.Context, id string, trackIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.replaced[id] = trackIDs
	return nil
}

func (m *mockLibrary) AddTracksToPlaylist(ctx context.Context, id string, trackIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.added[id] = append(m.added[id], trackIDs...)
	return nil
}

func (m *mockLibrary) RemoveTracksFromPlaylist(ctx context.Context, id string, trackIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.removed[id] = append(m.removed[id], trackIDs...)
	return nil
}

func (m *mockLibrary) IsPremium(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.premium, nil
}

func (m *mockLibrary) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *mockLibrary) fetchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchSequences
}

// mockAppService records like-state persistence and generated-playlist
// registrations.
type mockAppService struct {
	mu          sync.Mutex
	available   bool
	savedLikes  []string
	registered  map[int]string
	topSongs    []Track
	topSongsErr error
}

func newMockAppService() *mockAppService {
	return &mockAppService{
		available:  true,
		registered: make(map[int]string),
	}
}

func (m *mockAppService) Available(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.available
}

func (m *mockAppService) SaveLikedState(ctx context.Context, trackID string, backend BackendKind, liked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.savedLikes = append(m.savedLikes, trackID)
	return nil
}

func (m *mockAppService) RegisterGeneratedPlaylist(ctx context.Context, playlistID string, typeID int, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registered[typeID] = playlistID
	return nil
}

func (m *mockAppService) WeeklyTopSongs(ctx context.Context, limit int) ([]Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.topSongs, m.topSongsErr
}

// mockSettings is an in-memory generated-playlist registry.
type mockSettings struct {
	mu  sync.Mutex
	ids map[int]string
}

func newMockSettings() *mockSettings {
	return &mockSettings{ids: make(map[int]string)}
}

func (m *mockSettings) GeneratedPlaylistID(typeID int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ids[typeID], nil
}

func (m *mockSettings) SetGeneratedPlaylistID(typeID int, playlistID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[typeID] = playlistID
	return nil
}

func (m *mockSettings) ClearGeneratedPlaylistID(typeID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ids, typeID)
	return nil
}

// mockTrackCache is a map-backed TrackCache.
type mockTrackCache struct {
	mu     sync.Mutex
	tracks map[string][]Track
	liked  map[string]bool
}

func newMockTrackCache() *mockTrackCache {
	return &mockTrackCache{
		tracks: make(map[string][]Track),
		liked:  make(map[string]bool),
	}
}

func (m *mockTrackCache) Tracks(playlistID string) ([]Track, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tracks[playlistID]
	return t, ok
}

func (m *mockTrackCache) PutTracks(playlistID string, tracks []Track) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracks[playlistID] = tracks
}

func (m *mockTrackCache) Invalidate(playlistID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tracks, playlistID)
}

func (m *mockTrackCache) LoadLiked(trackIDs []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range trackIDs {
		m.liked[id] = true
	}
}

func (m *mockTrackCache) IsLiked(trackID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.liked[trackID]
}

func (m *mockTrackCache) MarkLiked(trackID string, liked bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if liked {
		m.liked[trackID] = true
	} else {
		delete(m.liked, trackID)
	}
}

func (m *mockTrackCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracks = make(map[string][]Track)
	m.liked = make(map[string]bool)
}
