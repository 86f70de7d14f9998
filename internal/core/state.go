package core

import (
	"sync"
)

// StateStore is the canonical mutable state shared by every engine component:
// selection, running track, device list, per-backend caches and the build
// flags. Mutation is last-writer-wins; the mutex only keeps individual
// accessors data-race free, it does not serialize whole operations. The two
// build flags are the only cross-operation guards.
type StateStore struct {
	mu sync.RWMutex

	activeBackend BackendKind
	connected     bool
	premium       bool
	ready         bool

	selection    Selection
	runningTrack *Track

	devices  []Device
	deviceID string

	items         []PlaylistItem
	playlists     map[string]Playlist
	likedSongs    []Track
	recommended   []Track
	seedTrackIDs  []string

	buildingPlaylists      bool
	buildingCustomPlaylist bool
}

func NewStateStore() *StateStore {
	return &StateStore{
		playlists: make(map[string]Playlist),
	}
}

func (s *StateStore) ActiveBackend() BackendKind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeBackend
}

// SetActiveBackend switches the active backend and drops every cache that is
// scoped to it.
func (s *StateStore) SetActiveBackend(b BackendKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeBackend == b {
		return
	}
	s.activeBackend = b
	s.clearCachesLocked()
}

func (s *StateStore) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// SetConnected records the backend connection flag. Disconnecting drops the
// caches.
func (s *StateStore) SetConnected(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected && !connected {
		s.clearCachesLocked()
	}
	s.connected = connected
}

func (s *StateStore) Premium() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.premium
}

func (s *StateStore) SetPremium(premium bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.premium = premium
}

func (s *StateStore) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

func (s *StateStore) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

func (s *StateStore) Selection() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// SelectPlaylist sets the selected playlist and clears any selected track.
func (s *StateStore) SelectPlaylist(playlist *PlaylistItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = Selection{Playlist: playlist}
}

// SelectTrack sets the selected track together with its owning playlist.
// A track cannot be selected without a playlist context because command
// routing branches on playlist identity.
func (s *StateStore) SelectTrack(playlist, track *PlaylistItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = Selection{Playlist: playlist, Track: track}
}

func (s *StateStore) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = Selection{}
}

// RunningTrack returns a copy of the running track. Callers mutate the copy
// and write it back through SetRunningTrack.
func (s *StateStore) RunningTrack() *Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.runningTrack == nil {
		return nil
	}
	t := *s.runningTrack
	return &t
}

func (s *StateStore) SetRunningTrack(t *Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runningTrack = t
}

func (s *StateStore) Devices() []Device {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Device, len(s.devices))
	copy(out, s.devices)
	return out
}

func (s *StateStore) SetDevices(devices []Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices = devices
}

// DeviceID is the resolved target device for dependent commands, empty when
// none has been resolved yet.
func (s *StateStore) DeviceID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deviceID
}

func (s *StateStore) SetDeviceID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deviceID = id
}

func (s *StateStore) Items() []PlaylistItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PlaylistItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *StateStore) SetItems(items []PlaylistItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
}

func (s *StateStore) Playlist(id string) (Playlist, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.playlists[id]
	return p, ok
}

func (s *StateStore) PutPlaylist(p Playlist) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playlists[p.ID] = p
}

func (s *StateStore) LikedSongs() []Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Track, len(s.likedSongs))
	copy(out, s.likedSongs)
	return out
}

func (s *StateStore) SetLikedSongs(tracks []Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.likedSongs = tracks
}

func (s *StateStore) RecommendationTracks() []Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Track, len(s.recommended))
	copy(out, s.recommended)
	return out
}

func (s *StateStore) SetRecommendationTracks(tracks []Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recommended = tracks
}

// SeedTrackIDs is the pool used to pad short play queues and to request
// recommendations.
func (s *StateStore) SeedTrackIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.seedTrackIDs))
	copy(out, s.seedTrackIDs)
	return out
}

func (s *StateStore) SetSeedTrackIDs(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seedTrackIDs = ids
}

// TryBeginPlaylistBuild atomically claims the playlist build guard. It
// returns false when a build is already in flight.
func (s *StateStore) TryBeginPlaylistBuild() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buildingPlaylists {
		return false
	}
	s.buildingPlaylists = true
	return true
}

func (s *StateStore) EndPlaylistBuild() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buildingPlaylists = false
}

func (s *StateStore) BuildingPlaylists() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buildingPlaylists
}

// TryBeginCustomPlaylistBuild atomically claims the generated-playlist guard.
func (s *StateStore) TryBeginCustomPlaylistBuild() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buildingCustomPlaylist {
		return false
	}
	s.buildingCustomPlaylist = true
	return true
}

func (s *StateStore) EndCustomPlaylistBuild() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buildingCustomPlaylist = false
}

// ClearCaches drops every backend-derived cache. Called on explicit refresh,
// disconnect and backend switches.
func (s *StateStore) ClearCaches() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearCachesLocked()
}

func (s *StateStore) clearCachesLocked() {
	s.items = nil
	s.playlists = make(map[string]Playlist)
	s.likedSongs = nil
	s.recommended = nil
	s.devices = nil
	s.deviceID = ""
	s.selection = Selection{}
}
