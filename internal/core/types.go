package core

import (
	"context"
)

// BackendKind identifies one of the three playback sources.
type BackendKind int

const (
	// BackendCloudWeb is the streaming vendor's web API.
	BackendCloudWeb BackendKind = iota
	// BackendCloudDesktop is the vendor's native desktop app, driven by OS scripting.
	BackendCloudDesktop
	// BackendLocalDesktop is the local media-library desktop app.
	BackendLocalDesktop
)

func (b BackendKind) String() string {
	switch b {
	case BackendCloudWeb:
		return "cloud-web"
	case BackendCloudDesktop:
		return "cloud-desktop"
	case BackendLocalDesktop:
		return "local-desktop"
	}
	return "unknown"
}

// TrackStatus is the playback state of a track relative to the running track.
type TrackStatus int

const (
	// StatusNotAssigned indicates the track is not the running track
	StatusNotAssigned TrackStatus = iota
	// StatusPlaying indicates the track is the running track and playback is active
	StatusPlaying
	// StatusPaused indicates the track is the running track and playback is paused
	StatusPaused
)

func (s TrackStatus) String() string {
	switch s {
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	}
	return "notassigned"
}

// Track is a single playable item. Status is recomputed against the running
// track on every reconcile pass.
type Track struct {
	ID         string
	URI        string
	Name       string
	Artist     string
	Album      string
	Popularity int
	DurationMS int
	Backend    BackendKind
	Status     TrackStatus

	// PlaylistID is a weak back-reference set while the track sits inside a
	// resolved playlist's track list. It routes commands, it does not own.
	PlaylistID string
	Position   int
}

// ItemKind discriminates the polymorphic PlaylistItem.
type ItemKind int

const (
	// ItemPlaylist is a real or virtual playlist
	ItemPlaylist ItemKind = iota
	// ItemTrack is a playable track
	ItemTrack
	// ItemAction is a non-playable action button
	ItemAction
	// ItemRecommendation is a track from the recommendation working set
	ItemRecommendation
)

func (k ItemKind) String() string {
	switch k {
	case ItemPlaylist:
		return "playlist"
	case ItemTrack:
		return "track"
	case ItemAction:
		return "action"
	case ItemRecommendation:
		return "recommendation"
	}
	return "unknown"
}

// ActionID identifies the well-known action buttons injected into the item list.
type ActionID string

const (
	ActionConnect          ActionID = "connect"
	ActionPremiumRequired  ActionID = "premium-required"
	ActionDashboard        ActionID = "dashboard"
	ActionWebAnalytics     ActionID = "web-analytics"
	ActionReadme           ActionID = "readme"
	ActionSwitchDevice     ActionID = "switch-device"
	ActionSwitchToCloud    ActionID = "switch-to-cloud"
	ActionSwitchToLocal    ActionID = "switch-to-local"
	ActionGeneratePlaylist ActionID = "generate-playlist"
	ActionLineBreak        ActionID = "line-break"
)

// PlaylistItem is the polymorphic element of the item list served to UI
// collaborators: a playlist, a track or an action button.
type PlaylistItem struct {
	Kind    ItemKind
	ID      string
	Name    string
	Tooltip string
	Backend BackendKind

	// playlist fields
	TrackCount int
	Curated    bool

	// track fields
	Track *Track

	// action fields
	Action ActionID
}

// Playlist is a backend playlist header. Its tracks are fetched lazily and
// cached by playlist id.
type Playlist struct {
	ID         string
	Name       string
	Backend    BackendKind
	TrackCount int
	TypeID     int
}

// DeviceType classifies backend-reported playback endpoints.
type DeviceType int

const (
	DeviceComputer DeviceType = iota
	DeviceSmartphone
	DeviceOther
)

func (d DeviceType) String() string {
	switch d {
	case DeviceComputer:
		return "computer"
	case DeviceSmartphone:
		return "smartphone"
	}
	return "other"
}

// Device is a backend-reported playback endpoint. Ephemeral, never persisted
// beyond the current session.
type Device struct {
	ID     string
	Name   string
	Type   DeviceType
	Active bool
}

// Selection is the user's current intent: at most one playlist and at most
// one track. Selecting a track implies selecting its owning playlist.
type Selection struct {
	Playlist *PlaylistItem
	Track    *PlaylistItem
}

// LaunchOptions narrows what a freshly launched player should show or play.
type LaunchOptions struct {
	TrackID    string
	PlaylistID string
	Quietly    bool
}

// PlayRequest describes one playback command for a Player. When TrackIDs is
// set the engine supplies the whole play queue itself (liked songs and
// recommendation sessions) and Offset selects the starting position.
type PlayRequest struct {
	DeviceID   string
	TrackID    string
	TrackURI   string
	PlaylistID string
	TrackIDs   []string
	Offset     int
}

// Player is the command surface every backend implements. Implementations
// never panic on failure; errors come back as values and are converted to
// user notices at the dispatcher boundary.
type Player interface {
	Kind() BackendKind
	Play(ctx context.Context, req PlayRequest) error
	Pause(ctx context.Context, deviceID string) error
	Next(ctx context.Context, deviceID string) error
	Previous(ctx context.Context, deviceID string) error
	Launch(ctx context.Context, opts LaunchOptions) error
}

// Library is the catalog surface: playlists, tracks, liked songs, devices and
// library edits.
type Library interface {
	Playlists(ctx context.Context) ([]Playlist, error)
	Playlist(ctx context.Context, playlistID string) (*Playlist, error)
	PlaylistTracks(ctx context.Context, playlistID string) ([]Track, error)
	LikedSongs(ctx context.Context) ([]Track, error)
	Devices(ctx context.Context) ([]Device, error)
	NowPlaying(ctx context.Context) (*Track, error)
	PlayerState(ctx context.Context) (playing bool, progressMS int, track *Track, err error)
	TransferPlayback(ctx context.Context, deviceID string) error
	SetLiked(ctx context.Context, trackID string, liked bool) error
	Recommendations(ctx context.Context, seedTrackIDs []string, limit int) ([]Track, error)
	CreatePlaylist(ctx context.Context, name, description string) (string, error)
	ReplacePlaylistTracks(ctx context.Context, playlistID string, trackIDs []string) error
	AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error
	RemoveTracksFromPlaylist(ctx context.Context, playlistID string, trackIDs []string) error
	IsPremium(ctx context.Context) (bool, error)
	Connected() bool
}

// AppService is the vendor application web API the engine persists app-level
// state to: like flags, the generated-playlist registry and the weekly top
// songs feed.
type AppService interface {
	Available(ctx context.Context) bool
	SaveLikedState(ctx context.Context, trackID string, backend BackendKind, liked bool) error
	RegisterGeneratedPlaylist(ctx context.Context, playlistID string, typeID int, name string) error
	WeeklyTopSongs(ctx context.Context, limit int) ([]Track, error)
}

// Notifier is how the engine reaches its UI collaborators: user-visible
// notices plus the refresh signals.
type Notifier interface {
	Info(msg string)
	Error(msg string)
	SelectionChanged()
	Loading(loading bool)
	PlaylistsChanged()
	DevicesChanged()
}

// LaunchChoice is the answer to a player-launch confirmation prompt.
type LaunchChoice int

const (
	// LaunchNone means the user dismissed the prompt
	LaunchNone LaunchChoice = iota
	// LaunchWeb launches the cloud web player
	LaunchWeb
	// LaunchDesktop launches the cloud desktop app
	LaunchDesktop
)

// LaunchPrompter asks the user which player to launch when none is running.
type LaunchPrompter interface {
	ConfirmLaunch(ctx context.Context) LaunchChoice
}

// TrackCache is the bounded playlist-id to track-list cache plus the liked
// membership index.
type TrackCache interface {
	Tracks(playlistID string) ([]Track, bool)
	PutTracks(playlistID string, tracks []Track)
	Invalidate(playlistID string)
	LoadLiked(trackIDs []string)
	IsLiked(trackID string) bool
	MarkLiked(trackID string, liked bool)
	Clear()
}

// SettingsStore persists the small amount of durable state the engine owns:
// the oauth token and the generated-playlist id registry.
type SettingsStore interface {
	GeneratedPlaylistID(typeID int) (string, error)
	SetGeneratedPlaylistID(typeID int, playlistID string) error
	ClearGeneratedPlaylistID(typeID int) error
}
