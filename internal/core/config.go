package core

import (
	"time"
)

const (
	// CuratedTopPlaylistID is the vendor-curated global top list shown in the
	// curated section of the playlist cache.
	CuratedTopPlaylistID = "37i9dQZEVXbMDoHDwVN2tF"

	// WeeklyTopPlaylistName is the display name of the generated weekly top
	// songs playlist.
	WeeklyTopPlaylistName = "Software Top 40"

	// WeeklyTopPlaylistTypeID keys the generated weekly playlist in the
	// generated-playlist registry.
	WeeklyTopPlaylistTypeID = 1

	// LikedSongsPlaylistID is the id of the virtual liked-songs playlist.
	LikedSongsPlaylistID = "liked-songs"

	// LikedSongsPlaylistName is its display name.
	LikedSongsPlaylistName = "Liked Songs"

	// RecommendationPlaylistID is the id of the virtual recommendation list.
	RecommendationPlaylistID = "recommendations"

	// RecommendationSeedLimit caps the seed tracks sent with a recommendation
	// request, matching the backend's limit.
	RecommendationSeedLimit = 5

	// PlayQueueLimit is the number of track ids sent with an explicit-queue
	// play request. Shorter working sets are padded from the seed pool.
	PlayQueueLimit = 50
)

type Config struct {
	Spotify    SpotifyConfig
	AppService AppServiceConfig
	Server     ServerConfig
	Store      StoreConfig
	Discovery  DiscoveryConfig
	Reconcile  ReconcileConfig
	Log        LogConfig
	// Language selects the message catalog for user-facing notices.
	Language string
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	TokenPath    string
	// RequestsPerSecond caps outgoing web API calls.
	RequestsPerSecond float64
}

type AppServiceConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type StoreConfig struct {
	DBPath         string
	TrackCacheSize int
	LikedCapacity  uint
}

// DiscoveryConfig tunes the device discovery retry loop that follows a
// player launch.
type DiscoveryConfig struct {
	// LaunchDelay is the wait between launching a player and the first poll.
	LaunchDelay time.Duration
	// PollInterval is the wait between device polls.
	PollInterval time.Duration
	// MaxTries is the poll budget before giving up.
	MaxTries int
	// ContinuationDelay is the wait before running the deferred command,
	// whether a device was found or not.
	ContinuationDelay time.Duration
}

// ReconcileConfig tunes the periodic state reconciliation loops.
type ReconcileConfig struct {
	// TrackPollInterval drives the gather-current-track loop.
	TrackPollInterval time.Duration
	// SongSessionInterval drives the track-end check loop.
	SongSessionInterval time.Duration
	// PostCommandDelay is the wait between issuing a playback command and
	// re-querying the backend for the resulting state.
	PostCommandDelay time.Duration
	// LikedRestoreDelay is the wait before clearing the loading state after a
	// like toggle.
	LikedRestoreDelay time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

func DefaultConfig() *Config {
	return &Config{
		Spotify: SpotifyConfig{
			RedirectURL:       "http://localhost:8080/callback",
			TokenPath:         "./spotify_token.json",
			RequestsPerSecond: 4,
		},
		AppService: AppServiceConfig{
			Timeout: 10 * time.Second,
		},
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         5280,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			DBPath:         "./tunetime.db",
			TrackCacheSize: 128,
			LikedCapacity:  100000,
		},
		Discovery: DiscoveryConfig{
			LaunchDelay:       1500 * time.Millisecond,
			PollInterval:      2 * time.Second,
			MaxTries:          7,
			ContinuationDelay: time.Second,
		},
		Reconcile: ReconcileConfig{
			TrackPollInterval:   5 * time.Second,
			SongSessionInterval: 5 * time.Second,
			PostCommandDelay:    time.Second,
			LikedRestoreDelay:   500 * time.Millisecond,
		},
		Language: "en",
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
