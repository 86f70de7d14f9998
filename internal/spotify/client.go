// Package spotify provides the cloud web API backend: playback control,
// playlists, liked songs and devices.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"tunetime/internal/core"
	"tunetime/pkg/musiclink"
)

const (
	// FilePermission is the permission for token files
	FilePermission = 0600
	// PageLimit is the page size for paginated catalog fetches
	PageLimit = 50
	// PremiumProduct is the product string of premium accounts
	PremiumProduct = "premium"

	deviceTypeComputer   = "Computer"
	deviceTypeSmartphone = "Smartphone"
)

type Client struct {
	config  *core.SpotifyConfig
	logger  *zap.Logger
	client  *spotify.Client
	auth    *spotifyauth.Authenticator
	limiter *rate.Limiter
	openURL func(ctx context.Context, url string) error

	userID  string
	premium bool
}

type TokenData struct {
	Token *oauth2.Token `json:"token"`
}

// NewClient builds an unauthenticated client. openURL launches the system
// browser for the web player.
func NewClient(config *core.SpotifyConfig, openURL func(ctx context.Context, url string) error, logger *zap.Logger) *Client {
	auth := spotifyauth.New(
		spotifyauth.WithRedirectURL(config.RedirectURL),
		spotifyauth.WithScopes(
			spotifyauth.ScopePlaylistModifyPublic,
			spotifyauth.ScopePlaylistModifyPrivate,
			spotifyauth.ScopePlaylistReadPrivate,
			spotifyauth.ScopeUserLibraryRead,
			spotifyauth.ScopeUserLibraryModify,
			spotifyauth.ScopeUserModifyPlaybackState,
			spotifyauth.ScopeUserReadCurrentlyPlaying,
			spotifyauth.ScopeUserReadPlaybackState,
			spotifyauth.ScopeUserTopRead,
		),
		spotifyauth.WithClientID(config.ClientID),
		spotifyauth.WithClientSecret(config.ClientSecret),
	)

	rps := config.RequestsPerSecond
	if rps <= 0 {
		rps = 4
	}

	return &Client{
		config:  config,
		logger:  logger.Named("spotify"),
		auth:    auth,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		openURL: openURL,
	}
}

func (c *Client) Authenticate(ctx context.Context) error {
	token, err := c.loadToken()
	if err != nil {
		c.logger.Info("No saved token found, starting OAuth flow")
		return c.startOAuthFlow(ctx)
	}

	client := spotify.New(c.auth.Client(ctx, token))
	c.client = client

	user, err := client.CurrentUser(ctx)
	if err != nil {
		c.logger.Warn("Saved token invalid, starting OAuth flow", zap.Error(err))
		return c.startOAuthFlow(ctx)
	}

	c.userID = user.ID
	c.premium = user.Product == PremiumProduct
	c.logger.Info("Authenticated successfully",
		zap.String("user", user.DisplayName),
		zap.Bool("premium", c.premium))
	return nil
}

func (c *Client) Kind() core.BackendKind { return core.BackendCloudWeb }

func (c *Client) Connected() bool { return c.client != nil }

func (c *Client) IsPremium(ctx context.Context) (bool, error) {
	if c.client == nil {
		return false, fmt.Errorf("client not authenticated")
	}
	if err := c.wait(ctx); err != nil {
		return false, err
	}
	user, err := c.client.CurrentUser(ctx)
	if err != nil {
		return c.premium, fmt.Errorf("failed to get current user: %w", err)
	}
	c.premium = user.Product == PremiumProduct
	return c.premium, nil
}

// Play issues a playback command. Explicit queues go out as track URIs with
// an offset; otherwise the playlist context or single track URI is used.
func (c *Client) Play(ctx context.Context, req core.PlayRequest) error {
	if c.client == nil {
		return fmt.Errorf("client not authenticated")
	}
	if err := c.wait(ctx); err != nil {
		return err
	}

	opts := &spotify.PlayOptions{}
	if req.DeviceID != "" {
		id := spotify.ID(req.DeviceID)
		opts.DeviceID = &id
	}

	switch {
	case len(req.TrackIDs) > 0:
		uris := make([]spotify.URI, len(req.TrackIDs))
		for i, id := range req.TrackIDs {
			uris[i] = spotify.URI(musiclink.TrackURI(id))
		}
		opts.URIs = uris
		if req.Offset > 0 && req.Offset < len(uris) {
			pos := req.Offset
			opts.PlaybackOffset = &spotify.PlaybackOffset{Position: &pos}
		}
	case req.PlaylistID != "":
		uri := spotify.URI(musiclink.PlaylistURI(req.PlaylistID))
		opts.PlaybackContext = &uri
		if req.TrackID != "" {
			trackURI := spotify.URI(musiclink.TrackURI(req.TrackID))
			opts.PlaybackOffset = &spotify.PlaybackOffset{URI: trackURI}
		}
	case req.TrackID != "":
		opts.URIs = []spotify.URI{spotify.URI(musiclink.TrackURI(req.TrackID))}
	}

	if err := c.client.PlayOpt(ctx, opts); err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}
	return nil
}

func (c *Client) Pause(ctx context.Context, deviceID string) error {
	if c.client == nil {
		return fmt.Errorf("client not authenticated")
	}
	if err := c.wait(ctx); err != nil {
		return err
	}
	if err := c.client.PauseOpt(ctx, playOpts(deviceID)); err != nil {
		return fmt.Errorf("failed to pause playback: %w", err)
	}
	return nil
}

func (c *Client) Next(ctx context.Context, deviceID string) error {
	if c.client == nil {
		return fmt.Errorf("client not authenticated")
	}
	if err := c.wait(ctx); err != nil {
		return err
	}
	if err := c.client.NextOpt(ctx, playOpts(deviceID)); err != nil {
		return fmt.Errorf("failed to skip to next track: %w", err)
	}
	return nil
}

func (c *Client) Previous(ctx context.Context, deviceID string) error {
	if c.client == nil {
		return fmt.Errorf("client not authenticated")
	}
	if err := c.wait(ctx); err != nil {
		return err
	}
	if err := c.client.PreviousOpt(ctx, playOpts(deviceID)); err != nil {
		return fmt.Errorf("failed to skip to previous track: %w", err)
	}
	return nil
}

// Launch opens the web player in the system browser, narrowed to the
// requested track or playlist.
func (c *Client) Launch(ctx context.Context, opts core.LaunchOptions) error {
	url := WebPlayerURL(opts)
	if c.openURL == nil {
		return fmt.Errorf("no browser opener configured")
	}
	return c.openURL(ctx, url)
}

// WebPlayerURL builds the open.spotify.com link for a launch request.
func WebPlayerURL(opts core.LaunchOptions) string {
	switch {
	case opts.TrackID != "":
		return musiclink.TrackURL(opts.TrackID)
	case opts.PlaylistID == core.LikedSongsPlaylistID:
		return musiclink.LikedSongsURL()
	case opts.PlaylistID != "":
		return musiclink.PlaylistURL(opts.PlaylistID)
	}
	return musiclink.HomeURL()
}

func (c *Client) Playlists(ctx context.Context) ([]core.Playlist, error) {
	if c.client == nil {
		return nil, fmt.Errorf("client not authenticated")
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	page, err := c.client.CurrentUsersPlaylists(ctx, spotify.Limit(PageLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to get playlists: %w", err)
	}

	var playlists []core.Playlist
	for {
		for i := range page.Playlists {
			playlists = append(playlists, convertPlaylist(&page.Playlists[i]))
		}
		err = c.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to page playlists: %w", err)
		}
	}
	return playlists, nil
}

func (c *Client) Playlist(ctx context.Context, playlistID string) (*core.Playlist, error) {
	if c.client == nil {
		return nil, fmt.Errorf("client not authenticated")
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	full, err := c.client.GetPlaylist(ctx, spotify.ID(playlistID))
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}
	p := convertPlaylist(&full.SimplePlaylist)
	p.TrackCount = int(full.Tracks.Total)
	return &p, nil
}

func (c *Client) PlaylistTracks(ctx context.Context, playlistID string) ([]core.Track, error) {
	if c.client == nil {
		return nil, fmt.Errorf("client not authenticated")
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	page, err := c.client.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(PageLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	var tracks []core.Track
	for {
		for i := range page.Items {
			full := page.Items[i].Track.Track
			if full == nil {
				continue
			}
			t := convertFullTrack(full)
			t.PlaylistID = playlistID
			t.Position = len(tracks)
			tracks = append(tracks, t)
		}
		err = c.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to page playlist items: %w", err)
		}
	}
	return tracks, nil
}

func (c *Client) LikedSongs(ctx context.Context) ([]core.Track, error) {
	if c.client == nil {
		return nil, fmt.Errorf("client not authenticated")
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	page, err := c.client.CurrentUsersTracks(ctx, spotify.Limit(PageLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to get liked songs: %w", err)
	}

	var tracks []core.Track
	for {
		for i := range page.Tracks {
			t := convertFullTrack(&page.Tracks[i].FullTrack)
			t.Position = len(tracks)
			tracks = append(tracks, t)
		}
		err = c.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to page liked songs: %w", err)
		}
	}
	return tracks, nil
}

func (c *Client) Devices(ctx context.Context) ([]core.Device, error) {
	if c.client == nil {
		return nil, fmt.Errorf("client not authenticated")
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	devices, err := c.client.PlayerDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get devices: %w", err)
	}

	out := make([]core.Device, 0, len(devices))
	for _, d := range devices {
		out = append(out, core.Device{
			ID:     string(d.ID),
			Name:   d.Name,
			Type:   convertDeviceType(d.Type),
			Active: d.Active,
		})
	}
	return out, nil
}

func (c *Client) NowPlaying(ctx context.Context) (*core.Track, error) {
	if c.client == nil {
		return nil, fmt.Errorf("client not authenticated")
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	currently, err := c.client.PlayerCurrentlyPlaying(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get currently playing: %w", err)
	}
	if currently == nil || currently.Item == nil {
		return nil, nil
	}
	t := convertFullTrack(currently.Item)
	if currently.Playing {
		t.Status = core.StatusPlaying
	} else {
		t.Status = core.StatusPaused
	}
	return &t, nil
}

func (c *Client) PlayerState(ctx context.Context) (bool, int, *core.Track, error) {
	if c.client == nil {
		return false, 0, nil, fmt.Errorf("client not authenticated")
	}
	if err := c.wait(ctx); err != nil {
		return false, 0, nil, err
	}

	state, err := c.client.PlayerState(ctx)
	if err != nil {
		return false, 0, nil, fmt.Errorf("failed to get player state: %w", err)
	}
	if state == nil || state.Item == nil {
		return false, 0, nil, nil
	}
	t := convertFullTrack(state.Item)
	return state.Playing, int(state.Progress), &t, nil
}

func (c *Client) TransferPlayback(ctx context.Context, deviceID string) error {
	if c.client == nil {
		return fmt.Errorf("client not authenticated")
	}
	if err := c.wait(ctx); err != nil {
		return err
	}
	if err := c.client.TransferPlayback(ctx, spotify.ID(deviceID), true); err != nil {
		return fmt.Errorf("failed to transfer playback: %w", err)
	}
	c.logger.Info("Playback transferred", zap.String("deviceID", deviceID))
	return nil
}

func (c *Client) SetLiked(ctx context.Context, trackID string, liked bool) error {
	if c.client == nil {
		return fmt.Errorf("client not authenticated")
	}
	if err := c.wait(ctx); err != nil {
		return err
	}

	var err error
	if liked {
		err = c.client.AddTracksToLibrary(ctx, spotify.ID(trackID))
	} else {
		err = c.client.RemoveTracksFromLibrary(ctx, spotify.ID(trackID))
	}
	if err != nil {
		return fmt.Errorf("failed to update liked state: %w", err)
	}
	c.logger.Debug("Liked state updated",
		zap.String("trackID", trackID),
		zap.Bool("liked", liked))
	return nil
}

func (c *Client) Recommendations(ctx context.Context, seedTrackIDs []string, limit int) ([]core.Track, error) {
	if c.client == nil {
		return nil, fmt.Errorf("client not authenticated")
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	// The recommendation endpoint accepts at most five seed tracks.
	if len(seedTrackIDs) > 5 {
		seedTrackIDs = seedTrackIDs[:5]
	}
	seeds := spotify.Seeds{}
	for _, id := range seedTrackIDs {
		seeds.Tracks = append(seeds.Tracks, spotify.ID(id))
	}

	recs, err := c.client.GetRecommendations(ctx, seeds, nil, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendations: %w", err)
	}

	tracks := make([]core.Track, 0, len(recs.Tracks))
	for i := range recs.Tracks {
		tracks = append(tracks, convertSimpleTrack(&recs.Tracks[i]))
	}
	return tracks, nil
}

func (c *Client) CreatePlaylist(ctx context.Context, name, description string) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("client not authenticated")
	}
	if err := c.wait(ctx); err != nil {
		return "", err
	}

	playlist, err := c.client.CreatePlaylistForUser(ctx, c.userID, name, description, false, false)
	if err != nil {
		return "", fmt.Errorf("failed to create playlist: %w", err)
	}
	c.logger.Info("Playlist created",
		zap.String("name", name),
		zap.String("playlistID", string(playlist.ID)))
	return string(playlist.ID), nil
}

func (c *Client) ReplacePlaylistTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if c.client == nil {
		return fmt.Errorf("client not authenticated")
	}
	if err := c.wait(ctx); err != nil {
		return err
	}
	if err := c.client.ReplacePlaylistTracks(ctx, spotify.ID(playlistID), toIDs(trackIDs)...); err != nil {
		return fmt.Errorf("failed to replace playlist tracks: %w", err)
	}
	return nil
}

func (c *Client) AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	if c.client == nil {
		return fmt.Errorf("client not authenticated")
	}
	if err := c.wait(ctx); err != nil {
		return err
	}
	if _, err := c.client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), toIDs(trackIDs)...); err != nil {
		return fmt.Errorf("failed to add tracks to playlist: %w", err)
	}
	return nil
}

func (c *Client) RemoveTracksFromPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	if c.client == nil {
		return fmt.Errorf("client not authenticated")
	}
	if err := c.wait(ctx); err != nil {
		return err
	}
	if _, err := c.client.RemoveTracksFromPlaylist(ctx, spotify.ID(playlistID), toIDs(trackIDs)...); err != nil {
		return fmt.Errorf("failed to remove tracks from playlist: %w", err)
	}
	return nil
}

// wait blocks until the rate limiter admits the next API call.
func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}

func (c *Client) startOAuthFlow(ctx context.Context) error {
	state := "tunetime-auth-state"
	authURL := c.auth.AuthURL(state)

	fmt.Printf("Please visit the following URL to authorize the application:\n%s\n", authURL)
	fmt.Print("Enter the authorization code: ")

	var code string
	if _, err := fmt.Scanln(&code); err != nil {
		return fmt.Errorf("failed to read authorization code: %w", err)
	}

	token, err := c.auth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange code for token: %w", err)
	}

	if saveErr := c.saveToken(token); saveErr != nil {
		c.logger.Warn("Failed to save token", zap.Error(saveErr))
	}

	client := spotify.New(c.auth.Client(ctx, token))
	c.client = client

	user, err := client.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	c.userID = user.ID
	c.premium = user.Product == PremiumProduct
	c.logger.Info("OAuth flow completed successfully", zap.String("user", user.DisplayName))
	return nil
}

func (c *Client) loadToken() (*oauth2.Token, error) {
	file, err := os.Open(c.config.TokenPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	var tokenData TokenData
	if err := json.Unmarshal(data, &tokenData); err != nil {
		return nil, err
	}

	return tokenData.Token, nil
}

func (c *Client) saveToken(token *oauth2.Token) error {
	tokenData := TokenData{Token: token}

	data, err := json.MarshalIndent(tokenData, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.config.TokenPath, data, FilePermission)
}

func playOpts(deviceID string) *spotify.PlayOptions {
	if deviceID == "" {
		return nil
	}
	id := spotify.ID(deviceID)
	return &spotify.PlayOptions{DeviceID: &id}
}

func toIDs(trackIDs []string) []spotify.ID {
	out := make([]spotify.ID, len(trackIDs))
	for i, id := range trackIDs {
		out[i] = spotify.ID(id)
	}
	return out
}

func convertPlaylist(p *spotify.SimplePlaylist) core.Playlist {
	return core.Playlist{
		ID:         string(p.ID),
		Name:       p.Name,
		Backend:    core.BackendCloudWeb,
		TrackCount: int(p.Tracks.Total),
	}
}

func convertFullTrack(t *spotify.FullTrack) core.Track {
	return core.Track{
		ID:         string(t.ID),
		URI:        string(t.URI),
		Name:       t.Name,
		Artist:     joinArtists(t.Artists),
		Album:      t.Album.Name,
		Popularity: int(t.Popularity),
		DurationMS: int(t.Duration),
		Backend:    core.BackendCloudWeb,
		Status:     core.StatusNotAssigned,
	}
}

func convertSimpleTrack(t *spotify.SimpleTrack) core.Track {
	return core.Track{
		ID:         string(t.ID),
		URI:        string(t.URI),
		Name:       t.Name,
		Artist:     joinArtists(t.Artists),
		DurationMS: int(t.Duration),
		Backend:    core.BackendCloudWeb,
		Status:     core.StatusNotAssigned,
	}
}

func joinArtists(artists []spotify.SimpleArtist) string {
	if len(artists) == 0 {
		return "Unknown"
	}
	name := artists[0].Name
	for _, a := range artists[1:] {
		name += ", " + a.Name
	}
	return name
}

func convertDeviceType(t string) core.DeviceType {
	switch t {
	case deviceTypeComputer:
		return core.DeviceComputer
	case deviceTypeSmartphone:
		return core.DeviceSmartphone
	}
	return core.DeviceOther
}
