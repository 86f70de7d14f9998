package desktop

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"tunetime/internal/core"
	"tunetime/pkg/fuzzy"
)

// Library reads the local media-library app's playlists through scripting.
// It covers the catalog subset the local backend actually has; everything
// tied to the cloud account reports ErrUnsupported.
type Library struct {
	run    scriptRunner
	logger *zap.Logger
}

// ErrUnsupported marks operations the local desktop app has no equivalent
// for.
var ErrUnsupported = fmt.Errorf("not supported by the local desktop app")

func NewLibrary(logger *zap.Logger) *Library {
	return &Library{
		run:    runOsascript,
		logger: logger.Named("desktop-library"),
	}
}

func (l *Library) Connected() bool { return Capable() }

func (l *Library) Playlists(ctx context.Context) ([]core.Playlist, error) {
	out, err := l.run(ctx, tellApp(LocalAppName, "get name of user playlists"))
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	if out == "" {
		return nil, nil
	}

	names := strings.Split(out, ", ")
	playlists := make([]core.Playlist, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		playlists = append(playlists, core.Playlist{
			// Local playlists have no stable backend id; the name is the id.
			ID:      name,
			Name:    name,
			Backend: core.BackendLocalDesktop,
		})
	}
	return playlists, nil
}

// Playlist looks a playlist up by name. Matching is tolerant of case and
// diacritic differences because the name doubles as the id.
func (l *Library) Playlist(ctx context.Context, playlistID string) (*core.Playlist, error) {
	playlists, err := l.Playlists(ctx)
	if err != nil {
		return nil, err
	}
	for i := range playlists {
		if fuzzy.Match(playlists[i].ID, playlistID) {
			return &playlists[i], nil
		}
	}
	return nil, fmt.Errorf("playlist %q not found", playlistID)
}

func (l *Library) PlaylistTracks(ctx context.Context, playlistID string) ([]core.Track, error) {
	if p, err := l.Playlist(ctx, playlistID); err == nil {
		playlistID = p.ID
	}
	script := tellApp(LocalAppName, fmt.Sprintf("get name of tracks of user playlist %q", playlistID))
	out, err := l.run(ctx, script)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlist tracks: %w", err)
	}
	if out == "" {
		return nil, nil
	}

	names := strings.Split(out, ", ")
	tracks := make([]core.Track, 0, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		tracks = append(tracks, core.Track{
			ID:         name,
			Name:       name,
			Backend:    core.BackendLocalDesktop,
			PlaylistID: playlistID,
			Position:   i,
		})
	}
	return tracks, nil
}

func (l *Library) NowPlaying(ctx context.Context) (*core.Track, error) {
	out, err := l.run(ctx, tellApp(LocalAppName, "get name of current track"))
	if err != nil || out == "" {
		return nil, nil
	}
	return &core.Track{ID: out, Name: out, Backend: core.BackendLocalDesktop}, nil
}

func (l *Library) PlayerState(ctx context.Context) (bool, int, *core.Track, error) {
	state, err := l.run(ctx, tellApp(LocalAppName, "get player state as string"))
	if err != nil {
		return false, 0, nil, err
	}
	track, _ := l.NowPlaying(ctx)
	return state == "playing", 0, track, nil
}

func (l *Library) LikedSongs(context.Context) ([]core.Track, error) { return nil, ErrUnsupported }

func (l *Library) Devices(context.Context) ([]core.Device, error) { return nil, ErrUnsupported }

func (l *Library) TransferPlayback(context.Context, string) error { return ErrUnsupported }

func (l *Library) SetLiked(context.Context, string, bool) error { return ErrUnsupported }

func (l *Library) Recommendations(context.Context, []string, int) ([]core.Track, error) {
	return nil, ErrUnsupported
}

func (l *Library) CreatePlaylist(context.Context, string, string) (string, error) {
	return "", ErrUnsupported
}

func (l *Library) ReplacePlaylistTracks(context.Context, string, []string) error {
	return ErrUnsupported
}

func (l *Library) AddTracksToPlaylist(context.Context, string, []string) error {
	return ErrUnsupported
}

func (l *Library) RemoveTracksFromPlaylist(context.Context, string, []string) error {
	return ErrUnsupported
}

func (l *Library) IsPremium(context.Context) (bool, error) { return false, ErrUnsupported }
