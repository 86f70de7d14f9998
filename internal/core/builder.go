package core

import (
	"context"

	"go.uber.org/zap"

	"tunetime/internal/i18n"
)

// PlaylistCacheBuilder produces the authoritative item list for the active
// backend: action buttons mixed with real playlists, in a fixed order. Raw
// playlist fetches are idempotent per session; sub-resource failures degrade
// to omitted sections instead of aborting the build.
type PlaylistCacheBuilder struct {
	state    *StateStore
	cloud    Library
	local    Library
	cache    TrackCache
	settings SettingsStore
	notifier Notifier
	loc      *i18n.Localizer
	logger   *zap.Logger
}

func NewPlaylistCacheBuilder(
	state *StateStore,
	cloud Library,
	local Library,
	cache TrackCache,
	settings SettingsStore,
	notifier Notifier,
	loc *i18n.Localizer,
	logger *zap.Logger,
) *PlaylistCacheBuilder {
	return &PlaylistCacheBuilder{
		state:    state,
		cloud:    cloud,
		local:    local,
		cache:    cache,
		settings: settings,
		notifier: notifier,
		loc:      loc,
		logger:   logger.Named("builder"),
	}
}

// Refresh rebuilds the item list for the active backend. Re-entrant calls
// while a build is in flight are no-ops.
func (b *PlaylistCacheBuilder) Refresh(ctx context.Context) {
	if !b.state.TryBeginPlaylistBuild() {
		b.logger.Debug("build already in progress, skipping")
		return
	}
	defer b.state.EndPlaylistBuild()

	var items []PlaylistItem
	switch b.state.ActiveBackend() {
	case BackendLocalDesktop:
		items = b.buildLocal(ctx)
	default:
		items = b.buildCloud(ctx)
	}

	b.state.SetItems(items)
	b.state.SetReady(true)
	b.notifier.PlaylistsChanged()
	b.logger.Info("playlist cache built",
		zap.Stringer("backend", b.state.ActiveBackend()),
		zap.Int("items", len(items)))
}

func (b *PlaylistCacheBuilder) buildCloud(ctx context.Context) []PlaylistItem {
	connected := b.cloud.Connected()
	b.state.SetConnected(connected)

	premium := false
	if connected {
		var err error
		premium, err = b.cloud.IsPremium(ctx)
		if err != nil {
			b.logger.Debug("premium check failed", zap.Error(err))
		}
	}
	b.state.SetPremium(premium)

	var items []PlaylistItem

	if connected && !premium {
		items = append(items, actionItem(ActionPremiumRequired,
			b.loc.T("item.premium_required"), b.loc.T("item.premium_required.tooltip")))
	}
	if !connected {
		items = append(items, actionItem(ActionConnect,
			b.loc.T("item.connect"), b.loc.T("item.connect.tooltip")))
	}

	items = append(items,
		actionItem(ActionDashboard, b.loc.T("item.dashboard"), ""),
		actionItem(ActionWebAnalytics, b.loc.T("item.web_analytics"), ""),
		actionItem(ActionReadme, b.loc.T("item.readme"), ""),
		actionItem(ActionSwitchDevice, b.loc.T("item.switch_device"), ""),
		actionItem(ActionSwitchToLocal, b.loc.T("item.switch_to_local"), ""),
		lineBreak(),
	)

	if !connected {
		return items
	}

	raw, err := b.cloud.Playlists(ctx)
	if err != nil {
		b.logger.Warn("playlist fetch failed", zap.Error(err))
		raw = nil
	}
	for _, p := range raw {
		b.state.PutPlaylist(p)
	}

	items = append(items, actionItem(ActionGeneratePlaylist,
		b.loc.T("item.generate_playlist"), b.loc.T("item.generate_playlist.tooltip")))

	// Generated playlists surface first, keyed by their registered type ids.
	generatedIDs := make(map[string]bool)
	if id, err := b.settings.GeneratedPlaylistID(WeeklyTopPlaylistTypeID); err == nil && id != "" {
		if p, ok := findPlaylist(raw, id); ok {
			generatedIDs[id] = true
			items = append(items, playlistItem(p, false))
		}
	}

	// The curated top list is fetched by its fixed id when the user does not
	// follow it.
	if p, ok := findPlaylist(raw, CuratedTopPlaylistID); ok {
		items = append(items, playlistItem(p, true))
	} else if p, err := b.cloud.Playlist(ctx, CuratedTopPlaylistID); err == nil && p != nil {
		b.state.PutPlaylist(*p)
		items = append(items, playlistItem(*p, true))
	} else if err != nil {
		b.logger.Debug("curated playlist fetch failed", zap.Error(err))
	}

	if liked := b.buildLikedFolder(ctx); liked != nil {
		items = append(items, *liked)
	}
	if recs := b.state.RecommendationTracks(); len(recs) > 0 {
		items = append(items, b.recommendationFolder(len(recs)))
	}

	if seeds := b.state.SeedTrackIDs(); len(seeds) == 0 {
		go b.buildSeeds(context.WithoutCancel(ctx), raw)
	} else if len(b.state.RecommendationTracks()) == 0 {
		// A cache clear keeps the seed pool but drops the working set.
		go b.buildRecommendations(context.WithoutCancel(ctx), seeds)
	}

	items = append(items, lineBreak())
	for _, p := range raw {
		if p.ID == CuratedTopPlaylistID || generatedIDs[p.ID] {
			continue
		}
		items = append(items, playlistItem(p, false))
	}
	return items
}

func (b *PlaylistCacheBuilder) buildLocal(ctx context.Context) []PlaylistItem {
	items := []PlaylistItem{
		actionItem(ActionSwitchToCloud, b.loc.T("item.switch_to_cloud"), ""),
		lineBreak(),
	}
	if b.local == nil {
		return items
	}

	raw, err := b.local.Playlists(ctx)
	if err != nil {
		b.logger.Warn("local playlist fetch failed", zap.Error(err))
		return items
	}
	for _, p := range raw {
		p.Backend = BackendLocalDesktop
		b.state.PutPlaylist(p)
		items = append(items, playlistItem(p, false))
	}
	return items
}

func (b *PlaylistCacheBuilder) buildLikedFolder(ctx context.Context) *PlaylistItem {
	liked, err := b.cloud.LikedSongs(ctx)
	if err != nil {
		b.logger.Debug("liked songs fetch failed", zap.Error(err))
		return nil
	}
	if len(liked) == 0 {
		return nil
	}

	b.state.SetLikedSongs(liked)
	ids := make([]string, len(liked))
	for i := range liked {
		liked[i].PlaylistID = LikedSongsPlaylistID
		liked[i].Position = i
		ids[i] = liked[i].ID
	}
	b.cache.LoadLiked(ids)
	b.cache.PutTracks(LikedSongsPlaylistID, liked)

	return &PlaylistItem{
		Kind:       ItemPlaylist,
		ID:         LikedSongsPlaylistID,
		Name:       b.loc.T("item.liked_songs"),
		Backend:    BackendCloudWeb,
		TrackCount: len(liked),
	}
}

// buildSeeds assembles the recommendation seed pool from the liked songs and
// the first fetched playlists. Fire and forget; the cache build never waits
// on it.
func (b *PlaylistCacheBuilder) buildSeeds(ctx context.Context, playlists []Playlist) {
	seen := make(map[string]bool)
	var ids []string
	add := func(tracks []Track) {
		for _, t := range tracks {
			if len(ids) >= PlayQueueLimit {
				return
			}
			if t.ID == "" || seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			ids = append(ids, t.ID)
		}
	}

	add(b.state.LikedSongs())
	for _, p := range playlists {
		if len(ids) >= PlayQueueLimit {
			break
		}
		tracks, err := b.cloud.PlaylistTracks(ctx, p.ID)
		if err != nil {
			continue
		}
		add(tracks)
	}

	if len(ids) == 0 {
		return
	}
	b.state.SetSeedTrackIDs(ids)
	b.logger.Debug("recommendation seeds built", zap.Int("count", len(ids)))

	b.buildRecommendations(ctx, ids)
}

// buildRecommendations fetches the recommendation working set for the seed
// pool and surfaces the virtual recommendations folder in the item list.
func (b *PlaylistCacheBuilder) buildRecommendations(ctx context.Context, seedIDs []string) {
	if len(seedIDs) > RecommendationSeedLimit {
		seedIDs = seedIDs[:RecommendationSeedLimit]
	}
	recs, err := b.cloud.Recommendations(ctx, seedIDs, PlayQueueLimit)
	if err != nil {
		b.logger.Debug("recommendation fetch failed", zap.Error(err))
		return
	}
	if len(recs) == 0 {
		return
	}

	for i := range recs {
		recs[i].PlaylistID = RecommendationPlaylistID
		recs[i].Position = i
	}
	b.state.SetRecommendationTracks(recs)
	b.cache.PutTracks(RecommendationPlaylistID, recs)
	b.state.SetItems(withRecommendationFolder(b.state.Items(), b.recommendationFolder(len(recs))))
	b.notifier.PlaylistsChanged()
	b.logger.Debug("recommendation working set built", zap.Int("count", len(recs)))
}

// Tracks returns the track list for a playlist id, resolving the virtual ids
// from state and fetching regular playlists through the cache.
func (b *PlaylistCacheBuilder) Tracks(ctx context.Context, playlistID string) ([]Track, error) {
	if playlistID == LikedSongsPlaylistID {
		return b.state.LikedSongs(), nil
	}
	if playlistID == RecommendationPlaylistID {
		return b.state.RecommendationTracks(), nil
	}
	if tracks, ok := b.cache.Tracks(playlistID); ok {
		return tracks, nil
	}

	lib := b.cloud
	if b.state.ActiveBackend() == BackendLocalDesktop && b.local != nil {
		lib = b.local
	}
	tracks, err := lib.PlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	for i := range tracks {
		tracks[i].PlaylistID = playlistID
		tracks[i].Position = i
	}
	b.cache.PutTracks(playlistID, tracks)
	return tracks, nil
}

func (b *PlaylistCacheBuilder) recommendationFolder(count int) PlaylistItem {
	return PlaylistItem{
		Kind:       ItemPlaylist,
		ID:         RecommendationPlaylistID,
		Name:       b.loc.T("item.recommendations"),
		Backend:    BackendCloudWeb,
		TrackCount: count,
	}
}

// withRecommendationFolder places the virtual recommendations folder right
// after the liked-songs folder, replacing an earlier copy when present.
func withRecommendationFolder(items []PlaylistItem, folder PlaylistItem) []PlaylistItem {
	for i := range items {
		if items[i].Kind == ItemPlaylist && items[i].ID == RecommendationPlaylistID {
			items[i] = folder
			return items
		}
	}
	for i := range items {
		if items[i].Kind == ItemPlaylist && items[i].ID == LikedSongsPlaylistID {
			out := make([]PlaylistItem, 0, len(items)+1)
			out = append(out, items[:i+1]...)
			out = append(out, folder)
			out = append(out, items[i+1:]...)
			return out
		}
	}
	return append(items, folder)
}

func actionItem(id ActionID, name, tooltip string) PlaylistItem {
	return PlaylistItem{Kind: ItemAction, ID: string(id), Name: name, Tooltip: tooltip, Action: id}
}

func lineBreak() PlaylistItem {
	return PlaylistItem{Kind: ItemAction, ID: string(ActionLineBreak), Action: ActionLineBreak}
}

func playlistItem(p Playlist, curated bool) PlaylistItem {
	return PlaylistItem{
		Kind:       ItemPlaylist,
		ID:         p.ID,
		Name:       p.Name,
		Backend:    p.Backend,
		TrackCount: p.TrackCount,
		Curated:    curated,
	}
}

func findPlaylist(playlists []Playlist, id string) (Playlist, bool) {
	for _, p := range playlists {
		if p.ID == id {
			return p, true
		}
	}
	return Playlist{}, false
}
