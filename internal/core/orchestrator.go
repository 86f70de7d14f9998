package core

import (
	"context"

	"go.uber.org/zap"

	"tunetime/internal/i18n"
)

// Orchestrator is the public control surface: next/previous/play/pause,
// item playback, like toggling and playlist generation. It composes the
// dispatcher, navigator, builder and discovery retrier and owns the launch
// confirmation gate.
type Orchestrator struct {
	cfg        *Config
	state      *StateStore
	dispatcher *CommandDispatcher
	navigator  *LikedSongsNavigator
	builder    *PlaylistCacheBuilder
	retrier    *DeviceDiscoveryRetrier
	cloud      Library
	app        AppService
	cache      TrackCache
	settings   SettingsStore
	prompter   LaunchPrompter
	notifier   Notifier
	loc        *i18n.Localizer
	logger     *zap.Logger

	reconciler *Reconciler
}

func NewOrchestrator(
	cfg *Config,
	state *StateStore,
	dispatcher *CommandDispatcher,
	navigator *LikedSongsNavigator,
	builder *PlaylistCacheBuilder,
	retrier *DeviceDiscoveryRetrier,
	cloud Library,
	app AppService,
	cache TrackCache,
	settings SettingsStore,
	prompter LaunchPrompter,
	notifier Notifier,
	loc *i18n.Localizer,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		state:      state,
		dispatcher: dispatcher,
		navigator:  navigator,
		builder:    builder,
		retrier:    retrier,
		cloud:      cloud,
		app:        app,
		cache:      cache,
		settings:   settings,
		prompter:   prompter,
		notifier:   notifier,
		loc:        loc,
		logger:     logger.Named("orchestrator"),
	}
}

// SetReconciler wires the playlist status source. Set once at startup.
func (o *Orchestrator) SetReconciler(r *Reconciler) {
	o.reconciler = r
}

// PlaylistStatus reports whether a playlist contains the running track and in
// which playback state.
func (o *Orchestrator) PlaylistStatus(playlistID string) TrackStatus {
	if o.reconciler == nil {
		return StatusNotAssigned
	}
	tracks, _ := o.cache.Tracks(playlistID)
	return o.reconciler.PlaylistStatus(playlistID, tracks)
}

// Next advances playback. Inside the liked-songs virtual playlist the
// navigator computes the target track and a play command is issued for it;
// everywhere else the backend's native next is used.
func (o *Orchestrator) Next(ctx context.Context) error {
	sel := o.state.Selection()
	if sel.Playlist != nil && sel.Playlist.ID == LikedSongsPlaylistID {
		target := o.navigator.Next(o.currentLikedID(sel))
		if target == nil {
			return nil
		}
		return o.playLikedTrack(ctx, sel.Playlist, target)
	}
	return o.dispatcher.Next(ctx)
}

// Previous steps playback back, with the same liked-songs split as Next.
func (o *Orchestrator) Previous(ctx context.Context) error {
	sel := o.state.Selection()
	if sel.Playlist != nil && sel.Playlist.ID == LikedSongsPlaylistID {
		target := o.navigator.Previous(o.currentLikedID(sel))
		if target == nil {
			return nil
		}
		return o.playLikedTrack(ctx, sel.Playlist, target)
	}
	return o.dispatcher.Previous(ctx)
}

// currentLikedID is the track id navigation starts from: the selected track
// when set, else the running track.
func (o *Orchestrator) currentLikedID(sel Selection) string {
	if sel.Track != nil {
		return sel.Track.ID
	}
	if running := o.state.RunningTrack(); running != nil {
		return running.ID
	}
	return ""
}

func (o *Orchestrator) playLikedTrack(ctx context.Context, playlist *PlaylistItem, target *Track) error {
	req := o.likedPlayRequest(target.ID)
	if err := o.dispatcher.Play(ctx, req); err != nil {
		return err
	}

	item := trackItem(target)
	o.state.SelectTrack(playlist, item)
	o.notifier.SelectionChanged()
	return nil
}

// likedPlayRequest builds an explicit-queue request from the first liked
// songs with the offset pointing at the target track.
func (o *Orchestrator) likedPlayRequest(targetID string) PlayRequest {
	songs := o.state.LikedSongs()
	ids := make([]string, 0, PlayQueueLimit)
	offset := 0
	for i, t := range songs {
		if len(ids) >= PlayQueueLimit {
			break
		}
		if t.ID == targetID {
			offset = i
		}
		ids = append(ids, t.ID)
	}
	if offset >= len(ids) {
		offset = 0
	}
	return PlayRequest{TrackID: targetID, TrackIDs: ids, Offset: offset}
}

// Play resumes playback. The running track status flips optimistically so
// the control surface does not look frozen while reconciliation catches up.
func (o *Orchestrator) Play(ctx context.Context) error {
	sel := o.state.Selection()
	var err error
	if sel.Playlist == nil && sel.Track == nil {
		err = o.dispatcher.Play(ctx, PlayRequest{})
	} else {
		err = o.playSelection(ctx, "")
	}
	if err != nil {
		return err
	}
	if running := o.state.RunningTrack(); running != nil {
		running.Status = StatusPlaying
		o.state.SetRunningTrack(running)
		o.notifier.SelectionChanged()
	}
	return nil
}

// Pause halts playback, flipping the running track status optimistically.
func (o *Orchestrator) Pause(ctx context.Context) error {
	if err := o.dispatcher.Pause(ctx); err != nil {
		return err
	}
	if running := o.state.RunningTrack(); running != nil {
		running.Status = StatusPaused
		o.state.SetRunningTrack(running)
		o.notifier.SelectionChanged()
	}
	return nil
}

// PlaySelectedItem records the selection and plays it. When no playback
// device exists on the cloud path the launch confirmation gate runs first:
// the user picks a player, it is launched, and device discovery retries in
// the background before the deferred play goes out.
func (o *Orchestrator) PlaySelectedItem(ctx context.Context, item PlaylistItem) error {
	switch item.Kind {
	case ItemAction:
		return nil
	case ItemPlaylist:
		it := item
		o.state.SelectPlaylist(&it)
	case ItemTrack, ItemRecommendation:
		it := item
		playlist := o.owningPlaylist(&it)
		o.state.SelectTrack(playlist, &it)
	}
	o.notifier.SelectionChanged()

	if o.dispatcher.SelectBackend() != BackendCloudWeb {
		return o.playSelection(ctx, "")
	}
	if deviceID := o.dispatcher.ResolveDevice(ctx); deviceID != "" {
		return o.playSelection(ctx, deviceID)
	}

	choice := o.prompter.ConfirmLaunch(ctx)
	if choice == LaunchNone {
		return nil
	}
	backend := BackendCloudWeb
	if choice == LaunchDesktop {
		backend = BackendCloudDesktop
	}

	opts := LaunchOptions{}
	if item.Kind == ItemTrack || item.Kind == ItemRecommendation {
		opts.TrackID = item.ID
	} else {
		opts.PlaylistID = item.ID
	}
	if err := o.dispatcher.Launch(ctx, backend, opts); err != nil {
		o.notifier.Error(o.loc.T("notice.launch_failed"))
		return err
	}

	bg := context.WithoutCancel(ctx)
	go o.retrier.Run(bg, func(deviceID string) {
		if err := o.playSelection(bg, deviceID); err != nil {
			o.logger.Warn("deferred play failed", zap.Error(err))
		}
	})
	return nil
}

// owningPlaylist resolves the playlist context implied by a track selection.
func (o *Orchestrator) owningPlaylist(track *PlaylistItem) *PlaylistItem {
	pid := ""
	if track.Track != nil {
		pid = track.Track.PlaylistID
	}
	if track.Kind == ItemRecommendation {
		pid = RecommendationPlaylistID
	}
	if pid == "" {
		return nil
	}
	for _, it := range o.state.Items() {
		if it.Kind == ItemPlaylist && it.ID == pid {
			found := it
			return &found
		}
	}
	return &PlaylistItem{Kind: ItemPlaylist, ID: pid}
}

// playSelection issues the play command matching the current selection.
func (o *Orchestrator) playSelection(ctx context.Context, deviceID string) error {
	sel := o.state.Selection()

	var req PlayRequest
	switch {
	case sel.Playlist != nil && sel.Playlist.ID == LikedSongsPlaylistID:
		targetID := ""
		if sel.Track != nil {
			targetID = sel.Track.ID
		} else if songs := o.state.LikedSongs(); len(songs) > 0 {
			targetID = songs[0].ID
		}
		if targetID == "" {
			return nil
		}
		req = o.likedPlayRequest(targetID)
	case sel.Playlist != nil && sel.Playlist.ID == RecommendationPlaylistID:
		targetID := ""
		if sel.Track != nil {
			targetID = sel.Track.ID
		}
		req = o.recommendationPlayRequest(targetID)
	case sel.Playlist != nil && sel.Track != nil:
		req = PlayRequest{PlaylistID: sel.Playlist.ID, TrackID: sel.Track.ID}
	case sel.Playlist != nil:
		req = PlayRequest{PlaylistID: sel.Playlist.ID}
	case sel.Track != nil:
		req = PlayRequest{TrackID: sel.Track.ID}
	default:
		return nil
	}

	req.DeviceID = deviceID
	return o.dispatcher.Play(ctx, req)
}

// recommendationPlayRequest sends the recommendation working set, padded to
// the queue limit from the seed pool so short sets still fill a session.
func (o *Orchestrator) recommendationPlayRequest(targetID string) PlayRequest {
	seen := make(map[string]bool)
	ids := make([]string, 0, PlayQueueLimit)
	offset := 0
	for _, t := range o.state.RecommendationTracks() {
		if len(ids) >= PlayQueueLimit {
			break
		}
		if t.ID == "" || seen[t.ID] {
			continue
		}
		if t.ID == targetID {
			offset = len(ids)
		}
		seen[t.ID] = true
		ids = append(ids, t.ID)
	}
	for _, id := range o.state.SeedTrackIDs() {
		if len(ids) >= PlayQueueLimit {
			break
		}
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return PlayRequest{TrackID: targetID, TrackIDs: ids, Offset: offset}
}

// SetLiked toggles the like flag of a track. The operation fails gracefully
// with a single notice when the app service is unreachable or the track
// cannot be resolved; no backend call goes out and no state changes.
func (o *Orchestrator) SetLiked(ctx context.Context, trackID string, liked bool) error {
	if !o.app.Available(ctx) {
		o.notifier.Info(o.loc.T("notice.service_unavailable"))
		return nil
	}

	if trackID == "" {
		running := o.state.RunningTrack()
		if running == nil {
			o.notifier.Info(o.loc.T("notice.no_track"))
			return nil
		}
		trackID = running.ID
	}

	if err := o.cloud.SetLiked(ctx, trackID, liked); err != nil {
		o.notifier.Error(o.loc.T("notice.like_failed"))
		return err
	}
	o.cache.MarkLiked(trackID, liked)

	if err := o.app.SaveLikedState(ctx, trackID, o.state.ActiveBackend(), liked); err != nil {
		o.logger.Warn("like-state persistence failed", zap.Error(err))
	}

	// The loading state smooths over eventually consistent liked-songs reads.
	o.notifier.Loading(true)
	if sleepCtx(ctx, o.cfg.Reconcile.LikedRestoreDelay) {
		if songs, err := o.cloud.LikedSongs(ctx); err == nil {
			o.state.SetLikedSongs(songs)
			o.cache.Invalidate(LikedSongsPlaylistID)
		}
	}
	o.notifier.Loading(false)
	o.notifier.PlaylistsChanged()
	return nil
}

// AddTrackToPlaylist adds a track to a playlist. The liked-songs virtual
// playlist routes to the like flag instead.
func (o *Orchestrator) AddTrackToPlaylist(ctx context.Context, trackID, playlistID string) error {
	if playlistID == LikedSongsPlaylistID {
		return o.SetLiked(ctx, trackID, true)
	}
	if err := o.cloud.AddTracksToPlaylist(ctx, playlistID, []string{trackID}); err != nil {
		o.notifier.Error(o.loc.T("notice.playlist_add_failed"))
		return err
	}
	o.cache.Invalidate(playlistID)
	o.notifier.Info(o.loc.T("notice.playlist_add_ok"))
	o.notifier.PlaylistsChanged()
	return nil
}

// RemoveTrackFromPlaylist removes a track from a playlist, with the same
// liked-songs routing as AddTrackToPlaylist.
func (o *Orchestrator) RemoveTrackFromPlaylist(ctx context.Context, trackID, playlistID string) error {
	if playlistID == LikedSongsPlaylistID {
		return o.SetLiked(ctx, trackID, false)
	}
	if err := o.cloud.RemoveTracksFromPlaylist(ctx, playlistID, []string{trackID}); err != nil {
		o.notifier.Error(o.loc.T("notice.playlist_remove_failed"))
		return err
	}
	o.cache.Invalidate(playlistID)
	o.notifier.Info(o.loc.T("notice.playlist_remove_ok"))
	o.notifier.PlaylistsChanged()
	return nil
}

// GenerateWeeklyTopPlaylist creates or refreshes the generated weekly top
// songs playlist. The first call creates the playlist and persists its id
// against the well-known type; later calls replace its tracks wholesale.
func (o *Orchestrator) GenerateWeeklyTopPlaylist(ctx context.Context) error {
	if !o.state.TryBeginCustomPlaylistBuild() {
		o.logger.Debug("playlist generation already in progress")
		return nil
	}
	defer o.state.EndCustomPlaylistBuild()

	o.notifier.Loading(true)
	defer o.notifier.Loading(false)

	top, err := o.app.WeeklyTopSongs(ctx, PlayQueueLimit)
	if err != nil {
		o.notifier.Error(o.loc.T("notice.generate_failed"))
		return err
	}
	ids := make([]string, 0, len(top))
	for _, t := range top {
		if t.ID != "" {
			ids = append(ids, t.ID)
		}
	}

	playlistID, err := o.settings.GeneratedPlaylistID(WeeklyTopPlaylistTypeID)
	if err != nil {
		o.logger.Warn("generated-playlist lookup failed", zap.Error(err))
	}

	if playlistID == "" {
		playlistID, err = o.cloud.CreatePlaylist(ctx, WeeklyTopPlaylistName, o.loc.T("playlist.weekly_top.description"))
		if err != nil {
			o.notifier.Error(o.loc.T("notice.generate_failed"))
			return err
		}
		if err := o.settings.SetGeneratedPlaylistID(WeeklyTopPlaylistTypeID, playlistID); err != nil {
			o.logger.Warn("generated-playlist persistence failed", zap.Error(err))
		}
		if err := o.app.RegisterGeneratedPlaylist(ctx, playlistID, WeeklyTopPlaylistTypeID, WeeklyTopPlaylistName); err != nil {
			o.logger.Warn("generated-playlist registration failed", zap.Error(err))
		}
	}

	if err := o.cloud.ReplacePlaylistTracks(ctx, playlistID, ids); err != nil {
		o.notifier.Error(o.loc.T("notice.generate_failed"))
		return err
	}

	o.cache.Invalidate(playlistID)
	o.notifier.Info(o.loc.T("notice.generate_ok", WeeklyTopPlaylistName))
	o.notifier.PlaylistsChanged()
	return nil
}

// SwitchBackend changes the active backend and rebuilds the playlist cache.
func (o *Orchestrator) SwitchBackend(ctx context.Context, backend BackendKind) {
	o.state.SetActiveBackend(backend)
	o.builder.Refresh(ctx)
}

// RefreshPlaylists drops every cache and rebuilds the item tree.
func (o *Orchestrator) RefreshPlaylists(ctx context.Context) {
	o.state.ClearCaches()
	o.builder.Refresh(ctx)
}

// TransferToComputer moves cloud playback onto the first computer device.
func (o *Orchestrator) TransferToComputer(ctx context.Context, deviceID string) error {
	return o.dispatcher.TransferToComputer(ctx, deviceID)
}

// PlaylistTracks returns the (cached) track list for a playlist id.
func (o *Orchestrator) PlaylistTracks(ctx context.Context, playlistID string) ([]Track, error) {
	return o.builder.Tracks(ctx, playlistID)
}

func trackItem(t *Track) *PlaylistItem {
	return &PlaylistItem{
		Kind:    ItemTrack,
		ID:      t.ID,
		Name:    t.Name,
		Backend: t.Backend,
		Track:   t,
	}
}
