package core

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Reconciler keeps the engine's optimistic in-memory state honest: a
// short-interval poll gathers the actually-running track and a second poll
// watches for track endings. Commands additionally request a near-term
// re-query through GatherSoon so the running track catches up with the
// backend's eventually consistent state.
type Reconciler struct {
	cfg      ReconcileConfig
	state    *StateStore
	cloud    Library
	notifier Notifier
	logger   *zap.Logger

	// wake coalesces post-command re-query requests.
	wake chan struct{}

	lastTrackID string
}

func NewReconciler(cfg ReconcileConfig, state *StateStore, cloud Library, notifier Notifier, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		cfg:      cfg,
		state:    state,
		cloud:    cloud,
		notifier: notifier,
		logger:   logger.Named("reconciler"),
		wake:     make(chan struct{}, 1),
	}
}

// GatherSoon schedules one near-term state re-query. Multiple requests before
// the query runs coalesce into one.
func (r *Reconciler) GatherSoon() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Run drives both reconciliation loops until ctx ends.
func (r *Reconciler) Run(ctx context.Context) error {
	gatherTicker := time.NewTicker(r.cfg.TrackPollInterval)
	defer gatherTicker.Stop()
	sessionTicker := time.NewTicker(r.cfg.SongSessionInterval)
	defer sessionTicker.Stop()

	r.logger.Info("reconciler started",
		zap.Duration("track_poll", r.cfg.TrackPollInterval),
		zap.Duration("session_poll", r.cfg.SongSessionInterval))

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return ctx.Err()
		case <-gatherTicker.C:
			r.Gather(ctx)
		case <-sessionTicker.C:
			r.checkSongSession(ctx)
		case <-r.wake:
			if !sleepCtx(ctx, r.cfg.PostCommandDelay) {
				return ctx.Err()
			}
			r.Gather(ctx)
		}
	}
}

// Gather queries the backend for the running track and playback state. A
// failed query leaves the running track unchanged.
func (r *Reconciler) Gather(ctx context.Context) {
	if !r.cloud.Connected() {
		return
	}

	playing, _, track, err := r.cloud.PlayerState(ctx)
	if err != nil {
		r.logger.Debug("player state query failed", zap.Error(err))
		return
	}

	prev := r.state.RunningTrack()
	if track == nil {
		if prev != nil {
			r.state.SetRunningTrack(nil)
			r.recomputeStatuses("")
			r.notifier.SelectionChanged()
		}
		return
	}

	current := *track
	if playing {
		current.Status = StatusPlaying
	} else {
		current.Status = StatusPaused
	}
	r.state.SetRunningTrack(&current)

	changed := prev == nil || prev.ID != current.ID || prev.Status != current.Status
	if changed {
		r.recomputeStatuses(current.ID)
		r.notifier.SelectionChanged()
		r.logger.Debug("running track updated",
			zap.String("track", current.Name),
			zap.Stringer("status", current.Status))
	}
}

// checkSongSession detects track endings between gather polls and forces a
// fresh gather when the running track rolled over.
func (r *Reconciler) checkSongSession(ctx context.Context) {
	running := r.state.RunningTrack()
	if running == nil {
		r.lastTrackID = ""
		return
	}
	if r.lastTrackID != "" && r.lastTrackID != running.ID {
		r.logger.Debug("track ended", zap.String("previous", r.lastTrackID))
		r.Gather(ctx)
	}
	r.lastTrackID = running.ID
}

// recomputeStatuses rewrites the status of every cached liked-songs track
// against the running track id.
func (r *Reconciler) recomputeStatuses(runningID string) {
	liked := r.state.LikedSongs()
	if len(liked) == 0 {
		return
	}
	running := r.state.RunningTrack()
	for i := range liked {
		if liked[i].ID == runningID && running != nil {
			liked[i].Status = running.Status
		} else {
			liked[i].Status = StatusNotAssigned
		}
	}
	r.state.SetLikedSongs(liked)
}

// PlaylistStatus reports the playback state of one playlist: playing or
// paused when it contains the running track, not-assigned otherwise.
func (r *Reconciler) PlaylistStatus(playlistID string, tracks []Track) TrackStatus {
	running := r.state.RunningTrack()
	if running == nil {
		return StatusNotAssigned
	}
	if playlistID != "" && running.PlaylistID == playlistID {
		return running.Status
	}
	for _, t := range tracks {
		if t.ID == running.ID {
			return running.Status
		}
	}
	return StatusNotAssigned
}
