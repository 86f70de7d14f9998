// Package http exposes the control API, the WebSocket refresh hub and the
// Prometheus metrics endpoint.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tunetime/internal/core"
	"tunetime/pkg/musiclink"
)

// Controller is the slice of the orchestrator the control API needs.
type Controller interface {
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	PlaySelectedItem(ctx context.Context, item core.PlaylistItem) error
	SetLiked(ctx context.Context, trackID string, liked bool) error
	AddTrackToPlaylist(ctx context.Context, trackID, playlistID string) error
	RemoveTrackFromPlaylist(ctx context.Context, trackID, playlistID string) error
	GenerateWeeklyTopPlaylist(ctx context.Context) error
	SwitchBackend(ctx context.Context, backend core.BackendKind)
	RefreshPlaylists(ctx context.Context)
	TransferToComputer(ctx context.Context, deviceID string) error
	PlaylistTracks(ctx context.Context, playlistID string) ([]core.Track, error)
	PlaylistStatus(playlistID string) core.TrackStatus
}

type Server struct {
	config     *core.ServerConfig
	logger     *zap.Logger
	server     *http.Server
	metrics    *Metrics
	hub        *Hub
	state      *core.StateStore
	controller Controller
}

func NewServer(
	config *core.ServerConfig,
	state *core.StateStore,
	controller Controller,
	hub *Hub,
	metrics *Metrics,
	logger *zap.Logger,
) *Server {
	s := &Server{
		config:     config,
		logger:     logger.Named("http"),
		metrics:    metrics,
		hub:        hub,
		state:      state,
		controller: controller,
	}

	hub.SetClientCountHook(func(n int) {
		metrics.ConnectedClients.Set(float64(n))
	})

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      s.routes(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "tunetime"})
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if !s.state.Ready() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready", "service": "tunetime"})
	})

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ws", s.hub.ServeWS)

	mux.HandleFunc("/state", s.handleState)
	mux.HandleFunc("/state/playlist/", s.handlePlaylistTracks)

	mux.HandleFunc("/control/next", s.command("next", func(ctx context.Context, _ *http.Request) error {
		return s.controller.Next(ctx)
	}))
	mux.HandleFunc("/control/previous", s.command("previous", func(ctx context.Context, _ *http.Request) error {
		return s.controller.Previous(ctx)
	}))
	mux.HandleFunc("/control/play", s.command("play", func(ctx context.Context, _ *http.Request) error {
		return s.controller.Play(ctx)
	}))
	mux.HandleFunc("/control/pause", s.command("pause", func(ctx context.Context, _ *http.Request) error {
		return s.controller.Pause(ctx)
	}))
	mux.HandleFunc("/control/play-item", s.command("play-item", s.playItem))
	mux.HandleFunc("/control/like", s.command("like", s.like))
	mux.HandleFunc("/control/playlist/add", s.command("playlist-add", s.playlistAdd))
	mux.HandleFunc("/control/playlist/remove", s.command("playlist-remove", s.playlistRemove))
	mux.HandleFunc("/control/generate-top-playlist", s.command("generate-top-playlist", func(ctx context.Context, _ *http.Request) error {
		return s.controller.GenerateWeeklyTopPlaylist(ctx)
	}))
	mux.HandleFunc("/control/transfer", s.command("transfer", s.transfer))
	mux.HandleFunc("/control/refresh", s.command("refresh", func(ctx context.Context, _ *http.Request) error {
		s.controller.RefreshPlaylists(ctx)
		return nil
	}))
	mux.HandleFunc("/control/switch-backend", s.command("switch-backend", s.switchBackend))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(landingPage)); err != nil {
			s.logger.Debug("failed to write landing page", zap.Error(err))
		}
	})

	return mux
}

// command wraps a control handler with method checking, metrics and a
// uniform JSON response.
func (s *Server) command(name string, fn func(ctx context.Context, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		start := time.Now()
		err := fn(r.Context(), r)
		if err != nil {
			s.metrics.RecordCommand(name, "error", time.Since(start))
			s.logger.Warn("command failed",
				zap.String("command", name),
				zap.Error(err))
			writeJSON(w, http.StatusBadGateway, map[string]string{"status": "error", "error": err.Error()})
			return
		}

		s.metrics.RecordCommand(name, "ok", time.Since(start))
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

type playItemRequest struct {
	Kind       string `json:"kind"`
	ID         string `json:"id"`
	PlaylistID string `json:"playlistId,omitempty"`
}

func (s *Server) playItem(ctx context.Context, r *http.Request) error {
	var req playItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}

	item, err := s.resolveItem(req)
	if err != nil {
		return err
	}
	return s.controller.PlaySelectedItem(ctx, item)
}

// resolveItem maps a play-item request onto an item from the built tree so
// playback context (owning playlist, track pointer) is preserved.
func (s *Server) resolveItem(req playItemRequest) (core.PlaylistItem, error) {
	for _, item := range s.state.Items() {
		if item.ID != req.ID {
			continue
		}
		if req.Kind != "" && item.Kind.String() != req.Kind {
			continue
		}
		return item, nil
	}

	// tracks inside a playlist are not part of the flat item tree; build a
	// synthetic item carrying the playlist context
	switch req.Kind {
	case core.ItemTrack.String():
		if req.ID == "" {
			return core.PlaylistItem{}, fmt.Errorf("track id required")
		}
		return core.PlaylistItem{
			Kind:    core.ItemTrack,
			ID:      req.ID,
			Backend: s.state.ActiveBackend(),
			Track: &core.Track{
				ID:         req.ID,
				Backend:    s.state.ActiveBackend(),
				PlaylistID: req.PlaylistID,
			},
		}, nil
	case core.ItemRecommendation.String():
		if req.ID == "" {
			return core.PlaylistItem{}, fmt.Errorf("track id required")
		}
		return core.PlaylistItem{
			Kind:    core.ItemRecommendation,
			ID:      req.ID,
			Backend: s.state.ActiveBackend(),
			Track: &core.Track{
				ID:         req.ID,
				Backend:    s.state.ActiveBackend(),
				PlaylistID: core.RecommendationPlaylistID,
			},
		}, nil
	case core.ItemPlaylist.String():
		return core.PlaylistItem{
			Kind:    core.ItemPlaylist,
			ID:      req.ID,
			Backend: s.state.ActiveBackend(),
		}, nil
	}
	return core.PlaylistItem{}, fmt.Errorf("unknown item %q", req.ID)
}

type likeRequest struct {
	TrackID string `json:"trackId"`
	Liked   bool   `json:"liked"`
}

func (s *Server) like(ctx context.Context, r *http.Request) error {
	var req likeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return s.controller.SetLiked(ctx, req.TrackID, req.Liked)
}

type playlistEditRequest struct {
	TrackID    string `json:"trackId"`
	PlaylistID string `json:"playlistId"`
}

func (s *Server) playlistAdd(ctx context.Context, r *http.Request) error {
	var req playlistEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return s.controller.AddTrackToPlaylist(ctx, req.TrackID, req.PlaylistID)
}

func (s *Server) playlistRemove(ctx context.Context, r *http.Request) error {
	var req playlistEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return s.controller.RemoveTrackFromPlaylist(ctx, req.TrackID, req.PlaylistID)
}

type transferRequest struct {
	DeviceID string `json:"deviceId"`
}

func (s *Server) transfer(ctx context.Context, r *http.Request) error {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return s.controller.TransferToComputer(ctx, req.DeviceID)
}

type switchBackendRequest struct {
	Backend string `json:"backend"`
}

func (s *Server) switchBackend(ctx context.Context, r *http.Request) error {
	var req switchBackendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}

	var backend core.BackendKind
	switch req.Backend {
	case core.BackendCloudWeb.String():
		backend = core.BackendCloudWeb
	case core.BackendCloudDesktop.String():
		backend = core.BackendCloudDesktop
	case core.BackendLocalDesktop.String():
		backend = core.BackendLocalDesktop
	default:
		return fmt.Errorf("unknown backend %q", req.Backend)
	}
	s.controller.SwitchBackend(ctx, backend)
	return nil
}

type stateResponse struct {
	Backend      string            `json:"backend"`
	Connected    bool              `json:"connected"`
	Premium      bool              `json:"premium"`
	Ready        bool              `json:"ready"`
	DeviceID     string            `json:"deviceId,omitempty"`
	Devices      []deviceResponse  `json:"devices,omitempty"`
	RunningTrack *trackResponse    `json:"runningTrack,omitempty"`
	Selection    selectionResponse `json:"selection"`
	Items        []itemResponse    `json:"items"`
}

type deviceResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Active bool   `json:"active"`
}

type itemResponse struct {
	Kind       string `json:"kind"`
	ID         string `json:"id"`
	Name       string `json:"name"`
	Tooltip    string `json:"tooltip,omitempty"`
	Backend    string `json:"backend"`
	TrackCount int    `json:"trackCount,omitempty"`
	Action     string `json:"action,omitempty"`
	Status     string `json:"status,omitempty"`
	Link       string `json:"link,omitempty"`
}

type trackResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Artist   string `json:"artist,omitempty"`
	Album    string `json:"album,omitempty"`
	Status   string `json:"status"`
	Backend  string `json:"backend"`
	Playlist string `json:"playlistId,omitempty"`
	Link     string `json:"link,omitempty"`
}

type selectionResponse struct {
	PlaylistID string `json:"playlistId,omitempty"`
	TrackID    string `json:"trackId,omitempty"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := stateResponse{
		Backend:   s.state.ActiveBackend().String(),
		Connected: s.state.Connected(),
		Premium:   s.state.Premium(),
		Ready:     s.state.Ready(),
		DeviceID:  s.state.DeviceID(),
	}

	for _, d := range s.state.Devices() {
		resp.Devices = append(resp.Devices, deviceResponse{
			ID:     d.ID,
			Name:   d.Name,
			Type:   d.Type.String(),
			Active: d.Active,
		})
	}
	for _, item := range s.state.Items() {
		out := convertItem(item)
		if item.Kind == core.ItemPlaylist {
			out.Status = s.controller.PlaylistStatus(item.ID).String()
		}
		resp.Items = append(resp.Items, out)
	}

	if track := s.state.RunningTrack(); track != nil {
		resp.RunningTrack = convertTrack(track)
	}
	sel := s.state.Selection()
	if sel.Playlist != nil {
		resp.Selection.PlaylistID = sel.Playlist.ID
	}
	if sel.Track != nil {
		resp.Selection.TrackID = sel.Track.ID
	}

	writeJSON(w, http.StatusOK, resp)
}

func convertItem(item core.PlaylistItem) itemResponse {
	out := itemResponse{
		Kind:       item.Kind.String(),
		ID:         item.ID,
		Name:       item.Name,
		Tooltip:    item.Tooltip,
		Backend:    item.Backend.String(),
		TrackCount: item.TrackCount,
		Action:     string(item.Action),
	}
	switch item.Kind {
	case core.ItemPlaylist:
		if item.Backend == core.BackendCloudWeb || item.Backend == core.BackendCloudDesktop {
			if item.ID == core.LikedSongsPlaylistID {
				out.Link = musiclink.LikedSongsURL()
			} else if item.ID != core.RecommendationPlaylistID {
				out.Link = musiclink.PlaylistURL(item.ID)
			}
		}
	case core.ItemTrack, core.ItemRecommendation:
		if item.Track != nil {
			out.Status = item.Track.Status.String()
		}
		out.Link = musiclink.TrackURL(item.ID)
	}
	return out
}

func convertTrack(t *core.Track) *trackResponse {
	return &trackResponse{
		ID:       t.ID,
		Name:     t.Name,
		Artist:   t.Artist,
		Album:    t.Album,
		Status:   t.Status.String(),
		Backend:  t.Backend.String(),
		Playlist: t.PlaylistID,
		Link:     musiclink.TrackURL(t.ID),
	}
}

func (s *Server) handlePlaylistTracks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	playlistID := r.URL.Path[len("/state/playlist/"):]
	if playlistID == "" {
		http.Error(w, "playlist id required", http.StatusBadRequest)
		return
	}

	tracks, err := s.controller.PlaylistTracks(r.Context(), playlistID)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"status": "error", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"playlistId": playlistID,
		"status":     s.controller.PlaylistStatus(playlistID).String(),
		"link":       musiclink.PlaylistURL(playlistID),
		"tracks":     tracks,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

func (s *Server) GetMetrics() *Metrics {
	return s.metrics
}

const landingPage = `<!DOCTYPE html>
<html>
<head>
    <title>TuneTime</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        .header { color: #333; }
        .endpoint { margin: 10px 0; }
        .endpoint a { text-decoration: none; color: #0066cc; }
        .endpoint a:hover { text-decoration: underline; }
    </style>
</head>
<body>
    <h1 class="header">🎵 TuneTime</h1>
    <p>Playback orchestration across Spotify Web, the desktop app and the local media player</p>

    <h2>Endpoints</h2>
    <div class="endpoint">🎛️ <a href="/state">State</a> - Current playback state and item tree</div>
    <div class="endpoint">📊 <a href="/metrics">Metrics</a> - Prometheus metrics</div>
    <div class="endpoint">💚 <a href="/healthz">Health</a> - Health check</div>
    <div class="endpoint">✅ <a href="/readyz">Ready</a> - Readiness check</div>

    <h2>Status</h2>
    <p>Service is running. POST to /control/* to drive playback.</p>
</body>
</html>`
