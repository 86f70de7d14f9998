// Package appservice talks to the vendor application web API: availability,
// like-state persistence, the generated-playlist registry and the weekly top
// songs feed.
package appservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"tunetime/internal/core"
)

type Client struct {
	cfg    core.AppServiceConfig
	http   *http.Client
	logger *zap.Logger
}

func NewClient(cfg core.AppServiceConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger.Named("appservice"),
	}
}

// Available probes the service. Callers treat false as "skip the operation
// and tell the user", never as an error.
func (c *Client) Available(ctx context.Context) bool {
	if c.cfg.BaseURL == "" {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/ping", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("availability probe failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type likedStateBody struct {
	Liked   bool   `json:"liked"`
	Backend string `json:"playerType"`
}

func (c *Client) SaveLikedState(ctx context.Context, trackID string, backend core.BackendKind, liked bool) error {
	body := likedStateBody{Liked: liked, Backend: backend.String()}
	return c.do(ctx, http.MethodPut, "/music/liked/track/"+trackID, body, nil)
}

type generatedPlaylistBody struct {
	PlaylistID string `json:"playlist_id"`
	TypeID     int    `json:"playlistTypeId"`
	Name       string `json:"name"`
}

func (c *Client) RegisterGeneratedPlaylist(ctx context.Context, playlistID string, typeID int, name string) error {
	body := generatedPlaylistBody{PlaylistID: playlistID, TypeID: typeID, Name: name}
	return c.do(ctx, http.MethodPost, "/music/playlist/generated", body, nil)
}

type topSongResponse struct {
	TrackID    string `json:"trackId"`
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	Popularity int    `json:"popularity"`
}

func (c *Client) WeeklyTopSongs(ctx context.Context, limit int) ([]core.Track, error) {
	var raw []topSongResponse
	path := "/music/top?limit=" + strconv.Itoa(limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}

	tracks := make([]core.Track, 0, len(raw))
	for _, r := range raw {
		if r.TrackID == "" {
			continue
		}
		tracks = append(tracks, core.Track{
			ID:         r.TrackID,
			Name:       r.Name,
			Artist:     r.Artist,
			Popularity: r.Popularity,
			Backend:    core.BackendCloudWeb,
		})
	}
	return tracks, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d for %s %s", resp.StatusCode, method, path)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
