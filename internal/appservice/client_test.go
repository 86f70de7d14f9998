package appservice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"tunetime/internal/core"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(core.AppServiceConfig{
		BaseURL: srv.URL,
		Token:   "test-token",
		Timeout: time.Second,
	}, zap.NewNop())
}

func TestAvailable(t *testing.T) {
	up := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ping" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	if !up.Available(context.Background()) {
		t.Error("Available() = false for healthy service")
	}

	down := NewClient(core.AppServiceConfig{BaseURL: "http://127.0.0.1:1", Timeout: 100 * time.Millisecond}, zap.NewNop())
	if down.Available(context.Background()) {
		t.Error("Available() = true for unreachable service")
	}

	unconfigured := NewClient(core.AppServiceConfig{Timeout: time.Second}, zap.NewNop())
	if unconfigured.Available(context.Background()) {
		t.Error("Available() = true with no base URL")
	}
}

func TestSaveLikedState(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody likedStateBody
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))

	err := c.SaveLikedState(context.Background(), "t1", core.BackendCloudWeb, true)
	if err != nil {
		t.Fatalf("SaveLikedState() error = %v", err)
	}
	if gotPath != "/music/liked/track/t1" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("auth = %q", gotAuth)
	}
	if !gotBody.Liked || gotBody.Backend != "cloud-web" {
		t.Errorf("body = %+v", gotBody)
	}
}

func TestWeeklyTopSongs(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "2" {
			t.Errorf("limit = %q, want 2", r.URL.Query().Get("limit"))
		}
		_ = json.NewEncoder(w).Encode([]topSongResponse{
			{TrackID: "t1", Name: "One", Artist: "A"},
			{TrackID: "", Name: "skipped"},
			{TrackID: "t2", Name: "Two", Artist: "B"},
		})
	}))

	tracks, err := c.WeeklyTopSongs(context.Background(), 2)
	if err != nil {
		t.Fatalf("WeeklyTopSongs() error = %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("tracks = %d, want 2 (empty ids dropped)", len(tracks))
	}
	if tracks[0].ID != "t1" || tracks[1].ID != "t2" {
		t.Errorf("tracks = %+v", tracks)
	}
}

func TestErrorStatusSurfaces(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	if err := c.RegisterGeneratedPlaylist(context.Background(), "p1", 1, "Top"); err == nil {
		t.Error("RegisterGeneratedPlaylist() error = nil, want status error")
	}
}
