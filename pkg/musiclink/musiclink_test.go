package musiclink

import "testing"

func TestLinkBuilding(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"track", TrackURL("4uLU6hMCjMI75M1A2tKUQC"), "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC"},
		{"empty track", TrackURL(""), "https://open.spotify.com/"},
		{"playlist", PlaylistURL("37i9dQZEVXbMDoHDwVN2tF"), "https://open.spotify.com/playlist/37i9dQZEVXbMDoHDwVN2tF"},
		{"liked songs", LikedSongsURL(), "https://open.spotify.com/collection/tracks"},
		{"track URI", TrackURI("abc123"), "spotify:track:abc123"},
		{"playlist URI", PlaylistURI("p1"), "spotify:playlist:p1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestParseTrackID(t *testing.T) {
	tests := []struct {
		name   string
		link   string
		wantID string
		wantOK bool
	}{
		{"https link", "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC", "4uLU6hMCjMI75M1A2tKUQC", true},
		{"link with query", "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC?si=xyz", "4uLU6hMCjMI75M1A2tKUQC", true},
		{"bare host", "open.spotify.com/track/abc", "abc", true},
		{"uri", "spotify:track:abc123", "abc123", true},
		{"whitespace", "  spotify:track:abc123 ", "abc123", true},
		{"playlist link", "https://open.spotify.com/playlist/p1", "", false},
		{"garbage", "not a link", "", false},
		{"bad id chars", "spotify:track:ab c", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ParseTrackID(tt.link)
			if id != tt.wantID || ok != tt.wantOK {
				t.Errorf("ParseTrackID(%q) = (%q, %v), want (%q, %v)", tt.link, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestParsePlaylistID(t *testing.T) {
	if id, ok := ParsePlaylistID("https://open.spotify.com/playlist/37i9dQZEVXbMDoHDwVN2tF?si=a"); !ok || id != "37i9dQZEVXbMDoHDwVN2tF" {
		t.Errorf("ParsePlaylistID() = (%q, %v)", id, ok)
	}
	if _, ok := ParsePlaylistID("spotify:track:abc"); ok {
		t.Error("track URI accepted as playlist")
	}
}
