package core

import (
	"testing"
)

func likedState(ids ...string) *StateStore {
	s := NewStateStore()
	tracks := make([]Track, len(ids))
	for i, id := range ids {
		tracks[i] = Track{ID: id, Name: "track-" + id, Backend: BackendCloudWeb}
	}
	s.SetLikedSongs(tracks)
	return s
}

func TestLikedNext(t *testing.T) {
	tests := []struct {
		name    string
		songs   []string
		current string
		want    string
		wantNil bool
	}{
		{"unset current returns first", []string{"a", "b", "c"}, "", "a", false},
		{"middle advances", []string{"a", "b", "c"}, "b", "c", false},
		{"last wraps to first", []string{"a", "b", "c"}, "c", "a", false},
		{"unknown id returns nothing", []string{"a", "b", "c"}, "x", "", true},
		{"empty list", nil, "a", "", true},
		{"single element wraps onto itself", []string{"a"}, "a", "a", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nav := NewLikedSongsNavigator(likedState(tt.songs...))
			got := nav.Next(tt.current)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("Next(%q) = %v, want nil", tt.current, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("Next(%q) = nil, want %q", tt.current, tt.want)
			}
			if got.ID != tt.want {
				t.Errorf("Next(%q) = %q, want %q", tt.current, got.ID, tt.want)
			}
		})
	}
}

func TestLikedPrevious(t *testing.T) {
	tests := []struct {
		name    string
		songs   []string
		current string
		want    string
		wantNil bool
	}{
		{"unset current returns nothing", []string{"a", "b", "c"}, "", "", true},
		{"middle steps back", []string{"a", "b", "c"}, "b", "a", false},
		{"first wraps to last", []string{"a", "b", "c"}, "a", "c", false},
		{"unknown id returns nothing", []string{"a", "b", "c"}, "x", "", true},
		{"empty list", nil, "a", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nav := NewLikedSongsNavigator(likedState(tt.songs...))
			got := nav.Previous(tt.current)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("Previous(%q) = %v, want nil", tt.current, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("Previous(%q) = nil, want %q", tt.current, tt.want)
			}
			if got.ID != tt.want {
				t.Errorf("Previous(%q) = %q, want %q", tt.current, got.ID, tt.want)
			}
		})
	}
}

// Next and Previous invert each other for every id in the list, including
// across the wrap boundary.
func TestLikedNavigationRoundTrip(t *testing.T) {
	nav := NewLikedSongsNavigator(likedState("a", "b", "c", "d"))

	for _, id := range []string{"a", "b", "c", "d"} {
		next := nav.Next(id)
		if next == nil {
			t.Fatalf("Next(%q) = nil", id)
		}
		back := nav.Previous(next.ID)
		if back == nil || back.ID != id {
			t.Errorf("Previous(Next(%q)) = %v, want %q", id, back, id)
		}

		prev := nav.Previous(id)
		if prev == nil {
			t.Fatalf("Previous(%q) = nil", id)
		}
		forward := nav.Next(prev.ID)
		if forward == nil || forward.ID != id {
			t.Errorf("Next(Previous(%q)) = %v, want %q", id, forward, id)
		}
	}
}
