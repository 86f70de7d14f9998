package core

// LikedSongsNavigator computes circular next/previous moves over the liked
// songs list. It never mutates the list; callers issue the playback command
// and update selection afterwards.
type LikedSongsNavigator struct {
	state *StateStore
}

func NewLikedSongsNavigator(state *StateStore) *LikedSongsNavigator {
	return &LikedSongsNavigator{state: state}
}

// Next returns the track after currentID, wrapping from the last entry to
// the first. An empty currentID on a non-empty list returns the first entry.
// An unknown currentID returns nil rather than defaulting to the start; the
// asymmetry with Previous is kept on purpose for compatibility.
func (n *LikedSongsNavigator) Next(currentID string) *Track {
	songs := n.state.LikedSongs()
	if len(songs) == 0 {
		return nil
	}
	if currentID == "" {
		return &songs[0]
	}
	for i := range songs {
		if songs[i].ID == currentID {
			if i == len(songs)-1 {
				return &songs[0]
			}
			return &songs[i+1]
		}
	}
	return nil
}

// Previous returns the track before currentID, wrapping from the first entry
// to the last. An empty or unknown currentID returns nil.
func (n *LikedSongsNavigator) Previous(currentID string) *Track {
	songs := n.state.LikedSongs()
	if len(songs) == 0 || currentID == "" {
		return nil
	}
	for i := range songs {
		if songs[i].ID == currentID {
			if i == 0 {
				return &songs[len(songs)-1]
			}
			return &songs[i-1]
		}
	}
	return nil
}
