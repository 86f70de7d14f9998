// Package store provides the bounded track cache, the liked membership
// index and the durable settings store.
package store

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"

	"tunetime/internal/core"
)

// bloomFalsePositiveRate tunes the liked-songs membership prefilter.
const bloomFalsePositiveRate = 0.01

// TrackCache is a thread-safe playlist-id to track-list cache bounded by an
// LRU, plus a liked-songs membership index backed by a Bloom prefilter.
type TrackCache struct {
	tracks *lru.Cache[string, []core.Track]

	mutex         sync.RWMutex
	liked         map[string]struct{}
	likedBloom    *bloom.BloomFilter
	likedCapacity uint
}

// NewTrackCache creates a cache holding up to size playlists and a liked
// index sized for likedCapacity track ids.
func NewTrackCache(size int, likedCapacity uint) *TrackCache {
	if size <= 0 {
		size = 1
	}
	tracks, _ := lru.New[string, []core.Track](size)

	return &TrackCache{
		tracks:        tracks,
		liked:         make(map[string]struct{}),
		likedBloom:    bloom.NewWithEstimates(likedCapacity, bloomFalsePositiveRate),
		likedCapacity: likedCapacity,
	}
}

// Tracks returns the cached track list for a playlist id.
func (c *TrackCache) Tracks(playlistID string) ([]core.Track, bool) {
	return c.tracks.Get(playlistID)
}

// PutTracks caches the track list for a playlist id, evicting the least
// recently used playlist when full.
func (c *TrackCache) PutTracks(playlistID string, tracks []core.Track) {
	c.tracks.Add(playlistID, tracks)
}

// Invalidate drops one playlist's cached track list.
func (c *TrackCache) Invalidate(playlistID string) {
	c.tracks.Remove(playlistID)
}

// LoadLiked replaces the liked membership index with the given track ids.
func (c *TrackCache) LoadLiked(trackIDs []string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.liked = make(map[string]struct{}, len(trackIDs))
	c.likedBloom = bloom.NewWithEstimates(c.likedCapacity, bloomFalsePositiveRate)
	for _, id := range trackIDs {
		if id == "" {
			continue
		}
		c.liked[id] = struct{}{}
		c.likedBloom.AddString(id)
	}
}

// IsLiked checks liked membership. The Bloom filter rejects most misses
// without touching the map.
func (c *TrackCache) IsLiked(trackID string) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if !c.likedBloom.TestString(trackID) {
		return false
	}
	_, ok := c.liked[trackID]
	return ok
}

// MarkLiked updates one track's liked membership. Unliking leaves the Bloom
// filter untouched; the map stays authoritative.
func (c *TrackCache) MarkLiked(trackID string, liked bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if liked {
		c.liked[trackID] = struct{}{}
		c.likedBloom.AddString(trackID)
		return
	}
	delete(c.liked, trackID)
}

// LikedCount returns the size of the liked index.
func (c *TrackCache) LikedCount() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.liked)
}

// PlaylistCount returns the number of cached playlists.
func (c *TrackCache) PlaylistCount() int {
	return c.tracks.Len()
}

// Clear drops every cached playlist and the liked index.
func (c *TrackCache) Clear() {
	c.tracks.Purge()

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.liked = make(map[string]struct{})
	c.likedBloom = bloom.NewWithEstimates(c.likedCapacity, bloomFalsePositiveRate)
}
