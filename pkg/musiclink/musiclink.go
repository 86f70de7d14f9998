// Package musiclink builds and parses Spotify share links and playback URIs.
package musiclink

import (
	"regexp"
	"strings"
)

const (
	// webPlayerBaseURL is the base URL of the Spotify web player.
	webPlayerBaseURL = "https://open.spotify.com"
	// trackURIPrefix is the scheme prefix of a Spotify track URI.
	trackURIPrefix = "spotify:track:"
	// playlistURIPrefix is the scheme prefix of a Spotify playlist URI.
	playlistURIPrefix = "spotify:playlist:"
)

// idPattern matches a base62 Spotify resource id.
var idPattern = regexp.MustCompile(`^[0-9A-Za-z]+$`)

// TrackURL returns the web player link for a track id.
func TrackURL(id string) string {
	if id == "" {
		return webPlayerBaseURL + "/"
	}
	return webPlayerBaseURL + "/track/" + id
}

// PlaylistURL returns the web player link for a playlist id.
func PlaylistURL(id string) string {
	if id == "" {
		return webPlayerBaseURL + "/"
	}
	return webPlayerBaseURL + "/playlist/" + id
}

// LikedSongsURL returns the web player link for the liked-songs collection.
func LikedSongsURL() string {
	return webPlayerBaseURL + "/collection/tracks"
}

// HomeURL returns the web player landing link.
func HomeURL() string {
	return webPlayerBaseURL + "/"
}

// TrackURI returns the playback URI for a track id.
func TrackURI(id string) string {
	return trackURIPrefix + id
}

// PlaylistURI returns the playback URI for a playlist id.
func PlaylistURI(id string) string {
	return playlistURIPrefix + id
}

// ParseTrackID extracts the track id from a share link or playback URI.
// It accepts open.spotify.com/track/<id> links (with or without query
// parameters) and spotify:track:<id> URIs.
func ParseTrackID(link string) (string, bool) {
	return parseID(link, "track")
}

// ParsePlaylistID extracts the playlist id from a share link or playback URI.
func ParsePlaylistID(link string) (string, bool) {
	return parseID(link, "playlist")
}

func parseID(link, kind string) (string, bool) {
	link = strings.TrimSpace(link)

	if rest, ok := strings.CutPrefix(link, "spotify:"+kind+":"); ok {
		if idPattern.MatchString(rest) {
			return rest, true
		}
		return "", false
	}

	for _, prefix := range []string{
		webPlayerBaseURL + "/" + kind + "/",
		"http://open.spotify.com/" + kind + "/",
		"open.spotify.com/" + kind + "/",
	} {
		rest, ok := strings.CutPrefix(link, prefix)
		if !ok {
			continue
		}
		if i := strings.IndexAny(rest, "?/#"); i >= 0 {
			rest = rest[:i]
		}
		if idPattern.MatchString(rest) {
			return rest, true
		}
		return "", false
	}
	return "", false
}
