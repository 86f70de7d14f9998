package i18n

// englishMessages contains all English translations.
var englishMessages = map[string]string{
	// Playback notices
	"notice.no_device":           "No active Spotify device found. Open the web or desktop player and try again.",
	"notice.command_failed":      "Failed to %s. Please check your connection and try again.",
	"notice.launch_failed":       "Failed to launch the player.",
	"notice.no_track":            "No track is currently playing.",
	"notice.like_failed":         "Failed to update your liked songs. Please try again.",
	"notice.service_unavailable": "The service is unavailable right now. Please try again later.",

	// Playlist editing notices
	"notice.playlist_add_ok":        "Track added to the playlist.",
	"notice.playlist_add_failed":    "Failed to add the track to the playlist.",
	"notice.playlist_remove_ok":     "Track removed from the playlist.",
	"notice.playlist_remove_failed": "Failed to remove the track from the playlist.",

	// Generated playlist notices
	"notice.generate_ok":     "Your %s playlist has been updated.",
	"notice.generate_failed": "Failed to generate the playlist. Please try again.",

	"playlist.weekly_top.description": "The most popular songs from your coding sessions this week.",

	// Item tree labels
	"item.premium_required":          "Spotify Premium required",
	"item.premium_required.tooltip":  "Playback control requires a Spotify Premium account",
	"item.connect":                   "Connect Spotify",
	"item.connect.tooltip":           "Connect your Spotify account to control playback",
	"item.dashboard":                 "Open dashboard",
	"item.web_analytics":             "See web analytics",
	"item.readme":                    "Learn more",
	"item.switch_device":             "Switch playback device",
	"item.switch_to_cloud":           "Switch to Spotify",
	"item.switch_to_local":           "Switch to the local player",
	"item.generate_playlist":         "Generate the weekly top playlist",
	"item.generate_playlist.tooltip": "Create or refresh the playlist of your most played songs",
	"item.liked_songs":               "Liked Songs",
	"item.recommendations":           "Recommendations",
}
