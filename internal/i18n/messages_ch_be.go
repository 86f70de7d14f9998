package i18n

// berneseGermanMessages contains all Bernese Swiss German (Bärndütsch) translations
var berneseGermanMessages = map[string]string{
	// Playback notices
	"notice.no_device":           "Ha keis aktivs Spotify-Grät gfunde. Mach dr Web- oder Desktop-Player uf u probier's nomau.",
	"notice.command_failed":      "Ha %s nid chönne usfüere. Lueg dini Verbindig aa u probier's nomau.",
	"notice.launch_failed":       "Ha dr Player nid chönne starte.",
	"notice.no_track":            "Es lauft grad keis Lied.",
	"notice.like_failed":         "Ha dini Lieblingslieder nid chönne aktualisiere. Probier's nomau.",
	"notice.service_unavailable": "Dr Dienscht isch grad nid verfüegbar. Probier's spöter nomau.",

	// Playlist editing notices
	"notice.playlist_add_ok":        "S'Lied isch zur Playliste hinzuegfüegt worde.",
	"notice.playlist_add_failed":    "Ha s'Lied nid chönne zur Playliste hinzuefüege.",
	"notice.playlist_remove_ok":     "S'Lied isch us dr Playliste glöscht worde.",
	"notice.playlist_remove_failed": "Ha s'Lied nid chönne us dr Playliste lösche.",

	// Generated playlist notices
	"notice.generate_ok":     "Dini %s Playliste isch aktualisiert worde.",
	"notice.generate_failed": "Ha d'Playliste nid chönne generiere. Probier's nomau.",

	"playlist.weekly_top.description": "Di beliebteschte Lieder vo dine Coding-Sessions vo dere Wuche.",

	// Item tree labels
	"item.premium_required":          "Spotify Premium nötig",
	"item.premium_required.tooltip":  "Für d'Wiedergab z'stüüre bruchsch es Spotify-Premium-Konto",
	"item.connect":                   "Spotify verbinde",
	"item.connect.tooltip":           "Verbind dis Spotify-Konto für d'Wiedergab z'stüüre",
	"item.dashboard":                 "Dashboard uftue",
	"item.web_analytics":             "Web-Statistike aaluege",
	"item.readme":                    "Meh erfahre",
	"item.switch_device":             "Wiedergab-Grät wächsle",
	"item.switch_to_cloud":           "Zu Spotify wächsle",
	"item.switch_to_local":           "Zum lokale Player wächsle",
	"item.generate_playlist":         "Wüchetlechi Top-Playliste generiere",
	"item.generate_playlist.tooltip": "Erstell oder aktualisier d'Playliste vo dine meistgspielte Lieder",
	"item.liked_songs":               "Lieblingslieder",
	"item.recommendations":           "Empfohleni Lieder",
}
