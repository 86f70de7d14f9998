package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	// sqlite driver registration
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const settingsSchema = `
CREATE TABLE IF NOT EXISTS generated_playlists (
	type_id     INTEGER PRIMARY KEY,
	playlist_id TEXT NOT NULL,
	name        TEXT NOT NULL DEFAULT '',
	updated_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

// Settings is the durable settings store: the generated-playlist registry
// and a small key/value table for everything else worth keeping across
// restarts.
type Settings struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenSettings opens (and migrates) the settings database at path.
func OpenSettings(path string, logger *zap.Logger) (*Settings, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings db: %w", err)
	}
	if _, err := db.Exec(settingsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate settings db: %w", err)
	}
	return &Settings{db: db, logger: logger.Named("settings")}, nil
}

func (s *Settings) Close() error {
	return s.db.Close()
}

// GeneratedPlaylistID returns the playlist id registered for a generated
// playlist type, empty when none is registered.
func (s *Settings) GeneratedPlaylistID(typeID int) (string, error) {
	var id string
	err := s.db.QueryRow(
		`SELECT playlist_id FROM generated_playlists WHERE type_id = ?`, typeID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query generated playlist: %w", err)
	}
	return id, nil
}

// SetGeneratedPlaylistID registers a playlist id for a generated type.
func (s *Settings) SetGeneratedPlaylistID(typeID int, playlistID string) error {
	_, err := s.db.Exec(
		`INSERT INTO generated_playlists (type_id, playlist_id, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(type_id) DO UPDATE SET playlist_id = excluded.playlist_id, updated_at = excluded.updated_at`,
		typeID, playlistID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to store generated playlist: %w", err)
	}
	s.logger.Debug("generated playlist registered",
		zap.Int("typeID", typeID),
		zap.String("playlistID", playlistID))
	return nil
}

// ClearGeneratedPlaylistID removes the registration for a generated type.
func (s *Settings) ClearGeneratedPlaylistID(typeID int) error {
	if _, err := s.db.Exec(`DELETE FROM generated_playlists WHERE type_id = ?`, typeID); err != nil {
		return fmt.Errorf("failed to clear generated playlist: %w", err)
	}
	return nil
}

// Get reads one settings value; empty when the key is unset.
func (s *Settings) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query setting %q: %w", key, err)
	}
	return value, nil
}

// Set writes one settings value.
func (s *Settings) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to store setting %q: %w", key, err)
	}
	return nil
}
