package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/musicmeta/internal/models"
	"github.com/desertthunder/musicmeta/internal/shared"
)

// PlaylistRepository implements [models.PlaylistRepository] on SQLite.
//
// Track membership lives in the playlist_tracks junction table, ordered by position.
// Track ids are not checked against the catalog.
type PlaylistRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Create inserts a new playlist into the database with generated ID and sequence
func (r *PlaylistRepository) Create(p models.Playlist) (models.Playlist, error) {
	if err := p.Validate(); err != nil {
		return models.Playlist{}, err
	}

	now := r.now()
	p.ID = shared.GenerateID()
	p.TrackIDs = []string{}
	p.CreatedAt = now
	p.UpdatedAt = now

	err := r.withTx(func(tx *sql.Tx) error {
		sequence, err := NextSequence(tx, "playlists")
		if err != nil {
			return fmt.Errorf("failed to generate sequence: %w", err)
		}

		query := `
			INSERT INTO playlists (id, sequence, user_id, name, description, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`
		_, err = tx.Exec(query, p.ID, sequence, p.UserID, p.Name, p.Description, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert playlist: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Playlist{}, err
	}
	return p, nil
}

// Find retrieves a playlist by ID together with its ordered track ids
func (r *PlaylistRepository) Find(id string) (models.Playlist, error) {
	var p models.Playlist
	err := r.withTx(func(tx *sql.Tx) error {
		var err error
		p, err = findPlaylist(tx, id)
		return err
	})
	return p, err
}

// ListByOwner retrieves every playlist of userID in creation order
func (r *PlaylistRepository) ListByOwner(userID string) ([]models.Playlist, error) {
	playlists := []models.Playlist{}
	err := r.withTx(func(tx *sql.Tx) error {
		query := `
			SELECT id, user_id, name, description, created_at, updated_at
			FROM playlists
			WHERE user_id = ?
			ORDER BY sequence ASC
		`

		rows, err := tx.Query(query, userID)
		if err != nil {
			return fmt.Errorf("failed to query playlists: %w", err)
		}

		for rows.Next() {
			p, err := scanPlaylist(rows)
			if err != nil {
				rows.Close()
				return err
			}
			playlists = append(playlists, p)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("row iteration error: %w", err)
		}
		rows.Close()

		for i := range playlists {
			ids, err := trackIDs(tx, playlists[i].ID)
			if err != nil {
				return err
			}
			playlists[i].TrackIDs = ids
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return playlists, nil
}

// AddTrack appends trackID unless it is already present
func (r *PlaylistRepository) AddTrack(playlistID, trackID string) (models.Playlist, error) {
	return r.modify(playlistID, func(tx *sql.Tx) (bool, error) {
		query := `
			INSERT OR IGNORE INTO playlist_tracks (playlist_id, track_id, position)
			VALUES (?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM playlist_tracks WHERE playlist_id = ?))
		`
		result, err := tx.Exec(query, playlistID, trackID, playlistID)
		if err != nil {
			return false, fmt.Errorf("failed to add track: %w", err)
		}
		n, err := result.RowsAffected()
		return n > 0, err
	})
}

// RemoveTrack removes trackID when present
func (r *PlaylistRepository) RemoveTrack(playlistID, trackID string) (models.Playlist, error) {
	return r.modify(playlistID, func(tx *sql.Tx) (bool, error) {
		result, err := tx.Exec("DELETE FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?", playlistID, trackID)
		if err != nil {
			return false, fmt.Errorf("failed to remove track: %w", err)
		}
		n, err := result.RowsAffected()
		return n > 0, err
	})
}

// Update applies the present fields of patch
func (r *PlaylistRepository) Update(id string, patch models.PlaylistPatch) (models.Playlist, error) {
	return r.modify(id, func(tx *sql.Tx) (bool, error) {
		current, err := findPlaylist(tx, id)
		if err != nil {
			return false, err
		}

		next, changed := patch.Apply(current)
		if !changed {
			return false, nil
		}

		_, err = tx.Exec("UPDATE playlists SET name = ?, description = ? WHERE id = ?", next.Name, next.Description, id)
		if err != nil {
			return false, fmt.Errorf("failed to update playlist: %w", err)
		}
		return true, nil
	})
}

// Delete removes a playlist and its track references
func (r *PlaylistRepository) Delete(id string) (bool, error) {
	removed := false
	err := r.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM playlist_tracks WHERE playlist_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete playlist tracks: %w", err)
		}

		result, err := tx.Exec("DELETE FROM playlists WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete playlist: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		removed = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// modify checks the playlist exists, runs fn and bumps updated_at when fn reports a change.
func (r *PlaylistRepository) modify(id string, fn func(tx *sql.Tx) (bool, error)) (models.Playlist, error) {
	var result models.Playlist
	err := r.withTx(func(tx *sql.Tx) error {
		if _, err := findPlaylist(tx, id); err != nil {
			return err
		}

		changed, err := fn(tx)
		if err != nil {
			return err
		}
		if changed {
			if _, err := tx.Exec("UPDATE playlists SET updated_at = ? WHERE id = ?", r.now(), id); err != nil {
				return fmt.Errorf("failed to touch playlist: %w", err)
			}
		}

		result, err = findPlaylist(tx, id)
		return err
	})
	if err != nil {
		return models.Playlist{}, err
	}
	return result, nil
}

func (r *PlaylistRepository) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", shared.ErrStorage, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		if errors.Is(err, shared.ErrPlaylistNotFound) || errors.Is(err, shared.ErrInvalidInput) || errors.Is(err, shared.ErrStorage) {
			return err
		}
		return fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit transaction: %v", shared.ErrStorage, err)
	}
	return nil
}

func findPlaylist(tx *sql.Tx, id string) (models.Playlist, error) {
	query := `
		SELECT id, user_id, name, description, created_at, updated_at
		FROM playlists
		WHERE id = ?
	`

	p, err := scanPlaylist(tx.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Playlist{}, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	if err != nil {
		return models.Playlist{}, err
	}

	p.TrackIDs, err = trackIDs(tx, id)
	if err != nil {
		return models.Playlist{}, err
	}
	return p, nil
}

func trackIDs(tx *sql.Tx, playlistID string) ([]string, error) {
	rows, err := tx.Query("SELECT track_id FROM playlist_tracks WHERE playlist_id = ? ORDER BY position ASC", playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist tracks: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan track id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// scanPlaylist scans playlist columns. sql.ErrNoRows is returned unwrapped.
func scanPlaylist(row rowScanner) (models.Playlist, error) {
	var p models.Playlist
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Playlist{}, err
	}
	if err != nil {
		return models.Playlist{}, fmt.Errorf("failed to scan playlist: %w", err)
	}
	return p, nil
}
