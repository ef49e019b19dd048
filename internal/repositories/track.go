package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/musicmeta/internal/models"
	"github.com/desertthunder/musicmeta/internal/shared"
)

// TrackRepository implements [models.TrackRepository] on SQLite.
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// Find retrieves a track by ID
func (r *TrackRepository) Find(id string) (models.Track, error) {
	query := `
		SELECT id, title, artist, cover, duration
		FROM tracks
		WHERE id = ?
	`

	return scanTrack(r.db.QueryRow(query, id))
}

// List retrieves all tracks ordered by insertion
func (r *TrackRepository) List() ([]models.Track, error) {
	query := `
		SELECT id, title, artist, cover, duration
		FROM tracks
		ORDER BY sequence ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query tracks: %v", shared.ErrStorage, err)
	}
	defer rows.Close()

	tracks := []models.Track{}
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: row iteration error: %v", shared.ErrStorage, err)
	}

	return tracks, nil
}

// Create inserts a new track with a generated ID and sequence
func (r *TrackRepository) Create(in models.TrackInput) (models.Track, error) {
	track := models.Track{
		ID:       shared.GenerateID(),
		Title:    in.Title,
		Artist:   in.Artist,
		Cover:    in.Cover,
		Duration: in.Duration,
	}

	err := r.withTx(func(tx *sql.Tx) error {
		return insertTrack(tx, track)
	})
	if err != nil {
		return models.Track{}, err
	}
	return track, nil
}

// SeedIfEmpty inserts tracks when the table has no rows and returns how many were written.
func (r *TrackRepository) SeedIfEmpty(tracks []models.Track) (int, error) {
	inserted := 0
	err := r.withTx(func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRow("SELECT COUNT(*) FROM tracks").Scan(&count); err != nil {
			return fmt.Errorf("failed to count tracks: %w", err)
		}
		if count > 0 {
			return nil
		}

		for _, t := range tracks {
			if err := insertTrack(tx, t); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// Update merges the present fields of patch into the stored track
func (r *TrackRepository) Update(id string, patch models.TrackPatch) (models.Track, error) {
	var updated models.Track
	err := r.withTx(func(tx *sql.Tx) error {
		current, err := scanTrack(tx.QueryRow("SELECT id, title, artist, cover, duration FROM tracks WHERE id = ?", id))
		if err != nil {
			return err
		}

		updated = patch.Apply(current)

		query := `
			UPDATE tracks
			SET title = ?, artist = ?, cover = ?, duration = ?, updated_at = ?
			WHERE id = ?
		`
		_, err = tx.Exec(query, updated.Title, updated.Artist, nullableString(updated.Cover), updated.Duration, time.Now().UTC(), id)
		if err != nil {
			return fmt.Errorf("failed to update track: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Track{}, err
	}
	return updated, nil
}

// Delete removes a track by ID and reports whether a row was deleted
func (r *TrackRepository) Delete(id string) (bool, error) {
	result, err := r.db.Exec("DELETE FROM tracks WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("%w: failed to delete track: %v", shared.ErrStorage, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: failed to get affected rows: %v", shared.ErrStorage, err)
	}

	return rows > 0, nil
}

// withTx runs fn in a transaction. Errors other than lookups are reported as storage failures.
func (r *TrackRepository) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", shared.ErrStorage, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		if errors.Is(err, shared.ErrTrackNotFound) || errors.Is(err, shared.ErrStorage) {
			return err
		}
		return fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit transaction: %v", shared.ErrStorage, err)
	}
	return nil
}

func insertTrack(tx *sql.Tx, track models.Track) error {
	sequence, err := NextSequence(tx, "tracks")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO tracks (id, sequence, title, artist, cover, duration, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.Exec(query,
		track.ID,
		sequence,
		track.Title,
		track.Artist,
		nullableString(track.Cover),
		track.Duration,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert track: %w", err)
	}
	return nil
}

// rowScanner is satisfied by both [sql.Row] and [sql.Rows].
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTrack scans a single row into a [models.Track]
func scanTrack(row rowScanner) (models.Track, error) {
	var (
		track models.Track
		cover sql.NullString
	)

	err := row.Scan(&track.ID, &track.Title, &track.Artist, &cover, &track.Duration)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Track{}, fmt.Errorf("%w: no rows", shared.ErrTrackNotFound)
	}
	if err != nil {
		return models.Track{}, fmt.Errorf("%w: failed to scan track: %v", shared.ErrStorage, err)
	}

	if cover.Valid {
		track.Cover = &cover.String
	}
	return track, nil
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
