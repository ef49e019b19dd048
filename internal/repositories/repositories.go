package repositories

import (
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/musicmeta/internal/models"
	"github.com/desertthunder/musicmeta/internal/shared"
)

// NextSequence increments and returns the next sequence number for table within tx.
//
// Sequence numbers order rows by insertion. They are never exposed over the API.
func NextSequence(tx *sql.Tx, table string) (int, error) {
	sequenceTable := table + "_sequence"

	_, err := tx.Exec(fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1", sequenceTable))
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var sequence int
	err = tx.QueryRow(fmt.Sprintf("SELECT value FROM %s WHERE id = 1", sequenceTable)).Scan(&sequence)
	if err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}

	return sequence, nil
}

// NewTrackStore opens the track store described by cfg. The returned close function releases
// any database handle and is always non-nil when err is nil.
func NewTrackStore(cfg shared.StorageConfig, logger *log.Logger) (models.TrackRepository, func() error, error) {
	switch cfg.Driver {
	case shared.DriverJSON, "":
		var seed func() []models.Track
		if cfg.Seed {
			seed = SeedTracks
		}
		return NewTrackFileRepository(cfg.Path, seed, logger), noopClose, nil
	case shared.DriverSQLite:
		db, err := openDatabase(cfg, shared.CatalogMigrations)
		if err != nil {
			return nil, nil, err
		}

		repo := NewTrackRepository(db)
		if cfg.Seed {
			n, err := repo.SeedIfEmpty(SeedTracks())
			if err != nil {
				db.Close()
				return nil, nil, err
			}
			if n > 0 {
				logger.Info("seeded track database", "count", n, "path", cfg.DatabasePath)
			}
		}
		return repo, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown storage driver %q", shared.ErrInvalidConfig, cfg.Driver)
	}
}

// NewPlaylistStore opens the playlist store described by cfg.
func NewPlaylistStore(cfg shared.StorageConfig, logger *log.Logger) (models.PlaylistRepository, func() error, error) {
	switch cfg.Driver {
	case shared.DriverJSON, "":
		return NewPlaylistFileRepository(cfg.Path, logger), noopClose, nil
	case shared.DriverSQLite:
		db, err := openDatabase(cfg, shared.LibraryMigrations)
		if err != nil {
			return nil, nil, err
		}
		return NewPlaylistRepository(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown storage driver %q", shared.ErrInvalidConfig, cfg.Driver)
	}
}

func openDatabase(cfg shared.StorageConfig, set shared.MigrationSet) (*sql.DB, error) {
	db, err := shared.NewDatabase(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	shared.ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxOpenConns)

	if err := shared.RunMigrations(db, set); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	return db, nil
}

func noopClose() error { return nil }

// SeedTracks returns the demo tracks written to an empty catalog, each with a fresh id.
func SeedTracks() []models.Track {
	cover := func(s string) *string { return &s }
	return []models.Track{
		{ID: shared.GenerateID(), Title: "Bohemian Rhapsody", Artist: "Queen", Cover: cover("https://via.placeholder.com/300?text=Queen"), Duration: 354},
		{ID: shared.GenerateID(), Title: "Imagine", Artist: "John Lennon", Cover: cover("https://via.placeholder.com/300?text=Lennon"), Duration: 183},
		{ID: shared.GenerateID(), Title: "Hotel California", Artist: "Eagles", Cover: cover("https://via.placeholder.com/300?text=Eagles"), Duration: 391},
	}
}
