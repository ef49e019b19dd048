package repositories

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/musicmeta/internal/models"
	"github.com/desertthunder/musicmeta/internal/shared"
)

// TrackFileRepository stores tracks as a JSON array in a single file.
type TrackFileRepository struct {
	file *fileCollection[models.Track]
}

// NewTrackFileRepository creates a repository backed by path. When seed is non-nil, a missing
// file is created with the tracks it returns.
func NewTrackFileRepository(path string, seed func() []models.Track, logger *log.Logger) *TrackFileRepository {
	return &TrackFileRepository{file: newFileCollection(path, seed, logger)}
}

// Find returns the track with id.
func (r *TrackFileRepository) Find(id string) (models.Track, error) {
	for _, t := range r.file.snapshot() {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Track{}, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
}

// List returns every track in insertion order.
func (r *TrackFileRepository) List() ([]models.Track, error) {
	return r.file.snapshot(), nil
}

// Create appends a track with a fresh id.
func (r *TrackFileRepository) Create(in models.TrackInput) (models.Track, error) {
	track := models.Track{
		ID:       shared.GenerateID(),
		Title:    in.Title,
		Artist:   in.Artist,
		Cover:    in.Cover,
		Duration: in.Duration,
	}

	err := r.file.mutate(func(items []models.Track) ([]models.Track, bool, error) {
		return append(items, track), true, nil
	})
	if err != nil {
		return models.Track{}, err
	}
	return track, nil
}

// Update merges patch into the track with id.
func (r *TrackFileRepository) Update(id string, patch models.TrackPatch) (models.Track, error) {
	var updated models.Track
	err := r.file.mutate(func(items []models.Track) ([]models.Track, bool, error) {
		i := slices.IndexFunc(items, func(t models.Track) bool { return t.ID == id })
		if i < 0 {
			return nil, false, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
		}
		items[i] = patch.Apply(items[i])
		updated = items[i]
		return items, true, nil
	})
	if err != nil {
		return models.Track{}, err
	}
	return updated, nil
}

// Delete removes the track with id and reports whether it existed.
func (r *TrackFileRepository) Delete(id string) (bool, error) {
	removed := false
	err := r.file.mutate(func(items []models.Track) ([]models.Track, bool, error) {
		i := slices.IndexFunc(items, func(t models.Track) bool { return t.ID == id })
		if i < 0 {
			return items, false, nil
		}
		removed = true
		return slices.Delete(items, i, i+1), true, nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}
