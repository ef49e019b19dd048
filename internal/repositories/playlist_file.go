package repositories

import (
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/musicmeta/internal/models"
	"github.com/desertthunder/musicmeta/internal/shared"
)

// PlaylistFileRepository stores playlists as a JSON array in a single file.
type PlaylistFileRepository struct {
	file *fileCollection[models.Playlist]
	now  func() time.Time
}

// NewPlaylistFileRepository creates a repository backed by path. A missing file is an empty library.
func NewPlaylistFileRepository(path string, logger *log.Logger) *PlaylistFileRepository {
	return &PlaylistFileRepository{
		file: newFileCollection[models.Playlist](path, nil, logger),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *PlaylistFileRepository) Find(id string) (models.Playlist, error) {
	for _, p := range r.file.snapshot() {
		if p.ID == id {
			return p.Clone(), nil
		}
	}
	return models.Playlist{}, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
}

func (r *PlaylistFileRepository) ListByOwner(userID string) ([]models.Playlist, error) {
	owned := []models.Playlist{}
	for _, p := range r.file.snapshot() {
		if p.UserID == userID {
			owned = append(owned, p.Clone())
		}
	}
	return owned, nil
}

// Create stores p with a fresh id, an empty track list and both timestamps set to now.
func (r *PlaylistFileRepository) Create(p models.Playlist) (models.Playlist, error) {
	if err := p.Validate(); err != nil {
		return models.Playlist{}, err
	}

	now := r.now()
	p.ID = shared.GenerateID()
	p.TrackIDs = []string{}
	p.CreatedAt = now
	p.UpdatedAt = now

	err := r.file.mutate(func(items []models.Playlist) ([]models.Playlist, bool, error) {
		return append(items, p), true, nil
	})
	if err != nil {
		return models.Playlist{}, err
	}
	return p, nil
}

func (r *PlaylistFileRepository) AddTrack(playlistID, trackID string) (models.Playlist, error) {
	return r.modify(playlistID, func(p *models.Playlist) bool {
		if p.HasTrack(trackID) {
			return false
		}
		p.TrackIDs = append(p.TrackIDs, trackID)
		return true
	})
}

func (r *PlaylistFileRepository) RemoveTrack(playlistID, trackID string) (models.Playlist, error) {
	return r.modify(playlistID, func(p *models.Playlist) bool {
		i := slices.Index(p.TrackIDs, trackID)
		if i < 0 {
			return false
		}
		p.TrackIDs = slices.Delete(p.TrackIDs, i, i+1)
		return true
	})
}

func (r *PlaylistFileRepository) Update(id string, patch models.PlaylistPatch) (models.Playlist, error) {
	return r.modify(id, func(p *models.Playlist) bool {
		next, changed := patch.Apply(*p)
		*p = next
		return changed
	})
}

func (r *PlaylistFileRepository) Delete(id string) (bool, error) {
	removed := false
	err := r.file.mutate(func(items []models.Playlist) ([]models.Playlist, bool, error) {
		i := slices.IndexFunc(items, func(p models.Playlist) bool { return p.ID == id })
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

// modify applies fn to the playlist with id and persists only when fn reports a change,
// bumping UpdatedAt in that case.
func (r *PlaylistFileRepository) modify(id string, fn func(p *models.Playlist) bool) (models.Playlist, error) {
	var result models.Playlist
	err := r.file.mutate(func(items []models.Playlist) ([]models.Playlist, bool, error) {
		i := slices.IndexFunc(items, func(p models.Playlist) bool { return p.ID == id })
		if i < 0 {
			return nil, false, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
		}

		p := items[i].Clone()
		changed := fn(&p)
		if changed {
			p.UpdatedAt = r.now()
			items[i] = p
		}
		result = p.Clone()
		return items, changed, nil
	})
	if err != nil {
		return models.Playlist{}, err
	}
	return result, nil
}
