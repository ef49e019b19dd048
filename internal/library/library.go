package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/musicmeta/internal/models"
	"github.com/desertthunder/musicmeta/internal/shared"
)

// Service implements playlist operations over a [models.PlaylistRepository].
type Service struct {
	store     models.PlaylistRepository
	assembler *Assembler
	logger    *log.Logger
}

func NewService(store models.PlaylistRepository, assembler *Assembler, logger *log.Logger) *Service {
	return &Service{store: store, assembler: assembler, logger: logger}
}

// Create stores an empty playlist owned by ownerID.
func (s *Service) Create(ownerID, name, description string) (models.Playlist, error) {
	p, err := s.store.Create(models.Playlist{UserID: ownerID, Name: name, Description: description})
	if err != nil {
		return models.Playlist{}, err
	}

	s.logger.Info("playlist created", "id", p.ID, "owner", ownerID)
	return p, nil
}

// ListByOwner returns the playlists of ownerID without track details.
func (s *Service) ListByOwner(ownerID string) ([]models.Playlist, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("%w: usuarioId obrigatório", shared.ErrInvalidInput)
	}
	return s.store.ListByOwner(ownerID)
}

// Get returns the playlist with id and its resolved tracks.
func (s *Service) Get(ctx context.Context, id string) (models.PlaylistDetails, error) {
	p, err := s.store.Find(id)
	if err != nil {
		return models.PlaylistDetails{}, err
	}

	details := s.assembler.Hydrate(ctx, p)
	if n := details.Unavailable(); n > 0 {
		s.logger.Warn("playlist served with unavailable tracks", "id", id, "unavailable", n, "total", len(details.Tracks))
	}
	return details, nil
}

// AddTrack appends trackID to the playlist. Adding a track already present is a no-op.
func (s *Service) AddTrack(playlistID, trackID string) (models.Playlist, error) {
	if err := requireIDs(playlistID, trackID); err != nil {
		return models.Playlist{}, err
	}
	return s.store.AddTrack(playlistID, trackID)
}

// RemoveTrack removes trackID from the playlist. Removing an absent track is a no-op.
func (s *Service) RemoveTrack(playlistID, trackID string) (models.Playlist, error) {
	if err := requireIDs(playlistID, trackID); err != nil {
		return models.Playlist{}, err
	}
	return s.store.RemoveTrack(playlistID, trackID)
}

// Update renames or redescribes a playlist.
func (s *Service) Update(id string, patch models.PlaylistPatch) (models.Playlist, error) {
	if err := patch.Validate(); err != nil {
		return models.Playlist{}, err
	}
	return s.store.Update(id, patch)
}

// Delete removes a playlist. A missing playlist is [shared.ErrPlaylistNotFound].
func (s *Service) Delete(id string) error {
	removed, err := s.store.Delete(id)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}

	s.logger.Info("playlist deleted", "id", id)
	return nil
}

func requireIDs(playlistID, trackID string) error {
	if strings.TrimSpace(playlistID) == "" || strings.TrimSpace(trackID) == "" {
		return fmt.Errorf("%w: playlistId e musicaId são obrigatórios", shared.ErrInvalidInput)
	}
	return nil
}
