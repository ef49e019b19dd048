package catalog

import (
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/musicmeta/internal/cache"
	"github.com/desertthunder/musicmeta/internal/models"
)

const allTracksKey = "tracks:all"

func trackKey(id string) string {
	return "track:" + id
}

// Service serves catalog reads from the cache and writes through to the store.
type Service struct {
	mu     sync.Mutex
	store  models.TrackRepository
	cache  *cache.Cache[any]
	logger *log.Logger
}

// NewService creates a catalog service over store and c.
func NewService(store models.TrackRepository, c *cache.Cache[any], logger *log.Logger) *Service {
	return &Service{store: store, cache: c, logger: logger}
}

// GetByID returns the track with id, reading through the cache.
func (s *Service) GetByID(id string) (models.Track, error) {
	key := trackKey(id)
	if t, ok := s.cachedTrack(key); ok {
		s.logger.Debug("cache hit", "key", key)
		return t, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Debug("cache miss", "key", key)
	t, err := s.store.Find(id)
	if err != nil {
		return models.Track{}, err
	}
	s.cache.Set(key, t, cache.DefaultExpiration)
	return t, nil
}

// GetAll returns every track in insertion order, reading through the cache.
func (s *Service) GetAll() ([]models.Track, error) {
	if ts, ok := s.cachedTracks(); ok {
		s.logger.Debug("cache hit", "key", allTracksKey)
		return ts, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Debug("cache miss", "key", allTracksKey)
	ts, err := s.store.List()
	if err != nil {
		return nil, err
	}
	s.cache.Set(allTracksKey, slices.Clone(ts), cache.DefaultExpiration)
	return ts, nil
}

// Create validates in, applies the default cover and stores the track.
func (s *Service) Create(in models.TrackInput) (models.Track, error) {
	if err := in.Validate(); err != nil {
		return models.Track{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.store.Create(in.WithDefaults())
	if err != nil {
		return models.Track{}, err
	}

	s.invalidate(allTracksKey)
	s.logger.Info("track created", "id", t.ID, "title", t.Title)
	return t, nil
}

// Update applies patch to the track with id. The cache is untouched when the track does not exist.
func (s *Service) Update(id string, patch models.TrackPatch) (models.Track, error) {
	if err := patch.Validate(); err != nil {
		return models.Track{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.store.Update(id, patch)
	if err != nil {
		return models.Track{}, err
	}

	s.invalidate(trackKey(id), allTracksKey)
	s.logger.Info("track updated", "id", id)
	return t, nil
}

// Delete removes the track with id and reports whether it existed.
func (s *Service) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.store.Delete(id)
	if err != nil || !removed {
		return false, err
	}

	s.invalidate(trackKey(id), allTracksKey)
	s.logger.Info("track deleted", "id", id)
	return true, nil
}

// CacheStats returns a snapshot of the cache.
func (s *Service) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// ClearCache drops every cached entry.
func (s *Service) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Clear()
	s.logger.Info("cache cleared")
}

func (s *Service) invalidate(keys ...string) {
	for _, k := range keys {
		s.cache.Delete(k)
		s.logger.Debug("cache invalidated", "key", k)
	}
}

func (s *Service) cachedTrack(key string) (models.Track, bool) {
	v, ok := s.cache.Get(key)
	if !ok {
		return models.Track{}, false
	}
	t, ok := v.(models.Track)
	return t, ok
}

// cachedTracks returns a copy so callers cannot mutate the cached slice.
func (s *Service) cachedTracks() ([]models.Track, bool) {
	v, ok := s.cache.Get(allTracksKey)
	if !ok {
		return nil, false
	}
	ts, ok := v.([]models.Track)
	if !ok {
		return nil, false
	}
	return slices.Clone(ts), true
}
