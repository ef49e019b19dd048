package models

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/desertthunder/musicmeta/internal/shared"
)

const (
	// DefaultCover is assigned to tracks created without a cover URL.
	DefaultCover = "https://via.placeholder.com/300?text=Sem+Capa"
	// PlaceholderText fills the title and artist of a track whose details could not be fetched.
	PlaceholderText = "unavailable"
	// PlaceholderNotice is the fixed notice carried by every placeholder track.
	PlaceholderNotice = "track details unavailable (metadata service offline)"
)

// Track is the catalog record for a single song.
type Track struct {
	ID       string  `json:"id"`
	Title    string  `json:"titulo"`
	Artist   string  `json:"artista"`
	Cover    *string `json:"capa"`
	Duration int     `json:"duracao"`
	// Notice is only set on placeholder tracks.
	Notice string `json:"aviso,omitempty"`
}

// NewPlaceholderTrack stands in for a track whose details could not be retrieved.
func NewPlaceholderTrack(id string) Track {
	return Track{
		ID:       id,
		Title:    PlaceholderText,
		Artist:   PlaceholderText,
		Duration: 0,
		Notice:   PlaceholderNotice,
	}
}

// IsPlaceholder reports whether t was produced by [NewPlaceholderTrack].
func (t Track) IsPlaceholder() bool {
	return t.Notice != ""
}

// CoverURL returns the cover or an empty string when there is none.
func (t Track) CoverURL() string {
	if t.Cover == nil {
		return ""
	}
	return *t.Cover
}

// TrackInput holds the fields accepted when creating a track.
type TrackInput struct {
	Title    string  `json:"titulo"`
	Artist   string  `json:"artista"`
	Cover    *string `json:"capa"`
	Duration int     `json:"duracao"`
}

// Validate checks the create rules: title and artist present, duration positive.
func (in TrackInput) Validate() error {
	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "titulo")
	}
	if strings.TrimSpace(in.Artist) == "" {
		missing = append(missing, "artista")
	}
	if in.Duration <= 0 {
		missing = append(missing, "duracao")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s obrigatórios", shared.ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}

// WithDefaults returns a copy with the default cover applied when none was given.
func (in TrackInput) WithDefaults() TrackInput {
	if in.Cover == nil || *in.Cover == "" {
		cover := DefaultCover
		in.Cover = &cover
	}
	return in
}

// TrackPatch is a partial update. A nil field is absent; a non-nil field is applied even when zero.
type TrackPatch struct {
	Title    *string `json:"titulo,omitempty"`
	Artist   *string `json:"artista,omitempty"`
	Cover    *string `json:"capa,omitempty"`
	Duration *int    `json:"duracao,omitempty"`
}

// Validate rejects present-but-empty title or artist and negative durations.
func (p TrackPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: titulo não pode ser vazio", shared.ErrInvalidInput)
	}
	if p.Artist != nil && strings.TrimSpace(*p.Artist) == "" {
		return fmt.Errorf("%w: artista não pode ser vazio", shared.ErrInvalidInput)
	}
	if p.Duration != nil && *p.Duration < 0 {
		return fmt.Errorf("%w: duracao não pode ser negativa", shared.ErrInvalidInput)
	}
	return nil
}

// Apply merges the present fields of p into t. An empty cover string clears the cover.
func (p TrackPatch) Apply(t Track) Track {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Artist != nil {
		t.Artist = *p.Artist
	}
	if p.Cover != nil {
		if *p.Cover == "" {
			t.Cover = nil
		} else {
			cover := *p.Cover
			t.Cover = &cover
		}
	}
	if p.Duration != nil {
		t.Duration = *p.Duration
	}
	return t
}

// IsEmpty reports whether no field is present.
func (p TrackPatch) IsEmpty() bool {
	return p.Title == nil && p.Artist == nil && p.Cover == nil && p.Duration == nil
}

// Playlist is a user's ordered list of track references.
//
// TrackIDs never contains duplicates. Ids are not checked against the catalog.
type Playlist struct {
	ID          string    `json:"id"`
	UserID      string    `json:"usuarioId"`
	Name        string    `json:"nome"`
	Description string    `json:"descricao"`
	TrackIDs    []string  `json:"musicaIds"`
	CreatedAt   time.Time `json:"criadoEm"`
	UpdatedAt   time.Time `json:"atualizadoEm"`
}

// Validate checks the required fields of a playlist.
func (p Playlist) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return fmt.Errorf("%w: usuarioId obrigatório", shared.ErrInvalidInput)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: nome obrigatório", shared.ErrInvalidInput)
	}
	return nil
}

// HasTrack reports whether trackID is already referenced.
func (p Playlist) HasTrack(trackID string) bool {
	return slices.Contains(p.TrackIDs, trackID)
}

// Clone returns a copy that does not share the TrackIDs backing array.
func (p Playlist) Clone() Playlist {
	p.TrackIDs = slices.Clone(p.TrackIDs)
	if p.TrackIDs == nil {
		p.TrackIDs = []string{}
	}
	return p
}

// PlaylistPatch is a partial playlist update with the same presence rules as [TrackPatch].
type PlaylistPatch struct {
	Name        *string `json:"nome,omitempty"`
	Description *string `json:"descricao,omitempty"`
}

// Validate rejects a present but empty name.
func (p PlaylistPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("%w: nome não pode ser vazio", shared.ErrInvalidInput)
	}
	return nil
}

// Apply merges the present fields of p into pl and reports whether anything changed.
func (p PlaylistPatch) Apply(pl Playlist) (Playlist, bool) {
	changed := false
	if p.Name != nil && *p.Name != pl.Name {
		pl.Name = *p.Name
		changed = true
	}
	if p.Description != nil && *p.Description != pl.Description {
		pl.Description = *p.Description
		changed = true
	}
	return pl, changed
}

// PlaylistDetails is a playlist with its tracks resolved, in TrackIDs order.
// It is built on every read and never stored.
type PlaylistDetails struct {
	Playlist
	Tracks []Track `json:"musicas"`
}

// TotalDuration sums the durations of the resolved tracks in seconds.
func (d PlaylistDetails) TotalDuration() int {
	total := 0
	for _, t := range d.Tracks {
		total += t.Duration
	}
	return total
}

// Unavailable counts the placeholder tracks.
func (d PlaylistDetails) Unavailable() int {
	n := 0
	for _, t := range d.Tracks {
		if t.IsPlaceholder() {
			n++
		}
	}
	return n
}

// TrackRepository persists catalog tracks.
type TrackRepository interface {
	Find(id string) (Track, error)                     // Find returns [shared.ErrTrackNotFound] when id is unknown
	List() ([]Track, error)                            // List returns tracks in insertion order
	Create(in TrackInput) (Track, error)               // Create assigns a fresh id
	Update(id string, patch TrackPatch) (Track, error) // Update merges the present fields of patch
	Delete(id string) (bool, error)                    // Delete reports whether a track was removed
}

// PlaylistRepository persists playlists.
type PlaylistRepository interface {
	Find(id string) (Playlist, error) // Find returns [shared.ErrPlaylistNotFound] when id is unknown
	ListByOwner(userID string) ([]Playlist, error)
	Create(p Playlist) (Playlist, error)
	AddTrack(playlistID, trackID string) (Playlist, error)    // AddTrack is a no-op for tracks already present
	RemoveTrack(playlistID, trackID string) (Playlist, error) // RemoveTrack is a no-op for tracks not present
	Update(id string, patch PlaylistPatch) (Playlist, error)
	Delete(id string) (bool, error)
}
