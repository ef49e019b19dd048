package library

import (
	"context"

	"github.com/desertthunder/musicmeta/internal/models"
)

// TrackFetcher resolves track ids. Implementations return one track per id, in order,
// substituting placeholders for ids they cannot resolve.
type TrackFetcher interface {
	FetchMany(ctx context.Context, ids []string) []models.Track
}

// Assembler turns stored playlists into [models.PlaylistDetails].
type Assembler struct {
	fetcher TrackFetcher
}

func NewAssembler(fetcher TrackFetcher) *Assembler {
	return &Assembler{fetcher: fetcher}
}

// Hydrate resolves every track id of p. An empty playlist makes no remote call.
func (a *Assembler) Hydrate(ctx context.Context, p models.Playlist) models.PlaylistDetails {
	details := models.PlaylistDetails{Playlist: p.Clone(), Tracks: []models.Track{}}
	if len(p.TrackIDs) == 0 {
		return details
	}

	details.Tracks = a.fetcher.FetchMany(ctx, p.TrackIDs)
	return details
}
