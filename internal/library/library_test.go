package library

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/musicmeta/internal/models"
	"github.com/desertthunder/musicmeta/internal/repositories"
	"github.com/desertthunder/musicmeta/internal/services"
	"github.com/desertthunder/musicmeta/internal/shared"
	tu "github.com/desertthunder/musicmeta/internal/testing"
)

func ptr[T any](v T) *T { return &v }

// recordingFetcher resolves ids from a fixed map and counts calls.
type recordingFetcher struct {
	tracks map[string]models.Track
	calls  atomic.Int64
}

func (f *recordingFetcher) FetchMany(_ context.Context, ids []string) []models.Track {
	f.calls.Add(1)
	out := make([]models.Track, len(ids))
	for i, id := range ids {
		if t, ok := f.tracks[id]; ok {
			out[i] = t
		} else {
			out[i] = models.NewPlaceholderTrack(id)
		}
	}
	return out
}

func newService(t *testing.T, fetcher TrackFetcher) *Service {
	t.Helper()
	logger := log.New(io.Discard)
	store := repositories.NewPlaylistFileRepository(filepath.Join(t.TempDir(), "playlists.json"), logger)
	return NewService(store, NewAssembler(fetcher), logger)
}

func TestAssembler(t *testing.T) {
	t.Run("empty playlist makes no remote call", func(t *testing.T) {
		f := &recordingFetcher{}
		d := NewAssembler(f).Hydrate(context.Background(), models.Playlist{ID: "p1", Name: "Empty"})

		if f.calls.Load() != 0 {
			t.Errorf("expected no fetch, got %d", f.calls.Load())
		}
		if d.Tracks == nil || len(d.Tracks) != 0 {
			t.Errorf("expected empty non-nil tracks, got %v", d.Tracks)
		}
		if d.TrackIDs == nil {
			t.Error("track ids should be normalized to an empty list")
		}
	})

	t.Run("tracks follow id order", func(t *testing.T) {
		f := &recordingFetcher{tracks: map[string]models.Track{
			"a": {ID: "a", Title: "A"},
			"b": {ID: "b", Title: "B"},
		}}
		d := NewAssembler(f).Hydrate(context.Background(), models.Playlist{TrackIDs: []string{"b", "x", "a"}})

		if len(d.Tracks) != 3 || d.Tracks[0].Title != "B" || d.Tracks[2].Title != "A" {
			t.Errorf("unexpected tracks: %+v", d.Tracks)
		}
		if !d.Tracks[1].IsPlaceholder() {
			t.Errorf("dangling id should be a placeholder: %+v", d.Tracks[1])
		}
	})
}

func TestService(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		svc := newService(t, &recordingFetcher{})

		p, err := svc.Create("u1", "Rock", "")
		if err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}
		if p.UserID != "u1" || p.Name != "Rock" || len(p.TrackIDs) != 0 {
			t.Errorf("unexpected playlist: %+v", p)
		}

		for _, tc := range []struct{ owner, name string }{{"u1", ""}, {"", "Rock"}} {
			if _, err := svc.Create(tc.owner, tc.name, ""); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput for %+v, got %v", tc, err)
			}
		}
	})

	t.Run("ListByOwner", func(t *testing.T) {
		svc := newService(t, &recordingFetcher{})
		svc.Create("u1", "A", "")
		svc.Create("u2", "B", "")

		owned, err := svc.ListByOwner("u1")
		if err != nil || len(owned) != 1 || owned[0].Name != "A" {
			t.Errorf("unexpected listing: %+v (err=%v)", owned, err)
		}
		if _, err := svc.ListByOwner(" "); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Get hydrates tracks", func(t *testing.T) {
		f := &recordingFetcher{tracks: map[string]models.Track{"t1": {ID: "t1", Title: "Imagine", Duration: 183}}}
		svc := newService(t, f)
		p, _ := svc.Create("u1", "Rock", "")
		svc.AddTrack(p.ID, "t1")

		d, err := svc.Get(context.Background(), p.ID)
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}
		if len(d.Tracks) != 1 || d.Tracks[0].Title != "Imagine" {
			t.Errorf("unexpected details: %+v", d)
		}
		if d.Name != "Rock" || d.UserID != "u1" {
			t.Errorf("playlist fields should be embedded: %+v", d.Playlist)
		}
	})

	t.Run("Get missing playlist", func(t *testing.T) {
		svc := newService(t, &recordingFetcher{})
		if _, err := svc.Get(context.Background(), "ghost"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("AddTrack and RemoveTrack", func(t *testing.T) {
		svc := newService(t, &recordingFetcher{})
		p, _ := svc.Create("u1", "Rock", "")

		svc.AddTrack(p.ID, "t1")
		got, err := svc.AddTrack(p.ID, "t1")
		if err != nil || len(got.TrackIDs) != 1 {
			t.Errorf("duplicate add should be a no-op: %v (err=%v)", got.TrackIDs, err)
		}

		got, err = svc.RemoveTrack(p.ID, "t1")
		if err != nil || len(got.TrackIDs) != 0 {
			t.Errorf("expected empty playlist after remove: %v (err=%v)", got.TrackIDs, err)
		}

		if _, err := svc.AddTrack(p.ID, ""); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if _, err := svc.AddTrack("ghost", "t1"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		svc := newService(t, &recordingFetcher{})
		p, _ := svc.Create("u1", "Rock", "old")

		got, err := svc.Update(p.ID, models.PlaylistPatch{Name: ptr("Classics")})
		if err != nil || got.Name != "Classics" || got.Description != "old" {
			t.Errorf("unexpected update: %+v (err=%v)", got, err)
		}
		if _, err := svc.Update(p.ID, models.PlaylistPatch{Name: ptr("")}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		svc := newService(t, &recordingFetcher{})
		p, _ := svc.Create("u1", "Rock", "")

		if err := svc.Delete(p.ID); err != nil {
			t.Fatalf("failed to delete playlist: %v", err)
		}
		if err := svc.Delete(p.ID); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})
}

func TestServiceWithCatalog(t *testing.T) {
	cover := "https://via.placeholder.com/300?text=Queen"
	tracks := []models.Track{
		{ID: "T1", Title: "Bohemian Rhapsody", Artist: "Queen", Cover: &cover, Duration: 354},
		{ID: "T2", Title: "Imagine", Artist: "John Lennon", Duration: 183},
	}

	t.Run("partial catalog failure", func(t *testing.T) {
		stub := tu.NewCatalogStub(t, tracks...)
		stub.Fail("T2", http.StatusInternalServerError)
		svc := newService(t, services.NewMetadataClient(stub.URL, log.New(io.Discard)))

		p, _ := svc.Create("u1", "Mix", "")
		svc.AddTrack(p.ID, "T1")
		svc.AddTrack(p.ID, "T2")

		d, err := svc.Get(context.Background(), p.ID)
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}
		if len(d.Tracks) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(d.Tracks))
		}
		if d.Tracks[0].Title != "Bohemian Rhapsody" {
			t.Errorf("T1 should be resolved: %+v", d.Tracks[0])
		}
		if !d.Tracks[1].IsPlaceholder() || d.Tracks[1].ID != "T2" {
			t.Errorf("T2 should be a placeholder: %+v", d.Tracks[1])
		}
	})

	t.Run("catalog down", func(t *testing.T) {
		stub := tu.NewCatalogStub(t, tracks...)
		url := stub.URL
		stub.Close()
		svc := newService(t, services.NewMetadataClient(url, log.New(io.Discard)))

		p, _ := svc.Create("u1", "Mix", "")
		svc.AddTrack(p.ID, "T1")
		svc.AddTrack(p.ID, "T2")

		d, err := svc.Get(context.Background(), p.ID)
		if err != nil {
			t.Fatalf("catalog outage should not fail the read: %v", err)
		}
		if len(d.Tracks) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(d.Tracks))
		}
		for i, id := range []string{"T1", "T2"} {
			tr := d.Tracks[i]
			if tr.ID != id || tr.Title != models.PlaceholderText || tr.Artist != models.PlaceholderText || tr.Cover != nil || tr.Duration != 0 || tr.Notice == "" {
				t.Errorf("position %d should be a placeholder for %s: %+v", i, id, tr)
			}
		}
	})

	t.Run("empty playlist never calls the catalog", func(t *testing.T) {
		stub := tu.NewCatalogStub(t, tracks...)
		svc := newService(t, services.NewMetadataClient(stub.URL, log.New(io.Discard)))

		p, _ := svc.Create("u1", "Empty", "")
		d, err := svc.Get(context.Background(), p.ID)
		if err != nil || len(d.Tracks) != 0 {
			t.Errorf("unexpected details: %+v (err=%v)", d, err)
		}
		if stub.Requests() != 0 {
			t.Errorf("expected no catalog requests, got %d", stub.Requests())
		}
	})
}
