package repositories

import (
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/musicmeta/internal/models"
	"github.com/desertthunder/musicmeta/internal/shared"
)

func ptr[T any](v T) *T { return &v }

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// setupTestDB creates an in-memory SQLite database with the given migrations applied
func setupTestDB(t *testing.T, set shared.MigrationSet) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db, set); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func trackBackends(t *testing.T) map[string]func(t *testing.T) models.TrackRepository {
	return map[string]func(t *testing.T) models.TrackRepository{
		"json": func(t *testing.T) models.TrackRepository {
			return NewTrackFileRepository(filepath.Join(t.TempDir(), "musicas.json"), nil, quietLogger())
		},
		"sqlite": func(t *testing.T) models.TrackRepository {
			return NewTrackRepository(setupTestDB(t, shared.CatalogMigrations))
		},
	}
}

func playlistBackends(t *testing.T) map[string]func(t *testing.T) models.PlaylistRepository {
	return map[string]func(t *testing.T) models.PlaylistRepository{
		"json": func(t *testing.T) models.PlaylistRepository {
			return NewPlaylistFileRepository(filepath.Join(t.TempDir(), "playlists.json"), quietLogger())
		},
		"sqlite": func(t *testing.T) models.PlaylistRepository {
			return NewPlaylistRepository(setupTestDB(t, shared.LibraryMigrations))
		},
	}
}

func TestTrackRepositories(t *testing.T) {
	imagine := models.TrackInput{Title: "Imagine", Artist: "John Lennon", Cover: ptr("https://example.com/i.png"), Duration: 183}

	for name, open := range trackBackends(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("Create and Find", func(t *testing.T) {
				repo := open(t)

				created, err := repo.Create(imagine)
				if err != nil {
					t.Fatalf("failed to create track: %v", err)
				}
				if created.ID == "" {
					t.Fatal("track ID should be set after creation")
				}

				found, err := repo.Find(created.ID)
				if err != nil {
					t.Fatalf("failed to find track: %v", err)
				}
				if found.Title != "Imagine" || found.Artist != "John Lennon" || found.Duration != 183 {
					t.Errorf("unexpected track: %+v", found)
				}
				if found.CoverURL() != "https://example.com/i.png" {
					t.Errorf("expected cover to round trip, got %q", found.CoverURL())
				}
			})

			t.Run("Find missing", func(t *testing.T) {
				repo := open(t)
				if _, err := repo.Find("nonexistent-id"); !errors.Is(err, shared.ErrTrackNotFound) {
					t.Errorf("expected ErrTrackNotFound, got %v", err)
				}
			})

			t.Run("List keeps insertion order", func(t *testing.T) {
				repo := open(t)
				titles := []string{"One", "Two", "Three"}
				for _, title := range titles {
					if _, err := repo.Create(models.TrackInput{Title: title, Artist: "A", Duration: 1}); err != nil {
						t.Fatalf("failed to create track: %v", err)
					}
				}

				tracks, err := repo.List()
				if err != nil {
					t.Fatalf("failed to list tracks: %v", err)
				}
				if len(tracks) != len(titles) {
					t.Fatalf("expected %d tracks, got %d", len(titles), len(tracks))
				}
				for i, title := range titles {
					if tracks[i].Title != title {
						t.Errorf("position %d: expected %s, got %s", i, title, tracks[i].Title)
					}
				}
			})

			t.Run("Update merges present fields", func(t *testing.T) {
				repo := open(t)
				created, _ := repo.Create(imagine)

				updated, err := repo.Update(created.ID, models.TrackPatch{Duration: ptr(200)})
				if err != nil {
					t.Fatalf("failed to update track: %v", err)
				}
				if updated.Duration != 200 || updated.Title != "Imagine" || updated.Artist != "John Lennon" {
					t.Errorf("unexpected merge: %+v", updated)
				}

				found, _ := repo.Find(created.ID)
				if found.Duration != 200 {
					t.Errorf("update not persisted, duration=%d", found.Duration)
				}

				cleared, err := repo.Update(created.ID, models.TrackPatch{Duration: ptr(0), Cover: ptr("")})
				if err != nil {
					t.Fatalf("failed to apply zero values: %v", err)
				}
				if cleared.Duration != 0 || cleared.Cover != nil {
					t.Errorf("zero values should be applied: %+v", cleared)
				}
			})

			t.Run("Update missing", func(t *testing.T) {
				repo := open(t)
				if _, err := repo.Update("nonexistent-id", models.TrackPatch{Title: ptr("x")}); !errors.Is(err, shared.ErrTrackNotFound) {
					t.Errorf("expected ErrTrackNotFound, got %v", err)
				}
			})

			t.Run("Delete", func(t *testing.T) {
				repo := open(t)
				created, _ := repo.Create(imagine)

				removed, err := repo.Delete(created.ID)
				if err != nil || !removed {
					t.Fatalf("expected track to be removed, removed=%v err=%v", removed, err)
				}

				removed, err = repo.Delete(created.ID)
				if err != nil || removed {
					t.Errorf("second delete should report false, removed=%v err=%v", removed, err)
				}

				if _, err := repo.Find(created.ID); !errors.Is(err, shared.ErrTrackNotFound) {
					t.Errorf("expected ErrTrackNotFound after delete, got %v", err)
				}
			})

			t.Run("concurrent creates are not lost", func(t *testing.T) {
				repo := open(t)
				var wg sync.WaitGroup
				for range 20 {
					wg.Add(1)
					go func() {
						defer wg.Done()
						if _, err := repo.Create(imagine); err != nil {
							t.Errorf("failed to create track: %v", err)
						}
					}()
				}
				wg.Wait()

				tracks, _ := repo.List()
				if len(tracks) != 20 {
					t.Errorf("expected 20 tracks, got %d", len(tracks))
				}
			})
		})
	}
}

func TestTrackFileRepository(t *testing.T) {
	t.Run("seeds missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data", "musicas.json")
		repo := NewTrackFileRepository(path, SeedTracks, quietLogger())

		tracks, err := repo.List()
		if err != nil {
			t.Fatalf("failed to list tracks: %v", err)
		}
		if len(tracks) != 3 {
			t.Fatalf("expected 3 seed tracks, got %d", len(tracks))
		}
		if tracks[1].Title != "Imagine" || tracks[1].Duration != 183 {
			t.Errorf("unexpected seed track: %+v", tracks[1])
		}

		if _, err := os.Stat(path); err != nil {
			t.Errorf("seed file should be written: %v", err)
		}

		again, _ := NewTrackFileRepository(path, SeedTracks, quietLogger()).List()
		if again[0].ID != tracks[0].ID {
			t.Error("existing file should not be reseeded")
		}
	})

	t.Run("unreadable file degrades to empty", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "musicas.json")
		if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
			t.Fatal(err)
		}

		tracks, err := NewTrackFileRepository(path, SeedTracks, quietLogger()).List()
		if err != nil {
			t.Fatalf("read failures should not be returned: %v", err)
		}
		if len(tracks) != 0 {
			t.Errorf("expected empty collection, got %d", len(tracks))
		}
	})

	t.Run("write failure is a storage error", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "blocker")
		if err := os.WriteFile(blocker, nil, 0644); err != nil {
			t.Fatal(err)
		}

		repo := NewTrackFileRepository(filepath.Join(blocker, "musicas.json"), nil, quietLogger())
		_, err := repo.Create(models.TrackInput{Title: "Imagine", Artist: "John Lennon", Duration: 183})
		if !errors.Is(err, shared.ErrStorage) {
			t.Errorf("expected ErrStorage, got %v", err)
		}
	})
}

func TestPlaylistRepositories(t *testing.T) {
	for name, open := range playlistBackends(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("Create and Find", func(t *testing.T) {
				repo := open(t)

				created, err := repo.Create(models.Playlist{UserID: "u1", Name: "Rock", Description: "classics"})
				if err != nil {
					t.Fatalf("failed to create playlist: %v", err)
				}
				if created.ID == "" || created.CreatedAt.IsZero() || !created.CreatedAt.Equal(created.UpdatedAt) {
					t.Errorf("unexpected created playlist: %+v", created)
				}
				if created.TrackIDs == nil || len(created.TrackIDs) != 0 {
					t.Errorf("new playlist should have an empty track list, got %v", created.TrackIDs)
				}

				found, err := repo.Find(created.ID)
				if err != nil {
					t.Fatalf("failed to find playlist: %v", err)
				}
				if found.Name != "Rock" || found.UserID != "u1" || found.Description != "classics" {
					t.Errorf("unexpected playlist: %+v", found)
				}
			})

			t.Run("Create requires a name", func(t *testing.T) {
				repo := open(t)
				if _, err := repo.Create(models.Playlist{UserID: "u1"}); !errors.Is(err, shared.ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %v", err)
				}
			})

			t.Run("Find missing", func(t *testing.T) {
				repo := open(t)
				if _, err := repo.Find("nonexistent-id"); !errors.Is(err, shared.ErrPlaylistNotFound) {
					t.Errorf("expected ErrPlaylistNotFound, got %v", err)
				}
			})

			t.Run("ListByOwner", func(t *testing.T) {
				repo := open(t)
				repo.Create(models.Playlist{UserID: "u1", Name: "First"})
				repo.Create(models.Playlist{UserID: "u2", Name: "Other"})
				repo.Create(models.Playlist{UserID: "u1", Name: "Second"})

				owned, err := repo.ListByOwner("u1")
				if err != nil {
					t.Fatalf("failed to list playlists: %v", err)
				}
				if len(owned) != 2 || owned[0].Name != "First" || owned[1].Name != "Second" {
					t.Errorf("unexpected playlists: %+v", owned)
				}

				none, err := repo.ListByOwner("nobody")
				if err != nil || len(none) != 0 {
					t.Errorf("expected no playlists, got %v (err=%v)", none, err)
				}
			})

			t.Run("AddTrack keeps order and skips duplicates", func(t *testing.T) {
				repo := open(t)
				p, _ := repo.Create(models.Playlist{UserID: "u1", Name: "Rock"})

				for _, id := range []string{"t1", "t2", "t1", "t3"} {
					if _, err := repo.AddTrack(p.ID, id); err != nil {
						t.Fatalf("failed to add track %s: %v", id, err)
					}
				}

				found, _ := repo.Find(p.ID)
				want := []string{"t1", "t2", "t3"}
				if len(found.TrackIDs) != len(want) {
					t.Fatalf("expected %v, got %v", want, found.TrackIDs)
				}
				for i := range want {
					if found.TrackIDs[i] != want[i] {
						t.Errorf("position %d: expected %s, got %s", i, want[i], found.TrackIDs[i])
					}
				}
			})

			t.Run("duplicate AddTrack leaves UpdatedAt alone", func(t *testing.T) {
				repo := open(t)
				p, _ := repo.Create(models.Playlist{UserID: "u1", Name: "Rock"})
				first, _ := repo.AddTrack(p.ID, "t1")
				second, err := repo.AddTrack(p.ID, "t1")
				if err != nil {
					t.Fatalf("duplicate add should succeed: %v", err)
				}
				if !second.UpdatedAt.Equal(first.UpdatedAt) {
					t.Errorf("UpdatedAt changed on no-op add: %v -> %v", first.UpdatedAt, second.UpdatedAt)
				}
				if second.UpdatedAt.Before(p.UpdatedAt) {
					t.Error("UpdatedAt went backwards")
				}
			})

			t.Run("RemoveTrack", func(t *testing.T) {
				repo := open(t)
				p, _ := repo.Create(models.Playlist{UserID: "u1", Name: "Rock"})
				repo.AddTrack(p.ID, "t1")
				repo.AddTrack(p.ID, "t2")

				after, err := repo.RemoveTrack(p.ID, "t1")
				if err != nil {
					t.Fatalf("failed to remove track: %v", err)
				}
				if len(after.TrackIDs) != 1 || after.TrackIDs[0] != "t2" {
					t.Errorf("expected [t2], got %v", after.TrackIDs)
				}

				if _, err := repo.RemoveTrack(p.ID, "absent"); err != nil {
					t.Errorf("removing an absent track should succeed: %v", err)
				}
				if _, err := repo.RemoveTrack("nonexistent-id", "t2"); !errors.Is(err, shared.ErrPlaylistNotFound) {
					t.Errorf("expected ErrPlaylistNotFound, got %v", err)
				}
			})

			t.Run("AddTrack to missing playlist", func(t *testing.T) {
				repo := open(t)
				if _, err := repo.AddTrack("nonexistent-id", "t1"); !errors.Is(err, shared.ErrPlaylistNotFound) {
					t.Errorf("expected ErrPlaylistNotFound, got %v", err)
				}
			})

			t.Run("Update", func(t *testing.T) {
				repo := open(t)
				p, _ := repo.Create(models.Playlist{UserID: "u1", Name: "Rock", Description: "old"})

				updated, err := repo.Update(p.ID, models.PlaylistPatch{Description: ptr("")})
				if err != nil {
					t.Fatalf("failed to update playlist: %v", err)
				}
				if updated.Name != "Rock" || updated.Description != "" {
					t.Errorf("unexpected update result: %+v", updated)
				}

				if _, err := repo.Update("nonexistent-id", models.PlaylistPatch{Name: ptr("x")}); !errors.Is(err, shared.ErrPlaylistNotFound) {
					t.Errorf("expected ErrPlaylistNotFound, got %v", err)
				}
			})

			t.Run("Delete", func(t *testing.T) {
				repo := open(t)
				p, _ := repo.Create(models.Playlist{UserID: "u1", Name: "Rock"})
				repo.AddTrack(p.ID, "t1")

				removed, err := repo.Delete(p.ID)
				if err != nil || !removed {
					t.Fatalf("expected playlist to be removed, removed=%v err=%v", removed, err)
				}
				if removed, _ := repo.Delete(p.ID); removed {
					t.Error("second delete should report false")
				}
				if _, err := repo.Find(p.ID); !errors.Is(err, shared.ErrPlaylistNotFound) {
					t.Errorf("expected ErrPlaylistNotFound, got %v", err)
				}
			})

			t.Run("concurrent adds are not lost", func(t *testing.T) {
				repo := open(t)
				p, _ := repo.Create(models.Playlist{UserID: "u1", Name: "Rock"})

				var wg sync.WaitGroup
				for i := range 10 {
					wg.Add(1)
					go func(i int) {
						defer wg.Done()
						if _, err := repo.AddTrack(p.ID, string(rune('a'+i))); err != nil {
							t.Errorf("failed to add track: %v", err)
						}
					}(i)
				}
				wg.Wait()

				found, _ := repo.Find(p.ID)
				if len(found.TrackIDs) != 10 {
					t.Errorf("expected 10 tracks, got %d", len(found.TrackIDs))
				}
			})
		})
	}
}

func TestStoreFactories(t *testing.T) {
	t.Run("sqlite track store seeds empty database", func(t *testing.T) {
		cfg := shared.StorageConfig{Driver: shared.DriverSQLite, DatabasePath: filepath.Join(t.TempDir(), "catalog.db"), Seed: true}
		repo, closeFn, err := NewTrackStore(cfg, quietLogger())
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}
		defer closeFn()

		tracks, _ := repo.List()
		if len(tracks) != 3 || tracks[0].Title != "Bohemian Rhapsody" {
			t.Errorf("expected seeded tracks, got %+v", tracks)
		}
	})

	t.Run("json playlist store", func(t *testing.T) {
		cfg := shared.StorageConfig{Driver: shared.DriverJSON, Path: filepath.Join(t.TempDir(), "playlists.json")}
		repo, closeFn, err := NewPlaylistStore(cfg, quietLogger())
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}
		defer closeFn()

		if _, ok := repo.(*PlaylistFileRepository); !ok {
			t.Errorf("expected file repository, got %T", repo)
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, _, err := NewTrackStore(shared.StorageConfig{Driver: "postgres"}, quietLogger())
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
