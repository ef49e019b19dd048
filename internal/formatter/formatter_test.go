package formatter

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/musicmeta/internal/models"
	"github.com/desertthunder/musicmeta/internal/shared"
	th "github.com/desertthunder/musicmeta/internal/testing"
)

func sampleDetails() *models.PlaylistDetails {
	cover := "https://example.com/queen.jpg"
	return &models.PlaylistDetails{
		Playlist: models.Playlist{
			ID:          "test123",
			UserID:      "u1",
			Name:        "Test Playlist",
			Description: "A test playlist",
			TrackIDs:    []string{"track1", "track2", "track3"},
			UpdatedAt:   time.Now().Add(-2 * time.Hour),
		},
		Tracks: []models.Track{
			{ID: "track1", Title: "Song One", Artist: "Artist One", Cover: &cover, Duration: 180},
			{ID: "track2", Title: "Song Two", Artist: "Artist Two", Duration: 240},
			models.NewPlaceholderTrack("track3"),
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleDetails())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "ID,Title,Artist,Duration,Cover,Available") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "track1,Song One,Artist One,180,https://example.com/queen.jpg,true") {
			t.Errorf("CSV missing track1, got: %s", output)
		}
		if !strings.Contains(output, "track2,Song Two,Artist Two,240,,true") {
			t.Errorf("CSV missing track2 (no cover), got: %s", output)
		}
		if !strings.Contains(output, "track3,unavailable,unavailable,0,,false") {
			t.Errorf("CSV should mark the placeholder unavailable, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		t.Run("without cover image", func(t *testing.T) {
			data, err := ExportToMarkdown(sampleDetails(), "")
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}

			output := string(data)

			if !strings.Contains(output, "# Test Playlist") {
				t.Errorf("Markdown missing title")
			}
			if !strings.Contains(output, "**Description**: A test playlist") {
				t.Errorf("Markdown missing description")
			}
			if !strings.Contains(output, "**Tracks**: 3") {
				t.Errorf("Markdown missing track count")
			}
			if !strings.Contains(output, "**Length**: 7:00") {
				t.Errorf("Markdown missing total length, got: %s", output)
			}
			if !strings.Contains(output, "1. Artist One - Song One [3:00]") {
				t.Errorf("Markdown missing track1, got: %s", output)
			}
			if !strings.Contains(output, "3. _"+models.PlaceholderNotice+"_ (`track3`)") {
				t.Errorf("Markdown missing placeholder line, got: %s", output)
			}
			if strings.Contains(output, "![Cover]") {
				t.Errorf("Markdown should not reference a cover")
			}
		})

		t.Run("with cover image", func(t *testing.T) {
			data, err := ExportToMarkdown(sampleDetails(), "test_cover.jpg")
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}

			if !strings.Contains(string(data), "![Cover](test_cover.jpg)") {
				t.Errorf("Markdown missing cover image reference")
			}
		})
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(sampleDetails())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)

		for _, want := range []string{
			"Playlist: Test Playlist",
			"Description: A test playlist",
			"Tracks: 3 (7:00)",
			"Updated: 2 hours ago",
			"Unavailable: 1",
			"1. Artist One - Song One",
			"3. unavailable - unavailable",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Text missing %q, got: %s", want, output)
			}
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(sampleDetails())
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		output := string(data)

		for _, want := range []string{`"id": "test123"`, `"nome": "Test Playlist"`, `"musicas": [`, `"titulo": "Song One"`, `"aviso":`} {
			if !strings.Contains(output, want) {
				t.Errorf("JSON missing %s", want)
			}
		}
	})

	t.Run("ToMetadataJSON", func(t *testing.T) {
		data, err := ToMetadataJSON(sampleDetails().Playlist)
		if err != nil {
			t.Fatalf("ToMetadataJSON failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, `"musicaIds"`) || strings.Contains(output, `"musicas"`) {
			t.Errorf("metadata should carry ids without tracks, got: %s", output)
		}
	})

	t.Run("Render", func(t *testing.T) {
		tests := []struct {
			format string
			want   string
		}{
			{"", "Playlist: Test Playlist"},
			{"text", "Playlist: Test Playlist"},
			{"markdown", "# Test Playlist"},
			{"MD", "# Test Playlist"},
			{"csv", "ID,Title,Artist"},
			{"json", `"musicas"`},
		}

		for _, tt := range tests {
			data, err := Render(sampleDetails(), tt.format)
			if err != nil {
				t.Fatalf("Render(%q) failed: %v", tt.format, err)
			}
			if !strings.Contains(string(data), tt.want) {
				t.Errorf("Render(%q) missing %q", tt.format, tt.want)
			}
		}

		if _, err := Render(sampleDetails(), "yaml"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for unknown format, got %v", err)
		}
	})

	t.Run("CoverURL", func(t *testing.T) {
		if got := CoverURL(sampleDetails()); got != "https://example.com/queen.jpg" {
			t.Errorf("unexpected cover %q", got)
		}
		if got := CoverURL(&models.PlaylistDetails{}); got != "" {
			t.Errorf("expected no cover, got %q", got)
		}
	})
}

func TestDownloadImage(t *testing.T) {
	t.Run("EmptyURL", func(t *testing.T) {
		if _, err := DownloadImage(""); err == nil {
			t.Error("DownloadImage with empty URL should return error")
		}
	})

	t.Run("Success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("jpeg"))
		}))
		defer srv.Close()

		data, err := DownloadImage(srv.URL)
		if err != nil || string(data) != "jpeg" {
			t.Errorf("unexpected result %q, %v", data, err)
		}
	})

	t.Run("BadStatus", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		if _, err := DownloadImage(srv.URL); err == nil {
			t.Error("expected error for 404")
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteCSVExport", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "custom_export")

		result, err := WriteCSVExport(sampleDetails(), base)
		if err != nil {
			t.Fatalf("WriteCSVExport failed: %v", err)
		}

		if result.TracksFile != base+"_tracks.csv" {
			t.Errorf("unexpected tracks file %q", result.TracksFile)
		}
		if result.MetadataFile != base+"_metadata.json" {
			t.Errorf("unexpected metadata file %q", result.MetadataFile)
		}

		th.AssertFileExists(t, result.TracksFile)
		th.AssertFileExists(t, result.MetadataFile)

		if content := th.MustReadFile(t, result.MetadataFile); !strings.Contains(content, "Test Playlist") {
			t.Errorf("metadata JSON missing expected fields")
		}
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		t.Run("WithCover", func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("jpeg"))
			}))
			defer srv.Close()

			dir := filepath.Join(t.TempDir(), "export")
			result, err := WriteMarkdownExport(sampleDetails(), dir, srv.URL)
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}

			if len(result.Files) != 2 || result.CoverImage == "" || result.CoverError != nil {
				t.Errorf("unexpected result: %+v", result)
			}
			readme := th.MustReadFile(t, filepath.Join(dir, "README.md"))
			if !strings.Contains(readme, "![Cover](cover.jpg)") {
				t.Errorf("README should reference the cover")
			}
		})

		t.Run("CoverFailure", func(t *testing.T) {
			srv := httptest.NewServer(http.NotFoundHandler())
			defer srv.Close()

			dir := filepath.Join(t.TempDir(), "export")
			result, err := WriteMarkdownExport(sampleDetails(), dir, srv.URL)
			if err != nil {
				t.Fatalf("cover failure should not fail the export: %v", err)
			}
			if result.CoverError == nil || result.CoverImage != "" || len(result.Files) != 1 {
				t.Errorf("unexpected result: %+v", result)
			}
		})
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.txt")

		got, err := WriteTextExport(sampleDetails(), path)
		if err != nil {
			t.Fatalf("WriteTextExport failed: %v", err)
		}
		if got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
		th.AssertFileExists(t, path)
	})
}
