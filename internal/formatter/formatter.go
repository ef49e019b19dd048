// package formatter renders a hydrated playlist as CSV, Markdown, plain text or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/desertthunder/musicmeta/internal/models"
	"github.com/desertthunder/musicmeta/internal/shared"
)

// Format names accepted by [Render].
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
	FormatJSON     = "json"
)

// Render dispatches to the exporter for format.
func Render(details *models.PlaylistDetails, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return ExportToText(details)
	case FormatMarkdown, "md":
		return ExportToMarkdown(details, "")
	case FormatCSV:
		return ExportToCSV(details)
	case FormatJSON:
		return ExportToJSON(details)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidInput, format)
	}
}

// ExportToCSV converts a playlist to CSV format with columns: ID, Title, Artist, Duration, Cover, Available
func ExportToCSV(details *models.PlaylistDetails) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Duration", "Cover", "Available"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range details.Tracks {
		record := []string{
			track.ID,
			track.Title,
			track.Artist,
			strconv.Itoa(track.Duration),
			track.CoverURL(),
			strconv.FormatBool(!track.IsPlaceholder()),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a playlist to Markdown format with optional cover image
func ExportToMarkdown(details *models.PlaylistDetails, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", details.Name))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageFilename))
	}

	if details.Description != "" {
		buf.WriteString(fmt.Sprintf("**Description**: %s\n\n", details.Description))
	}

	buf.WriteString(fmt.Sprintf("**Owner**: %s\n", details.UserID))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n", len(details.Tracks)))
	buf.WriteString(fmt.Sprintf("**Length**: %s\n\n", shared.FormatDuration(details.TotalDuration())))

	buf.WriteString("## Tracks\n\n")
	for i, track := range details.Tracks {
		if track.IsPlaceholder() {
			buf.WriteString(fmt.Sprintf("%d. _%s_ (`%s`)\n", i+1, track.Notice, track.ID))
			continue
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s [%s]\n", i+1, track.Artist, track.Title, shared.FormatDuration(track.Duration)))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a playlist to plain text format
func ExportToText(details *models.PlaylistDetails) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", details.Name))
	if details.Description != "" {
		buf.WriteString(fmt.Sprintf("Description: %s\n", details.Description))
	}
	buf.WriteString(fmt.Sprintf("Tracks: %d (%s)\n", len(details.Tracks), shared.FormatDuration(details.TotalDuration())))
	if !details.UpdatedAt.IsZero() {
		buf.WriteString(fmt.Sprintf("Updated: %s\n", humanize.Time(details.UpdatedAt)))
	}
	if n := details.Unavailable(); n > 0 {
		buf.WriteString(fmt.Sprintf("Unavailable: %d\n", n))
	}
	buf.WriteString("\n")

	for i, track := range details.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Artist, track.Title))
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders the playlist and its tracks with the service's field names.
func ExportToJSON(details *models.PlaylistDetails) ([]byte, error) {
	data, err := json.MarshalIndent(details, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal playlist: %w", err)
	}
	return append(data, '\n'), nil
}

// ToMetadataJSON generates a JSON representation of playlist metadata (without tracks)
func ToMetadataJSON(playlist models.Playlist) ([]byte, error) {
	return json.MarshalIndent(playlist, "", "  ")
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// CoverURL picks the cover of the first resolved track that has one.
func CoverURL(details *models.PlaylistDetails) string {
	for _, track := range details.Tracks {
		if !track.IsPlaceholder() && track.Cover != nil && *track.Cover != "" {
			return *track.Cover
		}
	}
	return ""
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile   string
	MetadataFile string
}

// WriteCSVExport exports a playlist to CSV format with accompanying metadata JSON file.
//
// Defaults to playlist ID as the base filename & creates {base}_tracks.csv and {base}_metadata.json
func WriteCSVExport(details *models.PlaylistDetails, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = details.ID
	}

	csvData, err := ExportToCSV(details)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := baseFilepath + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(details.Playlist)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		TracksFile:   tracksFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport.
//
// CoverError is set when the cover could not be downloaded or saved; the export itself still succeeds.
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
	CoverError error
}

// WriteMarkdownExport exports a playlist to Markdown format in a dedicated directory.
//
// Directory name defaults to the playlist ID.
// The imageURL parameter is optional - if provided, attempts to download the cover image.
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownExport(details *models.PlaylistDetails, outputDir string, imageURL string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = details.ID
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if imageURL != "" {
		if imageData, err := DownloadImage(imageURL); err != nil {
			result.CoverError = err
		} else {
			coverImagePath := filepath.Join(outputDir, "cover.jpg")
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				result.CoverError = fmt.Errorf("failed to save cover image: %w", err)
			} else {
				coverImageFilename = "cover.jpg"
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(details, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports a playlist to plain text format.
//
// Defaults to {playlist.ID}_tracks.txt as the filename.
func WriteTextExport(details *models.PlaylistDetails, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_tracks.txt", details.ID)
	}

	textData, err := ExportToText(details)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}
