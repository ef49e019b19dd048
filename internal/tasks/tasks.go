package tasks

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/musicmeta/internal/models"
)

// PlaylistSource fetches hydrated playlists, typically from the library service over HTTP.
type PlaylistSource interface {
	Playlist(ctx context.Context, id string) (*models.PlaylistDetails, error)
}

// PlaylistExportJob is a fetched playlist waiting to be written.
type PlaylistExportJob struct {
	PlaylistID string
	Details    *models.PlaylistDetails
}

// PlaylistExportResult is the outcome of exporting one playlist.
type PlaylistExportResult struct {
	PlaylistID   string   `json:"playlistId"`
	PlaylistName string   `json:"nome"`
	Success      bool     `json:"sucesso"`
	Files        []string `json:"arquivos,omitempty"`
	Unavailable  int      `json:"indisponiveis"` // placeholder tracks in the export
	Error        error    `json:"-"`
	ErrorMessage string   `json:"erro,omitempty"`
}

// BulkExportResult summarizes a [Exporter.BulkExport] run.
type BulkExportResult struct {
	Format            string                 `json:"formato"`
	TotalPlaylists    int                    `json:"total"`
	SuccessfulExports int                    `json:"sucessos"`
	FailedExports     int                    `json:"falhas"`
	OutputDirectory   string                 `json:"diretorio"`
	ManifestPath      string                 `json:"-"`
	Results           []PlaylistExportResult `json:"resultados"`
}

// Exporter writes playlists from a [PlaylistSource] to disk.
type Exporter struct {
	source PlaylistSource
	logger *log.Logger
}

// NewExporter creates a new Exporter reading from source.
func NewExporter(source PlaylistSource, logger *log.Logger) *Exporter {
	return &Exporter{source: source, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Exporter) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
