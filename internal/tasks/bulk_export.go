package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/musicmeta/internal/formatter"
	"github.com/desertthunder/musicmeta/internal/shared"
)

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Format     string  // Export format: json, csv, markdown, text
	OutputDir  string  // Base output directory (default: playlist_export_{epoch})
	NumWorkers int     // Concurrent workers (default: 5, max 10)
	RateLimit  float64 // Playlist fetches per second (default: 5)
	WithCovers bool    // Download a cover for markdown exports
}

func (o *BulkExportOpts) applyDefaults() {
	if o.Format == "" {
		o.Format = formatter.FormatJSON
	}
	if o.OutputDir == "" {
		o.OutputDir = fmt.Sprintf("playlist_export_%d", time.Now().Unix())
	}
	if o.NumWorkers <= 0 {
		o.NumWorkers = 5
	}
	if o.NumWorkers > 10 {
		o.NumWorkers = 10
	}
	if o.RateLimit <= 0 {
		o.RateLimit = 5.0
	}
}

// BulkExport exports multiple playlists concurrently with rate limiting and progress tracking.
//
// Playlists are fetched one at a time within the rate limit and handed to a pool of writers.
// Partial failures are recorded per playlist and a manifest file summarizes the run.
func (e *Exporter) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, ids []string, opts BulkExportOpts) (*BulkExportResult, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: playlist source not initialized", shared.ErrServiceUnavailable)
	}

	opts.applyDefaults()
	switch opts.Format {
	case formatter.FormatJSON, formatter.FormatCSV, formatter.FormatMarkdown, formatter.FormatText:
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidInput, opts.Format)
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		Format:          opts.Format,
		TotalPlaylists:  len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]PlaylistExportResult, 0, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan PlaylistExportJob, len(ids))
	results := make(chan PlaylistExportResult, len(ids))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(jobs)

		e.sendProgress(prog, fetchingPlaylistsUpdate(len(ids)))
		for i, playlistID := range ids {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			details, err := e.source.Playlist(ctx, playlistID)
			if err != nil {
				results <- failedResult(playlistID, fmt.Sprintf("Unknown (%s)", playlistID), fmt.Errorf("failed to fetch playlist: %w", err))
				continue
			}

			jobs <- PlaylistExportJob{PlaylistID: playlistID, Details: details}
			e.sendProgress(prog, exportingPlaylistUpdate(i+1, len(ids), details.Name))
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.PlaylistName, len(res.Files)))
		} else {
			result.FailedExports++
			e.logger.Warn("playlist export failed", "id", res.PlaylistID, "error", res.Error)
			e.sendProgress(prog, exportFailedUpdate(completed, len(ids), res.PlaylistName, res.Error))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := writeManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	e.sendProgress(prog, manifestUpdate(manifestPath))

	if err := ctx.Err(); err != nil && completed < len(ids) {
		return result, fmt.Errorf("export interrupted after %d of %d playlists: %w", completed, len(ids), err)
	}
	return result, nil
}

// exportWorker is a worker goroutine that exports playlists from the jobs channel.
func (e *Exporter) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan PlaylistExportJob,
	results chan<- PlaylistExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			results <- failedResult(job.PlaylistID, job.Details.Name, ctx.Err())
			continue
		}
		results <- e.exportSinglePlaylist(job, opts)
	}
}

// exportSinglePlaylist exports a single playlist to the appropriate format.
func (e *Exporter) exportSinglePlaylist(j PlaylistExportJob, opts BulkExportOpts) PlaylistExportResult {
	result := PlaylistExportResult{
		PlaylistID:   j.PlaylistID,
		PlaylistName: j.Details.Name,
		Files:        []string{},
		Unavailable:  j.Details.Unavailable(),
	}

	var err error
	switch opts.Format {
	case formatter.FormatCSV:
		var res *formatter.CSVExportResult
		if res, err = formatter.WriteCSVExport(j.Details, filepath.Join(opts.OutputDir, j.PlaylistID)); err == nil {
			result.Files = []string{res.TracksFile, res.MetadataFile}
		}
	case formatter.FormatMarkdown:
		imageURL := ""
		if opts.WithCovers {
			imageURL = formatter.CoverURL(j.Details)
		}
		var res *formatter.MarkdownExportResult
		if res, err = formatter.WriteMarkdownExport(j.Details, filepath.Join(opts.OutputDir, j.PlaylistID), imageURL); err == nil {
			result.Files = res.Files
			if res.CoverError != nil {
				e.logger.Warn("cover download failed", "id", j.PlaylistID, "error", res.CoverError)
			}
		}
	case formatter.FormatText:
		var path string
		if path, err = formatter.WriteTextExport(j.Details, filepath.Join(opts.OutputDir, j.PlaylistID+"_tracks.txt")); err == nil {
			result.Files = []string{path}
		}
	default:
		path := filepath.Join(opts.OutputDir, j.PlaylistID+".json")
		var data []byte
		if data, err = formatter.ExportToJSON(j.Details); err == nil {
			err = os.WriteFile(path, data, 0644)
		}
		if err == nil {
			result.Files = []string{path}
		}
	}

	if err != nil {
		result.Error = fmt.Errorf("%s export failed: %w", opts.Format, err)
		result.ErrorMessage = result.Error.Error()
		result.Files = nil
		return result
	}
	result.Success = true
	return result
}

func failedResult(id, name string, err error) PlaylistExportResult {
	if err == nil {
		err = errors.New("unknown error")
	}
	return PlaylistExportResult{
		PlaylistID:   id,
		PlaylistName: name,
		Error:        err,
		ErrorMessage: err.Error(),
	}
}

func writeManifest(result *BulkExportResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
