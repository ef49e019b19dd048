package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/musicmeta/internal/formatter"
	"github.com/desertthunder/musicmeta/internal/services"
	"github.com/desertthunder/musicmeta/internal/shared"
	"github.com/desertthunder/musicmeta/internal/tasks"
)

func (r *Runner) libraryClient(cmd *cli.Command) (*services.LibraryClient, error) {
	config, err := r.settings(cmd)
	if err != nil {
		return nil, err
	}
	return services.NewLibraryClient(r.libraryURL(cmd, config), r.httpClient), nil
}

// PlaylistShow fetches a playlist from the library and renders it.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	client, err := r.libraryClient(cmd)
	if err != nil {
		return err
	}

	details, err := client.Playlist(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch playlist: %w", err)
	}

	if n := details.Unavailable(); n > 0 {
		r.logger.Warn("some tracks could not be resolved by the catalog", "unavailable", n)
	}

	data, err := formatter.Render(details, cmd.String("format"))
	if err != nil {
		return err
	}

	if out := cmd.String("output"); out != "" {
		if err := os.WriteFile(out, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		return r.writePlain("%s\n", r.palette.OK(fmt.Sprintf("✓ Wrote %s (%s)", out, humanize.Bytes(uint64(len(data))))))
	}

	_, err = r.output.Write(data)
	return err
}

// PlaylistExport exports every playlist owned by a user through the bulk exporter.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	user := cmd.StringArg("user")
	if user == "" {
		return fmt.Errorf("%w: user id", shared.ErrMissingArgument)
	}

	client, err := r.libraryClient(cmd)
	if err != nil {
		return err
	}

	playlists, err := client.PlaylistsByOwner(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}
	if len(playlists) == 0 {
		return r.writePlain("%s\n", r.palette.Warn("No playlists found for "+user))
	}

	ids := make([]string, len(playlists))
	for i, p := range playlists {
		ids[i] = p.ID
	}

	progress := make(chan tasks.ProgressUpdate, 2*len(ids)+2)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	exporter := tasks.NewExporter(client, r.logger)
	result, err := exporter.BulkExport(ctx, progress, ids, tasks.BulkExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("dir"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
		WithCovers: cmd.Bool("covers"),
	})
	close(progress)
	<-done

	if result != nil {
		r.writePlainln("%s", r.palette.Table([][2]string{
			{"exported", fmt.Sprintf("%d of %d", result.SuccessfulExports, result.TotalPlaylists)},
			{"failed", humanize.Comma(int64(result.FailedExports))},
			{"directory", result.OutputDirectory},
			{"manifest", result.ManifestPath},
		}))
	}
	return err
}
