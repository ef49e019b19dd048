package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/musicmeta/internal/server"
	"github.com/desertthunder/musicmeta/internal/services"
	"github.com/desertthunder/musicmeta/internal/shared"
)

// Health probes both services and fails when either is unreachable.
func (r *Runner) Health(ctx context.Context, cmd *cli.Command) error {
	config, err := r.settings(cmd)
	if err != nil {
		return err
	}

	catalogURL := r.catalogURL(cmd, config)
	client := services.NewMetadataClient(catalogURL, r.logger,
		services.WithHTTPClient(r.httpClient),
		services.WithTimeouts(config.Metadata.FetchTimeout, config.Metadata.HealthTimeout),
	)
	catalogUp := client.HealthCheck(ctx)

	libraryURL := r.libraryURL(cmd, config)
	report, libraryErr := r.libraryHealth(ctx, libraryURL)

	r.writePlain("%s\n", r.palette.Status("catalog", upDown(catalogUp)+" ("+catalogURL+")", catalogUp))
	if libraryErr != nil {
		r.writePlain("%s\n", r.palette.Status("library", "offline ("+libraryURL+")", false))
	} else {
		r.writePlain("%s\n", r.palette.Status("library", "online ("+libraryURL+")", true))
		if report.Catalog != "" {
			r.writePlain("%s\n", r.palette.Status("library → catalog", report.Catalog, report.Catalog == "online"))
		}
	}

	if !catalogUp || libraryErr != nil {
		return fmt.Errorf("%w: one or more services are offline", shared.ErrServiceUnavailable)
	}
	return nil
}

func (r *Runner) libraryHealth(ctx context.Context, baseURL string) (server.HealthReport, error) {
	var report server.HealthReport

	ctx, cancel := context.WithTimeout(ctx, services.DefaultHealthTimeout)
	defer cancel()

	resp, err := services.NewAPIService(baseURL, r.httpClient).Get(ctx, "/health")
	if err != nil {
		return report, err
	}
	if !resp.OK() {
		return report, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}
	if err := json.Unmarshal(resp.Body, &report); err != nil {
		return report, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return report, nil
}

func upDown(ok bool) string {
	if ok {
		return "online"
	}
	return "offline"
}
