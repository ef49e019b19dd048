package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/musicmeta/internal/cache"
	"github.com/desertthunder/musicmeta/internal/catalog"
	"github.com/desertthunder/musicmeta/internal/library"
	"github.com/desertthunder/musicmeta/internal/repositories"
	"github.com/desertthunder/musicmeta/internal/server"
	"github.com/desertthunder/musicmeta/internal/services"
	"github.com/desertthunder/musicmeta/internal/shared"
	"github.com/desertthunder/musicmeta/internal/ui"
)

const (
	catalogServiceName = "Metadata Service"
	libraryServiceName = "Library Service"
)

// ServeCatalog runs the track catalog service until SIGINT or SIGTERM.
func (r *Runner) ServeCatalog(ctx context.Context, cmd *cli.Command) error {
	config, err := r.settings(cmd)
	if err != nil {
		return err
	}
	if cmd.IsSet("port") {
		config.Catalog.Port = cmd.Int("port")
	}

	handler, closeStore, err := r.catalogHandler(config)
	if err != nil {
		return err
	}
	defer closeStore()

	r.writePlain("%s\n", r.palette.Banner(ui.BannerInfo{
		Service: catalogServiceName,
		Addr:    config.Catalog.Addr(),
		Storage: storageLabel(config.Catalog.Storage),
		Extra:   [][2]string{{"cache ttl", config.Catalog.CacheTTL.String()}},
	}))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := shared.WithLogger(r.logger, "service", "catalog")
	return server.Serve(ctx, config.Catalog.Addr(), handler, config.Server.ShutdownTimeout, logger)
}

// ServeLibrary runs the playlist library service until SIGINT or SIGTERM.
func (r *Runner) ServeLibrary(ctx context.Context, cmd *cli.Command) error {
	config, err := r.settings(cmd)
	if err != nil {
		return err
	}
	if cmd.IsSet("port") {
		config.Library.Port = cmd.Int("port")
	}
	if u := cmd.String("catalog-url"); u != "" {
		config.Metadata.URL = u
	}

	handler, closeStore, err := r.libraryHandler(config)
	if err != nil {
		return err
	}
	defer closeStore()

	r.writePlain("%s\n", r.palette.Banner(ui.BannerInfo{
		Service: libraryServiceName,
		Addr:    config.Library.Addr(),
		Storage: storageLabel(config.Library.Storage),
		Extra:   [][2]string{{"catalog", config.Metadata.URL}},
	}))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := shared.WithLogger(r.logger, "service", "library")
	return server.Serve(ctx, config.Library.Addr(), handler, config.Server.ShutdownTimeout, logger)
}

// catalogHandler wires store, cache, service and router for the catalog service.
func (r *Runner) catalogHandler(config *shared.Config) (http.Handler, func() error, error) {
	logger := shared.WithLogger(r.logger, "service", "catalog")

	store, closeStore, err := repositories.NewTrackStore(config.Catalog.Storage, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open track store: %w", err)
	}

	c := cache.New[any](cache.WithDefaultTTL(config.Catalog.CacheTTL))
	svc := catalog.NewService(store, c, logger)

	router := server.NewRouter(logger, server.OptionsFrom(config.Server),
		server.NewCatalogHandler(svc, logger),
		server.NewHealthHandler(catalogServiceName, config.Catalog.Port, nil),
	)
	return router, closeStore, nil
}

// libraryHandler wires store, catalog client, service and router for the library service.
func (r *Runner) libraryHandler(config *shared.Config) (http.Handler, func() error, error) {
	logger := shared.WithLogger(r.logger, "service", "library")

	store, closeStore, err := repositories.NewPlaylistStore(config.Library.Storage, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open playlist store: %w", err)
	}

	client := services.NewMetadataClient(config.Metadata.URL, logger,
		services.WithHTTPClient(r.httpClient),
		services.WithTimeouts(config.Metadata.FetchTimeout, config.Metadata.HealthTimeout),
	)
	svc := library.NewService(store, library.NewAssembler(client), logger)

	router := server.NewRouter(logger, server.OptionsFrom(config.Server),
		server.NewPlaylistHandler(svc, logger),
		server.NewHealthHandler(libraryServiceName, config.Library.Port, client.HealthCheck),
	)
	return router, closeStore, nil
}

func storageLabel(s shared.StorageConfig) string {
	if s.Driver == shared.DriverSQLite {
		return fmt.Sprintf("sqlite (%s)", s.DatabasePath)
	}
	return fmt.Sprintf("json (%s)", s.Path)
}
