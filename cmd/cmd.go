// submodule cmd contains command definitions
package main

import (
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/musicmeta/internal/formatter"
)

// globalFlags are available to every subcommand.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (debug, info, warn, error)",
		},
		&cli.StringFlag{
			Name:  "catalog-url",
			Usage: "Catalog service URL (default: metadata.url from config)",
		},
		&cli.StringFlag{
			Name:  "library-url",
			Usage: "Library service URL (default: http://localhost:{library.port})",
		},
	}
}

// serveCommand runs one of the two HTTP services
func serveCommand(r *Runner) *cli.Command {
	portFlag := func() cli.Flag {
		return &cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "Port to listen on (overrides config)",
		}
	}

	return &cli.Command{
		Name:  "serve",
		Usage: "Run a service until interrupted",
		Commands: []*cli.Command{
			{
				Name:    "catalog",
				Aliases: []string{"metadata"},
				Usage:   "Run the track catalog (metadata) service",
				Flags:   []cli.Flag{portFlag()},
				Action:  r.ServeCatalog,
			},
			{
				Name:   "library",
				Usage:  "Run the playlist library service",
				Flags:  []cli.Flag{portFlag()},
				Action: r.ServeLibrary,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and databases.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write the example configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "path",
						Usage: "Where to write the file",
						Value: "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Create SQLite databases and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// apiCommand handles direct API calls against either service
func apiCommand(r *Runner) *cli.Command {
	serviceFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:    "service",
			Aliases: []string{"s"},
			Usage:   "Target service (catalog or library)",
			Value:   "catalog",
		}
	}

	return &cli.Command{
		Name:  "api",
		Usage: "Direct API calls to the catalog or library service",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints the JSON response",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					serviceFlag(),
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					serviceFlag(),
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// cacheCommand inspects the catalog's in-memory cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect the catalog cache",
		Commands: []*cli.Command{
			{
				Name:  "stats",
				Usage: "Show cache size, keys and hit rate",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheStats,
			},
			{
				Name:   "clear",
				Usage:  "Drop every cache entry",
				Action: r.CacheClear,
			},
		},
	}
}

// healthCommand probes both services
func healthCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "health",
		Usage:  "Check whether the catalog and library services are reachable",
		Action: r.Health,
	}
}

// playlistCommand reads playlists through the library service
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlist",
		Usage: "Show and export playlists",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show a playlist with its tracks",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (text, markdown, csv, json)",
						Value:   formatter.FormatText,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file instead of stdout",
					},
				},
				Action: r.PlaylistShow,
			},
			{
				Name:  "export",
				Usage: "Export every playlist of a user",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "user",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (json, csv, markdown, text)",
						Value:   formatter.FormatJSON,
					},
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: playlist_export_{epoch})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent writers",
						Value: 5,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Playlist fetches per second",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "covers",
						Usage: "Download a cover image for markdown exports",
					},
				},
				Action: r.PlaylistExport,
			},
		},
	}
}
