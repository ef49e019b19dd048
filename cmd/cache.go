package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/musicmeta/internal/cache"
	"github.com/desertthunder/musicmeta/internal/services"
	"github.com/desertthunder/musicmeta/internal/shared"
)

// CacheStats prints the catalog cache statistics.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	config, err := r.settings(cmd)
	if err != nil {
		return err
	}

	resp, err := r.catalogAPI(cmd, config).Get(ctx, "/cache/stats")
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	stats, err := services.DecodeEnvelope[cache.Stats](resp, nil)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(stats, true)
	}

	keys := "-"
	if len(stats.Keys) > 0 {
		keys = strings.Join(stats.Keys, ", ")
	}

	r.writePlainHeader("Catalog cache")
	return r.writePlain("%s", r.palette.Table([][2]string{
		{"entries", humanize.Comma(int64(stats.Size))},
		{"hits", humanize.Comma(stats.Hits)},
		{"misses", humanize.Comma(stats.Misses)},
		{"hit rate", hitRate(stats)},
		{"keys", keys},
	}))
}

// CacheClear empties the catalog cache.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	config, err := r.settings(cmd)
	if err != nil {
		return err
	}

	resp, err := r.catalogAPI(cmd, config).Post(ctx, "/cache/limpar", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	if _, err := services.DecodeEnvelope[any](resp, nil); err != nil {
		return err
	}

	return r.writePlain("%s\n", r.palette.OK("✓ Cache cleared"))
}

func hitRate(s cache.Stats) string {
	total := s.Hits + s.Misses
	if total == 0 {
		return "n/a"
	}
	return humanize.FtoaWithDigits(float64(s.Hits)*100/float64(total), 1) + "%"
}
