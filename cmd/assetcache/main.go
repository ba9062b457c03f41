// Command assetcache is a small operational tool over the cache library:
// inspect store stats, clear or remove entries, and warm the cache by
// fetching assets through the real load path.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/artbyte/assetcache/internal/blobstore"
	"github.com/artbyte/assetcache/internal/config"
	"github.com/artbyte/assetcache/internal/engine"
	"github.com/artbyte/assetcache/internal/metrics"
	"github.com/artbyte/assetcache/internal/models"
	"github.com/artbyte/assetcache/internal/source"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.LogLevel)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	if err := run(cfg, logger, os.Args[1], os.Args[2:]); err != nil {
		logger.Fatal().Err(err).Str("command", os.Args[1]).Msg("Command failed")
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: assetcache <command> [args]

Commands:
  stats                 print entry count and approximate size per cache kind
  clear                 remove every entry from both cache kinds
  remove <kind> <key>   remove one entry ("raster" or "vector")
  fetch <asset-id>...   warm the cache by loading assets (.svg loads as vector)`)
}

func run(cfg *config.Config, logger zerolog.Logger, command string, args []string) error {
	raster, vector, err := buildEngines(cfg, logger)
	if err != nil {
		return err
	}
	defer raster.Close()
	defer vector.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	switch command {
	case "stats":
		return printStats(ctx, raster, vector)
	case "clear":
		if err := raster.RemoveAll(ctx); err != nil {
			return err
		}
		if err := vector.RemoveAll(ctx); err != nil {
			return err
		}
		logger.Info().Msg("Cleared both caches")
		return nil
	case "remove":
		if len(args) != 2 {
			usage()
			return fmt.Errorf("remove needs a kind and a key")
		}
		switch args[0] {
		case "raster":
			return raster.Remove(ctx, args[1])
		case "vector":
			return vector.Remove(ctx, args[1])
		default:
			return fmt.Errorf("unknown cache kind %q", args[0])
		}
	case "fetch":
		if len(args) == 0 {
			usage()
			return fmt.Errorf("fetch needs at least one asset id")
		}
		return warm(ctx, cfg, logger, raster, vector, args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func buildEngines(cfg *config.Config, logger zerolog.Logger) (*engine.RasterCache, *engine.VectorCache, error) {
	src, err := buildSource(cfg)
	if err != nil {
		return nil, nil, err
	}

	rasterStore, err := buildStore(cfg, logger, "raster", cfg.Store.RasterMaxEntries)
	if err != nil {
		return nil, nil, err
	}
	vectorStore, err := buildStore(cfg, logger, "vector", cfg.Store.VectorMaxEntries)
	if err != nil {
		rasterStore.Close()
		return nil, nil, err
	}

	raster := engine.NewRasterCache(rasterStore, src, nil, logger)
	vector := engine.NewVectorCache(vectorStore, src, nil, logger)
	return raster, vector, nil
}

func buildStore(cfg *config.Config, logger zerolog.Logger, kind string, maxEntries int) (blobstore.Store, error) {
	dir := cfg.Store.Dir
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("no store dir configured and no user cache dir: %w", err)
		}
		dir = filepath.Join(base, "assetcache")
	}

	return blobstore.New(cfg.Store.Provider, blobstore.ProviderConfig{
		MaxEntries:    maxEntries,
		TTL:           cfg.TTL(),
		Dir:           filepath.Join(dir, kind),
		Logger:        storeLogger{logger},
		RedisAddress:  cfg.Store.Redis.Address,
		RedisPassword: cfg.Store.Redis.Password,
		RedisDB:       cfg.Store.Redis.DB,
		Group:         kind,
	})
}

func buildSource(cfg *config.Config) (source.Loader, error) {
	switch {
	case cfg.Source.BaseURL != "":
		return source.NewHTTPLoader(cfg.Source.BaseURL, cfg.Source.UserAgent, cfg.SourceTimeout(), nil), nil
	case cfg.Source.AssetDir != "":
		return source.NewDirLoader(cfg.Source.AssetDir), nil
	default:
		return nil, fmt.Errorf("configure source.base_url or source.asset_dir")
	}
}

func printStats(ctx context.Context, raster *engine.RasterCache, vector *engine.VectorCache) error {
	rs, err := raster.Stats(ctx)
	if err != nil {
		return err
	}
	vs, err := vector.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("raster: %d entries, %d bytes\n", rs.Entries, rs.SizeBytes)
	fmt.Printf("vector: %d entries, %d bytes\n", vs.Entries, vs.SizeBytes)
	return nil
}

func warm(ctx context.Context, cfg *config.Config, logger zerolog.Logger, raster *engine.RasterCache, vector *engine.VectorCache, assetIDs []string) error {
	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewHTTPServer(cfg.Metrics.Address, cfg.Metrics.Port)
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("Metrics server failed")
			}
		}()
		defer func() {
			if err := metricsServer.Shutdown(context.Background()); err != nil {
				logger.Error().Err(err).Msg("Failed to shutdown metrics server")
			}
		}()
	}

	for _, assetID := range assetIDs {
		if strings.HasSuffix(strings.ToLower(assetID), ".svg") {
			artifact, err := vector.Load(ctx, assetID, models.RenderParams{})
			if err != nil {
				return err
			}
			logger.Info().Str("asset_id", assetID).
				Float64("intrinsic_width", artifact.IntrinsicWidth).
				Float64("intrinsic_height", artifact.IntrinsicHeight).
				Msg("Warmed vector asset")
			continue
		}
		artifact, err := raster.Load(ctx, assetID)
		if err != nil {
			return err
		}
		logger.Info().Str("asset_id", assetID).
			Int("width", artifact.Width).
			Int("height", artifact.Height).
			Msg("Warmed raster asset")
	}
	return nil
}

// storeLogger adapts zerolog to the blobstore.Logger interface.
type storeLogger struct {
	logger zerolog.Logger
}

func (l storeLogger) Error(msg string, err error) {
	l.logger.Error().Err(err).Msg(msg)
}
