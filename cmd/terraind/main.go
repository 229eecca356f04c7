package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-theft-craft/voxel-terrain/internal/config"
	"github.com/go-theft-craft/voxel-terrain/internal/server"
)

func main() {
	cfg := config.DefaultConfig()

	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "terrain seed")
	flag.StringVar(&cfg.Noise, "noise", cfg.Noise, "height noise: opensimplex or simplex")
	flag.StringVar(&cfg.Generator, "generator", cfg.Generator, "terrain generator: terrain or flat")
	flag.IntVar(&cfg.FlatHeight, "flat-height", cfg.FlatHeight, "grass height for the flat generator")
	flag.IntVar(&cfg.RenderRadius, "render-radius", cfg.RenderRadius, "chunks kept around the observer")
	flag.IntVar(&cfg.UnloadRadius, "unload-radius", cfg.UnloadRadius, "distance in chunks beyond which chunks are evicted")
	flag.IntVar(&cfg.ChunksPerTick, "chunks-per-tick", cfg.ChunksPerTick, "chunks generated per tick")
	flag.StringVar(&cfg.Collider, "collider", cfg.Collider, "collision data: voxels or trimesh")
	flag.IntVar(&cfg.TickRate, "tick-rate", cfg.TickRate, "ticks per second")
	flag.StringVar(&cfg.Listen, "listen", cfg.Listen, "feed listen address (empty disables the feed)")
	flag.StringVar(&cfg.AtlasFile, "atlas", cfg.AtlasFile, "atlas.yaml tile layout (default built-in layout)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	flag.Parse()

	if *configPath != "" {
		fromFile, err := config.Load(*configPath)
		if err != nil {
			slog.Error("load config", "error", err)
			os.Exit(1)
		}
		explicit := make(map[string]bool)
		flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
		config.Merge(cfg, fromFile, explicit)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	if err := cfg.Validate(); err != nil {
		log.Error("config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv, err := server.New(cfg, log)
	if err != nil {
		log.Error("create server", "error", err)
		os.Exit(1)
	}
	if err := srv.Start(ctx); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
