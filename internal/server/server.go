package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"

	"github.com/go-theft-craft/voxel-terrain/internal/config"
	"github.com/go-theft-craft/voxel-terrain/internal/feed"
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/block"
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/chunk"
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/gen"
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/mesh"
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/meshcodec"
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/stream"
)

// Server owns the terrain streamer and drives it from a fixed-rate tick
// loop, publishing chunk signals on the websocket feed.
type Server struct {
	cfg      *config.Config
	log      *slog.Logger
	gen      gen.Generator
	streamer *stream.Streamer
	hub      *feed.Hub
	codec    *meshcodec.Codec
	stats    *Stats

	observer mgl32.Vec3
}

// New creates a Server from a validated config.
func New(cfg *config.Config, log *slog.Logger) (*Server, error) {
	generator, err := NewGenerator(cfg)
	if err != nil {
		return nil, err
	}

	atlas := block.DefaultAtlas()
	if cfg.AtlasFile != "" {
		if atlas, err = block.LoadAtlas(cfg.AtlasFile); err != nil {
			return nil, err
		}
	}

	collider, err := mesh.ParseColliderKind(cfg.Collider)
	if err != nil {
		return nil, err
	}

	codec, err := meshcodec.New()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:   cfg,
		log:   log,
		gen:   generator,
		codec: codec,
		stats: &Stats{},
	}
	s.hub = feed.NewHub(codec, log)

	s.streamer, err = stream.New(stream.Config{
		RenderRadius:  cfg.RenderRadius,
		UnloadRadius:  cfg.UnloadRadius,
		ChunksPerTick: cfg.ChunksPerTick,
		Collider:      collider,
	}, generator, mesh.NewBuilder(atlas), stream.Sinks{s.hub, s.stats}, log)
	if err != nil {
		codec.Close()
		return nil, err
	}

	s.observer = s.SpawnPoint()
	return s, nil
}

// NewGenerator returns the terrain generator selected by cfg.
func NewGenerator(cfg *config.Config) (gen.Generator, error) {
	switch cfg.Generator {
	case "flat":
		return gen.NewFlatGenerator(cfg.FlatHeight), nil
	case "", "terrain":
	default:
		return nil, fmt.Errorf("unknown generator %q", cfg.Generator)
	}

	noise, err := gen.NewNoise(cfg.Noise, cfg.Seed)
	if err != nil {
		return nil, err
	}
	p := gen.DefaultParams()
	p.Seed = cfg.Seed
	p.Frequency = cfg.Frequency
	p.Amplitude = cfg.Amplitude
	p.BaseHeight = cfg.BaseHeight
	p.DirtDepth = cfg.DirtDepth
	p.Octaves = cfg.Octaves
	p.Persistence = cfg.Persistence
	p.OreChance = cfg.OreChance
	return gen.NewTerrainGenerator(p, noise), nil
}

// SpawnPoint returns the initial observer position, two blocks above the
// terrain at the world origin.
func (s *Server) SpawnPoint() mgl32.Vec3 {
	return mgl32.Vec3{0.5, float32(s.gen.HeightAt(0, 0) + 2), 0.5}
}

// Streamer returns the terrain streamer. It must only be used from the
// goroutine running Start, or before Start is called.
func (s *Server) Streamer() *stream.Streamer {
	return s.streamer
}

// Start runs the tick loop and, when a listen address is configured, the
// feed HTTP server. It blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	defer s.codec.Close()

	s.log.Info("server started",
		"listen", s.cfg.Listen,
		"generator", s.cfg.Generator,
		"seed", s.cfg.Seed,
		"renderRadius", s.cfg.RenderRadius,
		"unloadRadius", s.cfg.UnloadRadius,
		"tickRate", s.cfg.TickRate,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.tickLoop(ctx) })
	if s.cfg.Listen != "" {
		g.Go(func() error { return s.serve(ctx) })
	}
	err := g.Wait()

	s.hub.Close()
	created, updated, released := s.stats.Snapshot()
	s.log.Info("server shutting down",
		"resident", s.streamer.ResidentCount(),
		"created", created,
		"updated", updated,
		"released", released,
	)
	return err
}

func (s *Server) tickLoop(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(s.cfg.TickRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case id := <-s.hub.Joins():
			s.replay(id)
		case <-ticker.C:
			s.Step()
		}
	}
}

// Step applies pending client intents and runs one streaming tick.
func (s *Server) Step() stream.TickReport {
	s.drainObservers()
	s.drainEdits()
	return s.streamer.Tick(s.observer)
}

func (s *Server) drainObservers() {
	for {
		select {
		case pos := <-s.hub.Observers():
			s.observer = pos
		default:
			return
		}
	}
}

func (s *Server) drainEdits() {
	for {
		select {
		case e := <-s.hub.Edits():
			s.applyEdit(e)
		default:
			return
		}
	}
}

func (s *Server) applyEdit(e feed.Edit) {
	res, err := s.streamer.SetBlock(e.Target, e.Block)
	if errors.Is(err, stream.ErrChunkNotResident) {
		s.log.Debug("edit ignored", "client", e.ClientID, "target", e.Target, "error", err)
		return
	}
	if err != nil {
		s.log.Warn("edit failed", "client", e.ClientID, "error", err)
		return
	}
	if res.Changed {
		s.log.Info("block edited", "client", e.ClientID, "chunk", res.Chunk, "block", e.Block)
	}
}

// replay sends every resident chunk to a newly connected client, then
// subscribes it to broadcasts. It runs on the tick goroutine, so no chunk
// signal can fall between the two.
func (s *Server) replay(clientID uint64) {
	positions := s.streamer.World().Positions()
	for _, pos := range positions {
		h, ok := s.streamer.Handles(pos)
		if !ok {
			continue
		}
		m, col, ok := s.streamer.Build(pos)
		if !ok {
			continue
		}
		if err := s.hub.SendChunk(clientID, pos, h, m, col); err != nil {
			s.log.Debug("replay aborted", "client", clientID, "error", err)
			return
		}
	}
	if s.hub.Activate(clientID) {
		s.log.Debug("replay done", "client", clientID, "chunks", len(positions))
	}
}

func (s *Server) serve(ctx context.Context) error {
	lc := net.ListenConfig{}
	listener, err := lc.Listen(ctx, "tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Listen, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/feed", s.hub.Handler())
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/block", s.handleBlock)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.hub.Close()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("feed listening", "addr", listener.Addr().String())
	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve feed: %w", err)
	}
	return nil
}

type statusResponse struct {
	Resident int    `json:"resident"`
	Clients  int    `json:"clients"`
	Created  uint64 `json:"created"`
	Updated  uint64 `json:"updated"`
	Released uint64 `json:"released"`
}

func (s *Server) handleStatus(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	created, updated, released := s.stats.Snapshot()
	rw.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(rw).Encode(statusResponse{
		Resident: s.streamer.World().Len(),
		Clients:  s.hub.ClientCount(),
		Created:  created,
		Updated:  updated,
		Released: released,
	})
}

type blockResponse struct {
	Pos      [3]int `json:"pos"`
	Block    string `json:"block"`
	Resident bool   `json:"resident"`
}

// handleBlock reports the block at ?x=&y=&z= world coordinates. Blocks of
// chunks that are not resident read as air.
func (s *Server) handleBlock(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var coords [3]int
	for i, key := range []string{"x", "y", "z"} {
		v, err := strconv.Atoi(r.URL.Query().Get(key))
		if err != nil {
			http.Error(rw, fmt.Sprintf("bad %s coordinate", key), http.StatusBadRequest)
			return
		}
		coords[i] = v
	}
	bp := chunk.BlockPos{X: coords[0], Y: coords[1], Z: coords[2]}
	pos, _, _, _ := bp.Split()

	world := s.streamer.World()
	rw.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(rw).Encode(blockResponse{
		Pos:      coords,
		Block:    world.Block(bp).String(),
		Resident: world.Contains(pos),
	})
}
