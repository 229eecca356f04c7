package stream

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-theft-craft/voxel-terrain/internal/terrain/block"
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/chunk"
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/gen"
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/mesh"
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/world"
)

// Streamer keeps the chunks around an observer resident. A chunk position
// is either queued or resident, never both. Streamer is not safe for
// concurrent use; Tick and the edit methods must be called from one
// goroutine.
type Streamer struct {
	cfg      Config
	gen      gen.Generator
	builder  *mesh.Builder
	sink     Sink
	logger   *slog.Logger
	world    *world.World
	entities *world.Entities
	queue    *Queue

	center  chunk.Pos
	started bool
}

// TickReport summarizes the work done by one Tick.
type TickReport struct {
	Center   chunk.Pos
	Scanned  bool
	Enqueued int
	Loaded   []chunk.Pos
	Patched  int
	Evicted  []chunk.Pos
}

// New creates a Streamer. sink may be nil to discard lifecycle signals.
func New(cfg Config, g gen.Generator, b *mesh.Builder, sink Sink, logger *slog.Logger) (*Streamer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("stream config: %w", err)
	}
	if g == nil {
		return nil, errors.New("stream: nil generator")
	}
	if b == nil {
		return nil, errors.New("stream: nil mesh builder")
	}
	if sink == nil {
		sink = NopSink{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Streamer{
		cfg:      cfg,
		gen:      g,
		builder:  b,
		sink:     sink,
		logger:   logger,
		world:    world.New(),
		entities: world.NewEntities(),
		queue:    NewQueue(),
	}, nil
}

// Tick runs one streaming step for an observer at a world position: enqueue
// newly covered chunks, load up to the per-tick budget, then evict chunks
// beyond the unload radius.
func (s *Streamer) Tick(observer mgl32.Vec3) TickReport {
	center := chunk.ColumnAt(observer)
	report := TickReport{Center: center}

	if !s.started || center != s.center {
		s.started = true
		s.center = center
		report.Scanned = true
		report.Enqueued = s.enqueue(center)
	}

	for i := 0; i < s.cfg.ChunksPerTick; i++ {
		pos, ok := s.queue.Pop()
		if !ok {
			break
		}
		report.Patched += s.load(pos)
		report.Loaded = append(report.Loaded, pos)
	}

	report.Evicted = s.unload(center)

	if report.Enqueued > 0 || len(report.Loaded) > 0 || len(report.Evicted) > 0 {
		s.logger.Debug("stream tick",
			"center", center,
			"enqueued", report.Enqueued,
			"loaded", len(report.Loaded),
			"patched", report.Patched,
			"evicted", len(report.Evicted),
			"resident", s.world.Len(),
			"queued", s.queue.Len(),
		)
	}
	return report
}

// enqueue scans the square around center in the Y=0 layer, x-major, and
// queues every position that is neither resident nor queued.
func (s *Streamer) enqueue(center chunk.Pos) int {
	r := s.cfg.RenderRadius
	n := 0
	for x := center.X - r; x <= center.X+r; x++ {
		for z := center.Z - r; z <= center.Z+r; z++ {
			pos := chunk.Pos{X: x, Z: z}
			if s.world.Contains(pos) {
				continue
			}
			if s.queue.Push(pos) {
				n++
			}
		}
	}
	return n
}

// load generates and registers the chunk at pos, then patches its resident
// neighbours. It returns the number of neighbours rebuilt.
func (s *Streamer) load(pos chunk.Pos) int {
	c := s.gen.Generate(pos)
	s.world.Insert(c)

	m, col := s.build(c)
	h := s.entities.Allocate(pos)
	s.logger.Debug("chunk loaded", "pos", pos, "faces", m.FaceCount(), "empty", m.Empty())
	s.sink.Created(pos, h, m, col)

	return s.patchNeighbours(pos)
}

// unload evicts every resident chunk farther than the unload radius from
// center, measured on X and Z only.
func (s *Streamer) unload(center chunk.Pos) []chunk.Pos {
	var evicted []chunk.Pos
	for _, pos := range s.world.Positions() {
		if pos.HorizontalDistance(center) <= s.cfg.UnloadRadius {
			continue
		}
		s.world.Remove(pos)
		if h, ok := s.entities.Release(pos); ok {
			s.sink.Released(pos, h)
		}
		evicted = append(evicted, pos)
	}
	return evicted
}

// patchNeighbours rebuilds every resident face neighbour of pos, since
// their boundary faces depend on pos.
func (s *Streamer) patchNeighbours(pos chunk.Pos) int {
	n := 0
	for _, f := range block.AllFaces {
		if s.rebuild(pos.Neighbour(f)) {
			n++
		}
	}
	return n
}

// rebuild remeshes a resident chunk and signals the update. It reports
// false when pos is not resident.
func (s *Streamer) rebuild(pos chunk.Pos) bool {
	c, ok := s.world.Chunk(pos)
	if !ok {
		return false
	}
	h, _ := s.entities.Get(pos)
	m, col := s.build(c)
	s.sink.Updated(pos, h, m, col)
	return true
}

func (s *Streamer) build(c *chunk.Chunk) (*mesh.Mesh, mesh.Collision) {
	m := s.builder.Build(c, s.world)
	return m, mesh.NewCollision(s.cfg.Collider, c, m)
}

// Resident reports whether the chunk at pos is loaded.
func (s *Streamer) Resident(pos chunk.Pos) bool {
	return s.world.Contains(pos)
}

// Queued reports whether pos is waiting to be loaded.
func (s *Streamer) Queued(pos chunk.Pos) bool {
	return s.queue.Contains(pos)
}

// ResidentCount returns the number of loaded chunks.
func (s *Streamer) ResidentCount() int {
	return s.world.Len()
}

// QueueLen returns the number of chunks waiting to be loaded.
func (s *Streamer) QueueLen() int {
	return s.queue.Len()
}

// QueuedPositions returns the pending positions in load order.
func (s *Streamer) QueuedPositions() []chunk.Pos {
	return s.queue.Items()
}

// Handles returns the external handles of a resident chunk.
func (s *Streamer) Handles(pos chunk.Pos) (world.Handles, bool) {
	return s.entities.Get(pos)
}

// Build returns the current mesh and collision data of a resident chunk,
// as they would be passed to Sink.Created.
func (s *Streamer) Build(pos chunk.Pos) (*mesh.Mesh, mesh.Collision, bool) {
	c, ok := s.world.Chunk(pos)
	if !ok {
		return nil, mesh.Collision{}, false
	}
	m, col := s.build(c)
	return m, col, true
}

// World returns the chunk index. Callers must not mutate it.
func (s *Streamer) World() *world.World {
	return s.world
}

// Config returns the streaming configuration.
func (s *Streamer) Config() Config {
	return s.cfg
}
