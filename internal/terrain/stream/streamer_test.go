package stream

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-theft-craft/voxel-terrain/internal/terrain/block"
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/chunk"
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/gen"
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/mesh"
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/world"
)

type event struct {
	kind string
	pos  chunk.Pos
	h    world.Handles
	m    *mesh.Mesh
}

type recordingSink struct {
	events []event
}

func (r *recordingSink) Created(pos chunk.Pos, h world.Handles, m *mesh.Mesh, _ mesh.Collision) {
	r.events = append(r.events, event{"created", pos, h, m})
}

func (r *recordingSink) Updated(pos chunk.Pos, h world.Handles, m *mesh.Mesh, _ mesh.Collision) {
	r.events = append(r.events, event{"updated", pos, h, m})
}

func (r *recordingSink) Released(pos chunk.Pos, h world.Handles) {
	r.events = append(r.events, event{"released", pos, h, nil})
}

func (r *recordingSink) count(kind string, pos chunk.Pos) int {
	n := 0
	for _, e := range r.events {
		if e.kind == kind && e.pos == pos {
			n++
		}
	}
	return n
}

func (r *recordingSink) last(kind string, pos chunk.Pos) (event, bool) {
	for i := len(r.events) - 1; i >= 0; i-- {
		if e := r.events[i]; e.kind == kind && e.pos == pos {
			return e, true
		}
	}
	return event{}, false
}

func newTestStreamer(t *testing.T, render, unload, budget int, g gen.Generator) (*Streamer, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	s, err := New(Config{
		RenderRadius:  render,
		UnloadRadius:  unload,
		ChunksPerTick: budget,
	}, g, mesh.NewBuilder(nil), sink, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, sink
}

// chunkCenter returns a world position inside chunk (cx, 0, cz).
func chunkCenter(cx, cz int) mgl32.Vec3 {
	return mgl32.Vec3{float32(cx*chunk.SizeX) + 8, 10, float32(cz*chunk.SizeZ) + 8}
}

func assertExclusive(t *testing.T, s *Streamer) {
	t.Helper()
	for _, p := range s.QueuedPositions() {
		if s.Resident(p) {
			t.Fatalf("%v is both queued and resident", p)
		}
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	g := gen.NewFlatGenerator(4)
	b := mesh.NewBuilder(nil)
	bad := []Config{
		{RenderRadius: 2, UnloadRadius: 2, ChunksPerTick: 1},
		{RenderRadius: -1, UnloadRadius: 2, ChunksPerTick: 1},
		{RenderRadius: 1, UnloadRadius: 2, ChunksPerTick: 0},
	}
	for _, cfg := range bad {
		if _, err := New(cfg, g, b, nil, nil); err == nil {
			t.Errorf("New(%+v) should fail", cfg)
		}
	}
	if _, err := New(DefaultConfig(), nil, b, nil, nil); err == nil {
		t.Error("New with nil generator should fail")
	}
	if _, err := New(DefaultConfig(), g, nil, nil, nil); err == nil {
		t.Error("New with nil builder should fail")
	}
}

func TestStreamNineChunks(t *testing.T) {
	s, sink := newTestStreamer(t, 1, 2, 1, gen.NewFlatGenerator(4))

	report := s.Tick(chunkCenter(0, 0))
	if !report.Scanned || report.Enqueued != 9 {
		t.Fatalf("first tick: scanned=%v enqueued=%d, want true/9", report.Scanned, report.Enqueued)
	}
	if len(report.Loaded) != 1 || report.Loaded[0] != (chunk.Pos{X: -1, Z: -1}) {
		t.Fatalf("first tick loaded %v, want [(-1,0,-1)]", report.Loaded)
	}
	if s.QueueLen() != 8 {
		t.Fatalf("QueueLen = %d, want 8", s.QueueLen())
	}
	assertExclusive(t, s)

	for tick := 2; tick <= 9; tick++ {
		r := s.Tick(chunkCenter(0, 0))
		if r.Scanned {
			t.Fatalf("tick %d rescanned without the observer changing chunk", tick)
		}
		if len(r.Loaded) != 1 {
			t.Fatalf("tick %d loaded %d chunks, want 1", tick, len(r.Loaded))
		}
		assertExclusive(t, s)
	}

	if s.QueueLen() != 0 {
		t.Errorf("QueueLen = %d, want 0", s.QueueLen())
	}
	if s.ResidentCount() != 9 {
		t.Errorf("ResidentCount = %d, want 9", s.ResidentCount())
	}
	for x := -1; x <= 1; x++ {
		for z := -1; z <= 1; z++ {
			pos := chunk.Pos{X: x, Z: z}
			if !s.Resident(pos) {
				t.Errorf("%v not resident", pos)
			}
			if n := sink.count("created", pos); n != 1 {
				t.Errorf("%v created %d times, want 1", pos, n)
			}
		}
	}

	// Further ticks do nothing.
	r := s.Tick(chunkCenter(0, 0))
	if len(r.Loaded) != 0 || len(r.Evicted) != 0 {
		t.Errorf("idle tick loaded %v evicted %v", r.Loaded, r.Evicted)
	}
}

func TestStreamBudget(t *testing.T) {
	s, _ := newTestStreamer(t, 2, 3, 4, gen.NewFlatGenerator(4))
	r := s.Tick(chunkCenter(0, 0))
	if len(r.Loaded) != 4 || s.QueueLen() != 21 {
		t.Fatalf("loaded %d, queued %d; want 4, 21", len(r.Loaded), s.QueueLen())
	}
}

func TestStreamScanOrder(t *testing.T) {
	s, _ := newTestStreamer(t, 1, 2, 1, gen.NewFlatGenerator(4))
	s.Tick(chunkCenter(5, -3))
	want := []chunk.Pos{
		{X: 4, Z: -3}, {X: 4, Z: -2},
		{X: 5, Z: -4}, {X: 5, Z: -3}, {X: 5, Z: -2},
		{X: 6, Z: -4}, {X: 6, Z: -3}, {X: 6, Z: -2},
	}
	got := s.QueuedPositions()
	if len(got) != len(want) {
		t.Fatalf("queued %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("queued %v, want %v", got, want)
		}
	}
}

func TestStreamNeighbourPatch(t *testing.T) {
	s, sink := newTestStreamer(t, 1, 2, 1, gen.NewFlatGenerator(4))
	s.Tick(chunkCenter(0, 0)) // loads (-1,0,-1)
	first := chunk.Pos{X: -1, Z: -1}
	before, _ := sink.last("created", first)

	r := s.Tick(chunkCenter(0, 0)) // loads (-1,0,0), the +Z neighbour
	if r.Patched != 1 {
		t.Fatalf("patched %d neighbours, want 1", r.Patched)
	}
	after, ok := sink.last("updated", first)
	if !ok {
		t.Fatal("resident neighbour was not rebuilt")
	}
	if after.h != before.h {
		t.Errorf("rebuild changed handles %v -> %v", before.h, after.h)
	}
	if after.m.FaceCount() >= before.m.FaceCount() {
		t.Errorf("neighbour faces %d -> %d, want fewer once the boundary is covered",
			before.m.FaceCount(), after.m.FaceCount())
	}
	// The shared wall is covered by stone/dirt/grass rows: 5 rows of 16.
	if got, want := before.m.FaceCount()-after.m.FaceCount(), 5*chunk.SizeX; got != want {
		t.Errorf("faces removed = %d, want %d", got, want)
	}
}

func TestStreamEviction(t *testing.T) {
	s, sink := newTestStreamer(t, 1, 2, 9, gen.NewFlatGenerator(4))
	s.Tick(chunkCenter(0, 0))
	if s.ResidentCount() != 9 {
		t.Fatalf("ResidentCount = %d, want 9", s.ResidentCount())
	}
	far := chunk.Pos{X: -1, Z: 0}
	h, _ := s.Handles(far)

	// Observer moves to x=2: column x=-1 is now at distance 3.
	r := s.Tick(chunkCenter(2, 0))
	if len(r.Evicted) != 3 {
		t.Fatalf("evicted %v, want the three x=-1 chunks", r.Evicted)
	}
	for _, pos := range r.Evicted {
		if pos.X != -1 {
			t.Errorf("evicted %v, want only x=-1", pos)
		}
		if s.Resident(pos) {
			t.Errorf("%v still resident after eviction", pos)
		}
		if _, ok := s.Handles(pos); ok {
			t.Errorf("%v still has handles after eviction", pos)
		}
	}
	if n := sink.count("released", far); n != 1 {
		t.Fatalf("release signals for %v = %d, want 1", far, n)
	}
	if e, _ := sink.last("released", far); e.h != h {
		t.Errorf("released handles %v, want %v", e.h, h)
	}
	assertExclusive(t, s)

	// Staying put must not release again.
	for i := 0; i < 3; i++ {
		s.Tick(chunkCenter(2, 0))
	}
	if n := sink.count("released", far); n != 1 {
		t.Errorf("release signals for %v = %d after more ticks, want 1", far, n)
	}
}

func TestStreamExclusiveWhileMoving(t *testing.T) {
	s, _ := newTestStreamer(t, 2, 3, 2, gen.NewFlatGenerator(4))
	path := []mgl32.Vec3{
		chunkCenter(0, 0), chunkCenter(0, 0), chunkCenter(1, 0), chunkCenter(3, 1),
		chunkCenter(3, 1), chunkCenter(-2, 4), chunkCenter(-2, 4), chunkCenter(0, 0),
	}
	for i := 0; i < 60; i++ {
		s.Tick(path[i%len(path)])
		assertExclusive(t, s)
		seen := make(map[chunk.Pos]bool)
		for _, p := range s.QueuedPositions() {
			if seen[p] {
				t.Fatalf("tick %d: %v queued twice", i, p)
			}
			seen[p] = true
		}
	}
}

func TestEditBoundaryUpdatesNeighbour(t *testing.T) {
	s, sink := newTestStreamer(t, 1, 2, 9, gen.NewFlatGenerator(4))
	s.Tick(chunkCenter(0, 0))

	// Block (15,2,5) of chunk (0,0,0) sits against chunk (1,0,0). Its +X
	// neighbour (0,2,5) in chunk (1,0,0) hides its left face until the
	// edit clears the cell.
	owner := chunk.Pos{}
	neighbour := chunk.Pos{X: 1}
	beforeOwner, _, _ := s.Build(owner)
	beforeNeighbour, _, _ := s.Build(neighbour)
	sink.events = nil

	res, err := s.DestroyBlock(mgl32.Vec3{15.5, 2.5, 5.5})
	if err != nil {
		t.Fatalf("DestroyBlock: %v", err)
	}
	if !res.Changed || res.Previous != block.Dirt || res.Chunk != owner || res.Local != [3]int{15, 2, 5} {
		t.Fatalf("result = %+v", res)
	}
	if got := s.World().Block(chunk.BlockPos{X: 15, Y: 2, Z: 5}); got != block.Air {
		t.Fatalf("block after destroy = %v, want air", got)
	}

	ownerEv, ok := sink.last("updated", owner)
	if !ok {
		t.Fatal("owning chunk was not rebuilt")
	}
	neighbourEv, ok := sink.last("updated", neighbour)
	if !ok {
		t.Fatal("neighbour chunk was not rebuilt")
	}
	// A hole inside the solid mass: owner loses nothing and gains 5 inner
	// faces; the neighbour exposes its left face at (0,2,5).
	if got, want := ownerEv.m.FaceCount(), beforeOwner.FaceCount()+5; got != want {
		t.Errorf("owner faces = %d, want %d", got, want)
	}
	if got, want := neighbourEv.m.FaceCount(), beforeNeighbour.FaceCount()+1; got != want {
		t.Errorf("neighbour faces = %d, want %d", got, want)
	}
	if res.Patched != 4 {
		t.Errorf("patched %d neighbours, want 4 resident face neighbours", res.Patched)
	}
}

func TestEditSameTypeIsNoop(t *testing.T) {
	s, sink := newTestStreamer(t, 1, 2, 9, gen.NewFlatGenerator(4))
	s.Tick(chunkCenter(0, 0))
	sink.events = nil

	res, err := s.SetBlockAt(chunk.BlockPos{X: 3, Y: 10, Z: 3}, block.Air)
	if err != nil {
		t.Fatalf("SetBlockAt: %v", err)
	}
	if res.Changed {
		t.Error("setting air over air reported a change")
	}
	if len(sink.events) != 0 {
		t.Errorf("no-op edit emitted %d signals", len(sink.events))
	}
}

func TestEditPlaceBlock(t *testing.T) {
	s, _ := newTestStreamer(t, 1, 2, 9, gen.NewFlatGenerator(4))
	s.Tick(chunkCenter(0, 0))

	res, err := s.SetBlock(mgl32.Vec3{-0.5, 5.2, -0.5}, block.Sand)
	if err != nil {
		t.Fatalf("SetBlock: %v", err)
	}
	if res.Chunk != (chunk.Pos{X: -1, Z: -1}) || res.Local != [3]int{15, 5, 15} {
		t.Errorf("resolved to %v %v, want (-1,0,-1) [15 5 15]", res.Chunk, res.Local)
	}
	if got := s.World().Block(chunk.BlockPos{X: -1, Y: 5, Z: -1}); got != block.Sand {
		t.Errorf("placed block = %v, want sand", got)
	}
}

func TestEditChunkNotResident(t *testing.T) {
	s, sink := newTestStreamer(t, 1, 2, 1, gen.NewFlatGenerator(4))
	s.Tick(chunkCenter(0, 0))
	sink.events = nil

	_, err := s.DestroyBlock(chunkCenter(10, 10))
	if !errors.Is(err, ErrChunkNotResident) {
		t.Fatalf("err = %v, want ErrChunkNotResident", err)
	}
	if len(sink.events) != 0 {
		t.Errorf("failed edit emitted %d signals", len(sink.events))
	}
}

func TestTerrainStreamingDeterministic(t *testing.T) {
	p := gen.DefaultParams()
	newGen := func() gen.Generator { return gen.NewTerrainGenerator(p, gen.NewOpenSimplex(p.Seed)) }

	s1, _ := newTestStreamer(t, 1, 2, 9, newGen())
	s2, _ := newTestStreamer(t, 1, 2, 9, newGen())
	s1.Tick(chunkCenter(0, 0))
	s2.Tick(chunkCenter(0, 0))

	for _, pos := range s1.World().Positions() {
		c1, _ := s1.World().Chunk(pos)
		c2, ok := s2.World().Chunk(pos)
		if !ok || *c1 != *c2 {
			t.Fatalf("chunk %v differs between streamers", pos)
		}
		m, col, _ := s1.Build(pos)
		if err := m.Validate(); err != nil {
			t.Fatalf("mesh %v: %v", pos, err)
		}
		if col.Len() != c1.SolidCount() {
			t.Errorf("collider %v has %d points, want %d", pos, col.Len(), c1.SolidCount())
		}
	}
}
