package server

import (
	"sync/atomic"

	"github.com/go-theft-craft/voxel-terrain/internal/terrain/chunk"
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/mesh"
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/world"
)

// Stats counts chunk lifecycle signals. It is a stream.Sink and may be read
// from any goroutine.
type Stats struct {
	created  atomic.Uint64
	updated  atomic.Uint64
	released atomic.Uint64
}

func (s *Stats) Created(chunk.Pos, world.Handles, *mesh.Mesh, mesh.Collision) { s.created.Add(1) }
func (s *Stats) Updated(chunk.Pos, world.Handles, *mesh.Mesh, mesh.Collision) { s.updated.Add(1) }
func (s *Stats) Released(chunk.Pos, world.Handles)                            { s.released.Add(1) }

// Snapshot returns the current counters.
func (s *Stats) Snapshot() (created, updated, released uint64) {
	return s.created.Load(), s.updated.Load(), s.released.Load()
}
