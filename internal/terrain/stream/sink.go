package stream

import (
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/chunk"
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/mesh"
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/world"
)

// Sink receives chunk lifecycle signals. Calls are made from the goroutine
// running Tick or the edit path, one at a time. Meshes are freshly built
// for each call and are not mutated afterwards.
type Sink interface {
	// Created is called once when a chunk becomes resident.
	Created(pos chunk.Pos, h world.Handles, m *mesh.Mesh, col mesh.Collision)
	// Updated is called when a resident chunk's mesh was rebuilt.
	Updated(pos chunk.Pos, h world.Handles, m *mesh.Mesh, col mesh.Collision)
	// Released is called once when a chunk is evicted.
	Released(pos chunk.Pos, h world.Handles)
}

// Sinks fans signals out to every sink in order.
type Sinks []Sink

func (s Sinks) Created(pos chunk.Pos, h world.Handles, m *mesh.Mesh, col mesh.Collision) {
	for _, sink := range s {
		sink.Created(pos, h, m, col)
	}
}

func (s Sinks) Updated(pos chunk.Pos, h world.Handles, m *mesh.Mesh, col mesh.Collision) {
	for _, sink := range s {
		sink.Updated(pos, h, m, col)
	}
}

func (s Sinks) Released(pos chunk.Pos, h world.Handles) {
	for _, sink := range s {
		sink.Released(pos, h)
	}
}

// NopSink discards every signal.
type NopSink struct{}

func (NopSink) Created(chunk.Pos, world.Handles, *mesh.Mesh, mesh.Collision) {}
func (NopSink) Updated(chunk.Pos, world.Handles, *mesh.Mesh, mesh.Collision) {}
func (NopSink) Released(chunk.Pos, world.Handles)                            {}
