package world

import (
	"sync"

	"github.com/go-theft-craft/voxel-terrain/internal/terrain/chunk"
)

// Handle is an opaque identifier for a resource owned by a collaborator.
type Handle uint64

// Handles are the render and collider resources registered for a chunk.
type Handles struct {
	Render   Handle
	Collider Handle
}

// Entities associates resident chunks with their external handles. It does
// not own chunk data.
type Entities struct {
	mu      sync.RWMutex
	handles map[chunk.Pos]Handles
	next    Handle
}

// NewEntities creates an empty handle index.
func NewEntities() *Entities {
	return &Entities{handles: make(map[chunk.Pos]Handles)}
}

// Allocate issues a fresh pair of handles for pos and records them.
// Handles are never reused.
func (e *Entities) Allocate(pos chunk.Pos) Handles {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.next++
	render := e.next
	e.next++
	h := Handles{Render: render, Collider: e.next}
	e.handles[pos] = h
	return h
}

// Get returns the handles recorded for pos.
func (e *Entities) Get(pos chunk.Pos) (Handles, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	h, ok := e.handles[pos]
	return h, ok
}

// Release removes and returns the handles for pos.
func (e *Entities) Release(pos chunk.Pos) (Handles, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	h, ok := e.handles[pos]
	if ok {
		delete(e.handles, pos)
	}
	return h, ok
}

// Len returns the number of chunks with recorded handles.
func (e *Entities) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.handles)
}
