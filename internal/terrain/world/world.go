package world

import (
	"slices"
	"sync"

	"github.com/go-theft-craft/voxel-terrain/internal/terrain/block"
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/chunk"
)

// World is the sparse index of resident chunks.
type World struct {
	mu     sync.RWMutex
	chunks map[chunk.Pos]*chunk.Chunk
}

// New creates an empty World.
func New() *World {
	return &World{chunks: make(map[chunk.Pos]*chunk.Chunk)}
}

// Chunk returns the resident chunk at pos.
func (w *World) Chunk(pos chunk.Pos) (*chunk.Chunk, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.chunks[pos]
	return c, ok
}

// Contains reports whether a chunk is resident at pos.
func (w *World) Contains(pos chunk.Pos) bool {
	_, ok := w.Chunk(pos)
	return ok
}

// Insert stores c under c.Pos, replacing any chunk already there.
func (w *World) Insert(c *chunk.Chunk) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.chunks[c.Pos] = c
}

// Remove deletes the chunk at pos and returns it.
func (w *World) Remove(pos chunk.Pos) (*chunk.Chunk, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, ok := w.chunks[pos]
	if ok {
		delete(w.chunks, pos)
	}
	return c, ok
}

// Len returns the number of resident chunks.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.chunks)
}

// Positions returns the resident chunk positions sorted by (Y, Z, X).
func (w *World) Positions() []chunk.Pos {
	w.mu.RLock()
	out := make([]chunk.Pos, 0, len(w.chunks))
	for pos := range w.chunks {
		out = append(out, pos)
	}
	w.mu.RUnlock()

	slices.SortFunc(out, comparePos)
	return out
}

// Block returns the block at a world position. Positions in chunks that
// are not resident read as air. It may be called from any goroutine while
// edits go through SetBlock.
func (w *World) Block(bp chunk.BlockPos) block.Type {
	pos, x, y, z := bp.Split()
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.chunks[pos]
	if !ok {
		return block.Air
	}
	return c.Block(x, y, z)
}

// SetBlock stores t at a world position in a resident chunk and returns
// the previous block. It reports false when the chunk is not resident.
func (w *World) SetBlock(bp chunk.BlockPos, t block.Type) (block.Type, bool) {
	pos, x, y, z := bp.Split()
	w.mu.Lock()
	defer w.mu.Unlock()
	c, ok := w.chunks[pos]
	if !ok {
		return block.Air, false
	}
	return c.SetBlock(x, y, z, t), true
}

func comparePos(a, b chunk.Pos) int {
	switch {
	case a.Y != b.Y:
		return a.Y - b.Y
	case a.Z != b.Z:
		return a.Z - b.Z
	}
	return a.X - b.X
}
