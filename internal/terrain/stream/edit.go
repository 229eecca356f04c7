package stream

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-theft-craft/voxel-terrain/internal/terrain/block"
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/chunk"
)

// ErrChunkNotResident is returned by edits that target a chunk that is not
// loaded.
var ErrChunkNotResident = errors.New("chunk not resident")

// EditResult describes an applied block edit.
type EditResult struct {
	Chunk    chunk.Pos
	Local    [3]int
	Previous block.Type
	// Changed is false when the block already had the requested type; no
	// mesh was rebuilt in that case.
	Changed bool
	// Patched counts the resident neighbours rebuilt after the edit.
	Patched int
}

// SetBlock sets the block containing the world-space point target to t.
func (s *Streamer) SetBlock(target mgl32.Vec3, t block.Type) (EditResult, error) {
	return s.SetBlockAt(chunk.BlockPosAt(target), t)
}

// DestroyBlock replaces the block containing target with air.
func (s *Streamer) DestroyBlock(target mgl32.Vec3) (EditResult, error) {
	return s.SetBlock(target, block.Air)
}

// SetBlockAt sets the block at a world block position to t, rebuilds the
// owning chunk and patches its resident neighbours.
func (s *Streamer) SetBlockAt(bp chunk.BlockPos, t block.Type) (EditResult, error) {
	pos, x, y, z := bp.Split()
	res := EditResult{Chunk: pos, Local: [3]int{x, y, z}}

	prev, ok := s.world.SetBlock(bp, t)
	if !ok {
		return res, fmt.Errorf("set block %v in chunk %v: %w", bp, pos, ErrChunkNotResident)
	}

	res.Previous = prev
	if res.Previous == t {
		return res, nil
	}
	res.Changed = true

	s.rebuild(pos)
	res.Patched = s.patchNeighbours(pos)

	s.logger.Debug("block edited",
		"pos", bp,
		"chunk", pos,
		"from", res.Previous,
		"to", t,
		"patched", res.Patched,
	)
	return res, nil
}
