package mesh

import (
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/block"
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/chunk"
)

// Lookup resolves resident chunks by position.
type Lookup interface {
	Chunk(pos chunk.Pos) (*chunk.Chunk, bool)
}

// VisibleFaces returns the faces of the block at local (x, y, z) that are
// not covered by a solid neighbour. A neighbour in a chunk that is not
// resident counts as open, so frontier faces are emitted and later removed
// when the neighbour loads and this chunk is rebuilt.
func VisibleFaces(c *chunk.Chunk, lookup Lookup, x, y, z int) block.Faces {
	var faces block.Faces
	for _, f := range block.AllFaces {
		if !neighbourSolid(c, lookup, f, x, y, z) {
			faces = faces.With(f)
		}
	}
	return faces
}

func neighbourSolid(c *chunk.Chunk, lookup Lookup, f block.Face, x, y, z int) bool {
	dx, dy, dz := f.Offset()
	nx, ny, nz := x+dx, y+dy, z+dz
	if chunk.InBounds(nx, ny, nz) {
		return c.Block(nx, ny, nz).IsSolid()
	}
	if lookup == nil {
		return false
	}
	n, ok := lookup.Chunk(c.Pos.Neighbour(f))
	if !ok {
		return false
	}
	return n.Block(wrap(nx, chunk.SizeX), wrap(ny, chunk.SizeY), wrap(nz, chunk.SizeZ)).IsSolid()
}

// wrap maps a coordinate one step outside [0, size) onto the opposite edge.
func wrap(v, size int) int {
	switch {
	case v < 0:
		return v + size
	case v >= size:
		return v - size
	}
	return v
}
