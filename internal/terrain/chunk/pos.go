package chunk

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-theft-craft/voxel-terrain/internal/terrain/block"
)

// Pos identifies a chunk in chunk-grid units.
type Pos struct {
	X, Y, Z int
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}

// Add returns p offset by d.
func (p Pos) Add(d Pos) Pos {
	return Pos{p.X + d.X, p.Y + d.Y, p.Z + d.Z}
}

// Neighbour returns the chunk adjacent to p across face f.
func (p Pos) Neighbour(f block.Face) Pos {
	dx, dy, dz := f.Offset()
	return p.Add(Pos{dx, dy, dz})
}

// Origin returns the world-space translation of the chunk's local (0,0,0).
func (p Pos) Origin() mgl32.Vec3 {
	return mgl32.Vec3{float32(p.X * SizeX), float32(p.Y * SizeY), float32(p.Z * SizeZ)}
}

// HorizontalDistance returns max(|dx|, |dz|) between two chunks.
func (p Pos) HorizontalDistance(o Pos) int {
	dx := abs(p.X - o.X)
	dz := abs(p.Z - o.Z)
	if dx > dz {
		return dx
	}
	return dz
}

// BlockPos is a block position in world units.
type BlockPos struct {
	X, Y, Z int
}

// BlockPosAt returns the block containing a world-space point.
func BlockPosAt(v mgl32.Vec3) BlockPos {
	return BlockPos{
		X: int(math.Floor(float64(v.X()))),
		Y: int(math.Floor(float64(v.Y()))),
		Z: int(math.Floor(float64(v.Z()))),
	}
}

// Split resolves a world block position to its chunk and local coordinates.
func (b BlockPos) Split() (p Pos, x, y, z int) {
	p = Pos{floorDiv(b.X, SizeX), floorDiv(b.Y, SizeY), floorDiv(b.Z, SizeZ)}
	return p, mod(b.X, SizeX), mod(b.Y, SizeY), mod(b.Z, SizeZ)
}

// WorldBlock returns the world position of local coordinates in chunk p.
func (p Pos) WorldBlock(x, y, z int) BlockPos {
	return BlockPos{p.X*SizeX + x, p.Y*SizeY + y, p.Z*SizeZ + z}
}

// ColumnAt returns the chunk in the streaming layer (Y = 0) that contains
// the world-space point v.
func ColumnAt(v mgl32.Vec3) Pos {
	return Pos{
		X: int(math.Floor(float64(v.X()) / SizeX)),
		Z: int(math.Floor(float64(v.Z()) / SizeZ)),
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if r := a % b; r != 0 && (r < 0) != (b < 0) {
		q--
	}
	return q
}

func mod(a, b int) int {
	r := a % b
	if r < 0 {
		r += b
	}
	return r
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
