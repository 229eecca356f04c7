package chunk

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-theft-craft/voxel-terrain/internal/terrain/block"
)

const (
	SizeX = 16
	SizeY = 16
	SizeZ = 16

	// Volume is the number of blocks in a chunk (4096).
	Volume = SizeX * SizeY * SizeZ
)

// coords is the inverse of Index, precomputed for the whole chunk.
var coords = func() (out [Volume][3]uint8) {
	i := 0
	for y := 0; y < SizeY; y++ {
		for z := 0; z < SizeZ; z++ {
			for x := 0; x < SizeX; x++ {
				out[i] = [3]uint8{uint8(x), uint8(y), uint8(z)}
				i++
			}
		}
	}
	return out
}()

// Index returns the linear block index for local coordinates.
// x, y, z must be within the chunk dimensions.
func Index(x, y, z int) int {
	return x + z*SizeX + y*SizeX*SizeZ
}

// Coords returns the local coordinates of linear index i.
func Coords(i int) (x, y, z int) {
	c := coords[i]
	return int(c[0]), int(c[1]), int(c[2])
}

// InBounds reports whether local coordinates address a block of the chunk.
func InBounds(x, y, z int) bool {
	return x >= 0 && x < SizeX && y >= 0 && y < SizeY && z >= 0 && z < SizeZ
}

// Chunk is a dense SizeX×SizeY×SizeZ array of blocks.
type Chunk struct {
	Pos    Pos
	blocks [Volume]block.Type
}

// New returns an all-air chunk at pos.
func New(pos Pos) *Chunk {
	return &Chunk{Pos: pos}
}

// Block returns the block at local coordinates.
func (c *Chunk) Block(x, y, z int) block.Type {
	return c.blocks[Index(x, y, z)]
}

// SetBlock stores t at local coordinates and returns the previous block.
func (c *Chunk) SetBlock(x, y, z int, t block.Type) block.Type {
	i := Index(x, y, z)
	prev := c.blocks[i]
	c.blocks[i] = t
	return prev
}

// At returns the block at linear index i.
func (c *Chunk) At(i int) block.Type {
	return c.blocks[i]
}

// SolidCount returns the number of solid blocks.
func (c *Chunk) SolidCount() int {
	n := 0
	for _, b := range c.blocks {
		if b.IsSolid() {
			n++
		}
	}
	return n
}

// SolidPoints returns the local position of every solid block, in index
// order. Physics collaborators build a voxel collider from it.
func (c *Chunk) SolidPoints() []mgl32.Vec3 {
	points := make([]mgl32.Vec3, 0, c.SolidCount())
	for i, b := range c.blocks {
		if !b.IsSolid() {
			continue
		}
		x, y, z := Coords(i)
		points = append(points, mgl32.Vec3{float32(x), float32(y), float32(z)})
	}
	return points
}
