package gen

import (
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/block"
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/chunk"
)

// FlatGenerator generates level terrain: grass at Height, DirtDepth layers
// of dirt beneath it, and stone below that.
type FlatGenerator struct {
	Height    int
	DirtDepth int
}

// NewFlatGenerator creates a FlatGenerator with grass at world y = height.
func NewFlatGenerator(height int) *FlatGenerator {
	return &FlatGenerator{Height: height, DirtDepth: 3}
}

func (g *FlatGenerator) Generate(pos chunk.Pos) *chunk.Chunk {
	c := chunk.New(pos)
	baseY := pos.Y * chunk.SizeY

	for y := 0; y < chunk.SizeY; y++ {
		b := g.layer(baseY + y)
		if b == block.Air {
			break
		}
		for z := 0; z < chunk.SizeZ; z++ {
			for x := 0; x < chunk.SizeX; x++ {
				c.SetBlock(x, y, z, b)
			}
		}
	}
	return c
}

func (g *FlatGenerator) HeightAt(_, _ int) int {
	return g.Height
}

func (g *FlatGenerator) layer(wy int) block.Type {
	switch {
	case wy > g.Height:
		return block.Air
	case wy == g.Height:
		return block.Grass
	case wy >= g.Height-g.DirtDepth:
		return block.Dirt
	default:
		return block.Stone
	}
}
