package gen

import (
	"math"

	"github.com/go-theft-craft/voxel-terrain/internal/terrain/block"
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/chunk"
)

// Generator produces chunk contents deterministically from a seed.
type Generator interface {
	Generate(pos chunk.Pos) *chunk.Chunk
	HeightAt(blockX, blockZ int) int
}

// Params configures TerrainGenerator.
type Params struct {
	Seed        int64
	Frequency   float64
	Amplitude   float64
	BaseHeight  float64
	DirtDepth   int
	Octaves     int
	Persistence float64
	OreChance   float64
	Ore         block.Type
}

// DefaultParams returns the stock rolling-hills terrain.
func DefaultParams() Params {
	return Params{
		Seed:        213123,
		Frequency:   0.065,
		Amplitude:   5,
		BaseHeight:  8,
		DirtDepth:   3,
		Octaves:     1,
		Persistence: 0.5,
		OreChance:   0.05,
		Ore:         block.Coal,
	}
}

const oreSalt = 0x6f7265 // "ore"

// TerrainGenerator fills columns up to a noise-driven height: grass on top,
// a few layers of dirt, then stone with scattered ore.
type TerrainGenerator struct {
	params Params
	noise  Noise2D
}

// NewTerrainGenerator creates a TerrainGenerator sampling the given noise.
func NewTerrainGenerator(p Params, noise Noise2D) *TerrainGenerator {
	return &TerrainGenerator{params: p, noise: noise}
}

// Params returns the generator's configuration.
func (g *TerrainGenerator) Params() Params {
	return g.params
}

func (g *TerrainGenerator) Generate(pos chunk.Pos) *chunk.Chunk {
	c := chunk.New(pos)
	baseY := pos.Y * chunk.SizeY

	for z := 0; z < chunk.SizeZ; z++ {
		for x := 0; x < chunk.SizeX; x++ {
			wb := pos.WorldBlock(x, 0, z)
			g.fillColumn(c, x, z, wb.X, wb.Z, baseY, g.HeightAt(wb.X, wb.Z))
		}
	}
	return c
}

// HeightAt returns the world y of the grass block in the column (wx, wz).
func (g *TerrainGenerator) HeightAt(wx, wz int) int {
	p := g.params
	n := Octave(g.noise, float64(wx)*p.Frequency, float64(wz)*p.Frequency, p.Octaves, p.Persistence)
	return int(math.Floor(n*p.Amplitude + p.BaseHeight))
}

// fillColumn writes the part of the column (wx, wz) that falls inside c.
func (g *TerrainGenerator) fillColumn(c *chunk.Chunk, x, z, wx, wz, baseY, height int) {
	for y := 0; y < chunk.SizeY; y++ {
		wy := baseY + y
		if wy > height {
			break
		}
		c.SetBlock(x, y, z, g.blockAt(wx, wy, wz, height))
	}
}

func (g *TerrainGenerator) blockAt(wx, wy, wz, height int) block.Type {
	switch {
	case wy == height:
		return block.Grass
	case wy >= height-g.params.DirtDepth:
		return block.Dirt
	}
	if g.params.OreChance > 0 {
		r := blockRNG(g.params.Seed, wx, wy, wz, oreSalt)
		if r.unit() < g.params.OreChance {
			return g.params.Ore
		}
	}
	return block.Stone
}
