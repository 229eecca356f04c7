package block

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultTileSize is the width of one atlas tile in UV units (16×16 grid).
	DefaultTileSize = 1.0 / 16.0
	// DefaultPadding insets each tile to avoid bleeding from its neighbours.
	DefaultPadding = 0.5 / 1024.0
)

// Tile addresses a cell of the texture atlas grid.
type Tile struct {
	X, Y int
}

// Atlas maps block tags to texture atlas rectangles.
type Atlas struct {
	TileSize float32
	Padding  float32
	tiles    map[Type]Tile
}

// DefaultAtlas returns the layout of the bundled terrain atlas.
func DefaultAtlas() *Atlas {
	return &Atlas{
		TileSize: DefaultTileSize,
		Padding:  DefaultPadding,
		tiles: map[Type]Tile{
			Grass: {0, 0},
			Stone: {1, 0},
			Dirt:  {2, 0},
			Sand:  {0, 3},
			Coal:  {2, 2},
		},
	}
}

// Tile returns the atlas cell for t. Tags without dedicated art use (0,0).
func (a *Atlas) Tile(t Type) Tile {
	return a.tiles[t]
}

// UV returns the four texture coordinates for a face of block t in the
// order (min,min), (max,min), (max,max), (min,max), matching Face.Vertices.
func (a *Atlas) UV(t Type) [4]mgl32.Vec2 {
	tile := a.Tile(t)
	uMin := float32(tile.X)*a.TileSize + a.Padding
	vMin := float32(tile.Y)*a.TileSize + a.Padding
	uMax := uMin + a.TileSize - 2*a.Padding
	vMax := vMin + a.TileSize - 2*a.Padding
	return [4]mgl32.Vec2{
		{uMin, vMin},
		{uMax, vMin},
		{uMax, vMax},
		{uMin, vMax},
	}
}

// atlasFile is the on-disk layout shipped alongside an atlas PNG.
type atlasFile struct {
	TileSize float32           `yaml:"tile_size"`
	Padding  *float32          `yaml:"padding"`
	Tiles    map[string][2]int `yaml:"tiles"`
}

// LoadAtlas reads an atlas layout YAML file. Missing tile_size and padding
// fall back to the defaults; tags not listed keep no dedicated tile.
func LoadAtlas(path string) (*Atlas, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read atlas: %w", err)
	}
	return ParseAtlas(raw)
}

// ParseAtlas decodes an atlas layout from YAML bytes.
func ParseAtlas(raw []byte) (*Atlas, error) {
	var f atlasFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse atlas: %w", err)
	}

	a := &Atlas{
		TileSize: DefaultTileSize,
		Padding:  DefaultPadding,
		tiles:    make(map[Type]Tile, len(f.Tiles)),
	}
	switch {
	case f.TileSize < 0 || f.TileSize > 1:
		return nil, fmt.Errorf("atlas tile size %v outside (0, 1]", f.TileSize)
	case f.TileSize > 0:
		a.TileSize = f.TileSize
	}
	if f.Padding != nil {
		if *f.Padding < 0 {
			return nil, fmt.Errorf("atlas padding %v is negative", *f.Padding)
		}
		a.Padding = *f.Padding
	}
	if 2*a.Padding >= a.TileSize {
		return nil, fmt.Errorf("atlas padding %v too large for tile size %v", a.Padding, a.TileSize)
	}
	for name, xy := range f.Tiles {
		t, err := ParseType(name)
		if err != nil {
			return nil, fmt.Errorf("atlas tiles: %w", err)
		}
		if xy[0] < 0 || xy[1] < 0 {
			return nil, fmt.Errorf("atlas tile for %s has negative cell %v", name, xy)
		}
		if float32(max(xy[0], xy[1])+1)*a.TileSize > 1+1e-6 {
			return nil, fmt.Errorf("atlas tile for %s at %v lies outside the atlas", name, xy)
		}
		a.tiles[t] = Tile{X: xy[0], Y: xy[1]}
	}
	return a, nil
}
