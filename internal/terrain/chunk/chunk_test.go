package chunk

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-theft-craft/voxel-terrain/internal/terrain/block"
)

func TestIndexBijective(t *testing.T) {
	seen := make([]bool, Volume)
	for y := 0; y < SizeY; y++ {
		for z := 0; z < SizeZ; z++ {
			for x := 0; x < SizeX; x++ {
				i := Index(x, y, z)
				if i < 0 || i >= Volume {
					t.Fatalf("Index(%d,%d,%d) = %d, out of [0,%d)", x, y, z, i, Volume)
				}
				if seen[i] {
					t.Fatalf("Index(%d,%d,%d) = %d collides", x, y, z, i)
				}
				seen[i] = true

				cx, cy, cz := Coords(i)
				if cx != x || cy != y || cz != z {
					t.Fatalf("Coords(%d) = (%d,%d,%d), want (%d,%d,%d)", i, cx, cy, cz, x, y, z)
				}
			}
		}
	}
	for i, ok := range seen {
		if !ok {
			t.Fatalf("index %d never produced", i)
		}
	}
}

func TestNewChunkIsAir(t *testing.T) {
	c := New(Pos{1, 0, -1})
	if c.SolidCount() != 0 {
		t.Errorf("SolidCount = %d, want 0", c.SolidCount())
	}
	if len(c.SolidPoints()) != 0 {
		t.Error("new chunk should have no solid points")
	}
}

func TestSetBlock(t *testing.T) {
	c := New(Pos{})
	if prev := c.SetBlock(3, 4, 5, block.Stone); prev != block.Air {
		t.Errorf("previous = %v, want air", prev)
	}
	if got := c.Block(3, 4, 5); got != block.Stone {
		t.Errorf("Block(3,4,5) = %v, want stone", got)
	}
	if got := c.At(Index(3, 4, 5)); got != block.Stone {
		t.Errorf("At = %v, want stone", got)
	}
	if prev := c.SetBlock(3, 4, 5, block.Air); prev != block.Stone {
		t.Errorf("previous = %v, want stone", prev)
	}
}

func TestSolidPoints(t *testing.T) {
	c := New(Pos{})
	c.SetBlock(0, 0, 0, block.Grass)
	c.SetBlock(15, 2, 7, block.Coal)

	pts := c.SolidPoints()
	if len(pts) != 2 {
		t.Fatalf("len(points) = %d, want 2", len(pts))
	}
	if pts[0] != (mgl32.Vec3{0, 0, 0}) || pts[1] != (mgl32.Vec3{15, 2, 7}) {
		t.Errorf("points = %v", pts)
	}
}

func TestBlockPosSplit(t *testing.T) {
	tests := []struct {
		in      BlockPos
		pos     Pos
		x, y, z int
	}{
		{BlockPos{0, 0, 0}, Pos{0, 0, 0}, 0, 0, 0},
		{BlockPos{15, 15, 15}, Pos{0, 0, 0}, 15, 15, 15},
		{BlockPos{16, 3, 31}, Pos{1, 0, 1}, 0, 3, 15},
		{BlockPos{-1, -1, -16}, Pos{-1, -1, -1}, 15, 15, 0},
		{BlockPos{-17, 40, 5}, Pos{-2, 2, 0}, 15, 8, 5},
	}
	for _, tt := range tests {
		p, x, y, z := tt.in.Split()
		if p != tt.pos || x != tt.x || y != tt.y || z != tt.z {
			t.Errorf("%v.Split() = %v (%d,%d,%d), want %v (%d,%d,%d)",
				tt.in, p, x, y, z, tt.pos, tt.x, tt.y, tt.z)
		}
		if back := p.WorldBlock(x, y, z); back != tt.in {
			t.Errorf("WorldBlock round trip = %v, want %v", back, tt.in)
		}
	}
}

func TestBlockPosAtFloors(t *testing.T) {
	got := BlockPosAt(mgl32.Vec3{-0.5, 2.99, 17.2})
	if got != (BlockPos{-1, 2, 17}) {
		t.Errorf("BlockPosAt = %v, want {-1 2 17}", got)
	}
}

func TestColumnAt(t *testing.T) {
	tests := []struct {
		in   mgl32.Vec3
		want Pos
	}{
		{mgl32.Vec3{0, 300, 0}, Pos{0, 0, 0}},
		{mgl32.Vec3{15.9, -40, 15.9}, Pos{0, 0, 0}},
		{mgl32.Vec3{16, 0, -0.1}, Pos{1, 0, -1}},
		{mgl32.Vec3{-33, 0, 48}, Pos{-3, 0, 3}},
	}
	for _, tt := range tests {
		if got := ColumnAt(tt.in); got != tt.want {
			t.Errorf("ColumnAt(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNeighbourAndDistance(t *testing.T) {
	p := Pos{2, 0, -3}
	if got := p.Neighbour(block.Front); got != (Pos{2, 0, -2}) {
		t.Errorf("front neighbour = %v", got)
	}
	if got := p.Neighbour(block.Left); got != (Pos{1, 0, -3}) {
		t.Errorf("left neighbour = %v", got)
	}
	if got := p.Neighbour(block.Bottom); got != (Pos{2, -1, -3}) {
		t.Errorf("bottom neighbour = %v", got)
	}
	if d := p.HorizontalDistance(Pos{-1, 5, -2}); d != 3 {
		t.Errorf("HorizontalDistance = %d, want 3", d)
	}
	if o := p.Origin(); o != (mgl32.Vec3{32, 0, -48}) {
		t.Errorf("Origin = %v", o)
	}
}
