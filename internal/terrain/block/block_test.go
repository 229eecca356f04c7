package block

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestIsSolid(t *testing.T) {
	if Air.IsSolid() {
		t.Error("air should not be solid")
	}
	for _, b := range Types() {
		if b == Air {
			continue
		}
		if !b.IsSolid() {
			t.Errorf("%s should be solid", b)
		}
	}
}

func TestParseTypeRoundTrip(t *testing.T) {
	for _, b := range Types() {
		got, err := ParseType(b.String())
		if err != nil {
			t.Fatalf("ParseType(%q): %v", b.String(), err)
		}
		if got != b {
			t.Errorf("ParseType(%q) = %v, want %v", b.String(), got, b)
		}
	}
	if _, err := ParseType("bedrock"); err == nil {
		t.Error("expected error for unknown block name")
	}
}

func TestDefaultAtlasUV(t *testing.T) {
	a := DefaultAtlas()

	uv := a.UV(Dirt)
	wantUMin := float32(2)*DefaultTileSize + DefaultPadding
	if uv[0].X() != wantUMin || uv[3].X() != wantUMin {
		t.Errorf("dirt u_min = %v/%v, want %v", uv[0].X(), uv[3].X(), wantUMin)
	}
	if uv[0].Y() != DefaultPadding {
		t.Errorf("dirt v_min = %v, want %v", uv[0].Y(), DefaultPadding)
	}
	width := uv[1].X() - uv[0].X()
	wantWidth := float32(DefaultTileSize - 2*DefaultPadding)
	if diff := width - wantWidth; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("tile width = %v, want %v", width, wantWidth)
	}
	if uv[2].Y() <= uv[1].Y() {
		t.Errorf("v_max %v should exceed v_min %v", uv[2].Y(), uv[1].Y())
	}
}

func TestAtlasDefaultTile(t *testing.T) {
	a := DefaultAtlas()
	if a.UV(Air) != a.UV(Grass) {
		t.Error("air has no art and should share the (0,0) tile with grass")
	}
	if a.Tile(Coal) == (Tile{}) {
		t.Error("coal should have its own tile")
	}
}

func TestParseAtlas(t *testing.T) {
	a, err := ParseAtlas([]byte(`
tile_size: 0.125
padding: 0
tiles:
  stone: [3, 1]
  sand: [1, 1]
`))
	if err != nil {
		t.Fatalf("ParseAtlas: %v", err)
	}
	if a.Tile(Stone) != (Tile{3, 1}) {
		t.Errorf("stone tile = %v, want {3 1}", a.Tile(Stone))
	}
	uv := a.UV(Stone)
	if uv[0].X() != 0.375 || uv[0].Y() != 0.125 || uv[2].X() != 0.5 || uv[2].Y() != 0.25 {
		t.Errorf("stone uv = %v", uv)
	}
	if a.Tile(Grass) != (Tile{}) {
		t.Errorf("unlisted grass tile = %v, want default", a.Tile(Grass))
	}
}

func TestParseAtlasRejectsUnknownBlock(t *testing.T) {
	if _, err := ParseAtlas([]byte("tiles:\n  obsidian: [1, 1]\n")); err == nil {
		t.Fatal("expected error for unknown block name")
	}
}

func TestParseAtlasRejectsBadGeometry(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"tile size above one", "tile_size: 2\n"},
		{"negative tile size", "tile_size: -0.25\n"},
		{"negative padding", "padding: -0.001\n"},
		{"padding fills tile", "tile_size: 0.25\npadding: 0.125\n"},
		{"cell outside atlas", "tile_size: 0.5\ntiles:\n  stone: [2, 0]\n"},
	}
	for _, tt := range tests {
		if _, err := ParseAtlas([]byte(tt.yaml)); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}

	a, err := ParseAtlas([]byte("tile_size: 1\npadding: 0\ntiles:\n  stone: [0, 0]\n"))
	if err != nil {
		t.Fatalf("single-tile atlas: %v", err)
	}
	if a.TileSize != 1 {
		t.Errorf("tile size = %v, want 1", a.TileSize)
	}
}

func TestParseTypeListsKnownTypes(t *testing.T) {
	_, err := ParseType("lava")
	if err == nil {
		t.Fatal("expected error for unknown block")
	}
	if !strings.Contains(err.Error(), "coal") {
		t.Errorf("error %q should list the known types", err)
	}
}

func TestLoadAtlasFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atlas.yaml")
	if err := os.WriteFile(path, []byte("tiles:\n  grass: [4, 4]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	a, err := LoadAtlas(path)
	if err != nil {
		t.Fatalf("LoadAtlas: %v", err)
	}
	if a.Tile(Grass) != (Tile{4, 4}) {
		t.Errorf("grass tile = %v, want {4 4}", a.Tile(Grass))
	}
	if a.TileSize != DefaultTileSize {
		t.Errorf("tile size = %v, want default", a.TileSize)
	}
}

func TestFaceTables(t *testing.T) {
	for _, f := range AllFaces {
		dx, dy, dz := f.Offset()
		n := f.Normal()
		if float32(dx) != n.X() || float32(dy) != n.Y() || float32(dz) != n.Z() {
			t.Errorf("%s offset (%d,%d,%d) disagrees with normal %v", f, dx, dy, dz, n)
		}
		// Every corner of a face lies on the plane the normal points out of.
		for _, v := range f.Vertices() {
			d := v.Sub(n.Mul(0.5)).Sub(mgl32.Vec3{0.5, 0.5, 0.5}).Dot(n)
			if d != 0 {
				t.Errorf("%s vertex %v not on face plane", f, v)
			}
		}
	}
}

func TestFacesSet(t *testing.T) {
	var fs Faces
	fs = fs.With(Top).With(Left).With(Top)
	if fs.Count() != 2 {
		t.Errorf("Count = %d, want 2", fs.Count())
	}
	if !fs.Has(Left) || fs.Has(Right) {
		t.Errorf("unexpected membership in %08b", fs)
	}
}
