package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-theft-craft/voxel-terrain/internal/terrain/block"
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/chunk"
)

// Mesh holds the render buffers of one chunk in chunk-local space.
// Translate by chunk.Pos.Origin to place it in the world.
type Mesh struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// FaceCount returns the number of emitted quads.
func (m *Mesh) FaceCount() int {
	return len(m.Positions) / 4
}

// Empty reports whether the mesh has no geometry.
func (m *Mesh) Empty() bool {
	return len(m.Indices) == 0
}

// Validate checks that the buffers are consistently sized and every index
// refers to an emitted vertex.
func (m *Mesh) Validate() error {
	n := len(m.Positions)
	if len(m.Normals) != n || len(m.UVs) != n {
		return fmt.Errorf("buffer length mismatch: %d positions, %d normals, %d uvs",
			n, len(m.Normals), len(m.UVs))
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3", len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("index %d at %d out of range (%d vertices)", idx, i, n)
		}
	}
	return nil
}

// Triangles returns the index buffer grouped into triangles.
func (m *Mesh) Triangles() [][3]uint32 {
	tris := make([][3]uint32, 0, len(m.Indices)/3)
	for i := 0; i+2 < len(m.Indices); i += 3 {
		tris = append(tris, [3]uint32{m.Indices[i], m.Indices[i+1], m.Indices[i+2]})
	}
	return tris
}

// Builder assembles chunk meshes with one quad per visible block face.
type Builder struct {
	Atlas *block.Atlas
}

// NewBuilder returns a Builder using atlas, or the default atlas when nil.
func NewBuilder(atlas *block.Atlas) *Builder {
	if atlas == nil {
		atlas = block.DefaultAtlas()
	}
	return &Builder{Atlas: atlas}
}

// Build meshes c from scratch. Blocks are visited in linear index order and
// faces in block.AllFaces order. lookup resolves neighbouring chunks and
// may be nil, in which case every boundary face is emitted.
func (b *Builder) Build(c *chunk.Chunk, lookup Lookup) *Mesh {
	m := &Mesh{}
	var base uint32

	for i := 0; i < chunk.Volume; i++ {
		t := c.At(i)
		if !t.IsSolid() {
			continue
		}
		x, y, z := chunk.Coords(i)
		faces := VisibleFaces(c, lookup, x, y, z)
		if faces == 0 {
			continue
		}

		offset := mgl32.Vec3{float32(x), float32(y), float32(z)}
		uv := b.Atlas.UV(t)
		for _, f := range block.AllFaces {
			if !faces.Has(f) {
				continue
			}
			normal := f.Normal()
			for k, v := range f.Vertices() {
				m.Positions = append(m.Positions, v.Add(offset))
				m.Normals = append(m.Normals, normal)
				m.UVs = append(m.UVs, uv[k])
			}
			for _, idx := range block.QuadIndices {
				m.Indices = append(m.Indices, base+idx)
			}
			base += 4
		}
	}
	return m
}
