package meshcodec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-theft-craft/voxel-terrain/internal/terrain/mesh"
)

// CollisionEncoding names the collider payload format on the wire.
//
// Layout, little-endian: magic "VXC1", uint32 collider kind, uint32 count,
// uint32 triangle count. A voxel collider carries count points (3×f32). A
// triangle collider carries count vertex positions (3×f32) followed by the
// triangles (3×u32).
const CollisionEncoding = "VXC1_ZSTD"

const collisionHeaderSize = 16

var collisionMagic = [4]byte{'V', 'X', 'C', '1'}

// EncodeCollision returns the compressed binary form of col.
func (c *Codec) EncodeCollision(col mesh.Collision) ([]byte, error) {
	raw, err := MarshalCollision(col)
	if err != nil {
		return nil, err
	}
	return c.enc.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

// DecodeCollision reverses EncodeCollision.
func (c *Codec) DecodeCollision(data []byte) (mesh.Collision, error) {
	raw, err := c.dec.DecodeAll(data, nil)
	if err != nil {
		return mesh.Collision{}, fmt.Errorf("decompress collision: %w", err)
	}
	return UnmarshalCollision(raw)
}

// MarshalCollision returns the uncompressed binary form of col.
func MarshalCollision(col mesh.Collision) ([]byte, error) {
	var (
		count, tris int
		sections    []any
	)
	switch col.Kind {
	case mesh.ColliderVoxels:
		count = len(col.Points)
		sections = []any{col.Points}
	case mesh.ColliderTriMesh:
		if col.Mesh == nil {
			return nil, errors.New("marshal collision: triangle collider without mesh")
		}
		triangles := col.Mesh.Triangles()
		count, tris = len(col.Mesh.Positions), len(triangles)
		sections = []any{col.Mesh.Positions, triangles}
	default:
		return nil, fmt.Errorf("marshal collision: unknown collider kind %d", col.Kind)
	}

	size := collisionHeaderSize + count*3*4 + tris*3*4
	buf := bytes.NewBuffer(make([]byte, 0, size))
	buf.Write(collisionMagic[:])
	var hdr [12]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(col.Kind))
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(count))
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(tris))
	buf.Write(hdr[:])

	for _, section := range sections {
		if err := binary.Write(buf, binary.LittleEndian, section); err != nil {
			return nil, fmt.Errorf("marshal collision: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalCollision parses the uncompressed form produced by
// MarshalCollision. A triangle collider decodes to a mesh holding only
// positions and indices.
func UnmarshalCollision(raw []byte) (mesh.Collision, error) {
	if len(raw) < collisionHeaderSize {
		return mesh.Collision{}, fmt.Errorf("unmarshal collision: short header (%d bytes)", len(raw))
	}
	if !bytes.Equal(raw[:4], collisionMagic[:]) {
		return mesh.Collision{}, ErrBadMagic
	}
	kind := mesh.ColliderKind(binary.LittleEndian.Uint32(raw[4:8]))
	count := int(binary.LittleEndian.Uint32(raw[8:12]))
	tris := int(binary.LittleEndian.Uint32(raw[12:16]))
	if want := collisionHeaderSize + count*3*4 + tris*3*4; len(raw) != want {
		return mesh.Collision{}, fmt.Errorf("unmarshal collision: payload is %d bytes, header implies %d", len(raw), want)
	}
	r := bytes.NewReader(raw[collisionHeaderSize:])

	switch kind {
	case mesh.ColliderVoxels:
		if tris != 0 {
			return mesh.Collision{}, fmt.Errorf("unmarshal collision: voxel collider with %d triangles", tris)
		}
		points := make([]mgl32.Vec3, count)
		if err := binary.Read(r, binary.LittleEndian, points); err != nil {
			return mesh.Collision{}, fmt.Errorf("unmarshal collision: %w", err)
		}
		return mesh.Collision{Kind: kind, Points: points}, nil

	case mesh.ColliderTriMesh:
		m := &mesh.Mesh{
			Positions: make([]mgl32.Vec3, count),
			Indices:   make([]uint32, tris*3),
		}
		if err := binary.Read(r, binary.LittleEndian, m.Positions); err != nil {
			return mesh.Collision{}, fmt.Errorf("unmarshal collision: %w", err)
		}
		if err := binary.Read(r, binary.LittleEndian, m.Indices); err != nil {
			return mesh.Collision{}, fmt.Errorf("unmarshal collision: %w", err)
		}
		for i, idx := range m.Indices {
			if int(idx) >= count {
				return mesh.Collision{}, fmt.Errorf("unmarshal collision: index %d at %d out of range (%d vertices)", idx, i, count)
			}
		}
		return mesh.Collision{Kind: kind, Mesh: m}, nil
	}
	return mesh.Collision{}, fmt.Errorf("unmarshal collision: unknown collider kind %d", kind)
}
