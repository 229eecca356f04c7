// Package meshcodec serializes chunk meshes for transport. The layout is
// little-endian: magic "VXM1", uint32 vertex count, uint32 index count, then
// positions (3×f32), normals (3×f32), UVs (2×f32) and indices (u32). Encode
// compresses the result with zstd.
package meshcodec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/klauspost/compress/zstd"

	"github.com/go-theft-craft/voxel-terrain/internal/terrain/mesh"
)

// Encoding names the payload format on the wire.
const Encoding = "VXM1_ZSTD"

const headerSize = 12

var magic = [4]byte{'V', 'X', 'M', '1'}

var ErrBadMagic = errors.New("meshcodec: bad magic")

// Codec compresses and decompresses mesh payloads. It is safe for
// concurrent use.
type Codec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// New creates a Codec.
func New() (*Codec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &Codec{enc: enc, dec: dec}, nil
}

// Close releases the compressor resources.
func (c *Codec) Close() {
	c.enc.Close()
	c.dec.Close()
}

// Encode returns the compressed binary form of m.
func (c *Codec) Encode(m *mesh.Mesh) ([]byte, error) {
	raw, err := Marshal(m)
	if err != nil {
		return nil, err
	}
	return c.enc.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

// Decode reverses Encode.
func (c *Codec) Decode(data []byte) (*mesh.Mesh, error) {
	raw, err := c.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress mesh: %w", err)
	}
	return Unmarshal(raw)
}

// Marshal returns the uncompressed binary form of m.
func Marshal(m *mesh.Mesh) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("marshal mesh: %w", err)
	}
	n := len(m.Positions)
	size := headerSize + n*(3+3+2)*4 + len(m.Indices)*4

	buf := bytes.NewBuffer(make([]byte, 0, size))
	buf.Write(magic[:])
	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(n))
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(m.Indices)))
	buf.Write(hdr[:])

	for _, section := range []any{m.Positions, m.Normals, m.UVs, m.Indices} {
		if err := binary.Write(buf, binary.LittleEndian, section); err != nil {
			return nil, fmt.Errorf("marshal mesh: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// Unmarshal parses the uncompressed binary form produced by Marshal.
func Unmarshal(raw []byte) (*mesh.Mesh, error) {
	if len(raw) < headerSize {
		return nil, fmt.Errorf("unmarshal mesh: short header (%d bytes)", len(raw))
	}
	if !bytes.Equal(raw[:4], magic[:]) {
		return nil, ErrBadMagic
	}
	n := int(binary.LittleEndian.Uint32(raw[4:8]))
	ni := int(binary.LittleEndian.Uint32(raw[8:12]))
	if want := headerSize + n*(3+3+2)*4 + ni*4; len(raw) != want {
		return nil, fmt.Errorf("unmarshal mesh: payload is %d bytes, header implies %d", len(raw), want)
	}

	m := &mesh.Mesh{
		Positions: make([]mgl32.Vec3, n),
		Normals:   make([]mgl32.Vec3, n),
		UVs:       make([]mgl32.Vec2, n),
		Indices:   make([]uint32, ni),
	}
	r := bytes.NewReader(raw[headerSize:])
	for _, section := range []any{m.Positions, m.Normals, m.UVs, m.Indices} {
		if err := binary.Read(r, binary.LittleEndian, section); err != nil {
			return nil, fmt.Errorf("unmarshal mesh: %w", err)
		}
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("unmarshal mesh: %w", err)
	}
	return m, nil
}
