package feed

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-theft-craft/voxel-terrain/internal/terrain/block"
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/chunk"
)

// Message types.
const (
	TypeChunkCreated  = "CHUNK_CREATED"
	TypeChunkUpdated  = "CHUNK_UPDATED"
	TypeChunkReleased = "CHUNK_RELEASED"
	TypeObserver      = "OBSERVER"
	TypeEdit          = "EDIT"
)

// ChunkMsg is sent to clients for every chunk lifecycle signal. Mesh and
// Collision hold meshcodec payloads and are base64 encoded in JSON. Shapes
// counts collider points or triangles, depending on ColliderKind.
type ChunkMsg struct {
	Type              string `json:"type"`
	Pos               [3]int `json:"pos"`
	Render            uint64 `json:"render"`
	Collider          uint64 `json:"collider"`
	Vertices          int    `json:"vertices,omitempty"`
	Indices           int    `json:"indices,omitempty"`
	Encoding          string `json:"encoding,omitempty"`
	Mesh              []byte `json:"mesh,omitempty"`
	ColliderKind      string `json:"collider_kind,omitempty"`
	Shapes            int    `json:"shapes,omitempty"`
	CollisionEncoding string `json:"collision_encoding,omitempty"`
	Collision         []byte `json:"collision,omitempty"`
}

// ClientMsg is an intent sent by a client.
type ClientMsg struct {
	Type  string     `json:"type"`
	Pos   [3]float32 `json:"pos"`
	Block string     `json:"block,omitempty"`
}

// Edit is a block change requested by a client.
type Edit struct {
	ClientID uint64
	Target   mgl32.Vec3
	Block    block.Type
}

func posArray(p chunk.Pos) [3]int {
	return [3]int{p.X, p.Y, p.Z}
}
