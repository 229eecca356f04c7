package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-theft-craft/voxel-terrain/internal/terrain/chunk"
)

// ColliderKind selects the collision shape handed to physics.
type ColliderKind uint8

const (
	// ColliderVoxels is a point cloud of solid block positions.
	ColliderVoxels ColliderKind = iota
	// ColliderTriMesh reuses the render mesh as a triangle collider.
	ColliderTriMesh
)

func (k ColliderKind) String() string {
	switch k {
	case ColliderVoxels:
		return "voxels"
	case ColliderTriMesh:
		return "trimesh"
	}
	return "unknown"
}

// ParseColliderKind converts a config name to a ColliderKind.
func ParseColliderKind(name string) (ColliderKind, error) {
	switch name {
	case "", "voxels":
		return ColliderVoxels, nil
	case "trimesh":
		return ColliderTriMesh, nil
	}
	return 0, fmt.Errorf("unknown collider kind %q", name)
}

// Collision is the physics payload for one chunk. Exactly one of Points
// and Mesh is set, according to Kind.
type Collision struct {
	Kind   ColliderKind
	Points []mgl32.Vec3
	Mesh   *Mesh
}

// NewCollision builds collision data for c. m is the chunk's render mesh
// and is only read for ColliderTriMesh.
func NewCollision(kind ColliderKind, c *chunk.Chunk, m *Mesh) Collision {
	if kind == ColliderTriMesh {
		return Collision{Kind: kind, Mesh: m}
	}
	return Collision{Kind: ColliderVoxels, Points: c.SolidPoints()}
}

// Len returns the number of points or triangles in the collider.
func (c Collision) Len() int {
	if c.Kind == ColliderTriMesh {
		if c.Mesh == nil {
			return 0
		}
		return len(c.Mesh.Indices) / 3
	}
	return len(c.Points)
}
