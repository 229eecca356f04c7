package stream

import (
	"fmt"

	"github.com/go-theft-craft/voxel-terrain/internal/terrain/mesh"
)

// Config controls the streaming region and work budget.
type Config struct {
	// RenderRadius is the half-width, in chunks, of the square enqueued
	// around the observer.
	RenderRadius int
	// UnloadRadius is the distance beyond which resident chunks are
	// evicted. It must exceed RenderRadius.
	UnloadRadius int
	// ChunksPerTick bounds how many queued chunks are generated per tick.
	ChunksPerTick int
	Collider      mesh.ColliderKind
}

// DefaultConfig returns the stock streaming parameters.
func DefaultConfig() Config {
	return Config{
		RenderRadius:  13,
		UnloadRadius:  16,
		ChunksPerTick: 1,
		Collider:      mesh.ColliderVoxels,
	}
}

// Validate checks the radius and budget invariants.
func (c Config) Validate() error {
	if c.RenderRadius < 0 {
		return fmt.Errorf("render radius %d is negative", c.RenderRadius)
	}
	if c.UnloadRadius <= c.RenderRadius {
		return fmt.Errorf("unload radius %d must exceed render radius %d", c.UnloadRadius, c.RenderRadius)
	}
	if c.ChunksPerTick < 1 {
		return fmt.Errorf("chunks per tick %d must be at least 1", c.ChunksPerTick)
	}
	return nil
}
