// Package polygon builds the vertex/index data for the engine's stock
// procedural shapes (cube, grid plane, sphere, cylinder, capsule) and
// deduplicates them by a name derived from their parameters, so repeated
// requests for the same shape share one mesh.
package polygon

import (
	"fmt"
	"sync"

	kmath "github.com/kestrel3d/render-core/engine/math"
)

// Polygon is one cached shape's raw geometry, ready to hand to mesh.Create.
type Polygon struct {
	Name     string
	Vertices []kmath.Vertex3D
	Indices  []uint32
}

// Cache deduplicates procedurally generated shapes by a name built from
// their defining parameters: two requests for a cube of the same dimensions
// return the same *Polygon.
type Cache struct {
	mu     sync.Mutex
	byName map[string]*Polygon
}

// NewCache returns an empty polygon cache.
func NewCache() *Cache {
	return &Cache{byName: make(map[string]*Polygon)}
}

func (c *Cache) getExisting(name string) (*Polygon, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.byName[name]
	return p, ok
}

func (c *Cache) addToCache(p *Polygon) {
	c.mu.Lock()
	c.byName[p.Name] = p
	c.mu.Unlock()
}

// getOrBuild returns the cached polygon for name, building it with build if
// this is the first request under that name.
func (c *Cache) getOrBuild(name string, build func() *Polygon) *Polygon {
	if p, ok := c.getExisting(name); ok {
		return p
	}
	p := build()
	p.Name = name
	c.addToCache(p)
	return p
}

// GetPolygon returns a previously cached shape by its generated name, or nil
// if nothing by that name has been built yet.
func (c *Cache) GetPolygon(name string) (*Polygon, bool) {
	return c.getExisting(name)
}

// GetCube returns the cube of the given dimensions, in the winding the
// legacy cube-config generator already uses: 24 vertices (4 per face, 6
// faces) and 36 indices (2 triangles per face).
func (c *Cache) GetCube(width, height, depth float32) *Polygon {
	name := fmt.Sprintf("cube_%g_%g_%g", width, height, depth)
	return c.getOrBuild(name, func() *Polygon { return buildCube(width, height, depth) })
}

// GetGridCube is the unit cube, the cache's default cube shape.
func (c *Cache) GetGridCube() *Polygon {
	return c.GetCube(1, 1, 1)
}

// GetSquare returns a flat XZ-plane grid of width x height, subdivided into
// xDivisions x zDivisions quads, normal facing +Y.
func (c *Cache) GetSquare(width, height float32, xDivisions, zDivisions int) *Polygon {
	name := fmt.Sprintf("square_%g_%g_%d_%d", width, height, xDivisions, zDivisions)
	return c.getOrBuild(name, func() *Polygon { return buildGridPlane(width, height, xDivisions, zDivisions) })
}

// GetJitteredSquare returns a grid plane whose interior vertices are
// displaced along Y by a seeded random offset in [-jitter, jitter], for
// rough-ground fills and test terrain. The seed is part of the cache name,
// so identical parameters always return identical geometry.
func (c *Cache) GetJitteredSquare(width, height float32, xDivisions, zDivisions int, jitter float32, seed uint64) *Polygon {
	name := fmt.Sprintf("jittered_square_%g_%g_%d_%d_%g_%d", width, height, xDivisions, zDivisions, jitter, seed)
	return c.getOrBuild(name, func() *Polygon {
		return buildJitteredGridPlane(width, height, xDivisions, zDivisions, jitter, seed)
	})
}

// GetGridPlane looks a previously built named grid plane up directly,
// mirroring the source's name-keyed overload of getGridPlane.
func (c *Cache) GetGridPlane(name string) (*Polygon, bool) {
	return c.getExisting(name)
}

// GetSphere returns a UV sphere of the given radius and lat/lon tessellation.
func (c *Cache) GetSphere(radius float32, latSize, lonSize int) *Polygon {
	name := fmt.Sprintf("sphere_%g_%d_%d", radius, latSize, lonSize)
	return c.getOrBuild(name, func() *Polygon { return buildSphere(radius, latSize, lonSize) })
}

// GetCylinder returns a cylinder (or cone/frustum when baseRadius !=
// topRadius) of the given dimensions and tessellation.
func (c *Cache) GetCylinder(baseRadius, topRadius, height float32, sectorCount, stackCount int) *Polygon {
	name := fmt.Sprintf("cylinder_%g_%g_%g_%d_%d", baseRadius, topRadius, height, sectorCount, stackCount)
	return c.getOrBuild(name, func() *Polygon {
		return buildCylinder(baseRadius, topRadius, height, sectorCount, stackCount)
	})
}

// GetCapsule returns a capsule: a cylindrical body of halfHeight*2 capped by
// two hemispheres of radius.
func (c *Cache) GetCapsule(radius, halfHeight float32, sectorCount int) *Polygon {
	name := fmt.Sprintf("capsule_%g_%g_%d", radius, halfHeight, sectorCount)
	return c.getOrBuild(name, func() *Polygon { return buildCapsule(radius, halfHeight, sectorCount) })
}
