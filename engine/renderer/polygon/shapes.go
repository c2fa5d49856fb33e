package polygon

import (
	"math"

	"golang.org/x/exp/rand"

	kmath "github.com/kestrel3d/render-core/engine/math"
)

// buildCube lays out 24 vertices (4 per face, 6 faces) and 36 indices (2
// triangles per face), the same winding the engine's legacy cube-config
// generator uses, parameterized by full width/height/depth.
func buildCube(width, height, depth float32) *Polygon {
	hw, hh, hd := width*0.5, height*0.5, depth*0.5
	minX, maxX := -hw, hw
	minY, maxY := -hh, hh
	minZ, maxZ := -hd, hd

	verts := make([]kmath.Vertex3D, 24)
	type face struct {
		positions [4]kmath.Vec3
		normal    kmath.Vec3
	}
	faces := [6]face{
		{[4]kmath.Vec3{{X: minX, Y: minY, Z: maxZ}, {X: maxX, Y: maxY, Z: maxZ}, {X: minX, Y: maxY, Z: maxZ}, {X: maxX, Y: minY, Z: maxZ}}, kmath.NewVec3(0, 0, 1)},
		{[4]kmath.Vec3{{X: maxX, Y: minY, Z: minZ}, {X: minX, Y: maxY, Z: minZ}, {X: maxX, Y: maxY, Z: minZ}, {X: minX, Y: minY, Z: minZ}}, kmath.NewVec3(0, 0, -1)},
		{[4]kmath.Vec3{{X: minX, Y: minY, Z: minZ}, {X: minX, Y: maxY, Z: maxZ}, {X: minX, Y: maxY, Z: minZ}, {X: minX, Y: minY, Z: maxZ}}, kmath.NewVec3(-1, 0, 0)},
		{[4]kmath.Vec3{{X: maxX, Y: minY, Z: maxZ}, {X: maxX, Y: maxY, Z: minZ}, {X: maxX, Y: maxY, Z: maxZ}, {X: maxX, Y: minY, Z: minZ}}, kmath.NewVec3(1, 0, 0)},
		{[4]kmath.Vec3{{X: maxX, Y: minY, Z: maxZ}, {X: minX, Y: minY, Z: minZ}, {X: maxX, Y: minY, Z: minZ}, {X: minX, Y: minY, Z: maxZ}}, kmath.NewVec3(0, -1, 0)},
		{[4]kmath.Vec3{{X: minX, Y: maxY, Z: maxZ}, {X: maxX, Y: maxY, Z: minZ}, {X: minX, Y: maxY, Z: minZ}, {X: maxX, Y: maxY, Z: maxZ}}, kmath.NewVec3(0, 1, 0)},
	}
	uv := [4]kmath.Vec2{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 0}}

	for f, fc := range faces {
		for i := 0; i < 4; i++ {
			v := &verts[f*4+i]
			v.Position = fc.positions[i]
			v.Texcoord = uv[i]
			v.Normal = fc.normal
		}
	}

	indices := make([]uint32, 36)
	for i := 0; i < 6; i++ {
		vo := uint32(i * 4)
		io := i * 6
		indices[io+0] = vo + 0
		indices[io+1] = vo + 1
		indices[io+2] = vo + 2
		indices[io+3] = vo + 0
		indices[io+4] = vo + 3
		indices[io+5] = vo + 1
	}

	verts = kmath.GeometryGenerateTangents(uint32(len(verts)), verts, uint32(len(indices)), indices)
	return &Polygon{Vertices: verts, Indices: indices}
}

// buildGridPlane lays out an xDivisions x zDivisions grid of quads on the XZ
// plane, width wide and height deep, facing +Y.
func buildGridPlane(width, height float32, xDivisions, zDivisions int) *Polygon {
	if xDivisions < 1 {
		xDivisions = 1
	}
	if zDivisions < 1 {
		zDivisions = 1
	}

	cols := xDivisions + 1
	rows := zDivisions + 1
	verts := make([]kmath.Vertex3D, 0, cols*rows)

	hw, hh := width*0.5, height*0.5
	for z := 0; z < rows; z++ {
		for x := 0; x < cols; x++ {
			u := float32(x) / float32(xDivisions)
			v := float32(z) / float32(zDivisions)
			verts = append(verts, kmath.Vertex3D{
				Position: kmath.NewVec3(-hw+u*width, 0, -hh+v*height),
				Normal:   kmath.NewVec3(0, 1, 0),
				Texcoord: kmath.NewVec2(u, v),
			})
		}
	}

	indices := make([]uint32, 0, xDivisions*zDivisions*6)
	for z := 0; z < zDivisions; z++ {
		for x := 0; x < xDivisions; x++ {
			i0 := uint32(z*cols + x)
			i1 := i0 + 1
			i2 := i0 + uint32(cols)
			i3 := i2 + 1
			indices = append(indices, i0, i2, i1, i1, i2, i3)
		}
	}

	return &Polygon{Vertices: verts, Indices: indices}
}

// buildJitteredGridPlane builds a grid plane whose interior vertices are
// displaced along Y by a seeded random offset in [-jitter, jitter]. Border
// vertices stay at Y=0 so adjacent planes still tile. The same seed always
// produces the same displacement field.
func buildJitteredGridPlane(width, height float32, xDivisions, zDivisions int, jitter float32, seed uint64) *Polygon {
	p := buildGridPlane(width, height, xDivisions, zDivisions)
	if jitter <= 0 {
		return p
	}

	cols := xDivisions + 1
	rows := zDivisions + 1
	if xDivisions < 1 {
		cols = 2
	}
	if zDivisions < 1 {
		rows = 2
	}

	rng := rand.New(rand.NewSource(seed))
	for z := 0; z < rows; z++ {
		for x := 0; x < cols; x++ {
			// Border vertices are skipped after drawing their offset so
			// the sequence, and therefore every interior offset, depends
			// only on the seed and the grid size.
			offset := (rng.Float32()*2 - 1) * jitter
			if x == 0 || z == 0 || x == cols-1 || z == rows-1 {
				continue
			}
			p.Vertices[z*cols+x].Position.Y = offset
		}
	}
	return p
}

// buildSphere lays out a UV sphere with smooth per-vertex normals equal to
// the normalized position.
func buildSphere(radius float32, latSize, lonSize int) *Polygon {
	if latSize < 2 {
		latSize = 2
	}
	if lonSize < 3 {
		lonSize = 3
	}

	verts := make([]kmath.Vertex3D, 0, (latSize+1)*(lonSize+1))
	for lat := 0; lat <= latSize; lat++ {
		theta := float64(lat) / float64(latSize) * math.Pi // 0 (top) .. pi (bottom)
		sinTheta, cosTheta := math.Sin(theta), math.Cos(theta)
		for lon := 0; lon <= lonSize; lon++ {
			phi := float64(lon) / float64(lonSize) * 2 * math.Pi
			sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)

			normal := kmath.NewVec3(float32(sinTheta*cosPhi), float32(cosTheta), float32(sinTheta*sinPhi))
			verts = append(verts, kmath.Vertex3D{
				Position: normal.MulScalar(radius),
				Normal:   normal,
				Texcoord: kmath.NewVec2(float32(lon)/float32(lonSize), float32(lat)/float32(latSize)),
			})
		}
	}

	stride := lonSize + 1
	indices := make([]uint32, 0, latSize*lonSize*6)
	for lat := 0; lat < latSize; lat++ {
		for lon := 0; lon < lonSize; lon++ {
			i0 := uint32(lat*stride + lon)
			i1 := i0 + uint32(stride)
			indices = append(indices, i0, i1, i0+1, i0+1, i1, i1+1)
		}
	}

	return &Polygon{Vertices: verts, Indices: indices}
}

// buildCylinder lays out a side surface interpolating from baseRadius (at
// y=0) to topRadius (at y=height), tessellated by sectorCount around and
// stackCount along the axis, capped top and bottom with triangle fans.
func buildCylinder(baseRadius, topRadius, height float32, sectorCount, stackCount int) *Polygon {
	if sectorCount < 3 {
		sectorCount = 3
	}
	if stackCount < 1 {
		stackCount = 1
	}

	var verts []kmath.Vertex3D
	var indices []uint32

	sideStride := sectorCount + 1
	for stack := 0; stack <= stackCount; stack++ {
		t := float32(stack) / float32(stackCount)
		y := t * height
		r := baseRadius + (topRadius-baseRadius)*t
		for sector := 0; sector <= sectorCount; sector++ {
			a := float64(sector) / float64(sectorCount) * 2 * math.Pi
			cx, cz := float32(math.Cos(a)), float32(math.Sin(a))
			verts = append(verts, kmath.Vertex3D{
				Position: kmath.NewVec3(cx*r, y, cz*r),
				Normal:   kmath.NewVec3(cx, 0, cz).Normalized(),
				Texcoord: kmath.NewVec2(float32(sector)/float32(sectorCount), t),
			})
		}
	}
	for stack := 0; stack < stackCount; stack++ {
		for sector := 0; sector < sectorCount; sector++ {
			i0 := uint32(stack*sideStride + sector)
			i1 := i0 + uint32(sideStride)
			indices = append(indices, i0, i1, i0+1, i0+1, i1, i1+1)
		}
	}

	appendCap(&verts, &indices, 0, baseRadius, sectorCount, kmath.NewVec3(0, -1, 0), true)
	appendCap(&verts, &indices, height, topRadius, sectorCount, kmath.NewVec3(0, 1, 0), false)

	return &Polygon{Vertices: verts, Indices: indices}
}

// appendCap fans a disk of the given radius at height y into verts/indices,
// reversing winding for the bottom cap so both caps face outward.
func appendCap(verts *[]kmath.Vertex3D, indices *[]uint32, y, radius float32, sectorCount int, normal kmath.Vec3, reverseWinding bool) {
	center := uint32(len(*verts))
	*verts = append(*verts, kmath.Vertex3D{Position: kmath.NewVec3(0, y, 0), Normal: normal, Texcoord: kmath.NewVec2(0.5, 0.5)})

	rimStart := uint32(len(*verts))
	for sector := 0; sector <= sectorCount; sector++ {
		a := float64(sector) / float64(sectorCount) * 2 * math.Pi
		cx, cz := float32(math.Cos(a)), float32(math.Sin(a))
		*verts = append(*verts, kmath.Vertex3D{
			Position: kmath.NewVec3(cx*radius, y, cz*radius),
			Normal:   normal,
			Texcoord: kmath.NewVec2(cx*0.5+0.5, cz*0.5+0.5),
		})
	}

	for sector := 0; sector < sectorCount; sector++ {
		a := rimStart + uint32(sector)
		b := a + 1
		if reverseWinding {
			*indices = append(*indices, center, b, a)
		} else {
			*indices = append(*indices, center, a, b)
		}
	}
}

// buildCapsule lays out a cylindrical body of height 2*halfHeight capped by
// two hemispheres of radius, built from the same latitude/longitude scheme
// as buildSphere restricted to each half.
func buildCapsule(radius, halfHeight float32, sectorCount int) *Polygon {
	if sectorCount < 3 {
		sectorCount = 3
	}
	latSize := sectorCount / 2
	if latSize < 1 {
		latSize = 1
	}

	var verts []kmath.Vertex3D
	var indices []uint32
	stride := sectorCount + 1

	// Top hemisphere: latitude 0 (pole) down to the equator, shifted up by
	// halfHeight.
	topStart := uint32(len(verts))
	for lat := 0; lat <= latSize; lat++ {
		theta := float64(lat) / float64(latSize) * (math.Pi / 2) // 0 (pole) .. pi/2 (equator)
		sinTheta, cosTheta := math.Sin(theta), math.Cos(theta)
		for lon := 0; lon <= sectorCount; lon++ {
			phi := float64(lon) / float64(sectorCount) * 2 * math.Pi
			sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)
			normal := kmath.NewVec3(float32(sinTheta*cosPhi), float32(cosTheta), float32(sinTheta*sinPhi))
			verts = append(verts, kmath.Vertex3D{
				Position: normal.MulScalar(radius).Add(kmath.NewVec3(0, halfHeight, 0)),
				Normal:   normal,
				Texcoord: kmath.NewVec2(float32(lon)/float32(sectorCount), float32(lat)/float32(latSize)*0.25),
			})
		}
	}
	for lat := 0; lat < latSize; lat++ {
		for lon := 0; lon < sectorCount; lon++ {
			i0 := topStart + uint32(lat*stride+lon)
			i1 := i0 + uint32(stride)
			indices = append(indices, i0, i1, i0+1, i0+1, i1, i1+1)
		}
	}

	// Cylindrical body: reuse the top hemisphere's equator ring and a
	// matching ring at -halfHeight.
	bodyTopStart := topStart + uint32(latSize*stride)
	bodyBottomStart := uint32(len(verts))
	for lon := 0; lon <= sectorCount; lon++ {
		a := float64(lon) / float64(sectorCount) * 2 * math.Pi
		cx, cz := float32(math.Cos(a)), float32(math.Sin(a))
		verts = append(verts, kmath.Vertex3D{
			Position: kmath.NewVec3(cx*radius, -halfHeight, cz*radius),
			Normal:   kmath.NewVec3(cx, 0, cz).Normalized(),
			Texcoord: kmath.NewVec2(float32(lon)/float32(sectorCount), 0.75),
		})
	}
	for lon := 0; lon < sectorCount; lon++ {
		i0 := bodyTopStart + uint32(lon)
		i1 := bodyBottomStart + uint32(lon)
		indices = append(indices, i0, i1, i0+1, i0+1, i1, i1+1)
	}

	// Bottom hemisphere: equator down to the pole, mirrored and shifted down.
	bottomStart := uint32(len(verts))
	for lat := 0; lat <= latSize; lat++ {
		theta := math.Pi/2 + float64(lat)/float64(latSize)*(math.Pi/2)
		sinTheta, cosTheta := math.Sin(theta), math.Cos(theta)
		for lon := 0; lon <= sectorCount; lon++ {
			phi := float64(lon) / float64(sectorCount) * 2 * math.Pi
			sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)
			normal := kmath.NewVec3(float32(sinTheta*cosPhi), float32(cosTheta), float32(sinTheta*sinPhi))
			verts = append(verts, kmath.Vertex3D{
				Position: normal.MulScalar(radius).Add(kmath.NewVec3(0, -halfHeight, 0)),
				Normal:   normal,
				Texcoord: kmath.NewVec2(float32(lon)/float32(sectorCount), 0.75+float32(lat)/float32(latSize)*0.25),
			})
		}
	}
	for lat := 0; lat < latSize; lat++ {
		for lon := 0; lon < sectorCount; lon++ {
			i0 := bottomStart + uint32(lat*stride+lon)
			i1 := i0 + uint32(stride)
			indices = append(indices, i0, i1, i0+1, i0+1, i1, i1+1)
		}
	}

	return &Polygon{Vertices: verts, Indices: indices}
}
