package math

// NewExtents3DEmpty returns an inverted-infinite extents, the identity value
// for Union: unioning it with any point or extents yields that value back.
func NewExtents3DEmpty() Extents3D {
	return Extents3D{
		Min: Vec3{K_INFINITY, K_INFINITY, K_INFINITY},
		Max: Vec3{-K_INFINITY, -K_INFINITY, -K_INFINITY},
	}
}

// Union returns the smallest extents containing both e and other.
func (e Extents3D) Union(other Extents3D) Extents3D {
	return Extents3D{
		Min: Vec3{minf(e.Min.X, other.Min.X), minf(e.Min.Y, other.Min.Y), minf(e.Min.Z, other.Min.Z)},
		Max: Vec3{maxf(e.Max.X, other.Max.X), maxf(e.Max.Y, other.Max.Y), maxf(e.Max.Z, other.Max.Z)},
	}
}

// ExpandToInclude returns the smallest extents containing both e and p.
func (e Extents3D) ExpandToInclude(p Vec3) Extents3D {
	return Extents3D{
		Min: Vec3{minf(e.Min.X, p.X), minf(e.Min.Y, p.Y), minf(e.Min.Z, p.Z)},
		Max: Vec3{maxf(e.Max.X, p.X), maxf(e.Max.Y, p.Y), maxf(e.Max.Z, p.Z)},
	}
}

// Center returns the midpoint of the extents.
func (e Extents3D) Center() Vec3 {
	return e.Min.Add(e.Max).MulScalar(0.5)
}

// Transform transforms every corner of e by m and returns the new
// axis-aligned bounds of the transformed box.
func (e Extents3D) Transform(m Mat4) Extents3D {
	corners := [8]Vec3{
		{e.Min.X, e.Min.Y, e.Min.Z},
		{e.Max.X, e.Min.Y, e.Min.Z},
		{e.Min.X, e.Max.Y, e.Min.Z},
		{e.Max.X, e.Max.Y, e.Min.Z},
		{e.Min.X, e.Min.Y, e.Max.Z},
		{e.Max.X, e.Min.Y, e.Max.Z},
		{e.Min.X, e.Max.Y, e.Max.Z},
		{e.Max.X, e.Max.Y, e.Max.Z},
	}
	out := NewExtents3DEmpty()
	for _, c := range corners {
		out = out.ExpandToInclude(c.Transform(m))
	}
	return out
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
