package debug

import (
	kmath "github.com/kestrel3d/render-core/engine/math"
	"github.com/kestrel3d/render-core/engine/renderer/pipeline"
)

// transformVec4 applies m to v under the row-vector convention the rest of
// the math package uses (Vec3.Transform), carrying v's own w rather than
// assuming 1, so a perspective divide can follow.
func transformVec4(v kmath.Vec4, m kmath.Mat4) kmath.Vec4 {
	x := v.X*m.Data[0] + v.Y*m.Data[4] + v.Z*m.Data[8] + v.W*m.Data[12]
	y := v.X*m.Data[1] + v.Y*m.Data[5] + v.Z*m.Data[9] + v.W*m.Data[13]
	z := v.X*m.Data[2] + v.Y*m.Data[6] + v.Z*m.Data[10] + v.W*m.Data[14]
	w := v.X*m.Data[3] + v.Y*m.Data[7] + v.Z*m.Data[11] + v.W*m.Data[15]
	return kmath.NewVec4Create(x, y, z, w)
}

// basisTransform builds the model matrix mapping local space to world
// space for a shape whose local axes are x, y, z and whose local origin
// sits at translation, matching the row-vector convention NewMat4LookAt and
// Vec3.Transform already use (v.X*row0 + v.Y*row1 + v.Z*row2 + row3).
func basisTransform(x, y, z, translation kmath.Vec3) kmath.Mat4 {
	m := kmath.NewMat4Identity()
	m.Data[0], m.Data[1], m.Data[2] = x.X, x.Y, x.Z
	m.Data[4], m.Data[5], m.Data[6] = y.X, y.Y, y.Z
	m.Data[8], m.Data[9], m.Data[10] = z.X, z.Y, z.Z
	m.Data[12], m.Data[13], m.Data[14] = translation.X, translation.Y, translation.Z
	return m
}

// segmentTransform returns the model matrix for a unit cube (extents
// [-0.5, 0.5] on every axis) that stretches it into a thickness x
// thickness x length box running from a to b, its local Z axis along a->b.
func segmentTransform(a, b kmath.Vec3, thickness float32) kmath.Mat4 {
	dir := b.Sub(a)
	length := dir.Length()
	if length < 1e-6 {
		return basisTransform(
			kmath.NewVec3(thickness, 0, 0),
			kmath.NewVec3(0, thickness, 0),
			kmath.NewVec3(0, 0, thickness),
			a,
		)
	}
	z := dir.Normalize()
	up := kmath.NewVec3Up()
	if z.Dot(up) > 0.99 || z.Dot(up) < -0.99 {
		up = kmath.NewVec3Right()
	}
	x := up.Cross(z).Normalize()
	y := z.Cross(x)
	mid := a.Add(b).MulScalar(0.5)
	return basisTransform(x.MulScalar(thickness), y.MulScalar(thickness), z.MulScalar(length), mid)
}

// DrawBox draws the wireframe of aabb as twelve thickness-wide edges.
func (l *Layer) DrawBox(aabb kmath.Extents3D, thickness float32, color kmath.Vec4) []pipeline.Entry {
	min, max := aabb.Min, aabb.Max
	corners := [8]kmath.Vec3{
		kmath.NewVec3(min.X, min.Y, min.Z), kmath.NewVec3(max.X, min.Y, min.Z),
		kmath.NewVec3(max.X, max.Y, min.Z), kmath.NewVec3(min.X, max.Y, min.Z),
		kmath.NewVec3(min.X, min.Y, max.Z), kmath.NewVec3(max.X, min.Y, max.Z),
		kmath.NewVec3(max.X, max.Y, max.Z), kmath.NewVec3(min.X, max.Y, max.Z),
	}
	edges := [12][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}

	entries := make([]pipeline.Entry, 0, len(edges))
	for _, e := range edges {
		entries = append(entries, l.DrawLine(corners[e[0]], corners[e[1]], thickness, color))
	}
	return entries
}

// DrawLine draws one thickness-wide segment from a to b.
func (l *Layer) DrawLine(a, b kmath.Vec3, thickness float32, color kmath.Vec4) pipeline.Entry {
	cube := l.polygons.GetCube(1, 1, 1)
	return l.entryFor(cube, segmentTransform(a, b, thickness), color)
}

// DrawCoordinateAxes draws the X (red), Y (green), and Z (blue) basis
// vectors of transform, each length long.
func (l *Layer) DrawCoordinateAxes(transform kmath.Mat4, length float32) []pipeline.Entry {
	origin := transform.GetTranslation()
	axisX := kmath.NewVec3(transform.Data[0], transform.Data[1], transform.Data[2]).Normalize()
	axisY := kmath.NewVec3(transform.Data[4], transform.Data[5], transform.Data[6]).Normalize()
	axisZ := kmath.NewVec3(transform.Data[8], transform.Data[9], transform.Data[10]).Normalize()

	return []pipeline.Entry{
		l.DrawLine(origin, origin.Add(axisX.MulScalar(length)), defaultThickness, colorX),
		l.DrawLine(origin, origin.Add(axisY.MulScalar(length)), defaultThickness, colorY),
		l.DrawLine(origin, origin.Add(axisZ.MulScalar(length)), defaultThickness, colorZ),
	}
}

// frustumCamera is what DrawFrustum needs from a camera: its combined
// view-projection matrix, to unproject the eight NDC corners back to world
// space.
type frustumCamera interface {
	ViewProjection() kmath.Mat4
}

var ndcCorners = [8]kmath.Vec4{
	{X: -1, Y: -1, Z: -1, W: 1}, {X: 1, Y: -1, Z: -1, W: 1},
	{X: 1, Y: 1, Z: -1, W: 1}, {X: -1, Y: 1, Z: -1, W: 1},
	{X: -1, Y: -1, Z: 1, W: 1}, {X: 1, Y: -1, Z: 1, W: 1},
	{X: 1, Y: 1, Z: 1, W: 1}, {X: -1, Y: 1, Z: 1, W: 1},
}

// DrawFrustum draws camera's view frustum as its twelve edges, unprojecting
// the eight NDC corners through the inverse view-projection matrix.
func (l *Layer) DrawFrustum(camera frustumCamera, color kmath.Vec4) []pipeline.Entry {
	inv := camera.ViewProjection().Inverse()

	var corners [8]kmath.Vec3
	for i, c := range ndcCorners {
		clip := transformVec4(c, inv)
		if clip.W == 0 {
			corners[i] = kmath.NewVec3(clip.X, clip.Y, clip.Z)
			continue
		}
		invW := 1.0 / clip.W
		corners[i] = kmath.NewVec3(clip.X*invW, clip.Y*invW, clip.Z*invW)
	}

	edges := [12][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
	entries := make([]pipeline.Entry, 0, len(edges))
	for _, e := range edges {
		entries = append(entries, l.DrawLine(corners[e[0]], corners[e[1]], defaultThickness, color))
	}
	return entries
}

// CharacterController is what DrawCharacterController needs from the
// physics side: a capsule shape centered at its world position.
type CharacterController struct {
	Center     kmath.Vec3
	Radius     float32
	HalfHeight float32
}

// DrawCharacterController draws controller's capsule shape.
func (l *Layer) DrawCharacterController(controller CharacterController, color kmath.Vec4) pipeline.Entry {
	capsule := l.polygons.GetCapsule(controller.Radius, controller.HalfHeight, 12)
	model := kmath.NewMat4Translation(controller.Center)
	return l.entryFor(capsule, model, color)
}
