package math

// GetTranslation returns the translation row of an affine matrix built with
// the v*M (row-vector) convention used throughout this package.
func (mt Mat4) GetTranslation() Vec3 {
	return Vec3{mt.Data[12], mt.Data[13], mt.Data[14]}
}

// GetScale returns the length of each of the matrix's basis rows, which is
// how non-uniform scale shows up in an affine T*R*S-composed matrix.
func (mt Mat4) GetScale() Vec3 {
	row0 := Vec3{mt.Data[0], mt.Data[1], mt.Data[2]}
	row1 := Vec3{mt.Data[4], mt.Data[5], mt.Data[6]}
	row2 := Vec3{mt.Data[8], mt.Data[9], mt.Data[10]}
	return Vec3{row0.Length(), row1.Length(), row2.Length()}
}

// WithTranslation returns a copy of mt with its translation row replaced.
func (mt Mat4) WithTranslation(t Vec3) Mat4 {
	out := mt
	out.Data[12] = t.X
	out.Data[13] = t.Y
	out.Data[14] = t.Z
	return out
}

// QuaternionFromRotationMatrix extracts the rotation quaternion from a
// matrix whose scale has already been normalized out (each basis row unit
// length), using the standard trace-based extraction.
func QuaternionFromRotationMatrix(mt Mat4) Quaternion {
	m := mt.Data
	trace := m[0] + m[5] + m[10]
	var q Quaternion
	if trace > 0 {
		s := ksqrt(trace+1.0) * 2
		q.W = 0.25 * s
		q.X = (m[9] - m[6]) / s
		q.Y = (m[2] - m[8]) / s
		q.Z = (m[4] - m[1]) / s
	} else if m[0] > m[5] && m[0] > m[10] {
		s := ksqrt(1.0+m[0]-m[5]-m[10]) * 2
		q.W = (m[9] - m[6]) / s
		q.X = 0.25 * s
		q.Y = (m[4] + m[1]) / s
		q.Z = (m[8] + m[2]) / s
	} else if m[5] > m[10] {
		s := ksqrt(1.0+m[5]-m[0]-m[10]) * 2
		q.W = (m[2] - m[8]) / s
		q.X = (m[4] + m[1]) / s
		q.Y = 0.25 * s
		q.Z = (m[9] + m[6]) / s
	} else {
		s := ksqrt(1.0+m[10]-m[0]-m[5]) * 2
		q.W = (m[4] - m[1]) / s
		q.X = (m[8] + m[2]) / s
		q.Y = (m[9] + m[6]) / s
		q.Z = 0.25 * s
	}
	return q.Normalize()
}

// Decompose splits an affine T*R*S matrix (built with this package's
// row-vector convention) into its translation, rotation, and scale parts.
// Degenerate (near-zero) scale components are left at 1 to avoid a
// divide-by-zero when normalizing the corresponding basis row.
func Decompose(mt Mat4) (translation Vec3, rotation Quaternion, scale Vec3) {
	translation = mt.GetTranslation()
	scale = mt.GetScale()

	unscaled := mt
	rows := [3][3]float32{
		{mt.Data[0], mt.Data[1], mt.Data[2]},
		{mt.Data[4], mt.Data[5], mt.Data[6]},
		{mt.Data[8], mt.Data[9], mt.Data[10]},
	}
	scaleComponents := [3]float32{scale.X, scale.Y, scale.Z}
	for r := 0; r < 3; r++ {
		s := scaleComponents[r]
		if kabs(s) < K_FLOAT_EPSILON {
			s = 1
		}
		for c := 0; c < 3; c++ {
			unscaled.Data[r*4+c] = rows[r][c] / s
		}
	}
	unscaled.Data[12] = 0
	unscaled.Data[13] = 0
	unscaled.Data[14] = 0

	rotation = QuaternionFromRotationMatrix(unscaled)
	return translation, rotation, scale
}
