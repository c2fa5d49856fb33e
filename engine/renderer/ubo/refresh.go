package ubo

import (
	"encoding/binary"
	"math"

	kmath "github.com/kestrel3d/render-core/engine/math"
)

// Writer accepts a byte-exact sub-range write against a GPU buffer, mirroring
// a glBufferSubData-style call. Implementations own the backing buffer
// object and must not resize it.
type Writer interface {
	WriteSubRange(offset int, data []byte) error
}

func putFloat32(dst []byte, v float32) {
	binary.LittleEndian.PutUint32(dst, math.Float32bits(v))
}

func encodeVec3(v kmath.Vec3) []byte {
	// vec3 occupies 12 bytes of data at its 16-byte-aligned slot; the
	// trailing 4 bytes of padding belong to whatever follows and are never
	// written here.
	buf := make([]byte, 12)
	putFloat32(buf[0:4], v.X)
	putFloat32(buf[4:8], v.Y)
	putFloat32(buf[8:12], v.Z)
	return buf
}

func encodeVec4(v kmath.Vec4) []byte {
	buf := make([]byte, 16)
	putFloat32(buf[0:4], v.X)
	putFloat32(buf[4:8], v.Y)
	putFloat32(buf[8:12], v.Z)
	putFloat32(buf[12:16], v.W)
	return buf
}

func encodeMat4(m kmath.Mat4) []byte {
	buf := make([]byte, 64)
	for i := 0; i < 16; i++ {
		putFloat32(buf[i*4:i*4+4], m.Data[i])
	}
	return buf
}

// RefreshScalar writes a single float32 field.
func RefreshScalar(w Writer, field FieldOffset, v float32) error {
	buf := make([]byte, 4)
	putFloat32(buf, v)
	return w.WriteSubRange(field.Offset, buf)
}

// RefreshVec2 writes a vec2 field.
func RefreshVec2(w Writer, field FieldOffset, v kmath.Vec2) error {
	buf := make([]byte, 8)
	putFloat32(buf[0:4], v.X)
	putFloat32(buf[4:8], v.Y)
	return w.WriteSubRange(field.Offset, buf)
}

// RefreshVec3 writes a vec3 field's 12 live bytes, leaving its 4 trailing
// pad bytes untouched.
func RefreshVec3(w Writer, field FieldOffset, v kmath.Vec3) error {
	return w.WriteSubRange(field.Offset, encodeVec3(v))
}

// RefreshVec4 writes a vec4 field.
func RefreshVec4(w Writer, field FieldOffset, v kmath.Vec4) error {
	return w.WriteSubRange(field.Offset, encodeVec4(v))
}

// RefreshMat4 writes a mat4 field as four consecutive 16-byte columns.
func RefreshMat4(w Writer, field FieldOffset, m kmath.Mat4) error {
	return w.WriteSubRange(field.Offset, encodeMat4(m))
}

// RefreshVec4Array writes an array-of-vec4 field as one sub-range write per
// element, each at its own 16-byte-aligned offset within the field.
func RefreshVec4Array(w Writer, field FieldOffset, values []kmath.Vec4) error {
	const elemSize = 16
	for i, v := range values {
		if err := w.WriteSubRange(field.Offset+i*elemSize, encodeVec4(v)); err != nil {
			return err
		}
	}
	return nil
}

// RefreshMat4Array writes an array-of-mat4 field as one sub-range write per
// matrix.
func RefreshMat4Array(w Writer, field FieldOffset, values []kmath.Mat4) error {
	const elemSize = 64
	for i, m := range values {
		if err := w.WriteSubRange(field.Offset+i*elemSize, encodeMat4(m)); err != nil {
			return err
		}
	}
	return nil
}
