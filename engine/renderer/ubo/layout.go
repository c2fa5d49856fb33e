// Package ubo computes std140 uniform-buffer-object layouts and issues the
// sub-range writes that keep a GPU-side buffer in sync with a field's
// current value.
package ubo

// FieldKind identifies the GLSL type of one block field for layout
// purposes.
type FieldKind uint8

const (
	KindScalar FieldKind = iota
	KindVec2
	KindVec3
	KindVec4
	KindMat2
	KindMat3
	KindMat4
)

// baseAlign is the std140 base alignment of one element of kind: the offset
// a field of this kind must start on.
func (k FieldKind) baseAlign() int {
	switch k {
	case KindScalar:
		return 4
	case KindVec2:
		return 8
	default:
		// vec3, vec4, and every matN (an array of N vec4 columns) all align
		// to 16.
		return 16
	}
}

// baseSize is the number of bytes of actual data one element of kind
// occupies, distinct from its alignment: a vec3 aligns to 16 but only
// consumes 12 bytes, so the field immediately after it may start at
// offset+12 rather than offset+16.
func (k FieldKind) baseSize() int {
	switch k {
	case KindScalar:
		return 4
	case KindVec2:
		return 8
	case KindVec3:
		return 12
	case KindVec4:
		return 16
	case KindMat2:
		return 32 // 2 columns, each a 16-byte vec4 slot
	case KindMat3:
		return 48 // 3 columns
	case KindMat4:
		return 64 // 4 columns
	}
	return 0
}

// Field describes one member of a uniform block in declaration order.
// ArrayLength is 0 or 1 for a non-array field.
type Field struct {
	Name        string
	Kind        FieldKind
	ArrayLength int
}

func (f Field) elementAlign() int {
	return f.Kind.baseAlign()
}

// align and size are the effective alignment requirement and byte count
// this field consumes once array expansion is taken into account. Per
// std140, every array element (including of scalars) is padded up to at
// least 16 bytes.
func (f Field) align() int {
	if f.ArrayLength > 1 {
		a := f.elementAlign()
		if a < 16 {
			return 16
		}
		return a
	}
	return f.elementAlign()
}

func (f Field) size() int {
	if f.ArrayLength > 1 {
		elem := f.Kind.baseSize()
		if elem < 16 {
			elem = 16
		}
		return elem * f.ArrayLength
	}
	return f.Kind.baseSize()
}

// FieldOffset is the resolved layout of one block field.
type FieldOffset struct {
	Name   string
	Kind   FieldKind
	Offset int
	Size   int
}

// Layout is the resolved std140 layout of an entire uniform block.
type Layout struct {
	Fields    []FieldOffset
	TotalSize int
}

// ComputeLayout assigns std140 offsets to fields in declaration order and
// pads the block's total size up to a multiple of 16.
func ComputeLayout(fields []Field) Layout {
	offset := 0
	out := make([]FieldOffset, 0, len(fields))

	for _, f := range fields {
		align := f.align()
		size := f.size()

		offset = roundUp(offset, align)

		out = append(out, FieldOffset{Name: f.Name, Kind: f.Kind, Offset: offset, Size: size})
		offset += size
	}

	return Layout{Fields: out, TotalSize: roundUp(offset, 16)}
}

func roundUp(value, multiple int) int {
	if value%multiple == 0 {
		return value
	}
	return value + (multiple - value%multiple)
}

// Find returns the resolved offset/size for name, or false if the block has
// no such field.
func (l Layout) Find(name string) (FieldOffset, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldOffset{}, false
}
