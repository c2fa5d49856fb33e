// Package command builds per-frame draw commands and their 64-bit sort
// keys from sorting layer, shader, material sort id, and normalized depth.
package command

// SortKey packs, from most to least significant: a 4-bit bucket
// (transparency and viewport together in one combined bucket), an
// 8-bit render-layer order index, a
// 16-bit material sort id, a 16-bit shader program id, and a 20-bit
// normalized depth. Ascending numeric order is the draw order.
type SortKey uint64

const (
	bucketBits = 4
	layerBits  = 8
	materialBits = 16
	shaderBits = 16
	depthBits  = 20

	depthShift    = 0
	shaderShift   = depthShift + depthBits
	materialShift = shaderShift + shaderBits
	layerShift    = materialShift + materialBits
	bucketShift   = layerShift + layerBits

	// DepthMask is the largest representable normalized depth value
	// (2^20 - 1).
	DepthMask uint32 = 1<<depthBits - 1
)

// Pack builds a sort key from its component fields. Each field is masked
// to its bit width; callers needing to overwrite just the depth bits
// should use WithDepth instead of reassembling the whole key.
func Pack(bucket uint8, layerOrder uint8, materialSortID uint16, shaderProgramID uint16, normalizedDepth uint32) SortKey {
	var k uint64
	k |= uint64(bucket&(1<<bucketBits-1)) << bucketShift
	k |= uint64(layerOrder) << layerShift
	k |= uint64(materialSortID) << materialShift
	k |= uint64(shaderProgramID) << shaderShift
	k |= uint64(normalizedDepth&DepthMask) << depthShift
	return SortKey(k)
}

// WithDepth returns k with its depth bits replaced by normalizedDepth,
// leaving every other field untouched.
func (k SortKey) WithDepth(normalizedDepth uint32) SortKey {
	cleared := uint64(k) &^ (uint64(DepthMask) << depthShift)
	return SortKey(cleared | uint64(normalizedDepth&DepthMask)<<depthShift)
}

// Bucket, LayerOrder, MaterialSortID, ShaderProgramID, and Depth extract
// each packed field back out, used by tests asserting on sort order.
func (k SortKey) Bucket() uint8          { return uint8(uint64(k) >> bucketShift & (1<<bucketBits - 1)) }
func (k SortKey) LayerOrder() uint8      { return uint8(uint64(k) >> layerShift & 0xFF) }
func (k SortKey) MaterialSortID() uint16 { return uint16(uint64(k) >> materialShift & 0xFFFF) }
func (k SortKey) ShaderProgramID() uint16 {
	return uint16(uint64(k) >> shaderShift & 0xFFFF)
}
func (k SortKey) Depth() uint32 { return uint32(uint64(k) >> depthShift & uint64(DepthMask)) }

// Bucket values. Opaque sorts before transparent because opaque's bucket
// value is smaller. Transparency is the low bit of the bucket and the
// viewport occupies the bits above it (bucket = viewport<<1 | transparency),
// so each viewport's opaque commands sort before its transparent ones and
// commands of different viewports never interleave.
const (
	BucketOpaque      uint8 = 0
	BucketTransparent uint8 = 1
)
