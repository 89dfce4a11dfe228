package bvh

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Record sizes of the GPU buffers, std430 layout.
const (
	TriangleGeometrySize  = 48
	TriangleAttributeSize = 80
	BVHNodeSize           = 48
	TLASNodeSize          = 32

	// TLAS children are packed as two 16 bit indices.
	MaxTLASNodes = 1 << 16
)

var ErrTooManyTLASNodes = errors.New("tlas node count exceeds 16 bit child index range")

// Matches WGSL BVHNode
// struct BVHNode {
//    aabb_min : vec4<f32>;  (16)
//    aabb_max : vec4<f32>;  (16)
//    left : i32;            (4)  -1 when absent
//    right : i32;           (4)  -1 when absent
//    first_tri : u32;       (4)
//    tri_count : u32;       (4)
// }; -> 48 bytes

func (n *BVHNode) ToBytes() []byte {
	buf := make([]byte, BVHNodeSize)
	putVec3Padded(buf[0:], n.Min, 0)
	putVec3Padded(buf[16:], n.Max, 0)
	binary.LittleEndian.PutUint32(buf[32:36], uint32(int32(n.Left)))
	binary.LittleEndian.PutUint32(buf[36:40], uint32(int32(n.Right)))
	binary.LittleEndian.PutUint32(buf[40:44], n.FirstTri)
	binary.LittleEndian.PutUint32(buf[44:48], n.TriCount)
	return buf
}

// Matches WGSL TLASNode
// struct TLASNode {
//    aabb_min : vec3<f32>;  (12)
//    left_right : u32;      (4)  left | right << 16, 0 for a leaf
//    aabb_max : vec3<f32>;  (12)
//    instance : u32;        (4)
// }; -> 32 bytes
//
// Index 0 is the root and never anybody's child, so 0 doubles as "absent".

func (n *TLASNode) ToBytes() []byte {
	buf := make([]byte, TLASNodeSize)
	putVec3(buf[0:], n.Min)
	binary.LittleEndian.PutUint32(buf[12:16], n.packedChildren())
	putVec3(buf[16:], n.Max)
	binary.LittleEndian.PutUint32(buf[28:32], n.Instance)
	return buf
}

func (n *TLASNode) packedChildren() uint32 {
	var packed uint32
	if n.Left.Valid() {
		packed |= uint32(n.Left) & 0xFFFF
	}
	if n.Right.Valid() {
		packed |= (uint32(n.Right) & 0xFFFF) << 16
	}
	return packed
}

// GeometryBytes encodes the vertex positions.
// struct TriangleGeometry { vertices : array<vec4<f32>, 3>; } -> 48 bytes
func (t *Triangle) GeometryBytes() []byte {
	buf := make([]byte, TriangleGeometrySize)
	for i, v := range t.Vertices {
		putVec3Padded(buf[i*16:], v, 1)
	}
	return buf
}

// AttributeBytes encodes shading data.
// struct TriangleData {
//    n0 : vec3<f32>;             (12)
//    material : u32;             (4)
//    n1 : vec4<f32>;             (16)
//    n2 : vec4<f32>;             (16)
//    uvs : array<vec2<f32>, 3>;  (24)
//    padding                     (8)
// }; -> 80 bytes
func (t *Triangle) AttributeBytes() []byte {
	buf := make([]byte, TriangleAttributeSize)
	putVec3(buf[0:], t.Normals[0])
	binary.LittleEndian.PutUint32(buf[12:16], t.Material)
	putVec3Padded(buf[16:], t.Normals[1], 0)
	putVec3Padded(buf[32:], t.Normals[2], 0)
	for i, uv := range t.UVs {
		off := 48 + i*8
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(uv[0]))
		binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(uv[1]))
	}
	return buf
}

func EncodeBVHNodes(nodes []BVHNode) []byte {
	out := make([]byte, 0, len(nodes)*BVHNodeSize)
	for i := range nodes {
		out = append(out, nodes[i].ToBytes()...)
	}
	return out
}

// EncodeTLASNodes fails with ErrTooManyTLASNodes when child indices would
// not fit the packed layout.
func EncodeTLASNodes(nodes []TLASNode) ([]byte, error) {
	if len(nodes) > MaxTLASNodes {
		return nil, fmt.Errorf("%d nodes: %w", len(nodes), ErrTooManyTLASNodes)
	}
	out := make([]byte, 0, len(nodes)*TLASNodeSize)
	for i := range nodes {
		out = append(out, nodes[i].ToBytes()...)
	}
	return out, nil
}

// EncodeTriangles returns the geometry and attribute buffers in array order.
func EncodeTriangles(tris []Triangle) (geometry, attributes []byte) {
	geometry = make([]byte, 0, len(tris)*TriangleGeometrySize)
	attributes = make([]byte, 0, len(tris)*TriangleAttributeSize)
	for i := range tris {
		geometry = append(geometry, tris[i].GeometryBytes()...)
		attributes = append(attributes, tris[i].AttributeBytes()...)
	}
	return geometry, attributes
}

func putVec3(buf []byte, v mgl32.Vec3) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(v[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(v[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(v[2]))
}

func putVec3Padded(buf []byte, v mgl32.Vec3, w float32) {
	putVec3(buf, v)
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(w))
}
