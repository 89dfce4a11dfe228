package bvh

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f32At(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func u32At(buf []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(buf[off:])
}

func TestBVHNodeToBytes(t *testing.T) {
	leaf := BVHNode{
		Min:      mgl32.Vec3{-1, -2, -3},
		Max:      mgl32.Vec3{1, 2, 3},
		Left:     NoNode,
		Right:    NoNode,
		FirstTri: 12,
		TriCount: 4,
	}
	data := leaf.ToBytes()
	require.Len(t, data, BVHNodeSize)

	assert.Equal(t, float32(-1), f32At(data, 0))
	assert.Equal(t, float32(-3), f32At(data, 8))
	assert.Equal(t, float32(1), f32At(data, 16))
	assert.Equal(t, float32(3), f32At(data, 24))
	assert.Equal(t, int32(-1), int32(u32At(data, 32)))
	assert.Equal(t, int32(-1), int32(u32At(data, 36)))
	assert.Equal(t, uint32(12), u32At(data, 40))
	assert.Equal(t, uint32(4), u32At(data, 44))

	interior := BVHNode{Left: 7, Right: 9}
	data = interior.ToBytes()
	assert.Equal(t, int32(7), int32(u32At(data, 32)))
	assert.Equal(t, int32(9), int32(u32At(data, 36)))
	assert.Equal(t, uint32(0), u32At(data, 44))
}

func TestTLASNodeToBytes(t *testing.T) {
	interior := TLASNode{
		Min:   mgl32.Vec3{0, 1, 2},
		Max:   mgl32.Vec3{3, 4, 5},
		Left:  5,
		Right: 300,
	}
	data := interior.ToBytes()
	require.Len(t, data, TLASNodeSize)
	assert.Equal(t, float32(2), f32At(data, 8))
	assert.Equal(t, uint32(5|300<<16), u32At(data, 12))
	assert.Equal(t, float32(3), f32At(data, 16))
	assert.Equal(t, float32(5), f32At(data, 24))

	leaf := newTLASLeaf(AABB{}, 42)
	data = leaf.ToBytes()
	assert.Equal(t, uint32(0), u32At(data, 12))
	assert.Equal(t, uint32(42), u32At(data, 28))
}

func TestEncodeTLASNodes_Limit(t *testing.T) {
	nodes := make([]TLASNode, MaxTLASNodes+1)
	_, err := EncodeTLASNodes(nodes)
	assert.True(t, errors.Is(err, ErrTooManyTLASNodes))

	data, err := EncodeTLASNodes(nodes[:3])
	require.NoError(t, err)
	assert.Len(t, data, 3*TLASNodeSize)
}

func TestEncodeTriangles(t *testing.T) {
	tri := Triangle{
		Vertices: [3]mgl32.Vec3{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}},
		Normals:  [3]mgl32.Vec3{{0, 0, 1}, {0, 1, 0}, {1, 0, 0}},
		UVs:      [3]mgl32.Vec2{{0.25, 0.5}, {0.75, 1}, {0, 0.125}},
		Material: 6,
	}
	geometry, attributes := EncodeTriangles([]Triangle{tri, tri})
	require.Len(t, geometry, 2*TriangleGeometrySize)
	require.Len(t, attributes, 2*TriangleAttributeSize)

	assert.Equal(t, float32(4), f32At(geometry, 16))
	assert.Equal(t, float32(9), f32At(geometry, 40))
	assert.Equal(t, float32(1), f32At(geometry, 44))

	assert.Equal(t, float32(1), f32At(attributes, 8))
	assert.Equal(t, uint32(6), u32At(attributes, 12))
	assert.Equal(t, float32(1), f32At(attributes, 20))
	assert.Equal(t, float32(1), f32At(attributes, 32))
	assert.Equal(t, float32(0.25), f32At(attributes, 48))
	assert.Equal(t, float32(1), f32At(attributes, 60))
	assert.Equal(t, float32(0.125), f32At(attributes, 68))

	assert.Equal(t, geometry[:TriangleGeometrySize], geometry[TriangleGeometrySize:])
}

func TestEncodeBVHNodes_FollowsArrayOrder(t *testing.T) {
	b := NewBVHBuilder(DefaultOptions(), nil)
	b.BuildBVH(randomMesh(4, 64))
	data := EncodeBVHNodes(b.Nodes)
	require.Len(t, data, len(b.Nodes)*BVHNodeSize)
	for i := range b.Nodes {
		assert.Equal(t, b.Nodes[i].ToBytes(), data[i*BVHNodeSize:(i+1)*BVHNodeSize])
	}
}

func TestDump(t *testing.T) {
	b := NewBVHBuilder(DefaultOptions(), nil)
	root := b.BuildBVH(randomMesh(4, 40))

	var buf bytes.Buffer
	require.NoError(t, DumpBVH(&buf, b.Nodes, root))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, len(b.Nodes))
	assert.True(t, strings.HasPrefix(lines[0], "#0 "))

	buf.Reset()
	require.NoError(t, DumpBVH(&buf, b.Nodes, NoNode))
	assert.Equal(t, "(empty)\n", buf.String())

	buf.Reset()
	tlas := NewTLASBuilder(nil).Build(randomBoxes(2, 5))
	require.NoError(t, DumpTLAS(&buf, tlas))
	assert.Len(t, strings.Split(strings.TrimSpace(buf.String()), "\n"), 9)
}
