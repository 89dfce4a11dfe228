package rtaccel

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/gekko3d/rtaccel/rt/bvh"
	"github.com/gekko3d/rtaccel/rt/core"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScene(t *testing.T) *core.Scene {
	t.Helper()
	scene := core.NewScene()
	_, err := scene.AddMesh(core.CubeMesh("cube", 1))
	require.NoError(t, err)
	_, err = scene.AddMesh(core.SphereMesh("ball", 1, 12))
	require.NoError(t, err)
	_, err = scene.AddMesh(bvh.Mesh{Name: "empty"})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		x := float32(i) * 3
		require.NoError(t, scene.Place("cube", mgl32.Translate3D(x, 0, 0), 1))
		require.NoError(t, scene.Place("ball", mgl32.Translate3D(x, 5, 0), 2, 3))
	}
	return scene
}

type countingLogger struct {
	Logger
	warnings int
}

func (l *countingLogger) Warnf(format string, args ...any) { l.warnings++ }

func TestSession_Build(t *testing.T) {
	scene := testScene(t)
	scene.AddInstance(core.Placement{Name: "empty", Mesh: 2, Transform: mgl32.Ident4()})
	scene.AddInstance(core.Placement{Name: "dangling", Mesh: 9, Transform: mgl32.Ident4()})

	log := &countingLogger{Logger: NewNopLogger()}
	opts := DefaultOptions()
	opts.Validate = true
	res, err := NewSession(opts, log).Build(context.Background(), scene)
	require.NoError(t, err)

	assert.Equal(t, 2, log.warnings)
	assert.Equal(t, 2, res.Stats.SkippedPlacements)
	require.Len(t, res.Instances, 20)
	assert.Len(t, res.TLAS, 39)
	assert.Len(t, res.Placement, 20)

	require.Len(t, res.Roots, 3)
	assert.Equal(t, bvh.NodeIndex(0), res.Roots[0])
	assert.Greater(t, res.Roots[1], res.Roots[0])
	assert.Equal(t, bvh.NoNode, res.Roots[2])

	// Instances keep their mesh root and materials.
	assert.Equal(t, res.Roots[0], res.Instances[0].Root)
	assert.Equal(t, res.Roots[1], res.Instances[1].Root)
	assert.Equal(t, [3]uint32{2, 3, 0}, res.Instances[1].Materials)

	// World boxes are the local root box moved by the placement.
	cube := res.Instances[2]
	assert.InDelta(t, 2.5, cube.WorldMin.X(), 1e-5)
	assert.InDelta(t, 3.5, cube.WorldMax.X(), 1e-5)

	for i, node := range res.TLAS {
		if node.IsLeaf() {
			inst := res.Instances[node.Instance]
			assert.Equal(t, inst.WorldBounds(), node.Bounds(), "node %d", i)
		}
	}

	perm := res.Permutation()
	require.Len(t, perm, len(res.Triangles))
	sorted := append([]uint32(nil), perm...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for i, v := range sorted {
		require.Equal(t, uint32(i), v)
	}
}

func TestSession_Buffers(t *testing.T) {
	res, err := NewSession(DefaultOptions(), nil).Build(context.Background(), testScene(t))
	require.NoError(t, err)

	buffers, err := res.Buffers()
	require.NoError(t, err)
	assert.Len(t, buffers.Triangles, len(res.Triangles)*bvh.TriangleGeometrySize)
	assert.Len(t, buffers.Attributes, len(res.Triangles)*bvh.TriangleAttributeSize)
	assert.Len(t, buffers.BVHNodes, len(res.Nodes)*bvh.BVHNodeSize)
	assert.Len(t, buffers.Instances, len(res.Instances)*core.InstanceSize)
	assert.Len(t, buffers.TLASNodes, len(res.TLAS)*bvh.TLASNodeSize)
}

func TestSession_Deterministic(t *testing.T) {
	a, err := NewSession(DefaultOptions(), nil).Build(context.Background(), testScene(t))
	require.NoError(t, err)
	b, err := NewSession(DefaultOptions(), nil).Build(context.Background(), testScene(t))
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.Triangles, b.Triangles)
	assert.Equal(t, a.Nodes, b.Nodes)
	assert.Equal(t, a.TLAS, b.TLAS)
}

func TestSession_EmptyScene(t *testing.T) {
	res, err := NewSession(Options{Validate: true}, nil).Build(context.Background(), core.NewScene())
	require.NoError(t, err)
	assert.Empty(t, res.Triangles)
	assert.Empty(t, res.TLAS)

	buffers, err := res.Buffers()
	require.NoError(t, err)
	assert.Empty(t, buffers.TLASNodes)
}

func TestSession_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := NewSession(DefaultOptions(), nil).Build(ctx, testScene(t))
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestResult_ValidateDetectsCorruption(t *testing.T) {
	res, err := NewSession(DefaultOptions(), nil).Build(context.Background(), testScene(t))
	require.NoError(t, err)
	require.NoError(t, res.Validate())

	res.Nodes[res.Roots[0]].Max = mgl32.Vec3{}
	err = res.Validate()
	assert.True(t, errors.Is(err, bvh.ErrInvalidHierarchy))
}

func TestResult_InstanceOverlaps(t *testing.T) {
	scene := core.NewScene()
	_, err := scene.AddMesh(core.CubeMesh("cube", 2))
	require.NoError(t, err)
	require.NoError(t, scene.Place("cube", mgl32.Translate3D(0, 0, 0)))
	require.NoError(t, scene.Place("cube", mgl32.Translate3D(1, 0, 0)))
	require.NoError(t, scene.Place("cube", mgl32.Translate3D(10, 0, 0)))

	res, err := NewSession(DefaultOptions(), nil).Build(context.Background(), scene)
	require.NoError(t, err)
	assert.Equal(t, 1, res.InstanceOverlaps())
}
