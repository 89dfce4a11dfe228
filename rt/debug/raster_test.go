package debug

import (
	"image/color"
	"testing"

	"github.com/gekko3d/rtaccel/rt/bvh"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.Width, opts.Height = 100, 100
	opts.Padding = 10
	opts.Thickness = 2
	return opts
}

func TestRasterize_SingleBox(t *testing.T) {
	opts := testOptions()
	box := Box{Bounds: bvh.AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{10, 10, 0}}}
	img := Rasterize(opts, []Box{box})
	require.Equal(t, 100, img.Bounds().Dx())

	assert.Equal(t, depthColor(0), img.RGBAAt(10, 50))
	assert.Equal(t, depthColor(0), img.RGBAAt(50, 89))
	assert.Equal(t, opts.Background, img.RGBAAt(50, 50))
	assert.Equal(t, opts.Background, img.RGBAAt(2, 2))
}

func TestRasterize_Empty(t *testing.T) {
	opts := testOptions()
	img := Rasterize(opts, nil)
	assert.Equal(t, opts.Background, img.RGBAAt(50, 50))
}

func TestRasterize_MaxDepth(t *testing.T) {
	opts := testOptions()
	opts.MaxDepth = 1
	boxes := []Box{
		{Bounds: bvh.AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{10, 10, 0}}, Depth: 0},
		{Bounds: bvh.AABB{Min: mgl32.Vec3{4, 4, 0}, Max: mgl32.Vec3{6, 6, 0}}, Depth: 2},
	}
	img := Rasterize(opts, boxes)
	// The inner box would have its left edge at x = 42.
	assert.Equal(t, opts.Background, img.RGBAAt(42, 50))

	opts.MaxDepth = 0
	img = Rasterize(opts, boxes)
	assert.Equal(t, depthColor(2), img.RGBAAt(42, 50))
}

func TestTreeBoxes(t *testing.T) {
	b := bvh.NewBVHBuilder(bvh.DefaultOptions(), nil)
	var s bvh.Surface
	for i := 0; i < 20; i++ {
		x := float32(i) * 2
		base := uint32(len(s.Positions))
		s.Positions = append(s.Positions, mgl32.Vec3{x, 0, 0}, mgl32.Vec3{x + 1, 0, 0}, mgl32.Vec3{x, 1, 0})
		s.Indices = append(s.Indices, base, base+1, base+2)
	}
	root := b.BuildBVH(&bvh.Mesh{Surfaces: []bvh.Surface{s}})

	boxes := BVHBoxes(b.Nodes, root)
	require.Len(t, boxes, len(b.Nodes))
	assert.Equal(t, 0, boxes[0].Depth)
	assert.Equal(t, b.Nodes[root].Bounds(), boxes[0].Bounds)
	assert.Nil(t, BVHBoxes(b.Nodes, bvh.NoNode))

	tlas := bvh.NewTLASBuilder(nil).Build([]bvh.AABB{boxes[1].Bounds, boxes[2].Bounds, boxes[0].Bounds})
	tboxes := TLASBoxes(tlas)
	assert.Len(t, tboxes, 5)
	assert.Nil(t, TLASBoxes(nil))

	img := Rasterize(testOptions(), boxes)
	assert.NotEqual(t, color.RGBA{}, img.RGBAAt(10, 50))
}
