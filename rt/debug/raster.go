// Package debug renders acceleration structures for inspection.
package debug

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/gekko3d/rtaccel/rt/bvh"

	"golang.org/x/image/vector"
)

type Box struct {
	Bounds bvh.AABB
	Depth  int
}

type Options struct {
	Width, Height int
	// Axis is dropped by the projection: 0 draws ZY, 1 draws XZ, 2 draws XY.
	Axis      int
	Padding   int
	Thickness float32
	// MaxDepth limits the drawn levels; 0 draws all.
	MaxDepth   int
	Background color.RGBA
}

func DefaultOptions() Options {
	return Options{
		Width:      1024,
		Height:     1024,
		Axis:       2,
		Padding:    16,
		Thickness:  1.5,
		Background: color.RGBA{16, 16, 20, 255},
	}
}

var depthPalette = []color.RGBA{
	{230, 80, 70, 255},
	{240, 170, 60, 255},
	{220, 220, 80, 255},
	{110, 200, 90, 255},
	{70, 190, 200, 255},
	{80, 120, 230, 255},
	{170, 100, 220, 255},
	{220, 110, 180, 255},
}

func depthColor(depth int) color.RGBA {
	return depthPalette[depth%len(depthPalette)]
}

// BVHBoxes returns the node boxes under root in depth-first order.
func BVHBoxes(nodes []bvh.BVHNode, root bvh.NodeIndex) []Box {
	if !root.Valid() {
		return nil
	}
	var out []Box
	type item struct {
		idx   bvh.NodeIndex
		depth int
	}
	stack := []item{{root, 0}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &nodes[it.idx]
		out = append(out, Box{Bounds: n.Bounds(), Depth: it.depth})
		if !n.IsLeaf() {
			stack = append(stack, item{n.Right, it.depth + 1}, item{n.Left, it.depth + 1})
		}
	}
	return out
}

// TLASBoxes returns the node boxes of a TLAS rooted at 0.
func TLASBoxes(nodes []bvh.TLASNode) []Box {
	if len(nodes) == 0 {
		return nil
	}
	var out []Box
	type item struct {
		idx   bvh.NodeIndex
		depth int
	}
	stack := []item{{0, 0}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &nodes[it.idx]
		out = append(out, Box{Bounds: n.Bounds(), Depth: it.depth})
		if !n.IsLeaf() {
			stack = append(stack, item{n.Right, it.depth + 1}, item{n.Left, it.depth + 1})
		}
	}
	return out
}

// Rasterize draws the outline of every box projected along opts.Axis. The
// union of all boxes is fitted into the image, keeping the aspect ratio.
func Rasterize(opts Options, boxes []Box) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	u, v := planeAxes(opts.Axis)
	world := bvh.EmptyBox()
	for _, b := range boxes {
		if opts.MaxDepth > 0 && b.Depth > opts.MaxDepth {
			continue
		}
		world = world.Union(b.Bounds)
	}
	if !world.Valid() {
		return img
	}

	pad := float32(opts.Padding)
	availW := float32(opts.Width) - 2*pad
	availH := float32(opts.Height) - 2*pad
	extU := world.Max[u] - world.Min[u]
	extV := world.Max[v] - world.Min[v]
	scale := float32(1)
	if extU > 0 || extV > 0 {
		scale = min(safeDiv(availW, extU), safeDiv(availH, extV))
	}
	project := func(x, y float32) (float32, float32) {
		px := pad + (x-world.Min[u])*scale
		// Image rows grow downwards.
		py := float32(opts.Height) - pad - (y-world.Min[v])*scale
		return px, py
	}

	z := vector.NewRasterizer(opts.Width, opts.Height)
	for _, b := range boxes {
		if opts.MaxDepth > 0 && b.Depth > opts.MaxDepth {
			continue
		}
		x0, y1 := project(b.Bounds.Min[u], b.Bounds.Min[v])
		x1, y0 := project(b.Bounds.Max[u], b.Bounds.Max[v])

		z.Reset(opts.Width, opts.Height)
		outline(z, x0, y0, x1, y1, opts.Thickness)
		z.Draw(img, img.Bounds(), image.NewUniform(depthColor(b.Depth)), image.Point{})
	}
	return img
}

// outline adds a rectangle ring: the outer contour clockwise and the inner
// one counter-clockwise so the inside stays empty.
func outline(z *vector.Rasterizer, x0, y0, x1, y1, t float32) {
	h := t * 0.5
	ox0, oy0, ox1, oy1 := x0-h, y0-h, x1+h, y1+h
	z.MoveTo(ox0, oy0)
	z.LineTo(ox1, oy0)
	z.LineTo(ox1, oy1)
	z.LineTo(ox0, oy1)
	z.ClosePath()

	ix0, iy0, ix1, iy1 := x0+h, y0+h, x1-h, y1-h
	if ix1 <= ix0 || iy1 <= iy0 {
		return
	}
	z.MoveTo(ix0, iy0)
	z.LineTo(ix0, iy1)
	z.LineTo(ix1, iy1)
	z.LineTo(ix1, iy0)
	z.ClosePath()
}

func planeAxes(axis int) (int, int) {
	switch axis {
	case 0:
		return 2, 1
	case 1:
		return 0, 2
	default:
		return 0, 1
	}
}

func safeDiv(a, b float32) float32 {
	if b <= 0 {
		return a * 1e9
	}
	return a / b
}
