package core

import (
	"math"

	"github.com/gekko3d/rtaccel/rt/bvh"

	"github.com/go-gl/mathgl/mgl32"
)

// CubeMesh builds an axis aligned cube of edge size centred on the origin,
// one surface with 12 triangles and per-face normals.
func CubeMesh(name string, size float32) bvh.Mesh {
	h := size * 0.5
	faces := []struct {
		normal mgl32.Vec3
		u, v   mgl32.Vec3
	}{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	}

	s := bvh.Surface{}
	for _, f := range faces {
		base := uint32(len(s.Positions))
		center := f.normal.Mul(h)
		for _, c := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			p := center.Add(f.u.Mul(c[0] * h)).Add(f.v.Mul(c[1] * h))
			s.Positions = append(s.Positions, p)
			s.Normals = append(s.Normals, f.normal)
			s.UVs = append(s.UVs, mgl32.Vec2{(c[0] + 1) * 0.5, (c[1] + 1) * 0.5})
		}
		s.Indices = append(s.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return bvh.Mesh{Name: name, Surfaces: []bvh.Surface{s}}
}

// QuadMesh builds a size x size quad in the XZ plane facing +Y.
func QuadMesh(name string, size float32) bvh.Mesh {
	h := size * 0.5
	s := bvh.Surface{
		Positions: []mgl32.Vec3{{-h, 0, h}, {h, 0, h}, {h, 0, -h}, {-h, 0, -h}},
		Normals:   []mgl32.Vec3{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}, {0, 1, 0}},
		UVs:       []mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
	}
	return bvh.Mesh{Name: name, Surfaces: []bvh.Surface{s}}
}

// SphereMesh builds a UV sphere of the given radius. segments is the number
// of longitude slices; latitude uses half as many rings.
func SphereMesh(name string, radius float32, segments int) bvh.Mesh {
	if segments < 3 {
		segments = 3
	}
	rings := max(segments/2, 2)

	s := bvh.Surface{}
	for r := 0; r <= rings; r++ {
		theta := math.Pi * float64(r) / float64(rings)
		for seg := 0; seg <= segments; seg++ {
			phi := 2 * math.Pi * float64(seg) / float64(segments)
			n := mgl32.Vec3{
				float32(math.Sin(theta) * math.Cos(phi)),
				float32(math.Cos(theta)),
				float32(math.Sin(theta) * math.Sin(phi)),
			}
			s.Positions = append(s.Positions, n.Mul(radius))
			s.Normals = append(s.Normals, n)
			s.UVs = append(s.UVs, mgl32.Vec2{float32(seg) / float32(segments), float32(r) / float32(rings)})
		}
	}

	stride := uint32(segments + 1)
	for r := uint32(0); r < uint32(rings); r++ {
		for seg := uint32(0); seg < uint32(segments); seg++ {
			a := r*stride + seg
			b := a + stride
			// The pole rows collapse to a point; skip their zero-area halves.
			if r != 0 {
				s.Indices = append(s.Indices, a, b, a+1)
			}
			if r != uint32(rings)-1 {
				s.Indices = append(s.Indices, a+1, b, b+1)
			}
		}
	}
	return bvh.Mesh{Name: name, Surfaces: []bvh.Surface{s}}
}
