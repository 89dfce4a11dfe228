package bvh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	posInf = float32(math.Inf(1))
	negInf = float32(math.Inf(-1))
)

// AABB is an axis aligned bounding box. The zero value is a point box at
// the origin; use EmptyBox to start accumulating points.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyBox returns the inverted sentinel box. It is not a valid box until
// it has been extended by at least one point.
func EmptyBox() AABB {
	return AABB{
		Min: mgl32.Vec3{posInf, posInf, posInf},
		Max: mgl32.Vec3{negInf, negInf, negInf},
	}
}

// Valid reports whether Min <= Max on every axis.
func (b AABB) Valid() bool {
	return b.Min[0] <= b.Max[0] && b.Min[1] <= b.Max[1] && b.Min[2] <= b.Max[2]
}

func (b *AABB) Extend(p mgl32.Vec3) {
	b.Min = minVec3(b.Min, p)
	b.Max = maxVec3(b.Max, p)
}

func (b AABB) Union(o AABB) AABB {
	return AABB{Min: minVec3(b.Min, o.Min), Max: maxVec3(b.Max, o.Max)}
}

func (b AABB) Extent() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Area returns dx*dy + dy*dz + dz*dx, half the surface area. Only meaningful
// for comparing boxes against each other. An invalid box has zero area.
func (b AABB) Area() float32 {
	if !b.Valid() {
		return 0
	}
	d := b.Extent()
	return d[0]*d[1] + d[1]*d[2] + d[2]*d[0]
}

// Intersects is the separating axis overlap test. Touching boxes overlap.
func (b AABB) Intersects(o AABB) bool {
	return !(b.Min[0] > o.Max[0] || b.Max[0] < o.Min[0] ||
		b.Min[1] > o.Max[1] || b.Max[1] < o.Min[1] ||
		b.Min[2] > o.Max[2] || b.Max[2] < o.Min[2])
}

// Contains reports whether o lies fully inside b.
func (b AABB) Contains(o AABB) bool {
	return b.ContainsPoint(o.Min) && b.ContainsPoint(o.Max)
}

func (b AABB) ContainsPoint(p mgl32.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// Corners returns the 8 box corners; bit 0 of the index selects Max.X,
// bit 1 Max.Y and bit 2 Max.Z.
func (b AABB) Corners() [8]mgl32.Vec3 {
	var out [8]mgl32.Vec3
	for i := range out {
		c := b.Min
		if i&1 != 0 {
			c[0] = b.Max[0]
		}
		if i&2 != 0 {
			c[1] = b.Max[1]
		}
		if i&4 != 0 {
			c[2] = b.Max[2]
		}
		out[i] = c
	}
	return out
}

func minVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{min(a[0], b[0]), min(a[1], b[1]), min(a[2], b[2])}
}

func maxVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2])}
}
