package bvh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestEmptyBoxIsInvalidUntilExtended(t *testing.T) {
	b := EmptyBox()
	assert.False(t, b.Valid())
	assert.Equal(t, float32(0), b.Area())

	b.Extend(mgl32.Vec3{1, 2, 3})
	assert.True(t, b.Valid())
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, b.Min)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, b.Max)
}

func TestExtendIsMinimalEnclosingBox(t *testing.T) {
	b := EmptyBox()
	pts := []mgl32.Vec3{{1, -2, 3}, {-4, 5, 0}, {2, 2, -7}}
	for _, p := range pts {
		b.Extend(p)
	}
	assert.Equal(t, mgl32.Vec3{-4, -2, -7}, b.Min)
	assert.Equal(t, mgl32.Vec3{2, 5, 3}, b.Max)
	for _, p := range pts {
		assert.True(t, b.ContainsPoint(p))
	}
}

func TestArea(t *testing.T) {
	b := AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 2, 3}}
	// 1*2 + 2*3 + 3*1
	assert.Equal(t, float32(11), b.Area())

	flat := AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{4, 0, 0}}
	assert.Equal(t, float32(0), flat.Area())
}

func TestUnionAndContains(t *testing.T) {
	a := AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}
	b := AABB{Min: mgl32.Vec3{2, -1, 0}, Max: mgl32.Vec3{3, 0, 5}}
	u := a.Union(b)
	assert.Equal(t, mgl32.Vec3{0, -1, 0}, u.Min)
	assert.Equal(t, mgl32.Vec3{3, 1, 5}, u.Max)
	assert.True(t, u.Contains(a))
	assert.True(t, u.Contains(b))
	assert.False(t, a.Contains(u))

	assert.Equal(t, a, EmptyBox().Union(a))
}

func TestIntersects(t *testing.T) {
	a := AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}
	tests := []struct {
		name string
		b    AABB
		want bool
	}{
		{"overlap", AABB{Min: mgl32.Vec3{0.5, 0.5, 0.5}, Max: mgl32.Vec3{2, 2, 2}}, true},
		{"touching", AABB{Min: mgl32.Vec3{1, 0, 0}, Max: mgl32.Vec3{2, 1, 1}}, true},
		{"separate x", AABB{Min: mgl32.Vec3{1.5, 0, 0}, Max: mgl32.Vec3{2, 1, 1}}, false},
		{"separate y", AABB{Min: mgl32.Vec3{0, -3, 0}, Max: mgl32.Vec3{1, -2, 1}}, false},
		{"separate z", AABB{Min: mgl32.Vec3{0, 0, 4}, Max: mgl32.Vec3{1, 1, 5}}, false},
		{"inside", AABB{Min: mgl32.Vec3{0.2, 0.2, 0.2}, Max: mgl32.Vec3{0.3, 0.3, 0.3}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Intersects(tt.b))
			assert.Equal(t, tt.want, tt.b.Intersects(a))
		})
	}
}

func TestCorners(t *testing.T) {
	b := AABB{Min: mgl32.Vec3{-1, -2, -3}, Max: mgl32.Vec3{1, 2, 3}}
	c := b.Corners()
	assert.Equal(t, b.Min, c[0])
	assert.Equal(t, b.Max, c[7])
	assert.Equal(t, mgl32.Vec3{1, -2, -3}, c[1])
	assert.Equal(t, mgl32.Vec3{-1, 2, -3}, c[2])
	assert.Equal(t, mgl32.Vec3{-1, -2, 3}, c[4])

	seen := map[mgl32.Vec3]bool{}
	for _, p := range c {
		seen[p] = true
	}
	assert.Len(t, seen, 8)
}
