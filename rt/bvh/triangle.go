package bvh

import "github.com/go-gl/mathgl/mgl32"

// Triangle is a fully flattened triangle. Its content never changes after
// flattening; the builder only moves it around inside the shared array.
type Triangle struct {
	Vertices [3]mgl32.Vec3
	Centroid mgl32.Vec3
	Normals  [3]mgl32.Vec3
	UVs      [3]mgl32.Vec2
	Material uint32
	// Ordinal is the triangle's position in flattening order, before any
	// partitioning took place.
	Ordinal uint32
}

func (t *Triangle) Bounds() AABB {
	b := EmptyBox()
	b.Extend(t.Vertices[0])
	b.Extend(t.Vertices[1])
	b.Extend(t.Vertices[2])
	return b
}

// Surface is one indexed triangle list. Normals and UVs are indexed like
// Positions. An empty index list means Positions is a plain triangle list.
type Surface struct {
	Indices   []uint32
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Material  uint32
}

// Mesh is a set of surfaces sharing one BLAS.
type Mesh struct {
	Name     string
	Surfaces []Surface
}

// TriangleCount returns the number of triangles the mesh would flatten to,
// ignoring out of range indices.
func (m *Mesh) TriangleCount() int {
	n := 0
	for i := range m.Surfaces {
		s := &m.Surfaces[i]
		if len(s.Indices) > 0 {
			n += len(s.Indices) / 3
		} else {
			n += len(s.Positions) / 3
		}
	}
	return n
}

// flatten appends the triangles of mesh to tris. Triangles with out of range
// indices are dropped; the number dropped is returned.
func flatten(tris []Triangle, mesh *Mesh) ([]Triangle, int) {
	skipped := 0
	for si := range mesh.Surfaces {
		s := &mesh.Surfaces[si]
		count := len(s.Indices) / 3
		indexed := len(s.Indices) > 0
		if !indexed {
			count = len(s.Positions) / 3
		}
		for i := 0; i < count; i++ {
			var idx [3]uint32
			for j := 0; j < 3; j++ {
				if indexed {
					idx[j] = s.Indices[i*3+j]
				} else {
					idx[j] = uint32(i*3 + j)
				}
			}
			if int(idx[0]) >= len(s.Positions) || int(idx[1]) >= len(s.Positions) || int(idx[2]) >= len(s.Positions) {
				skipped++
				continue
			}

			tri := Triangle{Material: s.Material, Ordinal: uint32(len(tris))}
			for j, v := range idx {
				tri.Vertices[j] = s.Positions[v]
				if int(v) < len(s.Normals) {
					tri.Normals[j] = s.Normals[v]
				}
				if int(v) < len(s.UVs) {
					tri.UVs[j] = s.UVs[v]
				}
			}
			tri.Centroid = tri.Vertices[0].Add(tri.Vertices[1]).Add(tri.Vertices[2]).Mul(1.0 / 3.0)
			tris = append(tris, tri)
		}
	}
	return tris, skipped
}
