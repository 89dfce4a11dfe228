package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quadOBJ = `# two materials
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vn 0 0 1

f 1 2 3
usemtl red
f 1/1/1 2/2/1 3/3/1 4/3/1
usemtl blue
f -4//-1 -3//-1 -2//-1
usemtl red
f 1 3 4
`

func TestReadOBJ(t *testing.T) {
	mesh, materials, err := ReadOBJ(strings.NewReader(quadOBJ), "quad")
	require.NoError(t, err)
	assert.Equal(t, "quad", mesh.Name)
	assert.Equal(t, []string{"", "red", "blue"}, materials)
	require.Len(t, mesh.Surfaces, 3)

	def, red, blue := mesh.Surfaces[0], mesh.Surfaces[1], mesh.Surfaces[2]
	assert.Equal(t, uint32(0), def.Material)
	assert.Equal(t, uint32(1), red.Material)
	assert.Equal(t, uint32(2), blue.Material)

	assert.Len(t, def.Indices, 3)
	// The quad is fanned into two triangles, then one more red face follows.
	assert.Len(t, red.Indices, 9)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, red.Indices[:6])
	assert.Equal(t, mgl32.Vec2{1, 1}, red.UVs[2])
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, red.Normals[0])

	// Negative indices count back from the latest vertex.
	require.Len(t, blue.Positions, 3)
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, blue.Positions[0])
	assert.Equal(t, mgl32.Vec3{1, 1, 0}, blue.Positions[2])
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, blue.Normals[1])
	assert.Equal(t, mgl32.Vec2{}, blue.UVs[0])

	assert.Equal(t, 5, mesh.TriangleCount())
}

func TestReadOBJ_Dedup(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nv 1 1 0\nf 1 2 3\nf 2 4 3\n"
	mesh, _, err := ReadOBJ(strings.NewReader(src), "pair")
	require.NoError(t, err)
	require.Len(t, mesh.Surfaces, 1)
	assert.Len(t, mesh.Surfaces[0].Positions, 4)
	assert.Equal(t, []uint32{0, 1, 2, 1, 3, 2}, mesh.Surfaces[0].Indices)
}

func TestReadOBJ_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"short vertex", "v 1 2\n", "line 1"},
		{"bad float", "v 1 x 2\n", "line 1"},
		{"out of range", "v 0 0 0\nf 1 2 3\n", "line 2"},
		{"too few corners", "v 0 0 0\nf 1 1\n", "at least 3"},
		{"missing vertex", "v 0 0 0\nf /1 1 1\n", "malformed"},
		{"usemtl arity", "usemtl\n", "usemtl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadOBJ(strings.NewReader(tt.src), "bad")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadOBJ(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quad.obj")
	require.NoError(t, os.WriteFile(path, []byte(quadOBJ), 0644))

	mesh, _, err := LoadOBJ(path, "quad")
	require.NoError(t, err)
	assert.Len(t, mesh.Surfaces, 3)

	_, _, err = LoadOBJ(filepath.Join(dir, "missing.obj"), "x")
	assert.Error(t, err)
}
