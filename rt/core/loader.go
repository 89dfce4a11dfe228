package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gekko3d/rtaccel/rt/bvh"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// Scene file layout:
//
//	meshes:
//	  - name: floor
//	    primitive: quad      # cube, quad or sphere
//	    size: 20
//	  - name: bunny
//	    obj: models/bunny.obj
//	  - name: tri
//	    surfaces:
//	      - positions: [[0,0,0], [1,0,0], [0,1,0]]
//	        indices: [0, 1, 2]
//	instances:
//	  - mesh: bunny
//	    position: [0, 1, 0]
//	    rotation: [0, 90, 0] # Euler degrees
//	    scale: [2, 2, 2]
//	    materials: [1, 2]
type sceneFile struct {
	Meshes    []meshDesc     `yaml:"meshes"`
	Instances []instanceDesc `yaml:"instances"`
}

type meshDesc struct {
	Name      string        `yaml:"name"`
	OBJ       string        `yaml:"obj"`
	Primitive string        `yaml:"primitive"`
	Size      float32       `yaml:"size"`
	Segments  int           `yaml:"segments"`
	Surfaces  []surfaceDesc `yaml:"surfaces"`
}

type surfaceDesc struct {
	// Defaults to the surface ordinal.
	Material  *uint32     `yaml:"material"`
	Positions [][]float32 `yaml:"positions"`
	Normals   [][]float32 `yaml:"normals"`
	UVs       [][]float32 `yaml:"uvs"`
	Indices   []uint32    `yaml:"indices"`
}

type instanceDesc struct {
	Name      string    `yaml:"name"`
	Mesh      string    `yaml:"mesh"`
	Position  []float32 `yaml:"position"`
	Rotation  []float32 `yaml:"rotation"`
	Scale     []float32 `yaml:"scale"`
	Matrix    []float32 `yaml:"matrix"`
	Materials []uint32  `yaml:"materials"`
}

// LoadScene reads a YAML scene file. Relative OBJ paths resolve against the
// directory of path.
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	scene, err := ParseScene(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("loading scene %s: %w", path, err)
	}
	scene.Files = append([]string{path}, scene.Files...)
	return scene, nil
}

func ParseScene(data []byte, baseDir string) (*Scene, error) {
	var desc sceneFile
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, err
	}

	scene := NewScene()
	for i, md := range desc.Meshes {
		if md.Name == "" {
			return nil, fmt.Errorf("mesh %d: missing name", i)
		}
		mesh, err := scene.buildMesh(md, baseDir)
		if err != nil {
			return nil, fmt.Errorf("mesh %q: %w", md.Name, err)
		}
		if _, err := scene.AddMesh(mesh); err != nil {
			return nil, err
		}
	}

	for i, id := range desc.Instances {
		meshID, ok := scene.MeshID(id.Mesh)
		if !ok {
			return nil, fmt.Errorf("instance %d: unknown mesh %q", i, id.Mesh)
		}
		transform, err := id.transform()
		if err != nil {
			return nil, fmt.Errorf("instance %d: %w", i, err)
		}
		name := id.Name
		if name == "" {
			name = id.Mesh
		}
		scene.AddInstance(Placement{
			Name:      name,
			Mesh:      meshID,
			Transform: transform,
			Materials: id.Materials,
		})
	}
	return scene, nil
}

func (s *Scene) buildMesh(md meshDesc, baseDir string) (bvh.Mesh, error) {
	sources := 0
	for _, set := range []bool{md.OBJ != "", md.Primitive != "", len(md.Surfaces) > 0} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return bvh.Mesh{}, fmt.Errorf("exactly one of obj, primitive or surfaces is required")
	}

	size := md.Size
	if size <= 0 {
		size = 1
	}

	switch {
	case md.OBJ != "":
		path := md.OBJ
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		mesh, _, err := LoadOBJ(path, md.Name)
		if err != nil {
			return bvh.Mesh{}, err
		}
		s.Files = append(s.Files, path)
		return mesh, nil
	case md.Primitive != "":
		switch md.Primitive {
		case "cube":
			return CubeMesh(md.Name, size), nil
		case "quad":
			return QuadMesh(md.Name, size), nil
		case "sphere":
			segments := md.Segments
			if segments == 0 {
				segments = 16
			}
			return SphereMesh(md.Name, size*0.5, segments), nil
		default:
			return bvh.Mesh{}, fmt.Errorf("unknown primitive %q", md.Primitive)
		}
	}

	mesh := bvh.Mesh{Name: md.Name}
	for i, sd := range md.Surfaces {
		surface, err := sd.surface(uint32(i))
		if err != nil {
			return bvh.Mesh{}, fmt.Errorf("surface %d: %w", i, err)
		}
		mesh.Surfaces = append(mesh.Surfaces, surface)
	}
	return mesh, nil
}

func (sd surfaceDesc) surface(ordinal uint32) (bvh.Surface, error) {
	s := bvh.Surface{Material: ordinal, Indices: sd.Indices}
	if sd.Material != nil {
		s.Material = *sd.Material
	}
	for i, p := range sd.Positions {
		v, err := vec3("position", p)
		if err != nil {
			return s, fmt.Errorf("%d: %w", i, err)
		}
		s.Positions = append(s.Positions, v)
	}
	for i, n := range sd.Normals {
		v, err := vec3("normal", n)
		if err != nil {
			return s, fmt.Errorf("%d: %w", i, err)
		}
		s.Normals = append(s.Normals, v)
	}
	for i, uv := range sd.UVs {
		if len(uv) != 2 {
			return s, fmt.Errorf("uv %d: expected 2 components; got %d", i, len(uv))
		}
		s.UVs = append(s.UVs, mgl32.Vec2{uv[0], uv[1]})
	}
	return s, nil
}

func (id instanceDesc) transform() (mgl32.Mat4, error) {
	if len(id.Matrix) > 0 {
		if len(id.Position) > 0 || len(id.Rotation) > 0 || len(id.Scale) > 0 {
			return mgl32.Mat4{}, fmt.Errorf("matrix cannot be combined with position, rotation or scale")
		}
		if len(id.Matrix) != 16 {
			return mgl32.Mat4{}, fmt.Errorf("matrix: expected 16 components; got %d", len(id.Matrix))
		}
		var m mgl32.Mat4
		copy(m[:], id.Matrix)
		return m, nil
	}

	t := NewTransform()
	if len(id.Position) > 0 {
		v, err := vec3("position", id.Position)
		if err != nil {
			return mgl32.Mat4{}, err
		}
		t.Position = v
	}
	if len(id.Rotation) > 0 {
		v, err := vec3("rotation", id.Rotation)
		if err != nil {
			return mgl32.Mat4{}, err
		}
		t.SetEulerDegrees(v[0], v[1], v[2])
	}
	if len(id.Scale) > 0 {
		v, err := vec3("scale", id.Scale)
		if err != nil {
			return mgl32.Mat4{}, err
		}
		t.Scale = v
	}
	return t.ObjectToWorld(), nil
}

func vec3(field string, vals []float32) (mgl32.Vec3, error) {
	if len(vals) != 3 {
		return mgl32.Vec3{}, fmt.Errorf("%s: expected 3 components; got %d", field, len(vals))
	}
	return mgl32.Vec3{vals[0], vals[1], vals[2]}, nil
}
