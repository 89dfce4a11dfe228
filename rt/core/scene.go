package core

import (
	"fmt"

	"github.com/gekko3d/rtaccel/rt/bvh"

	"github.com/go-gl/mathgl/mgl32"
)

// Placement puts the mesh with ordinal Mesh into the world.
type Placement struct {
	Name      string
	Mesh      int
	Transform mgl32.Mat4
	Materials []uint32
}

// Scene is an in-memory scene: a list of meshes and the placements that
// reference them by ordinal.
type Scene struct {
	meshes     []bvh.Mesh
	names      map[string]int
	placements []Placement

	// Files lists every file the scene was loaded from.
	Files []string
}

func NewScene() *Scene {
	return &Scene{
		names: make(map[string]int),
	}
}

// AddMesh registers mesh and returns its ordinal. Mesh names must be unique;
// unnamed meshes are always accepted.
func (s *Scene) AddMesh(mesh bvh.Mesh) (int, error) {
	if mesh.Name != "" {
		if _, exists := s.names[mesh.Name]; exists {
			return -1, fmt.Errorf("duplicate mesh %q", mesh.Name)
		}
		s.names[mesh.Name] = len(s.meshes)
	}
	s.meshes = append(s.meshes, mesh)
	return len(s.meshes) - 1, nil
}

func (s *Scene) MeshID(name string) (int, bool) {
	id, ok := s.names[name]
	return id, ok
}

func (s *Scene) AddInstance(p Placement) {
	s.placements = append(s.placements, p)
}

// Place adds an instance of the named mesh.
func (s *Scene) Place(mesh string, transform mgl32.Mat4, materials ...uint32) error {
	id, ok := s.MeshID(mesh)
	if !ok {
		return fmt.Errorf("unknown mesh %q", mesh)
	}
	s.AddInstance(Placement{Name: mesh, Mesh: id, Transform: transform, Materials: materials})
	return nil
}

func (s *Scene) Meshes() []bvh.Mesh {
	return s.meshes
}

func (s *Scene) Placements() []Placement {
	return s.placements
}

func (s *Scene) TriangleCount() int {
	n := 0
	for i := range s.meshes {
		n += s.meshes[i].TriangleCount()
	}
	return n
}
