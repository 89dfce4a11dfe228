package core

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gekko3d/rtaccel/rt/bvh"

	"github.com/go-gl/mathgl/mgl32"
)

// objReader turns a Wavefront OBJ stream into one mesh. Every usemtl
// material becomes a surface; surface materials are numbered in order of
// first use, faces before any usemtl go to material 0.
type objReader struct {
	vertexList []mgl32.Vec3
	normalList []mgl32.Vec3
	uvList     []mgl32.Vec2

	surfaces  []*objSurface
	byName    map[string]*objSurface
	current   *objSurface
	materials []string
}

type objSurface struct {
	surface bvh.Surface
	// Deduplicates (v, vt, vn) triplets; -1 marks a missing index.
	lookup map[[3]int]uint32
}

// LoadOBJ reads the OBJ file at path into a mesh named name.
func LoadOBJ(path, name string) (bvh.Mesh, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return bvh.Mesh{}, nil, err
	}
	defer f.Close()

	mesh, materials, err := ReadOBJ(f, name)
	if err != nil {
		return bvh.Mesh{}, nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return mesh, materials, nil
}

// ReadOBJ parses v, vn, vt, f and usemtl statements; everything else is
// ignored. Polygons are fan triangulated. It returns the mesh and the
// material names in surface material order.
func ReadOBJ(r io.Reader, name string) (bvh.Mesh, []string, error) {
	or := &objReader{byName: make(map[string]*objSurface)}

	lineNum := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		var err error
		switch lineTokens[0] {
		case "v":
			var v mgl32.Vec3
			if v, err = parseVec3(lineTokens); err == nil {
				or.vertexList = append(or.vertexList, v)
			}
		case "vn":
			var v mgl32.Vec3
			if v, err = parseVec3(lineTokens); err == nil {
				or.normalList = append(or.normalList, v)
			}
		case "vt":
			var v mgl32.Vec2
			if v, err = parseVec2(lineTokens); err == nil {
				or.uvList = append(or.uvList, v)
			}
		case "usemtl":
			if len(lineTokens) != 2 {
				err = fmt.Errorf(`unsupported syntax for "usemtl"; expected 1 argument; got %d`, len(lineTokens)-1)
				break
			}
			or.selectSurface(lineTokens[1])
		case "f":
			err = or.parseFace(lineTokens)
		}
		if err != nil {
			return bvh.Mesh{}, nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return bvh.Mesh{}, nil, err
	}

	mesh := bvh.Mesh{Name: name}
	for _, s := range or.surfaces {
		if len(s.surface.Indices) == 0 {
			continue
		}
		mesh.Surfaces = append(mesh.Surfaces, s.surface)
	}
	return mesh, or.materials, nil
}

func (or *objReader) selectSurface(material string) {
	if s, ok := or.byName[material]; ok {
		or.current = s
		return
	}
	s := &objSurface{
		surface: bvh.Surface{Material: uint32(len(or.materials))},
		lookup:  make(map[[3]int]uint32),
	}
	or.materials = append(or.materials, material)
	or.surfaces = append(or.surfaces, s)
	or.byName[material] = s
	or.current = s
}

func (or *objReader) parseFace(lineTokens []string) error {
	if len(lineTokens) < 4 {
		return fmt.Errorf(`unsupported syntax for "f"; expected at least 3 arguments; got %d`, len(lineTokens)-1)
	}
	if or.current == nil {
		or.selectSurface("")
	}

	corners := make([]uint32, 0, len(lineTokens)-1)
	for arg, token := range lineTokens[1:] {
		key, err := or.parseCorner(token)
		if err != nil {
			return fmt.Errorf("face argument %d: %w", arg, err)
		}
		corners = append(corners, or.current.vertex(key, or))
	}

	s := &or.current.surface
	for i := 1; i+1 < len(corners); i++ {
		s.Indices = append(s.Indices, corners[0], corners[i], corners[i+1])
	}
	return nil
}

func (or *objReader) parseCorner(token string) ([3]int, error) {
	key := [3]int{-1, -1, -1}
	vTokens := strings.Split(token, "/")
	if len(vTokens) > 3 || vTokens[0] == "" {
		return key, fmt.Errorf("malformed vertex reference %q", token)
	}

	lists := [3]int{len(or.vertexList), len(or.uvList), len(or.normalList)}
	for i, tok := range vTokens {
		if tok == "" {
			continue
		}
		idx, err := selectFaceCoordIndex(tok, lists[i])
		if err != nil {
			return key, err
		}
		key[i] = idx
	}
	return key, nil
}

func (s *objSurface) vertex(key [3]int, or *objReader) uint32 {
	if idx, ok := s.lookup[key]; ok {
		return idx
	}
	idx := uint32(len(s.surface.Positions))
	s.surface.Positions = append(s.surface.Positions, or.vertexList[key[0]])

	var uv mgl32.Vec2
	if key[1] >= 0 {
		uv = or.uvList[key[1]]
	}
	var n mgl32.Vec3
	if key[2] >= 0 {
		n = or.normalList[key[2]]
	}
	s.surface.UVs = append(s.surface.UVs, uv)
	s.surface.Normals = append(s.surface.Normals, n)
	s.lookup[key] = idx
	return idx
}

// selectFaceCoordIndex resolves a 1-based or negative (relative) OBJ index.
func selectFaceCoordIndex(indexToken string, coordListLen int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var offset int
	if index < 0 {
		offset = coordListLen + int(index)
	} else {
		offset = int(index - 1)
	}
	if offset < 0 || offset >= coordListLen {
		return -1, fmt.Errorf("index %d out of bounds", index)
	}
	return offset, nil
}

func parseVec3(lineTokens []string) (mgl32.Vec3, error) {
	if len(lineTokens) < 4 {
		return mgl32.Vec3{}, fmt.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := mgl32.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}

func parseVec2(lineTokens []string) (mgl32.Vec2, error) {
	if len(lineTokens) < 3 {
		return mgl32.Vec2{}, fmt.Errorf(`unsupported syntax for "%s"; expected 2 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := mgl32.Vec2{}
	for tokIdx := 1; tokIdx <= 2; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
