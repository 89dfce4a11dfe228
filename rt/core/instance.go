package core

import (
	"encoding/binary"
	"math"

	"github.com/gekko3d/rtaccel/rt/bvh"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MaxInstanceMaterials is the number of material slots per instance.
	MaxInstanceMaterials = 3

	InstanceSize = 176
)

// Instance is one placement of a BLAS in the world.
type Instance struct {
	Transform mgl32.Mat4
	Inverse   mgl32.Mat4
	WorldMin  mgl32.Vec3
	WorldMax  mgl32.Vec3
	Root      bvh.NodeIndex
	Materials [MaxInstanceMaterials]uint32
}

// NewInstance places the BLAS rooted at root, whose box is local, with
// transform. Materials past MaxInstanceMaterials are ignored; missing slots
// keep the default material 0.
func NewInstance(transform mgl32.Mat4, root bvh.NodeIndex, local bvh.AABB, materials []uint32) Instance {
	inst := Instance{
		Transform: transform,
		Inverse:   transform.Inv(),
		Root:      root,
	}
	copy(inst.Materials[:], materials)

	world := WorldAABB(transform, local)
	inst.WorldMin, inst.WorldMax = world.Min, world.Max
	return inst
}

func (i *Instance) WorldBounds() bvh.AABB {
	return bvh.AABB{Min: i.WorldMin, Max: i.WorldMax}
}

// WorldAABB returns the box around the 8 transformed corners of local.
func WorldAABB(transform mgl32.Mat4, local bvh.AABB) bvh.AABB {
	world := bvh.EmptyBox()
	for _, c := range local.Corners() {
		wc := transform.Mul4x1(c.Vec4(1.0))
		if w := wc.W(); w != 0 && w != 1 {
			wc = wc.Mul(1 / w)
		}
		world.Extend(wc.Vec3())
	}
	return world
}

// Matches WGSL Instance
// struct Instance {
//    transform : mat4x4<f32>;         (64)
//    inverse_transform : mat4x4<f32>; (64)
//    aabb_min : vec4<f32>;            (16)
//    aabb_max : vec4<f32>;            (16)
//    blas_root : i32;                 (4)
//    materials : array<u32, 3>;       (12)
// }; -> 176 bytes

func (i *Instance) ToBytes() []byte {
	buf := make([]byte, InstanceSize)
	copy(buf[0:], mat4ToBytes(i.Transform))
	copy(buf[64:], mat4ToBytes(i.Inverse))
	copy(buf[128:], vec3ToBytesPadded(i.WorldMin))
	copy(buf[144:], vec3ToBytesPadded(i.WorldMax))
	binary.LittleEndian.PutUint32(buf[160:], uint32(int32(i.Root)))
	for k, m := range i.Materials {
		binary.LittleEndian.PutUint32(buf[164+k*4:], m)
	}
	return buf
}

func EncodeInstances(instances []Instance) []byte {
	out := make([]byte, 0, len(instances)*InstanceSize)
	for k := range instances {
		out = append(out, instances[k].ToBytes()...)
	}
	return out
}

// mgl32.Mat4 is column major, as WGSL expects.
func mat4ToBytes(m mgl32.Mat4) []byte {
	buf := make([]byte, 64)
	for i, v := range m {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func vec3ToBytesPadded(v mgl32.Vec3) []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(v[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(v[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(v[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(1))
	return buf
}
