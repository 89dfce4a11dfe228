package bvh

import "github.com/go-gl/mathgl/mgl32"

// NodeIndex addresses a node in a BVH or TLAS node array.
type NodeIndex int32

// NoNode marks an absent child or an empty tree. It never collides with a
// valid index, so several trees can share one node array.
const NoNode NodeIndex = -1

func (i NodeIndex) Valid() bool { return i >= 0 }

// BVHNode is one node of a bottom level hierarchy. Leaf nodes reference the
// triangle range [FirstTri, FirstTri+TriCount); interior nodes have
// TriCount == 0 and two children.
type BVHNode struct {
	Min      mgl32.Vec3
	Max      mgl32.Vec3
	Left     NodeIndex
	Right    NodeIndex
	FirstTri uint32
	TriCount uint32
}

func (n *BVHNode) IsLeaf() bool { return n.TriCount > 0 }

func (n *BVHNode) Bounds() AABB { return AABB{Min: n.Min, Max: n.Max} }

// TLASNode is one node of the top level hierarchy. A node without children
// is a leaf referencing Instance.
type TLASNode struct {
	Min      mgl32.Vec3
	Max      mgl32.Vec3
	Left     NodeIndex
	Right    NodeIndex
	Instance uint32
}

func (n *TLASNode) IsLeaf() bool { return !n.Left.Valid() && !n.Right.Valid() }

func (n *TLASNode) Bounds() AABB { return AABB{Min: n.Min, Max: n.Max} }
