package bvh

import (
	"errors"
	"fmt"
)

var ErrInvalidHierarchy = errors.New("invalid hierarchy")

// ValidateBVH walks the tree under root and checks structure and
// containment: every leaf box holds all vertices of its triangles, every
// interior box holds both child boxes, and each node is reached once.
func ValidateBVH(nodes []BVHNode, tris []Triangle, root NodeIndex) error {
	if !root.Valid() {
		return nil
	}
	seen := make(map[NodeIndex]bool)
	stack := []NodeIndex{root}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if int(idx) >= len(nodes) || !idx.Valid() {
			return fmt.Errorf("%w: node index %d out of range", ErrInvalidHierarchy, idx)
		}
		if seen[idx] {
			return fmt.Errorf("%w: node %d reached twice", ErrInvalidHierarchy, idx)
		}
		seen[idx] = true

		n := &nodes[idx]
		box := n.Bounds()
		if n.IsLeaf() {
			end := int(n.FirstTri) + int(n.TriCount)
			if end > len(tris) {
				return fmt.Errorf("%w: leaf %d triangle range [%d, %d) out of range", ErrInvalidHierarchy, idx, n.FirstTri, end)
			}
			for i := int(n.FirstTri); i < end; i++ {
				for _, v := range tris[i].Vertices {
					if !box.ContainsPoint(v) {
						return fmt.Errorf("%w: leaf %d does not contain triangle %d", ErrInvalidHierarchy, idx, i)
					}
				}
			}
			continue
		}

		if !n.Left.Valid() || !n.Right.Valid() || n.Left == n.Right {
			return fmt.Errorf("%w: interior node %d has children %d, %d", ErrInvalidHierarchy, idx, n.Left, n.Right)
		}
		for _, c := range []NodeIndex{n.Left, n.Right} {
			if int(c) >= len(nodes) {
				return fmt.Errorf("%w: node %d child %d out of range", ErrInvalidHierarchy, idx, c)
			}
			if !box.Contains(nodes[c].Bounds()) {
				return fmt.Errorf("%w: node %d does not contain child %d", ErrInvalidHierarchy, idx, c)
			}
		}
		stack = append(stack, n.Right, n.Left)
	}
	return nil
}

// ValidateTLAS checks that the tree rooted at index 0 reaches every node
// exactly once, that leaves reference distinct instances below instances,
// and that interior boxes contain their children.
func ValidateTLAS(nodes []TLASNode, instances int) error {
	if len(nodes) == 0 {
		if instances != 0 {
			return fmt.Errorf("%w: empty tlas for %d instances", ErrInvalidHierarchy, instances)
		}
		return nil
	}
	if len(nodes) != 2*instances-1 {
		return fmt.Errorf("%w: %d nodes for %d instances", ErrInvalidHierarchy, len(nodes), instances)
	}

	seen := make([]bool, len(nodes))
	leaves := make([]bool, instances)
	stack := []NodeIndex{0}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !idx.Valid() || int(idx) >= len(nodes) {
			return fmt.Errorf("%w: node index %d out of range", ErrInvalidHierarchy, idx)
		}
		if seen[idx] {
			return fmt.Errorf("%w: node %d reached twice", ErrInvalidHierarchy, idx)
		}
		seen[idx] = true

		n := &nodes[idx]
		if n.IsLeaf() {
			if int(n.Instance) >= instances || leaves[n.Instance] {
				return fmt.Errorf("%w: leaf %d has bad instance %d", ErrInvalidHierarchy, idx, n.Instance)
			}
			leaves[n.Instance] = true
			continue
		}
		if !n.Left.Valid() || !n.Right.Valid() || n.Left == n.Right {
			return fmt.Errorf("%w: interior node %d has children %d, %d", ErrInvalidHierarchy, idx, n.Left, n.Right)
		}
		box := n.Bounds()
		for _, c := range []NodeIndex{n.Left, n.Right} {
			if int(c) < len(nodes) && !box.Contains(nodes[c].Bounds()) {
				return fmt.Errorf("%w: node %d does not contain child %d", ErrInvalidHierarchy, idx, c)
			}
		}
		stack = append(stack, n.Right, n.Left)
	}

	for i, ok := range seen {
		if !ok {
			return fmt.Errorf("%w: node %d unreachable from root", ErrInvalidHierarchy, i)
		}
	}
	return nil
}
