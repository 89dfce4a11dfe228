package bvh

import (
	"fmt"
	"io"
	"strings"
)

// DumpBVH writes the tree under root depth first, one node per line.
func DumpBVH(w io.Writer, nodes []BVHNode, root NodeIndex) error {
	if !root.Valid() {
		_, err := fmt.Fprintln(w, "(empty)")
		return err
	}
	type entry struct {
		idx   NodeIndex
		depth int
	}
	stack := []entry{{root, 0}}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &nodes[e.idx]
		indent := strings.Repeat("  ", e.depth)
		var err error
		if n.IsLeaf() {
			_, err = fmt.Fprintf(w, "%s#%d leaf tris [%d, %d) min %v max %v\n",
				indent, e.idx, n.FirstTri, n.FirstTri+n.TriCount, n.Min, n.Max)
		} else {
			_, err = fmt.Fprintf(w, "%s#%d l: %d r: %d min %v max %v\n",
				indent, e.idx, n.Left, n.Right, n.Min, n.Max)
			stack = append(stack, entry{n.Right, e.depth + 1}, entry{n.Left, e.depth + 1})
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// DumpTLAS writes the tree rooted at index 0.
func DumpTLAS(w io.Writer, nodes []TLASNode) error {
	if len(nodes) == 0 {
		_, err := fmt.Fprintln(w, "(empty)")
		return err
	}
	type entry struct {
		idx   NodeIndex
		depth int
	}
	stack := []entry{{0, 0}}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &nodes[e.idx]
		indent := strings.Repeat("  ", e.depth)
		var err error
		if n.IsLeaf() {
			_, err = fmt.Fprintf(w, "%s#%d instance %d min %v max %v\n", indent, e.idx, n.Instance, n.Min, n.Max)
		} else {
			_, err = fmt.Fprintf(w, "%s#%d l: %d r: %d min %v max %v\n", indent, e.idx, n.Left, n.Right, n.Min, n.Max)
			stack = append(stack, entry{n.Right, e.depth + 1}, entry{n.Left, e.depth + 1})
		}
		if err != nil {
			return err
		}
	}
	return nil
}
