package bvh

import "time"

// TLASBuilder clusters instance boxes bottom-up into a top level hierarchy
// using nearest-neighbour-chain agglomerative clustering: walk from a cluster
// to its nearest neighbour until two clusters are each other's nearest
// neighbour, merge them, continue from the merged cluster. The distance
// between two clusters is the area of their union box.
//
// Cost is O(N²) in the number of instances.
type TLASBuilder struct {
	logger Logger
}

// NewTLASBuilder returns a builder. A nil logger discards diagnostics.
func NewTLASBuilder(logger Logger) *TLASBuilder {
	if logger == nil {
		logger = nopLogger{}
	}
	return &TLASBuilder{logger: logger}
}

// Build returns the TLAS over boxes, one leaf per box with Instance set to the
// box's index. The root is always at index 0 and the result holds exactly
// 2N-1 nodes for N boxes (none for N == 0).
func (b *TLASBuilder) Build(boxes []AABB) []TLASNode {
	n := len(boxes)
	switch n {
	case 0:
		return []TLASNode{}
	case 1:
		return []TLASNode{newTLASLeaf(boxes[0], 0)}
	}

	start := time.Now()

	// Slot 0 is reserved for the root, leaves take 1..N, merges append.
	nodes := make([]TLASNode, 1, 2*n-1)
	active := make([]NodeIndex, n)
	for i, box := range boxes {
		nodes = append(nodes, newTLASLeaf(box, uint32(i)))
		active[i] = NodeIndex(i + 1)
	}

	merges := 0
	steps := 0
	a := 0
	bb := nearest(nodes, active, a, -1)
	for len(active) > 1 {
		steps++
		c := nearest(nodes, active, bb, a)
		if c != a {
			a, bb = bb, c
			continue
		}

		left, right := active[a], active[bb]
		merged := TLASNode{
			Left:  left,
			Right: right,
		}
		box := nodes[left].Bounds().Union(nodes[right].Bounds())
		merged.Min, merged.Max = box.Min, box.Max
		merges++

		if len(active) == 2 {
			// The last merge is the root.
			nodes[0] = merged
			active = active[:1]
			active[0] = 0
			break
		}

		active[a] = NodeIndex(len(nodes))
		nodes = append(nodes, merged)

		last := len(active) - 1
		active[bb] = active[last]
		active = active[:last]
		if a == last {
			a = bb
		}
		bb = nearest(nodes, active, a, -1)
	}

	b.logger.Debugf("TLAS: instances: %d, nodes: %d, merges: %d, chain steps: %d, took %s",
		n, len(nodes), merges, steps, time.Since(start))
	return nodes
}

func newTLASLeaf(box AABB, instance uint32) TLASNode {
	return TLASNode{
		Min:      box.Min,
		Max:      box.Max,
		Left:     NoNode,
		Right:    NoNode,
		Instance: instance,
	}
}

// nearest returns the position in active of the cluster whose union with
// active[from] has the smallest area. On a tie prefer wins, which keeps the
// chain from cycling between equidistant clusters.
func nearest(nodes []TLASNode, active []NodeIndex, from, prefer int) int {
	src := nodes[active[from]].Bounds()
	best := -1
	bestArea := posInf
	for i, idx := range active {
		if i == from {
			continue
		}
		area := src.Union(nodes[idx].Bounds()).Area()
		if area < bestArea || (area == bestArea && i == prefer) || best < 0 {
			best = i
			bestArea = area
		}
	}
	return best
}
