package bvh

import (
	"fmt"
	"time"
)

// Logger receives builder diagnostics.
type Logger interface {
	Debugf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}

// Options controls the BLAS build policy.
type Options struct {
	// Ranges of at most this many triangles become leaves.
	LeafThreshold int
	// Number of SAH bins per axis.
	Bins int
	// A split is taken only if cost*SplitAcceptance < parent cost.
	SplitAcceptance float32
}

// DefaultOptions returns the canonical policy: binned SAH with 8 bins, leaf
// threshold 4 and acceptance factor 0.8.
func DefaultOptions() Options {
	return Options{
		LeafThreshold:   4,
		Bins:            8,
		SplitAcceptance: 0.8,
	}
}

func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.LeafThreshold < 1 {
		o.LeafThreshold = def.LeafThreshold
	}
	if o.Bins < 2 {
		o.Bins = def.Bins
	}
	if !(o.SplitAcceptance > 0) {
		o.SplitAcceptance = def.SplitAcceptance
	}
	return o
}

// BuildStats accumulates over all meshes built by one BVHBuilder.
type BuildStats struct {
	Meshes           int
	Triangles        int
	SkippedTriangles int
	Nodes            int
	Leaves           int
	OversizedLeaves  int
	MedianFallbacks  int
	MaxDepth         int
	Duration         time.Duration
}

func (s BuildStats) String() string {
	return fmt.Sprintf("meshes: %d, triangles: %d (skipped %d), nodes: %d, leaves: %d (oversized %d), median fallbacks: %d, max depth: %d, time: %s",
		s.Meshes, s.Triangles, s.SkippedTriangles, s.Nodes, s.Leaves, s.OversizedLeaves, s.MedianFallbacks, s.MaxDepth, s.Duration)
}

// BVHBuilder builds the BLAS of several meshes into one shared triangle array
// and one shared node array. Each mesh occupies a contiguous triangle range
// and is addressed by the root index BuildBVH returns for it.
//
// Building reorders triangles inside their mesh range. Consumers must read
// Triangles after the build; Triangle.Ordinal keeps the flattening order.
type BVHBuilder struct {
	Triangles []Triangle
	Nodes     []BVHNode
	Stats     BuildStats

	opts   Options
	logger Logger
	stack  []workItem
}

type workItem struct {
	start, end int
	depth      int
	parent     NodeIndex
	right      bool
}

// NewBVHBuilder returns an empty builder. A nil logger discards diagnostics.
func NewBVHBuilder(opts Options, logger Logger) *BVHBuilder {
	if logger == nil {
		logger = nopLogger{}
	}
	return &BVHBuilder{opts: opts.normalized(), logger: logger}
}

func (b *BVHBuilder) Options() Options { return b.opts }

// Reset clears all triangles, nodes and stats while keeping capacity.
func (b *BVHBuilder) Reset() {
	b.Triangles = b.Triangles[:0]
	b.Nodes = b.Nodes[:0]
	b.Stats = BuildStats{}
}

// BuildBVH flattens mesh into the shared triangle array and builds a BLAS
// over the new range. It returns NoNode, appending nothing, when the mesh has
// no usable triangles.
func (b *BVHBuilder) BuildBVH(mesh *Mesh) NodeIndex {
	start := time.Now()
	first := len(b.Triangles)
	nodesBefore := len(b.Nodes)
	fallbacksBefore := b.Stats.MedianFallbacks

	var skipped int
	b.Triangles, skipped = flatten(b.Triangles, mesh)
	b.Stats.Meshes++
	b.Stats.SkippedTriangles += skipped
	b.Stats.Triangles += len(b.Triangles) - first

	root, depth := b.build(first, len(b.Triangles))

	elapsed := time.Since(start)
	b.Stats.Duration += elapsed
	b.logger.Debugf("BLAS %q: triangles: %d (skipped %d), nodes: %d, depth: %d, median fallbacks: %d, root: %d, took %s",
		mesh.Name, len(b.Triangles)-first, skipped, len(b.Nodes)-nodesBefore, depth,
		b.Stats.MedianFallbacks-fallbacksBefore, root, elapsed)
	return root
}

// build constructs the subtree over Triangles[start:end] and returns its root
// and depth. Nodes are appended in pre-order, left subtree first.
func (b *BVHBuilder) build(start, end int) (NodeIndex, int) {
	if start >= end {
		return NoNode, 0
	}

	root := NoNode
	maxDepth := 0
	b.stack = append(b.stack[:0], workItem{start: start, end: end, parent: NoNode})
	for len(b.stack) > 0 {
		w := b.stack[len(b.stack)-1]
		b.stack = b.stack[:len(b.stack)-1]

		idx := b.newNode(w.start, w.end)
		switch {
		case !w.parent.Valid():
			root = idx
		case w.right:
			b.Nodes[w.parent].Right = idx
		default:
			b.Nodes[w.parent].Left = idx
		}
		maxDepth = max(maxDepth, w.depth)

		mid, ok := b.split(idx, w.start, w.end)
		if !ok {
			continue
		}

		b.Nodes[idx].TriCount = 0
		b.Stats.Leaves--

		b.stack = append(b.stack,
			workItem{start: mid, end: w.end, depth: w.depth + 1, parent: idx, right: true},
			workItem{start: w.start, end: mid, depth: w.depth + 1, parent: idx},
		)
	}
	b.Stats.MaxDepth = max(b.Stats.MaxDepth, maxDepth)
	return root, maxDepth
}

// newNode appends a provisional leaf covering [start, end).
func (b *BVHBuilder) newNode(start, end int) NodeIndex {
	box := EmptyBox()
	for i := start; i < end; i++ {
		t := &b.Triangles[i]
		box.Extend(t.Vertices[0])
		box.Extend(t.Vertices[1])
		box.Extend(t.Vertices[2])
	}

	idx := NodeIndex(len(b.Nodes))
	b.Nodes = append(b.Nodes, BVHNode{
		Min:      box.Min,
		Max:      box.Max,
		Left:     NoNode,
		Right:    NoNode,
		FirstTri: uint32(start),
		TriCount: uint32(end - start),
	})
	b.Stats.Nodes++
	b.Stats.Leaves++
	return idx
}

// split decides whether node idx over [start, end) is subdivided and, if so,
// partitions the range and returns the absolute split index.
func (b *BVHBuilder) split(idx NodeIndex, start, end int) (int, bool) {
	count := end - start
	if count <= b.opts.LeafThreshold {
		return 0, false
	}

	box := b.Nodes[idx].Bounds()
	tris := b.Triangles[start:end]
	cand := bestSplit(tris, box, b.opts.Bins)

	parentCost := float32(count) * box.Area()
	if cand.axis < 0 || cand.cost*b.opts.SplitAcceptance >= parentCost {
		b.Stats.OversizedLeaves++
		return 0, false
	}

	mid, fallback := splitRange(tris, cand.axis, cand.pos)
	if fallback {
		b.Stats.MedianFallbacks++
	}
	return start + mid, true
}
