package bvh

// Axes narrower than this are never split.
const degenerateExtent float32 = 1e-6

type sahBin struct {
	bounds AABB
	count  int
}

// splitCandidate is the cheapest binned split found for a node.
type splitCandidate struct {
	axis int
	pos  float32
	cost float32
}

// evaluateSAH bins the centroids of tris along axis into nbins equal width
// bins spanning the node box and returns the cheapest internal boundary
// together with its coordinate. Boundaries that would leave one side empty
// are not candidates; an axis without any candidate costs +Inf.
func evaluateSAH(tris []Triangle, box AABB, axis, nbins int) (cost, split float32) {
	cost = posInf
	lo := box.Min[axis]
	extent := box.Max[axis] - lo
	if !(extent >= degenerateExtent) {
		return cost, lo
	}

	bins := make([]sahBin, nbins)
	for i := range bins {
		bins[i].bounds = EmptyBox()
	}

	scale := float32(nbins) / extent
	for i := range tris {
		t := &tris[i]
		b := binIndex(t.Centroid[axis], lo, scale, nbins)
		bins[b].count++
		bins[b].bounds.Extend(t.Vertices[0])
		bins[b].bounds.Extend(t.Vertices[1])
		bins[b].bounds.Extend(t.Vertices[2])
	}

	// leftArea[i], leftCount[i] describe bins [0, i].
	leftArea := make([]float32, nbins-1)
	leftCount := make([]int, nbins-1)
	acc := EmptyBox()
	n := 0
	for i := 0; i < nbins-1; i++ {
		acc = acc.Union(bins[i].bounds)
		n += bins[i].count
		leftArea[i] = acc.Area()
		leftCount[i] = n
	}

	acc = EmptyBox()
	n = 0
	for i := nbins - 1; i > 0; i-- {
		acc = acc.Union(bins[i].bounds)
		n += bins[i].count
		if n == 0 || leftCount[i-1] == 0 {
			continue
		}
		c := leftArea[i-1]*float32(leftCount[i-1]) + acc.Area()*float32(n)
		if c < cost {
			cost = c
			split = lo + float32(i)/float32(nbins)*extent
		}
	}
	return cost, split
}

func binIndex(c, lo, scale float32, nbins int) int {
	b := int((c - lo) * scale)
	if b < 0 {
		return 0
	}
	if b > nbins-1 {
		return nbins - 1
	}
	return b
}

// bestSplit evaluates all three axes and returns the global minimum.
func bestSplit(tris []Triangle, box AABB, nbins int) splitCandidate {
	best := splitCandidate{axis: -1, cost: posInf}
	for axis := 0; axis < 3; axis++ {
		cost, pos := evaluateSAH(tris, box, axis, nbins)
		if cost < best.cost {
			best = splitCandidate{axis: axis, pos: pos, cost: cost}
		}
	}
	return best
}
