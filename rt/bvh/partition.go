package bvh

// partition reorders tris so that every triangle whose centroid on axis is
// below pos comes first and returns the size of that group. Ties on pos go
// right; the scan order is fixed, so equal input yields equal output.
func partition(tris []Triangle, axis int, pos float32) int {
	i, j := 0, len(tris)-1
	for i <= j {
		if tris[i].Centroid[axis] < pos {
			i++
		} else {
			tris[i], tris[j] = tris[j], tris[i]
			j--
		}
	}
	return i
}

// selectMedian reorders tris so that tris[k] holds the element of rank k on
// axis, everything before it compares <= and everything after it compares
// >=. It is a deterministic quickselect with median-of-three pivots and a
// three-way partition, so runs of equal centroids cost linear time.
func selectMedian(tris []Triangle, axis, k int) {
	lo, hi := 0, len(tris)-1
	for lo < hi {
		p := medianOfThree(tris, axis, lo, lo+(hi-lo)/2, hi)
		lt, gt := partition3(tris[lo:hi+1], axis, p)
		lt += lo
		gt += lo
		switch {
		case k < lt:
			hi = lt - 1
		case k > gt:
			lo = gt + 1
		default:
			return
		}
	}
}

// partition3 splits tris into < p, == p and > p and returns the first and
// last index of the middle group.
func partition3(tris []Triangle, axis int, p float32) (lt, gt int) {
	lt, i, gt := 0, 0, len(tris)-1
	for i <= gt {
		c := tris[i].Centroid[axis]
		switch {
		case c < p:
			tris[lt], tris[i] = tris[i], tris[lt]
			lt++
			i++
		case c > p:
			tris[i], tris[gt] = tris[gt], tris[i]
			gt--
		default:
			i++
		}
	}
	return lt, gt
}

func medianOfThree(tris []Triangle, axis, a, b, c int) float32 {
	x, y, z := tris[a].Centroid[axis], tris[b].Centroid[axis], tris[c].Centroid[axis]
	if x > y {
		x, y = y, x
	}
	if y > z {
		y = z
	}
	if x > y {
		y = x
	}
	return y
}

// splitRange partitions tris around the chosen split and falls back to an
// exact median split when the plane fails to separate anything. The returned
// mid is always in (0, len(tris)). The second result reports the fallback.
func splitRange(tris []Triangle, axis int, pos float32) (mid int, fallback bool) {
	mid = partition(tris, axis, pos)
	if mid > 0 && mid < len(tris) {
		return mid, false
	}
	mid = len(tris) / 2
	selectMedian(tris, axis, mid)
	return mid, true
}
