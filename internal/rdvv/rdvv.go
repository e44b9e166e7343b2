// Package rdvv implements the secondary KD-tree of spec.md §4.4: a
// 5-dimensional variant of internal/ttree's index, omitting brightness
// and always splitting on time first, used to drive a whole-catalog
// dual-tree pairing search instead of per-seed beam search.
//
// Implementation freedom here is explicitly larger than for ttree (the
// spec's own words); this package keeps the same conservative-prune and
// exact-leaf-recheck discipline but trades ttree's general weighted
// split selection for a fixed time-first ordering, and its two query
// shapes for a single all-pairs closure search capped at a branching
// factor.
package rdvv

import "math"

const (
	DimTime = iota
	DimRA
	DimDec
	DimVRA
	DimVDec
	NumDims
)

const minAxisWidth = 1e-20

// Point is one tracklet's position in the 5-dimensional (t, RA, Dec,
// vRA, vDec) phase space, tagged with its index in the caller's
// TrackletArray.
type Point struct {
	Coord [NumDims]float64
	Index int
}

// Node is one node of the tree, structured identically to ttree.Node
// but over NumDims==5 and always split on DimTime until time is
// exhausted as a discriminator.
type Node struct {
	SplitDim int // -1 for a leaf
	SplitVal float64
	Lo, Hi   [NumDims]float64
	Left     *Node
	Right    *Node
	Leaf     []Point
}

func (n *Node) IsLeaf() bool { return n.SplitDim == -1 }

// Tree is a built rdvv tree. The zero value is not usable; construct
// with Build.
type Tree struct {
	Root *Node
}

// Build constructs a Tree over pts with maximum leaf size maxLeaf,
// always preferring a time split while time still has nonzero spread in
// the node, falling back to the widest remaining dimension otherwise.
func Build(pts []Point, maxLeaf int) *Tree {
	if maxLeaf < 1 {
		maxLeaf = 1
	}
	work := append([]Point(nil), pts...)
	return &Tree{Root: buildRecurse(work, maxLeaf)}
}

func bounds(pts []Point) (lo, hi [NumDims]float64) {
	for d := 0; d < NumDims; d++ {
		lo[d] = math.Inf(1)
		hi[d] = math.Inf(-1)
	}
	for _, p := range pts {
		for d := 0; d < NumDims; d++ {
			if p.Coord[d] < lo[d] {
				lo[d] = p.Coord[d]
			}
			if p.Coord[d] > hi[d] {
				hi[d] = p.Coord[d]
			}
		}
	}
	return
}

func buildRecurse(pts []Point, maxLeaf int) *Node {
	lo, hi := bounds(pts)
	if len(pts) <= maxLeaf {
		return &Node{SplitDim: -1, Lo: lo, Hi: hi, Leaf: append([]Point(nil), pts...)}
	}

	splitDim := DimTime
	if hi[DimTime]-lo[DimTime] < minAxisWidth {
		// Time is exhausted as a discriminator in this node: fall back
		// to whichever remaining dimension has the widest spread.
		splitDim = -1
		var best float64
		for d := DimRA; d < NumDims; d++ {
			w := hi[d] - lo[d]
			if w > best {
				best = w
				splitDim = d
			}
		}
		if splitDim == -1 {
			return &Node{SplitDim: -1, Lo: lo, Hi: hi, Leaf: append([]Point(nil), pts...)}
		}
	}

	splitVal := (lo[splitDim] + hi[splitDim]) / 2
	var left, right []Point
	for _, p := range pts {
		if p.Coord[splitDim] < splitVal {
			left = append(left, p)
		} else {
			right = append(right, p)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &Node{SplitDim: -1, Lo: lo, Hi: hi, Leaf: append([]Point(nil), pts...)}
	}

	return &Node{
		SplitDim: splitDim,
		SplitVal: splitVal,
		Lo:       lo,
		Hi:       hi,
		Left:     buildRecurse(left, maxLeaf),
		Right:    buildRecurse(right, maxLeaf),
	}
}
