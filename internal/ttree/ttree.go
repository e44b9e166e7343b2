// Package ttree implements the phase-space KD-tree of spec.md §4.3: a
// weighted, six-dimensional index over tracklet (t, RA, Dec, vRA, vDec,
// brightness) used for near-point and midpoint range queries with
// provable, conservative pruning.
//
// The tree is decoupled from linktracklets.Tracklet to avoid an import
// cycle (the root package builds the tree, so the tree cannot import
// it back): callers hand in plain Point values carrying the six
// coordinates and the caller's own TrackletArray index, and get indices
// back from queries.
package ttree

import "math"

// Dimension indices into Point.Coord, matching the T_TIME..T_BR ordering
// of the original t_tree.h.
const (
	DimTime = iota
	DimRA
	DimDec
	DimVRA
	DimVDec
	DimBright
	NumDims
)

// minAxisWidth floors a dimension's observed width before it is used as
// a split-priority denominator, avoiding division by zero on a
// degenerate (constant-valued) dimension.
const minAxisWidth = 1e-20

// Point is one tracklet's position in the six-dimensional phase space,
// tagged with its index in the caller's TrackletArray.
type Point struct {
	Coord [NumDims]float64
	Index int
}

// Weights scales the six dimensions' influence on split-dimension
// selection during Build. A zero weight suppresses a dimension from ever
// being chosen as a split; +Inf forces it to be chosen first, wherever
// its radius is nonzero.
type Weights [NumDims]float64

// TimeFirstWeights returns a Weights vector that forces time to be the
// first split dimension, the callable spec.md §4.3 requires for the MHT
// driver's tree.
func TimeFirstWeights(ra, dec, vra, vdec, bright float64) Weights {
	return Weights{DimTime: math.Inf(1), DimRA: ra, DimDec: dec, DimVRA: vra, DimVDec: vdec, DimBright: bright}
}

// Node is one node of the tree: an internal split or a leaf holding
// tracklet indices. Bounds are inclusive on both ends and envelop every
// point reachable below the node.
type Node struct {
	SplitDim int // -1 for a leaf
	SplitVal float64
	Lo, Hi   [NumDims]float64
	Left     *Node
	Right    *Node
	// Leaf holds the points (coordinates plus caller index) contained in
	// this node, only set when SplitDim == -1. Leaf queries re-check the
	// exact predicate against each of these points' real coordinates,
	// never relying on the aggregate Lo/Hi bounds alone.
	Leaf []Point
}

// IsLeaf reports whether n is a leaf node.
func (n *Node) IsLeaf() bool { return n.SplitDim == -1 }

// Tree is a built phase-space KD-tree. The zero value is not usable;
// construct with Build.
type Tree struct {
	Root *Node
}

// Build constructs a Tree over pts using weight vector w and maximum
// leaf size maxLeaf. Building does not mutate pts's backing array beyond
// reordering a private copy.
func Build(pts []Point, w Weights, maxLeaf int) *Tree {
	if maxLeaf < 1 {
		maxLeaf = 1
	}
	work := append([]Point(nil), pts...)
	widths := axisWidths(work)
	root := buildRecurse(work, w, widths, maxLeaf)
	return &Tree{Root: root}
}

// axisWidths computes the observed min/max span of each dimension across
// pts, floored at minAxisWidth.
func axisWidths(pts []Point) [NumDims]float64 {
	var lo, hi [NumDims]float64
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
	var w [NumDims]float64
	for d := 0; d < NumDims; d++ {
		v := hi[d] - lo[d]
		if v < minAxisWidth {
			v = minAxisWidth
		}
		w[d] = v
	}
	return w
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

func buildRecurse(pts []Point, w Weights, widths [NumDims]float64, maxLeaf int) *Node {
	lo, hi := bounds(pts)
	if len(pts) <= maxLeaf {
		leaf := append([]Point(nil), pts...)
		return &Node{SplitDim: -1, Lo: lo, Hi: hi, Leaf: leaf}
	}

	splitDim := -1
	var bestScore float64
	for d := 0; d < NumDims; d++ {
		if w[d] == 0 {
			continue
		}
		radius := (hi[d] - lo[d]) / 2
		if radius == 0 {
			continue
		}
		score := radius / widths[d] * w[d]
		if splitDim == -1 || score > bestScore {
			splitDim = d
			bestScore = score
		}
	}
	if splitDim == -1 {
		// Every dimension is suppressed or degenerate: fall back to a
		// leaf rather than looping forever on an unsplittable set.
		leaf := append([]Point(nil), pts...)
		return &Node{SplitDim: -1, Lo: lo, Hi: hi, Leaf: leaf}
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
	// A degenerate split (every point landed on one side, e.g. because
	// the midpoint coincides with every value present) would recurse
	// forever; fall back to a leaf.
	if len(left) == 0 || len(right) == 0 {
		leaf := append([]Point(nil), pts...)
		return &Node{SplitDim: -1, Lo: lo, Hi: hi, Leaf: leaf}
	}

	return &Node{
		SplitDim: splitDim,
		SplitVal: splitVal,
		Lo:       lo,
		Hi:       hi,
		Left:     buildRecurse(left, w, widths, maxLeaf),
		Right:    buildRecurse(right, w, widths, maxLeaf),
	}
}
