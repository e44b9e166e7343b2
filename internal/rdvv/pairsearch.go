package rdvv

import "github.com/mops-go/linktracklets/internal/geomath"

// Stats accumulates dual-tree recursion diagnostics. The caller owns the
// struct; pass nil to skip instrumentation.
type Stats struct {
	NodePairsVisited int64
	NodePairsPruned  int64
	LeafPairsChecked int64
	GroupsTruncated  int64
}

func (s *Stats) visit() {
	if s != nil {
		s.NodePairsVisited++
	}
}
func (s *Stats) prune() {
	if s != nil {
		s.NodePairsPruned++
	}
}
func (s *Stats) leafPair() {
	if s != nil {
		s.LeafPairsChecked++
	}
}
func (s *Stats) truncate() {
	if s != nil {
		s.GroupsTruncated++
	}
}

// PairParams configures the all-pairs closure search: two points close
// within TauRA/TauDec (RA wraparound-aware) at a shared reference time,
// with axis velocities differing by no more than AlphaRA/AlphaDec times
// their time separation.
type PairParams struct {
	TauRA, TauDec     float64
	AlphaRA, AlphaDec float64
	MinGroup, MaxGroup int // K..Kmax of spec.md §4.4
}

// Group is a set of point indices (into the TrackletArray the Tree was
// built from) found to pairwise close under PairParams, of size in
// [MinGroup, MaxGroup].
type Group struct {
	Indices []int
}

// AllPairs runs the dual-tree recursion of spec.md §4.4 over t against
// itself, reporting every maximal connected closure group of size at
// least MinGroup. A connected component larger than MaxGroup is
// truncated to its MaxGroup lowest-index members and Stats.truncate is
// recorded rather than silently dropped: callers inspecting Stats can
// tell reported groups are an undercount.
func (t *Tree) AllPairs(p PairParams, stats *Stats) []Group {
	n := countPoints(t.Root)
	uf := newUnionFind(n)

	var walk func(a, b *Node)
	walk = func(a, b *Node) {
		stats.visit()
		if !boxesCouldPair(a, b, p) {
			stats.prune()
			return
		}
		if a.IsLeaf() && b.IsLeaf() {
			stats.leafPair()
			for _, pa := range a.Leaf {
				for _, pb := range b.Leaf {
					if pa.Index == pb.Index {
						continue
					}
					if pointsClose(pa, pb, p) {
						uf.union(pa.Index, pb.Index)
					}
				}
			}
			return
		}
		if a.IsLeaf() {
			walk(a, b.Left)
			walk(a, b.Right)
			return
		}
		if b.IsLeaf() {
			walk(a.Left, b)
			walk(a.Right, b)
			return
		}
		walk(a.Left, b.Left)
		walk(a.Left, b.Right)
		walk(a.Right, b.Left)
		walk(a.Right, b.Right)
	}
	walk(t.Root, t.Root)

	components := uf.components()
	var groups []Group
	for _, members := range components {
		if len(members) < p.MinGroup {
			continue
		}
		if p.MaxGroup > 0 && len(members) > p.MaxGroup {
			stats.truncate()
			members = members[:p.MaxGroup]
		}
		groups = append(groups, Group{Indices: members})
	}
	return groups
}

func countPoints(n *Node) int {
	if n == nil {
		return 0
	}
	if n.IsLeaf() {
		max := 0
		for _, p := range n.Leaf {
			if p.Index+1 > max {
				max = p.Index + 1
			}
		}
		return max
	}
	l, r := countPoints(n.Left), countPoints(n.Right)
	if l > r {
		return l
	}
	return r
}

// pointsClose is the exact leaf-level predicate: project both points to
// their shared midpoint time and require both axes within tolerance,
// honoring each axis's acceleration cap over the time separating them.
func pointsClose(a, b Point, p PairParams) bool {
	dt := b.Coord[DimTime] - a.Coord[DimTime]
	if !axisClose(a.Coord[DimRA], a.Coord[DimVRA], b.Coord[DimRA], b.Coord[DimVRA], dt, p.TauRA, p.AlphaRA, true) {
		return false
	}
	return axisClose(a.Coord[DimDec], a.Coord[DimVDec], b.Coord[DimDec], b.Coord[DimVDec], dt, p.TauDec, p.AlphaDec, false)
}

func axisClose(xa, va, xb, vb, dt, tau, alpha float64, wrap bool) bool {
	if alpha >= 0 {
		maxDV := alpha * absf(dt)
		if absf(vb-va) > maxDV {
			return false
		}
	}
	half := dt / 2
	posA := xa + va*half
	posB := xb - vb*half
	diff := posB - posA
	if wrap {
		diff = geomath.WrapDiff(posB, posA)
	}
	return absf(diff) <= tau
}

// boxesCouldPair is the dual-tree node-pair pruning bound: for each
// axis, it bounds the reachable projected position of every point in a
// and b at a shared reference time using each box's time and velocity
// corners, then rejects the pair only if the two position intervals
// cannot be brought within tolerance. Because each pair is actually
// compared at its own midpoint rather than at the shared reference time,
// the tolerance is widened by the largest separation change the two
// boxes' velocity difference can cause over that time gap. It
// deliberately omits the acceleration-cap tightening internal/ttree
// applies against a single query point, since there is no single query
// time to tighten against here; this makes it safe (never over-prunes)
// but looser than ttree's bound, in keeping with spec.md §4.4's wider
// implementation freedom.
func boxesCouldPair(a, b *Node, p PairParams) bool {
	return axisBoxesCouldPair(a, b, DimRA, DimVRA, p.TauRA, true) &&
		axisBoxesCouldPair(a, b, DimDec, DimVDec, p.TauDec, false)
}

func axisBoxesCouldPair(a, b *Node, posDim, velDim int, tau float64, wrap bool) bool {
	tRef := ((a.Lo[DimTime] + a.Hi[DimTime]) + (b.Lo[DimTime] + b.Hi[DimTime])) / 4
	rangeAt := func(n *Node) (lo, hi float64) {
		first := true
		consider := func(v float64) {
			if first || v < lo {
				lo = v
			}
			if first || v > hi {
				hi = v
			}
			first = false
		}
		for _, t := range [...]float64{n.Lo[DimTime], n.Hi[DimTime]} {
			delta := tRef - t
			for _, v := range [...]float64{n.Lo[velDim], n.Hi[velDim]} {
				consider(n.Lo[posDim] + v*delta)
				consider(n.Hi[posDim] + v*delta)
			}
		}
		return
	}
	loA, hiA := rangeAt(a)
	loB, hiB := rangeAt(b)
	// A pair's midpoint lies within maxShift of tRef, and its separation
	// changes by at most maxDV per day of that shift.
	maxShift := ((a.Hi[DimTime] - a.Lo[DimTime]) + (b.Hi[DimTime] - b.Lo[DimTime])) / 4
	maxDV := absf(b.Hi[velDim] - a.Lo[velDim])
	if d := absf(a.Hi[velDim] - b.Lo[velDim]); d > maxDV {
		maxDV = d
	}
	tau += maxDV * maxShift
	if wrap {
		return !geomath.IntervalMissesWrapped(loA-hiB, hiA-loB, tau)
	}
	return loA-hiB <= tau && loB-hiA <= tau
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
