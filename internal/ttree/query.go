package ttree

import (
	"math"

	"github.com/mops-go/linktracklets/internal/geomath"
)

// Stats accumulates query-time diagnostics for a single Tree. The caller
// owns the struct; pass nil to skip instrumentation.
type Stats struct {
	NodesVisited  int64
	NodesPruned   int64
	LeavesScanned int64
}

func (s *Stats) visit() {
	if s != nil {
		s.NodesVisited++
	}
}
func (s *Stats) prune() {
	if s != nil {
		s.NodesPruned++
	}
}
func (s *Stats) leaf() {
	if s != nil {
		s.LeavesScanned++
	}
}

// NearPointQuery describes a per-dimension tolerance box around Coord. A
// negative Tau entry ignores that dimension entirely. DimRA differences
// are reduced across the 0/2*pi wrap point.
type NearPointQuery struct {
	Coord [NumDims]float64
	Tau   [NumDims]float64
}

// NearPoint returns the indices of every point within the query's
// per-dimension tolerance box, exactly matching what a linear scan of
// all points with the same predicate would return (spec.md §4.3's
// correctness property).
func (t *Tree) NearPoint(q NearPointQuery, stats *Stats) []int {
	var out []int
	var walk func(n *Node)
	walk = func(n *Node) {
		stats.visit()
		if !nearPointCouldMatch(n, q) {
			stats.prune()
			return
		}
		if n.IsLeaf() {
			stats.leaf()
			for _, p := range n.Leaf {
				if nearPointAccept(p, q) {
					out = append(out, p.Index)
				}
			}
			return
		}
		walk(n.Left)
		walk(n.Right)
	}
	walk(t.Root)
	return out
}

func nearPointCouldMatch(n *Node, q NearPointQuery) bool {
	for d := 0; d < NumDims; d++ {
		tau := q.Tau[d]
		if tau < 0 {
			continue
		}
		lo, hi := n.Lo[d], n.Hi[d]
		if d == DimRA {
			if geomath.IntervalMissesWrapped(lo-q.Coord[d], hi-q.Coord[d], tau) {
				return false
			}
			continue
		}
		if hi < q.Coord[d]-tau || lo > q.Coord[d]+tau {
			return false
		}
	}
	return true
}

func nearPointAccept(p Point, q NearPointQuery) bool {
	for d := 0; d < NumDims; d++ {
		tau := q.Tau[d]
		if tau < 0 {
			continue
		}
		diff := p.Coord[d] - q.Coord[d]
		if d == DimRA {
			diff = geomath.WrapDiff(p.Coord[d], q.Coord[d])
		}
		if math.Abs(diff) > tau {
			return false
		}
	}
	return true
}

// MidpointQuery describes spec.md §4.3's midpoint query: find tracklets
// B whose start time falls in [TS, TE], at least 1e-10 away from the
// query's own time, such that projecting the query forward and B
// backward to their common midpoint brings RA and Dec within TauRA/TauDec
// of each other, without implying an axis acceleration greater than
// AlphaRA/AlphaDec over the time separating them.
type MidpointQuery struct {
	T, RA, Dec, VRA, VDec float64
	TS, TE                float64
	TauRA, TauDec         float64
	AlphaRA, AlphaDec     float64
}

// Midpoint returns the indices of every point satisfying the query,
// exactly matching a linear scan with the same predicate.
func (t *Tree) Midpoint(q MidpointQuery, stats *Stats) []int {
	var out []int
	qInRange := q.T >= q.TS && q.T <= q.TE
	var walk func(n *Node)
	walk = func(n *Node) {
		stats.visit()
		if !midpointCouldMatch(n, q, qInRange) {
			stats.prune()
			return
		}
		if n.IsLeaf() {
			stats.leaf()
			for _, p := range n.Leaf {
				if midpointAccept(p, q) {
					out = append(out, p.Index)
				}
			}
			return
		}
		walk(n.Left)
		walk(n.Right)
	}
	walk(t.Root)
	return out
}

const minMidpointDT = 1e-10

func midpointAccept(p Point, q MidpointQuery) bool {
	tB := p.Coord[DimTime]
	if tB < q.TS || tB > q.TE {
		return false
	}
	dt := tB - q.T
	if math.Abs(dt) <= minMidpointDT {
		return false
	}
	if ok, _, _ := axisReachable(p.Coord[DimRA], p.Coord[DimVRA], tB,
		q.RA, q.VRA, q.T, q.TauRA, q.AlphaRA, true); !ok {
		return false
	}
	if ok, _, _ := axisReachable(p.Coord[DimDec], p.Coord[DimVDec], tB,
		q.Dec, q.VDec, q.T, q.TauDec, q.AlphaDec, false); !ok {
		return false
	}
	return true
}

// axisReachable tests a single axis (RA or Dec) of an exact candidate
// point against the query, applying the acceleration cap: the implied
// per-axis acceleration over |dt| must not exceed alpha.
func axisReachable(xB, vB, tB, xQ, vQ, tQ, tau, alpha float64, wrap bool) (ok bool, sep, _ float64) {
	dt := tB - tQ
	if alpha >= 0 {
		maxDV := alpha * math.Abs(dt)
		if math.Abs(vB-vQ) > maxDV {
			return false, 0, 0
		}
	}
	tm := (tQ + tB) / 2
	posB := xB + vB*(tm-tB)
	posQ := xQ + vQ*(tm-tQ)
	diff := posB - posQ
	if wrap {
		diff = geomath.WrapDiff(posB, posQ)
	}
	return math.Abs(diff) <= tau, diff, tm
}

// midpointCouldMatch applies the conservative pruning bound of spec.md
// §4.3: for each position axis, the four (t, v) box corners of a
// candidate subtree give an exact bilinear envelope of the reachable
// midpoint-projected separation from the query; if that envelope cannot
// come within tolerance, the subtree is pruned. If the query's own time
// falls in [TS, TE], the envelope is widened to include the node's
// unprojected bounds so a same-epoch tracklet is never wrongly pruned.
func midpointCouldMatch(n *Node, q MidpointQuery, qInRange bool) bool {
	lo, hi := n.Lo[DimTime], n.Hi[DimTime]
	if hi < q.TS || lo > q.TE {
		return false
	}
	// Intersect the node's own time bounds with the query window.
	if lo < q.TS {
		lo = q.TS
	}
	if hi > q.TE {
		hi = q.TE
	}
	if math.Abs(hi-lo) < minMidpointDT && math.Abs(lo-q.T) <= minMidpointDT && math.Abs(hi-q.T) <= minMidpointDT {
		return false
	}

	if !axisBoxReachable(n, DimRA, DimVRA, lo, hi, q.RA, q.VRA, q.T, q.TauRA, q.AlphaRA, qInRange, true) {
		return false
	}
	if !axisBoxReachable(n, DimDec, DimVDec, lo, hi, q.Dec, q.VDec, q.T, q.TauDec, q.AlphaDec, qInRange, false) {
		return false
	}
	return true
}

func axisBoxReachable(n *Node, posDim, velDim int, tLo, tHi, xQ, vQ, tQ, tau, alpha float64, qInRange, wrap bool) bool {
	xLo, xHi := n.Lo[posDim], n.Hi[posDim]
	vLo, vHi := n.Lo[velDim], n.Hi[velDim]

	if alpha >= 0 {
		// The acceleration cap tightens the reachable velocity range as
		// a function of |t-tQ|; using the corner farther from tQ gives
		// the widest (safe, conservative) cap over the whole interval.
		far := tLo
		if math.Abs(tHi-tQ) > math.Abs(tLo-tQ) {
			far = tHi
		}
		half := alpha * math.Abs(far-tQ)
		if vQ-half > vLo {
			vLo = vQ - half
		}
		if vQ+half < vHi {
			vHi = vQ + half
		}
		if vLo > vHi {
			return false
		}
	}

	var minSep, maxSep float64
	first := true
	consider := func(sep float64) {
		if first || sep < minSep {
			minSep = sep
		}
		if first || sep > maxSep {
			maxSep = sep
		}
		first = false
	}
	for _, tB := range [...]float64{tLo, tHi} {
		tm := (tQ + tB) / 2
		deltaB := tm - tB
		deltaQ := tm - tQ
		posQ := xQ + vQ*deltaQ
		for _, vB := range [...]float64{vLo, vHi} {
			consider(xLo + vB*deltaB - posQ)
			consider(xHi + vB*deltaB - posQ)
		}
	}
	if qInRange {
		// tB == tQ is reachable within this window: widen the envelope
		// with the zero-projection case so the query's own epoch is
		// never pruned away.
		consider(xLo - xQ)
		consider(xHi - xQ)
	}

	if wrap {
		return !geomath.IntervalMissesWrapped(minSep, maxSep, tau)
	}
	return minSep <= tau && maxSep >= -tau
}
