// Package consolidate implements spec.md §4.6's four-pass consolidation
// pipeline: trust ordering, subset removal, overlap-significance
// merging, and a final trust re-order, with a collapse of duplicate and
// subsumed tracks run just before that re-order.
//
// Like internal/overlap, it is generic over the track type so it can be
// imported by the root package without an import cycle.
package consolidate

import (
	"sort"

	"github.com/mops-go/linktracklets/internal/overlap"
)

// Ops supplies the track-specific operations consolidate needs. Combine
// must return an error consolidate treats as "this merge is impossible"
// (spec.md §7's IllConditioned case) rather than a fatal condition: the
// candidate pair is simply left unmerged.
type Ops[T any] struct {
	NumObs         func(T) int
	MeanSqResidual func(T) float64
	DetIndices     func(T) []int
	OverlapSize    func(a, b T) int
	Subset         func(a, b T) bool // a's detections all in b
	ValidOverlap   func(a, b T) bool
	Combine        func(a, b T) (T, error)
}

// Params are the consolidation-specific tunables of spec.md §6.
type Params struct {
	MinOverlap     float64
	AllowConflicts bool
}

// Run executes the four passes (plus the maximal-set collapse) over
// candidates, which must be in the
// order the search produced them (seed-major, extension order within a
// seed, per spec.md §5's determinism requirement): Run's own sorts are
// all stable, so that order is the tie-breaker throughout.
func Run[T any](candidates []T, ops Ops[T], p Params) []T {
	trustLess := func(a, b T) bool {
		na, nb := ops.NumObs(a), ops.NumObs(b)
		if na != nb {
			return na > nb
		}
		return ops.MeanSqResidual(a) < ops.MeanSqResidual(b)
	}

	trustSorted := append([]T(nil), candidates...)
	sort.SliceStable(trustSorted, func(i, j int) bool { return trustLess(trustSorted[i], trustSorted[j]) })

	bySize := append([]T(nil), candidates...)
	sort.SliceStable(bySize, func(i, j int) bool { return ops.NumObs(bySize[i]) > ops.NumObs(bySize[j]) })

	idx := overlap.New(overlap.Ops[T]{DetIndices: ops.DetIndices})

	// Pass 2: subset removal. Largest candidates first; a candidate
	// already fully contained in an accepted track contributes nothing
	// new and is dropped.
	for _, a := range bySize {
		if isSubsetOfAny(a, idx, ops) {
			continue
		}
		idx.Add(a)
	}

	// Pass 3: overlap-significance merging, over every original
	// candidate in trust order (not just those pass 2 accepted: a
	// candidate dropped as a subset in pass 2 may still trigger a merge
	// here against a track pass 2 built from other candidates).
	for _, a := range trustSorted {
		merged := false
		for _, slot := range idx.CandidatesFor(a) {
			b := idx.Get(slot)
			na, nb := ops.NumObs(a), ops.NumObs(b)
			if na+nb == 0 {
				continue
			}
			o := ops.OverlapSize(a, b)
			significant := 2*float64(o)/float64(na+nb) >= p.MinOverlap
			if !significant {
				continue
			}
			if !p.AllowConflicts && !ops.Subset(a, b) && !ops.ValidOverlap(a, b) {
				continue
			}
			c, err := ops.Combine(a, b)
			if err != nil {
				continue
			}
			idx.Replace(slot, c)
			merged = true
		}
		if !merged && !isSubsetOfAny(a, idx, ops) {
			idx.Add(a)
		}
	}

	// Pass 3 can leave the accepted set with duplicate or subsumed slots:
	// if A and B both survive pass 2 (neither a subset of the other) and
	// later both achieve a significant overlap merge, each ends up
	// independently unioned with the other, so both slots converge on
	// the same combined detection set. A final subset collapse removes
	// any slot wholly contained in another, keeping a single copy of
	// each maximal detection set.
	accepted := maximalSets(idx.All(), ops)
	sort.SliceStable(accepted, func(i, j int) bool { return trustLess(accepted[i], accepted[j]) })
	return accepted
}

// maximalSets drops any track whose detection set is contained in
// another track's, keeping exactly one representative when two tracks
// claim the identical set.
func maximalSets[T any](tracks []T, ops Ops[T]) []T {
	var out []T
	for i, a := range tracks {
		dominated := false
		for j, b := range tracks {
			if i == j || !ops.Subset(a, b) {
				continue
			}
			if !ops.Subset(b, a) || j < i {
				dominated = true
				break
			}
		}
		if !dominated {
			out = append(out, a)
		}
	}
	return out
}

func isSubsetOfAny[T any](a T, idx *overlap.Index[T], ops Ops[T]) bool {
	for _, slot := range idx.CandidatesFor(a) {
		if ops.Subset(a, idx.Get(slot)) {
			return true
		}
	}
	return false
}
