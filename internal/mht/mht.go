// Package mht implements the multi-hypothesis-tracking search driver of
// spec.md §4.5: a per-seed beam search over time-ordered tracklets,
// extending surviving hypotheses with tree-pruned candidates and
// trimming by trust.
//
// Like internal/overlap and internal/consolidate, the driver is generic
// over the track type to avoid importing the root package (which must
// itself import mht to drive the search).
package mht

import (
	"sort"

	"github.com/mops-go/linktracklets/internal/geomath"
	"github.com/mops-go/linktracklets/internal/ttree"
)

// Ops supplies the track-specific operations the driver needs. Coord
// returns the track's current six-dimensional phase-space position,
// matching the dimension ordering of internal/ttree.
type Ops[T any] struct {
	FirstTime       func(T) float64
	LastTime        func(T) float64
	TimeLength      func(T) float64
	OverlapsInTime  func(a, b T) bool
	Combine         func(a, b T) (T, error)
	MeanSqResidual  func(T) float64
	MeanSqResidual2 func(a, b T) float64
	NumObs          func(T) int
	ForceT0         func(t T, epoch float64) T
	Coord           func(T) [ttree.NumDims]float64
}

// midpointSqDistance mirrors internal/ttree/query.go's axisReachable
// midpoint projection (the same formula the midpoint query itself used
// to find b as a candidate), summing both axes' squared separation at
// the pair's shared midpoint instead of evaluating a fitted residual.
// It is the ranking metric spec.md §4.5 step 3 calls for when a is still
// a single-tracklet seed, in place of MeanSqResidual2.
func midpointSqDistance[T any](a, b T, ops Ops[T]) float64 {
	qc := ops.Coord(a)
	bc := ops.Coord(b)
	tQ, tB := qc[ttree.DimTime], bc[ttree.DimTime]
	tm := (tQ + tB) / 2
	dRA := geomath.WrapDiff(bc[ttree.DimRA]+bc[ttree.DimVRA]*(tm-tB), qc[ttree.DimRA]+qc[ttree.DimVRA]*(tm-tQ))
	dDec := (bc[ttree.DimDec] + bc[ttree.DimVDec]*(tm-tB)) - (qc[ttree.DimDec] + qc[ttree.DimVDec]*(tm-tQ))
	return dRA*dRA + dDec*dDec
}

// Params are the search-specific tunables of spec.md §6 that drive a
// single seed's pass. Unlike the caller-facing linktracklets.SearchParams
// these degree-scale values are converted from, FitRD, MidRD, QuadRD, and
// MaxAccel here are all in radians (and radians^2 for FitRD, radians/day^2
// for MaxAccel), matching the Ops callbacks' Coord/ForceT0 values.
type Params struct {
	FitRD         float64
	MidRD         float64
	QuadRD        float64
	MaxHyp        int
	IndivMaxHyp   int
	MinObs        int
	Bidirectional bool
	MaxAccel      float64
}

// timeEpsilon bounds how far a candidate's own start time may drift
// from the exact time-axis slot being visited and still count as "at
// T[i]"; it exists only to absorb floating-point noise in stored
// epochs, not to widen the search.
const timeEpsilon = 1e-9

// Stats accumulates search diagnostics across one or more SearchSeed
// calls, including the t-tree query counters of every NearPoint and
// Midpoint query the pass issued.
type Stats struct {
	HypothesesFormed  int64
	HypothesesDropped int64
	Tree              ttree.Stats
}

// TimeSlot is one entry of the ascending time axis spec.md §4.5 step 2
// builds once over the whole TrackletArray: Index is the tracklet's
// position in the caller's TrackletArray, Time its FirstTime.
type TimeSlot struct {
	Index int
	Time  float64
}

// BuildTimeAxis sorts every track's (FirstTime, array index) into the
// ascending sequence spec.md §4.5 calls T, breaking ties by index for
// determinism.
func BuildTimeAxis[T any](all []T, ops Ops[T]) []TimeSlot {
	axis := make([]TimeSlot, len(all))
	for i, t := range all {
		axis[i] = TimeSlot{Index: i, Time: ops.FirstTime(t)}
	}
	sort.SliceStable(axis, func(i, j int) bool {
		if axis[i].Time != axis[j].Time {
			return axis[i].Time < axis[j].Time
		}
		return axis[i].Index < axis[j].Index
	})
	return axis
}

// SearchSeed runs spec.md §4.5's full per-seed pass (forward, and
// backward if Params.Bidirectional) for the tracklet at seedIdx,
// returning every surviving hypothesis of size >= Params.MinObs.
func SearchSeed[T any](
	all []T,
	tree *ttree.Tree,
	axis []TimeSlot,
	seedIdx int,
	ops Ops[T],
	p Params,
	stats *Stats,
) []T {
	seed := all[seedIdx]
	seedPos := -1
	for i, slot := range axis {
		if slot.Index == seedIdx {
			seedPos = i
			break
		}
	}
	if seedPos == -1 {
		return nil
	}

	h := []T{seed}
	h = extendPass(all, tree, axis, seedPos, 1, h, ops, p, stats)
	if p.Bidirectional {
		h = extendPass(all, tree, axis, seedPos, -1, h, ops, p, stats)
	}

	var out []T
	for _, hyp := range h {
		if ops.NumObs(hyp) >= p.MinObs {
			out = append(out, hyp)
		}
	}
	return out
}

// extendPass walks the time axis from seedPos in the given direction
// (+1 forward, -1 backward), growing h one time-slot extension at a
// time.
func extendPass[T any](
	all []T,
	tree *ttree.Tree,
	axis []TimeSlot,
	seedPos, dir int,
	h []T,
	ops Ops[T],
	p Params,
	stats *Stats,
) []T {
	for i := seedPos + dir; i >= 0 && i < len(axis); i += dir {
		target := axis[i].Time
		hPrime := append([]T(nil), h...)
		for _, a := range h {
			var treeStats *ttree.Stats
			if stats != nil {
				treeStats = &stats.Tree
			}
			candidates := queryCandidates(tree, target, a, ops, p, treeStats)
			if len(candidates) > p.IndivMaxHyp {
				candidates = rankCandidates(all, candidates, a, ops, p.IndivMaxHyp)
			}
			for _, ci := range candidates {
				b := all[ci]
				if ops.OverlapsInTime(a, b) {
					continue
				}
				c, err := ops.Combine(a, b)
				if err != nil {
					if stats != nil {
						stats.HypothesesDropped++
					}
					continue
				}
				if ops.MeanSqResidual(c) >= p.FitRD {
					if stats != nil {
						stats.HypothesesDropped++
					}
					continue
				}
				hPrime = append(hPrime, c)
				if stats != nil {
					stats.HypothesesFormed++
				}
			}
		}
		h = trimByTrust(hPrime, ops, p.MaxHyp)
	}
	return h
}

// queryCandidates implements spec.md §4.5 step 3's query selection: a
// midpoint query for a still-short (single-tracklet) hypothesis, or a
// near-point query against a's model force-shifted to target otherwise.
func queryCandidates[T any](tree *ttree.Tree, target float64, a T, ops Ops[T], p Params, stats *ttree.Stats) []int {
	if ops.TimeLength(a) < 0.5 {
		coord := ops.Coord(a)
		q := ttree.MidpointQuery{
			T: coord[ttree.DimTime], RA: coord[ttree.DimRA], Dec: coord[ttree.DimDec],
			VRA: coord[ttree.DimVRA], VDec: coord[ttree.DimVDec],
			TS: target, TE: target,
			TauRA: p.MidRD, TauDec: p.MidRD,
			AlphaRA: p.MaxAccel, AlphaDec: p.MaxAccel,
		}
		return tree.Midpoint(q, stats)
	}

	shifted := ops.ForceT0(a, target)
	coord := ops.Coord(shifted)
	q := ttree.NearPointQuery{Coord: coord}
	for d := 0; d < ttree.NumDims; d++ {
		q.Tau[d] = -1
	}
	q.Tau[ttree.DimTime] = timeEpsilon
	q.Tau[ttree.DimRA] = p.QuadRD
	q.Tau[ttree.DimDec] = p.QuadRD
	return tree.NearPoint(q, stats)
}

// rankCandidates implements spec.md §4.5 step 3's over-cap trim: rank by
// mean-square second residual against a, except when a is still a
// single-tracklet seed (the same condition queryCandidates uses to pick
// a midpoint query in the first place), in which case a's fitted
// residual against an unextended candidate is a poor trust signal and
// midpoint projection distance is used instead.
func rankCandidates[T any](all []T, candidates []int, a T, ops Ops[T], n int) []int {
	if ops.TimeLength(a) < 0.5 {
		return topByMetric(candidates, n, func(ci int) float64 { return midpointSqDistance(a, all[ci], ops) })
	}
	return topByMetric(candidates, n, func(ci int) float64 { return ops.MeanSqResidual2(a, all[ci]) })
}

// topByMetric ranks candidates ascending by score and returns the best
// n indices, ties broken by tracklet index for determinism.
func topByMetric(candidates []int, n int, score func(idx int) float64) []int {
	type scored struct {
		idx int
		r   float64
	}
	ranked := make([]scored, len(candidates))
	for i, ci := range candidates {
		ranked[i] = scored{idx: ci, r: score(ci)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].r != ranked[j].r {
			return ranked[i].r < ranked[j].r
		}
		return ranked[i].idx < ranked[j].idx
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]int, len(ranked))
	for i, s := range ranked {
		out[i] = s.idx
	}
	return out
}

// trimByTrust keeps h's first entry, always the untouched seed
// hypothesis by the append-only construction in extendPass, and from
// the rest takes the best maxHyp-1 by trust: (-num_obs, mean_sq_residual)
// ascending.
func trimByTrust[T any](h []T, ops Ops[T], maxHyp int) []T {
	if len(h) <= maxHyp {
		return h
	}
	rest := append([]T(nil), h[1:]...)
	sort.SliceStable(rest, func(i, j int) bool {
		ni, nj := ops.NumObs(rest[i]), ops.NumObs(rest[j])
		if ni != nj {
			return ni > nj
		}
		return ops.MeanSqResidual(rest[i]) < ops.MeanSqResidual(rest[j])
	})
	keep := maxHyp - 1
	if keep > len(rest) {
		keep = len(rest)
	}
	out := make([]T, 0, keep+1)
	out = append(out, h[0])
	out = append(out, rest[:keep]...)
	return out
}
