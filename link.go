package linktracklets

import (
	"math"
	"runtime"
	"sync"

	"github.com/mops-go/linktracklets/internal/consolidate"
	"github.com/mops-go/linktracklets/internal/geomath"
	"github.com/mops-go/linktracklets/internal/mht"
	"github.com/mops-go/linktracklets/internal/ttree"
)

// maxLeafSize bounds the t-tree's leaf size; spec.md §4.3 leaves the
// value to the implementation as a performance knob with no semantic
// effect (leaf contents are always exactly re-checked).
const maxLeafSize = 8

// LinkTracklets runs the full search of spec.md §2: it indexes
// tracklets in a phase-space KD-tree, runs a multi-hypothesis beam
// search from every tracklet used as a seed, and consolidates the
// pooled results into a final candidate track list.
//
// The per-seed searches run concurrently (spec.md §5's seed-parallel
// concurrency model) over a fixed worker pool, one goroutine per
// GOMAXPROCS core, using the same dispatcher/ordered-return-channel
// pattern digest2 uses to keep its own per-tracklet workers' output in
// submission order: a ticket channel preserves seed-major ordering
// across however many goroutines actually did the work, so the
// concatenated candidate list consolidate.Run receives is identical to
// what a single-threaded loop over seeds would have produced.
func LinkTracklets(tracklets TrackletArray, detections DetectionArray, params SearchParams) (CandidateTrackArray, Stats, error) {
	if err := params.Validate(); err != nil {
		return nil, Stats{}, err
	}

	var stats Stats

	tree := buildTree(tracklets)
	axis := mht.BuildTimeAxis([]Tracklet(tracklets), trackOps)
	// SearchParams' position/residual/acceleration tunables are degree-scale
	// (params.go); internal/mht and internal/ttree work entirely in the
	// radians Detection/Tracklet coordinates are stored in, so this is the
	// single site that converts between the two.
	d2r := geomath.DegToRad(1)
	mhtParams := mht.Params{
		FitRD:         params.FitRD * d2r * d2r,
		MidRD:         params.MidRD * d2r,
		QuadRD:        params.QuadRD * d2r,
		MaxHyp:        params.MaxHyp,
		IndivMaxHyp:   params.IndivMaxHyp,
		MinObs:        params.MinObs,
		Bidirectional: params.Bidirectional,
		MaxAccel:      params.MaxAccel * d2r,
	}

	pooled, mhtStats := searchAllSeeds([]Tracklet(tracklets), tree, axis, mhtParams)
	stats.SeedsSearched = int64(len(tracklets))
	stats.HypothesesFormed = mhtStats.HypothesesFormed
	stats.HypothesesDropped = mhtStats.HypothesesDropped
	stats.NodesVisited = mhtStats.Tree.NodesVisited
	stats.NodesPruned = mhtStats.Tree.NodesPruned
	stats.LeavesScanned = mhtStats.Tree.LeavesScanned

	detIdx := detectionIndex(detections)
	consOps := consolidate.Ops[Tracklet]{
		NumObs:         func(t Tracklet) int { return len(t.Members) },
		MeanSqResidual: Tracklet.MeanSqResidual,
		DetIndices: func(t Tracklet) []int {
			ids := t.IDs()
			out := make([]int, 0, len(ids))
			for _, id := range ids {
				if i, ok := detIdx[id]; ok {
					out = append(out, i)
				}
			}
			return out
		},
		OverlapSize:  Tracklet.OverlapSize,
		Subset:       Tracklet.Subset,
		ValidOverlap: Tracklet.ValidOverlap,
		Combine:      Tracklet.Combine,
	}
	final := consolidate.Run(pooled, consOps, consolidate.Params{
		MinOverlap:     params.MinOverlap,
		AllowConflicts: params.AllowConflicts,
	})

	return CandidateTrackArray(final), stats, nil
}

// buildTree indexes every Tracklet's current six-dimensional phase-space
// position, RA taken modulo 2*pi so the tree's axis-width bookkeeping
// sees a bounded range regardless of how far NewTracklet's internal
// unwrapping carried a track's RA coefficient.
func buildTree(tracklets TrackletArray) *ttree.Tree {
	pts := make([]ttree.Point, len(tracklets))
	for i, t := range tracklets {
		pts[i] = ttree.Point{Coord: trackCoord(t), Index: i}
	}
	weights := ttree.TimeFirstWeights(1, 1, 1, 1, 1)
	return ttree.Build(pts, weights, maxLeafSize)
}

func trackCoord(t Tracklet) [ttree.NumDims]float64 {
	var c [ttree.NumDims]float64
	c[ttree.DimTime] = t.T0
	c[ttree.DimRA] = math.Mod(t.RA.X, 2*math.Pi)
	c[ttree.DimDec] = t.Dec.X
	c[ttree.DimVRA] = t.RA.V
	c[ttree.DimVDec] = t.Dec.V
	c[ttree.DimBright] = t.MeanMag
	return c
}

// trackOps binds internal/mht's generic Ops to Tracklet's own methods.
// It has no mutable state and is safe to share across the whole
// concurrent search.
var trackOps = mht.Ops[Tracklet]{
	FirstTime:       Tracklet.FirstTime,
	LastTime:        Tracklet.LastTime,
	TimeLength:      Tracklet.TimeLength,
	OverlapsInTime:  Tracklet.OverlapsInTime,
	Combine:         Tracklet.Combine,
	MeanSqResidual:  Tracklet.MeanSqResidual,
	MeanSqResidual2: Tracklet.MeanSqResidual2,
	NumObs:          func(t Tracklet) int { return len(t.Members) },
	ForceT0:         Tracklet.ForceT0,
	Coord:           trackCoord,
}

// seedTicket pairs a seed index with the channel its result will be
// delivered on, mirroring digest2's tkSeq/rch pattern for keeping a
// worker pool's output in submission order.
type seedTicket struct {
	idx int
	rch chan []Tracklet
}

// searchAllSeeds runs mht.SearchSeed for every tracklet used as a seed
// across a fixed worker pool, returning the pooled hypotheses
// concatenated in seed-major order and the summed per-seed Stats.
func searchAllSeeds(all []Tracklet, tree *ttree.Tree, axis []mht.TimeSlot, p mht.Params) ([]Tracklet, mht.Stats) {
	n := len(all)
	if n == 0 {
		return nil, mht.Stats{}
	}

	jobs := make(chan seedTicket)
	tickets := make(chan chan []Tracklet, n)

	go func() {
		for i := 0; i < n; i++ {
			rch := make(chan []Tracklet, 1)
			jobs <- seedTicket{idx: i, rch: rch}
			tickets <- rch
		}
		close(jobs)
		close(tickets)
	}()

	maxWorkers := runtime.GOMAXPROCS(0)
	if maxWorkers > n {
		maxWorkers = n
	}
	seedStats := make([]mht.Stats, maxWorkers)
	var wg sync.WaitGroup
	wg.Add(maxWorkers)
	for w := 0; w < maxWorkers; w++ {
		go func(slot int) {
			defer wg.Done()
			var local mht.Stats
			for job := range jobs {
				job.rch <- mht.SearchSeed(all, tree, axis, job.idx, trackOps, p, &local)
			}
			seedStats[slot] = local
		}(w)
	}

	var pooled []Tracklet
	for rch := range tickets {
		pooled = append(pooled, <-rch...)
	}
	wg.Wait()

	var total mht.Stats
	for _, s := range seedStats {
		total.HypothesesFormed += s.HypothesesFormed
		total.HypothesesDropped += s.HypothesesDropped
		total.Tree.NodesVisited += s.Tree.NodesVisited
		total.Tree.NodesPruned += s.Tree.NodesPruned
		total.Tree.LeavesScanned += s.Tree.LeavesScanned
	}
	return pooled, total
}
