package linktracklets

import (
	"github.com/mops-go/linktracklets/internal/geomath"
	"github.com/mops-go/linktracklets/internal/rdvv"
)

// GroupParams configures FindCandidateGroups, the whole-catalog screening
// pass of spec.md §4.4. TauRA, TauDec, and AlphaRA/AlphaDec are degree-scale,
// matching SearchParams' own convention; FindCandidateGroups converts them
// to radians at the same boundary LinkTracklets uses.
type GroupParams struct {
	TauRA, TauDec     float64 // pairwise position tolerance at shared midpoint, degrees
	AlphaRA, AlphaDec float64 // per-axis velocity-difference cap, degrees/day^2; negative disables
	MinGroup          int     // smallest connected component worth reporting
	MaxGroup          int     // largest component size kept per group; 0 disables truncation
}

// DefaultGroupParams mirrors DefaultParams' own tolerances so a catalog
// screened with one set of tunables and then searched with the other
// starts from the same astrometric error budget.
func DefaultGroupParams() GroupParams {
	return GroupParams{
		TauRA:    0.01,
		TauDec:   0.01,
		AlphaRA:  10.0,
		AlphaDec: 10.0,
		MinGroup: 3,
		MaxGroup: 0,
	}
}

// TrackletGroup is one connected component FindCandidateGroups reports:
// tracklets pairwise close under GroupParams, identified both by their
// TrackletArray index and by the IDs of their own member Detections.
type TrackletGroup struct {
	Indices []int
	IDs     []string
}

// FindCandidateGroups runs internal/rdvv's dual-tree all-pairs closure
// search over every tracklet's phase-space position, independent of
// LinkTracklets' own per-seed beam search. It exists for the same reason
// digest2 keeps an arc-length prefilter ahead of its scoring pass: a
// coarse, cheap screen over the whole catalog before committing to the
// more expensive search.
//
// The two passes are not interchangeable. rdvv.AllPairs reports tracklets
// that are pairwise close to some shared reference time; it never forms or
// scores the intermediate combined hypotheses a three-or-more-night chain
// actually needs, and a true multi-hypothesis extension can survive
// through a tracklet that isn't pairwise close to every other member of
// its eventual track (a fast-moving body observed at widely separated
// epochs, for instance). FindCandidateGroups is a triage tool for ordering
// or filtering which seeds LinkTracklets spends its beam search on, not a
// substitute for running it.
func FindCandidateGroups(tracklets TrackletArray, params GroupParams) ([]TrackletGroup, rdvv.Stats, error) {
	if err := params.Validate(); err != nil {
		return nil, rdvv.Stats{}, err
	}

	pts := make([]rdvv.Point, len(tracklets))
	for i, t := range tracklets {
		pts[i] = rdvv.Point{Coord: rdvvCoord(t), Index: i}
	}
	tree := rdvv.Build(pts, maxLeafSize)

	d2r := geomath.DegToRad(1)
	alphaRA, alphaDec := params.AlphaRA, params.AlphaDec
	if alphaRA >= 0 {
		alphaRA *= d2r
	}
	if alphaDec >= 0 {
		alphaDec *= d2r
	}
	pp := rdvv.PairParams{
		TauRA:    params.TauRA * d2r,
		TauDec:   params.TauDec * d2r,
		AlphaRA:  alphaRA,
		AlphaDec: alphaDec,
		MinGroup: params.MinGroup,
		MaxGroup: params.MaxGroup,
	}

	var stats rdvv.Stats
	rawGroups := tree.AllPairs(pp, &stats)

	out := make([]TrackletGroup, len(rawGroups))
	for i, g := range rawGroups {
		ids := make([]string, 0, len(g.Indices))
		for _, idx := range g.Indices {
			ids = append(ids, tracklets[idx].IDs()...)
		}
		out[i] = TrackletGroup{Indices: g.Indices, IDs: ids}
	}
	return out, stats, nil
}

// rdvvCoord reduces trackCoord's six-dimensional ttree position to the
// five dimensions internal/rdvv indexes, dropping brightness: spec.md §4.4
// gives the secondary tree no brightness-pruning role.
func rdvvCoord(t Tracklet) [rdvv.NumDims]float64 {
	c := trackCoord(t)
	return [rdvv.NumDims]float64{
		rdvv.DimTime: c[0],
		rdvv.DimRA:   c[1],
		rdvv.DimDec:  c[2],
		rdvv.DimVRA:  c[3],
		rdvv.DimVDec: c[4],
	}
}

// Validate rejects a GroupParams value outside its documented range.
func (p GroupParams) Validate() error {
	switch {
	case p.TauRA < 0:
		return newError(InvalidParameter, "TauRA must be >= 0, got %v", p.TauRA)
	case p.TauDec < 0:
		return newError(InvalidParameter, "TauDec must be >= 0, got %v", p.TauDec)
	case p.MinGroup < 1:
		return newError(InvalidParameter, "MinGroup must be >= 1, got %v", p.MinGroup)
	case p.MaxGroup < 0:
		return newError(InvalidParameter, "MaxGroup must be >= 0, got %v", p.MaxGroup)
	case p.MaxGroup > 0 && p.MaxGroup < p.MinGroup:
		return newError(InvalidParameter, "MaxGroup must be >= MinGroup when set, got %v < %v", p.MaxGroup, p.MinGroup)
	}
	return nil
}
