package linktracklets

// SearchParams enumerates exactly the tunables spec.md §6 gives the
// search: residual and position tolerances, beam widths, output and
// consolidation policy. All fields must be set; use DefaultParams for a
// reasonable starting point and override from there.
//
// FitRD, MidRD, QuadRD, and MaxAccel are all in degree units, matching
// spec.md §8's literal scenario values (and MPC convention, where an
// astrometric error budget is naturally thought of in arcseconds and
// degrees rather than radians): FitRD in degrees^2, the rest in degrees
// or degrees/day^2. LinkTracklets converts them to the radians every
// Detection/Tracklet coordinate is stored in (internal/geomath.DegToRad)
// before driving the search; nothing downstream of that boundary ever
// sees a degree-scale value.
type SearchParams struct {
	FitRD         float64 // max mean-square residual of an accepted combined track, degrees^2
	MidRD         float64 // position tolerance for midpoint query, degrees
	QuadRD        float64 // position tolerance for near-point query, degrees
	MaxHyp        int     // per-seed beam width
	IndivMaxHyp   int     // per-extension candidate cap
	MinObs        int     // minimum detections for an output track
	Bidirectional bool    // run a backward extension pass
	AllowConflicts bool   // permit merging across same-epoch disagreements
	MinOverlap    float64 // overlap-merge significance threshold, in [0,1]
	MaxAccel      float64 // kinematic acceleration cap used in pruning, degrees/day^2
}

// DefaultParams returns parameters modeled on spec.md §8 scenario 1: a
// tight fit tolerance, generous beam widths, and conflict-averse
// consolidation. Callers almost always need to adjust at least FitRD,
// MidRD, and QuadRD for their own astrometric error budget. All
// degree-scale fields carry the scenario's own literal values unconverted;
// LinkTracklets performs the degrees-to-radians conversion.
func DefaultParams() SearchParams {
	return SearchParams{
		FitRD:          1e-6,
		MidRD:          0.01,
		QuadRD:         0.01,
		MaxHyp:         4,
		IndivMaxHyp:    4,
		MinObs:         3,
		Bidirectional:  false,
		AllowConflicts: false,
		MinOverlap:     0.5,
		MaxAccel:       10.0,
	}
}

// Validate rejects a SearchParams value whose fields fall outside the
// ranges documented in spec.md §6, returning an InvalidParameter Error.
func (p SearchParams) Validate() error {
	switch {
	case p.FitRD < 0:
		return newError(InvalidParameter, "FitRD must be >= 0, got %v", p.FitRD)
	case p.MidRD < 0:
		return newError(InvalidParameter, "MidRD must be >= 0, got %v", p.MidRD)
	case p.QuadRD < 0:
		return newError(InvalidParameter, "QuadRD must be >= 0, got %v", p.QuadRD)
	case p.MaxHyp < 1:
		return newError(InvalidParameter, "MaxHyp must be >= 1, got %v", p.MaxHyp)
	case p.IndivMaxHyp < 1:
		return newError(InvalidParameter, "IndivMaxHyp must be >= 1, got %v", p.IndivMaxHyp)
	case p.MinObs < 2:
		return newError(InvalidParameter, "MinObs must be >= 2, got %v", p.MinObs)
	case p.MinOverlap < 0 || p.MinOverlap > 1:
		return newError(InvalidParameter, "MinOverlap must be in [0,1], got %v", p.MinOverlap)
	case p.MaxAccel < 0:
		return newError(InvalidParameter, "MaxAccel must be >= 0, got %v", p.MaxAccel)
	}
	return nil
}
