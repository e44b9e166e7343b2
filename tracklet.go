package linktracklets

import (
	"sort"

	"github.com/mops-go/linktracklets/internal/geomath"
	"github.com/soniakeys/unit"
)

// No RA scale factor is applied anywhere: RA and Dec are both carried as unit.Angle
// (radians) throughout this package, so no 15x hours-to-degrees
// correction is ever needed in a residual, threshold, or pruning bound.
// See doc.go for the rationale.

// Tracklet is a polynomial kinematic model fitted to an ordered set of
// two or more same-object Detections. It is immutable except for
// ForceT0, which produces a new Tracklet sharing the same Members but
// evaluated at a different reference epoch.
type Tracklet struct {
	T0      float64 // reference epoch, Modified Julian Date
	RA      axis
	Dec     axis
	MeanMag float64
	Members []Detection // strictly increasing by Epoch, len >= 2
}

// NewTracklet fits a Tracklet from an unordered set of Detections of a
// single object. Detections are sorted by epoch; the fit reference t0 is
// the earliest member's epoch. Fails with EmptyTracklet if fewer than two
// detections are given, or IllConditioned if they share a single epoch.
func NewTracklet(members []Detection) (Tracklet, error) {
	if len(members) < 2 {
		return Tracklet{}, newError(EmptyTracklet,
			"tracklet requires at least 2 detections, got %d", len(members))
	}
	ms := append([]Detection(nil), members...)
	sort.Slice(ms, func(i, j int) bool { return ms[i].Epoch < ms[j].Epoch })
	return fitTracklet(ms, ms[0].Epoch)
}

// fitTracklet fits a Tracklet's axes at t0 against an already
// epoch-sorted member slice. members is taken by reference, not copied.
func fitTracklet(members []Detection, t0 float64) (Tracklet, error) {
	n := len(members)
	epochs := make([]float64, n)
	ras := make([]float64, n)
	decs := make([]float64, n)
	var magSum float64
	var magN int
	ra0 := members[0].RA.Rad()
	for i, d := range members {
		epochs[i] = d.Epoch
		// Unwrap RA relative to the first member so the polynomial fits
		// a continuous track rather than snapping across the 0/2*pi seam.
		ras[i] = ra0 + geomath.WrapDiff(d.RA.Rad(), ra0)
		decs[i] = d.Dec.Rad()
		if d.Mag > 0 {
			magSum += d.Mag
			magN++
		}
	}
	raAxis, err := polyFit(epochs, ras, t0)
	if err != nil {
		return Tracklet{}, err
	}
	decAxis, err := polyFit(epochs, decs, t0)
	if err != nil {
		return Tracklet{}, err
	}
	var meanMag float64
	if magN > 0 {
		meanMag = magSum / float64(magN)
	}
	return Tracklet{
		T0:      t0,
		RA:      raAxis,
		Dec:     decAxis,
		MeanMag: meanMag,
		Members: members,
	}, nil
}

// FirstTime is the epoch of the earliest member Detection.
func (t Tracklet) FirstTime() float64 { return t.Members[0].Epoch }

// LastTime is the epoch of the latest member Detection.
func (t Tracklet) LastTime() float64 { return t.Members[len(t.Members)-1].Epoch }

// TimeLength is LastTime - FirstTime.
func (t Tracklet) TimeLength() float64 { return t.LastTime() - t.FirstTime() }

// Midpoint is the time midway between FirstTime and LastTime.
func (t Tracklet) Midpoint() float64 { return (t.FirstTime() + t.LastTime()) / 2 }

// Project evaluates the Tracklet's polynomial model dt days after T0,
// returning the predicted RA and Dec.
func (t Tracklet) Project(dt float64) (ra, dec unit.Angle) {
	return unit.Angle(geomath.WrapDiff(t.RA.eval(dt), 0)), unit.Angle(t.Dec.eval(dt))
}

// ForceT0 returns a Tracklet with (X, V, A) re-evaluated at the new
// reference epoch t. The member set and trajectory are unchanged; this
// is an exact Taylor-shift of the same quadratic model, so ForceT0(t1)
// followed by ForceT0(t0) reproduces the original coefficients exactly,
// modulo floating-point associativity.
func (t Tracklet) ForceT0(t1 float64) Tracklet {
	dt := t1 - t.T0
	shift := func(a axis) axis {
		return axis{
			X: a.X + a.V*dt + 0.5*a.A*dt*dt,
			V: a.V + a.A*dt,
			A: a.A,
		}
	}
	t.T0 = t1
	t.RA = shift(t.RA)
	t.Dec = shift(t.Dec)
	return t
}

// ids returns the set of member Detection identifiers as a lookup map.
func (t Tracklet) ids() map[string]bool {
	m := make(map[string]bool, len(t.Members))
	for _, d := range t.Members {
		m[d.ID] = true
	}
	return m
}

// IDs returns the member Detection identifiers, in member (epoch) order.
func (t Tracklet) IDs() []string {
	ids := make([]string, len(t.Members))
	for i, d := range t.Members {
		ids[i] = d.ID
	}
	return ids
}

// OverlapsInTime reports whether a and b's time spans intersect with
// strict inequality at at least one end, per spec.md §4.2: two spans
// that only touch at a shared boundary instant do not overlap.
func (a Tracklet) OverlapsInTime(b Tracklet) bool {
	return a.FirstTime() < b.LastTime() && b.FirstTime() < a.LastTime()
}

// OverlapSize counts Detection identities common to both a and b, by
// Detection.ID, independent of either Tracklet's position in any
// TrackletArray.
func (a Tracklet) OverlapSize(b Tracklet) int {
	bIDs := b.ids()
	n := 0
	for _, d := range a.Members {
		if bIDs[d.ID] {
			n++
		}
	}
	return n
}

// ValidOverlap reports whether every pair of detections from a and b that
// share an epoch are in fact the same detection identity. Two tracks
// that each claim a different detection at the same instant describe a
// single body being in two places at once, which ValidOverlap forbids.
func (a Tracklet) ValidOverlap(b Tracklet) bool {
	for _, da := range a.Members {
		for _, db := range b.Members {
			if da.Epoch == db.Epoch && da.ID != db.ID {
				return false
			}
		}
	}
	return true
}

// Subset reports whether every Detection identity in a also appears in b.
func (a Tracklet) Subset(b Tracklet) bool {
	bIDs := b.ids()
	for _, d := range a.Members {
		if !bIDs[d.ID] {
			return false
		}
	}
	return true
}

// SameDetectionSet reports whether a and b claim exactly the same set of
// Detection identities.
func (a Tracklet) SameDetectionSet(b Tracklet) bool {
	return len(a.Members) == len(b.Members) && a.Subset(b) && b.Subset(a)
}

// Combine produces a Tracklet whose member set is the union of a's and
// b's Detections, ordered by epoch and re-fit at the earliest member's
// epoch. It fails with IllConditioned if the union's members share a
// single epoch (impossible in practice once a and b each already have a
// time baseline, but checked for completeness); callers must reject the
// combination on error rather than use a degenerate result.
func (a Tracklet) Combine(b Tracklet) (Tracklet, error) {
	seen := make(map[string]bool, len(a.Members)+len(b.Members))
	merged := make([]Detection, 0, len(a.Members)+len(b.Members))
	for _, d := range a.Members {
		if !seen[d.ID] {
			seen[d.ID] = true
			merged = append(merged, d)
		}
	}
	for _, d := range b.Members {
		if !seen[d.ID] {
			seen[d.ID] = true
			merged = append(merged, d)
		}
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Epoch < merged[j].Epoch })
	return fitTracklet(merged, merged[0].Epoch)
}
