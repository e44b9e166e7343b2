package linktracklets

import "github.com/mops-go/linktracklets/internal/geomath"

// sqPositionError returns the squared great-circle-equivalent angular
// error, in radians^2, between a Tracklet's projected position at a
// Detection's epoch and the Detection's actual position. RA and Dec
// contribute in already-equivalent units (see detection.go), so the
// squared error is simply the sum of the two squared per-axis
// differences; no 15x RA scaling is needed.
func sqPositionError(t Tracklet, d Detection) float64 {
	dt := d.Epoch - t.T0
	ra, dec := t.RA.eval(dt), t.Dec.eval(dt)
	dRA := geomath.WrapDiff(ra, d.RA.Rad())
	dDec := dec - d.Dec.Rad()
	return dRA*dRA + dDec*dDec
}

// MeanSqResidual is the average, over all member Detections, of the
// squared angular position error between t's fitted model and the
// Detection's actual position (spec.md §4.1).
func (t Tracklet) MeanSqResidual() float64 {
	var sum float64
	for _, d := range t.Members {
		sum += sqPositionError(t, d)
	}
	return sum / float64(len(t.Members))
}

// MaxSqResidual is the largest single-Detection squared position error
// within t (spec.md §4.1).
func (t Tracklet) MaxSqResidual() float64 {
	var max float64
	for i, d := range t.Members {
		e := sqPositionError(t, d)
		if i == 0 || e > max {
			max = e
		}
	}
	return max
}

// MeanSqResidual2 evaluates b's model at each of a's Detection epochs and
// a's model at each of b's, returning the mean of the squared angular
// differences across both directions (spec.md §4.1). It is used by the
// MHT search to rank candidate extensions without needing to actually
// combine and re-fit them.
func (a Tracklet) MeanSqResidual2(b Tracklet) float64 {
	var sum float64
	n := len(a.Members) + len(b.Members)
	for _, d := range a.Members {
		dt := d.Epoch - b.T0
		ra, dec := b.RA.eval(dt), b.Dec.eval(dt)
		dRA := geomath.WrapDiff(ra, d.RA.Rad())
		dDec := dec - d.Dec.Rad()
		sum += dRA*dRA + dDec*dDec
	}
	for _, d := range b.Members {
		dt := d.Epoch - a.T0
		ra, dec := a.RA.eval(dt), a.Dec.eval(dt)
		dRA := geomath.WrapDiff(ra, d.RA.Rad())
		dDec := dec - d.Dec.Rad()
		sum += dRA*dRA + dDec*dDec
	}
	return sum / float64(n)
}
