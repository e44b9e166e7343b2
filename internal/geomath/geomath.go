// Package geomath collects the small set of angular utilities shared by
// the polynomial fit, KD-tree pruning, and residual code: reducing an RA
// difference across the 0/2*pi wrap point, and great-circle angular
// separation computed via Cartesian unit vectors in the style of the
// digest2 astro package's vector arithmetic (astro.go's AeiHv/oouv use
// coord.Cart the same way).
package geomath

import (
	"math"

	"github.com/soniakeys/coord"
)

// TwoPi is one full turn in radians, the period RA wraps around.
const TwoPi = 2 * math.Pi

// DegToRad converts an angle in degrees to radians. SearchParams' position
// and residual thresholds are documented in degrees (spec.md §8's literal
// scenario values); this is the single conversion site between that
// caller-facing scale and the radians every Detection/Tracklet coordinate
// is stored in.
func DegToRad(deg float64) float64 { return deg * math.Pi / 180 }

// WrapDiff returns a-b reduced to (-pi, pi], the signed angular
// difference along the shortest path around a full turn. Both a and b
// are expected in radians.
func WrapDiff(a, b float64) float64 {
	d := math.Mod(a-b, TwoPi)
	switch {
	case d > math.Pi:
		d -= TwoPi
	case d <= -math.Pi:
		d += TwoPi
	}
	return d
}

// unitVector converts an (ra, dec) pair, in radians, to a unit vector on
// the celestial sphere.
func unitVector(ra, dec float64) coord.Cart {
	sr, cr := math.Sincos(ra)
	sd, cd := math.Sincos(dec)
	return coord.Cart{X: cr * cd, Y: sr * cd, Z: sd}
}

// GreatCircle returns the angular separation, in radians, between two
// sky positions given as (ra, dec) pairs in radians.
func GreatCircle(ra1, dec1, ra2, dec2 float64) float64 {
	u1 := unitVector(ra1, dec1)
	u2 := unitVector(ra2, dec2)
	cosSep := u1.Dot(&u2)
	switch {
	case cosSep > 1:
		cosSep = 1
	case cosSep < -1:
		cosSep = -1
	}
	return math.Acos(cosSep)
}

// IntervalMissesWrapped reports whether the closed interval [lo, hi]
// (the reachable range of a wraparound-sensitive separation, e.g. an RA
// difference) can be excluded from [-tau, tau] once every 2*pi alias of
// the interval is considered. It is used by the t-tree pruning bound
// (see ttree.Tree.Midpoint) so a reachable-position box is never wrongly
// pruned merely because it straddles the RA wrap point.
func IntervalMissesWrapped(lo, hi, tau float64) bool {
	for _, shift := range [...]float64{-TwoPi, 0, TwoPi} {
		if lo+shift <= tau && hi+shift >= -tau {
			return false
		}
	}
	return true
}
