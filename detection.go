package linktracklets

import "github.com/soniakeys/unit"

// Detection is a single timed celestial position measurement. It is
// immutable once constructed. RA and Dec are both carried as unit.Angle
// so the core never has to reconcile an hours-vs-degrees convention: the
// underlying representation (radians) is identical for both axes, which
// is the single most bug-prone unit issue the original algorithm carried
// (see the RA/Dec discussion in package doc.go).
type Detection struct {
	ID    string     // stable identifier, unique within a Catalog
	Epoch float64    // Modified Julian Date
	RA    unit.Angle // right ascension
	Dec   unit.Angle // declination
	Mag   float64    // apparent brightness
	Label string     // ground-truth label; read only by evaluation tooling
}

// DetectionArray is an ordered, index-addressable collection of
// Detections. The position of a Detection within a DetectionArray is its
// "detection index," the identity the overlap index (see internal/overlap) is
// keyed on; it is independent of Detection.ID, which identifies a
// detection across Tracklets built from possibly different arrays.
type DetectionArray []Detection

// Catalog is the external collaborator that supplies Detections to the
// search. Its only contract is a total, index-stable ordering by epoch
// within each object; how it is populated (file parsing, a database, a
// generator) is outside this package (see internal/mpcio for a reference
// MPC-format implementation).
type Catalog interface {
	Detections() DetectionArray
}

// detectionIndex builds a lookup from Detection.ID to its position in da.
// Used internally to translate a Tracklet's member IDs into the integer
// detection indices the overlap index requires.
func detectionIndex(da DetectionArray) map[string]int {
	idx := make(map[string]int, len(da))
	for i, d := range da {
		idx[d.ID] = i
	}
	return idx
}
