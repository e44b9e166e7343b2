package linktracklets

import (
	"math"
	"testing"

	"github.com/soniakeys/unit"
)

func det(id string, epoch, ra, dec float64) Detection {
	return Detection{ID: id, Epoch: epoch, RA: unit.Angle(ra), Dec: unit.Angle(dec), Mag: 20}
}

func TestNewTrackletRequiresTwo(t *testing.T) {
	_, err := NewTracklet([]Detection{det("a", 0, 0, 0)})
	if err == nil {
		t.Fatal("expected EmptyTracklet error")
	}
	if perr, ok := err.(*Error); !ok || perr.Kind != EmptyTracklet {
		t.Errorf("got %v, want EmptyTracklet", err)
	}
}

func TestNewTrackletSortsByEpoch(t *testing.T) {
	members := []Detection{
		det("b", 2, 0.02, 0.02),
		det("a", 1, 0.01, 0.01),
		det("c", 3, 0.03, 0.03),
	}
	tr, err := NewTracklet(members)
	if err != nil {
		t.Fatalf("NewTracklet: %v", err)
	}
	if tr.T0 != 1 {
		t.Errorf("T0 = %v, want 1 (earliest epoch)", tr.T0)
	}
	ids := tr.IDs()
	want := []string{"a", "b", "c"}
	for i, id := range want {
		if ids[i] != id {
			t.Errorf("IDs()[%d] = %q, want %q", i, ids[i], id)
		}
	}
}

func TestForceT0RoundTrip(t *testing.T) {
	members := []Detection{
		det("a", 0, 0.0, 0.0),
		det("b", 1, 0.01, -0.01),
		det("c", 2, 0.025, -0.018),
	}
	tr, err := NewTracklet(members)
	if err != nil {
		t.Fatalf("NewTracklet: %v", err)
	}
	shifted := tr.ForceT0(5)
	back := shifted.ForceT0(tr.T0)
	if math.Abs(back.RA.X-tr.RA.X) > 1e-9 || math.Abs(back.RA.V-tr.RA.V) > 1e-9 {
		t.Errorf("RA axis did not round-trip: got %+v, want %+v", back.RA, tr.RA)
	}
	if math.Abs(back.Dec.X-tr.Dec.X) > 1e-9 || math.Abs(back.Dec.V-tr.Dec.V) > 1e-9 {
		t.Errorf("Dec axis did not round-trip: got %+v, want %+v", back.Dec, tr.Dec)
	}
}

func TestSubsetAndOverlapSize(t *testing.T) {
	a, _ := NewTracklet([]Detection{det("a", 0, 0, 0), det("b", 1, 0.01, 0.01)})
	b, _ := NewTracklet([]Detection{
		det("a", 0, 0, 0), det("b", 1, 0.01, 0.01), det("c", 2, 0.02, 0.02),
	})
	if !a.Subset(b) {
		t.Error("a should be a subset of b")
	}
	if b.Subset(a) {
		t.Error("b should not be a subset of a")
	}
	if n := a.OverlapSize(b); n != 2 {
		t.Errorf("OverlapSize = %d, want 2", n)
	}
}

func TestValidOverlapDetectsConflict(t *testing.T) {
	a, _ := NewTracklet([]Detection{det("a", 0, 0, 0), det("b", 1, 0.01, 0.01)})
	conflicting, _ := NewTracklet([]Detection{det("x", 0, 0, 0), det("y", 1, 0.01, 0.01)})
	if a.ValidOverlap(conflicting) {
		t.Error("expected ValidOverlap to reject two different detections sharing an epoch")
	}
}

func TestOverlapsInTimeStrict(t *testing.T) {
	a, _ := NewTracklet([]Detection{det("a", 0, 0, 0), det("b", 1, 0, 0)})
	touching, _ := NewTracklet([]Detection{det("c", 1, 0, 0), det("d", 2, 0, 0)})
	if a.OverlapsInTime(touching) {
		t.Error("spans that only touch at a boundary instant should not overlap")
	}
	overlapping, _ := NewTracklet([]Detection{det("e", 0.5, 0, 0), det("f", 2, 0, 0)})
	if !a.OverlapsInTime(overlapping) {
		t.Error("expected overlapping spans to overlap")
	}
}

func TestCombineMergesAndDedups(t *testing.T) {
	a, _ := NewTracklet([]Detection{det("a", 0, 0, 0), det("b", 1, 0.01, 0.01)})
	b, _ := NewTracklet([]Detection{det("b", 1, 0.01, 0.01), det("c", 2, 0.02, 0.02)})
	c, err := a.Combine(b)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if len(c.Members) != 3 {
		t.Errorf("len(Members) = %d, want 3", len(c.Members))
	}
}

func TestSameDetectionSet(t *testing.T) {
	a, _ := NewTracklet([]Detection{det("a", 0, 0, 0), det("b", 1, 0.01, 0.01)})
	same, _ := NewTracklet([]Detection{det("b", 1, 0.01, 0.01), det("a", 0, 0, 0)})
	bigger, _ := NewTracklet([]Detection{
		det("a", 0, 0, 0), det("b", 1, 0.01, 0.01), det("c", 2, 0.02, 0.02),
	})
	if !a.SameDetectionSet(same) {
		t.Error("expected the same detections in a different construction order to match")
	}
	if a.SameDetectionSet(bigger) {
		t.Error("expected a tracklet with an extra detection not to match")
	}
}

func TestRAWrapAroundFit(t *testing.T) {
	// Object moving across the RA=0/2*pi seam: raw values jump from near
	// 2*pi down to near 0, but the fit should see a continuous track.
	members := []Detection{
		det("a", 0, 2*math.Pi-0.01, 0),
		det("b", 1, 0.01, 0),
	}
	tr, err := NewTracklet(members)
	if err != nil {
		t.Fatalf("NewTracklet: %v", err)
	}
	if tr.RA.V <= 0 {
		t.Errorf("expected positive RA velocity across the wrap, got %v", tr.RA.V)
	}
}
