package linktracklets

import "testing"

func TestDetectionIndexMapsIDToPosition(t *testing.T) {
	da := DetectionArray{
		det("a", 0, 0, 0),
		det("b", 1, 0.01, 0.01),
		det("c", 2, 0.02, 0.02),
	}
	idx := detectionIndex(da)
	for i, d := range da {
		if idx[d.ID] != i {
			t.Errorf("detectionIndex[%q] = %d, want %d", d.ID, idx[d.ID], i)
		}
	}
}

func TestDetectionIndexIgnoresOrderOfConstruction(t *testing.T) {
	da := DetectionArray{det("x", 5, 0, 0), det("y", 1, 0, 0)}
	idx := detectionIndex(da)
	if len(idx) != 2 || idx["x"] != 0 || idx["y"] != 1 {
		t.Errorf("got %v, want {x:0 y:1} (array position, not epoch order)", idx)
	}
}

type stubCatalog struct{ da DetectionArray }

func (c stubCatalog) Detections() DetectionArray { return c.da }

func TestCatalogInterfaceSatisfiedByStub(t *testing.T) {
	var c Catalog = stubCatalog{da: DetectionArray{det("a", 0, 0, 0)}}
	if len(c.Detections()) != 1 {
		t.Errorf("Detections() returned %d entries, want 1", len(c.Detections()))
	}
}
