package ttree

import "testing"

func TestBuildLeafCutoff(t *testing.T) {
	pts := []Point{
		{Index: 0, Coord: [NumDims]float64{0, 0, 0, 0, 0, 0}},
		{Index: 1, Coord: [NumDims]float64{1, 0, 0, 0, 0, 0}},
		{Index: 2, Coord: [NumDims]float64{2, 0, 0, 0, 0, 0}},
	}
	tree := Build(pts, Weights{1, 1, 1, 1, 1, 1}, 8)
	if !tree.Root.IsLeaf() {
		t.Fatal("expected a single leaf when len(pts) <= maxLeaf")
	}
	if len(tree.Root.Leaf) != 3 {
		t.Errorf("leaf holds %d points, want 3", len(tree.Root.Leaf))
	}
}

func TestBuildSplitsOnTimeFirst(t *testing.T) {
	pts := make([]Point, 0, 20)
	for i := 0; i < 20; i++ {
		pts = append(pts, Point{Index: i, Coord: [NumDims]float64{float64(i), 0, 0, 0, 0, 0}})
	}
	tree := Build(pts, TimeFirstWeights(1, 1, 1, 1, 1), 4)
	if tree.Root.IsLeaf() {
		t.Fatal("expected an internal split for 20 points with maxLeaf 4")
	}
	if tree.Root.SplitDim != DimTime {
		t.Errorf("SplitDim = %d, want DimTime (RA/Dec/etc. are all constant here)", tree.Root.SplitDim)
	}
}

func TestBuildDegenerateAllSamePointFallsBackToLeaf(t *testing.T) {
	pts := make([]Point, 10)
	for i := range pts {
		pts[i] = Point{Index: i, Coord: [NumDims]float64{1, 1, 1, 1, 1, 1}}
	}
	tree := Build(pts, Weights{1, 1, 1, 1, 1, 1}, 2)
	if !tree.Root.IsLeaf() {
		t.Fatal("expected a leaf fallback when every point is identical")
	}
	if len(tree.Root.Leaf) != 10 {
		t.Errorf("leaf holds %d points, want 10", len(tree.Root.Leaf))
	}
}
