package ttree

import (
	"math"
	"math/rand"
	"testing"
)

func buildRandomTree(n int, seed int64) ([]Point, *Tree) {
	r := rand.New(rand.NewSource(seed))
	pts := make([]Point, n)
	for i := range pts {
		pts[i] = Point{
			Index: i,
			Coord: [NumDims]float64{
				r.Float64() * 10,             // time
				r.Float64() * 2 * math.Pi,    // RA
				(r.Float64() - 0.5) * math.Pi, // Dec
				(r.Float64() - 0.5) * 0.2,     // vRA
				(r.Float64() - 0.5) * 0.2,     // vDec
				r.Float64() * 10,             // brightness
			},
		}
	}
	w := Weights{1, 1, 1, 1, 1, 1}
	return pts, Build(pts, w, 4)
}

func naiveNearPoint(pts []Point, q NearPointQuery) []int {
	var out []int
	for _, p := range pts {
		if nearPointAccept(p, q) {
			out = append(out, p.Index)
		}
	}
	return out
}

func sameSet(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	m := make(map[int]int)
	for _, v := range a {
		m[v]++
	}
	for _, v := range b {
		m[v]--
	}
	for _, c := range m {
		if c != 0 {
			return false
		}
	}
	return true
}

func TestNearPointMatchesNaiveScan(t *testing.T) {
	pts, tree := buildRandomTree(300, 1)
	r := rand.New(rand.NewSource(2))
	for trial := 0; trial < 50; trial++ {
		q := NearPointQuery{
			Coord: [NumDims]float64{
				r.Float64() * 10, r.Float64() * 2 * math.Pi, (r.Float64() - 0.5) * math.Pi,
				(r.Float64() - 0.5) * 0.2, (r.Float64() - 0.5) * 0.2, r.Float64() * 10,
			},
			Tau: [NumDims]float64{0.5, 0.1, 0.1, 0.05, 0.05, 1},
		}
		got := tree.NearPoint(q, nil)
		want := naiveNearPoint(pts, q)
		if !sameSet(got, want) {
			t.Fatalf("trial %d: tree returned %v, naive scan returned %v", trial, got, want)
		}
	}
}

func TestNearPointIgnoresNegativeTau(t *testing.T) {
	pts, tree := buildRandomTree(100, 3)
	q := NearPointQuery{
		Coord: pts[0].Coord,
		Tau:   [NumDims]float64{-1, -1, -1, -1, -1, -1},
	}
	got := tree.NearPoint(q, nil)
	if len(got) != len(pts) {
		t.Errorf("all-ignored query should match every point; got %d of %d", len(got), len(pts))
	}
}

func naiveMidpoint(pts []Point, q MidpointQuery) []int {
	var out []int
	for _, p := range pts {
		if midpointAccept(p, q) {
			out = append(out, p.Index)
		}
	}
	return out
}

func TestMidpointMatchesNaiveScan(t *testing.T) {
	pts, tree := buildRandomTree(300, 4)
	r := rand.New(rand.NewSource(5))
	for trial := 0; trial < 50; trial++ {
		t0 := r.Float64() * 10
		q := MidpointQuery{
			T: t0, RA: r.Float64() * 2 * math.Pi, Dec: (r.Float64() - 0.5) * math.Pi,
			VRA: (r.Float64() - 0.5) * 0.2, VDec: (r.Float64() - 0.5) * 0.2,
			TS: t0 - 3, TE: t0 + 3,
			TauRA: 0.05, TauDec: 0.05,
			AlphaRA: 0.1, AlphaDec: 0.1,
		}
		got := tree.Midpoint(q, nil)
		want := naiveMidpoint(pts, q)
		if !sameSet(got, want) {
			t.Fatalf("trial %d: tree returned %v, naive scan returned %v", trial, got, want)
		}
	}
}

func TestMidpointRejectsOwnEpoch(t *testing.T) {
	pts := []Point{
		{Index: 0, Coord: [NumDims]float64{1, 0, 0, 0, 0, 0}},
	}
	tree := Build(pts, Weights{1, 1, 1, 1, 1, 1}, 4)
	q := MidpointQuery{
		T: 1, RA: 0, Dec: 0, VRA: 0, VDec: 0,
		TS: 0, TE: 2, TauRA: 1, TauDec: 1, AlphaRA: -1, AlphaDec: -1,
	}
	got := tree.Midpoint(q, nil)
	if len(got) != 0 {
		t.Errorf("a candidate at the same time as the query should never match, got %v", got)
	}
}

func TestStatsNilSafe(t *testing.T) {
	var s *Stats
	s.visit()
	s.prune()
	s.leaf()
}
