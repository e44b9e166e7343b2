package linktracklets

// Stats accumulates search diagnostics. It replaces the original C
// program's process-wide rdvv_count/t_tree_count counters (spec.md §9)
// with an explicit struct threaded through the query interface, so
// concurrent seed-parallel searches (spec.md §5) don't share mutable
// global state.
type Stats struct {
	NodesVisited      int64
	NodesPruned       int64
	LeavesScanned     int64
	HypothesesFormed  int64
	HypothesesDropped int64
	SeedsSearched     int64
}

// Add accumulates o's counters into s.
func (s *Stats) Add(o Stats) {
	s.NodesVisited += o.NodesVisited
	s.NodesPruned += o.NodesPruned
	s.LeavesScanned += o.LeavesScanned
	s.HypothesesFormed += o.HypothesesFormed
	s.HypothesesDropped += o.HypothesesDropped
	s.SeedsSearched += o.SeedsSearched
}
