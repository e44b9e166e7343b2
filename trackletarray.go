package linktracklets

// TrackletArray is an ordered, index-addressable collection of
// Tracklets, the global index space the search, the KD-trees, and the
// overlap index all reference by integer position (spec.md §3).
type TrackletArray []Tracklet

// at returns the Tracklet at i, panicking with IndexOutOfBounds if i is
// out of range: an out-of-bounds index into a TrackletArray indicates a
// bug in this package, not a data problem a caller can recover from.
func (a TrackletArray) at(i int) Tracklet {
	if i < 0 || i >= len(a) {
		panicIndexOutOfBounds("TrackletArray index %d, length %d", i, len(a))
	}
	return a[i]
}
