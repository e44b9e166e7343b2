// Package overlap implements the detection-index to candidate-track
// overlap index of spec.md §3/§4.6: a map from a detection's position in
// the DetectionArray to the set of accepted-track slots that claim it,
// kept current as consolidate.Run accepts, replaces, and merges tracks.
//
// The index is generic over the track type so it carries no dependency
// on the root package's Tracklet, avoiding an import cycle the same way
// internal/ttree decouples itself with a plain Point type.
package overlap

// Ops supplies the one piece of track-specific behavior the index
// needs: the detection indices (positions in the caller's
// DetectionArray) a track claims.
type Ops[T any] struct {
	DetIndices func(T) []int
}

// Index tracks a growing set of accepted tracks, keyed by the detection
// indices they claim. Slot numbers are stable once assigned; Add always
// appends a new slot, Replace overwrites one in place.
type Index[T any] struct {
	ops   Ops[T]
	slots []T
	byDet map[int][]int // detection index -> slot indices
}

// New returns an empty Index.
func New[T any](ops Ops[T]) *Index[T] {
	return &Index[T]{ops: ops, byDet: make(map[int][]int)}
}

// Add inserts track as a new slot and returns its slot index.
func (idx *Index[T]) Add(track T) int {
	slot := len(idx.slots)
	idx.slots = append(idx.slots, track)
	for _, d := range idx.ops.DetIndices(track) {
		idx.byDet[d] = append(idx.byDet[d], slot)
	}
	return slot
}

// Replace overwrites the track at slot with a new value (e.g. the
// result of a merge), removing the old detection-index references and
// installing the new ones.
func (idx *Index[T]) Replace(slot int, track T) {
	old := idx.slots[slot]
	for _, d := range idx.ops.DetIndices(old) {
		idx.byDet[d] = removeSlot(idx.byDet[d], slot)
	}
	idx.slots[slot] = track
	for _, d := range idx.ops.DetIndices(track) {
		idx.byDet[d] = append(idx.byDet[d], slot)
	}
}

func removeSlot(slots []int, target int) []int {
	out := slots[:0]
	for _, s := range slots {
		if s != target {
			out = append(out, s)
		}
	}
	return out
}

// Get returns the track currently occupying slot.
func (idx *Index[T]) Get(slot int) T { return idx.slots[slot] }

// CandidatesFor returns the distinct slot indices of every live track
// sharing at least one detection index with track, excluding duplicates.
func (idx *Index[T]) CandidatesFor(track T) []int {
	seen := make(map[int]bool)
	var out []int
	for _, d := range idx.ops.DetIndices(track) {
		for _, slot := range idx.byDet[d] {
			if !seen[slot] {
				seen[slot] = true
				out = append(out, slot)
			}
		}
	}
	return out
}

// All returns every accepted track, in slot order.
func (idx *Index[T]) All() []T {
	return append([]T(nil), idx.slots...)
}

// Len is the number of accepted slots (including any later replaced).
func (idx *Index[T]) Len() int { return len(idx.slots) }
