package linktracklets

import "fmt"

// Kind identifies the class of error a Detection, Tracklet, or search
// operation can fail with. Only IllConditioned, EmptyTracklet, and
// InvalidParameter are ever returned as ordinary errors; the remaining
// kinds indicate a programming error and are raised as panics (see
// IndexOutOfBounds and TreeInvariantViolated below).
type Kind int

const (
	_ Kind = iota
	IllConditioned
	EmptyTracklet
	IndexOutOfBounds
	TreeInvariantViolated
	InvalidParameter
)

func (k Kind) String() string {
	switch k {
	case IllConditioned:
		return "IllConditioned"
	case EmptyTracklet:
		return "EmptyTracklet"
	case IndexOutOfBounds:
		return "IndexOutOfBounds"
	case TreeInvariantViolated:
		return "TreeInvariantViolated"
	case InvalidParameter:
		return "InvalidParameter"
	default:
		return "Unknown"
	}
}

// Error is the error value returned by data-driven failures: a fit
// attempted on detections that don't span time (IllConditioned), a
// Tracklet built from fewer than two detections (EmptyTracklet), or a
// SearchParams value outside its documented range (InvalidParameter).
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func newError(k Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// invariantPanic is raised for conditions that indicate a bug in this
// package rather than bad input: an out-of-range index into a
// TrackletArray or KD-tree, or a subtree whose bounds fail to envelop a
// point it is supposed to contain. Callers outside this module have no
// recourse for these; they are not wrapped in the Error type returned
// from the public API.
type invariantPanic struct {
	Kind Kind
	Msg  string
}

func (p invariantPanic) String() string {
	return fmt.Sprintf("%s: %s", p.Kind, p.Msg)
}

func panicIndexOutOfBounds(format string, args ...interface{}) {
	panic(invariantPanic{IndexOutOfBounds, fmt.Sprintf(format, args...)})
}

func panicTreeInvariant(format string, args ...interface{}) {
	panic(invariantPanic{TreeInvariantViolated, fmt.Sprintf(format, args...)})
}
