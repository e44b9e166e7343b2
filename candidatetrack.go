package linktracklets

// CandidateTrack is a Tracklet proposed by the search as a
// multi-tracklet trajectory. It carries nothing beyond Tracklet itself:
// spec.md §6 requires only an ordered detection-identifier list and
// fitted polynomial coefficients, which Tracklet already is.
type CandidateTrack = Tracklet

// CandidateTrackArray is the output of LinkTracklets, in final trust
// order (spec.md §4.6 step 4): most detections first, then lowest
// residual.
type CandidateTrackArray []CandidateTrack
