/*
Package linktracklets assembles same-night asteroid observation pairs
("tracklets") into longer multi-night trajectories consistent with
bounded-acceleration kinematics.

Contents

  Program overview
  Algorithm outline
  The RA/Dec unit decision
  Package layout

Program overview

Input is a TrackletArray and the DetectionArray its members are drawn
from, plus a SearchParams. Output is a CandidateTrackArray: proposed
multi-tracklet combinations whose detections are kinematically
consistent under the polynomial fit of fit.go.

This package does no file I/O and knows nothing about the MPC 80-column
observation format; see internal/mpcio for a reference implementation of
that external boundary, and cmd/linktracklets for a command that wires it
together with this package and internal/report.

Algorithm outline

  1. Tracklets are indexed in a 6-dimensional KD-tree over
     (t, RA, Dec, vRA, vDec, brightness): internal/ttree.

  2. For every Tracklet used as a seed, a beam-limited search
     (internal/mht) walks forward (and, if requested, backward) through
     time, extending each surviving hypothesis with tree-pruned
     candidates and re-fitting (Tracklet.Combine) to test the combined
     residual against SearchParams.FitRD.

  3. Hypotheses of sufficient size are pooled across all seeds and run
     through consolidation (internal/consolidate): trust ordering,
     subset removal, then overlap-significance merging, tracked against
     an overlap index (internal/overlap) from detection to candidate
     track.

The RA/Dec unit decision

The source this package's algorithm is drawn from mixes RA in hours and
Dec in degrees, and is inconsistent about where a 15x correction factor
belongs: the single most bug-prone issue in the original. This package
sidesteps the question entirely: Detection.RA and Detection.Dec are both
unit.Angle, an angle-unit-agnostic radian value. There is no hours
convention anywhere in this package, so there is no scale factor to
apply, forget, or apply twice.

Package layout

  linktracklets                Detection, Tracklet, TrackletArray, LinkTracklets
  internal/geomath             RA wraparound and great-circle angular utilities
  internal/ttree               phase-space KD-tree (near-point, midpoint queries)
  internal/rdvv                secondary KD-tree and dual-tree all-pairs search
  internal/mht                 multi-hypothesis tracking search driver
  internal/overlap             detection -> candidate-track overlap index
  internal/consolidate         trust ordering, subset removal, overlap merge
  internal/mpcio               MPC-format ingestion (reference implementation)
  internal/report              text report formatting for the CLI
  cmd/linktracklets             command-line driver

-------------
Public domain.
*/
package linktracklets
