// Package report formats a CandidateTrackArray as the text table the
// CLI driver prints, in the column-building style digest2's solve
// worker uses to assemble its output line: build a string column by
// column, falling back to a fixed-width placeholder when a value can't
// be computed, rather than a templated formatter.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mops-go/linktracklets"
	"github.com/soniakeys/sexagesimal"
	"github.com/soniakeys/unit"
	"golang.org/x/sys/unix"
)

// Options controls which columns WriteTable emits.
type Options struct {
	Headings bool
	RMS      bool // mean-square residual column
	NumObs   bool // detection-count column
}

// DefaultOptions matches digest2's own default of showing both headings
// and its diagnostic columns.
func DefaultOptions() Options {
	return Options{Headings: true, RMS: true, NumObs: true}
}

// terminalWidth returns the current stdout width, or a conservative
// default if it can't be determined (not a terminal, or the ioctl
// fails) — the same fallback behavior as any program that only uses
// terminal width as a hint, never a requirement.
func terminalWidth(fd int) int {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 {
		return 80
	}
	return int(ws.Col)
}

// WriteTable writes one line per CandidateTrack, in the order given
// (callers pass tracks in final trust order, spec.md §4.6 step 4's
// output order). Each line carries the track's position in the list,
// its member count and mean-square residual (when those columns are
// enabled), its fitted reference-epoch RA and Dec, and its member ID
// list as a trailing column, cut short with "..." when it would run
// past the terminal width.
func WriteTable(w io.Writer, tracks linktracklets.CandidateTrackArray, opt Options) error {
	width := terminalWidth(1) // stdout

	if opt.Headings {
		hl := "Track    "
		if opt.NumObs {
			hl += "Obs "
		}
		if opt.RMS {
			hl += "    RMS "
		}
		hl += "    RA           Dec          Members"
		if _, err := fmt.Fprintln(w, hl); err != nil {
			return err
		}
	}

	for i, t := range tracks {
		ra := sexagesimal.NewFmtHourAngle(unit.Angle(t.RA.X))
		dec := sexagesimal.NewFmtAngle(unit.Angle(t.Dec.X))

		line := fmt.Sprintf("%-8d ", i)
		if opt.NumObs {
			line += fmt.Sprintf("%3d ", len(t.Members))
		}
		if opt.RMS {
			line += fmt.Sprintf("%7.1e ", t.MeanSqResidual())
		}
		line += fmt.Sprintf("%-12s %-12s ", ra, dec)

		ids := t.IDs()
		members := strings.Join(ids, ",")
		if budget := width - len(line); budget > 3 && len(members) > budget {
			members = members[:budget-3] + "..."
		}
		line += members

		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
