// Command linktracklets reads MPC 80-column observations, pairs them
// into same-night tracklets, runs the multi-hypothesis search, and
// prints the consolidated candidate tracks.
//
// Command-line handling follows digest2's own d2prog: a small flag set,
// a deferred exit.Handler so a panic anywhere in the pipeline becomes a
// clean error message instead of a stack trace, and "-" meaning stdin.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mops-go/linktracklets"
	"github.com/mops-go/linktracklets/internal/mpcio"
	"github.com/mops-go/linktracklets/internal/report"
	"github.com/soniakeys/exit"
)

const versionString = "linktracklets version 0.1 Go source."

func main() {
	defer exit.Handler()

	cl := parseCommandLine()

	f := os.Stdin
	if cl.fnObs != "-" {
		var err error
		f, err = os.Open(cl.fnObs)
		if err != nil {
			exit.Log(err)
		}
		defer f.Close()
	}

	dets, observers, err := mpcio.ReadObs80(f)
	if err != nil {
		exit.Log(err)
	}
	tracklets, err := mpcio.Pair(dets, observers)
	if err != nil {
		exit.Log(err)
	}

	params := linktracklets.DefaultParams()
	applyFlags(&params, cl)

	if cl.groups {
		reportGroups(tracklets, cl.v)
		return
	}

	tracks, stats, err := linktracklets.LinkTracklets(tracklets, dets, params)
	if err != nil {
		exit.Log(err)
	}

	if cl.v {
		fmt.Fprintf(os.Stderr, "%s\n", versionString)
		fmt.Fprintf(os.Stderr, "%d tracklets, %d seeds searched, %d hypotheses formed, %d dropped, %d candidate tracks\n",
			len(tracklets), stats.SeedsSearched, stats.HypothesesFormed, stats.HypothesesDropped, len(tracks))
	}

	if err := report.WriteTable(os.Stdout, tracks, report.DefaultOptions()); err != nil {
		exit.Log(err)
	}
}

// reportGroups runs the whole-catalog rdvv screening pass instead of the
// full beam search, for an operator who wants a quick look at which
// tracklets cluster before committing to a full LinkTracklets run.
func reportGroups(tracklets linktracklets.TrackletArray, verbose bool) {
	groups, stats, err := linktracklets.FindCandidateGroups(tracklets, linktracklets.DefaultGroupParams())
	if err != nil {
		exit.Log(err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "%s\n", versionString)
		fmt.Fprintf(os.Stderr, "%d tracklets, %d candidate groups, %d node pairs visited, %d pruned\n",
			len(tracklets), len(groups), stats.NodePairsVisited, stats.NodePairsPruned)
	}
	for _, g := range groups {
		fmt.Printf("%v\n", g.IDs)
	}
}

type commandLine struct {
	fnObs string

	fitRD, midRD, quadRD, minOverlap, maxAccel float64
	maxHyp, indivMaxHyp, minObs                int
	bidirectional, allowConflicts, groups      bool
	v                                          bool
}

func parseCommandLine() *commandLine {
	var cl commandLine
	def := linktracklets.DefaultParams()

	flag.Float64Var(&cl.fitRD, "fitrd", def.FitRD, "max mean-square residual of an accepted combined track")
	flag.Float64Var(&cl.midRD, "midrd", def.MidRD, "position tolerance for midpoint query")
	flag.Float64Var(&cl.quadRD, "quadrd", def.QuadRD, "position tolerance for near-point query")
	flag.IntVar(&cl.maxHyp, "maxhyp", def.MaxHyp, "per-seed beam width")
	flag.IntVar(&cl.indivMaxHyp, "indivmaxhyp", def.IndivMaxHyp, "per-extension candidate cap")
	flag.IntVar(&cl.minObs, "minobs", def.MinObs, "minimum detections for an output track")
	flag.BoolVar(&cl.bidirectional, "bidirectional", def.Bidirectional, "run a backward extension pass")
	flag.BoolVar(&cl.allowConflicts, "allowconflicts", def.AllowConflicts, "permit merging across same-epoch disagreements")
	flag.Float64Var(&cl.minOverlap, "minoverlap", def.MinOverlap, "overlap-merge significance threshold")
	flag.Float64Var(&cl.maxAccel, "maxaccel", def.MaxAccel, "kinematic acceleration cap used in pruning")
	flag.BoolVar(&cl.groups, "groups", false, "print rdvv candidate groups instead of running the full search")
	dv := flag.Bool("v", false, "print search statistics to stderr")
	flag.Usage = func() {
		os.Stderr.WriteString(`
Usage: linktracklets [options] <obsfile>    link observations in file
       linktracklets [options] -            link observations from stdin

`)
		flag.PrintDefaults()
	}
	flag.Parse()
	cl.v = *dv
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	cl.fnObs = flag.Arg(0)
	return &cl
}

func applyFlags(p *linktracklets.SearchParams, cl *commandLine) {
	p.FitRD = cl.fitRD
	p.MidRD = cl.midRD
	p.QuadRD = cl.quadRD
	p.MaxHyp = cl.maxHyp
	p.IndivMaxHyp = cl.indivMaxHyp
	p.MinObs = cl.minObs
	p.Bidirectional = cl.bidirectional
	p.AllowConflicts = cl.allowConflicts
	p.MinOverlap = cl.minOverlap
	p.MaxAccel = cl.maxAccel
}
