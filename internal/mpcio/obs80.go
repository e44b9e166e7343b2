// Package mpcio is a reference implementation of the external I/O
// boundary spec.md §6 deliberately excludes from the core: parsing MPC
// 80-column observation records into Detections, and pairing same-night
// Detections into the initial Tracklet set the search calls a Pairer.
//
// It imports the root linktracklets package; the dependency runs one
// way: linktracklets never imports mpcio.
package mpcio

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/mops-go/linktracklets"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/mpcformat"
	"github.com/soniakeys/unit"
)

// ParseObs80 parses one 80-column MPC-format observation line into a
// Detection. id is the caller-assigned unique identifier to give the
// Detection (spec.md's DetectionArray requires one); desig is the raw
// object designation read from the line, which callers typically use to
// group Detections before pairing and to set Detection.Label.
//
// Only ground-based optical observations (columns 15 not 'S' or 's')
// are handled; satellite-offset continuation lines are rejected as a
// parse error, matching the scope of the original mpc.ParseObs80 this
// is grounded on.
func ParseObs80(line80 string, id string) (d linktracklets.Detection, desig string, observatory string, err error) {
	if len(line80) != 80 {
		return linktracklets.Detection{}, "", "", fmt.Errorf("mpcio: ParseObs80 requires 80 characters, got %d", len(line80))
	}
	if line80[14] == 'S' || line80[14] == 's' {
		return linktracklets.Detection{}, "", "", fmt.Errorf("mpcio: satellite observations not supported")
	}

	desig = strings.TrimSpace(line80[:12])

	mjd, err := parseDate(line80[15:32])
	if err != nil {
		return linktracklets.Detection{}, "", "", fmt.Errorf("mpcio: invalid date %q: %w", line80[15:32], err)
	}

	ra, err := parseRA(line80[32:44])
	if err != nil {
		return linktracklets.Detection{}, "", "", fmt.Errorf("mpcio: invalid RA %q: %w", line80[32:44], err)
	}
	dec, err := parseDec(line80[44:56])
	if err != nil {
		return linktracklets.Detection{}, "", "", fmt.Errorf("mpcio: invalid Dec %q: %w", line80[44:56], err)
	}

	var mag float64
	if ts := strings.TrimSpace(line80[65:70]); ts != "" {
		mag, err = strconv.ParseFloat(ts, 64)
		if err != nil {
			return linktracklets.Detection{}, "", "", fmt.Errorf("mpcio: invalid magnitude %q: %w", ts, err)
		}
		switch line80[70] {
		case 'V':
		case 'B':
			mag -= .8
		default:
			mag += .4
		}
	}

	observatory = strings.TrimSpace(line80[77:80])

	return linktracklets.Detection{
		ID:    id,
		Epoch: mjd,
		RA:    ra,
		Dec:   dec,
		Mag:   mag,
		Label: desig,
	}, desig, observatory, nil
}

// parseRA reads the sexagesimal hours-minutes-seconds RA field (columns
// 33-44 of an 80-column record, 0-indexed 32:44) and returns it as a
// unit.Angle. Both RA and Dec end up in the same radian-valued type, so
// no 15x hours-to-degrees correction is carried anywhere past this
// function; see linktracklets' package doc for the rationale.
func parseRA(field string) (unit.Angle, error) {
	h, err := strconv.Atoi(strings.TrimSpace(field[0:2]))
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(strings.TrimSpace(field[3:5]))
	if err != nil {
		return 0, err
	}
	s, err := strconv.ParseFloat(strings.TrimSpace(field[6:]), 64)
	if err != nil {
		return 0, err
	}
	rad := (float64(h*3600+m*60) + s) * math.Pi / (12 * 3600)
	return unit.Angle(rad), nil
}

// parseDec reads the signed sexagesimal degrees-minutes-seconds Dec
// field (columns 45-56, 0-indexed 44:56).
func parseDec(field string) (unit.Angle, error) {
	sign := field[0]
	d, err := strconv.Atoi(strings.TrimSpace(field[1:3]))
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(strings.TrimSpace(field[4:6]))
	if err != nil {
		return 0, err
	}
	s, err := strconv.ParseFloat(strings.TrimSpace(field[7:]), 64)
	if err != nil {
		return 0, err
	}
	rad := (float64(d*3600+m*60) + s) * math.Pi / (180 * 3600)
	if sign == '-' {
		rad = -rad
	}
	return unit.Angle(rad), nil
}

// modifiedJulianDateOffset is JD - MJD, the standard 1858-11-17 epoch
// offset (meeus/v3/julian works in full Julian Date).
const modifiedJulianDateOffset = 2400000.5

// parseDate reads the "YYYY MM DD.dddddd" date field (columns 16-32,
// 0-indexed 15:32) and returns its Modified Julian Date, converting
// through julian.CalendarGregorianToJD rather than a hand-rolled
// Julian day number formula.
func parseDate(field string) (float64, error) {
	year, err := strconv.Atoi(field[:4])
	if err != nil {
		return 0, err
	}
	month, err := strconv.Atoi(field[5:7])
	if err != nil {
		return 0, err
	}
	day, err := strconv.ParseFloat(strings.TrimSpace(field[8:]), 64)
	if err != nil {
		return 0, err
	}
	jd := julian.CalendarGregorianToJD(year, month, day)
	return jd - modifiedJulianDateOffset, nil
}

// ReadObs80 reads a stream of 80-column MPC records, skipping any line
// that fails to parse or is the wrong length, exactly as the original
// mpc.SplitTracklets quietly drops unparseable lines. It returns every
// successfully parsed Detection together with the raw per-Detection
// observer label FindTrackletsIndex groups by (mpcformat.Observer()),
// which ParseObs80 sets from the observatory code. A line longer than
// 1024 bytes is not skipped: it ends the read with an error.
func ReadObs80(r io.Reader) (linktracklets.DetectionArray, []string, error) {
	var dets linktracklets.DetectionArray
	var observers []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 256), 1024)
	n := 0
	for sc.Scan() {
		line := sc.Text()
		if len(line) != 80 {
			continue
		}
		id := fmt.Sprintf("obs%d", n)
		d, _, observatory, err := ParseObs80(line, id)
		if err != nil {
			continue
		}
		dets = append(dets, d)
		observers = append(observers, observatory)
		n++
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("mpcio: reading observations: %w", err)
	}
	return dets, observers, nil
}

// splitter adapts a Detection and its observer label to
// mpcformat.TrackletSplitter.
type splitter struct {
	d linktracklets.Detection
	o string
}

func (s splitter) MJD() float64     { return s.d.Epoch }
func (s splitter) Observer() string { return s.o }

// Pair groups detections into same-object, same-night Tracklets using
// mpcformat.FindTrackletsIndex's observer/time-gap heuristic, then fits
// each group with linktracklets.NewTracklet. Groups that fail to fit
// (fewer than two members after grouping, or an IllConditioned single
// epoch) are silently dropped, matching ReadObs80 and the original
// mpc.sendValid's tolerance for noisy input.
func Pair(dets linktracklets.DetectionArray, observers []string) (linktracklets.TrackletArray, error) {
	if len(dets) != len(observers) {
		return nil, fmt.Errorf("mpcio: Pair requires one observer label per detection, got %d detections and %d labels", len(dets), len(observers))
	}
	splitters := make([]mpcformat.TrackletSplitter, len(dets))
	for i, d := range dets {
		splitters[i] = splitter{d: d, o: observers[i]}
	}
	groups := mpcformat.FindTrackletsIndex(splitters)

	var out linktracklets.TrackletArray
	for _, idx := range groups {
		if len(idx) < 2 {
			continue
		}
		members := make([]linktracklets.Detection, len(idx))
		for i, di := range idx {
			members[i] = dets[di]
		}
		t, err := linktracklets.NewTracklet(members)
		if err != nil {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}
