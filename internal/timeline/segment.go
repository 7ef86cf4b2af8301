// Package timeline builds the Pass 1 base track: it cuts sources into
// segments, turns photos into Ken Burns slides and joins clips with a
// transition into one continuous frame function.
package timeline

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// ErrNoUsableSources is returned when no source yields a single segment
var ErrNoUsableSources = errors.New("timeline: no usable sources")

// Segment is a selected [Start, End) range of one source, in seconds
type Segment struct {
	SourceIndex int     `json:"source_index" yaml:"source_index"`
	Start       float64 `json:"start" yaml:"start"`
	End         float64 `json:"end" yaml:"end"`
}

// Duration returns End - Start
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Mid returns the segment midpoint, used for preview thumbnails
func (s Segment) Mid() float64 {
	return s.Start + s.Duration()/2
}

func (s Segment) String() string {
	return fmt.Sprintf("src %d [%.1f-%.1fs]", s.SourceIndex, s.Start, s.End)
}

// CutOptions bounds the segment lengths produced by SmartCut
type CutOptions struct {
	MinSeg float64
	MaxSeg float64
	// Floor is the shortest source that is used at all
	Floor float64
}

// DefaultCutOptions returns the standard 4-6s windows with a 2s floor
func DefaultCutOptions() CutOptions {
	return CutOptions{MinSeg: 4, MaxSeg: 6, Floor: 2}
}

// CutResult is the outcome of SmartCut
type CutResult struct {
	Segments []Segment
	// Skipped lists the indices of sources shorter than Floor
	Skipped []int
	Total   float64
}

// SmartCut windows every source into MaxSeg-long candidates, shuffles the
// pool with rng and keeps segments until their total reaches target.
// Sources shorter than MinSeg are taken whole.
func SmartCut(durations []float64, target float64, opts CutOptions, rng *rand.Rand) (*CutResult, error) {
	if opts.MaxSeg <= 0 {
		opts = DefaultCutOptions()
	}
	if opts.MinSeg > opts.MaxSeg {
		opts.MinSeg = opts.MaxSeg
	}

	res := &CutResult{}
	var pool []Segment
	for idx, dur := range durations {
		switch {
		case dur < opts.Floor || dur <= 0:
			res.Skipped = append(res.Skipped, idx)
		case dur < opts.MinSeg:
			pool = append(pool, Segment{SourceIndex: idx, Start: 0, End: floor2(dur)})
		default:
			for t := 0.0; t < dur-1.0; t += opts.MaxSeg {
				end := math.Min(t+opts.MaxSeg, dur)
				if round2(end-t) < opts.MinSeg {
					break
				}
				pool = append(pool, Segment{SourceIndex: idx, Start: round2(t), End: floor2(end)})
			}
		}
	}

	if len(pool) == 0 {
		return res, ErrNoUsableSources
	}

	if rng != nil {
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	}

	for _, s := range pool {
		if res.Total >= target {
			break
		}
		res.Segments = append(res.Segments, s)
		res.Total += s.Duration()
	}
	return res, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// floor2 keeps segment ends inside the source
func floor2(v float64) float64 {
	return math.Floor(v*100+1e-9) / 100
}
