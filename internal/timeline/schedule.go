package timeline

import (
	"fmt"
	"math"
	"strings"
)

// Mode is the transition used between consecutive clips
type Mode string

const (
	Crossfade    Mode = "crossfade"
	FadeToBlack  Mode = "fadeToBlack"
	NoTransition Mode = "none"
)

// Modes lists the supported transitions
var Modes = []Mode{Crossfade, FadeToBlack, NoTransition}

// Fade duration bounds in seconds
const (
	MinFade     = 0.2
	MaxFade     = 1.5
	DefaultFade = 0.5
)

// crossfadeShare caps the overlap relative to the shortest clip
const crossfadeShare = 0.4

// ParseMode accepts the mode names case-insensitively, plus a few aliases
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "crossfade", "xfade":
		return Crossfade, nil
	case "fadetoblack", "fade-to-black", "fade_to_black", "black":
		return FadeToBlack, nil
	case "none", "cut":
		return NoTransition, nil
	default:
		return "", fmt.Errorf("unknown transition %q", s)
	}
}

// Schedule lays clips of the given durations on the global timeline. For
// crossfade consecutive clips overlap by the effective fade; the other modes
// play back to back. A single clip never overlaps.
func Schedule(durations []float64, mode Mode, fade float64) (starts []float64, total, effectiveFade float64) {
	n := len(durations)
	starts = make([]float64, n)
	if n == 0 {
		return starts, 0, 0
	}

	minDur := durations[0]
	for _, d := range durations[1:] {
		minDur = math.Min(minDur, d)
	}

	fd := 0.0
	if n > 1 && fade > 0 {
		switch mode {
		case Crossfade:
			fd = math.Min(fade, crossfadeShare*minDur)
		case FadeToBlack:
			fd = fade
		}
	}

	overlap := 0.0
	if mode == Crossfade {
		overlap = fd
	}
	for i := 1; i < n; i++ {
		starts[i] = starts[i-1] + durations[i-1] - overlap
	}
	total = starts[n-1] + durations[n-1]
	return starts, total, fd
}
