package audio

import "math"

// Background music envelope
const (
	MaxBGMFadeIn   = 1.0
	BGMFadeInFrac  = 0.15
	MaxBGMFadeOut  = 3.0
	BGMFadeOutFrac = 0.30
)

// Placed is a track positioned at At seconds on the global timeline
type Placed struct {
	Track *Track
	At    float64
}

// Place sums time-shifted tracks into one track of total seconds. All tracks
// must share rate and channel count; the first one defines them.
func Place(tracks []Placed, total float64) (*Track, error) {
	var ref *Track
	for _, p := range tracks {
		if p.Track != nil {
			ref = p.Track
			break
		}
	}
	if ref == nil {
		return nil, nil
	}

	out := NewTrack(ref.Rate, ref.Channels, total)
	for _, p := range tracks {
		if p.Track == nil {
			continue
		}
		if p.Track.Rate != ref.Rate || p.Track.Channels != ref.Channels {
			return nil, ErrFormatMismatch
		}
		offset := int(math.Round(math.Max(p.At, 0)*float64(ref.Rate))) * ref.Channels
		if offset >= len(out.Samples) {
			continue
		}
		dst := out.Samples[offset:]
		n := min(len(dst), len(p.Track.Samples))
		for i := 0; i < n; i++ {
			dst[i] += p.Track.Samples[i]
		}
	}
	return out.Clamp(), nil
}

// MixOptions are the levels applied by Mix
type MixOptions struct {
	OrigVolume float64
	BGMVolume  float64
	// Total is the video duration; BGM is cut to it
	Total float64
}

// BGMFades returns the fade-in and fade-out lengths for a BGM track of dur seconds
func BGMFades(dur float64) (in, out float64) {
	return math.Min(MaxBGMFadeIn, BGMFadeInFrac*dur), math.Min(MaxBGMFadeOut, BGMFadeOutFrac*dur)
}

// Mix combines the original audio with background music. The inputs are not
// modified. Returns nil when neither source is present.
func Mix(orig, bgm *Track, opts MixOptions) (*Track, error) {
	if bgm != nil && bgm.Frames() == 0 {
		bgm = nil
	}
	if orig != nil && orig.Frames() == 0 {
		orig = nil
	}

	var music *Track
	if bgm != nil {
		music = bgm.Clone()
		if opts.Total > 0 {
			music.Truncate(opts.Total)
		}
		in, out := BGMFades(music.Duration())
		music.FadeIn(in).FadeOut(out).Gain(opts.BGMVolume)
	}

	switch {
	case music == nil && orig == nil:
		return nil, nil
	case music == nil:
		return orig.Clone(), nil
	case orig == nil:
		return music.Clamp(), nil
	}

	voice := orig.Clone().Gain(opts.OrigVolume)
	total := math.Max(voice.Duration(), music.Duration())
	return Place([]Placed{{Track: voice}, {Track: music}}, total)
}
