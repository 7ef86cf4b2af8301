// Package audio mixes the original soundtrack and background music as
// interleaved float32 PCM.
package audio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Defaults used by the encoder
const (
	DefaultRate     = 48000
	DefaultChannels = 2
)

// ErrFormatMismatch is returned when tracks with different layouts are combined
var ErrFormatMismatch = errors.New("audio: sample rate or channel mismatch")

// Track is interleaved float32 PCM
type Track struct {
	Rate     int
	Channels int
	Samples  []float32
}

// NewTrack allocates a silent track of the given duration
func NewTrack(rate, channels int, seconds float64) *Track {
	frames := int(math.Round(math.Max(seconds, 0) * float64(rate)))
	return &Track{Rate: rate, Channels: channels, Samples: make([]float32, frames*channels)}
}

// Frames returns the number of sample frames
func (t *Track) Frames() int {
	if t == nil || t.Channels <= 0 {
		return 0
	}
	return len(t.Samples) / t.Channels
}

// Duration in seconds
func (t *Track) Duration() float64 {
	if t == nil || t.Rate <= 0 {
		return 0
	}
	return float64(t.Frames()) / float64(t.Rate)
}

// Clone returns a deep copy
func (t *Track) Clone() *Track {
	out := *t
	out.Samples = append([]float32(nil), t.Samples...)
	return &out
}

// Gain scales every sample by v in place
func (t *Track) Gain(v float64) *Track {
	if v == 1 {
		return t
	}
	g := float32(v)
	for i := range t.Samples {
		t.Samples[i] *= g
	}
	return t
}

// Truncate drops everything after sec seconds
func (t *Track) Truncate(sec float64) *Track {
	frames := int(math.Round(math.Max(sec, 0) * float64(t.Rate)))
	if n := frames * t.Channels; n < len(t.Samples) {
		t.Samples = t.Samples[:n]
	}
	return t
}

// FadeIn applies a linear ramp from silence over the first sec seconds,
// clamped to the track duration
func (t *Track) FadeIn(sec float64) *Track {
	n := t.fadeFrames(sec)
	for f := 0; f < n; f++ {
		g := float32(f) / float32(n)
		for c := 0; c < t.Channels; c++ {
			t.Samples[f*t.Channels+c] *= g
		}
	}
	return t
}

// FadeOut applies a linear ramp to silence over the last sec seconds,
// clamped to the track duration
func (t *Track) FadeOut(sec float64) *Track {
	n := t.fadeFrames(sec)
	total := t.Frames()
	for f := 0; f < n; f++ {
		g := float32(n-1-f) / float32(n)
		base := (total - n + f) * t.Channels
		for c := 0; c < t.Channels; c++ {
			t.Samples[base+c] *= g
		}
	}
	return t
}

func (t *Track) fadeFrames(sec float64) int {
	if sec <= 0 {
		return 0
	}
	return min(t.Frames(), int(math.Round(sec*float64(t.Rate))))
}

// Clamp limits every sample to [-1, 1]
func (t *Track) Clamp() *Track {
	for i, s := range t.Samples {
		if s > 1 {
			t.Samples[i] = 1
		} else if s < -1 {
			t.Samples[i] = -1
		}
	}
	return t
}

// ReadF32LE reads raw little-endian float32 PCM until EOF
func ReadF32LE(r io.Reader, rate, channels int) (*Track, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	t := &Track{Rate: rate, Channels: channels}
	var buf [4]byte
	for {
		_, err := io.ReadFull(br, buf[:])
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read pcm: %w", err)
		}
		t.Samples = append(t.Samples, math.Float32frombits(binary.LittleEndian.Uint32(buf[:])))
	}
	// drop a trailing partial frame
	if extra := len(t.Samples) % max(channels, 1); extra != 0 {
		t.Samples = t.Samples[:len(t.Samples)-extra]
	}
	return t, nil
}

// WriteF32LE writes the samples as raw little-endian float32 PCM
func (t *Track) WriteF32LE(w io.Writer) error {
	bw := bufio.NewWriterSize(w, 64*1024)
	var buf [4]byte
	for _, s := range t.Samples {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(s))
		if _, err := bw.Write(buf[:]); err != nil {
			return fmt.Errorf("write pcm: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write pcm: %w", err)
	}
	return nil
}
