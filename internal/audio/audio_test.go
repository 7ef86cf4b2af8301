package audio

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func constTrack(rate, ch int, sec float64, v float32) *Track {
	t := NewTrack(rate, ch, sec)
	for i := range t.Samples {
		t.Samples[i] = v
	}
	return t
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-4 }

func TestTrackBasics(t *testing.T) {
	tr := constTrack(100, 2, 3, 0.5)
	if tr.Frames() != 300 || !near(tr.Duration(), 3) {
		t.Fatalf("frames=%d duration=%v", tr.Frames(), tr.Duration())
	}
	tr.Truncate(1.5)
	if !near(tr.Duration(), 1.5) {
		t.Errorf("truncate: duration %v", tr.Duration())
	}
	tr.Truncate(10)
	if !near(tr.Duration(), 1.5) {
		t.Errorf("truncate past end changed duration to %v", tr.Duration())
	}
	tr.Gain(0.5)
	if tr.Samples[0] != 0.25 {
		t.Errorf("gain: got %v", tr.Samples[0])
	}
}

func TestFades(t *testing.T) {
	tr := constTrack(100, 1, 2, 1)
	tr.FadeIn(0.5).FadeOut(1)

	if tr.Samples[0] != 0 {
		t.Errorf("fade-in should start silent, got %v", tr.Samples[0])
	}
	if !near(float64(tr.Samples[25]), 0.5) {
		t.Errorf("fade-in midpoint = %v", tr.Samples[25])
	}
	if tr.Samples[60] != 1 {
		t.Errorf("untouched middle = %v", tr.Samples[60])
	}
	if last := tr.Samples[len(tr.Samples)-1]; last != 0 {
		t.Errorf("fade-out should end silent, got %v", last)
	}
	if !near(float64(tr.Samples[150]), 0.49) {
		t.Errorf("fade-out midpoint = %v", tr.Samples[150])
	}
}

func TestFadeClampedToDuration(t *testing.T) {
	tr := constTrack(100, 2, 0.5, 1)
	tr.FadeOut(10)
	// 50 frames: the ramp starts at 49/50
	if !near(float64(tr.Samples[0]), 0.98) {
		t.Errorf("fade should cover exactly the track, first sample %v", tr.Samples[0])
	}
	if tr.Samples[len(tr.Samples)-1] != 0 {
		t.Error("fade should end silent")
	}
}

func TestBGMFades(t *testing.T) {
	tests := []struct {
		dur     float64
		in, out float64
	}{
		{30, 1, 3},
		{5, 0.75, 1.5},
		{2, 0.3, 0.6},
	}
	for _, tt := range tests {
		in, out := BGMFades(tt.dur)
		if !near(in, tt.in) || !near(out, tt.out) {
			t.Errorf("BGMFades(%v) = %v, %v; want %v, %v", tt.dur, in, out, tt.in, tt.out)
		}
	}
}

func TestMix(t *testing.T) {
	orig := constTrack(100, 2, 10, 0.5)
	bgm := constTrack(100, 2, 20, 1)

	out, err := Mix(orig, bgm, MixOptions{OrigVolume: 0.8, BGMVolume: 0.5, Total: 10})
	if err != nil {
		t.Fatalf("Mix: %v", err)
	}
	if !near(out.Duration(), 10) {
		t.Errorf("mixed duration %v, want 10", out.Duration())
	}
	// middle: 0.5*0.8 + 1*0.5
	mid := out.Samples[500*2]
	if !near(float64(mid), 0.9) {
		t.Errorf("mixed sample = %v, want 0.9", mid)
	}
	// first frame: BGM starts silent
	if !near(float64(out.Samples[0]), 0.4) {
		t.Errorf("first sample = %v, want 0.4", out.Samples[0])
	}
	if orig.Samples[0] != 0.5 || bgm.Samples[0] != 1 || bgm.Duration() != 20 {
		t.Error("inputs were modified")
	}
}

func TestMixClamps(t *testing.T) {
	orig := constTrack(100, 1, 4, 0.9)
	bgm := constTrack(100, 1, 4, 0.9)
	out, err := Mix(orig, bgm, MixOptions{OrigVolume: 1, BGMVolume: 1, Total: 4})
	if err != nil {
		t.Fatalf("Mix: %v", err)
	}
	for i, s := range out.Samples {
		if s > 1 || s < -1 {
			t.Fatalf("sample %d = %v out of range", i, s)
		}
	}
	if out.Samples[200] != 1 {
		t.Errorf("expected clipped sum, got %v", out.Samples[200])
	}
}

func TestMixSingleSources(t *testing.T) {
	if out, err := Mix(nil, nil, MixOptions{}); out != nil || err != nil {
		t.Errorf("no sources should give nil, got %v, %v", out, err)
	}

	orig := constTrack(100, 2, 2, 0.5)
	out, _ := Mix(orig, nil, MixOptions{OrigVolume: 0.8, Total: 2})
	if out.Samples[10] != 0.5 {
		t.Errorf("original alone should pass through, got %v", out.Samples[10])
	}

	bgm := constTrack(100, 2, 60, 1)
	out, _ = Mix(nil, bgm, MixOptions{BGMVolume: 0.5, Total: 30})
	if !near(out.Duration(), 30) {
		t.Errorf("bgm not truncated: %v", out.Duration())
	}
	if !near(float64(out.Samples[1000*2]), 0.5) {
		t.Errorf("bgm gain not applied: %v", out.Samples[1000*2])
	}
}

func TestPlace(t *testing.T) {
	a := constTrack(10, 1, 1, 0.25)
	b := constTrack(10, 1, 1, 0.5)
	out, err := Place([]Placed{{Track: a}, {Track: b, At: 0.5}}, 2)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if out.Frames() != 20 {
		t.Fatalf("frames = %d, want 20", out.Frames())
	}
	want := []float32{0.25, 0.25, 0.25, 0.25, 0.25, 0.75, 0.75, 0.75, 0.75, 0.75, 0.5, 0.5, 0.5, 0.5, 0.5, 0, 0, 0, 0, 0}
	for i, w := range want {
		if out.Samples[i] != w {
			t.Errorf("sample %d = %v, want %v", i, out.Samples[i], w)
		}
	}

	_, err = Place([]Placed{{Track: a}, {Track: constTrack(20, 1, 1, 0)}}, 1)
	if !errors.Is(err, ErrFormatMismatch) {
		t.Errorf("expected ErrFormatMismatch, got %v", err)
	}
}

func TestF32LERoundTrip(t *testing.T) {
	tr := &Track{Rate: 48000, Channels: 2, Samples: []float32{0, 0.5, -0.5, 1, -1, 0.25}}
	var buf bytes.Buffer
	if err := tr.WriteF32LE(&buf); err != nil {
		t.Fatalf("WriteF32LE: %v", err)
	}
	if buf.Len() != 24 {
		t.Fatalf("wrote %d bytes, want 24", buf.Len())
	}
	// a dangling byte and a half frame are dropped
	buf.Write([]byte{0, 0, 0, 0, 1})

	got, err := ReadF32LE(&buf, 48000, 2)
	if err != nil {
		t.Fatalf("ReadF32LE: %v", err)
	}
	if len(got.Samples) != len(tr.Samples) {
		t.Fatalf("read %d samples, want %d", len(got.Samples), len(tr.Samples))
	}
	for i := range tr.Samples {
		if got.Samples[i] != tr.Samples[i] {
			t.Errorf("sample %d = %v, want %v", i, got.Samples[i], tr.Samples[i])
		}
	}
}
