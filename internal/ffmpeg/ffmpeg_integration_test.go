package ffmpeg_test

import (
	"context"
	"image"
	"image/color"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/keagan/promoreel/internal/audio"
	"github.com/keagan/promoreel/internal/ffmpeg"
	"github.com/rs/zerolog"
)

// local helper (cannot use unexported ones from ffmpeg package)
func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH - install with: brew install ffmpeg")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH - install with: brew install ffmpeg")
	}
}

func TestIntegration_EncodeProbeDecode(t *testing.T) {
	skipIfNoFFmpeg(t)

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}).With().Str("test", "integration_encode").Logger()

	e, err := ffmpeg.New(logger, 2)
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}

	dir := t.TempDir()
	pcmPath := filepath.Join(dir, "tone.f32")
	outPath := filepath.Join(dir, "out.mp4")

	// 2s of a quiet constant signal
	tone := audio.NewTrack(48000, 2, 2)
	for i := range tone.Samples {
		tone.Samples[i] = 0.1
	}
	f, err := os.Create(pcmPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := tone.WriteF32LE(f); err != nil {
		t.Fatal(err)
	}
	f.Close()

	ctx := context.Background()
	start := time.Now()
	enc, err := e.Encode(ctx, ffmpeg.EncodeOptions{
		Output:    outPath,
		Width:     64,
		Height:    112,
		FPS:       24,
		AudioPath: pcmPath,
		Preset:    "ultrafast",
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for i := 0; i < 48; i++ {
		frame := image.NewRGBA(image.Rect(0, 0, 64, 112))
		shade := uint8(i * 5)
		for p := 0; p < len(frame.Pix); p += 4 {
			frame.Pix[p], frame.Pix[p+1], frame.Pix[p+2], frame.Pix[p+3] = shade, 100, 200, 255
		}
		if err := enc.WriteFrame(frame); err != nil {
			enc.Abort()
			t.Fatalf("WriteFrame %d: %v", i, err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	t.Logf("encoded %d frames in %v", enc.Frames(), time.Since(start))

	info, err := e.Probe(ctx, outPath)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if info.Width != 64 || info.Height != 112 {
		t.Errorf("encoded size %dx%d", info.Width, info.Height)
	}
	if !info.HasAudio {
		t.Error("expected an audio stream")
	}
	if s := info.Seconds(); s < 1.9 || s > 2.2 {
		t.Errorf("duration %.2fs, want ~2s", s)
	}

	r, err := e.Decode(ctx, ffmpeg.DecodeOptions{Input: outPath, Width: 64, Height: 112})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	defer r.Close()
	first, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	c := first.RGBAAt(32, 56)
	if !near(c, color.RGBA{0, 100, 200, 255}, 12) {
		t.Errorf("first decoded pixel %v far from source", c)
	}
}

func TestIntegration_EncoderAbortRemovesOutput(t *testing.T) {
	skipIfNoFFmpeg(t)

	e, err := ffmpeg.New(zerolog.Nop(), 1)
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	out := filepath.Join(t.TempDir(), "partial.mp4")
	enc, err := e.Encode(context.Background(), ffmpeg.EncodeOptions{Output: out, Width: 32, Height: 32, Preset: "ultrafast"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := enc.WriteFrame(image.NewRGBA(image.Rect(0, 0, 32, 32))); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if err := enc.WriteFrame(image.NewRGBA(image.Rect(0, 0, 16, 16))); err == nil {
		t.Error("expected size mismatch error")
	}
	enc.Abort()
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("partial output still exists: %v", err)
	}
}

func near(a, b color.RGBA, tol int) bool {
	d := func(x, y uint8) int {
		if x > y {
			return int(x - y)
		}
		return int(y - x)
	}
	return d(a.R, b.R) <= tol && d(a.G, b.G) <= tol && d(a.B, b.B) <= tol
}
