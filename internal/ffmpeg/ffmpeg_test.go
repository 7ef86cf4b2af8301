package ffmpeg

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// skipIfNoFFmpeg skips the test if ffmpeg is not available
func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH - install with: brew install ffmpeg")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH - install with: brew install ffmpeg")
	}
}

// generateTestVideo renders a short lavfi test pattern with a sine tone
func generateTestVideo(t *testing.T, dir string, seconds int, size string) string {
	t.Helper()
	out := filepath.Join(dir, "source.mp4")
	dur := strconv.Itoa(seconds)
	cmd := exec.Command("ffmpeg", "-y", "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=duration="+dur+":size="+size+":rate=24",
		"-f", "lavfi", "-i", "sine=frequency=440:duration="+dur,
		"-pix_fmt", "yuv420p", "-shortest", out)
	if err := cmd.Run(); err != nil {
		t.Skipf("could not generate test video: %v", err)
	}
	return out
}

func TestFilterBuilder(t *testing.T) {
	fb := NewFilterBuilder()
	filter := fb.Scale(1920, 1080).FPS(30).Build()

	expected := "scale=1920:1080,fps=30.000000"
	if filter != expected {
		t.Errorf("expected %q, got %q", expected, filter)
	}
}

func TestFilterBuilderEmpty(t *testing.T) {
	fb := NewFilterBuilder()
	filter := fb.Scale(0, 100).FPS(0).ScaleWidth(0, -2).Build()

	if filter != "" {
		t.Errorf("expected empty string, got %q", filter)
	}
}

func TestFilterBuilderScaleWidth(t *testing.T) {
	if got := NewFilterBuilder().ScaleWidth(720, -2).Build(); got != "scale=720:-2" {
		t.Errorf("got %q", got)
	}
	if got := NewFilterBuilder().ScaleWidth(240, 7).FPS(24).Build(); got != "scale=240:-1,fps=24.000000" {
		t.Errorf("got %q", got)
	}
}

func TestDecodeArgs(t *testing.T) {
	args := decodeArgs(DecodeOptions{Input: "in.mp4", Start: 6, Duration: 5.5, Width: 320, Height: 180, FPS: 24})
	got := strings.Join(args, " ")

	for _, want := range []string{
		"-ss 6 -t 5.5 -i in.mp4",
		"-vf scale=320:180,fps=24.000000",
		"-f rawvideo -pix_fmt rgba pipe:1",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("decode args %q missing %q", got, want)
		}
	}
	if strings.Contains(strings.Join(decodeArgs(DecodeOptions{Input: "a.mp4"}), " "), "-ss") {
		t.Error("zero start should not seek")
	}
}

func TestEncodeArgs(t *testing.T) {
	opts := EncodeOptions{Output: "out.mp4", Width: 720, Height: 1280, FPS: 24}
	opts.applyDefaults()
	args := encodeArgs(opts)
	got := strings.Join(args, " ")

	for _, want := range []string{
		"-f rawvideo -pix_fmt rgba -s 720x1280 -r 24 -i pipe:0",
		"-c:v libx264 -preset medium -crf 23 -pix_fmt yuv420p",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("encode args %q missing %q", got, want)
		}
	}
	if args[len(args)-1] != "out.mp4" {
		t.Errorf("output must be last, got %q", args[len(args)-1])
	}
	if slices.Contains(args, "-c:a") {
		t.Error("no audio input should not select an audio codec")
	}

	opts.AudioPath = "mix.f32"
	got = strings.Join(encodeArgs(opts), " ")
	for _, want := range []string{
		"-f f32le -ar 48000 -ac 2 -i mix.f32",
		"-map 1:a:0 -c:a aac -shortest",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("encode args %q missing %q", got, want)
		}
	}
}

func TestPCMArgs(t *testing.T) {
	got := strings.Join(pcmArgs("bgm.mp3", PCMOptions{Rate: 48000, Channels: 2}), " ")
	want := "-i bgm.mp3 -vn -sn -f f32le -acodec pcm_f32le -ar 48000 -ac 2 pipe:1"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCompressAndThumbnailArgs(t *testing.T) {
	got := strings.Join(compressArgs("big.mov", "small.mp4", CompressOptions{}), " ")
	if !strings.Contains(got, "-vf scale=720:-2") || !strings.Contains(got, "-crf 22") {
		t.Errorf("unexpected compress args %q", got)
	}
	got = strings.Join(thumbnailArgs("a.mp4", 7.25, "t.jpg"), " ")
	if !strings.HasPrefix(got, "-ss 7.25 -i a.mp4 -frames:v 1 -vf scale=240:-1") {
		t.Errorf("unexpected thumbnail args %q", got)
	}
}

func TestParseProbe(t *testing.T) {
	raw := `{
		"format": {"duration": "12.480000", "bit_rate": "1200000"},
		"streams": [
			{"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080,
			 "r_frame_rate": "30000/1001", "side_data_list": [{"rotation": -90}]},
			{"codec_type": "audio", "codec_name": "aac", "sample_rate": "44100"}
		]
	}`
	info, err := parseProbe([]byte(raw))
	if err != nil {
		t.Fatalf("parseProbe: %v", err)
	}
	if d := info.Duration - 12480*time.Millisecond; d < -time.Microsecond || d > time.Microsecond {
		t.Errorf("duration = %v", info.Duration)
	}
	if info.FPS < 29.96 || info.FPS > 29.98 {
		t.Errorf("fps = %v", info.FPS)
	}
	if w, h := info.DisplaySize(); w != 1080 || h != 1920 {
		t.Errorf("display size = %dx%d, want 1080x1920", w, h)
	}
	if !info.HasAudio || info.SampleRate != 44100 {
		t.Errorf("audio not detected: %+v", info)
	}

	if _, err := parseProbe([]byte(`{"format": {}, "streams": []}`)); err == nil {
		t.Error("expected error for file without streams")
	}
}

func TestTailBufferSkipsProgress(t *testing.T) {
	b := newTailBuffer(2)
	for _, line := range []string{"frame=10", "first error", "out_time=00:00:01", "second error", "third error"} {
		b.add(line)
	}
	if got := b.String(); got != "second error\nthird error" {
		t.Errorf("got %q", got)
	}
}

func TestExecutorCreation(t *testing.T) {
	skipIfNoFFmpeg(t)

	logger := zerolog.New(os.Stderr)
	exec, err := New(logger, 4)
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	if exec.ffmpegPath == "" {
		t.Error("ffmpeg path is empty")
	}
	if exec.ffprobePath == "" {
		t.Error("ffprobe path is empty")
	}

	t.Logf("ffmpeg: %s", exec.ffmpegPath)
	t.Logf("ffprobe: %s", exec.ffprobePath)
}

func TestProbeInvalidFile(t *testing.T) {
	skipIfNoFFmpeg(t)

	exec, err := New(zerolog.New(os.Stderr), 2)
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	ctx := context.Background()

	if _, err := exec.Probe(ctx, "nonexistent.mp4"); err == nil {
		t.Error("Probe should fail for non-existent file")
	}

	invalidPath := filepath.Join(t.TempDir(), "invalid.txt")
	if err := os.WriteFile(invalidPath, []byte("not a video"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err = exec.Probe(ctx, invalidPath)
	if err == nil {
		t.Error("Probe should fail for invalid video file")
	}
	t.Logf("Error (expected): %v", err)
}

func TestRunReportsTail(t *testing.T) {
	skipIfNoFFmpeg(t)

	exec, err := New(zerolog.Nop(), 1)
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	err = exec.Run(context.Background(), RunOptions{Args: []string{"-i", "does-not-exist.mp4", "-f", "null", "-"}})
	if !IsExecError(err) {
		t.Fatalf("expected ExecError, got %v", err)
	}
	if !strings.Contains(err.Error(), "does-not-exist.mp4") {
		t.Errorf("error should carry ffmpeg log tail, got %q", err)
	}
}

func TestDecodeFrames(t *testing.T) {
	skipIfNoFFmpeg(t)

	src := generateTestVideo(t, t.TempDir(), 2, "320x240")
	exec, err := New(zerolog.Nop(), 2)
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}

	ctx := context.Background()
	r, err := exec.Decode(ctx, DecodeOptions{Input: src, Start: 0.5, Duration: 1, Width: 160, Height: 120, FPS: 24})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	defer r.Close()

	n := 0
	for {
		frame, err := r.Next()
		if err != nil {
			break
		}
		if frame.Bounds().Dx() != 160 || frame.Bounds().Dy() != 120 {
			t.Fatalf("frame %d has size %v", n, frame.Bounds())
		}
		n++
	}
	if n < 22 || n > 26 {
		t.Errorf("decoded %d frames for 1s at 24fps", n)
	}

	track, err := exec.DecodePCM(ctx, src, PCMOptions{Duration: 1})
	if err != nil {
		t.Fatalf("DecodePCM: %v", err)
	}
	if d := track.Duration(); d < 0.95 || d > 1.05 {
		t.Errorf("decoded %.3fs of audio, want ~1s", d)
	}
}

func TestDecodeEarlyClose(t *testing.T) {
	skipIfNoFFmpeg(t)

	src := generateTestVideo(t, t.TempDir(), 3, "320x240")
	exec, err := New(zerolog.Nop(), 1)
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	r, err := exec.Decode(context.Background(), DecodeOptions{Input: src, Width: 320, Height: 240})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, err := r.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("closing a running decoder should not fail: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
