package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strconv"
)

// EncodeOptions configures an Encoder
type EncodeOptions struct {
	Output string
	Width  int
	Height int
	FPS    float64
	// AudioPath is an optional raw f32le PCM file muxed as AAC
	AudioPath     string
	AudioRate     int
	AudioChannels int
	CRF           int
	Preset        string
	PixFmt        string
	ProgressFunc  ProgressFunc
}

func (o *EncodeOptions) applyDefaults() {
	if o.FPS <= 0 {
		o.FPS = DefaultFPS
	}
	if o.CRF == 0 {
		o.CRF = DefaultCRF
	}
	if o.Preset == "" {
		o.Preset = DefaultPreset
	}
	if o.PixFmt == "" {
		o.PixFmt = DefaultPixFmt
	}
	if o.AudioRate <= 0 {
		o.AudioRate = DefaultSampleRate
	}
	if o.AudioChannels <= 0 {
		o.AudioChannels = DefaultChannels
	}
}

// encodeArgs builds the arguments for encoding raw RGBA frames from stdin
func encodeArgs(opts EncodeOptions) []string {
	args := []string{
		"-f", "rawvideo",
		"-pix_fmt", rawPixFmt,
		"-s", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-r", strconv.FormatFloat(opts.FPS, 'f', -1, 64),
		"-i", "pipe:0",
	}
	if opts.AudioPath != "" {
		args = append(args,
			"-f", rawAudioFormat,
			"-ar", strconv.Itoa(opts.AudioRate),
			"-ac", strconv.Itoa(opts.AudioChannels),
			"-i", opts.AudioPath,
		)
	}

	args = append(args,
		"-map", "0:v:0",
		"-c:v", DefaultVideoCodec,
		"-preset", opts.Preset,
		"-crf", strconv.Itoa(opts.CRF),
		"-pix_fmt", opts.PixFmt,
	)
	if opts.AudioPath != "" {
		args = append(args, "-map", "1:a:0", "-c:a", DefaultAudioCodec, "-shortest")
	}
	return append(args, "-movflags", "+faststart", opts.Output)
}

// Encoder writes RGBA frames into an H.264 file through an ffmpeg subprocess
type Encoder struct {
	opts    EncodeOptions
	pw      *io.PipeWriter
	bw      *bufio.Writer
	done    chan error
	cancel  context.CancelFunc
	frames  int
	closed  bool
	aborted bool
}

// Encode starts an encoder. Frames must be exactly Width×Height.
func (e *Executor) Encode(ctx context.Context, opts EncodeOptions) (*Encoder, error) {
	if opts.Output == "" {
		return nil, fmt.Errorf("output path is required")
	}
	if opts.Width <= 0 || opts.Height <= 0 || opts.Width%2 != 0 || opts.Height%2 != 0 {
		return nil, fmt.Errorf("encode size %dx%d must be positive and even", opts.Width, opts.Height)
	}
	opts.applyDefaults()

	e.logger.Info().
		Str("output", opts.Output).
		Int("width", opts.Width).
		Int("height", opts.Height).
		Float64("fps", opts.FPS).
		Bool("audio", opts.AudioPath != "").
		Msg("starting encoder")

	ctx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()
	enc := &Encoder{
		opts:   opts,
		pw:     pw,
		bw:     bufio.NewWriterSize(pw, opts.Width*opts.Height*bytesPerPixel),
		done:   make(chan error, 1),
		cancel: cancel,
	}

	go func() {
		err := e.Run(ctx, RunOptions{
			Args:            encodeArgs(opts),
			Stdin:           pr,
			ProgressHandler: opts.ProgressFunc,
			LogHandler: func(line string) {
				e.logger.Trace().Str("ffmpeg", line).Msg("encode output")
			},
		})
		// unblock writers if ffmpeg exits early
		_ = pr.CloseWithError(errEncoderExited)
		enc.done <- err
	}()
	return enc, nil
}

var errEncoderExited = errors.New("encoder exited")

// WriteFrame implements compositor.FrameSink
func (enc *Encoder) WriteFrame(img *image.RGBA) error {
	if enc.closed {
		return fmt.Errorf("encoder is closed")
	}
	b := img.Bounds()
	if b.Dx() != enc.opts.Width || b.Dy() != enc.opts.Height {
		return fmt.Errorf("frame %d is %dx%d, encoder expects %dx%d",
			enc.frames, b.Dx(), b.Dy(), enc.opts.Width, enc.opts.Height)
	}
	row := b.Dx() * bytesPerPixel
	for y := 0; y < b.Dy(); y++ {
		off := y * img.Stride
		if _, err := enc.bw.Write(img.Pix[off : off+row]); err != nil {
			return enc.failure(err)
		}
	}
	enc.frames++
	return nil
}

// failure prefers the process error over the pipe error it caused
func (enc *Encoder) failure(err error) error {
	if errors.Is(err, errEncoderExited) {
		enc.closed = true
		if runErr := <-enc.done; runErr != nil {
			return fmt.Errorf("encode failed: %w", runErr)
		}
	}
	return fmt.Errorf("write frame: %w", err)
}

// Frames returns the number of frames written
func (enc *Encoder) Frames() int { return enc.frames }

// Close flushes the remaining frames and waits for ffmpeg to finish
func (enc *Encoder) Close() error {
	if enc.closed {
		return nil
	}
	enc.closed = true
	defer enc.cancel()

	if err := enc.bw.Flush(); err != nil && !errors.Is(err, errEncoderExited) {
		_ = enc.pw.CloseWithError(err)
		<-enc.done
		return fmt.Errorf("flush frames: %w", err)
	}
	_ = enc.pw.Close()
	if err := <-enc.done; err != nil {
		return fmt.Errorf("encode failed: %w", err)
	}
	if enc.frames == 0 {
		return fmt.Errorf("encode produced no frames")
	}
	return nil
}

// Abort kills the encoder and removes the partial output
func (enc *Encoder) Abort() {
	if enc.aborted {
		return
	}
	enc.aborted = true
	enc.cancel()
	if !enc.closed {
		enc.closed = true
		_ = enc.pw.CloseWithError(context.Canceled)
		<-enc.done
	}
	_ = os.Remove(enc.opts.Output)
}
