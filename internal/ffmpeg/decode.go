package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"sync"

	"github.com/keagan/promoreel/pkg/util"
)

// DecodeOptions selects what a FrameReader decodes
type DecodeOptions struct {
	Input string
	// Start and Duration in seconds; Duration 0 decodes to the end
	Start    float64
	Duration float64
	// Width and Height of the decoded frames; ffmpeg scales when they differ
	// from the source
	Width  int
	Height int
	// FPS resamples the stream to a constant rate when > 0
	FPS float64
}

// decodeArgs builds the ffmpeg arguments for raw RGBA output on stdout
func decodeArgs(opts DecodeOptions) []string {
	args := []string{"-hide_banner", "-nostdin", "-loglevel", "error"}
	if opts.Start > 0 {
		args = append(args, "-ss", util.FormatArg(opts.Start))
	}
	if opts.Duration > 0 {
		args = append(args, "-t", util.FormatArg(opts.Duration))
	}
	args = append(args, "-i", opts.Input, "-an", "-sn")

	vf := NewFilterBuilder().Scale(opts.Width, opts.Height).FPS(opts.FPS).Build()
	if vf != "" {
		args = append(args, "-vf", vf)
	}
	return append(args, "-f", "rawvideo", "-pix_fmt", rawPixFmt, "pipe:1")
}

// FrameReader streams decoded RGBA frames from an ffmpeg subprocess
type FrameReader struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
	out    *bufio.Reader
	stdout io.ReadCloser
	tail   *tailBuffer
	width  int
	height int
	frames int
	eof    bool

	closeOnce sync.Once
	closeErr  error
	done      chan struct{}
}

// Decode starts decoding opts.Input. Width and Height are required so the
// frame size is known before the first read.
func (e *Executor) Decode(ctx context.Context, opts DecodeOptions) (*FrameReader, error) {
	if opts.Input == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("decode size %dx%d is invalid", opts.Width, opts.Height)
	}

	ctx, cancel := context.WithCancel(ctx)
	args := decodeArgs(opts)
	e.logger.Debug().Strs("args", args).Msg("starting decoder")

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start decoder: %w", err)
	}

	r := &FrameReader{
		cmd:    cmd,
		cancel: cancel,
		out:    bufio.NewReaderSize(stdout, opts.Width*opts.Height*bytesPerPixel),
		stdout: stdout,
		tail:   newTailBuffer(10),
		width:  opts.Width,
		height: opts.Height,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(r.done)
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			r.tail.add(scanner.Text())
		}
	}()
	return r, nil
}

// Size returns the frame dimensions
func (r *FrameReader) Size() (int, int) { return r.width, r.height }

// Frames returns how many frames have been read so far
func (r *FrameReader) Frames() int { return r.frames }

// Next returns the next frame in a newly allocated buffer, or io.EOF
func (r *FrameReader) Next() (*image.RGBA, error) {
	if r.eof {
		return nil, io.EOF
	}
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	if _, err := io.ReadFull(r.out, img.Pix); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			r.eof = true
			if werr := r.Close(); werr != nil && r.frames == 0 {
				return nil, werr
			}
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read frame: %w", err)
	}
	r.frames++
	return img, nil
}

// Close stops the decoder and releases the process. It is safe to call
// more than once. Only a decoder that failed before producing any frame
// reports an error.
func (r *FrameReader) Close() error {
	r.closeOnce.Do(func() {
		if !r.eof {
			r.cancel()
		}
		_ = r.stdout.Close()
		<-r.done
		err := r.cmd.Wait()
		r.cancel()
		if err != nil && r.eof && r.frames == 0 {
			r.closeErr = &ExecError{Err: err, Tail: r.tail.String()}
		}
	})
	return r.closeErr
}
