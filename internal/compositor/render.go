package compositor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/keagan/promoreel/internal/timeline"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// FrameSource yields base frames in order. Next returns io.EOF when the
// source is exhausted; the returned buffer is owned by the caller.
type FrameSource interface {
	Next() (*image.RGBA, error)
}

// FrameSink consumes output frames in index order
type FrameSink interface {
	WriteFrame(*image.RGBA) error
}

// Options controls Render
type Options struct {
	FPS     float64
	Workers int
	// Batch is the number of frames composited between sink writes
	Batch int
	// Progress is called after every written batch
	Progress func(done, total int)
}

// Render composites ceil(Duration*FPS) frames. Base frames are pulled
// sequentially; each batch is composited in parallel and written in order.
// If the source ends early its last frame is repeated.
func Render(ctx context.Context, logger zerolog.Logger, rc *RenderContext, src FrameSource, sink FrameSink, opts Options) error {
	if opts.FPS <= 0 {
		return fmt.Errorf("compositor: invalid fps %v", opts.FPS)
	}
	workers := max(1, opts.Workers)
	batch := opts.Batch
	if batch <= 0 {
		batch = workers * 2
	}

	total := timeline.FrameCount(rc.Duration, opts.FPS)
	logger.Info().
		Int("frames", total).
		Float64("fps", opts.FPS).
		Int("workers", workers).
		Msg("compositing")

	start := time.Now()
	bases := make([]*image.RGBA, 0, batch)
	outs := make([]*image.RGBA, batch)
	var last *image.RGBA
	exhausted := false

	for first := 0; first < total; first += batch {
		if err := ctx.Err(); err != nil {
			return err
		}

		n := min(batch, total-first)
		bases = bases[:0]
		for i := 0; i < n; i++ {
			if !exhausted {
				frame, err := src.Next()
				switch {
				case errors.Is(err, io.EOF):
					exhausted = true
					logger.Debug().Int("frame", first+i).Msg("source ended early, holding last frame")
				case err != nil:
					return fmt.Errorf("read frame %d: %w", first+i, err)
				default:
					last = frame
				}
			}
			if last == nil {
				return fmt.Errorf("read frame %d: %w", first+i, io.ErrUnexpectedEOF)
			}
			bases = append(bases, last)
		}

		g, _ := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i := 0; i < n; i++ {
			i := i
			g.Go(func() error {
				t := float64(first+i) / opts.FPS
				outs[i] = Frame(rc, bases[i], t)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for i := 0; i < n; i++ {
			if err := sink.WriteFrame(outs[i]); err != nil {
				return fmt.Errorf("write frame %d: %w", first+i, err)
			}
			outs[i] = nil
		}
		if opts.Progress != nil {
			opts.Progress(first+n, total)
		}
	}

	logger.Info().
		Int("frames", total).
		Dur("elapsed", time.Since(start)).
		Msg("compositing complete")
	return nil
}
