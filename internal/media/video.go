package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"sync"
	"sync/atomic"

	"github.com/keagan/promoreel/internal/ffmpeg"
	"github.com/keagan/promoreel/internal/raster"
	"github.com/rs/zerolog"
)

// endTolerance absorbs container duration rounding when validating segment ends
const endTolerance = 0.05

// VideoSource is a probed video file. Its segment clips decode on demand.
type VideoSource struct {
	ctx    context.Context
	logger zerolog.Logger
	ff     *ffmpeg.Executor
	info   *ffmpeg.MediaInfo
	fps    float64

	fallbacks atomic.Int64

	mu     sync.Mutex
	clips  []*SegmentClip
	closed bool
}

func (v *VideoSource) Kind() Kind        { return KindVideo }
func (v *VideoSource) Path() string      { return v.info.FilePath }
func (v *VideoSource) Size() (int, int)  { return v.info.DisplaySize() }
func (v *VideoSource) Duration() float64 { return v.info.Seconds() }
func (v *VideoSource) HasAudio() bool    { return v.info.HasAudio }

// Info returns the probe result
func (v *VideoSource) Info() *ffmpeg.MediaInfo { return v.info }

// Fallbacks counts frames that were stretch-resized instead of letterboxed
func (v *VideoSource) Fallbacks() int { return int(v.fallbacks.Load()) }

// Clip returns a clip over [start, end) fitted to outW×outH
func (v *VideoSource) Clip(start, end float64, outW, outH int) (*SegmentClip, error) {
	if start < 0 || end <= start || end > v.Duration()+endTolerance {
		return nil, fmt.Errorf("segment %.2f-%.2f outside source duration %.2f", start, end, v.Duration())
	}
	if outW <= 0 || outH <= 0 {
		return nil, raster.ErrInvalidSize
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil, fmt.Errorf("video source %s is closed", v.Path())
	}

	// decode at the output width with the source ratio; AspectFit does the rest
	sw, sh := v.Size()
	decH := 2
	if sw > 0 && sh > 0 {
		decH = max(2, (outW*sh/sw)&^1)
	}
	c := &SegmentClip{
		src:   v,
		start: start,
		end:   end,
		outW:  outW,
		outH:  outH,
		decW:  outW &^ 1,
		decH:  decH,
		idx:   -1,
	}
	if c.decW < 2 {
		c.decW = 2
	}
	v.clips = append(v.clips, c)
	return c, nil
}

// Close stops every decoder started by the source's clips
func (v *VideoSource) Close() error {
	v.mu.Lock()
	clips := v.clips
	v.clips = nil
	v.closed = true
	v.mu.Unlock()

	var errs []error
	for _, c := range clips {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SegmentClip is a fitted, time-addressable range of a video. Frames are
// decoded forward; a backwards request restarts the decoder. It is not safe
// for concurrent use.
type SegmentClip struct {
	src        *VideoSource
	start, end float64
	outW, outH int
	decW, decH int

	reader    *ffmpeg.FrameReader
	next      int
	exhausted bool

	idx   int
	frame *image.RGBA
}

// Duration implements timeline.Clip
func (c *SegmentClip) Duration() float64 { return c.end - c.start }

// HasAudio implements timeline.AudioClip
func (c *SegmentClip) HasAudio() bool { return c.src.HasAudio() }

// AudioSpan returns the file and range the clip's audio comes from
func (c *SegmentClip) AudioSpan() (path string, start, duration float64) {
	return c.src.Path(), c.start, c.Duration()
}

// Frame implements timeline.Clip
func (c *SegmentClip) Frame(t float64) (*image.RGBA, error) {
	if t < 0 {
		t = 0
	}
	idx := int(t*c.src.fps + 1e-6)
	if c.frame != nil && idx == c.idx {
		return c.frame, nil
	}
	if (c.reader == nil && !c.exhausted) || idx < c.next {
		if err := c.restart(idx); err != nil {
			return nil, err
		}
	}

	var raw *image.RGBA
	for !c.exhausted && c.next <= idx {
		img, err := c.reader.Next()
		if errors.Is(err, io.EOF) {
			c.exhausted = true
			if cerr := c.Close(); cerr != nil {
				c.src.logger.Debug().Err(cerr).Str("input", c.src.Path()).Msg("decoder exit after EOF")
			}
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s at %.2fs: %w", c.src.Path(), c.start+t, err)
		}
		if c.next == idx {
			raw = img
		}
		c.next++
	}

	if raw == nil {
		// past the last decodable frame: hold
		if c.frame == nil {
			return nil, fmt.Errorf("no frames decoded from %s at %.2fs", c.src.Path(), c.start+t)
		}
		return c.frame, nil
	}

	fitted, err := raster.AspectFit(raw, c.outW, c.outH)
	if err != nil {
		if c.src.fallbacks.Add(1) == 1 {
			c.src.logger.Warn().Err(err).Msg("aspect fit fell back to stretch")
		}
	}
	c.frame, c.idx = fitted, idx
	return fitted, nil
}

func (c *SegmentClip) restart(idx int) error {
	if c.reader != nil {
		_ = c.reader.Close()
		c.reader = nil
	}
	c.src.mu.Lock()
	closed := c.src.closed
	c.src.mu.Unlock()
	if closed {
		return fmt.Errorf("video source %s is closed", c.src.Path())
	}

	offset := float64(idx) / c.src.fps
	if offset >= c.Duration() {
		c.exhausted = true
		c.next = idx
		return nil
	}

	r, err := c.src.ff.Decode(c.src.ctx, ffmpeg.DecodeOptions{
		Input:    c.src.Path(),
		Start:    c.start + offset,
		Duration: c.Duration() - offset,
		Width:    c.decW,
		Height:   c.decH,
		FPS:      c.src.fps,
	})
	if err != nil {
		return fmt.Errorf("start decoder for %s: %w", c.src.Path(), err)
	}
	if idx > 0 {
		c.src.logger.Trace().Int("frame", idx).Msg("decoder restarted")
	}
	c.reader = r
	c.next = idx
	c.exhausted = false
	return nil
}

// Close stops the clip's decoder. A later Frame call that needs new frames
// starts a fresh one.
func (c *SegmentClip) Close() error {
	if c.reader == nil {
		return nil
	}
	err := c.reader.Close()
	c.reader = nil
	return err
}
