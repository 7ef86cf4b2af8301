package timeline

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/keagan/promoreel/internal/overlays"
	"github.com/keagan/promoreel/internal/raster"
)

// ErrEmptyTimeline is returned when a timeline is built without clips
var ErrEmptyTimeline = errors.New("timeline: no clips")

// localEpsilon keeps local time strictly inside a clip
const localEpsilon = 1e-4

// Options configures a Timeline
type Options struct {
	Width  int
	Height int
	Mode   Mode
	Fade   float64
}

// Timeline joins clips with a transition into one frame function over [0, Duration)
type Timeline struct {
	clips  []Clip
	durs   []float64
	starts []float64
	total  float64
	fade   float64
	mode   Mode
	width  int
	height int
	logo   *image.RGBA
	closed []bool
}

// New schedules clips according to opts
func New(clips []Clip, opts Options) (*Timeline, error) {
	if len(clips) == 0 {
		return nil, ErrEmptyTimeline
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("timeline: invalid size %dx%d", opts.Width, opts.Height)
	}
	if opts.Mode == "" {
		opts.Mode = Crossfade
	}

	durs := make([]float64, len(clips))
	for i, c := range clips {
		if c.Duration() <= 0 {
			return nil, fmt.Errorf("timeline: clip %d has no duration", i)
		}
		durs[i] = c.Duration()
	}

	starts, total, fade := Schedule(durs, opts.Mode, opts.Fade)
	return &Timeline{
		clips:  clips,
		durs:   durs,
		starts: starts,
		total:  total,
		fade:   fade,
		mode:   opts.Mode,
		width:  opts.Width,
		height: opts.Height,
		closed: make([]bool, len(clips)),
	}, nil
}

// Duration is the rendered length in seconds
func (tl *Timeline) Duration() float64 { return tl.total }

// Mode returns the transition mode
func (tl *Timeline) Mode() Mode { return tl.mode }

// Fade returns the effective transition duration
func (tl *Timeline) Fade() float64 { return tl.fade }

// Starts returns each clip's offset on the global timeline
func (tl *Timeline) Starts() []float64 {
	return append([]float64(nil), tl.starts...)
}

// Len returns the number of clips
func (tl *Timeline) Len() int { return len(tl.clips) }

// Size returns the frame dimensions
func (tl *Timeline) Size() (int, int) { return tl.width, tl.height }

// BakeLogo stamps logo onto every frame the timeline returns
func (tl *Timeline) BakeLogo(logo image.Image) {
	if logo == nil {
		tl.logo = nil
		return
	}
	tl.logo = overlays.LogoLayer(tl.width, tl.height, logo, overlays.BakedLogoWidth).Image
}

// Frame returns the composed frame at global time t. The result may share
// memory with a clip's frame and must not be mutated.
func (tl *Timeline) Frame(t float64) (*image.RGBA, error) {
	if t < 0 {
		t = 0
	}
	if err := tl.release(t); err != nil {
		return nil, err
	}

	var (
		out *image.RGBA
		err error
	)
	switch {
	case tl.mode == Crossfade && len(tl.clips) > 1:
		out, err = tl.crossfade(t)
	default:
		out, err = tl.sequential(t)
	}
	if err != nil {
		return nil, err
	}

	if tl.logo != nil {
		out = raster.AlphaBlend(out, tl.logo)
	}
	return out, nil
}

// release closes clips whose window ended at or before t. The last clip is
// kept open for the hold past the end.
func (tl *Timeline) release(t float64) error {
	for i := 0; i < len(tl.clips)-1; i++ {
		if tl.closed[i] || t < tl.starts[i]+tl.durs[i] {
			continue
		}
		tl.closed[i] = true
		if c, ok := tl.clips[i].(io.Closer); ok {
			if err := c.Close(); err != nil {
				return fmt.Errorf("release clip %d: %w", i, err)
			}
		}
	}
	return nil
}

func (tl *Timeline) crossfade(t float64) (*image.RGBA, error) {
	var result *image.RGBA
	fd := math.Max(tl.fade, 1e-6)
	for i, c := range tl.clips {
		start := tl.starts[i]
		if t < start || t >= start+tl.durs[i] {
			continue
		}
		frame, err := tl.clipFrame(i, c, t-start)
		if err != nil {
			return nil, err
		}
		if result == nil {
			result = frame
			continue
		}
		result = raster.Mix(result, frame, math.Min(1, (t-start)/fd))
	}
	if result == nil {
		return tl.lastFrame()
	}
	return result, nil
}

func (tl *Timeline) sequential(t float64) (*image.RGBA, error) {
	n := len(tl.clips)
	for i, c := range tl.clips {
		start := tl.starts[i]
		if t < start || t >= start+tl.durs[i] {
			continue
		}
		local := t - start
		frame, err := tl.clipFrame(i, c, local)
		if err != nil {
			return nil, err
		}
		if tl.mode != FadeToBlack || n == 1 {
			return frame, nil
		}
		env := fadeEnvelope(local, tl.durs[i], tl.fade, i > 0, i < n-1)
		if env >= 1 {
			return frame, nil
		}
		out := raster.Clone(frame)
		raster.Scale(out, env)
		return out, nil
	}
	return tl.lastFrame()
}

// fadeEnvelope is the brightness multiplier at local time lt of a clip that
// fades in and/or out over min(fade, dur/2) seconds
func fadeEnvelope(lt, dur, fade float64, fadeIn, fadeOut bool) float64 {
	fd := math.Min(fade, dur/2)
	if fd <= 0 {
		return 1
	}
	env := 1.0
	if fadeIn && lt < fd {
		env = lt / fd
	}
	if fadeOut && lt > dur-fd {
		env = math.Min(env, (dur-lt)/fd)
	}
	return math.Max(0, math.Min(1, env))
}

func (tl *Timeline) clipFrame(i int, c Clip, local float64) (*image.RGBA, error) {
	local = math.Max(0, math.Min(local, tl.durs[i]-localEpsilon))
	frame, err := c.Frame(local)
	if err != nil {
		return nil, fmt.Errorf("clip %d at %.3fs: %w", i, local, err)
	}
	if frame == nil {
		return raster.Black(tl.width, tl.height), nil
	}
	return frame, nil
}

func (tl *Timeline) lastFrame() (*image.RGBA, error) {
	last := len(tl.clips) - 1
	return tl.clipFrame(last, tl.clips[last], tl.durs[last])
}

// AudioPlacement says where a clip's audio starts on the global timeline
type AudioPlacement struct {
	Clip   int
	Source AudioClip
	At     float64
}

// AudioPlan lists every clip carrying audio with its global start offset
func (tl *Timeline) AudioPlan() []AudioPlacement {
	var plan []AudioPlacement
	for i, c := range tl.clips {
		if ac, ok := c.(AudioClip); ok && ac.HasAudio() {
			plan = append(plan, AudioPlacement{Clip: i, Source: ac, At: tl.starts[i]})
		}
	}
	return plan
}

// FrameCount is the number of frames rendered at fps
func FrameCount(duration, fps float64) int {
	if duration <= 0 || fps <= 0 {
		return 0
	}
	return int(math.Ceil(duration*fps - 1e-9))
}
