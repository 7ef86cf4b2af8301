package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/keagan/promoreel/internal/audio"
	"github.com/keagan/promoreel/internal/ffmpeg"
	"github.com/keagan/promoreel/internal/media"
	"github.com/keagan/promoreel/internal/overlays"
	"github.com/keagan/promoreel/internal/raster"
	"github.com/keagan/promoreel/internal/store"
	"github.com/keagan/promoreel/internal/timeline"
	"github.com/keagan/promoreel/pkg/util"
)

// Pass 1 request bounds
const (
	MinTarget = 15.0
	MaxTarget = 60.0
)

const bytesPerMB = 1 << 20

// pass1Plan is a validated Pass 1 request with defaults applied
type pass1Plan struct {
	inputs     []Input
	kinds      []media.Kind
	target     float64
	mode       timeline.Mode
	fade       float64
	resolution string
	logo       string
	rng        *rand.Rand
}

func (p *Pipeline) planPass1(req Pass1Request) (*pass1Plan, error) {
	const op = "pass1"
	if len(req.Inputs) == 0 {
		return nil, validationError(op, "no inputs given")
	}

	plan := &pass1Plan{
		inputs:     req.Inputs,
		target:     req.TargetDuration,
		fade:       req.Fade,
		resolution: req.Resolution,
		logo:       req.Logo,
	}
	if plan.target == 0 {
		plan.target = p.cfg.Timeline.TargetDuration
	}
	if plan.target < MinTarget || plan.target > MaxTarget {
		return nil, validationError(op, "target duration %.1fs outside %.0f-%.0fs", plan.target, MinTarget, MaxTarget)
	}

	transition := req.Transition
	if transition == "" {
		transition = p.cfg.Timeline.Transition
	}
	mode, err := timeline.ParseMode(transition)
	if err != nil {
		return nil, &Error{Kind: KindValidation, Op: op, Err: err}
	}
	plan.mode = mode

	if plan.fade == 0 {
		plan.fade = p.cfg.Timeline.FadeDuration
	}
	if mode != timeline.NoTransition && (plan.fade < timeline.MinFade || plan.fade > timeline.MaxFade) {
		return nil, validationError(op, "transition duration %.2fs outside %.1f-%.1fs", plan.fade, timeline.MinFade, timeline.MaxFade)
	}

	if plan.resolution == "" {
		plan.resolution = p.cfg.Timeline.Resolution
	}
	if _, ok := LookupPreset(plan.resolution); !ok {
		return nil, validationError(op, "unknown resolution preset %q", plan.resolution)
	}

	for _, in := range req.Inputs {
		kind, err := media.ParseKind(in.Kind, in.Path)
		if err != nil {
			return nil, &Error{Kind: KindValidation, Op: op, Err: err}
		}
		if !util.FileExists(in.Path) {
			return nil, validationError(op, "input %s does not exist", in.Path)
		}
		plan.kinds = append(plan.kinds, kind)
	}

	if req.Seed != 0 {
		plan.rng = rand.New(rand.NewSource(req.Seed))
	}
	return plan, nil
}

// Pass1 cuts the inputs into one continuous base track, encodes it to the
// work directory and registers it as an artifact
func (p *Pipeline) Pass1(ctx context.Context, req Pass1Request) (*Pass1Result, error) {
	const op = "pass1"
	plan, err := p.planPass1(req)
	if err != nil {
		return nil, err
	}

	art := store.NewArtifact()
	sid := art.ID
	logger := p.logger.With().Str("pass", "1").Str("artifact", sid).Logger()
	defer p.cleanupSession(sid)

	var warnings Warnings
	start := time.Now()

	inputs, err := p.compressOversized(ctx, sid, plan, &warnings)
	if err != nil {
		return nil, renderError(op, err)
	}

	// every opened source is released on every exit path
	var group media.Group
	defer func() {
		if err := group.Close(); err != nil {
			logger.Warn().Err(err).Msg("closing sources")
		}
	}()

	var videos []*media.VideoSource
	var photos []*media.PhotoSource
	for i, path := range inputs {
		src, err := p.opener.Open(ctx, path, plan.kinds[i])
		if err != nil {
			if errors.Is(err, media.ErrUnsupported) {
				return nil, &Error{Kind: KindValidation, Op: op, Err: err}
			}
			return nil, renderError(op, err)
		}
		group.Add(src)
		switch s := src.(type) {
		case *media.VideoSource:
			videos = append(videos, s)
		case *media.PhotoSource:
			photos = append(photos, s)
		}
	}

	maxPhotos := p.cfg.Timeline.MaxPhotos
	if maxPhotos <= 0 {
		maxPhotos = timeline.MaxPhotos
	}
	if len(photos) > maxPhotos {
		warnings.add("only the first %d of %d photos are used", maxPhotos, len(photos))
		logger.Warn().Int("photos", len(photos)).Int("max", maxPhotos).Msg("photo cap exceeded")
		photos = photos[:maxPhotos]
	}

	first := firstSize(videos, photos)
	width, height, err := ResolveSize(plan.resolution, first[0], first[1])
	if err != nil {
		return nil, &Error{Kind: KindValidation, Op: op, Err: err}
	}

	clips, sources, err := p.buildClips(plan, videos, photos, width, height, &warnings)
	if err != nil {
		return nil, err
	}

	tl, err := timeline.New(clips, timeline.Options{Width: width, Height: height, Mode: plan.mode, Fade: plan.fade})
	if err != nil {
		return nil, &Error{Kind: KindValidation, Op: op, Err: err}
	}
	if plan.logo != "" {
		if logo, err := overlays.LoadLogo(plan.logo); err != nil {
			warnings.add("logo ignored: %v", err)
			logger.Warn().Err(err).Msg("logo could not be loaded")
		} else {
			tl.BakeLogo(logo)
		}
	}

	logger.Info().
		Int("clips", tl.Len()).
		Float64("duration", tl.Duration()).
		Str("transition", string(tl.Mode())).
		Float64("fade", tl.Fade()).
		Int("width", width).
		Int("height", height).
		Msg("timeline built")

	audioPath, hasAudio := p.pass1Audio(ctx, sid, tl, &warnings)

	output := filepath.Join(p.cfg.WorkDir, "pass1_"+sid+".mp4")
	if err := p.encodeTimeline(ctx, tl, output, audioPath, req.Progress); err != nil {
		return nil, renderError(op, err)
	}

	for _, v := range videos {
		if n := v.Fallbacks(); n > 0 {
			warnings.add("%s: %d frames stretched instead of letterboxed", filepath.Base(v.Path()), n)
		}
	}

	art.Path = absPath(output)
	art.Width, art.Height = width, height
	art.Duration = tl.Duration()
	art.FPS = p.cfg.FFmpeg.FPS
	art.HasAudio = hasAudio
	art.Transition = string(tl.Mode())
	art.Fade = tl.Fade()
	art.Sources = sources
	art.Warnings = warnings
	if err := p.store.Put(ctx, art); err != nil {
		_ = os.Remove(output)
		return nil, renderError(op, fmt.Errorf("register artifact: %w", err))
	}

	logger.Info().
		Str("output", output).
		Dur("elapsed", time.Since(start)).
		Int("warnings", len(warnings)).
		Msg("pass 1 complete")

	return &Pass1Result{Artifact: art, Warnings: warnings}, nil
}

// compressOversized re-encodes video inputs above the configured size limit
func (p *Pipeline) compressOversized(ctx context.Context, sid string, plan *pass1Plan, warnings *Warnings) ([]string, error) {
	limit := int64(p.cfg.FFmpeg.CompressAboveMB) * bytesPerMB
	paths := make([]string, len(plan.inputs))
	for i, in := range plan.inputs {
		paths[i] = in.Path
		if limit <= 0 || plan.kinds[i] != media.KindVideo || util.FileSize(in.Path) <= limit {
			continue
		}
		out := util.SessionPath(p.cfg.TempDir, sid, fmt.Sprintf("compressed_%d.mp4", i))
		if err := p.ffmpeg.Compress(ctx, in.Path, out, ffmpeg.CompressOptions{}); err != nil {
			return nil, err
		}
		warnings.add("%s was larger than %d MB and was compressed first", filepath.Base(in.Path), p.cfg.FFmpeg.CompressAboveMB)
		paths[i] = out
	}
	return paths, nil
}

// firstSize returns the display size of the first video, else the first photo
func firstSize(videos []*media.VideoSource, photos []*media.PhotoSource) [2]int {
	switch {
	case len(videos) > 0:
		w, h := videos[0].Size()
		return [2]int{w, h}
	case len(photos) > 0:
		w, h := photos[0].Size()
		return [2]int{w, h}
	}
	return [2]int{}
}

// buildClips smart-cuts the videos and turns photos into Ken Burns slides.
// Photos alone share the target; next to videos each gets MinSlide seconds.
func (p *Pipeline) buildClips(plan *pass1Plan, videos []*media.VideoSource, photos []*media.PhotoSource, w, h int, warnings *Warnings) ([]timeline.Clip, []string, error) {
	const op = "pass1"
	var clips []timeline.Clip
	var sources []string

	videoTarget := plan.target
	slide := timeline.SlideDuration(plan.target, len(photos))
	if len(videos) > 0 && len(photos) > 0 {
		slide = timeline.MinSlide
		videoTarget = math.Max(plan.target-slide*float64(len(photos)), p.cfg.Timeline.MinSegment)
	}

	if len(videos) > 0 {
		durations := make([]float64, len(videos))
		for i, v := range videos {
			durations[i] = v.Duration()
		}
		cut, err := timeline.SmartCut(durations, videoTarget, timeline.CutOptions{
			MinSeg: p.cfg.Timeline.MinSegment,
			MaxSeg: p.cfg.Timeline.MaxSegment,
			Floor:  p.cfg.Timeline.MinSource,
		}, plan.rng)
		if cut != nil {
			for _, idx := range cut.Skipped {
				warnings.add("%s is shorter than %.0fs and was skipped", filepath.Base(videos[idx].Path()), p.cfg.Timeline.MinSource)
			}
		}
		if err != nil && len(photos) == 0 {
			return nil, nil, &Error{Kind: KindValidation, Op: op, Err: err}
		}
		if cut != nil {
			for _, seg := range cut.Segments {
				v := videos[seg.SourceIndex]
				c, err := v.Clip(seg.Start, seg.End, w, h)
				if err != nil {
					return nil, nil, renderError(op, err)
				}
				clips = append(clips, c)
				sources = append(sources, fmt.Sprintf("%s %s", filepath.Base(v.Path()), seg))
			}
			p.logger.Debug().
				Int("segments", len(cut.Segments)).
				Float64("total", cut.Total).
				Float64("target", videoTarget).
				Msg("smart cut")
		}
	}

	zoom := p.cfg.Timeline.ZoomEnd
	if zoom <= 0 {
		zoom = timeline.DefaultZoomEnd
	}
	for _, ph := range photos {
		kb, err := timeline.NewKenBurns(ph.Image(), w, h, slide, zoom)
		if kb == nil {
			return nil, nil, renderError(op, err)
		}
		if errors.Is(err, raster.ErrAspectFitFallback) {
			warnings.add("%s: stretched instead of letterboxed", filepath.Base(ph.Path()))
		}
		clips = append(clips, kb)
		sources = append(sources, fmt.Sprintf("%s %.1fs", filepath.Base(ph.Path()), slide))
	}

	if len(clips) == 0 {
		return nil, nil, validationError(op, "no usable sources")
	}
	return clips, sources, nil
}

// pass1Audio decodes the audio of every video clip and places it at the
// clip's timeline offset. Failures only drop the audio.
func (p *Pipeline) pass1Audio(ctx context.Context, sid string, tl *timeline.Timeline, warnings *Warnings) (string, bool) {
	rate, channels := p.cfg.Audio.SampleRate, p.cfg.Audio.Channels
	var placed []audio.Placed
	for _, pl := range tl.AudioPlan() {
		seg, ok := pl.Source.(*media.SegmentClip)
		if !ok {
			continue
		}
		path, start, dur := seg.AudioSpan()
		track, err := p.ffmpeg.DecodePCM(ctx, path, ffmpeg.PCMOptions{Start: start, Duration: dur, Rate: rate, Channels: channels})
		if err != nil {
			warnings.add("audio of %s dropped: %v", filepath.Base(path), err)
			p.logger.Warn().Err(err).Str("source", path).Msg("clip audio decode failed")
			continue
		}
		placed = append(placed, audio.Placed{Track: track, At: pl.At})
	}
	if len(placed) == 0 {
		return "", false
	}

	mixed, err := audio.Place(placed, tl.Duration())
	if err != nil {
		warnings.add("original audio dropped: %v", err)
		return "", false
	}
	path, err := p.writePCM(sid, "pass1.f32", mixed)
	if err != nil {
		warnings.add("original audio dropped: %v", err)
		return "", false
	}
	return path, true
}

// encodeTimeline samples the timeline at the output frame rate into an encoder
func (p *Pipeline) encodeTimeline(ctx context.Context, tl *timeline.Timeline, output, audioPath string, progress ProgressFunc) error {
	fps := p.cfg.FFmpeg.FPS
	w, h := tl.Size()
	enc, err := p.ffmpeg.Encode(ctx, ffmpeg.EncodeOptions{
		Output:        output,
		Width:         w,
		Height:        h,
		FPS:           fps,
		AudioPath:     audioPath,
		AudioRate:     p.cfg.Audio.SampleRate,
		AudioChannels: p.cfg.Audio.Channels,
		CRF:           p.cfg.FFmpeg.CRF,
		Preset:        p.cfg.FFmpeg.Preset,
		PixFmt:        p.cfg.FFmpeg.PixFmt,
	})
	if err != nil {
		return err
	}

	total := timeline.FrameCount(tl.Duration(), fps)
	step := max(1, int(fps))
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			enc.Abort()
			return err
		}
		frame, err := tl.Frame(float64(i) / fps)
		if err != nil {
			enc.Abort()
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if err := enc.WriteFrame(frame); err != nil {
			enc.Abort()
			return err
		}
		if progress != nil && (i%step == 0 || i == total-1) {
			progress(i+1, total)
		}
	}
	if err := enc.Close(); err != nil {
		_ = os.Remove(output)
		return err
	}
	return nil
}
