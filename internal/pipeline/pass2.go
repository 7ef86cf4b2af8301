package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/keagan/promoreel/internal/audio"
	"github.com/keagan/promoreel/internal/captions"
	"github.com/keagan/promoreel/internal/compositor"
	"github.com/keagan/promoreel/internal/ffmpeg"
	"github.com/keagan/promoreel/internal/overlays"
	"github.com/keagan/promoreel/internal/raster"
	"github.com/keagan/promoreel/internal/store"
	"github.com/keagan/promoreel/internal/textlayout"
	"github.com/keagan/promoreel/pkg/util"
	"github.com/rs/zerolog"
)

// Pass 2 request bounds
const (
	MinCaptions    = 1
	MaxCaptions    = 5
	MinCTADuration = 2.0
	MaxCTADuration = 8.0
)

// pass2Plan is a validated Pass 2 request with defaults applied
type pass2Plan struct {
	artifact   *store.Artifact
	texts      []string
	captions   []captions.Caption
	align      textlayout.Align
	cta        overlays.CTA
	ctaDur     float64
	grade      *raster.Grade
	bgm        string
	bgmVolume  float64
	origVolume float64
	logo       string
	logoOnAll  bool
	outputDir  string
}

func (p *Pipeline) planPass2(ctx context.Context, req Pass2Request) (*pass2Plan, error) {
	const op = "pass2"
	if strings.TrimSpace(req.Artifact) == "" {
		return nil, validationError(op, "artifact ID or Pass 1 video path is required")
	}
	art, err := p.resolveArtifact(ctx, req.Artifact)
	if err != nil {
		return nil, err
	}

	plan := &pass2Plan{
		artifact:   art,
		cta:        req.CTA,
		ctaDur:     req.CTADuration,
		bgm:        req.BGM,
		bgmVolume:  p.cfg.Audio.BGMVolume,
		origVolume: p.cfg.Audio.OriginalVolume,
		logo:       req.Logo,
		logoOnAll:  p.cfg.Captions.LogoOnOverlays,
		outputDir:  req.OutputDir,
	}

	n := req.CaptionCount
	if n == 0 {
		n = p.cfg.Captions.Count
	}
	if n < MinCaptions || n > MaxCaptions {
		return nil, validationError(op, "caption count %d outside %d-%d", n, MinCaptions, MaxCaptions)
	}

	alignName := req.Align
	if alignName == "" {
		alignName = p.cfg.Captions.Align
	}
	if plan.align, err = textlayout.ParseAlign(alignName); err != nil {
		return nil, &Error{Kind: KindValidation, Op: op, Err: err}
	}

	paletteNames := req.Palette
	if len(paletteNames) == 0 {
		paletteNames = p.cfg.Captions.Palette
	}
	palette, err := captions.ParsePalette(paletteNames)
	if err != nil {
		return nil, &Error{Kind: KindValidation, Op: op, Err: err}
	}

	if plan.ctaDur == 0 {
		plan.ctaDur = p.cfg.CTA.Duration
	}
	if plan.ctaDur < MinCTADuration || plan.ctaDur > MaxCTADuration {
		return nil, validationError(op, "CTA duration %.1fs outside %.0f-%.0fs", plan.ctaDur, MinCTADuration, MaxCTADuration)
	}
	if strings.TrimSpace(plan.cta.Label) == "" {
		plan.cta.Label = p.cfg.CTA.Label
	}

	if req.BGMVolume != nil {
		plan.bgmVolume = *req.BGMVolume
	}
	if req.OrigVolume != nil {
		plan.origVolume = *req.OrigVolume
	}
	if plan.bgmVolume < 0 || plan.bgmVolume > 1 {
		return nil, validationError(op, "bgm volume %.2f outside 0-1", plan.bgmVolume)
	}
	if plan.origVolume < 0 || plan.origVolume > 1 {
		return nil, validationError(op, "original volume %.2f outside 0-1", plan.origVolume)
	}
	if plan.bgm != "" && !util.FileExists(plan.bgm) {
		return nil, validationError(op, "background music %s does not exist", plan.bgm)
	}
	if req.LogoOverlays != nil {
		plan.logoOnAll = *req.LogoOverlays
	}
	if plan.outputDir == "" {
		plan.outputDir = p.cfg.OutputDir
	}

	gradeCfg := GradeOptions{
		Enabled:    p.cfg.Grade.Enabled,
		Brightness: p.cfg.Grade.Brightness,
		Contrast:   p.cfg.Grade.Contrast,
		Saturation: p.cfg.Grade.Saturation,
		Sharpness:  p.cfg.Grade.Sharpness,
	}
	if req.Grade != nil {
		gradeCfg = *req.Grade
	}
	if gradeCfg.Enabled {
		plan.grade = &raster.Grade{
			Brightness: factorOrOne(gradeCfg.Brightness),
			Contrast:   factorOrOne(gradeCfg.Contrast),
			Saturation: factorOrOne(gradeCfg.Saturation),
			Sharpness:  factorOrOne(gradeCfg.Sharpness),
		}
	}

	plan.texts = captions.SplitWords(req.Description, n, p.cfg.Captions.MaxWords, p.tokenizer)
	plan.captions = captions.Assign(plan.texts, palette)
	return plan, nil
}

// factorOrOne treats an unset grade factor as unchanged
func factorOrOne(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}

// resolveArtifact finds a stored artifact by ID or path. An unregistered
// video file is probed and treated as an ad-hoc artifact.
func (p *Pipeline) resolveArtifact(ctx context.Context, ref string) (*store.Artifact, error) {
	const op = "pass2"
	art, err := store.Find(ctx, p.store, ref)
	if err == nil {
		if !util.FileExists(art.Path) {
			return nil, validationError(op, "artifact %s video %s no longer exists", art.ID, art.Path)
		}
		return art, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, renderError(op, err)
	}
	if !util.FileExists(ref) {
		return nil, &Error{Kind: KindValidation, Op: op, Err: err}
	}

	info, err := p.ffmpeg.Probe(ctx, ref)
	if err != nil {
		return nil, validationError(op, "%s is not a usable Pass 1 video: %v", ref, err)
	}
	w, h := info.DisplaySize()
	art = store.NewArtifact()
	art.Path = absPath(ref)
	art.Width, art.Height = w&^1, h&^1
	art.Duration = info.Seconds()
	art.FPS = info.FPS
	art.HasAudio = info.HasAudio
	return art, nil
}

// Pass2 renders captions, CTA, grade, progress bar and mixed audio over a
// Pass 1 artifact. The artifact itself is never modified.
func (p *Pipeline) Pass2(ctx context.Context, req Pass2Request) (*Result, error) {
	const op = "pass2"
	plan, err := p.planPass2(ctx, req)
	if err != nil {
		return nil, err
	}

	art := plan.artifact
	sid := uuid.NewString()
	logger := p.logger.With().Str("pass", "2").Str("artifact", art.ID).Logger()
	defer p.cleanupSession(sid)

	var warnings Warnings
	start := time.Now()
	width, height, total := art.Width, art.Height, art.Duration

	fonts, err := textlayout.LoadFontOrDefault(p.cfg.Layout.FontPath)
	if err != nil {
		warnings.add("font fallback to %s: %v", fonts.Name(), err)
		logger.Warn().Err(err).Msg("font could not be loaded")
	}
	defer fonts.Close()

	var logo image.Image
	if plan.logoOnAll && plan.logo != "" {
		if logo, err = overlays.LoadLogo(plan.logo); err != nil {
			warnings.add("logo ignored: %v", err)
			logger.Warn().Err(err).Msg("logo could not be loaded")
			logo = nil
		}
	}

	factory := overlays.NewFactory(p.logger, fonts, width, height, overlays.Options{
		Layout: p.layout(width),
		Align:  plan.align,
		Logo:   logo,
	})
	set := factory.Build(plan.captions, plan.cta, total, plan.ctaDur)
	logSchedule(logger, set, total)

	rc := compositor.NewRenderContext(compositor.Params{
		Width:    width,
		Height:   height,
		Duration: total,
		Overlays: set,
		Grade:    plan.grade,
	})

	audioPath := p.pass2Audio(ctx, sid, art, plan, &warnings)

	fps := art.FPS
	if fps <= 0 {
		fps = p.cfg.FFmpeg.FPS
	}
	reader, err := p.ffmpeg.Decode(ctx, ffmpeg.DecodeOptions{
		Input:  art.Path,
		Width:  width,
		Height: height,
		FPS:    fps,
	})
	if err != nil {
		return nil, renderError(op, err)
	}
	defer reader.Close()

	if err := util.EnsureDir(plan.outputDir); err != nil {
		return nil, renderError(op, err)
	}
	output := filepath.Join(plan.outputDir, fmt.Sprintf("out_%s_%d.mp4", art.ID, time.Now().Unix()))
	enc, err := p.ffmpeg.Encode(ctx, ffmpeg.EncodeOptions{
		Output:        output,
		Width:         width,
		Height:        height,
		FPS:           fps,
		AudioPath:     audioPath,
		AudioRate:     p.cfg.Audio.SampleRate,
		AudioChannels: p.cfg.Audio.Channels,
		CRF:           p.cfg.FFmpeg.CRF,
		Preset:        p.cfg.FFmpeg.Preset,
		PixFmt:        p.cfg.FFmpeg.PixFmt,
	})
	if err != nil {
		return nil, renderError(op, err)
	}

	err = compositor.Render(ctx, logger, rc, reader, enc, compositor.Options{
		FPS:      fps,
		Workers:  p.cfg.Concurrency,
		Progress: req.Progress,
	})
	if err != nil {
		enc.Abort()
		return nil, renderError(op, err)
	}
	if err := enc.Close(); err != nil {
		_ = os.Remove(output)
		return nil, renderError(op, err)
	}

	logger.Info().
		Str("output", output).
		Int("frames", enc.Frames()).
		Dur("elapsed", time.Since(start)).
		Msg("pass 2 complete")

	return &Result{
		Path:     output,
		Artifact: art.ID,
		Captions: plan.texts,
		Duration: total,
		Warnings: warnings,
	}, nil
}

// layout applies configured placement fractions over the width-derived metrics
func (p *Pipeline) layout(width int) overlays.Layout {
	l := overlays.ComputeLayout(width)
	lc := p.cfg.Layout
	if lc.CaptionY > 0 {
		l.CaptionY = lc.CaptionY
	}
	if lc.CTAY > 0 {
		l.CTAY = lc.CTAY
	}
	if lc.SafeBottom > 0 {
		l.SafeBottom = lc.SafeBottom
	}
	if lc.MaxLines > 0 {
		l.MaxLines = lc.MaxLines
	}
	return l
}

// pass2Audio mixes the Pass 1 audio with background music into a temp PCM
// file. Decode failures drop the affected source.
func (p *Pipeline) pass2Audio(ctx context.Context, sid string, art *store.Artifact, plan *pass2Plan, warnings *Warnings) string {
	opts := ffmpeg.PCMOptions{Rate: p.cfg.Audio.SampleRate, Channels: p.cfg.Audio.Channels}

	var orig, bgm *audio.Track
	if art.HasAudio {
		t, err := p.ffmpeg.DecodePCM(ctx, art.Path, opts)
		if err != nil {
			warnings.add("original audio dropped: %v", err)
			p.logger.Warn().Err(err).Msg("pass 1 audio decode failed")
		} else {
			orig = t
		}
	}
	if plan.bgm != "" {
		bgmOpts := opts
		bgmOpts.Duration = art.Duration
		t, err := p.ffmpeg.DecodePCM(ctx, plan.bgm, bgmOpts)
		if err != nil {
			warnings.add("background music dropped: %v", err)
			p.logger.Warn().Err(err).Str("bgm", plan.bgm).Msg("bgm decode failed")
		} else {
			bgm = t
		}
	}

	mixed, err := audio.Mix(orig, bgm, audio.MixOptions{
		OrigVolume: plan.origVolume,
		BGMVolume:  plan.bgmVolume,
		Total:      art.Duration,
	})
	if err != nil {
		warnings.add("audio dropped: %v", err)
		return ""
	}
	if mixed == nil {
		return ""
	}
	path, err := p.writePCM(sid, "mix.f32", mixed)
	if err != nil {
		warnings.add("audio dropped: %v", err)
		return ""
	}
	return path
}

// logSchedule prints caption windows as "1. 0s-10s | 2. 10s-20s"
func logSchedule(logger zerolog.Logger, set *overlays.Set, total float64) {
	parts := make([]string, 0, len(set.Captions)+1)
	for i, o := range set.Captions {
		parts = append(parts, fmt.Sprintf("%d. %.0fs-%.0fs", i+1, o.From, o.To))
	}
	if set.CTA != nil {
		parts = append(parts, fmt.Sprintf("CTA %.0fs-%.0fs", set.CTAStart, total))
	}
	logger.Info().Str("schedule", strings.Join(parts, " | ")).Msg("overlay schedule")
}
