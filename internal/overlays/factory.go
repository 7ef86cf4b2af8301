package overlays

import (
	"image"
	"image/color"
	"strings"

	"github.com/keagan/promoreel/internal/captions"
	"github.com/keagan/promoreel/internal/raster"
	"github.com/keagan/promoreel/internal/textlayout"
	"github.com/rs/zerolog"
)

// CTA is the call-to-action block content
type CTA struct {
	Label   string `json:"label" yaml:"label"`
	Name    string `json:"name" yaml:"name"`
	Contact string `json:"contact" yaml:"contact"`
}

// IsEmpty reports whether there is nothing to render
func (c CTA) IsEmpty() bool {
	return strings.TrimSpace(c.Label) == "" &&
		strings.TrimSpace(c.Name) == "" &&
		strings.TrimSpace(c.Contact) == ""
}

// HasContent reports whether a name or contact is present; a label alone is not shown
func (c CTA) HasContent() bool {
	return strings.TrimSpace(c.Name) != "" || strings.TrimSpace(c.Contact) != ""
}

var (
	ctaWhite = color.RGBA{255, 255, 255, 255}
	ctaGold  = color.RGBA{255, 215, 0, 255}
)

// Options configures a Factory
type Options struct {
	Layout Layout
	Align  textlayout.Align
	// Logo is pasted on every overlay when set (normally it is baked in Pass 1)
	Logo image.Image
}

// Factory renders caption and CTA overlays for one output size
type Factory struct {
	logger zerolog.Logger
	fonts  *textlayout.FontSet
	width  int
	height int
	opts   Options
}

// NewFactory creates an overlay factory for a W×H frame
func NewFactory(logger zerolog.Logger, fonts *textlayout.FontSet, width, height int, opts Options) *Factory {
	if opts.Layout.FontSize == 0 {
		opts.Layout = ComputeLayout(width)
	}
	return &Factory{
		logger: logger.With().Str("component", "overlays").Logger(),
		fonts:  fonts,
		width:  width,
		height: height,
		opts:   opts,
	}
}

// Layout returns the metrics in use
func (f *Factory) Layout() Layout {
	return f.opts.Layout
}

// Caption renders one caption overlay. Blank text yields a transparent layer.
func (f *Factory) Caption(c captions.Caption) *Overlay {
	canvas := raster.New(f.width, f.height)
	o := &Overlay{Kind: KindCaption, Index: c.Index, Image: canvas}

	if strings.TrimSpace(c.Text) != "" {
		l := f.opts.Layout
		size := l.FontSize
		if c.IsHook() {
			size = l.HookSize
		}

		boxW := l.BoxWidth(f.width)
		usable := max(1, boxW-f.opts.Align.Margin()-8)
		size, lines := f.fonts.FitAndWrap(c.Text, usable, size, l.MaxLines)
		face := f.fonts.Face(size)
		lineH := textlayout.LineHeight(face)

		block := textlayout.Block{
			Lines:   lines,
			Face:    face,
			LineH:   lineH,
			LineGap: max(2, int(float64(lineH)*0.10)),
			PadX:    l.PadX,
			BoxW:    boxW,
			Align:   f.opts.Align,
			Color:   c.Color,
		}
		block.Top = textlayout.PlaceBlock(f.height, block.Height(), l.CaptionY, l.SafeBottom, l.PadY)
		block.Draw(canvas)
		o.Block = block.Bounds(f.width)

		f.logger.Debug().
			Int("index", c.Index).
			Int("size", size).
			Int("lines", len(lines)).
			Int("top", block.Top).
			Msg("caption laid out")
	}

	f.pasteLogo(canvas)
	return o
}

type ctaLine struct {
	text  string
	color color.RGBA
	scale float64
}

// CTA renders the call-to-action block: label, name and contact each fitted
// to one line under a gold separator. Returns nil when there is nothing to show.
func (f *Factory) CTA(cta CTA) *Overlay {
	var lines []ctaLine
	if s := strings.TrimSpace(cta.Label); s != "" {
		lines = append(lines, ctaLine{strings.ToUpper(s), ctaWhite, 0.60})
	}
	if s := strings.TrimSpace(cta.Name); s != "" {
		lines = append(lines, ctaLine{strings.ToUpper(s), ctaGold, 0.80})
	}
	if s := strings.TrimSpace(cta.Contact); s != "" {
		lines = append(lines, ctaLine{"WA: " + s, ctaWhite, 0.60})
	}
	if len(lines) == 0 {
		return nil
	}

	l := f.opts.Layout
	canvas := raster.New(f.width, f.height)
	boxW := l.BoxWidth(f.width)
	usable := max(1, boxW-l.PadX)

	type rendered struct {
		ctaLine
		size   int
		width  int
		height int
	}
	out := make([]rendered, len(lines))
	textH := 0
	for i, ln := range lines {
		start := max(textlayout.MinSize, int(float64(l.FontSize)*ln.scale))
		size := f.fonts.FitLine(ln.text, usable, start)
		face := f.fonts.Face(size)
		out[i] = rendered{
			ctaLine: ln,
			size:    size,
			width:   max(1, textlayout.Width(face, ln.text)),
			height:  max(1, textlayout.InkHeight(face, ln.text)),
		}
		textH += out[i].height
	}

	gap := max(4, l.PadY)
	textH += gap * (len(out) - 1)
	barH := max(2, int(float64(f.height)*0.003))
	blockH := textH + barH + 3*l.PadY
	top := textlayout.PlaceBlock(f.height, blockH, l.CTAY, l.SafeBottom, 0)

	raster.FillRect(canvas, image.Rect(l.PadX, top, l.PadX+boxW, top+barH), ctaGold)

	y := top + barH + l.PadY
	for _, r := range out {
		x := l.PadX + (boxW-r.width)/2
		textlayout.DrawStroked(canvas, x, y, r.text, f.fonts.Face(r.size), r.color)
		y += r.height + gap
	}

	f.pasteLogo(canvas)
	return &Overlay{
		Kind:  KindCTA,
		Image: canvas,
		Block: image.Rect(l.PadX, top, l.PadX+boxW, top+blockH),
	}
}

// Build renders every caption and the CTA, then schedules their windows over total seconds
func (f *Factory) Build(caps []captions.Caption, cta CTA, total, ctaDur float64) *Set {
	set := &Set{Captions: make([]*Overlay, 0, len(caps))}
	for _, c := range caps {
		set.Captions = append(set.Captions, f.Caption(c))
	}
	if cta.HasContent() {
		set.CTA = f.CTA(cta)
	}
	set.Schedule(total, ctaDur)

	f.logger.Info().
		Int("captions", len(set.Captions)).
		Bool("cta", set.CTA != nil).
		Float64("interval", set.Interval).
		Float64("cta_start", set.CTAStart).
		Msg("overlays built")
	return set
}

func (f *Factory) pasteLogo(canvas *image.RGBA) {
	if f.opts.Logo != nil {
		PasteLogo(canvas, f.opts.Logo, OverlayLogoWidth)
	}
}
