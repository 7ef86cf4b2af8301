package textlayout

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/keagan/promoreel/internal/raster"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Safe-zone anchors as fractions of the frame height
const (
	CaptionY   = 0.52
	CTAY       = 0.66
	SafeBottom = 0.78
)

// Stroke and accent bar geometry
const (
	StrokeWidth    = 2
	AccentBarWidth = 6
	AccentBarGap   = 10
)

var (
	StrokeColor = color.RGBA{0, 0, 0, 255}
	AccentColor = color.RGBA{255, 215, 0, 255}
)

// Align is the horizontal placement mode of a text block
type Align int

const (
	AlignCenter Align = iota
	AlignLeft
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignRight:
		return "right"
	}
	return "center"
}

// ParseAlign accepts center, left or right (any case)
func ParseAlign(s string) (Align, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "center", "centre":
		return AlignCenter, nil
	case "left":
		return AlignLeft, nil
	case "right":
		return AlignRight, nil
	}
	return AlignCenter, fmt.Errorf("unknown align %q (want center, left or right)", s)
}

// Margin is the horizontal space the accent bar takes from the text box
func (a Align) Margin() int {
	if a == AlignCenter {
		return 0
	}
	return AccentBarWidth + AccentBarGap
}

// PlaceBlock returns the top y of a block of height blockH anchored at
// anchor·frameH. A block that would cross safeBottom·frameH is moved up so its
// bottom sits pad pixels above the safe boundary.
func PlaceBlock(frameH, blockH int, anchor, safeBottom float64, pad int) int {
	top := int(float64(frameH) * anchor)
	limit := int(float64(frameH) * safeBottom)
	if top+blockH > limit {
		top = limit - blockH - pad
		if top < 0 {
			top = 0
		}
	}
	return top
}

// DrawStroked draws text with its line box top at y: an 8-direction outline
// first, then the fill color on top.
func DrawStroked(dst *image.RGBA, x, y int, text string, face font.Face, fill color.Color) {
	baseline := fixed.I(y) + ascent(face)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(StrokeColor), Face: face}

	for dx := -StrokeWidth; dx <= StrokeWidth; dx++ {
		for dy := -StrokeWidth; dy <= StrokeWidth; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			d.Dot = fixed.Point26_6{X: fixed.I(x + dx), Y: baseline + fixed.I(dy)}
			d.DrawString(text)
		}
	}

	d.Src = image.NewUniform(fill)
	d.Dot = fixed.Point26_6{X: fixed.I(x), Y: baseline}
	d.DrawString(text)
}

// Block is a laid-out paragraph ready to be drawn
type Block struct {
	Lines   []string
	Face    font.Face
	LineH   int
	LineGap int
	Top     int
	PadX    int
	BoxW    int
	Align   Align
	Color   color.Color
}

// Height of the block from the top of the first line to the bottom of the last
func (b Block) Height() int {
	n := len(b.Lines)
	if n == 0 {
		return 0
	}
	return b.LineH*n + b.LineGap*(n-1)
}

// Bounds is the rectangle the block occupies on a frame of width frameW
func (b Block) Bounds(frameW int) image.Rectangle {
	return image.Rect(b.PadX, b.Top, frameW-b.PadX, b.Top+b.Height())
}

// Draw renders the accent bar (left/right modes) and every line
func (b Block) Draw(dst *image.RGBA) {
	frameW := dst.Bounds().Dx()
	h := b.Height()

	var textLeft, textRight int
	switch b.Align {
	case AlignLeft:
		bar := image.Rect(b.PadX, b.Top, b.PadX+AccentBarWidth, b.Top+h)
		raster.FillRect(dst, bar, AccentColor)
		textLeft = bar.Max.X + AccentBarGap
	case AlignRight:
		barRight := frameW - b.PadX
		bar := image.Rect(barRight-AccentBarWidth, b.Top, barRight, b.Top+h)
		raster.FillRect(dst, bar, AccentColor)
		textRight = bar.Min.X - AccentBarGap
	}

	y := b.Top
	for _, line := range b.Lines {
		if strings.TrimSpace(line) == "" {
			y += b.LineH + b.LineGap
			continue
		}
		lw := Width(b.Face, line)

		var x int
		switch b.Align {
		case AlignLeft:
			x = textLeft
		case AlignRight:
			x = max(b.PadX, textRight-lw)
		default:
			x = max(b.PadX, b.PadX+(b.BoxW-lw)/2)
		}
		DrawStroked(dst, x, y, line, b.Face, b.Color)
		y += b.LineH + b.LineGap
	}
}
