package overlays

import (
	"fmt"
	"image"
	"image/draw"
	"math"
	"os"

	// registered decoders for logo files
	_ "image/jpeg"
	_ "image/png"

	"github.com/keagan/promoreel/internal/raster"
)

// Logo widths as a fraction of the frame width
const (
	OverlayLogoWidth = 0.25
	BakedLogoWidth   = 0.20
	minLogoWidth     = 20
)

// LoadLogo decodes a PNG (or JPEG) logo from disk
func LoadLogo(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open logo: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode logo %s: %w", path, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("decode logo %s: empty image", path)
	}
	return img, nil
}

// LogoRect computes where a logo of the given native size lands on a W×H frame
func LogoRect(frameW, frameH, logoW, logoH int, widthFrac float64) image.Rectangle {
	w := max(minLogoWidth, int(float64(frameW)*widthFrac))
	h := max(1, logoH*w/max(1, logoW))
	x := (frameW - w) / 2
	y := min(max(4, int(float64(frameH)*0.03)), frameH-h-4)
	return image.Rect(x, y, x+w, y+h)
}

// PasteLogo composites the logo at the top-center safe position of canvas
func PasteLogo(canvas *image.RGBA, logo image.Image, widthFrac float64) {
	if canvas == nil || logo == nil {
		return
	}
	b := canvas.Bounds()
	lb := logo.Bounds()
	r := LogoRect(b.Dx(), b.Dy(), lb.Dx(), lb.Dy(), widthFrac)
	resized := raster.Resize(logo, r.Dx(), r.Dy())
	draw.Draw(canvas, r, resized, image.Point{}, draw.Over)
}

// LogoLayer renders a transparent full-frame layer carrying only the logo
func LogoLayer(frameW, frameH int, logo image.Image, widthFrac float64) *Overlay {
	canvas := raster.New(frameW, frameH)
	PasteLogo(canvas, logo, widthFrac)
	return &Overlay{
		Kind:  KindLogo,
		Image: canvas,
		To:    math.Inf(1),
	}
}
