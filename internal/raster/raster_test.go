package raster

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := New(w, h)
	FillRect(img, img.Bounds(), c)
	return img
}

func gradient(w, h int) *image.RGBA {
	img := New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 255 / w), uint8(y * 255 / h), 128, 255})
		}
	}
	return img
}

func TestAspectFitDimensions(t *testing.T) {
	sizes := []struct{ w, h int }{
		{1920, 1080}, {1080, 1920}, {640, 640}, {300, 1200}, {97, 41}, {720, 1281},
	}
	for _, s := range sizes {
		out, err := AspectFit(gradient(s.w, s.h), 72, 128)
		if err != nil {
			t.Errorf("%dx%d: unexpected error %v", s.w, s.h, err)
			continue
		}
		if out.Bounds().Dx() != 72 || out.Bounds().Dy() != 128 {
			t.Errorf("%dx%d: got %v, want 72x128", s.w, s.h, out.Bounds())
		}
	}
}

func TestAspectFitLetterboxKeepsForegroundCentered(t *testing.T) {
	src := solid(160, 90, color.RGBA{255, 0, 0, 255})
	out, err := AspectFit(src, 90, 160)
	if err != nil {
		t.Fatalf("AspectFit failed: %v", err)
	}
	// foreground is 90x50 centered at y=55..105
	mid := out.RGBAAt(45, 80)
	if mid.R < 250 || mid.G > 5 {
		t.Errorf("expected red foreground in the middle, got %v", mid)
	}
}

func TestAspectFitFallback(t *testing.T) {
	out, err := AspectFit(nil, 20, 30)
	if !errors.Is(err, ErrAspectFitFallback) {
		t.Fatalf("expected fallback error, got %v", err)
	}
	if out.Bounds().Dx() != 20 || out.Bounds().Dy() != 30 {
		t.Errorf("fallback frame has wrong size %v", out.Bounds())
	}

	if _, err := AspectFit(gradient(4, 4), 0, 10); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}
}

func TestAlphaBlendMismatchReturnsBase(t *testing.T) {
	base := gradient(10, 10)
	before := append([]uint8(nil), base.Pix...)
	overlay := solid(5, 5, color.RGBA{255, 255, 255, 255})

	got := AlphaBlend(base, overlay)
	if got != base {
		t.Error("expected the same frame back on size mismatch")
	}
	if !bytes.Equal(base.Pix, before) {
		t.Error("base was modified")
	}
}

func TestAlphaBlend(t *testing.T) {
	base := solid(4, 4, color.RGBA{100, 100, 100, 255})
	overlay := New(4, 4)
	overlay.SetRGBA(0, 0, color.RGBA{255, 255, 255, 255})
	// half-transparent white, premultiplied
	overlay.SetRGBA(1, 0, color.RGBA{128, 128, 128, 128})

	out := AlphaBlend(base, overlay)
	if out == base {
		t.Fatal("expected a new frame")
	}
	if c := out.RGBAAt(0, 0); c.R != 255 {
		t.Errorf("opaque overlay pixel: got %v", c)
	}
	if c := out.RGBAAt(1, 0); c.R < 175 || c.R > 179 {
		t.Errorf("half alpha pixel: got %v, want ~177", c)
	}
	if c := out.RGBAAt(3, 3); c.R != 100 {
		t.Errorf("transparent overlay changed base: %v", c)
	}
	if c := base.RGBAAt(0, 0); c.R != 100 {
		t.Error("AlphaBlend mutated its input")
	}
}

func TestColorGradeIdentity(t *testing.T) {
	src := gradient(16, 16)
	out := ColorGrade(src, Identity)
	if !bytes.Equal(src.Pix, out.Pix) {
		t.Error("identity grade changed pixels")
	}
	if out == src {
		t.Error("identity grade should still return a copy")
	}
}

func TestColorGradeBrightnessAndSaturation(t *testing.T) {
	src := solid(8, 8, color.RGBA{100, 50, 20, 255})

	bright := ColorGrade(src, Grade{Brightness: 2, Contrast: 1, Saturation: 1, Sharpness: 1})
	if c := bright.RGBAAt(4, 4); c.R != 200 || c.G != 100 || c.B != 40 {
		t.Errorf("brightness x2: got %v", c)
	}

	grey := ColorGrade(src, Grade{Brightness: 1, Contrast: 1, Saturation: 0, Sharpness: 1})
	c := grey.RGBAAt(4, 4)
	if c.R != c.G || c.G != c.B {
		t.Errorf("saturation 0 should be grey, got %v", c)
	}

	// contrast pushes channels away from the mean grey (61 here)
	contrast := ColorGrade(src, Grade{Brightness: 1, Contrast: 1.5, Saturation: 1, Sharpness: 1})
	if got := contrast.RGBAAt(2, 2); got.R != 120 || got.B != 0 {
		t.Errorf("contrast 1.5: got %v, want R=120 B=0", got)
	}
}

func TestColorGradeSharpness(t *testing.T) {
	src := solid(5, 5, color.RGBA{100, 100, 100, 255})
	src.SetRGBA(2, 2, color.RGBA{160, 160, 160, 255})

	sharp := Identity
	sharp.Sharpness = 2
	out := ColorGrade(src, sharp)
	if c := out.RGBAAt(2, 2); c.R <= 160 {
		t.Errorf("sharpening should brighten the peak, got %v", c)
	}
	if c := out.RGBAAt(2, 1); c.R >= 100 {
		t.Errorf("sharpening should darken next to the peak, got %v", c)
	}
	if c := out.RGBAAt(0, 0); c != src.RGBAAt(0, 0) {
		t.Errorf("border pixel changed to %v", c)
	}

	soft := Identity
	soft.Sharpness = 0
	if c := ColorGrade(src, soft).RGBAAt(2, 2); c.R >= 160 || c.R <= 100 {
		t.Errorf("sharpness 0 should smooth the peak, got %v", c)
	}
}

func TestColorGradePassOrder(t *testing.T) {
	src := solid(8, 8, color.RGBA{100, 50, 20, 255})
	bright, contrast := Identity, Identity
	bright.Brightness = 3
	contrast.Contrast = 0.5
	both := bright
	both.Contrast = 0.5

	got := ColorGrade(src, both)
	inOrder := ColorGrade(ColorGrade(src, bright), contrast)
	if !bytes.Equal(got.Pix, inOrder.Pix) {
		t.Errorf("combined grade %v differs from brightness then contrast %v", got.RGBAAt(0, 0), inOrder.RGBAAt(0, 0))
	}
	reversed := ColorGrade(ColorGrade(src, contrast), bright)
	if bytes.Equal(got.Pix, reversed.Pix) {
		t.Error("contrast before brightness should give a different result")
	}
}

func TestBlurKeepsSize(t *testing.T) {
	src := gradient(64, 48)
	out := Blur(src, BackgroundBlur)
	if out.Bounds() != src.Bounds() {
		t.Errorf("blur changed bounds: %v", out.Bounds())
	}
}

func TestCropCenter(t *testing.T) {
	src := gradient(10, 10)
	out := CropCenter(src, 4, 2)
	if out.Bounds().Dx() != 4 || out.Bounds().Dy() != 2 {
		t.Fatalf("crop size %v", out.Bounds())
	}
	if out.RGBAAt(0, 0) != src.RGBAAt(3, 4) {
		t.Error("crop is not centered")
	}
}

func TestMix(t *testing.T) {
	a := solid(2, 2, color.RGBA{0, 0, 0, 255})
	b := solid(2, 2, color.RGBA{200, 200, 200, 255})
	if c := Mix(a, b, 0.5).RGBAAt(0, 0); c.R != 100 {
		t.Errorf("mix 0.5: got %v", c)
	}
}
