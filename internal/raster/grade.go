package raster

import (
	"image"

	"github.com/disintegration/imaging"
)

// Grade holds the four stylistic enhancement factors; 1.0 means unchanged
type Grade struct {
	Brightness float64 `json:"brightness" yaml:"brightness"`
	Contrast   float64 `json:"contrast" yaml:"contrast"`
	Saturation float64 `json:"saturation" yaml:"saturation"`
	Sharpness  float64 `json:"sharpness" yaml:"sharpness"`
}

// Identity is the no-op grade
var Identity = Grade{Brightness: 1, Contrast: 1, Saturation: 1, Sharpness: 1}

// IsIdentity reports whether applying the grade changes nothing
func (g Grade) IsIdentity() bool {
	return g == Identity
}

// smoothKernel is the classic 3×3 "smooth" filter used as the sharpness baseline
var smoothKernel = [9]float64{
	1, 1, 1,
	1, 5, 1,
	1, 1, 1,
}

// ColorGrade applies brightness, contrast, saturation and sharpness in that
// order. Each pass interpolates between a degenerate image and the current one:
// out = degenerate + (current - degenerate) * factor.
func ColorGrade(frame *image.RGBA, g Grade) *image.RGBA {
	out := Clone(frame)
	if g.IsIdentity() {
		return out
	}

	if g.Brightness != 1 {
		Scale(out, g.Brightness)
	}
	if g.Contrast != 1 {
		applyContrast(out, g.Contrast)
	}
	if g.Saturation != 1 {
		applySaturation(out, g.Saturation)
	}
	if g.Sharpness != 1 {
		out = applySharpness(out, g.Sharpness)
	}
	return out
}

func luma(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

// applyContrast blends toward the mean luminance grey
func applyContrast(img *image.RGBA, f float64) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return
	}

	var sum float64
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			sum += float64(int(luma(row[i], row[i+1], row[i+2])))
		}
	}
	mean := float64(int(sum/float64(w*h) + 0.5))

	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			row[i] = clampByte(mean + (float64(row[i])-mean)*f)
			row[i+1] = clampByte(mean + (float64(row[i+1])-mean)*f)
			row[i+2] = clampByte(mean + (float64(row[i+2])-mean)*f)
		}
	}
}

// applySaturation blends each pixel toward its own grey level
func applySaturation(img *image.RGBA, f float64) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			l := float64(int(luma(row[i], row[i+1], row[i+2])))
			row[i] = clampByte(l + (float64(row[i])-l)*f)
			row[i+1] = clampByte(l + (float64(row[i+1])-l)*f)
			row[i+2] = clampByte(l + (float64(row[i+2])-l)*f)
		}
	}
}

// applySharpness blends against a smoothed copy; factors above 1 sharpen
func applySharpness(img *image.RGBA, f float64) *image.RGBA {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w < 3 || h < 3 {
		return img
	}
	smooth := imaging.Convolve3x3(img, smoothKernel, &imaging.ConvolveOptions{Normalize: true})

	out := New(w, h)
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+w*4]
		sm := smooth.Pix[y*smooth.Stride : y*smooth.Stride+w*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+w*4]
		// border pixels keep their original values
		edgeRow := y == 0 || y == h-1
		for i := 0; i < len(dst); i += 4 {
			if edgeRow || i == 0 || i == len(dst)-4 {
				copy(dst[i:i+4], src[i:i+4])
				continue
			}
			for c := 0; c < 3; c++ {
				s := float64(sm[i+c])
				dst[i+c] = clampByte(s + (float64(src[i+c])-s)*f)
			}
			dst[i+3] = src[i+3]
		}
	}
	return out
}
