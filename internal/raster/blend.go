package raster

import "image"

// AlphaBlend composites overlay onto base and returns a new frame:
// out = base*(1-a) + overlay (overlay color is alpha-premultiplied).
// If the sizes differ, base itself is returned untouched.
func AlphaBlend(base, overlay *image.RGBA) *image.RGBA {
	if base == nil || overlay == nil || !sameSize(base, overlay) {
		return base
	}
	out := Clone(base)
	BlendInto(out, overlay)
	return out
}

// BlendInto composites overlay onto dst in place. Mismatched sizes are a no-op.
func BlendInto(dst, overlay *image.RGBA) {
	if dst == nil || overlay == nil || !sameSize(dst, overlay) {
		return
	}
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	for y := 0; y < h; y++ {
		d := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		o := overlay.Pix[y*overlay.Stride : y*overlay.Stride+w*4]
		for i := 0; i < len(d); i += 4 {
			a := uint32(o[i+3])
			if a == 0 {
				continue
			}
			if a == 255 {
				d[i], d[i+1], d[i+2], d[i+3] = o[i], o[i+1], o[i+2], 255
				continue
			}
			inv := 255 - a
			d[i] = blendChannel(d[i], o[i], inv)
			d[i+1] = blendChannel(d[i+1], o[i+1], inv)
			d[i+2] = blendChannel(d[i+2], o[i+2], inv)
			d[i+3] = blendChannel(d[i+3], o[i+3], inv)
		}
	}
}

// blendChannel computes base*inv/255 + over with rounding and clamping
func blendChannel(base, over uint8, inv uint32) uint8 {
	v := (uint32(base)*inv+127)/255 + uint32(over)
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func sameSize(a, b *image.RGBA) bool {
	return a.Rect.Dx() == b.Rect.Dx() && a.Rect.Dy() == b.Rect.Dy()
}

// Scale multiplies every color channel of dst by f (alpha untouched)
func Scale(dst *image.RGBA, f float64) {
	if f == 1 {
		return
	}
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	for y := 0; y < h; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			row[i] = clampByte(float64(row[i]) * f)
			row[i+1] = clampByte(float64(row[i+1]) * f)
			row[i+2] = clampByte(float64(row[i+2]) * f)
		}
	}
}

// Mix returns a*(1-alpha) + b*alpha for equally sized frames
func Mix(a, b *image.RGBA, alpha float64) *image.RGBA {
	if !sameSize(a, b) {
		return a
	}
	if alpha <= 0 {
		return Clone(a)
	}
	if alpha >= 1 {
		return Clone(b)
	}
	out := Clone(a)
	w, h := a.Rect.Dx(), a.Rect.Dy()
	for y := 0; y < h; y++ {
		o := out.Pix[y*out.Stride : y*out.Stride+w*4]
		s := b.Pix[y*b.Stride : y*b.Stride+w*4]
		for i := range o {
			o[i] = clampByte(float64(o[i])*(1-alpha) + float64(s[i])*alpha)
		}
	}
	return out
}
