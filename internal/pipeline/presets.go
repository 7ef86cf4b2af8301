package pipeline

import (
	"fmt"
	"strings"
)

// Preset is a named output resolution
type Preset struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// PresetOriginal derives the size from the first input
const PresetOriginal = "original"

// Output size limits for the original preset
const (
	maxOutWidth  = 1080
	maxOutHeight = 1920
)

// Presets lists the supported resolutions
var Presets = []Preset{
	{Name: "360p", Width: 202, Height: 360},
	{Name: "720p", Width: 720, Height: 1280},
	{Name: "1080p", Width: 1080, Height: 1920},
	{Name: PresetOriginal},
}

// LookupPreset finds a preset by name (case-insensitive)
func LookupPreset(name string) (Preset, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range Presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// ResolveSize returns the output size for preset name. srcW×srcH is the
// display size of the first input and only matters for the original preset.
func ResolveSize(name string, srcW, srcH int) (int, int, error) {
	p, ok := LookupPreset(name)
	if !ok {
		return 0, 0, fmt.Errorf("unknown resolution preset %q", name)
	}
	if p.Name != PresetOriginal {
		return p.Width, p.Height, nil
	}
	if srcW <= 0 || srcH <= 0 {
		return 0, 0, fmt.Errorf("cannot derive original resolution from %dx%d input", srcW, srcH)
	}

	// portrait band is 9:16 to 4:5; wider inputs become 9:16 of their height,
	// taller ones 9:16 of their width
	w, h := float64(srcW), float64(srcH)
	switch {
	case srcW*5 > srcH*4:
		w = h * 9 / 16
	case srcW*16 < srcH*9:
		h = w * 16 / 9
	}
	if w > maxOutWidth {
		h *= maxOutWidth / w
		w = maxOutWidth
	}
	if h > maxOutHeight {
		w *= maxOutHeight / h
		h = maxOutHeight
	}
	return even(w), even(h), nil
}

// even truncates to an even pixel count; the epsilon absorbs float error
func even(v float64) int {
	return max(2, int(v+1e-6)&^1)
}
