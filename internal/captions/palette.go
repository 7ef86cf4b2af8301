package captions

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"
)

// HookColor is reserved for caption 0
var HookColor = color.RGBA{255, 215, 0, 255}

// Named caption colors
var Named = map[string]color.RGBA{
	"gold":      {255, 215, 0, 255},
	"white":     {255, 255, 255, 255},
	"silver":    {192, 192, 192, 255},
	"champagne": {255, 223, 128, 255},
	"rose gold": {210, 180, 140, 255},
}

// MaxPalette is how many detail colors a user may pick
const MaxPalette = 4

// Caption is one caption string with its render color
type Caption struct {
	Index int
	Text  string
	Color color.RGBA
}

// IsHook reports whether this is the leading caption
func (c Caption) IsHook() bool { return c.Index == 0 }

// ParseColor accepts a palette name (case-insensitive) or #RRGGBB
func ParseColor(s string) (color.RGBA, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if c, ok := Named[key]; ok {
		return c, nil
	}
	hex := strings.TrimPrefix(key, "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("unknown color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("unknown color %q", s)
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}, nil
}

// ParsePalette parses up to MaxPalette detail colors; extra entries are ignored
func ParsePalette(names []string) ([]color.RGBA, error) {
	if len(names) > MaxPalette {
		names = names[:MaxPalette]
	}
	out := make([]color.RGBA, 0, len(names))
	for _, n := range names {
		c, err := ParseColor(n)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Assign pairs caption texts with colors: index 0 is always HookColor, the
// rest cycle through [HookColor]+palette.
func Assign(texts []string, palette []color.RGBA) []Caption {
	all := append([]color.RGBA{HookColor}, palette...)
	out := make([]Caption, len(texts))
	for i, t := range texts {
		out[i] = Caption{Index: i, Text: t, Color: all[i%len(all)]}
	}
	return out
}

// ColorNames lists the named colors in a stable order
func ColorNames() []string {
	names := make([]string, 0, len(Named))
	for n := range Named {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
