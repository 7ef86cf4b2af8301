package overlays

import "github.com/keagan/promoreel/internal/textlayout"

// Layout holds the frame-relative text metrics shared by all overlays
type Layout struct {
	FontSize   int
	HookSize   int
	PadX       int
	PadY       int
	CaptionY   float64
	CTAY       float64
	SafeBottom float64
	MaxLines   int
}

// ComputeLayout derives font sizes and paddings from the output width
func ComputeLayout(outW int) Layout {
	w := float64(outW)
	return Layout{
		FontSize:   max(18, int(w*0.065)),
		HookSize:   max(22, int(w*0.080)),
		PadX:       max(8, int(w*0.045)),
		PadY:       max(4, int(w*0.018)),
		CaptionY:   textlayout.CaptionY,
		CTAY:       textlayout.CTAY,
		SafeBottom: textlayout.SafeBottom,
		MaxLines:   textlayout.DefaultMaxLines,
	}
}

// BoxWidth is the text box width for a frame of width outW
func (l Layout) BoxWidth(outW int) int {
	return max(1, outW-2*l.PadX)
}
