package textlayout

import (
	"strings"

	"golang.org/x/image/font"
)

// DefaultMaxLines is the caption line budget before the font shrinks
const DefaultMaxLines = 4

// Wrap greedily breaks text on whitespace so each line fits maxW. Words are
// never dropped or split; a word wider than maxW gets a line of its own.
func Wrap(face font.Face, text string, maxW int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if Width(face, candidate) <= maxW {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// FitAndWrap shrinks the font one pixel at a time from startSize until the
// wrapped text needs at most maxLines lines. At MinSize every line is returned
// even if the budget is exceeded.
func (fs *FontSet) FitAndWrap(text string, maxW, startSize, maxLines int) (int, []string) {
	if maxLines < 1 {
		maxLines = DefaultMaxLines
	}
	size := startSize
	if size < MinSize {
		size = MinSize
	}
	for ; size >= MinSize; size-- {
		lines := Wrap(fs.Face(size), text, maxW)
		if len(lines) <= maxLines {
			return size, lines
		}
	}
	return MinSize, Wrap(fs.Face(MinSize), text, maxW)
}

// FitLine shrinks the font two pixels at a time until text fits on one line.
// It gives up early when shrinking stops reducing the width and returns
// MinSize if the text never fits. It never wraps.
func (fs *FontSet) FitLine(text string, maxW, startSize int) int {
	size := startSize
	if size < MinSize {
		size = MinSize
	}
	prev := -1
	for ; size >= MinSize; size -= 2 {
		w := Width(fs.Face(size), text)
		if w <= maxW {
			return size
		}
		if prev >= 0 && w >= prev {
			break
		}
		prev = w
	}
	return MinSize
}
