package textlayout

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// MinSize is the smallest font size the fitters will go down to
const MinSize = 8

// FontSet hands out cached faces of one typeface at arbitrary pixel sizes
type FontSet struct {
	name  string
	font  *opentype.Font
	mu    sync.Mutex
	faces map[int]font.Face
}

// LoadFont parses a TTF/OTF file
func LoadFont(path string) (*FontSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return newFontSet(filepath.Base(path), f), nil
}

// DefaultFont returns the embedded Go Bold typeface
func DefaultFont() *FontSet {
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		// embedded font is known-good
		panic(fmt.Sprintf("textlayout: embedded font: %v", err))
	}
	return newFontSet("Go-Bold", f)
}

// LoadFontOrDefault loads path, falling back to the embedded font. The
// returned error is non-nil whenever the fallback was used with a non-empty path.
func LoadFontOrDefault(path string) (*FontSet, error) {
	if path == "" {
		return DefaultFont(), nil
	}
	fs, err := LoadFont(path)
	if err != nil {
		return DefaultFont(), err
	}
	return fs, nil
}

func newFontSet(name string, f *opentype.Font) *FontSet {
	return &FontSet{name: name, font: f, faces: make(map[int]font.Face)}
}

// Name returns the typeface label
func (fs *FontSet) Name() string {
	return fs.name
}

// Face returns a face at the given pixel size (never below MinSize)
func (fs *FontSet) Face(size int) font.Face {
	if size < MinSize {
		size = MinSize
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if face, ok := fs.faces[size]; ok {
		return face
	}
	face, err := opentype.NewFace(fs.font, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		// only fails on invalid options
		panic(fmt.Sprintf("textlayout: new face: %v", err))
	}
	fs.faces[size] = face
	return face
}

// Close releases all cached faces
func (fs *FontSet) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for size, face := range fs.faces {
		_ = face.Close()
		delete(fs.faces, size)
	}
	return nil
}

// Width is the advance width of text in pixels
func Width(face font.Face, text string) int {
	return font.MeasureString(face, text).Ceil()
}

// InkHeight is the height of the glyph bounding box of text
func InkHeight(face font.Face, text string) int {
	b, _ := font.BoundString(face, text)
	return (b.Max.Y - b.Min.Y).Ceil()
}

// LineHeight is the distance from the top of the line box to the bottom of "Ag"
func LineHeight(face font.Face) int {
	b, _ := font.BoundString(face, "Ag")
	h := face.Metrics().Ascent.Ceil() + b.Max.Y.Ceil()
	if h < 1 {
		return 1
	}
	return h
}

// ascent of the face in whole pixels
func ascent(face font.Face) fixed.Int26_6 {
	return fixed.I(face.Metrics().Ascent.Ceil())
}
