package media

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/webp"
)

// PhotoSource is a decoded still image
type PhotoSource struct {
	path   string
	img    image.Image
	width  int
	height int
}

// OpenPhoto decodes a JPEG, PNG or WebP file
func OpenPhoto(path string) (*PhotoSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open photo: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode photo %s: %w", path, err)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("photo %s (%s) is empty", path, format)
	}
	return &PhotoSource{path: path, img: img, width: b.Dx(), height: b.Dy()}, nil
}

func (p *PhotoSource) Kind() Kind        { return KindPhoto }
func (p *PhotoSource) Path() string      { return p.path }
func (p *PhotoSource) Size() (int, int)  { return p.width, p.height }
func (p *PhotoSource) Duration() float64 { return 0 }

// Image returns the decoded picture
func (p *PhotoSource) Image() image.Image { return p.img }

// Close drops the decoded image
func (p *PhotoSource) Close() error {
	p.img = nil
	return nil
}
