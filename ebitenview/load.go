package ebitenview

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"os"

	_ "golang.org/x/image/webp"
)

// ErrUnsupportedImage is returned when a file is not a decodable image.
var ErrUnsupportedImage = errors.New("ebitenview: unsupported image format")

// LoadImage opens name from the file system first and then from fsys,
// which may be nil. PNG, JPEG and WebP panoramas are supported.
func LoadImage(fsys fs.FS, name string) (image.Image, error) {
	f, err := os.Open(name)
	if err == nil {
		return decode(f, name)
	}
	if fsys != nil {
		if bf, berr := fsys.Open(name); berr == nil {
			return decode(bf, name)
		}
	}
	return nil, fmt.Errorf("ebitenview: open %s: %w", name, err)
}

func decode(r io.ReadCloser, name string) (image.Image, error) {
	defer r.Close()
	img, format, err := image.Decode(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, name)
		}
		return nil, fmt.Errorf("ebitenview: decode %s (%s): %w", name, format, err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrUnsupportedImage, name)
	}
	return img, nil
}
