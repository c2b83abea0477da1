package engine

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"
)

// Extensions offered by the file-open dialog.
var Extensions = []string{".png", ".jpg", ".jpeg"}

// LoadFile decodes a PNG or JPEG file and normalizes it. Failures match
// ErrIO.
func LoadFile(path string) (img *image.RGBA, flattened bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, newError(ErrIO, "cannot load image", err)
	}

	defer f.Close()

	decoded, _, err := image.Decode(f)
	if err != nil {
		return nil, false, newError(ErrIO, "cannot load image "+path, err)
	}

	img, flattened = Normalize(decoded)

	return img, flattened, nil
}

// Normalize composites img over opaque white and returns it as an RGBA
// buffer anchored at (0,0) with every alpha at 0xff. flattened reports
// whether img had any pixel that was not fully opaque.
func Normalize(img image.Image) (out *image.RGBA, flattened bool) {
	b := img.Bounds()
	out = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
		return out, false
	}

	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Over)

	return out, true
}
