package engine

import (
	"image"

	"imgproc/internal/models"

	"golang.org/x/image/draw"
)

// Operation recomputes a new buffer from the original. Implementations
// must not modify src.
type Operation interface {
	Apply(src *image.RGBA) *image.RGBA
}

// Transform is the only way current is derived: at most one operation,
// always applied to the untouched original.
func Transform(original *image.RGBA, op Operation) *image.RGBA {
	if op == nil {
		return Clone(original)
	}
	return op.Apply(original)
}

type ChannelOp struct {
	Mode models.ColorMode
}

// Apply keeps the selected plane and blacks out the other two, so Red
// shows a red tinted picture rather than a grayscale one.
func (op ChannelOp) Apply(src *image.RGBA) *image.RGBA {
	keep := op.Mode.Plane()
	if keep < 0 {
		return Clone(src)
	}

	planes := SplitPlanes(src)
	for i := range planes {
		if i != keep {
			planes[i] = image.NewGray(planes[i].Rect)
		}
	}

	return MergePlanes(planes)
}

type ResizeOp struct {
	Width  int
	Height int
}

func (op ResizeOp) Apply(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, op.Width, op.Height))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	return dst
}

func Clone(src *image.RGBA) *image.RGBA {
	dst := &image.RGBA{
		Pix:    make([]byte, len(src.Pix)),
		Stride: src.Stride,
		Rect:   src.Rect,
	}
	copy(dst.Pix, src.Pix)

	return dst
}

// SplitPlanes returns the R, G and B planes of img.
func SplitPlanes(img *image.RGBA) [3]*image.Gray {
	b := img.Bounds()

	var planes [3]*image.Gray
	for i := range planes {
		planes[i] = image.NewGray(b)
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			si := img.PixOffset(x, y)
			pi := planes[0].PixOffset(x, y)

			planes[0].Pix[pi] = img.Pix[si+0]
			planes[1].Pix[pi] = img.Pix[si+1]
			planes[2].Pix[pi] = img.Pix[si+2]
		}
	}

	return planes
}

// MergePlanes builds an opaque image from three planes of equal bounds.
func MergePlanes(planes [3]*image.Gray) *image.RGBA {
	b := planes[0].Bounds()
	dst := image.NewRGBA(b)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			di := dst.PixOffset(x, y)
			pi := planes[0].PixOffset(x, y)

			dst.Pix[di+0] = planes[0].Pix[pi]
			dst.Pix[di+1] = planes[1].Pix[pi]
			dst.Pix[di+2] = planes[2].Pix[pi]
			dst.Pix[di+3] = 0xff
		}
	}

	return dst
}
